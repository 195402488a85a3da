package assessments

// GAD7AnswerCount is the number of items on the GAD-7 questionnaire.
const GAD7AnswerCount = 7

// ScoreGAD7 scores a GAD-7 submission. Each answer is a 0..3 frequency
// rating, giving a total of 0..21 banded as minimal (0-4), mild (5-9),
// moderate (10-14) or severe (15-21).
func ScoreGAD7(answers []int) (Result, error) {
	if len(answers) != GAD7AnswerCount {
		return Result{}, ErrWrongAnswerCount
	}
	total := 0
	for _, a := range answers {
		if a < 0 || a > 3 {
			return Result{}, ErrAnswerOutOfRange
		}
		total += a
	}
	return Result{Total: total, Severity: severityFor(total)}, nil
}

func severityFor(total int) Severity {
	switch {
	case total >= 15:
		return SeveritySevere
	case total >= 10:
		return SeverityModerate
	case total >= 5:
		return SeverityMild
	default:
		return SeverityMinimal
	}
}
