package assessments

import "errors"

var (
	// ErrWrongAnswerCount is returned when the submission does not carry
	// exactly seven answers.
	ErrWrongAnswerCount = errors.New("assessments: gad-7 requires exactly 7 answers")

	// ErrAnswerOutOfRange is returned when an answer falls outside 0..3.
	ErrAnswerOutOfRange = errors.New("assessments: gad-7 answers must be between 0 and 3")
)
