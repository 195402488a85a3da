package assessments

import (
	"errors"
	"testing"
)

func TestScoreGAD7Bands(t *testing.T) {
	cases := []struct {
		name    string
		answers []int
		total   int
		want    Severity
	}{
		{"all zeros", []int{0, 0, 0, 0, 0, 0, 0}, 0, SeverityMinimal},
		{"upper minimal", []int{1, 1, 1, 1, 0, 0, 0}, 4, SeverityMinimal},
		{"lower mild", []int{1, 1, 1, 1, 1, 0, 0}, 5, SeverityMild},
		{"upper mild", []int{2, 2, 2, 1, 1, 1, 0}, 9, SeverityMild},
		{"lower moderate", []int{2, 2, 2, 2, 1, 1, 0}, 10, SeverityModerate},
		{"upper moderate", []int{2, 2, 2, 2, 2, 2, 2}, 14, SeverityModerate},
		{"lower severe", []int{3, 3, 3, 3, 1, 1, 1}, 15, SeveritySevere},
		{"maximum", []int{3, 3, 3, 3, 3, 3, 3}, 21, SeveritySevere},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ScoreGAD7(tc.answers)
			if err != nil {
				t.Fatalf("ScoreGAD7 returned error: %v", err)
			}
			if result.Total != tc.total {
				t.Fatalf("expected total %d, got %d", tc.total, result.Total)
			}
			if result.Severity != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, result.Severity)
			}
		})
	}
}

func TestScoreGAD7RejectsWrongCount(t *testing.T) {
	for _, answers := range [][]int{nil, {}, {1, 2, 3}, {0, 0, 0, 0, 0, 0, 0, 0}} {
		if _, err := ScoreGAD7(answers); !errors.Is(err, ErrWrongAnswerCount) {
			t.Fatalf("expected ErrWrongAnswerCount for %v, got %v", answers, err)
		}
	}
}

func TestScoreGAD7RejectsOutOfRange(t *testing.T) {
	for _, answers := range [][]int{
		{0, 0, 0, 0, 0, 0, -1},
		{4, 0, 0, 0, 0, 0, 0},
		{3, 3, 3, 3, 3, 3, 9},
	} {
		if _, err := ScoreGAD7(answers); !errors.Is(err, ErrAnswerOutOfRange) {
			t.Fatalf("expected ErrAnswerOutOfRange for %v, got %v", answers, err)
		}
	}
}
