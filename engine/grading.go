// Package engine holds the pure grading and progression rules shared by the
// quiz grader, the assessment grader and the grant routines. Everything here
// is side-effect free; callers persist the results inside their own
// transactions.
package engine

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrAnswerCount = errors.New("answer count does not match question count")
	ErrAnswerValue = errors.New("answers must be non-negative selection indexes")
	ErrNoQuestions = errors.New("no questions to grade")
)

// Question is the answer key for one multiple-choice question.
type Question struct {
	ID           uint
	CorrectIndex int
}

// AnswerResult records one graded answer. The full list is persisted on
// every submission, pass or fail.
type AnswerResult struct {
	QuestionID    uint `json:"question_id"`
	SelectedIndex int  `json:"selected_index"`
	CorrectIndex  int  `json:"correct_index"`
	Correct       bool `json:"correct"`
}

// Grade scores answers against questions and returns per-question results
// plus the 0-100 score.
func Grade(questions []Question, answers []int) ([]AnswerResult, int, error) {
	if len(questions) == 0 {
		return nil, 0, ErrNoQuestions
	}
	if len(answers) != len(questions) {
		return nil, 0, ErrAnswerCount
	}
	for _, a := range answers {
		if a < 0 {
			return nil, 0, ErrAnswerValue
		}
	}

	results := make([]AnswerResult, len(questions))
	correctCount := 0
	for i, q := range questions {
		correct := answers[i] == q.CorrectIndex
		if correct {
			correctCount++
		}
		results[i] = AnswerResult{
			QuestionID:    q.ID,
			SelectedIndex: answers[i],
			CorrectIndex:  q.CorrectIndex,
			Correct:       correct,
		}
	}

	return results, Score(correctCount, len(questions)), nil
}

// Score maps a correct count to the 0-100 integer scale.
func Score(correctCount, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correctCount) / float64(total) * 100))
}

// QuizPassed is the module-quiz pass rule: 100% required, no partial credit.
func QuizPassed(score int) bool {
	return score == 100
}

type starBand struct {
	min, max, stars int
}

// StarRating maps a score to a 1-5 star rating. A configured mapping of
// "min-max" bands is evaluated sorted by descending upper bound, first
// inclusive match wins. A missing or unmatched mapping falls back to the
// fixed bands 90/80/70/60.
func StarRating(score int, mapping map[string]int) int {
	bands := make([]starBand, 0, len(mapping))
	for key, stars := range mapping {
		parts := strings.SplitN(key, "-", 2)
		if len(parts) != 2 {
			continue
		}
		min, err1 := strconv.Atoi(parts[0])
		max, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			continue
		}
		bands = append(bands, starBand{min: min, max: max, stars: stars})
	}
	sort.Slice(bands, func(i, j int) bool { return bands[i].max > bands[j].max })
	for _, b := range bands {
		if score >= b.min && score <= b.max {
			return b.stars
		}
	}

	switch {
	case score >= 90:
		return 5
	case score >= 80:
		return 4
	case score >= 70:
		return 3
	case score >= 60:
		return 2
	default:
		return 1
	}
}

// NextUnlockedOrder is the unlock transition: the cursor advances by exactly
// 1 only when the passed module is the current one and its video was
// completed. It never moves otherwise.
func NextUnlockedOrder(current, moduleOrder int, passed, videoCompleted bool) int {
	if passed && videoCompleted && moduleOrder == current {
		return current + 1
	}
	return current
}
