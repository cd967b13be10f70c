package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeQuestions() []Question {
	// answer key [0,1,1]
	return []Question{
		{ID: 1, CorrectIndex: 0},
		{ID: 2, CorrectIndex: 1},
		{ID: 3, CorrectIndex: 1},
	}
}

func TestGradeAllCorrect(t *testing.T) {
	results, score, err := Grade(threeQuestions(), []int{0, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, 100, score)
	assert.True(t, QuizPassed(score))
	for _, r := range results {
		assert.True(t, r.Correct)
	}
}

func TestGradePartiallyCorrect(t *testing.T) {
	results, score, err := Grade(threeQuestions(), []int{0, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, 67, score) // round(100*2/3)
	assert.False(t, QuizPassed(score))
	assert.True(t, results[0].Correct)
	assert.True(t, results[1].Correct)
	assert.False(t, results[2].Correct)
	assert.Equal(t, 0, results[2].SelectedIndex)
	assert.Equal(t, 1, results[2].CorrectIndex)
}

func TestGradeRejectsWrongAnswerCount(t *testing.T) {
	_, _, err := Grade(threeQuestions(), []int{0, 1})
	assert.ErrorIs(t, err, ErrAnswerCount)
}

func TestGradeRejectsNegativeSelection(t *testing.T) {
	_, _, err := Grade(threeQuestions(), []int{0, -1, 1})
	assert.ErrorIs(t, err, ErrAnswerValue)
}

func TestGradeRejectsEmptyQuestionSet(t *testing.T) {
	_, _, err := Grade(nil, nil)
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestScoreRounding(t *testing.T) {
	assert.Equal(t, 67, Score(2, 3))
	assert.Equal(t, 33, Score(1, 3))
	assert.Equal(t, 100, Score(3, 3))
	assert.Equal(t, 0, Score(0, 3))
	assert.Equal(t, 0, Score(1, 0))
}

func TestStarRatingDefaultBands(t *testing.T) {
	cases := map[int]int{
		100: 5, 90: 5, 89: 4, 80: 4, 79: 3, 70: 3, 69: 2, 60: 2, 59: 1, 0: 1,
	}
	for score, stars := range cases {
		assert.Equal(t, stars, StarRating(score, nil), "score %d", score)
	}
}

func TestStarRatingConfiguredMapping(t *testing.T) {
	mapping := map[string]int{
		"90-100": 5,
		"80-89":  4,
		"70-79":  3,
		"60-69":  2,
		"0-59":   1,
	}
	assert.Equal(t, 4, StarRating(82, mapping))
	// band boundaries are inclusive
	assert.Equal(t, 5, StarRating(90, mapping))
	assert.Equal(t, 4, StarRating(89, mapping))
	assert.Equal(t, 1, StarRating(0, mapping))
}

func TestStarRatingMonotoneInScore(t *testing.T) {
	mapping := map[string]int{"90-100": 5, "80-89": 4, "70-79": 3, "60-69": 2, "0-59": 1}
	prev := 0
	for score := 0; score <= 100; score++ {
		stars := StarRating(score, mapping)
		assert.GreaterOrEqual(t, stars, prev, "score %d", score)
		prev = stars
	}
}

func TestStarRatingMalformedMappingFallsBack(t *testing.T) {
	mapping := map[string]int{"excellent": 5, "x-y": 4}
	assert.Equal(t, 5, StarRating(95, mapping))
	assert.Equal(t, 2, StarRating(60, mapping))
}

func TestNextUnlockedOrder(t *testing.T) {
	// advance only from the current module, pass + video both required
	assert.Equal(t, 2, NextUnlockedOrder(1, 1, true, true))
	assert.Equal(t, 1, NextUnlockedOrder(1, 1, true, false))
	assert.Equal(t, 1, NextUnlockedOrder(1, 1, false, true))
	// re-passing an earlier module never advances the cursor
	assert.Equal(t, 3, NextUnlockedOrder(3, 1, true, true))
	// a later module cannot advance out of order
	assert.Equal(t, 1, NextUnlockedOrder(1, 2, true, true))
}
