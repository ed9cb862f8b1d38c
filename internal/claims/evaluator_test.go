package claims

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-find/lostfound-backend/internal/apperrors"
	"campus-find/lostfound-backend/internal/items"
)

func questionSet(answers ...string) []items.Question {
	qs := make([]items.Question, 0, len(answers))
	for _, a := range answers {
		qs = append(qs, items.Question{Question: "q: " + a, Answer: a})
	}
	return qs
}

func TestEvaluateExactMatchIgnoresCaseAndWhitespace(t *testing.T) {
	eval, err := Evaluate(questionSet("Blue Leather", "42"), []string{"  blue leather ", "42"})
	require.NoError(t, err)

	assert.Equal(t, 2, eval.CorrectCount)
	assert.Equal(t, OutcomeStrong, eval.Outcome)
	assert.Equal(t, 100, eval.Accuracy)
	for _, a := range eval.Answers {
		assert.True(t, a.Correct)
		assert.Equal(t, 1.0, a.Similarity)
	}
}

func TestEvaluateShortAnswersRequireExactEquality(t *testing.T) {
	// "abc" vs "abd" are one edit apart (similarity 0.67), but at three
	// runes only exact equality counts.
	eval, err := Evaluate(questionSet("abc"), []string{"abd"})
	require.NoError(t, err)

	assert.Equal(t, 0, eval.CorrectCount)
	assert.False(t, eval.Answers[0].Correct)
}

func TestEvaluateFuzzyMatchAboveThreshold(t *testing.T) {
	// "samsung" vs "samsnug": distance 2 over length 7, similarity ~0.714,
	// below the bar. "blackberry" vs "blackbery": distance 1 over 10,
	// similarity 0.9, above it.
	eval, err := Evaluate(questionSet("samsung", "blackberry"), []string{"samsnug", "blackbery"})
	require.NoError(t, err)

	assert.False(t, eval.Answers[0].Correct)
	assert.True(t, eval.Answers[1].Correct)
	assert.InDelta(t, 0.9, eval.Answers[1].Similarity, 0.0001)
}

func TestEvaluateAnswerCountMismatch(t *testing.T) {
	_, err := Evaluate(questionSet("one", "two"), []string{"one"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.From(err).Code)
}

func TestEvaluateOutcomes(t *testing.T) {
	tests := []struct {
		name      string
		submitted []string
		outcome   Outcome
	}{
		{"all five correct", []string{"alpha", "bravo", "charlie", "delta", "echo"}, OutcomeStrong},
		{"four of five correct", []string{"alpha", "bravo", "charlie", "delta", "wrong"}, OutcomeStrong},
		{"three of five correct", []string{"alpha", "bravo", "charlie", "nope", "wrong"}, OutcomePartial},
		{"two of five correct", []string{"alpha", "bravo", "xx", "nope", "wrong"}, OutcomeWeak},
	}

	questions := questionSet("alpha", "bravo", "charlie", "delta", "echo")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval, err := Evaluate(questions, tt.submitted)
			require.NoError(t, err)
			assert.Equal(t, tt.outcome, eval.Outcome)
		})
	}
}

func TestEvaluateAccuracyRounding(t *testing.T) {
	eval, err := Evaluate(questionSet("alpha", "bravo", "charlie"), []string{"alpha", "nope", "wrong"})
	require.NoError(t, err)

	assert.Equal(t, 1, eval.CorrectCount)
	assert.Equal(t, 33, eval.Accuracy)
}

func TestRequiredCorrect(t *testing.T) {
	tests := []struct {
		total    int
		required int
	}{
		{1, 2},
		{2, 2},
		{3, 3},
		{4, 4},
		{5, 4},
		{10, 8},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.required, requiredCorrect(tt.total), "total=%d", tt.total)
	}
}

func TestCalculateSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, calculateSimilarity("same", "same"))
	assert.Equal(t, 0.0, calculateSimilarity("abcd", "wxyz"))
	assert.InDelta(t, 0.8, calculateSimilarity("water", "wader"), 0.0001)
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"résumé", "resume", 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, levenshtein([]rune(tt.a), []rune(tt.b)), "%q vs %q", tt.a, tt.b)
	}
}
