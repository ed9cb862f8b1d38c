package claims

import (
	"math"
	"strings"

	"campus-find/lostfound-backend/internal/apperrors"
	"campus-find/lostfound-backend/internal/items"
)

// Outcome is the aggregate decision over a claimant's answers.
type Outcome string

const (
	OutcomeStrong  Outcome = "strong_match"
	OutcomePartial Outcome = "partial_match"
	OutcomeWeak    Outcome = "weak_match"
)

// similarityThreshold is the normalized-edit-distance ratio above which two
// long-enough answers count as matching.
const similarityThreshold = 0.8

// shortAnswerLimit: answers at or below this length (in runes, after
// normalization) only match on exact equality.
const shortAnswerLimit = 3

// Evaluation is the result of scoring one claim submission. Pure data; the
// evaluator has no side effects.
type Evaluation struct {
	Answers      []AnswerComparison
	CorrectCount int
	Total        int
	Required     int
	Accuracy     int
	Outcome      Outcome
}

// Evaluate scores submitted answers against an item's stored verification
// questions. The answer count must equal the question count; this is checked
// before any comparison.
func Evaluate(questions []items.Question, submitted []string) (*Evaluation, error) {
	if len(submitted) != len(questions) {
		return nil, apperrors.Validation("answer count mismatch: every verification question needs exactly one answer")
	}

	total := len(questions)
	comparisons := make([]AnswerComparison, 0, total)
	correct := 0

	for i, q := range questions {
		stored := normalizeAnswer(q.Answer)
		given := normalizeAnswer(submitted[i])

		similarity := 0.0
		matched := false
		switch {
		case stored == given:
			similarity = 1
			matched = true
		case len([]rune(stored)) > shortAnswerLimit && len([]rune(given)) > shortAnswerLimit:
			similarity = calculateSimilarity(stored, given)
			matched = similarity > similarityThreshold
		}

		if matched {
			correct++
		}
		comparisons = append(comparisons, AnswerComparison{
			Question:        q.Question,
			CorrectAnswer:   q.Answer,
			SubmittedAnswer: submitted[i],
			Correct:         matched,
			Similarity:      similarity,
		})
	}

	required := requiredCorrect(total)
	outcome := OutcomeWeak
	switch {
	case correct >= required:
		outcome = OutcomeStrong
	case correct >= int(math.Ceil(float64(total)*0.6)):
		outcome = OutcomePartial
	}

	accuracy := 0
	if total > 0 {
		accuracy = int(math.Round(float64(correct) / float64(total) * 100))
	}

	return &Evaluation{
		Answers:      comparisons,
		CorrectCount: correct,
		Total:        total,
		Required:     required,
		Accuracy:     accuracy,
		Outcome:      outcome,
	}, nil
}

// requiredCorrect is the strong-match bar: at least 80% of the questions,
// never fewer than two.
func requiredCorrect(total int) int {
	required := int(math.Ceil(float64(total) * 0.8))
	if required < 2 {
		required = 2
	}
	return required
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// calculateSimilarity returns (maxLen - levenshtein(a, b)) / maxLen in
// [0, 1]. Identical strings short-circuit to 1 without the distance pass.
func calculateSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1
	}
	return float64(maxLen-levenshtein(ra, rb)) / float64(maxLen)
}

// levenshtein is the standard dynamic-programming edit distance with
// unit-cost insert, delete and substitute.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
