package quiz

import (
	"fmt"
	"strings"
)

// NormalizeAnswer collapses an answer to a canonical form for
// fingerprinting: trimmed, lowercased, inner whitespace folded to
// single spaces.
func NormalizeAnswer(answer string) string {
	return strings.Join(strings.Fields(strings.ToLower(answer)), " ")
}

// Fingerprint builds the idempotence key for a graded submission:
// question id + normalized answer + question type. Identical
// resubmissions hash to the same key so remote grading is never
// repeated for the same input.
func Fingerprint(questionID int64, answer string, qtype QuestionType) string {
	return fmt.Sprintf("%d:%s:%s", questionID, NormalizeAnswer(answer), qtype)
}
