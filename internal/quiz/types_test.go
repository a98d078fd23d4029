package quiz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseQuestionTypeRoundTrip(t *testing.T) {
	for _, qt := range []QuestionType{
		TypeMultipleChoice, TypeTrueFalse, TypeFillBlank, TypeShortAnswer,
	} {
		parsed, err := ParseQuestionType(qt.String())
		require.NoError(t, err)
		require.Equal(t, qt, parsed)
	}

	_, err := ParseQuestionType("essay")
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestDifficultyWeight(t *testing.T) {
	require.InDelta(t, 0.2, DifficultyBeginner.Weight(), 1e-9)
	require.InDelta(t, 0.4, DifficultyIntermediate.Weight(), 1e-9)
	require.InDelta(t, 0.6, DifficultyAdvanced.Weight(), 1e-9)
}

func TestCorrectOptionIDs(t *testing.T) {
	q := &Question{
		Type: TypeMultipleChoice,
		Options: []Option{
			{ID: 1, Label: "A", Correct: true},
			{ID: 2, Label: "B", Correct: false},
			{ID: 3, Label: "C", Correct: true},
		},
	}
	require.Equal(t, map[int64]bool{1: true, 3: true}, q.CorrectOptionIDs())
}
