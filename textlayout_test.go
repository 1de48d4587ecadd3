package pdfdiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func word(text string, x0, y0 float64) Word {
	return Word{
		Text:       text,
		Box:        Rect{X0: x0, Y0: y0, X1: x0 + 30, Y1: y0 + 10},
		PageNumber: 1,
		FontName:   "Helvetica",
	}
}

func TestMatchWords_GreedyFirstMatch(t *testing.T) {
	// Swapped words both match: old A claims the first unclaimed "A" in
	// the new sequence (index 1), old B claims index 0. First match
	// wins; this is not an optimal alignment.
	oldWords := []Word{word("A", 0, 100), word("B", 50, 100)}
	newWords := []Word{word("B", 0, 100), word("A", 50, 100)}

	matches, matchedNew := matchWords(oldWords, newWords)
	require.Len(t, matches, 2)
	assert.Equal(t, wordMatch{oldIndex: 0, newIndex: 1}, matches[0])
	assert.Equal(t, wordMatch{oldIndex: 1, newIndex: 0}, matches[1])
	assert.True(t, matchedNew[0])
	assert.True(t, matchedNew[1])
}

func TestMatchWords_DuplicateTextClaimsEarliest(t *testing.T) {
	oldWords := []Word{word("x", 0, 100), word("x", 50, 100)}
	newWords := []Word{word("x", 0, 100), word("x", 50, 100)}

	matches, _ := matchWords(oldWords, newWords)
	require.Len(t, matches, 2)
	assert.Equal(t, wordMatch{oldIndex: 0, newIndex: 0}, matches[0])
	assert.Equal(t, wordMatch{oldIndex: 1, newIndex: 1}, matches[1])
}

func TestCompareText_AddedAndRemoved(t *testing.T) {
	oldWords := []Word{word("keep", 0, 100), word("gone", 50, 100)}
	newWords := []Word{word("keep", 0, 100), word("fresh", 50, 100)}

	textDiffs, layoutDiffs := compareText(oldWords, newWords, 5.0)
	require.Len(t, textDiffs, 2)
	assert.Empty(t, layoutDiffs)

	assert.Equal(t, DiffRemoved, textDiffs[0].Type)
	assert.Equal(t, "gone", textDiffs[0].OldText)
	assert.Empty(t, textDiffs[0].NewText)

	assert.Equal(t, DiffAdded, textDiffs[1].Type)
	assert.Equal(t, "fresh", textDiffs[1].NewText)
	assert.Empty(t, textDiffs[1].OldText)
}

func TestCompareText_IdenticalPages(t *testing.T) {
	words := []Word{word("same", 0, 100), word("text", 50, 100)}

	textDiffs, layoutDiffs := compareText(words, words, 5.0)
	assert.Empty(t, textDiffs)
	assert.Empty(t, layoutDiffs)
}

func TestCompareText_DisplacementAboveThreshold(t *testing.T) {
	oldWords := []Word{word("moved", 0, 100)}
	newWords := []Word{word("moved", 30, 140)} // displacement = 50

	textDiffs, layoutDiffs := compareText(oldWords, newWords, 5.0)
	assert.Empty(t, textDiffs)
	require.Len(t, layoutDiffs, 1)

	assert.Equal(t, "moved", layoutDiffs[0].Text)
	assert.InDelta(t, 50.0, layoutDiffs[0].Displacement, 0.001)
	assert.Equal(t, 0.0, layoutDiffs[0].OldBox.X0)
	assert.Equal(t, 30.0, layoutDiffs[0].NewBox.X0)
}

func TestCompareText_DisplacementBelowThreshold(t *testing.T) {
	oldWords := []Word{word("nudged", 0, 100)}
	newWords := []Word{word("nudged", 3, 100)}

	textDiffs, layoutDiffs := compareText(oldWords, newWords, 5.0)
	assert.Empty(t, textDiffs)
	assert.Empty(t, layoutDiffs)
}

func TestCompareText_BlankWordsNeverShiftLayout(t *testing.T) {
	oldWords := []Word{word("  ", 0, 100)}
	newWords := []Word{word("  ", 300, 400)}

	textDiffs, layoutDiffs := compareText(oldWords, newWords, 5.0)
	assert.Empty(t, textDiffs)
	assert.Empty(t, layoutDiffs)
}

func TestCompareText_EmptyInputs(t *testing.T) {
	textDiffs, layoutDiffs := compareText(nil, nil, 5.0)
	assert.Empty(t, textDiffs)
	assert.Empty(t, layoutDiffs)

	newWords := []Word{word("new", 0, 100)}
	textDiffs, _ = compareText(nil, newWords, 5.0)
	require.Len(t, textDiffs, 1)
	assert.Equal(t, DiffAdded, textDiffs[0].Type)
}
