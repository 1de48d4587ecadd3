package pdfdiff

import "strings"

// wordMatch pairs a word index in the old page with its counterpart in the
// new page.
type wordMatch struct {
	oldIndex int
	newIndex int
}

// matchWords aligns old and new words with a greedy, order-preserving
// first-match scan: each old word claims the first unclaimed new word with
// exactly equal text. Ties break on earliest position in the new sequence.
// This is deliberately not an optimal alignment; the first match wins.
func matchWords(oldWords, newWords []Word) (matches []wordMatch, matchedNew map[int]bool) {
	matchedNew = make(map[int]bool, len(newWords))

	for i, oldWord := range oldWords {
		for j, newWord := range newWords {
			if matchedNew[j] {
				continue
			}
			if oldWord.Text == newWord.Text {
				matches = append(matches, wordMatch{oldIndex: i, newIndex: j})
				matchedNew[j] = true
				break
			}
		}
	}
	return matches, matchedNew
}

// compareText partitions old and new words into removed text, added text,
// and layout shifts for matched words that moved further than the
// threshold.
func compareText(oldWords, newWords []Word, thresholdLayout float64) ([]TextDiff, []LayoutDiff) {
	matches, matchedNew := matchWords(oldWords, newWords)

	matchedOld := make(map[int]bool, len(matches))
	for _, m := range matches {
		matchedOld[m.oldIndex] = true
	}

	var textDiffs []TextDiff
	for i, word := range oldWords {
		if !matchedOld[i] {
			textDiffs = append(textDiffs, TextDiff{
				Type:    DiffRemoved,
				OldText: word.Text,
				Box:     word.Box,
			})
		}
	}
	for j, word := range newWords {
		if !matchedNew[j] {
			textDiffs = append(textDiffs, TextDiff{
				Type:    DiffAdded,
				NewText: word.Text,
				Box:     word.Box,
			})
		}
	}

	var layoutDiffs []LayoutDiff
	for _, m := range matches {
		oldWord := oldWords[m.oldIndex]
		newWord := newWords[m.newIndex]

		// Pure-whitespace words never produce layout noise.
		if strings.TrimSpace(oldWord.Text) == "" || strings.TrimSpace(newWord.Text) == "" {
			continue
		}

		displacement := oldWord.Box.TopLeftDistance(newWord.Box)
		if displacement > thresholdLayout {
			layoutDiffs = append(layoutDiffs, LayoutDiff{
				Text:         oldWord.Text,
				OldBox:       oldWord.Box,
				NewBox:       newWord.Box,
				Displacement: displacement,
			})
		}
	}

	return textDiffs, layoutDiffs
}
