package pdfdiff

import "sort"

// compareFonts detects font substitutions, additions, and removals for a
// page pair.
//
// Substitutions are found by scanning, for every old word, for the first
// new word with identical text; when found and the font names differ, a
// Changed diff references both FontInfos and the affected text. This scan
// is independent of the text/layout matcher's pairing: fonts care about
// any same-text occurrence, layout cares about one-to-one correspondence.
// Additions and removals come from the set difference of font-name keys.
func compareFonts(oldFonts, newFonts map[string]FontInfo, oldWords, newWords []Word) []FontDiff {
	var diffs []FontDiff

	for _, oldWord := range oldWords {
		for _, newWord := range newWords {
			if oldWord.Text != newWord.Text {
				continue
			}
			if oldWord.FontName != newWord.FontName {
				diffs = append(diffs, FontDiff{
					Type:         DiffChanged,
					OldFont:      fontInfoFor(oldFonts, oldWord.FontName),
					NewFont:      fontInfoFor(newFonts, newWord.FontName),
					AffectedText: oldWord.Text,
				})
			}
			break
		}
	}

	for _, name := range sortedFontNames(newFonts) {
		if _, ok := oldFonts[name]; !ok {
			info := newFonts[name]
			diffs = append(diffs, FontDiff{
				Type:    DiffAdded,
				NewFont: &info,
			})
		}
	}
	for _, name := range sortedFontNames(oldFonts) {
		if _, ok := newFonts[name]; !ok {
			info := oldFonts[name]
			diffs = append(diffs, FontDiff{
				Type:    DiffRemoved,
				OldFont: &info,
			})
		}
	}

	return diffs
}

// fontInfoFor looks up a font by name, falling back to a bare FontInfo
// when the page's font resources did not include it (a word can carry a
// font name its page map failed to extract).
func fontInfoFor(fonts map[string]FontInfo, name string) *FontInfo {
	if info, ok := fonts[name]; ok {
		return &info
	}
	return &FontInfo{FontName: name}
}

func sortedFontNames(fonts map[string]FontInfo) []string {
	names := make([]string, 0, len(fonts))
	for name := range fonts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
