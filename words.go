package pdfdiff

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// aggregateWords clusters position-tagged glyphs into words in reading
// order: lines top-to-bottom, words left-to-right within a line.
func aggregateWords(glyphs []Glyph, pageNumber int) []Word {
	if len(glyphs) == 0 {
		return nil
	}

	// Reading-order sort: top of page first (higher Y in PDF coordinates),
	// then left-to-right.
	sorted := make([]Glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Box.Y0 != sorted[j].Box.Y0 {
			return sorted[i].Box.Y0 > sorted[j].Box.Y0
		}
		return sorted[i].Box.X0 < sorted[j].Box.X0
	})

	var words []Word
	for _, line := range clusterLines(sorted) {
		words = append(words, splitLineIntoWords(line, pageNumber)...)
	}
	return words
}

// clusterLines walks glyphs in reading order and groups them into lines.
// A new line starts when a glyph's Y deviates from the current line's
// reference Y by more than an adaptive tolerance, so small and large text
// cluster correctly without a fixed threshold.
func clusterLines(glyphs []Glyph) [][]Glyph {
	var lines [][]Glyph
	var current []Glyph
	var refY float64

	for _, glyph := range glyphs {
		tolerance := math.Max(1.0, math.Max(glyph.Box.Height(), glyph.FontSize)*0.6)

		if len(current) == 0 {
			current = append(current, glyph)
			refY = glyph.Box.Y0
			continue
		}

		if math.Abs(glyph.Box.Y0-refY) > tolerance {
			lines = append(lines, current)
			current = []Glyph{glyph}
			refY = glyph.Box.Y0
			continue
		}

		current = append(current, glyph)
	}

	if len(current) > 0 {
		lines = append(lines, current)
	}
	return lines
}

// splitLineIntoWords splits one line of glyphs into words. Word boundaries
// are whitespace glyphs (consumed and discarded), horizontal gaps larger
// than an adaptive threshold, and font-name changes.
func splitLineIntoWords(line []Glyph, pageNumber int) []Word {
	sort.SliceStable(line, func(i, j int) bool {
		return line[i].Box.X0 < line[j].Box.X0
	})

	var words []Word
	var current []Glyph
	var box Rect

	flush := func() {
		if len(current) == 0 {
			return
		}
		var text strings.Builder
		for _, glyph := range current {
			text.WriteRune(glyph.Text)
		}
		trimmed := strings.TrimSpace(text.String())
		if trimmed != "" {
			words = append(words, Word{
				Text:       trimmed,
				Box:        box,
				PageNumber: pageNumber,
				FontName:   current[0].FontName,
				FontSize:   current[0].FontSize,
			})
		}
		current = nil
	}

	for _, glyph := range line {
		if unicode.IsSpace(glyph.Text) {
			flush()
			continue
		}

		if len(current) > 0 {
			prev := current[len(current)-1]
			gap := glyph.Box.X0 - prev.Box.X1
			maxGap := math.Max(1.0, glyph.FontSize) * 0.35

			if gap > maxGap || glyph.FontName != prev.FontName {
				flush()
			}
		}

		if len(current) == 0 {
			box = glyph.Box
		} else {
			box = box.Union(glyph.Box)
		}
		current = append(current, glyph)
	}
	flush()

	return words
}
