package pdfdiff

import "math"

// Rect represents a bounding box in page coordinates (origin bottom-left,
// Y increasing upwards, as in PDF user space).
type Rect struct {
	X0 float64 // Left
	Y0 float64 // Bottom
	X1 float64 // Right
	Y1 float64 // Top
}

// Width returns the width of the rectangle.
func (r Rect) Width() float64 {
	return r.X1 - r.X0
}

// Height returns the height of the rectangle.
func (r Rect) Height() float64 {
	return r.Y1 - r.Y0
}

// Union returns the bounding box covering both rectangles.
func (r Rect) Union(other Rect) Rect {
	return Rect{
		X0: math.Min(r.X0, other.X0),
		Y0: math.Min(r.Y0, other.Y0),
		X1: math.Max(r.X1, other.X1),
		Y1: math.Max(r.Y1, other.Y1),
	}
}

// TopLeftDistance returns the Euclidean distance between the top-left
// corners of two rectangles.
func (r Rect) TopLeftDistance(other Rect) float64 {
	return math.Hypot(other.X0-r.X0, other.Y1-r.Y1)
}

// Glyph represents a single rendered character with its position and font
// metadata. Glyphs exist only as input to word aggregation.
type Glyph struct {
	Text     rune
	Box      Rect
	FontName string
	FontSize float64
}

// Word represents an aggregated run of glyphs with a unioned bounding box.
type Word struct {
	Text       string  `json:"text"`
	Box        Rect    `json:"box"`
	PageNumber int     `json:"page_number"`
	FontName   string  `json:"font_name"`
	FontSize   float64 `json:"font_size"`
}

// RenderedPage is a packed-pixel buffer for one page at the configured DPI.
// Pixels are row-major 0xRRGGBB values. Buffers live only for the duration
// of one page comparison.
type RenderedPage struct {
	Width  int
	Height int
	Pixels []uint32
}

// At returns the packed pixel at (x, y). Callers must stay in bounds.
func (p *RenderedPage) At(x, y int) uint32 {
	return p.Pixels[y*p.Width+x]
}

// Area returns the total number of pixels in the page.
func (p *RenderedPage) Area() int64 {
	return int64(p.Width) * int64(p.Height)
}

// DiffType classifies a text or font difference.
type DiffType string

const (
	DiffAdded   DiffType = "added"
	DiffRemoved DiffType = "removed"
	DiffChanged DiffType = "changed"
)

// VisualDiff quantifies pixel-level change between two rendered pages.
type VisualDiff struct {
	// Ratio is totalDiffPixels / unionArea, in [0, 1].
	Ratio float64 `json:"ratio"`
	// DifferenceCount is the number of differing pixels, including every
	// pixel present in only one image when page sizes differ.
	DifferenceCount int64 `json:"difference_count"`
}

// ColorDiff records a perceptually significant color change at a sampled
// coordinate.
type ColorDiff struct {
	X        int     `json:"x"`
	Y        int     `json:"y"`
	OldRGB   uint32  `json:"old_rgb"`
	NewRGB   uint32  `json:"new_rgb"`
	Distance float64 `json:"distance"`
}

// TextDiff records a word present in only one version of a page.
type TextDiff struct {
	Type    DiffType `json:"type"`
	OldText string   `json:"old_text,omitempty"`
	NewText string   `json:"new_text,omitempty"`
	Box     Rect     `json:"box"`
}

// LayoutDiff records a word present in both versions that moved further
// than the layout threshold.
type LayoutDiff struct {
	Text         string  `json:"text"`
	OldBox       Rect    `json:"old_box"`
	NewBox       Rect    `json:"new_box"`
	Displacement float64 `json:"displacement"`
}

// FontInfo describes one font resource on a page.
type FontInfo struct {
	FontName   string `json:"font_name"`
	IsEmbedded bool   `json:"is_embedded"`
	IsOutlined bool   `json:"is_outlined"`
}

// FontDiff records a font substitution, addition, or removal.
type FontDiff struct {
	Type         DiffType  `json:"type"`
	OldFont      *FontInfo `json:"old_font,omitempty"`
	NewFont      *FontInfo `json:"new_font,omitempty"`
	AffectedText string    `json:"affected_text,omitempty"`
}

// PageDiff aggregates all difference categories for one page index.
// It is created once during orchestration and never mutated afterwards.
type PageDiff struct {
	PageNumber     int          `json:"page_number"` // 1-based
	ExistsInOld    bool         `json:"exists_in_old"`
	ExistsInNew    bool         `json:"exists_in_new"`
	Visual         *VisualDiff  `json:"visual,omitempty"`
	ColorDiffs     []ColorDiff  `json:"color_diffs,omitempty"`
	TextDiffs      []TextDiff   `json:"text_diffs,omitempty"`
	LayoutDiffs    []LayoutDiff `json:"layout_diffs,omitempty"`
	FontDiffs      []FontDiff   `json:"font_diffs,omitempty"`
	Notes          []string     `json:"notes,omitempty"`
	HasDifferences bool         `json:"has_differences"`
}

// DocumentSummary contains per-category difference counts for a document
// pair.
type DocumentSummary struct {
	TotalPages           int  `json:"total_pages"`
	PagesWithDifferences int  `json:"pages_with_differences"`
	TextDiffCount        int  `json:"text_diff_count"`
	LayoutDiffCount      int  `json:"layout_diff_count"`
	ColorDiffCount       int  `json:"color_diff_count"`
	FontDiffCount        int  `json:"font_diff_count"`
	HasDifferences       bool `json:"has_differences"`
}

// DocumentResult is the root output of one document-pair comparison.
type DocumentResult struct {
	OldPath string          `json:"old_path,omitempty"`
	NewPath string          `json:"new_path,omitempty"`
	Pages   []PageDiff      `json:"pages"`
	Summary DocumentSummary `json:"summary"`
}

// DocumentInfo describes a single document, used by callers to probe
// inputs before comparing.
type DocumentInfo struct {
	PageCount int
}

// summarize derives the document summary from the assembled page diffs.
func summarize(pages []PageDiff) DocumentSummary {
	summary := DocumentSummary{
		TotalPages: len(pages),
	}

	for _, page := range pages {
		if page.HasDifferences {
			summary.PagesWithDifferences++
		}
		summary.TextDiffCount += len(page.TextDiffs)
		summary.LayoutDiffCount += len(page.LayoutDiffs)
		summary.ColorDiffCount += len(page.ColorDiffs)
		summary.FontDiffCount += len(page.FontDiffs)
	}

	summary.HasDifferences = summary.PagesWithDifferences > 0
	return summary
}
