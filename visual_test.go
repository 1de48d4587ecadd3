package pdfdiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// solidPage builds a rendered page filled with one packed color.
func solidPage(width, height int, fill uint32) *RenderedPage {
	pixels := make([]uint32, width*height)
	for i := range pixels {
		pixels[i] = fill
	}
	return &RenderedPage{Width: width, Height: height, Pixels: pixels}
}

func TestCompareVisual_IdenticalPages(t *testing.T) {
	oldPage := solidPage(100, 100, 0xFFFFFF)
	newPage := solidPage(100, 100, 0xFFFFFF)

	diff := compareVisual(oldPage, newPage)
	assert.Equal(t, 0.0, diff.Ratio)
	assert.Equal(t, int64(0), diff.DifferenceCount)
}

func TestCompareVisual_SinglePixelChange(t *testing.T) {
	oldPage := solidPage(100, 100, 0xFFFFFF)
	newPage := solidPage(100, 100, 0xFFFFFF)
	newPage.Pixels[42] = 0x000000

	diff := compareVisual(oldPage, newPage)
	assert.Equal(t, int64(1), diff.DifferenceCount)
	assert.InDelta(t, 1.0/10000.0, diff.Ratio, 1e-12)
}

func TestCompareVisual_UnionAreaLaw(t *testing.T) {
	// Old 300×200 and new 200×300 with identical overlap content:
	// overlap = 200×200 = 40000, union = 60000 + 60000 − 40000 = 80000,
	// every non-overlap pixel differs, so ratio = 40000/80000 = 0.5.
	oldPage := solidPage(300, 200, 0xFFFFFF)
	newPage := solidPage(200, 300, 0xFFFFFF)

	diff := compareVisual(oldPage, newPage)
	assert.Equal(t, int64(40000), diff.DifferenceCount)
	assert.InDelta(t, 0.5, diff.Ratio, 1e-12)
}

func TestCompareVisual_RatioBounds(t *testing.T) {
	oldPage := solidPage(50, 50, 0x000000)
	newPage := solidPage(50, 50, 0xFFFFFF)

	diff := compareVisual(oldPage, newPage)
	assert.Equal(t, 1.0, diff.Ratio)
	assert.Equal(t, int64(2500), diff.DifferenceCount)
}

func TestCompareVisual_EmptyPages(t *testing.T) {
	diff := compareVisual(solidPage(0, 0, 0), solidPage(0, 0, 0))
	assert.Equal(t, 0.0, diff.Ratio)
	assert.Equal(t, int64(0), diff.DifferenceCount)
}

func TestMaxVisualDiff(t *testing.T) {
	page := solidPage(20, 30, 0xFFFFFF)

	diff := maxVisualDiff(page)
	assert.Equal(t, 1.0, diff.Ratio)
	assert.Equal(t, int64(600), diff.DifferenceCount)
}

func TestRenderVisualDiffImage(t *testing.T) {
	// Old 3×2, new 2×3: overlap 2×2 identical, one-sided regions red,
	// the (2,2) corner exists in neither image and is white.
	oldPage := solidPage(3, 2, 0x0000FF)
	newPage := solidPage(2, 3, 0x0000FF)

	img := renderVisualDiffImage(oldPage, newPage)
	bounds := img.Bounds()
	require.Equal(t, 3, bounds.Dx())
	require.Equal(t, 3, bounds.Dy())

	// Overlap pixel keeps the shared value.
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0), r>>8)
	assert.Equal(t, uint32(0), g>>8)
	assert.Equal(t, uint32(0xFF), b>>8)

	// One-sided pixels are red.
	r, g, b, _ = img.At(2, 0).RGBA() // only in old
	assert.Equal(t, uint32(0xFF), r>>8)
	assert.Equal(t, uint32(0), g>>8)
	assert.Equal(t, uint32(0), b>>8)

	r, g, b, _ = img.At(0, 2).RGBA() // only in new
	assert.Equal(t, uint32(0xFF), r>>8)
	assert.Equal(t, uint32(0), g>>8)
	assert.Equal(t, uint32(0), b>>8)

	// The absent corner is white.
	r, g, b, _ = img.At(2, 2).RGBA()
	assert.Equal(t, uint32(0xFF), r>>8)
	assert.Equal(t, uint32(0xFF), g>>8)
	assert.Equal(t, uint32(0xFF), b>>8)
}

func TestRenderVisualDiffImage_DifferingPixelIsRed(t *testing.T) {
	oldPage := solidPage(2, 2, 0xFFFFFF)
	newPage := solidPage(2, 2, 0xFFFFFF)
	newPage.Pixels[3] = 0x123456 // (1,1)

	img := renderVisualDiffImage(oldPage, newPage)

	r, g, b, _ := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xFF), r>>8)
	assert.Equal(t, uint32(0), g>>8)
	assert.Equal(t, uint32(0), b>>8)
}

func TestSaturatingAdd(t *testing.T) {
	const maxInt64 = int64(^uint64(0) >> 1)
	assert.Equal(t, int64(3), saturatingAdd(1, 2))
	assert.Equal(t, maxInt64, saturatingAdd(maxInt64, 1))
	assert.Equal(t, maxInt64, saturatingAdd(maxInt64-1, 5))
}
