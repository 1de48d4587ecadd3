package pdfdiff

import (
	"image"
	"image/color"
	"math"
)

// compareVisual computes the pixel-difference ratio and count between two
// rendered pages. Pages of differing dimensions are compared within their
// overlap rectangle; every pixel present in only one image counts as a
// difference. The ratio denominator is the union area (oldArea + newArea −
// overlapArea), not the bounding rectangle, so a corner region that exists
// in neither image is never counted.
func compareVisual(oldPage, newPage *RenderedPage) VisualDiff {
	overlapW := min(oldPage.Width, newPage.Width)
	overlapH := min(oldPage.Height, newPage.Height)

	overlapArea := int64(overlapW) * int64(overlapH)
	unionArea := oldPage.Area() + newPage.Area() - overlapArea
	if unionArea == 0 {
		return VisualDiff{}
	}

	var count int64
	for y := 0; y < overlapH; y++ {
		for x := 0; x < overlapW; x++ {
			if oldPage.At(x, y) != newPage.At(x, y) {
				count = saturatingAdd(count, 1)
			}
		}
	}

	// Regions outside the overlap exist in exactly one image.
	count = saturatingAdd(count, unionArea-overlapArea)

	return VisualDiff{
		Ratio:           float64(count) / float64(unionArea),
		DifferenceCount: count,
	}
}

// maxVisualDiff returns the sentinel diff for a page present in only one
// document: 100% difference over the present page's full pixel count.
func maxVisualDiff(page *RenderedPage) VisualDiff {
	return VisualDiff{
		Ratio:           1.0,
		DifferenceCount: page.Area(),
	}
}

func saturatingAdd(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// renderVisualDiffImage produces the diff image for a page pair: red at
// every differing or one-sided pixel, white where neither image has a
// pixel, the shared pixel value everywhere else.
func renderVisualDiffImage(oldPage, newPage *RenderedPage) *image.RGBA {
	width := max(oldPage.Width, newPage.Width)
	height := max(oldPage.Height, newPage.Height)

	red := color.RGBA{R: 255, A: 255}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			inOld := x < oldPage.Width && y < oldPage.Height
			inNew := x < newPage.Width && y < newPage.Height

			switch {
			case inOld && inNew:
				if oldPage.At(x, y) != newPage.At(x, y) {
					img.SetRGBA(x, y, red)
				} else {
					img.SetRGBA(x, y, unpackRGBA(newPage.At(x, y)))
				}
			case inOld || inNew:
				img.SetRGBA(x, y, red)
			default:
				img.SetRGBA(x, y, white)
			}
		}
	}
	return img
}

func unpackRGBA(packed uint32) color.RGBA {
	return color.RGBA{
		R: uint8(packed >> 16),
		G: uint8(packed >> 8),
		B: uint8(packed),
		A: 255,
	}
}
