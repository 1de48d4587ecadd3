package pdfdiff

import (
	"image"
	"image/color"
	"math"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	// colorSampleStride is the sampling interval in both axes. Sampling
	// every pixel would be prohibitively expensive to store for what the
	// capped result set can express.
	colorSampleStride = 10

	// maxColorDiffs bounds the result set regardless of page complexity.
	maxColorDiffs = 200

	// maxRGBDistance is the Euclidean distance between black and white in
	// 8-bit RGB space: sqrt(3 × 255²).
	maxRGBDistance = 441.6729559300637
)

// compareColors samples the overlap region at a fixed stride and reports
// color changes whose distance exceeds the threshold, sorted by descending
// distance and capped at maxColorDiffs.
func compareColors(oldPage, newPage *RenderedPage, threshold float64, metric ColorMetric) []ColorDiff {
	overlapW := min(oldPage.Width, newPage.Width)
	overlapH := min(oldPage.Height, newPage.Height)

	var diffs []ColorDiff
	for y := 0; y < overlapH; y += colorSampleStride {
		for x := 0; x < overlapW; x += colorSampleStride {
			oldRGB := oldPage.At(x, y)
			newRGB := newPage.At(x, y)
			if oldRGB == newRGB {
				continue
			}

			distance := colorDistance(oldRGB, newRGB, metric)
			if distance <= threshold {
				continue
			}

			diffs = append(diffs, ColorDiff{
				X:        x,
				Y:        y,
				OldRGB:   oldRGB,
				NewRGB:   newRGB,
				Distance: distance,
			})
		}
	}

	sort.Slice(diffs, func(i, j int) bool {
		return diffs[i].Distance > diffs[j].Distance
	})
	if len(diffs) > maxColorDiffs {
		diffs = diffs[:maxColorDiffs]
	}
	return diffs
}

// colorDistance computes the distance between two packed 0xRRGGBB pixels.
// The Lab metric is scaled so both metrics share the [0, 441.67] range and
// a single threshold scale.
func colorDistance(a, b uint32, metric ColorMetric) float64 {
	ar, ag, ab := unpackRGB(a)
	br, bg, bb := unpackRGB(b)

	if metric == ColorMetricLab {
		ca := colorful.Color{R: float64(ar) / 255, G: float64(ag) / 255, B: float64(ab) / 255}
		cb := colorful.Color{R: float64(br) / 255, G: float64(bg) / 255, B: float64(bb) / 255}
		return ca.DistanceLab(cb) * maxRGBDistance
	}

	dr := float64(ar) - float64(br)
	dg := float64(ag) - float64(bg)
	db := float64(ab) - float64(bb)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

func unpackRGB(packed uint32) (r, g, b uint8) {
	return uint8(packed >> 16), uint8(packed >> 8), uint8(packed)
}

// renderColorDiffImage produces the color-diff image: a fixed highlight
// color at every overlap pixel whose distance exceeds the threshold, the
// new pixel value at differing-but-below-threshold pixels, and the
// highlight color over any region present in only one image.
func renderColorDiffImage(oldPage, newPage *RenderedPage, threshold float64, metric ColorMetric) *image.RGBA {
	width := max(oldPage.Width, newPage.Width)
	height := max(oldPage.Height, newPage.Height)

	highlight := color.RGBA{R: 255, G: 0, B: 255, A: 255} // magenta

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			inOld := x < oldPage.Width && y < oldPage.Height
			inNew := x < newPage.Width && y < newPage.Height

			if !inOld || !inNew {
				img.SetRGBA(x, y, highlight)
				continue
			}

			oldRGB := oldPage.At(x, y)
			newRGB := newPage.At(x, y)
			if oldRGB != newRGB && colorDistance(oldRGB, newRGB, metric) > threshold {
				img.SetRGBA(x, y, highlight)
			} else {
				img.SetRGBA(x, y, unpackRGBA(newRGB))
			}
		}
	}
	return img
}
