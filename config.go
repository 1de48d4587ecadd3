package pdfdiff

import "log/slog"

// ColorMetric selects the distance function used by the color comparator.
type ColorMetric int

const (
	// ColorMetricRGB is the Euclidean distance in 8-bit RGB space,
	// range [0, 441.67].
	ColorMetricRGB ColorMetric = iota
	// ColorMetricLab is the Euclidean distance in CIE Lab space, scaled to
	// the same [0, 441.67] range so thresholds stay comparable.
	ColorMetricLab
)

// Config controls comparison behavior.
type Config struct {
	// ThresholdPixel is the visual-diff ratio floor (0.0-1.0) below which
	// no visual difference is reported and no diff images are written.
	ThresholdPixel float64

	// ThresholdLayout is the displacement floor in page units below which
	// a moved word is not reported as a layout shift.
	ThresholdLayout float64

	// ThresholdColor is the color-distance floor (0-441.67) below which a
	// sampled color change is ignored.
	ThresholdColor float64

	// DPI is the rendering resolution passed to pdfium.
	DPI int

	// ColorMetric selects the color distance function (default: RGB).
	ColorMetric ColorMetric

	// OutputDir, when non-empty, enables writing per-page diff images
	// (old/new/diff PNGs above ThresholdPixel, plus a color-diff PNG when
	// any color difference exists).
	OutputDir string

	// Logger receives warnings for recovered failures (glyph extraction,
	// skipped fonts). Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the default comparison configuration.
func DefaultConfig() Config {
	return Config{
		ThresholdPixel:  0.01,
		ThresholdLayout: 5.0,
		ThresholdColor:  30.0,
		DPI:             150,
		ColorMetric:     ColorMetricRGB,
	}
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
