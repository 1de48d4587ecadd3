package pdfdiff

import (
	"image"
	"log/slog"
	"strings"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/pkg/errors"
)

// renderPage rasterizes one page at the given DPI into a packed-pixel
// buffer.
func renderPage(instance pdfium.Pdfium, page references.FPDF_PAGE, dpi int) (*RenderedPage, error) {
	rendered, err := instance.RenderPageInDPI(&requests.RenderPageInDPI{
		Page: requests.Page{
			ByReference: &page,
		},
		DPI: dpi,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to render page")
	}
	// packImage copies the pixels, so the pdfium-side bitmap can be
	// released as soon as this render is packed. Without the Cleanup call
	// the webassembly runtime keeps one bitmap alive per rendered page.
	defer rendered.Cleanup()

	return packImage(rendered.Result.Image), nil
}

// packImage converts an RGBA image into a row-major 0xRRGGBB buffer.
func packImage(img *image.RGBA) *RenderedPage {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	pixels := make([]uint32, width*height)
	for y := 0; y < height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+width*4]
		for x := 0; x < width; x++ {
			r := uint32(row[x*4])
			g := uint32(row[x*4+1])
			b := uint32(row[x*4+2])
			pixels[y*width+x] = r<<16 | g<<8 | b
		}
	}

	return &RenderedPage{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}

// extractGlyphs extracts every character placement on a page with its
// bounding box and font metadata, in page coordinates.
func extractGlyphs(instance pdfium.Pdfium, page references.FPDF_PAGE) ([]Glyph, error) {
	textPage, err := instance.FPDFText_LoadPage(&requests.FPDFText_LoadPage{
		Page: requests.Page{
			ByReference: &page,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load text page")
	}
	defer instance.FPDFText_ClosePage(&requests.FPDFText_ClosePage{
		TextPage: textPage.TextPage,
	})

	charCount, err := instance.FPDFText_CountChars(&requests.FPDFText_CountChars{
		TextPage: textPage.TextPage,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to count characters")
	}

	glyphs := make([]Glyph, 0, charCount.Count)
	for i := 0; i < charCount.Count; i++ {
		unicodeRes, err := instance.FPDFText_GetUnicode(&requests.FPDFText_GetUnicode{
			TextPage: textPage.TextPage,
			Index:    i,
		})
		if err != nil || unicodeRes.Unicode == 0 {
			continue
		}

		charBox, err := instance.FPDFText_GetCharBox(&requests.FPDFText_GetCharBox{
			TextPage: textPage.TextPage,
			Index:    i,
		})
		if err != nil {
			continue
		}

		fontSizeVal := 12.0 // Default
		fontSize, err := instance.FPDFText_GetFontSize(&requests.FPDFText_GetFontSize{
			TextPage: textPage.TextPage,
			Index:    i,
		})
		if err == nil {
			fontSizeVal = fontSize.FontSize
		}

		fontNameVal := ""
		fontInfo, err := instance.FPDFText_GetFontInfo(&requests.FPDFText_GetFontInfo{
			TextPage: textPage.TextPage,
			Index:    i,
		})
		if err == nil {
			fontNameVal = fontInfo.FontName
		}

		glyphs = append(glyphs, Glyph{
			Text: rune(unicodeRes.Unicode),
			Box: Rect{
				X0: charBox.Left,
				Y0: charBox.Bottom,
				X1: charBox.Right,
				Y1: charBox.Top,
			},
			FontName: fontNameVal,
			FontSize: fontSizeVal,
		})
	}

	return glyphs, nil
}

// extractFontResources builds the map of font resources used on a page. A
// failure on a single font is logged and that font skipped; it never fails
// the page.
func extractFontResources(instance pdfium.Pdfium, page references.FPDF_PAGE, pageNumber int, logger *slog.Logger) (map[string]FontInfo, error) {
	textPage, err := instance.FPDFText_LoadPage(&requests.FPDFText_LoadPage{
		Page: requests.Page{
			ByReference: &page,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load text page")
	}
	defer instance.FPDFText_ClosePage(&requests.FPDFText_ClosePage{
		TextPage: textPage.TextPage,
	})

	charCount, err := instance.FPDFText_CountChars(&requests.FPDFText_CountChars{
		TextPage: textPage.TextPage,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to count characters")
	}

	fonts := make(map[string]FontInfo)
	for i := 0; i < charCount.Count; i++ {
		fontInfo, err := instance.FPDFText_GetFontInfo(&requests.FPDFText_GetFontInfo{
			TextPage: textPage.TextPage,
			Index:    i,
		})
		if err != nil {
			fontErr := &FontExtractionError{PageNumber: pageNumber, Cause: err}
			logger.Warn("skipping unreadable font resource", "page", pageNumber, "error", fontErr)
			continue
		}

		name := fontInfo.FontName
		if _, seen := fonts[name]; seen {
			continue
		}

		fonts[name] = FontInfo{
			FontName:   name,
			IsEmbedded: hasSubsetTag(name),
			IsOutlined: isOutlinedFont(name),
		}
	}

	return fonts, nil
}

// hasSubsetTag reports whether a font name carries the six-letter subset
// prefix ("ABCDEF+Name") that marks an embedded font subset.
func hasSubsetTag(name string) bool {
	if len(name) < 8 || name[6] != '+' {
		return false
	}
	for _, r := range name[:6] {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// isOutlinedFont reports whether a font looks like a bitmap/Type-3 style
// font. Type-3 fonts surface through the text API with an empty name.
func isOutlinedFont(name string) bool {
	return name == "" || strings.Contains(strings.ToLower(name), "outline")
}
