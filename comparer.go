package pdfdiff

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/pkg/errors"
)

// Comparer compares two PDF documents page by page across five
// dimensions: pixel-level visual change, perceptual color change, textual
// content change, layout shift, and font substitution.
type Comparer struct {
	instance pdfium.Pdfium
	config   Config
}

// NewComparer creates a comparer with the default configuration.
func NewComparer(instance pdfium.Pdfium) *Comparer {
	return &Comparer{
		instance: instance,
		config:   DefaultConfig(),
	}
}

// NewComparerWithConfig creates a comparer with a custom configuration.
func NewComparerWithConfig(instance pdfium.Pdfium, config Config) *Comparer {
	return &Comparer{
		instance: instance,
		config:   config,
	}
}

// Close returns the underlying pdfium instance to its pool. The comparer
// must not be used afterwards. Comparers built without an instance, such
// as image-only ones, close as a no-op.
func (c *Comparer) Close() error {
	if c.instance == nil {
		return nil
	}
	return c.instance.Close()
}

// GetDocumentInfo returns basic information about a single document.
func (c *Comparer) GetDocumentInfo(filePath string) (*DocumentInfo, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, &FileNotFoundError{Path: filePath}
	}

	doc, err := c.instance.OpenDocument(&requests.OpenDocument{
		FilePath: &filePath,
	})
	if err != nil {
		return nil, &DocumentLoadError{Path: filePath, Cause: err}
	}
	defer c.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: doc.Document,
	})

	pageCount, err := c.instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: doc.Document,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get page count")
	}

	return &DocumentInfo{PageCount: pageCount.PageCount}, nil
}

// CompareFiles compares two PDF files and returns the per-page diffs plus
// a document summary. Both documents are closed on every exit path.
func (c *Comparer) CompareFiles(oldPath, newPath string) (*DocumentResult, error) {
	for _, path := range []string{oldPath, newPath} {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, &FileNotFoundError{Path: path}
		}
	}

	oldDoc, err := c.instance.OpenDocument(&requests.OpenDocument{
		FilePath: &oldPath,
	})
	if err != nil {
		return nil, &DocumentLoadError{Path: oldPath, Cause: err}
	}
	defer c.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: oldDoc.Document,
	})

	newDoc, err := c.instance.OpenDocument(&requests.OpenDocument{
		FilePath: &newPath,
	})
	if err != nil {
		return nil, &DocumentLoadError{Path: newPath, Cause: err}
	}
	defer c.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: newDoc.Document,
	})

	result, err := c.compareDocuments(oldDoc.Document, newDoc.Document)
	if err != nil {
		return nil, err
	}

	result.OldPath = oldPath
	result.NewPath = newPath
	return result, nil
}

// CompareBytes compares two in-memory PDF documents.
func (c *Comparer) CompareBytes(oldPDF, newPDF []byte) (*DocumentResult, error) {
	oldDoc, err := c.instance.OpenDocument(&requests.OpenDocument{
		File: &oldPDF,
	})
	if err != nil {
		return nil, &DocumentLoadError{Path: "(old bytes)", Cause: err}
	}
	defer c.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: oldDoc.Document,
	})

	newDoc, err := c.instance.OpenDocument(&requests.OpenDocument{
		File: &newPDF,
	})
	if err != nil {
		return nil, &DocumentLoadError{Path: "(new bytes)", Cause: err}
	}
	defer c.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: newDoc.Document,
	})

	return c.compareDocuments(oldDoc.Document, newDoc.Document)
}

// compareDocuments iterates page indices 0..max(oldCount, newCount)-1 and
// assembles the document-level result.
func (c *Comparer) compareDocuments(oldDoc, newDoc references.FPDF_DOCUMENT) (*DocumentResult, error) {
	oldCount, err := c.instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: oldDoc,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get old page count")
	}

	newCount, err := c.instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: newDoc,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get new page count")
	}

	pageTotal := max(oldCount.PageCount, newCount.PageCount)
	pages := make([]PageDiff, 0, pageTotal)

	for i := 0; i < pageTotal; i++ {
		pageNumber := i + 1

		var oldData, newData *pageData
		if i < oldCount.PageCount {
			oldData, err = c.loadPageData(oldDoc, i)
			if err != nil {
				return nil, &ComparisonError{PageNumber: pageNumber, Cause: err}
			}
		}
		if i < newCount.PageCount {
			newData, err = c.loadPageData(newDoc, i)
			if err != nil {
				return nil, &ComparisonError{PageNumber: pageNumber, Cause: err}
			}
		}

		page := comparePage(oldData, newData, pageNumber, c.config)

		if c.config.OutputDir != "" && oldData != nil && newData != nil {
			if err := c.emitDiffImages(oldData, newData, &page); err != nil {
				return nil, err
			}
		}

		pages = append(pages, page)
	}

	return &DocumentResult{
		Pages:   pages,
		Summary: summarize(pages),
	}, nil
}

// pageData holds everything the comparators need for one page: the pixel
// buffer, the aggregated words, and the font resources.
type pageData struct {
	rendered *RenderedPage
	words    []Word
	fonts    map[string]FontInfo
}

// loadPageData renders a page and extracts its words and fonts. A render
// failure is fatal for the document pair; glyph and font extraction
// failures are logged and treated as empty results for the page.
func (c *Comparer) loadPageData(doc references.FPDF_DOCUMENT, pageIndex int) (*pageData, error) {
	pageResp, err := c.instance.FPDF_LoadPage(&requests.FPDF_LoadPage{
		Document: doc,
		Index:    pageIndex,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load page %d", pageIndex+1)
	}
	defer c.instance.FPDF_ClosePage(&requests.FPDF_ClosePage{
		Page: pageResp.Page,
	})

	rendered, err := renderPage(c.instance, pageResp.Page, c.config.DPI)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to render page %d", pageIndex+1)
	}

	logger := c.config.logger()

	var words []Word
	glyphs, err := extractGlyphs(c.instance, pageResp.Page)
	if err != nil {
		logger.Warn("text extraction failed, treating page as empty",
			"page", pageIndex+1, "error", err)
	} else {
		words = aggregateWords(glyphs, pageIndex+1)
	}

	fonts, err := extractFontResources(c.instance, pageResp.Page, pageIndex+1, logger)
	if err != nil {
		logger.Warn("font extraction failed, treating page as empty",
			"page", pageIndex+1, "error", err)
		fonts = map[string]FontInfo{}
	}

	return &pageData{
		rendered: rendered,
		words:    words,
		fonts:    fonts,
	}, nil
}

// comparePage runs the five comparators for one page index. A page present
// in only one document gets a sentinel 100%-difference visual diff with
// every other category empty.
func comparePage(oldData, newData *pageData, pageNumber int, config Config) PageDiff {
	page := PageDiff{
		PageNumber:  pageNumber,
		ExistsInOld: oldData != nil,
		ExistsInNew: newData != nil,
	}

	switch {
	case oldData == nil && newData == nil:
		// Unreachable under normal iteration over 0..max(counts)-1.
		return page

	case oldData == nil:
		visual := maxVisualDiff(newData.rendered)
		page.Visual = &visual
		page.HasDifferences = true
		return page

	case newData == nil:
		visual := maxVisualDiff(oldData.rendered)
		page.Visual = &visual
		page.HasDifferences = true
		return page
	}

	visual := compareVisual(oldData.rendered, newData.rendered)
	page.Visual = &visual

	page.ColorDiffs = compareColors(oldData.rendered, newData.rendered,
		config.ThresholdColor, config.ColorMetric)
	page.TextDiffs, page.LayoutDiffs = compareText(oldData.words, newData.words,
		config.ThresholdLayout)
	page.FontDiffs = compareFonts(oldData.fonts, newData.fonts,
		oldData.words, newData.words)

	visualExceeded := visual.Ratio > config.ThresholdPixel
	page.HasDifferences = visualExceeded ||
		len(page.ColorDiffs) > 0 ||
		len(page.TextDiffs) > 0 ||
		len(page.LayoutDiffs) > 0 ||
		len(page.FontDiffs) > 0

	// Advisory only: font changes often cascade into pixel, color, and
	// position changes. All differences stay visible.
	if len(page.FontDiffs) > 0 &&
		(visualExceeded || len(page.ColorDiffs) > 0 || len(page.LayoutDiffs) > 0) {
		page.Notes = append(page.Notes,
			fmt.Sprintf("page %d: visual/color/layout differences may cascade from the detected font changes", pageNumber))
	}

	return page
}

// emitDiffImages writes the per-page diff images. Old/new/diff PNGs are
// keyed strictly off the pixel-threshold comparison; the color-diff PNG is
// written whenever any color difference exists.
func (c *Comparer) emitDiffImages(oldData, newData *pageData, page *PageDiff) error {
	if page.Visual != nil && page.Visual.Ratio > c.config.ThresholdPixel {
		if err := savePNG(toImage(oldData.rendered), c.imagePath(page.PageNumber, "old")); err != nil {
			return err
		}
		if err := savePNG(toImage(newData.rendered), c.imagePath(page.PageNumber, "new")); err != nil {
			return err
		}
		diffImg := renderVisualDiffImage(oldData.rendered, newData.rendered)
		if err := savePNG(diffImg, c.imagePath(page.PageNumber, "diff")); err != nil {
			return err
		}
	}

	if len(page.ColorDiffs) > 0 {
		colorImg := renderColorDiffImage(oldData.rendered, newData.rendered,
			c.config.ThresholdColor, c.config.ColorMetric)
		if err := savePNG(colorImg, c.imagePath(page.PageNumber, "color")); err != nil {
			return err
		}
	}

	return nil
}

func (c *Comparer) imagePath(pageNumber int, kind string) string {
	return filepath.Join(c.config.OutputDir, fmt.Sprintf("page_%03d_%s.png", pageNumber, kind))
}
