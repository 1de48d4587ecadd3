package pdfdiff

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/pkg/errors"
)

// WriteJSONReport writes a document comparison result as indented JSON.
func WriteJSONReport(result *DocumentResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal comparison result")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "failed to create report directory for %s", path)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write report %s", path)
	}
	return nil
}

// MergeDiffImages collects the per-page diff PNGs emitted into imageDir
// and merges them into a single PDF, one page per image, in page order.
func MergeDiffImages(imageDir, outputPath string) error {
	pattern := filepath.Join(imageDir, "page_*_diff.png")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return errors.Wrapf(err, "failed to list diff images in %s", imageDir)
	}
	if len(files) == 0 {
		return errors.Errorf("no diff images found in %s", imageDir)
	}
	sortDiffImages(files)

	pdf := gofpdf.New("P", "mm", "A4", "")
	for _, file := range files {
		pdf.AddPage()
		pdf.ImageOptions(file, 10, 10, 190, 0, false, gofpdf.ImageOptions{
			ImageType: "PNG",
			ReadDpi:   true,
		}, 0, "")
	}

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return errors.Wrapf(err, "failed to write merged PDF %s", outputPath)
	}
	return nil
}

// sortDiffImages orders diff image paths by page number. The filenames
// are zero-padded to three digits, so a plain string sort would put page
// 1000 before page 999 in long documents.
func sortDiffImages(files []string) {
	sort.Slice(files, func(i, j int) bool {
		return diffImagePage(files[i]) < diffImagePage(files[j])
	})
}

// diffImagePage parses the page number out of a page_NNN_diff.png path.
// Names that do not fit the pattern sort last.
func diffImagePage(path string) int {
	name := filepath.Base(path)
	name = strings.TrimPrefix(name, "page_")
	name = strings.TrimSuffix(name, "_diff.png")
	page, err := strconv.Atoi(name)
	if err != nil {
		return math.MaxInt
	}
	return page
}
