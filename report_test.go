package pdfdiff

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONReport(t *testing.T) {
	result := &DocumentResult{
		OldPath: "old.pdf",
		NewPath: "new.pdf",
		Pages: []PageDiff{
			{
				PageNumber:  1,
				ExistsInOld: true,
				ExistsInNew: true,
				Visual:      &VisualDiff{Ratio: 0.25, DifferenceCount: 1000},
				TextDiffs: []TextDiff{
					{Type: DiffAdded, NewText: "hello", Box: Rect{X0: 1, Y0: 2, X1: 3, Y1: 4}},
				},
				HasDifferences: true,
			},
		},
	}
	result.Summary = summarize(result.Pages)

	path := filepath.Join(t.TempDir(), "reports", "report.json")
	require.NoError(t, WriteJSONReport(result, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded DocumentResult
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "old.pdf", decoded.OldPath)
	require.Len(t, decoded.Pages, 1)
	assert.Equal(t, 1, decoded.Pages[0].PageNumber)
	require.NotNil(t, decoded.Pages[0].Visual)
	assert.Equal(t, 0.25, decoded.Pages[0].Visual.Ratio)
	require.Len(t, decoded.Pages[0].TextDiffs, 1)
	assert.Equal(t, DiffAdded, decoded.Pages[0].TextDiffs[0].Type)
	assert.Equal(t, "hello", decoded.Pages[0].TextDiffs[0].NewText)
	assert.Equal(t, 1, decoded.Summary.TotalPages)
	assert.True(t, decoded.Summary.HasDifferences)
}

func TestWriteJSONReport_OmitsEmptyCategories(t *testing.T) {
	result := &DocumentResult{
		Pages: []PageDiff{{PageNumber: 1, ExistsInOld: true, ExistsInNew: true}},
	}
	result.Summary = summarize(result.Pages)

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, WriteJSONReport(result, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "color_diffs")
	assert.NotContains(t, string(data), "font_diffs")
	assert.NotContains(t, string(data), "notes")
}

func TestMergeDiffImages_NoImages(t *testing.T) {
	dir := t.TempDir()
	err := MergeDiffImages(dir, filepath.Join(dir, "out.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no diff images")
}

func TestMergeDiffImages(t *testing.T) {
	dir := t.TempDir()

	// Emit two diff images the way the comparer does.
	oldPage := solidPage(40, 40, 0xFFFFFF)
	newPage := solidPage(40, 40, 0x000000)
	for _, page := range []int{1, 2} {
		img := renderVisualDiffImage(oldPage, newPage)
		path := filepath.Join(dir, fmt.Sprintf("page_%03d_diff.png", page))
		require.NoError(t, savePNG(img, path))
	}

	outputPath := filepath.Join(dir, "differences.pdf")
	require.NoError(t, MergeDiffImages(dir, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestSortDiffImages_NumericPageOrder(t *testing.T) {
	// Past page 999 the zero-padded names stop sorting lexicographically:
	// "page_1000" would come before "page_999".
	files := []string{
		"out/page_1000_diff.png",
		"out/page_999_diff.png",
		"out/page_002_diff.png",
		"out/page_010_diff.png",
	}
	sortDiffImages(files)
	assert.Equal(t, []string{
		"out/page_002_diff.png",
		"out/page_010_diff.png",
		"out/page_999_diff.png",
		"out/page_1000_diff.png",
	}, files)
}

func TestDiffImagePage(t *testing.T) {
	assert.Equal(t, 7, diffImagePage("out/page_007_diff.png"))
	assert.Equal(t, 1234, diffImagePage("page_1234_diff.png"))
	assert.Equal(t, math.MaxInt, diffImagePage("unrelated.png"))
}
