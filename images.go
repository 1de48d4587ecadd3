package pdfdiff

import (
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// CompareImageFiles compares two standalone image files as a single-page
// document pair: the visual and color comparators run over the decoded
// pixels, every text-derived category stays empty.
func (c *Comparer) CompareImageFiles(oldPath, newPath string) (*DocumentResult, error) {
	for _, path := range []string{oldPath, newPath} {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, &FileNotFoundError{Path: path}
		}
	}

	oldImg, err := imaging.Open(oldPath)
	if err != nil {
		return nil, &ImageReadError{Path: oldPath, Cause: err}
	}
	newImg, err := imaging.Open(newPath)
	if err != nil {
		return nil, &ImageReadError{Path: newPath, Cause: err}
	}

	oldData := &pageData{rendered: packGenericImage(oldImg), fonts: map[string]FontInfo{}}
	newData := &pageData{rendered: packGenericImage(newImg), fonts: map[string]FontInfo{}}

	page := comparePage(oldData, newData, 1, c.config)
	if c.config.OutputDir != "" {
		if err := c.emitDiffImages(oldData, newData, &page); err != nil {
			return nil, err
		}
	}

	pages := []PageDiff{page}
	return &DocumentResult{
		OldPath: oldPath,
		NewPath: newPath,
		Pages:   pages,
		Summary: summarize(pages),
	}, nil
}

// packGenericImage packs any decoded image into a 0xRRGGBB buffer.
func packGenericImage(img image.Image) *RenderedPage {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	pixels := make([]uint32, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			pixels[y*width+x] = (r>>8)<<16 | (g>>8)<<8 | b>>8
		}
	}

	return &RenderedPage{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}

// toImage converts a packed-pixel buffer back to an RGBA image for
// emission.
func toImage(page *RenderedPage) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, page.Width, page.Height))
	for y := 0; y < page.Height; y++ {
		for x := 0; x < page.Width; x++ {
			img.SetRGBA(x, y, unpackRGBA(page.At(x, y)))
		}
	}
	return img
}

// savePNG writes an image to disk, creating the target directory if
// needed.
func savePNG(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &ImageConversionError{Path: path, Cause: err}
	}
	if err := imaging.Save(img, path); err != nil {
		return &ImageConversionError{Path: path, Cause: err}
	}
	return nil
}
