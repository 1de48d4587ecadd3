package pdfdiff

import "fmt"

// The comparison engine reports failures through a closed set of error
// types. Locally recoverable failures (glyph extraction, a single corrupt
// font) are logged and absorbed; everything defined here is fatal to the
// document pair it belongs to.

// FileNotFoundError indicates a missing input file.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

// DocumentLoadError indicates a source document that pdfium could not open.
type DocumentLoadError struct {
	Path  string
	Cause error
}

func (e *DocumentLoadError) Error() string {
	return fmt.Sprintf("failed to load document %s: %v", e.Path, e.Cause)
}

func (e *DocumentLoadError) Unwrap() error { return e.Cause }

// ImageReadError indicates an image input that could not be decoded.
type ImageReadError struct {
	Path  string
	Cause error
}

func (e *ImageReadError) Error() string {
	return fmt.Sprintf("failed to read image %s: %v", e.Path, e.Cause)
}

func (e *ImageReadError) Unwrap() error { return e.Cause }

// ImageConversionError indicates a diff image that could not be encoded or
// written.
type ImageConversionError struct {
	Path  string
	Cause error
}

func (e *ImageConversionError) Error() string {
	return fmt.Sprintf("failed to write image %s: %v", e.Path, e.Cause)
}

func (e *ImageConversionError) Unwrap() error { return e.Cause }

// FontExtractionError indicates a single corrupt font resource. It is
// logged and the font skipped; it never fails a page.
type FontExtractionError struct {
	PageNumber int
	FontName   string
	Cause      error
}

func (e *FontExtractionError) Error() string {
	return fmt.Sprintf("failed to extract font %q on page %d: %v", e.FontName, e.PageNumber, e.Cause)
}

func (e *FontExtractionError) Unwrap() error { return e.Cause }

// ComparisonError wraps any unexpected failure during a comparison pass.
type ComparisonError struct {
	PageNumber int
	Cause      error
}

func (e *ComparisonError) Error() string {
	if e.PageNumber > 0 {
		return fmt.Sprintf("comparison failed on page %d: %v", e.PageNumber, e.Cause)
	}
	return fmt.Sprintf("comparison failed: %v", e.Cause)
}

func (e *ComparisonError) Unwrap() error { return e.Cause }
