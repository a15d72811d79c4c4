package preprocess

import "errors"

var (
	// ErrDocumentUnreadable indicates the bytes could not be parsed as a PDF.
	ErrDocumentUnreadable = errors.New("document is not a readable PDF")
)
