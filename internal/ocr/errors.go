package ocr

import "errors"

var (
	// ErrEngineFailed indicates the OCR command exited with an error.
	ErrEngineFailed = errors.New("ocr engine failed")

	// ErrTimeout indicates the OCR command exceeded its configured timeout.
	ErrTimeout = errors.New("ocr engine timed out")
)
