package preprocess

import (
	"bytes"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// readMetadata extracts document-level metadata. pdfcpu tolerates more
// structural damage than the text parser, so page count survives for
// documents whose text layer is broken.
func readMetadata(data []byte) Metadata {
	var meta Metadata

	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err == nil {
		meta.PageCount = count
	}

	return meta
}
