package preprocess

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextMethod is one independent way of pulling text out of a PDF.
type TextMethod interface {
	Name() string
	Extract(data []byte) (string, error)
}

// pdfTextMethod reads text row by row, preserving the visual line structure
// of the page. Statements lay holdings out in positional columns, so keeping
// rows intact gives the extractor lines it can split into fields.
type pdfTextMethod struct{}

func (pdfTextMethod) Name() string { return MethodPDFText }

func (pdfTextMethod) Extract(data []byte) (text string, err error) {
	defer recoverParse(&err)

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", ErrDocumentUnreadable
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}

		for _, row := range rows {
			var line strings.Builder
			for _, word := range row.Content {
				if line.Len() > 0 {
					line.WriteByte(' ')
				}
				line.WriteString(word.S)
			}
			if line.Len() > 0 {
				sb.WriteString(line.String())
				sb.WriteByte('\n')
			}
		}
	}

	return sb.String(), nil
}

// plainTextMethod reads text in content-stream order. It loses layout but
// recovers text that row grouping sometimes drops, which is exactly the kind
// of disagreement reconciliation downstream is built to resolve.
type plainTextMethod struct{}

func (plainTextMethod) Name() string { return MethodPlainText }

func (plainTextMethod) Extract(data []byte) (text string, err error) {
	defer recoverParse(&err)

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", ErrDocumentUnreadable
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		sb.WriteString(content)
		sb.WriteByte('\n')
	}

	return sb.String(), nil
}

// recoverParse converts parser panics on malformed PDFs into errors so a
// broken document degrades to a missing method instead of crashing the run.
func recoverParse(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("pdf parse: %v", r)
	}
}
