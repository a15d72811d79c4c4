package preprocess

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"
)

// cellGap is the horizontal whitespace, in points, that separates one table
// cell from the next. Column gutters in statement layouts are well above
// this; word spacing within a cell is well below it.
const cellGap = 14.0

// minTableRows and minTableColumns bound what qualifies as a table: at least
// two consecutive rows that each split into three or more cells.
const (
	minTableRows    = 2
	minTableColumns = 3
)

// detectTables finds tabular regions by positional layout analysis. Each row
// is split into cells on column gutters; runs of consecutive multi-cell rows
// become tables with the first row as header.
func detectTables(data []byte) (tables []DetectedTable, err error) {
	defer recoverParse(&err)

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, ErrDocumentUnreadable
	}

	tables = make([]DetectedTable, 0)

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}

		var cellRows [][]string
		for _, row := range rows {
			cellRows = append(cellRows, splitCells(row.Content))
		}

		tables = append(tables, collectTables(i, cellRows)...)
	}

	return tables, nil
}

// splitCells merges a row's positioned words into cells, starting a new cell
// whenever the horizontal gap to the previous word exceeds cellGap.
func splitCells(words []pdf.Text) []string {
	var cells []string
	var current strings.Builder
	var prevEnd float64

	for i, word := range words {
		if i > 0 && word.X-prevEnd > cellGap {
			cells = append(cells, strings.TrimSpace(current.String()))
			current.Reset()
		} else if current.Len() > 0 {
			current.WriteByte(' ')
		}

		current.WriteString(word.S)
		prevEnd = word.X + word.W
	}

	if current.Len() > 0 {
		cells = append(cells, strings.TrimSpace(current.String()))
	}

	return cells
}

// collectTables groups consecutive rows with enough cells into tables.
func collectTables(page int, cellRows [][]string) []DetectedTable {
	var tables []DetectedTable
	var block [][]string

	flush := func() {
		if len(block) >= minTableRows {
			tables = append(tables, DetectedTable{
				Page:   page,
				Header: block[0],
				Rows:   block[1:],
				Tool:   MethodLayout,
			})
		}
		block = nil
	}

	for _, cells := range cellRows {
		if len(cells) >= minTableColumns {
			block = append(block, cells)
			continue
		}
		flush()
	}
	flush()

	return tables
}
