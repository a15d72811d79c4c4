package preprocess

import (
	"reflect"
	"testing"

	"github.com/ledongthuc/pdf"
)

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"apostrophe grouping", "19'510'599", "19510599"},
		{"comma grouping with decimal", "1,234.56", "1234.56"},
		{"dot grouping with comma decimal", "1.234,56", "1234.56"},
		{"space grouping", "1 234 567.89", "1234567.89"},
		{"plain decimal", "5002.00", "5002.00"},
		{"lone comma decimal", "99,21", "99.21"},
		{"lone comma grouping", "19,510", "19510"},
		{"repeated dots are grouping", "19.510.599", "19510599"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeAmount(tt.raw)
			if !ok {
				t.Fatalf("NormalizeAmount(%q) rejected", tt.raw)
			}
			if got != tt.want {
				t.Errorf("NormalizeAmount(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestScanEntities(t *testing.T) {
	texts := []RawText{
		{Method: MethodPDFText, Text: "Portfolio Value 19'510'599 USD as of 31.12.2025\nXS2530201644 Bond 4.25% THE AND"},
	}

	entities := ScanEntities(texts)

	byType := map[string][]Entity{}
	for _, e := range entities {
		byType[e.Type] = append(byType[e.Type], e)
	}

	if len(byType[EntityISIN]) != 1 || byType[EntityISIN][0].Raw != "XS2530201644" {
		t.Errorf("ISIN entities = %+v, want one XS2530201644", byType[EntityISIN])
	}

	if len(byType[EntityCurrency]) != 1 || byType[EntityCurrency][0].Normalized != "USD" {
		t.Errorf("currency entities = %+v, want only USD", byType[EntityCurrency])
	}

	foundMoney := false
	for _, e := range byType[EntityMoney] {
		if e.Normalized == "19510599" {
			foundMoney = true
		}
	}
	if !foundMoney {
		t.Errorf("money entities = %+v, want normalized 19510599", byType[EntityMoney])
	}

	if len(byType[EntityPercentage]) != 1 || byType[EntityPercentage][0].Normalized != "4.25" {
		t.Errorf("percentage entities = %+v, want 4.25", byType[EntityPercentage])
	}

	if len(byType[EntityDate]) == 0 || byType[EntityDate][0].Raw != "31.12.2025" {
		t.Errorf("date entities = %+v, want 31.12.2025", byType[EntityDate])
	}

	for _, e := range entities {
		if e.Method != MethodPDFText {
			t.Errorf("entity %+v carries method %q, want %q", e, e.Method, MethodPDFText)
		}
	}
}

func TestScanEntitiesRejectsNonCurrencyWords(t *testing.T) {
	entities := ScanEntities([]RawText{{Method: MethodPlainText, Text: "THE FUND AND ITS NAV"}})

	for _, e := range entities {
		if e.Type == EntityCurrency {
			t.Errorf("unexpected currency entity %+v", e)
		}
	}
}

func TestSplitCells(t *testing.T) {
	words := []pdf.Text{
		{S: "Government", X: 10, W: 50},
		{S: "Bond", X: 63, W: 20},
		{S: "5'002.00", X: 200, W: 40},
		{S: "USD", X: 300, W: 20},
	}

	got := splitCells(words)
	want := []string{"Government Bond", "5'002.00", "USD"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitCells() = %v, want %v", got, want)
	}
}

func TestCollectTables(t *testing.T) {
	cellRows := [][]string{
		{"Portfolio Statement"},
		{"ISIN", "Name", "Quantity", "Valuation"},
		{"XS2530201644", "Bond A", "5000", "5002.00"},
		{"US0378331005", "Apple Inc", "100", "19510.00"},
		{"End of holdings"},
		{"Lonely", "Row", "Here"},
	}

	tables := collectTables(3, cellRows)

	if len(tables) != 1 {
		t.Fatalf("collectTables() returned %d tables, want 1", len(tables))
	}

	table := tables[0]
	if table.Page != 3 {
		t.Errorf("Page = %d, want 3", table.Page)
	}
	if table.Tool != MethodLayout {
		t.Errorf("Tool = %q, want %q", table.Tool, MethodLayout)
	}
	if !reflect.DeepEqual(table.Header, []string{"ISIN", "Name", "Quantity", "Valuation"}) {
		t.Errorf("Header = %v", table.Header)
	}
	if len(table.Rows) != 2 {
		t.Errorf("Rows = %v, want 2 data rows", table.Rows)
	}
}

func TestResultHasText(t *testing.T) {
	empty := &Result{}
	if empty.HasText() {
		t.Error("empty result reports text")
	}

	withText := &Result{RawTexts: []RawText{{Method: MethodPDFText, Text: "holdings"}}}
	if !withText.HasText() {
		t.Error("result with text reports none")
	}
	if got := withText.Text(MethodPDFText); got != "holdings" {
		t.Errorf("Text(pdftext) = %q", got)
	}
	if got := withText.Text(MethodOCR); got != "" {
		t.Errorf("Text(ocr) = %q, want empty", got)
	}
}

func TestAddOCRTextRescansEntities(t *testing.T) {
	r := &Result{}
	r.AddOCRText("Holdings total 1,234.56 CHF")

	if !r.HasText() {
		t.Fatal("OCR text not recorded")
	}

	foundCurrency := false
	for _, e := range r.Entities {
		if e.Type == EntityCurrency && e.Normalized == "CHF" && e.Method == MethodOCR {
			foundCurrency = true
		}
	}
	if !foundCurrency {
		t.Errorf("entities = %+v, want CHF from ocr", r.Entities)
	}
}
