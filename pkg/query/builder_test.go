package query

import (
	"reflect"
	"testing"
)

func testProjection() *ProjectionMap {
	return NewProjectionMap("public", "documents", "d").
		Project("id", "ID").
		Project("filename", "Filename").
		Project("status", "Status")
}

func TestBuildSingle(t *testing.T) {
	sql, args := NewBuilder(testProjection()).BuildSingle("ID", "abc")

	want := "SELECT d.id, d.filename, d.status FROM public.documents d WHERE d.id = $1"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"abc"}) {
		t.Errorf("args = %v, want [abc]", args)
	}
}

func TestBuildPageWithConditions(t *testing.T) {
	status := "completed"
	b := NewBuilder(testProjection(), SortField{Field: "Filename"}).
		WhereEquals("Status", &status)

	sql, args := b.BuildPage(2, 10)

	want := "SELECT d.id, d.filename, d.status FROM public.documents d" +
		" WHERE d.status = $1 ORDER BY d.filename ASC LIMIT 10 OFFSET 10"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if len(args) != 1 || *(args[0].(*string)) != "completed" {
		t.Errorf("args = %v, want [completed]", args)
	}
}

func TestBuildCountNoConditions(t *testing.T) {
	sql, args := NewBuilder(testProjection()).BuildCount()

	want := "SELECT COUNT(*) FROM public.documents d"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want empty", args)
	}
}

func TestWhereEqualsNilIgnored(t *testing.T) {
	var status *string
	sql, _ := NewBuilder(testProjection()).WhereEquals("Status", status).BuildCount()

	want := "SELECT COUNT(*) FROM public.documents d"
	if sql != want {
		t.Errorf("nil filter should be ignored, got %q", sql)
	}
}

func TestWhereSearchMultipleFields(t *testing.T) {
	search := "report"
	sql, args := NewBuilder(testProjection()).
		WhereSearch(&search, "Filename", "Status").
		BuildCount()

	want := "SELECT COUNT(*) FROM public.documents d" +
		" WHERE (d.filename ILIKE $1 OR d.status ILIKE $2)"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if len(args) != 2 || args[0] != "%report%" {
		t.Errorf("args = %v", args)
	}
}

func TestParseSortFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []SortField
	}{
		{"empty", "", nil},
		{"single ascending", "Filename", []SortField{{Field: "Filename"}}},
		{
			"mixed",
			"Filename,-SubmittedAt",
			[]SortField{
				{Field: "Filename"},
				{Field: "SubmittedAt", Descending: true},
			},
		},
		{"whitespace", " Filename , -Status ", []SortField{
			{Field: "Filename"},
			{Field: "Status", Descending: true},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSortFields(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSortFields(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
