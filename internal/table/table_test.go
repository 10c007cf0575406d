package table

import (
	"strings"
	"testing"

	"registryctl/internal/paginate"
)

type item struct {
	Name  string
	Count int
}

func (i item) Value(key string) string {
	if key == "name" {
		return i.Name
	}
	return ""
}

func render[T any](t *testing.T, tbl Table[T], rows []T) string {
	t.Helper()
	var sb strings.Builder
	if err := tbl.Render(&sb, rows); err != nil {
		t.Fatal(err)
	}
	return sb.String()
}

func TestEmptyRowsShowOnlyMessage(t *testing.T) {
	tbl := Table[item]{
		Columns:      []Column[item]{{Key: "name", Header: "Name"}},
		EmptyMessage: "No items found",
	}
	out := render(t, tbl, nil)
	if out != "No items found\n" {
		t.Errorf("output = %q, want just the empty message", out)
	}
	if strings.Contains(out, "Name") {
		t.Error("empty table should not print headers")
	}
}

func TestDefaultEmptyMessage(t *testing.T) {
	tbl := Table[item]{Columns: []Column[item]{{Key: "name", Header: "Name"}}}
	if out := render(t, tbl, nil); out != "No data found\n" {
		t.Errorf("output = %q", out)
	}
}

func TestCellResolutionOrder(t *testing.T) {
	rows := []item{{Name: "widget", Count: 3}}
	tbl := Table[item]{
		Columns: []Column[item]{
			{Key: "name", Header: "A",
				Render:   func(item) string { return "rendered" },
				Accessor: func(i item) string { return "accessed" }},
			{Key: "name", Header: "B",
				Accessor: func(i item) string { return "accessed" }},
			{Key: "name", Header: "C"}, // falls through to Valuer
			{Key: "missing", Header: "D"},
		},
	}
	out := render(t, tbl, rows)
	if !strings.Contains(out, "rendered") {
		t.Error("Render should win over Accessor")
	}
	if !strings.Contains(out, "accessed") {
		t.Error("Accessor should be used when Render is nil")
	}
	if !strings.Contains(out, "widget") {
		t.Error("Valuer should be consulted when both funcs are nil")
	}
}

func TestHiddenColumnsSkipped(t *testing.T) {
	rows := []item{{Name: "x"}}
	tbl := Table[item]{
		Columns: []Column[item]{
			{Key: "name", Header: "Visible", Accessor: func(i item) string { return i.Name }},
			{Key: "secret", Header: "Secret", Hidden: true, Accessor: func(item) string { return "hidden-value" }},
		},
	}
	out := render(t, tbl, rows)
	if strings.Contains(out, "Secret") || strings.Contains(out, "hidden-value") {
		t.Errorf("hidden column leaked into output:\n%s", out)
	}
}

func TestPagerOnlyWhenMultiplePages(t *testing.T) {
	rows := []item{{Name: "a"}}
	single := Table[item]{
		Columns: []Column[item]{{Key: "name", Header: "Name", Accessor: func(i item) string { return i.Name }}},
		Server:  &ServerPaging{CurrentPage: 1, TotalPages: 1},
	}
	if out := render(t, single, rows); strings.Contains(out, "Page 1 of") {
		t.Error("single-page table should not print a pager line")
	}

	multi := single
	multi.Server = &ServerPaging{CurrentPage: 5, TotalPages: 10}
	out := render(t, multi, rows)
	if !strings.Contains(out, "Page 5 of 10: 1 ... 4 [5] 6 ... 10") {
		t.Errorf("pager line missing or wrong:\n%s", out)
	}
}

func TestClientPagingSlicesRows(t *testing.T) {
	rows := make([]item, 25)
	for i := range rows {
		rows[i] = item{Name: "row" + strings.Repeat("x", i)}
	}
	tbl := Table[item]{
		Columns:      []Column[item]{{Key: "name", Header: "Name", Accessor: func(i item) string { return i.Name }}},
		ClientCursor: paginate.NewCursor(3, 10),
	}
	out := render(t, tbl, rows)
	// Page 3 of 25 rows at limit 10 holds rows 21-25.
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// header + rule + 5 rows + pager
	if len(lines) != 8 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[len(lines)-1], "Page 3 of 3") {
		t.Errorf("pager = %q", lines[len(lines)-1])
	}
}
