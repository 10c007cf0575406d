// Package table renders row lists as text tables from column descriptors,
// with server-driven or client-driven paging.
package table

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"registryctl/internal/paginate"
)

// Align positions cell text within its column.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Valuer lets a row type resolve a cell by column key when a column has no
// render or accessor function.
type Valuer interface {
	Value(key string) string
}

// Column describes one table column. Cell values resolve in order: Render,
// Accessor, then a Valuer lookup by Key; otherwise the cell is blank.
type Column[T any] struct {
	Key      string
	Header   string
	Width    int
	Align    Align
	Render   func(T) string
	Accessor func(T) string
	// Hidden columns are filtered out before layout.
	Hidden bool
}

// ServerPaging carries pager state for lists the backend already paginated.
type ServerPaging struct {
	CurrentPage int
	TotalPages  int
	PageNumbers []int
}

// Table renders rows through columns. Exactly one paging mode is active:
// set Server for backend-paginated data, otherwise rows are sliced locally
// with ClientCursor (or shown unpaged when nil).
type Table[T any] struct {
	Columns      []Column[T]
	EmptyMessage string
	Server       *ServerPaging
	ClientCursor *paginate.Cursor
}

// Render writes the table. An empty row list short-circuits to the empty
// message with no table chrome; the pager line appears only when there is
// more than one page.
func (t *Table[T]) Render(w io.Writer, rows []T) error {
	if len(rows) == 0 {
		msg := t.EmptyMessage
		if msg == "" {
			msg = "No data found"
		}
		_, err := fmt.Fprintln(w, msg)
		return err
	}

	display := rows
	currentPage, totalPages := 1, 1
	var pageNumbers []int

	switch {
	case t.Server != nil:
		currentPage = t.Server.CurrentPage
		totalPages = t.Server.TotalPages
		pageNumbers = t.Server.PageNumbers
		if pageNumbers == nil {
			pageNumbers = paginate.PageNumbers(currentPage, totalPages)
		}
	case t.ClientCursor != nil:
		display, currentPage, totalPages = slicePage(rows, t.ClientCursor)
		pageNumbers = paginate.PageNumbers(currentPage, totalPages)
	}

	cols := make([]Column[T], 0, len(t.Columns))
	for _, col := range t.Columns {
		if !col.Hidden {
			cols = append(cols, col)
		}
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	headers := make([]string, len(cols))
	rules := make([]string, len(cols))
	for i, col := range cols {
		headers[i] = pad(col.Header, col.Width, col.Align)
		rules[i] = strings.Repeat("-", max(len(col.Header), 3))
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	fmt.Fprintln(tw, strings.Join(rules, "\t"))

	for _, row := range display {
		cells := make([]string, len(cols))
		for i, col := range cols {
			cells[i] = pad(cellValue(row, col), col.Width, col.Align)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if totalPages > 1 {
		_, err := fmt.Fprintf(w, "Page %d of %d: %s\n", currentPage, totalPages, pagerLine(pageNumbers, currentPage))
		return err
	}
	return nil
}

func cellValue[T any](row T, col Column[T]) string {
	switch {
	case col.Render != nil:
		return col.Render(row)
	case col.Accessor != nil:
		return col.Accessor(row)
	default:
		if v, ok := any(row).(Valuer); ok {
			return v.Value(col.Key)
		}
		return ""
	}
}

func slicePage[T any](rows []T, cur *paginate.Cursor) (display []T, page, totalPages int) {
	limit := cur.Limit()
	totalPages = (len(rows) + limit - 1) / limit
	page = cur.Page()
	if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * limit
	end := min(start+limit, len(rows))
	return rows[start:end], page, totalPages
}

func pagerLine(pageNumbers []int, current int) string {
	parts := make([]string, 0, len(pageNumbers))
	for _, n := range pageNumbers {
		switch {
		case n == paginate.Ellipsis:
			parts = append(parts, "...")
		case n == current:
			parts = append(parts, fmt.Sprintf("[%d]", n))
		default:
			parts = append(parts, fmt.Sprintf("%d", n))
		}
	}
	return strings.Join(parts, " ")
}

func pad(s string, width int, align Align) string {
	if width <= 0 || len(s) >= width {
		return s
	}
	gap := width - len(s)
	switch align {
	case AlignRight:
		return strings.Repeat(" ", gap) + s
	case AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	default:
		return s + strings.Repeat(" ", gap)
	}
}
