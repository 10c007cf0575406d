package paginate

import (
	"reflect"
	"testing"
)

func TestPageNumbersWindow(t *testing.T) {
	tests := []struct {
		name       string
		current    int
		totalPages int
		want       []int
	}{
		{"single page", 1, 1, []int{1}},
		{"all pages fit", 3, 5, []int{1, 2, 3, 4, 5}},
		{"near start", 2, 10, []int{1, 2, 3, 4, Ellipsis, 10}},
		{"start boundary", 3, 10, []int{1, 2, 3, 4, Ellipsis, 10}},
		{"middle", 5, 10, []int{1, Ellipsis, 4, 5, 6, Ellipsis, 10}},
		{"near end", 9, 10, []int{1, Ellipsis, 7, 8, 9, 10}},
		{"end boundary", 8, 10, []int{1, Ellipsis, 7, 8, 9, 10}},
		{"last page", 10, 10, []int{1, Ellipsis, 7, 8, 9, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PageNumbers(tt.current, tt.totalPages)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PageNumbers(%d, %d) = %v, want %v", tt.current, tt.totalPages, got, tt.want)
			}
		})
	}
}

func TestPageNumbersDegenerate(t *testing.T) {
	if got := PageNumbers(1, 0); got != nil {
		t.Errorf("zero total pages should yield nil, got %v", got)
	}
	if got := PageNumbers(0, 0); got != nil {
		t.Errorf("zero everything should yield nil, got %v", got)
	}
}

func TestCursorSetLimitResetsPage(t *testing.T) {
	c := NewCursor(4, 10)
	c.SetLimit(25)
	if c.Page() != 1 {
		t.Errorf("SetLimit should reset to page 1, got %d", c.Page())
	}
	if c.Limit() != 25 {
		t.Errorf("limit = %d, want 25", c.Limit())
	}
}

func TestCursorClampsPage(t *testing.T) {
	c := NewCursor(0, 10)
	if c.Page() != 1 {
		t.Errorf("page should clamp to 1, got %d", c.Page())
	}
	c.SetPage(-3)
	if c.Page() != 1 {
		t.Errorf("negative page should clamp to 1, got %d", c.Page())
	}
}

func TestCursorParams(t *testing.T) {
	c := NewCursor(3, 20)
	params := c.Params()
	if params["page"] != "3" || params["limit"] != "20" {
		t.Errorf("unexpected params %v", params)
	}
}
