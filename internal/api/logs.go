package api

import (
	"context"
	"strconv"

	"registryctl/internal/model"
	"registryctl/internal/paginate"
)

// LogFilter narrows audit log queries. Zero values are omitted.
type LogFilter struct {
	Action    string
	UserID    int64
	CourseID  int64
	StudentID int64
	DateFrom  string
	DateTo    string
}

func (f LogFilter) params() map[string]string {
	p := map[string]string{
		"action":   f.Action,
		"dateFrom": f.DateFrom,
		"dateTo":   f.DateTo,
	}
	if f.UserID != 0 {
		p["userId"] = strconv.FormatInt(f.UserID, 10)
	}
	if f.CourseID != 0 {
		p["courseId"] = strconv.FormatInt(f.CourseID, 10)
	}
	if f.StudentID != 0 {
		p["studentId"] = strconv.FormatInt(f.StudentID, 10)
	}
	return p
}

// ListLogs fetches one page of audit records. Logs are append-only and
// read-only from the client.
func (c *Client) ListLogs(ctx context.Context, f LogFilter, cur *paginate.Cursor) (Page[model.Log], error) {
	params := f.params()
	if cur != nil {
		mergeParams(params, cur.Params())
	}
	return getPage[model.Log](ctx, c, "/logs"+buildQuery(params))
}
