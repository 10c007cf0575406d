package pages

import (
	"context"
	"io"
	"strconv"

	"registryctl/internal/api"
	"registryctl/internal/model"
	"registryctl/internal/paginate"
	"registryctl/internal/table"
)

// Logs is the read-only audit log screen.
type Logs struct {
	env Env

	action   string
	userID   int64
	dateFrom string
	dateTo   string

	Cursor *paginate.Cursor

	seq     fetchSeq
	rows    []model.Log
	page    api.Page[model.Log]
	lastErr error
}

// NewLogs builds the page with an empty filter.
func NewLogs(env Env, limit int) *Logs {
	return &Logs{env: env, Cursor: paginate.NewCursor(1, limit)}
}

// SetAction filters by action and resets to page 1.
func (p *Logs) SetAction(action string) {
	p.action = action
	p.Cursor.SetPage(1)
}

// SetUserID filters by acting user and resets to page 1.
func (p *Logs) SetUserID(id int64) {
	p.userID = id
	p.Cursor.SetPage(1)
}

// SetDateRange filters by timestamp range and resets to page 1.
func (p *Logs) SetDateRange(from, to string) {
	p.dateFrom = from
	p.dateTo = to
	p.Cursor.SetPage(1)
}

// Refresh issues the list request for the current filter and cursor.
func (p *Logs) Refresh(ctx context.Context) error {
	seq := p.seq.next()
	page, err := p.env.Client.ListLogs(ctx, api.LogFilter{
		Action:   p.action,
		UserID:   p.userID,
		DateFrom: p.dateFrom,
		DateTo:   p.dateTo,
	}, p.Cursor)
	if p.seq.stale(seq) {
		return nil
	}
	if err != nil {
		p.lastErr = err
		p.env.notify().Error("Failed to load logs: " + err.Error())
		return err
	}
	p.lastErr = nil
	p.rows = page.Data
	p.page = page
	return nil
}

// Rows returns the last successfully fetched page of logs.
func (p *Logs) Rows() []model.Log { return p.rows }

// Render writes the current page as a table.
func (p *Logs) Render(w io.Writer) error {
	t := table.Table[model.Log]{
		Columns: []table.Column[model.Log]{
			{Key: "timestamp", Header: "Timestamp",
				Accessor: func(l model.Log) string { return l.Timestamp }},
			{Key: "action", Header: "Action",
				Accessor: func(l model.Log) string { return l.Action }},
			{Key: "user", Header: "User",
				Render: func(l model.Log) string {
					if l.User != nil {
						return l.User.Username
					}
					if l.UserID != nil {
						return strconv.FormatInt(*l.UserID, 10)
					}
					return "-"
				}},
			{Key: "details", Header: "Details",
				Accessor: func(l model.Log) string { return l.Details }},
		},
		EmptyMessage: "No log entries found",
		Server: &table.ServerPaging{
			CurrentPage: p.page.CurrentPage,
			TotalPages:  p.page.TotalPages,
			PageNumbers: p.Cursor.PageNumbers(p.page.TotalPages),
		},
	}
	return t.Render(w, p.rows)
}
