package pages

import (
	"context"
	"fmt"
	"io"

	"registryctl/internal/api"
	"registryctl/internal/model"
	"registryctl/internal/paginate"
	"registryctl/internal/table"
)

// Teachers is the teacher list screen with login-access management.
type Teachers struct {
	env Env

	searchInput string
	search      string
	department  string

	Cursor *paginate.Cursor

	seq     fetchSeq
	rows    []model.Teacher
	page    api.Page[model.Teacher]
	lastErr error
}

// NewTeachers builds the page with an empty filter.
func NewTeachers(env Env, limit int) *Teachers {
	return &Teachers{env: env, Cursor: paginate.NewCursor(1, limit)}
}

// SetSearchInput records typed text without querying.
func (p *Teachers) SetSearchInput(s string) { p.searchInput = s }

// CommitSearch applies the typed text and resets to page 1.
func (p *Teachers) CommitSearch() {
	p.search = p.searchInput
	p.Cursor.SetPage(1)
}

// SetDepartment filters by department and resets to page 1.
func (p *Teachers) SetDepartment(dept string) {
	p.department = dept
	p.Cursor.SetPage(1)
}

// Refresh issues the list request for the current filter and cursor.
func (p *Teachers) Refresh(ctx context.Context) error {
	seq := p.seq.next()
	page, err := p.env.Client.ListTeachers(ctx, api.TeacherFilter{
		Name:       p.search,
		Department: p.department,
	}, p.Cursor)
	if p.seq.stale(seq) {
		return nil
	}
	if err != nil {
		p.lastErr = err
		p.env.notify().Error("Failed to load teachers: " + err.Error())
		return err
	}
	p.lastErr = nil
	p.rows = page.Data
	p.page = page
	return nil
}

// Rows returns the last successfully fetched page of teachers.
func (p *Teachers) Rows() []model.Teacher { return p.rows }

// Total returns the backend's total row count for the current filter.
func (p *Teachers) Total() int64 { return p.page.Total }

// Create validates, submits and refetches.
func (p *Teachers) Create(ctx context.Context, form model.TeacherForm) error {
	created, err := p.env.Client.CreateTeacher(ctx, form)
	if err != nil {
		p.env.notify().Error("Failed to create teacher: " + err.Error())
		return err
	}
	p.env.notify().Success("Created teacher " + created.FullName())
	return p.Refresh(ctx)
}

// Update validates, submits and refetches.
func (p *Teachers) Update(ctx context.Context, id int64, form model.TeacherForm) error {
	updated, err := p.env.Client.UpdateTeacher(ctx, id, form)
	if err != nil {
		p.env.notify().Error("Failed to update teacher: " + err.Error())
		return err
	}
	p.env.notify().Success("Updated teacher " + updated.FullName())
	return p.Refresh(ctx)
}

// Delete removes a teacher and refetches.
func (p *Teachers) Delete(ctx context.Context, id int64) error {
	if err := p.env.Client.DeleteTeacher(ctx, id); err != nil {
		p.env.notify().Error("Failed to delete teacher: " + err.Error())
		return err
	}
	p.env.notify().Success("Deleted teacher")
	return p.Refresh(ctx)
}

// AssignUser attaches a login account to a teacher and refetches. Login
// access is independent of the teacher record lifecycle.
func (p *Teachers) AssignUser(ctx context.Context, teacherID, userID int64) error {
	if err := p.env.Client.AssignUser(ctx, teacherID, userID); err != nil {
		p.env.notify().Error("Failed to assign login: " + err.Error())
		return err
	}
	p.env.notify().Success("Login access assigned")
	return p.Refresh(ctx)
}

// RevokeUser detaches a teacher's login account and refetches.
func (p *Teachers) RevokeUser(ctx context.Context, teacherID int64) error {
	if err := p.env.Client.RevokeUser(ctx, teacherID); err != nil {
		p.env.notify().Error("Failed to revoke login: " + err.Error())
		return err
	}
	p.env.notify().Success("Login access revoked")
	return p.Refresh(ctx)
}

// Render writes the current page as a table.
func (p *Teachers) Render(w io.Writer) error {
	t := table.Table[model.Teacher]{
		Columns: []table.Column[model.Teacher]{
			{Key: "id", Header: "ID", Align: table.AlignRight,
				Render: func(t model.Teacher) string { return fmt.Sprintf("%d", t.ID) }},
			{Key: "name", Header: "Name", Render: model.Teacher.FullName},
			{Key: "department", Header: "Department",
				Accessor: func(t model.Teacher) string { return t.Department }},
			{Key: "email", Header: "Email",
				Accessor: func(t model.Teacher) string { return t.Email }},
			{Key: "login", Header: "Login",
				Render: func(t model.Teacher) string {
					if t.UserID != nil {
						return fmt.Sprintf("user %d", *t.UserID)
					}
					return "none"
				}},
		},
		EmptyMessage: "No teachers found",
		Server: &table.ServerPaging{
			CurrentPage: p.page.CurrentPage,
			TotalPages:  p.page.TotalPages,
			PageNumbers: p.Cursor.PageNumbers(p.page.TotalPages),
		},
	}
	return t.Render(w, p.rows)
}
