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

// Students is the student list screen: search and filters, a paged table,
// and the create/edit/delete actions.
type Students struct {
	env Env

	// searchInput holds keystrokes; only CommitSearch moves it into the
	// issued query, so typing alone never fires requests.
	searchInput string
	search      string
	department  string
	status      string

	Cursor *paginate.Cursor

	seq     fetchSeq
	rows    []model.Student
	page    api.Page[model.Student]
	lastErr error
}

// NewStudents builds the page with an empty filter.
func NewStudents(env Env, limit int) *Students {
	return &Students{env: env, Cursor: paginate.NewCursor(1, limit)}
}

// SetSearchInput records typed text without querying.
func (p *Students) SetSearchInput(s string) { p.searchInput = s }

// CommitSearch applies the typed text as the active search and resets to
// page 1.
func (p *Students) CommitSearch() {
	p.search = p.searchInput
	p.Cursor.SetPage(1)
}

// SetDepartment filters by department and resets to page 1.
func (p *Students) SetDepartment(dept string) {
	p.department = dept
	p.Cursor.SetPage(1)
}

// SetStatus filters by status and resets to page 1.
func (p *Students) SetStatus(status string) {
	p.status = status
	p.Cursor.SetPage(1)
}

// Refresh issues the list request for the current filter and cursor. A
// failure keeps the last-good rows and reports through the notifier; a
// response older than the latest issued request is discarded.
func (p *Students) Refresh(ctx context.Context) error {
	seq := p.seq.next()
	page, err := p.env.Client.ListStudents(ctx, api.StudentFilter{
		Name:       p.search,
		Department: p.department,
		Status:     p.status,
	}, p.Cursor)
	if p.seq.stale(seq) {
		return nil
	}
	if err != nil {
		p.lastErr = err
		p.env.notify().Error("Failed to load students: " + err.Error())
		return err
	}
	p.lastErr = nil
	p.rows = page.Data
	p.page = page
	return nil
}

// Rows returns the last successfully fetched page of students.
func (p *Students) Rows() []model.Student { return p.rows }

// Total returns the backend's total row count for the current filter.
func (p *Students) Total() int64 { return p.page.Total }

// Err returns the last fetch error, nil after a successful refresh.
func (p *Students) Err() error { return p.lastErr }

// Create validates, submits and refetches. The form is left intact on
// failure so the caller can retry.
func (p *Students) Create(ctx context.Context, form model.StudentForm) error {
	created, err := p.env.Client.CreateStudent(ctx, form)
	if err != nil {
		p.env.notify().Error("Failed to create student: " + err.Error())
		return err
	}
	p.env.notify().Success("Created student " + created.FullName())
	return p.Refresh(ctx)
}

// Update validates, submits and refetches.
func (p *Students) Update(ctx context.Context, id int64, form model.StudentForm) error {
	updated, err := p.env.Client.UpdateStudent(ctx, id, form)
	if err != nil {
		p.env.notify().Error("Failed to update student: " + err.Error())
		return err
	}
	p.env.notify().Success("Updated student " + updated.FullName())
	return p.Refresh(ctx)
}

// Delete removes a student and refetches; the backend cascades enrollments
// and absences.
func (p *Students) Delete(ctx context.Context, id int64) error {
	if err := p.env.Client.DeleteStudent(ctx, id); err != nil {
		p.env.notify().Error("Failed to delete student: " + err.Error())
		return err
	}
	p.env.notify().Success("Deleted student")
	return p.Refresh(ctx)
}

// Render writes the current page as a table.
func (p *Students) Render(w io.Writer) error {
	t := table.Table[model.Student]{
		Columns: []table.Column[model.Student]{
			{Key: "id", Header: "ID", Align: table.AlignRight,
				Render: func(s model.Student) string { return fmt.Sprintf("%d", s.ID) }},
			{Key: "name", Header: "Name",
				Render: model.Student.FullName},
			{Key: "department", Header: "Department",
				Accessor: func(s model.Student) string { return s.Department }},
			{Key: "enrollmentYear", Header: "Year", Align: table.AlignRight,
				Render: func(s model.Student) string { return fmt.Sprintf("%d", s.EnrollmentYear) }},
			{Key: "status", Header: "Status",
				Accessor: func(s model.Student) string { return s.Status }},
			{Key: "email", Header: "Email",
				Accessor: func(s model.Student) string { return s.Email }},
		},
		EmptyMessage: "No students found",
		Server: &table.ServerPaging{
			CurrentPage: p.page.CurrentPage,
			TotalPages:  p.page.TotalPages,
			PageNumbers: p.Cursor.PageNumbers(p.page.TotalPages),
		},
	}
	return t.Render(w, p.rows)
}
