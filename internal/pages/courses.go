package pages

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"registryctl/internal/api"
	"registryctl/internal/model"
	"registryctl/internal/paginate"
	"registryctl/internal/table"
)

// Courses is the course offering list screen.
type Courses struct {
	env Env

	searchInput string
	search      string
	department  string
	semester    string
	status      string
	teacherID   int64

	Cursor *paginate.Cursor

	seq     fetchSeq
	rows    []model.Course
	page    api.Page[model.Course]
	lastErr error
}

// NewCourses builds the page scoped to the session's current semester.
func NewCourses(env Env, limit int) *Courses {
	return &Courses{
		env:      env,
		semester: env.Session.Semester(),
		Cursor:   paginate.NewCursor(1, limit),
	}
}

// SetSearchInput records typed text without querying.
func (p *Courses) SetSearchInput(s string) { p.searchInput = s }

// CommitSearch applies the typed text and resets to page 1.
func (p *Courses) CommitSearch() {
	p.search = p.searchInput
	p.Cursor.SetPage(1)
}

// SetSemester filters by semester and resets to page 1. An empty value
// shows all semesters.
func (p *Courses) SetSemester(semester string) {
	p.semester = semester
	p.Cursor.SetPage(1)
}

// SetDepartment filters by department and resets to page 1.
func (p *Courses) SetDepartment(dept string) {
	p.department = dept
	p.Cursor.SetPage(1)
}

// SetStatus filters by status and resets to page 1.
func (p *Courses) SetStatus(status string) {
	p.status = status
	p.Cursor.SetPage(1)
}

// SetTeacherID scopes the list to one teacher's courses.
func (p *Courses) SetTeacherID(id int64) {
	p.teacherID = id
	p.Cursor.SetPage(1)
}

// Refresh issues the list request for the current filter and cursor.
func (p *Courses) Refresh(ctx context.Context) error {
	seq := p.seq.next()
	page, err := p.env.Client.ListCourses(ctx, api.CourseFilter{
		Name:       p.search,
		Department: p.department,
		Semester:   p.semester,
		Status:     p.status,
		TeacherID:  p.teacherID,
	}, p.Cursor)
	if p.seq.stale(seq) {
		return nil
	}
	if err != nil {
		p.lastErr = err
		p.env.notify().Error("Failed to load courses: " + err.Error())
		return err
	}
	p.lastErr = nil
	p.rows = page.Data
	p.page = page
	return nil
}

// Rows returns the last successfully fetched page of courses.
func (p *Courses) Rows() []model.Course { return p.rows }

// Total returns the backend's total row count for the current filter.
func (p *Courses) Total() int64 { return p.page.Total }

// Create validates, submits and refetches.
func (p *Courses) Create(ctx context.Context, form model.CourseForm) error {
	created, err := p.env.Client.CreateCourse(ctx, form)
	if err != nil {
		p.env.notify().Error("Failed to create course: " + err.Error())
		return err
	}
	p.env.notify().Success("Created course " + created.Label())
	return p.Refresh(ctx)
}

// Update validates, submits and refetches.
func (p *Courses) Update(ctx context.Context, id int64, form model.CourseForm) error {
	updated, err := p.env.Client.UpdateCourse(ctx, id, form)
	if err != nil {
		p.env.notify().Error("Failed to update course: " + err.Error())
		return err
	}
	p.env.notify().Success("Updated course " + updated.Label())
	return p.Refresh(ctx)
}

// Delete removes a course offering and refetches.
func (p *Courses) Delete(ctx context.Context, id int64) error {
	if err := p.env.Client.DeleteCourse(ctx, id); err != nil {
		p.env.notify().Error("Failed to delete course: " + err.Error())
		return err
	}
	p.env.notify().Success("Deleted course")
	return p.Refresh(ctx)
}

// Render writes the current page as a table.
func (p *Courses) Render(w io.Writer) error {
	t := table.Table[model.Course]{
		Columns: []table.Column[model.Course]{
			{Key: "id", Header: "ID", Align: table.AlignRight,
				Render: func(c model.Course) string { return strconv.FormatInt(c.ID, 10) }},
			{Key: "code", Header: "Code",
				Render: func(c model.Course) string {
					if c.Section != "" {
						return c.CourseCode + "-" + c.Section
					}
					return c.CourseCode
				}},
			{Key: "name", Header: "Name",
				Accessor: func(c model.Course) string { return c.CourseName }},
			{Key: "semester", Header: "Semester",
				Accessor: func(c model.Course) string { return c.Semester }},
			{Key: "credit", Header: "Credits", Align: table.AlignRight,
				Render: func(c model.Course) string { return strconv.FormatFloat(c.Credit, 'g', -1, 64) }},
			{Key: "teacher", Header: "Teacher",
				Render: func(c model.Course) string {
					if c.Teacher != nil {
						return c.Teacher.FullName()
					}
					return fmt.Sprintf("teacher %d", c.TeacherID)
				}},
			{Key: "status", Header: "Status",
				Accessor: func(c model.Course) string { return c.Status }},
		},
		EmptyMessage: "No courses found",
		Server: &table.ServerPaging{
			CurrentPage: p.page.CurrentPage,
			TotalPages:  p.page.TotalPages,
			PageNumbers: p.Cursor.PageNumbers(p.page.TotalPages),
		},
	}
	return t.Render(w, p.rows)
}
