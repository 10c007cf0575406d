package pages

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"registryctl/internal/api"
	"registryctl/internal/keyed"
	"registryctl/internal/model"
	"registryctl/internal/paginate"
	"registryctl/internal/section"
	"registryctl/internal/table"
)

// CellState is the lifecycle of one grade cell.
type CellState int

const (
	// CellUnedited shows the server value.
	CellUnedited CellState = iota
	// CellDirty holds a local override that differs from the server value.
	CellDirty
	// CellSaving has a request in flight.
	CellSaving
)

// Roster is one course's enrollment page, loaded lazily on first expansion.
type Roster struct {
	Enrollments []model.Enrollment
	Page        api.Page[model.Enrollment]
	Loading     bool
}

// Grades is the grade management screen: current-semester courses, each with
// a lazily loaded roster and editable grade cells.
type Grades struct {
	env Env

	Cursor     *paginate.Cursor
	courses    []model.Course
	coursePage api.Page[model.Course]
	teacherID  int64

	rosters  *keyed.Store[int64, Roster]
	pageFor  *keyed.Store[int64, int]
	sections *keyed.Store[int64, *section.Section]

	// drafts maps enrollment id to the local override; an empty string is
	// a deliberate clear, distinct from "no override".
	drafts map[int64]string
	saving map[int64]bool

	seq     fetchSeq
	lastErr error
}

// NewGrades builds the page. Grade management is always scoped to the
// session's current semester.
func NewGrades(env Env, limit int) *Grades {
	return &Grades{
		env:      env,
		Cursor:   paginate.NewCursor(1, limit),
		rosters:  keyed.NewStore[int64, Roster](),
		pageFor:  keyed.NewStore[int64, int](),
		sections: keyed.NewStore[int64, *section.Section](),
		drafts:   make(map[int64]string),
		saving:   make(map[int64]bool),
	}
}

// ResolveTeacherScope finds the teacher record linked to the session user so
// a TEACHER-role login only sees their own courses. No-op for other roles.
func (p *Grades) ResolveTeacherScope(ctx context.Context) {
	if !p.env.Session.IsTeacher() {
		return
	}
	user := p.env.Session.User()
	if user == nil {
		return
	}
	page, err := p.env.Client.ListTeachers(ctx, api.TeacherFilter{}, paginate.NewCursor(1, 100))
	if err != nil {
		p.env.notify().Error("Could not resolve teacher record: " + err.Error())
		return
	}
	for _, t := range page.Data {
		if t.UserID != nil && *t.UserID == user.ID {
			p.teacherID = t.ID
			return
		}
	}
}

// RefreshCourses fetches the course list and drops all per-course roster
// state, since the filter the rosters hang off has changed.
func (p *Grades) RefreshCourses(ctx context.Context) error {
	seq := p.seq.next()
	page, err := p.env.Client.ListCourses(ctx, api.CourseFilter{
		Semester:  p.env.Session.Semester(),
		TeacherID: p.teacherID,
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
	p.courses = page.Data
	p.coursePage = page
	p.rosters.Clear()
	p.pageFor.Clear()
	p.sections.Clear()
	return nil
}

// Courses returns the current course page.
func (p *Grades) Courses() []model.Course { return p.courses }

// Section returns the lazy section for a course, creating it on first use
// with a loader that fetches the roster exactly once.
func (p *Grades) Section(courseID int64) *section.Section {
	if s, ok := p.sections.Lookup(courseID); ok {
		return s
	}
	s := section.New(context.Background(), false, section.WithLoader(func(ctx context.Context) error {
		return p.loadRoster(ctx, courseID, p.rosterPage(courseID))
	}))
	p.sections.Set(courseID, s)
	return s
}

// Expand opens a course section, fetching its roster if this is the first
// expansion.
func (p *Grades) Expand(ctx context.Context, courseID int64) {
	p.Section(courseID).SetOpen(ctx, true)
}

// Collapse closes a course section without dropping its roster.
func (p *Grades) Collapse(courseID int64) {
	p.Section(courseID).SetOpen(context.Background(), false)
}

// Roster returns the loaded roster state for a course.
func (p *Grades) Roster(courseID int64) Roster { return p.rosters.Get(courseID) }

func (p *Grades) rosterPage(courseID int64) int {
	if page, ok := p.pageFor.Lookup(courseID); ok {
		return page
	}
	return 1
}

// SetRosterPage moves a course's independent pagination cursor and refetches
// that roster.
func (p *Grades) SetRosterPage(ctx context.Context, courseID int64, page int) error {
	p.pageFor.Set(courseID, page)
	return p.loadRoster(ctx, courseID, page)
}

func (p *Grades) loadRoster(ctx context.Context, courseID int64, page int) error {
	p.rosters.Update(courseID, func(r Roster) Roster {
		r.Loading = true
		return r
	})
	resp, err := p.env.Client.CourseEnrollments(ctx, courseID, paginate.NewCursor(page, 10))
	if err != nil {
		p.rosters.Update(courseID, func(r Roster) Roster {
			r.Loading = false
			return r
		})
		p.env.notify().Error("Failed to load enrollments: " + err.Error())
		return err
	}
	p.rosters.Set(courseID, Roster{Enrollments: resp.Data, Page: resp})
	return nil
}

// SetGrade records a local override for an enrollment's grade.
func (p *Grades) SetGrade(enrollmentID int64, grade string) {
	p.drafts[enrollmentID] = grade
}

// ClearGrade records an empty override. The cell only reads as unedited if
// the server value is also empty; otherwise it stays dirty with an empty
// override.
func (p *Grades) ClearGrade(enrollmentID int64) {
	p.drafts[enrollmentID] = ""
}

// CellState derives the state of one grade cell.
func (p *Grades) CellState(e model.Enrollment) CellState {
	if p.saving[e.ID] {
		return CellSaving
	}
	draft, ok := p.drafts[e.ID]
	if ok && draft != e.FinalGrade {
		return CellDirty
	}
	return CellUnedited
}

// CellValue is the grade the cell currently shows: the override when one is
// recorded, the server value otherwise.
func (p *Grades) CellValue(e model.Enrollment) string {
	if draft, ok := p.drafts[e.ID]; ok {
		return draft
	}
	return e.FinalGrade
}

// SaveGrade submits one cell. On success the roster is refetched on its
// current page and the override dropped; on failure the override stays so
// the user can retry.
func (p *Grades) SaveGrade(ctx context.Context, courseID int64, e model.Enrollment) error {
	draft, ok := p.drafts[e.ID]
	if !ok && e.FinalGrade == "" {
		err := errors.New("select a grade or clear the existing one first")
		p.env.notify().Error(err.Error())
		return err
	}
	grade := e.FinalGrade
	if ok {
		grade = draft
	}

	p.saving[e.ID] = true
	defer delete(p.saving, e.ID)

	if err := p.env.Client.UpdateGrade(ctx, courseID, e.StudentID, grade); err != nil {
		p.env.notify().Error("Failed to save grade: " + err.Error())
		return err
	}
	if err := p.loadRoster(ctx, courseID, p.rosterPage(courseID)); err != nil {
		return err
	}
	delete(p.drafts, e.ID)
	if grade == "" {
		p.env.notify().Success("Grade cleared")
	} else {
		p.env.notify().Success("Grade saved")
	}
	return nil
}

// DirtyCount counts cells whose override differs from the server value
// across all loaded rosters.
func (p *Grades) DirtyCount() int {
	count := 0
	for _, courseID := range p.rosters.Keys() {
		for _, e := range p.rosters.Get(courseID).Enrollments {
			if p.CellState(e) == CellDirty {
				count++
			}
		}
	}
	return count
}

// SaveAll submits every dirty cell across all expanded course sections, one
// request per cell, failing independently per cell. Affected rosters are
// refetched on their current pages.
func (p *Grades) SaveAll(ctx context.Context) error {
	type change struct {
		courseID   int64
		enrollment model.Enrollment
		grade      string
	}
	var changes []change
	for _, courseID := range p.rosters.Keys() {
		for _, e := range p.rosters.Get(courseID).Enrollments {
			if p.CellState(e) == CellDirty {
				changes = append(changes, change{courseID, e, p.drafts[e.ID]})
			}
		}
	}
	if len(changes) == 0 {
		p.env.notify().Success("No grade changes to save")
		return nil
	}

	var failed int
	touched := make(map[int64]bool)
	for _, ch := range changes {
		p.saving[ch.enrollment.ID] = true
		err := p.env.Client.UpdateGrade(ctx, ch.courseID, ch.enrollment.StudentID, ch.grade)
		delete(p.saving, ch.enrollment.ID)
		if err != nil {
			failed++
			p.env.notify().Error(fmt.Sprintf("Failed to save grade for enrollment %d: %v", ch.enrollment.ID, err))
			continue
		}
		delete(p.drafts, ch.enrollment.ID)
		touched[ch.courseID] = true
	}

	for courseID := range touched {
		if err := p.loadRoster(ctx, courseID, p.rosterPage(courseID)); err != nil {
			failed++
		}
	}

	saved := len(changes) - failed
	p.env.notify().Success(fmt.Sprintf("Saved %d grade(s)", saved))
	if failed > 0 {
		return fmt.Errorf("%d grade(s) failed to save", failed)
	}
	return nil
}

// Render writes each course as a section header followed by its roster when
// expanded.
func (p *Grades) Render(w io.Writer) error {
	if len(p.courses) == 0 {
		_, err := fmt.Fprintln(w, "No courses for the current semester")
		return err
	}
	for _, course := range p.courses {
		s := p.Section(course.ID)
		marker := "+"
		if s.Open() {
			marker = "-"
		}
		fmt.Fprintf(w, "%s %s %s\n", marker, course.Label(), course.CourseName)
		if !s.Open() {
			continue
		}
		roster := p.Roster(course.ID)
		t := table.Table[model.Enrollment]{
			Columns: []table.Column[model.Enrollment]{
				{Key: "studentId", Header: "Student ID", Align: table.AlignRight,
					Render: func(e model.Enrollment) string { return strconv.FormatInt(e.StudentID, 10) }},
				{Key: "name", Header: "Name",
					Render: func(e model.Enrollment) string {
						if e.Student != nil {
							return e.Student.FullName()
						}
						return ""
					}},
				{Key: "grade", Header: "Grade",
					Render: func(e model.Enrollment) string {
						v := p.CellValue(e)
						if v == "" {
							v = "-"
						}
						switch p.CellState(e) {
						case CellDirty:
							return v + " *"
						case CellSaving:
							return v + " ..."
						default:
							return v
						}
					}},
				{Key: "status", Header: "Status",
					Accessor: func(e model.Enrollment) string { return e.Status }},
			},
			EmptyMessage: "No students enrolled",
			Server: &table.ServerPaging{
				CurrentPage: roster.Page.CurrentPage,
				TotalPages:  roster.Page.TotalPages,
			},
		}
		if err := t.Render(w, roster.Enrollments); err != nil {
			return err
		}
	}
	if n := p.DirtyCount(); n > 0 {
		fmt.Fprintf(w, "%d unsaved grade change(s)\n", n)
	}
	return nil
}
