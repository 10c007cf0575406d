package pages

import (
	"context"
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

// Enrollments is the enrollment management screen: courses with lazily
// loaded rosters plus enroll/unenroll actions.
type Enrollments struct {
	env Env

	searchInput string
	search      string
	semester    string

	Cursor     *paginate.Cursor
	courses    []model.Course
	coursePage api.Page[model.Course]

	rosters  *keyed.Store[int64, Roster]
	pageFor  *keyed.Store[int64, int]
	sections *keyed.Store[int64, *section.Section]

	seq     fetchSeq
	lastErr error
}

// NewEnrollments builds the page scoped to the session's current semester.
func NewEnrollments(env Env, limit int) *Enrollments {
	return &Enrollments{
		env:      env,
		semester: env.Session.Semester(),
		Cursor:   paginate.NewCursor(1, limit),
		rosters:  keyed.NewStore[int64, Roster](),
		pageFor:  keyed.NewStore[int64, int](),
		sections: keyed.NewStore[int64, *section.Section](),
	}
}

// SetSearchInput records typed text without querying.
func (p *Enrollments) SetSearchInput(s string) { p.searchInput = s }

// CommitSearch applies the typed text and resets to page 1.
func (p *Enrollments) CommitSearch() {
	p.search = p.searchInput
	p.Cursor.SetPage(1)
}

// SetSemester filters courses by semester and resets to page 1.
func (p *Enrollments) SetSemester(semester string) {
	p.semester = semester
	p.Cursor.SetPage(1)
}

// RefreshCourses fetches the course list and drops all per-course state.
func (p *Enrollments) RefreshCourses(ctx context.Context) error {
	seq := p.seq.next()
	page, err := p.env.Client.ListCourses(ctx, api.CourseFilter{
		Name:     p.search,
		Semester: p.semester,
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
func (p *Enrollments) Courses() []model.Course { return p.courses }

// Section returns the lazy section for a course, loading the roster once.
func (p *Enrollments) Section(courseID int64) *section.Section {
	if s, ok := p.sections.Lookup(courseID); ok {
		return s
	}
	s := section.New(context.Background(), false, section.WithLoader(func(ctx context.Context) error {
		return p.loadRoster(ctx, courseID, p.rosterPage(courseID))
	}))
	p.sections.Set(courseID, s)
	return s
}

// Expand opens a course section, fetching its roster on first expansion.
func (p *Enrollments) Expand(ctx context.Context, courseID int64) {
	p.Section(courseID).SetOpen(ctx, true)
}

// Roster returns the loaded roster state for a course.
func (p *Enrollments) Roster(courseID int64) Roster { return p.rosters.Get(courseID) }

func (p *Enrollments) rosterPage(courseID int64) int {
	if page, ok := p.pageFor.Lookup(courseID); ok {
		return page
	}
	return 1
}

// SetRosterPage moves a course's independent cursor and refetches.
func (p *Enrollments) SetRosterPage(ctx context.Context, courseID int64, page int) error {
	p.pageFor.Set(courseID, page)
	return p.loadRoster(ctx, courseID, page)
}

func (p *Enrollments) loadRoster(ctx context.Context, courseID int64, page int) error {
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

// Enroll adds a student to a course and refetches that roster. The backend
// rejects duplicate (student, course) pairs.
func (p *Enrollments) Enroll(ctx context.Context, studentID, courseID int64) error {
	if err := p.env.Client.Enroll(ctx, studentID, courseID); err != nil {
		p.env.notify().Error("Failed to enroll student: " + err.Error())
		return err
	}
	p.env.notify().Success("Student enrolled")
	return p.loadRoster(ctx, courseID, p.rosterPage(courseID))
}

// Unenroll removes a student from a course and refetches that roster.
func (p *Enrollments) Unenroll(ctx context.Context, studentID, courseID int64) error {
	if err := p.env.Client.Unenroll(ctx, studentID, courseID); err != nil {
		p.env.notify().Error("Failed to unenroll student: " + err.Error())
		return err
	}
	p.env.notify().Success("Student unenrolled")
	return p.loadRoster(ctx, courseID, p.rosterPage(courseID))
}

// Render writes each course as a section header followed by its roster
// when expanded.
func (p *Enrollments) Render(w io.Writer) error {
	if len(p.courses) == 0 {
		_, err := fmt.Fprintln(w, "No courses found")
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
				{Key: "status", Header: "Status",
					Accessor: func(e model.Enrollment) string { return e.Status }},
				{Key: "finalGrade", Header: "Grade",
					Render: func(e model.Enrollment) string {
						if e.FinalGrade == "" {
							return "-"
						}
						return e.FinalGrade
					}},
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
	return nil
}
