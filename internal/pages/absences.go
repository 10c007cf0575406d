package pages

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"registryctl/internal/api"
	"registryctl/internal/keyed"
	"registryctl/internal/model"
	"registryctl/internal/paginate"
	"registryctl/internal/section"
	"registryctl/internal/table"
)

// AbsenceList is one course's absence page, loaded lazily on first
// expansion.
type AbsenceList struct {
	Absences []model.Absence
	Page     api.Page[model.Absence]
	Loading  bool
}

// Absences is the absence management screen: current-semester courses, each
// with a lazily loaded absence list and add/remove actions.
type Absences struct {
	env Env

	Cursor     *paginate.Cursor
	courses    []model.Course
	coursePage api.Page[model.Course]
	teacherID  int64

	lists    *keyed.Store[int64, AbsenceList]
	pageFor  *keyed.Store[int64, int]
	sections *keyed.Store[int64, *section.Section]

	seq     fetchSeq
	lastErr error
}

// NewAbsences builds the page scoped to the session's current semester.
func NewAbsences(env Env, limit int) *Absences {
	return &Absences{
		env:      env,
		Cursor:   paginate.NewCursor(1, limit),
		lists:    keyed.NewStore[int64, AbsenceList](),
		pageFor:  keyed.NewStore[int64, int](),
		sections: keyed.NewStore[int64, *section.Section](),
	}
}

// ResolveTeacherScope scopes the course list to the session teacher's own
// courses; no-op for other roles.
func (p *Absences) ResolveTeacherScope(ctx context.Context) {
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

// RefreshCourses fetches the course list and drops all per-course state.
func (p *Absences) RefreshCourses(ctx context.Context) error {
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
	p.lists.Clear()
	p.pageFor.Clear()
	p.sections.Clear()
	return nil
}

// Courses returns the current course page.
func (p *Absences) Courses() []model.Course { return p.courses }

// Section returns the lazy section for a course, with a loader fetching
// that course's absences exactly once.
func (p *Absences) Section(courseID int64) *section.Section {
	if s, ok := p.sections.Lookup(courseID); ok {
		return s
	}
	s := section.New(context.Background(), false, section.WithLoader(func(ctx context.Context) error {
		return p.loadAbsences(ctx, courseID, p.listPage(courseID))
	}))
	p.sections.Set(courseID, s)
	return s
}

// Expand opens a course section, fetching absences if this is the first
// expansion.
func (p *Absences) Expand(ctx context.Context, courseID int64) {
	p.Section(courseID).SetOpen(ctx, true)
}

// List returns the loaded absence state for a course.
func (p *Absences) List(courseID int64) AbsenceList { return p.lists.Get(courseID) }

func (p *Absences) listPage(courseID int64) int {
	if page, ok := p.pageFor.Lookup(courseID); ok {
		return page
	}
	return 1
}

// SetListPage moves a course's independent absence cursor and refetches.
func (p *Absences) SetListPage(ctx context.Context, courseID int64, page int) error {
	p.pageFor.Set(courseID, page)
	return p.loadAbsences(ctx, courseID, page)
}

func (p *Absences) loadAbsences(ctx context.Context, courseID int64, page int) error {
	p.lists.Update(courseID, func(l AbsenceList) AbsenceList {
		l.Loading = true
		return l
	})
	resp, err := p.env.Client.CourseAbsences(ctx, courseID, paginate.NewCursor(page, 10))
	if err != nil {
		p.lists.Update(courseID, func(l AbsenceList) AbsenceList {
			l.Loading = false
			return l
		})
		p.env.notify().Error("Failed to load absences: " + err.Error())
		return err
	}
	p.lists.Set(courseID, AbsenceList{Absences: resp.Data, Page: resp})
	return nil
}

// Add records an absence for (student, course, date) and refetches the
// course's list on its current page.
func (p *Absences) Add(ctx context.Context, courseID, studentID int64, date string) error {
	normalized, err := NormalizeAbsenceDate(date)
	if err != nil {
		p.env.notify().Error("Invalid date: " + err.Error())
		return err
	}
	if err := p.env.Client.AddAbsence(ctx, courseID, studentID, normalized); err != nil {
		p.env.notify().Error("Failed to record absence: " + err.Error())
		return err
	}
	p.env.notify().Success("Absence recorded")
	return p.loadAbsences(ctx, courseID, p.listPage(courseID))
}

// Remove deletes the absence identified by its (student, course, date)
// triple and refetches.
func (p *Absences) Remove(ctx context.Context, courseID, studentID int64, date string) error {
	if err := p.env.Client.RemoveAbsence(ctx, courseID, studentID, date); err != nil {
		p.env.notify().Error("Failed to remove absence: " + err.Error())
		return err
	}
	p.env.notify().Success("Absence removed")
	return p.loadAbsences(ctx, courseID, p.listPage(courseID))
}

// absenceLayouts are the inputs accepted for absence dates; the first is
// the canonical wire form for date-only records.
var absenceLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC3339,
}

// NormalizeAbsenceDate parses an absence date in any accepted layout and
// renders it in the wire form: date-only stays a bare date, anything with a
// time becomes 2006-01-02T15:04.
func NormalizeAbsenceDate(date string) (string, error) {
	for _, layout := range absenceLayouts {
		t, err := time.Parse(layout, date)
		if err != nil {
			continue
		}
		if layout == "2006-01-02" {
			return t.Format("2006-01-02"), nil
		}
		return t.Format("2006-01-02T15:04"), nil
	}
	return "", fmt.Errorf("unrecognized date %q", date)
}

// FormatAbsenceDate renders a stored absence date for display.
func FormatAbsenceDate(date string) string {
	for _, layout := range absenceLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			if layout == "2006-01-02" {
				return t.Format("2006-01-02")
			}
			return t.Format("2006-01-02 15:04")
		}
	}
	return date
}

// Render writes each course as a section header followed by its absence
// list when expanded.
func (p *Absences) Render(w io.Writer) error {
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
		list := p.List(course.ID)
		t := table.Table[model.Absence]{
			Columns: []table.Column[model.Absence]{
				{Key: "studentId", Header: "Student ID", Align: table.AlignRight,
					Render: func(a model.Absence) string { return strconv.FormatInt(a.StudentID, 10) }},
				{Key: "name", Header: "Name",
					Render: func(a model.Absence) string {
						if a.Student != nil {
							return a.Student.FullName()
						}
						return ""
					}},
				{Key: "date", Header: "Date",
					Render: func(a model.Absence) string { return FormatAbsenceDate(a.Date) }},
			},
			EmptyMessage: "No absences recorded",
			Server: &table.ServerPaging{
				CurrentPage: list.Page.CurrentPage,
				TotalPages:  list.Page.TotalPages,
			},
		}
		if err := t.Render(w, list.Absences); err != nil {
			return err
		}
	}
	return nil
}
