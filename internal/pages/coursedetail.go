package pages

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"registryctl/internal/api"
	"registryctl/internal/model"
	"registryctl/internal/paginate"
	"registryctl/internal/section"
	"registryctl/internal/table"
)

// CourseDetail is one course's detail screen: the offering record plus its
// roster and absence list, each behind its own lazy section and cursor.
type CourseDetail struct {
	env Env

	courseID int64
	course   *model.Course

	RosterCursor  *paginate.Cursor
	AbsenceCursor *paginate.Cursor

	rosterSection  *section.Section
	absenceSection *section.Section

	roster   Roster
	absences AbsenceList
}

// NewCourseDetail builds the page for one course. The roster section is
// default-open and loads on the first Refresh; absences wait for expansion.
func NewCourseDetail(env Env, courseID int64) *CourseDetail {
	p := &CourseDetail{
		env:           env,
		courseID:      courseID,
		RosterCursor:  paginate.NewCursor(1, 10),
		AbsenceCursor: paginate.NewCursor(1, 10),
	}
	return p
}

// Refresh loads the course record and opens the default sections.
func (p *CourseDetail) Refresh(ctx context.Context) error {
	course, err := p.env.Client.GetCourse(ctx, p.courseID)
	if err != nil {
		if api.IsNotFound(err) {
			p.env.notify().Error("Course not found")
		} else {
			p.env.notify().Error("Failed to load course: " + err.Error())
		}
		return err
	}
	p.course = &course

	if p.rosterSection == nil {
		p.rosterSection = section.New(ctx, true, section.WithLoader(p.loadRoster))
		p.absenceSection = section.New(ctx, false, section.WithLoader(p.loadAbsences))
		return p.rosterSection.Err()
	}

	// The sections' one-shot loaders have already fired; on a re-refresh,
	// refetch whatever is open directly.
	if err := p.loadRoster(ctx); err != nil {
		return err
	}
	if p.absenceSection.Open() {
		return p.loadAbsences(ctx)
	}
	return nil
}

// Course returns the loaded record, nil before a successful refresh.
func (p *CourseDetail) Course() *model.Course { return p.course }

// ExpandAbsences opens the absence section, fetching on first expansion.
func (p *CourseDetail) ExpandAbsences(ctx context.Context) {
	p.absenceSection.SetOpen(ctx, true)
}

// Roster returns the loaded roster state.
func (p *CourseDetail) Roster() Roster { return p.roster }

// Absences returns the loaded absence state.
func (p *CourseDetail) Absences() AbsenceList { return p.absences }

// SetRosterPage moves the roster cursor and refetches.
func (p *CourseDetail) SetRosterPage(ctx context.Context, page int) error {
	p.RosterCursor.SetPage(page)
	return p.loadRoster(ctx)
}

// SetAbsencePage moves the absence cursor and refetches.
func (p *CourseDetail) SetAbsencePage(ctx context.Context, page int) error {
	p.AbsenceCursor.SetPage(page)
	return p.loadAbsences(ctx)
}

func (p *CourseDetail) loadRoster(ctx context.Context) error {
	resp, err := p.env.Client.CourseEnrollments(ctx, p.courseID, p.RosterCursor)
	if err != nil {
		p.env.notify().Error("Failed to load roster: " + err.Error())
		return err
	}
	p.roster = Roster{Enrollments: resp.Data, Page: resp}
	return nil
}

func (p *CourseDetail) loadAbsences(ctx context.Context) error {
	resp, err := p.env.Client.CourseAbsences(ctx, p.courseID, p.AbsenceCursor)
	if err != nil {
		p.env.notify().Error("Failed to load absences: " + err.Error())
		return err
	}
	p.absences = AbsenceList{Absences: resp.Data, Page: resp}
	return nil
}

// Render writes the course header, roster and (when expanded) absences.
func (p *CourseDetail) Render(w io.Writer) error {
	if p.course == nil {
		_, err := fmt.Fprintln(w, "Course not found")
		return err
	}
	c := p.course
	fmt.Fprintf(w, "%s %s\n", c.Label(), c.CourseName)
	teacher := strconv.FormatInt(c.TeacherID, 10)
	if c.Teacher != nil {
		teacher = c.Teacher.FullName()
	}
	fmt.Fprintf(w, "Department: %s  Credits: %s  Teacher: %s  Status: %s\n\n",
		c.Department, strconv.FormatFloat(c.Credit, 'g', -1, 64), teacher, c.Status)

	fmt.Fprintln(w, "Roster:")
	rosterTable := table.Table[model.Enrollment]{
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
					if e.FinalGrade == "" {
						return "-"
					}
					return e.FinalGrade
				}},
			{Key: "status", Header: "Status",
				Accessor: func(e model.Enrollment) string { return e.Status }},
		},
		EmptyMessage: "No students enrolled",
		Server: &table.ServerPaging{
			CurrentPage: p.roster.Page.CurrentPage,
			TotalPages:  p.roster.Page.TotalPages,
		},
	}
	if err := rosterTable.Render(w, p.roster.Enrollments); err != nil {
		return err
	}

	if p.absenceSection != nil && p.absenceSection.Open() {
		fmt.Fprintln(w, "\nAbsences:")
		absenceTable := table.Table[model.Absence]{
			Columns: []table.Column[model.Absence]{
				{Key: "date", Header: "Date",
					Render: func(a model.Absence) string { return FormatAbsenceDate(a.Date) }},
				{Key: "studentId", Header: "Student ID", Align: table.AlignRight,
					Render: func(a model.Absence) string { return strconv.FormatInt(a.StudentID, 10) }},
			},
			EmptyMessage: "No absences recorded",
			Server: &table.ServerPaging{
				CurrentPage: p.absences.Page.CurrentPage,
				TotalPages:  p.absences.Page.TotalPages,
			},
		}
		return absenceTable.Render(w, p.absences.Absences)
	}
	return nil
}
