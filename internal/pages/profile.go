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

// StudentProfile is one student's detail screen: identity, enrollments with
// grades and GPA, and absence history.
type StudentProfile struct {
	env Env

	studentID   int64
	student     *model.Student
	enrollments []model.Enrollment
	absences    []model.Absence
	lastErr     error
}

// NewStudentProfile builds the page for one student.
func NewStudentProfile(env Env, studentID int64) *StudentProfile {
	return &StudentProfile{env: env, studentID: studentID}
}

// Refresh loads the student plus their full enrollment and absence history.
func (p *StudentProfile) Refresh(ctx context.Context) error {
	student, err := p.env.Client.GetStudent(ctx, p.studentID)
	if err != nil {
		p.lastErr = err
		if api.IsNotFound(err) {
			p.env.notify().Error("Student not found")
		} else {
			p.env.notify().Error("Failed to load student: " + err.Error())
		}
		return err
	}
	p.student = &student

	enrollments, err := p.env.Client.StudentEnrollments(ctx, p.studentID, paginate.NewCursor(1, 100))
	if err != nil {
		p.env.notify().Error("Failed to load enrollments: " + err.Error())
		return err
	}
	p.enrollments = enrollments.Data

	absences, err := p.env.Client.StudentAbsences(ctx, p.studentID, paginate.NewCursor(1, 100))
	if err != nil {
		p.env.notify().Error("Failed to load absences: " + err.Error())
		return err
	}
	p.absences = absences.Data
	p.lastErr = nil
	return nil
}

// Student returns the loaded record, nil before a successful refresh.
func (p *StudentProfile) Student() *model.Student { return p.student }

// Enrollments returns the loaded enrollment history.
func (p *StudentProfile) Enrollments() []model.Enrollment { return p.enrollments }

// Absences returns the loaded absence history.
func (p *StudentProfile) Absences() []model.Absence { return p.absences }

// GPA returns the credit-weighted grade average.
func (p *StudentProfile) GPA() string { return model.GPA(p.enrollments) }

// Render writes the profile: identity card, grade history with GPA, and
// absence history.
func (p *StudentProfile) Render(w io.Writer) error {
	if p.student == nil {
		_, err := fmt.Fprintln(w, "Student not found")
		return err
	}
	s := p.student
	fmt.Fprintf(w, "%s (#%d)\n", s.FullName(), s.ID)
	fmt.Fprintf(w, "Department: %s  Year: %d  Status: %s\n", s.Department, s.EnrollmentYear, s.Status)
	fmt.Fprintf(w, "GPA: %s  Credits: %s\n\n",
		p.GPA(), strconv.FormatFloat(model.CreditsWithGrades(p.enrollments), 'g', -1, 64))

	fmt.Fprintln(w, "Enrollments:")
	enrollTable := table.Table[model.Enrollment]{
		Columns: []table.Column[model.Enrollment]{
			{Key: "course", Header: "Course",
				Render: func(e model.Enrollment) string {
					if e.Course != nil {
						return e.Course.CourseCode + " " + e.Course.CourseName
					}
					return strconv.FormatInt(e.CourseID, 10)
				}},
			{Key: "semester", Header: "Semester",
				Render: func(e model.Enrollment) string {
					if e.Course != nil {
						return e.Course.Semester
					}
					return ""
				}},
			{Key: "credit", Header: "Credits", Align: table.AlignRight,
				Render: func(e model.Enrollment) string {
					if e.Course != nil {
						return strconv.FormatFloat(e.Course.Credit, 'g', -1, 64)
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
		EmptyMessage: "No enrollments",
	}
	if err := enrollTable.Render(w, p.enrollments); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nAbsences:")
	absenceTable := table.Table[model.Absence]{
		Columns: []table.Column[model.Absence]{
			{Key: "date", Header: "Date",
				Render: func(a model.Absence) string { return FormatAbsenceDate(a.Date) }},
			{Key: "course", Header: "Course",
				Render: func(a model.Absence) string {
					if a.Course != nil {
						return a.Course.CourseCode + " " + a.Course.CourseName
					}
					return strconv.FormatInt(a.CourseID, 10)
				}},
		},
		EmptyMessage: "No absences",
	}
	return absenceTable.Render(w, p.absences)
}
