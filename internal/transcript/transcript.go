// Package transcript exports a student's academic record as CSV: identity,
// per-course grade points, GPA summary and absence history.
package transcript

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"registryctl/internal/model"
)

// Write renders the transcript for one student. Only graded enrollments
// appear in the academic record; non-point grades like I and W are listed
// with a blank points column, and absences are listed in full. Every record
// is padded to a uniform width so the output parses as strict CSV.
func Write(w io.Writer, student model.Student, enrollments []model.Enrollment, absences []model.Absence) error {
	cw := csv.NewWriter(w)

	records := [][]string{
		{"Student ID", strconv.FormatInt(student.ID, 10)},
		{"Name", student.FullName()},
		{"Department", student.Department},
		{"Enrollment Year", strconv.Itoa(student.EnrollmentYear)},
		{"Status", student.Status},
		{},
		{"Course Code", "Course Name", "Credits", "Semester", "Grade", "Points"},
	}
	for _, e := range enrollments {
		if e.FinalGrade == "" || e.Course == nil {
			continue
		}
		points := ""
		if p, ok := model.GradePoints[e.FinalGrade]; ok {
			points = fmt.Sprintf("%.2f", p*e.Course.Credit)
		}
		records = append(records, []string{
			e.Course.CourseCode,
			e.Course.CourseName,
			formatFloat(e.Course.Credit),
			e.Course.Semester,
			e.FinalGrade,
			points,
		})
	}

	records = append(records,
		[]string{},
		[]string{"Cumulative GPA", model.GPA(enrollments)},
		[]string{"Total Credits with Grades", formatFloat(model.CreditsWithGrades(enrollments))},
	)

	if len(absences) > 0 {
		records = append(records, []string{}, []string{"Absence Date", "Course Code", "Course Name", "Semester"})
		for _, a := range absences {
			code, name, semester := "", "", ""
			if a.Course != nil {
				code, name, semester = a.Course.CourseCode, a.Course.CourseName, a.Course.Semester
			}
			records = append(records, []string{a.Date, code, name, semester})
		}
	}

	if err := cw.WriteAll(pad(records)); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// pad blank-fills every record to the width of the widest one; csv readers
// reject variable-width input by default.
func pad(records [][]string) [][]string {
	width := 0
	for _, r := range records {
		if len(r) > width {
			width = len(r)
		}
	}
	for i, r := range records {
		for len(r) < width {
			r = append(r, "")
		}
		records[i] = r
	}
	return records
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
