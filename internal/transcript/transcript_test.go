package transcript

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"registryctl/internal/model"
)

func course(code, name, semester string, credit float64) *model.Course {
	return &model.Course{CourseCode: code, CourseName: name, Semester: semester, Credit: credit}
}

func TestWriteTranscript(t *testing.T) {
	student := model.Student{
		ID: 7, FirstName: "Grace", LastName: "Hopper",
		Department: "Computer Science", EnrollmentYear: 2023, Status: "active",
	}
	enrollments := []model.Enrollment{
		{FinalGrade: "A", Course: course("CS101", "Intro to Programming", "2024-Fall", 3)},
		{FinalGrade: "B+", Course: course("MATH101", "Calculus I", "2024-Fall", 4)},
		{FinalGrade: "", Course: course("CS201", "Data Structures", "2025-Spring", 3)},
		{FinalGrade: "W", Course: course("PHYS101", "Physics I", "2025-Spring", 3)},
	}
	absences := []model.Absence{
		{Date: "2024-10-02", Course: course("CS101", "Intro to Programming", "2024-Fall", 3)},
	}

	var buf bytes.Buffer
	if err := Write(&buf, student, enrollments, absences); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	// The default reader rejects variable-width records, so parsing doubles
	// as the uniform-width check.
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	for _, r := range records {
		if len(r) != len(records[0]) {
			t.Fatalf("record width %d != %d: %v", len(r), len(records[0]), r)
		}
	}

	// W carries no points; its row keeps the points column blank.
	var withdrawn []string
	for _, r := range records {
		if r[0] == "PHYS101" {
			withdrawn = r
		}
	}
	if withdrawn == nil {
		t.Fatal("withdrawn course missing from the record")
	}
	if withdrawn[4] != "W" || withdrawn[5] != "" {
		t.Errorf("withdrawn row = %v, want grade W with blank points", withdrawn)
	}

	if !strings.Contains(out, "Grace Hopper") {
		t.Error("student name missing")
	}
	// A at 3 credits: 12.00 points; B+ at 4 credits: 13.20 points.
	if !strings.Contains(out, "12.00") || !strings.Contains(out, "13.20") {
		t.Errorf("grade points missing:\n%s", out)
	}
	// Ungraded CS201 must not appear in the academic record.
	if strings.Contains(out, "Data Structures") {
		t.Error("ungraded course leaked into the transcript")
	}
	// (4.0*3 + 3.3*4) / 7 = 3.60
	if !strings.Contains(out, "Cumulative GPA,3.60") {
		t.Errorf("GPA row missing or wrong:\n%s", out)
	}
	if !strings.Contains(out, "Total Credits with Grades,7") {
		t.Errorf("credit total missing:\n%s", out)
	}
	if !strings.Contains(out, "2024-10-02") {
		t.Error("absence history missing")
	}
}

func TestWriteTranscriptNoAbsences(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, model.Student{ID: 1, FirstName: "A", LastName: "B"}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "Absence Date") {
		t.Error("absence section should be omitted when empty")
	}
	if !strings.Contains(buf.String(), "Cumulative GPA,0.00") {
		t.Error("empty record should still show a 0.00 GPA")
	}
}
