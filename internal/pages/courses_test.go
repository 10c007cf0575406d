package pages

import (
	"context"
	"testing"

	"registryctl/internal/api"
	"registryctl/internal/model"
)

func TestCoursesUpdate(t *testing.T) {
	f := newFixture(t, "2025-Fall")
	ctx := context.Background()

	teacher := f.createTeacher(t, "Alan", "Turing", "Computer Science")
	course := f.createCourse(t, "CS101", "Intro to Programming", "2025-Fall", teacher.ID)

	page := NewCourses(f.env, 10)
	form := model.CourseForm{
		CourseCode: "CS101",
		CourseName: "Programming Fundamentals",
		Section:    "2",
		Credit:     4,
		Department: "Computer Science",
		Semester:   "2025-Fall",
		TeacherID:  teacher.ID,
		Status:     model.CourseActive,
	}
	if err := page.Update(ctx, course.ID, form); err != nil {
		t.Fatal(err)
	}
	row := page.Rows()[0]
	if row.CourseName != "Programming Fundamentals" || row.Section != "2" || row.Credit != 4 {
		t.Errorf("updated row = %+v", row)
	}
	if len(f.notes.successes) == 0 {
		t.Error("update should emit a success notice")
	}
}

func TestCoursesUpdateUnknownID(t *testing.T) {
	f := newFixture(t, "2025-Fall")
	teacher := f.createTeacher(t, "Alan", "Turing", "Computer Science")

	page := NewCourses(f.env, 10)
	form := model.CourseForm{
		CourseCode: "CS999",
		CourseName: "Ghost Course",
		Credit:     3,
		Department: "Computer Science",
		Semester:   "2025-Fall",
		TeacherID:  teacher.ID,
		Status:     model.CourseActive,
	}
	err := page.Update(context.Background(), 9999, form)
	if !api.IsNotFound(err) {
		t.Fatalf("err = %v, want not-found", err)
	}
}
