package pages

import (
	"context"
	"strings"
	"testing"

	"registryctl/internal/model"
)

func TestStudentsCreateFilterDelete(t *testing.T) {
	f := newFixture(t, "2025-Fall")
	ctx := context.Background()

	page := NewStudents(f.env, 10)
	if err := page.Create(ctx, model.StudentForm{
		FirstName:      "Nora",
		LastName:       "Okafor",
		Department:     "Physics",
		EnrollmentYear: 2024,
		Status:         model.StudentActive,
	}); err != nil {
		t.Fatal(err)
	}
	f.createStudent(t, "Ben", "Okafor", "History", 2023)

	// Filtering by status and department should keep only Nora.
	page.SetDepartment("Physics")
	page.SetStatus(model.StudentActive)
	if err := page.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if len(page.Rows()) != 1 || page.Rows()[0].FirstName != "Nora" {
		t.Fatalf("filtered rows = %+v", page.Rows())
	}
	if page.Total() != 1 {
		t.Errorf("Total = %d, want 1", page.Total())
	}

	// Search applies only on commit, and resets to page 1.
	page.SetDepartment("")
	page.SetStatus("")
	page.SetSearchInput("okafor")
	page.CommitSearch()
	if err := page.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if len(page.Rows()) != 2 {
		t.Fatalf("name search matched %d rows, want 2", len(page.Rows()))
	}

	id := page.Rows()[0].ID
	if err := page.Delete(ctx, id); err != nil {
		t.Fatal(err)
	}
	for _, st := range page.Rows() {
		if st.ID == id {
			t.Fatal("deleted student still listed after refetch")
		}
	}
}

func TestStudentsFailureKeepsLastGoodRows(t *testing.T) {
	f := newFixture(t, "2025-Fall")
	ctx := context.Background()
	f.createStudent(t, "Iris", "Chen", "Biology", 2022)

	page := NewStudents(f.env, 10)
	if err := page.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if len(page.Rows()) != 1 {
		t.Fatalf("rows = %d, want 1", len(page.Rows()))
	}

	// Break the session: the next refresh fails but the shown rows survive.
	f.env.Session.SetToken("")
	if err := page.Refresh(ctx); err == nil {
		t.Fatal("refresh with no token should fail")
	}
	if len(page.Rows()) != 1 {
		t.Error("failed refresh should keep the last-good rows")
	}
	if page.Err() == nil {
		t.Error("Err() should report the failure")
	}
	if len(f.notes.errors) == 0 {
		t.Error("failure should reach the notifier")
	}
}

func TestStudentsRenderEmptyState(t *testing.T) {
	f := newFixture(t, "2025-Fall")
	page := NewStudents(f.env, 10)
	if err := page.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	if err := page.Render(&sb); err != nil {
		t.Fatal(err)
	}
	if got := sb.String(); got != "No students found\n" {
		t.Errorf("empty render = %q", got)
	}
}

func TestStudentProfileGPA(t *testing.T) {
	f := newFixture(t, "2025-Fall")
	ctx := context.Background()

	teacher := f.createTeacher(t, "Alan", "Turing", "Computer Science")
	cs := f.createCourse(t, "CS101", "Intro to Programming", "2025-Fall", teacher.ID)
	math := f.createCourse(t, "MATH101", "Calculus I", "2025-Fall", teacher.ID)
	st := f.createStudent(t, "Nora", "Okafor", "Computer Science", 2024)
	f.enroll(t, st.ID, cs.ID)
	f.enroll(t, st.ID, math.ID)

	if err := f.env.Client.UpdateGrade(ctx, cs.ID, st.ID, "A"); err != nil {
		t.Fatal(err)
	}
	if err := f.env.Client.UpdateGrade(ctx, math.ID, st.ID, "B"); err != nil {
		t.Fatal(err)
	}

	profile := NewStudentProfile(f.env, st.ID)
	if err := profile.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	// Equal credits, so (4.0+3.0)/2.
	if got := profile.GPA(); got != "3.50" {
		t.Errorf("GPA = %s, want 3.50", got)
	}

	var sb strings.Builder
	if err := profile.Render(&sb); err != nil {
		t.Fatal(err)
	}
	out := sb.String()
	if !strings.Contains(out, "Nora Okafor") || !strings.Contains(out, "3.50") {
		t.Errorf("profile render missing identity or GPA:\n%s", out)
	}
}
