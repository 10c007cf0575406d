package pages

import (
	"context"
	"strings"
	"testing"
	"time"

	"registryctl/internal/api"
	"registryctl/internal/model"
	"registryctl/internal/session"
)

func TestTeachersAssignRevokeUser(t *testing.T) {
	f := newFixture(t, "2025-Fall")
	ctx := context.Background()

	teacher := f.createTeacher(t, "Alan", "Turing", "Computer Science")
	account := f.server.AddTeacherAccount("aturing", "secret", teacher.ID)

	page := NewTeachers(f.env, 10)
	if err := page.RevokeUser(ctx, teacher.ID); err != nil {
		t.Fatal(err)
	}
	if row := page.Rows()[0]; row.UserID != nil {
		t.Error("revoke should unlink the account")
	}

	if err := page.AssignUser(ctx, teacher.ID, account.ID); err != nil {
		t.Fatal(err)
	}
	row := page.Rows()[0]
	if row.UserID == nil || *row.UserID != account.ID {
		t.Errorf("assigned UserID = %v, want %d", row.UserID, account.ID)
	}
}

func TestTeachersUpdate(t *testing.T) {
	f := newFixture(t, "2025-Fall")
	ctx := context.Background()

	teacher := f.createTeacher(t, "Alan", "Turing", "Computer Science")

	page := NewTeachers(f.env, 10)
	form := model.TeacherForm{
		FirstName:  "Alan",
		LastName:   "Turing",
		Department: "Mathematics",
		Email:      "alan.turing@registry.local",
	}
	if err := page.Update(ctx, teacher.ID, form); err != nil {
		t.Fatal(err)
	}
	row := page.Rows()[0]
	if row.Department != "Mathematics" || row.Email != "alan.turing@registry.local" {
		t.Errorf("updated row = %+v", row)
	}
}

// teacherLogin opens a second session against the same backend with the
// TEACHER role.
func teacherLogin(t *testing.T, f *fixture, username, password string) Env {
	t.Helper()
	sess := session.New("")
	client := api.New(f.server.URL(), sess, 5*time.Second)
	client.NoCoalesceWindow()
	resp, err := client.Login(context.Background(), api.Credentials{Username: username, Password: password})
	if err != nil {
		t.Fatalf("teacher login: %v", err)
	}
	sess.SetToken(resp.Token)
	sess.SetUser(&resp.User)
	sess.SetSemester(f.env.Session.Semester())
	return Env{Client: client, Session: sess, Notify: &testNotifier{}}
}

func TestGradesTeacherScope(t *testing.T) {
	f := newFixture(t, "2025-Fall")
	ctx := context.Background()

	mine := f.createTeacher(t, "Alan", "Turing", "Computer Science")
	other := f.createTeacher(t, "Rosa", "Franklin", "Biology")
	f.createCourse(t, "CS101", "Intro to Programming", "2025-Fall", mine.ID)
	f.createCourse(t, "BIO101", "Cell Biology", "2025-Fall", other.ID)
	f.server.AddTeacherAccount("aturing", "secret", mine.ID)

	env := teacherLogin(t, f, "aturing", "secret")
	page := NewGrades(env, 10)
	page.ResolveTeacherScope(ctx)
	if err := page.RefreshCourses(ctx); err != nil {
		t.Fatal(err)
	}
	courses := page.Courses()
	if len(courses) != 1 || courses[0].CourseCode != "CS101" {
		t.Fatalf("teacher sees %+v, want only their own course", courses)
	}
}

func TestAdminOnlyMutationsForbiddenForTeacher(t *testing.T) {
	f := newFixture(t, "2025-Fall")
	ctx := context.Background()

	teacher := f.createTeacher(t, "Alan", "Turing", "Computer Science")
	f.server.AddTeacherAccount("aturing", "secret", teacher.ID)
	env := teacherLogin(t, f, "aturing", "secret")

	page := NewStudents(env, 10)
	err := page.Delete(ctx, 1)
	if !api.IsForbidden(err) {
		t.Fatalf("err = %v, want forbidden", err)
	}
	// The hint for stale role claims rides on every 403.
	if err != nil && !strings.Contains(err.Error(), "log out and log back in") {
		t.Errorf("403 missing role-staleness hint: %v", err)
	}
}
