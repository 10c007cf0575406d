package pages

import (
	"context"
	"testing"
	"time"

	"registryctl/internal/api"
	"registryctl/internal/model"
	"registryctl/internal/registrytest"
	"registryctl/internal/session"
)

// testNotifier collects notices so assertions can check what the user would
// have seen.
type testNotifier struct {
	successes []string
	errors    []string
}

func (n *testNotifier) Success(msg string) { n.successes = append(n.successes, msg) }
func (n *testNotifier) Error(msg string)   { n.errors = append(n.errors, msg) }

type fixture struct {
	server *registrytest.Server
	env    Env
	notes  *testNotifier
}

// newFixture starts a fake backend and returns an env logged in as admin.
func newFixture(t *testing.T, semester string) *fixture {
	t.Helper()
	server := registrytest.New(semester)
	t.Cleanup(server.Close)

	sess := session.New("")
	client := api.New(server.URL(), sess, 5*time.Second)
	client.NoCoalesceWindow()

	resp, err := client.Login(context.Background(), api.Credentials{Username: "admin", Password: "admin"})
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	sess.SetToken(resp.Token)
	sess.SetUser(&resp.User)
	sess.SetSemester(semester)

	notes := &testNotifier{}
	return &fixture{
		server: server,
		env:    Env{Client: client, Session: sess, Notify: notes},
		notes:  notes,
	}
}

func (f *fixture) createStudent(t *testing.T, first, last, dept string, year int) model.Student {
	t.Helper()
	st, err := f.env.Client.CreateStudent(context.Background(), model.StudentForm{
		FirstName:      first,
		LastName:       last,
		Department:     dept,
		EnrollmentYear: year,
		Status:         model.StudentActive,
	})
	if err != nil {
		t.Fatalf("create student: %v", err)
	}
	return st
}

func (f *fixture) createTeacher(t *testing.T, first, last, dept string) model.Teacher {
	t.Helper()
	teacher, err := f.env.Client.CreateTeacher(context.Background(), model.TeacherForm{
		FirstName:  first,
		LastName:   last,
		Department: dept,
		Email:      first + "." + last + "@registry.local",
	})
	if err != nil {
		t.Fatalf("create teacher: %v", err)
	}
	return teacher
}

func (f *fixture) createCourse(t *testing.T, code, name, semester string, teacherID int64) model.Course {
	t.Helper()
	course, err := f.env.Client.CreateCourse(context.Background(), model.CourseForm{
		CourseCode: code,
		CourseName: name,
		Section:    "1",
		Credit:     3,
		Department: "Computer Science",
		Semester:   semester,
		TeacherID:  teacherID,
		Status:     model.CourseActive,
	})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	return course
}

func (f *fixture) enroll(t *testing.T, studentID, courseID int64) {
	t.Helper()
	if err := f.env.Client.Enroll(context.Background(), studentID, courseID); err != nil {
		t.Fatalf("enroll: %v", err)
	}
}
