package pages

import (
	"context"
	"strings"
	"testing"
)

func TestDashboardCounts(t *testing.T) {
	f := newFixture(t, "2025-Fall")
	ctx := context.Background()

	teacher := f.createTeacher(t, "Alan", "Turing", "Computer Science")
	f.createCourse(t, "CS101", "Intro to Programming", "2025-Fall", teacher.ID)
	f.createCourse(t, "CS900", "Archived Course", "2024-Spring", teacher.ID)
	f.createStudent(t, "Nora", "Okafor", "Computer Science", 2024)
	f.createStudent(t, "Ben", "Diaz", "History", 2023)

	page := NewDashboard(f.env)
	if err := page.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	stats := map[string]string{}
	for _, s := range page.Stats() {
		stats[s.Title] = s.Value
	}
	if stats["Total Students"] != "2" {
		t.Errorf("Total Students = %s", stats["Total Students"])
	}
	// Only the current-semester course counts.
	if stats["Active Courses"] != "1" {
		t.Errorf("Active Courses = %s", stats["Active Courses"])
	}
	if stats["Total Teachers"] != "1" {
		t.Errorf("Total Teachers = %s", stats["Total Teachers"])
	}
	if stats["Current Semester"] != "2025-Fall" {
		t.Errorf("Current Semester = %s", stats["Current Semester"])
	}

	if len(page.RecentLogs()) == 0 {
		t.Error("recent activity should list the seeding mutations")
	}
	// Newest first: the last mutation above is the second student create.
	if got := page.RecentLogs()[0].Action; got != "student.create" {
		t.Errorf("latest log action = %s", got)
	}

	var sb strings.Builder
	if err := page.Render(&sb); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sb.String(), "Recent activity:") {
		t.Errorf("render missing activity section:\n%s", sb.String())
	}
}

func TestLogsFilterByAction(t *testing.T) {
	f := newFixture(t, "2025-Fall")
	ctx := context.Background()
	f.createTeacher(t, "Alan", "Turing", "Computer Science")
	f.createStudent(t, "Nora", "Okafor", "Computer Science", 2024)

	page := NewLogs(f.env, 10)
	page.SetAction("student.")
	if err := page.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if len(page.Rows()) != 1 {
		t.Fatalf("filtered logs = %d, want 1", len(page.Rows()))
	}
	if page.Rows()[0].Action != "student.create" {
		t.Errorf("action = %s", page.Rows()[0].Action)
	}
}

func TestSettingsSemesterRoundTrip(t *testing.T) {
	f := newFixture(t, "2025-Fall")
	ctx := context.Background()

	page := NewSettings(f.env)
	if err := page.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if f.env.Session.Semester() != "2025-Fall" {
		t.Fatalf("session semester = %q", f.env.Session.Semester())
	}

	if err := page.SetSemester(ctx, "2026-Spring"); err != nil {
		t.Fatal(err)
	}
	if f.env.Session.Semester() != "2026-Spring" {
		t.Error("session should track the updated semester")
	}

	// The backend holds the new value for fresh sessions too.
	setting, err := f.env.Client.CurrentSemester(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if setting.Value != "2026-Spring" {
		t.Errorf("backend semester = %q", setting.Value)
	}

	var sb strings.Builder
	if err := page.Render(&sb); err != nil {
		t.Fatal(err)
	}
	if sb.String() != "Current semester: 2026-Spring\n" {
		t.Errorf("render = %q", sb.String())
	}
}
