package pages

import (
	"context"
	"fmt"
	"io"

	"registryctl/internal/api"
	"registryctl/internal/model"
	"registryctl/internal/paginate"
)

// Stat is one dashboard tile.
type Stat struct {
	Title       string
	Value       string
	Description string
}

// Dashboard summarizes the registry: entity counts scoped to the current
// semester plus the most recent audit entries. Counts come from list
// endpoints with limit 1, reading only the total.
type Dashboard struct {
	env Env

	teacherID  int64
	stats      []Stat
	recentLogs []model.Log
}

// NewDashboard builds the page.
func NewDashboard(env Env) *Dashboard {
	return &Dashboard{env: env}
}

// Refresh gathers stats for the session's role. A 403 on any single count
// zeroes that tile instead of failing the whole dashboard.
func (p *Dashboard) Refresh(ctx context.Context) error {
	p.resolveTeacherScope(ctx)

	semester := p.env.Session.Semester()
	one := paginate.NewCursor(1, 1)

	switch {
	case p.env.Session.IsTeacher() && p.teacherID != 0:
		courses, err := p.env.Client.ListCourses(ctx, api.CourseFilter{
			Semester:  semester,
			TeacherID: p.teacherID,
		}, one)
		if err != nil && !api.IsForbidden(err) {
			p.env.notify().Error("Failed to load dashboard: " + err.Error())
			return err
		}
		p.stats = []Stat{
			{Title: "My Courses", Value: fmt.Sprintf("%d", courses.Total), Description: "This semester"},
			{Title: "Current Semester", Value: orNotSet(semester), Description: "Active semester"},
		}
	default:
		students := p.countStudents(ctx, one)
		courses := p.countCourses(ctx, semester, one)
		teachers := p.countTeachers(ctx, one)
		p.stats = []Stat{
			{Title: "Total Students", Value: fmt.Sprintf("%d", students), Description: "Active students"},
			{Title: "Active Courses", Value: fmt.Sprintf("%d", courses), Description: "This semester"},
			{Title: "Total Teachers", Value: fmt.Sprintf("%d", teachers), Description: "Faculty members"},
			{Title: "Current Semester", Value: orNotSet(semester), Description: "Active semester"},
		}
	}

	logs, err := p.env.Client.ListLogs(ctx, api.LogFilter{}, paginate.NewCursor(1, 5))
	if err == nil {
		p.recentLogs = logs.Data
	}
	return nil
}

// countStudents returns the active-student total, zero on a permissions
// failure.
func (p *Dashboard) countStudents(ctx context.Context, cur *paginate.Cursor) int64 {
	page, err := p.env.Client.ListStudents(ctx, api.StudentFilter{Status: model.StudentActive}, cur)
	if err != nil {
		return 0
	}
	return page.Total
}

func (p *Dashboard) countCourses(ctx context.Context, semester string, cur *paginate.Cursor) int64 {
	page, err := p.env.Client.ListCourses(ctx, api.CourseFilter{Semester: semester}, cur)
	if err != nil {
		return 0
	}
	return page.Total
}

func (p *Dashboard) countTeachers(ctx context.Context, cur *paginate.Cursor) int64 {
	page, err := p.env.Client.ListTeachers(ctx, api.TeacherFilter{}, cur)
	if err != nil {
		return 0
	}
	return page.Total
}

func (p *Dashboard) resolveTeacherScope(ctx context.Context) {
	if !p.env.Session.IsTeacher() || p.teacherID != 0 {
		return
	}
	user := p.env.Session.User()
	if user == nil {
		return
	}
	page, err := p.env.Client.ListTeachers(ctx, api.TeacherFilter{}, paginate.NewCursor(1, 100))
	if err != nil {
		return
	}
	for _, t := range page.Data {
		if t.UserID != nil && *t.UserID == user.ID {
			p.teacherID = t.ID
			return
		}
	}
}

// Stats returns the computed tiles.
func (p *Dashboard) Stats() []Stat { return p.stats }

// RecentLogs returns the latest audit entries.
func (p *Dashboard) RecentLogs() []model.Log { return p.recentLogs }

// Render writes the tiles and recent activity.
func (p *Dashboard) Render(w io.Writer) error {
	for _, s := range p.stats {
		fmt.Fprintf(w, "%-18s %10s  %s\n", s.Title, s.Value, s.Description)
	}
	if len(p.recentLogs) > 0 {
		fmt.Fprintln(w, "\nRecent activity:")
		for _, l := range p.recentLogs {
			fmt.Fprintf(w, "  %s  %s  %s\n", l.Timestamp, l.Action, l.Details)
		}
	}
	return nil
}

func orNotSet(s string) string {
	if s == "" {
		return "Not set"
	}
	return s
}
