package pages

import (
	"context"
	"fmt"
	"io"
)

// Settings manages the process-wide current-semester setting.
type Settings struct {
	env Env
}

// NewSettings builds the page.
func NewSettings(env Env) *Settings {
	return &Settings{env: env}
}

// Refresh seeds the session's current semester from the backend.
func (p *Settings) Refresh(ctx context.Context) error {
	setting, err := p.env.Client.CurrentSemester(ctx)
	if err != nil {
		p.env.notify().Error("Failed to load current semester: " + err.Error())
		return err
	}
	p.env.Session.SetSemester(setting.Value)
	return nil
}

// SetSemester updates the backend and, on success, the session default
// every semester-scoped page reads.
func (p *Settings) SetSemester(ctx context.Context, semester string) error {
	if err := p.env.Client.SetCurrentSemester(ctx, semester); err != nil {
		p.env.notify().Error("Failed to update semester: " + err.Error())
		return err
	}
	p.env.Session.SetSemester(semester)
	p.env.notify().Success("Current semester set to " + semester)
	return nil
}

// Render writes the current setting.
func (p *Settings) Render(w io.Writer) error {
	semester := p.env.Session.Semester()
	if semester == "" {
		semester = "not set"
	}
	_, err := fmt.Fprintf(w, "Current semester: %s\n", semester)
	return err
}
