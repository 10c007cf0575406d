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

// Users is the login-account management screen. Accounts are created here
// and linked to teacher records from the teachers screen.
type Users struct {
	env Env

	email string
	role  string

	Cursor *paginate.Cursor

	seq     fetchSeq
	rows    []model.User
	page    api.Page[model.User]
	lastErr error
}

// NewUsers builds the page.
func NewUsers(env Env, limit int) *Users {
	return &Users{env: env, Cursor: paginate.NewCursor(1, limit)}
}

// SetEmail filters by email substring and resets to page 1.
func (p *Users) SetEmail(email string) {
	p.email = email
	p.Cursor.SetPage(1)
}

// SetRole filters by role name and resets to page 1.
func (p *Users) SetRole(role string) {
	p.role = role
	p.Cursor.SetPage(1)
}

// Refresh issues the list request for the current filter and cursor.
func (p *Users) Refresh(ctx context.Context) error {
	seq := p.seq.next()
	page, err := p.env.Client.ListUsers(ctx, api.UserFilter{
		Email: p.email,
		Role:  p.role,
	}, p.Cursor)
	if p.seq.stale(seq) {
		return nil
	}
	if err != nil {
		p.lastErr = err
		p.env.notify().Error("Failed to load users: " + err.Error())
		return err
	}
	p.lastErr = nil
	p.rows = page.Data
	p.page = page
	return nil
}

// Rows returns the last successfully fetched page of accounts.
func (p *Users) Rows() []model.User { return p.rows }

// Total returns the backend's total row count for the current filter.
func (p *Users) Total() int64 { return p.page.Total }

// Create makes a login account under the given role name, rejecting an email
// that already has one, then refetches. An empty username defaults to the
// local part of the email.
func (p *Users) Create(ctx context.Context, email, password, roleName, username string) error {
	existing, err := p.env.Client.UserByEmail(ctx, email)
	if err != nil {
		p.env.notify().Error("Failed to check for an existing account: " + err.Error())
		return err
	}
	if existing != nil {
		err := fmt.Errorf("an account for %s already exists", email)
		p.env.notify().Error(err.Error())
		return err
	}
	created, err := p.env.Client.CreateUser(ctx, email, password, roleName, username)
	if err != nil {
		p.env.notify().Error("Failed to create account: " + err.Error())
		return err
	}
	p.env.notify().Success("Created account " + created.Username)
	return p.Refresh(ctx)
}

// Delete removes a login account and refetches.
func (p *Users) Delete(ctx context.Context, id int64) error {
	if err := p.env.Client.DeleteUser(ctx, id); err != nil {
		p.env.notify().Error("Failed to delete account: " + err.Error())
		return err
	}
	p.env.notify().Success("Deleted account")
	return p.Refresh(ctx)
}

// Render writes the current page as a table.
func (p *Users) Render(w io.Writer) error {
	t := table.Table[model.User]{
		Columns: []table.Column[model.User]{
			{Key: "id", Header: "ID", Align: table.AlignRight,
				Render: func(u model.User) string { return strconv.FormatInt(u.ID, 10) }},
			{Key: "username", Header: "Username",
				Accessor: func(u model.User) string { return u.Username }},
			{Key: "email", Header: "Email",
				Accessor: func(u model.User) string { return u.Email }},
			{Key: "role", Header: "Role",
				Render: func(u model.User) string { return u.EffectiveRole() }},
			{Key: "teacher", Header: "Teacher",
				Render: func(u model.User) string {
					if u.TeacherID == nil {
						return "-"
					}
					return strconv.FormatInt(*u.TeacherID, 10)
				}},
		},
		EmptyMessage: "No accounts found",
		Server: &table.ServerPaging{
			CurrentPage: p.page.CurrentPage,
			TotalPages:  p.page.TotalPages,
			PageNumbers: p.Cursor.PageNumbers(p.page.TotalPages),
		},
	}
	return t.Render(w, p.rows)
}
