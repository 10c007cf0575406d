package pages

import (
	"context"
	"testing"
	"time"

	"registryctl/internal/api"
	"registryctl/internal/model"
	"registryctl/internal/session"
)

// login opens a fresh client against the fixture's backend and
// authenticates, so tests can prove an account actually works.
func login(t *testing.T, f *fixture, username, password string) (*api.Client, error) {
	t.Helper()
	sess := session.New("")
	client := api.New(f.server.URL(), sess, 5*time.Second)
	client.NoCoalesceWindow()
	resp, err := client.Login(context.Background(), api.Credentials{Username: username, Password: password})
	if err != nil {
		return nil, err
	}
	sess.SetToken(resp.Token)
	sess.SetUser(&resp.User)
	return client, nil
}

func TestUsersCreateAssignDelete(t *testing.T) {
	f := newFixture(t, "2025-Fall")
	ctx := context.Background()

	teacher := f.createTeacher(t, "Alan", "Turing", "Computer Science")

	page := NewUsers(f.env, 10)
	if err := page.Create(ctx, "aturing@registry.local", "secret123", model.RoleTeacher, ""); err != nil {
		t.Fatal(err)
	}

	var account *model.User
	for i, u := range page.Rows() {
		if u.Email == "aturing@registry.local" {
			account = &page.Rows()[i]
		}
	}
	if account == nil {
		t.Fatal("created account missing from the list")
	}
	// Username defaults to the local part of the email.
	if account.Username != "aturing" || account.EffectiveRole() != model.RoleTeacher {
		t.Errorf("account = %+v", account)
	}

	// The same email cannot get a second account.
	if err := page.Create(ctx, "aturing@registry.local", "other456", model.RoleTeacher, ""); err == nil {
		t.Fatal("duplicate account should be rejected")
	}

	// The new credentials work, and the account can back a teacher record.
	if _, err := login(t, f, "aturing", "secret123"); err != nil {
		t.Fatalf("login with created account: %v", err)
	}
	teachers := NewTeachers(f.env, 10)
	if err := teachers.AssignUser(ctx, teacher.ID, account.ID); err != nil {
		t.Fatal(err)
	}
	if row := teachers.Rows()[0]; row.UserID == nil || *row.UserID != account.ID {
		t.Errorf("teacher not linked: %+v", row)
	}

	// Deleting the account unlinks the teacher and kills the login.
	if err := page.Delete(ctx, account.ID); err != nil {
		t.Fatal(err)
	}
	if err := teachers.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if row := teachers.Rows()[0]; row.UserID != nil {
		t.Error("deleting the account should unlink the teacher")
	}
	if _, err := login(t, f, "aturing", "secret123"); err == nil {
		t.Error("deleted account should not log in")
	}
}

func TestUsersFilterByRole(t *testing.T) {
	f := newFixture(t, "2025-Fall")
	ctx := context.Background()

	page := NewUsers(f.env, 10)
	if err := page.Create(ctx, "viewer@registry.local", "lookonly1", model.RoleViewer, ""); err != nil {
		t.Fatal(err)
	}

	page.SetRole(model.RoleViewer)
	if err := page.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	rows := page.Rows()
	if len(rows) != 1 || rows[0].Username != "viewer" {
		t.Fatalf("viewer filter returned %+v", rows)
	}
}

func TestChangePasswordRoundTrip(t *testing.T) {
	f := newFixture(t, "2025-Fall")
	ctx := context.Background()

	page := NewUsers(f.env, 10)
	if err := page.Create(ctx, "nora@registry.local", "first123", model.RoleViewer, ""); err != nil {
		t.Fatal(err)
	}
	client, err := login(t, f, "nora", "first123")
	if err != nil {
		t.Fatal(err)
	}

	// The old password must match.
	if err := client.ChangePassword(ctx, "wrong000", "second456"); err == nil {
		t.Fatal("wrong current password should be rejected")
	}
	if err := client.ChangePassword(ctx, "first123", "second456"); err != nil {
		t.Fatal(err)
	}

	if _, err := login(t, f, "nora", "first123"); err == nil {
		t.Error("old password should stop working")
	}
	if _, err := login(t, f, "nora", "second456"); err != nil {
		t.Errorf("new password should work: %v", err)
	}
}
