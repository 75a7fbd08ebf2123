package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/password-analyzer/internal/apperror"
	"github.com/sakif/password-analyzer/internal/model"
	"github.com/sakif/password-analyzer/internal/repository"
)

func newTestUserDB(t *testing.T) *UserDB {
	t.Helper()
	return newTestDB(t).Users()
}

// createTestUser creates a user and fails the test if it errors.
func createTestUser(t *testing.T, u *UserDB, email, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:         username,
		Email:            email,
		FullName:         "Test " + username,
		PasswordHash:     "$2a$04$hash",
		PasswordStrength: "medium",
	}
	if err := u.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestUserCreate(t *testing.T) {
	u := newTestUserDB(t)

	user := createTestUser(t, u, "test@example.com", "test")

	if user.ID == "" {
		t.Error("Create() did not set user.ID")
	}
	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Error("Create() did not set timestamps")
	}
}

func TestUserCreate_KeepsCallerID(t *testing.T) {
	u := newTestUserDB(t)

	user := &model.User{ID: "1", Username: "demo_user", Email: "demo@example.com"}
	if err := u.Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if user.ID != "1" {
		t.Errorf("ID = %q, want %q", user.ID, "1")
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	u := newTestUserDB(t)
	createTestUser(t, u, "dup@example.com", "first")

	// Same address, different case.
	err := u.Create(context.Background(), &model.User{Username: "second", Email: "DUP@example.com"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("Create() error = %v, want ErrConflict", err)
	}

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Field != "email" {
		t.Errorf("conflict field = %+v, want email", appErr)
	}
	if appErr.Message != "Email already registered" {
		t.Errorf("Message = %q", appErr.Message)
	}
}

func TestUserCreate_DuplicateGitHubID(t *testing.T) {
	u := newTestUserDB(t)
	ctx := context.Background()

	if err := u.Create(ctx, &model.User{Username: "a", Email: "a@example.com", GitHubID: 42}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	err := u.Create(ctx, &model.User{Username: "b", Email: "b@example.com", GitHubID: 42})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("Create() error = %v, want ErrConflict", err)
	}
}

func TestUserCreate_ManyUnlinkedAccounts(t *testing.T) {
	u := newTestUserDB(t)

	// github_id is NULL for all of these; the unique index must allow it.
	createTestUser(t, u, "a@example.com", "a")
	createTestUser(t, u, "b@example.com", "b")
	createTestUser(t, u, "c@example.com", "c")
}

// =========================================================================
// GET TESTS
// =========================================================================

func TestUserGetByID(t *testing.T) {
	u := newTestUserDB(t)
	created := createTestUser(t, u, "get@example.com", "getter")

	got, err := u.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Email != "get@example.com" || got.Username != "getter" {
		t.Errorf("GetByID() = %+v", got)
	}
	if got.PasswordHash != "$2a$04$hash" {
		t.Errorf("PasswordHash = %q", got.PasswordHash)
	}
	if got.GitHubID != 0 {
		t.Errorf("GitHubID = %d, want 0", got.GitHubID)
	}
	if got.LastLogin != nil {
		t.Errorf("LastLogin = %v, want nil", got.LastLogin)
	}
}

func TestUserGetByID_NotFound(t *testing.T) {
	_, err := newTestUserDB(t).GetByID(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByEmail_CaseInsensitive(t *testing.T) {
	u := newTestUserDB(t)
	created := createTestUser(t, u, "mixed@example.com", "mixed")

	got, err := u.GetByEmail(context.Background(), "  MIXED@Example.com ")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetByEmail() ID = %q, want %q", got.ID, created.ID)
	}

	_, err = u.GetByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByEmail(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByGitHubID(t *testing.T) {
	u := newTestUserDB(t)
	ctx := context.Background()

	user := &model.User{Username: "octocat", Email: "octo@example.com", GitHubID: 583231}
	if err := u.Create(ctx, user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := u.GetByGitHubID(ctx, 583231)
	if err != nil {
		t.Fatalf("GetByGitHubID() error = %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("GetByGitHubID() ID = %q, want %q", got.ID, user.ID)
	}

	if _, err := u.GetByGitHubID(ctx, 1); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByGitHubID(missing) error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func TestUserUpdate(t *testing.T) {
	u := newTestUserDB(t)
	ctx := context.Background()
	user := createTestUser(t, u, "upd@example.com", "before")

	login := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	user.Username = "after"
	user.Bio = "hello"
	user.IsVerified = true
	user.LastLogin = &login
	user.GitHubID = 7

	if err := u.Update(ctx, user); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := u.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Username != "after" || got.Bio != "hello" || !got.IsVerified || got.GitHubID != 7 {
		t.Errorf("Update() did not persist fields: %+v", got)
	}
	if got.LastLogin == nil || !got.LastLogin.Equal(login) {
		t.Errorf("LastLogin = %v, want %v", got.LastLogin, login)
	}
}

func TestUserUpdate_NotFound(t *testing.T) {
	err := newTestUserDB(t).Update(context.Background(), &model.User{ID: "ghost", Email: "g@example.com"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestUserUpdate_EmailTaken(t *testing.T) {
	u := newTestUserDB(t)
	createTestUser(t, u, "taken@example.com", "a")
	b := createTestUser(t, u, "b@example.com", "b")

	b.Email = "taken@example.com"
	if err := u.Update(context.Background(), b); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Update() error = %v, want ErrConflict", err)
	}
}

// =========================================================================
// LIST / COUNT TESTS
// =========================================================================

func TestUserListAndCount(t *testing.T) {
	u := newTestUserDB(t)
	ctx := context.Background()

	n, err := u.Count(ctx)
	if err != nil || n != 0 {
		t.Fatalf("Count() = %d, %v; want 0", n, err)
	}

	for _, name := range []string{"one", "two", "three"} {
		createTestUser(t, u, name+"@example.com", name)
	}

	all, err := u.List(ctx, repository.ListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List() returned %d users, want 3", len(all))
	}
	if all[0].Username != "one" {
		t.Errorf("List()[0] = %q, want oldest first", all[0].Username)
	}

	page, err := u.List(ctx, repository.ListOptions{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("List(page) error = %v", err)
	}
	if len(page) != 1 || page[0].Username != "two" {
		t.Errorf("List(limit 1, offset 1) = %+v", page)
	}

	n, _ = u.Count(ctx)
	if n != 3 {
		t.Errorf("Count() = %d, want 3", n)
	}
}
