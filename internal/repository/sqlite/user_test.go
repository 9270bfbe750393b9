package sqlite

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/proelevate/backend/internal/apperror"
	"github.com/proelevate/backend/internal/model"
	"github.com/proelevate/backend/internal/repository"
)

// newTestDB returns a *DB backed by an in-memory SQLite database. Each test
// gets its own database, destroyed when the connection closes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser creates a user and fails the test if it errors.
func createTestUser(t *testing.T, db *DB, name, link string) *model.User {
	t.Helper()
	user := &model.User{Name: name, GithubLink: link}
	if err := db.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestUserCreate(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		Name:       "testuser",
		GithubLink: "https://github.com/testuser",
	}

	if err := db.Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if user.ID == "" {
		t.Error("Create() did not set user.ID")
	}
	if user.Version != 0 {
		t.Errorf("Version = %d, want 0 for a new user", user.Version)
	}
	if user.Points != 0 {
		t.Errorf("Points = %d, want 0 for a new user", user.Points)
	}
	if user.CreatedAt.IsZero() {
		t.Error("Create() did not set user.CreatedAt")
	}
}

func TestUserCreate_DuplicateGithubLink(t *testing.T) {
	db := newTestDB(t)

	createTestUser(t, db, "firstuser", "https://github.com/shared")

	duplicate := &model.User{
		Name:       "seconduser",
		GithubLink: "https://github.com/shared",
	}
	err := db.Create(context.Background(), duplicate)
	if err == nil {
		t.Fatal("Create() should have failed for duplicate github_link")
	}
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create() error = %v, want ErrConflict", err)
	}
}

// =========================================================================
// GET TESTS
// =========================================================================

func TestUserGetByID(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "alice", "https://github.com/alice")

	got, err := db.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "alice" {
		t.Errorf("Name = %q, want %q", got.Name, "alice")
	}
	if got.Version != 0 {
		t.Errorf("Version = %d, want 0", got.Version)
	}
}

func TestUserGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), "no-such-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByGithubLink(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "bob", "https://github.com/bob")

	got, err := db.GetByGithubLink(context.Background(), "https://github.com/bob")
	if err != nil {
		t.Fatalf("GetByGithubLink() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("ID = %q, want %q", got.ID, created.ID)
	}
}

func TestUserListByGithubLinks(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice", "https://github.com/alice")
	createTestUser(t, db, "bob", "https://github.com/bob")
	createTestUser(t, db, "carol", "https://github.com/carol")

	got, err := db.ListByGithubLinks(context.Background(), []string{
		"https://github.com/alice",
		"https://github.com/carol",
		"https://github.com/nobody",
	})
	if err != nil {
		t.Fatalf("ListByGithubLinks() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d users, want 2", len(got))
	}
}

func TestUserListByGithubLinks_Empty(t *testing.T) {
	db := newTestDB(t)

	got, err := db.ListByGithubLinks(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListByGithubLinks() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d users, want 0", len(got))
	}
}

// =========================================================================
// LIST TESTS
// =========================================================================

func TestUserList_OrderedByPointsDesc(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	low := createTestUser(t, db, "lowscore", "https://github.com/lowscore")
	high := createTestUser(t, db, "highscore", "https://github.com/highscore")

	// Give "highscore" two points via the increment path.
	for i := 0; i < 2; i++ {
		u, err := db.GetByID(ctx, high.ID)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if _, err := db.ConditionalIncrement(ctx, high.ID, u.Version); err != nil {
			t.Fatalf("ConditionalIncrement() error = %v", err)
		}
	}

	users, err := db.List(ctx, repository.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d users, want 2", len(users))
	}
	if users[0].ID != high.ID {
		t.Errorf("first user = %q, want the higher-scored %q", users[0].ID, high.ID)
	}
	if users[1].ID != low.ID {
		t.Errorf("second user = %q, want %q", users[1].ID, low.ID)
	}
}

// =========================================================================
// UPDATE / DELETE TESTS
// =========================================================================

func TestUserUpdate(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "oldname", "https://github.com/oldname")

	user.Name = "newname"
	if err := db.Update(context.Background(), user); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := db.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "newname" {
		t.Errorf("Name = %q, want %q", got.Name, "newname")
	}
}

func TestUserUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Update(context.Background(), &model.User{ID: "ghost", Name: "ghost"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestUserDelete(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "doomed", "https://github.com/doomed")

	if err := db.Delete(context.Background(), user.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := db.GetByID(context.Background(), user.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
}

func TestUserDelete_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Delete(context.Background(), "ghost")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// CONDITIONAL INCREMENT TESTS
// =========================================================================

func TestConditionalIncrement(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "liked", "https://github.com/liked")

	updated, err := db.ConditionalIncrement(context.Background(), user.ID, user.Version)
	if err != nil {
		t.Fatalf("ConditionalIncrement() error = %v", err)
	}

	if updated.Points != 1 {
		t.Errorf("Points = %d, want 1", updated.Points)
	}
	if updated.Version != user.Version+1 {
		t.Errorf("Version = %d, want %d", updated.Version, user.Version+1)
	}
}

func TestConditionalIncrement_StaleVersion(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "contended", "https://github.com/contended")

	// First write with version 0 succeeds and moves the row to version 1.
	if _, err := db.ConditionalIncrement(ctx, user.ID, 0); err != nil {
		t.Fatalf("first ConditionalIncrement() error = %v", err)
	}

	// Second write still holding version 0 must be rejected untouched.
	_, err := db.ConditionalIncrement(ctx, user.ID, 0)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("stale ConditionalIncrement() error = %v, want ErrConflict", err)
	}

	got, err := db.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Points != 1 {
		t.Errorf("Points = %d, want 1 — the stale write must not apply", got.Points)
	}
	if got.Version != 1 {
		t.Errorf("Version = %d, want 1 — the stale write must not bump it", got.Version)
	}
}

func TestConditionalIncrement_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.ConditionalIncrement(context.Background(), "ghost", 0)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("ConditionalIncrement() error = %v, want ErrNotFound", err)
	}
}

func TestConditionalIncrement_ClampsAtMax(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "maxed", "https://github.com/maxed")

	// Push the row to the cap directly; Update clamps like everything else.
	user.Points = model.MaxPoints
	if err := db.Update(ctx, user); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	current, err := db.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	updated, err := db.ConditionalIncrement(ctx, user.ID, current.Version)
	if err != nil {
		t.Fatalf("ConditionalIncrement() at cap error = %v", err)
	}

	// The value stays put but the write still happens: version advances.
	if updated.Points != model.MaxPoints {
		t.Errorf("Points = %d, want clamp at %d", updated.Points, model.MaxPoints)
	}
	if updated.Version != current.Version+1 {
		t.Errorf("Version = %d, want %d — the write itself still executes", updated.Version, current.Version+1)
	}
}

// Two concurrent writers racing on the same version: exactly one wins, the
// other gets Conflict, and the row advances by exactly one revision.
func TestConditionalIncrement_ConcurrentRace(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "raced", "https://github.com/raced")

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = db.ConditionalIncrement(ctx, user.ID, 0)
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, apperror.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error from racing increment: %v", err)
		}
	}
	if wins != 1 || conflicts != 1 {
		t.Errorf("wins = %d, conflicts = %d; want exactly 1 and 1", wins, conflicts)
	}

	got, err := db.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Version != 1 {
		t.Errorf("Version = %d, want 1 — the race must produce one revision, never two", got.Version)
	}
	if got.Points != 1 {
		t.Errorf("Points = %d, want 1", got.Points)
	}
}

// Sequential read-then-increment loops never conflict and land exactly at N.
func TestConditionalIncrement_SequentialLoop(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "steady", "https://github.com/steady")

	const n = 5
	for i := 0; i < n; i++ {
		current, err := db.GetByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if _, err := db.ConditionalIncrement(ctx, user.ID, current.Version); err != nil {
			t.Fatalf("increment %d error = %v", i, err)
		}
	}

	got, _ := db.GetByID(ctx, user.ID)
	if got.Points != n {
		t.Errorf("Points = %d, want %d", got.Points, n)
	}
	if got.Version != n {
		t.Errorf("Version = %d, want %d", got.Version, n)
	}
}
