package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/proelevate/backend/internal/apperror"
	"github.com/proelevate/backend/internal/model"
	"github.com/proelevate/backend/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, name, github_link, points, version, created_at, updated_at`

// scanUser reads one user row. Works with both sql.Row and sql.Rows via the
// shared Scan signature.
func scanUser(row interface{ Scan(...any) error }, u *model.User) error {
	return row.Scan(
		&u.ID,
		&u.Name,
		&u.GithubLink,
		&u.Points,
		&u.Version,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
}

// Create inserts a new user. The ID, timestamps, and initial version are
// assigned here — the caller only provides Name and GithubLink.
func (db *DB) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.ID = xid.New().String()
	user.Points = model.ClampPoints(user.Points)
	user.Version = 0
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, name, github_link, points, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		user.GithubLink,
		user.Points,
		user.Version,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		// The UNIQUE constraint on github_link is our dedup key — surface
		// it as a conflict rather than a raw driver error.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperror.Conflict("User")
		}
		return fmt.Errorf("sqlite: inserting user (githubLink=%s): %w", user.GithubLink, err)
	}

	return nil
}

// GetByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if err := scanUser(row, &u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("User")
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}

	return &u, nil
}

// GetByGithubLink retrieves a user by their GitHub link.
func (db *DB) GetByGithubLink(ctx context.Context, link string) (*model.User, error) {
	var u model.User

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE github_link = ?`, link)
	if err := scanUser(row, &u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("User")
		}
		return nil, fmt.Errorf("sqlite: getting user by link %s: %w", link, err)
	}

	return &u, nil
}

// ListByGithubLinks returns the users whose github_link is in links.
// Used by bulk creation to split incoming users into new vs duplicate.
func (db *DB) ListByGithubLinks(ctx context.Context, links []string) ([]model.User, error) {
	if len(links) == 0 {
		return []model.User{}, nil
	}

	// Build the (?, ?, ...) placeholder list — database/sql has no native
	// slice expansion for IN clauses.
	placeholders := strings.Repeat("?,", len(links))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(links))
	for i, l := range links {
		args[i] = l
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE github_link IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users by links: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// List returns users ordered by points, highest first (the leaderboard order).
func (db *DB) List(ctx context.Context, opts repository.ListOptions) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 ORDER BY points DESC, created_at ASC
		 LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// Update writes the user's mutable fields back. This is the plain PATCH
// path — it does not touch version and carries no concurrency guarantee.
// Score changes must go through ConditionalIncrement instead.
func (db *DB) Update(ctx context.Context, user *model.User) error {
	user.Points = model.ClampPoints(user.Points)
	user.UpdatedAt = time.Now().UTC()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET name = ?, github_link = ?, points = ?, updated_at = ?
		 WHERE id = ?`,
		user.Name,
		user.GithubLink,
		user.Points,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking update of user %s: %w", user.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("User")
	}

	return nil
}

// Delete removes a user by ID.
func (db *DB) Delete(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking delete of user %s: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("User")
	}

	return nil
}

// ConditionalIncrement applies the optimistic-locked +1 to a user's points.
//
// The WHERE clause carries both the id and the version the caller read
// earlier. The UPDATE is a single atomic statement, so of any set of
// concurrent callers holding the same version, exactly one matches the row;
// for everyone else RowsAffected is 0 and we report apperror.ErrConflict
// without having mutated anything. There is deliberately no retry here —
// stale writers are rejected and the client resubmits.
//
// Points are clamped to MaxPoints inside the statement: at the cap the
// write still happens (version still advances), the value just stays put.
func (db *DB) ConditionalIncrement(ctx context.Context, id string, expectedVersion int64) (*model.User, error) {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users
		 SET points = MIN(points + 1, ?), version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		model.MaxPoints,
		time.Now().UTC(),
		id,
		expectedVersion,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: incrementing points for user %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking increment for user %s: %w", id, err)
	}
	if affected == 0 {
		// Either the row is gone or the version moved under us. Tell the
		// caller which, so the handler can answer 404 vs 409.
		if _, err := db.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, apperror.Conflict("User")
	}

	return db.GetByID(ctx, id)
}
