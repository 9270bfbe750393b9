// Package model defines the data structures used throughout the application.
package model

import "time"

// Point limits for the like system. Points only ever move through the
// increment path, and the bounds are enforced at the point of mutation —
// readers never re-check them.
const (
	MinPoints = 0
	MaxPoints = 100
)

// User represents a community member ranked by likes.
//
// GithubLink is the natural external identifier — bulk creation dedups on
// it, and the UNIQUE constraint in the DB guarantees one profile per GitHub
// account. We still generate our own internal string ID (xid) so our
// primary keys aren't tied to a third party's URL scheme.
//
// WHY A Version FIELD?
// Points are mutated concurrently by the like endpoint. Version is a
// revision counter bumped by every successful conditional write; a write
// that carries a stale Version is rejected instead of silently clobbering
// a concurrent increment. It exists purely for optimistic concurrency
// control — it is never business data, so it stays out of the JSON we
// return to clients.
type User struct {
	ID         string    `json:"id"         db:"id"`
	Name       string    `json:"name"       db:"name"`        // Display name, 3-50 characters
	GithubLink string    `json:"githubLink" db:"github_link"` // e.g. "https://github.com/sakif"
	Points     int       `json:"points"     db:"points"`      // Like score, clamped to [0, 100]
	Version    int64     `json:"-"          db:"version"`     // Optimistic-lock revision counter
	CreatedAt  time.Time `json:"createdAt"  db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt"  db:"updated_at"`
}

// ClampPoints constrains p to the valid points range.
func ClampPoints(p int) int {
	if p > MaxPoints {
		return MaxPoints
	}
	if p < MinPoints {
		return MinPoints
	}
	return p
}
