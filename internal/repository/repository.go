// Package repository defines the storage contracts consumed by the service
// layer. Implementations live in subpackages (sqlite).
package repository

import (
	"context"

	"github.com/proelevate/backend/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// UserRepository is the persistent, versioned User store.
//
// ConditionalIncrement is the optimistic-lock primitive the like path is
// built on: it bumps points (clamped) and version in one atomic statement,
// but only if the stored version still equals expectedVersion. At most one
// of any set of concurrent callers holding the same version succeeds; the
// rest get apperror.ErrConflict without mutating anything.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByGithubLink(ctx context.Context, link string) (*model.User, error)
	ListByGithubLinks(ctx context.Context, links []string) ([]model.User, error)
	List(ctx context.Context, opts ListOptions) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
	ConditionalIncrement(ctx context.Context, id string, expectedVersion int64) (*model.User, error)
}
