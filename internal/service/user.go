// Package service contains the business logic layer of the application.
//
// The layering follows the usual three-tier shape:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces rules, orchestrates
//	Repository (data layer)  → reads/writes the database
//
// Services accept primitives and return domain errors (apperror), never
// HTTP types — the handler translates both directions. Dependencies come
// in as interfaces so tests inject mocks instead of SQLite/Redis/Kafka.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/proelevate/backend/internal/apperror"
	"github.com/proelevate/backend/internal/model"
	"github.com/proelevate/backend/internal/repository"
)

// Validation constants. The name limits and the GitHub link shape mirror
// what clients are told in the API docs.
const (
	MinNameLength    = 3
	MaxNameLength    = 50
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// githubLinkPattern accepts a GitHub profile URL, with or without scheme
// and www: "github.com/name", "https://www.github.com/name/".
var githubLinkPattern = regexp.MustCompile(`^(https?://)?(www\.)?github\.com/[a-zA-Z0-9-]+/?$`)

// UserService handles the plain CRUD side of user management. The score
// increment path lives in LikeService — it has concurrency concerns this
// service doesn't.
type UserService struct {
	repo   repository.UserRepository
	logger *slog.Logger
}

// NewUserService creates a UserService with its injected dependencies.
func NewUserService(repo repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
	}
}

// validateUserInput enforces the name and githubLink rules shared by the
// single and bulk creation paths.
func validateUserInput(name, githubLink string) error {
	if len(name) < MinNameLength {
		return apperror.ValidationFailed("name",
			fmt.Sprintf("Name should be at least %d characters long", MinNameLength))
	}
	if len(name) > MaxNameLength {
		return apperror.ValidationFailed("name",
			fmt.Sprintf("Name should not exceed %d characters", MaxNameLength))
	}
	if !githubLinkPattern.MatchString(githubLink) {
		return apperror.ValidationFailed("githubLink", "Invalid github link")
	}
	return nil
}

// Create validates and saves a new user. The githubLink is the dedup key:
// creating a second user with the same link fails with a validation error
// naming the existing user's ID.
func (s *UserService) Create(ctx context.Context, name, githubLink string) (*model.User, error) {
	name = strings.TrimSpace(name)
	githubLink = strings.TrimSpace(githubLink)

	if err := validateUserInput(name, githubLink); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByGithubLink(ctx, githubLink); err == nil {
		return nil, apperror.ValidationFailed("githubLink",
			fmt.Sprintf("User already exists with user id %s", existing.ID))
	}

	user := &model.User{
		Name:       name,
		GithubLink: githubLink,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		s.logger.Error("failed to create user",
			slog.String("githubLink", githubLink),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user created",
		slog.String("id", user.ID),
		slog.String("name", user.Name),
	)

	return user, nil
}

// BulkInput is one entry of a bulk creation request.
type BulkInput struct {
	Name       string
	GithubLink string
}

// BulkResult reports which users a bulk creation actually inserted and
// which already existed (matched by githubLink).
type BulkResult struct {
	CreatedUsers   []model.User `json:"createdUsers"`
	DuplicateUsers []model.User `json:"duplicateUsers"`
}

// CreateBulk inserts every input whose githubLink isn't already taken.
// Existing users are returned in DuplicateUsers rather than causing the
// whole batch to fail; duplicates within the batch itself are created
// once and the rest silently skipped.
func (s *UserService) CreateBulk(ctx context.Context, inputs []BulkInput) (*BulkResult, error) {
	links := make([]string, 0, len(inputs))
	for i := range inputs {
		inputs[i].Name = strings.TrimSpace(inputs[i].Name)
		inputs[i].GithubLink = strings.TrimSpace(inputs[i].GithubLink)
		if err := validateUserInput(inputs[i].Name, inputs[i].GithubLink); err != nil {
			return nil, err
		}
		links = append(links, inputs[i].GithubLink)
	}

	existing, err := s.repo.ListByGithubLinks(ctx, links)
	if err != nil {
		s.logger.Error("failed to look up existing users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("looking up existing users: %w", err)
	}

	taken := make(map[string]bool, len(existing))
	for _, u := range existing {
		taken[u.GithubLink] = true
	}

	result := &BulkResult{
		CreatedUsers:   []model.User{},
		DuplicateUsers: existing,
	}

	for _, in := range inputs {
		if taken[in.GithubLink] {
			continue
		}
		user := &model.User{Name: in.Name, GithubLink: in.GithubLink}
		if err := s.repo.Create(ctx, user); err != nil {
			s.logger.Error("failed to create user in bulk",
				slog.String("githubLink", in.GithubLink),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("creating user %s: %w", in.GithubLink, err)
		}
		taken[in.GithubLink] = true
		result.CreatedUsers = append(result.CreatedUsers, *user)
	}

	s.logger.Info("bulk users created",
		slog.Int("created", len(result.CreatedUsers)),
		slog.Int("duplicates", len(result.DuplicateUsers)),
	)

	return result, nil
}

// List returns users in leaderboard order (points descending), paginated.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.repo.List(ctx, repository.ListOptions{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		s.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing users: %w", err)
	}

	return users, nil
}

// GetByID retrieves a single user.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	return s.repo.GetByID(ctx, id)
}

// Update applies a partial update: empty name/githubLink and nil points
// mean "don't change". Points set this way are clamped but carry no
// concurrency guarantee — concurrent likes can interleave with it.
func (s *UserService) Update(ctx context.Context, id, name, githubLink string, points *int) (*model.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		if len(name) < MinNameLength || len(name) > MaxNameLength {
			return nil, apperror.ValidationFailed("name",
				fmt.Sprintf("Name must be between %d and %d characters", MinNameLength, MaxNameLength))
		}
		user.Name = name
	}
	if githubLink = strings.TrimSpace(githubLink); githubLink != "" {
		if !githubLinkPattern.MatchString(githubLink) {
			return nil, apperror.ValidationFailed("githubLink", "Invalid github link")
		}
		user.GithubLink = githubLink
	}
	if points != nil {
		user.Points = model.ClampPoints(*points)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		s.logger.Error("failed to update user",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("user updated", slog.String("id", user.ID))

	return user, nil
}

// Delete removes a user by ID.
func (s *UserService) Delete(ctx context.Context, id string) (*model.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.logger.Info("user deleted", slog.String("id", id))
	return user, nil
}
