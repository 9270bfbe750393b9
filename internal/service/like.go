package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/proelevate/backend/internal/apperror"
	"github.com/proelevate/backend/internal/cache"
	"github.com/proelevate/backend/internal/event"
	"github.com/proelevate/backend/internal/model"
	"github.com/proelevate/backend/internal/repository"
)

// LikeTopic is the event topic score changes are published to.
const LikeTopic = "like_events"

// LikeResult is what a successful increment returns to the caller.
type LikeResult struct {
	UserID string `json:"userId"`
	Points int    `json:"points"`
}

// LikeService coordinates the score increment across three independently
// failing backends: the versioned record store, the snapshot cache, and the
// event publisher.
//
// CONSISTENCY MODEL:
// The two paths through IncrementScore make different guarantees, and the
// asymmetry is intentional (it mirrors the system this one replaces; the
// trade-off is recorded in DESIGN.md):
//
//   - Cache hit: the snapshot is incremented and written straight back to
//     the cache. The record store is never consulted, so the cache can run
//     ahead of (or behind) the store, and two concurrent hits on the same
//     key race last-write-wins; there is no compare-and-swap on the cache.
//   - Cache miss: the store's conditional write is the gate. Of N callers
//     racing on the same version, one wins and the rest get Conflict with
//     nothing mutated. The winner then populates the cache.
//
// Either way exactly one ScoreChangedEvent is emitted per successful
// increment, after the mutation is committed. Publishing is not
// transactional with the mutation: a publish failure is reported to the
// caller, but the new score stays committed.
type LikeService struct {
	repo      repository.UserRepository
	cache     cache.Cache
	publisher event.Publisher
	topic     string
	cacheTTL  time.Duration
	logger    *slog.Logger
}

// NewLikeService creates a LikeService. All three backends are injected;
// topic defaults to LikeTopic when empty.
func NewLikeService(
	repo repository.UserRepository,
	c cache.Cache,
	publisher event.Publisher,
	topic string,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *LikeService {
	if topic == "" {
		topic = LikeTopic
	}
	return &LikeService{
		repo:      repo,
		cache:     c,
		publisher: publisher,
		topic:     topic,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// IncrementScore adds one point (clamped at model.MaxPoints) to the user's
// score and emits a ScoreChangedEvent.
//
// Error taxonomy, in the order the caller can hit it:
//   - apperror.ErrNotFound  — id absent from the store on the miss path
//   - apperror.ErrConflict  — the store's version moved between our read
//     and our conditional write; single attempt, no retry, client resubmits
//   - apperror.ErrPublish   — the event didn't go out; the score change is
//     already committed and stays committed
//   - anything else         — cache/store failure or a malformed cached
//     snapshot, surfaced as an internal error
func (s *LikeService) IncrementScore(ctx context.Context, userID string) (*LikeResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}

	var (
		user *model.User
		err  error
	)

	snapshot, cacheErr := s.cache.Get(ctx, userID)
	switch {
	case cacheErr == nil:
		user, err = s.incrementCached(ctx, userID, snapshot)
	case errors.Is(cacheErr, cache.ErrMiss):
		user, err = s.incrementStored(ctx, userID)
	default:
		s.logger.Error("cache read failed",
			slog.String("userId", userID),
			slog.String("error", cacheErr.Error()),
		)
		return nil, fmt.Errorf("reading cache for user %s: %w", userID, cacheErr)
	}
	if err != nil {
		return nil, err
	}

	result := &LikeResult{UserID: user.ID, Points: user.Points}

	// The mutation is committed at this point. Publishing is best-effort:
	// a failure goes back to the caller but undoes nothing.
	if err := s.publishScoreChanged(ctx, result); err != nil {
		return nil, err
	}

	s.logger.Info("user liked",
		slog.String("userId", user.ID),
		slog.Int("points", user.Points),
	)

	return result, nil
}

// incrementCached is the cache-hit path: bump the snapshot and write it
// back under the same key, bypassing the record store entirely.
func (s *LikeService) incrementCached(ctx context.Context, userID string, snapshot []byte) (*model.User, error) {
	var user model.User
	if err := json.Unmarshal(snapshot, &user); err != nil {
		s.logger.Error("malformed cached snapshot",
			slog.String("userId", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("decoding cached user %s: %w", userID, err)
	}

	user.Points = model.ClampPoints(user.Points + 1)

	if err := s.writeSnapshot(ctx, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

// incrementStored is the cache-miss path: read the authoritative record,
// apply a single-attempt optimistic-locked increment, then populate the
// cache with the result.
func (s *LikeService) incrementStored(ctx context.Context, userID string) (*model.User, error) {
	current, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.ConditionalIncrement(ctx, userID, current.Version)
	if err != nil {
		// Conflict and NotFound pass through untouched — the handler
		// owns the 409/404 mapping.
		return nil, err
	}

	// Best-effort cache population. If this fails the store write is
	// already committed; the caller sees an error, the next miss refills.
	if err := s.writeSnapshot(ctx, updated); err != nil {
		return nil, err
	}

	return updated, nil
}

// writeSnapshot serializes the user and stores it under their ID.
func (s *LikeService) writeSnapshot(ctx context.Context, user *model.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding user %s for cache: %w", user.ID, err)
	}
	if err := s.cache.Set(ctx, user.ID, payload, s.cacheTTL); err != nil {
		s.logger.Error("cache write failed",
			slog.String("userId", user.ID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("caching user %s: %w", user.ID, err)
	}
	return nil
}

// publishScoreChanged emits exactly one event for a committed increment.
func (s *LikeService) publishScoreChanged(ctx context.Context, result *LikeResult) error {
	evt := model.ScoreChangedEvent{
		UserID: result.UserID,
		Points: result.Points,
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return apperror.PublishFailed(err)
	}

	if err := s.publisher.Publish(ctx, s.topic, payload); err != nil {
		s.logger.Error("failed to publish score change",
			slog.String("userId", result.UserID),
			slog.String("topic", s.topic),
			slog.String("error", err.Error()),
		)
		return apperror.PublishFailed(err)
	}

	return nil
}
