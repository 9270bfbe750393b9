package model

// ScoreChangedEvent is the message published to the like_events topic after
// every successful increment. It is transient — nothing in this system
// persists it, and downstream consumers must tolerate duplicates
// (at-least-once delivery) and reordering.
type ScoreChangedEvent struct {
	UserID string `json:"userId"`
	Points int    `json:"points"` // The post-update score
}
