// Package queue defines message payloads exchanged over the message
// broker plus the publisher and consumer for them.
package queue

// SessionCompletedEvent is published when a study or flash-review
// session completes. It carries the full summary so downstream
// consumers can log, notify or feed analytics without querying the
// primary database.
type SessionCompletedEvent struct {
	SessionID   uint64 `json:"session_id"`
	DeckID      uint64 `json:"deck_id"`
	UserID      uint64 `json:"user_id"`
	SessionType string `json:"session_type"`
	EasyCount   int    `json:"easy_count"`
	HardCount   int    `json:"hard_count"`
	AgainCount  int    `json:"again_count"`
	TotalCards  int    `json:"total_cards"`
	CompletedAt string `json:"completed_at"`
}
