package domain

import "time"

const DigestActionCreated = "created"

// DigestEvent announces a persisted digest to downstream consumers.
type DigestEvent struct {
	Action    string    `json:"action"`
	UserID    string    `json:"userId"`
	TaskID    string    `json:"taskId,omitempty"`
	Digest    Digest    `json:"digest"`
	Timestamp time.Time `json:"timestamp"`
}
