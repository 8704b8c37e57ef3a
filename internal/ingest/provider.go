// Package ingest holds what all import providers share.
package ingest

import (
	"context"
	"io"
)

// Result holds the outcome of an ingest operation.
type Result struct {
	SessionsReceived int      `json:"sessions_received"`
	SetsReceived     int      `json:"sets_received"`
	WarmupsSkipped   int      `json:"warmups_skipped"`
	LogsInserted     int      `json:"logs_inserted"`
	LogsReplaced     int64    `json:"logs_replaced"`
	Unmatched        []string `json:"unmatched_exercises,omitempty"`

	Message string `json:"message,omitempty"`
}

// Skipped returns how many received working sets were not logged.
func (r *Result) Skipped() int {
	return r.SetsReceived - r.LogsInserted
}

// Provider turns an uploaded export into workout logs for a user.
type Provider interface {
	Ingest(ctx context.Context, r io.Reader, userID int) (*Result, error)
}
