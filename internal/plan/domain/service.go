package domain

import (
	"context"
	"errors"
)

var (
	ErrPlanNotFound = errors.New("plan_not_found")
)

// Service recomputes and serves plan snapshots.
type Service interface {
	// Recompute derives a fresh snapshot from the inputs and persists it
	// under the session.
	Recompute(ctx context.Context, sessionID string, in Inputs) (*Snapshot, error)
	// Get returns the session's snapshot, restoring it through the current
	// catalog. A session with no snapshot gets one computed from the default
	// inputs.
	Get(ctx context.Context, sessionID string) (*Snapshot, error)
}

// Store persists snapshots keyed by session.
type Store interface {
	Save(ctx context.Context, snapshot *Snapshot) error
	Load(ctx context.Context, sessionID string) (*Snapshot, error)
}
