// Package storage persists the session snapshot wholesale: one keyed record
// holding the user roster, histories, focus state and last recommendations,
// restored in full on process start before any operation runs.
package storage

import (
	"context"

	"github.com/zenithmode/zenith/internal/session"
)

type Storage interface {
	// Load returns the persisted snapshot, or nil when nothing was saved yet.
	Load(ctx context.Context) (*session.Snapshot, error)
	Save(ctx context.Context, snap *session.Snapshot) error
	Close() error
}
