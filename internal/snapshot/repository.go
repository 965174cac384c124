// Package snapshot persists versioned copies of sketches.
package snapshot

import (
	"context"
	"errors"
	"time"

	"github.com/VorpalBlade/smartmirror/internal/document"
)

var ErrNotFound = errors.New("sketch not found")

// Repository stores sketch snapshots. Every Save creates a new version, numbered from 1.
type Repository interface {
	Save(ctx context.Context, sketchID string, sk *document.Sketch) (int, error)
	Latest(ctx context.Context, sketchID string) (*Snapshot, error)
	Close() error
}

type Snapshot struct {
	ID        string           `json:"id"`
	SketchID  string           `json:"sketchId"`
	Version   int              `json:"version"`
	Sketch    *document.Sketch `json:"sketch"`
	CreatedAt time.Time        `json:"createdAt"`
}
