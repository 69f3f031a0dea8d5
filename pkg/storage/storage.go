// Package storage keeps conversion artifacts on disk so a finished export
// can be re-downloaded during its retention window. Artifacts are
// short-lived; the cron sweeper purges expired ones.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// Artifact describes one stored conversion output.
type Artifact struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`   // download filename, e.g. statement.qbo
	Format    string    `json:"format"` // output format the artifact carries
	Size      int64     `json:"size"`
	Path      string    `json:"path"` // internal storage path
	CreatedAt time.Time `json:"created_at"`
}

// Store persists and retrieves conversion artifacts.
type Store interface {
	// Save stores an artifact and returns its metadata.
	Save(ctx context.Context, name, format string, r io.Reader) (*Artifact, error)

	// Open retrieves an artifact's content and metadata by ID.
	Open(ctx context.Context, id uuid.UUID) (io.ReadCloser, *Artifact, error)

	// Delete removes an artifact by ID.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns every retained artifact.
	List(ctx context.Context) ([]*Artifact, error)

	// DeleteExpired removes artifacts older than the retention window and
	// reports how many were purged.
	DeleteExpired(ctx context.Context, retention time.Duration) (int, error)
}
