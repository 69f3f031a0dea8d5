package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalStore implements Store on the local filesystem. Content lives in the
// base directory under a uuid-prefixed name; metadata sits beside it in a
// .meta directory as one JSON sidecar per artifact.
type LocalStore struct {
	basePath string
}

func NewLocalStore(basePath string) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Join(basePath, ".meta"), 0o755); err != nil {
		return nil, fmt.Errorf("creating artifact directory: %w", err)
	}
	return &LocalStore{basePath: basePath}, nil
}

func (s *LocalStore) Save(ctx context.Context, name, format string, r io.Reader) (*Artifact, error) {
	id := uuid.New()
	stored := id.String()[:8] + "_" + sanitizeFilename(name)
	path := filepath.Join(s.basePath, stored)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating artifact: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("writing artifact: %w", err)
	}

	art := &Artifact{
		ID:        id,
		Name:      name,
		Format:    format,
		Size:      size,
		Path:      stored,
		CreatedAt: time.Now(),
	}
	if err := s.writeMeta(art); err != nil {
		os.Remove(path)
		return nil, err
	}
	return art, nil
}

func (s *LocalStore) Open(ctx context.Context, id uuid.UUID) (io.ReadCloser, *Artifact, error) {
	art, err := s.readMeta(id)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(filepath.Join(s.basePath, art.Path))
	if err != nil {
		return nil, nil, fmt.Errorf("opening artifact: %w", err)
	}
	return f, art, nil
}

func (s *LocalStore) Delete(ctx context.Context, id uuid.UUID) error {
	art, err := s.readMeta(id)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.basePath, art.Path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting artifact: %w", err)
	}
	os.Remove(s.metaPath(id))
	return nil
}

func (s *LocalStore) List(ctx context.Context) ([]*Artifact, error) {
	entries, err := os.ReadDir(filepath.Join(s.basePath, ".meta"))
	if err != nil {
		if os.IsNotExist(err) {
			return []*Artifact{}, nil
		}
		return nil, fmt.Errorf("listing artifacts: %w", err)
	}

	arts := make([]*Artifact, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id, err := uuid.Parse(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		art, err := s.readMeta(id)
		if err != nil {
			continue
		}
		arts = append(arts, art)
	}
	return arts, nil
}

func (s *LocalStore) DeleteExpired(ctx context.Context, retention time.Duration) (int, error) {
	arts, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-retention)
	purged := 0
	for _, art := range arts {
		if art.CreatedAt.After(cutoff) {
			continue
		}
		if err := s.Delete(ctx, art.ID); err != nil {
			return purged, err
		}
		purged++
	}
	return purged, nil
}

func (s *LocalStore) metaPath(id uuid.UUID) string {
	return filepath.Join(s.basePath, ".meta", id.String()+".json")
}

func (s *LocalStore) writeMeta(art *Artifact) error {
	data, err := json.MarshalIndent(art, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling artifact metadata: %w", err)
	}
	if err := os.WriteFile(s.metaPath(art.ID), data, 0o644); err != nil {
		return fmt.Errorf("writing artifact metadata: %w", err)
	}
	return nil
}

func (s *LocalStore) readMeta(id uuid.UUID) (*Artifact, error) {
	data, err := os.ReadFile(s.metaPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("artifact not found: %s", id)
		}
		return nil, fmt.Errorf("reading artifact metadata: %w", err)
	}
	var art Artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("parsing artifact metadata: %w", err)
	}
	return &art, nil
}

// sanitizeFilename keeps stored names shell- and path-safe.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "artifact"
	}
	return b.String()
}
