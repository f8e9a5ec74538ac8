package claims

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"claims-backend/internal/extract"
	"claims-backend/internal/shared/storage/object"
)

// Entry records one stored artifact with an explicit category tag, replacing
// filename-substring detection of what a user has uploaded.
type Entry struct {
	Category   extract.Category `json:"category"`
	StorageKey string           `json:"storageKey"`
	FileName   string           `json:"fileName"`
	MimeType   string           `json:"mimeType"`
	SizeBytes  int64            `json:"sizeBytes"`
	UploadedAt time.Time        `json:"uploadedAt"`
}

// Manifest maps a user's uploaded categories to their artifacts. At most one
// artifact exists per category; re-uploads replace the entry.
type Manifest map[extract.Category]Entry

// Has reports whether an artifact is recorded for the category.
func (m Manifest) Has(cat extract.Category) bool {
	_, ok := m[cat]
	return ok
}

// ManifestStore persists per-user manifests as a JSON side-car next to the
// user's artifacts.
type ManifestStore struct {
	Store object.Store
}

func manifestKey(user string) string {
	return fmt.Sprintf("docs/%s/manifest.json", user)
}

// Load reads a user's manifest; a missing manifest is an empty one.
func (s *ManifestStore) Load(ctx context.Context, user string) (Manifest, error) {
	raw, err := s.Store.ReadText(ctx, manifestKey(user))
	if err != nil {
		if os.IsNotExist(err) {
			return Manifest{}, nil
		}
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if m == nil {
		m = Manifest{}
	}
	return m, nil
}

// Put records an artifact entry, overwriting any previous entry for the same
// category.
func (s *ManifestStore) Put(ctx context.Context, user string, entry Entry) (Manifest, error) {
	m, err := s.Load(ctx, user)
	if err != nil {
		return nil, err
	}
	m[entry.Category] = entry

	encoded, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	if err := s.Store.WriteText(ctx, manifestKey(user), string(encoded)); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	return m, nil
}
