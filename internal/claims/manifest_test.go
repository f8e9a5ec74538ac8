package claims

import (
	"context"
	"testing"
	"time"

	"claims-backend/internal/extract"
	localstore "claims-backend/internal/shared/storage/object/local"
)

func TestManifestLoadMissingIsEmpty(t *testing.T) {
	s := &ManifestStore{Store: localstore.New(t.TempDir())}

	m, err := s.Load(context.Background(), "u1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(m) != 0 {
		t.Fatalf("expected empty manifest, got %v", m)
	}
}

func TestManifestPutOverwritesCategory(t *testing.T) {
	s := &ManifestStore{Store: localstore.New(t.TempDir())}
	ctx := context.Background()

	first := Entry{
		Category:   extract.CategoryBills,
		StorageKey: "docs/u1/bills.pdf",
		FileName:   "march_bills.pdf",
		MimeType:   "application/pdf",
		SizeBytes:  1024,
		UploadedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	}
	if _, err := s.Put(ctx, "u1", first); err != nil {
		t.Fatalf("put: %v", err)
	}

	second := first
	second.FileName = "april_bills.jpg"
	second.StorageKey = "docs/u1/bills.jpg"
	if _, err := s.Put(ctx, "u1", second); err != nil {
		t.Fatalf("put: %v", err)
	}

	m, err := s.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(m) != 1 {
		t.Fatalf("re-upload should replace the entry, got %d entries", len(m))
	}
	if got := m[extract.CategoryBills].FileName; got != "april_bills.jpg" {
		t.Fatalf("expected latest entry, got %q", got)
	}
}

func TestManifestIsolatedPerUser(t *testing.T) {
	s := &ManifestStore{Store: localstore.New(t.TempDir())}
	ctx := context.Background()

	if _, err := s.Put(ctx, "u1", Entry{Category: extract.CategoryPolicy, StorageKey: "docs/u1/policy.pdf"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	other, err := s.Load(ctx, "u2")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if other.Has(extract.CategoryPolicy) {
		t.Fatal("u2 should not see u1's uploads")
	}
}
