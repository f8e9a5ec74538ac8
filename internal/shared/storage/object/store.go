package object

import (
	"context"
	"io"
)

// Store defines the contract for persisting document artifacts and their
// derived side-car files. Keys are slash-separated relative paths; saving to
// an existing key overwrites it.
type Store interface {
	SaveArtifact(ctx context.Context, storageKey string, r io.Reader) (sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Remove(ctx context.Context, storageKey string) error
	AbsPath(storageKey string) (string, error)
	WriteText(ctx context.Context, storageKey string, text string) error
	ReadText(ctx context.Context, storageKey string) (string, error)
}
