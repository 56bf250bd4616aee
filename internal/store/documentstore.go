package store

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// DocumentStore holds uploaded document bytes in the document namespace.
type DocumentStore struct {
	blobs BlobStore
}

func NewDocumentStore(blobs BlobStore) *DocumentStore {
	return &DocumentStore{blobs: blobs}
}

// Put stores the document under a fresh session-scoped key and returns it.
func (s *DocumentStore) Put(ctx context.Context, sessionID, filename string, data []byte) (string, error) {
	key := SessionPrefix(sessionID) + uuid.NewString() + "-" + sanitizeFilename(filename)
	if err := s.blobs.Put(ctx, key, data); err != nil {
		return "", err
	}
	return key, nil
}

func (s *DocumentStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.blobs.Get(ctx, key)
}

// DeleteSession removes every document the session ever uploaded.
func (s *DocumentStore) DeleteSession(ctx context.Context, sessionID string) error {
	return s.blobs.DeletePrefix(ctx, SessionPrefix(sessionID))
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == ".." {
		name = "document.pdf"
	}
	return name
}
