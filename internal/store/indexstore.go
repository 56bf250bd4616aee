package store

import (
	"context"
	"fmt"

	"docuchat/internal/vectorindex"
)

// IndexStore persists serialized vector indexes in the artifact namespace,
// one artifact per session.
type IndexStore struct {
	blobs BlobStore
}

func NewIndexStore(blobs BlobStore) *IndexStore {
	return &IndexStore{blobs: blobs}
}

func (s *IndexStore) Save(ctx context.Context, sessionID string, ix *vectorindex.Index) error {
	data, err := ix.Encode()
	if err != nil {
		return err
	}
	if err := s.blobs.Put(ctx, indexKey(sessionID), data); err != nil {
		return fmt.Errorf("save index artifact failed: %w", err)
	}
	return nil
}

// Load rebuilds the session's index from its artifact. Returns ErrNotFound
// (wrapped) when no artifact exists for the session.
func (s *IndexStore) Load(ctx context.Context, sessionID string) (*vectorindex.Index, error) {
	data, err := s.blobs.Get(ctx, indexKey(sessionID))
	if err != nil {
		return nil, err
	}
	return vectorindex.Decode(data)
}

func (s *IndexStore) Delete(ctx context.Context, sessionID string) error {
	return s.blobs.Delete(ctx, indexKey(sessionID))
}
