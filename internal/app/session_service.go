package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"docuchat/internal/cache"
	"docuchat/internal/model"
	"docuchat/internal/store"
)

// SessionService tracks per-session status and token usage and owns the
// full reset of a session's stored artifacts.
type SessionService struct {
	status     *store.StatusStore
	documents  *store.DocumentStore
	indexes    *store.IndexStore
	artifacts  store.BlobStore
	indexCache *cache.IndexCache
	tokenLimit int
}

func NewSessionService(
	status *store.StatusStore,
	documents *store.DocumentStore,
	indexes *store.IndexStore,
	artifacts store.BlobStore,
	indexCache *cache.IndexCache,
	tokenLimit int,
) *SessionService {
	return &SessionService{
		status:     status,
		documents:  documents,
		indexes:    indexes,
		artifacts:  artifacts,
		indexCache: indexCache,
		tokenLimit: tokenLimit,
	}
}

// Status returns the session's status record; a session that never uploaded
// (or was reset) reports no_session.
func (s *SessionService) Status(ctx context.Context, sessionID string) (model.StatusRecord, error) {
	if sessionID == "" {
		return model.StatusRecord{Status: model.StatusNoSession}, nil
	}
	return s.status.Read(ctx, sessionID)
}

func (s *SessionService) TokenLimit() int { return s.tokenLimit }

// Tokens returns the session's current token count.
func (s *SessionService) Tokens(ctx context.Context, sessionID string) (int, error) {
	raw, err := s.artifacts.Get(ctx, store.TokenKey(sessionID))
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	count, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, fmt.Errorf("parse token count failed: %w", err)
	}
	return count, nil
}

// AddTokens increments the session's token count and returns the new total.
// The increment is atomic in the store, so concurrent chats for one session
// never lose a count.
func (s *SessionService) AddTokens(ctx context.Context, sessionID string, n int) (int, error) {
	total, err := s.artifacts.Increment(ctx, store.TokenKey(sessionID), int64(n))
	if err != nil {
		return 0, fmt.Errorf("increment token count failed: %w", err)
	}
	return int(total), nil
}

// Reset wipes everything the session owns: documents, index artifact, status
// record, token counter and the cached index. The next interaction starts
// from no_session.
func (s *SessionService) Reset(ctx context.Context, sessionID string) error {
	s.indexCache.Invalidate(sessionID)
	if err := s.documents.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("reset documents failed: %w", err)
	}
	if err := s.indexes.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("reset index artifact failed: %w", err)
	}
	if err := s.artifacts.Delete(ctx, store.TokenKey(sessionID)); err != nil {
		return fmt.Errorf("reset token counter failed: %w", err)
	}
	if err := s.status.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("reset status failed: %w", err)
	}
	return nil
}
