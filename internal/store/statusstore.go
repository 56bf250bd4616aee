package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"docuchat/internal/model"
)

var (
	ErrIllegalTransition = errors.New("illegal status transition")
)

// StatusStore persists the per-session StatusRecord in the artifact
// namespace. Writes validate the status machine.
type StatusStore struct {
	blobs BlobStore
}

func NewStatusStore(blobs BlobStore) *StatusStore {
	return &StatusStore{blobs: blobs}
}

// Read returns the session's status record, or a no_session record when
// none has been written.
func (s *StatusStore) Read(ctx context.Context, sessionID string) (model.StatusRecord, error) {
	raw, err := s.blobs.Get(ctx, statusKey(sessionID))
	if errors.Is(err, ErrNotFound) {
		return model.StatusRecord{Status: model.StatusNoSession}, nil
	}
	if err != nil {
		return model.StatusRecord{}, err
	}
	var rec model.StatusRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return model.StatusRecord{}, fmt.Errorf("unmarshal status record failed: %w", err)
	}
	return rec, nil
}

// Write persists rec after checking that the transition from the current
// status is legal.
func (s *StatusStore) Write(ctx context.Context, sessionID string, rec model.StatusRecord) error {
	if !rec.Status.Valid() {
		return fmt.Errorf("invalid status %q", rec.Status)
	}
	current, err := s.Read(ctx, sessionID)
	if err != nil {
		return err
	}
	if !current.Status.CanTransition(rec.Status) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current.Status, rec.Status)
	}
	if rec.TS == 0 {
		rec.TS = time.Now().Unix()
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal status record failed: %w", err)
	}
	if err := s.blobs.Put(ctx, statusKey(sessionID), payload); err != nil {
		return fmt.Errorf("write status record failed: %w", err)
	}
	return nil
}

// Delete resets the session to its initial state.
func (s *StatusStore) Delete(ctx context.Context, sessionID string) error {
	return s.blobs.Delete(ctx, statusKey(sessionID))
}
