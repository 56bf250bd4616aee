// Package app implements the indexing pipeline, the retrieval QA service
// and session state handling.
package app

import (
	"context"
	"errors"

	"docuchat/internal/ai"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotReady means the session has no ready index to answer from.
	ErrNotReady = errors.New("index is not ready")
	// ErrExtraction marks corrupt or unsupported document input.
	ErrExtraction = errors.New("text extraction failed")
	// ErrEmbedding marks an embedding provider failure during indexing.
	ErrEmbedding = errors.New("embedding failed")
	// ErrTokenLimit means the session exhausted its token budget and was reset.
	ErrTokenLimit = errors.New("session token limit reached")
)

// Embedder maps text to fixed-dimension vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Completer produces a chat completion for the given messages.
type Completer interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
}

// TextExtractor turns raw document bytes into plain text.
type TextExtractor interface {
	Extract(data []byte) (string, error)
}
