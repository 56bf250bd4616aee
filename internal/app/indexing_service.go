package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"docuchat/internal/cache"
	"docuchat/internal/model"
	"docuchat/internal/splitter"
	"docuchat/internal/store"
	"docuchat/internal/vectorindex"
)

const embeddingBatchSize = 10 // providers often cap batch input size

// IndexingConfig carries the chunking parameters for an indexing run.
type IndexingConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

// IndexingService runs the per-session indexing pipeline:
// store document -> extract -> split -> embed -> build -> persist -> ready.
// Any step failure settles the session status at "error"; retry is a
// re-upload.
type IndexingService struct {
	documents  *store.DocumentStore
	indexes    *store.IndexStore
	status     *store.StatusStore
	indexCache *cache.IndexCache
	extractor  TextExtractor
	embedder   Embedder
	cfg        IndexingConfig

	sessionLocks sync.Map // session id -> *sync.Mutex
}

// IndexResult reports a completed indexing run.
type IndexResult struct {
	PDFKey     string `json:"pdf_key"`
	ChunkCount int    `json:"chunks"`
}

func NewIndexingService(
	documents *store.DocumentStore,
	indexes *store.IndexStore,
	status *store.StatusStore,
	indexCache *cache.IndexCache,
	extractor TextExtractor,
	embedder Embedder,
	cfg IndexingConfig,
) *IndexingService {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1000
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = cfg.ChunkSize / 8
	}
	return &IndexingService{
		documents:  documents,
		indexes:    indexes,
		status:     status,
		indexCache: indexCache,
		extractor:  extractor,
		embedder:   embedder,
		cfg:        cfg,
	}
}

func (s *IndexingService) lock(sessionID string) *sync.Mutex {
	mu, _ := s.sessionLocks.LoadOrStore(sessionID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Index runs the whole pipeline for one uploaded document. Runs for the
// same session are serialized, so the persisted artifact always corresponds
// to one upload in full.
func (s *IndexingService) Index(ctx context.Context, sessionID, filename string, data []byte) (*IndexResult, error) {
	if sessionID == "" || len(data) == 0 {
		return nil, ErrInvalidInput
	}

	mu := s.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	// The document must be durably stored before the status machine moves,
	// so a failed write never leaves a dangling "indexing" state.
	docKey, err := s.documents.Put(ctx, sessionID, filename, data)
	if err != nil {
		return nil, fmt.Errorf("store document failed: %w", err)
	}
	if err := s.status.Write(ctx, sessionID, model.StatusRecord{
		Status:   model.StatusUploaded,
		Filename: filename,
	}); err != nil {
		return nil, err
	}
	if err := s.status.Write(ctx, sessionID, model.StatusRecord{Status: model.StatusIndexing}); err != nil {
		return nil, err
	}

	result, err := s.run(ctx, sessionID, docKey)
	if err != nil {
		s.indexCache.Invalidate(sessionID)
		if writeErr := s.status.Write(ctx, sessionID, model.StatusRecord{
			Status:  model.StatusError,
			Message: err.Error(),
		}); writeErr != nil {
			return nil, errors.Join(err, writeErr)
		}
		return nil, err
	}

	if err := s.status.Write(ctx, sessionID, model.StatusRecord{
		Status: model.StatusReady,
		PDFKey: docKey,
	}); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *IndexingService) run(ctx context.Context, sessionID, docKey string) (*IndexResult, error) {
	data, err := s.documents.Get(ctx, docKey)
	if err != nil {
		return nil, fmt.Errorf("fetch document failed: %w", err)
	}

	text, err := s.extractor.Extract(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, splitter.ErrEmptyDocument
	}

	chunks, err := splitter.Split(text, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	vectors, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}

	ix, err := vectorindex.Build(chunks, vectors)
	if err != nil {
		return nil, err
	}

	// re-upload replaces, never merges
	if err := s.indexes.Delete(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("delete prior artifact failed: %w", err)
	}
	if err := s.indexes.Save(ctx, sessionID, ix); err != nil {
		return nil, err
	}
	s.indexCache.Put(sessionID, ix)

	return &IndexResult{PDFKey: docKey, ChunkCount: ix.Len()}, nil
}

// embedChunks calls the provider in order-preserving batches. A failed batch
// aborts the run; no partial index is ever persisted.
func (s *IndexingService) embedChunks(ctx context.Context, chunks []splitter.Chunk) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}

	var vectors [][]float32
	for i := 0; i < len(texts); i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := s.embedder.EmbedBatch(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
		}
		vectors = append(vectors, batch...)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: embedding count mismatch", ErrEmbedding)
	}
	return vectors, nil
}
