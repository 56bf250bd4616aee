// Package vectorindex provides an in-memory nearest-neighbor index over
// chunk embeddings with brute-force cosine similarity search.
package vectorindex

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"docuchat/internal/splitter"
)

var (
	ErrEmptyIndex = errors.New("vector index is empty")
)

// Result is a single search hit.
type Result struct {
	Chunk splitter.Chunk `json:"chunk"`
	Score float64        `json:"score"`
}

// Index holds an ordered sequence of (chunk, vector) pairs. It is built once
// and never mutated; a re-upload replaces it wholesale.
type Index struct {
	dim     int
	chunks  []splitter.Chunk
	vectors [][]float32
}

// Build creates an index from parallel chunk and vector slices. All vectors
// must share one dimension.
func Build(chunks []splitter.Chunk, vectors [][]float32) (*Index, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptyIndex
	}
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("chunk count %d does not match vector count %d", len(chunks), len(vectors))
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, errors.New("zero-dimension embedding")
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), dim)
		}
	}
	return &Index{dim: dim, chunks: chunks, vectors: vectors}, nil
}

func (ix *Index) Len() int       { return len(ix.chunks) }
func (ix *Index) Dimension() int { return ix.dim }

// Search returns the min(k, Len()) entries most similar to query, ordered by
// descending cosine similarity. Ties keep ascending chunk sequence order.
func (ix *Index) Search(query []float32, k int) ([]Result, error) {
	if ix == nil || len(ix.chunks) == 0 {
		return nil, ErrEmptyIndex
	}
	if k <= 0 {
		return nil, fmt.Errorf("invalid top-k %d", k)
	}
	if len(query) != ix.dim {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), ix.dim)
	}

	results := make([]Result, len(ix.chunks))
	for i := range ix.chunks {
		results[i] = Result{
			Chunk: ix.chunks[i],
			Score: cosineSimilarity(query, ix.vectors[i]),
		}
	}
	// entries are in sequence order, so a stable sort keeps ascending
	// chunk order for equal scores
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// artifact is the serialized form of an index.
type artifact struct {
	Dimension int              `json:"dimension"`
	Chunks    []splitter.Chunk `json:"chunks"`
	Vectors   [][]float32      `json:"vectors"`
}

// Encode serializes the index so that Decode reproduces identical chunk
// order, text, and vectors.
func (ix *Index) Encode() ([]byte, error) {
	if ix == nil || len(ix.chunks) == 0 {
		return nil, ErrEmptyIndex
	}
	data, err := json.Marshal(artifact{
		Dimension: ix.dim,
		Chunks:    ix.chunks,
		Vectors:   ix.vectors,
	})
	if err != nil {
		return nil, fmt.Errorf("encode index artifact failed: %w", err)
	}
	return data, nil
}

// Decode rebuilds an index from its serialized artifact, validating the
// chunk/vector pairing and dimension.
func Decode(data []byte) (*Index, error) {
	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode index artifact failed: %w", err)
	}
	ix, err := Build(a.Chunks, a.Vectors)
	if err != nil {
		return nil, fmt.Errorf("index artifact is inconsistent: %w", err)
	}
	if ix.dim != a.Dimension {
		return nil, fmt.Errorf("index artifact dimension %d does not match vectors (%d)", a.Dimension, ix.dim)
	}
	return ix, nil
}
