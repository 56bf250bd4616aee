package splitter

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyDocument = errors.New("document has no extractable text")
)

// Chunk is an ordered fragment of the source text. Seq defines the stable
// ordering used for retrieval tie-breaks; Start/End are rune offsets into
// the original text.
type Chunk struct {
	Seq   int    `json:"seq"`
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Split cuts text into overlapping chunks on a rune budget. Chunk i starts
// size-overlap runes after chunk i-1; the final chunk is clipped to the
// remaining text. The output is deterministic for a given input.
func Split(text string, size, overlap int) ([]Chunk, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid chunk size %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("invalid overlap %d for chunk size %d", overlap, size)
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}

	runes := []rune(text)
	step := size - overlap
	var chunks []Chunk
	for start, seq := 0, 0; start < len(runes); start, seq = start+step, seq+1 {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, Chunk{
			Seq:   seq,
			Text:  string(runes[start:end]),
			Start: start,
			End:   end,
		})
		if end == len(runes) {
			break
		}
	}
	return chunks, nil
}
