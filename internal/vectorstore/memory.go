package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/webwhiz/webwhiz/internal/domain"
)

type memoryEntry struct {
	chunk  domain.Chunk
	vector []float32
}

// Memory is a brute-force in-memory implementation of the vector
// store, useful for tests and local runs without a Qdrant instance.
// It applies the same session filter semantics as the Qdrant adapter.
type Memory struct {
	embedder domain.Embedder

	mu      sync.RWMutex
	entries []memoryEntry
}

func NewMemory(embedder domain.Embedder) *Memory {
	return &Memory{embedder: embedder}
}

func (s *Memory) Add(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		if c.SessionID == "" {
			return fmt.Errorf("chunk %d has no session id: %w", i, domain.ErrInvalidRequest)
		}
		texts[i] = c.Text
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range chunks {
		s.entries = append(s.entries, memoryEntry{chunk: c, vector: vectors[i]})
	}
	return nil
}

func (s *Memory) Query(ctx context.Context, sessionID, question string, topK int) ([]domain.ScoredChunk, error) {
	if topK <= 0 {
		topK = 4
	}
	vectors, err := s.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	query := vectors[0]

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []domain.ScoredChunk
	for _, e := range s.entries {
		if e.chunk.SessionID != sessionID {
			continue
		}
		results = append(results, domain.ScoredChunk{
			Chunk: e.chunk,
			Score: cosine(query, e.vector),
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (s *Memory) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.chunk.SessionID != sessionID {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	return nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
