// Package memindex is an in-memory vector backend using brute-force cosine
// similarity. It serves local development and tests; production deployments
// use the weaviate backend.
package memindex

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"askdoc/src/core/document"
)

// Embedder supplies query and chunk embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type entry struct {
	chunk  document.Chunk
	vector []float32
}

// Store keeps one vector list per document identity, guarded by a
// read-write mutex: searches never block each other.
type Store struct {
	embedder Embedder

	mu      sync.RWMutex
	entries map[document.Identity][]entry
}

var _ document.VectorBackend = (*Store)(nil)

func NewStore(embedder Embedder) *Store {
	return &Store{
		embedder: embedder,
		entries:  make(map[document.Identity][]entry),
	}
}

// Add embeds and stores the chunks under the identity. A chunk whose text is
// already indexed for that identity is skipped, making duplicate adds
// no-ops.
func (s *Store) Add(ctx context.Context, id document.Identity, chunks []document.Chunk) error {
	s.mu.RLock()
	existing := make(map[string]struct{}, len(s.entries[id]))
	for _, e := range s.entries[id] {
		existing[e.chunk.Text] = struct{}{}
	}
	s.mu.RUnlock()

	var fresh []document.Chunk
	for _, chunk := range chunks {
		if _, ok := existing[chunk.Text]; ok {
			continue
		}
		existing[chunk.Text] = struct{}{}
		fresh = append(fresh, chunk)
	}
	if len(fresh) == 0 {
		return nil
	}

	vectors := make([][]float32, len(fresh))
	for i, chunk := range fresh {
		vector, err := s.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return fmt.Errorf("embed chunk %d: %w", i, err)
		}
		vectors[i] = vector
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, chunk := range fresh {
		s.entries[id] = append(s.entries[id], entry{chunk: chunk, vector: vectors[i]})
	}

	return nil
}

// BatchSearch answers every query with its top-k entries of the identity,
// ranked by descending cosine similarity with ties broken by insertion
// order.
func (s *Store) BatchSearch(ctx context.Context, id document.Identity, queries []string, k int) ([][]document.Chunk, error) {
	results := make([][]document.Chunk, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	for i, query := range queries {
		g.Go(func() error {
			chunks, err := s.search(gctx, id, query, k)
			if err != nil {
				return fmt.Errorf("query %d: %w", i, err)
			}
			results[i] = chunks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (s *Store) search(ctx context.Context, id document.Identity, query string, k int) ([]document.Chunk, error) {
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.entries[id]
	type scored struct {
		index int
		score float64
	}
	scores := make([]scored, len(entries))
	for i, e := range entries {
		scores[i] = scored{index: i, score: cosine(vector, e.vector)}
	}
	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].score > scores[b].score
	})

	if k > len(scores) {
		k = len(scores)
	}
	out := make([]document.Chunk, 0, k)
	for i := 0; i < k; i++ {
		out = append(out, entries[scores[i].index].chunk)
	}

	return out, nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
