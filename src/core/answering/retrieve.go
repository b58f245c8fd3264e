package answering

import (
	"context"
	"fmt"

	"askdoc/src/core/document"
)

// DefaultTopK is the number of chunks fetched per search query.
const DefaultTopK = 4

// Retriever fans all decomposed queries out against the document index in a
// single batched call and regroups the hits per original question.
type Retriever struct {
	topK int
}

func NewRetriever(topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{topK: topK}
}

// Retrieve issues the flattened query list as one batched similarity search,
// partitions the result lists back into per-question groups using each set's
// own query count, and deduplicates each group by chunk text keeping the
// first occurrence.
func (r *Retriever) Retrieve(ctx context.Context, sets []QuerySet, index SearchIndex) ([]RetrievedSet, error) {
	var flat []string
	for _, set := range sets {
		flat = append(flat, set.Queries...)
	}
	if len(flat) == 0 {
		return make([]RetrievedSet, len(sets)), nil
	}

	results, err := index.BatchSearch(ctx, flat, r.topK)
	if err != nil {
		return nil, &IndexError{Err: err}
	}
	if len(results) != len(flat) {
		return nil, &IndexError{Err: fmt.Errorf("got %d result lists for %d queries", len(results), len(flat))}
	}

	retrieved := make([]RetrievedSet, len(sets))
	offset := 0
	for i, set := range sets {
		group := results[offset : offset+len(set.Queries)]
		offset += len(set.Queries)
		retrieved[i] = dedupeGroup(group)
	}

	return retrieved, nil
}

// dedupeGroup concatenates the result lists of one question's queries and
// drops repeated chunk texts, keeping first-seen order.
func dedupeGroup(group [][]document.Chunk) RetrievedSet {
	seen := make(map[string]struct{})
	var out []document.Chunk
	for _, list := range group {
		for _, chunk := range list {
			if _, ok := seen[chunk.Text]; ok {
				continue
			}
			seen[chunk.Text] = struct{}{}
			out = append(out, chunk)
		}
	}
	return RetrievedSet{Chunks: out}
}
