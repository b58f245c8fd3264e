// Package answering implements the batch question-answering pipeline:
// query decomposition, fan-out retrieval and grounded generation, run as a
// fixed linear sequence over one document and a batch of questions.
package answering

import (
	"context"

	"askdoc/src/core/document"
)

// Question is one user-submitted query. Batch order is significant and is
// preserved end to end.
type Question struct {
	Text string `json:"question"`
}

// QuerySet is the ordered search queries generated for one question. The
// original question text is always the final element, so literal-match
// retrieval survives even when decomposition degrades.
type QuerySet struct {
	Queries []string
}

// RetrievedSet is the deduplicated, ordered evidence for one question.
// Chunk texts are pairwise distinct; order is first-seen order across the
// question's queries.
type RetrievedSet struct {
	Chunks []document.Chunk
}

// Provenance is one source reference attached to an answer: a page number,
// an image reference, or both.
type Provenance struct {
	Page  int    `json:"page,omitempty"`
	Image string `json:"image,omitempty"`
}

// Answer is the grounded response for one question.
type Answer struct {
	Answer    string       `json:"answer"`
	Rationale string       `json:"rationale"`
	Sources   []Provenance `json:"sources,omitempty"`
}

// Completer is the external structured-completion service. Complete issues a
// single JSON-constrained generation; CompleteBatch covers a whole batch of
// prompts in one call, returning responses order-aligned with the input.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
	CompleteBatch(ctx context.Context, system string, prompts []string) ([]string, error)
}

// SearchIndex is the read view of one document's vector index.
// *document.Handle satisfies it.
type SearchIndex interface {
	BatchSearch(ctx context.Context, queries []string, k int) ([][]document.Chunk, error)
}
