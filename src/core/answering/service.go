package answering

import (
	"context"

	"askdoc/src/core/document"
)

// Resolver resolves a source document to its index handle, building and
// caching it on first sight. *document.Cache satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, source string) (*document.Handle, func(), error)
}

// Service is the caller-facing entry point: one call answers one question
// batch against one document.
type Service struct {
	resolver Resolver
	pipeline *Pipeline
}

func NewService(resolver Resolver, pipeline *Pipeline) *Service {
	return &Service{
		resolver: resolver,
		pipeline: pipeline,
	}
}

// Answer resolves the document and runs the pipeline over the question
// batch. The returned cleanup releases any raw bytes cached during document
// ingestion and must be invoked after the response has been produced; it is
// always non-nil.
func (s *Service) Answer(ctx context.Context, source string, questions []string) ([]Answer, func(), error) {
	handle, cleanup, err := s.resolver.Resolve(ctx, source)
	if err != nil {
		return nil, func() {}, err
	}

	batch := make([]Question, len(questions))
	for i, q := range questions {
		batch[i] = Question{Text: q}
	}

	answers, err := s.pipeline.Run(ctx, handle, batch)
	if err != nil {
		return nil, cleanup, err
	}

	return answers, cleanup, nil
}
