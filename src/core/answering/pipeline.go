package answering

import (
	"context"

	"askdoc/src/infrastructure/log"
)

// Pipeline runs the fixed decompose -> retrieve -> generate sequence over a
// question batch. Stages are strictly sequential: the whole batch finishes a
// stage before the next begins, and a failed stage fails the whole batch
// with no partial results.
type Pipeline struct {
	decomposer *Decomposer
	retriever  *Retriever
	generator  *Generator
}

// Option configures a Pipeline.
type Option func(*pipelineConfig)

type pipelineConfig struct {
	topK    int
	sources SourceMode
}

func WithTopK(k int) Option {
	return func(c *pipelineConfig) {
		c.topK = k
	}
}

func WithSourceMode(mode SourceMode) Option {
	return func(c *pipelineConfig) {
		c.sources = mode
	}
}

func NewPipeline(completer Completer, opts ...Option) *Pipeline {
	cfg := pipelineConfig{
		topK:    DefaultTopK,
		sources: SourcesAll,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Pipeline{
		decomposer: NewDecomposer(completer),
		retriever:  NewRetriever(cfg.topK),
		generator:  NewGenerator(completer, cfg.sources),
	}
}

// Run answers the whole batch against one document index. The returned
// answers are order-aligned with the questions.
func (p *Pipeline) Run(ctx context.Context, index SearchIndex, questions []Question) ([]Answer, error) {
	if len(questions) == 0 {
		return []Answer{}, nil
	}

	sets := p.decomposer.Decompose(ctx, questions)
	log.Debug("questions decomposed", "questions", len(questions))

	retrieved, err := p.retriever.Retrieve(ctx, sets, index)
	if err != nil {
		return nil, err
	}
	log.Debug("retrieval complete", "questions", len(questions))

	answers, err := p.generator.Generate(ctx, questions, retrieved)
	if err != nil {
		return nil, err
	}

	return answers, nil
}
