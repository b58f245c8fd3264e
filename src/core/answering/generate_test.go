package answering_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"askdoc/src/core/answering"
	"askdoc/src/core/document"
)

func retrievedSet(chunks ...document.Chunk) answering.RetrievedSet {
	return answering.RetrievedSet{Chunks: chunks}
}

func TestGenerateBuildsOnePromptPerQuestion(t *testing.T) {
	var gotPrompts []string
	completer := &fakeCompleter{
		completeBatchFn: func(_ context.Context, _ string, prompts []string) ([]string, error) {
			gotPrompts = prompts
			out := make([]string, len(prompts))
			for i := range prompts {
				out[i] = fmt.Sprintf(`{"answer": "answer %d", "rationale": "because %d"}`, i, i)
			}
			return out, nil
		},
	}

	gen := answering.NewGenerator(completer, answering.SourcesAll)
	answers, err := gen.Generate(context.Background(),
		questions("first?", "second?"),
		[]answering.RetrievedSet{
			retrievedSet(document.Chunk{Text: "chunk A"}, document.Chunk{Text: "chunk B"}),
			retrievedSet(document.Chunk{Text: "chunk C"}),
		})
	require.NoError(t, err)

	require.Len(t, gotPrompts, 2)
	assert.Contains(t, gotPrompts[0], "CONTEXT:\nchunk A\n\n---\n\nchunk B")
	assert.Contains(t, gotPrompts[0], "QUESTION: first?")
	assert.Contains(t, gotPrompts[1], "chunk C")
	assert.Contains(t, gotPrompts[1], "QUESTION: second?")

	require.Len(t, answers, 2)
	assert.Equal(t, "answer 0", answers[0].Answer)
	assert.Equal(t, "because 1", answers[1].Rationale)
}

func TestGenerateCollectsUniqueSources(t *testing.T) {
	completer := &fakeCompleter{
		completeBatchFn: func(_ context.Context, _ string, prompts []string) ([]string, error) {
			return []string{`{"answer": "a", "rationale": "r"}`}, nil
		},
	}

	gen := answering.NewGenerator(completer, answering.SourcesAll)
	answers, err := gen.Generate(context.Background(), questions("q?"),
		[]answering.RetrievedSet{retrievedSet(
			document.Chunk{Text: "one", Metadata: map[string]any{document.MetaPage: 1}},
			document.Chunk{Text: "two", Metadata: map[string]any{document.MetaPage: 1, document.MetaImages: []string{"fig1.png"}}},
			document.Chunk{Text: "three", Metadata: map[string]any{document.MetaPage: 3, document.MetaImages: []string{"fig1.png", "fig2.png"}}},
		)})
	require.NoError(t, err)

	require.Len(t, answers, 1)
	assert.Equal(t, []answering.Provenance{
		{Page: 1},
		{Image: "fig1.png"},
		{Page: 3},
		{Image: "fig2.png"},
	}, answers[0].Sources)
}

func TestGenerateSourceModeFiltersProvenance(t *testing.T) {
	set := retrievedSet(
		document.Chunk{Text: "one", Metadata: map[string]any{document.MetaPage: 2, document.MetaImages: []string{"diagram.png"}}},
	)
	completer := &fakeCompleter{
		completeBatchFn: func(_ context.Context, _ string, prompts []string) ([]string, error) {
			return []string{`{"answer": "a", "rationale": "r"}`}, nil
		},
	}

	tests := []struct {
		name string
		mode answering.SourceMode
		want []answering.Provenance
	}{
		{"pages only", answering.SourcesPages, []answering.Provenance{{Page: 2}}},
		{"images only", answering.SourcesImages, []answering.Provenance{{Image: "diagram.png"}}},
		{"all", answering.SourcesAll, []answering.Provenance{{Page: 2}, {Image: "diagram.png"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := answering.NewGenerator(completer, tt.mode)
			answers, err := gen.Generate(context.Background(), questions("q?"), []answering.RetrievedSet{set})
			require.NoError(t, err)
			assert.Equal(t, tt.want, answers[0].Sources)
		})
	}
}

func TestGenerateTolerantPageTypes(t *testing.T) {
	completer := &fakeCompleter{
		completeBatchFn: func(_ context.Context, _ string, prompts []string) ([]string, error) {
			return []string{`{"answer": "a", "rationale": "r"}`}, nil
		},
	}

	gen := answering.NewGenerator(completer, answering.SourcesAll)
	answers, err := gen.Generate(context.Background(), questions("q?"),
		[]answering.RetrievedSet{retrievedSet(
			document.Chunk{Text: "one", Metadata: map[string]any{document.MetaPage: float64(5)}},
			document.Chunk{Text: "two", Metadata: map[string]any{document.MetaPage: int64(6), document.MetaImages: []any{"x.png"}}},
		)})
	require.NoError(t, err)

	assert.Equal(t, []answering.Provenance{{Page: 5}, {Page: 6}, {Image: "x.png"}}, answers[0].Sources)
}

func TestGenerateMalformedCompletionFailsBatch(t *testing.T) {
	completer := &fakeCompleter{
		completeBatchFn: func(_ context.Context, _ string, prompts []string) ([]string, error) {
			return []string{`{"answer": "fine", "rationale": "fine"}`, "not json at all"}, nil
		},
	}

	gen := answering.NewGenerator(completer, answering.SourcesAll)
	_, err := gen.Generate(context.Background(), questions("q1?", "q2?"),
		[]answering.RetrievedSet{retrievedSet(), retrievedSet()})

	var genErr *answering.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Contains(t, genErr.Reason, "question 1")
}

func TestGenerateRejectsMisalignedInputs(t *testing.T) {
	gen := answering.NewGenerator(&fakeCompleter{}, answering.SourcesAll)
	_, err := gen.Generate(context.Background(), questions("q1?", "q2?"),
		[]answering.RetrievedSet{retrievedSet()})

	var genErr *answering.GenerationError
	require.ErrorAs(t, err, &genErr)
}

func TestParseSourceMode(t *testing.T) {
	assert.Equal(t, answering.SourcesPages, answering.ParseSourceMode("pages"))
	assert.Equal(t, answering.SourcesImages, answering.ParseSourceMode("Images"))
	assert.Equal(t, answering.SourcesAll, answering.ParseSourceMode("all"))
	assert.Equal(t, answering.SourcesAll, answering.ParseSourceMode("anything else"))
}
