package answering

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"askdoc/src/core/document"
)

// contextSeparator visibly delimits chunks inside one question's context.
const contextSeparator = "\n\n---\n\n"

const generateSystem = `You are a highly knowledgeable assistant answering questions using the given context ONLY.

Provide a concise, accurate answer and a clear rationale strictly based on the provided content. Avoid assumptions and external knowledge. If the context does not contain the answer, say so.

Respond with JSON only, of the form {"answer": "...", "rationale": "..."}.`

// SourceMode selects which provenance kinds are attached to answers.
type SourceMode int

const (
	SourcesAll SourceMode = iota
	SourcesPages
	SourcesImages
)

// ParseSourceMode maps a configuration string to a SourceMode, defaulting to
// SourcesAll.
func ParseSourceMode(s string) SourceMode {
	switch strings.ToLower(s) {
	case "pages":
		return SourcesPages
	case "images":
		return SourcesImages
	default:
		return SourcesAll
	}
}

// Generator assembles one grounded context per question and produces the
// final answer batch with a single batched completion call.
type Generator struct {
	completer Completer
	sources   SourceMode
}

func NewGenerator(completer Completer, sources SourceMode) *Generator {
	return &Generator{completer: completer, sources: sources}
}

// Generate returns one answer per question, order-aligned with the input.
// Context assembly and provenance collection are done here; answer fidelity
// is a prompt-level contract with the completion service. Any malformed item
// in the completion batch fails the whole batch.
func (g *Generator) Generate(ctx context.Context, questions []Question, retrieved []RetrievedSet) ([]Answer, error) {
	if len(questions) != len(retrieved) {
		return nil, &GenerationError{Reason: fmt.Sprintf("%d questions but %d retrieved sets", len(questions), len(retrieved))}
	}

	prompts := make([]string, len(questions))
	for i, q := range questions {
		prompts[i] = buildPrompt(q.Text, retrieved[i])
	}

	responses, err := g.completer.CompleteBatch(ctx, generateSystem, prompts)
	if err != nil {
		return nil, &GenerationError{Reason: "completion batch failed", Err: err}
	}
	if len(responses) != len(questions) {
		return nil, &GenerationError{Reason: fmt.Sprintf("got %d completions for %d questions", len(responses), len(questions))}
	}

	answers := make([]Answer, len(questions))
	for i, raw := range responses {
		var payload struct {
			Answer    string `json:"answer"`
			Rationale string `json:"rationale"`
		}
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return nil, &GenerationError{Reason: fmt.Sprintf("malformed completion for question %d", i), Err: err}
		}
		answers[i] = Answer{
			Answer:    payload.Answer,
			Rationale: payload.Rationale,
			Sources:   g.collectSources(retrieved[i]),
		}
	}

	return answers, nil
}

func buildPrompt(question string, set RetrievedSet) string {
	texts := make([]string, len(set.Chunks))
	for i, chunk := range set.Chunks {
		texts[i] = chunk.Text
	}

	var sb strings.Builder
	sb.WriteString("CONTEXT:\n")
	sb.WriteString(strings.Join(texts, contextSeparator))
	sb.WriteString("\n\nQUESTION: ")
	sb.WriteString(question)
	return sb.String()
}

// collectSources walks the retrieved chunks' metadata and gathers the unique
// provenance refs, stably ordered by first appearance.
func (g *Generator) collectSources(set RetrievedSet) []Provenance {
	var sources []Provenance
	seenPages := make(map[int]struct{})
	seenImages := make(map[string]struct{})

	for _, chunk := range set.Chunks {
		if g.sources != SourcesImages {
			if page, ok := pageNumber(chunk.Metadata); ok {
				if _, dup := seenPages[page]; !dup {
					seenPages[page] = struct{}{}
					sources = append(sources, Provenance{Page: page})
				}
			}
		}
		if g.sources != SourcesPages {
			for _, img := range imageRefs(chunk.Metadata) {
				if _, dup := seenImages[img]; !dup {
					seenImages[img] = struct{}{}
					sources = append(sources, Provenance{Image: img})
				}
			}
		}
	}

	return sources
}

// pageNumber tolerates the numeric types metadata picks up crossing the
// index service (JSON round trips turn ints into float64).
func pageNumber(meta map[string]any) (int, bool) {
	switch v := meta[document.MetaPage].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func imageRefs(meta map[string]any) []string {
	switch v := meta[document.MetaImages].(type) {
	case []string:
		return v
	case []any:
		refs := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				refs = append(refs, s)
			}
		}
		return refs
	default:
		return nil
	}
}
