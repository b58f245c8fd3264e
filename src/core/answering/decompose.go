package answering

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"askdoc/src/infrastructure/log"
)

// QueriesPerQuestion is how many expansion queries the decomposer requests
// for each question, in addition to the appended original text.
const QueriesPerQuestion = 3

const decomposeSystem = `You are an expert research assistant. For every numbered question you receive, generate exactly 3 diverse, relevant search queries useful for retrieving related passages from a document.

Respond with JSON only, of the form {"queries": [["...", "...", "..."], ...]} containing one inner array of 3 query strings per question, in the same order as the questions.`

// Decomposer expands each question of a batch into several diverse search
// queries with a single completion call covering the whole batch.
type Decomposer struct {
	completer Completer
}

func NewDecomposer(completer Completer) *Decomposer {
	return &Decomposer{completer: completer}
}

// Decompose returns one query set per question, same order. A malformed or
// length-mismatched completion never aborts the pipeline: every question
// falls back to a single-query set holding its original text. On success the
// original text is appended to each generated set, so it is always the final
// element either way.
func (d *Decomposer) Decompose(ctx context.Context, questions []Question) []QuerySet {
	var sb strings.Builder
	for i, q := range questions {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, q.Text)
	}

	raw, err := d.completer.Complete(ctx, decomposeSystem, sb.String())
	if err != nil {
		log.Error(err, "query decomposition call failed, falling back to original questions")
		return fallbackQuerySets(questions)
	}

	var payload struct {
		Queries [][]string `json:"queries"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		log.Error(err, "query decomposition returned malformed JSON, falling back to original questions")
		return fallbackQuerySets(questions)
	}
	if len(payload.Queries) != len(questions) {
		log.Info("query decomposition length mismatch, falling back to original questions",
			"want", len(questions), "got", len(payload.Queries))
		return fallbackQuerySets(questions)
	}

	sets := make([]QuerySet, len(questions))
	for i, generated := range payload.Queries {
		queries := make([]string, 0, len(generated)+1)
		for _, q := range generated {
			if strings.TrimSpace(q) != "" {
				queries = append(queries, q)
			}
		}
		queries = append(queries, questions[i].Text)
		sets[i] = QuerySet{Queries: queries}
	}

	return sets
}

func fallbackQuerySets(questions []Question) []QuerySet {
	sets := make([]QuerySet, len(questions))
	for i, q := range questions {
		sets[i] = QuerySet{Queries: []string{q.Text}}
	}
	return sets
}
