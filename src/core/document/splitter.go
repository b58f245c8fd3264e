package document

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

const (
	DefaultChunkSize    = 1500
	DefaultChunkOverlap = 150
)

// Splitter turns parsed units into overlapping chunks. Size and overlap are
// measured in characters and fixed at construction, so splitting the same
// units always yields the same boundaries.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
}

func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = DefaultChunkOverlap
	}

	return &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Split chunks every unit and tags each chunk with the unit's metadata plus
// the document identity. An empty unit yields no chunks; a unit shorter than
// the chunk size yields exactly one.
func (s *Splitter) Split(id Identity, units []Unit) ([]Chunk, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(s.chunkSize),
		textsplitter.WithChunkOverlap(s.chunkOverlap),
	)

	var chunks []Chunk
	for i, unit := range units {
		if strings.TrimSpace(unit.Text) == "" {
			continue
		}

		parts, err := splitter.SplitText(unit.Text)
		if err != nil {
			return nil, fmt.Errorf("split unit %d: %w", i, err)
		}

		for _, part := range parts {
			if part == "" {
				continue
			}
			meta := make(map[string]any, len(unit.Metadata)+1)
			for k, v := range unit.Metadata {
				meta[k] = v
			}
			meta[MetaDocument] = string(id)
			chunks = append(chunks, Chunk{Text: part, Metadata: meta})
		}
	}

	return chunks, nil
}
