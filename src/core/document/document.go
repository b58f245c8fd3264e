// Package document owns document ingestion: identity derivation, fetching,
// chunk splitting and the process-wide cache that guarantees a single
// ingest+embed cycle per distinct source.
package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Metadata keys shared between loaders, the splitter and answer provenance.
const (
	MetaPage     = "page"
	MetaSource   = "source"
	MetaImages   = "images"
	MetaDocument = "document"
)

// Identity is the stable cache key for a source document. Identical source
// locators always map to the same identity.
type Identity string

// IdentityFromSource derives the identity from a source locator.
func IdentityFromSource(source string) Identity {
	sum := sha256.Sum256([]byte(source))
	return Identity(hex.EncodeToString(sum[:]))
}

// Unit is one parsed unit of a source document, e.g. one page. Metadata
// carries provenance (MetaPage, MetaSource and optionally MetaImages).
type Unit struct {
	Text     string
	Metadata map[string]any
}

// Chunk is a bounded-length slice of a unit's text. Metadata is the unit's
// metadata merged with the MetaDocument identity tag.
type Chunk struct {
	Text     string
	Metadata map[string]any
}

// Loader turns a local file into parsed units. It never returns a unit with
// empty text.
type Loader interface {
	Load(path string) ([]Unit, error)
}

// Fetcher resolves a source locator to a local file path holding the raw
// document bytes. The caller owns removal of the returned file.
type Fetcher interface {
	Fetch(ctx context.Context, source string) (string, error)
}

// VectorBackend is the external similarity-search service. Add embeds and
// stores chunks under an identity and is idempotent per chunk; BatchSearch
// answers all queries in one round trip, each result list ranked by
// descending similarity with ties broken by insertion order, and never
// mutates state.
type VectorBackend interface {
	Add(ctx context.Context, id Identity, chunks []Chunk) error
	BatchSearch(ctx context.Context, id Identity, queries []string, k int) ([][]Chunk, error)
}

// LoadError reports an unreadable or unsupported source document. The HTTP
// layer maps it to a client-input error.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load document %q: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
