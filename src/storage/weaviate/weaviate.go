// Package weaviate adapts a Weaviate instance to the pipeline's vector
// backend contract. All chunks live in one class; retrieval is scoped to a
// document with a where-filter on its identity tag.
package weaviate

import (
	"context"
	"fmt"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
	"golang.org/x/sync/errgroup"

	"askdoc/src/core/document"
)

const (
	DefaultClassName = "DocumentChunk"

	// Cap on concurrent per-query searches inside one batched call.
	maxSearchConcurrency = 8
)

// Embedder supplies query and chunk embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Store implements document.VectorBackend on top of Weaviate.
type Store struct {
	client    *weaviate.Client
	embedder  Embedder
	className string
}

var _ document.VectorBackend = (*Store)(nil)

func NewStore(client *weaviate.Client, embedder Embedder, className string) *Store {
	if className == "" {
		className = DefaultClassName
	}

	return &Store{
		client:    client,
		embedder:  embedder,
		className: className,
	}
}

// EnsureSchema creates the chunk class if it does not exist yet. Vectors are
// supplied by us, so the class vectorizer is "none".
func (s *Store) EnsureSchema(ctx context.Context) error {
	exists, err := s.classExists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check if class exists: %w", err)
	}
	if exists {
		return nil
	}

	class := &models.Class{
		Class:      s.className,
		Vectorizer: "none",
		Properties: []*models.Property{
			{
				Name:        "content",
				DataType:    []string{"text"},
				Description: "The chunk text",
			},
			{
				Name:        "docId",
				DataType:    []string{"text"},
				Description: "Identity of the source document",
			},
			{
				Name:        "page",
				DataType:    []string{"int"},
				Description: "Page number within the source document",
			},
			{
				Name:        "source",
				DataType:    []string{"text"},
				Description: "Source file name",
			},
			{
				Name:        "images",
				DataType:    []string{"text[]"},
				Description: "Image references associated with the chunk",
			},
		},
	}

	if err := s.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return fmt.Errorf("failed to create class: %w", err)
	}

	return nil
}

func (s *Store) classExists(ctx context.Context) (bool, error) {
	schema, err := s.client.Schema().Getter().Do(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get schema: %w", err)
	}

	for _, class := range schema.Classes {
		if class.Class == s.className {
			return true, nil
		}
	}

	return false, nil
}

// Add embeds the chunks and stores them under the document identity. Object
// IDs are derived from the identity, ordinal and chunk text, so re-adding an
// already-indexed chunk overwrites the identical object instead of
// duplicating it.
func (s *Store) Add(ctx context.Context, id document.Identity, chunks []document.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	objects := make([]*models.Object, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxSearchConcurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			vector, err := s.embedder.Embed(gctx, chunk.Text)
			if err != nil {
				return fmt.Errorf("embed chunk %d: %w", i, err)
			}
			objects[i] = &models.Object{
				Class:      s.className,
				ID:         chunkObjectID(id, i, chunk.Text),
				Vector:     vector,
				Properties: chunkProperties(id, chunk),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	resp, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to batch add chunks: %w", err)
	}
	if len(resp) == 0 {
		return fmt.Errorf("batch add returned no results")
	}

	return nil
}

// BatchSearch answers every query with its top-k most similar chunks of the
// given document. Queries inside the batch run concurrently; the result
// slice is order-aligned with the queries. Search never mutates the index.
func (s *Store) BatchSearch(ctx context.Context, id document.Identity, queries []string, k int) ([][]document.Chunk, error) {
	results := make([][]document.Chunk, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxSearchConcurrency)
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

	where := filters.Where().
		WithPath([]string{"docId"}).
		WithOperator(filters.Equal).
		WithValueText(string(id))

	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	result, err := s.client.GraphQL().Get().
		WithClassName(s.className).
		WithFields(
			graphql.Field{Name: "content"},
			graphql.Field{Name: "docId"},
			graphql.Field{Name: "page"},
			graphql.Field{Name: "source"},
			graphql.Field{Name: "images"},
			graphql.Field{Name: "_additional { distance }"},
		).
		WithNearVector(nearVector).
		WithWhere(where).
		WithLimit(k).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %s", result.Errors[0].Message)
	}

	return parseChunks(result.Data, s.className), nil
}

func parseChunks(data map[string]models.JSONObject, className string) []document.Chunk {
	var chunks []document.Chunk

	get, ok := data["Get"].(map[string]interface{})
	if !ok {
		return chunks
	}
	objects, ok := get[className].([]interface{})
	if !ok {
		return chunks
	}

	for _, obj := range objects {
		objMap, ok := obj.(map[string]interface{})
		if !ok {
			continue
		}

		content, _ := objMap["content"].(string)
		meta := make(map[string]any)
		if v, ok := objMap["docId"]; ok && v != nil {
			meta[document.MetaDocument] = v
		}
		if v, ok := objMap["page"]; ok && v != nil {
			meta[document.MetaPage] = v
		}
		if v, ok := objMap["source"]; ok && v != nil {
			meta[document.MetaSource] = v
		}
		if v, ok := objMap["images"]; ok && v != nil {
			meta[document.MetaImages] = v
		}

		chunks = append(chunks, document.Chunk{Text: content, Metadata: meta})
	}

	return chunks
}

func chunkProperties(id document.Identity, chunk document.Chunk) map[string]interface{} {
	props := map[string]interface{}{
		"content": chunk.Text,
		"docId":   string(id),
	}
	if v, ok := chunk.Metadata[document.MetaPage]; ok {
		props["page"] = v
	}
	if v, ok := chunk.Metadata[document.MetaSource]; ok {
		props["source"] = v
	}
	if v, ok := chunk.Metadata[document.MetaImages]; ok {
		props["images"] = v
	}
	return props
}

// chunkObjectID derives a deterministic object ID so that duplicate adds of
// the same chunk for the same document are upserts, not duplicates.
func chunkObjectID(id document.Identity, ordinal int, text string) strfmt.UUID {
	name := fmt.Sprintf("%s/%d/%s", id, ordinal, text)
	return strfmt.UUID(uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String())
}
