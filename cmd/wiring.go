package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/viper"
	weaviateClient "github.com/weaviate/weaviate-go-client/v4/weaviate"

	"askdoc/src/core/answering"
	"askdoc/src/core/document"
	"askdoc/src/infrastructure/integrations/ollama"
	"askdoc/src/loader"
	"askdoc/src/storage/memindex"
	"askdoc/src/storage/miniostore"
	"askdoc/src/storage/weaviate"
)

// newAnswerService wires the whole stack from viper configuration: ollama
// client, vector backend, document cache and answering pipeline.
func newAnswerService(ctx context.Context) (*answering.Service, error) {
	timeout, err := time.ParseDuration(viper.GetString("ollama.timeout"))
	if err != nil {
		timeout = 120 * time.Second
	}
	ollamaClient := ollama.NewClient(
		viper.GetString("ollama.url"),
		&http.Client{Timeout: timeout},
		viper.GetString("ollama.embedding_model"),
		viper.GetString("ollama.llm_model"),
	)

	backend, err := newVectorBackend(ctx, ollamaClient)
	if err != nil {
		return nil, err
	}

	var blobs document.BlobStore
	if endpoint := viper.GetString("minio.endpoint"); endpoint != "" {
		minioService, err := miniostore.NewService(
			endpoint,
			viper.GetString("minio.access_key"),
			viper.GetString("minio.secret_key"),
			false,
			viper.GetString("minio.document_bucket"),
		)
		if err != nil {
			return nil, fmt.Errorf("create minio service: %w", err)
		}
		if err := minioService.EnsureBucketExists(ctx); err != nil {
			return nil, fmt.Errorf("ensure document bucket: %w", err)
		}
		blobs = minioService
	}

	fetchTimeout, err := time.ParseDuration(viper.GetString("docs.fetch_timeout"))
	if err != nil {
		fetchTimeout = 60 * time.Second
	}
	fetcher := document.NewHTTPFetcher(
		&http.Client{Timeout: fetchTimeout},
		blobs,
		viper.GetString("docs.scratch_dir"),
	)

	splitter := document.NewSplitter(viper.GetInt("chunk.size"), viper.GetInt("chunk.overlap"))
	cache := document.NewCache(fetcher, loader.NewRegistry(), splitter, backend)

	pipeline := answering.NewPipeline(
		ollamaClient,
		answering.WithTopK(viper.GetInt("retrieval.top_k")),
		answering.WithSourceMode(answering.ParseSourceMode(viper.GetString("answer.sources"))),
	)

	return answering.NewService(cache, pipeline), nil
}

func newVectorBackend(ctx context.Context, embedder *ollama.Client) (document.VectorBackend, error) {
	switch backend := viper.GetString("index.backend"); backend {
	case "memory":
		return memindex.NewStore(embedder), nil
	case "weaviate":
		wc := weaviateClient.New(weaviateClient.Config{
			Host:   viper.GetString("weaviate.host"),
			Scheme: viper.GetString("weaviate.scheme"),
		})
		store := weaviate.NewStore(wc, embedder, viper.GetString("weaviate.class"))
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure weaviate schema: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown index backend %q", backend)
	}
}
