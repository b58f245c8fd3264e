package cmd

import "github.com/spf13/viper"

func settingDefaultConfig() {
	// Enable automatic environment variable binding
	viper.AutomaticEnv()

	// Server and API auth
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.shutdown_timeout", "SERVER_SHUTDOWN_TIMEOUT")
	viper.BindEnv("api.auth_token", "API_AUTH_TOKEN")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.shutdown_timeout", "5s")
	viper.SetDefault("api.auth_token", "")

	// Ollama (embeddings + completions)
	viper.BindEnv("ollama.url", "OLLAMA_URL")
	viper.BindEnv("ollama.embedding_model", "OLLAMA_EMBEDDING_MODEL")
	viper.BindEnv("ollama.llm_model", "OLLAMA_LLM_MODEL")
	viper.BindEnv("ollama.timeout", "OLLAMA_TIMEOUT")
	viper.SetDefault("ollama.url", "http://ollama:11434/api")
	viper.SetDefault("ollama.embedding_model", "nomic-embed-text")
	viper.SetDefault("ollama.llm_model", "llama3.2")
	viper.SetDefault("ollama.timeout", "120s")

	// Vector index backend: "weaviate" or "memory"
	viper.BindEnv("index.backend", "INDEX_BACKEND")
	viper.BindEnv("weaviate.host", "WEAVIATE_HOST")
	viper.BindEnv("weaviate.scheme", "WEAVIATE_SCHEME")
	viper.BindEnv("weaviate.class", "WEAVIATE_CLASS")
	viper.SetDefault("index.backend", "weaviate")
	viper.SetDefault("weaviate.host", "weaviate:8080")
	viper.SetDefault("weaviate.scheme", "http")
	viper.SetDefault("weaviate.class", "DocumentChunk")

	// MinIO bucket for blob:// document sources; empty endpoint disables it
	viper.BindEnv("minio.endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("minio.access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("minio.secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("minio.document_bucket", "MINIO_DOCUMENT_BUCKET")
	viper.SetDefault("minio.endpoint", "")
	viper.SetDefault("minio.access_key", "minioadmin")
	viper.SetDefault("minio.secret_key", "minioadmin")
	viper.SetDefault("minio.document_bucket", "documents")

	// Ingestion and retrieval tuning
	viper.BindEnv("docs.scratch_dir", "DOCS_SCRATCH_DIR")
	viper.BindEnv("docs.fetch_timeout", "DOCS_FETCH_TIMEOUT")
	viper.BindEnv("chunk.size", "CHUNK_SIZE")
	viper.BindEnv("chunk.overlap", "CHUNK_OVERLAP")
	viper.BindEnv("retrieval.top_k", "RETRIEVAL_TOP_K")
	viper.BindEnv("answer.sources", "ANSWER_SOURCES")
	viper.SetDefault("docs.scratch_dir", "temp_docs")
	viper.SetDefault("docs.fetch_timeout", "60s")
	viper.SetDefault("chunk.size", 1500)
	viper.SetDefault("chunk.overlap", 150)
	viper.SetDefault("retrieval.top_k", 4)
	viper.SetDefault("answer.sources", "all")
}
