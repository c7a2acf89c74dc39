package config

import (
	"time"

	"github.com/formforge/formforge-backend/shared/utils"
)

// LLMConfig configures the text-generation provider
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// EmbeddingConfig configures the embedding provider
type EmbeddingConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// MemoryConfig tunes retrieval-augmented form generation
type MemoryConfig struct {
	UsePinecone      bool
	TopK             int
	MaxFieldsPerForm int
}

// PineconeConfig configures the external vector index
type PineconeConfig struct {
	APIKey    string
	IndexHost string
	Timeout   time.Duration
}

// CloudinaryConfig configures the media host
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Timeout   time.Duration
}

// AppConfig holds all application configuration, read once at startup and
// passed into constructors. Components never read ambient process state.
type AppConfig struct {
	Port          string
	JWTSecret     string
	AllowedOrigin string
	LLM           LLMConfig
	Embedding     EmbeddingConfig
	Memory        MemoryConfig
	Pinecone      PineconeConfig
	Cloudinary    CloudinaryConfig
}

// Load reads application configuration from the environment
func Load() *AppConfig {
	return &AppConfig{
		Port:          utils.GetEnvOrDefault("PORT", "4000"),
		JWTSecret:     utils.GetEnvOrDefault("JWT_SECRET", "dev-secret"),
		AllowedOrigin: utils.GetEnvOrDefault("CORS_ALLOWED_ORIGIN", "*"),
		LLM: LLMConfig{
			APIKey:  utils.GetEnvOrDefault("LLM_API_KEY", ""),
			BaseURL: utils.GetEnvOrDefault("LLM_BASE_URL", "https://openrouter.ai/api/v1"),
			Model:   utils.GetEnvOrDefault("LLM_MODEL", "google/gemma-3n-e4b-it:free"),
			Timeout: 30 * time.Second,
		},
		Embedding: EmbeddingConfig{
			APIKey:  utils.GetEnvOrDefault("EMBEDDING_API_KEY", ""),
			BaseURL: utils.GetEnvOrDefault("EMBEDDING_BASE_URL", "https://api.openai.com/v1"),
			Model:   utils.GetEnvOrDefault("EMBEDDING_MODEL", "text-embedding-3-small"),
			Timeout: 30 * time.Second,
		},
		Memory: MemoryConfig{
			UsePinecone:      utils.GetEnvBoolOrDefault("USE_PINECONE_MEMORY", false),
			TopK:             utils.GetEnvIntOrDefault("MEMORY_TOP_K", 5),
			MaxFieldsPerForm: utils.GetEnvIntOrDefault("MEMORY_MAX_FIELDS_PER_FORM", 20),
		},
		Pinecone: PineconeConfig{
			APIKey:    utils.GetEnvOrDefault("PINECONE_API_KEY", ""),
			IndexHost: utils.GetEnvOrDefault("PINECONE_INDEX_HOST", ""),
			Timeout:   15 * time.Second,
		},
		Cloudinary: CloudinaryConfig{
			CloudName: utils.GetEnvOrDefault("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    utils.GetEnvOrDefault("CLOUDINARY_API_KEY", ""),
			APISecret: utils.GetEnvOrDefault("CLOUDINARY_API_SECRET", ""),
			Timeout:   30 * time.Second,
		},
	}
}
