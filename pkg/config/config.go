package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Storage       StorageConfig
	Upload        UploadConfig
	Ollama        OllamaConfig
	Whisper       WhisperConfig
	Assembly      AssemblyAIConfig
	Diarization   DiarizationConfig
	Index         IndexConfig
	Transcription TranscriptionConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	AllowedOrigins  []string
	ShutdownTimeout int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int
	MinConns    int
	AutoMigrate bool
}

// RedisConfig holds Redis configuration. Redis is optional: when disabled
// the job progress cache falls back to an in-process store.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// StorageConfig holds upload storage configuration ("local" or "minio")
type StorageConfig struct {
	Type            string
	LocalDir        string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
}

// UploadConfig bounds incoming audio uploads
type UploadConfig struct {
	MaxMB             int
	AllowedExtensions []string
}

// OllamaConfig holds the generative-text / embedding endpoint configuration.
// Any OpenAI-compatible server works; the model-pull recovery only applies
// to a local Ollama daemon.
type OllamaConfig struct {
	BaseURL        string
	ChatModel      string
	EmbedModel     string
	TimeoutSeconds int
	PullOnMissing  bool
}

// WhisperConfig holds whisper.cpp subprocess configuration
type WhisperConfig struct {
	BinaryPath string
	ModelPath  string
	Language   string
	Threads    int
	GPULayers  int
	Diarize    bool
}

// AssemblyAIConfig holds the cloud transcription engine configuration
type AssemblyAIConfig struct {
	APIKey string
}

// DiarizationConfig holds the diarization sidecar configuration
type DiarizationConfig struct {
	Enabled        bool
	BaseURL        string
	HFToken        string
	NumSpeakers    int
	MinSpeakers    int
	MaxSpeakers    int
	TimeoutSeconds int
}

// IndexConfig holds the vector index configuration ("pgvector" or "memory")
type IndexConfig struct {
	Backend   string
	Table     string
	Dimension int
}

// TranscriptionConfig selects the transcription engine
type TranscriptionConfig struct {
	Engine string // "whisper_cpp" or "assemblyai"
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			Name:        getEnv("DB_NAME", "meeting_insights"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:    getEnvAsInt("DB_MIN_CONNS", 5),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Storage: StorageConfig{
			Type:            getEnv("STORAGE_TYPE", "local"),
			LocalDir:        getEnv("STORAGE_LOCAL_DIR", "data/uploads"),
			Endpoint:        getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			BucketName:      getEnv("STORAGE_BUCKET", "meeting-insights"),
			UseSSL:          getEnvAsBool("STORAGE_USE_SSL", false),
		},
		Upload: UploadConfig{
			MaxMB:             getEnvAsInt("MAX_UPLOAD_MB", 1024),
			AllowedExtensions: strings.Split(getEnv("ALLOWED_EXTENSIONS", "mp3,mp4,wav,m4a,aac,flac,webm,ogg"), ","),
		},
		Ollama: OllamaConfig{
			BaseURL:        getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			ChatModel:      getEnv("OLLAMA_CHAT_MODEL", "llama3.2"),
			EmbedModel:     getEnv("OLLAMA_EMBED_MODEL", "nomic-embed-text"),
			TimeoutSeconds: getEnvAsInt("OLLAMA_TIMEOUT_SECONDS", 120),
			PullOnMissing:  getEnvAsBool("OLLAMA_PULL_ON_MISSING", true),
		},
		Whisper: WhisperConfig{
			BinaryPath: getEnv("WHISPER_BIN", "./bin/whisper"),
			ModelPath:  getEnv("WHISPER_MODEL", "./models/ggml-base.en.bin"),
			Language:   getEnv("WHISPER_LANGUAGE", ""),
			Threads:    getEnvAsInt("WHISPER_THREADS", 8),
			GPULayers:  getEnvAsInt("WHISPER_GPU_LAYERS", 0),
			Diarize:    getEnvAsBool("WHISPER_DIARIZE", true),
		},
		Assembly: AssemblyAIConfig{
			APIKey: getEnv("ASSEMBLYAI_API_KEY", ""),
		},
		Diarization: DiarizationConfig{
			Enabled:        getEnvAsBool("DIARIZATION_ENABLED", false),
			BaseURL:        getEnv("DIARIZATION_URL", "http://localhost:8570"),
			HFToken:        getEnv("HF_TOKEN", ""),
			NumSpeakers:    getEnvAsInt("DIARIZATION_NUM_SPEAKERS", 0),
			MinSpeakers:    getEnvAsInt("DIARIZATION_MIN_SPEAKERS", 0),
			MaxSpeakers:    getEnvAsInt("DIARIZATION_MAX_SPEAKERS", 0),
			TimeoutSeconds: getEnvAsInt("DIARIZATION_TIMEOUT_SECONDS", 300),
		},
		Index: IndexConfig{
			Backend:   getEnv("INDEX_BACKEND", "pgvector"),
			Table:     getEnv("INDEX_TABLE", "segment_index"),
			Dimension: getEnvAsInt("INDEX_DIMENSION", 768),
		},
		Transcription: TranscriptionConfig{
			Engine: getEnv("TRANSCRIPTION_ENGINE", "whisper_cpp"),
		},
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Transcription.Engine {
	case "whisper_cpp", "assemblyai":
	default:
		return fmt.Errorf("unknown TRANSCRIPTION_ENGINE %q (expected whisper_cpp or assemblyai)", c.Transcription.Engine)
	}
	switch c.Storage.Type {
	case "local", "minio":
	default:
		return fmt.Errorf("unknown STORAGE_TYPE %q (expected local or minio)", c.Storage.Type)
	}
	switch c.Index.Backend {
	case "pgvector", "memory":
	default:
		return fmt.Errorf("unknown INDEX_BACKEND %q (expected pgvector or memory)", c.Index.Backend)
	}
	if c.Transcription.Engine == "assemblyai" && c.Assembly.APIKey == "" {
		return fmt.Errorf("ASSEMBLYAI_API_KEY is required when TRANSCRIPTION_ENGINE=assemblyai")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// OllamaTimeout returns the per-call timeout for generative text requests
func (c *Config) OllamaTimeout() time.Duration {
	return time.Duration(c.Ollama.TimeoutSeconds) * time.Second
}

// AllowedExtension reports whether an upload extension (with or without
// leading dot) is accepted
func (c *Config) AllowedExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, allowed := range c.Upload.AllowedExtensions {
		if strings.TrimSpace(strings.ToLower(allowed)) == ext {
			return true
		}
	}
	return false
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
