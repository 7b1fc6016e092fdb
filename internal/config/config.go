package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all configuration for WebWhiz
type Config struct {
	Server Server `mapstructure:"server"`
	OpenAI OpenAI `mapstructure:"openai"`
	Qdrant Qdrant `mapstructure:"qdrant"`
	Ingest Ingest `mapstructure:"ingest"`
	Chat   Chat   `mapstructure:"chat"`
}

// Server holds HTTP server configuration
type Server struct {
	Host         string   `mapstructure:"host"`
	Port         int      `mapstructure:"port"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// OpenAI holds model provider configuration
type OpenAI struct {
	APIKey          string `mapstructure:"api_key"`
	ChatModel       string `mapstructure:"chat_model"`
	EmbeddingModel  string `mapstructure:"embedding_model"`
	TranscribeModel string `mapstructure:"transcribe_model"`
	SpeechModel     string `mapstructure:"speech_model"`
	SpeechVoice     string `mapstructure:"speech_voice"`
}

// Qdrant holds vector store configuration
type Qdrant struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Collection string `mapstructure:"collection"`
	VectorSize int    `mapstructure:"vector_size"`
}

// Ingest holds document ingestion configuration
type Ingest struct {
	ChunkSize     int `mapstructure:"chunk_size"`
	ChunkOverlap  int `mapstructure:"chunk_overlap"`
	WikiPageLimit int `mapstructure:"wiki_page_limit"`
}

// Chat holds retrieval and answering configuration
type Chat struct {
	TopK               int     `mapstructure:"top_k"`
	ConfidenceTopK     int     `mapstructure:"confidence_top_k"`
	ConfidenceFallback float64 `mapstructure:"confidence_fallback"`
	HistoryLimit       int     `mapstructure:"history_limit"`
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("WEBWHIZ")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.allow_origins", []string{"*"})

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.chat_model", "gpt-4o")
	v.SetDefault("openai.embedding_model", "text-embedding-3-small")
	v.SetDefault("openai.transcribe_model", "whisper-1")
	v.SetDefault("openai.speech_model", "tts-1")
	v.SetDefault("openai.speech_voice", "alloy")

	v.SetDefault("qdrant.host", "localhost")
	v.SetDefault("qdrant.port", 6334)
	v.SetDefault("qdrant.collection", "webwhiz")
	v.SetDefault("qdrant.vector_size", 1536)

	v.SetDefault("ingest.chunk_size", 500)
	v.SetDefault("ingest.chunk_overlap", 50)
	v.SetDefault("ingest.wiki_page_limit", 50)

	v.SetDefault("chat.top_k", 4)
	v.SetDefault("chat.confidence_top_k", 4)
	v.SetDefault("chat.confidence_fallback", 78)
	v.SetDefault("chat.history_limit", 20)
}

// Address returns the server address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
