package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        App        `mapstructure:"app"`
	Logging    Logging    `mapstructure:"logging"`
	AI         AI         `mapstructure:"ai"`
	Generation Generation `mapstructure:"generation"`
	Embedding  Embedding  `mapstructure:"embedding"`
	Images     Images     `mapstructure:"images"`
	Vision     Vision     `mapstructure:"vision"`
	Tips       Tips       `mapstructure:"tips"`
	Matching   Matching   `mapstructure:"matching"`
	Render     Render     `mapstructure:"render"`
	Cache      Cache      `mapstructure:"cache"`
	Server     Server     `mapstructure:"server"`
}

// App holds general application configuration
type App struct {
	Debug      bool   `mapstructure:"debug"`
	DataDir    string `mapstructure:"data_dir"`
	ConfigFile string `mapstructure:"config_file"`
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AI holds AI/LLM configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	EmbeddingModel string  `mapstructure:"embedding_model"`
	CaptionModel   string  `mapstructure:"caption_model"`
	Timeout        string  `mapstructure:"timeout"`
	Temperature    float32 `mapstructure:"temperature"`
}

// Generation selects the model that writes the raw page
type Generation struct {
	Provider string       `mapstructure:"provider"` // gemini | ollama
	Timeout  string       `mapstructure:"timeout"`
	Ollama   OllamaConfig `mapstructure:"ollama"`
}

// OllamaConfig holds the local ollama CLI settings
type OllamaConfig struct {
	Binary string `mapstructure:"binary"`
	Model  string `mapstructure:"model"`
}

// Embedding selects the text embedding backend
type Embedding struct {
	Provider   string `mapstructure:"provider"` // gemini | hash
	Dimensions int    `mapstructure:"dimensions"`
}

// Images holds image discovery and captioning configuration
type Images struct {
	Directory   string `mapstructure:"directory"`
	Captioner   string `mapstructure:"captioner"` // gemini | vision
	Concurrency int    `mapstructure:"concurrency"`
}

// Vision holds Google Cloud Vision configuration
type Vision struct {
	CredentialsFile string `mapstructure:"credentials_file"`
	MaxLabels       int    `mapstructure:"max_labels"`
}

// Tips holds tip source configuration
type Tips struct {
	Source     string `mapstructure:"source"` // healthfinder | file
	Endpoint   string `mapstructure:"endpoint"`
	File       string `mapstructure:"file"`
	SampleSize int    `mapstructure:"sample_size"`
	Seed       int64  `mapstructure:"seed"`
	Timeout    string `mapstructure:"timeout"`
}

// Matching holds tip/image matching configuration
type Matching struct {
	Strategy string `mapstructure:"strategy"` // greedy | optimal
}

// Render holds output configuration
type Render struct {
	OutputFile       string `mapstructure:"output_file"`
	ImageWidth       int    `mapstructure:"image_width"`
	UnmatchedContent string `mapstructure:"unmatched_content"` // drop | preserve
	MarkdownExport   bool   `mapstructure:"markdown_export"`
}

// Cache holds cache configuration
type Cache struct {
	Enabled   bool   `mapstructure:"enabled"`
	Directory string `mapstructure:"directory"`
}

// Server holds preview server configuration
type Server struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	ReadTimeout     string `mapstructure:"read_timeout"`
	WriteTimeout    string `mapstructure:"write_timeout"`
	ShutdownTimeout string `mapstructure:"shutdown_timeout"`
}

var globalConfig *Config

// Load loads the configuration from various sources and validates it
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	config, err := read(configFile)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// LoadUnvalidated reads configuration without the provider checks, for commands that
// only touch local files and the cache.
func LoadUnvalidated(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}
	return read(configFile)
}

func read(configFile string) (*Config, error) {
	viper.Reset()

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".healthpage")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.SetEnvPrefix("HEALTHPAGE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.App.ConfigFile = viper.ConfigFileUsed()

	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.data_dir", ".healthpage-cache")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	viper.SetDefault("ai.gemini.model", "gemini-flash-lite-latest")
	viper.SetDefault("ai.gemini.embedding_model", "gemini-embedding-001")
	viper.SetDefault("ai.gemini.caption_model", "gemini-flash-lite-latest")
	viper.SetDefault("ai.gemini.timeout", "60s")
	viper.SetDefault("ai.gemini.temperature", 0.4)

	viper.SetDefault("generation.provider", "gemini")
	viper.SetDefault("generation.timeout", "300s")
	viper.SetDefault("generation.ollama.binary", "ollama")
	viper.SetDefault("generation.ollama.model", "deepseek-r1:7b")

	viper.SetDefault("embedding.provider", "gemini")
	viper.SetDefault("embedding.dimensions", 768)

	viper.SetDefault("images.directory", "llava-images")
	viper.SetDefault("images.captioner", "gemini")
	viper.SetDefault("images.concurrency", 4)

	viper.SetDefault("vision.max_labels", 5)

	viper.SetDefault("tips.source", "healthfinder")
	viper.SetDefault("tips.endpoint", "https://odphp.health.gov/myhealthfinder/api/v3/myhealthfinder.json")
	viper.SetDefault("tips.sample_size", 5)
	viper.SetDefault("tips.seed", 0)
	viper.SetDefault("tips.timeout", "30s")

	viper.SetDefault("matching.strategy", "greedy")

	viper.SetDefault("render.output_file", "prototype-final.html")
	viper.SetDefault("render.image_width", 300)
	viper.SetDefault("render.unmatched_content", "drop")
	viper.SetDefault("render.markdown_export", false)

	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.directory", ".healthpage-cache")

	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "330s")
	viper.SetDefault("server.shutdown_timeout", "10s")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("vision.credentials_file", []string{
		"GOOGLE_APPLICATION_CREDENTIALS",
	})

	bindEnvKeys("generation.ollama.model", []string{
		"OLLAMA_MODEL",
	})

	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"HEALTHPAGE_DEBUG",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig applies post-processing to configuration values
func postProcessConfig(config *Config) error {
	config.App.DataDir = expandPath(config.App.DataDir)
	config.Cache.Directory = expandPath(config.Cache.Directory)
	config.Images.Directory = expandPath(config.Images.Directory)
	config.Tips.File = expandPath(config.Tips.File)
	config.Vision.CredentialsFile = expandPath(config.Vision.CredentialsFile)

	config.Generation.Provider = strings.ToLower(config.Generation.Provider)
	config.Embedding.Provider = strings.ToLower(config.Embedding.Provider)
	config.Images.Captioner = strings.ToLower(config.Images.Captioner)
	config.Tips.Source = strings.ToLower(config.Tips.Source)
	config.Matching.Strategy = strings.ToLower(config.Matching.Strategy)
	config.Render.UnmatchedContent = strings.ToLower(config.Render.UnmatchedContent)

	durations := map[string]string{
		"ai.gemini.timeout":       config.AI.Gemini.Timeout,
		"generation.timeout":      config.Generation.Timeout,
		"tips.timeout":            config.Tips.Timeout,
		"server.read_timeout":     config.Server.ReadTimeout,
		"server.write_timeout":    config.Server.WriteTimeout,
		"server.shutdown_timeout": config.Server.ShutdownTimeout,
	}

	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// validateConfig ensures required configuration is present
func validateConfig(config *Config) error {
	var errors []string

	needsGemini := false

	switch config.Generation.Provider {
	case "gemini":
		needsGemini = true
	case "ollama":
		if config.Generation.Ollama.Model == "" {
			errors = append(errors, "generation.ollama.model is required when generation.provider is ollama")
		}
	default:
		errors = append(errors, fmt.Sprintf("Unknown generation provider: %s. Supported: gemini, ollama", config.Generation.Provider))
	}

	switch config.Embedding.Provider {
	case "gemini":
		needsGemini = true
	case "hash":
		if config.Embedding.Dimensions <= 0 {
			errors = append(errors, "embedding.dimensions must be positive for the hash embedder")
		}
	default:
		errors = append(errors, fmt.Sprintf("Unknown embedding provider: %s. Supported: gemini, hash", config.Embedding.Provider))
	}

	switch config.Images.Captioner {
	case "gemini":
		needsGemini = true
	case "vision":
	default:
		errors = append(errors, fmt.Sprintf("Unknown captioner: %s. Supported: gemini, vision", config.Images.Captioner))
	}

	if needsGemini && !isValidAPIKey(config.AI.Gemini.APIKey) {
		errors = append(errors, "Gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file.\nGet your API key from: https://aistudio.google.com/app/apikey")
	}

	switch config.Tips.Source {
	case "healthfinder":
		if config.Tips.Endpoint == "" {
			errors = append(errors, "tips.endpoint is required for the healthfinder source")
		}
	case "file":
		if config.Tips.File == "" {
			errors = append(errors, "tips.file is required when tips.source is file")
		}
	default:
		errors = append(errors, fmt.Sprintf("Unknown tip source: %s. Supported: healthfinder, file", config.Tips.Source))
	}

	if config.Tips.SampleSize <= 0 {
		errors = append(errors, "tips.sample_size must be positive")
	}

	switch config.Matching.Strategy {
	case "greedy", "optimal":
	default:
		errors = append(errors, fmt.Sprintf("Unknown matching strategy: %s. Supported: greedy, optimal", config.Matching.Strategy))
	}

	switch config.Render.UnmatchedContent {
	case "drop", "preserve":
	default:
		errors = append(errors, fmt.Sprintf("Unknown render.unmatched_content: %s. Supported: drop, preserve", config.Render.UnmatchedContent))
	}

	if config.Render.OutputFile == "" {
		errors = append(errors, "render.output_file is required")
	}
	if config.Render.ImageWidth <= 0 {
		errors = append(errors, "render.image_width must be positive")
	}
	if config.Images.Concurrency <= 0 {
		errors = append(errors, "images.concurrency must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// isValidAPIKey checks if an API key is valid (not empty and not a placeholder)
func isValidAPIKey(apiKey string) bool {
	if apiKey == "" {
		return false
	}

	placeholders := []string{
		"your-api-key", "your-gemini-api-key", "YOUR_API_KEY", "PLACEHOLDER", "TODO", "CHANGE_ME",
	}

	for _, placeholder := range placeholders {
		if apiKey == placeholder {
			return false
		}
	}

	return true
}

// ParseDuration parses a duration string, returning fallback when empty or invalid.
func ParseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
