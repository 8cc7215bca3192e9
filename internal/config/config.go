package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/devbush/subtranslate/internal/domain"
)

// Provider, policy and mode names accepted in the config file
const (
	TranscriberLocal  = "local"
	TranscriberOpenAI = "openai"

	TranslatorGoogle    = "google"
	TranslatorOpenAI    = "openai"
	TranslatorAnthropic = "anthropic"

	OnErrorFail        = "fail"
	OnErrorPlaceholder = "placeholder"

	FullTextJoined   = "joined"
	FullTextSeparate = "separate"
)

// Config represents the application configuration
type Config struct {
	Defaults      DefaultsConfig      `yaml:"defaults"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Translation   TranslationConfig   `yaml:"translation"`
	Server        ServerConfig        `yaml:"server"`
	Logging       LoggingConfig       `yaml:"logging"`
	Paths         PathsConfig         `yaml:"paths"`
}

// DefaultsConfig holds default values for processing a file
type DefaultsConfig struct {
	Model          string `yaml:"model"`
	TargetLanguage string `yaml:"target_language"`
	SourceLanguage string `yaml:"source_language"`
	WrapWidth      int    `yaml:"wrap_width"`
	Concurrency    int    `yaml:"concurrency"`
	OnError        string `yaml:"on_error"`
	FullText       string `yaml:"full_text"`
	Format         string `yaml:"format"`
	CacheTTL       string `yaml:"cache_ttl"`
}

// TranscriptionConfig selects the speech-to-text backend
type TranscriptionConfig struct {
	Provider    string `yaml:"provider"`
	OpenAIModel string `yaml:"openai_model"`
	BaseURL     string `yaml:"base_url"`
	APIKey      string `yaml:"-"`
}

// TranslationConfig selects the translation backend
type TranslationConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
	APIKey   string `yaml:"-"`
}

// ServerConfig configures the web upload UI
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	OutputDir string `yaml:"output_dir"`
}

// LoggingConfig configures zerolog
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// PathsConfig holds custom path overrides
type PathsConfig struct {
	Whisper string `yaml:"whisper"`
	FFmpeg  string `yaml:"ffmpeg"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			Model:          "base",
			TargetLanguage: "id",
			SourceLanguage: domain.AutoLanguage,
			WrapWidth:      domain.DefaultWrapWidth,
			Concurrency:    1,
			OnError:        OnErrorFail,
			FullText:       FullTextJoined,
			Format:         "text",
			CacheTTL:       "7d",
		},
		Transcription: TranscriptionConfig{
			Provider:    TranscriberLocal,
			OpenAIModel: "whisper-1",
		},
		Translation: TranslationConfig{
			Provider: TranslatorGoogle,
			Timeout:  "30s",
		},
		Server: ServerConfig{
			Addr: ":7860",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// AppDir returns the application directory (~/.subtranslate)
func AppDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".subtranslate"
	}
	return filepath.Join(home, ".subtranslate")
}

// ModelsDir returns the models directory
func ModelsDir() string {
	return filepath.Join(AppDir(), "models")
}

// CacheDir returns the cache directory
func CacheDir() string {
	return filepath.Join(AppDir(), "cache")
}

// BinDir returns the bin directory
func BinDir() string {
	return filepath.Join(AppDir(), "bin")
}

// OutputDir returns the directory the web UI stores subtitles in
func OutputDir() string {
	return filepath.Join(AppDir(), "output")
}

// ConfigPath returns the config file path
func ConfigPath() string {
	return filepath.Join(AppDir(), "config.yaml")
}

// EnsureDirs creates all required directories
func EnsureDirs() error {
	dirs := []string{AppDir(), ModelsDir(), CacheDir(), BinDir(), OutputDir()}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Load reads config from file, returns default if not exists.
// API keys are read from the environment.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// LoadDefault loads config from default path
func LoadDefault() (*Config, error) {
	return Load(ConfigPath())
}

// ApplyEnv fills secrets from OPENAI_API_KEY and ANTHROPIC_API_KEY
func (c *Config) ApplyEnv() {
	openaiKey := os.Getenv("OPENAI_API_KEY")
	if c.Transcription.Provider == TranscriberOpenAI {
		c.Transcription.APIKey = openaiKey
	}
	switch c.Translation.Provider {
	case TranslatorOpenAI:
		c.Translation.APIKey = openaiKey
	case TranslatorAnthropic:
		c.Translation.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
}

// Validate checks values that would otherwise fail late in a run
func (c *Config) Validate() error {
	d := c.Defaults
	if d.WrapWidth < domain.MinWrapWidth || d.WrapWidth > domain.MaxWrapWidth {
		return fmt.Errorf("wrap_width must be between %d and %d, got %d",
			domain.MinWrapWidth, domain.MaxWrapWidth, d.WrapWidth)
	}
	if d.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", d.Concurrency)
	}
	if d.OnError != OnErrorFail && d.OnError != OnErrorPlaceholder {
		return fmt.Errorf("unknown on_error policy: %s", d.OnError)
	}
	if d.FullText != FullTextJoined && d.FullText != FullTextSeparate {
		return fmt.Errorf("unknown full_text mode: %s", d.FullText)
	}
	if d.TargetLanguage == "" || d.TargetLanguage == domain.AutoLanguage {
		return fmt.Errorf("target_language must be a concrete language code")
	}
	if _, err := domain.ValidateLanguage(d.TargetLanguage); err != nil {
		return err
	}
	if _, err := domain.ValidateLanguage(d.SourceLanguage); err != nil {
		return err
	}
	switch c.Transcription.Provider {
	case TranscriberLocal, TranscriberOpenAI:
	default:
		return fmt.Errorf("unknown transcription provider: %s", c.Transcription.Provider)
	}
	switch c.Translation.Provider {
	case TranslatorGoogle, TranslatorOpenAI, TranslatorAnthropic:
	default:
		return fmt.Errorf("unknown translation provider: %s", c.Translation.Provider)
	}
	if _, err := c.GetCacheTTL(); err != nil {
		return err
	}
	if _, err := c.GetTranslationTimeout(); err != nil {
		return err
	}
	return nil
}

// Save writes config to file
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveDefault saves config to default path
func (c *Config) SaveDefault() error {
	return c.Save(ConfigPath())
}

// GetCacheTTL returns the cache TTL as a duration
func (c *Config) GetCacheTTL() (time.Duration, error) {
	return ParseDuration(c.Defaults.CacheTTL)
}

// GetTranslationTimeout returns the per-call translation timeout, 0 for none
func (c *Config) GetTranslationTimeout() (time.Duration, error) {
	if c.Translation.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Translation.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid translation timeout: %w", err)
	}
	return d, nil
}

var durationPattern = regexp.MustCompile(`^(\d+)(h|d)$`)

// ParseDuration parses duration strings like "24h", "7d", "30d"
func ParseDuration(s string) (time.Duration, error) {
	matches := durationPattern.FindStringSubmatch(s)
	if len(matches) != 3 {
		return 0, fmt.Errorf("invalid duration format: %s (use format like 24h, 7d)", s)
	}

	value, _ := strconv.Atoi(matches[1])
	unit := matches[2]

	switch unit {
	case "h":
		return time.Duration(value) * time.Hour, nil
	case "d":
		return time.Duration(value) * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown duration unit: %s", unit)
	}
}
