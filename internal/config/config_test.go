package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Defaults.Model != "base" {
		t.Errorf("Default model = %s, want base", cfg.Defaults.Model)
	}
	if cfg.Defaults.TargetLanguage != "id" {
		t.Errorf("Default target language = %s, want id", cfg.Defaults.TargetLanguage)
	}
	if cfg.Defaults.WrapWidth != 45 {
		t.Errorf("Default wrap width = %d, want 45", cfg.Defaults.WrapWidth)
	}
	if cfg.Defaults.CacheTTL != "7d" {
		t.Errorf("Default cache TTL = %s, want 7d", cfg.Defaults.CacheTTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		wantSecs int64
		wantErr  bool
	}{
		{"24h", 86400, false},
		{"7d", 604800, false},
		{"30d", 2592000, false},
		{"1h", 3600, false},
		{"invalid", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			dur, err := ParseDuration(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseDuration(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if err == nil && int64(dur.Seconds()) != tt.wantSecs {
				t.Errorf("ParseDuration(%s) = %v, want %d seconds", tt.input, dur, tt.wantSecs)
			}
		})
	}
}

func TestConfig_Save_Load(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Defaults.Model = "small"
	cfg.Defaults.TargetLanguage = "fr"
	cfg.Translation.Provider = TranslatorAnthropic

	err := cfg.Save(configPath)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.Defaults.Model != "small" {
		t.Errorf("Loaded model = %s, want small", loaded.Defaults.Model)
	}
	if loaded.Defaults.TargetLanguage != "fr" {
		t.Errorf("Loaded target = %s, want fr", loaded.Defaults.TargetLanguage)
	}
	if loaded.Translation.Provider != TranslatorAnthropic {
		t.Errorf("Loaded provider = %s, want anthropic", loaded.Translation.Provider)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("defaults:\n  wrap_width: 40\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Defaults.WrapWidth != 40 {
		t.Errorf("WrapWidth = %d, want 40", cfg.Defaults.WrapWidth)
	}
	if cfg.Defaults.TargetLanguage != "id" {
		t.Errorf("TargetLanguage = %s, want default id", cfg.Defaults.TargetLanguage)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Transcription.Provider != TranscriberLocal {
		t.Errorf("Provider = %s, want local", cfg.Transcription.Provider)
	}
}

func TestLoad_APIKeysFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("ANTHROPIC_API_KEY", "sk-anthropic")

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	body := "transcription:\n  provider: openai\ntranslation:\n  provider: anthropic\n"
	if err := os.WriteFile(configPath, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Transcription.APIKey != "sk-openai" {
		t.Errorf("Transcription.APIKey = %q, want sk-openai", cfg.Transcription.APIKey)
	}
	if cfg.Translation.APIKey != "sk-anthropic" {
		t.Errorf("Translation.APIKey = %q, want sk-anthropic", cfg.Translation.APIKey)
	}
}

func TestConfig_SaveOmitsAPIKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Translation.APIKey = "secret-key"

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "secret-key") {
		t.Error("saved config contains the API key")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"width too small", func(c *Config) { c.Defaults.WrapWidth = 5 }},
		{"width too large", func(c *Config) { c.Defaults.WrapWidth = 200 }},
		{"zero concurrency", func(c *Config) { c.Defaults.Concurrency = 0 }},
		{"bad policy", func(c *Config) { c.Defaults.OnError = "retry" }},
		{"bad full text mode", func(c *Config) { c.Defaults.FullText = "both" }},
		{"auto target", func(c *Config) { c.Defaults.TargetLanguage = "auto" }},
		{"bad target", func(c *Config) { c.Defaults.TargetLanguage = "not valid" }},
		{"bad transcriber", func(c *Config) { c.Transcription.Provider = "vosk" }},
		{"bad translator", func(c *Config) { c.Translation.Provider = "deepl" }},
		{"bad ttl", func(c *Config) { c.Defaults.CacheTTL = "soon" }},
		{"bad timeout", func(c *Config) { c.Translation.Timeout = "later" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() error = nil, want error")
			}
		})
	}
}

func TestAppDir(t *testing.T) {
	dir := AppDir()
	if dir == "" {
		t.Error("AppDir() returned empty string")
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".subtranslate")
	if dir != expected {
		t.Errorf("AppDir() = %s, want %s", dir, expected)
	}
}
