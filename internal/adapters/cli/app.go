package cli

import (
	"fmt"
	"time"

	"github.com/devbush/subtranslate/internal/adapters/anthropic"
	"github.com/devbush/subtranslate/internal/adapters/cache"
	"github.com/devbush/subtranslate/internal/adapters/google"
	"github.com/devbush/subtranslate/internal/adapters/media"
	"github.com/devbush/subtranslate/internal/adapters/openai"
	"github.com/devbush/subtranslate/internal/adapters/whisper"
	"github.com/devbush/subtranslate/internal/application"
	"github.com/devbush/subtranslate/internal/config"
	"github.com/devbush/subtranslate/internal/observability/metrics"
	"github.com/devbush/subtranslate/internal/ports"
)

// App holds all application dependencies
type App struct {
	Config      *config.Config
	Cache       ports.CacheStore
	Extractor   *media.Extractor
	Whisper     *whisper.Transcriber // local models, also used when transcribing through the API
	Transcriber ports.Transcriber
	Translator  ports.Translator
	Metrics     *metrics.Metrics

	TranscribeSvc *application.TranscribeService
	SubtitleSvc   *application.SubtitleService
	CacheSvc      *application.CacheService
}

// NewApp creates and wires up all dependencies
func NewApp(cfg *config.Config) (*App, error) {
	if err := config.EnsureDirs(); err != nil {
		return nil, err
	}

	ttl, err := cfg.GetCacheTTL()
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.GetTranslationTimeout()
	if err != nil {
		return nil, err
	}
	policy, err := application.ParseFailurePolicy(cfg.Defaults.OnError)
	if err != nil {
		return nil, err
	}

	cacheStore := cache.NewFileCache(config.CacheDir(), ttl)
	extractor := media.NewExtractor(cfg.Paths.FFmpeg)
	local := whisper.NewTranscriber(config.ModelsDir(),
		whisper.WithBinary(cfg.Paths.Whisper),
		whisper.WithConverter(extractor),
	)

	transcriber, err := newTranscriber(cfg, local)
	if err != nil {
		return nil, err
	}
	translator, err := newTranslator(cfg, timeout)
	if err != nil {
		return nil, err
	}

	m := metrics.DefaultMetrics
	translator = metrics.InstrumentTranslator(translator, m)

	builder := application.NewDocumentBuilder(application.BuildOptions{
		Width:       cfg.Defaults.WrapWidth,
		Concurrency: cfg.Defaults.Concurrency,
		Policy:      policy,
	})

	transcribeSvc := application.NewTranscribeService(cacheStore, extractor, transcriber, ttl)
	subtitleSvc := application.NewSubtitleService(transcribeSvc, translator, builder).WithMetrics(m)
	cacheSvc := application.NewCacheService(cacheStore, ttl)

	return &App{
		Config:        cfg,
		Cache:         cacheStore,
		Extractor:     extractor,
		Whisper:       local,
		Transcriber:   transcriber,
		Translator:    translator,
		Metrics:       m,
		TranscribeSvc: transcribeSvc,
		SubtitleSvc:   subtitleSvc,
		CacheSvc:      cacheSvc,
	}, nil
}

func newTranscriber(cfg *config.Config, local *whisper.Transcriber) (ports.Transcriber, error) {
	switch cfg.Transcription.Provider {
	case config.TranscriberOpenAI:
		return openai.NewTranscriber(cfg.Transcription)
	case config.TranscriberLocal, "":
		return local, nil
	default:
		return nil, fmt.Errorf("unknown transcription provider: %s", cfg.Transcription.Provider)
	}
}

func newTranslator(cfg *config.Config, timeout time.Duration) (ports.Translator, error) {
	switch cfg.Translation.Provider {
	case config.TranslatorOpenAI:
		return openai.NewTranslator(cfg.Translation, timeout)
	case config.TranslatorAnthropic:
		return anthropic.NewTranslator(cfg.Translation, timeout)
	case config.TranslatorGoogle, "":
		return google.NewTranslator(timeout), nil
	default:
		return nil, fmt.Errorf("unknown translation provider: %s", cfg.Translation.Provider)
	}
}

// loadConfig reads the config file and applies command line overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, err
	}
	applyFlags(cfg)
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

var (
	globalConfig *config.Config
	globalApp    *App
)

// GetConfig returns the validated configuration, loading it if needed
func GetConfig() (*config.Config, error) {
	if globalConfig == nil {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		globalConfig = cfg
	}
	return globalConfig, nil
}

// localWhisper returns the whisper.cpp model manager without building
// translation backends, so model commands work without API keys
func localWhisper() (*whisper.Transcriber, *config.Config, error) {
	if globalApp != nil {
		return globalApp.Whisper, globalApp.Config, nil
	}
	cfg, err := GetConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := config.EnsureDirs(); err != nil {
		return nil, nil, err
	}
	return whisper.NewTranscriber(config.ModelsDir(), whisper.WithBinary(cfg.Paths.Whisper)), cfg, nil
}

// GetApp returns the global app instance, creating it if needed
func GetApp() (*App, error) {
	if globalApp == nil {
		cfg, err := GetConfig()
		if err != nil {
			return nil, err
		}
		app, err := NewApp(cfg)
		if err != nil {
			return nil, err
		}
		globalApp = app
	}
	return globalApp, nil
}
