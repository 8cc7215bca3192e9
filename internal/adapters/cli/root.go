package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/devbush/subtranslate/internal/adapters/cli/tui"
	"github.com/devbush/subtranslate/internal/adapters/whisper"
	"github.com/devbush/subtranslate/internal/application"
	"github.com/devbush/subtranslate/internal/config"
	"github.com/devbush/subtranslate/internal/domain"
	"github.com/devbush/subtranslate/internal/observability/logging"
)

var (
	// Global flags
	targetFlag      string
	sourceFlag      string
	modelFlag       string
	transcriberFlag string
	translatorFlag  string
	widthFlag       int
	concurrencyFlag int
	onErrorFlag     string
	fullTextFlag    string
	noCacheFlag     bool
	formatFlag      string
	quietFlag       bool
	logLevelFlag    string

	outputFlag string

	// set by the interactive menu
	extraOutputs *tui.OutputOptions
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "subtranslate [file]",
		Short: "Translate the speech in audio and video files into subtitles",
		Long: `subtranslate transcribes an .mp3 or .mp4 file with Whisper, translates
every segment and writes a SubRip (.srt) subtitle file in the target language.

Provide a file to translate it, or run without arguments for an
interactive menu.`,
		Args:              cobra.MaximumNArgs(1),
		PersistentPreRunE: initLogging,
		RunE:              runRoot,
		SilenceUsage:      true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&targetFlag, "target", "t", "", "Target language code (default from config: id)")
	pf.StringVar(&sourceFlag, "source", "", "Source language code, or auto to detect")
	pf.StringVar(&modelFlag, "model", "", "Whisper model: tiny, base, small, medium, large")
	pf.StringVar(&transcriberFlag, "transcriber", "", "Transcription backend: local, openai")
	pf.StringVar(&translatorFlag, "translator", "", "Translation backend: google, openai, anthropic")
	pf.IntVar(&widthFlag, "width", 0, fmt.Sprintf("Subtitle line width in cells (%d-%d)", domain.MinWrapWidth, domain.MaxWrapWidth))
	pf.IntVar(&concurrencyFlag, "concurrency", 0, "Max segment translations in flight")
	pf.StringVar(&onErrorFlag, "on-error", "", "Failed segment translation: fail, placeholder")
	pf.StringVar(&fullTextFlag, "full-text", "", "Full translation for the report: joined, separate")
	pf.BoolVar(&noCacheFlag, "no-cache", false, "Skip the transcript cache")
	pf.StringVar(&formatFlag, "format", "", "Output format: text, srt, json")
	pf.BoolVarP(&quietFlag, "quiet", "q", false, "Suppress progress output")
	pf.StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Subtitle file path (default: <name>.<target>.srt next to the input)")

	rootCmd.AddCommand(NewBatchCmd())
	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewCacheCmd())
	rootCmd.AddCommand(NewModelCmd())
	rootCmd.AddCommand(NewDepsCmd())

	return rootCmd
}

// applyFlags copies explicitly set flags over the config file values
func applyFlags(cfg *config.Config) {
	if targetFlag != "" {
		cfg.Defaults.TargetLanguage = targetFlag
	}
	if sourceFlag != "" {
		cfg.Defaults.SourceLanguage = sourceFlag
	}
	if modelFlag != "" {
		cfg.Defaults.Model = modelFlag
	}
	if transcriberFlag != "" {
		cfg.Transcription.Provider = transcriberFlag
	}
	if translatorFlag != "" {
		cfg.Translation.Provider = translatorFlag
	}
	if widthFlag != 0 {
		cfg.Defaults.WrapWidth = widthFlag
	}
	if concurrencyFlag != 0 {
		cfg.Defaults.Concurrency = concurrencyFlag
	}
	if onErrorFlag != "" {
		cfg.Defaults.OnError = onErrorFlag
	}
	if fullTextFlag != "" {
		cfg.Defaults.FullText = fullTextFlag
	}
	if formatFlag != "" {
		cfg.Defaults.Format = formatFlag
	}
	if logLevelFlag != "" {
		cfg.Logging.Level = logLevelFlag
	}
}

func initLogging(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadDefault()
	if err != nil {
		return err
	}
	applyFlags(cfg)

	lc := logging.DefaultConfig()
	if cfg.Logging.Level != "" {
		lc.Level = cfg.Logging.Level
	}
	if cfg.Logging.Format != "" {
		lc.Format = cfg.Logging.Format
	}
	logging.Init(lc)
	return nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return runInteractiveMenu()
	}

	return runTranslate(args[0])
}

func runInteractiveMenu() error {
	options := []tui.MenuOption{
		{Label: "Translate a file", Value: "translate"},
		{Label: "Start the web UI", Value: "serve"},
		{Label: "Manage cache", Value: "cache"},
	}

	selected, err := tui.RunMenu("What would you like to do?", options)
	if err != nil {
		return err
	}

	switch selected {
	case "translate":
		return runTranslateInteractive()
	case "serve":
		return runServe(nil, nil)
	case "cache":
		return runCacheInteractive()
	case "":
		fmt.Println("Cancelled")
	}

	return nil
}

func runTranslateInteractive() error {
	path, err := tui.RunPrompt(inputPromptTitle(), "talk.mp4", validateInput)
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Println("Cancelled")
		return nil
	}

	outputs, err := tui.RunOutputSelector()
	if err != nil {
		return err
	}
	if outputs == nil {
		fmt.Println("Cancelled")
		return nil
	}
	extraOutputs = outputs

	return runTranslate(path)
}

func inputPromptTitle() string {
	return "Path to a media file (" + strings.Join(domain.SupportedExtensions(), ", ") + ")"
}

// validateInput rejects unsupported or missing files before any work starts
func validateInput(path string) error {
	if path == "" {
		return domain.ErrNoInput
	}
	if _, err := domain.DetectMediaKind(path); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

const (
	stepDeps = iota
	stepTranscribe
	stepTranslate
	stepWrite
)

func runTranslate(input string) error {
	if err := validateInput(input); err != nil {
		return err
	}

	app, err := GetApp()
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	cfg := app.Config

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	steps := []string{"Checking dependencies", "Transcribing", "Translating", "Writing subtitle"}
	progress := tui.NewProgressDisplay(steps, quietFlag)

	progress.StartStep(stepDeps)
	if err := ensureTranscriber(ctx, app, cfg.Defaults.Model, func(d, t int64) {
		progress.UpdateProgress(stepDeps, d, t)
	}); err != nil {
		progress.FailStep(stepDeps, err.Error())
		return err
	}
	progress.CompleteStep(stepDeps)

	outputPath := outputFlag
	if outputPath == "" {
		outputPath = application.DefaultOutputPath(input, cfg.Defaults.TargetLanguage)
	}

	spinnerDone := progress.StartSpinner()
	result, err := app.SubtitleSvc.Process(ctx, input, application.ProcessOptions{
		TargetLanguage: cfg.Defaults.TargetLanguage,
		SourceLanguage: cfg.Defaults.SourceLanguage,
		Model:          cfg.Defaults.Model,
		NoCache:        noCacheFlag,
		OutputPath:     outputPath,
		FullText:       application.FullTextMode(cfg.Defaults.FullText),
		Origin:         "cli",
		Progress:       stageTracker(progress),
	})
	close(spinnerDone)
	if err != nil {
		progress.FailRunning(err.Error())
		return errors.New(application.UserMessage(err))
	}
	progress.CompleteStep(stepWrite)

	outputs := []tui.Output{{Label: "Subtitle", Path: result.SubtitlePath}}
	extra, err := writeExtraOutputs(result, input, cfg.Defaults.TargetLanguage, extraOutputs)
	if err != nil {
		return err
	}
	outputs = append(outputs, extra...)

	if err := printResult(result, cfg.Defaults.Format); err != nil {
		return err
	}

	if len(result.Substituted) > 0 && !quietFlag {
		fmt.Fprintf(os.Stderr, "\n%d cue(s) kept their original text: %v\n", len(result.Substituted), result.Substituted)
	}
	progress.Complete(outputs)

	return nil
}

// stageTracker maps pipeline stages onto the progress steps
func stageTracker(progress *tui.ProgressDisplay) application.ProgressFunc {
	var mu sync.Mutex
	return func(stage string, done, total int) {
		mu.Lock()
		defer mu.Unlock()

		switch stage {
		case application.StageTranscribe:
			progress.StartStep(stepTranscribe)
		case application.StageTranslate:
			if done == 0 {
				progress.CompleteStep(stepTranscribe)
				progress.StartStep(stepTranslate)
			}
			progress.UpdateCount(stepTranslate, "cues", done, total)
		case application.StageWrite:
			progress.CompleteStep(stepTranslate)
			progress.StartStep(stepWrite)
		}
	}
}

// ensureTranscriber makes sure a local transcription can run: whisper.cpp
// on disk and the model downloaded. API transcription needs neither.
func ensureTranscriber(ctx context.Context, app *App, model string, progress func(downloaded, total int64)) error {
	if app.Config.Transcription.Provider == config.TranscriberOpenAI {
		return nil
	}

	if app.Config.Paths.Whisper == "" && whisper.FindBinary() == "" {
		return errors.New(whisperInstructions())
	}

	if !app.Whisper.IsModelDownloaded(model) {
		if err := app.Whisper.DownloadModel(ctx, model, progress); err != nil {
			return fmt.Errorf("failed to download model: %w", err)
		}
	}
	return nil
}

func whisperInstructions() string {
	return fmt.Sprintf(`whisper.cpp not found.

Install it and make sure whisper-cli is on your PATH, or put the binary in
%s, or set paths.whisper in %s.

  macOS:   brew install whisper-cpp
  source:  https://github.com/ggml-org/whisper.cpp

Or transcribe through the OpenAI API instead:
  OPENAI_API_KEY=... subtranslate --transcriber openai <file>`, config.BinDir(), config.ConfigPath())
}

// jsonResult is the --format json document
type jsonResult struct {
	ID              string       `json:"id"`
	Source          string       `json:"source"`
	Language        string       `json:"language"`
	LanguageName    string       `json:"language_name,omitempty"`
	SubtitlePath    string       `json:"subtitle_path,omitempty"`
	Cues            []domain.Cue `json:"cues"`
	OriginalText    string       `json:"original_text"`
	FullTranslation string       `json:"full_translation"`
	Substituted     []int        `json:"substituted,omitempty"`
	Cached          bool         `json:"cached"`
	DurationMs      int64        `json:"duration_ms"`
}

func printResult(result *application.ProcessResult, format string) error {
	switch format {
	case "", "text":
		if !quietFlag {
			fmt.Println()
			fmt.Println(result.Report)
		}
	case "srt":
		fmt.Print(result.Subtitle)
	case "json":
		data, err := json.MarshalIndent(jsonResult{
			ID:              result.ID,
			Source:          result.Source,
			Language:        result.Transcript.Language,
			LanguageName:    domain.LanguageName(result.Transcript.Language),
			SubtitlePath:    result.SubtitlePath,
			Cues:            result.Document.Cues,
			OriginalText:    result.Transcript.ToText(),
			FullTranslation: result.FullTranslation,
			Substituted:     result.Substituted,
			Cached:          result.FromCache,
			DurationMs:      result.Duration.Milliseconds(),
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	return nil
}

// writeExtraOutputs writes the report and transcript files chosen in the
// interactive menu next to the input
func writeExtraOutputs(result *application.ProcessResult, input, target string, opts *tui.OutputOptions) ([]tui.Output, error) {
	if opts == nil {
		return nil, nil
	}

	base := strings.TrimSuffix(input, filepath.Ext(input))
	var outputs []tui.Output

	if opts.Report {
		path := base + "." + target + ".report.txt"
		if err := application.WriteFileAtomic(path, []byte(result.Report+"\n")); err != nil {
			return nil, fmt.Errorf("failed to write report: %w", err)
		}
		outputs = append(outputs, tui.Output{Label: "Report", Path: path})
	}
	if opts.Transcript {
		path := base + ".transcript.txt"
		if err := application.WriteFileAtomic(path, []byte(result.Transcript.ToText()+"\n")); err != nil {
			return nil, fmt.Errorf("failed to write transcript: %w", err)
		}
		outputs = append(outputs, tui.Output{Label: "Transcript", Path: path})
	}

	return outputs, nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
