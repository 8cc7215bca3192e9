package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devbush/subtranslate/internal/adapters/media"
	"github.com/devbush/subtranslate/internal/adapters/whisper"
	"github.com/devbush/subtranslate/internal/config"
)

// NewDepsCmd creates the deps subcommand
func NewDepsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Inspect external dependencies (whisper.cpp, ffmpeg, API keys)",
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show dependency status",
		RunE:  runDepsStatus,
	}

	cmd.AddCommand(statusCmd)
	return cmd
}

// depStatus is one line of `deps status`
type depStatus struct {
	Name   string
	OK     bool
	Detail string
}

func runDepsStatus(cmd *cobra.Command, args []string) error {
	w, cfg, err := localWhisper()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Dependency Status:")
	fmt.Println()
	for _, d := range collectDeps(cfg, w) {
		mark := "✗"
		if d.OK {
			mark = "✓"
		}
		fmt.Printf("  %s %-12s %s\n", mark, d.Name+":", d.Detail)
	}
	fmt.Println()

	return nil
}

func collectDeps(cfg *config.Config, w *whisper.Transcriber) []depStatus {
	var deps []depStatus

	ffmpegPath := cfg.Paths.FFmpeg
	if ffmpegPath == "" {
		ffmpegPath = media.FindFFmpeg()
	}
	if ffmpegPath != "" {
		deps = append(deps, depStatus{"ffmpeg", true, ffmpegPath})
	} else {
		deps = append(deps, depStatus{"ffmpeg", true, "not found, using embedded ffmpeg (slower)"})
	}

	if cfg.Transcription.Provider == config.TranscriberOpenAI {
		deps = append(deps, depStatus{"transcriber", cfg.Transcription.APIKey != "", keyDetail("OpenAI Whisper API", "OPENAI_API_KEY", cfg.Transcription.APIKey)})
	} else {
		whisperPath := cfg.Paths.Whisper
		if whisperPath == "" {
			whisperPath = whisper.FindBinary()
		}
		if whisperPath != "" {
			deps = append(deps, depStatus{"whisper.cpp", true, whisperPath})
		} else {
			deps = append(deps, depStatus{"whisper.cpp", false, "not found (brew install whisper-cpp)"})
		}

		models := w.AvailableModels()
		downloaded := 0
		for _, m := range models {
			if m.Downloaded {
				downloaded++
			}
		}
		model := cfg.Defaults.Model
		deps = append(deps, depStatus{"models", w.IsModelDownloaded(model),
			fmt.Sprintf("%d/%d downloaded, default %q %s", downloaded, len(models), model, downloadedWord(w.IsModelDownloaded(model)))})
	}

	switch cfg.Translation.Provider {
	case config.TranslatorOpenAI:
		deps = append(deps, depStatus{"translator", cfg.Translation.APIKey != "", keyDetail("OpenAI", "OPENAI_API_KEY", cfg.Translation.APIKey)})
	case config.TranslatorAnthropic:
		deps = append(deps, depStatus{"translator", cfg.Translation.APIKey != "", keyDetail("Anthropic", "ANTHROPIC_API_KEY", cfg.Translation.APIKey)})
	default:
		deps = append(deps, depStatus{"translator", true, "Google web translator, no key needed"})
	}

	return deps
}

func keyDetail(service, env, key string) string {
	if key == "" {
		return fmt.Sprintf("%s, %s not set", service, env)
	}
	return fmt.Sprintf("%s, %s set", service, env)
}

func downloadedWord(ok bool) string {
	if ok {
		return "is downloaded"
	}
	return "is missing (subtranslate model download)"
}
