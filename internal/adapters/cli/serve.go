package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/devbush/subtranslate/internal/adapters/web"
	"github.com/devbush/subtranslate/internal/application"
	"github.com/devbush/subtranslate/internal/config"
)

var (
	addrFlag      string
	outputDirFlag string
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web upload UI",
		Long: `Start a web UI where an .mp3 or .mp4 file can be uploaded and its
translated subtitle downloaded. Also serves a JSON API under /api and
Prometheus metrics under /metrics.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&addrFlag, "addr", "", "Listen address (default from config: :7860)")
	cmd.Flags().StringVar(&outputDirFlag, "output-dir", "", "Directory for generated subtitles")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	cfg := app.Config

	addr := addrFlag
	if addr == "" {
		addr = cfg.Server.Addr
	}
	outputDir := outputDirFlag
	if outputDir == "" {
		outputDir = cfg.Server.OutputDir
	}
	if outputDir == "" {
		outputDir = config.OutputDir()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ensureTranscriber(ctx, app, cfg.Defaults.Model, nil); err != nil {
		return err
	}

	server := web.NewServer(app.SubtitleSvc, web.Options{
		Addr:           addr,
		OutputDir:      outputDir,
		TargetLanguage: cfg.Defaults.TargetLanguage,
		SourceLanguage: cfg.Defaults.SourceLanguage,
		Model:          cfg.Defaults.Model,
		FullText:       application.FullTextMode(cfg.Defaults.FullText),
		Metrics:        app.Metrics,
	})

	fmt.Printf("Web UI listening on %s (Ctrl+C to stop)\n", addr)
	return server.Run(ctx)
}
