package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/devbush/subtranslate/internal/adapters/cli/tui"
	"github.com/devbush/subtranslate/internal/application"
	"github.com/devbush/subtranslate/internal/config"
	"github.com/devbush/subtranslate/internal/domain"
)

const maxBatchWorkers = 16

var (
	batchFileFlag      string
	batchWorkersFlag   int
	batchOutputDirFlag string
)

// processor is the part of SubtitleService a batch needs
type processor interface {
	Process(ctx context.Context, inputPath string, opts application.ProcessOptions) (*application.ProcessResult, error)
}

// NewBatchCmd creates the batch command
func NewBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [files...]",
		Short: "Translate multiple files",
		Long: `Translate multiple .mp3 and .mp4 files concurrently.

Provide paths as arguments and/or via a list file with --file.
Each subtitle is written next to its input, or to --output-dir.

Example:
  subtranslate batch intro.mp3 talk.mp4
  subtranslate batch --file files.txt -t fr
  subtranslate batch *.mp4 --workers 2 --output-dir subs`,
		RunE: runBatch,
	}

	cmd.Flags().StringVarP(&batchFileFlag, "file", "f", "", "File with media paths (one per line)")
	cmd.Flags().IntVarP(&batchWorkersFlag, "workers", "w", 2, fmt.Sprintf("Files processed at once (max %d)", maxBatchWorkers))
	cmd.Flags().StringVarP(&batchOutputDirFlag, "output-dir", "d", "", "Directory for subtitles (default: next to each input)")

	return cmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	workers := min(max(batchWorkersFlag, 1), maxBatchWorkers)

	paths, err := CollectInputs(args, batchFileFlag)
	if err != nil {
		return fmt.Errorf("failed to collect inputs: %w", err)
	}

	if len(paths) == 0 {
		return fmt.Errorf("no input files provided")
	}

	app, err := GetApp()
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	if batchOutputDirFlag != "" {
		if err := os.MkdirAll(batchOutputDirFlag, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ensureTranscriber(ctx, app, app.Config.Defaults.Model, nil); err != nil {
		return err
	}

	progress := tui.NewBatchProgress(len(paths), quietFlag)
	results := processBatch(ctx, app.SubtitleSvc, app.Config, paths, batchOutputDirFlag, workers, progress)
	progress.Complete()

	failCount := countFailed(results)
	if failCount > 0 {
		return fmt.Errorf("%d of %d files failed", failCount, len(paths))
	}

	return nil
}

// processBatch runs every path through p with at most workers in flight.
// Results are in input order. An input whose subtitle path was already
// claimed by an earlier input fails without being processed.
func processBatch(ctx context.Context, p processor, cfg *config.Config, paths []string, outputDir string, workers int, progress *tui.BatchProgress) []tui.BatchResult {
	results := make([]tui.BatchResult, len(paths))
	outputs, owners := planOutputs(paths, cfg.Defaults.TargetLanguage, outputDir)

	// Worker pool using semaphore pattern
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, path := range paths {
		if owner, ok := owners[i]; ok {
			results[i] = tui.BatchResult{
				Name:   filepath.Base(path),
				ErrMsg: fmt.Sprintf("output %s collides with %s", outputs[i], owner),
			}
			progress.AddResult(results[i])
			continue
		}

		wg.Add(1)
		sem <- struct{}{}

		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()

			result := processOneFile(ctx, p, cfg, path, outputs[i])
			results[i] = result
			progress.AddResult(result)
		}(i, path)
	}

	wg.Wait()
	return results
}

// planOutputs returns the subtitle path of every input, plus the earlier
// input owning that path for each input that would overwrite it.
// Unsupported inputs get no output and claim nothing.
func planOutputs(paths []string, target, outputDir string) ([]string, map[int]string) {
	outputs := make([]string, len(paths))
	owners := make(map[int]string)
	claimed := make(map[string]string, len(paths))

	for i, path := range paths {
		if _, err := domain.DetectMediaKind(path); err != nil {
			continue
		}
		out := application.DefaultOutputPath(path, target)
		if outputDir != "" {
			out = filepath.Join(outputDir, filepath.Base(out))
		}
		outputs[i] = out

		key := filepath.Clean(out)
		if owner, ok := claimed[key]; ok {
			owners[i] = owner
			continue
		}
		claimed[key] = path
	}
	return outputs, owners
}

func processOneFile(ctx context.Context, p processor, cfg *config.Config, path, outputPath string) tui.BatchResult {
	start := time.Now()
	name := filepath.Base(path)

	fail := func(err error) tui.BatchResult {
		return tui.BatchResult{
			Name:     name,
			ErrMsg:   application.UserMessage(err),
			Duration: time.Since(start),
		}
	}

	if _, err := domain.DetectMediaKind(path); err != nil {
		return fail(err)
	}

	result, err := p.Process(ctx, path, application.ProcessOptions{
		TargetLanguage: cfg.Defaults.TargetLanguage,
		SourceLanguage: cfg.Defaults.SourceLanguage,
		Model:          cfg.Defaults.Model,
		NoCache:        noCacheFlag,
		OutputPath:     outputPath,
		FullText:       application.FullTextMode(cfg.Defaults.FullText),
		Origin:         "batch",
	})
	if err != nil {
		return fail(err)
	}

	return tui.BatchResult{
		Name:     name,
		Success:  true,
		Duration: time.Since(start),
		Cached:   result.FromCache,
		Output:   result.SubtitlePath,
	}
}

func countFailed(results []tui.BatchResult) int {
	count := 0
	for _, r := range results {
		if !r.Success {
			count++
		}
	}
	return count
}
