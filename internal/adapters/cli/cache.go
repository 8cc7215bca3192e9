package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devbush/subtranslate/internal/adapters/cli/tui"
)

var clearAllFlag bool

// NewCacheCmd creates the cache subcommand
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached transcripts",
		RunE:  runCacheStatus,
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear cache entries",
		RunE:  runCacheClear,
	}
	clearCmd.Flags().BoolVar(&clearAllFlag, "all", false, "Clear all cache entries")

	cmd.AddCommand(clearCmd)

	return cmd
}

func runCacheStatus(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	ctx := context.Background()
	stats, err := app.CacheSvc.Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Cache Statistics:")
	fmt.Printf("  Transcripts: %d\n", stats.Transcripts)
	fmt.Printf("  Size:        %s\n", tui.FormatSize(stats.TotalSize))
	fmt.Printf("  TTL:         %s\n", stats.TTL)
	fmt.Printf("  Dir:         %s\n", stats.Dir)
	fmt.Println()

	return nil
}

func runCacheInteractive() error {
	if err := runCacheStatus(nil, nil); err != nil {
		return err
	}

	selected, err := tui.RunMenu("Cache", []tui.MenuOption{
		{Label: "Remove expired transcripts", Value: "expired"},
		{Label: "Remove all transcripts", Value: "all"},
		{Label: "Back", Value: ""},
	})
	if err != nil {
		return err
	}

	switch selected {
	case "expired":
		clearAllFlag = false
	case "all":
		clearAllFlag = true
	default:
		return nil
	}
	return runCacheClear(nil, nil)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	ctx := context.Background()

	if clearAllFlag {
		if err := app.CacheSvc.Clear(ctx); err != nil {
			return err
		}
		fmt.Println("All cache entries cleared")
	} else {
		cleaned, err := app.CacheSvc.CleanExpired(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d expired entries\n", cleaned)
	}

	return nil
}
