package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/meysamhadeli/codemd/code_collector"
	"github.com/meysamhadeli/codemd/constants/lipgloss"
	"github.com/meysamhadeli/codemd/utils"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// resetCacheCmd represents the reset-cache command
var resetCacheCmd = &cobra.Command{
	Use:   "reset-cache",
	Short: "Reset the snapshot cache for codemd",
	Long: `The 'reset-cache' command removes all project snapshots from the cache directory.
Snapshots are only written when caching is enabled and are used to report which files
changed since the previous run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		stats, _ := cmd.Flags().GetBool("stats")

		return handleResetCacheCommand(cmd, force, stats)
	},
}

func init() {
	resetCacheCmd.Flags().BoolP("force", "f", false, "Force cache reset without confirmation")
	resetCacheCmd.Flags().BoolP("stats", "s", false, "Show cache statistics instead of resetting")

	rootCmd.AddCommand(resetCacheCmd)
}

func handleResetCacheCommand(cmd *cobra.Command, force bool, showStats bool) error {
	rootDependencies, err := handleRootCommand(cmd)
	if err != nil {
		return err
	}

	// The cache directory is opened even when caching is disabled so old snapshots can be removed
	snapshots := rootDependencies.Snapshots
	if snapshots == nil {
		snapshots, err = code_collector.NewSnapshotStore(rootDependencies.Config.CacheDir)
		if err != nil {
			return fmt.Errorf("error opening cache: %w", err)
		}
	}

	if showStats {
		cacheStats, err := snapshots.Stats()
		if err != nil {
			return fmt.Errorf("could not show statistics: %w", err)
		}

		fmt.Println(lipgloss.Info.Render("Cache Statistics:"))
		if dir, ok := cacheStats["cache_dir"].(string); ok {
			fmt.Printf("  Cache Directory: %s\n", dir)
		}
		if files, ok := cacheStats["cache_files"].(int); ok {
			fmt.Printf("  Cached Snapshots: %d\n", files)
		}
		if size, ok := cacheStats["total_size"].(int64); ok {
			fmt.Printf("  Total Size: %.2f KB\n", float64(size)/1024)
		}
		return nil
	}

	if !force {
		confirmed, err := utils.ConfirmPrompt("Are you sure you want to reset the snapshot cache?", bufio.NewReader(os.Stdin))
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println(lipgloss.Yellow.Render("Cache reset cancelled."))
			return nil
		}
	}

	spinner := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgCyan)).
		WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").
		WithDelay(100).WithRemoveWhenDone(true)

	spinnerInstance, _ := spinner.Start("Resetting snapshot cache...")

	err = snapshots.Clear()

	if spinnerInstance != nil {
		_ = spinnerInstance.Stop()
	}
	fmt.Print("\r")

	if err != nil {
		return fmt.Errorf("error resetting cache: %w", err)
	}

	fmt.Println(lipgloss.Green.Render("✓ Snapshot cache has been successfully reset!"))
	return nil
}
