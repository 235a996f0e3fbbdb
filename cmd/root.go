package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/meysamhadeli/codemd/code_collector"
	"github.com/meysamhadeli/codemd/code_collector/contracts"
	"github.com/meysamhadeli/codemd/code_collector/models"
	"github.com/meysamhadeli/codemd/config"
	"github.com/meysamhadeli/codemd/constants/lipgloss"
	"github.com/meysamhadeli/codemd/utils"
	"github.com/spf13/cobra"
)

const rootPathPrompt = "Enter the parent directory path: "

// RootDependencies holds what every subcommand needs
type RootDependencies struct {
	Config    *config.Config
	Cwd       string
	Snapshots *code_collector.SnapshotStore
}

var rootCmd = &cobra.Command{
	Use:   "codemd [root]",
	Short: "Combine every TypeScript file under a directory into one markdown document.",
	Long: `codemd walks the directory tree under [root], picks up every '.ts' and '.tsx' file
outside of 'node_modules' and writes them into a single markdown file, one header and one
syntax-tagged code fence per file. When [root] is omitted you are prompted for it.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if version, _ := cmd.Flags().GetBool("version"); version {
			fmt.Println(lipgloss.BlueSky.Render(fmt.Sprintf("version: %s", config.DefaultConfig.Version)))
			return nil
		}

		rootDependencies, err := handleRootCommand(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		var rootPath string
		if len(args) > 0 {
			rootPath = utils.CleanPathInput(args[0])
		} else {
			rootPath, err = utils.InputPromptWithContext(ctx, bufio.NewReader(os.Stdin), rootPathPrompt)
			if errors.Is(err, context.Canceled) {
				fmt.Println(lipgloss.Yellow.Render("🔄 Exiting..."))
				return nil
			}
			if err != nil {
				return err
			}
		}

		var snapshots contracts.ISnapshotStore
		if rootDependencies.Snapshots != nil {
			snapshots = rootDependencies.Snapshots
		}

		collector := code_collector.NewCodeCollector(utils.NewConsoleReporter(os.Stdout), snapshots)
		result, err := runCollect(ctx, collector, rootPath, rootDependencies.Config.OutputFile)
		if err != nil {
			return err
		}

		if rootDependencies.Snapshots != nil && result.Changes != nil {
			utils.PrintChanges(os.Stdout, result.Changes)
		}

		return nil
	},
}

// runCollect runs one collection and turns its errors into the user-facing diagnostics
func runCollect(ctx context.Context, collector contracts.ICodeCollector, rootPath string, outputFile string) (*models.CollectResult, error) {
	result, err := collector.Collect(ctx, rootPath, outputFile)
	switch {
	case err == nil:
		return result, nil
	case errors.Is(err, code_collector.ErrRootNotFound):
		return nil, fmt.Errorf("Error: The path '%s' does not exist.", rootPath)
	case errors.Is(err, code_collector.ErrRootNotDirectory):
		return nil, fmt.Errorf("Error: The path '%s' is not a directory.", rootPath)
	case errors.Is(err, code_collector.ErrCreateOutput):
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return nil, fmt.Errorf("Error creating output file: %w", pathErr)
		}
		return nil, err
	default:
		return result, err
	}
}

// handleRootCommand loads configuration and builds the shared dependencies
func handleRootCommand(cmd *cobra.Command) (*RootDependencies, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("error getting current working directory: %w", err)
	}

	cfg, err := config.LoadConfigs(cmd.Root(), cwd)
	if err != nil {
		return nil, err
	}

	rootDependencies := &RootDependencies{
		Config: cfg,
		Cwd:    cwd,
	}

	if cfg.EnableCache {
		snapshots, err := code_collector.NewSnapshotStore(cfg.CacheDir)
		if err != nil {
			// Change tracking is optional, run without it
			fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Warning: Failed to initialize snapshot cache: %v", err)))
		} else {
			rootDependencies.Snapshots = snapshots
		}
	}

	return rootDependencies, nil
}

// Execute runs the root command and exits with status 1 on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(lipgloss.Red.Render(err.Error()))
		os.Exit(1)
	}
}

func init() {
	config.InitFlags(rootCmd)
}
