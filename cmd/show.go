package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/meysamhadeli/codemd/utils"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Print a generated codebase document with syntax highlighting.",
	Long: `The 'show' command reads a markdown file produced by codemd and prints every file block
to the terminal, highlighting code with the configured theme. Output is left plain when
stdout is not a terminal. Defaults to the configured output file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDependencies, err := handleRootCommand(cmd)
		if err != nil {
			return err
		}

		path := rootDependencies.Config.OutputFile
		if len(args) > 0 {
			path = args[0]
		}

		source, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("error reading %s: %w", path, err)
		}

		records, err := utils.ParseCodebase(source)
		if err != nil {
			return fmt.Errorf("error parsing %s: %w", path, err)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		color := isatty.IsTerminal(os.Stdout.Fd())
		return utils.RenderCodebase(ctx, os.Stdout, records, rootDependencies.Config.Theme, color)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
