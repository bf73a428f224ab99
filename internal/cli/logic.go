package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/idelchi/filemgr/internal/dirstat"
	"github.com/idelchi/filemgr/internal/integration"
)

func statsCommand(state *app) *cobra.Command {
	var (
		options    dirstat.Options
		minSizeStr string
	)

	cmd := &cobra.Command{
		Use:   "stats [path]",
		Short: "Report disk usage by extension and the largest files",
		Long: heredoc.Doc(`
			stats walks a directory and reports statistics by file extension.

			Default mode analyzes individual files and reports statistics by extension.
			Use --dirs to aggregate by directory instead of individual files.
			Exclusions are glob patterns relative to the analyzed path, e.g. '**/vendor'.
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Path = "."
			if len(args) == 1 {
				options.Path = args[0]
			}

			if err := requirePath([]string{options.Path}); err != nil {
				return err
			}

			if options.Depth < 0 {
				return fmt.Errorf("depth cannot be negative: %d", options.Depth)
			}

			if minSizeStr != "" {
				size, err := humanize.ParseBytes(minSizeStr)
				if err != nil {
					return fmt.Errorf("invalid min-size: %w", err)
				}

				options.MinSize = int64(size) //nolint:gosec // Size conversion from humanize is safe
			}

			if !cmd.Flags().Changed("hidden") {
				options.ShowHidden = state.cfg.ShowHidden
			}

			// Default excludes only apply to file mode unless given explicitly
			if !cmd.Flags().Changed("exclude") && options.DirsMode {
				options.Excludes = []string{}
			}

			return runStats(cmd, state, options)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(
		&options.Extensions,
		"ext",
		"x",
		[]string{},
		"File suffixes to include (e.g., .go,.md). Use '!' prefix to exclude (e.g., !.log,!_test.go)",
	)
	flags.StringVar(&minSizeStr, "min-size", "0KB", "Minimum file size (e.g., 1KB)")
	flags.IntVarP(&options.TopN, "top", "t", dirstat.DefaultTopN, "Number of top entries to display")
	flags.StringSliceVarP(&options.Excludes, "exclude", "e", dirstat.DefaultExcludes, "Glob patterns to exclude")
	flags.IntVarP(&options.Depth, "depth", "d", 0, "Maximum traversal depth (0=unlimited)")
	flags.BoolVar(&options.DirsMode, "dirs", false, "Analyze directories instead of individual files")
	flags.BoolVar(&options.ShowHidden, "hidden", false, "Include names starting with a dot")
	flags.SortFlags = false

	return cmd
}

func runStats(cmd *cobra.Command, state *app, options dirstat.Options) error {
	enableProgress := !state.json() &&
		!state.debug &&
		isatty.IsTerminal(os.Stderr.Fd())

	var progressHook func(files, bytes int64)

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(os.Stderr, "\033[?25l")
		defer fmt.Fprint(os.Stderr, "\033[?25h")

		progressHook = func(files, bytes int64) {
			msg := fmt.Sprintf("Scanning… %d files, %s",
				files, humanize.IBytes(uint64(bytes))) //nolint:gosec // Bytes is always positive
			fmt.Fprintf(os.Stderr, "\r\033[2K%s\r", msg)
		}
	}

	stats, err := dirstat.Run(cmd.Context(), options, state.log, progressHook)

	// Clear the status line
	if enableProgress {
		fmt.Fprint(os.Stderr, "\r\033[2K\r")
	}

	if err != nil {
		return err
	}

	switch strings.ToLower(state.cfg.Output) {
	case "json":
		return PrintJSON(stats, cmd.OutOrStdout())
	case "table":
		return PrintStats(stats, cmd.OutOrStdout())
	default:
		return unknownOutput(state.cfg.Output)
	}
}

func initCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Print the zsh integration script",
		Long: heredoc.Doc(`
			Print a zsh snippet that binds Ctrl-T to complete the word under the
			cursor through 'filemgr complete'.

			Usage:

			    eval "$(filemgr init)"
		`),
		Args: cobra.NoArgs,
		// Rendering does not need the configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			rendered, err := integration.Render()
			if err != nil {
				return fmt.Errorf("rendering integration script: %w", err)
			}

			return PrintLines([]string{rendered}, cmd.OutOrStdout())
		},
	}
}
