// Package cli implements the filemgr command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/idelchi/filemgr/internal/config"
	"github.com/idelchi/filemgr/internal/explorer"
	"github.com/idelchi/filemgr/internal/logging"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// Execute runs the CLI with the process arguments.
func (c CLI) Execute() error {
	return c.Command().ExecuteContext(context.Background())
}

// app carries the state shared by all subcommands once flags are parsed.
type app struct {
	configPath string
	output     string
	debug      bool

	cfg *config.Config
	log *zap.Logger
}

// setup loads the configuration and builds the logger.
// Flags given on the command line take precedence over the config.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("output") {
		cfg.Output = a.output
	}

	if a.debug {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(logging.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		Color:       isatty.IsTerminal(os.Stderr.Fd()),
	})
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log

	log.Debug("configuration loaded",
		zap.String("file", cfg.Path()),
		zap.Int("depth", cfg.Depth),
		zap.Int64("concurrency", cfg.Concurrency),
		zap.String("output", cfg.Output),
	)

	return nil
}

func (a *app) explorer(opts ...explorer.Option) *explorer.Explorer {
	base := []explorer.Option{
		explorer.WithLogger(a.log),
		explorer.WithDepth(a.cfg.Depth),
		explorer.WithConcurrency(a.cfg.Concurrency),
	}

	return explorer.NewOS(append(base, opts...)...)
}

func (a *app) json() bool {
	return a.cfg.Output == "json"
}

// Command builds the root command.
func (c CLI) Command() *cobra.Command {
	state := &app{}

	root := &cobra.Command{
		Use:   "filemgr",
		Short: "File manager operations from the command line",
		Long: heredoc.Doc(`
			filemgr lists, sizes, deletes, renames, copies and completes paths.

			Settings are read from the config file, then from FILEMGR_* environment
			variables, then from flags.

			Config file: ` + config.DefaultPath() + `
		`),
		Version:       c.version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return state.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if state.log != nil {
				_ = state.log.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&state.configPath, "config", "", "Path to the config file")
	flags.StringVarP(&state.output, "output", "o", "table", "Output format: table or json")
	flags.BoolVar(&state.debug, "debug", false, "Enable debug output")

	root.AddCommand(
		homeCommand(state),
		listCommand(state),
		sizeCommand(state),
		deleteCommand(state),
		renameCommand(state),
		pasteCommand(state),
		completeCommand(state),
		statsCommand(state),
		initCommand(),
	)

	return root
}

func requirePath(args []string) error {
	for _, arg := range args {
		if arg == "" {
			return errors.New("path cannot be empty")
		}
	}

	return nil
}

func homeCommand(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Print the home directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			home, err := state.explorer().Home()
			if err != nil {
				return err
			}

			if state.json() {
				return PrintJSON(map[string]string{"home": home}, cmd.OutOrStdout())
			}

			return PrintLines([]string{home}, cmd.OutOrStdout())
		},
	}
}

func listCommand(state *app) *cobra.Command {
	var (
		query string
		opts  explorer.ListOptions
	)

	cmd := &cobra.Command{
		Use:     "ls [dir]",
		Aliases: []string{"list"},
		Short:   "List a directory",
		Long: heredoc.Doc(`
			List the entries of a directory, defaulting to the current one.

			The search query matches names case-insensitively as a substring.
			Queries containing glob characters (* ? [ {) are matched as patterns,
			e.g. '*.md' or '{src,docs}'.
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			if err := requirePath([]string{dir}); err != nil {
				return err
			}

			if !cmd.Flags().Changed("hidden") {
				opts.ShowHidden = state.cfg.ShowHidden
			}

			listing, err := state.explorer().List(dir, query, opts)
			if err != nil {
				return err
			}

			if state.json() {
				return PrintJSON(listing, cmd.OutOrStdout())
			}

			return PrintListing(listing, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&query, "search", "s", "", "Only list names matching the query")
	cmd.Flags().BoolVar(&opts.ShowHidden, "hidden", false, "Include names starting with a dot")
	cmd.Flags().BoolVar(&opts.DetectMIME, "mime", false, "Detect the content type of files")

	return cmd
}

func sizeCommand(state *app) *cobra.Command {
	var (
		depth       int
		concurrency int64
	)

	cmd := &cobra.Command{
		Use:   "size <path>",
		Short: "Compute the total size of a file or directory",
		Long: heredoc.Doc(`
			Sum the sizes of all regular files below a path.

			Directories deeper than --depth levels are not read and count as zero.
			Files directly inside the path are at level 1. Any unreadable file or
			directory within the bound fails the whole computation.
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePath(args); err != nil {
				return err
			}

			if cmd.Flags().Changed("depth") {
				state.cfg.Depth = depth
			}

			if cmd.Flags().Changed("concurrency") {
				state.cfg.Concurrency = concurrency
			}

			if err := state.cfg.Validate(); err != nil {
				return err
			}

			size, err := state.explorer().TotalSize(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			result := SizeResult{Path: args[0], Size: size, Depth: state.cfg.Depth}

			if state.json() {
				return PrintJSON(result, cmd.OutOrStdout())
			}

			return PrintSize(result, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "Maximum number of directory levels to descend (default from config: 3)")
	cmd.Flags().Int64Var(&concurrency, "concurrency", 0, "Maximum filesystem reads in flight (0 = unbounded)")

	return cmd
}

func deleteCommand(state *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <path>",
		Aliases: []string{"delete"},
		Short:   "Delete a file",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePath(args); err != nil {
				return err
			}

			if err := state.explorer().Delete(args[0]); err != nil {
				return err
			}

			if state.json() {
				return PrintJSON(map[string]string{"deleted": args[0]}, cmd.OutOrStdout())
			}

			return nil
		},
	}
}

func renameCommand(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <path> <new-name>",
		Short: "Rename a file or directory in place",
		Args:  cobra.ExactArgs(2), //nolint:mnd // path and new name
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePath(args[:1]); err != nil {
				return err
			}

			newPath, err := state.explorer().Rename(args[0], args[1])
			if err != nil {
				return err
			}

			if state.json() {
				return PrintJSON(map[string]string{"from": args[0], "to": newPath}, cmd.OutOrStdout())
			}

			return PrintLines([]string{newPath}, cmd.OutOrStdout())
		},
	}
}

func pasteCommand(state *app) *cobra.Command {
	return &cobra.Command{
		Use:     "paste <source> <target>",
		Aliases: []string{"cp"},
		Short:   "Copy a file to a path or into a directory",
		Args:    cobra.ExactArgs(2), //nolint:mnd // source and target
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePath(args); err != nil {
				return err
			}

			written, err := state.explorer().Paste(args[0], args[1])
			if err != nil {
				return err
			}

			if state.json() {
				return PrintJSON(map[string]string{"from": args[0], "to": written}, cmd.OutOrStdout())
			}

			return PrintLines([]string{written}, cmd.OutOrStdout())
		},
	}
}

func completeCommand(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <partial-path>",
		Short: "List paths starting with a partial path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := state.explorer().Complete(args[0])

			if state.json() {
				return PrintJSON(results, cmd.OutOrStdout())
			}

			return PrintLines(results, cmd.OutOrStdout())
		},
	}
}

// ErrUnknownOutput is returned for output formats the command cannot render.
var ErrUnknownOutput = errors.New("unknown output format")

func unknownOutput(output string) error {
	return fmt.Errorf("%w: %s", ErrUnknownOutput, output)
}
