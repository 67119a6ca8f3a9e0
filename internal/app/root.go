package app

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/andyballingall/monofmt/internal/config"
	"github.com/andyballingall/monofmt/internal/fs"
	"github.com/andyballingall/monofmt/internal/guard"
	"github.com/andyballingall/monofmt/internal/repo"
	"github.com/andyballingall/monofmt/internal/runner"
	"github.com/andyballingall/monofmt/internal/toolcheck"
)

// Version is the current version of monofmt, set at build time.
var Version = "dev"

var LongDescription = `
monofmt formats a monorepo by running a fixed, ordered table of formatting
tools, each in its own directory under the repository root. It stops at the
first tool that fails and exits with that tool's exit code.

The built-in table can be replaced by a .monofmt.yml, .monofmt.yaml or
.monofmt.toml file at the repository root. Run 'monofmt init' to write the
built-in table there as a starting point.
`

// globalFlags holds the values of the persistent flags.
type globalFlags struct {
	debug      bool
	noColour   bool
	configPath pathValue
	chdir      pathValue
	output     formatValue
}

func (g *globalFlags) outputOptions() OutputOptions {
	return OutputOptions{Format: string(g.output), UseColour: !g.noColour}
}

// NewRootCmd creates the root command and wires up dependencies.
func NewRootCmd(lazy *LazyManager, ll *slog.LevelVar, stderr io.Writer, envProvider fs.EnvProvider) *cobra.Command {
	flags := &globalFlags{output: formatValue("text")}

	rootCmd := &cobra.Command{
		Use:           "monofmt",
		Short:         "Run every formatter in the monorepo, in order, stopping at the first failure",
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		Long:          LongDescription,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if flags.debug {
				ll.Set(slog.LevelDebug)
			}

			// Skip initialization for help and completion commands
			if cmd.Name() == "help" || isCompletionCommand(cmd) {
				return nil
			}
			// Skip if already initialised (e.g., in tests)
			if lazy.HasInner() {
				return nil
			}

			logger, _, err := setupLogger(stderr, ll, envProvider)
			if err != nil {
				logger.Warn("logging to file disabled", "error", err)
			}

			pathResolver := fs.NewPathResolver()
			g := guard.NewEUIDGuard(nil, envProvider, logger)
			resolver := repo.NewCLIResolver(string(flags.chdir), pathResolver)
			executor := runner.NewExecExecutor(childStdout(cmd.OutOrStdout(), stderr, flags), stderr)
			loader := config.NewLoader(string(flags.configPath), envProvider, logger)
			loader.SetBaseDir(string(flags.chdir))

			realMgr := NewCLIManager(
				logger,
				g,
				resolver,
				runner.New(g, resolver, executor, logger),
				loader,
				toolcheck.NewChecker(envProvider),
			)
			realMgr.reporterWriter = cmd.OutOrStdout()
			lazy.SetInner(realMgr)

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return lazy.Format(cmd.Context(), flags.outputOptions())
		},
	}

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flags.debug, "debug", "d", false, "Enable debug logging")
	pf.VarP(&flags.configPath, "config", "f",
		"Step table file (overrides "+config.ConfigEnvVar+" and the repository root search)")
	pf.VarP(&flags.chdir, "chdir", "C",
		"Run as if started in this directory, like git -C; relative --config paths start here too")
	pf.VarP(&flags.output, "output", "o",
		"Output format (text, json); with json, tool output goes to stderr so stdout stays parseable")

	pf.BoolVarP(&flags.noColour, "nocolour", "c", false, "Disable colour in output")
	// Support alternate spellings
	pf.BoolVar(&flags.noColour, "nocolor", false, "")
	pf.BoolVar(&flags.noColour, "noColor", false, "")
	pf.BoolVar(&flags.noColour, "noColour", false, "")
	_ = pf.MarkHidden("nocolor")
	_ = pf.MarkHidden("noColor")
	_ = pf.MarkHidden("noColour")

	// Subcommands
	rootCmd.AddCommand(NewWatchCmd(lazy, flags))
	rootCmd.AddCommand(NewListCmd(lazy, flags))
	rootCmd.AddCommand(NewCheckCmd(lazy, flags))
	rootCmd.AddCommand(NewInitCmd(lazy))

	return rootCmd
}

// childStdout is where the tools' own stdout goes. With JSON output stdout
// carries only the report.
func childStdout(stdout, stderr io.Writer, flags *globalFlags) io.Writer {
	if flags.output == "json" {
		return stderr
	}
	return stdout
}

// isCompletionCommand returns true if the command or any of its parents is the "completion" command.
func isCompletionCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "completion" {
			return true
		}
	}
	return false
}
