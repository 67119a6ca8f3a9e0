package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewWatchCmd(mgr Manager, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Format, then format again whenever files in the repository change",
		Long: `Runs the step table once, then watches the repository root and runs it again
after each burst of changes. Hidden files and directories are ignored, as are the
changes the formatters themselves make. A failing step is reported and watching
continues. Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return mgr.Watch(cmd.Context(), flags.outputOptions(), nil)
		},
	}
}

func NewListCmd(mgr Manager, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the step table, including disabled steps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return mgr.List(cmd.Context(), flags.outputOptions())
		},
	}
}

func NewCheckCmd(mgr Manager, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that the tool for every enabled step is installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return mgr.Check(cmd.Context(), flags.outputOptions())
		},
	}
}

func NewInitCmd(mgr Manager) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the built-in step table to .monofmt.yml at the repository root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := mgr.Init(cmd.Context(), force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "📝 Wrote the default step table to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing step table")

	return cmd
}
