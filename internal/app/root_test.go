package app

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/andyballingall/monofmt/internal/fs"
)

func TestRootCmd(t *testing.T) {
	t.Parallel()

	setup := func() (*MockManager, *slog.LevelVar, *cobra.Command, *bytes.Buffer) {
		mgr := &MockManager{}
		lazy := &LazyManager{inner: mgr}
		logLevel := &slog.LevelVar{}
		var stdout, stderr bytes.Buffer
		rootCmd := NewRootCmd(lazy, logLevel, &stderr, fs.MapEnvProvider{})
		rootCmd.SetOut(&stdout)
		rootCmd.SetErr(&stderr)
		return mgr, logLevel, rootCmd, &stdout
	}

	t.Run("execute help", func(t *testing.T) {
		t.Parallel()
		_, _, rootCmd, stdout := setup()
		rootCmd.SetArgs([]string{"--help"})
		require.NoError(t, rootCmd.Execute())
		assert.Contains(t, stdout.String(), "monofmt init")
	})

	t.Run("test version flag", func(t *testing.T) {
		t.Parallel()
		_, _, rootCmd, stdout := setup()
		rootCmd.SetArgs([]string{"--version"})
		require.NoError(t, rootCmd.Execute())
		assert.Contains(t, stdout.String(), Version)
	})

	t.Run("root command formats", func(t *testing.T) {
		t.Parallel()
		mgr, _, rootCmd, _ := setup()
		mgr.On("Format", mock.Anything, OutputOptions{Format: "text", UseColour: true}).Return(nil)
		rootCmd.SetArgs([]string{})
		require.NoError(t, rootCmd.Execute())
		mgr.AssertExpectations(t)
	})

	t.Run("output and colour flags", func(t *testing.T) {
		t.Parallel()
		mgr, _, rootCmd, _ := setup()
		mgr.On("Format", mock.Anything, OutputOptions{Format: "json", UseColour: false}).Return(nil)
		rootCmd.SetArgs([]string{"-o", "json", "--nocolor"})
		require.NoError(t, rootCmd.Execute())
		mgr.AssertExpectations(t)
	})

	t.Run("positional arguments are rejected", func(t *testing.T) {
		t.Parallel()
		mgr, _, rootCmd, _ := setup()
		rootCmd.SetArgs([]string{"go"})
		require.Error(t, rootCmd.Execute())
		mgr.AssertNotCalled(t, "Format", mock.Anything, mock.Anything)
	})

	t.Run("invalid output format", func(t *testing.T) {
		t.Parallel()
		_, _, rootCmd, _ := setup()
		rootCmd.SetArgs([]string{"--output", "xml"})
		require.ErrorContains(t, rootCmd.Execute(), "must be one of: text, json")
	})

	t.Run("test debug flag", func(t *testing.T) {
		t.Parallel()
		mgr, logLevel, rootCmd, _ := setup()
		mgr.On("Format", mock.Anything, mock.Anything).Return(nil)
		rootCmd.SetArgs([]string{"--debug"})
		require.NoError(t, rootCmd.Execute())
		assert.Equal(t, slog.LevelDebug, logLevel.Level())
	})

	t.Run("subcommands", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			args   []string
			method string
		}{
			{[]string{"watch"}, "Watch"},
			{[]string{"list", "-o", "json"}, "List"},
			{[]string{"check"}, "Check"},
		}
		for _, tt := range tests {
			t.Run(tt.method, func(t *testing.T) {
				t.Parallel()
				mgr, _, rootCmd, _ := setup()
				switch tt.method {
				case "Watch":
					mgr.On("Watch", mock.Anything, mock.Anything, mock.Anything).Return(nil)
				default:
					mgr.On(tt.method, mock.Anything, mock.Anything).Return(nil)
				}
				rootCmd.SetArgs(tt.args)
				require.NoError(t, rootCmd.Execute())
				mgr.AssertExpectations(t)
			})
		}
	})

	t.Run("init", func(t *testing.T) {
		t.Parallel()
		mgr, _, rootCmd, stdout := setup()
		mgr.On("Init", mock.Anything, true).Return("/repo/.monofmt.yml", nil)
		rootCmd.SetArgs([]string{"init", "--force"})
		require.NoError(t, rootCmd.Execute())
		assert.Contains(t, stdout.String(), "/repo/.monofmt.yml")
		mgr.AssertExpectations(t)
	})

	t.Run("completion subcommand skips initialization", func(t *testing.T) {
		t.Parallel()
		lazy := &LazyManager{} // Empty lazy manager, no inner manager
		var stdout, stderr bytes.Buffer
		rootCmd := NewRootCmd(lazy, &slog.LevelVar{}, &stderr, fs.MapEnvProvider{})
		rootCmd.SetOut(&stdout)
		rootCmd.SetArgs([]string{"completion", "zsh"})
		require.NoError(t, rootCmd.Execute())
		assert.False(t, lazy.HasInner())
	})
}

func TestIsCompletionCommand(t *testing.T) {
	t.Parallel()

	root := &cobra.Command{Use: "monofmt"}
	completion := &cobra.Command{Use: "completion"}
	bash := &cobra.Command{Use: "bash"}
	list := &cobra.Command{Use: "list"}
	root.AddCommand(completion, list)
	completion.AddCommand(bash)

	assert.True(t, isCompletionCommand(bash))
	assert.True(t, isCompletionCommand(completion))
	assert.False(t, isCompletionCommand(list))
	assert.False(t, isCompletionCommand(root))
}
