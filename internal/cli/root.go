// Package cli implements the affinity command line tool for analysing conversations offline
// and checking character profiles.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pscheid92/affinity/internal/character"
	"github.com/pscheid92/affinity/internal/platform/logging"
	"github.com/spf13/cobra"
)

var (
	flagProfile string
	flagVerbose bool
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "affinity",
		Short:         "Tsundere-aware sentiment and affection analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger(cmd.ErrOrStderr(), flagVerbose)
		},
	}

	cmd.PersistentFlags().StringVar(&flagProfile, "profile", "", "character profile YAML (default: built-in profile)")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log engine decisions to stderr")

	cmd.AddCommand(newAnalyzeCmd())
	cmd.AddCommand(newProfileCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func setupLogger(w io.Writer, verbose bool) {
	if !verbose {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return
	}
	logging.InitLogger(w, "debug", "text")
}

// loadProfile resolves the --profile flag. Unlike the server, a broken profile is an error here.
func loadProfile() (*character.CompiledProfile, error) {
	if flagProfile == "" {
		return character.DefaultProfile(), nil
	}
	return character.Load(flagProfile)
}
