// Command nub compresses arbitrary textual content into a fixed
// character budget for AI agents. It is a single cobra command rather
// than a command tree, since nub has one job.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nub-run/nub/internal/config"
)

var (
	flagShape          string
	flagWrap           int
	flagRange          string
	flagNoLineNumbers  bool
	flagGrep           string
	flagSeparator      string
	flagSeparatorRegex string
	flagDeduplicate    bool
	flagLimit          int
	flagType           string
	flagWatch          bool
	flagPreview        bool
	flagConfigPath     string
	flagLogLevel       string
	flagLogFormat      string

	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

var rootCmd = &cobra.Command{
	Use:     "nub [path]",
	Short:   "Smart context compression for AI agents",
	Long:    "nub compresses arbitrary textual content into a fixed W*H character budget while preserving structural landmarks. Reads stdin when no path is given.",
	Version: version,
	Args:    cobra.MaximumNArgs(1),
	RunE:    runNub,
}

func init() {
	rootCmd.Flags().StringVarP(&flagShape, "shape", "s", "120:100", "Output shape as WIDTH:HEIGHT")
	rootCmd.Flags().IntVarP(&flagWrap, "wrap", "w", 0, "Wrap long lines at this width, creating fractional line addresses")
	rootCmd.Flags().StringVarP(&flagRange, "range", "r", "", "Line range, supports fractional addressing (1.0:5.5, 100:200)")
	rootCmd.Flags().BoolVarP(&flagNoLineNumbers, "no-line-numbers", "N", false, "Disable line numbers (shown by default)")
	rootCmd.Flags().StringVarP(&flagGrep, "grep", "g", "", "Regex pattern to boost matching lines")
	rootCmd.Flags().StringVar(&flagSeparator, "separator", "", "Split content by this literal separator instead of newlines")
	rootCmd.Flags().StringVar(&flagSeparatorRegex, "separator-regex", "", "Split content by this regex pattern")
	rootCmd.Flags().BoolVarP(&flagDeduplicate, "deduplicate", "d", false, "Remove repeated 3-word sequences to reduce redundancy")
	rootCmd.Flags().IntVar(&flagLimit, "limit", 10000, "Maximum output characters (0 disables the cap)")
	rootCmd.Flags().StringVar(&flagType, "type", "", "Force format type (e.g., text, python, json)")
	rootCmd.Flags().BoolVar(&flagWatch, "watch", false, "Re-run compression whenever the input file changes")
	rootCmd.Flags().BoolVarP(&flagPreview, "preview", "p", false, "Show a side-by-side original/compressed comparison instead of output")
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Path to config.toml (defaults to XDG config dir)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "console", "Log format: console or json")
}

// exitCodeFor maps a run error to nub's documented exit codes: 1 for
// parse/read failures, 2 for bad arguments.
func exitCodeFor(err error) int {
	if ec, ok := err.(exitCoder); ok {
		return ec.ExitCode()
	}
	return 1
}

type exitCoder interface {
	ExitCode() int
}

type badArgsError struct{ err error }

func (e badArgsError) Error() string { return e.err.Error() }
func (e badArgsError) ExitCode() int { return 2 }
func (e badArgsError) Unwrap() error { return e.err }

func loadConfig() config.Config {
	if flagConfigPath != "" {
		return config.LoadPath(flagConfigPath)
	}
	return config.Load()
}

func fail(format string, args ...any) error {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return fmt.Errorf(format, args...)
}
