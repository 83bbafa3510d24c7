package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "iroawase",
	Short: "Statistical color grading against a reference image",
	Long: `iroawase matches the color distribution of your photos to a
reference image: per-channel mean/deviation transfer in the Oklab
working space, with shadow crush and highlight protection so the
result grades instead of smears.

Point it at one reference and any number of targets; it writes graded
copies with content-addressed filenames and a JSON report.`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"iroawase %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[iroawase] "+format+"\n", args...)
	}
}
