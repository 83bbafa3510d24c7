package cmd

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/Yu62ballena/iroAwase/internal/imgstat"
)

var statsAnalysisEdge int

var statsCmd = &cobra.Command{
	Use:   "stats <image>",
	Short: "Print working-space statistics for an image",
	Long: `Decodes an image, downsamples it to the analysis edge, and prints
per-channel mean and standard deviation in the Oklab working space,
once over the full pixel population and once with crushed/blown pixels
excluded. Useful for checking what a reference will actually transfer.`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsAnalysisEdge, "analysis-edge", 480, "long-edge size for statistics extraction")
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, args []string) error {
	path := args[0]

	img, err := decodeNRGBA(path)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	small := fitToEdge(img, statsAnalysisEdge)

	full := imgstat.Extract(small, false)
	trimmed := imgstat.Extract(small, true)

	b := img.Bounds()
	fmt.Println()
	fmt.Printf("  Image:    %s (%dx%d, analyzed at %dx%d)\n",
		path, b.Dx(), b.Dy(), small.Bounds().Dx(), small.Bounds().Dy())
	fmt.Println()
	printChannels("full population", full)
	fmt.Println()
	printChannels("clipped excluded", trimmed)
	fmt.Println()

	excluded := full.Samples - trimmed.Samples
	if excluded > 0 {
		pct := float64(excluded) / float64(full.Samples) * 100
		fmt.Printf("  Clipped pixels: %d (%.1f%%)\n", excluded, pct)
		fmt.Println()
	}
	return nil
}

// fitToEdge downsamples img so its long edge is at most edge pixels.
func fitToEdge(img *image.NRGBA, edge int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() <= edge && b.Dy() <= edge {
		return img
	}
	if b.Dx() >= b.Dy() {
		return imaging.Resize(img, edge, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, edge, imaging.Lanczos)
}

func printChannels(label string, s imgstat.Stats) {
	fmt.Printf("  %s (%d samples):\n", label, s.Samples)
	for i, name := range []string{"L", "a", "b"} {
		fmt.Printf("    %s  mean %+.4f  std %.4f\n", name, s.Mean[i], s.Std[i])
	}
}
