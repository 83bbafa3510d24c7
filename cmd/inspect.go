package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Yu62ballena/iroAwase/internal/report"
)

var inspectCheckFiles bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <out_dir_or_report>",
	Short: "Summarize a grade report and check its outputs",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectCheckFiles, "check-files", true, "verify referenced output files exist")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(_ *cobra.Command, args []string) error {
	path := args[0]

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		path = filepath.Join(path, "iroawase.report.json")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}

	var rep report.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return fmt.Errorf("parse report: %w", err)
	}

	printReport(&rep)

	problems := checkReport(&rep, filepath.Dir(path))
	if len(problems) == 0 {
		fmt.Println("  ✓ Report is consistent")
		fmt.Println()
		return nil
	}
	fmt.Printf("  ✗ Report has %d problem(s):\n", len(problems))
	for _, p := range problems {
		fmt.Printf("    • %s\n", p)
	}
	fmt.Println()
	return fmt.Errorf("inspection found %d problems", len(problems))
}

func printReport(rep *report.Report) {
	fmt.Println()
	fmt.Printf("  Report version: %d\n", rep.Version)
	fmt.Printf("  Generated:      %s\n", rep.GeneratedAt)
	fmt.Printf("  Reference:      %s (%dx%d)\n",
		rep.Reference.Path, rep.Reference.Width, rep.Reference.Height)
	fmt.Printf("  Params:         intensity=%d shadow=%d analysis=%dpx\n",
		rep.Params.Intensity, rep.Params.ShadowStrength, rep.Params.AnalysisEdge)
	fmt.Println()
	fmt.Printf("  Images:         %d (%d failed)\n",
		rep.Summary.TotalImages, rep.Summary.FailedImages)
	fmt.Printf("  Output size:    %s\n", formatBytes(rep.Summary.TotalOutputBytes))
	fmt.Println()

	// Per-image lightness shift, largest first.
	type shift struct {
		key   string
		delta float64
	}
	var shifts []shift
	for key, img := range rep.Images {
		if img.Error != "" {
			continue
		}
		shifts = append(shifts, shift{key, rep.Reference.Stats.Mean[0] - img.Stats.Mean[0]})
	}
	sort.Slice(shifts, func(i, j int) bool {
		return abs(shifts[i].delta) > abs(shifts[j].delta)
	})
	n := len(shifts)
	if n > 10 {
		n = 10
	}
	if n > 0 {
		fmt.Printf("  Largest lightness gaps to reference:\n")
		for _, s := range shifts[:n] {
			fmt.Printf("    %-40s %+.4f L\n", truncKey(s.key, 40), s.delta)
		}
		fmt.Println()
	}
}

func checkReport(rep *report.Report, baseDir string) []string {
	var problems []string

	if rep.Version != report.SupportedVersion {
		problems = append(problems, fmt.Sprintf("unsupported report version: %d", rep.Version))
	}

	failed := 0
	var outBytes int64
	for key, img := range rep.Images {
		if img.Error != "" {
			failed++
			continue
		}
		outBytes += img.OutputSize
		for i, std := range img.Stats.Std {
			if std < 0 {
				problems = append(problems, fmt.Sprintf("image %q: negative std[%d]", key, i))
			}
		}
		if img.OutputPath == "" {
			problems = append(problems, fmt.Sprintf("image %q: no output path", key))
			continue
		}
		if !inspectCheckFiles {
			continue
		}
		full := filepath.Join(baseDir, img.OutputPath)
		fi, err := os.Stat(full)
		if err != nil {
			problems = append(problems, fmt.Sprintf("image %q: output not found: %s", key, img.OutputPath))
		} else if img.OutputSize > 0 && fi.Size() != img.OutputSize {
			problems = append(problems, fmt.Sprintf("image %q: size mismatch: report=%d, disk=%d",
				key, img.OutputSize, fi.Size()))
		}
	}

	if rep.Summary.TotalImages != len(rep.Images) {
		problems = append(problems, fmt.Sprintf("summary.total_images mismatch: %d != %d",
			rep.Summary.TotalImages, len(rep.Images)))
	}
	if rep.Summary.FailedImages != failed {
		problems = append(problems, fmt.Sprintf("summary.failed_images mismatch: %d != %d",
			rep.Summary.FailedImages, failed))
	}
	if rep.Summary.TotalOutputBytes != outBytes {
		problems = append(problems, fmt.Sprintf("summary.total_output_bytes mismatch: %d != %d",
			rep.Summary.TotalOutputBytes, outBytes))
	}

	return problems
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func truncKey(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}
