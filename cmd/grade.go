package cmd

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/Yu62ballena/iroAwase/internal/batch"
	"github.com/Yu62ballena/iroAwase/internal/hasher"
	"github.com/Yu62ballena/iroAwase/internal/imgstat"
	"github.com/Yu62ballena/iroAwase/internal/preset"
	"github.com/Yu62ballena/iroAwase/internal/report"
)

var (
	gradeOutDir       string
	gradePreset       string
	gradeIntensity    int
	gradeShadow       int
	gradeAnalysisEdge int
	gradeExportEdge   int
	gradeFormat       string
	gradeQuality      int
	gradeKeepClipped  bool
)

var gradeCmd = &cobra.Command{
	Use:   "grade <reference> <input_dir_or_files...>",
	Short: "Grade images to match a reference's color distribution",
	Long: `Reads the reference image, scans the inputs (png, jpg, jpeg, webp,
gif, bmp, tiff), and writes a graded copy of every target plus a JSON
report.

Output filenames are content-addressed: <name>.graded.<hash>.<ext>`,
	Args: cobra.MinimumNArgs(2),
	RunE: runGrade,
}

func init() {
	gradeCmd.Flags().StringVarP(&gradeOutDir, "out", "o", "./iroawase_out", "output directory")
	gradeCmd.Flags().StringVarP(&gradePreset, "preset", "p", "standard",
		fmt.Sprintf("grading preset (%s)", strings.Join(preset.Names(), ", ")))
	gradeCmd.Flags().IntVarP(&gradeIntensity, "intensity", "i", 50, "transfer strength 0-100")
	gradeCmd.Flags().IntVarP(&gradeShadow, "shadow", "s", 50, "shadow compression 0-100")
	gradeCmd.Flags().IntVar(&gradeAnalysisEdge, "analysis-edge", 480, "long-edge size for statistics extraction")
	gradeCmd.Flags().IntVar(&gradeExportEdge, "export-edge", 0, "long-edge size for output (0 = keep original)")
	gradeCmd.Flags().StringVarP(&gradeFormat, "format", "f", "jpeg", "output format (jpeg, png)")
	gradeCmd.Flags().IntVarP(&gradeQuality, "quality", "q", 92, "jpeg quality 1-100")
	gradeCmd.Flags().BoolVar(&gradeKeepClipped, "keep-clipped", false, "include crushed/blown pixels in statistics")
	rootCmd.AddCommand(gradeCmd)
}

func runGrade(cmd *cobra.Command, args []string) error {
	start := time.Now()
	refPath := args[0]

	format, ext, err := resolveFormat(gradeFormat)
	if err != nil {
		return err
	}

	// Preset supplies defaults; explicit flags win.
	look := preset.Get(gradePreset)
	if !cmd.Flags().Changed("intensity") {
		gradeIntensity = look.Intensity
	}
	if !cmd.Flags().Changed("shadow") {
		gradeShadow = look.ShadowStrength
	}
	if !cmd.Flags().Changed("analysis-edge") {
		gradeAnalysisEdge = look.AnalysisEdge
	}
	logVerbose("preset: %s (intensity=%d, shadow=%d)", look.Name, gradeIntensity, gradeShadow)

	sources, err := collectSources(args[1:])
	if err != nil {
		return fmt.Errorf("collect inputs: %w", err)
	}
	if len(sources) == 0 {
		return fmt.Errorf("no images found in %s", strings.Join(args[1:], ", "))
	}
	logVerbose("reference: %s", refPath)
	logVerbose("found %d target images", len(sources))

	refImg, err := decodeNRGBA(refPath)
	if err != nil {
		return fmt.Errorf("reference %s: %w", refPath, err)
	}

	ctrl := batch.New(batch.Config{
		AnalysisEdge:   gradeAnalysisEdge,
		ExcludeClipped: !gradeKeepClipped,
		OnResult: func(r batch.Result) {
			if r.Err != nil {
				fmt.Fprintf(os.Stderr, "[iroawase] error: %v\n", r.Err)
				return
			}
			logVerbose("analyzed image %d", r.ID)
		},
	})
	if err := ctrl.SetReference(refImg); err != nil {
		return fmt.Errorf("reference %s: %w", refPath, err)
	}

	if err := os.MkdirAll(gradeOutDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	rep := report.New()
	refStats, _ := ctrl.ReferenceStats()
	rep.Reference = report.Reference{
		Path:   refPath,
		Width:  refImg.Bounds().Dx(),
		Height: refImg.Bounds().Dy(),
		Stats:  toChannels(refStats),
	}
	params := batch.Params{Intensity: gradeIntensity, ShadowStrength: gradeShadow}
	rep.Params = report.Params{
		Intensity:      gradeIntensity,
		ShadowStrength: gradeShadow,
		AnalysisEdge:   gradeAnalysisEdge,
		ExportEdge:     gradeExportEdge,
		ExcludeClipped: !gradeKeepClipped,
	}

	// Decode targets up front so ids map 1:1 to sources; a decode
	// failure costs that image only.
	originals := make([]*image.NRGBA, len(sources))
	targets := make([]batch.Target, 0, len(sources))
	for i, src := range sources {
		img, err := decodeNRGBA(src.absPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[iroawase] error: decode %s: %v\n", src.key, err)
			rep.Images[src.key] = report.Image{
				ID: i, SourcePath: src.absPath,
				Error: fmt.Sprintf("decode: %v", err),
			}
			continue
		}
		originals[i] = img
		targets = append(targets, batch.Target{ID: i, Image: img})
	}

	results, err := ctrl.ProcessBatch(context.Background(), targets, params)
	if err != nil {
		return fmt.Errorf("batch: %w", err)
	}

	for _, r := range results {
		src := sources[r.ID]
		entry := report.Image{
			ID:         r.ID,
			SourcePath: src.absPath,
			Width:      originals[r.ID].Bounds().Dx(),
			Height:     originals[r.ID].Bounds().Dy(),
		}
		if r.Err != nil {
			entry.Error = r.Err.Error()
			rep.Images[src.key] = entry
			continue
		}
		entry.Stats = toChannels(r.Stats)

		out, err := ctrl.Export(r.ID, originals[r.ID], gradeExportEdge, params)
		if err != nil {
			entry.Error = err.Error()
			rep.Images[src.key] = entry
			continue
		}

		var buf bytes.Buffer
		if err := imaging.Encode(&buf, out, format, imaging.JPEGQuality(gradeQuality)); err != nil {
			entry.Error = fmt.Sprintf("encode: %v", err)
			rep.Images[src.key] = entry
			continue
		}

		hash := hasher.ContentHash(buf.Bytes(), 16)
		name := fmt.Sprintf("%s.graded.%s.%s", filepath.Base(src.key), hash[:8], ext)
		outPath := filepath.Join(gradeOutDir, name)
		if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		logVerbose("wrote %s (%d bytes)", name, buf.Len())

		entry.OutputPath = name
		entry.OutputSize = int64(buf.Len())
		entry.Hash = hash
		rep.Images[src.key] = entry
	}

	reportPath := filepath.Join(gradeOutDir, "iroawase.report.json")
	if err := report.WriteJSON(rep, reportPath); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	printGradeReport(rep, time.Since(start))
	return nil
}

func printGradeReport(rep *report.Report, elapsed time.Duration) {
	fmt.Println()
	fmt.Printf("  Reference:   %s (%dx%d)\n",
		rep.Reference.Path, rep.Reference.Width, rep.Reference.Height)
	fmt.Printf("  Graded:      %d images\n", rep.Summary.TotalImages-rep.Summary.FailedImages)
	if rep.Summary.FailedImages > 0 {
		fmt.Printf("  Failed:      %d images\n", rep.Summary.FailedImages)
	}
	fmt.Printf("  Output size: %s\n", formatBytes(rep.Summary.TotalOutputBytes))
	fmt.Printf("  Intensity:   %d  Shadow: %d\n", rep.Params.Intensity, rep.Params.ShadowStrength)
	fmt.Printf("  Time:        %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("  Report:      iroawase.report.json\n")
	fmt.Println()
}

// source is one discovered target image.
type source struct {
	absPath string
	key     string // base name without extension
}

// imageExtensions lists recognized image file extensions.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
}

// collectSources expands the input arguments: directories are walked
// recursively (hidden directories skipped), files are taken as given.
func collectSources(inputs []string) ([]source, error) {
	var sources []source
	seen := map[string]bool{}

	add := func(path string) {
		abs, err := filepath.Abs(path)
		if err != nil || seen[abs] {
			return
		}
		seen[abs] = true
		name := filepath.Base(path)
		sources = append(sources, source{
			absPath: abs,
			key:     strings.TrimSuffix(name, filepath.Ext(name)),
		})
	}

	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if imageExtensions[strings.ToLower(filepath.Ext(in))] {
				add(in)
			}
			continue
		}
		err = filepath.Walk(in, func(path string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if fi.IsDir() {
				if strings.HasPrefix(fi.Name(), ".") && fi.Name() != "." {
					return filepath.SkipDir
				}
				return nil
			}
			if imageExtensions[strings.ToLower(filepath.Ext(path))] {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].absPath < sources[j].absPath })

	// Base names can repeat across directories; keep report keys unique.
	taken := map[string]int{}
	for i := range sources {
		taken[sources[i].key]++
		if n := taken[sources[i].key]; n > 1 {
			sources[i].key = fmt.Sprintf("%s-%d", sources[i].key, n)
		}
	}
	return sources, nil
}

func toChannels(s imgstat.Stats) report.Channels {
	return report.Channels{Mean: s.Mean, Std: s.Std, Samples: s.Samples}
}

// decodeNRGBA loads any supported image file as an NRGBA buffer.
func decodeNRGBA(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return imaging.Clone(img), nil
}

func resolveFormat(name string) (imaging.Format, string, error) {
	switch strings.ToLower(name) {
	case "jpeg", "jpg":
		return imaging.JPEG, "jpg", nil
	case "png":
		return imaging.PNG, "png", nil
	default:
		return 0, "", fmt.Errorf("unsupported output format %q (jpeg, png)", name)
	}
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
