// Package report defines the JSON report written next to graded output:
// which reference drove the batch, per-image statistics and output
// paths, and aggregate totals.
package report

import (
	"encoding/json"
	"os"
	"time"
)

// SupportedVersion is the current report schema version.
const SupportedVersion = 1

// Report is the top-level output of one grading run.
type Report struct {
	Version     int              `json:"version"`
	GeneratedAt string           `json:"generated_at"`
	Reference   Reference        `json:"reference"`
	Params      Params           `json:"params"`
	Images      map[string]Image `json:"images"`
	Summary     Summary          `json:"summary"`
}

// Reference records the image the batch was graded against.
type Reference struct {
	Path   string   `json:"path"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Stats  Channels `json:"stats"`
}

// Params echoes the slider values used for the run.
type Params struct {
	Intensity      int  `json:"intensity"`
	ShadowStrength int  `json:"shadow_strength"`
	AnalysisEdge   int  `json:"analysis_edge"`
	ExportEdge     int  `json:"export_edge,omitempty"`
	ExcludeClipped bool `json:"exclude_clipped"`
}

// Channels holds per-channel working-space statistics (L, a, b order).
type Channels struct {
	Mean    [3]float64 `json:"mean"`
	Std     [3]float64 `json:"std"`
	Samples int        `json:"samples"`
}

// Image describes one graded target.
type Image struct {
	ID         int      `json:"id"`
	SourcePath string   `json:"source_path"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	Stats      Channels `json:"stats"`
	OutputPath string   `json:"output_path,omitempty"`
	OutputSize int64    `json:"output_size,omitempty"`
	Hash       string   `json:"hash,omitempty"` // first 16 hex chars of xxhash64
	Error      string   `json:"error,omitempty"`
}

// Summary aggregates run metrics.
type Summary struct {
	TotalImages      int   `json:"total_images"`
	FailedImages     int   `json:"failed_images"`
	TotalOutputBytes int64 `json:"total_output_bytes"`
}

// New creates an empty report with defaults.
func New() *Report {
	return &Report{
		Version:     SupportedVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Images:      make(map[string]Image),
	}
}

// ComputeSummary recalculates the aggregate block from the images.
func (r *Report) ComputeSummary() {
	var s Summary
	s.TotalImages = len(r.Images)
	for _, img := range r.Images {
		if img.Error != "" {
			s.FailedImages++
		}
		s.TotalOutputBytes += img.OutputSize
	}
	r.Summary = s
}

// WriteJSON serializes the report to path with stable indenting.
func WriteJSON(r *Report, path string) error {
	r.ComputeSummary()

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
