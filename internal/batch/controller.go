// Package batch sequences calibration and application across many target
// images and caches per-image analysis state so interactive parameter
// changes re-run cheaply, without re-resizing or re-extracting statistics.
package batch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/Yu62ballena/iroAwase/internal/grade"
	"github.com/Yu62ballena/iroAwase/internal/imgstat"
)

// ErrNotCached is returned by Reprocess and Export for an image id that
// was never submitted through ProcessBatch.
var ErrNotCached = errors.New("image not in cache")

// ErrNoReference is returned when a batch is started before a reference
// image has been set.
var ErrNoReference = errors.New("no reference set")

// Params are the user-facing sliders, both 0-100.
type Params struct {
	Intensity      int
	ShadowStrength int
}

// DefaultParams returns the mid-scale defaults.
func DefaultParams() Params {
	return Params{Intensity: 50, ShadowStrength: 50}
}

// Target is one image submitted for grading, keyed by a host-assigned
// stable identifier.
type Target struct {
	ID    int
	Image *image.NRGBA
}

// Result is the outcome for a single target. Either Image or Err is set.
// Results keep the submission order; IDs correspond 1:1 with input.
type Result struct {
	ID     int
	Image  *image.NRGBA
	Stats  imgstat.Stats
	Coeffs grade.Coefficients
	Err    error
}

// Config holds the knobs of a controller.
type Config struct {
	// AnalysisEdge is the long-edge size images are downsampled to
	// before statistics extraction and preview application.
	AnalysisEdge int

	// ExcludeClipped skips uniformly crushed/blown pixels during
	// statistics extraction.
	ExcludeClipped bool

	// Tuning overrides the transfer constants; zero value means
	// grade.DefaultTuning().
	Tuning *grade.Tuning

	// OnResult, when set, is invoked after each target finishes
	// (success or per-image failure). This is the host's progress
	// hook between images.
	OnResult func(Result)
}

// entry is the cached analysis state for one image. Entries are only
// ever replaced wholesale, never mutated in place.
type entry struct {
	analysis *image.NRGBA
	stats    imgstat.Stats
	ref      imgstat.Stats
}

// Controller owns the per-image cache and drives batches. A single
// goroutine is expected to drive a batch; the mutex protects the cache
// against concurrent Reprocess calls from the host.
type Controller struct {
	cfg    Config
	tuning grade.Tuning

	mu      sync.Mutex
	ref     imgstat.Stats
	refSet  bool
	entries map[int]*entry
}

// New creates a controller. AnalysisEdge defaults to 480 when unset.
func New(cfg Config) *Controller {
	if cfg.AnalysisEdge <= 0 {
		cfg.AnalysisEdge = 480
	}
	tun := grade.DefaultTuning()
	if cfg.Tuning != nil {
		tun = *cfg.Tuning
	}
	return &Controller{
		cfg:     cfg,
		tuning:  tun,
		entries: make(map[int]*entry),
	}
}

// SetReference extracts reference statistics at analysis resolution and
// invalidates every cached target entry: a new reference starts a new
// calibration world.
func (c *Controller) SetReference(img *image.NRGBA) error {
	if err := checkBuffer(img); err != nil {
		return fmt.Errorf("reference: %w", err)
	}
	small := resizeToEdge(img, c.cfg.AnalysisEdge)
	s := imgstat.Extract(small, c.cfg.ExcludeClipped)

	c.mu.Lock()
	c.ref = s
	c.refSet = true
	c.entries = make(map[int]*entry)
	c.mu.Unlock()
	return nil
}

// ReferenceStats exposes the current reference statistics read-only for
// host diagnostics.
func (c *Controller) ReferenceStats() (imgstat.Stats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ref, c.refSet
}

// TargetStats exposes the cached statistics for one image id.
func (c *Controller) TargetStats(id int) (imgstat.Stats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		return imgstat.Stats{}, false
	}
	return e.stats, true
}

// ProcessBatch grades every target in order at analysis resolution.
// Targets are processed strictly in the order supplied; each finished
// result is appended (and reported via OnResult) before the next image
// starts, so cancellation between images never retracts emitted results.
// A per-image failure is recorded in its Result and the batch continues.
func (c *Controller) ProcessBatch(ctx context.Context, targets []Target, p Params) ([]Result, error) {
	c.mu.Lock()
	if !c.refSet {
		c.mu.Unlock()
		return nil, ErrNoReference
	}
	ref := c.ref
	c.mu.Unlock()

	results := make([]Result, 0, len(targets))
	for _, tgt := range targets {
		// Yield point: the host cancels between images, keeping
		// everything already emitted.
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res := c.processOne(tgt, ref, p)
		results = append(results, res)
		if c.cfg.OnResult != nil {
			c.cfg.OnResult(res)
		}
	}
	return results, nil
}

func (c *Controller) processOne(tgt Target, ref imgstat.Stats, p Params) Result {
	if err := checkBuffer(tgt.Image); err != nil {
		return Result{ID: tgt.ID, Err: fmt.Errorf("image %d: %w", tgt.ID, err)}
	}

	analysis := resizeToEdge(tgt.Image, c.cfg.AnalysisEdge)
	s := imgstat.Extract(analysis, c.cfg.ExcludeClipped)

	c.mu.Lock()
	c.entries[tgt.ID] = &entry{analysis: analysis, stats: s, ref: ref}
	c.mu.Unlock()

	coeffs := grade.Calibrate(ref, s, p.Intensity, p.ShadowStrength, c.tuning)
	return Result{
		ID:     tgt.ID,
		Image:  grade.Apply(analysis, coeffs),
		Stats:  s,
		Coeffs: coeffs,
	}
}

// Reprocess re-runs calibration and application for a cached image with
// new parameters. Cost is bounded by the analysis-resolution pixel
// count: no resize, no statistics pass.
func (c *Controller) Reprocess(id int, p Params) (*image.NRGBA, error) {
	c.mu.Lock()
	e, ok := c.entries[id]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("image %d: %w", id, ErrNotCached)
	}

	coeffs := grade.Calibrate(e.ref, e.stats, p.Intensity, p.ShadowStrength, c.tuning)
	return grade.Apply(e.analysis, coeffs), nil
}

// Export produces a deliverable: the original buffer resized to
// exportEdge on its long edge, graded with the already-cached analysis
// statistics. Statistics are not recomputed at export resolution.
func (c *Controller) Export(id int, original *image.NRGBA, exportEdge int, p Params) (*image.NRGBA, error) {
	if err := checkBuffer(original); err != nil {
		return nil, fmt.Errorf("image %d: %w", id, err)
	}

	c.mu.Lock()
	e, ok := c.entries[id]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("image %d: %w", id, ErrNotCached)
	}

	buf := original
	if exportEdge > 0 {
		buf = resizeToEdge(original, exportEdge)
	}
	coeffs := grade.Calibrate(e.ref, e.stats, p.Intensity, p.ShadowStrength, c.tuning)
	return grade.Apply(buf, coeffs), nil
}

// checkBuffer rejects nil or empty buffers. Fatal for the single image
// only; the batch goes on.
func checkBuffer(img *image.NRGBA) error {
	if img == nil {
		return errors.New("nil buffer")
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("empty buffer %dx%d", b.Dx(), b.Dy())
	}
	return nil
}

// resizeToEdge scales img so its long edge is edge pixels, preserving
// aspect. Images already at or below the edge are returned as a plain
// copy so cached buffers never alias host memory.
func resizeToEdge(img *image.NRGBA, edge int) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= edge && h <= edge {
		return imaging.Clone(img)
	}
	if w >= h {
		return imaging.Resize(img, edge, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, edge, imaging.Lanczos)
}
