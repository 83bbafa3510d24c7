package batch

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImg(w, h int, seed uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8((x*7 + int(seed)) % 256),
				G: uint8((y*11 + int(seed)*3) % 256),
				B: uint8((x + y + int(seed)*5) % 256),
				A: 255,
			})
		}
	}
	return img
}

func newTestController(t *testing.T) *Controller {
	t.Helper()
	c := New(Config{AnalysisEdge: 64, ExcludeClipped: true})
	require.NoError(t, c.SetReference(testImg(200, 120, 77)))
	return c
}

func TestProcessBatch_OrderAndIDs(t *testing.T) {
	c := newTestController(t)

	targets := []Target{
		{ID: 9, Image: testImg(120, 80, 1)},
		{ID: 2, Image: testImg(64, 64, 2)},
		{ID: 31, Image: testImg(80, 140, 3)},
	}
	results, err := c.ProcessBatch(context.Background(), targets, DefaultParams())
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, r := range results {
		assert.Equal(t, targets[i].ID, r.ID, "result %d keeps input order", i)
		require.NoError(t, r.Err)
		require.NotNil(t, r.Image)
	}
}

func TestProcessBatch_NoReference(t *testing.T) {
	c := New(Config{AnalysisEdge: 64})
	_, err := c.ProcessBatch(context.Background(), []Target{{ID: 1, Image: testImg(32, 32, 1)}}, DefaultParams())
	assert.ErrorIs(t, err, ErrNoReference)
}

func TestProcessBatch_PerImageError(t *testing.T) {
	c := newTestController(t)

	targets := []Target{
		{ID: 1, Image: testImg(50, 50, 1)},
		{ID: 2, Image: image.NewNRGBA(image.Rect(0, 0, 0, 0))}, // empty
		{ID: 3, Image: testImg(50, 50, 3)},
	}
	results, err := c.ProcessBatch(context.Background(), targets, DefaultParams())
	require.NoError(t, err, "batch must survive a single bad image")
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.Nil(t, results[1].Image)
	assert.NoError(t, results[2].Err)
}

func TestProcessBatch_CancellationKeepsPartials(t *testing.T) {
	c := newTestController(t)
	ctx, cancel := context.WithCancel(context.Background())

	var done []int
	c.cfg.OnResult = func(r Result) {
		done = append(done, r.ID)
		if len(done) == 2 {
			cancel()
		}
	}

	targets := []Target{
		{ID: 1, Image: testImg(64, 64, 1)},
		{ID: 2, Image: testImg(64, 64, 2)},
		{ID: 3, Image: testImg(64, 64, 3)},
		{ID: 4, Image: testImg(64, 64, 4)},
	}
	results, err := c.ProcessBatch(ctx, targets, DefaultParams())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []int{1, 2}, done)
	require.Len(t, results, 2, "partial results remain valid")
	assert.Equal(t, 1, results[0].ID)
	assert.Equal(t, 2, results[1].ID)
}

func TestReprocess_Idempotent(t *testing.T) {
	c := newTestController(t)
	_, err := c.ProcessBatch(context.Background(), []Target{{ID: 5, Image: testImg(150, 100, 9)}}, DefaultParams())
	require.NoError(t, err)

	p := Params{Intensity: 73, ShadowStrength: 21}
	a, err := c.Reprocess(5, p)
	require.NoError(t, err)
	b, err := c.Reprocess(5, p)
	require.NoError(t, err)

	assert.True(t, bytes.Equal(a.Pix, b.Pix), "same cached entry, same params: byte-identical output")
}

func TestReprocess_CacheMiss(t *testing.T) {
	c := newTestController(t)
	_, err := c.Reprocess(42, DefaultParams())
	assert.ErrorIs(t, err, ErrNotCached)
}

func TestReprocess_ParameterChangeIsVisible(t *testing.T) {
	c := newTestController(t)
	_, err := c.ProcessBatch(context.Background(), []Target{{ID: 1, Image: testImg(100, 100, 4)}}, DefaultParams())
	require.NoError(t, err)

	weak, err := c.Reprocess(1, Params{Intensity: 10})
	require.NoError(t, err)
	strong, err := c.Reprocess(1, Params{Intensity: 100})
	require.NoError(t, err)
	assert.False(t, bytes.Equal(weak.Pix, strong.Pix), "intensity must change the output")
}

func TestSetReference_InvalidatesCache(t *testing.T) {
	c := newTestController(t)
	_, err := c.ProcessBatch(context.Background(), []Target{{ID: 1, Image: testImg(80, 80, 4)}}, DefaultParams())
	require.NoError(t, err)

	require.NoError(t, c.SetReference(testImg(90, 90, 200)))
	_, err = c.Reprocess(1, DefaultParams())
	assert.ErrorIs(t, err, ErrNotCached, "new reference starts an empty cache")
}

func TestExport_UsesCachedStats(t *testing.T) {
	c := newTestController(t)
	original := testImg(400, 260, 12)
	_, err := c.ProcessBatch(context.Background(), []Target{{ID: 7, Image: original}}, DefaultParams())
	require.NoError(t, err)

	out, err := c.Export(7, original, 300, Params{Intensity: 60, ShadowStrength: 40})
	require.NoError(t, err)
	assert.Equal(t, 300, out.Bounds().Dx(), "long edge resized to export tier")

	// Edge 0 keeps the original resolution.
	out, err = c.Export(7, original, 0, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, original.Bounds().Dx(), out.Bounds().Dx())
	assert.Equal(t, original.Bounds().Dy(), out.Bounds().Dy())

	_, err = c.Export(99, original, 300, DefaultParams())
	assert.ErrorIs(t, err, ErrNotCached)
}

func TestAnalysisResizeKeepsAspect(t *testing.T) {
	c := New(Config{AnalysisEdge: 100})
	require.NoError(t, c.SetReference(testImg(64, 64, 1)))

	results, err := c.ProcessBatch(context.Background(), []Target{
		{ID: 1, Image: testImg(500, 250, 2)}, // landscape
		{ID: 2, Image: testImg(200, 400, 3)}, // portrait
		{ID: 3, Image: testImg(40, 30, 4)},   // below the edge: untouched
	}, DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, 100, results[0].Image.Bounds().Dx())
	assert.Equal(t, 50, results[0].Image.Bounds().Dy())
	assert.Equal(t, 100, results[1].Image.Bounds().Dy())
	assert.Equal(t, 50, results[1].Image.Bounds().Dx())
	assert.Equal(t, 40, results[2].Image.Bounds().Dx())
	assert.Equal(t, 30, results[2].Image.Bounds().Dy())
}
