//go:build ignore

// gen_fixtures creates a reference image and a handful of targets for a
// CLI smoke test.
// Usage: go run gen_fixtures.go <output_dir>
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	os.MkdirAll(filepath.Join(dir, "targets"), 0o755)

	// Warm, contrasty reference (JPEG, 400x267).
	writeJPEG(filepath.Join(dir, "reference.jpg"), warmGradient(400, 267))

	// Flat, cool targets (PNG).
	for i := 1; i <= 3; i++ {
		name := fmt.Sprintf("shot-%d.png", i)
		writeImage(filepath.Join(dir, "targets", name), coolFlat(320, 240, uint8(i*25)))
	}

	// Edge cases: blown highlights, crushed shadows.
	writeImage(filepath.Join(dir, "targets", "blown.png"), withWhitePatch(200, 150))
	writeImage(filepath.Join(dir, "targets", "dark.png"), coolFlat(200, 150, 8))

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created 6 fixtures in %s\n", dir)
}

func warmGradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(120 + x*135/w),
				G: uint8(60 + y*120/h),
				B: uint8(30 + (x+y)*60/(w+h)),
				A: 255,
			})
		}
	}
	return img
}

func coolFlat(w, h int, base uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := uint8((x*3 + y*5) % 12)
			img.SetNRGBA(x, y, color.NRGBA{
				R: base + d,
				G: base + d + 10,
				B: base + d + 25,
				A: 255,
			})
		}
	}
	return img
}

func withWhitePatch(w, h int) *image.NRGBA {
	img := coolFlat(w, h, 110)
	for y := h / 4; y < h/2; y++ {
		for x := w / 4; x < w/2; x++ {
			img.SetNRGBA(x, y, color.NRGBA{255, 255, 255, 255})
		}
	}
	return img
}

func writeImage(path string, img *image.NRGBA) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		panic(err)
	}
}

func writeJPEG(path string, img *image.NRGBA) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 85}); err != nil {
		panic(err)
	}
}
