// Package test provides deterministic synthetic signature scans for tests.
package test

import (
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"path/filepath"

	"gocv.io/x/gocv"
)

// MockSignatureGenerator creates deterministic signature-like scans: dark
// pen strokes and blotches on a light background.
//
// @example
// gen := NewMockSignatureGenerator(480, 240)
// path, err := gen.WriteSignature(t.TempDir(), "ref.png", 7)
type MockSignatureGenerator struct {
	width  int
	height int
}

// NewMockSignatureGenerator creates a new generator with the given scan size.
//
// Arguments:
// - width: Scan width in pixels.
// - height: Scan height in pixels.
func NewMockSignatureGenerator(width, height int) *MockSignatureGenerator {
	return &MockSignatureGenerator{width: width, height: height}
}

// GenerateBlank creates a uniform light-gray scan with no texture.
//
// Returns:
// - A single-channel Mat. The caller must Close it.
func (g *MockSignatureGenerator) GenerateBlank() gocv.Mat {
	frame := gocv.NewMatWithSize(g.height, g.width, gocv.MatTypeCV8UC1)
	frame.SetTo(gocv.NewScalar(235, 0, 0, 0))
	return frame
}

// GenerateSignature creates a textured scan. The same seed always yields the
// same pixels.
//
// Arguments:
// - seed: Selects the stroke pattern.
//
// Returns:
// - A single-channel Mat. The caller must Close it.
func (g *MockSignatureGenerator) GenerateSignature(seed int64) gocv.Mat {
	frame := g.GenerateBlank()
	rng := rand.New(rand.NewSource(seed))

	// Blotches give the detector high-contrast corners at several scales.
	for i := 0; i < 40; i++ {
		x := rng.Intn(g.width - 20)
		y := rng.Intn(g.height - 20)
		w := 6 + rng.Intn(30)
		h := 6 + rng.Intn(30)
		shade := uint8(rng.Intn(120))
		gocv.Rectangle(&frame, image.Rect(x, y, x+w, y+h), color.RGBA{shade, shade, shade, 0}, -1)
	}

	// Pen strokes as a random polyline.
	prev := image.Pt(rng.Intn(g.width), rng.Intn(g.height))
	for i := 0; i < 60; i++ {
		next := image.Pt(rng.Intn(g.width), rng.Intn(g.height))
		gocv.Line(&frame, prev, next, color.RGBA{20, 20, 20, 0}, 1+rng.Intn(3))
		prev = next
	}

	return frame
}

// WriteSignature renders GenerateSignature(seed) into dir/name.
//
// Returns:
// - The path of the written file.
// - An error if the image could not be written.
func (g *MockSignatureGenerator) WriteSignature(dir, name string, seed int64) (string, error) {
	frame := g.GenerateSignature(seed)
	defer frame.Close()
	return write(dir, name, frame)
}

// WriteBlank renders GenerateBlank into dir/name.
func (g *MockSignatureGenerator) WriteBlank(dir, name string) (string, error) {
	frame := g.GenerateBlank()
	defer frame.Close()
	return write(dir, name, frame)
}

func write(dir, name string, frame gocv.Mat) (string, error) {
	path := filepath.Join(dir, name)
	if !gocv.IMWrite(path, frame) {
		return "", fmt.Errorf("failed to write %s", path)
	}
	return path, nil
}
