// Package images loads signature scans and turns them into smoothed,
// single-channel intensity images ready for feature extraction.
package images

import (
	"gocv.io/x/gocv"
)

// Image is a normalized single-channel intensity image.
//
// An Image is immutable once produced by Normalize. Callers own it and must
// call Close when the consuming stage is done.
type Image struct {
	// Path is the file the image was loaded from.
	Path string `json:"path" yaml:"path"`
	// Format of the source file.
	Format ImageFormat `json:"format" yaml:"format"`
	// Width of the image in pixels.
	Width int `json:"width" yaml:"width"`
	// Height of the image in pixels.
	Height int `json:"height" yaml:"height"`
	// Depth is the number of bits per intensity sample.
	Depth int `json:"depth" yaml:"depth"`

	mat gocv.Mat
}

// NewImage wraps a single-channel 8-bit Mat. The Image takes ownership of mat.
func NewImage(path string, mat gocv.Mat) *Image {
	return &Image{
		Path:   path,
		Format: FormatFromPath(path),
		Width:  mat.Cols(),
		Height: mat.Rows(),
		Depth:  8,
		mat:    mat,
	}
}

// Mat returns the underlying pixels. The Mat is shared and must be treated
// as read-only.
func (i *Image) Mat() gocv.Mat {
	return i.mat
}

// Empty reports whether the image holds no pixels.
func (i *Image) Empty() bool {
	return i == nil || i.mat.Empty()
}

// Checksum returns a deterministic digest of the pixels.
func (i *Image) Checksum() string {
	return ComputeMatChecksum(i.mat)
}

// Close releases the pixel buffer.
func (i *Image) Close() error {
	if i == nil {
		return nil
	}
	return i.mat.Close()
}
