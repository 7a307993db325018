package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SupportedImageExtensions lists the file extensions accepted as inputs.
var SupportedImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".webp"}

// ImageFile represents an image file read from disk.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Data is the raw bytes of the image file.
	Data []byte
	// Ext is the lower-cased file extension, including the dot.
	Ext string
}

// ValidateImagePath checks that the path exists, is a regular file, and has
// a supported image extension.
//
// Arguments:
// - path: Path to the image file.
//
// Returns:
// - error: Error describing why the path is not usable.
func ValidateImagePath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", path)
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory: %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range SupportedImageExtensions {
		if ext == supported {
			return nil
		}
	}

	return fmt.Errorf("unsupported file extension: %q. Supported extensions: %v", ext, SupportedImageExtensions)
}

// LoadImageFile validates and reads a single image file.
//
// Arguments:
// - path: Path to the image file.
//
// Returns:
// - ImageFile: The raw bytes of the image file.
// - error: Error if validation or reading fails.
func LoadImageFile(path string) (ImageFile, error) {
	if err := ValidateImagePath(path); err != nil {
		return ImageFile{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ImageFile{}, err
	}
	if len(data) == 0 {
		return ImageFile{}, fmt.Errorf("file is empty: %s", path)
	}

	return ImageFile{
		Path: path,
		Data: data,
		Ext:  strings.ToLower(filepath.Ext(path)),
	}, nil
}
