package images

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/nvr-ai/go-sigverify/common"
	"github.com/nvr-ai/go-sigverify/util"
)

const (
	// PreviewWidth is the default preview thumbnail width.
	PreviewWidth = 160
	// PreviewHeight is the default preview thumbnail height.
	PreviewHeight = 100
)

// Preview decodes the image at path and scales it to exactly width x height
// for display next to the file selector. The aspect ratio is not preserved.
//
// Arguments:
//   - path: Filesystem path to the image.
//   - width: Thumbnail width in pixels.
//   - height: Thumbnail height in pixels.
//
// Returns:
//   - image.Image: The thumbnail, in the colour model of the source.
//   - error: A LoadError if the file cannot be read or decoded.
func Preview(path string, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, common.ConfigError("preview", "invalid dimensions: width=%d, height=%d", width, height)
	}

	file, err := util.LoadImageFile(path)
	if err != nil {
		return nil, common.LoadError("preview", err, "error loading image: %s", path)
	}

	img, _, err := image.Decode(bytes.NewReader(file.Data))
	if err != nil {
		return nil, common.LoadError("preview", err, "error decoding image: %s", path)
	}

	return resize.Resize(uint(width), uint(height), img, resize.Bilinear), nil
}
