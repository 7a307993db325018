package images

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-sigverify/common"
	"github.com/nvr-ai/go-sigverify/images/kernels"
	"github.com/nvr-ai/go-sigverify/util"
)

// SmoothingMode selects the noise-suppression filter.
type SmoothingMode string

const (
	// SmoothingGaussian applies an OpenCV Gaussian blur.
	SmoothingGaussian SmoothingMode = "gaussian"
	// SmoothingBox applies the pure-Go separable box blur.
	SmoothingBox SmoothingMode = "box"
	// SmoothingNone skips smoothing.
	SmoothingNone SmoothingMode = "none"
)

// NormalizeOptions controls how an input scan is normalized.
type NormalizeOptions struct {
	// Smoothing selects the filter. Default: gaussian.
	Smoothing SmoothingMode `json:"smoothing" yaml:"smoothing"`
	// KernelSize is the odd side length of the smoothing kernel. Default: 5.
	KernelSize int `json:"kernel_size" yaml:"kernel_size"`
	// Sigma is the Gaussian standard deviation. 0 derives it from KernelSize.
	Sigma float64 `json:"sigma" yaml:"sigma"`
}

// DefaultNormalizeOptions returns a 5x5 Gaussian with sigma derived from the
// kernel size.
func DefaultNormalizeOptions() NormalizeOptions {
	return NormalizeOptions{
		Smoothing:  SmoothingGaussian,
		KernelSize: 5,
		Sigma:      0,
	}
}

// Validate checks the kernel parameters.
func (o NormalizeOptions) Validate() error {
	switch o.Smoothing {
	case SmoothingGaussian, SmoothingBox, SmoothingNone:
	default:
		return common.ConfigError("normalize", "unknown smoothing mode %q", o.Smoothing)
	}
	if o.Smoothing != SmoothingNone && (o.KernelSize < 1 || o.KernelSize%2 == 0) {
		return common.ConfigError("normalize", "kernel size must be a positive odd number, got %d", o.KernelSize)
	}
	if o.Sigma < 0 {
		return common.ConfigError("normalize", "sigma must not be negative, got %.2f", o.Sigma)
	}
	return nil
}

// Normalize loads the image at path, converts it to single-channel intensity
// and smooths it.
//
// Arguments:
//   - path: Filesystem path to a JPEG, PNG, BMP or WebP file.
//   - opts: Smoothing configuration.
//
// Returns:
//   - *Image: The normalized image. The caller must Close it.
//   - error: A LoadError if the path is missing, unreadable or undecodable.
func Normalize(path string, opts NormalizeOptions) (*Image, error) {
	if path == "" {
		return nil, common.MissingInputError("normalize", "input")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	file, err := util.LoadImageFile(path)
	if err != nil {
		return nil, common.LoadError("normalize", err, "error loading image: %s", path)
	}

	gray, err := gocv.IMDecode(file.Data, gocv.IMReadGrayScale)
	if err != nil {
		return nil, common.LoadError("normalize", err, "error loading image: %s", path)
	}
	if gray.Empty() {
		gray.Close()
		return nil, common.LoadError("normalize", nil, "error loading image: %s", path)
	}

	smoothed, err := smooth(gray, opts)
	gray.Close()
	if err != nil {
		smoothed.Close()
		return nil, common.LoadError("normalize", err, "error smoothing image: %s", path)
	}

	return NewImage(path, smoothed), nil
}

// smooth returns the filtered image as a new Mat; gray is left untouched.
func smooth(gray gocv.Mat, opts NormalizeOptions) (gocv.Mat, error) {
	switch opts.Smoothing {
	case SmoothingGaussian:
		dst := gocv.NewMat()
		gocv.GaussianBlur(gray, &dst, image.Pt(opts.KernelSize, opts.KernelSize), opts.Sigma, opts.Sigma, gocv.BorderDefault)
		return dst, nil
	case SmoothingBox:
		img, err := gray.ToImage()
		if err != nil {
			return gocv.NewMat(), err
		}
		src, ok := img.(*image.Gray)
		if !ok {
			return gocv.NewMat(), common.LoadError("normalize", nil, "expected a grayscale image, got %T", img)
		}
		blurred := kernels.BoxBlurGray(src, kernels.Options{
			Radius: opts.KernelSize / 2,
			Edge:   kernels.EdgeMirror,
		})
		dst, err := gocv.ImageGrayToMatGray(blurred)
		if err != nil {
			return gocv.NewMat(), err
		}
		return dst, nil
	default:
		return gray.Clone(), nil
	}
}
