// Package render composes the side-by-side match visualisation.
package render

import (
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/chewxy/math32"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-sigverify/common"
	"github.com/nvr-ai/go-sigverify/features"
	"github.com/nvr-ai/go-sigverify/images"
	"github.com/nvr-ai/go-sigverify/matcher"
)

// DefaultOutputPath is where Save writes when no path is configured.
const DefaultOutputPath = "match_result.png"

var (
	matchColor    = color.RGBA{0, 255, 0, 0}
	keypointColor = color.RGBA{255, 128, 0, 0}
)

// Options controls which matches are drawn and how the composite is scaled.
type Options struct {
	// Limit is the maximum number of match lines drawn. Default: 20.
	Limit int `json:"limit" yaml:"limit"`
	// SortByDistance draws the Limit closest matches instead of the first
	// Limit in emission order.
	SortByDistance bool `json:"sort_by_distance" yaml:"sort_by_distance"`
	// Width scales the composite to this width, keeping the aspect ratio.
	// 0 keeps the native size. Default: 1000.
	Width int `json:"width" yaml:"width"`
	// RichKeypoints draws keypoint size and orientation at both ends of each
	// drawn match.
	RichKeypoints bool `json:"rich_keypoints" yaml:"rich_keypoints"`
}

// DefaultOptions returns the first 20 matches scaled to 1000 pixels wide.
func DefaultOptions() Options {
	return Options{Limit: 20, Width: 1000}
}

// Validate checks the options.
func (o Options) Validate() error {
	if o.Limit < 0 {
		return common.ConfigError("render", "limit must not be negative, got %d", o.Limit)
	}
	if o.Width < 0 {
		return common.ConfigError("render", "width must not be negative, got %d", o.Width)
	}
	return nil
}

// Composite is the rendered side-by-side image.
type Composite struct {
	// Width of the composite in pixels.
	Width int
	// Height of the composite in pixels.
	Height int
	// Drawn is the number of match lines in the image.
	Drawn int

	mat gocv.Mat
}

// Mat returns the composite pixels (3-channel BGR). Treat as read-only.
func (c *Composite) Mat() gocv.Mat {
	return c.mat
}

// ToImage converts the composite to a Go image.
func (c *Composite) ToImage() (image.Image, error) {
	return c.mat.ToImage()
}

// Save writes the composite to path, overwriting any existing file. An empty
// path writes DefaultOutputPath.
func (c *Composite) Save(path string) error {
	if path == "" {
		path = DefaultOutputPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return common.RenderError("save", err, "cannot create output directory %s", dir)
		}
	}
	if !gocv.IMWrite(path, c.mat) {
		return common.RenderError("save", nil, "failed to write composite to %s", path)
	}
	return nil
}

// Close releases the composite pixels.
func (c *Composite) Close() error {
	if c == nil {
		return nil
	}
	return c.mat.Close()
}

// Render places a and b side by side and connects at most opts.Limit matched
// keypoint pairs. The inputs are only read.
//
// Returns a RenderError when either image is empty, the two images have
// different pixel types, or a match refers to a keypoint that does not exist.
func Render(a *images.Image, kpA features.Keypoints, b *images.Image, kpB features.Keypoints,
	matches []matcher.Match, opts Options,
) (*Composite, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if a.Empty() || b.Empty() {
		return nil, common.RenderError("render", nil, "cannot compose an empty image")
	}
	if a.Mat().Type() != b.Mat().Type() {
		return nil, common.RenderError("render", nil,
			"incompatible buffer types: %v vs %v", a.Mat().Type(), b.Mat().Type())
	}

	selected := SelectMatches(matches, opts.Limit, opts.SortByDistance)
	for i, m := range selected {
		if m.QueryIdx < 0 || m.QueryIdx >= len(kpA) || m.TrainIdx < 0 || m.TrainIdx >= len(kpB) {
			return nil, common.RenderError("render", nil,
				"match %d refers to keypoints (%d, %d) outside (%d, %d)", i, m.QueryIdx, m.TrainIdx, len(kpA), len(kpB))
		}
	}

	out, err := sideBySide(a.Mat(), b.Mat())
	if err != nil {
		return nil, err
	}

	offset := float32(a.Width)
	for _, m := range selected {
		p, q := kpA[m.QueryIdx], kpB[m.TrainIdx]
		from := image.Pt(round(p.X), round(p.Y))
		to := image.Pt(round(q.X+offset), round(q.Y))
		gocv.Circle(&out, from, 3, matchColor, 1)
		gocv.Circle(&out, to, 3, matchColor, 1)
		gocv.Line(&out, from, to, matchColor, 1)
		if opts.RichKeypoints {
			drawKeypoint(&out, p, 0)
			drawKeypoint(&out, q, offset)
		}
	}

	if opts.Width > 0 && opts.Width != out.Cols() {
		scaled := gocv.NewMat()
		scale := float64(opts.Width) / float64(out.Cols())
		gocv.Resize(out, &scaled, image.Point{}, scale, scale, gocv.InterpolationLinear)
		out.Close()
		out = scaled
	}

	return &Composite{
		Width:  out.Cols(),
		Height: out.Rows(),
		Drawn:  len(selected),
		mat:    out,
	}, nil
}

// sideBySide converts both images to BGR, pads the shorter one at the bottom
// and concatenates them horizontally.
func sideBySide(a, b gocv.Mat) (gocv.Mat, error) {
	height := a.Rows()
	if b.Rows() > height {
		height = b.Rows()
	}

	left, err := toBGR(a, height)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer left.Close()
	right, err := toBGR(b, height)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer right.Close()

	out := gocv.NewMat()
	gocv.Hconcat(left, right, &out)
	if out.Empty() {
		out.Close()
		return gocv.NewMat(), common.RenderError("render", nil, "composite is empty")
	}
	return out, nil
}

// toBGR returns a 3-channel copy of src padded with black rows to height.
func toBGR(src gocv.Mat, height int) (gocv.Mat, error) {
	bgr := gocv.NewMat()
	switch src.Channels() {
	case 1:
		gocv.CvtColor(src, &bgr, gocv.ColorGrayToBGR)
	case 3:
		src.CopyTo(&bgr)
	default:
		bgr.Close()
		return gocv.NewMat(), common.RenderError("render", nil, "unsupported channel count %d", src.Channels())
	}

	if pad := height - bgr.Rows(); pad > 0 {
		padded := gocv.NewMat()
		gocv.CopyMakeBorder(bgr, &padded, 0, pad, 0, 0, gocv.BorderConstant, color.RGBA{})
		bgr.Close()
		bgr = padded
	}
	return bgr, nil
}

// SelectMatches returns the matches to draw: the first limit in emission
// order, or the limit closest when byDistance is set. limit <= 0 selects none.
func SelectMatches(matches []matcher.Match, limit int, byDistance bool) []matcher.Match {
	if limit <= 0 {
		return nil
	}
	if byDistance {
		matches = matcher.SortByDistance(matches)
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func round(v float32) int {
	return int(math32.Floor(v + 0.5))
}

// drawKeypoint draws a circle of the keypoint's size and a radius along its
// orientation. xOffset shifts the keypoint into the right half.
func drawKeypoint(img *gocv.Mat, kp features.Keypoint, xOffset float32) {
	radius := kp.Size / 2
	if radius < 1 {
		radius = 1
	}
	cx, cy := kp.X+xOffset, kp.Y
	center := image.Pt(round(cx), round(cy))
	dx, dy := kp.Direction()
	tip := image.Pt(round(cx+dx*radius), round(cy+dy*radius))

	gocv.Circle(img, center, round(radius), keypointColor, 1)
	gocv.Line(img, center, tip, keypointColor, 1)
}
