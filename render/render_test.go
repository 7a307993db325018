package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-sigverify/common"
	"github.com/nvr-ai/go-sigverify/features"
	"github.com/nvr-ai/go-sigverify/images"
	"github.com/nvr-ai/go-sigverify/matcher"
	"github.com/nvr-ai/go-sigverify/test"
)

func grayImage(t *testing.T, w, h int, seed int64) *images.Image {
	t.Helper()
	mat := test.NewMockSignatureGenerator(w, h).GenerateSignature(seed)
	img := images.NewImage("sig.png", mat)
	t.Cleanup(func() { img.Close() })
	return img
}

func keypoints(n int) features.Keypoints {
	kps := make(features.Keypoints, n)
	for i := range kps {
		kps[i] = features.Keypoint{X: float32(10 + i), Y: float32(20 + i), Size: 31, Angle: float32(i * 10)}
	}
	return kps
}

func TestRender(t *testing.T) {
	a := grayImage(t, 400, 200, 1)
	b := grayImage(t, 300, 260, 2)
	kps := keypoints(30)

	var matches []matcher.Match
	for i := 0; i < 30; i++ {
		matches = append(matches, matcher.Match{QueryIdx: i, TrainIdx: 29 - i, Distance: float64(i)})
	}

	opts := DefaultOptions()
	opts.RichKeypoints = true
	composite, err := Render(a, kps, b, kps, matches, opts)
	require.NoError(t, err)
	defer composite.Close()

	assert.Equal(t, 20, composite.Drawn)
	assert.Equal(t, 1000, composite.Width)
	// 700x260 native, scaled by 1000/700.
	assert.Equal(t, 371, composite.Height)
	assert.Equal(t, 3, composite.Mat().Channels())

	out := filepath.Join(t.TempDir(), "nested", DefaultOutputPath)
	require.NoError(t, composite.Save(out))
	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	img, err := composite.ToImage()
	require.NoError(t, err)
	assert.Equal(t, 1000, img.Bounds().Dx())
}

func TestRenderNativeSizeWithoutMatches(t *testing.T) {
	a := grayImage(t, 120, 80, 3)
	b := grayImage(t, 100, 80, 4)

	composite, err := Render(a, nil, b, nil, nil, Options{Limit: 20})
	require.NoError(t, err)
	defer composite.Close()

	assert.Equal(t, 220, composite.Width)
	assert.Equal(t, 80, composite.Height)
	assert.Zero(t, composite.Drawn)
}

func TestRenderErrors(t *testing.T) {
	a := grayImage(t, 100, 80, 5)
	b := grayImage(t, 100, 80, 6)

	color := gocv.NewMatWithSize(80, 100, gocv.MatTypeCV8UC3)
	colorImg := images.NewImage("color.png", color)
	defer colorImg.Close()

	_, err := Render(a, nil, colorImg, nil, nil, DefaultOptions())
	assert.True(t, common.IsKind(err, common.KindRender), "mismatched depth: %v", err)

	_, err = Render(a, keypoints(2), b, keypoints(2), []matcher.Match{{QueryIdx: 0, TrainIdx: 5}}, DefaultOptions())
	assert.True(t, common.IsKind(err, common.KindRender), "out of range: %v", err)

	blank := images.NewImage("blank.png", gocv.NewMat())
	defer blank.Close()
	_, err = Render(a, nil, blank, nil, nil, DefaultOptions())
	assert.True(t, common.IsKind(err, common.KindRender), "empty: %v", err)

	_, err = Render(a, nil, b, nil, nil, Options{Limit: -1})
	assert.True(t, common.IsKind(err, common.KindConfig), "bad options: %v", err)
}

func TestSelectMatches(t *testing.T) {
	matches := []matcher.Match{
		{QueryIdx: 0, Distance: 30},
		{QueryIdx: 1, Distance: 10},
		{QueryIdx: 2, Distance: 20},
		{QueryIdx: 3, Distance: 5},
	}

	ids := func(ms []matcher.Match) []int {
		var out []int
		for _, m := range ms {
			out = append(out, m.QueryIdx)
		}
		return out
	}

	assert.Equal(t, []int{0, 1}, ids(SelectMatches(matches, 2, false)), "emission order keeps the first N")
	assert.Equal(t, []int{3, 1}, ids(SelectMatches(matches, 2, true)), "distance order keeps the best N")
	assert.Equal(t, []int{0, 1, 2, 3}, ids(SelectMatches(matches, 10, false)))
	assert.Empty(t, SelectMatches(matches, 0, false))
}
