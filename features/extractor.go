package features

import (
	"sort"

	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-sigverify/common"
	"github.com/nvr-ai/go-sigverify/images"
)

// ScoreType selects how ORB ranks FAST corners.
type ScoreType string

const (
	// ScoreHarris ranks corners by the Harris measure.
	ScoreHarris ScoreType = "harris"
	// ScoreFAST ranks corners by the FAST score.
	ScoreFAST ScoreType = "fast"
)

// Config holds the ORB detector and descriptor parameters.
type Config struct {
	// MaxKeypoints bounds the number of retained keypoints. Default: 500.
	MaxKeypoints int `json:"max_keypoints" yaml:"max_keypoints"`
	// ScaleFactor is the pyramid decimation ratio. Default: 1.2.
	ScaleFactor float32 `json:"scale_factor" yaml:"scale_factor"`
	// Levels is the number of pyramid levels. Default: 8.
	Levels int `json:"levels" yaml:"levels"`
	// EdgeThreshold is the border where no features are detected. Default: 31.
	EdgeThreshold int `json:"edge_threshold" yaml:"edge_threshold"`
	// FirstLevel is the pyramid level of the source image. Default: 0.
	FirstLevel int `json:"first_level" yaml:"first_level"`
	// WTAK is the number of points compared per descriptor element. Default: 2.
	WTAK int `json:"wta_k" yaml:"wta_k"`
	// Score selects the ranking measure. Default: harris.
	Score ScoreType `json:"score" yaml:"score"`
	// PatchSize is the side of the sampling patch. Default: 31.
	PatchSize int `json:"patch_size" yaml:"patch_size"`
	// FastThreshold is the FAST intensity threshold. Default: 20.
	FastThreshold int `json:"fast_threshold" yaml:"fast_threshold"`
}

// DefaultConfig returns the OpenCV ORB defaults.
func DefaultConfig() Config {
	return Config{
		MaxKeypoints:  500,
		ScaleFactor:   1.2,
		Levels:        8,
		EdgeThreshold: 31,
		FirstLevel:    0,
		WTAK:          2,
		Score:         ScoreHarris,
		PatchSize:     31,
		FastThreshold: 20,
	}
}

// Validate checks the detector parameters.
func (c Config) Validate() error {
	switch {
	case c.MaxKeypoints <= 0:
		return common.ConfigError("extract", "max keypoints must be positive, got %d", c.MaxKeypoints)
	case c.ScaleFactor <= 1:
		return common.ConfigError("extract", "scale factor must be greater than 1, got %.2f", c.ScaleFactor)
	case c.Levels <= 0:
		return common.ConfigError("extract", "levels must be positive, got %d", c.Levels)
	case c.PatchSize < 2:
		return common.ConfigError("extract", "patch size must be at least 2, got %d", c.PatchSize)
	case c.EdgeThreshold < 0:
		return common.ConfigError("extract", "edge threshold must not be negative, got %d", c.EdgeThreshold)
	case c.WTAK < 2 || c.WTAK > 4:
		return common.ConfigError("extract", "WTA_K must be 2, 3 or 4, got %d", c.WTAK)
	case c.Score != ScoreHarris && c.Score != ScoreFAST:
		return common.ConfigError("extract", "unknown score type %q", c.Score)
	}
	return nil
}

// Extractor wraps an OpenCV ORB instance.
//
// An Extractor is not safe for concurrent use.
type Extractor struct {
	cfg Config
	orb gocv.ORB
}

// NewExtractor validates cfg and creates the ORB detector. Close must be
// called to release it.
func NewExtractor(cfg Config) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	score := gocv.ORBScoreTypeHarris
	if cfg.Score == ScoreFAST {
		score = gocv.ORBScoreTypeFAST
	}

	return &Extractor{
		cfg: cfg,
		orb: gocv.NewORBWithParams(cfg.MaxKeypoints, cfg.ScaleFactor, cfg.Levels, cfg.EdgeThreshold,
			cfg.FirstLevel, cfg.WTAK, score, cfg.PatchSize, cfg.FastThreshold),
	}, nil
}

// Extract detects keypoints in img and computes their descriptors.
//
// Keypoints are ranked by response (strongest first, ties keep detector
// order) and truncated to MaxKeypoints. keypoints[i] always describes
// descriptors.Descriptors[i]. An image without texture yields empty results
// and a nil error.
func (e *Extractor) Extract(img *images.Image) (Keypoints, DescriptorSet, error) {
	if img.Empty() {
		return nil, DescriptorSet{}, nil
	}

	mask := gocv.NewMat()
	defer mask.Close()

	kps, desc := e.orb.DetectAndCompute(img.Mat(), mask)
	defer desc.Close()

	set, err := descriptorSetFromMat(desc)
	if err != nil {
		return nil, DescriptorSet{}, common.FeatureError("extract", "%s: %v", img.Path, err)
	}
	if len(kps) != set.Len() {
		return nil, DescriptorSet{}, common.FeatureError("extract",
			"%s: %d keypoints but %d descriptors", img.Path, len(kps), set.Len())
	}

	keypoints := make(Keypoints, len(kps))
	for i, kp := range kps {
		keypoints[i] = fromGoCV(kp)
	}

	keypoints, set = rank(keypoints, set, e.cfg.MaxKeypoints)
	return keypoints, set, nil
}

// Close releases the ORB detector.
func (e *Extractor) Close() error {
	return e.orb.Close()
}

// rank orders keypoints and descriptors together by descending response and
// keeps at most limit of them.
func rank(keypoints Keypoints, set DescriptorSet, limit int) (Keypoints, DescriptorSet) {
	order := make([]int, len(keypoints))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return keypoints[order[a]].Response > keypoints[order[b]].Response
	})
	if len(order) > limit {
		order = order[:limit]
	}

	rankedKps := make(Keypoints, len(order))
	rankedDesc := make([]Descriptor, len(order))
	for i, idx := range order {
		rankedKps[i] = keypoints[idx]
		rankedDesc[i] = set.Descriptors[idx]
	}
	return rankedKps, DescriptorSet{Length: set.Length, Descriptors: rankedDesc}
}
