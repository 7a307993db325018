// Package matcher finds unambiguous correspondences between two descriptor
// sets with a Hamming-distance k-nearest-neighbour search and Lowe's ratio
// test.
package matcher

import (
	"sort"

	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-sigverify/common"
	"github.com/nvr-ai/go-sigverify/features"
)

// DefaultRatio is the Lowe ratio used when none is configured.
const DefaultRatio = 0.75

// Config controls the ratio test.
type Config struct {
	// Ratio is the maximum accepted best/second-best distance ratio, exclusive.
	// Default: 0.75.
	Ratio float64 `json:"ratio" yaml:"ratio"`
	// AllowSharedTrain lets several query descriptors be accepted against the
	// same train descriptor. When false (the default) the first accepted match
	// in emission order claims the train descriptor and later ones are dropped,
	// which bounds the result by min(|A|, |B|).
	AllowSharedTrain bool `json:"allow_shared_train" yaml:"allow_shared_train"`
}

// DefaultConfig returns a ratio of 0.75 with one match per train descriptor.
func DefaultConfig() Config {
	return Config{Ratio: DefaultRatio}
}

// Validate checks the ratio.
func (c Config) Validate() error {
	if c.Ratio <= 0 || c.Ratio >= 1 {
		return common.ConfigError("match", "ratio must be in (0, 1), got %.2f", c.Ratio)
	}
	return nil
}

// Match is an accepted correspondence from a descriptor of set A (query) to a
// descriptor of set B (train).
type Match struct {
	// QueryIdx indexes set A and its keypoints.
	QueryIdx int `json:"query_idx"`
	// TrainIdx indexes set B and its keypoints.
	TrainIdx int `json:"train_idx"`
	// Distance is the Hamming distance to the nearest neighbour.
	Distance float64 `json:"distance"`
	// SecondDistance is the Hamming distance to the second nearest neighbour.
	SecondDistance float64 `json:"second_distance"`
}

// Result is the output of one A->B matching pass.
type Result struct {
	// Accepted holds the matches that survived the ratio test, in the order
	// the nearest-neighbour search emitted them (ascending QueryIdx).
	Accepted []Match
	// Candidates is the number of query descriptors that had two neighbours
	// and were therefore put through the ratio test.
	Candidates int
}

// Matcher wraps an OpenCV brute-force Hamming matcher.
//
// There is no mutual (B->A) consistency check: matching is one-directional
// and the accepted count for (A, B) can differ from (B, A).
type Matcher struct {
	cfg Config
	bf  gocv.BFMatcher
}

// NewMatcher validates cfg and creates the matcher. Close must be called to
// release it.
func NewMatcher(cfg Config) (*Matcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Matcher{
		cfg: cfg,
		bf:  gocv.NewBFMatcherWithParams(gocv.NormHamming, false),
	}, nil
}

// Match finds, for every descriptor of a, its two nearest neighbours in b and
// accepts the pair when distance(1st) < Ratio * distance(2nd).
//
// Query descriptors with fewer than two neighbours are skipped, so a set b
// with fewer than two descriptors never produces a match.
func (m *Matcher) Match(a, b features.DescriptorSet) (Result, error) {
	if a.Empty() || b.Len() < 2 {
		return Result{}, nil
	}
	if a.Length != b.Length {
		return Result{}, common.FeatureError("match", "descriptor lengths differ: %d vs %d bytes", a.Length, b.Length)
	}

	query, err := a.ToMat()
	if err != nil {
		return Result{}, common.FeatureError("match", "packing query descriptors: %v", err)
	}
	defer query.Close()

	train, err := b.ToMat()
	if err != nil {
		return Result{}, common.FeatureError("match", "packing train descriptors: %v", err)
	}
	defer train.Close()

	return m.filter(m.bf.KnnMatch(query, train, 2)), nil
}

// filter applies the ratio test and the shared-train rule to kNN output.
func (m *Matcher) filter(knn [][]gocv.DMatch) Result {
	var res Result
	claimed := make(map[int]bool)

	for _, pair := range knn {
		if len(pair) < 2 {
			continue
		}
		res.Candidates++

		best, second := pair[0], pair[1]
		if !(best.Distance < m.cfg.Ratio*second.Distance) {
			continue
		}
		if !m.cfg.AllowSharedTrain {
			if claimed[best.TrainIdx] {
				continue
			}
			claimed[best.TrainIdx] = true
		}

		res.Accepted = append(res.Accepted, Match{
			QueryIdx:       best.QueryIdx,
			TrainIdx:       best.TrainIdx,
			Distance:       best.Distance,
			SecondDistance: second.Distance,
		})
	}

	return res
}

// Close releases the OpenCV matcher.
func (m *Matcher) Close() error {
	return m.bf.Close()
}

// SortByDistance returns a copy of matches ordered by ascending distance.
// Ties keep their emission order.
func SortByDistance(matches []Match) []Match {
	sorted := make([]Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Distance < sorted[j].Distance
	})
	return sorted
}
