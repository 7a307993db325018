// Package verifier runs one signature verification: normalize both inputs,
// extract ORB features, match them, decide and render the composite.
package verifier

import (
	"image"

	"github.com/corona10/goimagehash"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-sigverify/common"
	"github.com/nvr-ai/go-sigverify/config"
	"github.com/nvr-ai/go-sigverify/decision"
	"github.com/nvr-ai/go-sigverify/features"
	"github.com/nvr-ai/go-sigverify/images"
	"github.com/nvr-ai/go-sigverify/logging"
	"github.com/nvr-ai/go-sigverify/matcher"
	"github.com/nvr-ai/go-sigverify/profiler"
	"github.com/nvr-ai/go-sigverify/render"
)

// Request names the two images to compare.
type Request struct {
	// ReferencePath is the known-genuine signature.
	ReferencePath string
	// TestPath is the signature under test.
	TestPath string
}

// Result is the outcome of a successful run. It owns no OpenCV memory.
type Result struct {
	// RunID identifies the run in logs.
	RunID string
	// Verdict holds the outcome, accepted count, threshold and confidence.
	Verdict decision.Verdict
	// Candidates is the number of reference descriptors put through the
	// ratio test.
	Candidates int
	// ReferenceKeypoints and TestKeypoints are the per-image keypoint counts.
	ReferenceKeypoints int
	TestKeypoints      int
	// HashDistance is the Hamming distance between difference hashes of the
	// two normalized images. Diagnostic only, it does not affect Verdict.
	HashDistance int
	// Composite is the rendered side-by-side image.
	Composite image.Image
	// OutputPath is where Composite was written.
	OutputPath string
	// Profile holds per-stage timings of the run.
	Profile *profiler.StageProfiler
}

// Verifier runs verifications with a fixed configuration. Every call to
// Verify loads fresh images and allocates its own detector and matcher, so
// runs share no state.
type Verifier struct {
	cfg    config.Config
	logger *zap.Logger
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(v *Verifier) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// New validates the stage parameters of cfg. The threshold is checked per
// run by the decision stage.
func New(cfg config.Config, opts ...Option) (*Verifier, error) {
	if err := cfg.ValidateStages(); err != nil {
		return nil, err
	}
	v := &Verifier{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.Named("verifier")
	return v, nil
}

// Config returns the configuration the verifier runs with.
func (v *Verifier) Config() config.Config {
	return v.cfg
}

// Verify compares req.TestPath against req.ReferencePath.
//
// Either a full Result is returned or a nil Result and a *common.Error:
//   - LoadError when a path is empty (KindMissingInput), unreadable or undecodable.
//   - FeatureError when either image yields no descriptors.
//   - ConfigError when the threshold is not positive.
//   - RenderError when the composite cannot be built or written.
func (v *Verifier) Verify(req Request) (*Result, error) {
	runID := uuid.NewString()
	log := logging.WithOperation(v.logger, "verify", runID)
	prof := profiler.New()

	if req.ReferencePath == "" {
		return nil, common.MissingInputError("verify", "reference")
	}
	if req.TestPath == "" {
		return nil, common.MissingInputError("verify", "test")
	}
	if v.cfg.Threshold <= 0 {
		return nil, common.ConfigError("decide", "threshold must be positive, got %d", v.cfg.Threshold)
	}

	log.Info("loading and processing images",
		zap.String("reference", req.ReferencePath), zap.String("test", req.TestPath))

	done := prof.StartOperation("normalize")
	ref, err := images.Normalize(req.ReferencePath, v.cfg.Normalize)
	if err != nil {
		done()
		log.Error("reference image failed to load", zap.Error(err))
		return nil, err
	}
	defer ref.Close()

	test, err := images.Normalize(req.TestPath, v.cfg.Normalize)
	done()
	if err != nil {
		log.Error("test image failed to load", zap.Error(err))
		return nil, err
	}
	defer test.Close()

	log.Debug("images normalized",
		zap.String("reference_checksum", ref.Checksum()),
		zap.String("test_checksum", test.Checksum()),
		zap.Int("reference_width", ref.Width), zap.Int("reference_height", ref.Height),
		zap.Int("test_width", test.Width), zap.Int("test_height", test.Height))

	hashDistance := v.hashDistance(ref, test, log)

	extractor, err := features.NewExtractor(v.cfg.Features)
	if err != nil {
		return nil, err
	}
	defer extractor.Close()

	done = prof.StartOperation("extract")
	kpRef, descRef, err := extractor.Extract(ref)
	if err != nil {
		done()
		return nil, err
	}
	kpTest, descTest, err := extractor.Extract(test)
	done()
	if err != nil {
		return nil, err
	}

	log.Info("keypoints detected",
		zap.Int("reference_keypoints", len(kpRef)), zap.Int("test_keypoints", len(kpTest)))

	if descRef.Empty() || descTest.Empty() {
		err := common.FeatureError("extract", "reference has %d descriptors, test has %d", descRef.Len(), descTest.Len())
		log.Error("insufficient features", zap.Error(err))
		return nil, err
	}

	m, err := matcher.NewMatcher(v.cfg.Matcher)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	done = prof.StartOperation("match")
	matches, err := m.Match(descRef, descTest)
	done()
	if err != nil {
		return nil, err
	}

	done = prof.StartOperation("decide")
	verdict, err := decision.Decide(len(matches.Accepted), v.cfg.Threshold)
	done()
	if err != nil {
		return nil, err
	}

	log.Info("verification result",
		zap.String("verdict", string(verdict.Outcome)),
		zap.Int("good_matches", verdict.Accepted),
		zap.Int("candidates", matches.Candidates),
		zap.Int("confidence", verdict.Confidence))

	done = prof.StartOperation("render")
	composite, err := render.Render(ref, kpRef, test, kpTest, matches.Accepted, v.cfg.Render)
	if err != nil {
		done()
		log.Error("render failed", zap.Error(err))
		return nil, err
	}
	defer composite.Close()

	out, err := composite.ToImage()
	if err != nil {
		done()
		return nil, common.RenderError("render", err, "cannot convert composite")
	}

	outputPath := v.cfg.OutputPath
	if outputPath == "" {
		outputPath = render.DefaultOutputPath
	}
	err = composite.Save(outputPath)
	done()
	if err != nil {
		log.Error("saving match image failed", zap.Error(err))
		return nil, err
	}
	log.Info("match image saved", zap.String("path", outputPath))

	return &Result{
		RunID:              runID,
		Verdict:            verdict,
		Candidates:         matches.Candidates,
		ReferenceKeypoints: len(kpRef),
		TestKeypoints:      len(kpTest),
		HashDistance:       hashDistance,
		Composite:          out,
		OutputPath:         outputPath,
		Profile:            prof,
	}, nil
}

// hashDistance returns the difference-hash distance of the two images, or -1
// when it cannot be computed.
func (v *Verifier) hashDistance(a, b *images.Image, log *zap.Logger) int {
	ha, err := dHash(a)
	if err != nil {
		log.Debug("difference hash unavailable", zap.String("path", a.Path), zap.Error(err))
		return -1
	}
	hb, err := dHash(b)
	if err != nil {
		log.Debug("difference hash unavailable", zap.String("path", b.Path), zap.Error(err))
		return -1
	}
	dist, err := ha.Distance(hb)
	if err != nil {
		return -1
	}
	return dist
}

func dHash(img *images.Image) (*goimagehash.ImageHash, error) {
	pixels, err := img.Mat().ToImage()
	if err != nil {
		return nil, err
	}
	return goimagehash.DifferenceHash(pixels)
}
