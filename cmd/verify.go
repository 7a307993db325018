package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-sigverify/common"
	"github.com/nvr-ai/go-sigverify/config"
	"github.com/nvr-ai/go-sigverify/decision"
	"github.com/nvr-ai/go-sigverify/logging"
	"github.com/nvr-ai/go-sigverify/verifier"
)

// revealStep is the delay between two confidence steps of the reveal.
const revealStep = 10 * time.Millisecond

var verifyCmd = &cobra.Command{
	Use:   "verify <reference> <test>",
	Short: "Compare a test signature against a reference signature",
	Long: `Compare a test signature against a reference signature.

This command:
1. Loads both scans as grayscale and smooths them
2. Detects ORB keypoints and computes binary descriptors
3. Matches reference descriptors against test descriptors (ratio test 0.75)
4. Reports MATCH when the number of good matches reaches the threshold
5. Writes a side-by-side image of the first matches (match_result.png)

Examples:
  # Default threshold of 100 good matches
  sigverify verify reference.png test.png

  # Stricter threshold, draw the 20 closest matches instead of the first 20
  sigverify verify reference.png test.png --threshold 200 --sort-by-distance

  # Machine readable output
  sigverify verify reference.png test.png --json`,
	Args:         cobra.MaximumNArgs(2),
	SilenceUsage: true,
	RunE:         runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().Int("threshold", decision.DefaultThreshold,
		fmt.Sprintf("Good matches needed for MATCH (%d-%d)", decision.MinThreshold, decision.MaxThreshold))
	verifyCmd.Flags().String("output", "", "Composite image path (default: match_result.png)")
	verifyCmd.Flags().Int("limit", 20, "Maximum number of match lines drawn")
	verifyCmd.Flags().Bool("sort-by-distance", false, "Draw the closest matches instead of the first ones")
	verifyCmd.Flags().Bool("json", false, "Output as JSON")
	verifyCmd.Flags().Bool("profile", false, "Print per-stage timings to stderr")
	verifyCmd.Flags().Bool("no-animate", false, "Print the confidence without the staged reveal")
}

// VerifyOutput is the JSON form of a verification.
type VerifyOutput struct {
	RunID              string `json:"run_id"`
	Verdict            string `json:"verdict"`
	GoodMatches        int    `json:"good_matches"`
	Candidates         int    `json:"candidates"`
	Threshold          int    `json:"threshold"`
	ConfidencePercent  int    `json:"confidence_percent"`
	ReferenceKeypoints int    `json:"reference_keypoints"`
	TestKeypoints      int    `json:"test_keypoints"`
	HashDistance       int    `json:"hash_distance"`
	OutputPath         string `json:"output_path"`
}

func runVerify(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")

	cfg, err := loadVerifyConfig(cmd)
	if err != nil {
		return reportError(err)
	}

	logger := zap.NewNop()
	if verbose {
		if logger, err = logging.New("debug"); err != nil {
			return err
		}
	}
	defer func() { _ = logger.Sync() }()

	v, err := verifier.New(cfg, verifier.WithLogger(logger))
	if err != nil {
		return reportError(err)
	}

	// Missing arguments become empty paths so the verifier reports them.
	req := verifier.Request{}
	if len(args) > 0 {
		req.ReferencePath = args[0]
	}
	if len(args) > 1 {
		req.TestPath = args[1]
	}

	if !jsonOutput {
		fmt.Println("🔍 Loading and processing images...")
	}

	res, err := v.Verify(req)
	if err != nil {
		return reportError(err)
	}

	if mustGetBool(cmd, "profile") {
		res.Profile.Report(os.Stderr)
	}

	if jsonOutput {
		return printVerifyJSON(os.Stdout, res)
	}

	fmt.Printf("   📄 Reference: %s (%d keypoints)\n", req.ReferencePath, res.ReferenceKeypoints)
	fmt.Printf("   📄 Test:      %s (%d keypoints)\n", req.TestPath, res.TestKeypoints)
	fmt.Printf("   🔗 Candidates: %d, threshold: %d\n", res.Candidates, res.Verdict.Threshold)

	if mustGetBool(cmd, "no-animate") {
		fmt.Printf("📊 Confidence: %d%%\n", res.Verdict.Confidence)
	} else {
		revealConfidence(os.Stdout, res.Verdict)
	}

	icon := "❌"
	if res.Verdict.IsMatch() {
		icon = "✅"
	}
	fmt.Printf("%s %s\n", icon, res.Verdict)
	fmt.Printf("💾 Match image saved to %s\n", res.OutputPath)
	return nil
}

// loadVerifyConfig reads the configuration and applies explicitly set flags
// on top of it.
func loadVerifyConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("threshold") {
		cfg.Threshold = mustGetInt(cmd, "threshold")
	}
	if flags.Changed("output") {
		cfg.OutputPath = mustGetString(cmd, "output")
	}
	if flags.Changed("limit") {
		cfg.Render.Limit = mustGetInt(cmd, "limit")
	}
	if flags.Changed("sort-by-distance") {
		cfg.Render.SortByDistance = mustGetBool(cmd, "sort-by-distance")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// revealConfidence animates the confidence percentage in steps of 2 and
// settles on the exact value.
func revealConfidence(w io.Writer, verdict decision.Verdict) {
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("📊 Confidence"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowBytes(false),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
	)

	for pct := 0; pct < verdict.Confidence; pct += 2 {
		_ = bar.Set(pct)
		time.Sleep(revealStep)
	}
	_ = bar.Set(verdict.Confidence)
	if verdict.Confidence < 100 {
		fmt.Fprintln(w)
	}
}

func printVerifyJSON(w io.Writer, res *verifier.Result) error {
	out := VerifyOutput{
		RunID:              res.RunID,
		Verdict:            string(res.Verdict.Outcome),
		GoodMatches:        res.Verdict.Accepted,
		Candidates:         res.Candidates,
		Threshold:          res.Verdict.Threshold,
		ConfidencePercent:  res.Verdict.Confidence,
		ReferenceKeypoints: res.ReferenceKeypoints,
		TestKeypoints:      res.TestKeypoints,
		HashDistance:       res.HashDistance,
		OutputPath:         res.OutputPath,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// reportError prints the presentation message for err and returns it.
func reportError(err error) error {
	fmt.Fprintf(os.Stderr, "❌ %s\n", common.UserMessage(err))
	return err
}
