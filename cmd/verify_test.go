package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-sigverify/decision"
	"github.com/nvr-ai/go-sigverify/verifier"
)

func TestPrintVerifyJSON(t *testing.T) {
	verdict, err := decision.Decide(120, 100)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, printVerifyJSON(&buf, &verifier.Result{
		RunID:              "run-1",
		Verdict:            verdict,
		Candidates:         480,
		ReferenceKeypoints: 500,
		TestKeypoints:      490,
		HashDistance:       12,
		OutputPath:         "match_result.png",
	}))

	var out VerifyOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "MATCH", out.Verdict)
	assert.Equal(t, 120, out.GoodMatches)
	assert.Equal(t, 100, out.ConfidencePercent)
	assert.Equal(t, 480, out.Candidates)
	assert.Equal(t, "match_result.png", out.OutputPath)
}

func TestRevealConfidence(t *testing.T) {
	verdict, err := decision.Decide(37, 100)
	require.NoError(t, err)

	var buf bytes.Buffer
	revealConfidence(&buf, verdict)
	assert.Contains(t, buf.String(), "37%")
	assert.Contains(t, buf.String(), "Confidence")
}

func TestVerifyCommandFlags(t *testing.T) {
	for _, name := range []string{"threshold", "output", "limit", "sort-by-distance", "json", "profile", "no-animate"} {
		assert.NotNil(t, verifyCmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "100", verifyCmd.Flags().Lookup("threshold").DefValue)
}
