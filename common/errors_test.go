package common

import (
	"fmt"
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
		text string
	}{
		{"load", LoadError("normalize", os.ErrNotExist, "cannot read %s", "a.png"), KindLoad, "LoadError"},
		{"missing", MissingInputError("verify", "reference"), KindMissingInput, "LoadError"},
		{"feature", FeatureError("extract", "no descriptors in %s", "a.png"), KindFeature, "FeatureError"},
		{"config", ConfigError("decide", "threshold must be positive, got %d", 0), KindConfig, "ConfigError"},
		{"render", RenderError("render", nil, "channel mismatch"), KindRender, "RenderError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, IsKind(tt.err, tt.kind))
			assert.Contains(t, tt.err.Error(), tt.text)
		})
	}
}

func TestMissingInputIsLoadError(t *testing.T) {
	err := MissingInputError("verify", "test")
	assert.True(t, IsKind(err, KindLoad))
	assert.False(t, IsKind(LoadError("normalize", nil, "bad"), KindMissingInput))
}

func TestCauseIsPreserved(t *testing.T) {
	err := LoadError("normalize", os.ErrNotExist, "cannot read image")
	assert.True(t, errors.Is(err, os.ErrNotExist))

	wrapped := fmt.Errorf("run: %w", err)
	var e *Error
	require.True(t, errors.As(wrapped, &e))
	assert.Equal(t, "normalize", e.Op)
	assert.Equal(t, os.ErrNotExist, errors.Cause(e.Cause))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Please select both signature images.", UserMessage(MissingInputError("verify", "test")))
	assert.Equal(t, "Insufficient features in one or both images.", UserMessage(FeatureError("extract", "empty")))
	assert.Equal(t, "threshold must be positive, got -1", UserMessage(ConfigError("decide", "threshold must be positive, got %d", -1)))
	assert.Equal(t, "boom", UserMessage(errors.Wrap(errors.New("boom"), "ctx")))
	assert.Empty(t, UserMessage(nil))
}
