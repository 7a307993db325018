package profiler

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageProfiler(t *testing.T) {
	p := New()

	p.recordOperationTime("extract", 4*time.Millisecond)
	p.recordOperationTime("normalize", 2*time.Millisecond)
	p.recordOperationTime("extract", 6*time.Millisecond)

	timings := p.Timings()
	require.Len(t, timings, 2)

	assert.Equal(t, "extract", timings[0].Name)
	assert.Equal(t, int64(2), timings[0].Count)
	assert.Equal(t, 4*time.Millisecond, timings[0].Min)
	assert.Equal(t, 6*time.Millisecond, timings[0].Max)
	assert.Equal(t, 5*time.Millisecond, timings[0].Average())
	assert.Equal(t, "normalize", timings[1].Name)

	var buf bytes.Buffer
	p.Report(&buf)
	assert.Contains(t, buf.String(), "STAGE TIMINGS")
	assert.Contains(t, buf.String(), "extract: avg=5ms")
}

func TestStartOperationConcurrent(t *testing.T) {
	p := New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.StartOperation("match")()
		}()
	}
	wg.Wait()

	timings := p.Timings()
	require.Len(t, timings, 1)
	assert.Equal(t, int64(8), timings[0].Count)
}

func TestNilProfiler(t *testing.T) {
	var p *StageProfiler
	p.StartOperation("noop")()
	assert.Nil(t, p.Timings())
	p.Report(&bytes.Buffer{})
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "2.0 MB", formatBytes(2*1024*1024))
}

func TestStageTimingAverageEmpty(t *testing.T) {
	assert.Zero(t, StageTiming{}.Average())
}
