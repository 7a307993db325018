// Package profiler times the stages of a verification run.
package profiler

import (
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"
)

// StageTiming is the timing of one named stage.
type StageTiming struct {
	Name  string        `json:"name"`
	Total time.Duration `json:"total"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
	Count int64         `json:"count"`
}

// Average returns Total / Count.
func (s StageTiming) Average() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// TimeTracker tracks operation timing statistics.
type TimeTracker struct {
	name      string
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

// StageProfiler records how long each stage of a run takes. It is safe for
// concurrent use and a nil *StageProfiler records nothing.
type StageProfiler struct {
	mu             sync.Mutex
	startTime      time.Time
	order          []string
	operationTimes map[string]*TimeTracker
}

// New creates a profiler whose uptime starts now.
func New() *StageProfiler {
	return &StageProfiler{
		startTime:      time.Now(),
		operationTimes: make(map[string]*TimeTracker),
	}
}

// StartOperation begins timing an operation.
//
// Arguments:
// - name: The name of the operation to track
//
// Returns:
// - A function to call when the operation completes
func (p *StageProfiler) StartOperation(name string) func() {
	if p == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		p.recordOperationTime(name, time.Since(start))
	}
}

// recordOperationTime records the completion time of an operation.
func (p *StageProfiler) recordOperationTime(name string, duration time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tracker, exists := p.operationTimes[name]
	if !exists {
		tracker = &TimeTracker{
			name:    name,
			minTime: duration,
			maxTime: duration,
		}
		p.operationTimes[name] = tracker
		p.order = append(p.order, name)
	}

	tracker.totalTime += duration
	tracker.count++

	if duration < tracker.minTime {
		tracker.minTime = duration
	}
	if duration > tracker.maxTime {
		tracker.maxTime = duration
	}
}

// Timings returns a snapshot of every stage in first-seen order.
func (p *StageProfiler) Timings() []StageTiming {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]StageTiming, 0, len(p.order))
	for _, name := range p.order {
		t := p.operationTimes[name]
		out = append(out, StageTiming{
			Name:  t.name,
			Total: t.totalTime,
			Min:   t.minTime,
			Max:   t.maxTime,
			Count: t.count,
		})
	}
	return out
}

// Report writes the stage timings and current memory usage to w.
func (p *StageProfiler) Report(w io.Writer) {
	if p == nil {
		return
	}
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	fmt.Fprintf(w, "STAGE PROFILE - %s\n", time.Now().Format("15:04:05.000"))
	fmt.Fprintf(w, "Elapsed: %v\n", time.Since(p.startTime).Truncate(time.Millisecond))

	fmt.Fprintf(w, "\nMEMORY USAGE:\n")
	fmt.Fprintf(w, "  Alloc: %s\n", formatBytes(mem.Alloc))
	fmt.Fprintf(w, "  Total Alloc: %s\n", formatBytes(mem.TotalAlloc))
	fmt.Fprintf(w, "  Heap Objects: %d\n", mem.HeapObjects)
	fmt.Fprintf(w, "  GC Cycles: %d\n", mem.NumGC)

	timings := p.Timings()
	if len(timings) > 0 {
		fmt.Fprintf(w, "\nSTAGE TIMINGS:\n")
		for _, t := range timings {
			fmt.Fprintf(w, "  %s: avg=%v, min=%v, max=%v, count=%d\n",
				t.Name, t.Average().Truncate(time.Microsecond),
				t.Min.Truncate(time.Microsecond),
				t.Max.Truncate(time.Microsecond),
				t.Count)
		}
	}
}

// formatBytes formats byte counts in human-readable format.
func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
