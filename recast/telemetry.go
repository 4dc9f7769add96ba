package recast

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// TelemetryType names a timed build phase.
type TelemetryType int

const (
	RC_TIMER_RASTERIZE_TRIANGLES TelemetryType = iota
	RC_TIMER_RASTERIZE_SPHERE
	RC_TIMER_RASTERIZE_CAPSULE
	RC_TIMER_RASTERIZE_CYLINDER
	RC_TIMER_RASTERIZE_BOX
	RC_TIMER_RASTERIZE_CONVEX
	RC_TIMER_FILTER_LOW_OBSTACLES
	RC_TIMER_FILTER_BORDER
	RC_TIMER_FILTER_WALKABLE
	RC_TIMER_BUILD_COMPACTHEIGHTFIELD
	RC_TIMER_ERODE_AREA
	RC_TIMER_MEDIAN_AREA
	RC_TIMER_MARK_BOX_AREA
	RC_TIMER_MARK_CYLINDER_AREA
	RC_TIMER_MARK_CONVEXPOLY_AREA
	RC_TIMER_DISTANCEFIELD
	RC_TIMER_DISTANCEFIELD_DIST
	RC_TIMER_DISTANCEFIELD_BLUR
	RC_TIMER_REGIONS
	RC_TIMER_REGIONS_WATERSHED
	RC_TIMER_REGIONS_EXPAND
	RC_TIMER_REGIONS_FLOOD
	RC_TIMER_REGIONS_FILTER
	RC_TIMER_CONTOURS
	RC_TIMER_CONTOURS_TRACE
	RC_TIMER_CONTOURS_WALK
	RC_TIMER_CONTOURS_SIMPLIFY
	RC_TIMER_POLYMESH
	RC_TIMER_MERGE_POLYMESH
	RC_TIMER_POLYMESHDETAIL
	RC_TIMER_MERGE_POLYMESHDETAIL
	RC_TIMER_BUILD_LAYERS
	RC_MAX_TIMERS
)

var telemetryNames = [RC_MAX_TIMERS]string{
	"RASTERIZE_TRIANGLES",
	"RASTERIZE_SPHERE",
	"RASTERIZE_CAPSULE",
	"RASTERIZE_CYLINDER",
	"RASTERIZE_BOX",
	"RASTERIZE_CONVEX",
	"FILTER_LOW_OBSTACLES",
	"FILTER_BORDER",
	"FILTER_WALKABLE",
	"BUILD_COMPACTHEIGHTFIELD",
	"ERODE_AREA",
	"MEDIAN_AREA",
	"MARK_BOX_AREA",
	"MARK_CYLINDER_AREA",
	"MARK_CONVEXPOLY_AREA",
	"DISTANCEFIELD",
	"DISTANCEFIELD_DIST",
	"DISTANCEFIELD_BLUR",
	"REGIONS",
	"REGIONS_WATERSHED",
	"REGIONS_EXPAND",
	"REGIONS_FLOOD",
	"REGIONS_FILTER",
	"CONTOURS",
	"CONTOURS_TRACE",
	"CONTOURS_WALK",
	"CONTOURS_SIMPLIFY",
	"POLYMESH",
	"MERGE_POLYMESH",
	"POLYMESHDETAIL",
	"MERGE_POLYMESHDETAIL",
	"BUILD_LAYERS",
}

func (t TelemetryType) String() string {
	if t < 0 || t >= RC_MAX_TIMERS {
		return "UNKNOWN"
	}
	return telemetryNames[t]
}

// Telemetry receives phase timings and warnings from the build steps.
// Passing nil to any build function is the same as passing NoopTelemetry.
type Telemetry interface {
	StartTimer(t TelemetryType)
	StopTimer(t TelemetryType)
	Warn(msg string)
}

// NoopTelemetry discards everything.
type NoopTelemetry struct{}

func (NoopTelemetry) StartTimer(TelemetryType) {}
func (NoopTelemetry) StopTimer(TelemetryType)  {}
func (NoopTelemetry) Warn(string)              {}

func startTimer(ctx Telemetry, t TelemetryType) {
	if ctx != nil {
		ctx.StartTimer(t)
	}
}

func stopTimer(ctx Telemetry, t TelemetryType) {
	if ctx != nil {
		ctx.StopTimer(t)
	}
}

func warn(ctx Telemetry, msg string) {
	if ctx != nil {
		ctx.Warn(msg)
	}
}

// Timings accumulates phase durations from any number of goroutines.
type Timings struct {
	totals [RC_MAX_TIMERS]atomic.Int64
	counts [RC_MAX_TIMERS]atomic.Int64

	mu       sync.Mutex
	warnings []string
}

// Add records one completed run of phase t.
func (tm *Timings) Add(t TelemetryType, d time.Duration) {
	tm.totals[t].Add(int64(d))
	tm.counts[t].Add(1)
}

func (tm *Timings) Total(t TelemetryType) time.Duration {
	return time.Duration(tm.totals[t].Load())
}

func (tm *Timings) Count(t TelemetryType) int {
	return int(tm.counts[t].Load())
}

func (tm *Timings) AddWarning(msg string) {
	tm.mu.Lock()
	tm.warnings = append(tm.warnings, msg)
	tm.mu.Unlock()
}

func (tm *Timings) Warnings() []string {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return append([]string(nil), tm.warnings...)
}

// PhaseTiming is one line of a Timings report.
type PhaseTiming struct {
	Phase TelemetryType
	Total time.Duration
	Count int
}

// Report lists the phases that ran at least once, sorted by name.
func (tm *Timings) Report() []PhaseTiming {
	var res []PhaseTiming
	for t := TelemetryType(0); t < RC_MAX_TIMERS; t++ {
		if n := tm.Count(t); n > 0 {
			res = append(res, PhaseTiming{Phase: t, Total: tm.Total(t), Count: n})
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Phase.String() < res[j].Phase.String() })
	return res
}

// Recorder is a single-goroutine Telemetry that keeps its own start
// timestamps and flushes finished phases into a shared Timings.
type Recorder struct {
	timings *Timings
	starts  [RC_MAX_TIMERS]time.Time
	onWarn  func(string)
}

// NewRecorder returns a Recorder feeding tm. onWarn may be nil.
func NewRecorder(tm *Timings, onWarn func(string)) *Recorder {
	return &Recorder{timings: tm, onWarn: onWarn}
}

func (r *Recorder) StartTimer(t TelemetryType) {
	r.starts[t] = time.Now()
}

func (r *Recorder) StopTimer(t TelemetryType) {
	if r.starts[t].IsZero() {
		return
	}
	r.timings.Add(t, time.Since(r.starts[t]))
	r.starts[t] = time.Time{}
}

func (r *Recorder) Warn(msg string) {
	r.timings.AddWarning(msg)
	if r.onWarn != nil {
		r.onWarn(msg)
	}
}
