package recast

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelemetryTypeString(t *testing.T) {
	assert.Equal(t, "RASTERIZE_TRIANGLES", RC_TIMER_RASTERIZE_TRIANGLES.String())
	assert.Equal(t, "BUILD_LAYERS", RC_TIMER_BUILD_LAYERS.String())
	assert.Equal(t, "UNKNOWN", RC_MAX_TIMERS.String())
	assert.Equal(t, "UNKNOWN", TelemetryType(-1).String())
}

func TestTimingsReport(t *testing.T) {
	var tm Timings
	tm.Add(RC_TIMER_POLYMESH, 3*time.Millisecond)
	tm.Add(RC_TIMER_CONTOURS, time.Millisecond)
	tm.Add(RC_TIMER_POLYMESH, 2*time.Millisecond)

	assert.Equal(t, 5*time.Millisecond, tm.Total(RC_TIMER_POLYMESH))
	assert.Equal(t, 2, tm.Count(RC_TIMER_POLYMESH))
	assert.Zero(t, tm.Count(RC_TIMER_BUILD_LAYERS))

	report := tm.Report()
	require.Len(t, report, 2)
	assert.Equal(t, PhaseTiming{Phase: RC_TIMER_CONTOURS, Total: time.Millisecond, Count: 1}, report[0])
	assert.Equal(t, PhaseTiming{Phase: RC_TIMER_POLYMESH, Total: 5 * time.Millisecond, Count: 2}, report[1])
}

func TestTimingsConcurrent(t *testing.T) {
	var tm Timings
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := NewRecorder(&tm, nil)
			for j := 0; j < 100; j++ {
				rec.StartTimer(RC_TIMER_REGIONS)
				rec.StopTimer(RC_TIMER_REGIONS)
			}
			rec.Warn("tile")
		}()
	}
	wg.Wait()
	assert.Equal(t, 800, tm.Count(RC_TIMER_REGIONS))
	assert.Len(t, tm.Warnings(), 8)
}

func TestRecorder(t *testing.T) {
	var tm Timings
	var got []string
	rec := NewRecorder(&tm, func(msg string) { got = append(got, msg) })

	rec.StopTimer(RC_TIMER_CONTOURS)
	assert.Zero(t, tm.Count(RC_TIMER_CONTOURS), "stop without start is ignored")

	rec.StartTimer(RC_TIMER_CONTOURS)
	time.Sleep(time.Millisecond)
	rec.StopTimer(RC_TIMER_CONTOURS)
	rec.StopTimer(RC_TIMER_CONTOURS)
	assert.Equal(t, 1, tm.Count(RC_TIMER_CONTOURS))
	assert.GreaterOrEqual(t, tm.Total(RC_TIMER_CONTOURS), time.Millisecond)

	rec.Warn("bad triangulation")
	assert.Equal(t, []string{"bad triangulation"}, got)
	assert.Equal(t, []string{"bad triangulation"}, tm.Warnings())

	// Warnings returns a copy.
	tm.Warnings()[0] = "changed"
	assert.Equal(t, "bad triangulation", tm.Warnings()[0])
}

func TestPipelineRecordsPhases(t *testing.T) {
	p := runPipeline(t, (&testGeom{}).quad(0, 0, 10, 10, 0), testConfig())
	for _, phase := range []TelemetryType{
		RC_TIMER_RASTERIZE_TRIANGLES,
		RC_TIMER_FILTER_LOW_OBSTACLES,
		RC_TIMER_FILTER_BORDER,
		RC_TIMER_FILTER_WALKABLE,
		RC_TIMER_BUILD_COMPACTHEIGHTFIELD,
		RC_TIMER_ERODE_AREA,
		RC_TIMER_REGIONS,
		RC_TIMER_CONTOURS,
		RC_TIMER_POLYMESH,
		RC_TIMER_POLYMESHDETAIL,
	} {
		assert.Positive(t, p.tm.Count(phase), phase.String())
	}
	assert.Empty(t, p.tm.Warnings())
}

func TestNoopTelemetry(t *testing.T) {
	var ctx Telemetry = NoopTelemetry{}
	assert.NotPanics(t, func() {
		ctx.StartTimer(RC_TIMER_POLYMESH)
		ctx.StopTimer(RC_TIMER_POLYMESH)
		ctx.Warn("ignored")
	})
	chf := flatField(t, 6)
	assert.NoError(t, RcPartition(ctx, chf, PartitionMonotone, 0, 0))
}
