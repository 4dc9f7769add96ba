package logger

import (
	"go.uber.org/zap"

	"github.com/gorustyt/gorecast/recast"
)

// Telemetry is a recast.Telemetry that accumulates phase timings into a
// shared recast.Timings and logs warnings through zap. One Telemetry must
// not be used by two goroutines at once; share the Timings instead.
type Telemetry struct {
	*recast.Recorder
	log *zap.Logger
}

func NewTelemetry(log *zap.Logger, timings *recast.Timings) *Telemetry {
	t := &Telemetry{log: log}
	t.Recorder = recast.NewRecorder(timings, t.logWarn)
	return t
}

// ForTile returns a Telemetry for one tile build that tags its warnings
// with the tile coordinates.
func ForTile(log *zap.Logger, timings *recast.Timings, tx, ty int) *Telemetry {
	return NewTelemetry(log.With(zap.Int("tx", tx), zap.Int("ty", ty)), timings)
}

func (t *Telemetry) logWarn(msg string) {
	t.log.Warn(msg)
}

// LogReport writes one debug line per phase of the accumulated timings.
func LogReport(log *zap.Logger, timings *recast.Timings) {
	for _, p := range timings.Report() {
		log.Debug("phase",
			zap.Stringer("name", p.Phase),
			zap.Duration("total", p.Total),
			zap.Int("count", p.Count))
	}
}
