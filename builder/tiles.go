package builder

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/gorustyt/gorecast/logger"
	"github.com/gorustyt/gorecast/recast"
)

// ProgressFunc is called after every finished tile, failed or not. Calls
// are serialized and completed is strictly increasing.
type ProgressFunc func(completed, total int)

type tileJob struct{ tx, ty int }

// BuildTiles builds every tile of the grid on workers goroutines (GOMAXPROCS
// when workers <= 0). A failing tile does not stop the others: the results of
// the successful tiles are returned, sorted by (ty, tx), together with the
// combined error of the failed ones. ctx is checked between tiles only.
func (b *Builder) BuildTiles(ctx context.Context, workers int, progress ProgressFunc) ([]*Result, error) {
	tw, th := b.TileCount()
	total := tw * th
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, max(total, 1))

	jobs := make(chan tileJob)
	var (
		mu        sync.Mutex
		results   []*Result
		errs      error
		completed int
		wg        sync.WaitGroup
	)

	build := b.BuildTile
	if b.cfg.TileSize <= 0 {
		build = func(int, int) (*Result, error) { return b.Build() }
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				res, err := buildGuarded(build, job)
				if err != nil {
					b.log.Error("tile build failed", zap.Int("tx", job.tx), zap.Int("ty", job.ty), zap.Error(err))
				}
				mu.Lock()
				if err != nil {
					errs = multierr.Append(errs, &TileError{Tx: job.tx, Ty: job.ty, Err: err})
				} else {
					results = append(results, res)
				}
				completed++
				if progress != nil {
					progress(completed, total)
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for ty := 0; ty < th; ty++ {
		for tx := 0; tx < tw; tx++ {
			select {
			case <-ctx.Done():
				break feed
			case jobs <- tileJob{tx, ty}:
			}
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		errs = multierr.Append(errs, err)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Ty != results[j].Ty {
			return results[i].Ty < results[j].Ty
		}
		return results[i].Tx < results[j].Tx
	})
	logger.LogReport(b.log, b.timings)
	return results, errs
}

// buildGuarded turns a panic inside one tile build into that tile's error so
// the remaining workers keep going.
func buildGuarded(build func(tx, ty int) (*Result, error), job tileJob) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return build(job.tx, job.ty)
}

// MergeResults combines the polygon and detail meshes of tile results into
// one mesh. Empty tiles are skipped; both meshes are nil when every tile
// was empty.
func (b *Builder) MergeResults(results []*Result) (*recast.RcPolyMesh, *recast.RcPolyMeshDetail, error) {
	ctx := logger.NewTelemetry(b.log, b.timings)
	var meshes []*recast.RcPolyMesh
	var details []*recast.RcPolyMeshDetail
	for _, r := range results {
		if r.Empty() {
			continue
		}
		meshes = append(meshes, r.PolyMesh)
		details = append(details, r.PolyMeshDetail)
	}
	pmesh, err := recast.RcMergePolyMeshes(ctx, meshes)
	if err != nil || pmesh == nil {
		return nil, nil, err
	}
	var dmesh *recast.RcPolyMeshDetail
	if b.cfg.BuildMeshDetail {
		dmesh = recast.RcMergePolyMeshDetails(ctx, details)
	}
	return pmesh, dmesh, nil
}
