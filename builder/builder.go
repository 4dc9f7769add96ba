package builder

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gorustyt/gorecast/geom"
	"github.com/gorustyt/gorecast/logger"
	"github.com/gorustyt/gorecast/recast"
)

// Result holds the output of one field build. The intermediate
// heightfields are only kept when the Builder was created with
// WithKeepIntermediate.
type Result struct {
	Tx, Ty int
	Config *recast.RcConfig

	Solid          *recast.RcHeightfield
	Compact        *recast.RcCompactHeightfield
	Contours       *recast.RcContourSet
	PolyMesh       *recast.RcPolyMesh
	PolyMeshDetail *recast.RcPolyMeshDetail
}

// Empty reports whether the build produced no polygons.
func (r *Result) Empty() bool {
	return r.PolyMesh == nil || r.PolyMesh.Npolys == 0
}

type Builder struct {
	cfg     recast.Config
	geom    geom.InputGeom
	log     *zap.Logger
	timings *recast.Timings

	keepInterResults bool
}

type Option func(*Builder)

func WithLogger(log *zap.Logger) Option {
	return func(b *Builder) { b.log = log }
}

// WithTimings makes the builder accumulate phase timings into tm.
func WithTimings(tm *recast.Timings) Option {
	return func(b *Builder) { b.timings = tm }
}

func WithKeepIntermediate(keep bool) Option {
	return func(b *Builder) { b.keepInterResults = keep }
}

func New(cfg recast.Config, g geom.InputGeom, opts ...Option) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if g == nil || len(g.Meshes()) == 0 {
		return nil, fmt.Errorf("builder: input mesh is not specified")
	}
	b := &Builder{cfg: cfg, geom: g}
	for _, opt := range opts {
		opt(b)
	}
	if b.log == nil {
		b.log = zap.NewNop()
	}
	if b.timings == nil {
		b.timings = &recast.Timings{}
	}
	return b, nil
}

func (b *Builder) Timings() *recast.Timings { return b.timings }

// TileCount returns the tile grid over the input bounds.
func (b *Builder) TileCount() (tw, th int) {
	if b.cfg.TileSize <= 0 {
		return 1, 1
	}
	return recast.RcCalcTileCount(b.geom.MeshBoundsMin(), b.geom.MeshBoundsMax(), b.cfg.CellSize, b.cfg.TileSize)
}

// Build runs the whole pipeline over the input bounds as a single field,
// ignoring the configured tile size.
func (b *Builder) Build() (*Result, error) {
	cfg := b.cfg
	cfg.TileSize = 0
	rc := recast.NewBuilderConfig(cfg, b.geom.MeshBoundsMin(), b.geom.MeshBoundsMax(), 0, 0)
	return b.build(rc)
}

// BuildTile runs the pipeline for tile (tx, ty) of the configured tile grid.
func (b *Builder) BuildTile(tx, ty int) (*Result, error) {
	if b.cfg.TileSize <= 0 {
		return nil, fmt.Errorf("builder: tile size is not set: %w", recast.ErrInvalidConfig)
	}
	rc := recast.NewBuilderConfig(b.cfg, b.geom.MeshBoundsMin(), b.geom.MeshBoundsMax(), tx, ty)
	return b.build(rc)
}

func (b *Builder) build(rc *recast.RcConfig) (*Result, error) {
	ctx := logger.ForTile(b.log, b.timings, rc.Tx, rc.Ty)
	res := &Result{Tx: rc.Tx, Ty: rc.Ty, Config: rc}

	b.log.Debug("building navigation",
		zap.Int("tx", rc.Tx), zap.Int("ty", rc.Ty),
		zap.Int("width", rc.Width), zap.Int("height", rc.Height))

	chf, err := b.buildCompactHeightfield(ctx, rc, res)
	if err != nil {
		return nil, err
	}

	// Partition the walkable surface into simple regions without holes.
	if err := recast.RcPartition(ctx, chf, b.cfg.Partition, rc.MinRegionArea, rc.MergeRegionArea); err != nil {
		return nil, fmt.Errorf("build %s regions: %w", b.cfg.Partition, err)
	}

	// Trace and simplify region contours.
	cset, err := recast.RcBuildContours(ctx, chf, rc.MaxSimplificationError, rc.MaxEdgeLen, b.cfg.ContourFlags)
	if err != nil {
		return nil, fmt.Errorf("create contours: %w", err)
	}
	if b.keepInterResults {
		res.Contours = cset
	}
	if cset.Nconts() == 0 {
		return res, nil
	}

	// Build polygon navmesh from the contours.
	pmesh, err := recast.RcBuildPolyMesh(ctx, cset, rc.MaxVertsPerPoly)
	if err != nil {
		return nil, fmt.Errorf("triangulate contours: %w", err)
	}
	res.PolyMesh = pmesh

	if b.cfg.BuildMeshDetail {
		dmesh, err := recast.RcBuildPolyMeshDetail(ctx, pmesh, chf, rc.DetailSampleDist, rc.DetailSampleMaxError)
		if err != nil {
			return nil, fmt.Errorf("build polymesh detail: %w", err)
		}
		res.PolyMeshDetail = dmesh
	}
	return res, nil
}

// buildCompactHeightfield rasterizes the input, filters the walkable spans,
// compacts them, erodes by the agent radius and marks the convex volumes.
func (b *Builder) buildCompactHeightfield(ctx recast.Telemetry, rc *recast.RcConfig, res *Result) (*recast.RcCompactHeightfield, error) {
	solid := recast.RcCreateHeightfield(rc.Width, rc.Height, rc.Bmin, rc.Bmax, rc.Cs, rc.Ch, rc.BorderSize)

	tbmin := [2]float64{rc.Bmin[0], rc.Bmin[2]}
	tbmax := [2]float64{rc.Bmax[0], rc.Bmax[2]}
	ntris := 0
	for _, m := range b.geom.Meshes() {
		tris := m.Tris
		if rc.Tiled {
			tris = m.TrisOverlappingRect(tbmin, tbmax)
		}
		ntris += len(tris) / 3
		areas := recast.RcMarkWalkableTriangles(ctx, rc.WalkableSlopeAngle, m.Verts, tris)
		recast.RcRasterizeTriangles(ctx, m.Verts, tris, areas, solid, rc.WalkableClimb)
	}
	b.log.Debug("rasterized", zap.Int("tx", rc.Tx), zap.Int("ty", rc.Ty), zap.Int("tris", ntris))

	// Remove overhangs left by the conservative rasterization and spans
	// where the character cannot stand.
	if b.cfg.FilterLowHangingObstacles {
		recast.RcFilterLowHangingWalkableObstacles(ctx, rc.WalkableClimb, solid)
	}
	if b.cfg.FilterLedgeSpans {
		recast.RcFilterLedgeSpans(ctx, rc.WalkableHeight, rc.WalkableClimb, solid)
	}
	if b.cfg.FilterWalkableLowHeightSpans {
		recast.RcFilterWalkableLowHeightSpans(ctx, rc.WalkableHeight, solid)
	}

	chf, err := recast.RcBuildCompactHeightfield(ctx, rc.WalkableHeight, rc.WalkableClimb, solid)
	if err != nil {
		return nil, fmt.Errorf("build compact data: %w", err)
	}
	if b.keepInterResults {
		res.Solid = solid
		res.Compact = chf
	}

	recast.RcErodeWalkableArea(ctx, rc.WalkableRadius, chf)
	if b.cfg.MedianFilter {
		recast.RcMedianFilterWalkableArea(ctx, chf)
	}

	for _, vol := range b.geom.ConvexVolumes() {
		recast.RcMarkConvexPolyArea(ctx, vol.Verts, vol.HMin, vol.HMax, vol.Area, chf)
	}
	return chf, nil
}

// BuildLayers rasterizes tile (tx, ty) and slices it into heightfield
// layers instead of building polygons. A zero tile size slices the whole
// input as one field.
func (b *Builder) BuildLayers(tx, ty int) ([]*recast.RcHeightfieldLayer, error) {
	rc := recast.NewBuilderConfig(b.cfg, b.geom.MeshBoundsMin(), b.geom.MeshBoundsMax(), tx, ty)
	ctx := logger.ForTile(b.log, b.timings, tx, ty)
	chf, err := b.buildCompactHeightfield(ctx, rc, &Result{})
	if err != nil {
		return nil, err
	}
	layers, err := recast.RcBuildHeightfieldLayers(ctx, chf, rc.WalkableHeight)
	if err != nil {
		return nil, fmt.Errorf("build heightfield layers: %w", err)
	}
	return layers, nil
}
