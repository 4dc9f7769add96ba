package recast

import (
	"fmt"
	"math"

	"github.com/gorustyt/gorecast/common"
)

// Config holds the world-unit build parameters of a navmesh bake.
type Config struct {
	Partition PartitionType `json:"-"`

	CellSize   float64 `json:"cellSize"`   ///< xz-plane cell size. [Limit: > 0] [Units: wu]
	CellHeight float64 `json:"cellHeight"` ///< y-axis cell size. [Limit: > 0] [Units: wu]

	AgentHeight   float64 `json:"agentHeight"`
	AgentRadius   float64 `json:"agentRadius"`
	AgentMaxClimb float64 `json:"agentMaxClimb"`
	AgentMaxSlope float64 `json:"agentMaxSlope"` ///< [Limits: 0 <= value < 90] [Units: Degrees]

	RegionMinSize   int `json:"regionMinSize"`   ///< Side of the smallest kept island. [Units: vx]
	RegionMergeSize int `json:"regionMergeSize"` ///< Side under which regions get merged. [Units: vx]

	EdgeMaxLen      float64 `json:"edgeMaxLen"`   ///< [Units: wu]
	EdgeMaxError    float64 `json:"edgeMaxError"` ///< [Units: vx]
	MaxVertsPerPoly int     `json:"vertsPerPoly"` ///< [Limit: 3..6]
	ContourFlags    int     `json:"contourFlags"` ///< RC_CONTOUR_TESS_* bits.

	DetailSampleDist     float64 `json:"detailSampleDist"`     ///< In cell sizes. 0 disables interior sampling.
	DetailSampleMaxError float64 `json:"detailSampleMaxError"` ///< In cell heights.

	// TileSize is the tile side in voxels; 0 means a single-mesh build.
	TileSize int `json:"tileSize"`

	FilterLowHangingObstacles    bool `json:"filterLowHangingObstacles"`
	FilterLedgeSpans             bool `json:"filterLedgeSpans"`
	FilterWalkableLowHeightSpans bool `json:"filterWalkableLowHeightSpans"`
	// MedianFilter smooths area ids after erosion; it removes single-cell
	// speckles left by per-triangle area marking.
	MedianFilter                 bool `json:"medianFilter"`
	BuildMeshDetail              bool `json:"buildMeshDetail"`
}

// DefaultConfig returns the parameters of the usual human-sized agent.
func DefaultConfig() Config {
	return Config{
		Partition:                    PartitionWatershed,
		CellSize:                     0.3,
		CellHeight:                   0.2,
		AgentHeight:                  2.0,
		AgentRadius:                  0.6,
		AgentMaxClimb:                0.9,
		AgentMaxSlope:                45,
		RegionMinSize:                8,
		RegionMergeSize:              20,
		EdgeMaxLen:                   12,
		EdgeMaxError:                 1.3,
		MaxVertsPerPoly:              6,
		ContourFlags:                 RC_CONTOUR_TESS_WALL_EDGES,
		DetailSampleDist:             6,
		DetailSampleMaxError:         1,
		FilterLowHangingObstacles:    true,
		FilterLedgeSpans:             true,
		FilterWalkableLowHeightSpans: true,
		BuildMeshDetail:              true,
	}
}

// Validate reports the first parameter outside its limits.
func (c *Config) Validate() error {
	switch {
	case c.CellSize <= 0:
		return fmt.Errorf("cell size %v must be positive: %w", c.CellSize, ErrInvalidConfig)
	case c.CellHeight <= 0:
		return fmt.Errorf("cell height %v must be positive: %w", c.CellHeight, ErrInvalidConfig)
	case c.MaxVertsPerPoly < 3 || c.MaxVertsPerPoly > RC_VERTS_PER_POLYGON:
		return fmt.Errorf("verts per poly %d not in [3, %d]: %w", c.MaxVertsPerPoly, RC_VERTS_PER_POLYGON, ErrInvalidConfig)
	case c.AgentMaxSlope < 0 || c.AgentMaxSlope >= 90:
		return fmt.Errorf("max slope %v not in [0, 90): %w", c.AgentMaxSlope, ErrInvalidConfig)
	case c.AgentHeight <= 0 || c.AgentRadius < 0 || c.AgentMaxClimb < 0:
		return fmt.Errorf("agent dimensions must not be negative: %w", ErrInvalidConfig)
	case c.TileSize < 0:
		return fmt.Errorf("tile size %d is negative: %w", c.TileSize, ErrInvalidConfig)
	case c.Partition < PartitionWatershed || c.Partition > PartitionLayers:
		return fmt.Errorf("unknown partition %d: %w", c.Partition, ErrInvalidConfig)
	}
	return nil
}

// / Largest polygon the mesh builder accepts.
const RC_VERTS_PER_POLYGON = 6

// / Voxel-unit configuration of one field build, derived once from a Config.
type RcConfig struct {
	Source Config ///< The world-unit parameters this config was derived from.

	Width      int ///< The width of the field along the x-axis. [Units: vx]
	Height     int ///< The height of the field along the z-axis. [Units: vx]
	TileSize   int
	BorderSize int ///< The size of the non-navigable border around the heightfield. [Units: vx]
	Tx, Ty     int
	Tiled      bool

	Cs, Ch     float64
	Bmin, Bmax common.Vec3

	WalkableSlopeAngle     float64
	WalkableHeight         int
	WalkableClimb          int
	WalkableRadius         int
	MaxEdgeLen             int
	MaxSimplificationError float64
	MinRegionArea          int
	MergeRegionArea        int
	MaxVertsPerPoly        int
	DetailSampleDist       float64 ///< [Units: wu]
	DetailSampleMaxError   float64 ///< [Units: wu]
}

// NewBuilderConfig derives the voxel config for tile (tx, ty) of the world
// bounds bmin-bmax. With cfg.TileSize == 0 the whole bounds form one field.
func NewBuilderConfig(cfg Config, bmin, bmax common.Vec3, tx, ty int) *RcConfig {
	rc := &RcConfig{
		Source:                 cfg,
		TileSize:               cfg.TileSize,
		Tx:                     tx,
		Ty:                     ty,
		Tiled:                  cfg.TileSize > 0,
		Cs:                     cfg.CellSize,
		Ch:                     cfg.CellHeight,
		Bmin:                   bmin,
		Bmax:                   bmax,
		WalkableSlopeAngle:     cfg.AgentMaxSlope,
		WalkableHeight:         int(math.Ceil(cfg.AgentHeight / cfg.CellHeight)),
		WalkableClimb:          int(math.Floor(cfg.AgentMaxClimb / cfg.CellHeight)),
		WalkableRadius:         int(math.Ceil(cfg.AgentRadius / cfg.CellSize)),
		MaxEdgeLen:             int(cfg.EdgeMaxLen / cfg.CellSize),
		MaxSimplificationError: cfg.EdgeMaxError,
		MinRegionArea:          cfg.RegionMinSize * cfg.RegionMinSize,     // Note: area = size*size
		MergeRegionArea:        cfg.RegionMergeSize * cfg.RegionMergeSize, // Note: area = size*size
		MaxVertsPerPoly:        cfg.MaxVertsPerPoly,
		DetailSampleMaxError:   cfg.CellHeight * cfg.DetailSampleMaxError,
	}
	if cfg.DetailSampleDist >= 0.9 {
		rc.DetailSampleDist = cfg.CellSize * cfg.DetailSampleDist
	}

	if !rc.Tiled {
		rc.Width, rc.Height = RcCalcGridSize(bmin, bmax, cfg.CellSize)
		return rc
	}

	ts := float64(cfg.TileSize) * cfg.CellSize
	rc.Bmin[0] += float64(tx) * ts
	rc.Bmin[2] += float64(ty) * ts
	rc.Bmax[0] = rc.Bmin[0] + ts
	rc.Bmax[2] = rc.Bmin[2] + ts

	// Expand the bounds by the border so obstacles next to the tile edge are
	// eroded consistently with the neighbour tiles. Query input geometry with
	// these bounds; no polygons are created inside the border.
	rc.BorderSize = rc.WalkableRadius + 3
	rc.Bmin[0] -= float64(rc.BorderSize) * cfg.CellSize
	rc.Bmin[2] -= float64(rc.BorderSize) * cfg.CellSize
	rc.Bmax[0] += float64(rc.BorderSize) * cfg.CellSize
	rc.Bmax[2] += float64(rc.BorderSize) * cfg.CellSize
	rc.Width = cfg.TileSize + rc.BorderSize*2
	rc.Height = cfg.TileSize + rc.BorderSize*2
	return rc
}
