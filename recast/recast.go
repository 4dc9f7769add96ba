package recast

import (
	"fmt"
	"math"

	"github.com/gorustyt/gorecast/common"
)

const (
	RC_NOT_CONNECTED = 0x3f
	// Highest neighbour layer index a connection can encode.
	RC_MAX_LAYER_INDEX = RC_NOT_CONNECTED - 1
	// Open-ended top of the last span of a column.
	RC_COMPACT_MAX_HEIGHT = 0xffff
)

// / Represents a span of unobstructed space within a compact heightfield.
type RcCompactSpan struct {
	Y   int      ///< The lower extent of the span. (Measured from the heightfield's base.)
	H   int      ///< The height of the span.  (Measured from #Y.)
	Reg int      ///< The id of the region the span belongs to. (Or zero if not in a region.)
	Con [4]uint8 ///< Neighbour layer index per direction, RC_NOT_CONNECTED when blocked.
}

func RcGetCon(s *RcCompactSpan, dir int) int {
	return int(s.Con[dir])
}

func rcSetCon(s *RcCompactSpan, dir, layer int) {
	s.Con[dir] = uint8(layer)
}

// / A compact, static heightfield representing unobstructed space.
type RcCompactHeightfield struct {
	Width          int         ///< The width of the heightfield. (Along the x-axis in cell units.)
	Height         int         ///< The height of the heightfield. (Along the z-axis in cell units.)
	SpanCount      int         ///< The number of spans in the heightfield.
	WalkableHeight int         ///< The walkable height used during the build of the field.
	WalkableClimb  int         ///< The walkable climb used during the build of the field.
	BorderSize     int         ///< The AABB border size used during the build of the field.
	MaxDistance    int         ///< The maximum distance value of any span within the field.
	MaxRegions     int         ///< The maximum region id of any span within the field.
	Bmin           common.Vec3 ///< The minimum bounds in world space. [(x, y, z)]
	Bmax           common.Vec3 ///< The maximum bounds in world space. [(x, y, z)]
	Cs             float64     ///< The size of each cell. (On the xz-plane.)
	Ch             float64     ///< The height of each cell. (The minimum increment along the y-axis.)

	Index    []int           ///< First span of each column. [Size: #Width*#Height]
	EndIndex []int           ///< One past the last span of each column. [Size: #Width*#Height]
	Spans    []RcCompactSpan ///< [Size: #SpanCount]
	Dist     []int           ///< Border distance data. [Size: #SpanCount]
	Areas    []int           ///< Area ids. [Size: #SpanCount]
}

// neighbour returns the span index reached from span i in column (x, z) through dir.
func (chf *RcCompactHeightfield) neighbour(x, z, i, dir int) (ax, az, ai int) {
	ax = x + common.GetDirOffsetX(dir)
	az = z + common.GetDirOffsetY(dir)
	ai = chf.Index[ax+az*chf.Width] + RcGetCon(&chf.Spans[i], dir)
	return
}

// RcCalcBounds returns the AABB of the vertex list.
func RcCalcBounds(verts []float64) (bmin, bmax common.Vec3) {
	copy(bmin[:], verts[:3])
	copy(bmax[:], verts[:3])
	for i := 1; i < len(verts)/3; i++ {
		v := common.GetVert3(verts, i)
		common.Vmin(bmin[:], v)
		common.Vmax(bmax[:], v)
	}
	return
}

func RcCalcGridSize(bmin, bmax common.Vec3, cs float64) (width, height int) {
	width = int((bmax[0]-bmin[0])/cs + 0.5)
	height = int((bmax[2]-bmin[2])/cs + 0.5)
	return
}

// RcCalcTileCount returns the tile grid dimensions for tileSize voxels per tile.
func RcCalcTileCount(bmin, bmax common.Vec3, cs float64, tileSize int) (tw, th int) {
	gw, gh := RcCalcGridSize(bmin, bmax, cs)
	tw = (gw + tileSize - 1) / tileSize
	th = (gh + tileSize - 1) / tileSize
	return
}

func calcTriNormal(v0, v1, v2 []float64, norm []float64) {
	var e0, e1 [3]float64
	common.Vsub(e0[:], v1, v0)
	common.Vsub(e1[:], v2, v0)
	common.Vcross(norm, e0[:], e1[:])
	common.Vnormalize(norm)
}

// / Returns one area id per triangle: RC_WALKABLE_AREA when the slope is below
// / walkableSlopeAngle, RC_NULL_AREA otherwise.
func RcMarkWalkableTriangles(ctx Telemetry, walkableSlopeAngle float64, verts []float64, tris []int) []int {
	areas := make([]int, len(tris)/3)
	walkableThr := math.Cos(walkableSlopeAngle / 180.0 * math.Pi)
	var norm [3]float64
	for i := range areas {
		calcTriNormal(common.GetVert3(verts, tris[i*3]), common.GetVert3(verts, tris[i*3+1]), common.GetVert3(verts, tris[i*3+2]), norm[:])
		if norm[1] > walkableThr {
			areas[i] = RC_WALKABLE_AREA
		}
	}
	return areas
}

// / Sets the area id of every too steep triangle to RC_NULL_AREA.
func RcClearUnwalkableTriangles(ctx Telemetry, walkableSlopeAngle float64, verts []float64, tris []int, areas []int) {
	walkableThr := math.Cos(walkableSlopeAngle / 180.0 * math.Pi)
	var norm [3]float64
	for i := 0; i < len(tris)/3; i++ {
		calcTriNormal(common.GetVert3(verts, tris[i*3]), common.GetVert3(verts, tris[i*3+1]), common.GetVert3(verts, tris[i*3+2]), norm[:])
		if norm[1] <= walkableThr {
			areas[i] = RC_NULL_AREA
		}
	}
}

// / Builds a compact heightfield from the walkable spans of hf.
// / Fails with ErrTooManyLayers when a neighbour span sits deeper than
// / RC_MAX_LAYER_INDEX in its column.
func RcBuildCompactHeightfield(ctx Telemetry, walkableHeight, walkableClimb int, hf *RcHeightfield) (*RcCompactHeightfield, error) {
	startTimer(ctx, RC_TIMER_BUILD_COMPACTHEIGHTFIELD)
	defer stopTimer(ctx, RC_TIMER_BUILD_COMPACTHEIGHTFIELD)

	w := hf.Width
	h := hf.Height
	spanCount := hf.WalkableSpanCount()

	chf := &RcCompactHeightfield{
		Width:          w,
		Height:         h,
		SpanCount:      spanCount,
		WalkableHeight: walkableHeight,
		WalkableClimb:  walkableClimb,
		BorderSize:     hf.BorderSize,
		Bmin:           hf.Bmin,
		Bmax:           hf.Bmax,
		Cs:             hf.Cs,
		Ch:             hf.Ch,
		Index:          make([]int, w*h),
		EndIndex:       make([]int, w*h),
		Spans:          make([]RcCompactSpan, spanCount),
		Areas:          make([]int, spanCount),
	}
	chf.Bmax[1] += float64(walkableHeight) * hf.Ch

	idx := 0
	for c := 0; c < w*h; c++ {
		chf.Index[c] = idx
		for s := hf.Spans[c]; s != RC_NULL_SPAN; s = hf.pool[s].Next {
			sp := hf.pool[s]
			if sp.Area == RC_NULL_AREA {
				continue
			}
			bot := sp.Smax
			top := RC_COMPACT_MAX_HEIGHT
			if sp.Next != RC_NULL_SPAN {
				top = hf.pool[sp.Next].Smin
			}
			chf.Spans[idx].Y = common.Clamp(bot, 0, RC_COMPACT_MAX_HEIGHT)
			chf.Spans[idx].H = common.Clamp(top-bot, 0, 0xff)
			chf.Areas[idx] = sp.Area
			idx++
		}
		chf.EndIndex[c] = idx
	}

	maxLayerIndex := 0
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			c := x + z*w
			for i := chf.Index[c]; i < chf.EndIndex[c]; i++ {
				s := &chf.Spans[i]
				for dir := 0; dir < 4; dir++ {
					rcSetCon(s, dir, RC_NOT_CONNECTED)
					nx := x + common.GetDirOffsetX(dir)
					nz := z + common.GetDirOffsetY(dir)
					if nx < 0 || nz < 0 || nx >= w || nz >= h {
						continue
					}
					nc := nx + nz*w
					for k := chf.Index[nc]; k < chf.EndIndex[nc]; k++ {
						ns := &chf.Spans[k]
						bot := max(s.Y, ns.Y)
						top := min(s.Y+s.H, ns.Y+ns.H)
						if top-bot >= walkableHeight && common.Abs(ns.Y-s.Y) <= walkableClimb {
							layer := k - chf.Index[nc]
							if layer > RC_MAX_LAYER_INDEX {
								maxLayerIndex = max(maxLayerIndex, layer)
								continue
							}
							rcSetCon(s, dir, layer)
							break
						}
					}
				}
			}
		}
	}

	if maxLayerIndex > RC_MAX_LAYER_INDEX {
		return nil, fmt.Errorf("rcBuildCompactHeightfield: %d layers (max: %d): %w", maxLayerIndex, RC_MAX_LAYER_INDEX, ErrTooManyLayers)
	}
	return chf, nil
}
