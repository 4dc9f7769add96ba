package recast

import (
	"fmt"

	"github.com/gorustyt/gorecast/common"
)

const (
	// Unassigned sweep, region or layer id.
	rcLayerNone = 0xff
	// Layer heights are stored relative to the layer floor in a byte.
	rcLayerMaxHeightRange = 255
)

type rcLayerRegion struct {
	layers     *common.Stack[int] // overlapping regions
	neis       *common.Stack[int]
	ymin, ymax int
	layerId    int  // Layer ID
	base       bool // Flag indicating if the region is the base of merged regions.
}

func LayersOverlapRange(amin, amax, bmin, bmax int) bool {
	return !(amin > bmax || amax < bmin)
}

type rcLayerSweepSpan struct {
	ns  int // number samples
	id  int // region id
	nei int // neighbour id
}

// / Represents a heightfield layer within a layer set.
type RcHeightfieldLayer struct {
	Bmin    common.Vec3 ///< The minimum bounds in world space. [(x, y, z)]
	Bmax    common.Vec3 ///< The maximum bounds in world space. [(x, y, z)]
	Cs      float64     ///< The size of each cell. (On the xz-plane.)
	Ch      float64     ///< The height of each cell. (The minimum increment along the y-axis.)
	Width   int         ///< The width of the heightfield. (Along the x-axis in cell units.)
	Height  int         ///< The height of the heightfield. (Along the z-axis in cell units.)
	Minx    int         ///< The minimum x-bounds of usable data.
	Maxx    int         ///< The maximum x-bounds of usable data.
	Miny    int         ///< The minimum y-bounds of usable data. (Along the z-axis.)
	Maxy    int         ///< The maximum y-bounds of usable data. (Along the z-axis.)
	Hmin    int         ///< The minimum height bounds of usable data. (Along the y-axis.)
	Hmax    int         ///< The maximum height bounds of usable data. (Along the y-axis.)
	Heights []int       ///< The heightfield. [Size: width * height]
	Areas   []int       ///< Area ids. [Size: Same as #heights]
	Cons    []int       ///< Packed neighbor connection information. [Size: Same as #heights]
}

// Portal returns the 4-bit mask of directions leading into another layer.
func (l *RcHeightfieldLayer) Portal(idx int) int { return l.Cons[idx] >> 4 }

// Connections returns the 4-bit mask of walkable directions within the layer.
func (l *RcHeightfieldLayer) Connections(idx int) int { return l.Cons[idx] & 0xf }

// sweepLayerRegions partitions the walkable area into monotone regions with
// byte-sized ids. Unassigned spans keep rcLayerNone.
func sweepLayerRegions(chf *RcCompactHeightfield, srcReg []int) (int, error) {
	w := chf.Width
	h := chf.Height
	borderSize := chf.BorderSize

	sweeps := make([]rcLayerSweepSpan, w)
	prevCount := make([]int, 256)
	regId := 0

	// Sweep one line at a time.
	for z := borderSize; z < h-borderSize; z++ {
		// Collect spans from this row.
		clear(prevCount[:regId])
		sweepId := 0

		for x := borderSize; x < w-borderSize; x++ {
			c := x + z*w
			for i := chf.Index[c]; i < chf.EndIndex[c]; i++ {
				s := &chf.Spans[i]
				if chf.Areas[i] == RC_NULL_AREA {
					continue
				}

				sid := rcLayerNone
				// -x
				if RcGetCon(s, 0) != RC_NOT_CONNECTED {
					_, _, ai := chf.neighbour(x, z, i, 0)
					if chf.Areas[ai] != RC_NULL_AREA && srcReg[ai] != rcLayerNone {
						sid = srcReg[ai]
					}
				}

				if sid == rcLayerNone {
					sid = sweepId
					sweepId++
					if sid >= len(sweeps) {
						sweeps = append(sweeps, make([]rcLayerSweepSpan, len(sweeps))...)
					}
					sweeps[sid].nei = rcLayerNone
					sweeps[sid].ns = 0
				}

				// -z
				if RcGetCon(s, 3) != RC_NOT_CONNECTED {
					_, _, ai := chf.neighbour(x, z, i, 3)
					nr := srcReg[ai]
					if nr != rcLayerNone {
						sweep := &sweeps[sid]
						// Set neighbour when first valid neighbour is encoutered.
						if sweep.ns == 0 {
							sweep.nei = nr
						}
						if sweep.nei == nr {
							// Update existing neighbour
							sweep.ns++
							prevCount[nr]++
						} else {
							// This is hit if there is nore than one neighbour.
							// Invalidate the neighbour.
							sweep.nei = rcLayerNone
						}
					}
				}

				srcReg[i] = sid
			}
		}

		// Create unique ID.
		for i := 0; i < sweepId; i++ {
			// If the neighbour is set and there is only one continuous connection to it,
			// the sweep will be merged with the previous one, else new region is created.
			sweep := &sweeps[i]
			if sweep.nei != rcLayerNone && prevCount[sweep.nei] == sweep.ns {
				sweep.id = sweep.nei
			} else {
				if regId == rcLayerNone {
					return 0, fmt.Errorf("rcBuildHeightfieldLayers: region id overflow: %w", ErrRegionOverflow)
				}
				sweep.id = regId
				regId++
			}
		}

		// Remap local sweep ids to region ids.
		for x := borderSize; x < w-borderSize; x++ {
			c := x + z*w
			for i := chf.Index[c]; i < chf.EndIndex[c]; i++ {
				if srcReg[i] != rcLayerNone {
					srcReg[i] = sweeps[srcReg[i]].id
				}
			}
		}
	}
	return regId, nil
}

// findLayerNeighbours records each region's height range, its neighbours
// and the regions stacked above or below it in some column.
func findLayerNeighbours(chf *RcCompactHeightfield, srcReg []int, regions []rcLayerRegion) {
	w := chf.Width
	lregs := common.NewStack[int](16)
	for z := 0; z < chf.Height; z++ {
		for x := 0; x < w; x++ {
			c := x + z*w
			lregs.Clear()

			for i := chf.Index[c]; i < chf.EndIndex[c]; i++ {
				s := &chf.Spans[i]
				ri := srcReg[i]
				if ri == rcLayerNone {
					continue
				}
				reg := &regions[ri]
				reg.ymin = min(reg.ymin, s.Y)
				reg.ymax = max(reg.ymax, s.Y)

				// Collect all region layers.
				lregs.Push(ri)

				// Update neighbours
				for dir := 0; dir < 4; dir++ {
					if RcGetCon(s, dir) != RC_NOT_CONNECTED {
						_, _, ai := chf.neighbour(x, z, i, dir)
						rai := srcReg[ai]
						if rai != rcLayerNone && rai != ri {
							reg.neis.AddUnique(rai)
						}
					}
				}
			}

			// Update overlapping regions.
			data := lregs.Data()
			for i := 0; i < len(data)-1; i++ {
				for j := i + 1; j < len(data); j++ {
					if data[i] != data[j] {
						regions[data[i]].layers.AddUnique(data[j])
						regions[data[j]].layers.AddUnique(data[i])
					}
				}
			}
		}
	}
}

// assignLayers groups regions into 2D layers with a BFS that never adds a
// region overlapping the layer root. It returns the layer count.
func assignLayers(regions []rcLayerRegion) (int, error) {
	layerId := 0
	stack := common.NewStack[int](32)
	for i := range regions {
		root := &regions[i]
		// Skip already visited.
		if root.layerId != rcLayerNone {
			continue
		}
		if layerId >= rcLayerNone {
			return 0, fmt.Errorf("rcBuildHeightfieldLayers: layer id overflow: %w", ErrRegionOverflow)
		}

		// Start search.
		root.layerId = layerId
		root.base = true

		stack.Push(i)
		for !stack.Empty() {
			// Pop front
			reg := &regions[stack.PopFront()]

			for _, nei := range reg.neis.Data() {
				region := &regions[nei]
				// Skip already visited.
				if region.layerId != rcLayerNone {
					continue
				}
				// Skip if the neighbour is overlapping root region.
				if root.layers.Contains(nei) {
					continue
				}
				// Skip if the height range would become too large.
				ymin := min(root.ymin, region.ymin)
				ymax := max(root.ymax, region.ymax)
				if ymax-ymin >= rcLayerMaxHeightRange {
					continue
				}

				// Deepen
				stack.Push(nei)

				// Mark layer id
				region.layerId = layerId
				// Merge current layers to root.
				for _, l := range region.layers.Data() {
					root.layers.AddUnique(l)
				}
				root.ymin = min(root.ymin, region.ymin)
				root.ymax = max(root.ymax, region.ymax)
			}
		}
		layerId++
	}
	return layerId, nil
}

// mergeCloseLayers merges non-overlapping layers whose height ranges lie
// within mergeHeight of each other.
func mergeCloseLayers(regions []rcLayerRegion, mergeHeight int) {
	for i := range regions {
		ri := &regions[i]
		if !ri.base {
			continue
		}

		newId := ri.layerId
		for {
			oldId := rcLayerNone

			for j := range regions {
				if i == j {
					continue
				}
				rj := &regions[j]
				if !rj.base {
					continue
				}

				// Skip if the regions are not close to each other.
				if !LayersOverlapRange(ri.ymin, ri.ymax+mergeHeight, rj.ymin, rj.ymax+mergeHeight) {
					continue
				}
				// Skip if the height range would become too large.
				ymin := min(ri.ymin, rj.ymin)
				ymax := max(ri.ymax, rj.ymax)
				if ymax-ymin >= rcLayerMaxHeightRange {
					continue
				}

				// Make sure that there is no overlap when merging 'ri' and 'rj'.
				overlap := false
				// Iterate over all regions which have the same layerId as 'rj'
				for k := range regions {
					if regions[k].layerId != rj.layerId {
						continue
					}
					// Check if region 'k' is overlapping region 'ri'
					// Index to 'regions' is the same as region id.
					if ri.layers.Contains(k) {
						overlap = true
						break
					}
				}
				// Cannot merge of regions overlap.
				if overlap {
					continue
				}

				// Can merge i and j.
				oldId = rj.layerId
				break
			}

			// Could not find anything to merge with, stop.
			if oldId == rcLayerNone {
				break
			}

			// Merge
			for j := range regions {
				rj := &regions[j]
				if rj.layerId != oldId {
					continue
				}
				rj.base = false
				// Remap layerIds.
				rj.layerId = newId
				// Add overlaid layers from 'rj' to 'ri'.
				for _, l := range rj.layers.Data() {
					ri.layers.AddUnique(l)
				}
				// Update height bounds.
				ri.ymin = min(ri.ymin, rj.ymin)
				ri.ymax = max(ri.ymax, rj.ymax)
			}
		}
	}
}

// compactLayerIds renumbers layer ids densely and returns the layer count.
func compactLayerIds(regions []rcLayerRegion) int {
	var remap [256]int
	for i := range regions {
		remap[regions[i].layerId] = 1
	}
	layerId := 0
	for i := range remap {
		if remap[i] != 0 {
			remap[i] = layerId
			layerId++
		} else {
			remap[i] = rcLayerNone
		}
	}
	for i := range regions {
		regions[i].layerId = remap[regions[i].layerId]
	}
	return layerId
}

// / Builds a layer set from the specified compact heightfield.
// / Each layer is a 2D non-overlapping slice of the walkable area whose height
// / range fits a byte. Returns nil when the heightfield has no walkable spans.
func RcBuildHeightfieldLayers(ctx Telemetry, chf *RcCompactHeightfield, walkableHeight int) ([]*RcHeightfieldLayer, error) {
	startTimer(ctx, RC_TIMER_BUILD_LAYERS)
	defer stopTimer(ctx, RC_TIMER_BUILD_LAYERS)

	w := chf.Width
	h := chf.Height
	borderSize := chf.BorderSize

	srcReg := make([]int, chf.SpanCount)
	common.Fill(srcReg, rcLayerNone)

	nregs, err := sweepLayerRegions(chf, srcReg)
	if err != nil {
		return nil, err
	}

	// Construct regions
	regions := make([]rcLayerRegion, nregs)
	for i := range regions {
		regions[i] = rcLayerRegion{
			layers:  common.NewStack[int](8),
			neis:    common.NewStack[int](8),
			ymin:    0xffff,
			layerId: rcLayerNone,
		}
	}

	// Find region neighbours and overlapping regions.
	findLayerNeighbours(chf, srcReg, regions)

	// Create 2D layers from regions.
	if _, err := assignLayers(regions); err != nil {
		return nil, err
	}

	// Merge non-overlapping regions that are close in height.
	mergeCloseLayers(regions, walkableHeight*4)

	// Compact layerIds
	nlayers := compactLayerIds(regions)

	// No layers, return empty.
	if nlayers == 0 {
		return nil, nil
	}

	// Create layers.
	lw := w - borderSize*2
	lh := h - borderSize*2

	// Build contracted bbox for layers.
	bmin := chf.Bmin
	bmax := chf.Bmax
	bmin[0] += float64(borderSize) * chf.Cs
	bmin[2] += float64(borderSize) * chf.Cs
	bmax[0] -= float64(borderSize) * chf.Cs
	bmax[2] -= float64(borderSize) * chf.Cs

	layers := make([]*RcHeightfieldLayer, nlayers)

	// Store layers.
	for curId := range layers {
		gridSize := lw * lh
		layer := &RcHeightfieldLayer{
			Heights: make([]int, gridSize),
			Areas:   make([]int, gridSize),
			Cons:    make([]int, gridSize),
			Width:   lw,
			Height:  lh,
			Cs:      chf.Cs,
			Ch:      chf.Ch,
		}
		layers[curId] = layer
		common.Fill(layer.Heights, rcLayerNone)

		// Find layer height bounds.
		hmin, hmax := 0, 0
		for j := range regions {
			if regions[j].base && regions[j].layerId == curId {
				hmin = regions[j].ymin
				hmax = regions[j].ymax
			}
		}

		// Adjust the bbox to fit the heightfield.
		layer.Bmin = bmin
		layer.Bmax = bmax
		layer.Bmin[1] = bmin[1] + float64(hmin)*chf.Ch
		layer.Bmax[1] = bmin[1] + float64(hmax)*chf.Ch
		layer.Hmin = hmin
		layer.Hmax = hmax

		// Update usable data region.
		layer.Minx = layer.Width
		layer.Maxx = 0
		layer.Miny = layer.Height
		layer.Maxy = 0

		// Copy height and area from compact heightfield.
		for z := 0; z < lh; z++ {
			for x := 0; x < lw; x++ {
				cx := borderSize + x
				cz := borderSize + z
				c := cx + cz*w
				for j := chf.Index[c]; j < chf.EndIndex[c]; j++ {
					s := &chf.Spans[j]
					// Skip unassigned regions.
					if srcReg[j] == rcLayerNone {
						continue
					}
					// Skip of does not belong to current layer.
					lid := regions[srcReg[j]].layerId
					if lid != curId {
						continue
					}

					// Update data bounds.
					layer.Minx = min(layer.Minx, x)
					layer.Maxx = max(layer.Maxx, x)
					layer.Miny = min(layer.Miny, z)
					layer.Maxy = max(layer.Maxy, z)

					// Store height and area type.
					idx := x + z*lw
					layer.Heights[idx] = s.Y - hmin
					layer.Areas[idx] = chf.Areas[j]

					// Check connection.
					portal := 0
					con := 0
					for dir := 0; dir < 4; dir++ {
						if RcGetCon(s, dir) == RC_NOT_CONNECTED {
							continue
						}
						ax, az, ai := chf.neighbour(cx, cz, j, dir)
						alid := rcLayerNone
						if srcReg[ai] != rcLayerNone {
							alid = regions[srcReg[ai]].layerId
						}
						if chf.Areas[ai] == RC_NULL_AREA {
							continue
						}
						// Portal mask
						if lid != alid {
							portal |= 1 << dir
							// Update height so that it matches on both sides of the portal.
							if as := chf.Spans[ai]; as.Y > hmin {
								layer.Heights[idx] = max(layer.Heights[idx], as.Y-hmin)
							}
							continue
						}
						// Valid connection mask
						nx := ax - borderSize
						nz := az - borderSize
						if nx >= 0 && nz >= 0 && nx < lw && nz < lh {
							con |= 1 << dir
						}
					}
					layer.Cons[idx] = (portal << 4) | con
				}
			}
		}

		if layer.Minx > layer.Maxx {
			layer.Minx, layer.Maxx = 0, 0
		}
		if layer.Miny > layer.Maxy {
			layer.Miny, layer.Maxy = 0, 0
		}
	}
	return layers, nil
}
