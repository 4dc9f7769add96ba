package recast

import (
	"fmt"

	"github.com/gorustyt/gorecast/common"
)

const (
	/// Heightfield border flag.
	/// If a heightfield region ID has this bit set, then the region is a border
	/// region and its spans are considered un-walkable.
	/// (Used during the region and contour build process.)
	RC_BORDER_REG = 0x8000
)

const (
	rcLogNbStacks = 3
	rcNbStacks    = 1 << rcLogNbStacks
	// How far the watershed overflows per level.
	rcExpandIters = 8
)

// PartitionType selects the region partitioning strategy.
type PartitionType int

const (
	PartitionWatershed PartitionType = iota
	PartitionMonotone
	PartitionLayers
)

func (p PartitionType) String() string {
	switch p {
	case PartitionWatershed:
		return "watershed"
	case PartitionMonotone:
		return "monotone"
	case PartitionLayers:
		return "layers"
	}
	return fmt.Sprintf("PartitionType(%d)", int(p))
}

// RcPartition assigns a region id to every span of chf with the selected strategy.
// Watershed partitioning builds the distance field first.
func RcPartition(ctx Telemetry, chf *RcCompactHeightfield, p PartitionType, minRegionArea, mergeRegionArea int) error {
	switch p {
	case PartitionWatershed:
		RcBuildDistanceField(ctx, chf)
		return RcBuildRegions(ctx, chf, minRegionArea, mergeRegionArea)
	case PartitionMonotone:
		return RcBuildRegionsMonotone(ctx, chf, minRegionArea, mergeRegionArea)
	case PartitionLayers:
		return RcBuildLayerRegions(ctx, chf, minRegionArea)
	}
	return fmt.Errorf("unknown partition type %d: %w", int(p), ErrInvalidConfig)
}

// calculateDistanceField writes the chamfer distance to the nearest area
// boundary of every span into src and returns the largest value.
func calculateDistanceField(chf *RcCompactHeightfield, src []int) int {
	w := chf.Width
	h := chf.Height
	common.Fill(src, 0xffff)

	// Spans with fewer than four same-area neighbours sit on a boundary.
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			c := x + z*w
			for i := chf.Index[c]; i < chf.EndIndex[c]; i++ {
				s := &chf.Spans[i]
				area := chf.Areas[i]
				nc := 0
				for dir := 0; dir < 4; dir++ {
					if RcGetCon(s, dir) == RC_NOT_CONNECTED {
						continue
					}
					_, _, ai := chf.neighbour(x, z, i, dir)
					if area == chf.Areas[ai] {
						nc++
					}
				}
				if nc != 4 {
					src[i] = 0
				}
			}
		}
	}

	chamferPasses(chf, src, 0xffff)

	maxDist := 0
	for _, d := range src {
		maxDist = max(maxDist, d)
	}
	return maxDist
}

func boxBlur(chf *RcCompactHeightfield, thr int, src []int) []int {
	w := chf.Width
	h := chf.Height
	dst := make([]int, len(src))
	thr *= 2

	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			c := x + z*w
			for i := chf.Index[c]; i < chf.EndIndex[c]; i++ {
				s := &chf.Spans[i]
				cd := src[i]
				if cd <= thr {
					dst[i] = cd
					continue
				}

				d := cd
				for dir := 0; dir < 4; dir++ {
					if RcGetCon(s, dir) == RC_NOT_CONNECTED {
						d += cd * 2
						continue
					}
					ax, az, ai := chf.neighbour(x, z, i, dir)
					d += src[ai]

					dir2 := (dir + 1) & 0x3
					if RcGetCon(&chf.Spans[ai], dir2) != RC_NOT_CONNECTED {
						_, _, ai2 := chf.neighbour(ax, az, ai, dir2)
						d += src[ai2]
					} else {
						d += cd
					}
				}
				dst[i] = (d + 5) / 9
			}
		}
	}
	return dst
}

// / Builds the distance field for the specified compact heightfield.
// / The result is stored in chf.Dist and chf.MaxDistance. It is only
// / needed by watershed partitioning.
func RcBuildDistanceField(ctx Telemetry, chf *RcCompactHeightfield) {
	startTimer(ctx, RC_TIMER_DISTANCEFIELD)
	defer stopTimer(ctx, RC_TIMER_DISTANCEFIELD)

	src := make([]int, chf.SpanCount)

	startTimer(ctx, RC_TIMER_DISTANCEFIELD_DIST)
	chf.MaxDistance = calculateDistanceField(chf, src)
	stopTimer(ctx, RC_TIMER_DISTANCEFIELD_DIST)

	startTimer(ctx, RC_TIMER_DISTANCEFIELD_BLUR)
	chf.Dist = boxBlur(chf, 1, src)
	stopTimer(ctx, RC_TIMER_DISTANCEFIELD_BLUR)
}

func paintRectRegion(minx, maxx, minz, maxz, regId int, chf *RcCompactHeightfield, srcReg []int) {
	w := chf.Width
	for z := minz; z < maxz; z++ {
		for x := minx; x < maxx; x++ {
			c := x + z*w
			for i := chf.Index[c]; i < chf.EndIndex[c]; i++ {
				if chf.Areas[i] != RC_NULL_AREA {
					srcReg[i] = regId
				}
			}
		}
	}
}

// paintBorderRegions flags the four border strips with their own border
// regions and returns the next free region id.
func paintBorderRegions(chf *RcCompactHeightfield, srcReg []int, id int) int {
	borderSize := chf.BorderSize
	if borderSize <= 0 {
		return id
	}
	w := chf.Width
	h := chf.Height
	bw := min(w, borderSize)
	bh := min(h, borderSize)
	paintRectRegion(0, bw, 0, h, id|RC_BORDER_REG, chf, srcReg)
	paintRectRegion(w-bw, w, 0, h, (id+1)|RC_BORDER_REG, chf, srcReg)
	paintRectRegion(0, w, 0, bh, (id+2)|RC_BORDER_REG, chf, srcReg)
	paintRectRegion(0, w, h-bh, h, (id+3)|RC_BORDER_REG, chf, srcReg)
	return id + 4
}

type levelStackEntry struct {
	x     int
	z     int
	index int
}

// anyNeighbourHasValidRegion reports whether an 8-connected neighbour of the
// same area already belongs to a region other than r.
func anyNeighbourHasValidRegion(chf *RcCompactHeightfield, cx, cz, ci, area, r int, srcReg []int) bool {
	cs := &chf.Spans[ci]
	for dir := 0; dir < 4; dir++ {
		if RcGetCon(cs, dir) == RC_NOT_CONNECTED {
			continue
		}
		ax, az, ai := chf.neighbour(cx, cz, ci, dir)
		if chf.Areas[ai] != area {
			continue
		}
		nr := srcReg[ai]
		if nr&RC_BORDER_REG != 0 {
			continue
		}
		if nr != 0 && nr != r {
			return true
		}

		dir2 := (dir + 1) & 0x3
		if RcGetCon(&chf.Spans[ai], dir2) != RC_NOT_CONNECTED {
			_, _, ai2 := chf.neighbour(ax, az, ai, dir2)
			if chf.Areas[ai2] != area {
				continue
			}
			nr2 := srcReg[ai2]
			if nr2 != 0 && nr2 != r {
				return true
			}
		}
	}
	return false
}

func floodRegion(x, z, i, level, r int, chf *RcCompactHeightfield, srcReg, srcDist []int, stack *common.Stack[levelStackEntry]) bool {
	area := chf.Areas[i]

	stack.Clear()
	stack.Push(levelStackEntry{x, z, i})
	srcReg[i] = r
	srcDist[i] = 0

	lev := 0
	if level >= 2 {
		lev = level - 2
	}
	count := 0

	for !stack.Empty() {
		back := stack.Pop()
		cx, cz, ci := back.x, back.z, back.index

		if anyNeighbourHasValidRegion(chf, cx, cz, ci, area, r, srcReg) {
			srcReg[ci] = 0
			continue
		}
		count++

		cs := &chf.Spans[ci]
		for dir := 0; dir < 4; dir++ {
			if RcGetCon(cs, dir) == RC_NOT_CONNECTED {
				continue
			}
			ax, az, ai := chf.neighbour(cx, cz, ci, dir)
			if chf.Areas[ai] != area {
				continue
			}
			if chf.Dist[ai] >= lev && srcReg[ai] == 0 {
				srcReg[ai] = r
				srcDist[ai] = 0
				stack.Push(levelStackEntry{ax, az, ai})
			}
		}
	}
	return count > 0
}

type dirtyEntry struct {
	index    int
	region   int
	distance int
}

// expandRegions grows existing regions into the unassigned cells of stack.
// With fillStack set the stack is rebuilt from every unassigned cell at or
// above level. Iterations are capped by maxIter only while level > 0.
func expandRegions(maxIter, level int, chf *RcCompactHeightfield, srcReg, srcDist []int, stack *common.Stack[levelStackEntry], fillStack bool) {
	w := chf.Width
	h := chf.Height

	if fillStack {
		stack.Clear()
		for z := 0; z < h; z++ {
			for x := 0; x < w; x++ {
				c := x + z*w
				for i := chf.Index[c]; i < chf.EndIndex[c]; i++ {
					if chf.Dist[i] >= level && srcReg[i] == 0 && chf.Areas[i] != RC_NULL_AREA {
						stack.Push(levelStackEntry{x, z, i})
					}
				}
			}
		}
	} else {
		for j := 0; j < stack.Len(); j++ {
			e := stack.Index(j)
			if srcReg[e.index] != 0 {
				e.index = -1
				stack.SetByIndex(j, e)
			}
		}
	}

	dirty := make([]dirtyEntry, 0, 256)
	iter := 0
	for stack.Len() > 0 {
		failed := 0
		dirty = dirty[:0]

		for j := 0; j < stack.Len(); j++ {
			e := stack.Index(j)
			x, z, i := e.x, e.z, e.index
			if i < 0 {
				failed++
				continue
			}

			r := srcReg[i]
			d2 := 0xffff
			area := chf.Areas[i]
			s := &chf.Spans[i]
			for dir := 0; dir < 4; dir++ {
				if RcGetCon(s, dir) == RC_NOT_CONNECTED {
					continue
				}
				_, _, ai := chf.neighbour(x, z, i, dir)
				if chf.Areas[ai] != area {
					continue
				}
				if srcReg[ai] > 0 && srcReg[ai]&RC_BORDER_REG == 0 {
					if srcDist[ai]+2 < d2 {
						r = srcReg[ai]
						d2 = srcDist[ai] + 2
					}
				}
			}
			if r != 0 {
				e.index = -1 // used
				stack.SetByIndex(j, e)
				dirty = append(dirty, dirtyEntry{i, r, d2})
			} else {
				failed++
			}
		}

		// Applied after the pass so every cell of one pass sees the same state.
		for _, d := range dirty {
			srcReg[d.index] = d.region
			srcDist[d.index] = d.distance
		}

		if failed == stack.Len() {
			break
		}
		if level > 0 {
			iter++
			if iter >= maxIter {
				break
			}
		}
	}
}

// sortCellsByLevel distributes the unassigned cells below startLevel over the
// level stacks, two distance units per stack.
func sortCellsByLevel(startLevel int, chf *RcCompactHeightfield, srcReg []int, stacks []*common.Stack[levelStackEntry], logLevelsPerStack int) {
	w := chf.Width
	h := chf.Height
	startLevel = startLevel >> logLevelsPerStack

	for _, s := range stacks {
		s.Clear()
	}

	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			c := x + z*w
			for i := chf.Index[c]; i < chf.EndIndex[c]; i++ {
				if chf.Areas[i] == RC_NULL_AREA || srcReg[i] != 0 {
					continue
				}
				level := chf.Dist[i] >> logLevelsPerStack
				sId := startLevel - level
				if sId >= len(stacks) {
					continue
				}
				if sId < 0 {
					sId = 0
				}
				stacks[sId].Push(levelStackEntry{x, z, i})
			}
		}
	}
}

func appendStacks(src, dst *common.Stack[levelStackEntry], srcReg []int) {
	for j := 0; j < src.Len(); j++ {
		e := src.Index(j)
		if e.index < 0 || srcReg[e.index] != 0 {
			continue
		}
		dst.Push(e)
	}
}

// / Builds region data for the heightfield using watershed partitioning.
// /
// / Non-null regions will consist of connected, non-overlapping walkable spans
// / that form a single contour. The distance field must be built with
// / RcBuildDistanceField first. The region ids end up in RcCompactSpan.Reg and
// / chf.MaxRegions.
func RcBuildRegions(ctx Telemetry, chf *RcCompactHeightfield, minRegionArea, mergeRegionArea int) error {
	startTimer(ctx, RC_TIMER_REGIONS)
	defer stopTimer(ctx, RC_TIMER_REGIONS)

	if len(chf.Dist) != chf.SpanCount {
		RcBuildDistanceField(ctx, chf)
	}

	startTimer(ctx, RC_TIMER_REGIONS_WATERSHED)

	lvlStacks := make([]*common.Stack[levelStackEntry], rcNbStacks)
	for i := range lvlStacks {
		lvlStacks[i] = common.NewStack[levelStackEntry](256)
	}
	stack := common.NewStack[levelStackEntry](256)

	srcReg := make([]int, chf.SpanCount)
	srcDist := make([]int, chf.SpanCount)

	regionId := paintBorderRegions(chf, srcReg, 1)
	level := (chf.MaxDistance + 1) &^ 1

	sId := -1
	for level > 0 {
		if level >= 2 {
			level -= 2
		} else {
			level = 0
		}
		sId = (sId + 1) & (rcNbStacks - 1)

		if sId == 0 {
			sortCellsByLevel(level, chf, srcReg, lvlStacks, 1)
		} else {
			// Carry the leftovers of the previous level.
			appendStacks(lvlStacks[sId-1], lvlStacks[sId], srcReg)
		}

		startTimer(ctx, RC_TIMER_REGIONS_EXPAND)
		expandRegions(rcExpandIters, level, chf, srcReg, srcDist, lvlStacks[sId], false)
		stopTimer(ctx, RC_TIMER_REGIONS_EXPAND)

		startTimer(ctx, RC_TIMER_REGIONS_FLOOD)
		cur := lvlStacks[sId]
		for j := 0; j < cur.Len(); j++ {
			e := cur.Index(j)
			if e.index >= 0 && srcReg[e.index] == 0 {
				if floodRegion(e.x, e.z, e.index, level, regionId, chf, srcReg, srcDist, stack) {
					if regionId >= RC_BORDER_REG-1 {
						stopTimer(ctx, RC_TIMER_REGIONS_FLOOD)
						stopTimer(ctx, RC_TIMER_REGIONS_WATERSHED)
						return fmt.Errorf("rcBuildRegions: %w", ErrRegionOverflow)
					}
					regionId++
				}
			}
		}
		stopTimer(ctx, RC_TIMER_REGIONS_FLOOD)
	}

	// Mop up whatever the levels left unassigned.
	expandRegions(rcExpandIters*8, 0, chf, srcReg, srcDist, stack, true)
	stopTimer(ctx, RC_TIMER_REGIONS_WATERSHED)

	startTimer(ctx, RC_TIMER_REGIONS_FILTER)
	maxRegions, overlaps := mergeAndFilterRegions(minRegionArea, mergeRegionArea, regionId, chf, srcReg)
	chf.MaxRegions = maxRegions
	if len(overlaps) > 0 {
		warn(ctx, fmt.Sprintf("rcBuildRegions: %d overlapping regions.", len(overlaps)))
	}
	stopTimer(ctx, RC_TIMER_REGIONS_FILTER)

	for i := 0; i < chf.SpanCount; i++ {
		chf.Spans[i].Reg = srcReg[i]
	}
	return nil
}
