package recast

import (
	"github.com/gorustyt/gorecast/common"
)

// rcRegion is the per-region bookkeeping of the merge and filter passes.
type rcRegion struct {
	id               int
	spanCount        int
	areaType         int
	remap            bool
	visited          bool
	overlap          bool
	connectsToBorder bool
	ymin, ymax       int
	connections      *common.Stack[int]
	floors           *common.Stack[int]
}

func newRegions(nreg int) []*rcRegion {
	regions := make([]*rcRegion, nreg)
	for i := range regions {
		regions[i] = &rcRegion{
			id:          i,
			ymin:        0xffff,
			connections: common.NewStack[int](8),
			floors:      common.NewStack[int](4),
		}
	}
	return regions
}

// removeAdjacentDuplicates collapses equal neighbours of a circular id list.
func removeAdjacentDuplicates(con *common.Stack[int]) {
	for i := 0; i < con.Len() && con.Len() > 1; {
		ni := (i + 1) % con.Len()
		if con.Index(i) == con.Index(ni) {
			con.RemoveAt(i)
		} else {
			i++
		}
	}
}

func replaceNeighbour(reg *rcRegion, oldId, newId int) {
	neiChanged := false
	for i := 0; i < reg.connections.Len(); i++ {
		if reg.connections.Index(i) == oldId {
			reg.connections.SetByIndex(i, newId)
			neiChanged = true
		}
	}
	for i := 0; i < reg.floors.Len(); i++ {
		if reg.floors.Index(i) == oldId {
			reg.floors.SetByIndex(i, newId)
		}
	}
	if neiChanged {
		removeAdjacentDuplicates(reg.connections)
	}
}

// canMergeWithRegion rejects merges that would produce a region touching the
// other along two separate boundary runs, or one stacked on the other.
func canMergeWithRegion(rega, regb *rcRegion) bool {
	if rega.areaType != regb.areaType {
		return false
	}
	n := 0
	for _, c := range rega.connections.Data() {
		if c == regb.id {
			n++
		}
	}
	if n > 1 {
		return false
	}
	return !rega.floors.Contains(regb.id)
}

func findInsertionPoint(con []int, id int) int {
	for i, c := range con {
		if c == id {
			return i
		}
	}
	return -1
}

// addConnections appends the ring con to reg, starting right after ins and
// skipping the element at ins.
func addConnections(reg *rcRegion, con []int, ins int) {
	n := len(con)
	for i := 0; i < n-1; i++ {
		reg.connections.Push(con[(ins+1+i)%n])
	}
}

// mergeRegions folds regb into rega, splicing their neighbour rings at the shared edge.
func mergeRegions(rega, regb *rcRegion) bool {
	aid := rega.id
	bid := regb.id

	acon := append([]int(nil), rega.connections.Data()...)
	bcon := append([]int(nil), regb.connections.Data()...)

	insa := findInsertionPoint(acon, bid)
	if insa == -1 {
		return false
	}
	insb := findInsertionPoint(bcon, aid)
	if insb == -1 {
		return false
	}

	rega.connections.Clear()
	addConnections(rega, acon, insa)
	addConnections(rega, bcon, insb)
	removeAdjacentDuplicates(rega.connections)

	for _, f := range regb.floors.Data() {
		rega.floors.AddUnique(f)
	}
	rega.spanCount += regb.spanCount
	regb.spanCount = 0
	regb.connections.Clear()
	return true
}

func isRegionConnectedToBorder(reg *rcRegion) bool {
	// A null neighbour means open space.
	return reg.connections.Contains(0)
}

func isSolidEdge(chf *RcCompactHeightfield, srcReg []int, x, z, i, dir int) bool {
	r := 0
	if RcGetCon(&chf.Spans[i], dir) != RC_NOT_CONNECTED {
		_, _, ai := chf.neighbour(x, z, i, dir)
		r = srcReg[ai]
	}
	return r != srcReg[i]
}

// walkRegionContour follows the region boundary from span i and records the
// neighbour region of every boundary run into cont.
func walkRegionContour(x, z, i, dir int, chf *RcCompactHeightfield, srcReg []int, cont *common.Stack[int]) {
	startDir := dir
	starti := i

	curReg := 0
	if RcGetCon(&chf.Spans[i], dir) != RC_NOT_CONNECTED {
		_, _, ai := chf.neighbour(x, z, i, dir)
		curReg = srcReg[ai]
	}
	cont.Push(curReg)

	for iter := 1; iter < rcMaxContourWalk; iter++ {
		s := &chf.Spans[i]
		if isSolidEdge(chf, srcReg, x, z, i, dir) {
			r := 0
			if RcGetCon(s, dir) != RC_NOT_CONNECTED {
				_, _, ai := chf.neighbour(x, z, i, dir)
				r = srcReg[ai]
			}
			if r != curReg {
				curReg = r
				cont.Push(curReg)
			}
			dir = (dir + 1) & 0x3 // Rotate CW
		} else {
			if RcGetCon(s, dir) == RC_NOT_CONNECTED {
				// Should not happen.
				return
			}
			x, z, i = chf.neighbour(x, z, i, dir)
			dir = (dir + 3) & 0x3 // Rotate CCW
		}
		if starti == i && startDir == dir {
			break
		}
	}
	removeAdjacentDuplicates(cont)
}

// findRegionConnections counts spans, floors and neighbour rings of every region.
func findRegionConnections(regions []*rcRegion, chf *RcCompactHeightfield, srcReg []int) {
	nreg := len(regions)
	w := chf.Width
	for z := 0; z < chf.Height; z++ {
		for x := 0; x < w; x++ {
			c := x + z*w
			for i := chf.Index[c]; i < chf.EndIndex[c]; i++ {
				r := srcReg[i]
				if r == 0 || r >= nreg {
					continue
				}
				reg := regions[r]
				reg.spanCount++

				for j := chf.Index[c]; j < chf.EndIndex[c]; j++ {
					if i == j {
						continue
					}
					floorId := srcReg[j]
					if floorId == 0 || floorId >= nreg {
						continue
					}
					if floorId == r {
						reg.overlap = true
					}
					reg.floors.AddUnique(floorId)
				}

				if reg.connections.Len() > 0 {
					continue
				}
				reg.areaType = chf.Areas[i]

				ndir := -1
				for dir := 0; dir < 4; dir++ {
					if isSolidEdge(chf, srcReg, x, z, i, dir) {
						ndir = dir
						break
					}
				}
				if ndir != -1 {
					walkRegionContour(x, z, i, ndir, chf, srcReg, reg.connections)
				}
			}
		}
	}
}

// removeTooSmallRegions clears connected clusters smaller than minRegionArea
// unless one of them touches a tile border.
func removeTooSmallRegions(regions []*rcRegion, minRegionArea int) {
	stack := common.NewStack[int](32)
	trace := common.NewStack[int](32)
	for i, reg := range regions {
		if reg.id == 0 || reg.id&RC_BORDER_REG != 0 {
			continue
		}
		if reg.spanCount == 0 || reg.visited {
			continue
		}

		connectsToBorder := false
		spanCount := 0
		stack.Clear()
		trace.Clear()

		reg.visited = true
		stack.Push(i)
		for !stack.Empty() {
			ri := stack.Pop()
			creg := regions[ri]
			spanCount += creg.spanCount
			trace.Push(ri)

			for _, c := range creg.connections.Data() {
				if c&RC_BORDER_REG != 0 {
					connectsToBorder = true
					continue
				}
				nei := regions[c]
				if nei.visited {
					continue
				}
				if nei.id == 0 || nei.id&RC_BORDER_REG != 0 {
					continue
				}
				stack.Push(nei.id)
				nei.visited = true
			}
		}

		// Border clusters are kept since their real size is unknown.
		if spanCount < minRegionArea && !connectsToBorder {
			for _, t := range trace.Data() {
				regions[t].spanCount = 0
				regions[t].id = 0
			}
		}
	}
}

// mergeTooSmallRegionsWithNeighbours merges small or enclosed regions into
// their smallest mergeable neighbour until nothing changes. Ties keep the
// first neighbour found.
func mergeTooSmallRegionsWithNeighbours(regions []*rcRegion, mergeRegionSize int) {
	common.DoWhile(func() bool {
		mergeCount := 0
		for _, reg := range regions {
			if reg.id == 0 || reg.id&RC_BORDER_REG != 0 {
				continue
			}
			if reg.overlap || reg.spanCount == 0 {
				continue
			}
			if reg.spanCount > mergeRegionSize && isRegionConnectedToBorder(reg) {
				continue
			}

			smallest := 0xfffffff
			mergeId := reg.id
			for _, c := range reg.connections.Data() {
				if c&RC_BORDER_REG != 0 {
					continue
				}
				mreg := regions[c]
				if mreg.id == 0 || mreg.id&RC_BORDER_REG != 0 || mreg.overlap {
					continue
				}
				if mreg.spanCount < smallest && canMergeWithRegion(reg, mreg) && canMergeWithRegion(mreg, reg) {
					smallest = mreg.spanCount
					mergeId = mreg.id
				}
			}
			if mergeId == reg.id {
				continue
			}

			oldId := reg.id
			target := regions[mergeId]
			if !mergeRegions(target, reg) {
				continue
			}
			for _, other := range regions {
				if other.id == 0 || other.id&RC_BORDER_REG != 0 {
					continue
				}
				// Regions merged into reg earlier follow it.
				if other.id == oldId {
					other.id = mergeId
				}
				replaceNeighbour(other, oldId, mergeId)
			}
			mergeCount++
		}
		return mergeCount == 0
	}, func() bool { return true })
}

// compressRegionIds renumbers the surviving non-border regions to 1..N and returns N.
func compressRegionIds(regions []*rcRegion) int {
	for _, reg := range regions {
		reg.remap = reg.id != 0 && reg.id&RC_BORDER_REG == 0
	}
	regIdGen := 0
	for i, reg := range regions {
		if !reg.remap {
			continue
		}
		oldId := reg.id
		regIdGen++
		for _, other := range regions[i:] {
			if other.id == oldId {
				other.id = regIdGen
				other.remap = false
			}
		}
	}
	return regIdGen
}

func remapRegions(srcReg []int, regions []*rcRegion) {
	for i, r := range srcReg {
		if r&RC_BORDER_REG == 0 {
			srcReg[i] = regions[r].id
		}
	}
}

// mergeAndFilterRegions runs the shared post-pass of watershed and monotone
// partitioning. It returns the new maximum region id and the ids of regions
// that overlap themselves in a column.
func mergeAndFilterRegions(minRegionArea, mergeRegionSize, maxRegionId int, chf *RcCompactHeightfield, srcReg []int) (int, []int) {
	regions := newRegions(maxRegionId + 1)

	findRegionConnections(regions, chf, srcReg)
	removeTooSmallRegions(regions, minRegionArea)
	mergeTooSmallRegionsWithNeighbours(regions, mergeRegionSize)

	maxRegionId = compressRegionIds(regions)
	remapRegions(srcReg, regions)

	var overlaps []int
	for _, reg := range regions {
		if reg.overlap {
			overlaps = append(overlaps, reg.id)
		}
	}
	return maxRegionId, overlaps
}

// findLayerRegionNeighbours collects spans, height range, 4-neighbours and
// vertically stacked regions of every monotone region.
func findLayerRegionNeighbours(regions []*rcRegion, chf *RcCompactHeightfield, srcReg []int) {
	nreg := len(regions)
	w := chf.Width
	lregs := common.NewStack[int](32)
	for z := 0; z < chf.Height; z++ {
		for x := 0; x < w; x++ {
			c := x + z*w
			lregs.Clear()
			for i := chf.Index[c]; i < chf.EndIndex[c]; i++ {
				s := &chf.Spans[i]
				ri := srcReg[i]
				if ri == 0 || ri >= nreg {
					continue
				}
				reg := regions[ri]
				reg.spanCount++
				reg.areaType = chf.Areas[i]
				reg.ymin = min(reg.ymin, s.Y)
				reg.ymax = max(reg.ymax, s.Y)
				lregs.Push(ri)

				for dir := 0; dir < 4; dir++ {
					if RcGetCon(s, dir) == RC_NOT_CONNECTED {
						continue
					}
					_, _, ai := chf.neighbour(x, z, i, dir)
					rai := srcReg[ai]
					if rai > 0 && rai < nreg && rai != ri {
						reg.connections.AddUnique(rai)
					}
					if rai&RC_BORDER_REG != 0 {
						reg.connectsToBorder = true
					}
				}
			}

			// Regions sharing a column overlap.
			l := lregs.Data()
			for i := 0; i < len(l)-1; i++ {
				for j := i + 1; j < len(l); j++ {
					if l[i] != l[j] {
						regions[l[i]].floors.AddUnique(l[j])
						regions[l[j]].floors.AddUnique(l[i])
					}
				}
			}
		}
	}
}

// mergeMonotoneRegions groups same-area regions that do not overlap the root
// into one layer each, breadth first.
func mergeMonotoneRegions(regions []*rcRegion) {
	layerId := 1
	stack := common.NewStack[int](32)
	for i := 1; i < len(regions); i++ {
		root := regions[i]
		if root.id != 0 {
			continue
		}

		root.id = layerId
		stack.Clear()
		stack.Push(i)
		for !stack.Empty() {
			reg := regions[stack.PopFront()]
			for _, nei := range reg.connections.Data() {
				regn := regions[nei]
				if regn.id != 0 {
					continue
				}
				if reg.areaType != regn.areaType {
					continue
				}
				if root.floors.Contains(nei) {
					continue
				}

				stack.Push(nei)
				regn.id = layerId
				for _, f := range regn.floors.Data() {
					root.floors.AddUnique(f)
				}
				root.ymin = min(root.ymin, regn.ymin)
				root.ymax = max(root.ymax, regn.ymax)
				root.spanCount += regn.spanCount
				regn.spanCount = 0
				root.connectsToBorder = root.connectsToBorder || regn.connectsToBorder
			}
		}
		layerId++
	}
}

func removeSmallLayerRegions(regions []*rcRegion, minRegionArea int) {
	for _, reg := range regions {
		if reg.spanCount > 0 && reg.spanCount < minRegionArea && !reg.connectsToBorder {
			id := reg.id
			for _, other := range regions {
				if other.id == id {
					other.id = 0
				}
			}
		}
	}
}

// mergeAndFilterLayerRegions turns monotone regions into non-overlapping
// layers and returns the new maximum region id.
func mergeAndFilterLayerRegions(minRegionArea, maxRegionId int, chf *RcCompactHeightfield, srcReg []int) int {
	regions := newRegions(maxRegionId + 1)
	findLayerRegionNeighbours(regions, chf, srcReg)

	for _, reg := range regions {
		reg.id = 0
	}
	mergeMonotoneRegions(regions)
	removeSmallLayerRegions(regions, minRegionArea)

	maxRegionId = compressRegionIds(regions)
	remapRegions(srcReg, regions)
	return maxRegionId
}
