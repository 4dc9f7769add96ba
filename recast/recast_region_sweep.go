package recast

import (
	"fmt"
)

const RC_NULL_NEI = 0xffff

type rcSweepSpan struct {
	rowId      int // row local id
	regionId   int // region id
	numSamples int // number of samples
	neighborId int // neighbour id
}

// sweepRegions partitions chf row by row into monotone regions, writing ids
// into srcReg. It returns the next free region id.
func sweepRegions(chf *RcCompactHeightfield, srcReg []int) (int, error) {
	w := chf.Width
	h := chf.Height
	borderSize := chf.BorderSize

	id := paintBorderRegions(chf, srcReg, 1)

	sweeps := make([]rcSweepSpan, max(w, h)+1)
	prev := make([]int, 256)

	for z := borderSize; z < h-borderSize; z++ {
		if len(prev) <= id {
			prev = make([]int, id*2)
		} else {
			clear(prev[:id])
		}
		rid := 1

		for x := borderSize; x < w-borderSize; x++ {
			c := x + z*w
			for i := chf.Index[c]; i < chf.EndIndex[c]; i++ {
				s := &chf.Spans[i]
				if chf.Areas[i] == RC_NULL_AREA {
					continue
				}

				// -x
				previd := 0
				if RcGetCon(s, 0) != RC_NOT_CONNECTED {
					_, _, ai := chf.neighbour(x, z, i, 0)
					if srcReg[ai]&RC_BORDER_REG == 0 && chf.Areas[i] == chf.Areas[ai] {
						previd = srcReg[ai]
					}
				}
				if previd == 0 {
					previd = rid
					rid++
					if previd >= len(sweeps) {
						sweeps = append(sweeps, make([]rcSweepSpan, len(sweeps))...)
					}
					sweeps[previd] = rcSweepSpan{rowId: previd}
				}

				// -z
				if RcGetCon(s, 3) != RC_NOT_CONNECTED {
					_, _, ai := chf.neighbour(x, z, i, 3)
					nr := srcReg[ai]
					if nr != 0 && nr&RC_BORDER_REG == 0 && chf.Areas[i] == chf.Areas[ai] {
						sweep := &sweeps[previd]
						if sweep.neighborId == 0 || sweep.neighborId == nr {
							sweep.neighborId = nr
							sweep.numSamples++
							prev[nr]++
						} else {
							sweep.neighborId = RC_NULL_NEI
						}
					}
				}
				srcReg[i] = previd
			}
		}

		// A sweep continues the region below only when it covers all of its samples.
		for i := 1; i < rid; i++ {
			sweep := &sweeps[i]
			if sweep.neighborId != RC_NULL_NEI && sweep.neighborId != 0 && prev[sweep.neighborId] == sweep.numSamples {
				sweep.regionId = sweep.neighborId
			} else {
				if id >= RC_BORDER_REG {
					return 0, fmt.Errorf("region id %d: %w", id, ErrRegionOverflow)
				}
				sweep.regionId = id
				id++
			}
		}

		for x := borderSize; x < w-borderSize; x++ {
			c := x + z*w
			for i := chf.Index[c]; i < chf.EndIndex[c]; i++ {
				if srcReg[i] > 0 && srcReg[i] < rid {
					srcReg[i] = sweeps[srcReg[i]].regionId
				}
			}
		}
	}
	return id, nil
}

// / Builds region data for the heightfield using simple monotone partitioning.
// / Faster than watershed partitioning but can produce long, thin regions.
func RcBuildRegionsMonotone(ctx Telemetry, chf *RcCompactHeightfield, minRegionArea, mergeRegionArea int) error {
	startTimer(ctx, RC_TIMER_REGIONS)
	defer stopTimer(ctx, RC_TIMER_REGIONS)

	srcReg := make([]int, chf.SpanCount)
	id, err := sweepRegions(chf, srcReg)
	if err != nil {
		return fmt.Errorf("rcBuildRegionsMonotone: %w", err)
	}

	startTimer(ctx, RC_TIMER_REGIONS_FILTER)
	// Monotone partitioning does not generate overlapping regions.
	chf.MaxRegions, _ = mergeAndFilterRegions(minRegionArea, mergeRegionArea, id, chf, srcReg)
	stopTimer(ctx, RC_TIMER_REGIONS_FILTER)

	for i := 0; i < chf.SpanCount; i++ {
		chf.Spans[i].Reg = srcReg[i]
	}
	return nil
}

// / Builds region data for the heightfield by partitioning it into
// / non-overlapping layers. Suited for tiles that are later split with
// / RcBuildHeightfieldLayers.
func RcBuildLayerRegions(ctx Telemetry, chf *RcCompactHeightfield, minRegionArea int) error {
	startTimer(ctx, RC_TIMER_REGIONS)
	defer stopTimer(ctx, RC_TIMER_REGIONS)

	srcReg := make([]int, chf.SpanCount)
	id, err := sweepRegions(chf, srcReg)
	if err != nil {
		return fmt.Errorf("rcBuildLayerRegions: %w", err)
	}

	startTimer(ctx, RC_TIMER_REGIONS_FILTER)
	chf.MaxRegions = mergeAndFilterLayerRegions(minRegionArea, id, chf, srcReg)
	stopTimer(ctx, RC_TIMER_REGIONS_FILTER)

	for i := 0; i < chf.SpanCount; i++ {
		chf.Spans[i].Reg = srcReg[i]
	}
	return nil
}
