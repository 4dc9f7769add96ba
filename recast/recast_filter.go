package recast

import "github.com/gorustyt/gorecast/common"

// Open-ended ceiling used while filtering the solid heightfield.
const rcFilterMaxHeight = 0xffff

func (hf *RcHeightfield) ceiling(s int) int {
	if n := hf.pool[s].Next; n != RC_NULL_SPAN {
		return hf.pool[n].Smin
	}
	return rcFilterMaxHeight
}

// / Marks non-walkable spans as walkable if their maximum is within walkableClimb
// / of the walkable span directly below them. This lets the agent step over curbs
// / and stairs.
func RcFilterLowHangingWalkableObstacles(ctx Telemetry, walkableClimb int, hf *RcHeightfield) {
	startTimer(ctx, RC_TIMER_FILTER_LOW_OBSTACLES)
	defer stopTimer(ctx, RC_TIMER_FILTER_LOW_OBSTACLES)

	for c := range hf.Spans {
		prev := RC_NULL_SPAN
		prevWalkable := false
		prevArea := RC_NULL_AREA
		for s := hf.Spans[c]; s != RC_NULL_SPAN; s = hf.pool[s].Next {
			sp := &hf.pool[s]
			walkable := sp.Area != RC_NULL_AREA
			if !walkable && prevWalkable && common.Abs(sp.Smax-hf.pool[prev].Smax) <= walkableClimb {
				sp.Area = prevArea
			}
			// Copy the original flag so a fill cannot cascade over several obstacles.
			prevWalkable = walkable
			prevArea = sp.Area
			prev = s
		}
	}
}

// / Marks spans that are ledges as not-walkable.
// / A ledge is a span with a neighbour whose floor is more than walkableClimb
// / below it, or whose reachable neighbours spread more than walkableClimb apart.
func RcFilterLedgeSpans(ctx Telemetry, walkableHeight, walkableClimb int, hf *RcHeightfield) {
	startTimer(ctx, RC_TIMER_FILTER_BORDER)
	defer stopTimer(ctx, RC_TIMER_FILTER_BORDER)

	w := hf.Width
	h := hf.Height
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			for s := hf.Spans[x+z*w]; s != RC_NULL_SPAN; s = hf.pool[s].Next {
				if hf.pool[s].Area == RC_NULL_AREA {
					continue
				}
				floor := hf.pool[s].Smax
				ceiling := hf.ceiling(s)

				lowestDiff := rcFilterMaxHeight
				lowestFloor := floor
				highestFloor := floor

				for dir := 0; dir < 4; dir++ {
					nx := x + common.GetDirOffsetX(dir)
					nz := z + common.GetDirOffsetY(dir)
					if nx < 0 || nz < 0 || nx >= w || nz >= h {
						lowestDiff = -walkableClimb - 1
						break
					}
					ns := hf.Spans[nx+nz*w]

					// The space below the first neighbour span counts as a drop.
					nceil := rcFilterMaxHeight
					if ns != RC_NULL_SPAN {
						nceil = hf.pool[ns].Smin
					}
					if min(ceiling, nceil)-floor >= walkableHeight {
						lowestDiff = -walkableClimb - 1
						break
					}

					for ; ns != RC_NULL_SPAN; ns = hf.pool[ns].Next {
						nfloor := hf.pool[ns].Smax
						nceil = hf.ceiling(ns)
						if min(ceiling, nceil)-max(floor, nfloor) < walkableHeight {
							continue
						}
						diff := nfloor - floor
						lowestDiff = min(lowestDiff, diff)
						if common.Abs(diff) <= walkableClimb {
							lowestFloor = min(lowestFloor, nfloor)
							highestFloor = max(highestFloor, nfloor)
						} else if diff < -walkableClimb {
							break
						}
					}
				}

				if lowestDiff < -walkableClimb {
					hf.pool[s].Area = RC_NULL_AREA
				} else if highestFloor-lowestFloor > walkableClimb {
					hf.pool[s].Area = RC_NULL_AREA
				}
			}
		}
	}
}

// / Marks walkable spans as not walkable if the clearance above the span is
// / less than walkableHeight.
func RcFilterWalkableLowHeightSpans(ctx Telemetry, walkableHeight int, hf *RcHeightfield) {
	startTimer(ctx, RC_TIMER_FILTER_WALKABLE)
	defer stopTimer(ctx, RC_TIMER_FILTER_WALKABLE)

	for c := range hf.Spans {
		for s := hf.Spans[c]; s != RC_NULL_SPAN; s = hf.pool[s].Next {
			if hf.ceiling(s)-hf.pool[s].Smax < walkableHeight {
				hf.pool[s].Area = RC_NULL_AREA
			}
		}
	}
}
