package recast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var partitions = []PartitionType{PartitionWatershed, PartitionMonotone, PartitionLayers}

func TestPartitionTypeString(t *testing.T) {
	assert.Equal(t, "watershed", PartitionWatershed.String())
	assert.Equal(t, "monotone", PartitionMonotone.String())
	assert.Equal(t, "layers", PartitionLayers.String())
	assert.Equal(t, "PartitionType(7)", PartitionType(7).String())
}

func TestPartitionFlatField(t *testing.T) {
	for _, p := range partitions {
		t.Run(p.String(), func(t *testing.T) {
			chf := flatField(t, 20)
			RcErodeWalkableArea(nil, 1, chf)
			require.NoError(t, RcPartition(nil, chf, p, 4, 400))

			ids := regionIds(chf)
			require.Len(t, ids, 1)
			for id, n := range ids {
				assert.NotZero(t, id)
				assert.Equal(t, 18*18, n)
			}
			assert.GreaterOrEqual(t, chf.MaxRegions, 1)
		})
	}
}

func TestPartitionSeparatedAreas(t *testing.T) {
	for _, p := range partitions {
		t.Run(p.String(), func(t *testing.T) {
			chf := flatField(t, 21)
			for z := 0; z < chf.Height; z++ {
				chf.Areas[chf.Index[10+z*chf.Width]] = RC_NULL_AREA
			}
			require.NoError(t, RcPartition(nil, chf, p, 4, 400))

			ids := regionIds(chf)
			assert.Len(t, ids, 2)
			left := chf.Spans[chf.Index[2+5*chf.Width]].Reg
			right := chf.Spans[chf.Index[18+5*chf.Width]].Reg
			assert.NotZero(t, left)
			assert.NotZero(t, right)
			assert.NotEqual(t, left, right)
		})
	}
}

func TestPartitionRemovesSmallRegions(t *testing.T) {
	for _, p := range partitions {
		t.Run(p.String(), func(t *testing.T) {
			chf := flatField(t, 20)
			for z := 0; z < chf.Height; z++ {
				chf.Areas[chf.Index[16+z*chf.Width]] = RC_NULL_AREA
			}
			// The island east of the gap has 3*20 spans.
			require.NoError(t, RcPartition(nil, chf, p, 100, 400))

			for z := 0; z < chf.Height; z++ {
				for x := 0; x < chf.Width; x++ {
					reg := chf.Spans[chf.Index[x+z*chf.Width]].Reg
					switch {
					case x < 16:
						assert.NotZero(t, reg, "cell %d,%d", x, z)
					case x > 16:
						assert.Zero(t, reg, "cell %d,%d", x, z)
					}
				}
			}
		})
	}
}

func TestPartitionKeepsAreaBoundaries(t *testing.T) {
	for _, p := range partitions {
		t.Run(p.String(), func(t *testing.T) {
			chf := flatField(t, 20)
			RcMarkBoxArea(nil, []float64{0, 0, 0}, []float64{9.5, 1, 20}, NewAreaModification(5), chf)
			require.NoError(t, RcPartition(nil, chf, p, 4, 400))

			regArea := map[int]int{}
			for i := 0; i < chf.SpanCount; i++ {
				reg := chf.Spans[i].Reg
				require.NotZero(t, reg)
				if a, ok := regArea[reg]; ok {
					assert.Equal(t, a, chf.Areas[i], "region %d mixes areas", reg)
				}
				regArea[reg] = chf.Areas[i]
			}
			assert.GreaterOrEqual(t, len(regArea), 2)
		})
	}
}

func TestBuildDistanceField(t *testing.T) {
	chf := flatField(t, 9)
	RcBuildDistanceField(nil, chf)

	require.Len(t, chf.Dist, chf.SpanCount)
	assert.Equal(t, 8, chf.MaxDistance)
	centre := chf.Dist[chf.Index[4+4*chf.Width]]
	for i, d := range chf.Dist {
		assert.LessOrEqual(t, d, centre, "span %d", i)
	}
	assert.Zero(t, chf.Dist[chf.Index[0]])
	assert.Zero(t, chf.Dist[chf.Index[8+8*chf.Width]])
}

func TestPartitionUnknownType(t *testing.T) {
	chf := flatField(t, 4)
	err := RcPartition(nil, chf, PartitionType(9), 0, 0)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestBuildRegionsReportsOverlap(t *testing.T) {
	// A ledge floats above the centre of a 5x5 floor. Its neighbours link
	// to the floor span below it, so watershed hands both spans of the
	// column the same region.
	hf := emptyField(5, 5)
	for z := 0; z < 5; z++ {
		for x := 0; x < 5; x++ {
			RcAddSpan(hf, x, z, 0, 1, RC_WALKABLE_AREA, 1)
		}
	}
	RcAddSpan(hf, 2, 2, 2, 3, RC_WALKABLE_AREA, 1)
	chf, err := RcBuildCompactHeightfield(nil, 1, 2, hf)
	require.NoError(t, err)

	c := 2 + 2*chf.Width
	require.Equal(t, 2, chf.EndIndex[c]-chf.Index[c])

	var tm Timings
	var warned []string
	ctx := NewRecorder(&tm, func(msg string) { warned = append(warned, msg) })
	require.NoError(t, RcPartition(ctx, chf, PartitionWatershed, 0, 0))

	floor, ledge := chf.Spans[chf.Index[c]], chf.Spans[chf.Index[c]+1]
	require.NotZero(t, floor.Reg)
	assert.Equal(t, floor.Reg, ledge.Reg)

	assert.Equal(t, []string{"rcBuildRegions: 1 overlapping regions."}, tm.Warnings())
	assert.Equal(t, tm.Warnings(), warned)
}
