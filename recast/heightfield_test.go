package recast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorustyt/gorecast/common"
)

func TestCalcBounds(t *testing.T) {
	verts := []float64{1, 2, 3}
	bmin, bmax := RcCalcBounds(verts)
	assert.Equal(t, common.Vec3{1, 2, 3}, bmin, "bounds of one vertex")
	assert.Equal(t, common.Vec3{1, 2, 3}, bmax, "bounds of one vertex")

	verts = []float64{
		1, 2, 3,
		0, 2, 6,
	}
	bmin, bmax = RcCalcBounds(verts)
	assert.Equal(t, common.Vec3{0, 2, 3}, bmin, "bounds of two vertices")
	assert.Equal(t, common.Vec3{1, 2, 6}, bmax, "bounds of two vertices")
}

func TestCalcGridSize(t *testing.T) {
	bmin, bmax := RcCalcBounds([]float64{
		1, 2, 3,
		0, 2, 6,
	})
	w, h := RcCalcGridSize(bmin, bmax, 1.5)
	assert.Equal(t, 1, w)
	assert.Equal(t, 2, h)
}

func TestCalcTileCount(t *testing.T) {
	tw, th := RcCalcTileCount(common.Vec3{0, 0, 0}, common.Vec3{10, 1, 4.8}, 0.3, 16)
	// 33 x 16 cells
	assert.Equal(t, 3, tw)
	assert.Equal(t, 1, th)
}

func TestCreateHeightfield(t *testing.T) {
	bmin, bmax := RcCalcBounds([]float64{
		1, 2, 3,
		0, 2, 6,
	})
	w, h := RcCalcGridSize(bmin, bmax, 1.5)
	hf := RcCreateHeightfield(w, h, bmin, bmax, 1.5, 2, 0)

	assert.Equal(t, w, hf.Width)
	assert.Equal(t, h, hf.Height)
	assert.Equal(t, bmin, hf.Bmin)
	assert.Equal(t, bmax, hf.Bmax)
	assert.Equal(t, 1.5, hf.Cs)
	assert.Equal(t, 2.0, hf.Ch)
	require.Len(t, hf.Spans, w*h)
	for _, s := range hf.Spans {
		assert.Equal(t, RC_NULL_SPAN, s)
	}
	assert.Zero(t, hf.WalkableSpanCount())
}

func emptyField(w, h int) *RcHeightfield {
	return RcCreateHeightfield(w, h, common.Vec3{}, common.Vec3{float64(w), 10, float64(h)}, 1, 1, 0)
}

func TestAddSpan(t *testing.T) {
	const area = 42
	const flagMergeThr = 1

	t.Run("empty column", func(t *testing.T) {
		hf := emptyField(1, 2)
		RcAddSpan(hf, 0, 0, 0, 1, area, flagMergeThr)
		assert.Equal(t, []RcSpan{{Smin: 0, Smax: 1, Area: area, Next: RC_NULL_SPAN}}, hf.Column(0, 0))
		assert.Empty(t, hf.Column(0, 1))
	})

	t.Run("merge with existing span", func(t *testing.T) {
		hf := emptyField(1, 1)
		RcAddSpan(hf, 0, 0, 0, 1, area, flagMergeThr)
		RcAddSpan(hf, 0, 0, 1, 2, area, flagMergeThr)
		col := hf.Column(0, 0)
		require.Len(t, col, 1)
		assert.Equal(t, 0, col[0].Smin)
		assert.Equal(t, 2, col[0].Smax)
		assert.Equal(t, area, col[0].Area)
	})

	t.Run("merge with spans above and below", func(t *testing.T) {
		hf := emptyField(1, 1)
		RcAddSpan(hf, 0, 0, 0, 1, area, flagMergeThr)
		RcAddSpan(hf, 0, 0, 2, 3, area, flagMergeThr)
		col := hf.Column(0, 0)
		require.Len(t, col, 2)
		assert.Equal(t, 2, col[1].Smin)
		assert.Equal(t, 3, col[1].Smax)

		RcAddSpan(hf, 0, 0, 1, 2, area, flagMergeThr)
		col = hf.Column(0, 0)
		require.Len(t, col, 1)
		assert.Equal(t, 0, col[0].Smin)
		assert.Equal(t, 3, col[0].Smax)
		assert.Equal(t, area, col[0].Area)
	})

	t.Run("insert below", func(t *testing.T) {
		hf := emptyField(1, 1)
		RcAddSpan(hf, 0, 0, 5, 6, area, flagMergeThr)
		RcAddSpan(hf, 0, 0, 0, 2, 1, flagMergeThr)
		col := hf.Column(0, 0)
		require.Len(t, col, 2)
		assert.Equal(t, 0, col[0].Smin)
		assert.Equal(t, 1, col[0].Area)
		assert.Equal(t, 5, col[1].Smin)
	})

	t.Run("area merge keeps the larger id when tops agree", func(t *testing.T) {
		hf := emptyField(1, 1)
		RcAddSpan(hf, 0, 0, 0, 5, 7, flagMergeThr)
		RcAddSpan(hf, 0, 0, 0, 4, 3, flagMergeThr)
		assert.Equal(t, 7, hf.Column(0, 0)[0].Area)

		RcAddSpan(hf, 0, 0, 0, 9, 2, flagMergeThr)
		col := hf.Column(0, 0)
		require.Len(t, col, 1)
		assert.Equal(t, 9, col[0].Smax)
		assert.Equal(t, 2, col[0].Area, "a new top far above the old one keeps the new area")
	})

	t.Run("freed spans are reused", func(t *testing.T) {
		hf := emptyField(1, 1)
		RcAddSpan(hf, 0, 0, 0, 1, area, flagMergeThr)
		RcAddSpan(hf, 0, 0, 3, 4, area, flagMergeThr)
		RcAddSpan(hf, 0, 0, 0, 4, area, flagMergeThr)
		RcAddSpan(hf, 0, 0, 6, 7, area, flagMergeThr)
		assert.Len(t, hf.pool, 2)
		assert.Len(t, hf.Column(0, 0), 2)
	})
}

func TestAddSpanOrderIndependent(t *testing.T) {
	spans := [][2]int{{0, 2}, {5, 6}, {2, 3}, {10, 12}, {7, 9}, {11, 15}}
	orders := [][]int{
		{0, 1, 2, 3, 4, 5},
		{5, 4, 3, 2, 1, 0},
		{2, 0, 4, 1, 5, 3},
		{3, 5, 1, 0, 2, 4},
	}

	var want []RcSpan
	for _, order := range orders {
		hf := emptyField(1, 1)
		for _, i := range order {
			RcAddSpan(hf, 0, 0, spans[i][0], spans[i][1], RC_WALKABLE_AREA, 1)
		}
		var got []RcSpan
		for _, s := range hf.Column(0, 0) {
			got = append(got, RcSpan{Smin: s.Smin, Smax: s.Smax, Area: s.Area})
		}
		if want == nil {
			want = got
			continue
		}
		assert.Equal(t, want, got, "order %v", order)
	}
	assert.Equal(t, []RcSpan{
		{Smin: 0, Smax: 3, Area: RC_WALKABLE_AREA},
		{Smin: 5, Smax: 6, Area: RC_WALKABLE_AREA},
		{Smin: 7, Smax: 9, Area: RC_WALKABLE_AREA},
		{Smin: 10, Smax: 15, Area: RC_WALKABLE_AREA},
	}, want)
}
