package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, Clamp(2, 0, 1), "higher than range")
	assert.Equal(t, 1, Clamp(1, 0, 2), "within range")
	assert.Equal(t, 1, Clamp(0, 1, 2), "lower than range")
	assert.Equal(t, 0.5, Clamp(0.5, 0.0, 1.0))
}

func TestSqrAbs(t *testing.T) {
	assert.Equal(t, 4, Sqr(2))
	assert.Equal(t, 16, Sqr(-4))
	assert.Equal(t, 0, Sqr(0))
	assert.Equal(t, 2.25, Sqr(1.5))
	assert.Equal(t, 3, Abs(-3))
	assert.Equal(t, 3, Abs(3))
}

func TestVcross(t *testing.T) {
	res := make([]float64, 3)
	Vcross(res, []float64{3, -3, 1}, []float64{4, 9, 2})
	assert.Equal(t, []float64{-15, -2, 39}, res)

	v := []float64{3, -3, 1}
	Vcross(res, v, v)
	assert.Equal(t, []float64{0, 0, 0}, res, "cross product with itself is zero")
}

func TestVdot(t *testing.T) {
	assert.Equal(t, 1.0, Vdot([]float64{1, 0, 0}, []float64{1, 0, 0}))
	assert.Equal(t, 14.0, Vdot([]float64{1, 2, 3}, []float64{1, 2, 3}))
	assert.Equal(t, 0.0, Vdot([]float64{1, 0, 0}, []float64{0, 1, 0}))
}

func TestVaddVsub(t *testing.T) {
	res := make([]float64, 3)
	Vadd(res, []float64{1, 2, 3}, []float64{5, 6, 7})
	assert.Equal(t, []float64{6, 8, 10}, res)
	Vsub(res, []float64{5, 4, 3}, []float64{1, 2, 3})
	assert.Equal(t, []float64{4, 2, 0}, res)
}

func TestVminVmax(t *testing.T) {
	mn := []float64{0, 2, -1}
	Vmin(mn, []float64{1, -1, 0})
	assert.Equal(t, []float64{0, -1, -1}, mn)

	mx := []float64{0, 2, -1}
	Vmax(mx, []float64{1, -1, 0})
	assert.Equal(t, []float64{1, 2, 0}, mx)
}

func TestVdist(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{4, 6, 3}
	assert.Equal(t, 25.0, VdistSqr(a, b))
	assert.Equal(t, 5.0, Vdist(a, b))
	assert.Equal(t, 25.0, Vdist2DSqr(a, []float64{4, 100, 7}))
	assert.Equal(t, 5.0, Vdist2D(a, []float64{4, 100, 7}), "y is ignored")
}

func TestVnormalize(t *testing.T) {
	v := []float64{3, 0, 4}
	Vnormalize(v)
	assert.InDelta(t, 0.6, v[0], 1e-12)
	assert.InDelta(t, 0.8, v[2], 1e-12)
	assert.InDelta(t, 1.0, math.Sqrt(Vdot(v, v)), 1e-12)
}

func TestVequal(t *testing.T) {
	assert.True(t, Vequal([]float64{1, 2, 3}, []float64{1, 2, 3.00001}))
	assert.False(t, Vequal([]float64{1, 2, 3}, []float64{1, 2, 3.001}))
}

func Test2D(t *testing.T) {
	assert.Equal(t, 5.0, Vdot2D([]float64{1, 9, 2}, []float64{1, 9, 2}))
	// The sign flips with the winding.
	assert.Equal(t, 1.0, Vcross2D([]float64{0, 0, 0}, []float64{1, 0, 0}, []float64{0, 0, 1}))
	assert.Equal(t, -1.0, Vcross2D([]float64{0, 0, 0}, []float64{0, 0, 1}, []float64{1, 0, 0}))
}

func TestDirOffsets(t *testing.T) {
	for dir := 0; dir < 4; dir++ {
		dx, dz := GetDirOffsetX(dir), GetDirOffsetY(dir)
		assert.Equal(t, 1, Abs(dx)+Abs(dz), "dir %d is a unit step", dir)
		assert.Equal(t, dir, GetDirForOffset(dx, dz))
		// Opposite directions cancel.
		assert.Zero(t, dx+GetDirOffsetX(dir+2))
		assert.Zero(t, dz+GetDirOffsetY(dir+2))
	}
	assert.Equal(t, -1, GetDirOffsetX(4), "directions wrap")
}

func TestVec3Of(t *testing.T) {
	assert.Equal(t, Vec3{1, 2, 3}, Vec3Of([]float64{1, 2, 3, 4}))
}

func TestRing(t *testing.T) {
	assert.Equal(t, 4, Prev(0, 5))
	assert.Equal(t, 2, Prev(3, 5))
	assert.Equal(t, 0, Next(4, 5))
	assert.Equal(t, 4, Next(3, 5))
}

func TestGetVert(t *testing.T) {
	verts := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	assert.Equal(t, []int{3, 4, 5}, GetVert3(verts, 1))
	assert.Equal(t, []int{4, 5}, GetVert2(verts, uint16(2)))
	assert.Equal(t, []int{8, 9, 10, 11}, GetVert4(verts, 2))

	// The returned slice aliases the input.
	GetVert3(verts, 0)[0] = 42
	assert.Equal(t, 42, verts[0])
}

func TestDoWhile(t *testing.T) {
	n := 0
	DoWhile(func() bool { n++; return false }, func() bool { return false })
	assert.Equal(t, 1, n, "the body runs at least once")

	n = 0
	DoWhile(func() bool { n++; return false }, func() bool { return n < 5 })
	assert.Equal(t, 5, n)

	n = 0
	DoWhile(func() bool { n++; return n == 3 }, func() bool { return true })
	assert.Equal(t, 3, n, "the body can stop the loop")
}

func TestFill(t *testing.T) {
	s := make([]int, 4)
	Fill(s, 0xffff)
	assert.Equal(t, []int{0xffff, 0xffff, 0xffff, 0xffff}, s)
}
