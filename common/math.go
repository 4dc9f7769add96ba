package common

import (
	"cmp"
	"math"
)

type Float interface {
	~float32 | ~float64
}

// Sqr returns a*a.
func Sqr[T IT](a T) T {
	return a * a
}

func Abs[T IT](a T) T {
	if a < 0 {
		return -a
	}
	return a
}

// Clamp limits value to [lo, hi].
func Clamp[T cmp.Ordered](value, lo, hi T) T {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// / Performs a vector addition. (v1 + v2)
func Vadd[T Float](res, v1, v2 []T) {
	res[0] = v1[0] + v2[0]
	res[1] = v1[1] + v2[1]
	res[2] = v1[2] + v2[2]
}

// / Performs a vector subtraction. (v1 - v2)
func Vsub[T Float](res, v1, v2 []T) {
	res[0] = v1[0] - v2[0]
	res[1] = v1[1] - v2[1]
	res[2] = v1[2] - v2[2]
}

// / Selects the minimum value of each element from the specified vectors.
func Vmin[T Float](mn, v []T) {
	mn[0] = min(mn[0], v[0])
	mn[1] = min(mn[1], v[1])
	mn[2] = min(mn[2], v[2])
}

// / Selects the maximum value of each element from the specified vectors.
func Vmax[T Float](mx, v []T) {
	mx[0] = max(mx[0], v[0])
	mx[1] = max(mx[1], v[1])
	mx[2] = max(mx[2], v[2])
}

func Vcross[T Float](res, v1, v2 []T) {
	res[0] = v1[1]*v2[2] - v1[2]*v2[1]
	res[1] = v1[2]*v2[0] - v1[0]*v2[2]
	res[2] = v1[0]*v2[1] - v1[1]*v2[0]
}

func Vdot[T Float](v1, v2 []T) T {
	return v1[0]*v2[0] + v1[1]*v2[1] + v1[2]*v2[2]
}

func VdistSqr[T Float](v1, v2 []T) T {
	dx := v2[0] - v1[0]
	dy := v2[1] - v1[1]
	dz := v2[2] - v1[2]
	return dx*dx + dy*dy + dz*dz
}

func Vdist[T Float](v1, v2 []T) T {
	return T(math.Sqrt(float64(VdistSqr(v1, v2))))
}

// / Normalizes the vector in place.
func Vnormalize[T Float](v []T) {
	d := 1.0 / math.Sqrt(float64(Sqr(v[0])+Sqr(v[1])+Sqr(v[2])))
	v[0] *= T(d)
	v[1] *= T(d)
	v[2] *= T(d)
}

// Vequal reports whether two points share the same position within a small tolerance.
func Vequal[T Float](p0, p1 []T) bool {
	thr := T(1.0 / 16384.0)
	return VdistSqr(p0, p1) < thr*thr
}

// Vdot2D is the dot product on the xz-plane.
func Vdot2D[T Float](a, b []T) T {
	return a[0]*b[0] + a[2]*b[2]
}

// Vcross2D returns the signed area spanned by p1->p2 and p1->p3 on the xz-plane.
func Vcross2D[T Float](p1, p2, p3 []T) T {
	u1 := p2[0] - p1[0]
	v1 := p2[2] - p1[2]
	u2 := p3[0] - p1[0]
	v2 := p3[2] - p1[2]
	return u1*v2 - v1*u2
}

func Vdist2DSqr[T Float](p, q []T) T {
	dx := q[0] - p[0]
	dz := q[2] - p[2]
	return dx*dx + dz*dz
}

func Vdist2D[T Float](p, q []T) T {
	return T(math.Sqrt(float64(Vdist2DSqr(p, q))))
}

// / Gets the standard width (x-axis) offset for the specified direction.
func GetDirOffsetX(direction int) int {
	offset := [4]int{-1, 0, 1, 0}
	return offset[direction&0x03]
}

// / Gets the standard height (z-axis) offset for the specified direction.
func GetDirOffsetY(direction int) int {
	offset := [4]int{0, 1, 0, -1}
	return offset[direction&0x03]
}

// / Gets the direction for the specified offset. One of x and y should be 0.
func GetDirForOffset(offsetX, offsetZ int) int {
	dirs := [5]int{3, 0, -1, 2, 1}
	return dirs[((offsetZ+1)<<1)+offsetX]
}

// Vec3Of copies the first three elements of v.
func Vec3Of(v []float64) Vec3 {
	return Vec3{v[0], v[1], v[2]}
}
