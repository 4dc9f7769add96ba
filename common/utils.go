package common

import "github.com/go-gl/mathgl/mgl64"

type Vec3 = mgl64.Vec3

type IT interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

type IIndex interface {
	~int | ~int8 | ~int16 | ~int32 | ~uint | ~uint8 | ~uint16 | ~uint32
}

func GetVert3[T any, I IIndex](verts []T, index I) []T {
	return verts[index*3 : index*3+3]
}

func GetVert2[T any, I IIndex](verts []T, index I) []T {
	return verts[index*2 : index*2+2]
}

func GetVert4[T any, I IIndex](verts []T, index I) []T {
	return verts[index*4 : index*4+4]
}

// Prev returns the index before i in a ring of n elements.
func Prev(i, n int) int {
	if i-1 >= 0 {
		return i - 1
	}
	return n - 1
}

// Next returns the index after i in a ring of n elements.
func Next(i, n int) int {
	if i+1 < n {
		return i + 1
	}
	return 0
}

// DoWhile runs do at least once and then while cond holds.
func DoWhile(do func() (stop bool), cond func() bool) {
	if do() {
		return
	}
	for cond() {
		if do() {
			return
		}
	}
}

// Fill sets every element of s to v.
func Fill[T any](s []T, v T) {
	for i := range s {
		s[i] = v
	}
}
