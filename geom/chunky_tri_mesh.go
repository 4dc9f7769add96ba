package geom

import (
	"math"
	"sort"
)

// ChunkyTriMeshNode is a node of the xz bounding volume tree. Leaves have
// I >= 0 and own Tris[I*3 : (I+N)*3]; inner nodes store the negated escape
// offset to their next sibling in I.
type ChunkyTriMeshNode struct {
	Bmin [2]float64
	Bmax [2]float64
	I    int
	N    int
}

// ChunkyTriMesh splits a triangle list into spatial chunks so a tile build
// only rasterizes the triangles overlapping its bounds.
type ChunkyTriMesh struct {
	Nodes           []ChunkyTriMeshNode
	Tris            []int
	MaxTrisPerChunk int
}

type boundsItem struct {
	bmin [2]float64
	bmax [2]float64
	i    int
}

func calcExtends(items []boundsItem) (bmin, bmax [2]float64) {
	bmin = items[0].bmin
	bmax = items[0].bmax
	for _, it := range items[1:] {
		bmin[0] = math.Min(bmin[0], it.bmin[0])
		bmin[1] = math.Min(bmin[1], it.bmin[1])
		bmax[0] = math.Max(bmax[0], it.bmax[0])
		bmax[1] = math.Max(bmax[1], it.bmax[1])
	}
	return
}

func longestAxis(x, y float64) int {
	if y > x {
		return 1
	}
	return 0
}

func (cm *ChunkyTriMesh) subdivide(items []boundsItem, trisPerChunk int, inTris []int) {
	icur := len(cm.Nodes)
	cm.Nodes = append(cm.Nodes, ChunkyTriMeshNode{})
	bmin, bmax := calcExtends(items)
	cm.Nodes[icur].Bmin = bmin
	cm.Nodes[icur].Bmax = bmax

	if len(items) <= trisPerChunk {
		// Leaf
		cm.Nodes[icur].I = len(cm.Tris) / 3
		cm.Nodes[icur].N = len(items)
		for _, it := range items {
			cm.Tris = append(cm.Tris, inTris[it.i*3:it.i*3+3]...)
		}
		return
	}

	// Split
	axis := longestAxis(bmax[0]-bmin[0], bmax[1]-bmin[1])
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].bmin[axis] < items[j].bmin[axis]
	})
	isplit := len(items) / 2
	cm.subdivide(items[:isplit], trisPerChunk, inTris)
	cm.subdivide(items[isplit:], trisPerChunk, inTris)

	// Negative index means escape.
	cm.Nodes[icur].I = -(len(cm.Nodes) - icur)
}

// NewChunkyTriMesh builds the chunk tree of the triangles tris over verts.
func NewChunkyTriMesh(verts []float64, tris []int, trisPerChunk int) *ChunkyTriMesh {
	ntris := len(tris) / 3
	nchunks := (ntris + trisPerChunk - 1) / trisPerChunk
	cm := &ChunkyTriMesh{
		Nodes: make([]ChunkyTriMeshNode, 0, nchunks*4),
		Tris:  make([]int, 0, ntris*3),
	}
	if ntris == 0 {
		return cm
	}

	items := make([]boundsItem, ntris)
	for i := range items {
		t := tris[i*3 : i*3+3]
		it := &items[i]
		it.i = i
		// Calc triangle XZ bounds.
		it.bmin = [2]float64{verts[t[0]*3], verts[t[0]*3+2]}
		it.bmax = it.bmin
		for _, v := range t[1:] {
			it.bmin[0] = math.Min(it.bmin[0], verts[v*3])
			it.bmin[1] = math.Min(it.bmin[1], verts[v*3+2])
			it.bmax[0] = math.Max(it.bmax[0], verts[v*3])
			it.bmax[1] = math.Max(it.bmax[1], verts[v*3+2])
		}
	}
	cm.subdivide(items, trisPerChunk, tris)

	for _, node := range cm.Nodes {
		if node.I >= 0 {
			cm.MaxTrisPerChunk = max(cm.MaxTrisPerChunk, node.N)
		}
	}
	return cm
}

// NodeTris returns the triangle indices owned by leaf id.
func (cm *ChunkyTriMesh) NodeTris(id int) []int {
	node := cm.Nodes[id]
	return cm.Tris[node.I*3 : (node.I+node.N)*3]
}

func checkOverlapRect(amin, amax, bmin, bmax [2]float64) bool {
	if amin[0] > bmax[0] || amax[0] < bmin[0] {
		return false
	}
	if amin[1] > bmax[1] || amax[1] < bmin[1] {
		return false
	}
	return true
}

func (cm *ChunkyTriMesh) traverse(overlaps func(node *ChunkyTriMeshNode) bool) []int {
	var ids []int
	for i := 0; i < len(cm.Nodes); {
		node := &cm.Nodes[i]
		overlap := overlaps(node)
		isLeafNode := node.I >= 0
		if isLeafNode && overlap {
			ids = append(ids, i)
		}
		if overlap || isLeafNode {
			i++
		} else {
			i += -node.I
		}
	}
	return ids
}

// ChunksOverlappingRect returns the leaf ids whose xz bounds overlap bmin-bmax.
func (cm *ChunkyTriMesh) ChunksOverlappingRect(bmin, bmax [2]float64) []int {
	return cm.traverse(func(node *ChunkyTriMeshNode) bool {
		return checkOverlapRect(bmin, bmax, node.Bmin, node.Bmax)
	})
}

func checkOverlapSegment(p, q, bmin, bmax [2]float64) bool {
	const eps = 1e-6
	tmin, tmax := 0.0, 1.0
	d := [2]float64{q[0] - p[0], q[1] - p[1]}
	for i := 0; i < 2; i++ {
		if math.Abs(d[i]) < eps {
			// Ray is parallel to slab. No hit if origin not within slab
			if p[i] < bmin[i] || p[i] > bmax[i] {
				return false
			}
			continue
		}
		// Compute intersection t value of ray with near and far plane of slab
		ood := 1.0 / d[i]
		t1 := (bmin[i] - p[i]) * ood
		t2 := (bmax[i] - p[i]) * ood
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return false
		}
	}
	return true
}

// ChunksOverlappingSegment returns the leaf ids whose xz bounds the segment p-q crosses.
func (cm *ChunkyTriMesh) ChunksOverlappingSegment(p, q [2]float64) []int {
	return cm.traverse(func(node *ChunkyTriMeshNode) bool {
		return checkOverlapSegment(p, q, node.Bmin, node.Bmax)
	})
}
