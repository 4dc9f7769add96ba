package geom

import (
	"fmt"
	"sync"

	"github.com/gorustyt/gorecast/common"
	"github.com/gorustyt/gorecast/recast"
)

const (
	MAX_CONVEXVOL_PTS = 12
	MAX_VOLUMES       = 256

	// Triangles per chunk of the tile query tree.
	TRIS_PER_CHUNK = 256
)

// TriMesh is one batch of indexed triangles.
type TriMesh struct {
	Verts []float64
	Tris  []int

	chunkyOnce sync.Once
	chunky     *ChunkyTriMesh
}

func NewTriMesh(verts []float64, tris []int) *TriMesh {
	return &TriMesh{Verts: verts, Tris: tris}
}

func (m *TriMesh) VertCount() int { return len(m.Verts) / 3 }
func (m *TriMesh) TriCount() int  { return len(m.Tris) / 3 }

// Bounds returns the AABB of the mesh vertices.
func (m *TriMesh) Bounds() (bmin, bmax common.Vec3) {
	if len(m.Verts) == 0 {
		return
	}
	return recast.RcCalcBounds(m.Verts)
}

// ChunkyMesh lazily builds the chunk tree of the mesh. Safe for concurrent
// tile builds.
func (m *TriMesh) ChunkyMesh() *ChunkyTriMesh {
	m.chunkyOnce.Do(func() {
		m.chunky = NewChunkyTriMesh(m.Verts, m.Tris, TRIS_PER_CHUNK)
	})
	return m.chunky
}

// TrisOverlappingRect returns the triangles whose chunk overlaps the xz
// rectangle. Triangles outside the rectangle may be included.
func (m *TriMesh) TrisOverlappingRect(bmin, bmax [2]float64) []int {
	cm := m.ChunkyMesh()
	var tris []int
	for _, id := range cm.ChunksOverlappingRect(bmin, bmax) {
		tris = append(tris, cm.NodeTris(id)...)
	}
	return tris
}

// ConvexVolume marks the spans inside an extruded convex xz polygon.
type ConvexVolume struct {
	Verts      []float64
	HMin, HMax float64
	Area       recast.AreaModification
}

// InputGeom is the source geometry of a bake.
type InputGeom interface {
	MeshBoundsMin() common.Vec3
	MeshBoundsMax() common.Vec3
	Meshes() []*TriMesh
	ConvexVolumes() []ConvexVolume
}

// Geometry is an in-memory InputGeom.
type Geometry struct {
	meshes     []*TriMesh
	volumes    []ConvexVolume
	bmin, bmax common.Vec3
}

func NewGeometry(meshes ...*TriMesh) *Geometry {
	g := &Geometry{}
	for _, m := range meshes {
		g.AddMesh(m)
	}
	return g
}

// LoadGeometry reads an OBJ file into a single-mesh Geometry.
func LoadGeometry(path string, scale float64) (*Geometry, error) {
	m, err := LoadObj(path, scale)
	if err != nil {
		return nil, err
	}
	return NewGeometry(m), nil
}

func (g *Geometry) AddMesh(m *TriMesh) {
	if m.VertCount() == 0 {
		return
	}
	bmin, bmax := m.Bounds()
	if len(g.meshes) == 0 {
		g.bmin, g.bmax = bmin, bmax
	} else {
		common.Vmin(g.bmin[:], bmin[:])
		common.Vmax(g.bmax[:], bmax[:])
	}
	g.meshes = append(g.meshes, m)
}

func (g *Geometry) AddConvexVolume(verts []float64, hmin, hmax float64, area recast.AreaModification) error {
	if len(g.volumes) >= MAX_VOLUMES {
		return fmt.Errorf("convex volume limit %d reached", MAX_VOLUMES)
	}
	if n := len(verts) / 3; n < 3 || n > MAX_CONVEXVOL_PTS {
		return fmt.Errorf("convex volume needs 3..%d points, got %d", MAX_CONVEXVOL_PTS, n)
	}
	g.volumes = append(g.volumes, ConvexVolume{
		Verts: append([]float64(nil), verts...),
		HMin:  hmin,
		HMax:  hmax,
		Area:  area,
	})
	return nil
}

func (g *Geometry) DeleteConvexVolume(i int) {
	g.volumes = append(g.volumes[:i], g.volumes[i+1:]...)
}

func (g *Geometry) MeshBoundsMin() common.Vec3    { return g.bmin }
func (g *Geometry) MeshBoundsMax() common.Vec3    { return g.bmax }
func (g *Geometry) Meshes() []*TriMesh            { return g.meshes }
func (g *Geometry) ConvexVolumes() []ConvexVolume { return g.volumes }
