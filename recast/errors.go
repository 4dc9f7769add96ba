package recast

import "errors"

var (
	ErrInvalidConfig        = errors.New("recast: invalid config")
	ErrTooManyLayers        = errors.New("recast: heightfield has too many layers")
	ErrRegionOverflow       = errors.New("recast: region id overflow")
	ErrContourOutline       = errors.New("recast: region has no single outline")
	ErrContourWalk          = errors.New("recast: contour walk did not terminate")
	ErrTooManyVertices      = errors.New("recast: too many vertices")
	ErrTooManyPolygons      = errors.New("recast: too many polygons")
	ErrTooManyDelaunayEdges = errors.New("recast: too many delaunay edges")
	ErrBadTriangulation     = errors.New("recast: bad triangulation")
	ErrMeshMismatch         = errors.New("recast: incompatible meshes")
)
