package debug_utils

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/gorustyt/gorecast/recast"
)

// DuDumpPolyMeshToObj writes the polygons of pmesh as a Wavefront OBJ fan
// triangulation, lifted slightly above the voxel floor.
func DuDumpPolyMeshToObj(pmesh *recast.RcPolyMesh, w io.Writer) error {
	bw := bufio.NewWriter(w)
	nvp := pmesh.Nvp
	cs := pmesh.Cs
	ch := pmesh.Ch
	orig := pmesh.Bmin

	fmt.Fprint(bw, "# Recast Navmesh\n")
	fmt.Fprint(bw, "o NavMesh\n\n")

	for i := 0; i < pmesh.Nverts; i++ {
		v := pmesh.Verts[i*3:]
		x := orig[0] + float64(v[0])*cs
		y := orig[1] + float64(v[1]+1)*ch + 0.1
		z := orig[2] + float64(v[2])*cs
		fmt.Fprintf(bw, "v %f %f %f\n", x, y, z)
	}

	fmt.Fprint(bw, "\n")

	for i := 0; i < pmesh.Npolys; i++ {
		p := pmesh.Poly(i)
		for j := 2; j < nvp; j++ {
			if p[j] == recast.RC_MESH_NULL_IDX {
				break
			}
			fmt.Fprintf(bw, "f %d %d %d\n", p[0]+1, p[j-1]+1, p[j]+1)
		}
	}
	return bw.Flush()
}

// DuDumpPolyMeshDetailToObj writes the detail triangles of dmesh as OBJ.
func DuDumpPolyMeshDetailToObj(dmesh *recast.RcPolyMeshDetail, w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprint(bw, "# Recast Navmesh\n")
	fmt.Fprint(bw, "o NavMesh\n\n")

	for i := 0; i < dmesh.Nverts; i++ {
		v := dmesh.Verts[i*3:]
		fmt.Fprintf(bw, "v %f %f %f\n", v[0], v[1], v[2])
	}

	fmt.Fprint(bw, "\n")

	for i := 0; i < dmesh.Nmeshes; i++ {
		m := dmesh.Meshes[i*4:]
		bverts := m[0]
		btris := m[2]
		ntris := m[3]
		tris := dmesh.Tris[btris*4:]
		for j := 0; j < ntris; j++ {
			fmt.Fprintf(bw, "f %d %d %d\n",
				bverts+tris[j*4+0]+1,
				bverts+tris[j*4+1]+1,
				bverts+tris[j*4+2]+1)
		}
	}
	return bw.Flush()
}

var buildTimeLines = []struct {
	name  string
	phase recast.TelemetryType
}{
	{"- Rasterize", recast.RC_TIMER_RASTERIZE_TRIANGLES},
	{"- Build Compact", recast.RC_TIMER_BUILD_COMPACTHEIGHTFIELD},
	{"- Filter Low Obstacles", recast.RC_TIMER_FILTER_LOW_OBSTACLES},
	{"- Filter Border", recast.RC_TIMER_FILTER_BORDER},
	{"- Filter Walkable", recast.RC_TIMER_FILTER_WALKABLE},
	{"- Erode Area", recast.RC_TIMER_ERODE_AREA},
	{"- Median Area", recast.RC_TIMER_MEDIAN_AREA},
	{"- Mark Box Area", recast.RC_TIMER_MARK_BOX_AREA},
	{"- Mark Convex Area", recast.RC_TIMER_MARK_CONVEXPOLY_AREA},
	{"- Mark Cylinder Area", recast.RC_TIMER_MARK_CYLINDER_AREA},
	{"- Build Distance Field", recast.RC_TIMER_DISTANCEFIELD},
	{"    - Distance", recast.RC_TIMER_DISTANCEFIELD_DIST},
	{"    - Blur", recast.RC_TIMER_DISTANCEFIELD_BLUR},
	{"- Build Regions", recast.RC_TIMER_REGIONS},
	{"    - Watershed", recast.RC_TIMER_REGIONS_WATERSHED},
	{"      - Expand", recast.RC_TIMER_REGIONS_EXPAND},
	{"      - Find Basins", recast.RC_TIMER_REGIONS_FLOOD},
	{"    - Filter", recast.RC_TIMER_REGIONS_FILTER},
	{"- Build Layers", recast.RC_TIMER_BUILD_LAYERS},
	{"- Build Contours", recast.RC_TIMER_CONTOURS},
	{"    - Trace", recast.RC_TIMER_CONTOURS_TRACE},
	{"    - Simplify", recast.RC_TIMER_CONTOURS_SIMPLIFY},
	{"- Build Polymesh", recast.RC_TIMER_POLYMESH},
	{"- Build Polymesh Detail", recast.RC_TIMER_POLYMESHDETAIL},
	{"- Merge Polymeshes", recast.RC_TIMER_MERGE_POLYMESH},
	{"- Merge Polymesh Details", recast.RC_TIMER_MERGE_POLYMESHDETAIL},
}

// DuLogBuildTimes logs every phase that ran with its share of total.
// Phase totals are summed over all tiles, so shares can exceed 100% when
// tiles were built in parallel.
func DuLogBuildTimes(log *zap.Logger, timings *recast.Timings, total time.Duration) {
	pc := 0.0
	if total > 0 {
		pc = 100.0 / float64(total)
	}
	log.Info("Build Times")
	for _, l := range buildTimeLines {
		t := timings.Total(l.phase)
		if t == 0 {
			continue
		}
		log.Info(fmt.Sprintf("%s:\t%.2fms\t(%.1f%%)", l.name, float64(t)/float64(time.Millisecond), float64(t)*pc))
	}
	log.Info(fmt.Sprintf("=== TOTAL:\t%.2fms", float64(total)/float64(time.Millisecond)))
}
