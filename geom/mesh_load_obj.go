package geom

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const maxFaceVerts = 32

type objLoader struct {
	scale float64
	verts []float64
	tris  []int
	line  int
}

// LoadObj reads the vertices and faces of a Wavefront OBJ file.
func LoadObj(path string, scale float64) (*TriMesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := ParseObj(f, scale)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ParseObj reads `v` and `f` records; other records are ignored. Polygonal
// faces are triangulated as fans and negative indices count back from the
// last vertex.
func ParseObj(r io.Reader, scale float64) (*TriMesh, error) {
	l := &objLoader{scale: scale}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		l.line++
		row := strings.TrimSpace(sc.Text())
		if row == "" || strings.HasPrefix(row, "#") {
			continue
		}
		if err := l.parseRow(strings.Fields(row)); err != nil {
			return nil, fmt.Errorf("line %d: %w", l.line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return NewTriMesh(l.verts, l.tris), nil
}

func (l *objLoader) parseRow(ss []string) error {
	switch ss[0] {
	case "v":
		return l.parseVertex(ss[1:])
	case "f":
		return l.parseFace(ss[1:])
	}
	return nil
}

func (l *objLoader) parseVertex(ss []string) error {
	if len(ss) < 3 {
		return fmt.Errorf("vertex needs 3 coordinates, got %d", len(ss))
	}
	var v [3]float64
	for i := range v {
		f, err := strconv.ParseFloat(ss[i], 64)
		if err != nil {
			return err
		}
		v[i] = f * l.scale
	}
	l.verts = append(l.verts, v[:]...)
	return nil
}

func (l *objLoader) parseFace(ss []string) error {
	nverts := len(l.verts) / 3
	face := make([]int, 0, len(ss))
	for _, s := range ss {
		if len(face) >= maxFaceVerts {
			break
		}
		// Only the position index of v/vt/vn is used.
		vi, err := strconv.Atoi(strings.SplitN(s, "/", 2)[0])
		if err != nil {
			return err
		}
		if vi < 0 {
			vi += nverts
		} else {
			vi--
		}
		face = append(face, vi)
	}
	for i := 2; i < len(face); i++ {
		a, b, c := face[0], face[i-1], face[i]
		if a < 0 || a >= nverts || b < 0 || b >= nverts || c < 0 || c >= nverts {
			continue
		}
		l.tris = append(l.tris, a, b, c)
	}
	return nil
}
