package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorustyt/gorecast/geom"
	"github.com/gorustyt/gorecast/recast"
)

const floorObj = `v 0 0 0
v 10 0 0
v 10 0 10
v 0 0 10
f 1 3 2
f 1 4 3
`

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestParsePartition(t *testing.T) {
	for s, want := range map[string]recast.PartitionType{
		"":          recast.PartitionWatershed,
		"watershed": recast.PartitionWatershed,
		"monotone":  recast.PartitionMonotone,
		"layers":    recast.PartitionLayers,
	} {
		p, err := parsePartition(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, p, s)
	}
	_, err := parsePartition("voronoi")
	assert.ErrorIs(t, err, recast.ErrInvalidConfig)
}

func TestLoadBakeConfigDefaults(t *testing.T) {
	conf, err := loadBakeConfig("")
	require.NoError(t, err)
	assert.Equal(t, 1.0, conf.Scale)
	assert.Equal(t, recast.DefaultConfig(), conf.Recast)

	_, err = loadBakeConfig(filepath.Join(t.TempDir(), "missing.hjson"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = loadBakeConfig(writeFile(t, "bad.hjson", "{ recast: [ }"))
	assert.Error(t, err)
}

func TestLoadBakeConfig(t *testing.T) {
	path := writeFile(t, "bake.hjson", "\xEF\xBB\xBF"+`{
	# floor of the test level
	input: level.obj
	scale: 2
	partition: monotone
	workers: 3
	recast: {
		cellSize: 0.5
		tileSize: 32
		medianFilter: true
	}
	volumes: [
		{ verts: [0, 0, 0, 1, 0, 0, 1, 0, 1], hmin: -1, hmax: 2, area: 3 }
		{ verts: [0, 0, 0, 1, 0, 0, 1, 0, 1], hmin: -1, hmax: 2, area: 4, mask: 1 }
	]
	log: { level: "debug", disableConsole: true }
}`)
	conf, err := loadBakeConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "level.obj", conf.Input)
	assert.Equal(t, 2.0, conf.Scale)
	assert.Equal(t, 3, conf.Workers)
	assert.Equal(t, recast.PartitionMonotone, conf.Recast.Partition)
	assert.Equal(t, 0.5, conf.Recast.CellSize)
	assert.Equal(t, 32, conf.Recast.TileSize)
	assert.True(t, conf.Recast.MedianFilter)
	assert.Equal(t, recast.DefaultConfig().CellHeight, conf.Recast.CellHeight, "unset fields keep their defaults")
	assert.Equal(t, "debug", conf.Log.Level)
	assert.True(t, conf.Log.DisableConsole)

	require.Len(t, conf.Volumes, 2)
	assert.Equal(t, recast.NewAreaModification(3), conf.Volumes[0].areaModification())
	assert.Equal(t, recast.AreaModification{Value: 4, Mask: 1}, conf.Volumes[1].areaModification())

	_, err = loadBakeConfig(writeFile(t, "part.hjson", `{ partition: "voronoi" }`))
	assert.ErrorIs(t, err, recast.ErrInvalidConfig)
}

func bakeConfigFile(t *testing.T, extra string) string {
	obj := writeFile(t, "floor.obj", floorObj)
	return writeFile(t, "bake.hjson", fmt.Sprintf(`{
	input: %q
	log: { disableConsole: true }
	%s
}`, obj, extra))
}

func TestBakeCmd(t *testing.T) {
	out := filepath.Join(t.TempDir(), "navmesh.obj")
	cmd := BakeCmd()
	cmd.SetArgs([]string{"--config", bakeConfigFile(t, "recast: { tileSize: 16 }"), "-o", out, "-w", "2"})
	require.NoError(t, cmd.Execute())

	m, err := geom.LoadObj(out, 1)
	require.NoError(t, err)
	assert.Positive(t, m.TriCount())
	_, bmax := m.Bounds()
	assert.LessOrEqual(t, bmax[0], 10.0)
}

func TestBakeCmdNoInput(t *testing.T) {
	cmd := BakeCmd()
	cmd.SetArgs([]string{})
	assert.ErrorContains(t, cmd.Execute(), "no input geometry")
}

func TestLayersCmd(t *testing.T) {
	cmd := LayersCmd()
	cmd.SetArgs([]string{"--config", bakeConfigFile(t, "")})
	assert.NoError(t, cmd.Execute())
}
