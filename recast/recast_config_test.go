package recast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorustyt/gorecast/common"
)

func TestConfigValidate(t *testing.T) {
	def := DefaultConfig()
	require.NoError(t, def.Validate())

	cases := map[string]func(c *Config){
		"cell size":    func(c *Config) { c.CellSize = 0 },
		"cell height":  func(c *Config) { c.CellHeight = -1 },
		"verts low":    func(c *Config) { c.MaxVertsPerPoly = 2 },
		"verts high":   func(c *Config) { c.MaxVertsPerPoly = RC_VERTS_PER_POLYGON + 1 },
		"slope":        func(c *Config) { c.AgentMaxSlope = 90 },
		"agent height": func(c *Config) { c.AgentHeight = 0 },
		"agent radius": func(c *Config) { c.AgentRadius = -0.1 },
		"tile size":    func(c *Config) { c.TileSize = -16 },
		"partition":    func(c *Config) { c.Partition = PartitionType(5) },
	}
	for name, mod := range cases {
		t.Run(name, func(t *testing.T) {
			c := DefaultConfig()
			mod(&c)
			assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
		})
	}
}

func TestNewBuilderConfig(t *testing.T) {
	cfg := DefaultConfig()
	bmin := common.Vec3{0, 0, 0}
	bmax := common.Vec3{30, 5, 15}
	rc := NewBuilderConfig(cfg, bmin, bmax, 0, 0)

	assert.False(t, rc.Tiled)
	assert.Zero(t, rc.BorderSize)
	assert.Equal(t, 100, rc.Width)
	assert.Equal(t, 50, rc.Height)
	assert.Equal(t, bmin, rc.Bmin)
	assert.Equal(t, bmax, rc.Bmax)

	assert.Equal(t, 10, rc.WalkableHeight)
	assert.Equal(t, 4, rc.WalkableClimb)
	assert.Equal(t, 2, rc.WalkableRadius)
	assert.Equal(t, 40, rc.MaxEdgeLen)
	assert.Equal(t, 64, rc.MinRegionArea)
	assert.Equal(t, 400, rc.MergeRegionArea)
	assert.InDelta(t, 1.8, rc.DetailSampleDist, 1e-9)
	assert.InDelta(t, 0.2, rc.DetailSampleMaxError, 1e-9)
	assert.Equal(t, cfg, rc.Source)

	cfg.DetailSampleDist = 0.5
	assert.Zero(t, NewBuilderConfig(cfg, bmin, bmax, 0, 0).DetailSampleDist, "sampling is disabled below 0.9 cells")
}

func TestNewBuilderConfigTiled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TileSize = 32
	rc := NewBuilderConfig(cfg, common.Vec3{0, 0, 0}, common.Vec3{30, 5, 30}, 1, 2)

	assert.True(t, rc.Tiled)
	assert.Equal(t, 1, rc.Tx)
	assert.Equal(t, 2, rc.Ty)
	assert.Equal(t, rc.WalkableRadius+3, rc.BorderSize)
	assert.Equal(t, 32+2*rc.BorderSize, rc.Width)
	assert.Equal(t, rc.Width, rc.Height)

	ts := 32 * cfg.CellSize
	pad := float64(rc.BorderSize) * cfg.CellSize
	assert.InDelta(t, ts-pad, rc.Bmin[0], 1e-9)
	assert.InDelta(t, 2*ts-pad, rc.Bmin[2], 1e-9)
	assert.InDelta(t, 2*ts+pad, rc.Bmax[0], 1e-9)
	assert.InDelta(t, 3*ts+pad, rc.Bmax[2], 1e-9)
	assert.Equal(t, 0.0, rc.Bmin[1])
	assert.Equal(t, 5.0, rc.Bmax[1])

	// The field spans exactly Width cells.
	assert.InDelta(t, float64(rc.Width)*cfg.CellSize, rc.Bmax[0]-rc.Bmin[0], 1e-9)
}
