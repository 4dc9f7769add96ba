package main

import (
	"fmt"
	"os"

	"github.com/hjson/hjson-go/v4"

	"github.com/gorustyt/gorecast/logger"
	"github.com/gorustyt/gorecast/recast"
)

// bakeConfig is the layout of the hjson bake file.
type bakeConfig struct {
	Input  string  `json:"input"`
	Output string  `json:"output"`
	Scale  float64 `json:"scale"`

	// Partition is one of watershed, monotone or layers.
	Partition string        `json:"partition"`
	Recast    recast.Config `json:"recast"`
	Workers   int           `json:"workers"`

	Volumes []volumeConfig `json:"volumes"`
	Log     logger.Config  `json:"log"`
}

type volumeConfig struct {
	Verts []float64 `json:"verts"`
	HMin  float64   `json:"hmin"`
	HMax  float64   `json:"hmax"`
	Area  int       `json:"area"`
	Mask  *int      `json:"mask"`
}

func (v volumeConfig) areaModification() recast.AreaModification {
	mod := recast.NewAreaModification(v.Area)
	if v.Mask != nil {
		mod.Mask = *v.Mask
	}
	return mod
}

func parsePartition(s string) (recast.PartitionType, error) {
	for p := recast.PartitionWatershed; p <= recast.PartitionLayers; p++ {
		if p.String() == s {
			return p, nil
		}
	}
	if s == "" {
		return recast.PartitionWatershed, nil
	}
	return 0, fmt.Errorf("unknown partition %q: %w", s, recast.ErrInvalidConfig)
}

func loadBakeConfig(path string) (*bakeConfig, error) {
	conf := &bakeConfig{Scale: 1, Recast: recast.DefaultConfig()}
	if path == "" {
		return conf, nil
	}
	fileData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	if len(fileData) >= 3 && fileData[0] == 0xEF && fileData[1] == 0xBB && fileData[2] == 0xBF {
		fileData = fileData[3:]
	}
	if err := hjson.Unmarshal(fileData, conf); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if conf.Recast.Partition, err = parsePartition(conf.Partition); err != nil {
		return nil, err
	}
	return conf, nil
}
