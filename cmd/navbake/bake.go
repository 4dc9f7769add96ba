package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gorustyt/gorecast/builder"
	"github.com/gorustyt/gorecast/debug_utils"
	"github.com/gorustyt/gorecast/geom"
	"github.com/gorustyt/gorecast/logger"
)

type bakeFlags struct {
	configFile string
	input      string
	output     string
	workers    int
}

func (f *bakeFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&f.configFile, "config", "", "hjson bake config file")
	c.Flags().StringVarP(&f.input, "input", "i", "", "input OBJ file, overrides the config")
	c.Flags().IntVarP(&f.workers, "workers", "w", 0, "tile build workers, 0 uses every CPU")
}

// load reads the config, applies the flag overrides and opens the input.
func (f *bakeFlags) load(cmd *cobra.Command) (*bakeConfig, *zap.Logger, *builder.Builder, error) {
	conf, err := loadBakeConfig(f.configFile)
	if err != nil {
		return nil, nil, nil, err
	}
	if cmd.Flags().Changed("input") {
		conf.Input = f.input
	}
	if cmd.Flags().Changed("output") {
		conf.Output = f.output
	}
	if cmd.Flags().Changed("workers") {
		conf.Workers = f.workers
	}
	if conf.Input == "" {
		return nil, nil, nil, fmt.Errorf("no input geometry given")
	}

	log, err := logger.New(conf.Log)
	if err != nil {
		return nil, nil, nil, err
	}

	g, err := geom.LoadGeometry(conf.Input, conf.Scale)
	if err != nil {
		return nil, nil, nil, err
	}
	for i, v := range conf.Volumes {
		if err := g.AddConvexVolume(v.Verts, v.HMin, v.HMax, v.areaModification()); err != nil {
			return nil, nil, nil, fmt.Errorf("volume %d: %w", i, err)
		}
	}

	b, err := builder.New(conf.Recast, g, builder.WithLogger(log))
	if err != nil {
		return nil, nil, nil, err
	}
	return conf, log, b, nil
}

func BakeCmd() *cobra.Command {
	var flags bakeFlags
	c := &cobra.Command{
		Use:   "bake",
		Short: "build the polygon and detail mesh of an OBJ file",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, log, b, err := flags.load(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			tw, th := b.TileCount()
			log.Info("bake started", zap.String("input", conf.Input), zap.Int("tiles", tw*th),
				zap.Stringer("partition", conf.Recast.Partition))

			start := time.Now()
			results, buildErr := b.BuildTiles(ctx, conf.Workers, func(completed, total int) {
				log.Debug("tile done", zap.Int("completed", completed), zap.Int("total", total))
			})
			if buildErr != nil {
				log.Warn("some tiles failed", zap.Error(buildErr))
			}
			pmesh, dmesh, err := b.MergeResults(results)
			if err != nil {
				return err
			}
			debug_utils.DuLogBuildTimes(log, b.Timings(), time.Since(start))
			if pmesh == nil {
				if buildErr != nil {
					return buildErr
				}
				return fmt.Errorf("no walkable polygons in %s", conf.Input)
			}
			log.Info("bake finished",
				zap.Int("polys", pmesh.Npolys),
				zap.Int("verts", pmesh.Nverts),
				zap.Int("warnings", len(b.Timings().Warnings())))

			if conf.Output != "" {
				if err := writeObj(conf.Output, func(f *os.File) error {
					if dmesh != nil {
						return debug_utils.DuDumpPolyMeshDetailToObj(dmesh, f)
					}
					return debug_utils.DuDumpPolyMeshToObj(pmesh, f)
				}); err != nil {
					return err
				}
			}
			return buildErr
		},
	}
	flags.register(c)
	c.Flags().StringVarP(&flags.output, "output", "o", "", "OBJ file receiving the baked mesh")
	return c
}

func writeObj(path string, dump func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := dump(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
