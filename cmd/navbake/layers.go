package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func LayersCmd() *cobra.Command {
	var flags bakeFlags
	c := &cobra.Command{
		Use:   "layers",
		Short: "slice every tile of an OBJ file into heightfield layers",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, b, err := flags.load(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()

			var errs error
			tw, th := b.TileCount()
			for ty := 0; ty < th; ty++ {
				for tx := 0; tx < tw; tx++ {
					layers, err := b.BuildLayers(tx, ty)
					if err != nil {
						errs = multierr.Append(errs, err)
						continue
					}
					for i, l := range layers {
						log.Info("layer",
							zap.Int("tx", tx), zap.Int("ty", ty), zap.Int("layer", i),
							zap.Int("minx", l.Minx), zap.Int("maxx", l.Maxx),
							zap.Int("miny", l.Miny), zap.Int("maxy", l.Maxy),
							zap.Int("hmin", l.Hmin), zap.Int("hmax", l.Hmax))
					}
				}
			}
			return errs
		},
	}
	flags.register(c)
	return c
}
