package main

import (
	"context"
	"fmt"

	"github.com/samcharles93/sc2k/internal/cityfile"
	"github.com/samcharles93/sc2k/pkg/sc2"
	"github.com/urfave/cli/v3"
)

func convertCmd() *cli.Command {
	var mode string

	return &cli.Command{
		Name:      "convert",
		Aliases:   []string{"c"},
		Usage:     "Read a save and write it back out",
		ArgsUsage: "<in.sc2> <out.sc2>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "mode",
				Usage:       "payload source (preserve, recompress, model)",
				Value:       sc2.ModePreserve.String(),
				Destination: &mode,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 2 {
				return cli.Exit("convert: expected <in.sc2> <out.sc2>", 2)
			}
			applyConvertConfig(cmd, cfg, &mode)
			m, err := sc2.ParseMode(mode)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			size, err := cityfile.Convert(ctx, cmd.Args().Get(0), cmd.Args().Get(1), m)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(outWriter(cmd), "File size: %d\n", size)
			return err
		},
	}
}
