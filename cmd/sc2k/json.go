package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/goccy/go-json"
	"github.com/samcharles93/sc2k/internal/cityfile"
	"github.com/urfave/cli/v3"
)

func jsonCmd() *cli.Command {
	var indent bool

	return &cli.Command{
		Name:      "json",
		Aliases:   []string{"j"},
		Usage:     "Print the name, stats and tile grid of each save as JSON",
		ArgsUsage: "<file.sc2> [file.sc2...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "indent",
				Usage:       "indent the output",
				Destination: &indent,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			paths := cmd.Args().Slice()
			if len(paths) == 0 {
				return cli.Exit("json: at least one save file is required", 2)
			}
			applyJSONConfig(cmd, cfg, &indent)

			files, err := cityfile.LoadAll(ctx, paths, runtime.GOMAXPROCS(0))
			if err != nil {
				return err
			}
			w := outWriter(cmd)
			for _, f := range files {
				var b []byte
				if indent {
					b, err = json.MarshalIndent(f.City, "", "  ")
				} else {
					b, err = json.Marshal(f.City)
				}
				if err != nil {
					return fmt.Errorf("encode %s: %w", f.Path, err)
				}
				if _, err := fmt.Fprintln(w, string(b)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
