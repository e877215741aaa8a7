package main

import (
	"context"
	"fmt"

	"github.com/samcharles93/sc2k/internal/cityfile"
	"github.com/samcharles93/sc2k/pkg/sc2"
	"github.com/urfave/cli/v3"
)

func debugCmd() *cli.Command {
	return &cli.Command{
		Name:      "debug",
		Aliases:   []string{"d"},
		Usage:     "Print the city name and every field of the stats record",
		ArgsUsage: "<file.sc2>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return cli.Exit("debug: a save file is required", 2)
			}
			w := outWriter(cmd)
			_, _ = fmt.Fprintf(w, "Load %q\n", path)
			f, err := cityfile.Load(ctx, path)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(w, "name: %s\n", f.City.Name)
			for _, name := range sc2.StatsFields() {
				v, _ := f.City.Stats.Field(name)
				_, _ = fmt.Fprintf(w, "%s: %d\n", name, v)
			}
			return nil
		},
	}
}
