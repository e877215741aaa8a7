package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/samcharles93/sc2k/internal/cityfile"
	"github.com/samcharles93/sc2k/internal/logger"
	"github.com/urfave/cli/v3"
)

func inspectCmd() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "List the header and chunk directory of a save",
		ArgsUsage: "<file.sc2>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return cli.Exit("inspect: a save file is required", 2)
			}
			f, err := cityfile.Load(ctx, path)
			if err != nil {
				return err
			}
			c := f.City.Container
			if !c.Header.Valid() {
				logger.FromContext(ctx).Warn("not a FORM/SCDH container, output may be meaningless", "file", path)
			}

			w := outWriter(cmd)
			_, _ = fmt.Fprintf(w, "file:     %s (%d bytes)\n", path, f.Size)
			_, _ = fmt.Fprintf(w, "type:     %#08x\n", c.Header.FileType)
			_, _ = fmt.Fprintf(w, "length:   %d\n", c.Header.Length)
			_, _ = fmt.Fprintf(w, "marker:   %#08x\n", c.Header.Marker)
			_, _ = fmt.Fprintf(w, "name:     %s\n\n", f.City.Name)

			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "TAG\tSTORED\tBYTES\tKIND")
			for _, ch := range c.Chunks() {
				kind := "raw"
				switch {
				case !ch.Tag.Known():
					kind = "unknown"
				case ch.Tag.Compressed():
					kind = "rle"
				}
				_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", ch.Tag, ch.Length, len(ch.Data), kind)
			}
			return tw.Flush()
		},
	}
}
