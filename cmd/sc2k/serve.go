package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/samcharles93/sc2k/internal/api"
	"github.com/samcharles93/sc2k/internal/logger"
	"github.com/urfave/cli/v3"
)

type serveOptions struct {
	addr        string
	readTimeout time.Duration
	maxUpload   int64
	rateLimit   float64
	rateBurst   int64
	indent      bool
}

func serveCmd() *cli.Command {
	var o serveOptions

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve uploaded saves over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &o.addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Value:       30 * time.Second,
				Destination: &o.readTimeout,
			},
			&cli.Int64Flag{
				Name:        "max-upload",
				Usage:       "largest accepted upload in bytes",
				Value:       api.DefaultMaxUpload,
				Destination: &o.maxUpload,
			},
			&cli.FloatFlag{
				Name:        "rate-limit",
				Usage:       "requests per second per client (0 disables)",
				Value:       20,
				Destination: &o.rateLimit,
			},
			&cli.Int64Flag{
				Name:        "rate-burst",
				Usage:       "burst size per client",
				Value:       40,
				Destination: &o.rateBurst,
			},
			&cli.BoolFlag{
				Name:        "indent",
				Usage:       "indent JSON city bodies",
				Destination: &o.indent,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyServeConfig(cmd, cfg, &o)
			log := logger.FromContext(ctx)

			server := api.NewServer(api.NewCityStore(), api.Options{
				MaxUploadBytes: o.maxUpload,
				RateLimit:      o.rateLimit,
				RateBurst:      int(o.rateBurst),
				JSONIndent:     o.indent,
			})
			e := newEcho(server)
			log.Info("starting server", "address", o.addr, "max_upload", o.maxUpload, "rate_limit", o.rateLimit)
			sc := echo.StartConfig{
				Address: o.addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = o.readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}

func newEcho(server *api.Server) *echo.Echo {
	e := echo.New()
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	server.Register(e)
	return e
}
