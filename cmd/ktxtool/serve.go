package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/woozymasta/ktx/internal/logger"
	"github.com/woozymasta/ktx/internal/server"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		maxUpload   int64
		readTimeout time.Duration
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve an in-memory texture store over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address", Value: "127.0.0.1:8080", Destination: &addr},
			&cli.Int64Flag{Name: "max-upload", Usage: "maximum upload size in bytes", Value: server.DefaultMaxUploadBytes, Destination: &maxUpload},
			&cli.DurationFlag{Name: "read-timeout", Usage: "read header timeout", Value: 30 * time.Second, Destination: &readTimeout},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			cfg := configFrom(ctx)
			if cfg.ServerAddress != "" && !cmd.IsSet("addr") {
				addr = cfg.ServerAddress
			}
			if cfg.MaxUploadBytes != nil && !cmd.IsSet("max-upload") {
				maxUpload = *cfg.MaxUploadBytes
			}

			srv := server.New(nil, log, server.Config{
				MaxUploadBytes:    maxUpload,
				ReadHeaderTimeout: readTimeout,
			})
			return srv.Start(ctx, addr)
		},
	}
}
