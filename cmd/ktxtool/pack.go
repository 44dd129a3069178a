package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/woozymasta/ktx"
	"github.com/woozymasta/ktx/internal/logger"
)

func packCmd() *cli.Command {
	var compression string

	return &cli.Command{
		Name:      "pack",
		Usage:     "Rewrite a KTX file with a different compression wrapper",
		ArgsUsage: "<in> <out>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "compress", Usage: "none, lz4 or zstd", Value: "zstd", Destination: &compression},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			cfg := configFrom(ctx)
			if cfg.Compression != "" && !cmd.IsSet("compress") {
				compression = cfg.Compression
			}

			if cmd.NArg() != 2 {
				return cli.Exit("error: pack requires <in> and <out>", 1)
			}
			in, out := cmd.Args().Get(0), cmd.Args().Get(1)

			c, err := ktx.ParseCompression(compression)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			// parsing validates the container before it is rewritten
			k, err := ktx.ReadFile(in)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			defer func() { _ = k.Close() }()

			if err := ktx.WriteContainer(k, out, &ktx.WriteOptions{Compression: c}); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			log.Info("packed container", "input", in, "output", out, "compression", c.String(), "size", k.Storage().Len())
			return nil
		},
	}
}
