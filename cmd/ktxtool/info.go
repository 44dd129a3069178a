package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/woozymasta/ktx"
	"github.com/woozymasta/ktx/internal/logger"
	"github.com/woozymasta/ktx/internal/report"
)

func infoCmd() *cli.Command {
	var (
		asJSON     bool
		useMmap    bool
		headerOnly bool
	)

	return &cli.Command{
		Name:      "info",
		Usage:     "Print header, key-values and levels of a KTX file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print the report as JSON", Destination: &asJSON},
			&cli.BoolFlag{Name: "mmap", Usage: "memory-map the file instead of reading it", Destination: &useMmap},
			&cli.BoolFlag{Name: "header", Usage: "read and print only the fixed header", Destination: &headerOnly},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			cfg := configFrom(ctx)
			if cfg.Mmap != nil && !cmd.IsSet("mmap") {
				useMmap = *cfg.Mmap
			}

			path := cmd.Args().First()
			if path == "" {
				return cli.Exit("error: info requires a file argument", 1)
			}

			if headerOnly {
				h, err := ktx.ReadHeader(path)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				_, err = fmt.Fprintln(cmd.Root().Writer, h)
				return err
			}

			k, err := openContainer(path, useMmap)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			defer func() { _ = k.Close() }()
			log.Debug("opened container", "path", path, "mmap", useMmap, "owned", ktx.IsOwned(k.Storage()))

			r, err := report.New(k, path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			return writeReport(cmd.Root().Writer, r, asJSON)
		},
	}
}

func openContainer(path string, useMmap bool) (*ktx.KTX, error) {
	if useMmap {
		return ktx.OpenMapped(path)
	}
	return ktx.ReadFile(path)
}

func writeReport(w io.Writer, r *report.Report, asJSON bool) error {
	if asJSON {
		return r.WriteJSON(w)
	}
	return r.WriteText(w)
}
