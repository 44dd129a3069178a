package main

import (
	"context"
	"fmt"
	"image/png"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/woozymasta/ktx"
	"github.com/woozymasta/ktx/internal/logger"
)

func extractCmd() *cli.Command {
	var (
		level  int
		face   int
		output string
		asPNG  bool
	)

	return &cli.Command{
		Name:      "extract",
		Usage:     "Write one mip level as raw bytes or PNG",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "level", Aliases: []string{"l"}, Usage: "mip level", Destination: &level},
			&cli.IntFlag{Name: "face", Usage: "cubemap face (raw output only)", Value: -1, Destination: &face},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "destination file", Required: true, Destination: &output},
			&cli.BoolFlag{Name: "png", Usage: "decode RGBA8/BGRA8 levels to PNG", Destination: &asPNG},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			path := cmd.Args().First()
			if path == "" {
				return cli.Exit("error: extract requires a file argument", 1)
			}

			k, err := ktx.OpenMapped(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			defer func() { _ = k.Close() }()

			if asPNG {
				if err := writePNG(k, level, output); err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				log.Info("extracted level", "level", level, "output", output, "format", "png")
				return nil
			}

			data := k.MipData(level)
			if face >= 0 {
				data = k.FaceData(level, face)
			}
			if data == nil {
				return cli.Exit(fmt.Sprintf("error: %v: level %d face %d of %d levels",
					ktx.ErrLevelOutOfRange, level, face, k.NumLevels()), 1)
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			log.Info("extracted level", "level", level, "output", output, "bytes", len(data))
			return nil
		},
	}
}

func writePNG(k *ktx.KTX, level int, output string) error {
	img, err := k.Image(level)
	if err != nil {
		return err
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %q: %w", output, err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}
