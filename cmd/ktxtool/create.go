package main

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/woozymasta/ktx"
	"github.com/woozymasta/ktx/internal/logger"
)

func createCmd() *cli.Command {
	var (
		input       string
		output      string
		levels      int
		kvPairs     []string
		compression string
		orientation string
	)

	return &cli.Command{
		Name:  "create",
		Usage: "Create an RGBA8 KTX file with a mip chain from a PNG or JPEG image",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "source image", Required: true, Destination: &input},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "destination KTX file", Required: true, Destination: &output},
			&cli.IntFlag{Name: "levels", Usage: "maximum mip levels (0 = full chain)", Destination: &levels},
			&cli.StringSliceFlag{Name: "kv", Usage: "extra key=value metadata, repeatable", Destination: &kvPairs},
			&cli.StringFlag{Name: "compress", Usage: "wrap the file: none, lz4 or zstd", Destination: &compression},
			&cli.StringFlag{Name: "orientation", Usage: "KTXorientation value", Value: ktx.DefaultOrientation, Destination: &orientation},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			cfg := configFrom(ctx)
			if cfg.MaxLevels != nil && !cmd.IsSet("levels") {
				levels = *cfg.MaxLevels
			}
			if cfg.Orientation != "" && !cmd.IsSet("orientation") {
				orientation = cfg.Orientation
			}
			if cfg.Compression != "" && !cmd.IsSet("compress") {
				compression = cfg.Compression
			}

			c, err := ktx.ParseCompression(compression)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			kvs, err := parseKeyValueFlags(kvPairs)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			img, err := decodeImageFile(input)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			k, err := ktx.FromImage(img, &ktx.ImageOptions{
				MaxLevels:   levels,
				Orientation: orientation,
				KeyValues:   kvs,
			})
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			defer func() { _ = k.Close() }()

			if err := ktx.WriteContainer(k, output, &ktx.WriteOptions{Compression: c}); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			b := img.Bounds()
			log.Info("created texture", "output", output, "width", b.Dx(), "height", b.Dy(),
				"levels", k.NumLevels(), "compression", c.String())
			return nil
		},
	}
}

// parseKeyValueFlags turns key=value flags into NUL terminated metadata
// entries. Later duplicates replace earlier ones.
func parseKeyValueFlags(pairs []string) (ktx.KeyValues, error) {
	var kvs ktx.KeyValues
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --kv %q, want key=value", pair)
		}
		kvs.Set(key, append([]byte(value), 0))
	}
	return kvs, nil
}

func decodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %q: %w", path, err)
	}
	return img, nil
}
