package main

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	ico "github.com/ajroetker/go-ico"
	"github.com/ajroetker/go-ico/internal/logging"
	"github.com/ajroetker/go-ico/internal/oops"
	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"golang.org/x/image/draw"
)

type extractOptions struct {
	OutDir  string
	Size    int
	Lenient bool
}

func init() {
	var opts extractOptions

	extractCommand := &cobra.Command{
		Use:   "extract FILE",
		Short: "Decode every image of an icon file and write them as PNGs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDecoder(globalFlags.BMPCodec)
			if err != nil {
				return err
			}
			opts.Lenient = globalFlags.Lenient
			written, err := extractFile(d, args[0], opts)
			for _, path := range written {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return err
		},
	}
	extractCommand.Flags().StringVarP(&opts.OutDir, "output", "o", ".", "directory to write PNGs to")
	extractCommand.Flags().IntVar(&opts.Size, "size", 0, "scale every image to SIZE x SIZE pixels")
	rootCommand.AddCommand(extractCommand)
}

// extractFile decodes the file at path and writes one PNG per image,
// returning the paths written.
func extractFile(d *ico.Decoder, path string, opts extractOptions) ([]string, error) {
	if opts.Size < 0 {
		return nil, fmt.Errorf("size can't be %d", opts.Size)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, oops.New(err, "failed to open %s", path)
	}
	defer f.Close()

	var images []*ico.Image
	if opts.Lenient {
		images, err = d.DecodeEach(f)
		var skipped *multierror.Error
		switch {
		case errors.As(err, &skipped):
			logging.Warn().
				Str("file", path).
				Int("decoded", len(images)).
				Int("skipped", skipped.Len()).
				Msg("some entries were skipped")
		case err != nil:
			return nil, oops.New(err, "failed to decode %s", path)
		}
	} else {
		images, err = d.DecodeAll(f)
		if err != nil {
			return nil, oops.New(err, "failed to decode %s", path)
		}
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, oops.New(err, "failed to create output directory")
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	written := make([]string, 0, len(images))
	for _, img := range images {
		var out image.Image = img
		if opts.Size > 0 {
			out = scale(img, opts.Size)
		}
		b := out.Bounds()
		name := filepath.Join(opts.OutDir, outputName(base, img.Index, b.Dx(), b.Dy()))
		n, err := writePNG(name, out)
		if err != nil {
			return written, err
		}
		logging.Debug().Str("path", name).Str("size", humanize.Bytes(uint64(n))).Msg("wrote image")
		written = append(written, name)
	}
	logging.Info().Str("file", path).Int("images", len(written)).Msg("extracted images")
	return written, nil
}

func outputName(base string, index, width, height int) string {
	return fmt.Sprintf("%s_%d_%dx%d.png", base, index, width, height)
}

// scale resamples img to size x size.
func scale(img image.Image, size int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

func writePNG(path string, img image.Image) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, oops.New(err, "failed to create %s", path)
	}
	defer f.Close()

	cw := &countingWriter{w: f}
	if err := png.Encode(cw, img); err != nil {
		return 0, oops.New(err, "failed to encode %s", path)
	}
	if err := f.Close(); err != nil {
		return 0, oops.New(err, "failed to write %s", path)
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
