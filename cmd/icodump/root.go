package main

import (
	"fmt"

	ico "github.com/ajroetker/go-ico"
	"github.com/ajroetker/go-ico/internal/logging"
	"github.com/spf13/cobra"
)

var globalFlags struct {
	LogLevel string
	BMPCodec string
	Lenient  bool
}

var rootCommand = &cobra.Command{
	Use:           "icodump",
	Short:         "Inspect and extract Windows icon and cursor files",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Setup(globalFlags.LogLevel)
	},
}

func init() {
	flags := rootCommand.PersistentFlags()
	flags.StringVar(&globalFlags.LogLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	flags.StringVar(&globalFlags.BMPCodec, "bmp-codec", "gobmp", "bitmap codec, gobmp or ximage")
	flags.BoolVar(&globalFlags.Lenient, "lenient", false, "skip entries that fail to decode instead of aborting")
}

// newDecoder builds a decoder for the named bitmap codec, logging to the
// global logger.
func newDecoder(codec string) (*ico.Decoder, error) {
	var bitmap ico.BitmapDecoder
	switch codec {
	case "", "gobmp":
		bitmap = ico.GoBMPDecoder
	case "ximage":
		bitmap = ico.XImageBMPDecoder
	default:
		return nil, fmt.Errorf("unknown bitmap codec %q, want gobmp or ximage", codec)
	}
	return ico.NewDecoder(ico.Options{
		Bitmap: bitmap,
		Logger: logging.GlobalLogger(),
	}), nil
}
