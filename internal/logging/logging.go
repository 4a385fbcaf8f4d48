// Package logging configures the global zerolog logger for the icodump
// command.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/ajroetker/go-ico/internal/oops"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.ErrorStackMarshaler = oops.StackMarshaler
}

// Setup points the global logger at stderr and sets the global level.
// Terminals get colored console output, anything else gets JSON lines.
func Setup(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return oops.New(err, "invalid log level %q", level)
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(Writer(os.Stderr)).With().Timestamp().Logger()
	return nil
}

// Writer wraps f in a console writer when it is a terminal.
func Writer(f *os.File) io.Writer {
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return f
	}
	return zerolog.ConsoleWriter{
		Out:        colorable.NewColorable(f),
		TimeFormat: time.Kitchen,
	}
}

func GlobalLogger() *zerolog.Logger {
	return &log.Logger
}

func Debug() *zerolog.Event {
	return log.Debug().Stack()
}

func Info() *zerolog.Event {
	return log.Info().Stack()
}

func Warn() *zerolog.Event {
	return log.Warn().Stack()
}

func Error() *zerolog.Event {
	return log.Error().Stack()
}
