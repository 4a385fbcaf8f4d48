package main

import (
	"os"

	"github.com/ajroetker/go-ico/internal/logging"
)

func main() {
	if err := rootCommand.Execute(); err != nil {
		logging.Error().Err(err).Msg("icodump failed")
		os.Exit(1)
	}
}
