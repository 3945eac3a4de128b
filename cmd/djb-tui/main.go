package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/handiism/djb-downloader/internal/audio"
	"github.com/handiism/djb-downloader/internal/config"
	"github.com/handiism/djb-downloader/internal/logging"
	"github.com/handiism/djb-downloader/internal/tui"
)

func main() {
	configFlag := flag.String("config", "settings.json", "Path to config file")
	flag.Parse()

	settings, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	settings.Normalize()

	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := audio.CheckTools(settings.FFmpegPath, settings.FFprobePath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Bubble Tea owns the terminal, so the forensic log goes to a file.
	logger, closer, err := logging.NewFile(settings.LogPath, settings.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	if err := tui.Run(settings, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
