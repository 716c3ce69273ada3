package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/Starkiller645/modtool/internal/config"
	"github.com/Starkiller645/modtool/internal/tui"
)

func main() {
	var (
		configFlag  = flag.String("config", "", "Path to config file (JSON or YAML)")
		verboseFlag = flag.Bool("verbose", false, "Show verbose messages")
	)
	flag.Parse()

	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	dirs, err := settings.Dirs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	// The screen belongs to the UI, so logs always go to the file.
	logger, closeLog, err := config.SetupLogger(dirs, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
		os.Exit(1)
	}

	err = tui.Run(settings, logger, *verboseFlag)
	closeLog()
	if err != nil {
		if !errors.Is(err, tui.ErrAborted) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
