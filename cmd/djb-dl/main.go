package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/handiism/djb-downloader/internal/audio"
	"github.com/handiism/djb-downloader/internal/config"
	"github.com/handiism/djb-downloader/internal/djb"
	"github.com/handiism/djb-downloader/internal/download"
	"github.com/handiism/djb-downloader/internal/logging"
	"github.com/handiism/djb-downloader/internal/model"
)

func main() {
	// Command line flags
	var (
		configFlag    = flag.String("config", "settings.json", "Path to config file")
		baseURLFlag   = flag.String("base-url", "", "Archive base URL (overrides config)")
		usernameFlag  = flag.String("username", "", "Archive username (overrides config)")
		passwordFlag  = flag.String("password", "", "Archive password (overrides config)")
		outputFlag    = flag.String("output", "", "Output directory (overrides config)")
		stationFlag   = flag.String("station", "", "Station callsign (overrides config, skips auto-detection)")
		startDateFlag = flag.String("start-date", "", "Skip airings before this date, YYYY-MM-DD (overrides config)")
		playlistFlag  = flag.Bool("playlist", false, "Create playlist file")
		verboseFlag   = flag.Bool("verbose", false, "Show verbose output")
		dryRunFlag    = flag.Bool("dry-run", false, "Expand schedules and list the plan without downloading")
		verifyFlag    = flag.Bool("verify", false, "Probe existing recordings in the output directory and report broken ones")
	)

	flag.Parse()

	// Load config
	settings, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Apply flags
	if *baseURLFlag != "" {
		settings.BaseURL = *baseURLFlag
	}
	if *usernameFlag != "" {
		settings.Username = *usernameFlag
	}
	if *passwordFlag != "" {
		settings.Password = *passwordFlag
	}
	if *outputFlag != "" {
		settings.OutputDir = *outputFlag
	}
	if *stationFlag != "" {
		settings.StationCode = *stationFlag
	}
	if *startDateFlag != "" {
		start, err := time.Parse("2006-01-02", *startDateFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: bad -start-date %q (want YYYY-MM-DD)\n", *startDateFlag)
			os.Exit(1)
		}
		settings.StartDate = model.Date{Time: start}
	}
	if *playlistFlag {
		settings.CreatePlaylist = true
	}

	settings.Normalize()

	level := settings.LogLevel
	if *verboseFlag {
		level = "debug"
	}
	logger := logging.New(os.Stderr, level)

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling...")
		cancel()
	}()

	if *verifyFlag {
		os.Exit(runVerify(ctx, settings))
	}

	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		fmt.Println("DJB Archive Downloader - Batch download broadcast recordings")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  djb-dl -config settings.json [options]")
		fmt.Println()
		fmt.Println("For interactive mode, use: djb-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	if !*dryRunFlag {
		if err := audio.CheckTools(settings.FFmpegPath, settings.FFprobePath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	promptMissingCredentials(settings)

	manager := download.NewManager(settings, logger, nil)

	fmt.Println("DJB Archive Downloader")
	fmt.Println(strings.Repeat("─", 40))
	fmt.Printf("Archive: %s\n", settings.BaseURL)
	fmt.Printf("Output:  %s\n", settings.OutputDir)
	if !settings.StartDate.IsZero() {
		fmt.Printf("Resume:  %s\n", settings.StartDate.Format("2006-01-02"))
	}
	fmt.Println()

	if err := initializeWithStationPrompt(ctx, manager, settings); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing: %v\n", err)
		os.Exit(1)
	}

	if *dryRunFlag {
		printPlan(manager)
		return
	}

	summary, err := manager.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nRun cancelled.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error during run: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(strings.Repeat("─", 40))
	fmt.Printf("Done: %s\n", summary)
	printFailures(manager)

	if summary.Failed > 0 {
		os.Exit(1)
	}
}

// initializeWithStationPrompt runs Initialize, resolving station
// ambiguity or detection failure interactively before retrying.
func initializeWithStationPrompt(ctx context.Context, manager *download.Manager, settings *config.Settings) error {
	for {
		err := manager.Initialize(ctx)
		if err == nil {
			return nil
		}

		var ambiguous *download.StationAmbiguousError
		var unresolved *download.StationUnresolvedError
		switch {
		case errors.As(err, &ambiguous):
			station, ok := chooseStation(ambiguous.Candidates)
			if !ok {
				return fmt.Errorf("no station selected")
			}
			manager.SetStation(station)

		case errors.As(err, &unresolved):
			fmt.Println("Could not auto-detect the station callsign.")
			if unresolved.IndexURL != "" {
				fmt.Printf("Check the index page in a browser: %s\n", unresolved.IndexURL)
			}
			callsign := promptLine("Callsign used in archive filenames (e.g. BSR): ")
			if callsign == "" {
				return fmt.Errorf("no callsign entered")
			}
			manager.SetStation(djb.Station{
				Code:     settings.StationSelector,
				Callsign: callsign,
			})

		default:
			return err
		}
	}
}

// chooseStation prompts for one of the detected stations.
func chooseStation(candidates []djb.Station) (djb.Station, bool) {
	fmt.Println("Multiple stations on this account:")
	for i, station := range candidates {
		fmt.Printf("  %d) %s (selector %d)\n", i+1, station.Callsign, station.Code)
	}

	answer := promptLine(fmt.Sprintf("Station [1-%d]: ", len(candidates)))
	choice, err := strconv.Atoi(answer)
	if err != nil || choice < 1 || choice > len(candidates) {
		return djb.Station{}, false
	}
	return candidates[choice-1], true
}

func promptMissingCredentials(settings *config.Settings) {
	if settings.Username == "" {
		settings.Username = promptLine("Archive username: ")
	}
	if settings.Password == "" {
		settings.Password = promptLine("Archive password: ")
	}
}

var stdin = bufio.NewScanner(os.Stdin)

func promptLine(prompt string) string {
	fmt.Print(prompt)
	if !stdin.Scan() {
		return ""
	}
	return strings.TrimSpace(stdin.Text())
}

// printPlan lists the expanded airings without downloading anything.
func printPlan(manager *download.Manager) {
	airings := manager.Plan()
	fmt.Printf("Station: %s\n", manager.Station().Callsign)
	fmt.Printf("Plan: %d airing(s)\n\n", len(airings))
	for _, airing := range airings {
		var hours []string
		for _, seg := range airing.Segments {
			hours = append(hours, fmt.Sprintf("%02d", seg.Hour))
		}
		fmt.Printf("  %s  hours %s  -> %s\n", airing.DateString(), strings.Join(hours, ","), airing.OutputPath)
	}
	fmt.Println("\n[Dry run - not downloading]")
}

// printFailures details every airing that did not complete.
func printFailures(manager *download.Manager) {
	for _, result := range manager.Results() {
		if result.Complete() {
			continue
		}

		fmt.Printf("  %s: ", result.Airing.DateString())
		switch {
		case result.MergeErr != nil:
			fmt.Printf("merge failed: %v\n", result.MergeErr)
		case result.Merged && !result.Verified:
			fmt.Println("merged but failed verification")
		case result.Merged:
			fmt.Printf("merged with %d/%d segments\n", result.SuccessCount(), len(result.Segments))
		default:
			fmt.Println("no segments downloaded")
		}
		for _, seg := range result.Segments {
			if !seg.Success {
				fmt.Printf("    %s: %s: %v\n", seg.Segment.Filename, seg.Kind, seg.Err)
			}
		}
	}
}

// runVerify probes the existing archive instead of downloading.
func runVerify(ctx context.Context, settings *config.Settings) int {
	if settings.OutputDir == "" {
		fmt.Fprintln(os.Stderr, "Error: no output directory configured")
		return 1
	}

	prober := audio.NewProber(settings.FFprobePath)
	issues, checked, err := download.VerifyArchive(ctx, prober, settings.OutputDir, 4)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error verifying archive: %v\n", err)
		return 1
	}

	fmt.Printf("Checked %d recording(s) in %s\n", checked, settings.OutputDir)
	if len(issues) == 0 {
		fmt.Println("All recordings verified.")
		return 0
	}

	fmt.Printf("%d recording(s) failed verification:\n", len(issues))
	for _, issue := range issues {
		fmt.Printf("  %s: %v\n", issue.Path, issue.Err)
	}
	return 1
}
