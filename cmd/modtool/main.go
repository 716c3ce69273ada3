package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Starkiller645/modtool/internal/config"
	"github.com/Starkiller645/modtool/internal/download"
	"github.com/Starkiller645/modtool/internal/pipeline"
	"github.com/fatih/color"
	"github.com/vbauerster/mpb/v8"
)

var (
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

func main() {
	// Command line flags
	var (
		configFlag     = flag.String("config", "", "Path to config file (JSON or YAML)")
		profileFlag    = flag.Int("profile", 0, "Id of the modpack to install")
		listFlag       = flag.Bool("list", false, "List available modpacks and exit")
		gameDirFlag    = flag.String("game-dir", "", "Minecraft directory (overrides config)")
		noLauncherFlag = flag.Bool("no-launcher", false, "Do not add a launcher profile")
		verboseFlag    = flag.Bool("verbose", false, "Show verbose output and debug logs")
	)

	flag.Parse()

	if !isFlagSet(flag.CommandLine, "profile") && !*listFlag {
		fmt.Println("modtool - install Minecraft modpacks")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  modtool -list")
		fmt.Println("  modtool -profile <id> [options]")
		fmt.Println()
		fmt.Println("For interactive mode, use: modtool-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(2)
	}

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Apply flags
	if *gameDirFlag != "" {
		settings.GameDir = *gameDirFlag
	}
	if *noLauncherFlag {
		settings.RegisterLauncherProfile = false
	}

	dirs, err := settings.Dirs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger, closeLog, err := config.SetupLogger(dirs, *verboseFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

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

	r := &runner{verbose: *verboseFlag}
	deps, _, err := pipeline.Wire(settings, logger, r.printEvent)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	r.ctrl = pipeline.New(deps)

	fmt.Println(cyan("⛏ modtool " + config.Version))
	fmt.Println()

	if err := r.run(ctx, *profileFlag, *listFlag); err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nCancelled.")
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, red("✗ ")+err.Error())
		os.Exit(1)
	}
}

// isFlagSet reports whether name was given on the command line, so any
// int, negative ones included, can be a profile id.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// runner drives the pipeline without operator interaction.
type runner struct {
	ctrl    *pipeline.Controller
	verbose bool

	// progress is set while downloads run; messages go through it so they
	// print above the bars.
	progress *mpb.Progress
}

func (r *runner) printEvent(event download.ProgressEvent) {
	if event.Level == download.LevelVerbose && !r.verbose {
		return
	}

	var line string
	switch event.Level {
	case download.LevelError:
		line = red("✗ " + event.Message)
	case download.LevelWarning:
		line = yellow("! " + event.Message)
	case download.LevelSuccess:
		line = green("✓ " + event.Message)
	case download.LevelInfo:
		line = cyan("› " + event.Message)
	default:
		line = faint("  " + event.Message)
	}

	if r.progress != nil {
		fmt.Fprintln(r.progress, line)
		return
	}
	fmt.Fprintln(color.Output, line)
}

func (r *runner) run(ctx context.Context, profileID int, list bool) error {
	fmt.Println(faint("Fetching modpack list..."))
	if err := r.ctrl.FetchManifest(ctx); err != nil {
		return fmt.Errorf("could not fetch the modpack list: %w", err)
	}

	if list {
		for _, p := range r.ctrl.Snapshot().Manifest.Profiles {
			fmt.Printf("%3d  %s (%s %s)\n", p.ID, p.Name, p.Loader, p.GameVersion)
			fmt.Println(faint("     " + p.Summary()))
		}
		return nil
	}

	if err := r.ctrl.Start(); err != nil {
		return err
	}
	res, err := r.ctrl.CheckRuntime(ctx)
	if err != nil {
		return err
	}
	if !res.Present {
		return errors.New("java was not found; install a Java runtime or set java_path in the config file")
	}
	fmt.Println(green("✓ " + res.Version))

	if err := r.ctrl.SelectProfile(profileID); err != nil {
		return err
	}
	profile, ok := r.ctrl.Snapshot().Profile()
	if !ok {
		return fmt.Errorf("no modpack with id %d (see -list)", profileID)
	}
	if err := r.ctrl.Continue(); err != nil {
		return err
	}

	fmt.Printf("Installing %s for Minecraft %s...\n", profile.Loader, profile.GameVersion)
	lres, err := r.ctrl.InstallLoader(ctx)
	if err != nil {
		return fmt.Errorf("could not install %s: %w\ninstall %s for Minecraft %s by hand and run modtool again",
			profile.Loader, err, profile.Loader, profile.GameVersion)
	}
	fmt.Println(green("✓ " + lres.Label))

	fmt.Printf("\nDownloading %d mods for %s...\n\n", len(profile.Mods), profile.Name)
	summary, err := r.runDownloads(ctx)
	if err != nil {
		return err
	}

	snap := r.ctrl.Snapshot()
	if snap.RegistrationErr != nil {
		fmt.Println(yellow("! launcher profile not added: " + snap.RegistrationErr.Error()))
	}
	if !summary.Done() {
		return fmt.Errorf("%d of %d mods failed to download; run modtool again to retry", summary.Failed, summary.Total)
	}
	if err := r.ctrl.Finish(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(green(fmt.Sprintf("✨ Complete! Installed %s with %d mods.", profile.Name, summary.Total)))
	if snap.Registered && snap.RegistrationErr == nil {
		fmt.Printf("Start the Minecraft launcher and pick the %q profile.\n", profile.Name)
	}
	return nil
}
