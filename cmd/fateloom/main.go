// Fateloom is a data-driven narrative engine for fate-tracked text RPGs.
// Usage: fateloom [--version] [--plain] [--script <file>] [--seed <n>] [--settings <file>] [data_path]
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hyluen/fateloom/cli"
	"github.com/hyluen/fateloom/config"
	"github.com/hyluen/fateloom/engine"
	"github.com/hyluen/fateloom/engine/catalog"
	"github.com/hyluen/fateloom/loader"
	"github.com/hyluen/fateloom/store"
	"github.com/hyluen/fateloom/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	plain := false
	var dataPath string
	var scriptFile string
	var settingsFile string
	var seedArg string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("fateloom %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--script":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--script requires a file path\n")
				os.Exit(1)
			}
			i++
			scriptFile = args[i]
		case "--seed":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--seed requires a number\n")
				os.Exit(1)
			}
			i++
			seedArg = args[i]
		case "--settings":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--settings requires a file path\n")
				os.Exit(1)
			}
			i++
			settingsFile = args[i]
		default:
			if dataPath == "" {
				dataPath = args[i]
			}
		}
	}

	if settingsFile == "" {
		home, _ := os.UserHomeDir()
		settingsFile = filepath.Join(home, ".fateloom", "settings.yaml")
	}
	settings, err := config.Load(settingsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading settings: %v\n", err)
		os.Exit(1)
	}

	if dataPath == "" {
		dataPath = settings.DataPath
	}
	if plain {
		settings.PlainUI = true
	}

	seed := settings.Seed
	if seedArg != "" {
		seed, err = strconv.ParseInt(seedArg, 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid --seed value %q\n", seedArg)
			os.Exit(1)
		}
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	events, err := loader.Load(dataPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading event data: %v\n", err)
		os.Exit(1)
	}
	cat, err := catalog.Load(events)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error validating event data: %v\n", err)
		os.Exit(1)
	}

	var opts []engine.SessionOption
	if settings.IntroEvent != "" && cat.Has(settings.IntroEvent) {
		opts = append(opts, engine.WithIntro(settings.IntroEvent, settings.IntroFlag))
	}
	if settings.MidbandEvent != "" && cat.Has(settings.MidbandEvent) {
		opts = append(opts, engine.WithMidbandEvent(settings.MidbandEvent))
	}

	sess := engine.NewSession(cat, seed, opts...)

	// Script mode: open file, force plain, echo input.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		fmt.Printf("Fateloom %s\n\n", version)
		c := cli.New(sess, cat)
		c.SessionOpts = opts
		c.In = f
		c.EchoInput = true
		if err := c.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	saves, err := store.Open(filepath.Join(settings.SaveDir, "saves.db"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening save store: %v\n", err)
		os.Exit(1)
	}
	defer saves.Close()

	// Use plain CLI if requested or stdout is not a terminal.
	if settings.PlainUI || !isTerminal() {
		fmt.Printf("Fateloom %s\n\n", version)
		c := cli.New(sess, cat)
		c.SessionOpts = opts
		c.Saves = saves
		if err := c.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := tui.Run(sess, cat, saves, opts...); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
