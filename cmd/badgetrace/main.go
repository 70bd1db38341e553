package main

// ---------------------------------------------------------------------------
// main.go — command dispatcher for the badgetrace CLI
//
// This file is intentionally slim. Command implementations live in their
// own files (cmd_*.go); shared helpers are in helpers.go and output.go.
// ---------------------------------------------------------------------------

import (
	"fmt"
	"os"
)

var (
	version   = "0.3.0"
	commit    = "dev"
	buildDate = "unknown"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "--version", "-V":
			printVersion(os.Stdout)
			os.Exit(0)
		case "--help", "-h", "help":
			printUsage(os.Stdout)
			os.Exit(0)
		}
	}

	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(0)
	}

	subcmd := os.Args[1]
	args := os.Args[2:]

	switch subcmd {
	case "analyze":
		cmdAnalyze(args)
	case "collect":
		cmdCollect(args)
	case "config":
		cmdConfig(args)
	case "version":
		printVersion(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, red("error: ")+"unknown command %q\n\n", subcmd)
		printUsage(os.Stderr)
		os.Exit(1)
	}
}

func printUsage(w *os.File) {
	fmt.Fprintf(w, `%s — badge-access anomaly analysis

Usage:
  badgetrace <command> [flags]

Commands:
  analyze     Run batch analysis over an event log and user directory
  collect     Run the NATS swipe collector (appends to the batch log)
  config      Initialize or show the configuration file
  version     Print version information

Run 'badgetrace <command> -h' for command flags.
`, bold("badgetrace"))
}

func printVersion(w *os.File) {
	fmt.Fprintf(w, "badgetrace %s (commit %s, built %s)\n", version, commit, buildDate)
}
