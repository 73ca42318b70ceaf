// ABOUTME: Help display for the ducksort CLI with grouped flags, examples, and environment defaults.
// ABOUTME: Provides printHelp for usage output and envStatus for showing which DUCKSORT_* vars are set.
package main

import (
	"fmt"
	"io"
	"os"
)

const duckASCII = `
        __            __           __
      <(o )___      <(o )___     <(o )___
       ( ._> /       ( ._> /      ( ._> /
  ~~~~~~` + "`" + `---'~~~~~~~~~` + "`" + `---'~~~~~~~~` + "`" + `---'~~~~~~
`

// envVars are the environment defaults the CLI reads.
var envVars = []string{
	"DUCKSORT_PORT",
	"DUCKSORT_DATA_DIR",
	"DUCKSORT_SCENARIO",
	"DUCKSORT_SPEED",
}

// printHelp writes usage, grouped flags, examples and environment status to w.
func printHelp(w io.Writer, ver string) {
	fmt.Fprint(w, duckASCII)
	fmt.Fprintf(w, "ducksort %s: ducks in a pond, bubble sorted one step at a time\n", ver)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  ducksort [flags]                    Watch the sort in the terminal UI")
	fmt.Fprintln(w, "  ducksort -headless [flags]          Run to completion and print a summary")
	fmt.Fprintln(w, "  ducksort -server [-port 2389]       Drive the pond over HTTP")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Pond Flags:")
	fmt.Fprintln(w, "  -scenario <file>      YAML scenario file (values, timing, effects)")
	fmt.Fprintln(w, "  -values <list>        Comma separated duck values, e.g. 5,2,8,1")
	fmt.Fprintln(w, "  -count <n>            Number of random ducks when no values are given")
	fmt.Fprintln(w, "  -seed <n>             Seed for random values (default: time based)")
	fmt.Fprintln(w, "  -speed <x>            Animation speed multiplier (default: 1)")
	fmt.Fprintln(w, "  -data-dir <dir>       Run history directory (default: $XDG_DATA_HOME/ducksort)")
	fmt.Fprintln(w, "  -no-history           Do not record runs")
	fmt.Fprintln(w, "  -verbose              Verbose logging")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Server Flags:")
	fmt.Fprintln(w, "  -server               Start HTTP server mode")
	fmt.Fprintln(w, "  -port <port>          Server port (default: 2389)")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Other:")
	fmt.Fprintln(w, "  -headless             Run without a UI")
	fmt.Fprintln(w, "  -version              Print version and exit")
	fmt.Fprintln(w, "  -help                 Show this help")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  ducksort -values 5,2,8,1")
	fmt.Fprintln(w, "  ducksort -headless -count 12 -seed 7 -speed 4")
	fmt.Fprintln(w, "  ducksort -scenario examples/reverse.yaml")
	fmt.Fprintln(w, "  ducksort -server -port 8080")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment:")
	for _, key := range envVars {
		fmt.Fprintf(w, "  %-20s %s\n", key, envStatus(key))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Also read from ./.env and $XDG_CONFIG_HOME/ducksort/config.env.")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Docs: https://github.com/2389-research/ducksort")
}

// envStatus returns "[set]" if the named environment variable is non-empty,
// or "[not set]" otherwise.
func envStatus(key string) string {
	if os.Getenv(key) != "" {
		return "[set]"
	}
	return "[not set]"
}
