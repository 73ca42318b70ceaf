// ABOUTME: CLI entrypoint for ducksort with terminal UI, headless, and HTTP server modes.
// ABOUTME: Wires the scenario, run history, host loop, session, and signal handling together.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/2389-research/ducksort/animation"
	"github.com/2389-research/ducksort/history"
	"github.com/2389-research/ducksort/hostloop"
	"github.com/2389-research/ducksort/scenario"
	"github.com/2389-research/ducksort/session"
	"github.com/2389-research/ducksort/sortanim"
	"github.com/2389-research/ducksort/tui"
	"github.com/2389-research/ducksort/web"

	tea "github.com/charmbracelet/bubbletea"
)

var version = "dev"

// config holds all CLI configuration parsed from flags and the environment.
type config struct {
	serverMode   bool
	headless     bool
	port         int
	scenarioFile string
	values       []int
	count        int
	seed         int64
	speed        float64
	dataDir      string
	noHistory    bool
	verbose      bool
	showVersion  bool
}

func main() {
	loadDotEnvAuto()

	cfg, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if cfg.showVersion {
		fmt.Printf("ducksort %s\n", version)
		os.Exit(0)
	}

	os.Exit(run(cfg))
}

// parseFlags parses args into a config. DUCKSORT_* variables supply the
// defaults so flags always win.
func parseFlags(args []string, stderr io.Writer) (config, error) {
	var cfg config
	var values string

	fs := flag.NewFlagSet("ducksort", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&cfg.serverMode, "server", false, "Start HTTP server mode")
	fs.BoolVar(&cfg.headless, "headless", false, "Run without a UI and print a summary")
	fs.IntVar(&cfg.port, "port", envInt("DUCKSORT_PORT", 2389), "Server port")
	fs.StringVar(&cfg.scenarioFile, "scenario", os.Getenv("DUCKSORT_SCENARIO"), "YAML scenario file")
	fs.StringVar(&values, "values", "", "Comma separated duck values")
	fs.IntVar(&cfg.count, "count", 0, "Number of random ducks")
	fs.Int64Var(&cfg.seed, "seed", 0, "Seed for random values")
	fs.Float64Var(&cfg.speed, "speed", envFloat("DUCKSORT_SPEED", 0), "Animation speed multiplier")
	fs.StringVar(&cfg.dataDir, "data-dir", os.Getenv("DUCKSORT_DATA_DIR"), "Run history directory")
	fs.BoolVar(&cfg.noHistory, "no-history", false, "Do not record runs")
	fs.BoolVar(&cfg.verbose, "verbose", false, "Verbose logging")
	fs.BoolVar(&cfg.showVersion, "version", false, "Print version and exit")

	fs.Usage = func() {
		printHelp(stderr, version)
	}

	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	if values != "" {
		v, err := parseValues(values)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return config{}, err
		}
		cfg.values = v
	}
	if cfg.serverMode && cfg.headless {
		err := errors.New("-server and -headless are mutually exclusive")
		fmt.Fprintf(stderr, "error: %v\n", err)
		return config{}, err
	}
	return cfg, nil
}

// parseValues parses "5,2,8,1".
func parseValues(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q in -values", p)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, errors.New("-values is empty")
	}
	return out, nil
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return def
}

// run dispatches to the appropriate mode based on the config.
// Returns an exit code: 0 for success, 1 for failure, 130 when interrupted.
func run(cfg config) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch {
	case cfg.serverMode:
		return runServer(ctx, cfg, os.Stderr)
	case cfg.headless:
		return runHeadless(ctx, cfg, os.Stdout, os.Stderr)
	default:
		return runTUI(cfg, os.Stderr)
	}
}

// loadScenario reads the scenario file (or the default) and applies flag
// overrides on top of it.
func loadScenario(cfg config) (scenario.Scenario, error) {
	scen := scenario.Default()
	if cfg.scenarioFile != "" {
		var err error
		if scen, err = scenario.Load(cfg.scenarioFile); err != nil {
			return scenario.Scenario{}, err
		}
	}
	if len(cfg.values) > 0 {
		scen.Values = cfg.values
	}
	if cfg.count > 0 {
		scen.Values = nil
		scen.Count = cfg.count
	}
	if cfg.seed != 0 {
		scen.Seed = cfg.seed
	}
	if cfg.speed > 0 {
		scen.Speed = cfg.speed
	}
	if err := scen.Validate(); err != nil {
		return scenario.Scenario{}, err
	}
	return scen, nil
}

// openHistory opens dataDir/history.db. Failure is reported as a warning and
// the run continues unrecorded.
func openHistory(cfg config, stderr io.Writer) (*history.Store, string) {
	dataDir, err := resolveDataDir(cfg.dataDir)
	if err != nil {
		fmt.Fprintf(stderr, "warning: could not resolve data dir: %v\n", err)
		return nil, ""
	}
	if cfg.noHistory {
		return nil, dataDir
	}
	store, err := history.Open(filepath.Join(dataDir, "history.db"))
	if err != nil {
		fmt.Fprintf(stderr, "warning: run history disabled: %v\n", err)
		return nil, dataDir
	}
	return store, dataDir
}

// buildSession loads the scenario and assembles a session on sched.
func buildSession(cfg config, sched sortanim.Scheduler, store *history.Store, logger animation.Logger) (*session.Session, scenario.Scenario, error) {
	scen, err := loadScenario(cfg)
	if err != nil {
		return nil, scenario.Scenario{}, err
	}
	sess, err := session.New(sched, session.Config{
		Scenario: scen,
		Watchdog: sortanim.DefaultWatchdogConfig(),
		History:  store,
		Logger:   logger,
	})
	if err != nil {
		return nil, scenario.Scenario{}, err
	}
	return sess, scen, nil
}

func newLogger(verbose bool, w io.Writer) *log.Logger {
	if !verbose {
		w = io.Discard
	}
	return log.New(w, "ducksort: ", log.LstdFlags|log.Lmicroseconds)
}

// runHeadless sorts once on a host loop and prints the recorded run.
func runHeadless(ctx context.Context, cfg config, stdout, stderr io.Writer) int {
	logger := newLogger(cfg.verbose, stderr)
	store, _ := openHistory(cfg, stderr)
	if store != nil {
		defer store.Close()
	}

	loop := hostloop.New(logger)
	sess, scen, err := buildSession(cfg, loop, store, logger)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	// The loop outlives ctx so the session can be closed on it after an interrupt.
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer func() {
		stopLoop()
		<-loop.Done()
	}()
	go loop.Run(loopCtx)

	finished := make(chan history.Run, 1)
	if err := loop.Do(ctx, func() {
		sess.OnFinished(func(r history.Run) { finished <- r })
		sess.Start()
	}); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	var result history.Run
	select {
	case result = <-finished:
	case <-ctx.Done():
		fmt.Fprintln(stderr, "\nInterrupted, stopping...")
		_ = loop.Do(context.Background(), sess.Close)
		return 130
	}
	_ = loop.Do(context.Background(), sess.Close)

	printSummary(stdout, scen.Name, result)
	return 0
}

func printSummary(w io.Writer, name string, r history.Run) {
	fmt.Fprintf(w, "run %s (%s)\n", r.RunID, name)
	fmt.Fprintf(w, "  initial:     %v\n", r.Initial)
	fmt.Fprintf(w, "  final:       %v\n", r.Final)
	fmt.Fprintf(w, "  comparisons: %d\n", r.Comparisons)
	fmt.Fprintf(w, "  swaps:       %d\n", r.Swaps)
	fmt.Fprintf(w, "  steps:       %d\n", r.Steps)
	fmt.Fprintf(w, "  duration:    %s\n", r.Duration().Round(time.Millisecond))
}

// runServer serves the session over HTTP until ctx is cancelled.
func runServer(ctx context.Context, cfg config, stderr io.Writer) int {
	logger := log.New(stderr, "ducksort: ", log.LstdFlags)
	store, _ := openHistory(cfg, stderr)
	if store != nil {
		defer store.Close()
	}

	loop := hostloop.New(logger)
	sess, _, err := buildSession(cfg, loop, store, newLogger(cfg.verbose, stderr))
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer func() {
		stopLoop()
		<-loop.Done()
	}()
	go loop.Run(loopCtx)
	defer func() { _ = loop.Do(context.Background(), sess.Close) }()

	srv, err := web.NewServer(loop, sess, web.ServerConfig{
		Addr:    fmt.Sprintf("127.0.0.1:%d", cfg.port),
		History: store,
		Logger:  logger,
	})
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	fmt.Fprintf(stderr, "listening on 127.0.0.1:%d\n", cfg.port)
	if err := srv.ListenAndServe(ctx); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// runTUI hosts the session inside a Bubble Tea program. Logs go to
// dataDir/ducksort.log since the terminal belongs to the UI.
func runTUI(cfg config, stderr io.Writer) int {
	store, dataDir := openHistory(cfg, stderr)
	if store != nil {
		defer store.Close()
	}

	logOut := io.Discard
	if dataDir != "" {
		f, err := os.OpenFile(filepath.Join(dataDir, "ducksort.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			defer f.Close()
			logOut = f
		}
	}
	logger := log.New(logOut, "ducksort: ", log.LstdFlags|log.Lmicroseconds)

	sched := tui.NewScheduler(logger)
	sess, scen, err := buildSession(cfg, sched, store, logger)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	model := tui.NewAppModel(sess, scen.Name)
	p := tea.NewProgram(model, tea.WithAltScreen())

	// Deferred sort steps arrive as RunMsgs on the program's Update.
	sched.Bind(p.Send)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
