// Command pagesim runs page replacement simulations and prints, archives,
// replays or serves the resulting step-by-step traces.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sibexico/HexPager/paging"
	"github.com/sibexico/HexPager/stream"
)

type options struct {
	configPath  string
	algorithm   string
	sequence    string
	frames      int
	framesSet   bool
	dirty       string
	logLevel    string
	compression string
	compare     bool
	out         string
	replay      string
	serve       string
	play        bool
}

func main() {
	opts := parseFlags(os.Args[1:])

	config, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pagesim: %v\n", err)
		os.Exit(2)
	}

	logger := newLogger(config.LogLevel, os.Stderr)

	if err := run(context.Background(), opts, config, logger, os.Stdout); err != nil {
		logger.Error("pagesim failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func parseFlags(args []string) options {
	var opts options
	fs := flag.NewFlagSet("pagesim", flag.ExitOnError)
	fs.StringVar(&opts.configPath, "config", "", "JSON configuration file (defaults to PAGESIM_* environment variables)")
	fs.StringVar(&opts.algorithm, "algorithm", "", "FIFO, LRU, NRU, OPT, CLOCK, LFU or MFU")
	fs.StringVar(&opts.sequence, "sequence", "", "page references, e.g. \"1,2,3,4,1,2\"")
	fs.IntVar(&opts.frames, "frames", 0, "number of frames")
	fs.StringVar(&opts.dirty, "dirty", "", "NRU modified bit overrides, e.g. \"3=1,5=0\"")
	fs.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&opts.compression, "compression", "", "trace archive compression: none, lz4, snappy or best")
	fs.BoolVar(&opts.compare, "compare", false, "run every algorithm and print a comparison")
	fs.StringVar(&opts.out, "out", "", "write the trace archive to this file")
	fs.StringVar(&opts.replay, "replay", "", "print a trace archive instead of simulating")
	fs.StringVar(&opts.serve, "serve", "", "serve websocket playback on this address, e.g. :8080")
	fs.BoolVar(&opts.play, "play", false, "print steps one at a time at the configured speed")
	fs.Parse(args)
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "frames" {
			opts.framesSet = true
		}
	})
	return opts
}

// loadConfig layers file or environment configuration under the flags
func loadConfig(opts options) (*paging.Config, error) {
	var config *paging.Config
	if opts.configPath != "" {
		c, err := paging.LoadConfigFromFile(opts.configPath)
		if err != nil {
			return nil, err
		}
		config = c
	} else {
		config = paging.LoadConfigFromEnv()
	}

	if opts.algorithm != "" {
		config.Algorithm = opts.algorithm
	}
	if opts.sequence != "" {
		seq, err := paging.ParseSequence(opts.sequence)
		if err != nil {
			return nil, err
		}
		config.Sequence = seq
	}
	if opts.framesSet {
		config.FrameCount = opts.frames
	}
	if opts.dirty != "" {
		overrides, err := paging.ParseDirtyOverrides(opts.dirty)
		if err != nil {
			return nil, err
		}
		config.DirtyOverrides = overrides
	}
	if opts.logLevel != "" {
		config.LogLevel = opts.logLevel
	}
	if opts.compression != "" {
		config.TraceCompression = opts.compression
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func newLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level

	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: lvl,
	})
	return slog.New(handler).With("module", "pagesim")
}

func run(ctx context.Context, opts options, config *paging.Config, logger *slog.Logger, out io.Writer) error {
	var metrics *paging.Metrics
	if config.EnableMetrics {
		metrics = paging.NewMetrics()
		defer metrics.LogMetrics(logger)
	}

	if opts.compare {
		results, err := paging.Compare(config.Sequence, config.FrameCount, config.Options())
		if err != nil {
			return err
		}
		printComparison(out, results)
		return nil
	}

	var trace *paging.Trace
	if opts.replay != "" {
		t, err := paging.ReadTraceFile(opts.replay)
		if err != nil {
			return err
		}
		logger.Info("trace loaded", slog.String("path", opts.replay), slog.String("algorithm", string(t.Algorithm)))
		trace = t
	} else {
		sim, err := paging.NewSimulator(config, metrics, logger)
		if err != nil {
			return err
		}
		t, err := sim.Trace()
		if err != nil {
			return err
		}
		trace = t
	}

	if opts.out != "" {
		compression, err := paging.ParseCompressionType(config.TraceCompression)
		if err != nil {
			return err
		}
		if err := paging.WriteTraceFile(opts.out, trace, compression); err != nil {
			return err
		}
		logger.Info("trace written", slog.String("path", opts.out), slog.String("compression", compression.String()))
	}

	speed := time.Duration(config.PlaySpeedMs) * time.Millisecond

	if opts.serve != "" {
		return serve(ctx, opts.serve, trace, speed, logger)
	}

	if opts.play {
		if err := playTrace(ctx, trace, speed, out); err != nil {
			return err
		}
	} else {
		printTrace(out, trace)
	}

	opt, err := paging.RunTrace(paging.AlgorithmOPT, trace.Sequence, trace.FrameCount, paging.Options{})
	if err != nil {
		return err
	}
	printStats(out, paging.Summarize(trace, opt.Faults()))
	return nil
}

func playTrace(ctx context.Context, trace *paging.Trace, speed time.Duration, out io.Writer) error {
	player, err := paging.NewPlayer(trace.Snapshots)
	if err != nil {
		return err
	}
	player.SetSpeed(speed)
	player.OnChange(func(s paging.Snapshot) {
		printStep(out, s)
	})

	printHeader(out, trace)
	printStep(out, player.Current())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := player.Play(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func serve(ctx context.Context, addr string, trace *paging.Trace, speed time.Duration, logger *slog.Logger) error {
	player, err := paging.NewPlayer(trace.Snapshots)
	if err != nil {
		return err
	}
	player.SetSpeed(speed)

	srv := stream.NewServer(player, logger)
	defer srv.Close()

	mux := http.NewServeMux()
	mux.Handle("/ws", srv)
	httpServer := &http.Server{Addr: addr, Handler: mux}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("serving playback",
		slog.String("addr", addr),
		slog.String("algorithm", string(trace.Algorithm)),
		slog.Int("steps", len(trace.Snapshots)),
	)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func printHeader(w io.Writer, trace *paging.Trace) {
	fmt.Fprintf(w, "%s (%s), %d frames, %d references\n",
		trace.Algorithm, trace.Algorithm.Description(), trace.FrameCount, len(trace.Sequence))
}

func printTrace(w io.Writer, trace *paging.Trace) {
	printHeader(w, trace)
	for _, s := range trace.Snapshots {
		printStep(w, s)
	}
}

func printStep(w io.Writer, s paging.Snapshot) {
	status := "hit  "
	if s.IsFault {
		status = "FAULT"
	}

	cells := make([]string, len(s.Frames))
	for i, f := range s.Frames {
		switch {
		case f.Empty():
			cells[i] = "-"
		case f.IsNew:
			cells[i] = fmt.Sprintf("%d*", f.Page)
		default:
			cells[i] = fmt.Sprint(f.Page)
		}
	}

	line := fmt.Sprintf("%4d  page %-4d %s  [%s]", s.Step+1, s.Page, status, strings.Join(cells, " "))
	if s.Evicted() {
		line += fmt.Sprintf("  victim frame %d", s.ReplacedFrameIndex)
	}
	fmt.Fprintln(w, line)
}

func printStats(w io.Writer, st paging.Stats) {
	fmt.Fprintf(w, "faults %d (%.1f%%), hits %d (%.1f%%), evictions %d\n",
		st.Faults, st.FaultRate, st.Hits, st.HitRate, st.Evictions)
	fmt.Fprintf(w, "distinct pages %d, OPT faults %d, efficiency vs OPT %.1f%%\n",
		st.DistinctPages, st.OPTFaults, st.EfficiencyVsOPT)
}

func printComparison(w io.Writer, results []paging.Stats) {
	fmt.Fprintf(w, "%-6s %7s %7s %10s %9s\n", "ALG", "FAULTS", "HITS", "FAULT%", "VS OPT%")
	for _, st := range results {
		fmt.Fprintf(w, "%-6s %7d %7d %9.1f%% %8.1f%%\n",
			st.Algorithm, st.Faults, st.Hits, st.FaultRate, st.EfficiencyVsOPT)
	}
}
