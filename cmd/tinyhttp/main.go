package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dqx0.com/go/tinyhttp/httpx"
	"dqx0.com/go/tinyhttp/internal/obs"
)

type config struct {
	addr           string
	directory      string
	readTimeout    time.Duration
	writeTimeout   time.Duration
	maxHeaderBytes int
	maxBodyBytes   int64
	logLevel       string
	logJSON        bool
}

func parseFlags(args []string) (*config, error) {
	cfg := &config{}
	fs := flag.NewFlagSet("tinyhttp", flag.ContinueOnError)
	fs.StringVar(&cfg.addr, "addr", "0.0.0.0:4221", "listen address")
	fs.StringVar(&cfg.directory, "directory", "", "base directory served under /files/ (disabled if empty)")
	fs.DurationVar(&cfg.readTimeout, "read-timeout", 10*time.Second, "deadline for reading a request")
	fs.DurationVar(&cfg.writeTimeout, "write-timeout", 10*time.Second, "deadline for writing a response")
	fs.IntVar(&cfg.maxHeaderBytes, "max-header-bytes", 8<<10, "request line plus headers limit")
	fs.Int64Var(&cfg.maxBodyBytes, "max-body-bytes", 10<<20, "request body limit")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "debug, info, warn or error")
	fs.BoolVar(&cfg.logJSON, "log-json", false, "log JSON lines instead of console output")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cfg *config) error {
	level, err := obs.ParseLevel(cfg.logLevel)
	if err != nil {
		return err
	}
	var lg obs.ZeroLogger
	if cfg.logJSON {
		lg = obs.NewLogger(os.Stderr, level)
	} else {
		lg = obs.NewConsoleLogger(os.Stderr, level)
	}

	var store httpx.FileStore
	if cfg.directory != "" {
		ds, err := httpx.NewDirStore(cfg.directory)
		if err != nil {
			return fmt.Errorf("file store: %w", err)
		}
		lg.Logf(obs.Info, "serving files from %s", ds.Root())
		store = ds
	}

	s := &httpx.Server{
		Addr:           cfg.addr,
		Handler:        httpx.NewRouter(store, lg),
		ReadTimeout:    cfg.readTimeout,
		WriteTimeout:   cfg.writeTimeout,
		MaxHeaderBytes: cfg.maxHeaderBytes,
		MaxBodyBytes:   cfg.maxBodyBytes,
		Logger:         lg,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 1)
	go func() { errCh <- s.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	lg.Logf(obs.Info, "shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, httpx.ErrServerClosed) {
		return err
	}
	return nil
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		os.Exit(2)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "tinyhttp:", err)
		os.Exit(1)
	}
}
