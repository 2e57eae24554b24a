package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
	"github.com/twipi/twinim/console"
	"github.com/twipi/twinim/game"
	"github.com/twipi/twinim/service"
	"golang.org/x/sync/errgroup"
	"libdb.so/hserve"
)

var (
	listenAddr  = ":8080"
	consoleMode = false
	maxObjects  = 30
	logLevel    = "info"
)

func init() {
	pflag.StringVarP(&listenAddr, "listen-addr", "l", listenAddr, "address to listen on")
	pflag.BoolVarP(&consoleMode, "console", "c", consoleMode, "play a game in the terminal instead of serving HTTP")
	pflag.IntVar(&maxObjects, "max-objects", maxObjects, "largest number of objects allowed on a starting board, 0 for no limit")
	pflag.StringVar(&logLevel, "log-level", logLevel, "log level (debug, info, warn, error)")
	pflag.Parse()
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		slog.Error(
			"invalid log level",
			"level", logLevel,
			"err", err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	if consoleMode {
		os.Exit(play(ctx, logger))
	}
	os.Exit(start(ctx, logger))
}

func play(ctx context.Context, logger *slog.Logger) int {
	rl, err := console.NewTerminal()
	if err != nil {
		logger.Error(
			"failed to open terminal",
			"err", err)
		return 1
	}
	defer rl.Close()

	c := console.New(rl, rl.Stdout(), console.Config{
		MaxObjects: maxObjects,
		Memo:       game.NewSharedMemo(),
	}, logger.With("component", "console"))

	if err := c.Run(ctx); err != nil && !errors.Is(err, console.ErrQuit) {
		logger.Error(
			"game error",
			"err", err)
		return 1
	}

	return 0
}

func start(ctx context.Context, logger *slog.Logger) int {
	errg, ctx := errgroup.WithContext(ctx)

	svc := service.NewService(service.Config{
		MaxObjects: maxObjects,
	}, logger.With("component", "service"))
	errg.Go(func() error { return svc.Start(ctx) })

	errg.Go(func() error {
		r := http.NewServeMux()
		r.Handle("GET /health", http.HandlerFunc(healthCheck))
		r.Handle("/", svc.Handler())

		logger.Info(
			"listening via HTTP",
			"addr", listenAddr)

		if err := hserve.ListenAndServe(ctx, listenAddr, r); err != nil {
			logger.Error(
				"failed to listen and serve",
				"err", err)
			return err
		}

		return ctx.Err()
	})

	if err := errg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error(
			"service error",
			"err", err)
		return 1
	}

	return 0
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
