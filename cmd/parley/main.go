// Command parley is a terminal chat client that streams replies from a chat
// endpoint or a model API, and holds continuous voice conversations over a
// WebSocket.
//
// Usage:
//
//	parley --endpoint http://localhost:8000/chat [flags]
//	ANTHROPIC_API_KEY=sk-... parley [flags]
//	GEMINI_API_KEY=gk-...   parley [flags]
//
// Flags override environment variables, which override the config file
// (~/.parley/config.yaml). A .env file in the working directory is loaded
// first if present.
//
// Flags:
//
//	--endpoint string       Chat endpoint URL for request mode
//	--socket-url string     WebSocket URL for continuous voice mode
//	--provider string       Request backend: endpoint, anthropic, gemini
//	--model string          Model ID (anthropic and gemini only)
//	--system-prompt string  System prompt (anthropic and gemini only)
//	--api-key string        API key (overrides the provider's key variable)
//	--log-level string      Log level: debug, info, warn, error
//	--log-file string       Log file path (default ~/.parley/parley.log)
//	--metrics-addr string   Serve Prometheus metrics on this address
//	--config string         Config file path
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/fwojciec/parley"
	bt "github.com/fwojciec/parley/bubbletea"
	"github.com/fwojciec/parley/chat"
	"github.com/fwojciec/parley/prometheus"
	"github.com/fwojciec/parley/websocket"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const shutdownTimeout = 5 * time.Second

var _ bt.Controller = (*chat.Controller)(nil)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "parley: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal.
	_ = godotenv.Load()

	cfg, err := resolveConfig(os.Args[1:], os.Getenv, os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, logCloser, err := newLogger(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	var metrics parley.Metrics = parley.NopMetrics{}
	if cfg.MetricsAddr != "" {
		exporter := prometheus.NewExporter(cfg.MetricsAddr)
		metrics = exporter.Metrics()
		go func() {
			if err := exporter.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "addr", cfg.MetricsAddr, "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = exporter.Shutdown(shutdownCtx)
		}()
	}

	opts := []chat.Option{
		chat.WithLogger(logger),
		chat.WithMetrics(metrics),
	}

	b, err := resolveBackend(cfg, os.Getenv("ANTHROPIC_API_KEY"), os.Getenv("GEMINI_API_KEY"))
	if err != nil {
		return err
	}
	requester, err := newRequester(ctx, b, logger, metrics)
	if err != nil {
		return err
	}
	opts = append(opts, chat.WithRequester(requester))

	if cfg.SocketURL != "" {
		dialer := websocket.NewDialer(cfg.SocketURL,
			websocket.WithLogger(logger),
			websocket.WithMetrics(metrics),
		)
		opts = append(opts,
			chat.WithDialer(dialer),
			chat.WithCaptureDevice(newCaptureDevice(logger)),
		)
	}

	logger.Info("parley starting", "provider", b.name, "voice", cfg.SocketURL != "")

	sink := bt.NewSink()
	ctrl := chat.New(sink, opts...)

	ctrlCtx, cancelCtrl := context.WithCancel(ctx)
	ctrlDone := make(chan struct{})
	go func() {
		defer close(ctrlDone)
		_ = ctrl.Run(ctrlCtx)
	}()

	tuiErr := bt.Run(ctx, bt.New(ctrl, parley.DefaultTheme()), sink)

	// Ending the controller ends any active session and releases the
	// microphone and socket.
	cancelCtrl()
	<-ctrlDone

	if tuiErr != nil {
		return fmt.Errorf("TUI: %w", tuiErr)
	}
	return nil
}
