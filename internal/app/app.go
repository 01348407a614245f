package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"city-bomber/internal/config"
	servernet "city-bomber/internal/net"
	"city-bomber/internal/observability"
	"city-bomber/internal/session"
	"city-bomber/internal/telemetry"
	"city-bomber/logging"
	loggingSinks "city-bomber/logging/sinks"
)

const (
	serviceName     = "city-bomber-relay"
	shutdownTimeout = 5 * time.Second
)

type Config struct {
	Logger telemetry.Logger
	Relay  config.Relay
	// Listener overrides the listen address from Relay when set.
	Listener net.Listener
}

// Run serves the relay until ctx is cancelled or the server fails.
func Run(ctx context.Context, cfg Config) error {
	telemetryLogger := cfg.Logger
	if telemetryLogger == nil {
		telemetryLogger = telemetry.WrapLogger(log.Default())
	}

	shutdownTracing, err := observability.Setup(ctx, serviceName, cfg.Relay.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			telemetryLogger.Printf("failed to flush traces: %v", err)
		}
	}()

	router, err := newRouter(cfg.Relay)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			telemetryLogger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	counters := telemetry.NewCounters()
	sessionCfg := cfg.Relay.Session()
	sessionCfg.Publisher = router
	sessionCfg.Metrics = counters
	registry := session.NewRegistry(sessionCfg)

	handler := servernet.NewHTTPHandler(registry, servernet.HTTPHandlerConfig{
		Logger:    telemetryLogger,
		Publisher: router,
		Counters:  counters,
		LogStats:  router.Stats,
	})

	listener := cfg.Listener
	if listener == nil {
		listener, err = net.Listen("tcp", cfg.Relay.Addr())
		if err != nil {
			return fmt.Errorf("listen on %s: %w", cfg.Relay.Addr(), err)
		}
	}

	srv := &http.Server{Handler: handler}
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		telemetryLogger.Printf("relay listening on %s", listener.Addr())
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

func newRouter(relay config.Relay) (*logging.Router, error) {
	logConfig := logging.DefaultConfig()
	named := []logging.NamedSink{
		{Name: "console", Sink: loggingSinks.NewConsoleSink(os.Stdout)},
	}

	if relay.LogJSONPath != "" {
		file, err := os.OpenFile(relay.LogJSONPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open json log %s: %w", relay.LogJSONPath, err)
		}
		logConfig.EnabledSinks = append(logConfig.EnabledSinks, "json")
		logConfig.JSON.FilePath = relay.LogJSONPath
		named = append(named, logging.NamedSink{
			Name: "json",
			Sink: loggingSinks.NewJSON(file, logConfig.JSON.FlushInterval),
		})
	}

	return logging.NewRouter(nil, logConfig, named), nil
}
