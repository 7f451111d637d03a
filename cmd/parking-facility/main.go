package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parking-facility/internal/config"
	"parking-facility/internal/logging"
	"parking-facility/internal/parking"
	"parking-facility/internal/server"
)

func main() {
	cfg := config.Load()

	mode := flag.String("mode", cfg.Mode, "Mode to run: cli, server, or both")
	port := flag.String("port", cfg.Port, "Port for HTTP server")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryProvider, err := parking.NewTelemetryProvider(ctx, parking.TelemetryConfig{
		ServiceName: cfg.OTelServiceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.OTelEndpoint,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize telemetry: %v\n", err)
		os.Exit(1)
	}

	logging.Init(cfg.OTelServiceName, cfg.Environment)

	facility, err := newFacility(cfg, telemetryProvider)
	if err != nil {
		logging.Error(ctx, "failed to create facility", slog.String("error", err.Error()))
		shutdownTelemetry(telemetryProvider)
		os.Exit(1)
	}
	logging.ForFacility(ctx, facility.Facility).InfoContext(ctx, "facility ready")

	facilities := parking.NewFacilityHolder(facility)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	switch *mode {
	case "cli":
		runCLI(ctx, cancel, cfg, telemetryProvider, facilities, sigChan)
	case "server":
		runServer(ctx, cancel, cfg, *port, telemetryProvider, facilities, sigChan)
	case "both":
		runBoth(ctx, cancel, cfg, *port, telemetryProvider, facilities, sigChan)
	default:
		logging.Error(ctx, "invalid mode, must be cli, server, or both", slog.String("mode", *mode))
		shutdownTelemetry(telemetryProvider)
		os.Exit(1)
	}
}

func newFacility(cfg *config.Config, telemetryProvider *parking.TelemetryProvider) (*parking.InstrumentedFacility, error) {
	inventory, err := cfg.Inventory()
	if err != nil {
		return nil, err
	}

	facility, err := parking.NewFacility(inventory, cfg.FareTable(), parking.WithLogger(logging.Logger()))
	if err != nil {
		return nil, err
	}

	return parking.NewInstrumentedFacility(facility, telemetryProvider)
}

func newShell(cfg *config.Config, telemetryProvider *parking.TelemetryProvider, facilities *parking.FacilityHolder) *parking.InstrumentedShell {
	return parking.NewInstrumentedShell(telemetryProvider, os.Stdin, os.Stdout,
		parking.WithFacilityHolder(facilities),
		parking.WithFares(cfg.FareTable()),
		parking.WithShellLogger(logging.Logger()),
	)
}

func newServer(cfg *config.Config, port string, telemetryProvider *parking.TelemetryProvider, facilities *parking.FacilityHolder) *server.Server {
	handler := server.NewHandler(cfg.OTelServiceName, telemetryProvider, cfg.FareTable(), facilities)
	return server.NewServer(port, handler)
}

func runCLI(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, telemetryProvider *parking.TelemetryProvider, facilities *parking.FacilityHolder, sigChan chan os.Signal) {
	go func() {
		<-sigChan
		logging.Info(ctx, "shutting down")
		cancel()
	}()

	newShell(cfg, telemetryProvider, facilities).Run(ctx)

	shutdownTelemetry(telemetryProvider)
}

func runServer(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, port string, telemetryProvider *parking.TelemetryProvider, facilities *parking.FacilityHolder, sigChan chan os.Signal) {
	srv := newServer(cfg, port, telemetryProvider, facilities)

	go func() {
		<-sigChan
		logging.Info(ctx, "received shutdown signal")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Error(ctx, "server shutdown error", slog.String("error", err.Error()))
		}

		cancel()
	}()

	logging.Info(ctx, "starting server mode", slog.String("port", port))
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Error(ctx, "server error", slog.String("error", err.Error()))
	}

	shutdownTelemetry(telemetryProvider)
}

// runBoth serves HTTP and reads the shell against the same facility holder,
// so a rebuild from either side is seen by the other.
func runBoth(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, port string, telemetryProvider *parking.TelemetryProvider, facilities *parking.FacilityHolder, sigChan chan os.Signal) {
	srv := newServer(cfg, port, telemetryProvider, facilities)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start()
	}()

	cliDone := make(chan bool, 1)
	go func() {
		newShell(cfg, telemetryProvider, facilities).Run(ctx)
		cliDone <- true
	}()

	go func() {
		<-sigChan
		logging.Info(ctx, "received shutdown signal")
		cancel()
	}()

	select {
	case err := <-serverDone:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error(ctx, "server error", slog.String("error", err.Error()))
		}
	case <-cliDone:
		logging.Info(ctx, "CLI exited")
	case <-ctx.Done():
		logging.Info(ctx, "context cancelled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error(ctx, "server shutdown error", slog.String("error", err.Error()))
	}

	shutdownTelemetry(telemetryProvider)
}

func shutdownTelemetry(telemetryProvider *parking.TelemetryProvider) {
	logging.Info(context.Background(), "shutting down telemetry")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := telemetryProvider.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error shutting down telemetry: %v\n", err)
	}
}
