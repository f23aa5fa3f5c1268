package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/easylife-c/APHAv.2/internal/actuator"
	"github.com/easylife-c/APHAv.2/internal/bootstrap"
	"github.com/easylife-c/APHAv.2/internal/config"
	"github.com/easylife-c/APHAv.2/internal/cooldown"
	"github.com/easylife-c/APHAv.2/internal/dose"
	"github.com/easylife-c/APHAv.2/internal/dosing"
	"github.com/easylife-c/APHAv.2/internal/handler"
	"github.com/easylife-c/APHAv.2/internal/moisture"
	"github.com/easylife-c/APHAv.2/internal/scheduler"
	"github.com/easylife-c/APHAv.2/internal/server"
	"github.com/easylife-c/APHAv.2/internal/tank"
	"github.com/easylife-c/APHAv.2/internal/validation"
	"github.com/easylife-c/APHAv.2/internal/vision"
	"github.com/easylife-c/APHAv.2/internal/worker"
)

const (
	tankLedgerFile     = "tank_levels.json"
	cooldownLedgerFile = "fertilizer_log.json"

	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Configuration failed", "error", err)
		os.Exit(1)
	}

	logFile, err := bootstrap.SetupLogger(cfg)
	if err != nil {
		slog.Error("Logger setup failed", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	if cfg.Environment == "prod" {
		if err := config.ValidateEnv(); err != nil {
			slog.Error("Environment validation failed", "error", err)
			os.Exit(1)
		}
	}

	handler.InitValidator()

	// Durable ledgers
	if err := validation.ValidateLedgers(cfg.DataDir); err != nil {
		slog.Error("Ledger validation failed", "error", err)
		os.Exit(1)
	}

	tankSvc, err := tank.NewService(filepath.Join(cfg.DataDir, tankLedgerFile), cfg.DefaultTankLevelML)
	if err != nil {
		slog.Error("Failed to load tank ledger", "error", err)
		os.Exit(1)
	}

	cooldownSvc, err := cooldown.NewService(
		filepath.Join(cfg.DataDir, cooldownLedgerFile),
		time.Duration(cfg.CooldownHours)*time.Hour,
		time.Now,
	)
	if err != nil {
		slog.Error("Failed to load cooldown ledger", "error", err)
		os.Exit(1)
	}

	// Actuator backend
	var pump actuator.Driver
	switch cfg.ActuatorBackend {
	case "gpio":
		pump, err = actuator.NewGPIO()
		if err != nil {
			slog.Error("Failed to initialize GPIO pumps", "error", err)
			os.Exit(1)
		}
		slog.Info("GPIO pump driver initialized")
	default:
		pump = actuator.NewSimulated(cfg.SimulateDelay)
		slog.Info("Simulated pump driver initialized", "real_delay", cfg.SimulateDelay)
	}

	calc := dose.NewCalculator(cfg.BaseRateMLPerArea, cfg.PumpRateMLPerSec)
	dosingSvc := dosing.NewService(calc, tankSvc, cooldownSvc, pump, time.Now)

	// Vision estimator is optional; the analyze endpoint reports
	// unavailable when no API key is configured.
	var estimator vision.Estimator
	if cfg.GeminiAPIKey != "" {
		estimator, err = vision.NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			slog.Error("Failed to initialize vision estimator", "error", err)
			os.Exit(1)
		}
		slog.Info("Vision estimator initialized", "model", cfg.GeminiModel)
	} else {
		slog.Warn("GEMINI_API_KEY not set, photo analysis disabled")
	}

	// Background moisture watcher
	pool := worker.NewPool(2, 16)
	pool.Start()
	sched := scheduler.New(pool)

	if cfg.MoistureEnabled {
		sensor, err := moistureSensor(cfg)
		if err != nil {
			slog.Error("Failed to initialize moisture sensor", "error", err)
			os.Exit(1)
		}
		job := moisture.NewJob(sensor, dosingSvc, cfg.MoistureThreshold, cfg.MoistureDoseML)
		sched.Schedule(time.Duration(cfg.MoistureIntervalMin)*time.Minute, job)
		slog.Info("Moisture watcher scheduled",
			"interval_min", cfg.MoistureIntervalMin,
			"threshold", cfg.MoistureThreshold,
			"dose_ml", cfg.MoistureDoseML)
	}

	srv := server.NewServer(server.Config{
		Port:           cfg.Port,
		APIKey:         cfg.APIKey,
		TrustedProxies: cfg.TrustedProxies,
		DataDir:        cfg.DataDir,
	}, dosingSvc, tankSvc, estimator)

	// Run the server; shut everything down on SIGINT/SIGTERM
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		slog.Error("Server failed", "error", err)
	case sig := <-sc:
		slog.Info("Signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	bootstrap.GracefulShutdown(ctx, bootstrap.ShutdownComponents{
		Server:     srv,
		Scheduler:  sched,
		WorkerPool: pool,
	})
}

// moistureSensor picks the sensor implementation matching the actuator backend
func moistureSensor(cfg *config.Config) (moisture.Sensor, error) {
	if cfg.ActuatorBackend == "gpio" {
		return moisture.NewGPIOSensor()
	}
	return moisture.SimulatedSensor{}, nil
}
