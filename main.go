package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"xp-ledger/config"
	"xp-ledger/handlers"
	"xp-ledger/logger"
	"xp-ledger/services"
	"xp-ledger/store"
	"xp-ledger/utils"
	"xp-ledger/workers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	logg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatal("failed to build logger: ", err)
	}
	defer logg.Sync()

	if cfg.ServiceToken == "" {
		logg.Fatal("LEDGER_SERVICE_TOKEN is not set, service cannot authenticate the gateway")
	}

	snapshots, err := store.Open(string(cfg.Driver), cfg.DataDir, cfg.DatabaseURL)
	if err != nil {
		logg.Fatal("failed to open snapshot store", "driver", cfg.Driver, "error", err)
	}
	defer snapshots.Close()

	defaults, err := config.LoadRulebookDefaults(cfg.RulebookDefaultsPath)
	if err != nil {
		logg.Fatal("failed to load rulebook defaults", "error", err)
	}

	svc := services.NewProgressionService(
		store.NewUnitOfWork(snapshots),
		logg,
		services.WithLocation(cfg.Location),
		services.WithRulebookDefaults(defaults),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobs := []services.MaintenanceJob{{
		Name:  "consistency-audit",
		Every: cfg.AuditInterval,
		Run:   workers.NewConsistencyAuditWorker(svc, logg).Run,
	}}
	if cfg.BackupInterval > 0 {
		if !cfg.R2.Enabled() {
			logg.Fatal("BACKUP_INTERVAL is set but R2 is not configured")
		}
		r2, err := utils.NewR2Client(ctx, cfg.R2.AccountID, cfg.R2.AccessKeyID, cfg.R2.AccessKeySecret, cfg.R2.Bucket)
		if err != nil {
			logg.Fatal("failed to initialize R2 client", "error", err)
		}
		jobs = append(jobs, services.MaintenanceJob{
			Name:  "snapshot-backup",
			Every: cfg.BackupInterval,
			Run:   workers.NewSnapshotBackupWorker(snapshots, r2, logg).Job(),
		})
	}
	if _, err := services.StartMaintenanceScheduler(ctx, logg, jobs...); err != nil {
		logg.Fatal("failed to start scheduler", "error", err)
	}

	app := handlers.NewServer(svc, logg, handlers.ServerConfig{
		ServiceToken:   cfg.ServiceToken,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logg.Error("server error", "error", err)
			stop()
		}
	}()

	logg.Info("server running",
		"port", cfg.Port,
		"driver", cfg.Driver,
		"timezone", cfg.Location.String(),
		"origins", cfg.AllowedOrigins,
	)

	<-ctx.Done()
	logg.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logg.Warn("server shutdown", "error", err)
	}
}
