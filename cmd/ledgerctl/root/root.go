package root

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"xp-ledger/config"
	"xp-ledger/logger"
	"xp-ledger/services"
	"xp-ledger/store"
)

const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "ledgerctl",
	Short:         "Operator tool for the XP ledger",
	Long:          "ledgerctl inspects and maintains the XP ledger's snapshot store using the same environment as the server.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.AddCommand(
		newVerifyCmd(),
		newProfileCmd(),
		newBackupCmd(),
		newRestoreCmd(),
		newResetCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, Bad.Render(IconError+" "+err.Error()))
		os.Exit(1)
	}
}

type env struct {
	cfg   *config.Config
	store store.SnapshotStore
	svc   *services.ProgressionService
}

// openEnv loads configuration and opens the configured snapshot store.
func openEnv(_ context.Context) (*env, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	s, err := store.Open(string(cfg.Driver), cfg.DataDir, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	defaults, err := config.LoadRulebookDefaults(cfg.RulebookDefaultsPath)
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	svc := services.NewProgressionService(store.NewUnitOfWork(s), logger.NewNop(),
		services.WithLocation(cfg.Location),
		services.WithRulebookDefaults(defaults),
	)
	return &env{cfg: cfg, store: s, svc: svc}, func() { _ = s.Close() }, nil
}
