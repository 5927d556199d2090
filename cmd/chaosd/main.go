package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/blooprocket-create/ChaosInFull-sub002/internal/adapters/persistence"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/application/common"
	appproduction "github.com/blooprocket-create/ChaosInFull-sub002/internal/application/production"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/application/production/commands"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/application/production/queries"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/production"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/infrastructure/config"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/infrastructure/database"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/infrastructure/logging"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/infrastructure/pidfile"
)

var (
	configPath string
	forceStart bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "chaosd",
		Short: "Station production daemon",
		Long:  "chaosd runs the batch production scheduler that ticks station jobs server-side",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: search ./configs, /etc/chaosd)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the production daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
	serveCmd.Flags().BoolVar(&forceStart, "force", false, "kill any existing daemon and start a new one")
	rootCmd.AddCommand(serveCmd)

	characterCmd := &cobra.Command{
		Use:   "character",
		Short: "Manage characters",
	}
	characterCmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a new character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCharacterRepo(func(ctx context.Context, repo *persistence.GormCharacterRepository) error {
				character, err := repo.Create(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Printf("created character %s (id %s)\n", character.Name, character.ID)
				return nil
			})
		},
	})
	characterCmd.AddCommand(&cobra.Command{
		Use:   "show <name>",
		Short: "Show a character by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCharacterRepo(func(ctx context.Context, repo *persistence.GormCharacterRepository) error {
				character, err := repo.FindByName(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Printf("id:   %s\nname: %s\n", character.ID, character.Name)
				return nil
			})
		},
	})
	rootCmd.AddCommand(characterCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// withCharacterRepo opens the configured database for a one-shot character
// command and runs fn against the repository.
func withCharacterRepo(fn func(context.Context, *persistence.GormCharacterRepository) error) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return fn(context.Background(), persistence.NewGormCharacterRepository(db))
}

func serve() error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.NewLogger(&cfg.Logging)
	logger.Info().Str("database", cfg.Database.Type).Msg("chaosd starting")

	pf := pidfile.New(cfg.Daemon.PIDFile)
	if err := pf.Acquire(); err != nil {
		if !forceStart {
			return fmt.Errorf("%w (use --force to replace the running daemon)", err)
		}
		logger.Warn().Msg("replacing existing daemon")
		if killErr := pf.KillExisting(); killErr != nil {
			return fmt.Errorf("failed to kill existing daemon: %w", killErr)
		}
		if err := pf.Acquire(); err != nil {
			return fmt.Errorf("failed to acquire PID file after replacement: %w", err)
		}
	}
	defer func() {
		if err := pf.Release(); err != nil {
			logger.Warn().Err(err).Msg("failed to release PID file")
		}
	}()

	return run(cfg, logger)
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info().Msg("database connected")

	inventoryRepo := persistence.NewGormInventoryRepository(db)
	experienceRepo := persistence.NewGormExperienceRepository(db)
	queueRepo := persistence.NewGormBatchQueueRepository(db)

	recipes := production.DefaultRecipeTable()
	logger.Info().Int("recipes", recipes.Len()).Msg("recipe table loaded")

	scheduler := appproduction.NewStationScheduler(
		recipes, inventoryRepo, experienceRepo, queueRepo, nil, nil, logger,
	)
	reconciler := appproduction.NewCatchUpReconciler(
		recipes, inventoryRepo, experienceRepo, queueRepo, scheduler, nil, nil, logger,
	)

	med := common.NewMediator()

	startHandler := commands.NewStartBatchHandler(scheduler)
	if err := common.RegisterHandler[*commands.StartBatchCommand](med, startHandler); err != nil {
		return fmt.Errorf("failed to register StartBatch handler: %w", err)
	}

	cancelHandler := commands.NewCancelBatchHandler(scheduler)
	if err := common.RegisterHandler[*commands.CancelBatchCommand](med, cancelHandler); err != nil {
		return fmt.Errorf("failed to register CancelBatch handler: %w", err)
	}

	reconcileHandler := commands.NewReconcileSessionHandler(reconciler)
	if err := common.RegisterHandler[*commands.ReconcileSessionCommand](med, reconcileHandler); err != nil {
		return fmt.Errorf("failed to register ReconcileSession handler: %w", err)
	}

	progressHandler := queries.NewGetProgressHandler(scheduler)
	if err := common.RegisterHandler[*queries.GetProgressQuery](med, progressHandler); err != nil {
		return fmt.Errorf("failed to register GetProgress handler: %w", err)
	}

	if cfg.Daemon.ReconcileOnBoot {
		if err := reconcileAll(queueRepo, reconciler, cfg, logger); err != nil {
			return err
		}
	}

	logger.Info().Msg("daemon ready")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info().Str("signal", sig.String()).Msg("shutting down")

	// Live runners stop without cancelling; persisted jobs are caught up on
	// the next boot.
	scheduler.StopAll()
	logger.Info().Msg("daemon stopped")
	return nil
}

// reconcileAll fast-forwards every persisted batch that outlived the previous
// process and resumes the unfinished ones.
func reconcileAll(
	queueRepo *persistence.GormBatchQueueRepository,
	reconciler *appproduction.CatchUpReconciler,
	cfg *config.Config,
	logger zerolog.Logger,
) error {
	ctx := context.Background()
	slots, err := queueRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list persisted batches: %w", err)
	}
	logger.Info().Int("slots", len(slots)).Msg("reconciling persisted batches")

	for _, slot := range slots {
		slotCtx, cancel := context.WithTimeout(ctx, cfg.Daemon.ReconcileTimeout)
		result, err := reconciler.Reconcile(slotCtx, slot.CharacterID, slot.Station)
		cancel()
		if err != nil {
			// One corrupt slot must not keep the daemon down
			logger.Error().Err(err).
				Str("character", slot.CharacterID.String()).
				Str("station", slot.Station.String()).
				Msg("boot reconcile failed for slot")
			continue
		}
		logger.Info().
			Str("character", slot.CharacterID.String()).
			Str("station", slot.Station.String()).
			Int("caught_up", result.CompletedUnits).
			Bool("resumed", result.Resumed != nil).
			Msg("slot reconciled")
	}
	return nil
}
