package main

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"equipment-register/internal/alerting"
	"equipment-register/internal/compliance"
	"equipment-register/internal/repositories"
	"equipment-register/internal/services"
	"equipment-register/migrations"
	"equipment-register/pkg/config"
	"equipment-register/pkg/database/postgresql"
	applogger "equipment-register/pkg/logger"
	"equipment-register/seeders"
)

func main() {
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log.Level, "")
	defer logger.Sync()

	root := &cobra.Command{
		Use:          "seed",
		Short:        "Миграции и демонстрационные данные реестра оборудования",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfg.Postgres.DSN, "dsn", cfg.Postgres.DSN, "строка подключения PostgreSQL")

	withPool := func(run func(ctx context.Context, pool *pgxpool.Pool) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			pool, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
			if err != nil {
				return err
			}
			defer pool.Close()
			return run(ctx, pool)
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "migrate",
			Short: "Применить все миграции",
			RunE: withPool(func(ctx context.Context, pool *pgxpool.Pool) error {
				return migrations.Up(ctx, pool)
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Откатить последнюю миграцию",
			RunE: withPool(func(ctx context.Context, pool *pgxpool.Pool) error {
				return migrations.Down(ctx, pool)
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Показать состояние миграций",
			RunE: withPool(func(ctx context.Context, pool *pgxpool.Pool) error {
				return migrations.Status(ctx, pool)
			}),
		},
		seedCommand(cfg, logger, withPool),
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		logger.Error("❌ Команда завершилась с ошибкой", zap.Error(err))
		os.Exit(1)
	}
}

func seedCommand(
	cfg *config.Config,
	logger *zap.Logger,
	withPool func(func(context.Context, *pgxpool.Pool) error) func(*cobra.Command, []string) error,
) *cobra.Command {
	var branches []string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Наполнить филиалы демонстрационным оборудованием",
		RunE: withPool(func(ctx context.Context, pool *pgxpool.Pool) error {
			if err := migrations.Up(ctx, pool); err != nil {
				return err
			}
			repo := repositories.NewEquipmentRepository(pool, logger)
			base := services.NewBaseService(nil, nil, logger, nil)
			gate := compliance.NewGate(compliance.Policy{
				Mode:                       compliance.Mode(cfg.Policy.Compliance.Mode),
				RequireAerbForRadiology:    cfg.Policy.Compliance.RequireAerbForRadiology,
				RequireValidAerb:           cfg.Policy.Compliance.RequireValidAerb,
				RequirePcpndtForUltrasound: cfg.Policy.Compliance.RequirePcpndtForUltrasound,
				RequireValidPcpndt:         cfg.Policy.Compliance.RequireValidPcpndt,
			})
			equipment := services.NewEquipmentService(base, repo, gate)
			downtime := services.NewDowntimeService(base, repo)
			alerts := services.NewEquipmentAlertsService(base, repo, alerting.NewProjector(alerting.DefaultPolicy()), 0)

			for _, branchID := range branches {
				if _, err := seeders.SeedEquipment(ctx, equipment, downtime, branchID, time.Now(), logger); err != nil {
					return err
				}
				summary, err := alerts.GetSummary(ctx, branchID)
				if err != nil {
					return err
				}
				logger.Info("Сводка филиала",
					zap.String("branch_id", branchID),
					zap.Int("total", summary.Total),
					zap.Int("open_downtime", summary.OpenDowntimeCount),
					zap.Int("pm_due", summary.PmDueCount),
				)
			}
			return nil
		}),
	}
	cmd.Flags().StringSliceVar(&branches, "branch", []string{"DEMO"}, "идентификаторы филиалов")
	return cmd
}
