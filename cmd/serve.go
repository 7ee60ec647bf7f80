package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gdgjkuat/techdigest/config"
	"github.com/gdgjkuat/techdigest/imagehost"
	"github.com/gdgjkuat/techdigest/middleware"
	"github.com/gdgjkuat/techdigest/routes"
	"github.com/gdgjkuat/techdigest/utils"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.Get()

	db, err := openDatabase(cfg.AutoMigrate)
	if err != nil {
		return err
	}
	defer config.CloseDatabase(db)

	utils.InitRedis(cfg)
	defer utils.CloseRedis()

	host, err := imagehost.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("image host: %w", err)
	}
	if _, ok := host.(imagehost.Unavailable); ok {
		utils.Sugar.Warn("no image backend configured, uploads will fail")
	}

	middleware.StartPageViewPruner(ctx, db, cfg.PageViewRetentionDays, time.Hour)

	r := routes.SetupRouter(db, cfg, host)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(ctx, ":"+cfg.AppPort, r); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}
