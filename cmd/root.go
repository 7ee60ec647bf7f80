// Package cmd holds the techdigest command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/gdgjkuat/techdigest/config"
	"github.com/gdgjkuat/techdigest/models"
	"github.com/gdgjkuat/techdigest/utils"
)

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "techdigest",
		Short:         "GDG JKUAT Tech Digest API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.SetPath(configFlag)
			cfg := config.Load()
			if err := utils.InitLogger(cfg); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = utils.Logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Path to config.json (default config/config.json)")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newSeedCommand())
	return rootCmd
}

// openDatabase connects with the loaded configuration and migrates when asked to.
func openDatabase(migrate bool) (*gorm.DB, error) {
	cfg := config.Get()
	db, err := config.OpenDatabase(cfg)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := config.Migrate(db, models.All()...); err != nil {
			config.CloseDatabase(db)
			return nil, err
		}
	}
	return db, nil
}
