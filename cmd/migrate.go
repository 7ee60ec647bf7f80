package cmd

import (
	"github.com/spf13/cobra"

	"github.com/gdgjkuat/techdigest/config"
	"github.com/gdgjkuat/techdigest/utils"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or extend the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase(true)
			if err != nil {
				return err
			}
			defer config.CloseDatabase(db)
			utils.Sugar.Info("database schema is up to date")
			return nil
		},
	}
}
