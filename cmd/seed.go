package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gdgjkuat/techdigest/config"
	"github.com/gdgjkuat/techdigest/seed"
	"github.com/gdgjkuat/techdigest/utils"
)

func newSeedCommand() *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert sample episodes and posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase(true)
			if err != nil {
				return err
			}
			defer config.CloseDatabase(db)

			sum, err := seed.Run(cmd.Context(), db, seed.Options{Reset: reset})
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			utils.Sugar.Infof("seeded %s", sum)
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s\n", sum)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "Delete existing content first")
	return cmd
}
