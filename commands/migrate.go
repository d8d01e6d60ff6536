package commands

import (
	"waysfood-api/config"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()

		if err := config.Migrate(db); err != nil {
			return err
		}
		logger.Info("Database migrated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
