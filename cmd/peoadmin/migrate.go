package main

import (
	"github.com/spf13/cobra"

	"peo_admin/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		gdb, err := db.InitMySQL(cfg.MySQL.DSN, logger.Logger)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Migrate(gdb); err != nil {
			return err
		}
		logger.Infof("✓ Migrated %d tables", len(db.Models()))
		return nil
	},
}
