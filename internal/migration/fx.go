package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/contentry/ledger/internal/config"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// Only postgres runs versioned migrations; the sqlite development
		// database is created by gorm AutoMigrate in tests.
		if cfg.DBType != "postgres" {
			return nil
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
