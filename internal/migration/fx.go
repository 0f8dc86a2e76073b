package migration

import (
	"errors"
	"fmt"
	"strings"

	"github.com/smallbiznis/partnerledger/internal/config"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var errUnsupportedDialect = errors.New("embedded migrations support postgres only")

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if !cfg.DBRunMigrations {
			return nil
		}
		if err := checkDialect(cfg.DBType); err != nil {
			return err
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)

// checkDialect refuses to start a mysql or sqlite deployment with migrations
// enabled; those schemas are provisioned outside the service.
func checkDialect(dbType string) error {
	switch strings.ToLower(strings.TrimSpace(dbType)) {
	case "", "postgres":
		return nil
	default:
		return fmt.Errorf("%w: got %q, set DATABASE_RUN_MIGRATIONS=false and provision the schema externally", errUnsupportedDialect, dbType)
	}
}
