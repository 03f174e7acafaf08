package postgres

import (
	"database/sql"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/turtacn/molsearch/internal/config"
	"github.com/turtacn/molsearch/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molsearch/pkg/errors"
)

// RunMigrations applies all pending schema migrations from the configured
// directory.  A schema already at the latest version is not an error.
func RunMigrations(cfg config.DatabaseConfig, log logging.Logger) error {
	db, err := sql.Open("pgx", BuildDSN(cfg))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "opening migration connection")
	}
	defer db.Close()

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "creating migration driver")
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+cfg.MigrationPath, "pgx5", driver)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "creating migrate instance")
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		version, _, _ := m.Version()
		return errors.Wrap(err, errors.ErrCodeDatabaseError,
			fmt.Sprintf("running migrations (current version: %d)", version))
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		log.Warn("failed to read migration version", logging.Err(err))
	}
	log.Info("database migrations completed",
		logging.Int64("version", int64(version)),
		logging.Bool("dirty", dirty),
	)
	return nil
}
