package database

import (
	"database/sql"
	"embed"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/camarero-fulfillment/models"
	"github.com/yeremiapane/camarero-fulfillment/utils"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// AutoMigrate creates or updates the tables for every persisted model.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Business{},
		&models.Table{},
		&models.MenuItem{},
		&models.ModifierGroup{},
		&models.ModifierOption{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemModifierOption{},
	)
	if err != nil {
		return errors.Wrap(err, "auto migrate")
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}

// ApplyConstraints runs the versioned MySQL migrations that add CHECK constraints
// and indexes gorm tags cannot express. It opens its own connection because the
// migrate driver closes the pool it was given.
func ApplyConstraints(dsn string) error {
	cfg, err := gomysql.ParseDSN(dsn)
	if err != nil {
		return errors.Wrap(err, "parse mysql dsn")
	}
	cfg.MultiStatements = true

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return errors.Wrap(err, "open migration connection")
	}

	driver, err := migratemysql.WithInstance(db, &migratemysql.Config{})
	if err != nil {
		db.Close()
		return errors.Wrap(err, "init migrate driver")
	}
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		driver.Close()
		return errors.Wrap(err, "open embedded migrations")
	}
	m, err := migrate.NewWithInstance("iofs", source, "mysql", driver)
	if err != nil {
		driver.Close()
		return errors.Wrap(err, "init migrate")
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, "apply migrations")
	}

	version, dirty, _ := m.Version()
	utils.InfoLogger.WithFields(logrus.Fields{
		"version": version,
		"dirty":   dirty,
	}).Info("Constraint migrations applied")
	return nil
}
