package infra

import (
	"fmt"

	"tiopelotte/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and migrates the
// schema.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates / updates every table with AutoMigrate and then
// applies the idempotent patches GORM cannot express. It is dialect aware so
// tests can run it against SQLite.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Proveedor{},
		&model.ContactoProveedor{},
		&model.Producto{},
		&model.Ingrediente{},
		&model.PrecioProveedor{},
		&model.HistorialPrecio{},
		&model.Fabricacion{},
		&model.FabricacionLinea{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL statements that GORM AutoMigrate cannot
// handle on its own (partial and composite indexes). Each statement uses
// IF NOT EXISTS semantics so re-running on an already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// one quote per proveedor and ingredient
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_precios_proveedor_ingrediente
		    ON precios_proveedor (ingrediente_id, proveedor_id)`,
		// history listing is always newest-first per ingredient
		`CREATE INDEX IF NOT EXISTS idx_historial_precios_ingrediente_fecha
		    ON historial_precios (ingrediente_id, created_at DESC)`,
		// stale-calculation sweep
		`CREATE INDEX IF NOT EXISTS idx_fabricaciones_sin_calculo
		    ON fabricaciones (updated_at)
		    WHERE activo = true AND calculado_at IS NULL`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
