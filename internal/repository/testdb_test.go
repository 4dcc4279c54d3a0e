package repository

import (
	"context"
	"testing"

	"tiopelotte/internal/infra"
	"tiopelotte/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory SQLite database with the full schema.
// A single connection keeps every query on the same in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, infra.RunMigrations(db))
	return db
}

func crearProveedor(t *testing.T, db *gorm.DB, nombre, cuit string) *model.Proveedor {
	t.Helper()
	p := &model.Proveedor{RazonSocial: nombre, CUIT: cuit, Activo: true}
	require.NoError(t, NewProveedorRepository(db).Create(context.Background(), p))
	return p
}

func crearIngrediente(t *testing.T, db *gorm.DB, nombre string) *model.Ingrediente {
	t.Helper()
	kg := "kg"
	i := &model.Ingrediente{Nombre: nombre, UnidadBase: &kg, Activo: true}
	require.NoError(t, NewIngredienteRepository(db).Create(context.Background(), i))
	return i
}

func nuevoPrecio(ing *model.Ingrediente, prov *model.Proveedor, precio int64) (*model.PrecioProveedor, *model.HistorialPrecio) {
	kg := "kg"
	unit := decimal.NewFromInt(precio)
	p := &model.PrecioProveedor{
		IngredienteID:      ing.ID,
		ProveedorID:        prov.ID,
		Precio:             decimal.NewFromInt(precio),
		Cantidad:           decimal.NewFromInt(1),
		Unidad:             "kg",
		PrecioUnitarioBase: &unit,
		UnidadBase:         &kg,
	}
	h := &model.HistorialPrecio{
		IngredienteID:   ing.ID,
		ProveedorID:     prov.ID,
		PrecioDespues:   p.Precio,
		CantidadDespues: p.Cantidad,
		UnidadDespues:   p.Unidad,
		Motivo:          "alta",
	}
	return p, h
}
