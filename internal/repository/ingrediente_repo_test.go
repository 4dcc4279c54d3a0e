package repository

import (
	"context"
	"testing"

	"tiopelotte/internal/dto"
	"tiopelotte/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIngredienteRepo_CrearPrecioRegistraHistorial(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewIngredienteRepository(db)

	prov := crearProveedor(t, db, "Molinos", "30-1")
	ing := crearIngrediente(t, db, "Harina")

	p, h := nuevoPrecio(ing, prov, 1000)
	require.NoError(t, repo.CrearPrecio(ctx, p, h))
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, p.ID, h.PrecioProveedorID)

	rows, total, err := NewHistorialPrecioRepository(db).ListByIngrediente(ctx, ing.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, "alta", rows[0].Motivo)
	require.NotNil(t, rows[0].Proveedor)
	assert.Equal(t, "Molinos", rows[0].Proveedor.RazonSocial)
}

func TestIngredienteRepo_FindByIDPreloadsPreciosEnOrden(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewIngredienteRepository(db)

	a := crearProveedor(t, db, "A", "30-1")
	b := crearProveedor(t, db, "B", "30-2")
	ing := crearIngrediente(t, db, "Azucar")

	p1, h1 := nuevoPrecio(ing, a, 900)
	require.NoError(t, repo.CrearPrecio(ctx, p1, h1))
	p2, h2 := nuevoPrecio(ing, b, 800)
	require.NoError(t, repo.CrearPrecio(ctx, p2, h2))

	got, err := repo.FindByID(ctx, ing.ID)
	require.NoError(t, err)
	require.Len(t, got.Precios, 2)
	assert.Equal(t, p1.ID, got.Precios[0].ID)
	assert.Equal(t, p2.ID, got.Precios[1].ID)
	require.NotNil(t, got.Precios[1].Proveedor)
	assert.Equal(t, "B", got.Precios[1].Proveedor.RazonSocial)
}

func TestIngredienteRepo_FindByNombreIgnoraMayusculas(t *testing.T) {
	db := newTestDB(t)
	repo := NewIngredienteRepository(db)
	ing := crearIngrediente(t, db, "Harina 000")

	got, err := repo.FindByNombre(context.Background(), "  HARINA 000 ")
	require.NoError(t, err)
	assert.Equal(t, ing.ID, got.ID)

	_, err = repo.FindByNombre(context.Background(), "semola")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestIngredienteRepo_EliminarPrecioDesfijaSeleccion(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewIngredienteRepository(db)

	prov := crearProveedor(t, db, "A", "30-1")
	ing := crearIngrediente(t, db, "Huevos")
	p, h := nuevoPrecio(ing, prov, 300)
	require.NoError(t, repo.CrearPrecio(ctx, p, h))
	require.NoError(t, repo.SeleccionarPrecio(ctx, ing.ID, &p.ID))

	got, err := repo.FindByID(ctx, ing.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PrecioSeleccionadoID)

	baja := &model.HistorialPrecio{
		IngredienteID:     ing.ID,
		PrecioProveedorID: p.ID,
		ProveedorID:       prov.ID,
		PrecioAntes:       p.Precio,
		CantidadDespues:   p.Cantidad,
		UnidadDespues:     p.Unidad,
		Motivo:            "baja",
	}
	require.NoError(t, repo.EliminarPrecio(ctx, p, baja))

	got, err = repo.FindByID(ctx, ing.ID)
	require.NoError(t, err)
	assert.Nil(t, got.PrecioSeleccionadoID)
	assert.Empty(t, got.Precios)

	_, err = repo.FindPrecio(ctx, ing.ID, p.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, total, err := NewHistorialPrecioRepository(db).ListByIngrediente(ctx, ing.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestIngredienteRepo_ActualizarPreciosEnLote(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewIngredienteRepository(db)

	prov := crearProveedor(t, db, "A", "30-1")
	harina := crearIngrediente(t, db, "Harina")
	azucar := crearIngrediente(t, db, "Azucar")
	for _, ing := range []*model.Ingrediente{harina, azucar} {
		p, h := nuevoPrecio(ing, prov, 1000)
		require.NoError(t, repo.CrearPrecio(ctx, p, h))
	}

	precios, err := repo.ListPreciosByProveedor(ctx, prov.ID)
	require.NoError(t, err)
	require.Len(t, precios, 2)
	require.NotNil(t, precios[0].Ingrediente)

	historial := make([]model.HistorialPrecio, 0, len(precios))
	for i := range precios {
		precios[i].Precio = decimal.NewFromInt(1100)
		historial = append(historial, model.HistorialPrecio{
			IngredienteID:     precios[i].IngredienteID,
			PrecioProveedorID: precios[i].ID,
			ProveedorID:       prov.ID,
			PrecioAntes:       decimal.NewFromInt(1000),
			PrecioDespues:     precios[i].Precio,
			CantidadDespues:   precios[i].Cantidad,
			UnidadDespues:     precios[i].Unidad,
			Motivo:            "masivo",
		})
	}
	require.NoError(t, repo.ActualizarPrecios(ctx, precios, historial))

	got, err := repo.FindByIDs(ctx, []uuid.UUID{harina.ID, azucar.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, ing := range got {
		require.Len(t, ing.Precios, 1)
		assert.True(t, decimal.NewFromInt(1100).Equal(ing.Precios[0].Precio), ing.Nombre)
	}
}

func TestIngredienteRepo_ListFiltraPorNombreYActivo(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewIngredienteRepository(db)

	crearIngrediente(t, db, "Harina 000")
	crearIngrediente(t, db, "Harina integral")
	baja := crearIngrediente(t, db, "Harina de arroz")
	crearIngrediente(t, db, "Manteca")
	require.NoError(t, repo.SoftDelete(ctx, baja.ID))

	list, total, err := repo.List(ctx, dto.IngredienteFilter{Nombre: "harina", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)
	assert.Equal(t, "Harina 000", list[0].Nombre)

	list, total, err = repo.List(ctx, dto.IngredienteFilter{Activo: "false", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, baja.ID, list[0].ID)

	_, total, err = repo.List(ctx, dto.IngredienteFilter{Activo: "all", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
}
