package service

import (
	"testing"

	"tiopelotte/internal/fabricacion"
	"tiopelotte/internal/model"
	"tiopelotte/internal/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestArmarCatalogo_OpcionesEnOrdenYSeleccion(t *testing.T) {
	ingID := uuid.New()
	baratoID, caroID := uuid.New(), uuid.New()
	unitario := decimal.NewFromInt(800)
	ing := model.Ingrediente{
		ID:                   ingID,
		Nombre:               "Harina 000",
		UnidadBase:           strPtr("kg"),
		PrecioSeleccionadoID: &caroID,
		Precios: []model.PrecioProveedor{
			{
				ID: baratoID, ProveedorID: uuid.New(),
				Precio: decimal.NewFromInt(20000), Cantidad: decimal.NewFromInt(25), Unidad: "kg",
				PrecioUnitarioBase: &unitario, UnidadBase: strPtr("kg"),
				Proveedor: &model.Proveedor{RazonSocial: "Molinos del Sur"},
			},
			{
				ID: caroID, ProveedorID: uuid.New(),
				Precio: decimal.NewFromInt(1000), Cantidad: decimal.NewFromInt(1), Unidad: "kg",
				UnidadBase: strPtr("kg"),
			},
		},
	}

	cat := ArmarCatalogo([]model.Ingrediente{ing})
	p, ok := cat.Buscar(fabricacion.IngredienteID(ingID.String()))
	require.True(t, ok)
	assert.Equal(t, "Harina 000", p.Nombre)
	require.NotNil(t, p.UnidadBase)
	assert.Equal(t, pricing.UnidadKg, *p.UnidadBase)
	require.Len(t, p.Opciones, 2)
	assert.Equal(t, "Molinos del Sur", p.Opciones[0].ProveedorNombre)
	require.NotNil(t, p.Opciones[0].PrecioUnitarioBase)
	assert.InDelta(t, 800, *p.Opciones[0].PrecioUnitarioBase, 1e-9)
	assert.Nil(t, p.Opciones[1].PrecioUnitarioBase)
	require.NotNil(t, p.IndiceSeleccionado)
	assert.Equal(t, 1, *p.IndiceSeleccionado)

	elegida := fabricacion.ElegirOpcionProveedor(p)
	require.NotNil(t, elegida)
	assert.True(t, elegida.Seleccionada)
	assert.InDelta(t, 1000, elegida.PrecioUnitarioBase, 1e-9)
}

func TestArmarCatalogo_SeleccionHuerfanaSeIgnora(t *testing.T) {
	perdido := uuid.New()
	ing := model.Ingrediente{
		ID:                   uuid.New(),
		Nombre:               "Sal",
		PrecioSeleccionadoID: &perdido,
		UnidadBase:           strPtr("gramo"),
	}
	cat := ArmarCatalogo([]model.Ingrediente{ing})
	p, ok := cat.Buscar(fabricacion.IngredienteID(ing.ID.String()))
	require.True(t, ok)
	assert.Nil(t, p.IndiceSeleccionado)
	assert.Nil(t, p.UnidadBase, "invalid stored base is dropped")
	assert.Empty(t, p.Opciones)
}

func TestDerivarUnitario(t *testing.T) {
	p := &model.PrecioProveedor{Precio: decimal.NewFromInt(8000), Cantidad: decimal.NewFromInt(30), Unidad: "unidades"}
	derivarUnitario(p)
	require.NotNil(t, p.UnidadBase)
	assert.Equal(t, "unidad", *p.UnidadBase)
	require.NotNil(t, p.PrecioUnitarioBase)
	assert.Equal(t, "266.6667", p.PrecioUnitarioBase.String())

	p.Unidad = "bolsa"
	derivarUnitario(p)
	assert.Nil(t, p.UnidadBase)
	assert.Nil(t, p.PrecioUnitarioBase)
}
