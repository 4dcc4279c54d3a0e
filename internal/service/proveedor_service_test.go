package service

import (
	"context"
	"errors"
	"testing"

	"tiopelotte/internal/dto"
	"tiopelotte/internal/model"
	"tiopelotte/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestProveedorService_CUITDuplicado(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	e.proveedor(t, "Molinos del Sur", "30-71234567-1")

	_, err := e.proveedores.Crear(ctx, dto.CrearProveedorRequest{RazonSocial: "Otro", CUIT: "30-71234567-1"})
	assert.ErrorIs(t, err, ErrConflicto)

	otro := e.proveedor(t, "Centro", "30-70987654-3")
	_, err = e.proveedores.Actualizar(ctx, uuid.MustParse(otro), dto.CrearProveedorRequest{RazonSocial: "Centro", CUIT: "30-71234567-1"})
	assert.ErrorIs(t, err, ErrConflicto)
}

func TestProveedorService_ActualizarContactos(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	p, err := e.proveedores.Crear(ctx, dto.CrearProveedorRequest{
		RazonSocial: "Molinos del Sur",
		CUIT:        "30-71234567-1",
		Contactos:   []dto.ContactoProveedorInput{{Nombre: "Ana"}, {Nombre: "Luis"}},
	})
	require.NoError(t, err)
	require.Len(t, p.Contactos, 2)

	upd, err := e.proveedores.Actualizar(ctx, uuid.MustParse(p.ID), dto.CrearProveedorRequest{
		RazonSocial: "Molinos del Sur SA",
		CUIT:        "30-71234567-1",
		Contactos:   []dto.ContactoProveedorInput{{Nombre: "Marta"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Molinos del Sur SA", upd.RazonSocial)

	got, err := e.proveedores.ObtenerPorID(ctx, uuid.MustParse(p.ID))
	require.NoError(t, err)
	require.Len(t, got.Contactos, 1)
	assert.Equal(t, "Marta", got.Contactos[0].Nombre)
}

func TestProveedorService_Eliminar(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	id := e.proveedor(t, "Molinos del Sur", "30-71234567-1")

	require.NoError(t, e.proveedores.Eliminar(ctx, uuid.MustParse(id)))
	list, err := e.proveedores.Listar(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	harina := e.ingrediente(t, "Harina 000", "kg")
	_, err = e.ingredientes.AgregarPrecio(ctx, harina, dto.PrecioProveedorRequest{
		ProveedorID: id, Precio: decimal.NewFromInt(1), Cantidad: decimal.NewFromInt(1), Unidad: "kg",
	})
	assert.ErrorIs(t, err, ErrInvalido, "inactive proveedor cannot quote")
}

func TestProveedorService_ActualizarPreciosMasivo(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	c := e.catalogoDemo(t)
	fab, err := e.fabricaciones.Crear(ctx, dto.CrearFabricacionRequest{Nombre: "Noquis", ParametrosLote: c.loteNoquis()})
	require.NoError(t, err)
	centro := uuid.MustParse(c.centro)

	preview, err := e.proveedores.ActualizarPreciosMasivo(ctx, centro, dto.ActualizarPreciosMasivoRequest{
		Porcentaje: decimal.NewFromInt(10), Preview: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, preview.PreciosAfectados)
	require.Len(t, preview.Preview, 3)
	assert.Zero(t, preview.FabricacionesEnCola)
	assert.Empty(t, e.cola.ids)
	for _, item := range preview.Preview {
		assert.True(t, item.PrecioNuevo.Equal(item.PrecioActual.Mul(decimal.RequireFromString("1.1")).Round(2)), item.Ingrediente)
	}

	ing, err := e.ingredientes.ObtenerPorID(ctx, c.azucar)
	require.NoError(t, err)
	requireDecimal(t, 1500, ing.Precios[0].Precio, "preview does not write")

	res, err := e.proveedores.ActualizarPreciosMasivo(ctx, centro, dto.ActualizarPreciosMasivoRequest{
		Porcentaje: decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.PreciosAfectados)
	assert.Equal(t, 1, res.FabricacionesEnCola, "one fabricacion uses the three ingredients")
	assert.Nil(t, res.Preview)
	assert.Equal(t, []uuid.UUID{uuid.MustParse(fab.ID)}, e.cola.ids)

	ing, err = e.ingredientes.ObtenerPorID(ctx, c.azucar)
	require.NoError(t, err)
	requireDecimal(t, 1650, ing.Precios[0].Precio)
	requireDecimal(t, 1650, *ing.Precios[0].PrecioUnitarioBase)

	ing, err = e.ingredientes.ObtenerPorID(ctx, c.huevos)
	require.NoError(t, err)
	requireDecimal(t, 3960, ing.Precios[1].Precio)
	requireDecimal(t, 330, *ing.Precios[1].PrecioUnitarioBase)

	_, err = e.proveedores.ActualizarPreciosMasivo(ctx, uuid.New(), dto.ActualizarPreciosMasivoRequest{Porcentaje: decimal.NewFromInt(5)})
	assert.ErrorIs(t, err, ErrNoEncontrado)
}

func TestProveedorService_ImportarListaPrecios(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	c := e.catalogoDemo(t)
	molinos := uuid.MustParse(c.molinos)

	filas := [][]string{
		{"Ingrediente", "Precio", "Cantidad", "Unidad"},
		{"Harina 000", "$ 22.500,00", "25", "kg"},
		{"azucar", "1600", "1", "kg"},
		{"Levadura", "100", "1", "kg"},
		{"Huevos", "abc", "30", "unidad"},
		{"Huevos", "-5", "30", "unidad"},
		{"Huevos", "100", "0", "unidad"},
		{"Huevos", "100", "1", ""},
		{"", "100", "1", "kg"},
		{"", "", "", ""},
		{"solo", "1"},
		{"Harina 000", "1000", "1", "litro"},
		{"Huevos", "500", "1", "kg"},
	}
	res, err := e.proveedores.ImportarListaPrecios(ctx, molinos, filas)
	require.NoError(t, err)

	assert.Equal(t, 11, res.TotalFilas)
	assert.Equal(t, 2, res.Procesadas)
	assert.Equal(t, 1, res.Actualizadas)
	assert.Equal(t, 1, res.Creadas)
	assert.Equal(t, 9, res.Errores)

	codes := make(map[int]string, len(res.DetalleErrores))
	for _, d := range res.DetalleErrores {
		codes[d.Fila] = d.ErrorCode
	}
	assert.Equal(t, map[int]string{
		4:  "INGREDIENT_UNKNOWN",
		5:  "PRICE_NOT_NUMBER",
		6:  "PRICE_NEGATIVE",
		7:  "QTY_INVALID",
		8:  "UNIT_MISSING",
		9:  "INGREDIENT_MISSING",
		11: "ROW_FORMAT",
		12: "UNIT_INCOMPATIBLE",
		13: "UNIT_INCOMPATIBLE",
	}, codes)

	harina, err := e.ingredientes.ObtenerPorID(ctx, c.harina)
	require.NoError(t, err)
	requireDecimal(t, 22500, harina.Precios[0].Precio)
	requireDecimal(t, 900, *harina.Precios[0].PrecioUnitarioBase)
	assert.Equal(t, "kg", harina.Precios[0].Unidad, "a litre row never replaces the kg quote")
	require.NotNil(t, harina.Precios[0].UnidadBase)
	assert.Equal(t, "kg", *harina.Precios[0].UnidadBase)

	huevos, err := e.ingredientes.ObtenerPorID(ctx, c.huevos)
	require.NoError(t, err)
	assert.Len(t, huevos.Precios, 2, "no kg quote created for an ingredient counted in units")

	azucar, err := e.ingredientes.ObtenerPorID(ctx, c.azucar)
	require.NoError(t, err)
	require.Len(t, azucar.Precios, 2)

	_, err = e.proveedores.ImportarListaPrecios(ctx, uuid.New(), filas)
	assert.ErrorIs(t, err, ErrNoEncontrado)
}

func TestProveedorService_ImportarListaPrecios_FalloDeEscritura(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	c := e.catalogoDemo(t)
	molinos := uuid.MustParse(c.molinos)

	fallas := 1
	require.NoError(t, e.db.Callback().Create().Before("gorm:create").Register("test:historial_falla", func(tx *gorm.DB) {
		if tx.Statement.Table == "historial_precios" && fallas > 0 {
			fallas--
			_ = tx.AddError(errors.New("disk full"))
		}
	}))
	t.Cleanup(func() { _ = e.db.Callback().Create().Remove("test:historial_falla") })

	res, err := e.proveedores.ImportarListaPrecios(ctx, molinos, [][]string{
		{"Harina 000", "22500", "25", "kg"},
		{"Harina 000", "30000", "25", "kg"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Errores)
	assert.Equal(t, 1, res.Actualizadas)
	require.Len(t, res.DetalleErrores, 1)
	assert.Equal(t, "WRITE_ERROR", res.DetalleErrores[0].ErrorCode)
	assert.Equal(t, 1, res.DetalleErrores[0].Fila)

	harina, err := e.ingredientes.ObtenerPorID(ctx, c.harina)
	require.NoError(t, err)
	requireDecimal(t, 30000, harina.Precios[0].Precio)

	hist, _, err := repository.NewHistorialPrecioRepository(e.db).ListByIngrediente(ctx, c.harina, 1, 50)
	require.NoError(t, err)
	var importados []model.HistorialPrecio
	for _, h := range hist {
		if h.Motivo == "importacion" {
			importados = append(importados, h)
		}
	}
	require.Len(t, importados, 1)
	requireDecimal(t, 20000, importados[0].PrecioAntes, "the failed row left the in-memory quote untouched")
	requireDecimal(t, 30000, importados[0].PrecioDespues)
}

func TestProveedorService_ActualizarPreciosMasivo_PrecioEnCero(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	c := e.catalogoDemo(t)

	for _, preview := range []bool{true, false} {
		_, err := e.proveedores.ActualizarPreciosMasivo(ctx, uuid.MustParse(c.centro), dto.ActualizarPreciosMasivoRequest{
			Porcentaje: decimal.RequireFromString("-99.9999"), Preview: preview,
		})
		assert.ErrorIs(t, err, ErrInvalido)
	}

	azucar, err := e.ingredientes.ObtenerPorID(ctx, c.azucar)
	require.NoError(t, err)
	requireDecimal(t, 1500, azucar.Precios[0].Precio)
	assert.Empty(t, e.cola.ids)
}

func TestParseDecimal(t *testing.T) {
	cases := map[string]string{
		"1234.5":     "1234.5",
		"1234,5":     "1234.5",
		"$ 1.234,50": "1234.5",
		" 800 ":      "800",
		"$20000":     "20000",
	}
	for raw, want := range cases {
		got, err := parseDecimal(raw)
		require.NoError(t, err, raw)
		assert.True(t, got.Equal(decimal.RequireFromString(want)), raw)
	}

	_, err := parseDecimal("doce")
	assert.Error(t, err)
}
