package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"testing"

	"tiopelotte/internal/dto"
	"tiopelotte/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFabricacionService_CrearIngredienteInexistente(t *testing.T) {
	e := nuevoEntorno(t)
	c := e.catalogoDemo(t)
	lote := c.loteNoquis()
	lote.Lineas = append(lote.Lineas, dto.LineaInput{IngredienteID: uuid.NewString(), Cantidad: decimal.NewFromInt(1), Unidad: "kg"})

	_, err := e.fabricaciones.Crear(context.Background(), dto.CrearFabricacionRequest{Nombre: "Noquis", ParametrosLote: lote})
	assert.ErrorIs(t, err, ErrNoEncontrado)
}

func TestFabricacionService_CrearProductoInexistente(t *testing.T) {
	e := nuevoEntorno(t)
	c := e.catalogoDemo(t)
	pid := uuid.NewString()

	_, err := e.fabricaciones.Crear(context.Background(), dto.CrearFabricacionRequest{
		Nombre: "Noquis", ProductoID: &pid, ParametrosLote: c.loteNoquis(),
	})
	assert.ErrorIs(t, err, ErrNoEncontrado)
}

func TestFabricacionService_Calcular(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	c := e.catalogoDemo(t)

	prod, err := e.productos.Crear(ctx, dto.CrearProductoRequest{
		Nombre: "Noquis de papa", Categoria: "pastas", PrecioVenta: decimal.NewFromInt(4500),
	})
	require.NoError(t, err)
	fab, err := e.fabricaciones.Crear(ctx, dto.CrearFabricacionRequest{
		Nombre: "Noquis lote 12", ProductoID: &prod.ID, ParametrosLote: c.loteNoquis(),
	})
	require.NoError(t, err)
	fabID := uuid.MustParse(fab.ID)
	assert.Nil(t, fab.CalculadoAt)
	require.Len(t, fab.Lineas, 3)

	calc, err := e.fabricaciones.Calcular(ctx, fabID)
	require.NoError(t, err)

	require.Len(t, calc.Lineas, 3)
	requireDecimal(t, 8000, calc.Lineas[0].CostoTotal)
	assert.Equal(t, "Harina 000", calc.Lineas[0].IngredienteNombre)
	require.NotNil(t, calc.Lineas[0].Proveedor)
	assert.Equal(t, "Molinos del Sur", calc.Lineas[0].Proveedor.ProveedorNombre)
	requireDecimal(t, 3000, calc.Lineas[1].CostoTotal)
	requireDecimal(t, 6400, calc.Lineas[2].CostoTotal)
	assert.Equal(t, "Granja La Esperanza", calc.Lineas[2].Proveedor.ProveedorNombre)

	requireDecimal(t, 17400, calc.CostoIngredientes)
	requireDecimal(t, 18270, calc.CostoConMerma)
	requireDecimal(t, 2547, calc.OverheadMonto)
	requireDecimal(t, 28017, calc.CostoTotalLote)
	require.NotNil(t, calc.CostoUnitario)
	requireDecimal(t, 2334.75, *calc.CostoUnitario)
	requireDecimal(t, 18270, calc.PrecioSugerido5)
	requireDecimal(t, 19140, calc.PrecioSugerido10)
	requireDecimal(t, 20010, calc.PrecioSugerido15)
	require.NotNil(t, calc.PrecioSugeridoObjetivo)
	requireDecimal(t, 3268.65, *calc.PrecioSugeridoObjetivo)
	require.NotNil(t, calc.PrecioVentaActual, "product sale price stands in")
	requireDecimal(t, 4500, *calc.PrecioVentaActual)
	assert.Equal(t, "ARS", calc.Moneda)
	require.NotNil(t, calc.FabricacionID)
	assert.Equal(t, fab.ID, *calc.FabricacionID)

	var stored model.Fabricacion
	require.NoError(t, e.db.First(&stored, "id = ?", fabID).Error)
	require.NotNil(t, stored.CalculadoAt)
	require.NotNil(t, stored.CostoUnitario)
	requireDecimal(t, 2334.75, *stored.CostoUnitario)
	var snapshot dto.CalculoResponse
	require.NoError(t, json.Unmarshal(stored.UltimoCalculo, &snapshot))
	requireDecimal(t, 28017, snapshot.CostoTotalLote)

	p, err := e.productos.ObtenerPorID(ctx, uuid.MustParse(prod.ID))
	require.NoError(t, err)
	require.NotNil(t, p.CostoUnitario)
	requireDecimal(t, 2334.75, *p.CostoUnitario)
	require.NotNil(t, p.MargenPct)
	requireDecimal(t, 48.12, *p.MargenPct)
}

func TestFabricacionService_CalcularUsaCache(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	c := e.catalogoDemo(t)
	fab, err := e.fabricaciones.Crear(ctx, dto.CrearFabricacionRequest{Nombre: "Noquis", ParametrosLote: c.loteNoquis()})
	require.NoError(t, err)
	fabID := uuid.MustParse(fab.ID)

	marcado := &dto.CalculoResponse{Moneda: "XXX"}
	require.NoError(t, e.cache.Set(ctx, fabID, marcado))

	calc, err := e.fabricaciones.Calcular(ctx, fabID)
	require.NoError(t, err)
	assert.Same(t, marcado, calc)

	require.NoError(t, e.fabricaciones.Recalcular(ctx, fabID))
	calc, err = e.fabricaciones.Calcular(ctx, fabID)
	require.NoError(t, err)
	assert.Equal(t, "ARS", calc.Moneda, "recalculation bypasses and refreshes the cache")
}

func TestFabricacionService_PrecioSeleccionadoCambiaCosto(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	c := e.catalogoDemo(t)
	fab, err := e.fabricaciones.Crear(ctx, dto.CrearFabricacionRequest{Nombre: "Noquis", ParametrosLote: c.loteNoquis()})
	require.NoError(t, err)
	fabID := uuid.MustParse(fab.ID)

	ing, err := e.ingredientes.ObtenerPorID(ctx, c.huevos)
	require.NoError(t, err)
	_, err = e.ingredientes.SeleccionarPrecio(ctx, c.huevos, dto.SeleccionarPrecioRequest{PrecioID: &ing.Precios[1].ID})
	require.NoError(t, err)

	calc, err := e.fabricaciones.Calcular(ctx, fabID)
	require.NoError(t, err)
	requireDecimal(t, 7200, calc.Lineas[2].CostoTotal)
	assert.True(t, calc.Lineas[2].Proveedor.Seleccionado)
	requireDecimal(t, 18200, calc.CostoIngredientes)
}

func TestFabricacionService_Simular(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	c := e.catalogoDemo(t)

	lote := c.loteNoquis()
	lote.Lineas = append(lote.Lineas, dto.LineaInput{IngredienteID: uuid.NewString(), Cantidad: decimal.NewFromInt(1), Unidad: "kg"})
	pv := decimal.NewFromInt(30000)
	lote.PrecioVentaActual = &pv

	calc, err := e.fabricaciones.Simular(ctx, dto.SimularRequest{ParametrosLote: lote})
	require.NoError(t, err)
	assert.Nil(t, calc.FabricacionID)
	require.Len(t, calc.Lineas, 4)
	assert.True(t, calc.Lineas[3].CostoTotal.IsZero(), "unknown ingredient costs nothing")
	assert.Nil(t, calc.Lineas[3].Proveedor)
	requireDecimal(t, 28017, calc.CostoTotalLote)
	require.NotNil(t, calc.MargenActualPct)
	requireDecimal(t, 42, *calc.MargenActualPct)

	var n int64
	require.NoError(t, e.db.Model(&model.Fabricacion{}).Count(&n).Error)
	assert.Zero(t, n)

	lote.Lineas[0].IngredienteID = "no-es-uuid"
	_, err = e.fabricaciones.Simular(ctx, dto.SimularRequest{ParametrosLote: lote})
	assert.ErrorIs(t, err, ErrInvalido)
}

func TestFabricacionService_EliminadaNoSeCalcula(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	c := e.catalogoDemo(t)
	fab, err := e.fabricaciones.Crear(ctx, dto.CrearFabricacionRequest{Nombre: "Noquis", ParametrosLote: c.loteNoquis()})
	require.NoError(t, err)
	fabID := uuid.MustParse(fab.ID)
	_, err = e.fabricaciones.Calcular(ctx, fabID)
	require.NoError(t, err)

	require.NoError(t, e.fabricaciones.Eliminar(ctx, fabID))
	assert.NotContains(t, e.cache.data, fabID)

	_, err = e.fabricaciones.Calcular(ctx, fabID)
	assert.ErrorIs(t, err, ErrNoEncontrado)
	assert.ErrorIs(t, e.fabricaciones.Recalcular(ctx, fabID), ErrNoEncontrado)
	assert.ErrorIs(t, e.fabricaciones.Eliminar(ctx, uuid.New()), ErrNoEncontrado)
}

func TestFabricacionService_ActualizarReemplazaLineas(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	c := e.catalogoDemo(t)
	fab, err := e.fabricaciones.Crear(ctx, dto.CrearFabricacionRequest{Nombre: "Noquis", ParametrosLote: c.loteNoquis()})
	require.NoError(t, err)
	fabID := uuid.MustParse(fab.ID)
	_, err = e.fabricaciones.Calcular(ctx, fabID)
	require.NoError(t, err)

	lote := c.loteNoquis()
	lote.Lineas = lote.Lineas[:1]
	upd, err := e.fabricaciones.Actualizar(ctx, fabID, dto.CrearFabricacionRequest{Nombre: "Noquis simples", ParametrosLote: lote})
	require.NoError(t, err)
	assert.Equal(t, "Noquis simples", upd.Nombre)
	assert.Len(t, upd.Lineas, 1)
	assert.Nil(t, upd.CalculadoAt)
	assert.NotContains(t, e.cache.data, fabID)

	calc, err := e.fabricaciones.Calcular(ctx, fabID)
	require.NoError(t, err)
	requireDecimal(t, 8000, calc.CostoIngredientes)
}

func TestFabricacionService_Exportar(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	c := e.catalogoDemo(t)
	fab, err := e.fabricaciones.Crear(ctx, dto.CrearFabricacionRequest{Nombre: "Noquis", ParametrosLote: c.loteNoquis()})
	require.NoError(t, err)
	fabID := uuid.MustParse(fab.ID)

	path, err := e.fabricaciones.ExportarPDF(ctx, fabID)
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	buf, nombre, err := e.fabricaciones.ExportarExcel(ctx, fabID)
	require.NoError(t, err)
	assert.Equal(t, "hoja_costos_"+fab.ID+".xlsx", nombre)
	assert.Equal(t, "PK", string(buf.Bytes()[:2]))

	_, err = e.fabricaciones.ExportarPDF(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNoEncontrado)
}

type archivoFake struct {
	objetos map[string][]byte
	tipos   map[string]string
	err     error
}

func (a *archivoFake) Guardar(_ context.Context, nombre string, r io.Reader, size int64, contentType string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if int64(len(b)) != size {
		return "", errors.New("size mismatch")
	}
	if a.objetos == nil {
		a.objetos, a.tipos = map[string][]byte{}, map[string]string{}
	}
	a.objetos[nombre] = b
	a.tipos[nombre] = contentType
	return "exports/" + nombre, nil
}

func TestFabricacionService_ExportarArchiva(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	c := e.catalogoDemo(t)
	fab, err := e.fabricaciones.Crear(ctx, dto.CrearFabricacionRequest{Nombre: "Noquis", ParametrosLote: c.loteNoquis()})
	require.NoError(t, err)
	fabID := uuid.MustParse(fab.ID)

	arch := &archivoFake{}
	svc := e.fabricaciones.(*fabricacionService)
	svc.cfg.Archivo = arch
	svc.cfg.EnlaceBase = "https://costeo.tiopelotte.com.ar/"

	_, err = svc.ExportarPDF(ctx, fabID)
	require.NoError(t, err)
	_, nombre, err := svc.ExportarExcel(ctx, fabID)
	require.NoError(t, err)

	pdf := arch.objetos["hoja_costos_"+fab.ID+".pdf"]
	require.NotNil(t, pdf)
	assert.Equal(t, "%PDF", string(pdf[:4]))
	assert.Equal(t, "application/pdf", arch.tipos["hoja_costos_"+fab.ID+".pdf"])
	assert.Equal(t, "PK", string(arch.objetos[nombre][:2]))

	h, err := svc.hojaCostos(ctx, fabID)
	require.NoError(t, err)
	assert.Equal(t, "https://costeo.tiopelotte.com.ar/fabricaciones/"+fab.ID, h.Enlace)

	// upload errors never fail the export
	svc.cfg.Archivo = &archivoFake{err: errors.New("bucket missing")}
	path, err := svc.ExportarPDF(ctx, fabID)
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestMargenSobreVenta(t *testing.T) {
	m := margenSobreVenta(decimal.NewFromInt(4500), decimal.RequireFromString("2334.75"))
	require.NotNil(t, m)
	assert.Equal(t, "48.12", m.StringFixed(2))

	m = margenSobreVenta(decimal.NewFromInt(1000), decimal.NewFromInt(1500))
	require.NotNil(t, m)
	assert.Equal(t, "-50", m.String())

	assert.Nil(t, margenSobreVenta(decimal.Zero, decimal.NewFromInt(10)))
}
