//go:build integration

package router_test

// End-to-end costing flow against real Postgres + Redis via testcontainers,
// with the recalculation worker pool running.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tiopelotte/internal/config"
	"tiopelotte/internal/infra"
	"tiopelotte/internal/router"
	"tiopelotte/internal/worker"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// crear POSTs body and decodes the created resource id.
func crear(t *testing.T, srv *httptest.Server, path string, body any) string {
	t.Helper()
	resp := do(t, srv, http.MethodPost, path, jsonBody(t, body))
	require.Equal(t, http.StatusCreated, resp.StatusCode, path)
	var out struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &out)
	require.NotEmpty(t, out.ID)
	return out.ID
}

type calculo struct {
	CostoIngredientes decimal.Decimal  `json:"costo_ingredientes"`
	CostoTotalLote    decimal.Decimal  `json:"costo_total_lote"`
	CostoUnitario     *decimal.Decimal `json:"costo_unitario"`
	MargenActualPct   *decimal.Decimal `json:"margen_actual_pct"`
}

func leerCalculo(t *testing.T, srv *httptest.Server, fabID string) calculo {
	t.Helper()
	resp := do(t, srv, http.MethodGet, "/v1/fabricaciones/"+fabID+"/calculo", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var c calculo
	decodeJSON(t, resp, &c)
	return c
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("tiopelotte_test"),
		tcPostgres.WithUsername("tiopelotte"),
		tcPostgres.WithPassword("tiopelotte"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(context.Background()) })
	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(context.Background()) })
	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:                   "test",
		WorkerPoolSize:        1,
		DatabaseURL:           pgURL,
		RedisURL:              rdURL,
		Moneda:                "ARS",
		Locale:                "es-AR",
		UnidadBaseFallback:    "kg",
		CosteoCacheTTLMinutes: 30,
		RateLimitPerMinute:    10_000,
		ExportStoragePath:     t.TempDir(),
		NombreNegocio:         "Tio Pelotte",
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	svcs, err := router.NuevosServicios(cfg, db, rdb)
	require.NoError(t, err)
	pool := worker.NewPool(rdb, map[string]worker.JobHandler{
		worker.JobRecalculo: worker.NewRecalculoWorker(svcs.Fabricaciones),
	})
	pool.Start(ctx, cfg.WorkerPoolSize)

	srv := httptest.NewServer(router.New(ctx, cfg, db, rdb, svcs))
	t.Cleanup(srv.Close)
	return srv
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_CosteoCompleto(t *testing.T) {
	srv := setupServer(t)

	molinos := crear(t, srv, "/v1/proveedores", map[string]any{"razon_social": "Molinos del Sur", "cuit": "30-71234567-1"})
	granja := crear(t, srv, "/v1/proveedores", map[string]any{"razon_social": "Granja La Esperanza", "cuit": "20-28765432-9"})
	harina := crear(t, srv, "/v1/ingredientes", map[string]any{"nombre": "Harina 000", "unidad_base": "kg"})
	huevos := crear(t, srv, "/v1/ingredientes", map[string]any{"nombre": "Huevos", "unidad_base": "unidad"})

	resp := do(t, srv, http.MethodPost, "/v1/ingredientes/"+harina+"/precios", jsonBody(t, map[string]any{
		"proveedor_id": molinos, "precio": 20000, "cantidad": 25, "unidad": "kg",
	}))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	resp = do(t, srv, http.MethodPost, "/v1/ingredientes/"+huevos+"/precios", jsonBody(t, map[string]any{
		"proveedor_id": granja, "precio": 8000, "cantidad": 30, "unidad": "unidades",
	}))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// the unique (ingrediente, proveedor) index backs the service check
	resp = do(t, srv, http.MethodPost, "/v1/ingredientes/"+harina+"/precios", jsonBody(t, map[string]any{
		"proveedor_id": molinos, "precio": 1, "cantidad": 1, "unidad": "kg",
	}))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	producto := crear(t, srv, "/v1/productos", map[string]any{"nombre": "Noquis de papa", "categoria": "pastas", "precio_venta": 2000})
	fab := crear(t, srv, "/v1/fabricaciones", map[string]any{
		"nombre":      "Noquis lote 12",
		"producto_id": producto,
		"batch_size":  12,
		"lineas": []map[string]any{
			{"ingrediente_id": harina, "cantidad": 10, "unidad": "kg"},
			{"ingrediente_id": huevos, "cantidad": 24, "unidad": "unidad"},
		},
	})

	c := leerCalculo(t, srv, fab)
	assert.InDelta(t, 14400, c.CostoIngredientes.InexactFloat64(), 0.01)
	require.NotNil(t, c.CostoUnitario)
	assert.InDelta(t, 1200, c.CostoUnitario.InexactFloat64(), 0.01)

	resp = do(t, srv, http.MethodGet, "/v1/productos/"+producto, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var prod struct {
		MargenPct *decimal.Decimal `json:"margen_pct"`
	}
	decodeJSON(t, resp, &prod)
	require.NotNil(t, prod.MargenPct)
	assert.InDelta(t, 40, prod.MargenPct.InexactFloat64(), 0.01)

	// +10% on every Molinos quote recalculates in the background
	resp = do(t, srv, http.MethodPost, "/v1/proveedores/"+molinos+"/precios-masivo", jsonBody(t, map[string]any{"porcentaje": 10}))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var masivo struct {
		PreciosAfectados    int `json:"precios_afectados"`
		FabricacionesEnCola int `json:"fabricaciones_en_cola"`
	}
	decodeJSON(t, resp, &masivo)
	assert.Equal(t, 1, masivo.PreciosAfectados)
	assert.Equal(t, 1, masivo.FabricacionesEnCola)

	assert.Eventually(t, func() bool {
		return leerCalculo(t, srv, fab).CostoIngredientes.Equal(decimal.NewFromInt(15200))
	}, 15*time.Second, 100*time.Millisecond)

	resp = do(t, srv, http.MethodGet, "/v1/ingredientes/"+harina+"/historial-precios", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var hist struct {
		Total int64 `json:"total"`
		Data  []struct {
			Motivo string `json:"motivo"`
		} `json:"data"`
	}
	decodeJSON(t, resp, &hist)
	require.EqualValues(t, 2, hist.Total)
	assert.Equal(t, "masivo", hist.Data[0].Motivo, "newest first")

	resp = do(t, srv, http.MethodGet, "/v1/fabricaciones/"+fab+"/export.xlsx", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")
	resp.Body.Close()

	resp = do(t, srv, http.MethodGet, "/v1/fabricaciones/"+fab+"/export.pdf", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestE2E_Simular(t *testing.T) {
	srv := setupServer(t)

	resp := do(t, srv, http.MethodPost, "/v1/fabricaciones/simular", jsonBody(t, map[string]any{
		"batch_size":      10,
		"costo_mano_obra": 5000,
		"costo_empaque":   1000,
		"overhead_pct":    10,
		"lineas":          []map[string]any{},
	}))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var c calculo
	decodeJSON(t, resp, &c)
	assert.InDelta(t, 6600, c.CostoTotalLote.InexactFloat64(), 0.01)
	require.NotNil(t, c.CostoUnitario)
	assert.InDelta(t, 660, c.CostoUnitario.InexactFloat64(), 0.01)

	resp = do(t, srv, http.MethodGet, "/v1/fabricaciones/00000000-0000-0000-0000-000000000000/calculo", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
