package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"tiopelotte/internal/dto"
	"tiopelotte/internal/infra"
	"tiopelotte/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ── In-memory collaborators ──────────────────────────────────────────────────

type memCache struct {
	mu      sync.Mutex
	data    map[uuid.UUID]*dto.CalculoResponse
	deletes []uuid.UUID
}

func newMemCache() *memCache {
	return &memCache{data: make(map[uuid.UUID]*dto.CalculoResponse)}
}

func (c *memCache) Get(_ context.Context, id uuid.UUID) (*dto.CalculoResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[id], nil
}

func (c *memCache) Set(_ context.Context, id uuid.UUID, resp *dto.CalculoResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[id] = resp
	return nil
}

func (c *memCache) Delete(_ context.Context, ids ...uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.data, id)
	}
	c.deletes = append(c.deletes, ids...)
	return nil
}

type colaFake struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (q *colaFake) EncolarRecalculo(_ context.Context, id uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids = append(q.ids, id)
	return nil
}

// ── Environment ──────────────────────────────────────────────────────────────

type entorno struct {
	db    *gorm.DB
	cache *memCache
	cola  *colaFake

	ingRepo  repository.IngredienteRepository
	fabRepo  repository.FabricacionRepository
	prodRepo repository.ProductoRepository
	provRepo repository.ProveedorRepository

	proveedores   ProveedorService
	productos     ProductoService
	ingredientes  IngredienteService
	fabricaciones FabricacionService
}

func nuevoEntorno(t *testing.T) *entorno {
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

	e := &entorno{
		db:       db,
		cache:    newMemCache(),
		cola:     &colaFake{},
		ingRepo:  repository.NewIngredienteRepository(db),
		fabRepo:  repository.NewFabricacionRepository(db),
		prodRepo: repository.NewProductoRepository(db),
		provRepo: repository.NewProveedorRepository(db),
	}
	e.proveedores = NewProveedorService(e.provRepo, e.ingRepo, e.fabRepo, e.cache, e.cola)
	e.productos = NewProductoService(e.prodRepo, e.fabRepo, e.cache, e.cola)
	e.ingredientes = NewIngredienteService(e.ingRepo, e.provRepo, e.fabRepo, e.cache, e.cola, "ARS", "es-AR")
	svc := NewFabricacionService(e.fabRepo, e.ingRepo, e.prodRepo, e.cache, FabricacionConfig{
		Moneda:    "ARS",
		ExportDir: t.TempDir(),
		Negocio:   "Tio Pelotte",
	})
	svc.(*fabricacionService).now = func() time.Time { return time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC) }
	e.fabricaciones = svc
	return e
}

func (e *entorno) proveedor(t *testing.T, nombre, cuit string) string {
	t.Helper()
	p, err := e.proveedores.Crear(context.Background(), dto.CrearProveedorRequest{RazonSocial: nombre, CUIT: cuit})
	require.NoError(t, err)
	return p.ID
}

func (e *entorno) ingrediente(t *testing.T, nombre, base string) uuid.UUID {
	t.Helper()
	req := dto.CrearIngredienteRequest{Nombre: nombre}
	if base != "" {
		req.UnidadBase = &base
	}
	i, err := e.ingredientes.Crear(context.Background(), req)
	require.NoError(t, err)
	return uuid.MustParse(i.ID)
}

func (e *entorno) precio(t *testing.T, ing uuid.UUID, proveedorID string, precio int64, cantidad, unidad string) *dto.IngredienteResponse {
	t.Helper()
	resp, err := e.ingredientes.AgregarPrecio(context.Background(), ing, dto.PrecioProveedorRequest{
		ProveedorID: proveedorID,
		Precio:      decimal.NewFromInt(precio),
		Cantidad:    decimal.RequireFromString(cantidad),
		Unidad:      unidad,
	})
	require.NoError(t, err)
	return resp
}

// catalogoDemo loads the pasta fixture:
//
//	Harina: Molinos 20000 / 25 kg (800/kg), Centro 1000 / 1 kg
//	Azucar: Centro 1500 / 1 kg
//	Huevos: Granja 8000 / 30 unidades (266.67/u), Centro 3600 / docena (300/u)
type catalogoDemo struct {
	molinos, centro, granja string
	harina, azucar, huevos  uuid.UUID
}

func (e *entorno) catalogoDemo(t *testing.T) catalogoDemo {
	t.Helper()
	c := catalogoDemo{
		molinos: e.proveedor(t, "Molinos del Sur", "30-71234567-1"),
		centro:  e.proveedor(t, "Distribuidora Centro", "30-70987654-3"),
		granja:  e.proveedor(t, "Granja La Esperanza", "20-28765432-9"),
		harina:  e.ingrediente(t, "Harina 000", "kg"),
		azucar:  e.ingrediente(t, "Azucar", "kg"),
		huevos:  e.ingrediente(t, "Huevos", "unidad"),
	}
	e.precio(t, c.harina, c.molinos, 20000, "25", "kg")
	e.precio(t, c.harina, c.centro, 1000, "1", "kg")
	e.precio(t, c.azucar, c.centro, 1500, "1", "kg")
	e.precio(t, c.huevos, c.granja, 8000, "30", "unidades")
	e.precio(t, c.huevos, c.centro, 3600, "1", "docena")
	return c
}

// loteNoquis is 10 kg harina + 2 kg azucar + 24 huevos, batch of 12 with
// 5% waste, 6000 labor, 1200 packaging, 10% overhead and a 40% target.
func (c catalogoDemo) loteNoquis() dto.ParametrosLote {
	return dto.ParametrosLote{
		BatchSize:         decimal.NewFromInt(12),
		MermaPctGlobal:    decimal.NewFromInt(5),
		CostoManoObra:     decimal.NewFromInt(6000),
		CostoEmpaque:      decimal.NewFromInt(1200),
		OverheadPct:       decimal.NewFromInt(10),
		MargenObjetivoPct: decimal.NewFromInt(40),
		Lineas: []dto.LineaInput{
			{IngredienteID: c.harina.String(), Cantidad: decimal.NewFromInt(10), Unidad: "kg"},
			{IngredienteID: c.azucar.String(), Cantidad: decimal.NewFromInt(2), Unidad: "kg"},
			{IngredienteID: c.huevos.String(), Cantidad: decimal.NewFromInt(24), Unidad: "unidad"},
		},
	}
}

func requireDecimal(t *testing.T, want float64, got decimal.Decimal, msg ...interface{}) {
	t.Helper()
	require.InDelta(t, want, got.InexactFloat64(), 0.011, msg...)
}
