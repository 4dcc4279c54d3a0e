// cmd/seed/main.go: carga proveedores, ingredientes y una fabricación de demo.
// Uso: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"tiopelotte/internal/config"
	"tiopelotte/internal/dto"
	"tiopelotte/internal/infra"
	"tiopelotte/internal/pricing"
	"tiopelotte/internal/repository"
	"tiopelotte/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type precioSeed struct {
	proveedor string
	precio    int64
	cantidad  string
	unidad    string
}

type ingredienteSeed struct {
	nombre  string
	base    string
	precios []precioSeed
}

var ingredientes = []ingredienteSeed{
	{nombre: "Harina 000", base: "kg", precios: []precioSeed{
		{"Molinos del Sur", 20000, "25", "kg"},
		{"Distribuidora Centro", 1000, "1", "kg"},
	}},
	{nombre: "Azúcar", base: "kg", precios: []precioSeed{
		{"Distribuidora Centro", 1500, "1", "kg"},
	}},
	{nombre: "Huevos", base: "unidad", precios: []precioSeed{
		{"Granja La Esperanza", 8000, "30", "unidades"},
		{"Distribuidora Centro", 3600, "1", "docena"},
	}},
}

var proveedores = map[string]string{
	"Molinos del Sur":      "30-71234567-1",
	"Distribuidora Centro": "30-70987654-3",
	"Granja La Esperanza":  "20-28765432-9",
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	ctx := context.Background()
	provRepo := repository.NewProveedorRepository(db)
	ingRepo := repository.NewIngredienteRepository(db)
	fabRepo := repository.NewFabricacionRepository(db)
	prodRepo := repository.NewProductoRepository(db)

	// No cache nor queue: the seed computes costs synchronously.
	provSvc := service.NewProveedorService(provRepo, ingRepo, fabRepo, nil, nil)
	ingSvc := service.NewIngredienteService(ingRepo, provRepo, fabRepo, nil, nil, cfg.Moneda, cfg.Locale)
	prodSvc := service.NewProductoService(prodRepo, fabRepo, nil, nil)
	fabSvc := service.NewFabricacionService(fabRepo, ingRepo, prodRepo, nil, service.FabricacionConfig{
		Moneda:         cfg.Moneda,
		UnidadFallback: pricing.UnidadBase(cfg.UnidadBaseFallback),
	})

	provIDs := make(map[string]string, len(proveedores))
	for nombre, cuit := range proveedores {
		p, err := provSvc.Crear(ctx, dto.CrearProveedorRequest{RazonSocial: nombre, CUIT: cuit})
		if errors.Is(err, service.ErrConflicto) {
			existente, ferr := provRepo.FindByCUIT(ctx, cuit)
			if ferr != nil {
				log.Fatal().Err(ferr).Str("cuit", cuit).Msg("proveedor lookup failed")
			}
			provIDs[nombre] = existente.ID.String()
			continue
		}
		if err != nil {
			log.Fatal().Err(err).Str("proveedor", nombre).Msg("seed proveedor failed")
		}
		provIDs[nombre] = p.ID
	}

	var lineas []dto.LineaInput
	cantidades := map[string]string{"Harina 000": "10", "Azúcar": "2", "Huevos": "24"}
	unidades := map[string]string{"Harina 000": "kg", "Azúcar": "kg", "Huevos": "unidad"}
	for _, seed := range ingredientes {
		base := seed.base
		ing, err := ingSvc.Crear(ctx, dto.CrearIngredienteRequest{Nombre: seed.nombre, UnidadBase: &base})
		if errors.Is(err, service.ErrConflicto) {
			log.Info().Str("ingrediente", seed.nombre).Msg("ya existe, se omite")
			continue
		}
		if err != nil {
			log.Fatal().Err(err).Str("ingrediente", seed.nombre).Msg("seed ingrediente failed")
		}
		for _, ps := range seed.precios {
			_, err := ingSvc.AgregarPrecio(ctx, uuid.MustParse(ing.ID), dto.PrecioProveedorRequest{
				ProveedorID: provIDs[ps.proveedor],
				Precio:      decimal.NewFromInt(ps.precio),
				Cantidad:    decimal.RequireFromString(ps.cantidad),
				Unidad:      ps.unidad,
			})
			if err != nil {
				log.Fatal().Err(err).Str("ingrediente", seed.nombre).Msg("seed precio failed")
			}
		}
		lineas = append(lineas, dto.LineaInput{
			IngredienteID: ing.ID,
			Cantidad:      decimal.RequireFromString(cantidades[seed.nombre]),
			Unidad:        unidades[seed.nombre],
		})
	}
	if len(lineas) == 0 {
		log.Info().Msg("catalogo ya cargado, nada que hacer")
		return
	}

	prod, err := prodSvc.Crear(ctx, dto.CrearProductoRequest{
		Nombre:       "Ñoquis de papa",
		Categoria:    "pastas",
		PrecioVenta:  decimal.NewFromInt(4500),
		UnidadMedida: "kg",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seed producto failed")
	}

	fab, err := fabSvc.Crear(ctx, dto.CrearFabricacionRequest{
		Nombre:     "Ñoquis lote 12 kg",
		ProductoID: &prod.ID,
		ParametrosLote: dto.ParametrosLote{
			BatchSize:         decimal.NewFromInt(12),
			MermaPctGlobal:    decimal.NewFromInt(5),
			CostoManoObra:     decimal.NewFromInt(6000),
			CostoEmpaque:      decimal.NewFromInt(1200),
			OverheadPct:       decimal.NewFromInt(10),
			MargenObjetivoPct: decimal.NewFromInt(40),
			Lineas:            lineas,
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seed fabricacion failed")
	}
	calc, err := fabSvc.Calcular(ctx, uuid.MustParse(fab.ID))
	if err != nil {
		log.Fatal().Err(err).Msg("seed calculo failed")
	}
	log.Info().
		Str("fabricacion_id", fab.ID).
		Str("costo_total_lote", calc.CostoTotalLote.StringFixed(2)).
		Msg("✅ datos de demo cargados")
}
