package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tiopelotte/internal/dto"
	"tiopelotte/internal/fabricacion"
	"tiopelotte/internal/infra"
	"tiopelotte/internal/model"
	"tiopelotte/internal/pricing"
	"tiopelotte/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type FabricacionService interface {
	Crear(ctx context.Context, req dto.CrearFabricacionRequest) (*dto.FabricacionResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.FabricacionResponse, error)
	Listar(ctx context.Context, filter dto.FabricacionFilter) (*dto.FabricacionListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.CrearFabricacionRequest) (*dto.FabricacionResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error

	// Calcular returns the cost breakdown, from cache when available.
	Calcular(ctx context.Context, id uuid.UUID) (*dto.CalculoResponse, error)
	// Simular costs ad-hoc batch parameters without persisting anything.
	Simular(ctx context.Context, req dto.SimularRequest) (*dto.CalculoResponse, error)
	// Recalcular bypasses the cache and refreshes the stored snapshot.
	Recalcular(ctx context.Context, id uuid.UUID) error

	ExportarPDF(ctx context.Context, id uuid.UUID) (string, error)
	ExportarExcel(ctx context.Context, id uuid.UUID) (*bytes.Buffer, string, error)
}

// Archivador keeps a copy of generated exports. Implemented by
// infra.ArchivoExportaciones.
type Archivador interface {
	Guardar(ctx context.Context, nombre string, r io.Reader, size int64, contentType string) (string, error)
}

// FabricacionConfig carries the runtime settings of the costing service.
type FabricacionConfig struct {
	Moneda         string
	UnidadFallback pricing.UnidadBase
	ExportDir      string
	Negocio        string

	// EnlaceBase prefixes the fabricacion ID in the cost sheet QR code.
	EnlaceBase string
	// Archivo is optional.
	Archivo Archivador
}

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type fabricacionService struct {
	repo     repository.FabricacionRepository
	ingRepo  repository.IngredienteRepository
	prodRepo repository.ProductoRepository
	cache    CostoCache
	cfg      FabricacionConfig
	now      func() time.Time
}

func NewFabricacionService(
	repo repository.FabricacionRepository,
	ingRepo repository.IngredienteRepository,
	prodRepo repository.ProductoRepository,
	cache CostoCache,
	cfg FabricacionConfig,
) FabricacionService {
	if cfg.Moneda == "" {
		cfg.Moneda = pricing.MonedaDefault
	}
	if !cfg.UnidadFallback.Valida() {
		cfg.UnidadFallback = pricing.UnidadKg
	}
	return &fabricacionService{
		repo:     repo,
		ingRepo:  ingRepo,
		prodRepo: prodRepo,
		cache:    cache,
		cfg:      cfg,
		now:      time.Now,
	}
}

// aplicarRequest copies request fields onto f and validates references.
func (s *fabricacionService) aplicarRequest(ctx context.Context, f *model.Fabricacion, req dto.CrearFabricacionRequest) error {
	f.Nombre = strings.TrimSpace(req.Nombre)
	f.Notas = req.Notas
	f.BatchSize = req.BatchSize
	f.MermaPctGlobal = req.MermaPctGlobal
	f.CostoManoObra = req.CostoManoObra.Round(2)
	f.CostoEmpaque = req.CostoEmpaque.Round(2)
	f.OverheadPct = req.OverheadPct
	f.MargenObjetivoPct = req.MargenObjetivoPct
	f.PrecioVentaActual = req.PrecioVentaActual
	f.ProductoID = nil
	f.Producto = nil

	if req.ProductoID != nil && *req.ProductoID != "" {
		pid, err := uuid.Parse(*req.ProductoID)
		if err != nil {
			return invalido("producto_id invalido")
		}
		if _, err := s.prodRepo.FindByID(ctx, pid); err != nil {
			return noEncontrado(err, "producto no encontrado")
		}
		f.ProductoID = &pid
	}

	lineas, err := lineasDesdeRequest(req.Lineas)
	if err != nil {
		return err
	}
	ids := make([]uuid.UUID, 0, len(lineas))
	for _, l := range lineas {
		ids = append(ids, l.IngredienteID)
	}
	encontrados, err := s.ingRepo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	existe := make(map[uuid.UUID]bool, len(encontrados))
	for _, ing := range encontrados {
		existe[ing.ID] = true
	}
	for _, l := range lineas {
		if !existe[l.IngredienteID] {
			return fmt.Errorf("ingrediente %s no encontrado: %w", l.IngredienteID, ErrNoEncontrado)
		}
	}
	f.Lineas = lineas
	return nil
}

func lineasDesdeRequest(in []dto.LineaInput) ([]model.FabricacionLinea, error) {
	out := make([]model.FabricacionLinea, 0, len(in))
	for i, l := range in {
		id, err := uuid.Parse(l.IngredienteID)
		if err != nil {
			return nil, invalido(fmt.Sprintf("linea %d: ingrediente_id invalido", i+1))
		}
		out = append(out, model.FabricacionLinea{
			IngredienteID: id,
			Cantidad:      l.Cantidad,
			Unidad:        strings.TrimSpace(l.Unidad),
			MermaPct:      l.MermaPct,
			Orden:         i,
		})
	}
	return out, nil
}

func (s *fabricacionService) Crear(ctx context.Context, req dto.CrearFabricacionRequest) (*dto.FabricacionResponse, error) {
	f := &model.Fabricacion{Activo: true}
	if err := s.aplicarRequest(ctx, f, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	return s.ObtenerPorID(ctx, f.ID)
}

func (s *fabricacionService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.FabricacionResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "fabricacion no encontrada")
	}
	resp := mapFabricacion(f)
	return &resp, nil
}

func (s *fabricacionService) Listar(ctx context.Context, filter dto.FabricacionFilter) (*dto.FabricacionListResponse, error) {
	list, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.FabricacionResponse, 0, len(list))
	for i := range list {
		data = append(data, mapFabricacion(&list[i]))
	}
	return &dto.FabricacionListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

// Actualizar replaces parameters and lines. The stored snapshot is kept
// until the next calculation but the cached one is dropped.
func (s *fabricacionService) Actualizar(ctx context.Context, id uuid.UUID, req dto.CrearFabricacionRequest) (*dto.FabricacionResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "fabricacion no encontrada")
	}
	if err := s.aplicarRequest(ctx, f, req); err != nil {
		return nil, err
	}
	f.CalculadoAt = nil
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, err
	}
	s.invalidar(ctx, id)
	return s.ObtenerPorID(ctx, id)
}

func (s *fabricacionService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return noEncontrado(err, "fabricacion no encontrada")
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidar(ctx, id)
	return nil
}

func (s *fabricacionService) invalidar(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		log.Warn().Err(err).Str("fabricacion_id", id.String()).Msg("costeo: cache invalidation failed")
	}
}

func (s *fabricacionService) Calcular(ctx context.Context, id uuid.UUID) (*dto.CalculoResponse, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err != nil {
			log.Warn().Err(err).Str("fabricacion_id", id.String()).Msg("costeo: cache read failed")
		}
		if cached != nil {
			return cached, nil
		}
	}

	f, err := s.cargarActiva(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.calcularYGuardar(ctx, f)
}

func (s *fabricacionService) Recalcular(ctx context.Context, id uuid.UUID) error {
	f, err := s.cargarActiva(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.calcularYGuardar(ctx, f)
	return err
}

func (s *fabricacionService) cargarActiva(ctx context.Context, id uuid.UUID) (*model.Fabricacion, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "fabricacion no encontrada")
	}
	if !f.Activo {
		return nil, fmt.Errorf("fabricacion dada de baja: %w", ErrNoEncontrado)
	}
	return f, nil
}

// calcular runs the costing engine for f against current supplier prices.
func (s *fabricacionService) calcular(ctx context.Context, params fabricacion.Parametros, ids []uuid.UUID) (*dto.CalculoResponse, error) {
	ingredientes, err := s.ingRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	cat := ArmarCatalogo(ingredientes)
	res := fabricacion.CalcularCostoFabricacion(params, cat, fabricacion.ConUnidadBaseFallback(s.cfg.UnidadFallback))
	return mapCalculo(res, s.cfg.Moneda, s.now()), nil
}

func (s *fabricacionService) calcularYGuardar(ctx context.Context, f *model.Fabricacion) (*dto.CalculoResponse, error) {
	params, ids := parametrosDesdeModelo(f)
	resp, err := s.calcular(ctx, params, ids)
	if err != nil {
		return nil, err
	}
	fid := f.ID.String()
	resp.FabricacionID = &fid

	snapshot, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	if err := s.repo.GuardarCalculo(ctx, f.ID, datatypes.JSON(snapshot), resp.CostoUnitario, resp.CalculadoAt); err != nil {
		return nil, err
	}

	if f.ProductoID != nil && f.Producto != nil && resp.CostoUnitario != nil {
		margen := margenSobreVenta(f.Producto.PrecioVenta, *resp.CostoUnitario)
		if err := s.prodRepo.ActualizarCosto(ctx, *f.ProductoID, *resp.CostoUnitario, margen); err != nil {
			log.Warn().Err(err).Str("producto_id", f.ProductoID.String()).Msg("costeo: failed to update product cost")
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, f.ID, resp); err != nil {
			log.Warn().Err(err).Str("fabricacion_id", fid).Msg("costeo: cache write failed")
		}
	}

	log.Debug().
		Str("fabricacion_id", fid).
		Str("costo_total_lote", resp.CostoTotalLote.String()).
		Msg("costeo: fabricacion calculada")
	return resp, nil
}

// Simular costs the request as if it were a stored fabricacion. Lines whose
// ingredient does not exist are costed at zero.
func (s *fabricacionService) Simular(ctx context.Context, req dto.SimularRequest) (*dto.CalculoResponse, error) {
	lineas, err := lineasDesdeRequest(req.Lineas)
	if err != nil {
		return nil, err
	}
	f := &model.Fabricacion{
		BatchSize:         req.BatchSize,
		MermaPctGlobal:    req.MermaPctGlobal,
		CostoManoObra:     req.CostoManoObra,
		CostoEmpaque:      req.CostoEmpaque,
		OverheadPct:       req.OverheadPct,
		MargenObjetivoPct: req.MargenObjetivoPct,
		PrecioVentaActual: req.PrecioVentaActual,
		Lineas:            lineas,
	}
	params, ids := parametrosDesdeModelo(f)
	return s.calcular(ctx, params, ids)
}

// parametrosDesdeModelo converts a stored fabricacion into engine input.
// The product's sale price stands in when no explicit one is set.
func parametrosDesdeModelo(f *model.Fabricacion) (fabricacion.Parametros, []uuid.UUID) {
	params := fabricacion.Parametros{
		BatchSize:         f.BatchSize.InexactFloat64(),
		MermaPctGlobal:    f.MermaPctGlobal.InexactFloat64(),
		CostoManoObra:     f.CostoManoObra.InexactFloat64(),
		CostoEmpaque:      f.CostoEmpaque.InexactFloat64(),
		OverheadPct:       f.OverheadPct.InexactFloat64(),
		MargenObjetivoPct: f.MargenObjetivoPct.InexactFloat64(),
		PrecioVentaActual: floatPtr(f.PrecioVentaActual),
		Lineas:            make([]fabricacion.Linea, 0, len(f.Lineas)),
	}
	if params.PrecioVentaActual == nil && f.Producto != nil && f.Producto.Activo {
		v := f.Producto.PrecioVenta.InexactFloat64()
		params.PrecioVentaActual = &v
	}

	ids := make([]uuid.UUID, 0, len(f.Lineas))
	for _, l := range f.Lineas {
		params.Lineas = append(params.Lineas, fabricacion.Linea{
			IngredienteID: fabricacion.IngredienteID(l.IngredienteID.String()),
			Cantidad:      l.Cantidad.InexactFloat64(),
			Unidad:        l.Unidad,
			MermaPct:      l.MermaPct.InexactFloat64(),
		})
		ids = append(ids, l.IngredienteID)
	}
	return params, ids
}

// margenSobreVenta is (venta - costo) / venta * 100, nil without a sale price.
func margenSobreVenta(venta, costo decimal.Decimal) *decimal.Decimal {
	if !venta.IsPositive() {
		return nil
	}
	m := venta.Sub(costo).Div(venta).Mul(decimal.NewFromInt(100)).Round(2)
	return &m
}

func (s *fabricacionService) hojaCostos(ctx context.Context, id uuid.UUID) (infra.HojaCostos, error) {
	calc, err := s.Calcular(ctx, id)
	if err != nil {
		return infra.HojaCostos{}, err
	}
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return infra.HojaCostos{}, noEncontrado(err, "fabricacion no encontrada")
	}
	h := infra.HojaCostos{
		Negocio:       s.cfg.Negocio,
		FabricacionID: id.String(),
		Fabricacion:   f.Nombre,
		Calculo:       calc,
	}
	if s.cfg.EnlaceBase != "" {
		h.Enlace = strings.TrimRight(s.cfg.EnlaceBase, "/") + "/fabricaciones/" + id.String()
	}
	return h, nil
}

// archivar uploads a generated export. Failures are logged and never fail
// the export itself.
func (s *fabricacionService) archivar(ctx context.Context, nombre string, r io.Reader, size int64, contentType string) {
	if s.cfg.Archivo == nil {
		return
	}
	key, err := s.cfg.Archivo.Guardar(ctx, nombre, r, size, contentType)
	if err != nil {
		log.Warn().Err(err).Str("archivo", nombre).Msg("costeo: export archive failed")
		return
	}
	log.Debug().Str("objeto", key).Msg("costeo: export archivado")
}

func (s *fabricacionService) ExportarPDF(ctx context.Context, id uuid.UUID) (string, error) {
	h, err := s.hojaCostos(ctx, id)
	if err != nil {
		return "", err
	}
	filePath, err := infra.GenerarHojaCostosPDF(h, s.cfg.ExportDir)
	if err != nil {
		return "", err
	}
	if s.cfg.Archivo != nil {
		if file, err := os.Open(filePath); err == nil {
			if info, err := file.Stat(); err == nil {
				s.archivar(ctx, filepath.Base(filePath), file, info.Size(), contentTypePDF)
			}
			file.Close()
		}
	}
	return filePath, nil
}

func (s *fabricacionService) ExportarExcel(ctx context.Context, id uuid.UUID) (*bytes.Buffer, string, error) {
	h, err := s.hojaCostos(ctx, id)
	if err != nil {
		return nil, "", err
	}
	buf, err := infra.GenerarHojaCostosExcel(h)
	if err != nil {
		return nil, "", err
	}
	nombre := fmt.Sprintf("hoja_costos_%s.xlsx", id.String())
	s.archivar(ctx, nombre, bytes.NewReader(buf.Bytes()), int64(buf.Len()), contentTypeXLSX)
	return buf, nombre, nil
}
