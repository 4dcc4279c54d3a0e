package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tiopelotte/internal/dto"
	"tiopelotte/internal/model"
	"tiopelotte/internal/pricing"
	"tiopelotte/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type IngredienteService interface {
	Crear(ctx context.Context, req dto.CrearIngredienteRequest) (*dto.IngredienteResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.IngredienteResponse, error)
	Listar(ctx context.Context, filter dto.IngredienteFilter) (*dto.IngredienteListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarIngredienteRequest) (*dto.IngredienteResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error

	AgregarPrecio(ctx context.Context, ingredienteID uuid.UUID, req dto.PrecioProveedorRequest) (*dto.IngredienteResponse, error)
	ActualizarPrecio(ctx context.Context, ingredienteID, precioID uuid.UUID, req dto.ActualizarPrecioRequest) (*dto.IngredienteResponse, error)
	EliminarPrecio(ctx context.Context, ingredienteID, precioID uuid.UUID) error
	SeleccionarPrecio(ctx context.Context, ingredienteID uuid.UUID, req dto.SeleccionarPrecioRequest) (*dto.IngredienteResponse, error)
}

type ingredienteService struct {
	repo     repository.IngredienteRepository
	provRepo repository.ProveedorRepository
	propagar propagador
	formato  formatoPrecio
}

func NewIngredienteService(
	repo repository.IngredienteRepository,
	provRepo repository.ProveedorRepository,
	fabRepo repository.FabricacionRepository,
	cache CostoCache,
	encolador RecalculoEncolador,
	moneda, locale string,
) IngredienteService {
	return &ingredienteService{
		repo:     repo,
		provRepo: provRepo,
		propagar: propagador{fabRepo: fabRepo, cache: cache, encolador: encolador},
		formato:  formatoPrecio{moneda: moneda, locale: locale},
	}
}

func (s *ingredienteService) nombreLibre(ctx context.Context, nombre string, propio uuid.UUID) error {
	existing, err := s.repo.FindByNombre(ctx, nombre)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil && existing.ID != propio {
		return conflicto("ya existe un ingrediente con ese nombre")
	}
	return nil
}

// cargar reloads the ingredient with its prices for responses.
func (s *ingredienteService) cargar(ctx context.Context, id uuid.UUID) (*dto.IngredienteResponse, error) {
	i, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "ingrediente no encontrado")
	}
	resp := s.formato.ingrediente(i)
	return &resp, nil
}

func (s *ingredienteService) Crear(ctx context.Context, req dto.CrearIngredienteRequest) (*dto.IngredienteResponse, error) {
	nombre := strings.TrimSpace(req.Nombre)
	if err := s.nombreLibre(ctx, nombre, uuid.Nil); err != nil {
		return nil, err
	}
	i := &model.Ingrediente{
		Nombre:      nombre,
		Descripcion: req.Descripcion,
		UnidadBase:  unidadBaseOpcional(req.UnidadBase),
		Activo:      true,
	}
	if err := s.repo.Create(ctx, i); err != nil {
		return nil, err
	}
	resp := s.formato.ingrediente(i)
	return &resp, nil
}

func (s *ingredienteService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.IngredienteResponse, error) {
	return s.cargar(ctx, id)
}

func (s *ingredienteService) Listar(ctx context.Context, filter dto.IngredienteFilter) (*dto.IngredienteListResponse, error) {
	list, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.IngredienteResponse, 0, len(list))
	for i := range list {
		data = append(data, s.formato.ingrediente(&list[i]))
	}
	return &dto.IngredienteListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *ingredienteService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarIngredienteRequest) (*dto.IngredienteResponse, error) {
	i, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "ingrediente no encontrado")
	}

	if req.Nombre != nil {
		nombre := strings.TrimSpace(*req.Nombre)
		if !strings.EqualFold(nombre, i.Nombre) {
			if err := s.nombreLibre(ctx, nombre, id); err != nil {
				return nil, err
			}
		}
		i.Nombre = nombre
	}
	if req.Descripcion != nil {
		i.Descripcion = req.Descripcion
	}
	baseCambio := false
	if base := unidadBaseOpcional(req.UnidadBase); base != nil && (i.UnidadBase == nil || *i.UnidadBase != *base) {
		if err := preciosCompatibles(i.Precios, *base); err != nil {
			return nil, err
		}
		i.UnidadBase = base
		baseCambio = true
	}

	if err := s.repo.Update(ctx, i); err != nil {
		return nil, err
	}
	if baseCambio {
		s.propagar.porIngredientes(ctx, id)
	}
	resp := s.formato.ingrediente(i)
	return &resp, nil
}

func (s *ingredienteService) Desactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return noEncontrado(err, "ingrediente no encontrado")
	}
	return s.repo.SoftDelete(ctx, id)
}

func unidadBaseOpcional(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// compatible rejects a quote whose unit maps to a base other than the
// ingredient's. Unknown units are accepted and stored without unit price.
func compatible(ing *model.Ingrediente, p *model.PrecioProveedor) error {
	if ing.UnidadBase == nil || p.UnidadBase == nil || *ing.UnidadBase == *p.UnidadBase {
		return nil
	}
	return invalido(fmt.Sprintf("la unidad %q se expresa en %s y el ingrediente en %s", p.Unidad, *p.UnidadBase, *ing.UnidadBase))
}

func preciosCompatibles(precios []model.PrecioProveedor, base string) error {
	for _, p := range precios {
		if p.UnidadBase != nil && *p.UnidadBase != base {
			return invalido(fmt.Sprintf("hay precios expresados en %s; no se puede cambiar la unidad base a %s", *p.UnidadBase, base))
		}
	}
	return nil
}

func avisarUnidad(p *model.PrecioProveedor) {
	if !pricing.EsUnidadSoportada(p.Unidad) {
		log.Warn().
			Str("ingrediente_id", p.IngredienteID.String()).
			Str("unidad", p.Unidad).
			Msg("unidad no soportada: precio guardado sin unitario")
	}
}

func (s *ingredienteService) AgregarPrecio(ctx context.Context, ingredienteID uuid.UUID, req dto.PrecioProveedorRequest) (*dto.IngredienteResponse, error) {
	ing, err := s.repo.FindByID(ctx, ingredienteID)
	if err != nil {
		return nil, noEncontrado(err, "ingrediente no encontrado")
	}
	proveedorID, err := uuid.Parse(req.ProveedorID)
	if err != nil {
		return nil, invalido("proveedor_id invalido")
	}
	prov, err := s.provRepo.FindByID(ctx, proveedorID)
	if err != nil {
		return nil, noEncontrado(err, "proveedor no encontrado")
	}
	if !prov.Activo {
		return nil, invalido("el proveedor esta inactivo")
	}
	for _, p := range ing.Precios {
		if p.ProveedorID == proveedorID {
			return nil, conflicto("el proveedor ya cotiza este ingrediente; actualice el precio existente")
		}
	}

	p := &model.PrecioProveedor{
		IngredienteID: ingredienteID,
		ProveedorID:   proveedorID,
		Precio:        req.Precio.Round(2),
		Cantidad:      req.Cantidad,
		Unidad:        strings.TrimSpace(req.Unidad),
	}
	derivarUnitario(p)
	if err := compatible(ing, p); err != nil {
		return nil, err
	}
	avisarUnidad(p)

	h := nuevoHistorial(nil, p, "alta", decimal.Zero)
	if err := s.repo.CrearPrecio(ctx, p, &h); err != nil {
		return nil, err
	}
	s.propagar.porIngredientes(ctx, ingredienteID)
	return s.cargar(ctx, ingredienteID)
}

func (s *ingredienteService) ActualizarPrecio(ctx context.Context, ingredienteID, precioID uuid.UUID, req dto.ActualizarPrecioRequest) (*dto.IngredienteResponse, error) {
	ing, err := s.repo.FindByID(ctx, ingredienteID)
	if err != nil {
		return nil, noEncontrado(err, "ingrediente no encontrado")
	}
	p, err := s.repo.FindPrecio(ctx, ingredienteID, precioID)
	if err != nil {
		return nil, noEncontrado(err, "precio no encontrado")
	}

	antes := *p
	if req.Precio != nil {
		p.Precio = req.Precio.Round(2)
	}
	if req.Cantidad != nil {
		p.Cantidad = *req.Cantidad
	}
	if req.Unidad != nil {
		p.Unidad = strings.TrimSpace(*req.Unidad)
	}
	derivarUnitario(p)
	if err := compatible(ing, p); err != nil {
		return nil, err
	}
	avisarUnidad(p)

	motivo := "manual"
	if req.Motivo != nil && strings.TrimSpace(*req.Motivo) != "" {
		motivo = strings.TrimSpace(*req.Motivo)
	}
	h := nuevoHistorial(&antes, p, motivo, variacionPct(antes.Precio, p.Precio))
	if err := s.repo.ActualizarPrecio(ctx, p, &h); err != nil {
		return nil, err
	}
	s.propagar.porIngredientes(ctx, ingredienteID)
	return s.cargar(ctx, ingredienteID)
}

// EliminarPrecio removes a quote. When it was the pinned one the ingredient
// falls back to cheapest-first selection.
func (s *ingredienteService) EliminarPrecio(ctx context.Context, ingredienteID, precioID uuid.UUID) error {
	p, err := s.repo.FindPrecio(ctx, ingredienteID, precioID)
	if err != nil {
		return noEncontrado(err, "precio no encontrado")
	}
	baja := *p
	baja.Precio = decimal.Zero
	baja.PrecioUnitarioBase = nil
	h := nuevoHistorial(p, &baja, "baja", decimal.NewFromInt(-100))
	if err := s.repo.EliminarPrecio(ctx, p, &h); err != nil {
		return err
	}
	s.propagar.porIngredientes(ctx, ingredienteID)
	return nil
}

// SeleccionarPrecio pins the quote used for costing; a nil precio_id unpins.
func (s *ingredienteService) SeleccionarPrecio(ctx context.Context, ingredienteID uuid.UUID, req dto.SeleccionarPrecioRequest) (*dto.IngredienteResponse, error) {
	if _, err := s.repo.FindByID(ctx, ingredienteID); err != nil {
		return nil, noEncontrado(err, "ingrediente no encontrado")
	}

	var precioID *uuid.UUID
	if req.PrecioID != nil {
		id, err := uuid.Parse(*req.PrecioID)
		if err != nil {
			return nil, invalido("precio_id invalido")
		}
		if _, err := s.repo.FindPrecio(ctx, ingredienteID, id); err != nil {
			return nil, noEncontrado(err, "el precio no pertenece al ingrediente")
		}
		precioID = &id
	}

	if err := s.repo.SeleccionarPrecio(ctx, ingredienteID, precioID); err != nil {
		return nil, err
	}
	s.propagar.porIngredientes(ctx, ingredienteID)
	return s.cargar(ctx, ingredienteID)
}
