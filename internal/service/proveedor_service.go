package service

import (
	"context"
	"errors"
	"fmt"

	"tiopelotte/internal/dto"
	"tiopelotte/internal/model"
	"tiopelotte/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProveedorService interface {
	Crear(ctx context.Context, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error)
	Listar(ctx context.Context) ([]dto.ProveedorResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
	ActualizarPreciosMasivo(ctx context.Context, id uuid.UUID, req dto.ActualizarPreciosMasivoRequest) (*dto.ActualizacionMasivaResponse, error)
	ImportarListaPrecios(ctx context.Context, proveedorID uuid.UUID, filas [][]string) (*dto.CSVImportResponse, error)
}

type proveedorService struct {
	repo     repository.ProveedorRepository
	ingRepo  repository.IngredienteRepository
	propagar propagador
}

func NewProveedorService(
	repo repository.ProveedorRepository,
	ingRepo repository.IngredienteRepository,
	fabRepo repository.FabricacionRepository,
	cache CostoCache,
	encolador RecalculoEncolador,
) ProveedorService {
	return &proveedorService{
		repo:     repo,
		ingRepo:  ingRepo,
		propagar: propagador{fabRepo: fabRepo, cache: cache, encolador: encolador},
	}
}

func contactosDesdeRequest(in []dto.ContactoProveedorInput) []model.ContactoProveedor {
	out := make([]model.ContactoProveedor, 0, len(in))
	for _, c := range in {
		out = append(out, model.ContactoProveedor{
			Nombre:   c.Nombre,
			Cargo:    c.Cargo,
			Telefono: c.Telefono,
			Email:    c.Email,
		})
	}
	return out
}

func (s *proveedorService) cuitLibre(ctx context.Context, cuit string, propio uuid.UUID) error {
	existing, err := s.repo.FindByCUIT(ctx, cuit)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil && existing.ID != propio {
		return conflicto("ya existe un proveedor con ese CUIT")
	}
	return nil
}

func (s *proveedorService) Crear(ctx context.Context, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error) {
	if err := s.cuitLibre(ctx, req.CUIT, uuid.Nil); err != nil {
		return nil, err
	}

	p := &model.Proveedor{
		RazonSocial:   req.RazonSocial,
		CUIT:          req.CUIT,
		Telefono:      req.Telefono,
		Email:         req.Email,
		Direccion:     req.Direccion,
		CondicionPago: req.CondicionPago,
		Activo:        true,
		Contactos:     contactosDesdeRequest(req.Contactos),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	resp := mapProveedor(p)
	return &resp, nil
}

func (s *proveedorService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "proveedor no encontrado")
	}
	resp := mapProveedor(p)
	return &resp, nil
}

func (s *proveedorService) Listar(ctx context.Context) ([]dto.ProveedorResponse, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.ProveedorResponse, 0, len(list))
	for i := range list {
		result = append(result, mapProveedor(&list[i]))
	}
	return result, nil
}

func (s *proveedorService) Actualizar(ctx context.Context, id uuid.UUID, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "proveedor no encontrado")
	}
	if req.CUIT != p.CUIT {
		if err := s.cuitLibre(ctx, req.CUIT, id); err != nil {
			return nil, err
		}
	}

	p.RazonSocial = req.RazonSocial
	p.CUIT = req.CUIT
	p.Telefono = req.Telefono
	p.Email = req.Email
	p.Direccion = req.Direccion
	p.CondicionPago = req.CondicionPago
	p.Contactos = contactosDesdeRequest(req.Contactos)

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	resp := mapProveedor(p)
	return &resp, nil
}

// Eliminar deactivates the proveedor. Its quotes stay in place so existing
// cost sheets remain explainable.
func (s *proveedorService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return noEncontrado(err, "proveedor no encontrado")
	}
	return s.repo.SoftDelete(ctx, id)
}

// ActualizarPreciosMasivo applies a percentage to every quote of the
// proveedor. Prices are rounded to 2 decimals; unit prices are re-derived.
// A percentage that rounds any price down to zero is rejected as a whole.
func (s *proveedorService) ActualizarPreciosMasivo(ctx context.Context, id uuid.UUID, req dto.ActualizarPreciosMasivoRequest) (*dto.ActualizacionMasivaResponse, error) {
	prov, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "proveedor no encontrado")
	}
	precios, err := s.ingRepo.ListPreciosByProveedor(ctx, id)
	if err != nil {
		return nil, err
	}

	factor := decimal.NewFromInt(1).Add(req.Porcentaje.Div(decimal.NewFromInt(100)))
	resp := &dto.ActualizacionMasivaResponse{
		Proveedor:        prov.RazonSocial,
		Porcentaje:       req.Porcentaje,
		PreciosAfectados: len(precios),
		Preview:          make([]dto.PrecioPreviewItem, 0, len(precios)),
	}

	historial := make([]model.HistorialPrecio, 0, len(precios))
	ingredientes := make([]uuid.UUID, 0, len(precios))
	for i := range precios {
		p := &precios[i]
		antes := *p
		p.Precio = p.Precio.Mul(factor).Round(2)
		if !p.Precio.IsPositive() {
			return nil, invalido(fmt.Sprintf("el porcentaje %s deja el precio %s en cero", req.Porcentaje.String(), antes.Precio.StringFixed(2)))
		}
		derivarUnitario(p)

		item := dto.PrecioPreviewItem{
			PrecioProveedorID: p.ID.String(),
			IngredienteID:     p.IngredienteID.String(),
			PrecioActual:      antes.Precio,
			PrecioNuevo:       p.Precio,
			Diferencia:        p.Precio.Sub(antes.Precio),
			UnitarioNuevo:     p.PrecioUnitarioBase,
		}
		if p.Ingrediente != nil {
			item.Ingrediente = p.Ingrediente.Nombre
		}
		resp.Preview = append(resp.Preview, item)

		historial = append(historial, nuevoHistorial(&antes, p, "masivo", req.Porcentaje))
		ingredientes = append(ingredientes, p.IngredienteID)
	}

	if req.Preview || len(precios) == 0 {
		return resp, nil
	}

	if err := s.ingRepo.ActualizarPrecios(ctx, precios, historial); err != nil {
		return nil, err
	}
	resp.FabricacionesEnCola = s.propagar.porIngredientes(ctx, ingredientes...)
	resp.Preview = nil

	log.Info().
		Str("proveedor_id", id.String()).
		Str("porcentaje", req.Porcentaje.String()).
		Int("precios", len(precios)).
		Msg("precios actualizados masivamente")
	return resp, nil
}

// nuevoHistorial builds the history row for a price that went from antes to
// despues. antes may be nil for a new quote.
func nuevoHistorial(antes, despues *model.PrecioProveedor, motivo string, porcentaje decimal.Decimal) model.HistorialPrecio {
	h := model.HistorialPrecio{
		IngredienteID:      despues.IngredienteID,
		PrecioProveedorID:  despues.ID,
		ProveedorID:        despues.ProveedorID,
		PrecioDespues:      despues.Precio,
		UnitarioDespues:    despues.PrecioUnitarioBase,
		CantidadDespues:    despues.Cantidad,
		UnidadDespues:      despues.Unidad,
		PorcentajeAplicado: porcentaje,
		Motivo:             motivo,
	}
	if antes != nil {
		h.PrecioAntes = antes.Precio
		h.UnitarioAntes = antes.PrecioUnitarioBase
	}
	return h
}

// variacionPct is (despues - antes) / antes * 100, or zero without a base.
func variacionPct(antes, despues decimal.Decimal) decimal.Decimal {
	if !antes.IsPositive() {
		return decimal.Zero
	}
	return despues.Sub(antes).Div(antes).Mul(decimal.NewFromInt(100)).Round(2)
}

