package service

import (
	"context"
	"errors"

	"tiopelotte/internal/dto"
	"tiopelotte/internal/model"
	"tiopelotte/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductoService defines the business logic contract for products.
type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type productoService struct {
	repo     repository.ProductoRepository
	propagar propagador
}

func NewProductoService(
	repo repository.ProductoRepository,
	fabRepo repository.FabricacionRepository,
	cache CostoCache,
	encolador RecalculoEncolador,
) ProductoService {
	return &productoService{
		repo:     repo,
		propagar: propagador{fabRepo: fabRepo, cache: cache, encolador: encolador},
	}
}

func (s *productoService) nombreLibre(ctx context.Context, nombre string, propio uuid.UUID) error {
	existing, err := s.repo.FindByNombre(ctx, nombre)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil && existing.ID != propio {
		return conflicto("ya existe un producto con ese nombre")
	}
	return nil
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	if err := s.nombreLibre(ctx, req.Nombre, uuid.Nil); err != nil {
		return nil, err
	}
	p := &model.Producto{
		Nombre:       req.Nombre,
		Descripcion:  req.Descripcion,
		Categoria:    req.Categoria,
		PrecioVenta:  req.PrecioVenta.Round(2),
		UnidadMedida: req.UnidadMedida,
		Activo:       true,
	}
	if p.UnidadMedida == "" {
		p.UnidadMedida = "unidad"
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	resp := mapProducto(p)
	return &resp, nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "producto no encontrado")
	}
	resp := mapProducto(p)
	return &resp, nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	list, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductoResponse, 0, len(list))
	for i := range list {
		data = append(data, mapProducto(&list[i]))
	}
	return &dto.ProductoListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

// Actualizar applies the non-nil fields. A new precio_venta changes the
// margin of every fabricacion producing this product.
func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "producto no encontrado")
	}

	if req.Nombre != nil && *req.Nombre != p.Nombre {
		if err := s.nombreLibre(ctx, *req.Nombre, id); err != nil {
			return nil, err
		}
		p.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		p.Descripcion = req.Descripcion
	}
	if req.Categoria != nil {
		p.Categoria = *req.Categoria
	}
	if req.UnidadMedida != nil {
		p.UnidadMedida = *req.UnidadMedida
	}
	precioCambio := false
	if req.PrecioVenta != nil && !req.PrecioVenta.Equal(p.PrecioVenta) {
		p.PrecioVenta = req.PrecioVenta.Round(2)
		precioCambio = true
		if p.CostoUnitario != nil {
			p.MargenPct = margenSobreVenta(p.PrecioVenta, *p.CostoUnitario)
		}
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	if precioCambio {
		s.propagar.porProducto(ctx, id)
	}
	resp := mapProducto(p)
	return &resp, nil
}

func (s *productoService) Desactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return noEncontrado(err, "producto no encontrado")
	}
	return s.repo.SoftDelete(ctx, id)
}
