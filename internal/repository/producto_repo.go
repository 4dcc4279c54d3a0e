package repository

import (
	"context"
	"strings"

	"tiopelotte/internal/dto"
	"tiopelotte/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductoRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	FindByNombre(ctx context.Context, nombre string) (*model.Producto, error)
	List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error)
	Update(ctx context.Context, p *model.Producto) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// ActualizarCosto stores the unit cost of the latest calculation and the
	// margin it leaves against precio_venta.
	ActualizarCosto(ctx context.Context, id uuid.UUID, costo decimal.Decimal, margen *decimal.Decimal) error
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) FindByNombre(ctx context.Context, nombre string) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Where("lower(nombre) = lower(?)", nombre).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var productos []model.Producto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Producto{})
	q = filtrarActivo(q, filter.Activo)

	if filter.Nombre != "" {
		q = q.Where("lower(nombre) LIKE ?", "%"+strings.ToLower(filter.Nombre)+"%")
	}
	if filter.Categoria != "" {
		q = q.Where("categoria = ?", filter.Categoria)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := paginar(filter.Page, filter.Limit)
	err := q.Order("nombre ASC").Limit(limit).Offset((page - 1) * limit).Find(&productos).Error
	return productos, total, err
}

func (r *productoRepo) Update(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productoRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Producto{}).Where("id = ?", id).Update("activo", false).Error
}

func (r *productoRepo) ActualizarCosto(ctx context.Context, id uuid.UUID, costo decimal.Decimal, margen *decimal.Decimal) error {
	return r.db.WithContext(ctx).Model(&model.Producto{}).Where("id = ?", id).Updates(map[string]interface{}{
		"costo_unitario": costo,
		"margen_pct":     margen,
	}).Error
}

// filtrarActivo applies the activo query convention shared by every listing:
// "false" = inactivos, "all" = todos, anything else = activos (default).
func filtrarActivo(q *gorm.DB, activo string) *gorm.DB {
	switch activo {
	case "false":
		return q.Where("activo = ?", false)
	case "all":
		return q
	default:
		return q.Where("activo = ?", true)
	}
}

// paginar normalizes page/limit so callers that skip validation still get a
// bounded query.
func paginar(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return page, limit
}
