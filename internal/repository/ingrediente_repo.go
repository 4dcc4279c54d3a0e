package repository

import (
	"context"
	"strings"

	"tiopelotte/internal/dto"
	"tiopelotte/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IngredienteRepository covers ingredients and their supplier prices.
// Every price write also appends its HistorialPrecio row in the same
// transaction.
type IngredienteRepository interface {
	Create(ctx context.Context, i *model.Ingrediente) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Ingrediente, error)
	FindByNombre(ctx context.Context, nombre string) (*model.Ingrediente, error)
	// FindByIDs loads the given ingredients with their prices and proveedores.
	// Unknown IDs are silently skipped.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Ingrediente, error)
	List(ctx context.Context, filter dto.IngredienteFilter) ([]model.Ingrediente, int64, error)
	Update(ctx context.Context, i *model.Ingrediente) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	FindPrecio(ctx context.Context, ingredienteID, precioID uuid.UUID) (*model.PrecioProveedor, error)
	ListPreciosByProveedor(ctx context.Context, proveedorID uuid.UUID) ([]model.PrecioProveedor, error)
	CrearPrecio(ctx context.Context, p *model.PrecioProveedor, h *model.HistorialPrecio) error
	ActualizarPrecio(ctx context.Context, p *model.PrecioProveedor, h *model.HistorialPrecio) error
	ActualizarPrecios(ctx context.Context, precios []model.PrecioProveedor, historial []model.HistorialPrecio) error
	EliminarPrecio(ctx context.Context, p *model.PrecioProveedor, h *model.HistorialPrecio) error
	SeleccionarPrecio(ctx context.Context, ingredienteID uuid.UUID, precioID *uuid.UUID) error
}

type ingredienteRepo struct{ db *gorm.DB }

func NewIngredienteRepository(db *gorm.DB) IngredienteRepository { return &ingredienteRepo{db: db} }

// conPrecios preloads prices in insertion order; the costing engine breaks
// price ties by position.
func conPrecios(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Precios", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("Precios.Proveedor")
}

func (r *ingredienteRepo) Create(ctx context.Context, i *model.Ingrediente) error {
	return r.db.WithContext(ctx).Omit("Precios").Create(i).Error
}

func (r *ingredienteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Ingrediente, error) {
	var i model.Ingrediente
	err := conPrecios(r.db.WithContext(ctx)).First(&i, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *ingredienteRepo) FindByNombre(ctx context.Context, nombre string) (*model.Ingrediente, error) {
	var i model.Ingrediente
	err := r.db.WithContext(ctx).Where("lower(nombre) = lower(?)", strings.TrimSpace(nombre)).First(&i).Error
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *ingredienteRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Ingrediente, error) {
	var list []model.Ingrediente
	if len(ids) == 0 {
		return list, nil
	}
	err := conPrecios(r.db.WithContext(ctx)).Where("id IN ?", ids).Find(&list).Error
	return list, err
}

func (r *ingredienteRepo) List(ctx context.Context, filter dto.IngredienteFilter) ([]model.Ingrediente, int64, error) {
	var list []model.Ingrediente
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Ingrediente{})
	q = filtrarActivo(q, filter.Activo)
	if filter.Nombre != "" {
		q = q.Where("lower(nombre) LIKE ?", "%"+strings.ToLower(filter.Nombre)+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := paginar(filter.Page, filter.Limit)
	err := conPrecios(q).Order("nombre ASC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, err
}

func (r *ingredienteRepo) Update(ctx context.Context, i *model.Ingrediente) error {
	return r.db.WithContext(ctx).Omit("Precios").Save(i).Error
}

func (r *ingredienteRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Ingrediente{}).Where("id = ?", id).Update("activo", false).Error
}

func (r *ingredienteRepo) FindPrecio(ctx context.Context, ingredienteID, precioID uuid.UUID) (*model.PrecioProveedor, error) {
	var p model.PrecioProveedor
	err := r.db.WithContext(ctx).
		Preload("Proveedor").
		Where("id = ? AND ingrediente_id = ?", precioID, ingredienteID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ingredienteRepo) ListPreciosByProveedor(ctx context.Context, proveedorID uuid.UUID) ([]model.PrecioProveedor, error) {
	var precios []model.PrecioProveedor
	err := r.db.WithContext(ctx).
		Preload("Ingrediente").
		Where("proveedor_id = ?", proveedorID).
		Order("created_at ASC").
		Find(&precios).Error
	return precios, err
}

func (r *ingredienteRepo) CrearPrecio(ctx context.Context, p *model.PrecioProveedor, h *model.HistorialPrecio) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Proveedor", "Ingrediente").Create(p).Error; err != nil {
			return err
		}
		h.PrecioProveedorID = p.ID
		return tx.Omit("Proveedor").Create(h).Error
	})
}

func (r *ingredienteRepo) ActualizarPrecio(ctx context.Context, p *model.PrecioProveedor, h *model.HistorialPrecio) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Proveedor", "Ingrediente").Save(p).Error; err != nil {
			return err
		}
		return tx.Omit("Proveedor").Create(h).Error
	})
}

// ActualizarPrecios writes a batch of price changes atomically: either every
// price and history row is stored or none is.
func (r *ingredienteRepo) ActualizarPrecios(ctx context.Context, precios []model.PrecioProveedor, historial []model.HistorialPrecio) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range precios {
			if err := tx.Omit("Proveedor", "Ingrediente").Save(&precios[i]).Error; err != nil {
				return err
			}
		}
		if len(historial) == 0 {
			return nil
		}
		return tx.Omit("Proveedor").Create(&historial).Error
	})
}

// EliminarPrecio deletes a price, unpins it from its ingredient when it was
// the selected one and records the removal in the history.
func (r *ingredienteRepo) EliminarPrecio(ctx context.Context, p *model.PrecioProveedor, h *model.HistorialPrecio) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Ingrediente{}).
			Where("id = ? AND precio_seleccionado_id = ?", p.IngredienteID, p.ID).
			Update("precio_seleccionado_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Omit("Proveedor").Create(h).Error; err != nil {
			return err
		}
		return tx.Delete(&model.PrecioProveedor{}, "id = ?", p.ID).Error
	})
}

func (r *ingredienteRepo) SeleccionarPrecio(ctx context.Context, ingredienteID uuid.UUID, precioID *uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Ingrediente{}).
		Where("id = ?", ingredienteID).
		Update("precio_seleccionado_id", precioID).Error
}
