package repository

import (
	"context"
	"strings"
	"time"

	"tiopelotte/internal/dto"
	"tiopelotte/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type FabricacionRepository interface {
	Create(ctx context.Context, f *model.Fabricacion) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Fabricacion, error)
	List(ctx context.Context, filter dto.FabricacionFilter) ([]model.Fabricacion, int64, error)
	// Update saves f and replaces all of its lines.
	Update(ctx context.Context, f *model.Fabricacion) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// FindIDsByIngrediente returns the active fabricaciones with at least one
	// line using the ingredient.
	FindIDsByIngrediente(ctx context.Context, ingredienteID uuid.UUID) ([]uuid.UUID, error)
	// FindIDsSinCalculo returns active fabricaciones never calculated, oldest first.
	FindIDsSinCalculo(ctx context.Context, limit int) ([]uuid.UUID, error)
	GuardarCalculo(ctx context.Context, id uuid.UUID, snapshot datatypes.JSON, costoUnitario *decimal.Decimal, at time.Time) error
}

type fabricacionRepo struct{ db *gorm.DB }

func NewFabricacionRepository(db *gorm.DB) FabricacionRepository { return &fabricacionRepo{db: db} }

func conLineas(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Lineas", func(db *gorm.DB) *gorm.DB { return db.Order("orden ASC") }).
		Preload("Lineas.Ingrediente")
}

func (r *fabricacionRepo) Create(ctx context.Context, f *model.Fabricacion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lineas", "Producto").Create(f).Error; err != nil {
			return err
		}
		return crearLineas(tx, f)
	})
}

func (r *fabricacionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Fabricacion, error) {
	var f model.Fabricacion
	err := conLineas(r.db.WithContext(ctx)).Preload("Producto").First(&f, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fabricacionRepo) List(ctx context.Context, filter dto.FabricacionFilter) ([]model.Fabricacion, int64, error) {
	var list []model.Fabricacion
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Fabricacion{}).Where("activo = ?", true)
	if filter.Nombre != "" {
		q = q.Where("lower(nombre) LIKE ?", "%"+strings.ToLower(filter.Nombre)+"%")
	}
	if filter.ProductoID != "" {
		q = q.Where("producto_id = ?", filter.ProductoID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := paginar(filter.Page, filter.Limit)
	err := conLineas(q).Order("nombre ASC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, err
}

func (r *fabricacionRepo) Update(ctx context.Context, f *model.Fabricacion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lineas", "Producto").Save(f).Error; err != nil {
			return err
		}
		if err := tx.Where("fabricacion_id = ?", f.ID).Delete(&model.FabricacionLinea{}).Error; err != nil {
			return err
		}
		return crearLineas(tx, f)
	})
}

func crearLineas(tx *gorm.DB, f *model.Fabricacion) error {
	if len(f.Lineas) == 0 {
		return nil
	}
	for i := range f.Lineas {
		f.Lineas[i].ID = uuid.Nil
		f.Lineas[i].FabricacionID = f.ID
		f.Lineas[i].Orden = i
	}
	return tx.Omit("Ingrediente").Create(&f.Lineas).Error
}

func (r *fabricacionRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Fabricacion{}).Where("id = ?", id).Update("activo", false).Error
}

func (r *fabricacionRepo) FindIDsByIngrediente(ctx context.Context, ingredienteID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.Fabricacion{}).
		Distinct("fabricaciones.id").
		Joins("JOIN fabricacion_lineas fl ON fl.fabricacion_id = fabricaciones.id").
		Where("fl.ingrediente_id = ? AND fabricaciones.activo = ?", ingredienteID, true).
		Pluck("fabricaciones.id", &ids).Error
	return ids, err
}

func (r *fabricacionRepo) FindIDsSinCalculo(ctx context.Context, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.Fabricacion{}).
		Where("activo = ? AND calculado_at IS NULL", true).
		Order("updated_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *fabricacionRepo) GuardarCalculo(ctx context.Context, id uuid.UUID, snapshot datatypes.JSON, costoUnitario *decimal.Decimal, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Fabricacion{}).Where("id = ?", id).Updates(map[string]interface{}{
		"ultimo_calculo": snapshot,
		"costo_unitario": costoUnitario,
		"calculado_at":   at,
	}).Error
}
