package repository

import (
	"context"

	"tiopelotte/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HistorialPrecioRepository interface {
	ListByIngrediente(ctx context.Context, ingredienteID uuid.UUID, page, limit int) ([]model.HistorialPrecio, int64, error)
}

type historialPrecioRepository struct{ db *gorm.DB }

func NewHistorialPrecioRepository(db *gorm.DB) HistorialPrecioRepository {
	return &historialPrecioRepository{db: db}
}

// ListByIngrediente returns paginated price-change records for one ingredient,
// ordered newest-first (append-only table, so this reflects natural insert order).
func (r *historialPrecioRepository) ListByIngrediente(
	ctx context.Context,
	ingredienteID uuid.UUID,
	page, limit int,
) ([]model.HistorialPrecio, int64, error) {
	page, limit = paginar(page, limit)

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.HistorialPrecio{}).
		Where("ingrediente_id = ?", ingredienteID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.HistorialPrecio
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("ingrediente_id = ?", ingredienteID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Preload("Proveedor").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}
