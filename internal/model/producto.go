package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is a sellable item of the storefront. Fabricaciones that produce
// it take PrecioVenta as their current sale price.
type Producto struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nombre      string    `gorm:"uniqueIndex;not null"`
	Descripcion *string
	Categoria   string          `gorm:"not null;default:'pastas'"`
	PrecioVenta decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// CostoUnitario is copied from the latest cost calculation of its fabricacion.
	CostoUnitario *decimal.Decimal `gorm:"type:decimal(12,2)"`
	// MargenPct is derived from (PrecioVenta - CostoUnitario) / PrecioVenta * 100
	MargenPct    *decimal.Decimal `gorm:"type:decimal(8,2)"`
	UnidadMedida string           `gorm:"not null;default:'unidad'"`
	Activo       bool             `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Producto) TableName() string { return "productos" }
