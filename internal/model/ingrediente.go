package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ingrediente is a raw material used by fabricaciones.
// UnidadBase is one of kg | l | unidad; nil lets the prices decide.
// PrecioSeleccionadoID pins one supplier price and overrides cheapest-first.
type Ingrediente struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nombre               string    `gorm:"uniqueIndex;not null"`
	Descripcion          *string
	UnidadBase           *string    `gorm:"type:varchar(10)"`
	PrecioSeleccionadoID *uuid.UUID `gorm:"type:uuid"`
	Activo               bool       `gorm:"not null;default:true"`
	CreatedAt            time.Time
	UpdatedAt            time.Time

	Precios []PrecioProveedor `gorm:"foreignKey:IngredienteID"`
}

func (Ingrediente) TableName() string { return "ingredientes" }

// PrecioProveedor is one supplier quote: Precio for Cantidad Unidad.
// PrecioUnitarioBase and UnidadBase are derived on every write; they stay
// nil when the unit label is not recognized.
type PrecioProveedor struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primaryKey"`
	IngredienteID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProveedorID        uuid.UUID        `gorm:"type:uuid;not null;index"`
	Precio             decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	Cantidad           decimal.Decimal  `gorm:"type:decimal(12,4);not null"`
	Unidad             string           `gorm:"type:varchar(30);not null"`
	PrecioUnitarioBase *decimal.Decimal `gorm:"type:decimal(14,4)"`
	UnidadBase         *string          `gorm:"type:varchar(10)"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Proveedor   *Proveedor   `gorm:"foreignKey:ProveedorID"`
	Ingrediente *Ingrediente `gorm:"foreignKey:IngredienteID"`
}

func (PrecioProveedor) TableName() string { return "precios_proveedor" }
