package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HistorialPrecio records each change of a supplier price.
// Rows are append-only: never updated nor deleted.
type HistorialPrecio struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primaryKey"`
	IngredienteID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	PrecioProveedorID  uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProveedorID        uuid.UUID        `gorm:"type:uuid;not null;index"`
	PrecioAntes        decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	PrecioDespues      decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	UnitarioAntes      *decimal.Decimal `gorm:"type:decimal(14,4)"`
	UnitarioDespues    *decimal.Decimal `gorm:"type:decimal(14,4)"`
	CantidadDespues    decimal.Decimal  `gorm:"type:decimal(12,4);not null"`
	UnidadDespues      string           `gorm:"type:varchar(30);not null"`
	PorcentajeAplicado decimal.Decimal  `gorm:"type:decimal(8,2);not null"`
	Motivo             string           `gorm:"not null;default:'manual'"` // alta | manual | baja | masivo | importacion
	CreatedAt          time.Time

	Proveedor *Proveedor `gorm:"foreignKey:ProveedorID"`
}

func (HistorialPrecio) TableName() string { return "historial_precios" }
