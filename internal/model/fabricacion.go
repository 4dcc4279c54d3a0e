package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Fabricacion is a manufacturing batch recipe: its ingredient lines plus the
// fixed costs needed to derive a unit cost.
type Fabricacion struct {
	ID                uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Nombre            string           `gorm:"not null"`
	ProductoID        *uuid.UUID       `gorm:"type:uuid;index"`
	BatchSize         decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	MermaPctGlobal    decimal.Decimal  `gorm:"type:decimal(8,2);not null;default:0"`
	CostoManoObra     decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	CostoEmpaque      decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	OverheadPct       decimal.Decimal  `gorm:"type:decimal(8,2);not null;default:0"`
	MargenObjetivoPct decimal.Decimal  `gorm:"type:decimal(8,2);not null;default:0"`
	PrecioVentaActual *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Notas             *string

	// Snapshot of the latest calculation, serialized as dto.CalculoResponse.
	UltimoCalculo datatypes.JSON   `gorm:"type:jsonb"`
	CostoUnitario *decimal.Decimal `gorm:"type:decimal(12,2)"`
	CalculadoAt   *time.Time

	Activo    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Producto *Producto         `gorm:"foreignKey:ProductoID"`
	Lineas   []FabricacionLinea `gorm:"foreignKey:FabricacionID;constraint:OnDelete:CASCADE"`
}

func (Fabricacion) TableName() string { return "fabricaciones" }

// FabricacionLinea is one ingredient requirement of a Fabricacion.
type FabricacionLinea struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	FabricacionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	IngredienteID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Cantidad      decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	Unidad        string          `gorm:"type:varchar(30);not null"`
	MermaPct      decimal.Decimal `gorm:"type:decimal(8,2);not null;default:0"`
	Orden         int             `gorm:"not null;default:0"`

	Ingrediente *Ingrediente `gorm:"foreignKey:IngredienteID"`
}

func (FabricacionLinea) TableName() string { return "fabricacion_lineas" }
