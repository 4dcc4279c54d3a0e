package model

import (
	"time"

	"github.com/google/uuid"
)

// Proveedor is a supplier quoting prices for ingredients.
type Proveedor struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	RazonSocial   string    `gorm:"not null"`
	CUIT          string    `gorm:"column:cuit;uniqueIndex;not null"`
	Telefono      *string
	Email         *string
	Direccion     *string
	CondicionPago *string
	Activo        bool `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Precios   []PrecioProveedor   `gorm:"foreignKey:ProveedorID"`
	Contactos []ContactoProveedor `gorm:"foreignKey:ProveedorID"`
}

func (Proveedor) TableName() string { return "proveedores" }
