package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearIngredienteRequest struct {
	Nombre      string  `json:"nombre"      validate:"required,min=2,max=120"`
	Descripcion *string `json:"descripcion"`
	UnidadBase  *string `json:"unidad_base" validate:"omitempty,oneof=kg l unidad"`
}

type ActualizarIngredienteRequest struct {
	Nombre      *string `json:"nombre"      validate:"omitempty,min=2,max=120"`
	Descripcion *string `json:"descripcion"`
	UnidadBase  *string `json:"unidad_base" validate:"omitempty,oneof=kg l unidad"`
}

// PrecioProveedorRequest creates a supplier quote: Precio for Cantidad Unidad.
// Unidad may be any label; unknown labels are stored without unit price.
type PrecioProveedorRequest struct {
	ProveedorID string          `json:"proveedor_id" validate:"required,uuid"`
	Precio      decimal.Decimal `json:"precio"       validate:"required,gt=0"`
	Cantidad    decimal.Decimal `json:"cantidad"     validate:"required,gt=0"`
	Unidad      string          `json:"unidad"       validate:"required,max=30"`
}

type ActualizarPrecioRequest struct {
	Precio   *decimal.Decimal `json:"precio"   validate:"omitempty,gt=0"`
	Cantidad *decimal.Decimal `json:"cantidad" validate:"omitempty,gt=0"`
	Unidad   *string          `json:"unidad"   validate:"omitempty,min=1,max=30"`
	Motivo   *string          `json:"motivo"   validate:"omitempty,max=60"`
}

// SeleccionarPrecioRequest pins a quote; a null precio_id unpins.
type SeleccionarPrecioRequest struct {
	PrecioID *string `json:"precio_id" validate:"omitempty,uuid"`
}

type IngredienteFilter struct {
	Nombre string `form:"nombre"`
	Activo string `form:"activo"`
	Page   int    `form:"page,default=1"  validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PrecioProveedorResponse struct {
	ID                 string           `json:"id"`
	ProveedorID        string           `json:"proveedor_id"`
	ProveedorNombre    string           `json:"proveedor_nombre"`
	Precio             decimal.Decimal  `json:"precio"`
	Cantidad           decimal.Decimal  `json:"cantidad"`
	Unidad             string           `json:"unidad"`
	PrecioUnitarioBase *decimal.Decimal `json:"precio_unitario_base"`
	UnidadBase         *string          `json:"unidad_base"`
	UnitarioFormateado *string          `json:"unitario_formateado,omitempty"`
	Seleccionado       bool             `json:"seleccionado"`
}

type IngredienteResponse struct {
	ID                   string                    `json:"id"`
	Nombre               string                    `json:"nombre"`
	Descripcion          *string                   `json:"descripcion"`
	UnidadBase           *string                   `json:"unidad_base"`
	PrecioSeleccionadoID *string                   `json:"precio_seleccionado_id"`
	Activo               bool                      `json:"activo"`
	Precios              []PrecioProveedorResponse `json:"precios"`
}

type IngredienteListResponse struct {
	Data       []IngredienteResponse `json:"data"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	TotalPages int                   `json:"total_pages"`
}
