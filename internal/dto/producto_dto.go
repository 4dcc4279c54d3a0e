package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Nombre       string          `json:"nombre"        validate:"required,min=2,max=120"`
	Descripcion  *string         `json:"descripcion"`
	Categoria    string          `json:"categoria"     validate:"required"`
	PrecioVenta  decimal.Decimal `json:"precio_venta"  validate:"required,gt=0"`
	UnidadMedida string          `json:"unidad_medida"`
}

type ActualizarProductoRequest struct {
	Nombre       *string          `json:"nombre"        validate:"omitempty,min=2,max=120"`
	Descripcion  *string          `json:"descripcion"`
	Categoria    *string          `json:"categoria"`
	PrecioVenta  *decimal.Decimal `json:"precio_venta"  validate:"omitempty,gt=0"`
	UnidadMedida *string          `json:"unidad_medida"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductoFilter struct {
	Nombre    string `form:"nombre"`
	Categoria string `form:"categoria"`
	Activo    string `form:"activo"` // "false" = inactivos, "all" = todos, default activos
	Page      int    `form:"page,default=1"  validate:"min=1"`
	Limit     int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID            string           `json:"id"`
	Nombre        string           `json:"nombre"`
	Descripcion   *string          `json:"descripcion"`
	Categoria     string           `json:"categoria"`
	PrecioVenta   decimal.Decimal  `json:"precio_venta"`
	CostoUnitario *decimal.Decimal `json:"costo_unitario"`
	MargenPct     *decimal.Decimal `json:"margen_pct"`
	UnidadMedida  string           `json:"unidad_medida"`
	Activo        bool             `json:"activo"`
}

type ProductoListResponse struct {
	Data       []ProductoResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}
