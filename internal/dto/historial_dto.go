package dto

import "github.com/shopspring/decimal"

// HistorialPrecioItem is one row in the supplier price history.
type HistorialPrecioItem struct {
	ID                 string           `json:"id"`
	IngredienteID      string           `json:"ingrediente_id"`
	PrecioProveedorID  string           `json:"precio_proveedor_id"`
	ProveedorID        string           `json:"proveedor_id"`
	ProveedorNombre    *string          `json:"proveedor_nombre,omitempty"`
	PrecioAntes        decimal.Decimal  `json:"precio_antes"`
	PrecioDespues      decimal.Decimal  `json:"precio_despues"`
	UnitarioAntes      *decimal.Decimal `json:"unitario_antes"`
	UnitarioDespues    *decimal.Decimal `json:"unitario_despues"`
	CantidadDespues    decimal.Decimal  `json:"cantidad_despues"`
	UnidadDespues      string           `json:"unidad_despues"`
	PorcentajeAplicado decimal.Decimal  `json:"porcentaje_aplicado"`
	Motivo             string           `json:"motivo"`
	CreatedAt          string           `json:"created_at"`
}

// HistorialPrecioListResponse is returned by GET /v1/ingredientes/:id/historial-precios.
type HistorialPrecioListResponse struct {
	Data  []HistorialPrecioItem `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}
