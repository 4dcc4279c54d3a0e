package dto

import "github.com/shopspring/decimal"

// UnidadesResponse lists the accepted unit labels grouped by base unit.
type UnidadesResponse struct {
	Bases  []string            `json:"bases"`
	Grupos map[string][]string `json:"grupos"`
}

// PrecioUnitarioRequest previews the unit price of a quote. Invalid values
// are not rejected: they produce a null valor.
type PrecioUnitarioRequest struct {
	Precio   decimal.Decimal `json:"precio"`
	Cantidad decimal.Decimal `json:"cantidad"`
	Unidad   string          `json:"unidad"  validate:"max=30"`
	Moneda   string          `json:"moneda"  validate:"omitempty,len=3"`
	Locale   string          `json:"locale"  validate:"omitempty,max=20"`
}

type PrecioUnitarioResponse struct {
	Valor      *decimal.Decimal `json:"valor"`
	UnidadBase *string          `json:"unidad_base"`
	Soportada  bool             `json:"soportada"`
	Formateado *string          `json:"formateado"`
}
