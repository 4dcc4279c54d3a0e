// Package fabricacion computes the cost breakdown of a manufacturing batch
// ("fabricación") from its ingredient lines and a supplier pricing catalog.
//
// Every function in this package is pure: inputs are passed by value, nothing
// is cached between calls and no errors are returned. Invalid or missing data
// (unknown units, unpriced ingredients, non-positive quantities) degrades to
// nil or zero values on the affected line so the rest of the batch is still
// computed.
package fabricacion

import (
	"strings"

	"tiopelotte/internal/pricing"
)

// IngredienteID identifies an ingredient inside a Catalogo.
type IngredienteID string

// NuevoIngredienteID trims raw and rejects empty identifiers.
func NuevoIngredienteID(raw string) (IngredienteID, bool) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", false
	}
	return IngredienteID(id), true
}

func (id IngredienteID) String() string { return string(id) }

// OpcionProveedor is one supplier quote for an ingredient: Precio for a
// package of Cantidad Unidad.
type OpcionProveedor struct {
	ProveedorID     string
	ProveedorNombre string
	Precio          float64
	Cantidad        float64
	Unidad          string

	// PrecioUnitarioBase is trusted when positive, otherwise derived.
	PrecioUnitarioBase *float64
	UnidadBase         *pricing.UnidadBase
}

// PricingIngrediente aggregates every known quote for one ingredient.
// IndiceSeleccionado pins a quote and overrides cheapest-first selection.
type PricingIngrediente struct {
	IngredienteID      IngredienteID
	Nombre             string
	UnidadBase         *pricing.UnidadBase
	Opciones           []OpcionProveedor
	IndiceSeleccionado *int
}

// Catalogo indexes ingredient pricing by ingredient ID.
type Catalogo map[IngredienteID]PricingIngrediente

// Buscar returns the pricing for id; ok is false when the catalog has none.
func (c Catalogo) Buscar(id IngredienteID) (PricingIngrediente, bool) {
	if c == nil {
		return PricingIngrediente{}, false
	}
	p, ok := c[id]
	return p, ok
}

// Linea is one ingredient requirement of a batch.
type Linea struct {
	IngredienteID IngredienteID
	Cantidad      float64
	Unidad        string
	MermaPct      float64
}

// Parametros describes a batch: its size, fixed costs and ingredient lines.
type Parametros struct {
	BatchSize         float64
	MermaPctGlobal    float64
	CostoManoObra     float64
	CostoEmpaque      float64
	OverheadPct       float64
	MargenObjetivoPct float64
	PrecioVentaActual *float64
	Lineas            []Linea
}

// ProveedorElegido is the quote a line was costed with.
type ProveedorElegido struct {
	Indice          int
	ProveedorID     string
	ProveedorNombre string
	Precio          float64
	Cantidad        float64
	Unidad          string
	Seleccionado    bool
}

// CalculoLinea is the cost breakdown of one Linea.
type CalculoLinea struct {
	IngredienteID      IngredienteID
	IngredienteNombre  string
	Cantidad           float64
	Unidad             string
	UnidadBase         pricing.UnidadBase
	CantidadBase       float64
	MermaPct           float64
	CantidadEfectiva   float64
	PrecioUnitarioBase *float64
	Proveedor          *ProveedorElegido
	CostoTotal         float64
}

// Resultado is the full costing snapshot of a batch.
type Resultado struct {
	Lineas []CalculoLinea

	CostoIngredientes float64
	MermaPctGlobal    float64
	CostoConMerma     float64
	CostoManoObra     float64
	CostoEmpaque      float64
	OverheadPct       float64
	OverheadMonto     float64
	CostoTotalLote    float64
	BatchSize         float64
	CostoUnitario     *float64

	PrecioSugerido5  float64
	PrecioSugerido10 float64
	PrecioSugerido15 float64

	MargenObjetivoPct      float64
	PrecioSugeridoObjetivo *float64

	PrecioVentaActual *float64
	MargenActualPct   *float64
}
