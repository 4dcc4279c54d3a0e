package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LineaInput struct {
	IngredienteID string          `json:"ingrediente_id" validate:"required,uuid"`
	Cantidad      decimal.Decimal `json:"cantidad"       validate:"required,gt=0"`
	Unidad        string          `json:"unidad"         validate:"required,max=30"`
	MermaPct      decimal.Decimal `json:"merma_pct"      validate:"min=0,max=1000"`
}

// ParametrosLote are the batch inputs shared by stored fabricaciones and
// simulations.
type ParametrosLote struct {
	BatchSize         decimal.Decimal  `json:"batch_size"          validate:"required,gt=0"`
	MermaPctGlobal    decimal.Decimal  `json:"merma_pct_global"    validate:"min=0,max=1000"`
	CostoManoObra     decimal.Decimal  `json:"costo_mano_obra"     validate:"min=0"`
	CostoEmpaque      decimal.Decimal  `json:"costo_empaque"       validate:"min=0"`
	OverheadPct       decimal.Decimal  `json:"overhead_pct"        validate:"min=0,max=1000"`
	MargenObjetivoPct decimal.Decimal  `json:"margen_objetivo_pct" validate:"min=-100,max=1000"`
	PrecioVentaActual *decimal.Decimal `json:"precio_venta_actual" validate:"omitempty,gt=0"`
	Lineas            []LineaInput     `json:"lineas"              validate:"dive"`
}

// CrearFabricacionRequest is also used by PUT, which replaces every field
// and every line.
type CrearFabricacionRequest struct {
	Nombre     string  `json:"nombre"      validate:"required,min=2,max=120"`
	ProductoID *string `json:"producto_id" validate:"omitempty,uuid"`
	Notas      *string `json:"notas"`
	ParametrosLote
}

type SimularRequest struct {
	ParametrosLote
}

type FabricacionFilter struct {
	Nombre     string `form:"nombre"`
	ProductoID string `form:"producto_id"`
	Page       int    `form:"page,default=1"  validate:"min=1"`
	Limit      int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LineaResponse struct {
	ID                string          `json:"id"`
	IngredienteID     string          `json:"ingrediente_id"`
	IngredienteNombre string          `json:"ingrediente_nombre,omitempty"`
	Cantidad          decimal.Decimal `json:"cantidad"`
	Unidad            string          `json:"unidad"`
	MermaPct          decimal.Decimal `json:"merma_pct"`
	Orden             int             `json:"orden"`
}

type FabricacionResponse struct {
	ID                string           `json:"id"`
	Nombre            string           `json:"nombre"`
	ProductoID        *string          `json:"producto_id"`
	Notas             *string          `json:"notas"`
	BatchSize         decimal.Decimal  `json:"batch_size"`
	MermaPctGlobal    decimal.Decimal  `json:"merma_pct_global"`
	CostoManoObra     decimal.Decimal  `json:"costo_mano_obra"`
	CostoEmpaque      decimal.Decimal  `json:"costo_empaque"`
	OverheadPct       decimal.Decimal  `json:"overhead_pct"`
	MargenObjetivoPct decimal.Decimal  `json:"margen_objetivo_pct"`
	PrecioVentaActual *decimal.Decimal `json:"precio_venta_actual"`
	CostoUnitario     *decimal.Decimal `json:"costo_unitario"`
	CalculadoAt       *time.Time       `json:"calculado_at"`
	Activo            bool             `json:"activo"`
	Lineas            []LineaResponse  `json:"lineas"`
}

type FabricacionListResponse struct {
	Data       []FabricacionResponse `json:"data"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	TotalPages int                   `json:"total_pages"`
}

type ProveedorElegidoResponse struct {
	ProveedorID     string          `json:"proveedor_id"`
	ProveedorNombre string          `json:"proveedor_nombre"`
	Precio          decimal.Decimal `json:"precio"`
	Cantidad        decimal.Decimal `json:"cantidad"`
	Unidad          string          `json:"unidad"`
	Seleccionado    bool            `json:"seleccionado"`
}

type CalculoLineaResponse struct {
	IngredienteID      string                    `json:"ingrediente_id"`
	IngredienteNombre  string                    `json:"ingrediente_nombre"`
	Cantidad           decimal.Decimal           `json:"cantidad"`
	Unidad             string                    `json:"unidad"`
	UnidadBase         string                    `json:"unidad_base"`
	CantidadBase       decimal.Decimal           `json:"cantidad_base"`
	MermaPct           decimal.Decimal           `json:"merma_pct"`
	CantidadEfectiva   decimal.Decimal           `json:"cantidad_efectiva"`
	PrecioUnitarioBase *decimal.Decimal          `json:"precio_unitario_base"`
	Proveedor          *ProveedorElegidoResponse `json:"proveedor"`
	CostoTotal         decimal.Decimal           `json:"costo_total"`
}

// CalculoResponse is the cost breakdown of a batch. It is also the JSON
// stored in fabricaciones.ultimo_calculo.
type CalculoResponse struct {
	FabricacionID *string                `json:"fabricacion_id,omitempty"`
	Lineas        []CalculoLineaResponse `json:"lineas"`

	CostoIngredientes decimal.Decimal  `json:"costo_ingredientes"`
	MermaPctGlobal    decimal.Decimal  `json:"merma_pct_global"`
	CostoConMerma     decimal.Decimal  `json:"costo_con_merma"`
	CostoManoObra     decimal.Decimal  `json:"costo_mano_obra"`
	CostoEmpaque      decimal.Decimal  `json:"costo_empaque"`
	OverheadPct       decimal.Decimal  `json:"overhead_pct"`
	OverheadMonto     decimal.Decimal  `json:"overhead_monto"`
	CostoTotalLote    decimal.Decimal  `json:"costo_total_lote"`
	BatchSize         decimal.Decimal  `json:"batch_size"`
	CostoUnitario     *decimal.Decimal `json:"costo_unitario"`

	PrecioSugerido5  decimal.Decimal `json:"precio_sugerido_5"`
	PrecioSugerido10 decimal.Decimal `json:"precio_sugerido_10"`
	PrecioSugerido15 decimal.Decimal `json:"precio_sugerido_15"`

	MargenObjetivoPct      decimal.Decimal  `json:"margen_objetivo_pct"`
	PrecioSugeridoObjetivo *decimal.Decimal `json:"precio_sugerido_objetivo"`

	PrecioVentaActual *decimal.Decimal `json:"precio_venta_actual"`
	MargenActualPct   *decimal.Decimal `json:"margen_actual_pct"`

	Moneda      string    `json:"moneda"`
	CalculadoAt time.Time `json:"calculado_at"`
}
