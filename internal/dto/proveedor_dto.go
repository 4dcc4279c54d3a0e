package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ContactoProveedorInput struct {
	Nombre   string  `json:"nombre"   validate:"required,min=1"`
	Cargo    *string `json:"cargo"`
	Telefono *string `json:"telefono"`
	Email    *string `json:"email"    validate:"omitempty,email"`
}

type CrearProveedorRequest struct {
	RazonSocial   string                   `json:"razon_social"   validate:"required,min=2"`
	CUIT          string                   `json:"cuit"           validate:"required,min=11,max=13"`
	Telefono      *string                  `json:"telefono"`
	Email         *string                  `json:"email"          validate:"omitempty,email"`
	Direccion     *string                  `json:"direccion"`
	CondicionPago *string                  `json:"condicion_pago"`
	Contactos     []ContactoProveedorInput `json:"contactos"      validate:"dive"`
}

// ActualizarPreciosMasivoRequest applies Porcentaje (negative lowers prices)
// to every price quoted by one proveedor. Preview computes without writing.
type ActualizarPreciosMasivoRequest struct {
	Porcentaje decimal.Decimal `json:"porcentaje" validate:"required,gt=-100,max=1000"`
	Preview    bool            `json:"preview"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ContactoProveedorResponse struct {
	ID       string  `json:"id"`
	Nombre   string  `json:"nombre"`
	Cargo    *string `json:"cargo,omitempty"`
	Telefono *string `json:"telefono,omitempty"`
	Email    *string `json:"email,omitempty"`
}

type ProveedorResponse struct {
	ID            string                      `json:"id"`
	RazonSocial   string                      `json:"razon_social"`
	CUIT          string                      `json:"cuit"`
	Telefono      *string                     `json:"telefono"`
	Email         *string                     `json:"email"`
	Direccion     *string                     `json:"direccion"`
	CondicionPago *string                     `json:"condicion_pago"`
	Activo        bool                        `json:"activo"`
	Contactos     []ContactoProveedorResponse `json:"contactos"`
}

type PrecioPreviewItem struct {
	PrecioProveedorID string           `json:"precio_proveedor_id"`
	IngredienteID     string           `json:"ingrediente_id"`
	Ingrediente       string           `json:"ingrediente"`
	PrecioActual      decimal.Decimal  `json:"precio_actual"`
	PrecioNuevo       decimal.Decimal  `json:"precio_nuevo"`
	Diferencia        decimal.Decimal  `json:"diferencia"`
	UnitarioNuevo     *decimal.Decimal `json:"unitario_nuevo"`
}

type ActualizacionMasivaResponse struct {
	Proveedor           string              `json:"proveedor"`
	Porcentaje          decimal.Decimal     `json:"porcentaje"`
	PreciosAfectados    int                 `json:"precios_afectados"`
	FabricacionesEnCola int                 `json:"fabricaciones_en_cola"`
	Preview             []PrecioPreviewItem `json:"preview,omitempty"`
}

type CSVImportResponse struct {
	TotalFilas     int           `json:"total_filas"`
	Procesadas     int           `json:"procesadas"`
	Errores        int           `json:"errores"`
	Creadas        int           `json:"creadas"`
	Actualizadas   int           `json:"actualizadas"`
	DetalleErrores []CSVErrorRow `json:"detalle_errores"`
}

type CSVErrorRow struct {
	Fila        int    `json:"fila"`
	Ingrediente string `json:"ingrediente,omitempty"`
	ErrorCode   string `json:"error_code"` // INGREDIENT_MISSING|INGREDIENT_UNKNOWN|PRICE_NOT_NUMBER|PRICE_NEGATIVE|QTY_INVALID|UNIT_MISSING|UNIT_INCOMPATIBLE|ROW_FORMAT|WRITE_ERROR
	Motivo      string `json:"motivo"`
}
