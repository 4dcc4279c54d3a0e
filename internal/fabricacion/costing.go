package fabricacion

import (
	"math"

	"tiopelotte/internal/pricing"
)

const (
	mermaMaxPct    = 1000
	margenMaxPct   = 1000
	overheadMaxPct = 1000
)

// Opcion tunes CalcularCostoFabricacion.
type Opcion func(*opciones)

type opciones struct {
	unidadFallback pricing.UnidadBase
}

// ConUnidadBaseFallback sets the base unit used for lines whose ingredient
// has no pricing and whose own unit label is unknown. Defaults to kg.
func ConUnidadBaseFallback(u pricing.UnidadBase) Opcion {
	return func(o *opciones) {
		if u.Valida() {
			o.unidadFallback = u
		}
	}
}

// OpcionElegida is the outcome of ElegirOpcionProveedor.
type OpcionElegida struct {
	Indice             int
	Opcion             OpcionProveedor
	PrecioUnitarioBase float64
	UnidadBase         pricing.UnidadBase
	Seleccionada       bool
}

// ResolverUnidadBase returns the explicit base unit of p, or the first one
// declared by its quotes.
func ResolverUnidadBase(p PricingIngrediente) (pricing.UnidadBase, bool) {
	if p.UnidadBase != nil && p.UnidadBase.Valida() {
		return *p.UnidadBase, true
	}
	for _, o := range p.Opciones {
		if o.UnidadBase != nil && o.UnidadBase.Valida() {
			return *o.UnidadBase, true
		}
	}
	return "", false
}

// ElegirOpcionProveedor picks the quote an ingredient is costed with.
// A valid pinned quote with a resolvable price always wins; otherwise the
// lowest price per base unit wins, ties going to the earliest quote.
// A quote whose declared UnidadBase differs from the ingredient's base never
// qualifies, even with a positive PrecioUnitarioBase.
// Returns nil when no quote has a resolvable positive price.
func ElegirOpcionProveedor(p PricingIngrediente) *OpcionElegida {
	base, ok := ResolverUnidadBase(p)
	if !ok {
		return nil
	}

	precios := make([]float64, len(p.Opciones))
	for i, o := range p.Opciones {
		precios[i] = precioOpcion(o, base)
	}

	if idx := p.IndiceSeleccionado; idx != nil && *idx >= 0 && *idx < len(precios) && precios[*idx] > 0 {
		return &OpcionElegida{
			Indice:             *idx,
			Opcion:             p.Opciones[*idx],
			PrecioUnitarioBase: precios[*idx],
			UnidadBase:         base,
			Seleccionada:       true,
		}
	}

	mejor := -1
	for i, v := range precios {
		if v <= 0 {
			continue
		}
		if mejor < 0 || v < precios[mejor] {
			mejor = i
		}
	}
	if mejor < 0 {
		return nil
	}
	return &OpcionElegida{
		Indice:             mejor,
		Opcion:             p.Opciones[mejor],
		PrecioUnitarioBase: precios[mejor],
		UnidadBase:         base,
	}
}

// precioOpcion resolves the price per base unit of a quote, or 0.
func precioOpcion(o OpcionProveedor, base pricing.UnidadBase) float64 {
	if o.UnidadBase != nil && *o.UnidadBase != base {
		return 0
	}
	if o.PrecioUnitarioBase != nil && esPositivo(*o.PrecioUnitarioBase) {
		return *o.PrecioUnitarioBase
	}
	r := pricing.CalcularPrecioUnitarioBase(o.Precio, o.Cantidad, o.Unidad)
	if r.Valor != nil && r.UnidadBase != nil && *r.UnidadBase == base {
		return *r.Valor
	}
	if !esPositivo(o.Precio) {
		return 0
	}
	qty, ok := CantidadABase(o.Cantidad, o.Unidad, base)
	if !ok || qty <= 0 {
		return 0
	}
	if v := o.Precio / qty; esPositivo(v) {
		return v
	}
	return 0
}

// CantidadABase converts qty expressed in unit into base. A unit equal to
// the base is returned untouched; a unit that maps to another base is
// rejected.
func CantidadABase(qty float64, unit string, base pricing.UnidadBase) (float64, bool) {
	if math.IsNaN(qty) || math.IsInf(qty, 0) {
		return 0, false
	}
	if pricing.NormalizarUnidad(unit) == string(base) {
		return qty, true
	}
	propia, ok := pricing.ObtenerUnidadBase(unit)
	if !ok || propia != base {
		return 0, false
	}
	return pricing.ToUnidadBase(qty, unit)
}

// CalcularLinea costs a single line against the catalog. fallback is the
// base unit used when neither the pricing nor the line's unit give one.
func CalcularLinea(l Linea, cat Catalogo, fallback pricing.UnidadBase) CalculoLinea {
	calc, _ := calcularLinea(l, cat, fallback)
	return calc
}

// calcularLinea also returns the unrounded line cost so batch totals do not
// accumulate per-line rounding.
func calcularLinea(l Linea, cat Catalogo, fallback pricing.UnidadBase) (CalculoLinea, float64) {
	pricingIng, tienePricing := cat.Buscar(l.IngredienteID)

	base, ok := pricing.UnidadBase(""), false
	if tienePricing {
		base, ok = ResolverUnidadBase(pricingIng)
	}
	if !ok {
		base, ok = pricing.ObtenerUnidadBase(l.Unidad)
	}
	if !ok {
		base = fallback
	}
	if !base.Valida() {
		base = pricing.UnidadKg
	}

	var elegida *OpcionElegida
	if tienePricing {
		elegida = ElegirOpcionProveedor(pricingIng)
	}

	cantidadBase := 0.0
	if esPositivo(l.Cantidad) {
		if q, ok := CantidadABase(l.Cantidad, l.Unidad, base); ok && q > 0 {
			cantidadBase = q
		}
	}

	merma := clamp(finitoOCero(l.MermaPct), 0, mermaMaxPct)
	efectiva := cantidadBase * (1 + merma/100)

	out := CalculoLinea{
		IngredienteID:    l.IngredienteID,
		Cantidad:         redondear(finitoOCero(l.Cantidad)),
		Unidad:           l.Unidad,
		UnidadBase:       base,
		CantidadBase:     redondear(cantidadBase),
		MermaPct:         redondear(merma),
		CantidadEfectiva: redondear(efectiva),
	}
	if tienePricing {
		out.IngredienteNombre = pricingIng.Nombre
	}
	if elegida == nil {
		return out, 0
	}

	precio := redondear(elegida.PrecioUnitarioBase)
	out.PrecioUnitarioBase = &precio
	out.Proveedor = &ProveedorElegido{
		Indice:          elegida.Indice,
		ProveedorID:     elegida.Opcion.ProveedorID,
		ProveedorNombre: elegida.Opcion.ProveedorNombre,
		Precio:          elegida.Opcion.Precio,
		Cantidad:        elegida.Opcion.Cantidad,
		Unidad:          elegida.Opcion.Unidad,
		Seleccionado:    elegida.Seleccionada,
	}
	costo := efectiva * elegida.PrecioUnitarioBase
	out.CostoTotal = redondear(costo)
	return out, costo
}

// CalcularCostoFabricacion costs every line of params and rolls the batch
// up: ingredient cost, global waste, labor, packaging, overhead, unit cost,
// suggested prices and margin against the current sale price.
func CalcularCostoFabricacion(params Parametros, cat Catalogo, opts ...Opcion) Resultado {
	cfg := opciones{unidadFallback: pricing.UnidadKg}
	for _, opt := range opts {
		opt(&cfg)
	}

	lineas := make([]CalculoLinea, 0, len(params.Lineas))
	costoIngredientes := 0.0
	for _, l := range params.Lineas {
		calc, costo := calcularLinea(l, cat, cfg.unidadFallback)
		costoIngredientes += costo
		lineas = append(lineas, calc)
	}

	mermaGlobal := clamp(finitoOCero(params.MermaPctGlobal), 0, mermaMaxPct)
	costoConMerma := costoIngredientes * (1 + mermaGlobal/100)
	manoObra := noNegativo(params.CostoManoObra)
	empaque := noNegativo(params.CostoEmpaque)
	overheadPct := clamp(finitoOCero(params.OverheadPct), 0, overheadMaxPct)
	subtotal := costoConMerma + manoObra + empaque
	overhead := subtotal * overheadPct / 100
	totalLote := subtotal + overhead
	margenObjetivo := finitoOCero(params.MargenObjetivoPct)

	res := Resultado{
		Lineas:            lineas,
		CostoIngredientes: redondear(costoIngredientes),
		MermaPctGlobal:    redondear(mermaGlobal),
		CostoConMerma:     redondear(costoConMerma),
		CostoManoObra:     redondear(manoObra),
		CostoEmpaque:      redondear(empaque),
		OverheadPct:       redondear(overheadPct),
		OverheadMonto:     redondear(overhead),
		CostoTotalLote:    redondear(totalLote),
		BatchSize:         finitoOCero(params.BatchSize),
		PrecioSugerido5:   redondear(costoIngredientes * 1.05),
		PrecioSugerido10:  redondear(costoIngredientes * 1.10),
		PrecioSugerido15:  redondear(costoIngredientes * 1.15),
		MargenObjetivoPct: redondear(margenObjetivo),
	}

	if esPositivo(params.BatchSize) {
		unitario := totalLote / params.BatchSize
		u := redondear(unitario)
		res.CostoUnitario = &u
		objetivo := redondear(unitario * (1 + margenObjetivo/100))
		res.PrecioSugeridoObjetivo = &objetivo
	}

	if pv := params.PrecioVentaActual; pv != nil && esPositivo(*pv) {
		precio := redondear(*pv)
		margen := redondear(clamp((*pv-costoIngredientes) / *pv * 100, -margenMaxPct, margenMaxPct))
		res.PrecioVentaActual = &precio
		res.MargenActualPct = &margen
	}

	return res
}

func redondear(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func esPositivo(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

func finitoOCero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func noNegativo(v float64) float64 {
	return math.Max(finitoOCero(v), 0)
}
