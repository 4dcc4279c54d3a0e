// Package pricing normalizes free-text unit labels into the three base units
// used across the catalog (kg, l, unidad) and derives per-base-unit prices
// from supplier quotes.
package pricing

import (
	"math"
	"slices"
	"strings"
)

// UnidadBase is the canonical unit every quantity and price is expressed in.
type UnidadBase string

const (
	UnidadKg     UnidadBase = "kg"
	UnidadLitro  UnidadBase = "l"
	UnidadUnidad UnidadBase = "unidad"
)

// Valida reports whether u is one of the three base units.
func (u UnidadBase) Valida() bool {
	switch u {
	case UnidadKg, UnidadLitro, UnidadUnidad:
		return true
	}
	return false
}

type conversion struct {
	base   UnidadBase
	factor float64 // label quantity × factor = base quantity
}

// conversiones is read-only after package init.
var conversiones = map[string]conversion{
	"mg":         {UnidadKg, 1.0 / 1_000_000},
	"miligramo":  {UnidadKg, 1.0 / 1_000_000},
	"miligramos": {UnidadKg, 1.0 / 1_000_000},
	"g":          {UnidadKg, 1.0 / 1000},
	"gr":         {UnidadKg, 1.0 / 1000},
	"grs":        {UnidadKg, 1.0 / 1000},
	"gramo":      {UnidadKg, 1.0 / 1000},
	"gramos":     {UnidadKg, 1.0 / 1000},
	"kg":         {UnidadKg, 1},
	"kgs":        {UnidadKg, 1},
	"kilo":       {UnidadKg, 1},
	"kilos":      {UnidadKg, 1},
	"kilogramo":  {UnidadKg, 1},
	"kilogramos": {UnidadKg, 1},

	"ml":         {UnidadLitro, 1.0 / 1000},
	"cc":         {UnidadLitro, 1.0 / 1000},
	"mililitro":  {UnidadLitro, 1.0 / 1000},
	"mililitros": {UnidadLitro, 1.0 / 1000},
	"l":          {UnidadLitro, 1},
	"lt":         {UnidadLitro, 1},
	"lts":        {UnidadLitro, 1},
	"litro":      {UnidadLitro, 1},
	"litros":     {UnidadLitro, 1},

	"u":        {UnidadUnidad, 1},
	"un":       {UnidadUnidad, 1},
	"unidad":   {UnidadUnidad, 1},
	"unidades": {UnidadUnidad, 1},
	"docena":   {UnidadUnidad, 12},
	"docenas":  {UnidadUnidad, 12},
}

// NormalizarUnidad trims and lower-cases a unit label.
func NormalizarUnidad(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// ObtenerUnidadBase maps a raw label to its base unit.
// The second return value is false for unknown labels.
func ObtenerUnidadBase(label string) (UnidadBase, bool) {
	c, ok := conversiones[NormalizarUnidad(label)]
	if !ok {
		return "", false
	}
	return c.base, true
}

// EsUnidadSoportada reports whether label is in the alias table.
func EsUnidadSoportada(label string) bool {
	_, ok := conversiones[NormalizarUnidad(label)]
	return ok
}

// ToUnidadBase converts qty expressed in label into the label's base unit.
// Zero, negative and non-finite quantities never convert.
func ToUnidadBase(qty float64, label string) (float64, bool) {
	if !esPositivo(qty) {
		return 0, false
	}
	c, ok := conversiones[NormalizarUnidad(label)]
	if !ok {
		return 0, false
	}
	return qty * c.factor, true
}

// PrecioUnitario is a price per one base unit. Valor is nil when the price
// cannot be derived; UnidadBase is still set whenever the label is known.
type PrecioUnitario struct {
	Valor      *float64
	UnidadBase *UnidadBase
}

// CalcularPrecioUnitarioBase derives price per base unit from a quote of
// `price` for `qtyNeto` units of `label`.
func CalcularPrecioUnitarioBase(price, qtyNeto float64, label string) PrecioUnitario {
	var out PrecioUnitario
	if base, ok := ObtenerUnidadBase(label); ok {
		out.UnidadBase = &base
	}
	if !esPositivo(price) {
		return out
	}
	qty, ok := ToUnidadBase(qtyNeto, label)
	if !ok || qty <= 0 {
		return out
	}
	v := price / qty
	if !esPositivo(v) {
		return out
	}
	out.Valor = &v
	return out
}

// UnidadesSoportadas returns every recognized label grouped by base unit.
func UnidadesSoportadas() map[UnidadBase][]string {
	out := make(map[UnidadBase][]string, 3)
	for label, c := range conversiones {
		out[c.base] = append(out[c.base], label)
	}
	for _, labels := range out {
		slices.Sort(labels)
	}
	return out
}

func esPositivo(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
