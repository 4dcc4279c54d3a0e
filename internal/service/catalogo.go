package service

import (
	"tiopelotte/internal/fabricacion"
	"tiopelotte/internal/model"
	"tiopelotte/internal/pricing"

	"github.com/shopspring/decimal"
)

// ArmarCatalogo converts persisted ingredients into the pricing catalog the
// costing engine reads. Every supplier price becomes one option, in the
// order received; a pinned PrecioSeleccionadoID becomes IndiceSeleccionado.
func ArmarCatalogo(ingredientes []model.Ingrediente) fabricacion.Catalogo {
	cat := make(fabricacion.Catalogo, len(ingredientes))
	for _, ing := range ingredientes {
		id := fabricacion.IngredienteID(ing.ID.String())
		p := fabricacion.PricingIngrediente{
			IngredienteID: id,
			Nombre:        ing.Nombre,
			UnidadBase:    unidadBasePtr(ing.UnidadBase),
			Opciones:      make([]fabricacion.OpcionProveedor, 0, len(ing.Precios)),
		}
		for i, precio := range ing.Precios {
			p.Opciones = append(p.Opciones, opcionDesdePrecio(precio))
			if ing.PrecioSeleccionadoID != nil && *ing.PrecioSeleccionadoID == precio.ID {
				idx := i
				p.IndiceSeleccionado = &idx
			}
		}
		cat[id] = p
	}
	return cat
}

func opcionDesdePrecio(p model.PrecioProveedor) fabricacion.OpcionProveedor {
	o := fabricacion.OpcionProveedor{
		ProveedorID: p.ProveedorID.String(),
		Precio:      p.Precio.InexactFloat64(),
		Cantidad:    p.Cantidad.InexactFloat64(),
		Unidad:      p.Unidad,
		UnidadBase:  unidadBasePtr(p.UnidadBase),
	}
	if p.Proveedor != nil {
		o.ProveedorNombre = p.Proveedor.RazonSocial
	}
	if p.PrecioUnitarioBase != nil {
		v := p.PrecioUnitarioBase.InexactFloat64()
		o.PrecioUnitarioBase = &v
	}
	return o
}

func unidadBasePtr(s *string) *pricing.UnidadBase {
	if s == nil {
		return nil
	}
	u := pricing.UnidadBase(*s)
	if !u.Valida() {
		return nil
	}
	return &u
}

// derivarUnitario fills the derived unit price columns of a supplier price.
// Unknown unit labels leave both nil.
func derivarUnitario(p *model.PrecioProveedor) {
	r := pricing.CalcularPrecioUnitarioBase(p.Precio.InexactFloat64(), p.Cantidad.InexactFloat64(), p.Unidad)
	p.PrecioUnitarioBase = nil
	p.UnidadBase = nil
	if r.UnidadBase != nil {
		s := string(*r.UnidadBase)
		p.UnidadBase = &s
	}
	if r.Valor != nil {
		v := decimal.NewFromFloat(*r.Valor).Round(4)
		p.PrecioUnitarioBase = &v
	}
}
