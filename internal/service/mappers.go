package service

import (
	"time"

	"tiopelotte/internal/dto"
	"tiopelotte/internal/fabricacion"
	"tiopelotte/internal/model"
	"tiopelotte/internal/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func mapProveedor(p *model.Proveedor) dto.ProveedorResponse {
	resp := dto.ProveedorResponse{
		ID:            p.ID.String(),
		RazonSocial:   p.RazonSocial,
		CUIT:          p.CUIT,
		Telefono:      p.Telefono,
		Email:         p.Email,
		Direccion:     p.Direccion,
		CondicionPago: p.CondicionPago,
		Activo:        p.Activo,
		Contactos:     make([]dto.ContactoProveedorResponse, 0, len(p.Contactos)),
	}
	for _, c := range p.Contactos {
		resp.Contactos = append(resp.Contactos, dto.ContactoProveedorResponse{
			ID:       c.ID.String(),
			Nombre:   c.Nombre,
			Cargo:    c.Cargo,
			Telefono: c.Telefono,
			Email:    c.Email,
		})
	}
	return resp
}

func mapProducto(p *model.Producto) dto.ProductoResponse {
	return dto.ProductoResponse{
		ID:            p.ID.String(),
		Nombre:        p.Nombre,
		Descripcion:   p.Descripcion,
		Categoria:     p.Categoria,
		PrecioVenta:   p.PrecioVenta,
		CostoUnitario: p.CostoUnitario,
		MargenPct:     p.MargenPct,
		UnidadMedida:  p.UnidadMedida,
		Activo:        p.Activo,
	}
}

// formatoPrecio renders unit prices for responses.
type formatoPrecio struct {
	moneda string
	locale string
}

func (f formatoPrecio) precio(p model.PrecioProveedor, seleccionado *uuid.UUID) dto.PrecioProveedorResponse {
	resp := dto.PrecioProveedorResponse{
		ID:                 p.ID.String(),
		ProveedorID:        p.ProveedorID.String(),
		Precio:             p.Precio,
		Cantidad:           p.Cantidad,
		Unidad:             p.Unidad,
		PrecioUnitarioBase: p.PrecioUnitarioBase,
		UnidadBase:         p.UnidadBase,
		Seleccionado:       seleccionado != nil && *seleccionado == p.ID,
	}
	if p.Proveedor != nil {
		resp.ProveedorNombre = p.Proveedor.RazonSocial
	}
	if p.PrecioUnitarioBase != nil && p.UnidadBase != nil {
		s := pricing.FormatPrecioUnitario(p.PrecioUnitarioBase.InexactFloat64(), pricing.UnidadBase(*p.UnidadBase), f.moneda, f.locale)
		resp.UnitarioFormateado = &s
	}
	return resp
}

func (f formatoPrecio) ingrediente(i *model.Ingrediente) dto.IngredienteResponse {
	resp := dto.IngredienteResponse{
		ID:          i.ID.String(),
		Nombre:      i.Nombre,
		Descripcion: i.Descripcion,
		UnidadBase:  i.UnidadBase,
		Activo:      i.Activo,
		Precios:     make([]dto.PrecioProveedorResponse, 0, len(i.Precios)),
	}
	if i.PrecioSeleccionadoID != nil {
		s := i.PrecioSeleccionadoID.String()
		resp.PrecioSeleccionadoID = &s
	}
	for _, p := range i.Precios {
		resp.Precios = append(resp.Precios, f.precio(p, i.PrecioSeleccionadoID))
	}
	return resp
}

func mapFabricacion(f *model.Fabricacion) dto.FabricacionResponse {
	resp := dto.FabricacionResponse{
		ID:                f.ID.String(),
		Nombre:            f.Nombre,
		Notas:             f.Notas,
		BatchSize:         f.BatchSize,
		MermaPctGlobal:    f.MermaPctGlobal,
		CostoManoObra:     f.CostoManoObra,
		CostoEmpaque:      f.CostoEmpaque,
		OverheadPct:       f.OverheadPct,
		MargenObjetivoPct: f.MargenObjetivoPct,
		PrecioVentaActual: f.PrecioVentaActual,
		CostoUnitario:     f.CostoUnitario,
		CalculadoAt:       f.CalculadoAt,
		Activo:            f.Activo,
		Lineas:            make([]dto.LineaResponse, 0, len(f.Lineas)),
	}
	if f.ProductoID != nil {
		s := f.ProductoID.String()
		resp.ProductoID = &s
	}
	for _, l := range f.Lineas {
		lr := dto.LineaResponse{
			ID:            l.ID.String(),
			IngredienteID: l.IngredienteID.String(),
			Cantidad:      l.Cantidad,
			Unidad:        l.Unidad,
			MermaPct:      l.MermaPct,
			Orden:         l.Orden,
		}
		if l.Ingrediente != nil {
			lr.IngredienteNombre = l.Ingrediente.Nombre
		}
		resp.Lineas = append(resp.Lineas, lr)
	}
	return resp
}

// mapCalculo converts the engine result into its API / snapshot form.
func mapCalculo(r fabricacion.Resultado, moneda string, at time.Time) *dto.CalculoResponse {
	resp := &dto.CalculoResponse{
		Lineas:                 make([]dto.CalculoLineaResponse, 0, len(r.Lineas)),
		CostoIngredientes:      dec(r.CostoIngredientes),
		MermaPctGlobal:         dec(r.MermaPctGlobal),
		CostoConMerma:          dec(r.CostoConMerma),
		CostoManoObra:          dec(r.CostoManoObra),
		CostoEmpaque:           dec(r.CostoEmpaque),
		OverheadPct:            dec(r.OverheadPct),
		OverheadMonto:          dec(r.OverheadMonto),
		CostoTotalLote:         dec(r.CostoTotalLote),
		BatchSize:              dec(r.BatchSize),
		CostoUnitario:          decPtr(r.CostoUnitario),
		PrecioSugerido5:        dec(r.PrecioSugerido5),
		PrecioSugerido10:       dec(r.PrecioSugerido10),
		PrecioSugerido15:       dec(r.PrecioSugerido15),
		MargenObjetivoPct:      dec(r.MargenObjetivoPct),
		PrecioSugeridoObjetivo: decPtr(r.PrecioSugeridoObjetivo),
		PrecioVentaActual:      decPtr(r.PrecioVentaActual),
		MargenActualPct:        decPtr(r.MargenActualPct),
		Moneda:                 moneda,
		CalculadoAt:            at.UTC(),
	}
	for _, l := range r.Lineas {
		lr := dto.CalculoLineaResponse{
			IngredienteID:      l.IngredienteID.String(),
			IngredienteNombre:  l.IngredienteNombre,
			Cantidad:           dec(l.Cantidad),
			Unidad:             l.Unidad,
			UnidadBase:         string(l.UnidadBase),
			CantidadBase:       dec(l.CantidadBase),
			MermaPct:           dec(l.MermaPct),
			CantidadEfectiva:   dec(l.CantidadEfectiva),
			PrecioUnitarioBase: decPtr(l.PrecioUnitarioBase),
			CostoTotal:         dec(l.CostoTotal),
		}
		if pe := l.Proveedor; pe != nil {
			lr.Proveedor = &dto.ProveedorElegidoResponse{
				ProveedorID:     pe.ProveedorID,
				ProveedorNombre: pe.ProveedorNombre,
				Precio:          dec(pe.Precio),
				Cantidad:        dec(pe.Cantidad),
				Unidad:          pe.Unidad,
				Seleccionado:    pe.Seleccionado,
			}
		}
		resp.Lineas = append(resp.Lineas, lr)
	}
	return resp
}

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func decPtr(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decimal.NewFromFloat(*v)
	return &d
}

func floatPtr(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	v := d.InexactFloat64()
	return &v
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
