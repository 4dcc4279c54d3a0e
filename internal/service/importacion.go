package service

import (
	"context"
	"errors"
	"strings"

	"tiopelotte/internal/dto"
	"tiopelotte/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ImportarListaPrecios upserts the quotes of one proveedor from a price list.
// Columns: ingrediente, precio, cantidad, unidad. A first row whose first
// cell is "ingrediente" is treated as a header. Ingredients are matched by
// name, case-insensitively; unknown names are reported, not created.
func (s *proveedorService) ImportarListaPrecios(ctx context.Context, proveedorID uuid.UUID, filas [][]string) (*dto.CSVImportResponse, error) {
	if _, err := s.repo.FindByID(ctx, proveedorID); err != nil {
		return nil, noEncontrado(err, "proveedor no encontrado")
	}

	existentes, err := s.ingRepo.ListPreciosByProveedor(ctx, proveedorID)
	if err != nil {
		return nil, err
	}
	porIngrediente := make(map[uuid.UUID]*model.PrecioProveedor, len(existentes))
	for i := range existentes {
		porIngrediente[existentes[i].IngredienteID] = &existentes[i]
	}

	res := &dto.CSVImportResponse{DetalleErrores: []dto.CSVErrorRow{}}
	agregarError := func(fila int, ingrediente, code, motivo string) {
		res.Errores++
		res.DetalleErrores = append(res.DetalleErrores, dto.CSVErrorRow{
			Fila:        fila,
			Ingrediente: ingrediente,
			ErrorCode:   code,
			Motivo:      motivo,
		})
	}
	ingredientes := make(map[string]*model.Ingrediente)
	var tocados []uuid.UUID

	for i, fila := range filas {
		numero := i + 1
		if esFilaVacia(fila) {
			continue
		}
		if i == 0 && strings.EqualFold(strings.TrimSpace(fila[0]), "ingrediente") {
			continue
		}
		res.TotalFilas++

		if len(fila) < 4 {
			agregarError(numero, "", "ROW_FORMAT", "se esperan 4 columnas: ingrediente, precio, cantidad, unidad")
			continue
		}
		nombre := strings.TrimSpace(fila[0])
		if nombre == "" {
			agregarError(numero, "", "INGREDIENT_MISSING", "falta el nombre del ingrediente")
			continue
		}
		precio, err := parseDecimal(fila[1])
		if err != nil {
			agregarError(numero, nombre, "PRICE_NOT_NUMBER", "precio no numerico: "+fila[1])
			continue
		}
		if !precio.IsPositive() {
			agregarError(numero, nombre, "PRICE_NEGATIVE", "el precio debe ser mayor a cero")
			continue
		}
		cantidad, err := parseDecimal(fila[2])
		if err != nil || !cantidad.IsPositive() {
			agregarError(numero, nombre, "QTY_INVALID", "cantidad invalida: "+fila[2])
			continue
		}
		unidad := strings.TrimSpace(fila[3])
		if unidad == "" {
			agregarError(numero, nombre, "UNIT_MISSING", "falta la unidad")
			continue
		}

		ing, ok := ingredientes[strings.ToLower(nombre)]
		if !ok {
			ing, err = s.ingRepo.FindByNombre(ctx, nombre)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			ingredientes[strings.ToLower(nombre)] = ing
		}
		if ing == nil {
			agregarError(numero, nombre, "INGREDIENT_UNKNOWN", "ingrediente inexistente")
			continue
		}

		if actual, ok := porIngrediente[ing.ID]; ok {
			cambio := *actual
			cambio.Precio = precio.Round(2)
			cambio.Cantidad = cantidad
			cambio.Unidad = unidad
			derivarUnitario(&cambio)
			if err := compatible(ing, &cambio); err != nil {
				agregarError(numero, nombre, "UNIT_INCOMPATIBLE", err.Error())
				continue
			}
			h := nuevoHistorial(actual, &cambio, "importacion", variacionPct(actual.Precio, cambio.Precio))
			if err := s.ingRepo.ActualizarPrecio(ctx, &cambio, &h); err != nil {
				agregarError(numero, nombre, "WRITE_ERROR", err.Error())
				continue
			}
			*actual = cambio
			res.Actualizadas++
		} else {
			nuevo := &model.PrecioProveedor{
				IngredienteID: ing.ID,
				ProveedorID:   proveedorID,
				Precio:        precio.Round(2),
				Cantidad:      cantidad,
				Unidad:        unidad,
			}
			derivarUnitario(nuevo)
			if err := compatible(ing, nuevo); err != nil {
				agregarError(numero, nombre, "UNIT_INCOMPATIBLE", err.Error())
				continue
			}
			h := nuevoHistorial(nil, nuevo, "alta", decimal.Zero)
			if err := s.ingRepo.CrearPrecio(ctx, nuevo, &h); err != nil {
				agregarError(numero, nombre, "WRITE_ERROR", err.Error())
				continue
			}
			porIngrediente[ing.ID] = nuevo
			res.Creadas++
		}
		if nuevo := porIngrediente[ing.ID]; nuevo.UnidadBase == nil {
			log.Warn().Str("ingrediente", nombre).Str("unidad", unidad).Msg("importacion: unidad no soportada, precio sin unitario")
		}
		res.Procesadas++
		tocados = append(tocados, ing.ID)
	}

	if len(tocados) > 0 {
		s.propagar.porIngredientes(ctx, tocados...)
	}
	log.Info().
		Str("proveedor_id", proveedorID.String()).
		Int("creadas", res.Creadas).
		Int("actualizadas", res.Actualizadas).
		Int("errores", res.Errores).
		Msg("lista de precios importada")
	return res, nil
}

func esFilaVacia(fila []string) bool {
	for _, c := range fila {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseDecimal accepts "1234.5", "1234,5" and "$ 1.234,50".
func parseDecimal(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, " ", "")
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}
