package infra

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const hojaCosteo = "Costeo"

var costeoHeaders = []string{
	"Ingrediente", "Cantidad", "Unidad", "Cantidad base", "Unidad base",
	"Merma %", "Cantidad efectiva", "Precio unitario base", "Proveedor", "Costo",
}

// GenerarHojaCostosExcel renders the cost breakdown as an .xlsx workbook with
// one sheet: line table followed by the batch roll-up.
func GenerarHojaCostosExcel(h HojaCostos) (*bytes.Buffer, error) {
	if h.Calculo == nil {
		return nil, fmt.Errorf("excel: calculo vacio")
	}
	calc := h.Calculo

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", hojaCosteo); err != nil {
		return nil, err
	}

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	totalStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})

	f.SetCellValue(hojaCosteo, "A1", h.Negocio)
	f.SetCellValue(hojaCosteo, "A2", "Hoja de costos: "+h.Fabricacion)
	f.SetCellValue(hojaCosteo, "A3", fmt.Sprintf("Lote: %s unidades | Moneda: %s", calc.BatchSize.String(), calc.Moneda))
	f.SetCellStyle(hojaCosteo, "A1", "A2", totalStyle)

	const headerRow = 5
	for i, hdr := range costeoHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := fmt.Sprintf("%s%d", col, headerRow)
		f.SetCellValue(hojaCosteo, cell, hdr)
		f.SetCellStyle(hojaCosteo, cell, cell, boldStyle)
	}

	row := headerRow + 1
	for _, l := range calc.Lineas {
		f.SetCellValue(hojaCosteo, fmt.Sprintf("A%d", row), l.IngredienteNombre)
		f.SetCellValue(hojaCosteo, fmt.Sprintf("B%d", row), l.Cantidad.InexactFloat64())
		f.SetCellValue(hojaCosteo, fmt.Sprintf("C%d", row), l.Unidad)
		f.SetCellValue(hojaCosteo, fmt.Sprintf("D%d", row), l.CantidadBase.InexactFloat64())
		f.SetCellValue(hojaCosteo, fmt.Sprintf("E%d", row), l.UnidadBase)
		f.SetCellValue(hojaCosteo, fmt.Sprintf("F%d", row), l.MermaPct.InexactFloat64())
		f.SetCellValue(hojaCosteo, fmt.Sprintf("G%d", row), l.CantidadEfectiva.InexactFloat64())
		if l.PrecioUnitarioBase != nil {
			f.SetCellValue(hojaCosteo, fmt.Sprintf("H%d", row), l.PrecioUnitarioBase.InexactFloat64())
		}
		if l.Proveedor != nil {
			f.SetCellValue(hojaCosteo, fmt.Sprintf("I%d", row), l.Proveedor.ProveedorNombre)
		}
		f.SetCellValue(hojaCosteo, fmt.Sprintf("J%d", row), l.CostoTotal.InexactFloat64())
		row++
	}

	row++
	resumen := []struct {
		label string
		valor *decimal.Decimal
	}{
		{"Costo ingredientes", &calc.CostoIngredientes},
		{"Merma global %", &calc.MermaPctGlobal},
		{"Costo con merma", &calc.CostoConMerma},
		{"Mano de obra", &calc.CostoManoObra},
		{"Empaque", &calc.CostoEmpaque},
		{"Overhead %", &calc.OverheadPct},
		{"Overhead", &calc.OverheadMonto},
		{"Costo total del lote", &calc.CostoTotalLote},
		{"Costo unitario", calc.CostoUnitario},
		{"Precio sugerido +5%", &calc.PrecioSugerido5},
		{"Precio sugerido +10%", &calc.PrecioSugerido10},
		{"Precio sugerido +15%", &calc.PrecioSugerido15},
		{"Margen objetivo %", &calc.MargenObjetivoPct},
		{"Precio sugerido objetivo", calc.PrecioSugeridoObjetivo},
		{"Precio de venta actual", calc.PrecioVentaActual},
		{"Margen actual %", calc.MargenActualPct},
	}
	for _, r := range resumen {
		if r.valor == nil {
			continue
		}
		f.SetCellValue(hojaCosteo, fmt.Sprintf("I%d", row), r.label)
		f.SetCellValue(hojaCosteo, fmt.Sprintf("J%d", row), r.valor.InexactFloat64())
		f.SetCellStyle(hojaCosteo, fmt.Sprintf("I%d", row), fmt.Sprintf("I%d", row), totalStyle)
		row++
	}

	colWidths := []float64{24, 10, 10, 14, 12, 10, 16, 20, 26, 14}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(hojaCosteo, col, col, w)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("excel: write: %w", err)
	}
	return buf, nil
}
