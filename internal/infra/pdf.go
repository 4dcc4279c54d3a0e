package infra

// pdf.go — cost sheet ("hoja de costos") generation using go-pdf/fpdf.
// A4 portrait with:
//   - Business name and fabricacion header, QR code top-right
//   - Ingredient line table (quantity, base quantity, unit price, cost)
//   - Batch roll-up (waste, labor, packaging, overhead, unit cost)
//   - Suggested prices and current margin
//
// The output file is saved to storagePath/hoja_costos_{id}.pdf.

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tiopelotte/internal/dto"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"
)

const qrLado = 24.0 // mm

// HojaCostos is the data rendered by both cost sheet exports.
type HojaCostos struct {
	Negocio       string
	FabricacionID string
	Fabricacion   string
	// Enlace is encoded in the QR code; the fabricacion ID is used when empty.
	Enlace  string
	Calculo *dto.CalculoResponse
}

func (h HojaCostos) contenidoQR() string {
	if h.Enlace != "" {
		return h.Enlace
	}
	return h.FabricacionID
}

// dibujarQR places the QR code in the top-right corner. A QR that cannot be
// encoded is skipped.
func dibujarQR(pdf *fpdf.Fpdf, contenido string, x, y float64) bool {
	if contenido == "" {
		return false
	}
	qr, err := qrcode.New(contenido, qrcode.Medium)
	if err != nil {
		return false
	}
	qr.DisableBorder = true
	png, err := qr.PNG(256)
	if err != nil {
		return false
	}
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("qr", x, y, qrLado, qrLado, false, opts, 0, "")
	return pdf.Ok()
}

// GenerarHojaCostosPDF writes the cost sheet of one fabricacion.
// storagePath is the directory where the PDF will be written (created if needed).
// Returns the path to the generated file.
func GenerarHojaCostosPDF(h HojaCostos, storagePath string) (string, error) {
	if h.Calculo == nil {
		return "", fmt.Errorf("pdf: calculo vacio")
	}
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	filePath := filepath.Join(storagePath, fmt.Sprintf("hoja_costos_%s.pdf", h.FabricacionID))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24
	calc := h.Calculo

	// ── Header ───────────────────────────────────────────────────────────────
	headerW := contentW
	if dibujarQR(pdf, h.contenidoQR(), pageW-12-qrLado, 10) {
		headerW = contentW - qrLado - 2
	}
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(headerW, 8, tr(h.Negocio), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(headerW, 6, tr("Hoja de costos: "+h.Fabricacion), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(headerW, 5, fmt.Sprintf("Calculado %s  |  Lote: %s unidades  |  Moneda: %s",
		calc.CalculadoAt.In(time.Local).Format("02/01/2006 15:04"),
		calc.BatchSize.String(), calc.Moneda), "", 1, "L", false, 0, "")
	if y := 10 + qrLado + 2; headerW < contentW && pdf.GetY() < y {
		pdf.SetY(y)
	}
	pdf.Ln(3)

	// ── Lines ────────────────────────────────────────────────────────────────
	widths := []float64{0.26, 0.13, 0.13, 0.09, 0.13, 0.13, 0.13}
	headers := []string{"Ingrediente", "Cantidad", "Cant. base", "Merma %", "Efectiva", "Precio base", "Costo"}
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(217, 225, 242)
	for i, hdr := range headers {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(contentW*widths[i], 6, tr(hdr), "B", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, l := range calc.Lineas {
		nombre := l.IngredienteNombre
		if nombre == "" {
			nombre = l.IngredienteID
		}
		if len([]rune(nombre)) > 32 {
			nombre = string([]rune(nombre)[:31]) + "..."
		}
		precio := "-"
		if l.PrecioUnitarioBase != nil {
			precio = "$" + l.PrecioUnitarioBase.StringFixed(2) + "/" + l.UnidadBase
		}
		cells := []string{
			nombre,
			l.Cantidad.String() + " " + l.Unidad,
			l.CantidadBase.StringFixed(3) + " " + l.UnidadBase,
			l.MermaPct.StringFixed(1),
			l.CantidadEfectiva.StringFixed(3),
			precio,
			"$" + l.CostoTotal.StringFixed(2),
		}
		for i, v := range cells {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(contentW*widths[i], 5, tr(v), "", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(2)
	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	labelW := contentW * 0.7
	valueW := contentW * 0.3
	fila := func(label string, v decimal.Decimal, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(labelW, 5, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(valueW, 5, "$"+v.StringFixed(2), "", 1, "R", false, 0, "")
	}

	fila("Costo ingredientes", calc.CostoIngredientes, false)
	fila(fmt.Sprintf("Con merma global (%s%%)", calc.MermaPctGlobal.StringFixed(1)), calc.CostoConMerma, false)
	fila("Mano de obra", calc.CostoManoObra, false)
	fila("Empaque", calc.CostoEmpaque, false)
	fila(fmt.Sprintf("Overhead (%s%%)", calc.OverheadPct.StringFixed(1)), calc.OverheadMonto, false)
	fila("Costo total del lote", calc.CostoTotalLote, true)
	if calc.CostoUnitario != nil {
		fila("Costo unitario", *calc.CostoUnitario, true)
	}

	// ── Prices ───────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Precios sugeridos", "", 1, "L", false, 0, "")
	fila("Costo ingredientes +5%", calc.PrecioSugerido5, false)
	fila("Costo ingredientes +10%", calc.PrecioSugerido10, false)
	fila("Costo ingredientes +15%", calc.PrecioSugerido15, false)
	if calc.PrecioSugeridoObjetivo != nil {
		fila(fmt.Sprintf("Unitario con margen objetivo (%s%%)", calc.MargenObjetivoPct.StringFixed(1)), *calc.PrecioSugeridoObjetivo, true)
	}
	if calc.PrecioVentaActual != nil && calc.MargenActualPct != nil {
		fila("Precio de venta actual", *calc.PrecioVentaActual, false)
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(labelW, 5, "Margen actual", "", 0, "L", false, 0, "")
		pdf.CellFormat(valueW, 5, calc.MargenActualPct.StringFixed(2)+"%", "", 1, "R", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
