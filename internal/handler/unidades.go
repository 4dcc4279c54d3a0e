package handler

import (
	"net/http"

	"tiopelotte/internal/dto"
	"tiopelotte/internal/pricing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// UnidadesHandler exposes the unit catalog and the unit price preview used
// by the frontend while typing a supplier quote.
type UnidadesHandler struct {
	moneda string
	locale string
}

func NewUnidadesHandler(moneda, locale string) *UnidadesHandler {
	return &UnidadesHandler{moneda: moneda, locale: locale}
}

// Listar godoc
// @Summary      Unidades soportadas
// @Tags         unidades
// @Produce      json
// @Success      200  {object} dto.UnidadesResponse
// @Router       /v1/unidades [get]
func (h *UnidadesHandler) Listar(c *gin.Context) {
	grupos := pricing.UnidadesSoportadas()
	resp := dto.UnidadesResponse{Grupos: make(map[string][]string, len(grupos))}
	for _, base := range []pricing.UnidadBase{pricing.UnidadKg, pricing.UnidadLitro, pricing.UnidadUnidad} {
		resp.Bases = append(resp.Bases, string(base))
		resp.Grupos[string(base)] = grupos[base]
	}
	c.JSON(http.StatusOK, resp)
}

// PrecioUnitario godoc
// @Summary      Vista previa del precio por unidad base
// @Description  Valores inválidos no se rechazan: devuelven valor null.
// @Tags         unidades
// @Accept       json
// @Produce      json
// @Param        body  body     dto.PrecioUnitarioRequest  true  "Cotización"
// @Success      200   {object} dto.PrecioUnitarioResponse
// @Router       /v1/unidades/precio-unitario [post]
func (h *UnidadesHandler) PrecioUnitario(c *gin.Context) {
	var req dto.PrecioUnitarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	moneda, locale := req.Moneda, req.Locale
	if moneda == "" {
		moneda = h.moneda
	}
	if locale == "" {
		locale = h.locale
	}

	precio, _ := req.Precio.Float64()
	cantidad, _ := req.Cantidad.Float64()
	r := pricing.CalcularPrecioUnitarioBase(precio, cantidad, req.Unidad)

	resp := dto.PrecioUnitarioResponse{Soportada: pricing.EsUnidadSoportada(req.Unidad)}
	if r.UnidadBase != nil {
		base := string(*r.UnidadBase)
		resp.UnidadBase = &base
	}
	if r.Valor != nil && r.UnidadBase != nil {
		v := decimal.NewFromFloat(*r.Valor).Round(4)
		resp.Valor = &v
		f := pricing.FormatPrecioUnitario(*r.Valor, *r.UnidadBase, moneda, locale)
		resp.Formateado = &f
	}
	c.JSON(http.StatusOK, resp)
}
