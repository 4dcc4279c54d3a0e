package handler

import (
	"net/http"
	"strconv"

	"tiopelotte/internal/dto"
	"tiopelotte/internal/model"
	"tiopelotte/internal/repository"

	"github.com/gin-gonic/gin"
)

// HistorialPreciosHandler serves the supplier price history of an ingredient.
type HistorialPreciosHandler struct {
	repo repository.HistorialPrecioRepository
}

func NewHistorialPreciosHandler(repo repository.HistorialPrecioRepository) *HistorialPreciosHandler {
	return &HistorialPreciosHandler{repo: repo}
}

// ListarPorIngrediente godoc
// @Summary      Historial de precios de un ingrediente
// @Description  Retorna el historial inmutable de cambios de precio de proveedor de un ingrediente, ordenado por fecha descendente.
// @Tags         ingredientes
// @Param        id    path     string  true  "UUID del ingrediente"
// @Param        page  query    int     false "Página (default 1)"
// @Param        limit query    int     false "Registros por página (default 20, max 200)"
// @Success      200   {object} dto.HistorialPrecioListResponse
// @Failure      400   {object} apierror.APIError
// @Router       /v1/ingredientes/{id}/historial-precios [get]
func (h *HistorialPreciosHandler) ListarPorIngrediente(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	rows, total, err := h.repo.ListByIngrediente(c.Request.Context(), id, page, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	data := make([]dto.HistorialPrecioItem, 0, len(rows))
	for i := range rows {
		data = append(data, historialToDTO(&rows[i]))
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	c.JSON(http.StatusOK, dto.HistorialPrecioListResponse{
		Data:  data,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

func historialToDTO(h *model.HistorialPrecio) dto.HistorialPrecioItem {
	item := dto.HistorialPrecioItem{
		ID:                 h.ID.String(),
		IngredienteID:      h.IngredienteID.String(),
		PrecioProveedorID:  h.PrecioProveedorID.String(),
		ProveedorID:        h.ProveedorID.String(),
		PrecioAntes:        h.PrecioAntes,
		PrecioDespues:      h.PrecioDespues,
		UnitarioAntes:      h.UnitarioAntes,
		UnitarioDespues:    h.UnitarioDespues,
		CantidadDespues:    h.CantidadDespues,
		UnidadDespues:      h.UnidadDespues,
		PorcentajeAplicado: h.PorcentajeAplicado,
		Motivo:             h.Motivo,
		CreatedAt:          h.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if h.Proveedor != nil {
		item.ProveedorNombre = &h.Proveedor.RazonSocial
	}
	return item
}
