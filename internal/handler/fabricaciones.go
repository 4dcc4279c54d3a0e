package handler

import (
	"net/http"
	"path/filepath"

	"tiopelotte/internal/dto"
	"tiopelotte/internal/service"

	"github.com/gin-gonic/gin"
)

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type FabricacionesHandler struct{ svc service.FabricacionService }

func NewFabricacionesHandler(svc service.FabricacionService) *FabricacionesHandler {
	return &FabricacionesHandler{svc: svc}
}

// Crear godoc
// @Summary      Crear fabricación
// @Description  Alta de una receta de lote con sus líneas de ingredientes. El costo se calcula en segundo plano.
// @Tags         fabricaciones
// @Accept       json
// @Produce      json
// @Param        body  body     dto.CrearFabricacionRequest  true  "Fabricación"
// @Success      201   {object} dto.FabricacionResponse
// @Failure      400   {object} apierror.APIError
// @Failure      404   {object} apierror.APIError
// @Failure      422   {object} apierror.ValidationError
// @Router       /v1/fabricaciones [post]
func (h *FabricacionesHandler) Crear(c *gin.Context) {
	var req dto.CrearFabricacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      Listar fabricaciones
// @Tags         fabricaciones
// @Produce      json
// @Param        nombre       query    string  false  "Filtro por nombre"
// @Param        producto_id  query    string  false  "Filtro por producto"
// @Param        page         query    int     false  "Página"
// @Param        limit        query    int     false  "Registros por página"
// @Success      200          {object} dto.FabricacionListResponse
// @Router       /v1/fabricaciones [get]
func (h *FabricacionesHandler) Listar(c *gin.Context) {
	var filter dto.FabricacionFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerPorID godoc
// @Summary      Obtener fabricación
// @Tags         fabricaciones
// @Produce      json
// @Param        id   path     string  true  "UUID de la fabricación"
// @Success      200  {object} dto.FabricacionResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/fabricaciones/{id} [get]
func (h *FabricacionesHandler) ObtenerPorID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar godoc
// @Summary      Actualizar fabricación
// @Description  Reemplaza parámetros y líneas. Invalida el costo calculado.
// @Tags         fabricaciones
// @Accept       json
// @Produce      json
// @Param        id    path     string                       true  "UUID de la fabricación"
// @Param        body  body     dto.CrearFabricacionRequest  true  "Fabricación"
// @Success      200   {object} dto.FabricacionResponse
// @Failure      400   {object} apierror.APIError
// @Failure      404   {object} apierror.APIError
// @Router       /v1/fabricaciones/{id} [put]
func (h *FabricacionesHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.CrearFabricacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eliminar godoc
// @Summary      Eliminar fabricación
// @Tags         fabricaciones
// @Param        id   path  string  true  "UUID de la fabricación"
// @Success      204
// @Failure      404  {object} apierror.APIError
// @Router       /v1/fabricaciones/{id} [delete]
func (h *FabricacionesHandler) Eliminar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Calcular godoc
// @Summary      Costo de una fabricación
// @Description  Desglose de costos por línea y del lote, precios sugeridos y margen contra el precio de venta actual.
// @Tags         fabricaciones
// @Produce      json
// @Param        id   path     string  true  "UUID de la fabricación"
// @Success      200  {object} dto.CalculoResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/fabricaciones/{id}/calculo [get]
func (h *FabricacionesHandler) Calcular(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Calcular(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Recalcular godoc
// @Summary      Forzar recálculo
// @Description  Recalcula con los precios vigentes y persiste el resultado.
// @Tags         fabricaciones
// @Produce      json
// @Param        id   path     string  true  "UUID de la fabricación"
// @Success      200  {object} dto.CalculoResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/fabricaciones/{id}/calculo [post]
func (h *FabricacionesHandler) Recalcular(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Recalcular(c.Request.Context(), id); err != nil {
		responderError(c, err)
		return
	}
	resp, err := h.svc.Calcular(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Simular godoc
// @Summary      Simular costo
// @Description  Calcula el costo de un lote sin persistir nada.
// @Tags         fabricaciones
// @Accept       json
// @Produce      json
// @Param        body  body     dto.SimularRequest  true  "Parámetros del lote"
// @Success      200   {object} dto.CalculoResponse
// @Failure      422   {object} apierror.ValidationError
// @Router       /v1/fabricaciones/simular [post]
func (h *FabricacionesHandler) Simular(c *gin.Context) {
	var req dto.SimularRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Simular(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ExportarPDF godoc
// @Summary      Hoja de costos en PDF
// @Tags         fabricaciones
// @Produce      application/pdf
// @Param        id   path  string  true  "UUID de la fabricación"
// @Success      200  {file}  binary
// @Failure      404  {object} apierror.APIError
// @Router       /v1/fabricaciones/{id}/export.pdf [get]
func (h *FabricacionesHandler) ExportarPDF(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	path, err := h.svc.ExportarPDF(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

// ExportarExcel godoc
// @Summary      Hoja de costos en Excel
// @Tags         fabricaciones
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id   path  string  true  "UUID de la fabricación"
// @Success      200  {file}  binary
// @Failure      404  {object} apierror.APIError
// @Router       /v1/fabricaciones/{id}/export.xlsx [get]
func (h *FabricacionesHandler) ExportarExcel(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	buf, nombre, err := h.svc.ExportarExcel(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+nombre+"\"")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Data(http.StatusOK, contentTypeXLSX, buf.Bytes())
}
