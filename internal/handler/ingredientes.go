package handler

import (
	"net/http"

	"tiopelotte/internal/dto"
	"tiopelotte/internal/service"

	"github.com/gin-gonic/gin"
)

type IngredientesHandler struct{ svc service.IngredienteService }

func NewIngredientesHandler(svc service.IngredienteService) *IngredientesHandler {
	return &IngredientesHandler{svc: svc}
}

// Crear godoc
// @Summary      Crear ingrediente
// @Tags         ingredientes
// @Accept       json
// @Produce      json
// @Param        body  body     dto.CrearIngredienteRequest  true  "Ingrediente"
// @Success      201   {object} dto.IngredienteResponse
// @Failure      409   {object} apierror.APIError
// @Failure      422   {object} apierror.ValidationError
// @Router       /v1/ingredientes [post]
func (h *IngredientesHandler) Crear(c *gin.Context) {
	var req dto.CrearIngredienteRequest
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
// @Summary      Listar ingredientes
// @Tags         ingredientes
// @Produce      json
// @Param        nombre  query    string  false  "Filtro por nombre"
// @Param        activo  query    string  false  "false = inactivos, all = todos"
// @Param        page    query    int     false  "Página"
// @Param        limit   query    int     false  "Registros por página"
// @Success      200     {object} dto.IngredienteListResponse
// @Router       /v1/ingredientes [get]
func (h *IngredientesHandler) Listar(c *gin.Context) {
	var filter dto.IngredienteFilter
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
// @Summary      Obtener ingrediente con sus precios de proveedor
// @Tags         ingredientes
// @Produce      json
// @Param        id   path     string  true  "UUID del ingrediente"
// @Success      200  {object} dto.IngredienteResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/ingredientes/{id} [get]
func (h *IngredientesHandler) ObtenerPorID(c *gin.Context) {
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
// @Summary      Actualizar ingrediente
// @Tags         ingredientes
// @Accept       json
// @Produce      json
// @Param        id    path     string                            true  "UUID del ingrediente"
// @Param        body  body     dto.ActualizarIngredienteRequest  true  "Cambios"
// @Success      200   {object} dto.IngredienteResponse
// @Failure      400   {object} apierror.APIError
// @Failure      404   {object} apierror.APIError
// @Router       /v1/ingredientes/{id} [put]
func (h *IngredientesHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarIngredienteRequest
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

// Desactivar godoc
// @Summary      Desactivar ingrediente
// @Tags         ingredientes
// @Param        id   path  string  true  "UUID del ingrediente"
// @Success      204
// @Failure      404  {object} apierror.APIError
// @Router       /v1/ingredientes/{id} [delete]
func (h *IngredientesHandler) Desactivar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), id); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AgregarPrecio godoc
// @Summary      Agregar precio de proveedor
// @Description  Registra la cotización de un proveedor. Se rechaza si su unidad base difiere de la del ingrediente.
// @Tags         ingredientes
// @Accept       json
// @Produce      json
// @Param        id    path     string                      true  "UUID del ingrediente"
// @Param        body  body     dto.PrecioProveedorRequest  true  "Cotización"
// @Success      201   {object} dto.IngredienteResponse
// @Failure      400   {object} apierror.APIError
// @Failure      404   {object} apierror.APIError
// @Failure      409   {object} apierror.APIError
// @Router       /v1/ingredientes/{id}/precios [post]
func (h *IngredientesHandler) AgregarPrecio(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.PrecioProveedorRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AgregarPrecio(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ActualizarPrecio godoc
// @Summary      Actualizar precio de proveedor
// @Tags         ingredientes
// @Accept       json
// @Produce      json
// @Param        id        path     string                       true  "UUID del ingrediente"
// @Param        precioId  path     string                       true  "UUID del precio"
// @Param        body      body     dto.ActualizarPrecioRequest  true  "Cambios"
// @Success      200       {object} dto.IngredienteResponse
// @Failure      400       {object} apierror.APIError
// @Failure      404       {object} apierror.APIError
// @Router       /v1/ingredientes/{id}/precios/{precioId} [put]
func (h *IngredientesHandler) ActualizarPrecio(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	precioID, ok := parseID(c, "precioId")
	if !ok {
		return
	}
	var req dto.ActualizarPrecioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarPrecio(c.Request.Context(), id, precioID, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EliminarPrecio godoc
// @Summary      Eliminar precio de proveedor
// @Tags         ingredientes
// @Param        id        path  string  true  "UUID del ingrediente"
// @Param        precioId  path  string  true  "UUID del precio"
// @Success      204
// @Failure      404  {object} apierror.APIError
// @Router       /v1/ingredientes/{id}/precios/{precioId} [delete]
func (h *IngredientesHandler) EliminarPrecio(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	precioID, ok := parseID(c, "precioId")
	if !ok {
		return
	}
	if err := h.svc.EliminarPrecio(c.Request.Context(), id, precioID); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SeleccionarPrecio godoc
// @Summary      Fijar el precio de proveedor usado en el costeo
// @Description  Con precio_id null se vuelve a elegir automáticamente el más barato por unidad base.
// @Tags         ingredientes
// @Accept       json
// @Produce      json
// @Param        id    path     string                        true  "UUID del ingrediente"
// @Param        body  body     dto.SeleccionarPrecioRequest  true  "Precio"
// @Success      200   {object} dto.IngredienteResponse
// @Failure      404   {object} apierror.APIError
// @Router       /v1/ingredientes/{id}/precio-seleccionado [put]
func (h *IngredientesHandler) SeleccionarPrecio(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.SeleccionarPrecioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SeleccionarPrecio(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
