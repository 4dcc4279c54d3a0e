package handler

import (
	"net/http"

	"tiopelotte/internal/apierror"
	"tiopelotte/internal/dto"
	"tiopelotte/internal/infra"
	"tiopelotte/internal/service"

	"github.com/gin-gonic/gin"
)

// maxListaPrecios caps uploaded price lists at 5 MiB.
const maxListaPrecios = 5 << 20

type ProveedoresHandler struct{ svc service.ProveedorService }

func NewProveedoresHandler(svc service.ProveedorService) *ProveedoresHandler {
	return &ProveedoresHandler{svc: svc}
}

// Crear godoc
// @Summary      Crear proveedor
// @Tags         proveedores
// @Accept       json
// @Produce      json
// @Param        body  body     dto.CrearProveedorRequest  true  "Proveedor"
// @Success      201   {object} dto.ProveedorResponse
// @Failure      409   {object} apierror.APIError
// @Failure      422   {object} apierror.ValidationError
// @Router       /v1/proveedores [post]
func (h *ProveedoresHandler) Crear(c *gin.Context) {
	var req dto.CrearProveedorRequest
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
// @Summary      Listar proveedores activos
// @Tags         proveedores
// @Produce      json
// @Success      200  {array}  dto.ProveedorResponse
// @Router       /v1/proveedores [get]
func (h *ProveedoresHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerPorID godoc
// @Summary      Obtener proveedor
// @Tags         proveedores
// @Produce      json
// @Param        id   path     string  true  "UUID del proveedor"
// @Success      200  {object} dto.ProveedorResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/proveedores/{id} [get]
func (h *ProveedoresHandler) ObtenerPorID(c *gin.Context) {
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
// @Summary      Actualizar proveedor
// @Description  Reemplaza los datos y la lista de contactos del proveedor.
// @Tags         proveedores
// @Accept       json
// @Produce      json
// @Param        id    path     string                     true  "UUID del proveedor"
// @Param        body  body     dto.CrearProveedorRequest  true  "Proveedor"
// @Success      200   {object} dto.ProveedorResponse
// @Failure      404   {object} apierror.APIError
// @Failure      409   {object} apierror.APIError
// @Router       /v1/proveedores/{id} [put]
func (h *ProveedoresHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.CrearProveedorRequest
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
// @Summary      Desactivar proveedor
// @Tags         proveedores
// @Param        id   path  string  true  "UUID del proveedor"
// @Success      204
// @Failure      404  {object} apierror.APIError
// @Router       /v1/proveedores/{id} [delete]
func (h *ProveedoresHandler) Eliminar(c *gin.Context) {
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

// ActualizarPreciosMasivo godoc
// @Summary      Ajuste porcentual de precios de un proveedor
// @Description  Aplica un porcentaje a todos los precios cotizados por el proveedor. Con preview=true no persiste cambios.
// @Tags         proveedores
// @Accept       json
// @Produce      json
// @Param        id    path     string                              true  "UUID del proveedor"
// @Param        body  body     dto.ActualizarPreciosMasivoRequest  true  "Porcentaje"
// @Success      200   {object} dto.ActualizacionMasivaResponse
// @Failure      404   {object} apierror.APIError
// @Router       /v1/proveedores/{id}/precios-masivo [post]
func (h *ProveedoresHandler) ActualizarPreciosMasivo(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarPreciosMasivoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarPreciosMasivo(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ImportarListaPrecios godoc
// @Summary      Importar lista de precios
// @Description  Columnas: ingrediente, precio, cantidad, unidad. Acepta CSV (coma o punto y coma) o XLSX.
// @Tags         proveedores
// @Accept       multipart/form-data
// @Produce      json
// @Param        id       path      string  true  "UUID del proveedor"
// @Param        archivo  formData  file    true  "Lista de precios"
// @Success      200      {object}  dto.CSVImportResponse
// @Failure      400      {object}  apierror.APIError
// @Failure      404      {object}  apierror.APIError
// @Router       /v1/proveedores/{id}/lista-precios [post]
func (h *ProveedoresHandler) ImportarListaPrecios(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxListaPrecios)
	file, header, err := c.Request.FormFile("archivo")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Adjunte la lista de precios en el campo 'archivo'"))
		return
	}
	defer file.Close()

	filas, err := infra.LeerListaPrecios(file, header.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}

	resp, err := h.svc.ImportarListaPrecios(c.Request.Context(), id, filas)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
