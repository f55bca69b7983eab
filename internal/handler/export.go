package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"inventario/internal/apierror"
	"inventario/internal/dto"
	"inventario/internal/service"
)

type ExportHandler struct{ svc service.ExportService }

func NewExportHandler(svc service.ExportService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// Exportar godoc
// @Summary Descarga el inventario como CSV o XLSX
// @Tags export
// @Produce octet-stream
// @Param formato query string false "csv (default) o xlsx"
// @Param sitio query string false "Filtrar por sitio"
// @Param empresa query string false "Filtrar por empresa"
// @Success 200 {file} binary
// @Router /v1/equipos/export [get]
func (h *ExportHandler) Exportar(c *gin.Context) {
	archivo, err := h.svc.GenerarArchivo(c.Request.Context(),
		c.Query("formato"), c.Query("sitio"), c.Query("empresa"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", archivo.Nombre))
	c.Data(http.StatusOK, archivo.MimeType, archivo.Data)
}

func (h *ExportHandler) EnviarCorreo(c *gin.Context) {
	var req dto.ExportarCorreoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.EnviarPorCorreo(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadGateway, apierror.New("No se pudo enviar la exportación"))
		return
	}
	status := http.StatusOK
	if resp.Encolado {
		status = http.StatusAccepted
	}
	c.JSON(status, resp)
}

func (h *ExportHandler) Acta(c *gin.Context) {
	id := parseID(c)
	if id == 0 {
		return
	}
	archivo, err := h.svc.GenerarActa(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("Equipo no encontrado"))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("No se pudo generar el acta"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", archivo.Nombre))
	c.Data(http.StatusOK, archivo.MimeType, archivo.Data)
}
