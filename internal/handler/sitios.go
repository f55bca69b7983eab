package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"inventario/internal/apierror"
	"inventario/internal/dto"
	"inventario/internal/service"
)

type SitiosHandler struct{ svc service.SitioService }

func NewSitiosHandler(svc service.SitioService) *SitiosHandler {
	return &SitiosHandler{svc: svc}
}

func (h *SitiosHandler) Crear(c *gin.Context) {
	var req dto.CrearSitioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, apierror.New("Ya existe un sitio con ese nombre"))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *SitiosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar sitios"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SitiosHandler) Eliminar(c *gin.Context) {
	id := parseID(c)
	if id == 0 {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("Sitio no encontrado"))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}
