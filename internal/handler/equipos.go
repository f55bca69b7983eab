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

type EquiposHandler struct{ svc service.EquipoService }

func NewEquiposHandler(svc service.EquipoService) *EquiposHandler {
	return &EquiposHandler{svc: svc}
}

// Registrar godoc
// @Summary Alta de un equipo
// @Tags equipos
// @Accept json
// @Produce json
// @Param body body dto.RegistrarEquipoRequest true "Equipo"
// @Success 201 {object} dto.EquipoResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/equipos [post]
func (h *EquiposHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarEquipoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, apierror.New("Ya existe un equipo con ese código de inventario"))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *EquiposHandler) Listar(c *gin.Context) {
	var filtro dto.FiltroEquipos
	if err := c.ShouldBindQuery(&filtro); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	if err := validate.Struct(&filtro); err != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.New("Filtro invalido"))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filtro)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar equipos"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EquiposHandler) Obtener(c *gin.Context) {
	id := parseID(c)
	if id == 0 {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Equipo no encontrado"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EquiposHandler) Actualizar(c *gin.Context) {
	id := parseID(c)
	if id == 0 {
		return
	}
	var req dto.ActualizarEquipoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, apierror.New("Equipo no encontrado"))
		case errors.Is(err, gorm.ErrDuplicatedKey):
			c.JSON(http.StatusConflict, apierror.New("Ya existe un equipo con ese código de inventario"))
		default:
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EquiposHandler) Eliminar(c *gin.Context) {
	id := parseID(c)
	if id == 0 {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("Equipo no encontrado"))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Tabla editable ────────────────────────────────────────────────────────────

func (h *EquiposHandler) Tabla(c *gin.Context) {
	filtro := dto.FiltroTabla{
		Sitio:   c.Query("sitio"),
		Empresa: c.Query("empresa"),
	}
	filas, err := h.svc.Tabla(c.Request.Context(), filtro)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al cargar la tabla"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"filas": filas, "filtro": filtro})
}

// GuardarTabla godoc
// @Summary Guarda la tabla editable completa
// @Description Compara las filas recibidas con el estado almacenado para el
// @Description mismo filtro y aplica altas de cambios y bajas en una sola
// @Description transacción. Las filas que el cliente agregó localmente (id 0)
// @Description se omiten y las que otro usuario eliminó se informan.
// @Tags equipos
// @Accept json
// @Produce json
// @Param body body dto.GuardarTablaRequest true "Tabla editada"
// @Success 200 {object} dto.ResultadoTabla
// @Failure 422 {object} apierror.APIError
// @Router /v1/equipos/tabla [post]
func (h *EquiposHandler) GuardarTabla(c *gin.Context) {
	var req dto.GuardarTablaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.GuardarTabla(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTablaInvalida):
			c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
		case errors.Is(err, gorm.ErrDuplicatedKey):
			c.JSON(http.StatusConflict, apierror.New("La tabla repite un código de inventario ya existente"))
		default:
			c.JSON(http.StatusInternalServerError, apierror.New("Error al guardar la tabla"))
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}
