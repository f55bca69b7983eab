package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"inventario/internal/apierror"
	"inventario/internal/dto"
	"inventario/internal/service"
	"inventario/internal/worker"
)

// AgenteHandler receives hardware reports from scanning agents, either as a
// plain POST or over a websocket that stays open while the agent keeps
// reporting. With a queue available reports are applied asynchronously;
// otherwise inline.
type AgenteHandler struct {
	svc        service.EquipoService
	dispatcher *worker.Dispatcher
}

func NewAgenteHandler(svc service.EquipoService, dispatcher *worker.Dispatcher) *AgenteHandler {
	return &AgenteHandler{svc: svc, dispatcher: dispatcher}
}

func (h *AgenteHandler) Reporte(c *gin.Context) {
	var rep dto.ReporteAgente
	if !bindAndValidate(c, &rep) {
		return
	}
	if err := h.procesar(c.Request.Context(), rep); err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("No se pudo procesar el reporte"))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"recibido": rep.CodigoInventario})
}

func (h *AgenteHandler) procesar(ctx context.Context, rep dto.ReporteAgente) error {
	if h.dispatcher != nil {
		if err := h.dispatcher.EnqueueReporte(ctx, rep); err == nil {
			return nil
		}
		// Queue unavailable: apply in-request rather than dropping the report.
	}
	return h.svc.AplicarReporte(ctx, rep)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Agents connect from office subnets, not browsers; origin is meaningless.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WS upgrades the connection and consumes agent frames until the agent hangs
// up. Every frame gets an ack or error reply so agents can resend.
func (h *AgenteHandler) WS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("ip", c.ClientIP()).Msg("agente: websocket upgrade failed")
		return
	}
	defer conn.Close()

	for {
		var msg dto.MensajeAgente
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Tipo {
		case "registro":
			_ = conn.WriteJSON(dto.AckAgente{Tipo: "ack"})

		case "reporte":
			var rep dto.ReporteAgente
			if err := json.Unmarshal(msg.Data, &rep); err != nil || rep.CodigoInventario == "" {
				_ = conn.WriteJSON(dto.AckAgente{Tipo: "error", Detalle: "reporte invalido"})
				continue
			}
			if err := h.procesar(c.Request.Context(), rep); err != nil {
				log.Error().Err(err).Str("codigo", rep.CodigoInventario).Msg("agente: report failed")
				_ = conn.WriteJSON(dto.AckAgente{Tipo: "error", Detalle: "no se pudo aplicar el reporte"})
				continue
			}
			_ = conn.WriteJSON(dto.AckAgente{Tipo: "ack", Detalle: rep.CodigoInventario})

		default:
			_ = conn.WriteJSON(dto.AckAgente{Tipo: "error", Detalle: "tipo de mensaje desconocido"})
		}
	}
}
