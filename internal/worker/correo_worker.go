package worker

// correo_worker.go
// Processes export-by-mail jobs from QueueExportaciones: regenerates the
// requested file and sends it through SMTP. Sends go through a circuit
// breaker so a downed mail server fails fast instead of tying up workers.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"inventario/internal/dto"
	"inventario/internal/infra"
)

// CorreoJobPayload is the job envelope sent to QueueExportaciones.
type CorreoJobPayload struct {
	Para    string `json:"para"`
	Asunto  string `json:"asunto"`
	Formato string `json:"formato"`
	Sitio   string `json:"sitio"`
	Empresa string `json:"empresa"`
}

// GeneradorExportaciones builds export files. service.ExportService satisfies it.
type GeneradorExportaciones interface {
	GenerarArchivo(ctx context.Context, formato, sitio, empresa string) (*dto.ArchivoExportado, error)
}

// Mailer sends a generated export. *infra.Mailer satisfies it.
type Mailer interface {
	SendExport(to, subject, body, filename, mimeType string, data []byte) error
}

// CorreoWorker processes export jobs from QueueExportaciones.
type CorreoWorker struct {
	generador GeneradorExportaciones
	mailer    Mailer
	breaker   *infra.CircuitBreaker
}

func NewCorreoWorker(generador GeneradorExportaciones, mailer Mailer, breaker *infra.CircuitBreaker) *CorreoWorker {
	return &CorreoWorker{generador: generador, mailer: mailer, breaker: breaker}
}

// Process generates the export and mails it. Returned errors make the pool
// retry and eventually park the job in the DLQ.
func (w *CorreoWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload CorreoJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("correo_worker: invalid payload")
		return nil
	}
	if payload.Para == "" {
		log.Warn().Msg("correo_worker: empty recipient, skipping")
		return nil
	}

	archivo, err := w.generador.GenerarArchivo(ctx, payload.Formato, payload.Sitio, payload.Empresa)
	if err != nil {
		return fmt.Errorf("generar exportación: %w", err)
	}

	cuerpo := fmt.Sprintf("Se adjunta la exportación del inventario (%s).", archivo.Nombre)
	err = w.breaker.Execute(func() error {
		return w.mailer.SendExport(payload.Para, payload.Asunto, cuerpo, archivo.Nombre, archivo.MimeType, archivo.Data)
	})
	if err != nil {
		return fmt.Errorf("enviar a %s: %w", payload.Para, err)
	}

	log.Info().Str("to", payload.Para).Str("archivo", archivo.Nombre).Msg("correo_worker: export sent")
	return nil
}
