package worker

// reporte_worker.go
// Processes agent hardware reports from QueueReportes so a burst of agents
// checking in at once never blocks the HTTP ingest path.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"inventario/internal/dto"
)

// AplicadorReportes applies one agent report to the inventory.
// service.EquipoService satisfies it.
type AplicadorReportes interface {
	AplicarReporte(ctx context.Context, rep dto.ReporteAgente) error
}

// ReporteWorker processes agent report jobs from QueueReportes.
type ReporteWorker struct {
	aplicador AplicadorReportes
}

func NewReporteWorker(aplicador AplicadorReportes) *ReporteWorker {
	return &ReporteWorker{aplicador: aplicador}
}

// Process upserts the reported record. A malformed payload is dropped (it
// will never get better); an apply failure is returned so the pool retries.
func (w *ReporteWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var rep dto.ReporteAgente
	if err := json.Unmarshal(raw, &rep); err != nil {
		log.Error().Err(err).Msg("reporte_worker: invalid payload")
		return nil
	}
	if rep.CodigoInventario == "" {
		log.Warn().Msg("reporte_worker: report without inventory code, skipping")
		return nil
	}

	if err := w.aplicador.AplicarReporte(ctx, rep); err != nil {
		return fmt.Errorf("aplicar reporte %s: %w", rep.CodigoInventario, err)
	}
	log.Info().Str("codigo", rep.CodigoInventario).Msg("reporte_worker: report applied")
	return nil
}
