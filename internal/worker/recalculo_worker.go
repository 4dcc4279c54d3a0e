package worker

// recalculo_worker.go
// Recomputes the cost snapshot of a fabricacion after one of its input
// prices changed. The service does the work; this only decodes the job.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"tiopelotte/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RecalculoJobPayload is the job envelope sent to QueueRecalculo.
type RecalculoJobPayload struct {
	FabricacionID string `json:"fabricacion_id"`
}

// Recalculador is the part of service.FabricacionService the worker needs.
type Recalculador interface {
	Recalcular(ctx context.Context, id uuid.UUID) error
}

type RecalculoWorker struct {
	svc Recalculador
}

func NewRecalculoWorker(svc Recalculador) *RecalculoWorker {
	return &RecalculoWorker{svc: svc}
}

// Process recalculates one fabricacion. A fabricacion deleted after the job
// was queued is not an error: there is nothing left to recalculate.
func (w *RecalculoWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload RecalculoJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("recalculo_worker: invalid payload: %w", err)
	}

	id, err := uuid.Parse(payload.FabricacionID)
	if err != nil {
		return fmt.Errorf("recalculo_worker: invalid fabricacion_id %q", payload.FabricacionID)
	}

	if err := w.svc.Recalcular(ctx, id); err != nil {
		if errors.Is(err, service.ErrNoEncontrado) {
			log.Warn().Str("fabricacion_id", payload.FabricacionID).Msg("recalculo_worker: fabricacion no longer exists")
			return nil
		}
		return err
	}

	log.Info().Str("fabricacion_id", payload.FabricacionID).Msg("recalculo_worker: cost snapshot updated")
	return nil
}
