package worker

// retry_cron.go
// Background goroutine that periodically queues a recalculation for every
// active fabricacion that has no cost snapshot yet (new recipes, or ones
// whose jobs ended in the DLQ before the first successful run).

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	sweepTickInterval = 5 * time.Minute
	sweepBatchSize    = 50
)

// SinCalculoFinder lists fabricaciones that were never calculated.
type SinCalculoFinder interface {
	FindIDsSinCalculo(ctx context.Context, limit int) ([]uuid.UUID, error)
}

// StartRecalculoCron launches a background goroutine that ticks every 5 min
// and enqueues pending fabricaciones. It respects the context for graceful
// shutdown.
func StartRecalculoCron(ctx context.Context, finder SinCalculoFinder, d *Dispatcher) {
	go func() {
		ticker := time.NewTicker(sweepTickInterval)
		defer ticker.Stop()

		log.Info().Msg("recalculo_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("recalculo_cron: shutting down")
				return
			case <-ticker.C:
				encolarPendientes(ctx, finder, d)
			}
		}
	}()
}

func encolarPendientes(ctx context.Context, finder SinCalculoFinder, d *Dispatcher) int {
	ids, err := finder.FindIDsSinCalculo(ctx, sweepBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("recalculo_cron: failed to query pending fabricaciones")
		return 0
	}
	n := 0
	for _, id := range ids {
		if err := d.EncolarRecalculo(ctx, id); err != nil {
			log.Error().Err(err).Str("fabricacion_id", id.String()).Msg("recalculo_cron: enqueue failed")
			continue
		}
		n++
	}
	if n > 0 {
		log.Info().Int("count", n).Msg("recalculo_cron: queued pending fabricaciones")
	}
	return n
}
