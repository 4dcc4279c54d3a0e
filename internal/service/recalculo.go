package service

import (
	"context"

	"tiopelotte/internal/dto"
	"tiopelotte/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CostoCache caches the latest cost breakdown per fabricacion.
// Get returns (nil, nil) on a miss.
type CostoCache interface {
	Get(ctx context.Context, id uuid.UUID) (*dto.CalculoResponse, error)
	Set(ctx context.Context, id uuid.UUID, resp *dto.CalculoResponse) error
	Delete(ctx context.Context, ids ...uuid.UUID) error
}

// RecalculoEncolador queues a background recalculation of one fabricacion.
type RecalculoEncolador interface {
	EncolarRecalculo(ctx context.Context, fabricacionID uuid.UUID) error
}

// propagador reacts to input changes (prices, pinned quotes, sale prices):
// it drops the cached breakdowns of the affected fabricaciones and queues
// their recalculation. Both collaborators are optional.
type propagador struct {
	fabRepo   repository.FabricacionRepository
	cache     CostoCache
	encolador RecalculoEncolador
}

// porIngredientes propagates a change of the given ingredients and returns
// how many recalculations were queued. The price write that triggered it is
// already committed, so failures here are logged, not returned.
func (p propagador) porIngredientes(ctx context.Context, ingredienteIDs ...uuid.UUID) int {
	vistos := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, ingID := range ingredienteIDs {
		fabIDs, err := p.fabRepo.FindIDsByIngrediente(ctx, ingID)
		if err != nil {
			log.Error().Err(err).Str("ingrediente_id", ingID.String()).Msg("propagar: failed to find fabricaciones")
			continue
		}
		for _, id := range fabIDs {
			if _, ok := vistos[id]; ok {
				continue
			}
			vistos[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return p.fabricaciones(ctx, ids)
}

// porProducto propagates a sale price change to the fabricaciones producing it.
func (p propagador) porProducto(ctx context.Context, productoID uuid.UUID) int {
	list, _, err := p.fabRepo.List(ctx, dto.FabricacionFilter{ProductoID: productoID.String(), Page: 1, Limit: 200})
	if err != nil {
		log.Error().Err(err).Str("producto_id", productoID.String()).Msg("propagar: failed to list fabricaciones")
		return 0
	}
	ids := make([]uuid.UUID, 0, len(list))
	for _, f := range list {
		ids = append(ids, f.ID)
	}
	return p.fabricaciones(ctx, ids)
}

func (p propagador) fabricaciones(ctx context.Context, ids []uuid.UUID) int {
	if len(ids) == 0 {
		return 0
	}
	if p.cache != nil {
		if err := p.cache.Delete(ctx, ids...); err != nil {
			log.Warn().Err(err).Int("count", len(ids)).Msg("propagar: cache invalidation failed")
		}
	}
	if p.encolador == nil {
		return 0
	}
	n := 0
	for _, id := range ids {
		if err := p.encolador.EncolarRecalculo(ctx, id); err != nil {
			log.Error().Err(err).Str("fabricacion_id", id.String()).Msg("propagar: enqueue failed")
			continue
		}
		n++
	}
	return n
}
