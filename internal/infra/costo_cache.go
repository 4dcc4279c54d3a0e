package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tiopelotte/internal/dto"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/redis/go-redis/v9"
)

const (
	costoCachePrefix = "costeo:fabricacion:"

	// breakdowns above this size are stored zstd-compressed
	compresionUmbral = 2 * 1024
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// CostoCache stores the latest cost breakdown of each fabricacion in Redis.
// Entries expire after ttl and are deleted whenever an input price changes.
type CostoCache struct {
	rdb *redis.Client
	ttl time.Duration

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func NewCostoCache(rdb *redis.Client, ttl time.Duration) (*CostoCache, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &CostoCache{rdb: rdb, ttl: ttl, encoder: encoder, decoder: decoder}, nil
}

func costoCacheKey(id uuid.UUID) string { return costoCachePrefix + id.String() }

// Get returns (nil, nil) on a cache miss.
func (c *CostoCache) Get(ctx context.Context, id uuid.UUID) (*dto.CalculoResponse, error) {
	raw, err := c.rdb.Get(ctx, costoCacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	data, err := c.descomprimir(raw)
	if err != nil {
		return nil, nil
	}
	var resp dto.CalculoResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		// corrupt entry: treat as a miss, it will be overwritten
		return nil, nil
	}
	return &resp, nil
}

func (c *CostoCache) Set(ctx context.Context, id uuid.UUID, resp *dto.CalculoResponse) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, costoCacheKey(id), c.comprimir(b), c.ttl).Err()
}

func (c *CostoCache) Delete(ctx context.Context, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, costoCacheKey(id))
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// comprimir leaves small payloads as plain JSON so they stay readable from
// redis-cli.
func (c *CostoCache) comprimir(b []byte) []byte {
	if len(b) <= compresionUmbral {
		return b
	}
	return c.encoder.EncodeAll(b, make([]byte, 0, len(b)/4))
}

func (c *CostoCache) descomprimir(raw []byte) ([]byte, error) {
	if !bytes.HasPrefix(raw, zstdMagic) {
		return raw, nil
	}
	return c.decoder.DecodeAll(raw, nil)
}
