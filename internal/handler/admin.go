package handler

import (
	"net/http"
	"strconv"

	"tiopelotte/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// AdminHandler lets an operator inspect and requeue recalculation jobs that
// exhausted their retries.
type AdminHandler struct{ rdb *redis.Client }

func NewAdminHandler(rdb *redis.Client) *AdminHandler {
	return &AdminHandler{rdb: rdb}
}

// ListarDLQ godoc
// @Summary      Recálculos fallidos
// @Tags         admin
// @Produce      json
// @Param        limit  query  int  false  "Máximo de entradas (default 50)"
// @Success      200    {object} map[string]interface{}
// @Router       /v1/admin/recalculo/dlq [get]
func (h *AdminHandler) ListarDLQ(c *gin.Context) {
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	if err != nil || limit < 1 || limit > 500 {
		limit = 50
	}
	ctx := c.Request.Context()
	total, err := worker.DLQLength(ctx, h.rdb, worker.QueueRecalculo)
	if err != nil {
		_ = c.Error(err)
		return
	}
	entries, err := worker.ListarDLQ(ctx, h.rdb, worker.QueueRecalculo, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total, "data": entries})
}

// ReencolarDLQ godoc
// @Summary      Reencolar recálculos fallidos
// @Tags         admin
// @Produce      json
// @Param        max  query  int  false  "Máximo a reencolar (default 100)"
// @Success      200  {object} map[string]int
// @Router       /v1/admin/recalculo/dlq/reencolar [post]
func (h *AdminHandler) ReencolarDLQ(c *gin.Context) {
	max, err := strconv.Atoi(c.DefaultQuery("max", "100"))
	if err != nil || max < 1 {
		max = 100
	}
	n, err := worker.ReencolarDLQ(c.Request.Context(), h.rdb, worker.QueueRecalculo, max)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reencolados": n})
}
