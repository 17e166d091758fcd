package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/teamflow/teamflow-api/internal/middleware"
)

// UsageHandler exposes the per-user daily allowance: reading the counter and
// reserving one unit before dispatching work that counts against it.
type UsageHandler struct {
	quotaService QuotaServiceInterface
}

func NewUsageHandler(quotaService QuotaServiceInterface) *UsageHandler {
	return &UsageHandler{quotaService: quotaService}
}

func (h *UsageHandler) Get(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	usage, err := h.quotaService.DailyUsage(context.Background(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, toQuotaResponse(usage))
}

func (h *UsageHandler) Consume(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	usage, err := h.quotaService.ConsumeDailyUsage(context.Background(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, toQuotaResponse(usage))
}
