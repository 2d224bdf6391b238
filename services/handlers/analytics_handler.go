package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/la-cortesia/cortesia_api/shared"
)

type AnalyticsHandler struct {
	analyticsSvc AnalyticsServiceInterface
	redeemables  RedeemableStoreInterface
}

func NewAnalyticsHandler(analyticsSvc AnalyticsServiceInterface, redeemables RedeemableStoreInterface) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsSvc: analyticsSvc,
		redeemables:  redeemables,
	}
}

// @Summary Analytics Summary
// @Description Read back the game event counters
// @Tags analytics
// @Produce json
// @Success 200 {object} shared.Response{data=dto.AnalyticsSummaryResponse}
// @Router /api/v1/analytics/summary [get]
func (h *AnalyticsHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.analyticsSvc.Summary()
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", summary)
}

// @Summary Get Redeemable Card
// @Description Look up an issued zero-sum redeemable card
// @Tags redeemables
// @Produce json
// @Param id path string true "Redeemable ID"
// @Success 200 {object} shared.Response{data=model.RedeemableCard}
// @Router /api/v1/redeemables/{id} [get]
func (h *AnalyticsHandler) GetRedeemable(c *fiber.Ctx) error {
	card, err := h.redeemables.GetRedeemable(c.Params("id"))
	if err != nil {
		return shared.NewNotFoundError(err, "Redeemable card not found")
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", card)
}

// @Summary Redeem Card
// @Description Consume an active redeemable card
// @Tags redeemables
// @Produce json
// @Param id path string true "Redeemable ID"
// @Success 200 {object} shared.Response{data=string}
// @Router /api/v1/redeemables/{id}/redeem [post]
func (h *AnalyticsHandler) RedeemCard(c *fiber.Ctx) error {
	redeemed, err := h.redeemables.RedeemCard(c.Params("id"))
	if err != nil {
		return err
	}

	if !redeemed {
		return shared.NewConflictError(nil, "Card is expired, redeemed or unknown")
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Card redeemed", "redeemed")
}
