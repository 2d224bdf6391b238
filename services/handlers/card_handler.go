package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/la-cortesia/cortesia_api/dto"
	"github.com/la-cortesia/cortesia_api/shared"
)

type CardHandler struct {
	generatorSvc CardGeneratorInterface
	catalogSvc   TemplateCatalogInterface
}

func NewCardHandler(generatorSvc CardGeneratorInterface, catalogSvc TemplateCatalogInterface) *CardHandler {
	return &CardHandler{
		generatorSvc: generatorSvc,
		catalogSvc:   catalogSvc,
	}
}

// @Summary Generate Card
// @Description Generate a challenge card from the requested dimensions
// @Tags cards
// @Accept json
// @Produce json
// @Param request body dto.GenerateCardRequest true "Card dimensions"
// @Success 200 {object} shared.Response{data=model.Card}
// @Router /api/v1/cards/generate [post]
func (h *CardHandler) GenerateCard(c *fiber.Ctx) error {
	var req dto.GenerateCardRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	if err := dto.GetValidator().Struct(req); err != nil {
		return shared.NewBadRequestError(err, "Validation failed")
	}

	card := h.generatorSvc.GenerateCard(req)
	return shared.ResponseJSON(c, fiber.StatusOK, "Success", card)
}

// @Summary Select Template Card
// @Description Pick a card template by filters and convert it into a card
// @Tags cards
// @Accept json
// @Produce json
// @Param request body dto.TemplateSelectRequest true "Template filters"
// @Success 200 {object} shared.Response{data=model.Card}
// @Router /api/v1/cards/template [post]
func (h *CardHandler) SelectTemplateCard(c *fiber.Ctx) error {
	var req dto.TemplateSelectRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	if err := dto.GetValidator().Struct(req); err != nil {
		return shared.NewBadRequestError(err, "Validation failed")
	}

	card, err := h.catalogSvc.SelectCard(req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", card)
}

// @Summary List Templates
// @Description List the full card template catalog
// @Tags cards
// @Produce json
// @Success 200 {object} shared.Response{data=[]model.CardTemplate}
// @Router /api/v1/cards/templates [get]
func (h *CardHandler) ListTemplates(c *fiber.Ctx) error {
	return shared.ResponseJSON(c, fiber.StatusOK, "Success", h.catalogSvc.Templates())
}

// @Summary List Brand Sponsors
// @Description List the sponsors available for branded cards
// @Tags brands
// @Produce json
// @Success 200 {object} shared.Response{data=[]model.BrandSponsor}
// @Router /api/v1/brands [get]
func (h *CardHandler) ListBrands(c *fiber.Ctx) error {
	return shared.ResponseJSON(c, fiber.StatusOK, "Success", h.catalogSvc.Sponsors())
}
