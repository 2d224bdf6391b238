package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/la-cortesia/cortesia_api/model"
	"github.com/la-cortesia/cortesia_api/shared"
)

type EvidenceHandler struct {
	evidenceSvc EvidenceServiceInterface
}

func NewEvidenceHandler(evidenceSvc EvidenceServiceInterface) *EvidenceHandler {
	return &EvidenceHandler{evidenceSvc: evidenceSvc}
}

// @Summary Upload Verification Evidence
// @Description Store the photo or audio payload for verification and return its reference
// @Tags evidence
// @Accept multipart/form-data
// @Produce json
// @Param gameId path string true "Game ID"
// @Param method formData string true "Verification method (photo or audio)"
// @Param evidence formData file true "Evidence file"
// @Success 200 {object} shared.Response{data=dto.EvidenceResponse}
// @Router /api/v1/evidence/{gameId} [post]
func (h *EvidenceHandler) UploadEvidence(c *fiber.Ctx) error {
	gameID := c.Params("gameId")

	method := model.VerificationType(c.FormValue("method"))
	if method == "" {
		return shared.NewBadRequestError(nil, "No verification method provided")
	}

	file, err := c.FormFile("evidence")
	if err != nil {
		return shared.NewBadRequestError(err, "No evidence file provided")
	}

	response, err := h.evidenceSvc.UploadEvidence(gameID, method, file)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Evidence uploaded successfully", response)
}

// @Summary Get Evidence URL
// @Description Presign a read link for a stored evidence object
// @Tags evidence
// @Produce json
// @Param ref query string true "Evidence payload reference"
// @Success 200 {object} shared.Response{data=string}
// @Router /api/v1/evidence [get]
func (h *EvidenceHandler) GetEvidenceURL(c *fiber.Ctx) error {
	ref := c.Query("ref")
	if ref == "" {
		return shared.NewBadRequestError(nil, "No evidence reference provided")
	}

	url, err := h.evidenceSvc.GetEvidenceURL(ref)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", url)
}
