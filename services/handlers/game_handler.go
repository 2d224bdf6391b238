package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/la-cortesia/cortesia_api/dto"
	"github.com/la-cortesia/cortesia_api/model"
	"github.com/la-cortesia/cortesia_api/shared"
)

type GameHandler struct {
	gameSvc GameSessionInterface
}

func NewGameHandler(gameSvc GameSessionInterface) *GameHandler {
	return &GameHandler{gameSvc: gameSvc}
}

// @Summary Create Game
// @Description Create a game session with an ordered player list
// @Tags games
// @Accept json
// @Produce json
// @Param request body dto.CreateGameRequest true "Players and experience"
// @Success 201 {object} shared.Response{data=dto.GameStateResponse}
// @Router /api/v1/games [post]
func (h *GameHandler) CreateGame(c *fiber.Ctx) error {
	var req dto.CreateGameRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	if err := dto.GetValidator().Struct(req); err != nil {
		return shared.NewBadRequestError(err, "Validation failed")
	}

	state, err := h.gameSvc.CreateGame(req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusCreated, "Game created", state)
}

// @Summary Get Game State
// @Description Get the full state of a game session
// @Tags games
// @Produce json
// @Param gameId path string true "Game ID"
// @Success 200 {object} shared.Response{data=dto.GameStateResponse}
// @Router /api/v1/games/{gameId} [get]
func (h *GameHandler) GetGame(c *fiber.Ctx) error {
	state, err := h.gameSvc.GetGame(c.Params("gameId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", state)
}

// @Summary Restore Game
// @Description Reload a game session from its persisted snapshot
// @Tags games
// @Produce json
// @Param gameId path string true "Game ID"
// @Success 200 {object} shared.Response{data=dto.GameStateResponse}
// @Router /api/v1/games/{gameId}/restore [post]
func (h *GameHandler) RestoreGame(c *fiber.Ctx) error {
	state, err := h.gameSvc.RestoreGame(c.Params("gameId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Game restored", state)
}

// @Summary Start Challenge
// @Description Dequeue the active player's next card and start the challenge
// @Tags challenge
// @Produce json
// @Param gameId path string true "Game ID"
// @Success 200 {object} shared.Response{data=dto.ChallengeStateResponse}
// @Router /api/v1/games/{gameId}/challenge/start [post]
func (h *GameHandler) StartChallenge(c *fiber.Ctx) error {
	state, err := h.gameSvc.StartNextChallenge(c.Params("gameId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Challenge started", state)
}

// @Summary Complete Challenge
// @Description Mark the active challenge done and move it to verification
// @Tags challenge
// @Produce json
// @Param gameId path string true "Game ID"
// @Success 200 {object} shared.Response{data=dto.VerifyResponse}
// @Router /api/v1/games/{gameId}/challenge/complete [post]
func (h *GameHandler) CompleteChallenge(c *fiber.Ctx) error {
	result, err := h.gameSvc.CompleteChallenge(c.Params("gameId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", result)
}

// @Summary Verify Challenge
// @Description Run verification for the active challenge
// @Tags challenge
// @Accept json
// @Produce json
// @Param gameId path string true "Game ID"
// @Param request body dto.VerifyRequest true "Verification method and payload reference"
// @Success 200 {object} shared.Response{data=dto.VerifyResponse}
// @Router /api/v1/games/{gameId}/challenge/verify [post]
func (h *GameHandler) VerifyChallenge(c *fiber.Ctx) error {
	var req dto.VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	if err := dto.GetValidator().Struct(req); err != nil {
		return shared.NewBadRequestError(err, "Validation failed")
	}

	result, err := h.gameSvc.VerifyChallenge(c.Params("gameId"), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", result)
}

// @Summary Submit Group Vote
// @Description Record one player's approval vote for the active challenge
// @Tags challenge
// @Accept json
// @Produce json
// @Param gameId path string true "Game ID"
// @Param request body dto.VoteRequest true "Voting player"
// @Success 200 {object} shared.Response{data=dto.VoteResponse}
// @Router /api/v1/games/{gameId}/challenge/vote [post]
func (h *GameHandler) SubmitVote(c *fiber.Ctx) error {
	var req dto.VoteRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	if err := dto.GetValidator().Struct(req); err != nil {
		return shared.NewBadRequestError(err, "Validation failed")
	}

	result, err := h.gameSvc.SubmitVote(c.Params("gameId"), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Vote recorded", result)
}

// @Summary Retry Verification
// @Description Move a failed challenge back to verifying
// @Tags challenge
// @Produce json
// @Param gameId path string true "Game ID"
// @Success 200 {object} shared.Response{data=dto.ChallengeStateResponse}
// @Router /api/v1/games/{gameId}/challenge/retry [post]
func (h *GameHandler) RetryVerification(c *fiber.Ctx) error {
	state, err := h.gameSvc.RetryVerification(c.Params("gameId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", state)
}

// @Summary Claim Reward
// @Description Claim the reward of a completed challenge
// @Tags challenge
// @Produce json
// @Param gameId path string true "Game ID"
// @Success 200 {object} shared.Response{data=dto.ClaimRewardResponse}
// @Router /api/v1/games/{gameId}/challenge/claim [post]
func (h *GameHandler) ClaimReward(c *fiber.Ctx) error {
	result, err := h.gameSvc.ClaimReward(c.Params("gameId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Reward claimed", result)
}

// @Summary Reset Challenge
// @Description Force the active challenge back to idle
// @Tags challenge
// @Produce json
// @Param gameId path string true "Game ID"
// @Success 200 {object} shared.Response{data=dto.ChallengeStateResponse}
// @Router /api/v1/games/{gameId}/challenge/reset [post]
func (h *GameHandler) ResetChallenge(c *fiber.Ctx) error {
	state, err := h.gameSvc.ResetChallenge(c.Params("gameId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Challenge reset", state)
}

// @Summary Advance Turn
// @Description Pass the turn to the next player and start their challenge
// @Tags turns
// @Accept json
// @Produce json
// @Param gameId path string true "Game ID"
// @Param request body dto.NextPlayerRequest false "Advance reason"
// @Success 200 {object} shared.Response{data=dto.TurnAdvanceResponse}
// @Router /api/v1/games/{gameId}/turn/next [post]
func (h *GameHandler) NextPlayer(c *fiber.Ctx) error {
	var req dto.NextPlayerRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return shared.NewBadRequestError(err, "Invalid request body")
		}
		if err := dto.GetValidator().Struct(req); err != nil {
			return shared.NewBadRequestError(err, "Validation failed")
		}
	}

	reason := model.TurnAdvanceReason(req.Reason)
	if reason == "" {
		reason = model.TurnReasonCompleted
	}

	result, err := h.gameSvc.NextPlayer(c.Params("gameId"), reason)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Turn advanced", result)
}

// @Summary Set Active Player
// @Description Hand the turn to a specific player
// @Tags turns
// @Produce json
// @Param gameId path string true "Game ID"
// @Param playerId path string true "Player ID"
// @Success 200 {object} shared.Response{data=dto.GameStateResponse}
// @Router /api/v1/games/{gameId}/turn/player/{playerId} [post]
func (h *GameHandler) SetActivePlayer(c *fiber.Ctx) error {
	state, err := h.gameSvc.SetActivePlayer(c.Params("gameId"), c.Params("playerId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", state)
}

// @Summary Tick Turn Timer
// @Description Decrement the turn countdown by one second (host-driven clock)
// @Tags turns
// @Produce json
// @Param gameId path string true "Game ID"
// @Success 200 {object} shared.Response{data=dto.GameStateResponse}
// @Router /api/v1/games/{gameId}/tick [post]
func (h *GameHandler) Tick(c *fiber.Ctx) error {
	state, err := h.gameSvc.Tick(c.Params("gameId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", state)
}
