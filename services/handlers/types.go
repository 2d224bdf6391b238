package handlers

import (
	"mime/multipart"

	"github.com/la-cortesia/cortesia_api/dto"
	"github.com/la-cortesia/cortesia_api/model"
)

type CardGeneratorInterface interface {
	GenerateCard(req dto.GenerateCardRequest) model.Card
}

type TemplateCatalogInterface interface {
	Templates() []model.CardTemplate
	SelectCard(req dto.TemplateSelectRequest) (model.Card, error)
	Sponsors() []model.BrandSponsor
}

type GameSessionInterface interface {
	CreateGame(req dto.CreateGameRequest) (*dto.GameStateResponse, error)
	GetGame(gameID string) (*dto.GameStateResponse, error)
	RestoreGame(gameID string) (*dto.GameStateResponse, error)
	StartNextChallenge(gameID string) (*dto.ChallengeStateResponse, error)
	CompleteChallenge(gameID string) (*dto.VerifyResponse, error)
	VerifyChallenge(gameID string, req dto.VerifyRequest) (*dto.VerifyResponse, error)
	SubmitVote(gameID string, req dto.VoteRequest) (*dto.VoteResponse, error)
	RetryVerification(gameID string) (*dto.ChallengeStateResponse, error)
	ClaimReward(gameID string) (*dto.ClaimRewardResponse, error)
	ResetChallenge(gameID string) (*dto.ChallengeStateResponse, error)
	NextPlayer(gameID string, reason model.TurnAdvanceReason) (*dto.TurnAdvanceResponse, error)
	SetActivePlayer(gameID, playerID string) (*dto.GameStateResponse, error)
	Tick(gameID string) (*dto.GameStateResponse, error)
}

type EvidenceServiceInterface interface {
	UploadEvidence(gameID string, method model.VerificationType, fileHeader *multipart.FileHeader) (*dto.EvidenceResponse, error)
	GetEvidenceURL(objectName string) (string, error)
}

type AnalyticsServiceInterface interface {
	Summary() (*dto.AnalyticsSummaryResponse, error)
}

type RedeemableStoreInterface interface {
	GetRedeemable(id string) (*model.RedeemableCard, error)
	RedeemCard(id string) (bool, error)
}
