package dto

import (
	"github.com/la-cortesia/cortesia_api/model"
)

type CreateGameRequest struct {
	PlayerNames    []string `json:"player_names" validate:"required,min=1,max=12,dive,required,max=64"`
	ExperienceType string   `json:"experience_type" validate:"required,oneof=fiesta intimo previa"`
}

type VerifyRequest struct {
	Method     string `json:"method" validate:"required,oneof=self photo audio group none"`
	PayloadRef string `json:"payload_ref,omitempty"`
}

type VoteRequest struct {
	PlayerID string `json:"player_id" validate:"required"`
}

type NextPlayerRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,oneof=completed timeout skipped"`
}

type PlayerResponse struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Tier           model.PlayerTier `json:"tier"`
	EmotionalScore int              `json:"emotional_score"`
	CompletedCards int              `json:"completed_cards"`
	CardsRemaining int              `json:"cards_remaining"`
	CurrentTurn    bool             `json:"current_turn"`
}

type GameStateResponse struct {
	ID                 string                 `json:"id"`
	ExperienceType     string                 `json:"experience_type"`
	Players            []PlayerResponse       `json:"players"`
	CurrentPlayerIndex int                    `json:"current_player_index"`
	RemainingSeconds   int                    `json:"remaining_seconds"`
	TimerActive        bool                   `json:"timer_active"`
	Session            model.ChallengeSession `json:"session"`
}

type ChallengeStateResponse struct {
	Session model.ChallengeSession `json:"session"`
	Card    *model.Card            `json:"card,omitempty"`
}

type VerifyResponse struct {
	Status                 model.ChallengeStatus `json:"status"`
	Verified               bool                  `json:"verified"`
	SocialTriggerActivated bool                  `json:"social_trigger_activated"`
	FailureReason          string                `json:"failure_reason,omitempty"`
	EmotionalIntensity     int                   `json:"emotional_intensity"`
	EmotionalScore         int                   `json:"emotional_score"`
	PlayerTier             model.PlayerTier      `json:"player_tier"`
}

type VoteResponse struct {
	VotesReceived int  `json:"votes_received"`
	Threshold     int  `json:"threshold"`
	ThresholdMet  bool `json:"threshold_met"`
}

type ClaimRewardResponse struct {
	Status            model.ChallengeStatus `json:"status"`
	CardID            string                `json:"card_id"`
	RewardDescription string                `json:"reward_description"`
	RewardValue       float64               `json:"reward_value"`
	Sticker           string                `json:"sticker"`
	PlayerTier        model.PlayerTier      `json:"player_tier"`
	Redeemable        *model.RedeemableCard `json:"redeemable,omitempty"`
}

type TurnAdvanceResponse struct {
	Reason             model.TurnAdvanceReason `json:"reason"`
	CurrentPlayerIndex int                     `json:"current_player_index"`
	CurrentPlayerID    string                  `json:"current_player_id"`
	RemainingSeconds   int                     `json:"remaining_seconds"`
	NoCardsAvailable   bool                    `json:"no_cards_available,omitempty"`
	Session            *model.ChallengeSession `json:"session,omitempty"`
	Card               *model.Card             `json:"card,omitempty"`
}
