// model/event.go
package model

import "time"

// GameEvent is the unit recorded by the analytics event sink on every
// notable lifecycle transition.
type GameEvent struct {
	Type     string           `json:"type"`
	GameID   string           `json:"game_id,omitempty"`
	PlayerID string           `json:"player_id,omitempty"`
	CardID   string           `json:"card_id,omitempty"`
	Tier     EmotionalTier    `json:"tier,omitempty"`
	Method   VerificationType `json:"method,omitempty"`
	Value    float64          `json:"value,omitempty"`
	At       time.Time        `json:"at"`
}

const (
	EventChallengeStarted   = "challenge_started"
	EventChallengeCompleted = "challenge_completed"
	EventChallengeVerified  = "challenge_verified"
	EventChallengeFailed    = "challenge_failed"
	EventChallengeReset     = "challenge_reset"
	EventSocialTrigger      = "social_trigger"
	EventRewardClaimed      = "reward_claimed"
	EventTurnAdvanced       = "turn_advanced"
	EventCardGenerated      = "card_generated"
)
