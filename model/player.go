// model/player.go
package model

import "github.com/la-cortesia/cortesia_api/shared"

type PlayerTier string

const (
	PlayerTierBasic        PlayerTier = "basic"
	PlayerTierIntermediate PlayerTier = "intermediate"
	PlayerTierAdvanced     PlayerTier = "advanced"
)

// Player is one participant in a game session. Tier is never stored;
// it is recomputed from completion count and emotional score.
type Player struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	CompletedCardIDs []string `json:"completed_card_ids"`
	EmotionalScore   int      `json:"emotional_score"`
	CurrentTurn      bool     `json:"current_turn"`
	AssignedCards    []Card   `json:"assigned_cards"`
}

// Tier derives the player's progression tier. Pure function of the
// completed card count and emotional score.
func (p *Player) Tier() PlayerTier {
	return DeriveTier(len(p.CompletedCardIDs), p.EmotionalScore)
}

func DeriveTier(completedCards, emotionalScore int) PlayerTier {
	switch {
	case completedCards >= shared.TierAdvancedMinCards && emotionalScore >= shared.TierAdvancedMinScore:
		return PlayerTierAdvanced
	case completedCards >= shared.TierIntermediateMinCards && emotionalScore >= shared.TierIntermediateMinScore:
		return PlayerTierIntermediate
	default:
		return PlayerTierBasic
	}
}

// HasCompleted reports whether the player already completed the given card.
func (p *Player) HasCompleted(cardID string) bool {
	for _, id := range p.CompletedCardIDs {
		if id == cardID {
			return true
		}
	}
	return false
}
