package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveTier(t *testing.T) {
	cases := []struct {
		name           string
		completedCards int
		emotionalScore int
		want           PlayerTier
	}{
		{"advanced at both thresholds", 3, 60, PlayerTierAdvanced},
		{"score below advanced", 3, 59, PlayerTierIntermediate},
		{"intermediate at both thresholds", 1, 30, PlayerTierIntermediate},
		{"score below intermediate", 1, 29, PlayerTierBasic},
		{"high score without cards", 0, 100, PlayerTierBasic},
		{"fresh player", 0, 0, PlayerTierBasic},
		{"many cards high score", 10, 100, PlayerTierAdvanced},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveTier(tc.completedCards, tc.emotionalScore))
		})
	}
}

func TestPlayerTierRecomputed(t *testing.T) {
	p := &Player{CompletedCardIDs: []string{"a", "b", "c"}, EmotionalScore: 75}
	assert.Equal(t, PlayerTierAdvanced, p.Tier())

	p.EmotionalScore = 20
	assert.Equal(t, PlayerTierBasic, p.Tier())
}

func TestHasCompleted(t *testing.T) {
	p := &Player{CompletedCardIDs: []string{"c1", "c2"}}
	assert.True(t, p.HasCompleted("c2"))
	assert.False(t, p.HasCompleted("c3"))
}
