package services

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/la-cortesia/cortesia_api/dto"
	"github.com/la-cortesia/cortesia_api/model"
)

func generateRequest() dto.GenerateCardRequest {
	return dto.GenerateCardRequest{
		Category:          "confesiones",
		InteractionFormat: "confesion_directa",
		ToneSubtype:       "picante",
		EmotionalTier:     "intense",
		ChallengeType:     "individual",
		ExperienceType:    "fiesta",
	}
}

func TestVerificationDerivedFromFormat(t *testing.T) {
	svc := NewCardGenerator(rand.New(rand.NewSource(1)))

	for _, format := range model.KnownFormats() {
		req := generateRequest()
		req.InteractionFormat = string(format)

		card := svc.GenerateCard(req)
		assert.Equal(t, model.VerificationForFormat(format), card.VerificationType, "format %s", format)
	}

	// Unknown formats degrade to self verification.
	req := generateRequest()
	req.InteractionFormat = "baile_imaginario"
	card := svc.GenerateCard(req)
	assert.Equal(t, model.VerifySelf, card.VerificationType)
}

func TestGenerationDeterministicForSeed(t *testing.T) {
	a := NewCardGenerator(rand.New(rand.NewSource(42)))
	b := NewCardGenerator(rand.New(rand.NewSource(42)))

	req := generateRequest()
	cardA := a.GenerateCard(req)
	cardB := b.GenerateCard(req)

	assert.Equal(t, cardA.ChallengeText, cardB.ChallengeText)
	assert.Equal(t, cardA.Title, cardB.Title)
	assert.Equal(t, cardA.SocialTriggerText, cardB.SocialTriggerText)
	assert.NotEqual(t, cardA.ID, cardB.ID)
}

func TestVerbRewritePerFormat(t *testing.T) {
	svc := NewCardGenerator(rand.New(rand.NewSource(1)))

	req := generateRequest()
	req.InteractionFormat = "canto_memoria"
	card := svc.GenerateCard(req)
	assert.True(t, strings.HasPrefix(card.ChallengeText, "Canta sobre"), card.ChallengeText)

	req.InteractionFormat = "debate_colectivo"
	card = svc.GenerateCard(req)
	assert.True(t, strings.HasPrefix(card.ChallengeText, "Defiende ante el grupo"), card.ChallengeText)
}

func TestToneTransforms(t *testing.T) {
	svc := NewCardGenerator(rand.New(rand.NewSource(1)))

	req := generateRequest()
	req.ToneSubtype = "caotico"
	card := svc.GenerateCard(req)
	assert.True(t, strings.HasSuffix(card.ChallengeText, "Hazlo de pie y sin bajar el volumen."), card.ChallengeText)

	req.ToneSubtype = "vulnerable"
	card = svc.GenerateCard(req)
	assert.True(t, strings.HasPrefix(card.ChallengeText, "Respira hondo antes de empezar: "), card.ChallengeText)

	req.ToneSubtype = "nostalgico"
	card = svc.GenerateCard(req)
	assert.True(t, strings.HasPrefix(card.ChallengeText, "Cuenta"), card.ChallengeText)
}

func TestSocialTriggerScalesWithTier(t *testing.T) {
	svc := NewCardGenerator(rand.New(rand.NewSource(1)))

	req := generateRequest()
	req.EmotionalTier = "mild"
	card := svc.GenerateCard(req)
	assert.Contains(t, card.SocialTriggerText, "una persona")

	req.EmotionalTier = "intense"
	card = svc.GenerateCard(req)
	assert.Contains(t, card.SocialTriggerText, "dos personas")

	req.EmotionalTier = "chaotic"
	card = svc.GenerateCard(req)
	assert.Contains(t, card.SocialTriggerText, "todo el grupo")
}

func TestUnknownCategoryFallsBack(t *testing.T) {
	svc := NewCardGenerator(rand.New(rand.NewSource(1)))

	req := generateRequest()
	req.Category = "horoscopos"
	card := svc.GenerateCard(req)

	assert.Equal(t, "La Cortesía", card.Title)
	assert.NotEmpty(t, card.ChallengeText)
	assert.NotEmpty(t, card.SocialTriggerText)
}

func TestRewardByExperienceAndTier(t *testing.T) {
	svc := NewCardGenerator(rand.New(rand.NewSource(1)))

	req := generateRequest()
	req.ExperienceType = "fiesta"
	req.EmotionalTier = "chaotic"
	card := svc.GenerateCard(req)
	assert.Equal(t, 30.0, card.Reward.Value)

	req.ExperienceType = "previa"
	req.EmotionalTier = "mild"
	card = svc.GenerateCard(req)
	assert.Equal(t, 10.0, card.Reward.Value)

	req.ExperienceType = "boda"
	card = svc.GenerateCard(req)
	assert.Equal(t, defaultReward, card.Reward)
}

func TestBrandingRewritesCard(t *testing.T) {
	svc := NewCardGenerator(rand.New(rand.NewSource(1)))

	req := generateRequest()
	req.BrandID = "zerosum"
	card := svc.GenerateCard(req)

	require.NotNil(t, card.BrandSponsor)
	assert.Equal(t, "zerosum", card.BrandSponsor.ID)
	assert.True(t, strings.HasPrefix(card.Title, card.BrandSponsor.Name+" presenta: "), card.Title)
	assert.Equal(t, model.RewardZeroSum, card.RewardType)
	assert.Equal(t, card.BrandSponsor.RewardValue, card.Reward.Value)
}

func TestUnknownBrandLeavesCardUnbranded(t *testing.T) {
	svc := NewCardGenerator(rand.New(rand.NewSource(1)))

	req := generateRequest()
	req.BrandID = "marca-fantasma"
	card := svc.GenerateCard(req)

	assert.Nil(t, card.BrandSponsor)
	assert.Equal(t, model.RewardText, card.RewardType)
}
