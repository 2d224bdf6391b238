package services

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/la-cortesia/cortesia_api/dto"
	"github.com/la-cortesia/cortesia_api/model"
)

func TestSelectTemplateHonorsFilters(t *testing.T) {
	svc := NewTemplateCatalog(rand.New(rand.NewSource(1)))

	for i := 0; i < 20; i++ {
		tpl := svc.SelectTemplate(dto.TemplateFilter{Tone: "caotico"})
		assert.Contains(t, tpl.Tones, model.ToneCaotico)
	}
}

func TestSelectTemplateBrandableOnly(t *testing.T) {
	svc := NewTemplateCatalog(rand.New(rand.NewSource(1)))

	for i := 0; i < 20; i++ {
		tpl := svc.SelectTemplate(dto.TemplateFilter{OnlyBrandable: true})
		assert.True(t, tpl.Brandable, tpl.Name)
	}
}

func TestSelectTemplateFallsBackOnNoMatch(t *testing.T) {
	svc := NewTemplateCatalog(rand.New(rand.NewSource(1)))

	// No template combines a group type with this subtype; selection must
	// still return something usable.
	tpl := svc.SelectTemplate(dto.TemplateFilter{Type: "group", Subtype: "horoscopos"})
	assert.NotEmpty(t, tpl.Name)
}

func TestTemplateToCardDeterministic(t *testing.T) {
	svc := NewTemplateCatalog(rand.New(rand.NewSource(1)))
	sponsor, ok := SponsorByID("mezcal-bruma")
	require.True(t, ok)

	tpl := svc.Templates()[0]
	a := svc.TemplateToCard(tpl, true, &sponsor)
	b := svc.TemplateToCard(tpl, true, &sponsor)

	assert.Equal(t, a.Title, b.Title)
	assert.Equal(t, a.ChallengeText, b.ChallengeText)
	assert.Equal(t, a.Reward, b.Reward)
	assert.Equal(t, a.RewardType, b.RewardType)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestTemplateToCardBrandingRequiresBrandableTemplate(t *testing.T) {
	svc := NewTemplateCatalog(rand.New(rand.NewSource(1)))
	sponsor, ok := SponsorByID("zerosum")
	require.True(t, ok)

	var plain model.CardTemplate
	for _, tpl := range svc.Templates() {
		if !tpl.Brandable {
			plain = tpl
			break
		}
	}
	require.NotEmpty(t, plain.Name)

	card := svc.TemplateToCard(plain, true, &sponsor)
	assert.Nil(t, card.BrandSponsor)
	assert.Equal(t, plain.Name, card.Title)
}

func TestTemplateToCardParsesSongReference(t *testing.T) {
	svc := NewTemplateCatalog(rand.New(rand.NewSource(1)))

	var withArtist, bareTitle model.CardTemplate
	for _, tpl := range svc.Templates() {
		switch tpl.Name {
		case "Karaoke del despecho":
			withArtist = tpl
		case "Minuto de silencio":
			bareTitle = tpl
		}
	}
	require.NotEmpty(t, withArtist.Name)
	require.NotEmpty(t, bareTitle.Name)

	card := svc.TemplateToCard(withArtist, false, nil)
	require.NotNil(t, card.SpotifySong)
	assert.Equal(t, "Shakira", card.SpotifySong.Artist)
	assert.Equal(t, "Ojos Así", card.SpotifySong.Title)

	card = svc.TemplateToCard(bareTitle, false, nil)
	require.NotNil(t, card.SpotifySong)
	assert.Empty(t, card.SpotifySong.Artist)
	assert.Equal(t, "Intro instrumental", card.SpotifySong.Title)
}

func TestSelectCardWithUnknownBrandFails(t *testing.T) {
	svc := NewTemplateCatalog(rand.New(rand.NewSource(1)))

	_, err := svc.SelectCard(dto.TemplateSelectRequest{Branded: true, BrandID: "marca-fantasma"})
	require.Error(t, err)
}

func TestSelectCardBranded(t *testing.T) {
	svc := NewTemplateCatalog(rand.New(rand.NewSource(1)))

	card, err := svc.SelectCard(dto.TemplateSelectRequest{Branded: true, BrandID: "taqueria-orbita"})
	require.NoError(t, err)

	require.NotNil(t, card.BrandSponsor)
	assert.Equal(t, "taqueria-orbita", card.BrandSponsor.ID)
	assert.Contains(t, card.Title, "presenta: ")
}

func TestTierForTone(t *testing.T) {
	assert.Equal(t, model.TierChaotic, tierForTone(model.ToneCaotico))
	assert.Equal(t, model.TierIntense, tierForTone(model.ToneVulnerable))
	assert.Equal(t, model.TierIntense, tierForTone(model.TonePicante))
	assert.Equal(t, model.TierMild, tierForTone(model.ToneNostalgico))
	assert.Equal(t, model.TierMild, tierForTone(model.ToneIronico))
}
