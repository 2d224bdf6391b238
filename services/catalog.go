// services/catalog.go
package services

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"

	"github.com/la-cortesia/cortesia_api/dto"
	"github.com/la-cortesia/cortesia_api/model"
	"github.com/la-cortesia/cortesia_api/shared"
)

// TemplateCatalogService holds the fixed card template catalog and turns
// templates into concrete cards. Only template selection is randomized;
// conversion itself is deterministic.
type TemplateCatalogService struct {
	context.DefaultService

	mu  sync.Mutex
	rng *rand.Rand
}

const CATALOG_SVC = "catalog_svc"

func (svc TemplateCatalogService) Id() string {
	return CATALOG_SVC
}

func (svc *TemplateCatalogService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *TemplateCatalogService) Start() error {
	if svc.rng == nil {
		svc.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return nil
}

// NewTemplateCatalog builds a catalog around the supplied random source.
func NewTemplateCatalog(rng *rand.Rand) *TemplateCatalogService {
	return &TemplateCatalogService{rng: rng}
}

var cardTemplates = []model.CardTemplate{
	{
		Name:               "Karaoke del despecho",
		Types:              []model.ChallengeType{model.ChallengeIndividual},
		Subtypes:           []model.CardCategory{model.CategoryDespecho},
		InteractionFormats: []model.InteractionFormat{model.FormatCantoMemoria},
		Tones:              []model.ToneSubtype{model.ToneCaotico, model.ToneIronico},
		MechanicText:       "Canta el coro de la canción que más te dolió este año.",
		SongReference:      "Shakira - Ojos Así",
		Brandable:          true,
		BrandMechanicText:  "Canta el coro de tu canción de despecho con un vaso de {marca} en la mano.",
		BrandRewardText:    "Ronda cortesía de {marca} si el grupo corea contigo.",
	},
	{
		Name:               "Retrato hablado",
		Types:              []model.ChallengeType{model.ChallengeDuet},
		Subtypes:           []model.CardCategory{model.CategoryRecuerdos},
		InteractionFormats: []model.InteractionFormat{model.FormatDescripcionImagen},
		Tones:              []model.ToneSubtype{model.ToneNostalgico},
		MechanicText:       "Describe una foto vieja de tu galería; tu pareja la dibuja sin verla.",
		SongReference:      "Natalia Lafourcade - Hasta la Raíz",
		Brandable:          false,
	},
	{
		Name:               "Tribunal de la mesa",
		Types:              []model.ChallengeType{model.ChallengeGroup},
		Subtypes:           []model.CardCategory{model.CategoryConfesiones, model.CategoryVerguenzas},
		InteractionFormats: []model.InteractionFormat{model.FormatDebateColectivo, model.FormatRondaGrupal},
		Tones:              []model.ToneSubtype{model.TonePicante, model.ToneCaotico},
		MechanicText:       "Confiesa algo y deja que la mesa vote si mereces perdón.",
		Brandable:          true,
		BrandMechanicText:  "Confiesa algo; si la mesa te perdona, {marca} invita la siguiente ronda.",
		BrandRewardText:    "Cupón sorpresa de {marca} para quien confiese mejor.",
	},
	{
		Name:               "Carta sin enviar",
		Types:              []model.ChallengeType{model.ChallengeIndividual},
		Subtypes:           []model.CardCategory{model.CategoryConfesiones, model.CategoryDespecho},
		InteractionFormats: []model.InteractionFormat{model.FormatConfesionDirecta},
		Tones:              []model.ToneSubtype{model.ToneVulnerable},
		MechanicText:       "Lee en voz alta el mensaje que escribiste y nunca enviaste.",
		SongReference:      "Soda Stereo - Té para Tres",
		Brandable:          false,
	},
	{
		Name:               "Estatua emocional",
		Types:              []model.ChallengeType{model.ChallengeIndividual, model.ChallengeDuet},
		Subtypes:           []model.CardCategory{model.CategoryVerguenzas},
		InteractionFormats: []model.InteractionFormat{model.FormatPoseDramatica},
		Tones:              []model.ToneSubtype{model.ToneIronico, model.TonePicante},
		MechanicText:       "Recrea en una pose congelada tu momento más vergonzoso del año.",
		Brandable:          true,
		BrandMechanicText:  "Recrea tu momento más vergonzoso; la mejor pose gana un detalle de {marca}.",
		BrandRewardText:    "Producto sorpresa de {marca}.",
	},
	{
		Name:               "Minuto de silencio",
		Types:              []model.ChallengeType{model.ChallengeGroup},
		Subtypes:           []model.CardCategory{model.CategoryGratitud},
		InteractionFormats: []model.InteractionFormat{model.FormatObservacionSilenciosa},
		Tones:              []model.ToneSubtype{model.ToneNostalgico, model.ToneVulnerable},
		MechanicText:       "Todos miran en silencio a la persona que más los ayudó este año.",
		SongReference:      "Intro instrumental",
		Brandable:          false,
	},
}

// Templates returns a copy of the full catalog.
func (svc *TemplateCatalogService) Templates() []model.CardTemplate {
	out := make([]model.CardTemplate, len(cardTemplates))
	copy(out, cardTemplates)
	return out
}

// SelectTemplate filters the catalog by set membership on each provided
// field and picks uniformly among matches. An empty result falls back to
// the full catalog (or the brandable subset) instead of failing.
func (svc *TemplateCatalogService) SelectTemplate(filters dto.TemplateFilter) model.CardTemplate {
	matches := make([]model.CardTemplate, 0, len(cardTemplates))
	for _, tpl := range cardTemplates {
		if templateMatches(tpl, filters) {
			matches = append(matches, tpl)
		}
	}

	if len(matches) == 0 {
		matches = svc.fallbackSet(filters.OnlyBrandable)
	}

	svc.mu.Lock()
	idx := svc.rng.Intn(len(matches))
	svc.mu.Unlock()

	return matches[idx]
}

func (svc *TemplateCatalogService) fallbackSet(onlyBrandable bool) []model.CardTemplate {
	if !onlyBrandable {
		return cardTemplates
	}
	brandable := make([]model.CardTemplate, 0, len(cardTemplates))
	for _, tpl := range cardTemplates {
		if tpl.Brandable {
			brandable = append(brandable, tpl)
		}
	}
	if len(brandable) == 0 {
		return cardTemplates
	}
	return brandable
}

func templateMatches(tpl model.CardTemplate, filters dto.TemplateFilter) bool {
	if filters.OnlyBrandable && !tpl.Brandable {
		return false
	}
	if filters.Type != "" && !containsChallengeType(tpl.Types, model.ChallengeType(filters.Type)) {
		return false
	}
	if filters.Subtype != "" && !containsCategory(tpl.Subtypes, model.CardCategory(filters.Subtype)) {
		return false
	}
	if filters.Tone != "" && !containsTone(tpl.Tones, model.ToneSubtype(filters.Tone)) {
		return false
	}
	return true
}

func containsChallengeType(set []model.ChallengeType, v model.ChallengeType) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsCategory(set []model.CardCategory, v model.CardCategory) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsTone(set []model.ToneSubtype, v model.ToneSubtype) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// TemplateToCard converts a template into a concrete card. Branding is
// applied only when the template is brandable AND branding was requested;
// otherwise it is silently ignored. Two calls with the same template and
// sponsor yield textually identical cards.
func (svc *TemplateCatalogService) TemplateToCard(tpl model.CardTemplate, isBranded bool, sponsor *model.BrandSponsor) model.Card {
	format := firstFormat(tpl.InteractionFormats)
	tone := firstTone(tpl.Tones)
	category := firstCategory(tpl.Subtypes)

	card := model.Card{
		Title:             tpl.Name,
		ChallengeText:     tpl.MechanicText,
		Category:          category,
		InteractionFormat: format,
		ToneSubtype:       tone,
		ChallengeType:     firstType(tpl.Types),
		EmotionalTier:     tierForTone(tone),
		VerificationType:  model.VerificationForFormat(format),
		SocialTriggerText: socialTriggerFor(category, tierForTone(tone)),
		Reward:            defaultReward,
		RewardType:        model.RewardText,
		SpotifySong:       parseSongReference(tpl.SongReference),
	}

	if isBranded && tpl.Brandable && sponsor != nil {
		card.BrandSponsor = sponsor
		card.Title = fmt.Sprintf("%s presenta: %s", sponsor.Name, tpl.Name)
		card.ChallengeText = strings.ReplaceAll(tpl.BrandMechanicText, "{marca}", sponsor.Name)
		card.Reward = model.Reward{
			Description: strings.ReplaceAll(tpl.BrandRewardText, "{marca}", sponsor.Name),
			Value:       sponsor.RewardValue,
		}
		card.RewardType = rewardTypeForIndustry(sponsor.Industry)
	}

	id, _ := uuid.NewV7()
	card.ID = id.String()

	return card
}

// SelectCard picks a template per the request filters and converts it,
// resolving the sponsor when branding is requested.
func (svc *TemplateCatalogService) SelectCard(req dto.TemplateSelectRequest) (model.Card, error) {
	filters := req.TemplateFilter
	if req.Branded {
		filters.OnlyBrandable = true
	}

	tpl := svc.SelectTemplate(filters)

	if !req.Branded {
		return svc.TemplateToCard(tpl, false, nil), nil
	}

	var sponsor model.BrandSponsor
	if req.BrandID != "" {
		s, ok := SponsorByID(req.BrandID)
		if !ok {
			return model.Card{}, shared.NewNotFoundError(nil, "Unknown brand sponsor")
		}
		sponsor = s
	} else {
		svc.mu.Lock()
		sponsor = RandomSponsor(svc.rng)
		svc.mu.Unlock()
	}

	return svc.TemplateToCard(tpl, true, &sponsor), nil
}

// Sponsors lists the brand sponsor pool.
func (svc *TemplateCatalogService) Sponsors() []model.BrandSponsor {
	return Sponsors()
}

// parseSongReference splits "Artist - Title" into structured fields. A
// reference without the separator is treated as a bare title.
func parseSongReference(ref string) *model.SpotifySong {
	if ref == "" {
		return nil
	}
	parts := strings.SplitN(ref, " - ", 2)
	if len(parts) == 1 {
		return &model.SpotifySong{Title: parts[0]}
	}
	return &model.SpotifySong{Artist: parts[0], Title: parts[1]}
}

func tierForTone(tone model.ToneSubtype) model.EmotionalTier {
	switch tone {
	case model.ToneCaotico:
		return model.TierChaotic
	case model.ToneVulnerable, model.TonePicante:
		return model.TierIntense
	default:
		return model.TierMild
	}
}

func firstFormat(set []model.InteractionFormat) model.InteractionFormat {
	if len(set) == 0 {
		return model.FormatConfesionDirecta
	}
	return set[0]
}

func firstTone(set []model.ToneSubtype) model.ToneSubtype {
	if len(set) == 0 {
		return model.ToneNostalgico
	}
	return set[0]
}

func firstCategory(set []model.CardCategory) model.CardCategory {
	if len(set) == 0 {
		return model.CategoryConfesiones
	}
	return set[0]
}

func firstType(set []model.ChallengeType) model.ChallengeType {
	if len(set) == 0 {
		return model.ChallengeIndividual
	}
	return set[0]
}
