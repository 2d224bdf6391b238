// services/generator.go
package services

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/la-cortesia/cortesia_api/dto"
	"github.com/la-cortesia/cortesia_api/model"
)

// CardGeneratorService synthesizes a card's full payload from categorical
// inputs. Generation is deterministic for a given random source; the only
// randomness is the uniform pick among template candidates.
type CardGeneratorService struct {
	context.DefaultService

	mu  sync.Mutex
	rng *rand.Rand
}

const GENERATOR_SVC = "generator_svc"

func (svc CardGeneratorService) Id() string {
	return GENERATOR_SVC
}

func (svc *CardGeneratorService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *CardGeneratorService) Start() error {
	if svc.rng == nil {
		svc.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return nil
}

// NewCardGenerator builds a generator around the supplied random source.
// Tests pass a seeded source for reproducible output.
func NewCardGenerator(rng *rand.Rand) *CardGeneratorService {
	return &CardGeneratorService{rng: rng}
}

// ==================== CONTENT TABLES ====================

var challengeTexts = map[model.CardCategory][]string{
	model.CategoryConfesiones: {
		"Cuenta la confesión que nunca te atreviste a decir en voz alta.",
		"Cuenta qué mensaje borraste antes de enviarlo y a quién iba dirigido.",
		"Cuenta la mentira más grande que dijiste para caerle bien a alguien.",
	},
	model.CategoryRecuerdos: {
		"Cuenta el recuerdo que te hace reír aunque estés de mal humor.",
		"Cuenta cómo fue tu primer desamor, sin decir nombres.",
		"Cuenta qué canción te regresa a un momento exacto y por qué.",
	},
	model.CategoryDeseos: {
		"Cuenta qué harías mañana si nadie pudiera juzgarte.",
		"Cuenta el viaje que sigues posponiendo y qué te detiene.",
		"Cuenta qué le pedirías al grupo si supieras que van a decir que sí.",
	},
	model.CategoryVerguenzas: {
		"Cuenta tu momento más vergonzoso en una fiesta.",
		"Cuenta la peor excusa que inventaste para cancelar un plan.",
		"Cuenta qué foto tuya deberías borrar y todavía no borras.",
	},
	model.CategoryGratitud: {
		"Cuenta quién te salvó el año sin darse cuenta.",
		"Cuenta qué persona de esta mesa te hizo la semana más ligera.",
		"Cuenta el favor que nunca agradeciste como merecía.",
	},
	model.CategoryDespecho: {
		"Cuenta qué indirecta subiste a tus historias y para quién era.",
		"Cuenta cuánto tiempo seguiste revisando el perfil de tu ex.",
		"Cuenta qué playlist armaste por puro despecho.",
	},
}

// genericTexts is the fallback set when a category has no templates.
var genericTexts = []string{
	"Cuenta algo que nadie en el grupo sepa de ti.",
	"Cuenta la historia detrás de la última foto que guardaste.",
}

var cardTitles = map[model.CardCategory]string{
	model.CategoryConfesiones: "La Confesión",
	model.CategoryRecuerdos:   "El Recuerdo",
	model.CategoryDeseos:      "El Deseo",
	model.CategoryVerguenzas:  "La Vergüenza",
	model.CategoryGratitud:    "La Gratitud",
	model.CategoryDespecho:    "El Despecho",
}

const genericTitle = "La Cortesía"

// verbRewrites rewrites the leading verb of a challenge text per
// interaction format, e.g. a singing format turns "Cuenta" into
// "Canta sobre".
var verbRewrites = map[model.InteractionFormat]string{
	model.FormatCantoMemoria:      "Canta sobre",
	model.FormatImitacionVoz:      "Relata, imitando otra voz,",
	model.FormatDescripcionImagen: "Muestra en una foto",
	model.FormatPoseDramatica:     "Actúa",
	model.FormatDebateColectivo:   "Defiende ante el grupo",
	model.FormatRondaGrupal:       "Pregunta a la ronda",
}

const leadingVerb = "Cuenta"

// toneSuffixes and tonePrefixes are the deterministic intensity transforms
// for heightened tones. Applied after template selection, never
// re-randomized.
var toneSuffixes = map[model.ToneSubtype]string{
	model.ToneCaotico: " Hazlo de pie y sin bajar el volumen.",
}

var tonePrefixes = map[model.ToneSubtype]string{
	model.ToneVulnerable: "Respira hondo antes de empezar: ",
}

// socialTriggers holds the base trigger per category, written at the
// intense tier. Mild and chaotic tiers transform the participant counts.
var socialTriggers = map[model.CardCategory]string{
	model.CategoryConfesiones: "Si dos personas admiten que les pasó lo mismo, todos brindan.",
	model.CategoryRecuerdos:   "Si alguien adivina el año, elige quién sigue.",
	model.CategoryDeseos:      "Si dos personas comparten el mismo deseo, se vuelve pacto de grupo.",
	model.CategoryVerguenzas:  "Si alguien se sonroja, el grupo aplaude de pie.",
	model.CategoryGratitud:    "Si dos personas agradecen a la misma persona, esa persona pide una canción.",
	model.CategoryDespecho:    "Si alguien confiesa haber hecho lo mismo, suben una historia juntos.",
}

const genericTrigger = "Si dos personas levantan la mano, la ronda se repite."

var rewardTable = map[model.ExperienceType]map[model.EmotionalTier]model.Reward{
	model.ExperienceFiesta: {
		model.TierMild:    {Description: "El grupo brinda en tu honor", Value: 10},
		model.TierIntense: {Description: "Eliges la próxima canción de la noche", Value: 20},
		model.TierChaotic: {Description: "Shot ceremonial pagado por la mesa", Value: 30},
	},
	model.ExperienceIntimo: {
		model.TierMild:    {Description: "Una pregunta de vuelta a quien tú elijas", Value: 10},
		model.TierIntense: {Description: "El grupo responde tu pregunta más incómoda", Value: 20},
		model.TierChaotic: {Description: "Todos te deben una confesión pendiente", Value: 30},
	},
	model.ExperiencePrevia: {
		model.TierMild:    {Description: "Eliges el siguiente juego de la previa", Value: 10},
		model.TierIntense: {Description: "Alguien del grupo cumple un reto tuyo", Value: 20},
		model.TierChaotic: {Description: "Decides a dónde sigue la noche", Value: 30},
	},
}

var defaultReward = model.Reward{Description: "Un aplauso cerrado del grupo", Value: 10}

// ==================== GENERATION ====================

// GenerateCard maps a parameter tuple to a fully populated card. Lookup
// gaps degrade to the generic fallback sets; this never fails.
func (svc *CardGeneratorService) GenerateCard(req dto.GenerateCardRequest) model.Card {
	category := model.CardCategory(req.Category)
	format := model.InteractionFormat(req.InteractionFormat)
	tone := model.ToneSubtype(req.ToneSubtype)
	tier := model.EmotionalTier(req.EmotionalTier)
	experience := model.ExperienceType(req.ExperienceType)

	text := svc.pickChallengeText(category)
	text = rewriteVerb(text, format)
	text = applyToneTransform(text, tone)

	card := model.Card{
		Title:             titleFor(category),
		ChallengeText:     text,
		Category:          category,
		InteractionFormat: format,
		ToneSubtype:       tone,
		ChallengeType:     model.ChallengeType(req.ChallengeType),
		EmotionalTier:     tier,
		VerificationType:  model.VerificationForFormat(format),
		SocialTriggerText: socialTriggerFor(category, tier),
		Reward:            rewardFor(experience, tier),
		RewardType:        model.RewardText,
	}

	if req.BrandID != "" {
		svc.applyBranding(&card, req.BrandID)
	}

	id, _ := uuid.NewV7()
	card.ID = id.String()

	return card
}

func (svc *CardGeneratorService) pickChallengeText(category model.CardCategory) string {
	candidates, ok := challengeTexts[category]
	if !ok || len(candidates) == 0 {
		candidates = genericTexts
	}

	svc.mu.Lock()
	idx := svc.rng.Intn(len(candidates))
	svc.mu.Unlock()

	return candidates[idx]
}

func rewriteVerb(text string, format model.InteractionFormat) string {
	replacement, ok := verbRewrites[format]
	if !ok {
		return text
	}
	if !strings.HasPrefix(text, leadingVerb+" ") {
		return text
	}
	return replacement + strings.TrimPrefix(text, leadingVerb)
}

func applyToneTransform(text string, tone model.ToneSubtype) string {
	if prefix, ok := tonePrefixes[tone]; ok {
		text = prefix + text
	}
	if suffix, ok := toneSuffixes[tone]; ok {
		text = text + suffix
	}
	return text
}

func titleFor(category model.CardCategory) string {
	if title, ok := cardTitles[category]; ok {
		return title
	}
	return genericTitle
}

// socialTriggerFor relaxes the required participants on the mild tier and
// escalates them on the chaotic tier.
func socialTriggerFor(category model.CardCategory, tier model.EmotionalTier) string {
	trigger, ok := socialTriggers[category]
	if !ok {
		trigger = genericTrigger
	}

	switch tier {
	case model.TierMild:
		trigger = strings.ReplaceAll(trigger, "dos personas", "una persona")
	case model.TierChaotic:
		trigger = strings.ReplaceAll(trigger, "dos personas", "todo el grupo")
		trigger = strings.ReplaceAll(trigger, "alguien", "la mayoría del grupo")
	}

	return trigger
}

func rewardFor(experience model.ExperienceType, tier model.EmotionalTier) model.Reward {
	tiers, ok := rewardTable[experience]
	if !ok {
		return defaultReward
	}
	reward, ok := tiers[tier]
	if !ok {
		return defaultReward
	}
	return reward
}

// applyBranding rewrites title, challenge text and reward with the sponsor
// substitution. An unknown sponsor id leaves the card unbranded.
func (svc *CardGeneratorService) applyBranding(card *model.Card, brandID string) {
	sponsor, ok := SponsorByID(brandID)
	if !ok {
		log.WithField("brand_id", brandID).Warn("Unknown brand sponsor, emitting unbranded card")
		return
	}

	card.BrandSponsor = &sponsor
	card.Title = fmt.Sprintf("%s presenta: %s", sponsor.Name, card.Title)
	card.ChallengeText = strings.ReplaceAll(card.ChallengeText, "{marca}", sponsor.Name)
	card.Reward = model.Reward{
		Description: fmt.Sprintf("Premio cortesía de %s", sponsor.Name),
		Value:       sponsor.RewardValue,
	}
	card.RewardType = rewardTypeForIndustry(sponsor.Industry)
}

func rewardTypeForIndustry(industry string) model.RewardType {
	switch industry {
	case "bebidas", "alimentos":
		return model.RewardProduct
	case "fintech":
		return model.RewardZeroSum
	default:
		return model.RewardDiscount
	}
}
