// model/card.go
package model

import "time"

// CardCategory is the emotional theme a challenge draws from.
type CardCategory string

const (
	CategoryConfesiones CardCategory = "confesiones"
	CategoryRecuerdos   CardCategory = "recuerdos"
	CategoryDeseos      CardCategory = "deseos"
	CategoryVerguenzas  CardCategory = "verguenzas"
	CategoryGratitud    CardCategory = "gratitud"
	CategoryDespecho    CardCategory = "despecho"
)

// InteractionFormat is how the player performs the challenge. The
// verification method is derived from it and never changes afterwards.
type InteractionFormat string

const (
	FormatConfesionDirecta      InteractionFormat = "confesion_directa"
	FormatCantoMemoria          InteractionFormat = "canto_memoria"
	FormatImitacionVoz          InteractionFormat = "imitacion_voz"
	FormatDescripcionImagen     InteractionFormat = "descripcion_imagen"
	FormatPoseDramatica         InteractionFormat = "pose_dramatica"
	FormatRondaGrupal           InteractionFormat = "ronda_grupal"
	FormatDebateColectivo       InteractionFormat = "debate_colectivo"
	FormatObservacionSilenciosa InteractionFormat = "observacion_silenciosa"
)

type ToneSubtype string

const (
	TonePicante    ToneSubtype = "picante"
	ToneVulnerable ToneSubtype = "vulnerable"
	ToneCaotico    ToneSubtype = "caotico"
	ToneNostalgico ToneSubtype = "nostalgico"
	ToneIronico    ToneSubtype = "ironico"
)

type ChallengeType string

const (
	ChallengeIndividual ChallengeType = "individual"
	ChallengeDuet       ChallengeType = "duet"
	ChallengeGroup      ChallengeType = "group"
)

type EmotionalTier string

const (
	TierMild    EmotionalTier = "mild"
	TierIntense EmotionalTier = "intense"
	TierChaotic EmotionalTier = "chaotic"
)

type VerificationType string

const (
	VerifySelf  VerificationType = "self"
	VerifyPhoto VerificationType = "photo"
	VerifyAudio VerificationType = "audio"
	VerifyGroup VerificationType = "group"
	VerifyNone  VerificationType = "none"
)

type ExperienceType string

const (
	ExperienceFiesta ExperienceType = "fiesta"
	ExperienceIntimo ExperienceType = "intimo"
	ExperiencePrevia ExperienceType = "previa"
)

type RewardType string

const (
	RewardText     RewardType = "text"
	RewardDiscount RewardType = "discount"
	RewardProduct  RewardType = "product"
	RewardZeroSum  RewardType = "zerosum_card"
)

// verificationByFormat is the single source of truth for deriving a card's
// verification method from its interaction format.
var verificationByFormat = map[InteractionFormat]VerificationType{
	FormatConfesionDirecta:      VerifySelf,
	FormatCantoMemoria:          VerifyAudio,
	FormatImitacionVoz:          VerifyAudio,
	FormatDescripcionImagen:     VerifyPhoto,
	FormatPoseDramatica:         VerifyPhoto,
	FormatRondaGrupal:           VerifyGroup,
	FormatDebateColectivo:       VerifyGroup,
	FormatObservacionSilenciosa: VerifyNone,
}

// VerificationForFormat returns the verification method a format demands.
// Unknown formats fall back to self verification so content generation
// never produces an unplayable card.
func VerificationForFormat(format InteractionFormat) VerificationType {
	if v, ok := verificationByFormat[format]; ok {
		return v
	}
	return VerifySelf
}

// KnownFormats lists every interaction format the generator understands.
func KnownFormats() []InteractionFormat {
	formats := make([]InteractionFormat, 0, len(verificationByFormat))
	for f := range verificationByFormat {
		formats = append(formats, f)
	}
	return formats
}

type SpotifySong struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

type Reward struct {
	Description string  `json:"description"`
	Value       float64 `json:"value"`
}

// BrandSponsor is read-only reference data used to brand cards at
// generation time.
type BrandSponsor struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	LogoRef     string  `json:"logo_ref"`
	Industry    string  `json:"industry"`
	RewardValue float64 `json:"reward_value"`
}

// Card is a single challenge unit. Immutable once generated.
type Card struct {
	ID                string            `json:"id"`
	Title             string            `json:"title"`
	ChallengeText     string            `json:"challenge_text"`
	Category          CardCategory      `json:"category"`
	InteractionFormat InteractionFormat `json:"interaction_format"`
	ToneSubtype       ToneSubtype       `json:"tone_subtype"`
	ChallengeType     ChallengeType     `json:"challenge_type"`
	EmotionalTier     EmotionalTier     `json:"emotional_tier"`
	VerificationType  VerificationType  `json:"verification_type"`
	SocialTriggerText string            `json:"social_trigger_text"`
	Reward            Reward            `json:"reward"`
	RewardType        RewardType        `json:"reward_type"`
	BrandSponsor      *BrandSponsor     `json:"brand_sponsor,omitempty"`
	SpotifySong       *SpotifySong      `json:"spotify_song,omitempty"`
}

// CardTemplate is a fixed catalog entry convertible into a concrete card.
type CardTemplate struct {
	Name               string              `json:"name"`
	Types              []ChallengeType     `json:"types"`
	Subtypes           []CardCategory      `json:"subtypes"`
	InteractionFormats []InteractionFormat `json:"interaction_formats"`
	Tones              []ToneSubtype       `json:"tones"`
	MechanicText       string              `json:"mechanic_text"`
	SongReference      string              `json:"song_reference,omitempty"`
	Brandable          bool                `json:"brandable"`
	BrandMechanicText  string              `json:"brand_mechanic_text,omitempty"`
	BrandRewardText    string              `json:"brand_reward_text,omitempty"`
}

// RedeemableCard is the ephemeral monetary reward record created when a
// zerosum_card reward is claimed. Persisted so it can be looked up until
// it expires.
type RedeemableCard struct {
	ID             string    `json:"id" gorm:"primaryKey;type:text;not null"`
	Brand          string    `json:"brand" gorm:"not null"`
	Value          float64   `json:"value" gorm:"not null"`
	ExpiresAt      time.Time `json:"expires_at" gorm:"not null;index"`
	Status         string    `json:"status" gorm:"not null;size:20"`
	CardNumber     string    `json:"card_number" gorm:"not null;size:20"`
	CardholderName string    `json:"cardholder_name" gorm:"not null"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

const (
	RedeemableStatusActive   = "active"
	RedeemableStatusRedeemed = "redeemed"
	RedeemableStatusExpired  = "expired"
)
