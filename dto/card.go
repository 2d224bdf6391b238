package dto

// GenerateCardRequest drives the card generation engine. Every field maps
// to one of the card dimensions; BrandID is optional.
type GenerateCardRequest struct {
	Category          string `json:"category" validate:"required,oneof=confesiones recuerdos deseos verguenzas gratitud despecho"`
	InteractionFormat string `json:"interaction_format" validate:"required,oneof=confesion_directa canto_memoria imitacion_voz descripcion_imagen pose_dramatica ronda_grupal debate_colectivo observacion_silenciosa"`
	ToneSubtype       string `json:"tone_subtype" validate:"required,oneof=picante vulnerable caotico nostalgico ironico"`
	EmotionalTier     string `json:"emotional_tier" validate:"required,oneof=mild intense chaotic"`
	ChallengeType     string `json:"challenge_type" validate:"required,oneof=individual duet group"`
	ExperienceType    string `json:"experience_type" validate:"required,oneof=fiesta intimo previa"`
	BrandID           string `json:"brand_id,omitempty"`
}

// TemplateFilter narrows template selection. Empty fields match anything.
type TemplateFilter struct {
	Type          string `json:"type,omitempty" validate:"omitempty,oneof=individual duet group"`
	Subtype       string `json:"subtype,omitempty"`
	Tone          string `json:"tone,omitempty" validate:"omitempty,oneof=picante vulnerable caotico nostalgico ironico"`
	OnlyBrandable bool   `json:"only_brandable,omitempty"`
}

type TemplateSelectRequest struct {
	TemplateFilter
	Branded bool   `json:"branded,omitempty"`
	BrandID string `json:"brand_id,omitempty"`
}
