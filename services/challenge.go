// services/challenge.go - challenge lifecycle state machine
package services

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/la-cortesia/cortesia_api/model"
	"github.com/la-cortesia/cortesia_api/shared"
)

// EventSink receives analytics events from the state machine. The sink is
// injected by the owner; the machine never talks to a global collector.
type EventSink interface {
	RecordEvent(event model.GameEvent)
}

// InvalidTransitionError marks a lifecycle call made from the wrong state.
// These are programming errors on the caller's side, never expected
// gameplay outcomes.
type InvalidTransitionError struct {
	Op   string
	From model.ChallengeStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s called while %s", e.Op, e.From)
}

// VerifyOutcome is the side-effect payload of a verification attempt.
type VerifyOutcome struct {
	Status                 model.ChallengeStatus `json:"status"`
	Verified               bool                  `json:"verified"`
	SocialTriggerActivated bool                  `json:"social_trigger_activated"`
	FailureReason          string                `json:"failure_reason,omitempty"`
}

// ClaimResult is what a player walks away with after claiming a reward.
type ClaimResult struct {
	Status            model.ChallengeStatus `json:"status"`
	CardID            string                `json:"card_id"`
	RewardDescription string                `json:"reward_description"`
	RewardValue       float64               `json:"reward_value"`
	Sticker           string                `json:"sticker"`
	Redeemable        *model.RedeemableCard `json:"redeemable,omitempty"`
}

// ChallengeMachine owns one challenge's lifecycle:
//
//	idle -> in_progress -> verifying -> completed | failed -> idle
//
// It is not safe for concurrent use by itself; the orchestrator serializes
// access per game.
type ChallengeMachine struct {
	session model.ChallengeSession
	voters  map[string]bool
	rng     *rand.Rand
	sink    EventSink
	now     func() time.Time

	gameID   string
	playerID string
}

// NewChallengeMachine builds an idle machine. A nil sink disables event
// recording.
func NewChallengeMachine(rng *rand.Rand, sink EventSink) *ChallengeMachine {
	return &ChallengeMachine{
		session: model.ChallengeSession{Status: model.StatusIdle},
		voters:  map[string]bool{},
		rng:     rng,
		sink:    sink,
		now:     time.Now,
	}
}

// Bind attaches game/player identifiers to emitted events.
func (m *ChallengeMachine) Bind(gameID, playerID string) {
	m.gameID = gameID
	m.playerID = playerID
}

// Session returns a copy of the current session state.
func (m *ChallengeMachine) Session() model.ChallengeSession {
	return m.session
}

// RestoreSession replaces the machine state with a persisted snapshot.
func (m *ChallengeMachine) RestoreSession(session model.ChallengeSession) {
	m.session = session
	m.voters = map[string]bool{}
}

func (m *ChallengeMachine) emit(eventType string, value float64) {
	if m.sink == nil {
		return
	}
	event := model.GameEvent{
		Type:     eventType,
		GameID:   m.gameID,
		PlayerID: m.playerID,
		At:       m.now(),
		Value:    value,
	}
	if m.session.ActiveCard != nil {
		event.CardID = m.session.ActiveCard.ID
		event.Tier = m.session.ActiveCard.EmotionalTier
		event.Method = m.session.VerificationMethod
	}
	m.sink.RecordEvent(event)
}

// Start begins a new challenge. Only legal from idle; starting over an
// active challenge must surface as an error, never silently overwrite.
func (m *ChallengeMachine) Start(card model.Card) (model.ChallengeSession, error) {
	if m.session.Status != model.StatusIdle {
		return m.session, &InvalidTransitionError{Op: "start", From: m.session.Status}
	}

	m.session = model.ChallengeSession{
		Status:             model.StatusInProgress,
		ActiveCard:         &card,
		VerificationMethod: card.VerificationType,
		EmotionalIntensity: 0,
	}
	m.voters = map[string]bool{}

	m.emit(model.EventChallengeStarted, 0)
	return m.session, nil
}

// Complete marks the challenge performed and accumulates emotional
// intensity by tier. Trivial verification methods (self, none) verify
// synchronously; everything else waits in verifying.
func (m *ChallengeMachine) Complete() (VerifyOutcome, error) {
	if m.session.Status != model.StatusInProgress {
		return VerifyOutcome{Status: m.session.Status}, &InvalidTransitionError{Op: "complete", From: m.session.Status}
	}

	m.session.EmotionalIntensity += intensityDelta(m.session.ActiveCard.EmotionalTier)
	if m.session.EmotionalIntensity > shared.IntensityMax {
		m.session.EmotionalIntensity = shared.IntensityMax
	}

	m.session.Status = model.StatusVerifying
	m.emit(model.EventChallengeCompleted, float64(m.session.EmotionalIntensity))

	switch m.session.VerificationMethod {
	case model.VerifySelf, model.VerifyNone:
		return m.verifyInternal(m.session.VerificationMethod, "self-verified")
	}

	return VerifyOutcome{Status: m.session.Status}, nil
}

// Verify resolves the pending verification. Missing payloads and
// insufficient votes are expected failures represented by the failed
// state, not errors.
func (m *ChallengeMachine) Verify(method model.VerificationType, payloadRef string) (VerifyOutcome, error) {
	if m.session.Status != model.StatusVerifying {
		return VerifyOutcome{Status: m.session.Status}, &InvalidTransitionError{Op: "verify", From: m.session.Status}
	}
	return m.verifyInternal(method, payloadRef)
}

func (m *ChallengeMachine) verifyInternal(method model.VerificationType, payloadRef string) (VerifyOutcome, error) {
	var ok bool
	var reason string

	switch method {
	case model.VerifySelf, model.VerifyNone:
		ok = true
	case model.VerifyPhoto, model.VerifyAudio:
		ok = payloadRef != ""
		if !ok {
			reason = "verification payload missing"
		}
	case model.VerifyGroup:
		ok = m.session.VotesReceived >= shared.GroupVoteThreshold
		if !ok {
			reason = fmt.Sprintf("insufficient votes: %d of %d", m.session.VotesReceived, shared.GroupVoteThreshold)
		}
	default:
		ok = false
		reason = "unknown verification method"
	}

	if !ok {
		m.session.Status = model.StatusFailed
		m.session.LastError = reason
		m.emit(model.EventChallengeFailed, 0)
		return VerifyOutcome{Status: m.session.Status, FailureReason: reason}, nil
	}

	m.session.SocialTriggerActivated = m.rng.Float64() < shared.SocialTriggerChance
	m.session.Status = model.StatusCompleted
	m.session.LastError = ""

	m.emit(model.EventChallengeVerified, 0)
	if m.session.SocialTriggerActivated {
		m.emit(model.EventSocialTrigger, 0)
	}

	return VerifyOutcome{
		Status:                 m.session.Status,
		Verified:               true,
		SocialTriggerActivated: m.session.SocialTriggerActivated,
	}, nil
}

// SubmitVote registers one group-verification vote. Votes are deduplicated
// per voter; the count survives a failed verify so the group can keep
// collecting and retry.
func (m *ChallengeMachine) SubmitVote(voterID string) (int, error) {
	if m.session.Status != model.StatusInProgress && m.session.Status != model.StatusVerifying &&
		m.session.Status != model.StatusFailed {
		return m.session.VotesReceived, &InvalidTransitionError{Op: "vote", From: m.session.Status}
	}

	if !m.voters[voterID] {
		m.voters[voterID] = true
		m.session.VotesReceived++
	}
	return m.session.VotesReceived, nil
}

// Retry moves a failed verification back to verifying so the caller can
// supply a new payload or more votes.
func (m *ChallengeMachine) Retry() error {
	if m.session.Status != model.StatusFailed {
		return &InvalidTransitionError{Op: "retry", From: m.session.Status}
	}
	m.session.Status = model.StatusVerifying
	m.session.LastError = ""
	return nil
}

// ClaimReward computes the final reward, applying the social-trigger
// multiplier, and returns the machine to idle.
func (m *ChallengeMachine) ClaimReward(cardholderName string) (ClaimResult, error) {
	if m.session.Status != model.StatusCompleted {
		return ClaimResult{Status: m.session.Status}, &InvalidTransitionError{Op: "claim_reward", From: m.session.Status}
	}

	card := m.session.ActiveCard
	value := card.Reward.Value
	if m.session.SocialTriggerActivated {
		value *= shared.SocialRewardMultiplier
	}

	result := ClaimResult{
		CardID:            card.ID,
		RewardDescription: card.Reward.Description,
		RewardValue:       value,
		Sticker:           fmt.Sprintf("logro_%s_%s", card.Category, card.EmotionalTier),
	}

	if card.RewardType == model.RewardZeroSum {
		result.Redeemable = m.buildRedeemable(card, value, cardholderName)
	}

	m.emit(model.EventRewardClaimed, value)

	m.session = model.ChallengeSession{Status: model.StatusIdle}
	m.voters = map[string]bool{}
	result.Status = m.session.Status

	return result, nil
}

func (m *ChallengeMachine) buildRedeemable(card *model.Card, value float64, cardholderName string) *model.RedeemableCard {
	brand := "La Cortesía"
	if card.BrandSponsor != nil {
		brand = card.BrandSponsor.Name
	}

	id, _ := uuid.NewV7()
	now := m.now()

	return &model.RedeemableCard{
		ID:             id.String(),
		Brand:          brand,
		Value:          value,
		ExpiresAt:      now.AddDate(0, 0, shared.RedeemableValidityDays),
		Status:         model.RedeemableStatusActive,
		CardNumber:     fmt.Sprintf("ZS-%08d-%04d", m.rng.Intn(100000000), m.rng.Intn(10000)),
		CardholderName: cardholderName,
		CreatedAt:      now,
	}
}

// Reset is the universal cancellation primitive: valid from any state,
// discards the active card and accumulated intensity, awards nothing.
func (m *ChallengeMachine) Reset() model.ChallengeSession {
	if m.session.Status != model.StatusIdle {
		m.emit(model.EventChallengeReset, 0)
	}
	m.session = model.ChallengeSession{Status: model.StatusIdle}
	m.voters = map[string]bool{}
	return m.session
}

func intensityDelta(tier model.EmotionalTier) int {
	switch tier {
	case model.TierIntense:
		return shared.IntensityDeltaIntense
	case model.TierChaotic:
		return shared.IntensityDeltaChaotic
	default:
		return shared.IntensityDeltaMild
	}
}

func scoreDelta(tier model.EmotionalTier) int {
	switch tier {
	case model.TierIntense:
		return shared.ScoreDeltaIntense
	case model.TierChaotic:
		return shared.ScoreDeltaChaotic
	default:
		return shared.ScoreDeltaMild
	}
}
