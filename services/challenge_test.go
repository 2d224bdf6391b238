package services

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/la-cortesia/cortesia_api/model"
	"github.com/la-cortesia/cortesia_api/shared"
)

// fixedSource pins math/rand output so social trigger rolls are
// deterministic in tests.
type fixedSource struct{ v int64 }

func (s fixedSource) Int63() int64 { return s.v }
func (s fixedSource) Seed(int64)   {}

// triggerRand always rolls below the social trigger chance.
func triggerRand() *rand.Rand {
	return rand.New(fixedSource{v: 0})
}

// noTriggerRand rolls exactly 0.5, which never activates the trigger.
func noTriggerRand() *rand.Rand {
	return rand.New(fixedSource{v: 1 << 62})
}

func testCard(tier model.EmotionalTier, format model.InteractionFormat) model.Card {
	return model.Card{
		ID:                "card-1",
		Title:             "La Confesión",
		ChallengeText:     "Cuenta la confesión que nunca te atreviste a decir en voz alta.",
		Category:          model.CategoryConfesiones,
		InteractionFormat: format,
		ToneSubtype:       model.TonePicante,
		ChallengeType:     model.ChallengeIndividual,
		EmotionalTier:     tier,
		VerificationType:  model.VerificationForFormat(format),
		Reward:            model.Reward{Description: "El grupo brinda en tu honor", Value: 20},
		RewardType:        model.RewardText,
	}
}

func TestStartRequiresIdle(t *testing.T) {
	m := NewChallengeMachine(noTriggerRand(), nil)

	_, err := m.Start(testCard(model.TierMild, model.FormatConfesionDirecta))
	require.NoError(t, err)

	_, err = m.Start(testCard(model.TierMild, model.FormatConfesionDirecta))
	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, model.StatusInProgress, transitionErr.From)
}

func TestCompleteRequiresInProgress(t *testing.T) {
	m := NewChallengeMachine(noTriggerRand(), nil)

	_, err := m.Complete()
	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, model.StatusIdle, transitionErr.From)
}

func TestSelfVerificationCompletesSynchronously(t *testing.T) {
	m := NewChallengeMachine(noTriggerRand(), nil)

	_, err := m.Start(testCard(model.TierMild, model.FormatConfesionDirecta))
	require.NoError(t, err)

	outcome, err := m.Complete()
	require.NoError(t, err)

	assert.True(t, outcome.Verified)
	assert.Equal(t, model.StatusCompleted, outcome.Status)
	assert.Equal(t, model.StatusCompleted, m.Session().Status)
}

func TestIntensityAccumulatesByTier(t *testing.T) {
	cases := []struct {
		tier model.EmotionalTier
		want int
	}{
		{model.TierMild, 10},
		{model.TierIntense, 20},
		{model.TierChaotic, 30},
	}

	for _, tc := range cases {
		t.Run(string(tc.tier), func(t *testing.T) {
			m := NewChallengeMachine(noTriggerRand(), nil)

			_, err := m.Start(testCard(tc.tier, model.FormatConfesionDirecta))
			require.NoError(t, err)

			_, err = m.Complete()
			require.NoError(t, err)

			assert.Equal(t, tc.want, m.Session().EmotionalIntensity)
		})
	}
}

func TestIntensityCapped(t *testing.T) {
	m := NewChallengeMachine(noTriggerRand(), nil)

	card := testCard(model.TierChaotic, model.FormatConfesionDirecta)
	m.RestoreSession(model.ChallengeSession{
		Status:             model.StatusInProgress,
		ActiveCard:         &card,
		VerificationMethod: card.VerificationType,
		EmotionalIntensity: 90,
	})

	_, err := m.Complete()
	require.NoError(t, err)

	assert.Equal(t, shared.IntensityMax, m.Session().EmotionalIntensity)
}

func TestPhotoVerificationRequiresPayload(t *testing.T) {
	m := NewChallengeMachine(triggerRand(), nil)

	_, err := m.Start(testCard(model.TierMild, model.FormatDescripcionImagen))
	require.NoError(t, err)

	outcome, err := m.Complete()
	require.NoError(t, err)
	assert.Equal(t, model.StatusVerifying, outcome.Status)

	outcome, err = m.Verify(model.VerifyPhoto, "")
	require.NoError(t, err)
	assert.False(t, outcome.Verified)
	assert.Equal(t, model.StatusFailed, outcome.Status)
	assert.NotEmpty(t, outcome.FailureReason)

	require.NoError(t, m.Retry())

	outcome, err = m.Verify(model.VerifyPhoto, "evidence/g1/photo.jpg")
	require.NoError(t, err)
	assert.True(t, outcome.Verified)
	assert.Equal(t, model.StatusCompleted, outcome.Status)
}

func TestGroupVoteThreshold(t *testing.T) {
	m := NewChallengeMachine(triggerRand(), nil)

	_, err := m.Start(testCard(model.TierIntense, model.FormatRondaGrupal))
	require.NoError(t, err)

	_, err = m.Complete()
	require.NoError(t, err)

	votes, err := m.SubmitVote("p1")
	require.NoError(t, err)
	assert.Equal(t, 1, votes)

	// Duplicate voters are not counted twice.
	votes, err = m.SubmitVote("p1")
	require.NoError(t, err)
	assert.Equal(t, 1, votes)

	_, err = m.SubmitVote("p2")
	require.NoError(t, err)

	outcome, err := m.Verify(model.VerifyGroup, "")
	require.NoError(t, err)
	assert.False(t, outcome.Verified)
	assert.Equal(t, model.StatusFailed, outcome.Status)

	// Votes survive the failure; a third vote and a retry succeed.
	_, err = m.SubmitVote("p3")
	require.NoError(t, err)
	require.NoError(t, m.Retry())

	outcome, err = m.Verify(model.VerifyGroup, "")
	require.NoError(t, err)
	assert.True(t, outcome.Verified)
}

func TestClaimRewardAppliesSocialMultiplier(t *testing.T) {
	m := NewChallengeMachine(triggerRand(), nil)

	_, err := m.Start(testCard(model.TierMild, model.FormatConfesionDirecta))
	require.NoError(t, err)

	outcome, err := m.Complete()
	require.NoError(t, err)
	require.True(t, outcome.Verified)
	require.True(t, outcome.SocialTriggerActivated)

	result, err := m.ClaimReward("Ana")
	require.NoError(t, err)

	assert.Equal(t, 20*shared.SocialRewardMultiplier, result.RewardValue)
	assert.Equal(t, "logro_confesiones_mild", result.Sticker)
	assert.Equal(t, model.StatusIdle, result.Status)
	assert.Nil(t, result.Redeemable)

	// Machine is reusable immediately.
	_, err = m.Start(testCard(model.TierMild, model.FormatConfesionDirecta))
	require.NoError(t, err)
}

func TestClaimRewardWithoutTriggerKeepsBaseValue(t *testing.T) {
	m := NewChallengeMachine(noTriggerRand(), nil)

	_, err := m.Start(testCard(model.TierMild, model.FormatConfesionDirecta))
	require.NoError(t, err)

	outcome, err := m.Complete()
	require.NoError(t, err)
	require.False(t, outcome.SocialTriggerActivated)

	result, err := m.ClaimReward("Ana")
	require.NoError(t, err)
	assert.Equal(t, 20.0, result.RewardValue)
}

func TestClaimZeroSumBuildsRedeemable(t *testing.T) {
	m := NewChallengeMachine(noTriggerRand(), nil)

	card := testCard(model.TierIntense, model.FormatConfesionDirecta)
	card.RewardType = model.RewardZeroSum
	card.BrandSponsor = &model.BrandSponsor{ID: "zerosum", Name: "ZeroSum", Industry: "fintech", RewardValue: 150}
	card.Reward = model.Reward{Description: "Tarjeta regalo ZeroSum", Value: 150}

	_, err := m.Start(card)
	require.NoError(t, err)
	_, err = m.Complete()
	require.NoError(t, err)

	result, err := m.ClaimReward("Luis")
	require.NoError(t, err)

	require.NotNil(t, result.Redeemable)
	assert.Equal(t, "ZeroSum", result.Redeemable.Brand)
	assert.Equal(t, 150.0, result.Redeemable.Value)
	assert.Equal(t, model.RedeemableStatusActive, result.Redeemable.Status)
	assert.Equal(t, "Luis", result.Redeemable.CardholderName)
	assert.Regexp(t, `^ZS-\d{8}-\d{4}$`, result.Redeemable.CardNumber)
	assert.True(t, result.Redeemable.ExpiresAt.After(result.Redeemable.CreatedAt))
}

func TestResetFromAnyState(t *testing.T) {
	sink := &MemoryEventSink{}
	m := NewChallengeMachine(noTriggerRand(), sink)
	m.Bind("g1", "p1")

	_, err := m.Start(testCard(model.TierMild, model.FormatRondaGrupal))
	require.NoError(t, err)

	session := m.Reset()
	assert.Equal(t, model.StatusIdle, session.Status)
	assert.Nil(t, session.ActiveCard)
	assert.Zero(t, session.EmotionalIntensity)
	assert.Equal(t, 1, sink.CountByType(model.EventChallengeReset))

	// Reset while already idle is a no-op and emits nothing.
	m.Reset()
	assert.Equal(t, 1, sink.CountByType(model.EventChallengeReset))
}

func TestVerifyRequiresVerifying(t *testing.T) {
	m := NewChallengeMachine(noTriggerRand(), nil)

	_, err := m.Verify(model.VerifyPhoto, "ref")
	var transitionErr *InvalidTransitionError
	require.True(t, errors.As(err, &transitionErr))
}

func TestLifecycleEventsRecorded(t *testing.T) {
	sink := &MemoryEventSink{}
	m := NewChallengeMachine(triggerRand(), sink)
	m.Bind("g1", "p1")

	_, err := m.Start(testCard(model.TierMild, model.FormatConfesionDirecta))
	require.NoError(t, err)
	_, err = m.Complete()
	require.NoError(t, err)
	_, err = m.ClaimReward("Ana")
	require.NoError(t, err)

	assert.Equal(t, 1, sink.CountByType(model.EventChallengeStarted))
	assert.Equal(t, 1, sink.CountByType(model.EventChallengeCompleted))
	assert.Equal(t, 1, sink.CountByType(model.EventChallengeVerified))
	assert.Equal(t, 1, sink.CountByType(model.EventSocialTrigger))
	assert.Equal(t, 1, sink.CountByType(model.EventRewardClaimed))

	for _, event := range sink.Events() {
		assert.Equal(t, "g1", event.GameID)
		assert.Equal(t, "p1", event.PlayerID)
	}
}
