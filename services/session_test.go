package services

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/la-cortesia/cortesia_api/dto"
	"github.com/la-cortesia/cortesia_api/model"
	"github.com/la-cortesia/cortesia_api/shared"
)

func newTestSessionService(sink EventSink) *GameSessionService {
	rng := rand.New(rand.NewSource(7))
	return NewGameSessionService(rng, NewCardGenerator(rng), sink)
}

func createTestGame(t *testing.T, svc *GameSessionService, names ...string) *dto.GameStateResponse {
	t.Helper()
	state, err := svc.CreateGame(dto.CreateGameRequest{
		PlayerNames:    names,
		ExperienceType: "fiesta",
	})
	require.NoError(t, err)
	return state
}

func TestCreateGameDealsCardsAndStartsTimer(t *testing.T) {
	svc := newTestSessionService(nil)
	state := createTestGame(t, svc, "Ana", "Luis", "Mar", "Sol")

	require.Len(t, state.Players, 4)
	assert.Equal(t, 0, state.CurrentPlayerIndex)
	assert.Equal(t, shared.TurnSeconds, state.RemainingSeconds)
	assert.True(t, state.TimerActive)
	assert.Equal(t, model.StatusIdle, state.Session.Status)

	for i, player := range state.Players {
		assert.Equal(t, i == 0, player.CurrentTurn, player.Name)
		assert.Equal(t, CardsPerPlayer, player.CardsRemaining)
		assert.Equal(t, model.PlayerTierBasic, player.Tier)
	}
}

func TestCreateGameRequiresPlayers(t *testing.T) {
	svc := newTestSessionService(nil)

	_, err := svc.CreateGame(dto.CreateGameRequest{ExperienceType: "fiesta"})
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.StatusCode)
}

func TestStartNextChallengeDequeues(t *testing.T) {
	svc := newTestSessionService(nil)
	state := createTestGame(t, svc, "Ana", "Luis")

	challenge, err := svc.StartNextChallenge(state.ID)
	require.NoError(t, err)

	require.NotNil(t, challenge.Card)
	assert.Equal(t, model.StatusInProgress, challenge.Session.Status)

	refreshed, err := svc.GetGame(state.ID)
	require.NoError(t, err)
	assert.Equal(t, CardsPerPlayer-1, refreshed.Players[0].CardsRemaining)
}

func TestStartNextChallengeConflictsWhileActive(t *testing.T) {
	svc := newTestSessionService(nil)
	state := createTestGame(t, svc, "Ana", "Luis")

	_, err := svc.StartNextChallenge(state.ID)
	require.NoError(t, err)

	_, err = svc.StartNextChallenge(state.ID)
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, 409, appErr.StatusCode)
}

func TestTurnRotationIsCircular(t *testing.T) {
	svc := newTestSessionService(nil)
	state := createTestGame(t, svc, "Ana", "Luis", "Mar", "Sol")

	for i := 1; i <= 4; i++ {
		result, err := svc.NextPlayer(state.ID, model.TurnReasonCompleted)
		require.NoError(t, err)

		assert.Equal(t, i%4, result.CurrentPlayerIndex)
		assert.Equal(t, shared.TurnSeconds, result.RemainingSeconds)

		refreshed, err := svc.GetGame(state.ID)
		require.NoError(t, err)

		active := 0
		for _, player := range refreshed.Players {
			if player.CurrentTurn {
				active++
			}
		}
		assert.Equal(t, 1, active)
	}
}

func TestNextPlayerStartsIncomingChallenge(t *testing.T) {
	svc := newTestSessionService(nil)
	state := createTestGame(t, svc, "Ana", "Luis")

	result, err := svc.NextPlayer(state.ID, model.TurnReasonSkipped)
	require.NoError(t, err)

	assert.False(t, result.NoCardsAvailable)
	require.NotNil(t, result.Card)
	require.NotNil(t, result.Session)
	assert.Equal(t, model.StatusInProgress, result.Session.Status)
}

func TestNextPlayerReportsExhaustedQueue(t *testing.T) {
	svc := newTestSessionService(nil)
	state := createTestGame(t, svc, "Ana")

	for i := 0; i < CardsPerPlayer; i++ {
		result, err := svc.NextPlayer(state.ID, model.TurnReasonCompleted)
		require.NoError(t, err)
		assert.False(t, result.NoCardsAvailable)
	}

	result, err := svc.NextPlayer(state.ID, model.TurnReasonCompleted)
	require.NoError(t, err)
	assert.True(t, result.NoCardsAvailable)
	assert.Nil(t, result.Card)

	_, err = svc.StartNextChallenge(state.ID)
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.StatusCode)
}

func TestTickTimeoutAdvancesTurn(t *testing.T) {
	sink := &MemoryEventSink{}
	svc := newTestSessionService(sink)
	state := createTestGame(t, svc, "Ana", "Luis")

	svc.games[state.ID].turn.RemainingSeconds = 1

	refreshed, err := svc.Tick(state.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, refreshed.CurrentPlayerIndex)
	assert.Equal(t, shared.TurnSeconds, refreshed.RemainingSeconds)
	assert.Equal(t, 1, sink.CountByType(model.EventTurnAdvanced))
}

func TestTickIgnoredWhenTimerStopped(t *testing.T) {
	svc := newTestSessionService(nil)
	state := createTestGame(t, svc, "Ana", "Luis")

	svc.games[state.ID].turn.TimerActive = false

	refreshed, err := svc.Tick(state.ID)
	require.NoError(t, err)
	assert.Equal(t, shared.TurnSeconds, refreshed.RemainingSeconds)
	assert.Equal(t, 0, refreshed.CurrentPlayerIndex)
}

func TestSetActivePlayerRestartsTimer(t *testing.T) {
	svc := newTestSessionService(nil)
	state := createTestGame(t, svc, "Ana", "Luis", "Mar")

	svc.games[state.ID].turn.RemainingSeconds = 12

	target := state.Players[2].ID
	refreshed, err := svc.SetActivePlayer(state.ID, target)
	require.NoError(t, err)

	assert.Equal(t, 2, refreshed.CurrentPlayerIndex)
	assert.Equal(t, shared.TurnSeconds, refreshed.RemainingSeconds)
	assert.True(t, refreshed.TimerActive)
	assert.True(t, refreshed.Players[2].CurrentTurn)
	assert.False(t, refreshed.Players[0].CurrentTurn)
}

func TestSetActivePlayerUnknownPlayer(t *testing.T) {
	svc := newTestSessionService(nil)
	state := createTestGame(t, svc, "Ana")

	_, err := svc.SetActivePlayer(state.ID, "nope")
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.StatusCode)
}

func TestGroupVerificationAwardsScoreWithBonus(t *testing.T) {
	svc := newTestSessionService(nil)
	state := createTestGame(t, svc, "Ana", "Luis", "Mar", "Sol")

	game := svc.games[state.ID]
	card := model.Card{
		ID:               "c-group",
		Category:         model.CategoryConfesiones,
		EmotionalTier:    model.TierChaotic,
		VerificationType: model.VerifyGroup,
		Reward:           model.Reward{Description: "x", Value: 30},
		RewardType:       model.RewardText,
	}
	_, err := game.machine.Start(card)
	require.NoError(t, err)

	result, err := svc.CompleteChallenge(state.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusVerifying, result.Status)
	assert.Equal(t, shared.IntensityDeltaChaotic, result.EmotionalIntensity)

	for _, voter := range []string{"v1", "v2", "v3"} {
		vote, err := svc.SubmitVote(state.ID, dto.VoteRequest{PlayerID: voter})
		require.NoError(t, err)
		assert.Equal(t, shared.GroupVoteThreshold, vote.Threshold)
	}

	verified, err := svc.VerifyChallenge(state.ID, dto.VerifyRequest{Method: "group"})
	require.NoError(t, err)
	require.True(t, verified.Verified)

	want := shared.ScoreDeltaChaotic + shared.ScoreBonusGroupVote
	assert.Equal(t, want, verified.EmotionalScore)

	claim, err := svc.ClaimReward(state.ID)
	require.NoError(t, err)
	assert.Equal(t, "c-group", claim.CardID)

	refreshed, err := svc.GetGame(state.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, refreshed.Players[0].CompletedCards)
	assert.Equal(t, model.StatusIdle, refreshed.Session.Status)
}

func TestResetChallengeDiscardsProgress(t *testing.T) {
	svc := newTestSessionService(nil)
	state := createTestGame(t, svc, "Ana", "Luis")

	_, err := svc.StartNextChallenge(state.ID)
	require.NoError(t, err)

	challenge, err := svc.ResetChallenge(state.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusIdle, challenge.Session.Status)
	assert.Nil(t, challenge.Session.ActiveCard)
}

func TestGamesUseIndependentRandomSources(t *testing.T) {
	svc := newTestSessionService(nil)
	a := createTestGame(t, svc, "Ana")
	b := createTestGame(t, svc, "Luis")

	assert.NotSame(t, svc.games[a.ID].machine.rng, svc.games[b.ID].machine.rng)
	assert.NotSame(t, svc.rng, svc.games[a.ID].machine.rng)
}

func TestConcurrentGamesVerifyIndependently(t *testing.T) {
	svc := newTestSessionService(nil)

	ids := make([]string, 4)
	for i := range ids {
		ids[i] = createTestGame(t, svc, "Ana", "Luis").ID
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(gameID string) {
			defer wg.Done()
			for i := 0; i < CardsPerPlayer; i++ {
				_, err := svc.StartNextChallenge(gameID)
				if !assert.NoError(t, err) {
					return
				}
				outcome, err := svc.CompleteChallenge(gameID)
				if !assert.NoError(t, err) {
					return
				}
				if outcome.Status == model.StatusVerifying {
					_, err = svc.VerifyChallenge(gameID, dto.VerifyRequest{Method: "self"})
					if !assert.NoError(t, err) {
						return
					}
				}
				_, err = svc.ClaimReward(gameID)
				if !assert.NoError(t, err) {
					return
				}
			}
		}(id)
	}
	wg.Wait()
}

func TestDealCardsRecordsGenerationEvents(t *testing.T) {
	sink := &MemoryEventSink{}
	svc := newTestSessionService(sink)
	createTestGame(t, svc, "Ana", "Luis", "Mar")

	assert.Equal(t, 3*CardsPerPlayer, sink.CountByType(model.EventCardGenerated))
}

func TestGameNotFound(t *testing.T) {
	svc := newTestSessionService(nil)

	_, err := svc.GetGame("missing")
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.StatusCode)
}
