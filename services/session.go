// services/session.go - multi-player turn orchestration
package services

import (
	"errors"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/la-cortesia/cortesia_api/dto"
	"github.com/la-cortesia/cortesia_api/model"
	"github.com/la-cortesia/cortesia_api/shared"
)

// ErrNoCardsAvailable surfaces an exhausted card queue. The orchestrator
// reports it as a condition, never crashes on it.
var ErrNoCardsAvailable = errors.New("no cards available")

var ErrGameNotFound = errors.New("game not found")

// CardsPerPlayer is the queue depth dealt to each player at game creation.
const CardsPerPlayer = 3

// GameSession wraps one table: the ordered player list, the turn timer and
// the single embedded challenge machine. All mutation goes through its
// mutex; group votes can arrive concurrently.
type GameSession struct {
	ID             string
	ExperienceType model.ExperienceType

	mu      sync.Mutex
	turn    model.TurnState
	machine *ChallengeMachine
}

// GameSessionService owns every live game session and drives the shared
// turn clock.
type GameSessionService struct {
	context.DefaultService

	sqlSvc        *SqliteService
	analyticsSvc  *AnalyticsService
	generatorSvc  *CardGeneratorService
	monitoringSvc *MonitoringService

	mu    sync.Mutex
	games map[string]*GameSession
	rng   *rand.Rand

	externalClock bool
	closed        chan struct{}
}

const SESSION_SVC = "session_svc"

func (svc GameSessionService) Id() string {
	return SESSION_SVC
}

func (svc *GameSessionService) Configure(ctx *context.Context) error {
	svc.games = map[string]*GameSession{}
	// TURN_TIMER_EXTERNAL hands the clock to the host via the tick endpoint.
	svc.externalClock = os.Getenv("TURN_TIMER_EXTERNAL") == "true"
	return svc.DefaultService.Configure(ctx)
}

func (svc *GameSessionService) Start() error {
	svc.sqlSvc = svc.Service(SQLITE_SVC).(*SqliteService)
	svc.analyticsSvc = svc.Service(ANALYTICS_SVC).(*AnalyticsService)
	svc.generatorSvc = svc.Service(GENERATOR_SVC).(*CardGeneratorService)
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)

	if svc.rng == nil {
		svc.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	svc.closed = make(chan struct{}, 1)

	if !svc.externalClock {
		go svc.runTurnClock()
	}

	return nil
}

func (svc *GameSessionService) Shutdown() {
	if svc.closed != nil {
		svc.closed <- struct{}{}
	}
}

// NewGameSessionService builds an orchestrator without the container, for
// direct use in tests.
func NewGameSessionService(rng *rand.Rand, generator *CardGeneratorService, sink EventSink) *GameSessionService {
	svc := &GameSessionService{
		games:         map[string]*GameSession{},
		rng:           rng,
		generatorSvc:  generator,
		externalClock: true,
	}
	if sink != nil {
		svc.analyticsSvc = &AnalyticsService{fallback: sink}
	}
	return svc
}

func (svc *GameSessionService) runTurnClock() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			svc.tickAll()
		case <-svc.closed:
			return
		}
	}
}

func (svc *GameSessionService) tickAll() {
	svc.mu.Lock()
	games := make([]*GameSession, 0, len(svc.games))
	for _, game := range svc.games {
		games = append(games, game)
	}
	svc.mu.Unlock()

	for _, game := range games {
		if _, err := svc.Tick(game.ID); err != nil {
			log.WithError(err).WithField(shared.GameID, game.ID).Warn("Turn clock tick failed")
		}
	}
}

// ==================== GAME LIFECYCLE ====================

func (svc *GameSessionService) CreateGame(req dto.CreateGameRequest) (*dto.GameStateResponse, error) {
	if len(req.PlayerNames) == 0 {
		return nil, shared.NewBadRequestError(nil, "At least one player is required")
	}

	experience := model.ExperienceType(req.ExperienceType)

	players := make([]*model.Player, len(req.PlayerNames))
	for i, name := range req.PlayerNames {
		playerID, _ := uuid.NewV7()
		players[i] = &model.Player{
			ID:               playerID.String(),
			Name:             name,
			CompletedCardIDs: []string{},
			CurrentTurn:      i == 0,
			AssignedCards:    svc.dealCards(experience, model.PlayerTierBasic),
		}
	}

	gameID, _ := uuid.NewV7()
	game := &GameSession{
		ID:             gameID.String(),
		ExperienceType: experience,
		turn: model.TurnState{
			Players:          players,
			RemainingSeconds: shared.TurnSeconds,
			TimerActive:      true,
		},
		machine: NewChallengeMachine(svc.newMachineRand(), svc.sink()),
	}
	game.machine.Bind(game.ID, players[0].ID)

	svc.mu.Lock()
	svc.games[game.ID] = game
	activeGames := len(svc.games)
	svc.mu.Unlock()

	if svc.monitoringSvc != nil {
		svc.monitoringSvc.SetActiveGames(activeGames)
	}

	svc.persist(game)
	return svc.stateResponse(game), nil
}

// dealCards fills a player's queue with generated cards. Intensity scales
// with the player's tier.
func (svc *GameSessionService) dealCards(experience model.ExperienceType, tier model.PlayerTier) []model.Card {
	cards := make([]model.Card, 0, CardsPerPlayer)
	for i := 0; i < CardsPerPlayer; i++ {
		cards = append(cards, svc.drawCard(experience, tier))
	}
	return cards
}

var dealCategories = []model.CardCategory{
	model.CategoryConfesiones,
	model.CategoryRecuerdos,
	model.CategoryDeseos,
	model.CategoryVerguenzas,
	model.CategoryGratitud,
	model.CategoryDespecho,
}

var dealTones = []model.ToneSubtype{
	model.TonePicante,
	model.ToneVulnerable,
	model.ToneCaotico,
	model.ToneNostalgico,
	model.ToneIronico,
}

func (svc *GameSessionService) drawCard(experience model.ExperienceType, tier model.PlayerTier) model.Card {
	formats := model.KnownFormats()

	svc.mu.Lock()
	category := dealCategories[svc.rng.Intn(len(dealCategories))]
	tone := dealTones[svc.rng.Intn(len(dealTones))]
	format := formats[svc.rng.Intn(len(formats))]
	svc.mu.Unlock()

	card := svc.generatorSvc.GenerateCard(dto.GenerateCardRequest{
		Category:          string(category),
		InteractionFormat: string(format),
		ToneSubtype:       string(tone),
		EmotionalTier:     string(tierForPlayer(tier)),
		ChallengeType:     string(model.ChallengeIndividual),
		ExperienceType:    string(experience),
	})

	if svc.monitoringSvc != nil {
		svc.monitoringSvc.RecordCardGenerated(string(card.Category), string(card.EmotionalTier))
	}

	svc.recordEvent(model.GameEvent{
		Type:   model.EventCardGenerated,
		CardID: card.ID,
		Tier:   card.EmotionalTier,
		At:     time.Now(),
	})

	return card
}

// tierForPlayer maps progression tier to the emotional intensity of dealt
// cards.
func tierForPlayer(tier model.PlayerTier) model.EmotionalTier {
	switch tier {
	case model.PlayerTierAdvanced:
		return model.TierChaotic
	case model.PlayerTierIntermediate:
		return model.TierIntense
	default:
		return model.TierMild
	}
}

func (svc *GameSessionService) game(gameID string) (*GameSession, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	game, ok := svc.games[gameID]
	if !ok {
		return nil, shared.NewNotFoundError(ErrGameNotFound, "Game not found")
	}
	return game, nil
}

func (svc *GameSessionService) GetGame(gameID string) (*dto.GameStateResponse, error) {
	game, err := svc.game(gameID)
	if err != nil {
		return nil, err
	}

	game.mu.Lock()
	defer game.mu.Unlock()
	return svc.stateResponseLocked(game), nil
}

// ==================== CHALLENGE CONTROL ====================

// StartNextChallenge dequeues the active player's next card and starts the
// machine with it.
func (svc *GameSessionService) StartNextChallenge(gameID string) (*dto.ChallengeStateResponse, error) {
	game, err := svc.game(gameID)
	if err != nil {
		return nil, err
	}

	game.mu.Lock()
	defer game.mu.Unlock()

	player := game.turn.CurrentPlayer()
	if player == nil {
		return nil, shared.NewUnprocessableError(nil, "Game has no players")
	}

	if len(player.AssignedCards) == 0 {
		return nil, shared.NewNotFoundError(ErrNoCardsAvailable, "No cards available for player")
	}

	card := player.AssignedCards[0]
	player.AssignedCards = player.AssignedCards[1:]

	game.machine.Bind(game.ID, player.ID)
	session, err := game.machine.Start(card)
	if err != nil {
		return nil, invalidTransition(err)
	}

	svc.persist(game)
	return &dto.ChallengeStateResponse{Session: session, Card: &card}, nil
}

func (svc *GameSessionService) CompleteChallenge(gameID string) (*dto.VerifyResponse, error) {
	game, err := svc.game(gameID)
	if err != nil {
		return nil, err
	}

	game.mu.Lock()
	defer game.mu.Unlock()

	tier := activeTier(game)
	outcome, err := game.machine.Complete()
	if err != nil {
		return nil, invalidTransition(err)
	}

	if outcome.Verified {
		svc.applyVerification(game, tier, game.machine.Session().VerificationMethod, outcome)
	}

	svc.persist(game)
	return verifyResponse(game, outcome), nil
}

func (svc *GameSessionService) VerifyChallenge(gameID string, req dto.VerifyRequest) (*dto.VerifyResponse, error) {
	game, err := svc.game(gameID)
	if err != nil {
		return nil, err
	}

	game.mu.Lock()
	defer game.mu.Unlock()

	method := model.VerificationType(req.Method)
	tier := activeTier(game)

	outcome, err := game.machine.Verify(method, req.PayloadRef)
	if err != nil {
		return nil, invalidTransition(err)
	}

	if svc.monitoringSvc != nil {
		svc.monitoringSvc.RecordVerification(string(method), outcome.Verified)
	}

	if outcome.Verified {
		svc.applyVerification(game, tier, method, outcome)
	}

	svc.persist(game)
	return verifyResponse(game, outcome), nil
}

// applyVerification updates the turn holder's emotional score: a tier
// delta plus a flat bonus for group verification. Score is capped and
// never decreases.
func (svc *GameSessionService) applyVerification(game *GameSession, tier model.EmotionalTier, method model.VerificationType, outcome VerifyOutcome) {
	player := game.turn.CurrentPlayer()
	if player == nil {
		return
	}

	delta := scoreDelta(tier)
	if method == model.VerifyGroup {
		delta += shared.ScoreBonusGroupVote
	}

	player.EmotionalScore += delta
	if player.EmotionalScore > shared.IntensityMax {
		player.EmotionalScore = shared.IntensityMax
	}

	if svc.monitoringSvc != nil {
		svc.monitoringSvc.RecordChallengeOutcome("verified", string(tier))
		if outcome.SocialTriggerActivated {
			svc.monitoringSvc.RecordSocialTrigger()
		}
	}
}

func (svc *GameSessionService) SubmitVote(gameID string, req dto.VoteRequest) (*dto.VoteResponse, error) {
	game, err := svc.game(gameID)
	if err != nil {
		return nil, err
	}

	game.mu.Lock()
	defer game.mu.Unlock()

	votes, err := game.machine.SubmitVote(req.PlayerID)
	if err != nil {
		return nil, invalidTransition(err)
	}

	return &dto.VoteResponse{
		VotesReceived: votes,
		Threshold:     shared.GroupVoteThreshold,
		ThresholdMet:  votes >= shared.GroupVoteThreshold,
	}, nil
}

func (svc *GameSessionService) RetryVerification(gameID string) (*dto.ChallengeStateResponse, error) {
	game, err := svc.game(gameID)
	if err != nil {
		return nil, err
	}

	game.mu.Lock()
	defer game.mu.Unlock()

	if err := game.machine.Retry(); err != nil {
		return nil, invalidTransition(err)
	}

	session := game.machine.Session()
	return &dto.ChallengeStateResponse{Session: session, Card: session.ActiveCard}, nil
}

func (svc *GameSessionService) ClaimReward(gameID string) (*dto.ClaimRewardResponse, error) {
	game, err := svc.game(gameID)
	if err != nil {
		return nil, err
	}

	game.mu.Lock()
	defer game.mu.Unlock()

	player := game.turn.CurrentPlayer()
	if player == nil {
		return nil, shared.NewUnprocessableError(nil, "Game has no players")
	}

	result, err := game.machine.ClaimReward(player.Name)
	if err != nil {
		return nil, invalidTransition(err)
	}

	player.CompletedCardIDs = append(player.CompletedCardIDs, result.CardID)

	if result.Redeemable != nil && svc.sqlSvc != nil {
		if err := svc.sqlSvc.SaveRedeemable(result.Redeemable); err != nil {
			log.WithError(err).Warn("Failed to persist redeemable card")
		}
	}

	svc.persist(game)

	return &dto.ClaimRewardResponse{
		Status:            result.Status,
		CardID:            result.CardID,
		RewardDescription: result.RewardDescription,
		RewardValue:       result.RewardValue,
		Sticker:           result.Sticker,
		PlayerTier:        player.Tier(),
		Redeemable:        result.Redeemable,
	}, nil
}

func (svc *GameSessionService) ResetChallenge(gameID string) (*dto.ChallengeStateResponse, error) {
	game, err := svc.game(gameID)
	if err != nil {
		return nil, err
	}

	game.mu.Lock()
	defer game.mu.Unlock()

	session := game.machine.Reset()
	svc.persist(game)
	return &dto.ChallengeStateResponse{Session: session}, nil
}

// ==================== TURN CONTROL ====================

// NextPlayer advances the table circularly, resets the timer and the
// embedded challenge, and starts the incoming player's next card. An empty
// queue is reported on the response, not treated as a failure.
func (svc *GameSessionService) NextPlayer(gameID string, reason model.TurnAdvanceReason) (*dto.TurnAdvanceResponse, error) {
	game, err := svc.game(gameID)
	if err != nil {
		return nil, err
	}

	game.mu.Lock()
	defer game.mu.Unlock()
	return svc.nextPlayerLocked(game, reason)
}

func (svc *GameSessionService) nextPlayerLocked(game *GameSession, reason model.TurnAdvanceReason) (*dto.TurnAdvanceResponse, error) {
	if len(game.turn.Players) == 0 {
		return nil, shared.NewUnprocessableError(nil, "Game has no players")
	}

	game.machine.Reset()

	game.turn.CurrentPlayerIndex = (game.turn.CurrentPlayerIndex + 1) % len(game.turn.Players)
	for i, player := range game.turn.Players {
		player.CurrentTurn = i == game.turn.CurrentPlayerIndex
	}

	game.turn.RemainingSeconds = shared.TurnSeconds
	game.turn.TimerActive = true

	incoming := game.turn.CurrentPlayer()
	game.machine.Bind(game.ID, incoming.ID)

	svc.recordEvent(model.GameEvent{
		Type:     model.EventTurnAdvanced,
		GameID:   game.ID,
		PlayerID: incoming.ID,
		At:       time.Now(),
	})

	response := &dto.TurnAdvanceResponse{
		Reason:             reason,
		CurrentPlayerIndex: game.turn.CurrentPlayerIndex,
		CurrentPlayerID:    incoming.ID,
		RemainingSeconds:   game.turn.RemainingSeconds,
	}

	if len(incoming.AssignedCards) == 0 {
		response.NoCardsAvailable = true
		svc.persist(game)
		return response, nil
	}

	card := incoming.AssignedCards[0]
	incoming.AssignedCards = incoming.AssignedCards[1:]

	if session, err := game.machine.Start(card); err == nil {
		response.Session = &session
		response.Card = &card
	}

	svc.persist(game)
	return response, nil
}

// SetActivePlayer hands the turn to a specific player, stopping and
// restarting the timer across the switch.
func (svc *GameSessionService) SetActivePlayer(gameID, playerID string) (*dto.GameStateResponse, error) {
	game, err := svc.game(gameID)
	if err != nil {
		return nil, err
	}

	game.mu.Lock()
	defer game.mu.Unlock()

	index := -1
	for i, player := range game.turn.Players {
		if player.ID == playerID {
			index = i
			break
		}
	}
	if index == -1 {
		return nil, shared.NewNotFoundError(nil, "Player not in game")
	}

	game.turn.TimerActive = false
	game.machine.Reset()

	game.turn.CurrentPlayerIndex = index
	for i, player := range game.turn.Players {
		player.CurrentTurn = i == index
	}

	game.turn.RemainingSeconds = shared.TurnSeconds
	game.turn.TimerActive = true
	game.machine.Bind(game.ID, playerID)

	svc.persist(game)
	return svc.stateResponseLocked(game), nil
}

// Tick decrements the turn countdown by one second. Hitting zero advances
// the turn with the timeout reason.
func (svc *GameSessionService) Tick(gameID string) (*dto.GameStateResponse, error) {
	game, err := svc.game(gameID)
	if err != nil {
		return nil, err
	}

	game.mu.Lock()
	defer game.mu.Unlock()

	if !game.turn.TimerActive {
		return svc.stateResponseLocked(game), nil
	}

	game.turn.RemainingSeconds--
	if game.turn.RemainingSeconds <= 0 {
		if svc.monitoringSvc != nil {
			svc.monitoringSvc.RecordTurnTimeout()
		}
		if _, err := svc.nextPlayerLocked(game, model.TurnReasonTimeout); err != nil {
			return nil, err
		}
	}

	return svc.stateResponseLocked(game), nil
}

// ==================== PERSISTENCE ====================

// persist saves the snapshot best-effort; gameplay never blocks on the
// store.
func (svc *GameSessionService) persist(game *GameSession) {
	if svc.sqlSvc == nil {
		return
	}

	snapshot := &model.GameSnapshot{
		ID:                 game.ID,
		ExperienceType:     string(game.ExperienceType),
		CurrentPlayerIndex: game.turn.CurrentPlayerIndex,
		RemainingSeconds:   game.turn.RemainingSeconds,
		TimerActive:        game.turn.TimerActive,
	}

	if err := snapshot.SetPlayers(game.turn.Players); err != nil {
		log.WithError(err).WithField(shared.GameID, game.ID).Warn("Failed to serialize players")
		return
	}

	session := game.machine.Session()
	if err := snapshot.SetSession(&session); err != nil {
		log.WithError(err).WithField(shared.GameID, game.ID).Warn("Failed to serialize session")
		return
	}

	if err := svc.sqlSvc.SaveSnapshot(snapshot); err != nil {
		log.WithError(err).WithField(shared.GameID, game.ID).Warn("Failed to persist game snapshot")
	}
}

// RestoreGame loads a persisted snapshot back into memory, replacing any
// live state for that game id.
func (svc *GameSessionService) RestoreGame(gameID string) (*dto.GameStateResponse, error) {
	if svc.sqlSvc == nil {
		return nil, shared.NewInternalError(nil, "Snapshot store unavailable")
	}

	snapshot, err := svc.sqlSvc.GetSnapshot(gameID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Game snapshot not found")
	}

	players, err := snapshot.GetPlayers()
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to decode players")
	}

	session, err := snapshot.GetSession()
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to decode session")
	}

	game := &GameSession{
		ID:             snapshot.ID,
		ExperienceType: model.ExperienceType(snapshot.ExperienceType),
		turn: model.TurnState{
			Players:            players,
			CurrentPlayerIndex: snapshot.CurrentPlayerIndex,
			RemainingSeconds:   snapshot.RemainingSeconds,
			TimerActive:        snapshot.TimerActive,
		},
		machine: NewChallengeMachine(svc.newMachineRand(), svc.sink()),
	}
	game.machine.RestoreSession(*session)
	if current := game.turn.CurrentPlayer(); current != nil {
		game.machine.Bind(game.ID, current.ID)
	}

	svc.mu.Lock()
	svc.games[game.ID] = game
	svc.mu.Unlock()

	game.mu.Lock()
	defer game.mu.Unlock()
	return svc.stateResponseLocked(game), nil
}

// ==================== HELPERS ====================

// newMachineRand derives an independent source for one machine. Machines
// run under their own game lock, so sharing svc.rng across them would race;
// only the seed draw takes svc.mu.
func (svc *GameSessionService) newMachineRand() *rand.Rand {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return rand.New(rand.NewSource(svc.rng.Int63()))
}

// sink avoids handing the machine a typed-nil interface when analytics is
// not wired.
func (svc *GameSessionService) sink() EventSink {
	if svc.analyticsSvc == nil {
		return nil
	}
	return svc.analyticsSvc
}

func (svc *GameSessionService) recordEvent(event model.GameEvent) {
	if svc.analyticsSvc != nil {
		svc.analyticsSvc.RecordEvent(event)
	}
}

func activeTier(game *GameSession) model.EmotionalTier {
	session := game.machine.Session()
	if session.ActiveCard == nil {
		return model.TierMild
	}
	return session.ActiveCard.EmotionalTier
}

func invalidTransition(err error) error {
	return shared.NewConflictError(err, "Invalid challenge transition")
}

func verifyResponse(game *GameSession, outcome VerifyOutcome) *dto.VerifyResponse {
	response := &dto.VerifyResponse{
		Status:                 outcome.Status,
		Verified:               outcome.Verified,
		SocialTriggerActivated: outcome.SocialTriggerActivated,
		FailureReason:          outcome.FailureReason,
	}
	if player := game.turn.CurrentPlayer(); player != nil {
		response.EmotionalScore = player.EmotionalScore
		response.PlayerTier = player.Tier()
	}
	response.EmotionalIntensity = game.machine.Session().EmotionalIntensity
	return response
}

func (svc *GameSessionService) stateResponse(game *GameSession) *dto.GameStateResponse {
	game.mu.Lock()
	defer game.mu.Unlock()
	return svc.stateResponseLocked(game)
}

func (svc *GameSessionService) stateResponseLocked(game *GameSession) *dto.GameStateResponse {
	players := make([]dto.PlayerResponse, len(game.turn.Players))
	for i, player := range game.turn.Players {
		players[i] = dto.PlayerResponse{
			ID:             player.ID,
			Name:           player.Name,
			Tier:           player.Tier(),
			EmotionalScore: player.EmotionalScore,
			CompletedCards: len(player.CompletedCardIDs),
			CurrentTurn:    player.CurrentTurn,
			CardsRemaining: len(player.AssignedCards),
		}
	}

	return &dto.GameStateResponse{
		ID:                 game.ID,
		ExperienceType:     string(game.ExperienceType),
		Players:            players,
		CurrentPlayerIndex: game.turn.CurrentPlayerIndex,
		RemainingSeconds:   game.turn.RemainingSeconds,
		TimerActive:        game.turn.TimerActive,
		Session:            game.machine.Session(),
	}
}
