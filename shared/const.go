package shared

const (
	GameID   = "game_id"
	PlayerID = "player_id"
)

// Challenge lifecycle tuning. These are deliberate design constants,
// not deployment configuration.
const (
	GroupVoteThreshold     = 3
	TurnSeconds            = 60
	SocialTriggerChance    = 0.5
	SocialRewardMultiplier = 1.5
	RedeemableValidityDays = 30

	IntensityMax = 100

	IntensityDeltaMild    = 10
	IntensityDeltaIntense = 20
	IntensityDeltaChaotic = 30

	ScoreDeltaMild      = 5
	ScoreDeltaIntense   = 10
	ScoreDeltaChaotic   = 15
	ScoreBonusGroupVote = 5
)

// Player tier derivation thresholds.
const (
	TierAdvancedMinCards     = 3
	TierAdvancedMinScore     = 60
	TierIntermediateMinCards = 1
	TierIntermediateMinScore = 30
)
