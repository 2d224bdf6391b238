// model/session.go
package model

// ChallengeStatus is the lifecycle state of the active challenge.
//
//	idle -> in_progress -> verifying -> completed | failed
//
// completed and failed return to idle via reset or reward claim. There is
// no direct path from idle to verifying or completed.
type ChallengeStatus string

const (
	StatusIdle       ChallengeStatus = "idle"
	StatusInProgress ChallengeStatus = "in_progress"
	StatusVerifying  ChallengeStatus = "verifying"
	StatusCompleted  ChallengeStatus = "completed"
	StatusFailed     ChallengeStatus = "failed"
)

// ChallengeSession is the state machine instance for the active challenge.
// It always references exactly one card and, through the orchestrator,
// one player.
type ChallengeSession struct {
	Status                 ChallengeStatus  `json:"status"`
	ActiveCard             *Card            `json:"active_card,omitempty"`
	VerificationMethod     VerificationType `json:"verification_method,omitempty"`
	EmotionalIntensity     int              `json:"emotional_intensity"`
	SocialTriggerActivated bool             `json:"social_trigger_activated"`
	VotesReceived          int              `json:"votes_received"`
	LastError              string           `json:"last_error,omitempty"`
}

// TurnState is the orchestrator-level view of the table: who plays, who is
// next and how long the current turn has left.
type TurnState struct {
	Players            []*Player `json:"players"`
	CurrentPlayerIndex int       `json:"current_player_index"`
	RemainingSeconds   int       `json:"remaining_seconds"`
	TimerActive        bool      `json:"timer_active"`
}

// CurrentPlayer returns the turn holder, or nil for an empty table.
func (t *TurnState) CurrentPlayer() *Player {
	if len(t.Players) == 0 || t.CurrentPlayerIndex < 0 || t.CurrentPlayerIndex >= len(t.Players) {
		return nil
	}
	return t.Players[t.CurrentPlayerIndex]
}

// TurnAdvanceReason explains why the table moved to the next player.
type TurnAdvanceReason string

const (
	TurnReasonCompleted TurnAdvanceReason = "completed"
	TurnReasonTimeout   TurnAdvanceReason = "timeout"
	TurnReasonSkipped   TurnAdvanceReason = "skipped"
)
