// model/snapshot.go - flat persisted snapshot of a game session
package model

import (
	"encoding/json"
	"time"
)

// GameSnapshot stores a moment-in-time copy of one game: the player list
// plus the current challenge session, serialized as plain records. It is
// the only persisted shape of a running game.
type GameSnapshot struct {
	ID                 string          `json:"id" gorm:"primaryKey;type:text;not null"`
	ExperienceType     string          `json:"experience_type" gorm:"size:30"`
	PlayersJSON        json.RawMessage `json:"players_json" gorm:"type:text"`
	SessionJSON        json.RawMessage `json:"session_json" gorm:"type:text"`
	CurrentPlayerIndex int             `json:"current_player_index" gorm:"default:0"`
	RemainingSeconds   int             `json:"remaining_seconds" gorm:"default:0"`
	TimerActive        bool            `json:"timer_active" gorm:"default:false"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (gs *GameSnapshot) GetPlayers() ([]*Player, error) {
	var players []*Player
	if len(gs.PlayersJSON) == 0 {
		return players, nil
	}
	err := json.Unmarshal(gs.PlayersJSON, &players)
	return players, err
}

func (gs *GameSnapshot) SetPlayers(players []*Player) error {
	data, err := json.Marshal(players)
	if err != nil {
		return err
	}
	gs.PlayersJSON = data
	return nil
}

func (gs *GameSnapshot) GetSession() (*ChallengeSession, error) {
	session := &ChallengeSession{Status: StatusIdle}
	if len(gs.SessionJSON) == 0 {
		return session, nil
	}
	err := json.Unmarshal(gs.SessionJSON, session)
	return session, err
}

func (gs *GameSnapshot) SetSession(session *ChallengeSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	gs.SessionJSON = data
	return nil
}
