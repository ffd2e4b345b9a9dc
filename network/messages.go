package network

import (
	"encoding/json"
	"fmt"

	"shake_race_server/logic"
)

// Wire message type discriminators, both directions.
const (
	// client -> server
	MsgRequestState    = "request_state"
	MsgRegisterDisplay = "register_display"
	MsgRegisterAdmin   = "register_admin"
	MsgRegisterPlayer  = "register_player"
	MsgUpdateShake     = "update_shake"
	MsgStartRace       = "start_race"
	MsgUpdateSettings  = "update_settings"
	MsgResetGame       = "reset_game"

	// server -> client
	MsgGameState        = "game_state"
	MsgPlayerRegistered = "player_registered"
	MsgSettingsUpdated  = "settings_updated"
	MsgGameReset        = "game_reset"
	MsgRaceStarted      = "race_started"
	MsgRaceUpdate       = "race_update"
	MsgRaceFinished     = "race_finished"
	MsgError            = "error"
)

// Command is one decoded inbound message. The set is closed: the hub's
// dispatch is a type switch over exactly these variants.
type Command interface{ isCommand() }

type RequestState struct{}
type RegisterDisplay struct{}
type RegisterAdmin struct{}
type StartRace struct{}
type ResetGame struct{}

type RegisterPlayer struct {
	TeamID   int    `json:"teamId"`
	TeamName string `json:"teamName"`
}

type UpdateShake struct {
	Intensity float64 `json:"intensity"`
}

type UpdateSettings struct {
	logic.SettingsPatch
}

func (RequestState) isCommand()    {}
func (RegisterDisplay) isCommand() {}
func (RegisterAdmin) isCommand()   {}
func (RegisterPlayer) isCommand()  {}
func (UpdateShake) isCommand()     {}
func (StartRace) isCommand()       {}
func (UpdateSettings) isCommand()  {}
func (ResetGame) isCommand()       {}

// DecodeCommand parses one inbound frame into its typed command. Unknown
// types and malformed payloads come back as an error; the caller answers
// with a generic error message and keeps the connection open.
func DecodeCommand(data []byte) (Command, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}

	switch head.Type {
	case MsgRequestState:
		return RequestState{}, nil
	case MsgRegisterDisplay:
		return RegisterDisplay{}, nil
	case MsgRegisterAdmin:
		return RegisterAdmin{}, nil
	case MsgStartRace:
		return StartRace{}, nil
	case MsgResetGame:
		return ResetGame{}, nil
	case MsgRegisterPlayer:
		var cmd RegisterPlayer
		if err := json.Unmarshal(data, &cmd); err != nil {
			return nil, fmt.Errorf("decode %s: %w", head.Type, err)
		}
		return cmd, nil
	case MsgUpdateShake:
		var cmd UpdateShake
		if err := json.Unmarshal(data, &cmd); err != nil {
			return nil, fmt.Errorf("decode %s: %w", head.Type, err)
		}
		return cmd, nil
	case MsgUpdateSettings:
		var cmd UpdateSettings
		if err := json.Unmarshal(data, &cmd); err != nil {
			return nil, fmt.Errorf("decode %s: %w", head.Type, err)
		}
		return cmd, nil
	default:
		return nil, fmt.Errorf("unknown message type %q", head.Type)
	}
}

// Outbound message shapes. Each embeds its type discriminator so the whole
// record marshals in one step.

type stateMessage struct {
	Type  string          `json:"type"`
	State *logic.Snapshot `json:"state"`
}

type playerRegisteredMessage struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
	TeamID   int    `json:"teamId"`
	TeamName string `json:"teamName"`
}

type raceUpdateMessage struct {
	Type   string             `json:"type"`
	Teams  []logic.TeamUpdate `json:"teams"`
	Winner int                `json:"winner,omitempty"`
}

type raceFinishedMessage struct {
	Type   string      `json:"type"`
	Winner *logic.Team `json:"winner"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func encodeState(kind string, snap *logic.Snapshot) []byte {
	return mustMarshal(stateMessage{Type: kind, State: snap})
}

func encodeError(msg string) []byte {
	return mustMarshal(errorMessage{Type: MsgError, Message: msg})
}

// mustMarshal is safe here: every outbound shape is a plain struct of
// marshalable fields.
func mustMarshal(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
