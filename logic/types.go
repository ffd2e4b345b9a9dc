package logic

import "time"

// GameStatus is the race-wide session phase.
type GameStatus string

const (
	StatusRegistration GameStatus = "registration"
	StatusRacing       GameStatus = "racing"
	StatusFinished     GameStatus = "finished"
)

// Fixed simulation constants. BaseSpeed is tuned so a single player holding
// intensity 10 finishes the 1000-unit track in roughly 33 seconds.
const (
	TrackLength   = 1000.0
	BaseSpeed     = TrackLength / 330.0 // track-units per intensity-unit per second
	TickInterval  = 50 * time.Millisecond
	IdleThreshold = 200 * time.Millisecond
	DecayStep     = 0.5
)

// Team is one lane on the track. Players holds member ids in join order.
type Team struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Players   []string `json:"players"`
	Position  float64  `json:"position"`
	Intensity float64  `json:"shakeIntensity"`
}

// Player is one connected racer's input state.
type Player struct {
	ID        string  `json:"id"`
	TeamID    int     `json:"teamId"`
	Intensity float64 `json:"shakeIntensity"`
	LastShake int64   `json:"lastShake"` // unix ms of the last reported input

	lastInput time.Time // monotonic source for decay
}

// Snapshot is the full serialized game state sent to clients on connect and
// on every state-changing event.
type Snapshot struct {
	Settings  Settings           `json:"settings"`
	Teams     map[int]*Team      `json:"teams"`
	Players   map[string]*Player `json:"players"`
	Status    GameStatus         `json:"gameStatus"`
	RaceStart int64              `json:"raceStartTime"` // unix ms, 0 before a race
	Winner    *Team              `json:"winner,omitempty"`
}

// TeamUpdate is the per-team record inside the tick-driven race_update
// broadcast sent to displays.
type TeamUpdate struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Position    float64 `json:"position"`
	Intensity   float64 `json:"shakeIntensity"`
	PlayerCount int     `json:"playerCount"`
}
