package logic

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Registration and transition errors surfaced to the originating connection.
var (
	ErrInvalidTeam    = errors.New("invalid team")
	ErrTeamFull       = errors.New("team is full")
	ErrRaceInProgress = errors.New("race already started")
	ErrNotEnoughTeams = errors.New("not enough active teams to start")
)

// Game is the authoritative session state: settings, roster, player registry
// and race status. It is owned by a single goroutine (the hub's event loop),
// so none of its methods lock.
type Game struct {
	Settings  Settings
	Teams     []*Team // index i holds team id i+1
	Players   map[string]*Player
	Status    GameStatus
	RaceStart time.Time
	WinnerID  int // 0 until a team crosses the line
}

func NewGame(s Settings) *Game {
	ClampSettings(&s)
	g := &Game{Settings: s}
	g.initTeams()
	return g
}

// initTeams replaces every team with a fresh empty one and evicts all
// players in the same step, so roster and registry can never disagree.
func (g *Game) initTeams() {
	teams := make([]*Team, g.Settings.NumTeams)
	for i := range teams {
		teams[i] = &Team{ID: i + 1, Players: []string{}}
	}
	g.Teams = teams
	g.Players = make(map[string]*Player)
	g.Status = StatusRegistration
	g.RaceStart = time.Time{}
	g.WinnerID = 0
}

func (g *Game) team(id int) *Team {
	if id < 1 || id > len(g.Teams) {
		return nil
	}
	return g.Teams[id-1]
}

// Winner returns the winning team record, or nil while no winner is set.
func (g *Game) Winner() *Team {
	return g.team(g.WinnerID)
}

// ActiveTeams counts teams with at least one member.
func (g *Game) ActiveTeams() int {
	n := 0
	for _, t := range g.Teams {
		if len(t.Players) > 0 {
			n++
		}
	}
	return n
}

// RegisterPlayer joins a new player to the given team. The first member of a
// team names it; a later member's proposed name is ignored.
func (g *Game) RegisterPlayer(teamID int, name string, now time.Time) (*Player, error) {
	t := g.team(teamID)
	if t == nil {
		return nil, ErrInvalidTeam
	}
	if len(t.Players) >= g.Settings.MaxPlayers {
		return nil, ErrTeamFull
	}
	if len(t.Players) == 0 && name != "" {
		t.Name = name
	}

	p := &Player{
		ID:        uuid.NewString(),
		TeamID:    teamID,
		LastShake: now.UnixMilli(),
		lastInput: now,
	}
	t.Players = append(t.Players, p.ID)
	g.Players[p.ID] = p

	log.Info().Str("player", p.ID).Int("team", teamID).Msg("player registered")
	return p, nil
}

// RemovePlayer drops the player from its team and the registry. Idempotent.
func (g *Game) RemovePlayer(playerID string) {
	p, ok := g.Players[playerID]
	if !ok {
		return
	}
	delete(g.Players, playerID)

	if t := g.team(p.TeamID); t != nil {
		for i, id := range t.Players {
			if id == playerID {
				t.Players = append(t.Players[:i], t.Players[i+1:]...)
				break
			}
		}
	}
}

// ReportShake records the latest intensity sample for a player. Messages
// referencing an id that no longer exists (disconnect in flight) are dropped.
func (g *Game) ReportShake(playerID string, intensity float64, now time.Time) {
	p, ok := g.Players[playerID]
	if !ok {
		return
	}
	p.Intensity = intensity
	p.LastShake = now.UnixMilli()
	p.lastInput = now
}

// StartRace transitions Registration -> Racing. Guard failures come back as
// typed errors so the caller can answer the requesting connection.
func (g *Game) StartRace(now time.Time) error {
	if g.Status != StatusRegistration {
		return ErrRaceInProgress
	}
	if g.ActiveTeams() < g.Settings.MinTeams {
		return ErrNotEnoughTeams
	}

	for _, t := range g.Teams {
		t.Position = 0
		t.Intensity = 0
	}
	g.WinnerID = 0
	g.RaceStart = now
	g.Status = StatusRacing

	log.Info().Int("activeTeams", g.ActiveTeams()).Msg("race started")
	return nil
}

// Reset returns the session to Registration under the current settings in a
// single step: winner and start time cleared, fresh teams, empty registry.
func (g *Game) Reset() {
	g.initTeams()
	log.Info().Msg("game reset")
}

// ApplySettings applies an admin patch and rebuilds the roster to match.
// All team and player state from before the change is discarded.
func (g *Game) ApplySettings(patch SettingsPatch) {
	patch.Apply(&g.Settings)
	g.initTeams()
	log.Info().
		Int("numTeams", g.Settings.NumTeams).
		Int("maxPlayers", g.Settings.MaxPlayers).
		Int("minTeams", g.Settings.MinTeams).
		Float64("speedCoef", g.Settings.SpeedCoef).
		Msg("settings updated")
}

// Snapshot builds the full state record sent to clients.
func (g *Game) Snapshot() *Snapshot {
	teams := make(map[int]*Team, len(g.Teams))
	for _, t := range g.Teams {
		teams[t.ID] = t
	}
	var start int64
	if !g.RaceStart.IsZero() {
		start = g.RaceStart.UnixMilli()
	}
	return &Snapshot{
		Settings:  g.Settings,
		Teams:     teams,
		Players:   g.Players,
		Status:    g.Status,
		RaceStart: start,
		Winner:    g.Winner(),
	}
}
