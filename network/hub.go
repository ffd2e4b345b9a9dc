package network

import (
	"time"

	"github.com/rs/zerolog/log"

	"shake_race_server/logic"
)

type role int

const (
	roleNone role = iota
	rolePlayer
	roleDisplay
	roleAdmin
)

type inbound struct {
	client *Client
	cmd    Command
}

// Hub is the session router and synchronization layer. A single goroutine
// (Run) owns the game state and serializes every inbound message, every
// connect/disconnect and every simulation tick, so no locking is needed and
// a tick can never overlap the previous one.
type Hub struct {
	game *logic.Game

	clients  map[*Client]bool
	displays map[*Client]bool
	admins   map[*Client]bool
	players  map[*Client]string // connection -> player id

	Register   chan *Client
	Unregister chan *Client
	Inbox      chan inbound

	// OnRaceFinished is called from the event loop when a winner is
	// declared, with the race duration. Optional.
	OnRaceFinished func(winner *logic.Team, duration time.Duration)

	quit chan struct{}
}

func NewHub(game *logic.Game) *Hub {
	return &Hub{
		game:       game,
		clients:    make(map[*Client]bool),
		displays:   make(map[*Client]bool),
		admins:     make(map[*Client]bool),
		players:    make(map[*Client]string),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Inbox:      make(chan inbound, 256),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Stop() {
	close(h.quit)
}

// Run is the event loop. Start it once, in its own goroutine.
func (h *Hub) Run() {
	ticker := time.NewTicker(logic.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.quit:
			return
		case c := <-h.Register:
			h.clients[c] = true
		case c := <-h.Unregister:
			h.disconnect(c)
		case in := <-h.Inbox:
			h.dispatch(in.client, in.cmd)
		case now := <-ticker.C:
			h.tick(now)
		}
	}
}

func (h *Hub) roleOf(c *Client) role {
	switch {
	case h.players[c] != "":
		return rolePlayer
	case h.displays[c]:
		return roleDisplay
	case h.admins[c]:
		return roleAdmin
	default:
		return roleNone
	}
}

func (h *Hub) dispatch(c *Client, cmd Command) {
	switch cmd := cmd.(type) {
	case RequestState:
		// Answered for any role, not just fresh connections: the
		// snapshot is read-only.
		c.enqueue(encodeState(MsgGameState, h.game.Snapshot()))

	case RegisterDisplay:
		if h.roleOf(c) != roleNone && !h.displays[c] {
			c.enqueue(encodeError("role already assigned"))
			return
		}
		h.displays[c] = true
		c.enqueue(encodeState(MsgGameState, h.game.Snapshot()))

	case RegisterAdmin:
		if h.roleOf(c) != roleNone && !h.admins[c] {
			c.enqueue(encodeError("role already assigned"))
			return
		}
		h.admins[c] = true
		c.enqueue(encodeState(MsgGameState, h.game.Snapshot()))

	case RegisterPlayer:
		if h.roleOf(c) != roleNone {
			c.enqueue(encodeError("role already assigned"))
			return
		}
		p, err := h.game.RegisterPlayer(cmd.TeamID, cmd.TeamName, time.Now())
		if err != nil {
			c.enqueue(encodeError(registrationError(err)))
			return
		}
		h.players[c] = p.ID
		team := h.game.Teams[p.TeamID-1]
		c.enqueue(mustMarshal(playerRegisteredMessage{
			Type:     MsgPlayerRegistered,
			PlayerID: p.ID,
			TeamID:   p.TeamID,
			TeamName: team.Name,
		}))
		h.broadcastAll(encodeState(MsgGameState, h.game.Snapshot()))

	case UpdateShake:
		pid, ok := h.players[c]
		if !ok {
			// Stale or unauthorized input is dropped.
			return
		}
		h.game.ReportShake(pid, cmd.Intensity, time.Now())

	case StartRace:
		if r := h.roleOf(c); r != roleAdmin && r != roleDisplay {
			c.enqueue(encodeError("not allowed"))
			return
		}
		if err := h.game.StartRace(time.Now()); err != nil {
			c.enqueue(encodeError(err.Error()))
			return
		}
		h.broadcastAll(encodeState(MsgRaceStarted, h.game.Snapshot()))

	case UpdateSettings:
		if h.roleOf(c) != roleAdmin {
			c.enqueue(encodeError("not allowed"))
			return
		}
		h.game.ApplySettings(cmd.SettingsPatch)
		h.dropPlayerAssociations()
		h.broadcastAll(encodeState(MsgSettingsUpdated, h.game.Snapshot()))

	case ResetGame:
		if r := h.roleOf(c); r != roleAdmin && r != roleDisplay {
			c.enqueue(encodeError("not allowed"))
			return
		}
		h.game.Reset()
		h.dropPlayerAssociations()
		h.broadcastAll(encodeState(MsgGameReset, h.game.Snapshot()))
	}
}

// dropPlayerAssociations reverts every player connection to no role after a
// roster rebuild. The registry was emptied with the roster, so the old ids
// are dead; the connections stay open and may register again.
func (h *Hub) dropPlayerAssociations() {
	h.players = make(map[*Client]string)
}

// registrationError keeps the wire strings stable for clients.
func registrationError(err error) string {
	switch err {
	case logic.ErrInvalidTeam:
		return "Invalid team"
	case logic.ErrTeamFull:
		return "Team is full"
	default:
		return err.Error()
	}
}

func (h *Hub) tick(now time.Time) {
	res := h.game.Tick(now)

	h.broadcastDisplays(mustMarshal(raceUpdateMessage{
		Type:   MsgRaceUpdate,
		Teams:  h.game.TeamUpdates(),
		Winner: h.game.WinnerID,
	}))

	if res.NewWinner {
		winner := h.game.Winner()
		h.broadcastAll(mustMarshal(raceFinishedMessage{
			Type:   MsgRaceFinished,
			Winner: winner,
		}))
		if h.OnRaceFinished != nil {
			h.OnRaceFinished(winner, now.Sub(h.game.RaceStart))
		}
	}
}

func (h *Hub) disconnect(c *Client) {
	if !h.clients[c] {
		return
	}
	pid, wasPlayer := h.players[c]
	if wasPlayer {
		h.game.RemovePlayer(pid)
		delete(h.players, c)
		log.Info().Str("player", pid).Msg("player disconnected")
	}
	delete(h.displays, c)
	delete(h.admins, c)
	delete(h.clients, c)
	close(c.Send)
	if wasPlayer {
		h.broadcastAll(encodeState(MsgGameState, h.game.Snapshot()))
	}
}

func (h *Hub) broadcastAll(message []byte) {
	for c := range h.clients {
		c.enqueue(message)
	}
}

func (h *Hub) broadcastDisplays(message []byte) {
	for c := range h.displays {
		c.enqueue(message)
	}
}
