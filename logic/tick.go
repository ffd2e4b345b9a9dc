package logic

import (
	"time"

	"github.com/rs/zerolog/log"
)

// TickResult reports what a single simulation step produced.
type TickResult struct {
	Racing    bool // positions were integrated this tick
	NewWinner bool // the winner was assigned on this tick
}

// Tick advances the simulation one fixed step.
//
// Decay runs every tick regardless of status: a player idle for more than
// IdleThreshold loses DecayStep intensity per tick, floored at zero.
// Position integration only runs while Racing; once a winner is assigned the
// status flips to Finished and every lane freezes on the next tick. Within
// the winning tick the full pass still completes, so all teams advance one
// last step, but only the first crosser in team-id order takes the win.
func (g *Game) Tick(now time.Time) TickResult {
	for _, p := range g.Players {
		if now.Sub(p.lastInput) > IdleThreshold {
			p.Intensity -= DecayStep
			if p.Intensity < 0 {
				p.Intensity = 0
			}
		}
	}

	res := TickResult{Racing: g.Status == StatusRacing}
	if !res.Racing {
		return res
	}

	dt := TickInterval.Seconds()
	for _, t := range g.Teams {
		if len(t.Players) == 0 {
			continue
		}
		sum := 0.0
		for _, id := range t.Players {
			if p, ok := g.Players[id]; ok {
				sum += p.Intensity
			}
		}
		// Raw reports are accepted unclamped, but a negative aggregate
		// must never move a lane backward.
		if sum < 0 {
			sum = 0
		}
		t.Intensity = sum
		t.Position += sum * g.Settings.SpeedCoef * g.Settings.BaseSpeed * dt

		if g.WinnerID == 0 && t.Position >= TrackLength {
			g.WinnerID = t.ID
			res.NewWinner = true
		}
	}

	if res.NewWinner {
		g.Status = StatusFinished
		w := g.Winner()
		log.Info().
			Int("team", w.ID).
			Str("name", w.Name).
			Float64("position", w.Position).
			Msg("race finished")
	}
	return res
}

// TeamUpdates lists every active team for the display broadcast.
func (g *Game) TeamUpdates() []TeamUpdate {
	out := make([]TeamUpdate, 0, len(g.Teams))
	for _, t := range g.Teams {
		if len(t.Players) == 0 {
			continue
		}
		out = append(out, TeamUpdate{
			ID:          t.ID,
			Name:        t.Name,
			Position:    t.Position,
			Intensity:   t.Intensity,
			PlayerCount: len(t.Players),
		})
	}
	return out
}
