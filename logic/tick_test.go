package logic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecayStepsDownToZero(t *testing.T) {
	g := NewGame(testSettings())
	start := time.Now()
	p, err := g.RegisterPlayer(1, "Red", start)
	require.NoError(t, err)
	g.ReportShake(p.ID, 5.0, start)

	// Within the idle threshold nothing decays.
	now := start.Add(TickInterval)
	g.Tick(now)
	assert.Equal(t, 5.0, p.Intensity)

	// Past the threshold: exactly DecayStep per tick, floored at zero.
	now = start.Add(IdleThreshold + TickInterval)
	for i := 1; i <= 10; i++ {
		g.Tick(now)
		assert.Equal(t, 5.0-float64(i)*DecayStep, p.Intensity)
		now = now.Add(TickInterval)
	}
	g.Tick(now)
	assert.Equal(t, 0.0, p.Intensity)
	g.Tick(now.Add(TickInterval))
	assert.Equal(t, 0.0, p.Intensity)
}

func TestDecayRunsOutsideRace(t *testing.T) {
	g := NewGame(testSettings())
	start := time.Now()
	p, err := g.RegisterPlayer(1, "Red", start)
	require.NoError(t, err)
	g.ReportShake(p.ID, 1.0, start)
	require.Equal(t, StatusRegistration, g.Status)

	res := g.Tick(start.Add(IdleThreshold + TickInterval))
	assert.False(t, res.Racing)
	assert.Equal(t, 0.5, p.Intensity)
	assert.Zero(t, g.Teams[0].Position)
}

func TestPositionsNonDecreasing(t *testing.T) {
	g := NewGame(testSettings())
	now := time.Now()
	p1, err := g.RegisterPlayer(1, "Red", now)
	require.NoError(t, err)
	p2, err := g.RegisterPlayer(2, "Blue", now)
	require.NoError(t, err)
	require.NoError(t, g.StartRace(now))

	prev := []float64{0, 0}
	for i := 0; i < 100; i++ {
		now = now.Add(TickInterval)
		if i%3 == 0 {
			g.ReportShake(p1.ID, 4.0, now)
		}
		if i%7 == 0 {
			g.ReportShake(p2.ID, 2.5, now)
		}
		g.Tick(now)
		for j, team := range g.Teams {
			require.GreaterOrEqual(t, team.Position, prev[j])
			prev[j] = team.Position
		}
	}
}

func TestWinnerAssignedOnceAndFrozen(t *testing.T) {
	s := testSettings()
	s.MinTeams = 1
	g := NewGame(s)
	now := time.Now()
	p1, err := g.RegisterPlayer(1, "Red", now)
	require.NoError(t, err)
	p2, err := g.RegisterPlayer(2, "Blue", now)
	require.NoError(t, err)
	require.NoError(t, g.StartRace(now))

	// Put both teams over the line in the same pass; the lower team id
	// takes the win.
	g.Teams[0].Position = TrackLength - 0.001
	g.Teams[1].Position = TrackLength - 0.001
	now = now.Add(TickInterval)
	g.ReportShake(p1.ID, 1.0, now)
	g.ReportShake(p2.ID, 1.0, now)
	res := g.Tick(now)

	require.True(t, res.NewWinner)
	assert.Equal(t, 1, g.WinnerID)
	assert.Equal(t, StatusFinished, g.Status)
	// Both lanes completed the winning pass.
	assert.GreaterOrEqual(t, g.Teams[1].Position, TrackLength)

	// Every position freezes after the winning tick.
	frozen := []float64{g.Teams[0].Position, g.Teams[1].Position}
	for i := 0; i < 20; i++ {
		now = now.Add(TickInterval)
		g.ReportShake(p1.ID, 50.0, now)
		g.ReportShake(p2.ID, 50.0, now)
		res = g.Tick(now)
		require.False(t, res.NewWinner)
		require.Equal(t, 1, g.WinnerID)
		require.Equal(t, frozen[0], g.Teams[0].Position)
		require.Equal(t, frozen[1], g.Teams[1].Position)
	}
}

// Full scenario from registration to the finish line: one player shaking at
// intensity 10 with the default coefficients crosses 1000 units in about 660
// ticks, winning exactly once.
func TestRaceEndToEnd(t *testing.T) {
	s := DefaultSettings()
	s.NumTeams = 2
	s.MaxPlayers = 1
	s.MinTeams = 1
	s.SpeedCoef = 1.0
	g := NewGame(s)

	now := time.Now()
	p, err := g.RegisterPlayer(1, "Red", now)
	require.NoError(t, err)
	require.NoError(t, g.StartRace(now))

	wins := 0
	ticks := 0
	for ; ticks < 2000; ticks++ {
		now = now.Add(TickInterval)
		g.ReportShake(p.ID, 10.0, now)
		if g.Tick(now).NewWinner {
			wins++
			break
		}
	}

	assert.Equal(t, 1, wins)
	assert.Equal(t, StatusFinished, g.Status)
	require.NotNil(t, g.Winner())
	assert.Equal(t, 1, g.Winner().ID)
	assert.Equal(t, "Red", g.Winner().Name)
	assert.GreaterOrEqual(t, g.Winner().Position, TrackLength)
	// 10 intensity * (1000/330) u/s * 0.05 s per tick ≈ 1.515 u/tick.
	assert.InDelta(t, 660, ticks, 5)

	// More ticks never produce a second winner.
	for i := 0; i < 50; i++ {
		now = now.Add(TickInterval)
		g.ReportShake(p.ID, 10.0, now)
		require.False(t, g.Tick(now).NewWinner)
	}
}

func TestNegativeIntensityNeverMovesTeamBackward(t *testing.T) {
	g := NewGame(testSettings())
	now := time.Now()
	p, err := g.RegisterPlayer(1, "Red", now)
	require.NoError(t, err)
	require.NoError(t, g.StartRace(now))

	// Some forward progress first.
	now = now.Add(TickInterval)
	g.ReportShake(p.ID, 5.0, now)
	g.Tick(now)
	pos := g.Teams[0].Position
	require.Greater(t, pos, 0.0)

	// A raw negative report is accepted but the lane holds its ground.
	for i := 0; i < 10; i++ {
		now = now.Add(TickInterval)
		g.ReportShake(p.ID, -8.0, now)
		g.Tick(now)
		require.Equal(t, pos, g.Teams[0].Position)
		require.Equal(t, 0.0, g.Teams[0].Intensity)
	}
}

func TestDecayLiftsNegativeIntensityToZero(t *testing.T) {
	g := NewGame(testSettings())
	start := time.Now()
	p, err := g.RegisterPlayer(1, "Red", start)
	require.NoError(t, err)
	g.ReportShake(p.ID, -3.0, start)

	g.Tick(start.Add(IdleThreshold + TickInterval))
	assert.Equal(t, 0.0, p.Intensity)
}

func TestTeamUpdatesListsActiveTeamsOnly(t *testing.T) {
	g := NewGame(testSettings())
	now := time.Now()
	_, err := g.RegisterPlayer(2, "Blue", now)
	require.NoError(t, err)

	updates := g.TeamUpdates()
	require.Len(t, updates, 1)
	assert.Equal(t, 2, updates[0].ID)
	assert.Equal(t, "Blue", updates[0].Name)
	assert.Equal(t, 1, updates[0].PlayerCount)
}
