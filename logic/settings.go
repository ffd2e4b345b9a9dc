package logic

import "math"

// Settings is the admin-tunable race configuration. BaseSpeed is reported in
// snapshots so clients can predict movement, but it is a fixed constant and
// not settable.
type Settings struct {
	NumTeams   int     `json:"numTeams"`
	MaxPlayers int     `json:"maxPlayers"`
	MinTeams   int     `json:"minTeams"`
	SpeedCoef  float64 `json:"speedCoef"`
	BaseSpeed  float64 `json:"baseSpeed"`
}

// SettingsPatch is a partial settings update from the admin panel. Nil fields
// keep their current value.
type SettingsPatch struct {
	NumTeams   *int     `json:"numTeams"`
	MaxPlayers *int     `json:"maxPlayers"`
	MinTeams   *int     `json:"minTeams"`
	SpeedCoef  *float64 `json:"speedCoef"`
}

func DefaultSettings() Settings {
	return Settings{
		NumTeams:   4,
		MaxPlayers: 8,
		MinTeams:   2,
		SpeedCoef:  1.0,
		BaseSpeed:  BaseSpeed,
	}
}

func clampInt(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

func clampFloat(v, minV, maxV float64) float64 {
	if math.IsNaN(v) {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// ClampSettings enforces hard safety bounds in-place so user-provided values
// can be accepted while guaranteeing sane limits.
func ClampSettings(s *Settings) {
	if s == nil {
		return
	}

	s.NumTeams = clampInt(s.NumTeams, 1, 32)
	s.MaxPlayers = clampInt(s.MaxPlayers, 1, 64)
	s.MinTeams = clampInt(s.MinTeams, 1, 32)
	if s.MinTeams > s.NumTeams {
		s.MinTeams = s.NumTeams
	}
	s.SpeedCoef = clampFloat(s.SpeedCoef, 0.0, 100.0)
	s.BaseSpeed = BaseSpeed
}

// Apply merges the non-nil patch fields into s and re-clamps the result.
func (p SettingsPatch) Apply(s *Settings) {
	if p.NumTeams != nil {
		s.NumTeams = *p.NumTeams
	}
	if p.MaxPlayers != nil {
		s.MaxPlayers = *p.MaxPlayers
	}
	if p.MinTeams != nil {
		s.MinTeams = *p.MinTeams
	}
	if p.SpeedCoef != nil {
		s.SpeedCoef = *p.SpeedCoef
	}
	ClampSettings(s)
}
