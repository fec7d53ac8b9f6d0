package arena

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// GameMode defines the type of match
type GameMode int

const (
	ModeFFA      GameMode = 0
	ModeTDM      GameMode = 1
	ModeCTF      GameMode = 2
	ModeKOTH     GameMode = 3
	ModeOddball  GameMode = 4
	ModeConquest GameMode = 5
	ModeSiege    GameMode = 6
)

var modeNames = map[GameMode]string{
	ModeFFA:      "ffa",
	ModeTDM:      "tdm",
	ModeCTF:      "ctf",
	ModeKOTH:     "koth",
	ModeOddball:  "oddball",
	ModeConquest: "conquest",
	ModeSiege:    "siege",
}

func (m GameMode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode maps a mode name to its GameMode
func ParseMode(s string) (GameMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("mode %q: %w", s, ErrInvalidConfig)
}

const (
	DefaultTickRate       = 60
	DefaultBroadcastRate  = 30
	maxProjectiles        = 500
	minWorldSize          = 500.0
	KothPointInterval     = 1.0 // seconds of control per point
	SiegeHQScore          = 1
	OddballPointInterval  = 1.0
	ConquestPointInterval = 2.0
)

// MatchConfig holds settings for a match
type MatchConfig struct {
	Mode               GameMode
	Seed               int64
	WorldWidth         float64
	WorldHeight        float64
	TickRate           int
	BroadcastRate      int
	TimeLimit          float64 // seconds, 0 means none
	ScoreLimit         int     // 0 means none
	MaxPlayers         int
	TeamCount          int
	Abilities          []string // allowed utilities; empty allows the whole catalog
	DefaultUtility     string
	KothZones          int
	StrategicLocations int
	Workshops          int // per team
	CaptureRate        float64
	CaptureRequired    float64
}

// DefaultConfig returns default config for the given mode
func DefaultConfig(mode GameMode) MatchConfig {
	cfg := MatchConfig{
		Mode:            mode,
		Seed:            time.Now().UnixNano(),
		WorldWidth:      4000,
		WorldHeight:     4000,
		TickRate:        DefaultTickRate,
		BroadcastRate:   DefaultBroadcastRate,
		TimeLimit:       300,
		MaxPlayers:      20,
		DefaultUtility:  "turret",
		CaptureRate:     DefaultCaptureRate,
		CaptureRequired: DefaultCaptureRequired,
	}
	switch mode {
	case ModeTDM:
		cfg.TimeLimit = 240
		cfg.ScoreLimit = 30
		cfg.WorldWidth, cfg.WorldHeight = 6000, 6000
		cfg.TeamCount = 2
	case ModeCTF:
		cfg.ScoreLimit = 3
		cfg.WorldWidth, cfg.WorldHeight = 6000, 6000
		cfg.TeamCount = 2
	case ModeKOTH:
		cfg.ScoreLimit = 120
		cfg.TeamCount = 2
		cfg.KothZones = 1
	case ModeOddball:
		cfg.ScoreLimit = 100
		cfg.TeamCount = 2
	case ModeConquest:
		cfg.ScoreLimit = 200
		cfg.WorldWidth, cfg.WorldHeight = 6000, 6000
		cfg.TeamCount = 2
		cfg.StrategicLocations = 3
	case ModeSiege:
		cfg.TimeLimit = 600
		cfg.ScoreLimit = SiegeHQScore
		cfg.WorldWidth, cfg.WorldHeight = 6000, 6000
		cfg.TeamCount = 2
		cfg.Workshops = 1
	}
	return cfg
}

// IsTeamMode returns whether the game mode uses teams
func (c MatchConfig) IsTeamMode() bool {
	return c.TeamCount > 0
}

// Bounds returns the arena rectangle
func (c MatchConfig) Bounds() Rect {
	return Rect{Max: Vec2{c.WorldWidth, c.WorldHeight}}
}

// TickDuration returns the wall time between ticks
func (c MatchConfig) TickDuration() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// AbilityAllowed reports whether a utility may be equipped
func (c MatchConfig) AbilityAllowed(name string) bool {
	if len(c.Abilities) == 0 {
		return true
	}
	for _, a := range c.Abilities {
		if a == name {
			return true
		}
	}
	return false
}

// Validate reports every problem with the config at once
func (c MatchConfig) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}
	if _, ok := modeNames[c.Mode]; !ok {
		bad("unknown mode %d", int(c.Mode))
	}
	if c.WorldWidth < minWorldSize || c.WorldHeight < minWorldSize {
		bad("world %gx%g smaller than %g", c.WorldWidth, c.WorldHeight, minWorldSize)
	}
	if c.TickRate <= 0 {
		bad("tick rate %d", c.TickRate)
	}
	if c.BroadcastRate <= 0 || c.BroadcastRate > c.TickRate {
		bad("broadcast rate %d outside (0, %d]", c.BroadcastRate, c.TickRate)
	}
	if c.TimeLimit < 0 || c.ScoreLimit < 0 {
		bad("negative limit")
	}
	if c.MaxPlayers <= 0 {
		bad("max players %d", c.MaxPlayers)
	}
	if c.TeamCount != 0 && c.TeamCount != 2 {
		bad("team count %d, want 0 or 2", c.TeamCount)
	}
	switch c.Mode {
	case ModeFFA:
		if c.TeamCount != 0 {
			bad("ffa cannot have teams")
		}
	case ModeTDM, ModeCTF, ModeConquest, ModeSiege:
		if c.TeamCount != 2 {
			bad("%s needs two teams", c.Mode)
		}
	case ModeKOTH:
		if c.KothZones <= 0 {
			bad("koth needs at least one zone")
		}
	}
	if c.Mode == ModeConquest && c.StrategicLocations <= 0 {
		bad("conquest needs strategic locations")
	}
	if c.Mode == ModeSiege && c.Workshops < 0 {
		bad("negative workshop count")
	}
	if (c.KothZones > 0 || c.StrategicLocations > 0) && (c.CaptureRate <= 0 || c.CaptureRequired <= 0) {
		bad("capture rate %g and required %g must be positive", c.CaptureRate, c.CaptureRequired)
	}
	for _, name := range c.Abilities {
		if _, err := LookupAbility(name); err != nil {
			bad("ability %q not in catalog", name)
		}
	}
	if c.DefaultUtility != "" {
		if _, err := LookupAbility(c.DefaultUtility); err != nil {
			bad("default utility %q not in catalog", c.DefaultUtility)
		} else if !c.AbilityAllowed(c.DefaultUtility) {
			bad("default utility %q not allowed", c.DefaultUtility)
		}
	}
	return errors.Join(errs...)
}

// MatchState holds the running score and clock. Owned by the simulation goroutine.
type MatchState struct {
	Config   MatchConfig
	Teams    [3]int // score by TeamID
	Elapsed  float64
	TimeLeft float64
	Ended    bool
	Winner   TeamID
	WinnerID EntityID // top player in free-for-all
}

// NewMatchState creates a new match state for the given config
func NewMatchState(config MatchConfig) MatchState {
	return MatchState{
		Config:   config,
		TimeLeft: config.TimeLimit,
	}
}

// AssignTeam auto-balances a new player to the smaller team
func (ms *MatchState) AssignTeam(players []*Player) TeamID {
	if !ms.Config.IsTeamMode() {
		return TeamNone
	}
	redCount := 0
	blueCount := 0
	for _, p := range players {
		if p.team == TeamRed {
			redCount++
		} else if p.team == TeamBlue {
			blueCount++
		}
	}
	if redCount <= blueCount {
		return TeamRed
	}
	return TeamBlue
}

// AddScore credits a team
func (ms *MatchState) AddScore(team TeamID, n int) {
	if team == TeamRed || team == TeamBlue {
		ms.Teams[team] += n
	}
}

// Advance runs the match clock and reports whether a limit was reached.
// top is the leading player, used in free-for-all.
func (ms *MatchState) Advance(dt float64, top *Player) bool {
	if ms.Ended {
		return false
	}
	ms.Elapsed += dt
	if ms.Config.TimeLimit > 0 {
		ms.TimeLeft -= dt
	}
	limit := ms.Config.ScoreLimit
	reached := false
	if ms.Config.IsTeamMode() {
		if limit > 0 && (ms.Teams[TeamRed] >= limit || ms.Teams[TeamBlue] >= limit) {
			reached = true
		}
	} else if limit > 0 && top != nil && top.Score >= limit {
		reached = true
	}
	if !reached && !(ms.Config.TimeLimit > 0 && ms.TimeLeft <= 0) {
		return false
	}
	ms.Ended = true
	switch {
	case !ms.Config.IsTeamMode():
		if top != nil {
			ms.WinnerID = top.id
		}
	case ms.Teams[TeamRed] > ms.Teams[TeamBlue]:
		ms.Winner = TeamRed
	case ms.Teams[TeamBlue] > ms.Teams[TeamRed]:
		ms.Winner = TeamBlue
	}
	return true
}

// TeamScores lists team scores for snapshots
func (ms *MatchState) TeamScores() []TeamScore {
	if !ms.Config.IsTeamMode() {
		return nil
	}
	return []TeamScore{
		{Team: TeamRed, Score: ms.Teams[TeamRed]},
		{Team: TeamBlue, Score: ms.Teams[TeamBlue]},
	}
}
