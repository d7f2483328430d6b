package battle

import (
	"github.com/pokewilds/pokewilds-server-go/internal/dex"
	"github.com/pokewilds/pokewilds-server-go/internal/stats"
)

// BattleMove is a learned move with in-battle PP tracking.
type BattleMove struct {
	MoveID    int `json:"move_id"`
	CurrentPP int `json:"current_pp"`
	MaxPP     int `json:"max_pp"`
}

// VolatileState carries per-status data for a volatile condition. A
// nil TurnsLeft means the condition lasts until its clearing trigger.
type VolatileState struct {
	TurnsLeft *int `json:"turns_left,omitempty"`
}

// BattlePokemon is one participant's Pokémon with all of its mutable
// battle state. It is built from persisted data at battle start and
// discarded at battle end; the source record is never mutated.
type BattlePokemon struct {
	TemplateID int
	Name       string
	Level      int
	Types      []dex.PokemonType
	Ability    string
	Moves      []BattleMove
	InstanceID string
	BaseExp    int
	Exp        int64
	MaxExp     int64

	Stats  stats.StatSet
	IVs    stats.StatSet
	EVs    stats.StatSet
	Nature stats.Nature

	CurrentHP   int
	MaxHP       int
	Status      dex.StatusCondition // empty when healthy
	StatusTurns int
	Volatile    map[dex.VolatileStatus]VolatileState
	Stages      stats.StageSet
	Fainted     bool
	Position    int
	Wild        bool
}

// HPPercent returns current HP as a fraction of max HP.
func (p *BattlePokemon) HPPercent() float64 {
	if p.MaxHP == 0 {
		return 0
	}
	return float64(p.CurrentHP) / float64(p.MaxHP)
}

// TakeDamage subtracts damage from current HP, floored at 0.
func (p *BattlePokemon) TakeDamage(amount int) {
	if amount >= p.CurrentHP {
		p.CurrentHP = 0
		return
	}
	p.CurrentHP -= amount
}

// HealHP restores HP capped at max, returning the amount actually
// recovered.
func (p *BattlePokemon) HealHP(amount int) int {
	old := p.CurrentHP
	p.CurrentHP += amount
	if p.CurrentHP > p.MaxHP {
		p.CurrentHP = p.MaxHP
	}
	return p.CurrentHP - old
}

// Usable reports whether the Pokémon can still fight.
func (p *BattlePokemon) Usable() bool {
	return !p.Fainted && p.CurrentHP > 0
}

// FirstUsableMove returns the index of the first move with PP left.
func (p *BattlePokemon) FirstUsableMove() (int, bool) {
	for i, m := range p.Moves {
		if m.CurrentPP > 0 {
			return i, true
		}
	}
	return 0, false
}

// BattlePlayer is one side of a battle: the player's identity, their
// ordered team and which member is on the field.
type BattlePlayer struct {
	PlayerID    string
	Name        string
	Team        []*BattlePokemon
	ActiveIndex int
	Side        SideState
	MustSwitch  bool
}

// Active returns the Pokémon currently on the field.
func (p *BattlePlayer) Active() *BattlePokemon {
	return p.Team[p.ActiveIndex]
}

// HasUsablePokemon reports whether any team member can still fight.
func (p *BattlePlayer) HasUsablePokemon() bool {
	for _, member := range p.Team {
		if member.Usable() {
			return true
		}
	}
	return false
}

// AllFainted reports whether the whole team is down.
func (p *BattlePlayer) AllFainted() bool {
	for _, member := range p.Team {
		if !member.Fainted {
			return false
		}
	}
	return true
}

// UsableCount counts team members that can still fight.
func (p *BattlePlayer) UsableCount() int {
	count := 0
	for _, member := range p.Team {
		if !member.Fainted {
			count++
		}
	}
	return count
}

// SideState holds field effects affecting one side only. Only the
// timers are modeled; nothing sets them yet.
type SideState struct {
	ReflectTurns     int  `json:"reflect_turns"`
	LightScreenTurns int  `json:"light_screen_turns"`
	TailwindTurns    int  `json:"tailwind_turns"`
	StealthRock      bool `json:"stealth_rock"`
	SpikesLayers     int  `json:"spikes_layers"`
	ToxicSpikes      int  `json:"toxic_spikes_layers"`
	StickyWeb        bool `json:"sticky_web"`
}

// WeatherKind is a field-wide weather condition.
type WeatherKind string

const (
	WeatherRain          WeatherKind = "rain"
	WeatherHarshSunlight WeatherKind = "harsh_sunlight"
	WeatherSandstorm     WeatherKind = "sandstorm"
	WeatherHail          WeatherKind = "hail"
)

// Weather is an active weather condition with a remaining duration.
type Weather struct {
	Kind      WeatherKind `json:"weather_type"`
	TurnsLeft int         `json:"turns_left"`
}

// FieldState holds effects shared by both sides.
type FieldState struct {
	Weather        *Weather `json:"weather,omitempty"`
	TrickRoomTurns int      `json:"trick_room_turns"`
}

// BallType identifies the kind of Poké Ball thrown.
type BallType string

const (
	BallPoke  BallType = "poke_ball"
	BallGreat BallType = "great_ball"
	BallUltra BallType = "ultra_ball"
)

// DisplayName returns the ball name used in battle messages.
func (b BallType) DisplayName() string {
	switch b {
	case BallGreat:
		return "Great Ball"
	case BallUltra:
		return "Ultra Ball"
	default:
		return "Poké Ball"
	}
}

// CaptureAttempt records one Poké Ball throw.
type CaptureAttempt struct {
	BallType   BallType `json:"ball_type"`
	ShakeCount int      `json:"shake_count"`
	Success    bool     `json:"success"`
	TurnNumber int      `json:"turn_number"`
}
