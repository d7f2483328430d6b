package dex

// PokemonType is one of the elemental types used by species and moves.
type PokemonType string

const (
	TypeNormal   PokemonType = "normal"
	TypeFire     PokemonType = "fire"
	TypeWater    PokemonType = "water"
	TypeElectric PokemonType = "electric"
	TypeGrass    PokemonType = "grass"
	TypeIce      PokemonType = "ice"
	TypeFighting PokemonType = "fighting"
	TypePoison   PokemonType = "poison"
	TypeGround   PokemonType = "ground"
	TypeFlying   PokemonType = "flying"
	TypePsychic  PokemonType = "psychic"
	TypeBug      PokemonType = "bug"
	TypeRock     PokemonType = "rock"
	TypeGhost    PokemonType = "ghost"
	TypeDragon   PokemonType = "dragon"
	TypeDark     PokemonType = "dark"
	TypeSteel    PokemonType = "steel"
	TypeFairy    PokemonType = "fairy"
)

// TypeChart maps attacking type -> defending type -> multiplier.
// A missing entry means neutral (1.0) effectiveness.
type TypeChart map[PokemonType]map[PokemonType]float64

// Effectiveness returns the combined multiplier of an attacking type
// against every defending type, multiplying the chart entries. A nil
// chart or missing entry contributes 1.0.
func (c TypeChart) Effectiveness(attack PokemonType, defenders []PokemonType) float64 {
	if c == nil {
		return 1.0
	}
	row, ok := c[attack]
	if !ok {
		return 1.0
	}
	total := 1.0
	for _, def := range defenders {
		if mult, ok := row[def]; ok {
			total *= mult
		}
	}
	return total
}

// StatusCondition is a persistent (non-volatile) status. A Pokémon
// carries at most one at a time.
type StatusCondition string

const (
	StatusBurn      StatusCondition = "burn"
	StatusFreeze    StatusCondition = "freeze"
	StatusParalysis StatusCondition = "paralysis"
	StatusPoison    StatusCondition = "poison"
	StatusSleep     StatusCondition = "sleep"
	StatusToxic     StatusCondition = "toxic"
)

// InflictedName returns the message wording for a newly applied status.
func (s StatusCondition) InflictedName() string {
	switch s {
	case StatusBurn:
		return "burned"
	case StatusFreeze:
		return "frozen"
	case StatusParalysis:
		return "paralyzed"
	case StatusPoison:
		return "poisoned"
	case StatusSleep:
		return "put to sleep"
	case StatusToxic:
		return "badly poisoned"
	default:
		return string(s)
	}
}

// VolatileStatus is a temporary in-battle condition that clears when
// the battle (or the holder's time on the field) ends.
type VolatileStatus string

const (
	VolatileConfusion  VolatileStatus = "confusion"
	VolatileFlinch     VolatileStatus = "flinch"
	VolatileTaunt      VolatileStatus = "taunt"
	VolatileLeechSeed  VolatileStatus = "leech_seed"
	VolatileSubstitute VolatileStatus = "substitute"
	VolatileBound      VolatileStatus = "bound"
)
