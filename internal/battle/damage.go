package battle

import (
	"math"

	"github.com/pokewilds/pokewilds-server-go/internal/dex"
	"github.com/pokewilds/pokewilds-server-go/internal/stats"
)

const (
	critChance     = 0.0625
	critMultiplier = 1.5
	stabMultiplier = 1.5
)

// CalculateDamage computes the damage of one move use.
//
// base = ((2*level/5 + 2) * power * attack/defense) / 50 + 2, then
// multiplied by STAB, type effectiveness, the critical modifier and a
// uniform random factor in [0.85, 1.0], floored. Status moves and
// moves without power deal no damage. When the defender is immune the
// damage is forced to 0 regardless of rounding.
func CalculateDamage(
	level int,
	attacker stats.StatSet,
	attackerTypes []dex.PokemonType,
	defender stats.StatSet,
	defenderTypes []dex.PokemonType,
	move dex.Move,
	chart dex.TypeChart,
	rng Rand,
) (damage int, effectiveness float64, critical bool) {
	if move.Power == nil || *move.Power == 0 {
		return 0, 1.0, false
	}

	var attack, defense int
	switch move.Category {
	case dex.CategoryPhysical:
		attack, defense = attacker.Attack, defender.Defense
	case dex.CategorySpecial:
		attack, defense = attacker.SpecialAttack, defender.SpecialDefense
	default:
		return 0, 1.0, false
	}

	effectiveness = chart.Effectiveness(move.Type, defenderTypes)

	stab := 1.0
	for _, t := range attackerTypes {
		if t == move.Type {
			stab = stabMultiplier
			break
		}
	}

	critical = rng.Float64() < critChance
	criticalMod := 1.0
	if critical {
		criticalMod = critMultiplier
	}

	randomFactor := 0.85 + rng.Float64()*0.15

	base := ((2.0*float64(level)/5.0+2.0)*float64(*move.Power)*float64(attack)/float64(defense))/50.0 + 2.0
	modifier := stab * effectiveness * criticalMod * randomFactor
	damage = int(math.Floor(base * modifier))

	if effectiveness == 0 {
		damage = 0
	}
	return damage, effectiveness, critical
}
