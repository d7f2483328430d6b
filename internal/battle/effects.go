package battle

import (
	"fmt"

	"github.com/pokewilds/pokewilds-server-go/internal/dex"
	"github.com/pokewilds/pokewilds-server-go/internal/stats"
)

// battlefield resolves entity references to the Pokémon they address.
// Both battle state kinds implement it so the effect engine can stay
// agnostic of wild vs PvP.
type battlefield interface {
	PokemonFor(ref EntityRef) (*BattlePokemon, error)
}

// applyEffect applies a move's non-damage effect, appending log
// events. Heal and not-yet-modeled effect kinds produce an explicit
// "not implemented" message rather than failing.
func applyEffect(field battlefield, log *[]Event, effect dex.Effect, source, target EntityRef) {
	actualTarget := target
	if effect.Target == dex.EffectTargetUser {
		actualTarget = source
	}

	switch effect.Kind {
	case dex.EffectApplyStatus:
		applyStatusEffect(field, log, effect.Status, actualTarget)
	case dex.EffectStatChange:
		applyStatChanges(field, log, effect.Changes, actualTarget)
	case dex.EffectHeal:
		*log = append(*log, messageEvent("Healing effect not fully implemented yet."))
	default:
		*log = append(*log, messageEvent("This move effect is not implemented yet."))
	}
}

func applyStatusEffect(field battlefield, log *[]Event, status dex.StatusCondition, target EntityRef) {
	pokemon, err := field.PokemonFor(target)
	if err != nil {
		*log = append(*log, messageEvent(fmt.Sprintf("Error: %v", err)))
		return
	}

	if pokemon.Status != "" {
		*log = append(*log, messageEvent(fmt.Sprintf("But it failed! %s already has a status condition.", pokemon.Name)))
		return
	}

	pokemon.Status = status
	*log = append(*log, messageEvent(fmt.Sprintf("%s was %s!", pokemon.Name, status.InflictedName())))
	*log = append(*log, statusAppliedEvent(target, status))
}

func applyStatChanges(field battlefield, log *[]Event, changes []dex.StatChangeStep, target EntityRef) {
	pokemon, err := field.PokemonFor(target)
	if err != nil {
		*log = append(*log, messageEvent(fmt.Sprintf("Error: %v", err)))
		return
	}

	for _, change := range changes {
		if change.Stat == stats.StatHP {
			continue
		}
		current, err := pokemon.Stages.Stage(change.Stat)
		if err != nil {
			continue
		}

		newStage := clampStage(current + change.Stages)
		if newStage == current {
			direction := "lower"
			if change.Stages > 0 {
				direction = "higher"
			}
			*log = append(*log, messageEvent(fmt.Sprintf("%s's stats won't go any %s!", pokemon.Name, direction)))
			continue
		}

		if err := pokemon.Stages.SetStage(change.Stat, newStage); err != nil {
			continue
		}

		*log = append(*log, messageEvent(fmt.Sprintf("%s's %s %s!", pokemon.Name, change.Stat.DisplayName(), stageChangeWording(change.Stages))))
		*log = append(*log, statChangeEvent(target, StatChangeDetail{
			Stat:     change.Stat,
			Stages:   change.Stages,
			NewStage: newStage,
			Success:  true,
		}))
	}
}

func clampStage(stage int) int {
	if stage > stats.MaxStage {
		return stats.MaxStage
	}
	if stage < stats.MinStage {
		return stats.MinStage
	}
	return stage
}

func stageChangeWording(stages int) string {
	switch {
	case stages == 1:
		return "rose"
	case stages == 2:
		return "rose sharply"
	case stages > 2:
		return "rose drastically"
	case stages == -1:
		return "fell"
	case stages == -2:
		return "harshly fell"
	default:
		return "severely fell"
	}
}

// applyDamageWithEffectiveness subtracts damage from the target,
// floored at 0 HP, and appends the DamageDealt event.
func applyDamageWithEffectiveness(field battlefield, log *[]Event, target EntityRef, damage int, effectiveness float64, critical bool) {
	pokemon, err := field.PokemonFor(target)
	if err != nil {
		*log = append(*log, messageEvent(fmt.Sprintf("Error: %v", err)))
		return
	}

	pokemon.TakeDamage(damage)
	*log = append(*log, damageEvent(target, DamageDetail{
		Amount:        damage,
		NewHP:         pokemon.CurrentHP,
		MaxHP:         pokemon.MaxHP,
		Effectiveness: effectiveness,
		Critical:      critical,
	}))
}
