package battle

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/pokewilds/pokewilds-server-go/internal/collection"
	"github.com/pokewilds/pokewilds-server-go/internal/dex"
	"github.com/pokewilds/pokewilds-server-go/internal/lobby"
	"github.com/pokewilds/pokewilds-server-go/internal/stats"
)

// FromRecord builds a battle Pokémon from a persisted collection
// record. Stats are recalculated from the template's base stats so a
// stale record cannot carry wrong values into battle.
func FromRecord(rec collection.PokemonRecord, position int, templates *dex.TemplateRepository) (*BattlePokemon, error) {
	template, ok := templates.Template(rec.TemplateID)
	if !ok {
		return nil, fmt.Errorf("unknown species template %d for pokemon %s", rec.TemplateID, rec.ID)
	}

	moves := templates.Moves()
	battleMoves := make([]BattleMove, 0, len(rec.Moves))
	for _, slot := range rec.Moves {
		battleMoves = append(battleMoves, BattleMove{
			MoveID:    slot.ID,
			CurrentPP: slot.PPRemaining,
			MaxPP:     moves.MaxPP(slot.ID),
		})
	}

	calculated := stats.Calculate(template.BaseStats, rec.Level, rec.IVs, rec.EVs, rec.Nature)

	types := rec.Types
	if len(types) == 0 {
		types = template.Types
	}
	ability := rec.Ability
	if ability == "" && len(template.Abilities) > 0 {
		ability = template.Abilities[0]
	}

	currentHP := rec.CurrentHP
	if currentHP > calculated.HP {
		currentHP = calculated.HP
	}

	return &BattlePokemon{
		TemplateID: rec.TemplateID,
		Name:       rec.Name,
		Level:      rec.Level,
		Types:      types,
		Ability:    ability,
		Moves:      battleMoves,
		InstanceID: rec.ID,
		BaseExp:    template.BaseExperience,
		Exp:        rec.Exp,
		MaxExp:     rec.MaxExp,
		Stats:      calculated,
		IVs:        rec.IVs,
		EVs:        rec.EVs,
		Nature:     rec.Nature,
		CurrentHP:  currentHP,
		MaxHP:      calculated.HP,
		Status:     rec.Status,
		Volatile:   make(map[dex.VolatileStatus]VolatileState),
		Fainted:    currentHP == 0,
		Position:   position,
	}, nil
}

// FromWildMonster builds a battle Pokémon from a spawned wild monster.
// The monster snapshot already carries calculated stats.
func FromWildMonster(m lobby.WildMonster, templates *dex.TemplateRepository) (*BattlePokemon, error) {
	template, ok := templates.Template(m.TemplateID)
	if !ok {
		return nil, fmt.Errorf("unknown species template %d for wild monster %s", m.TemplateID, m.InstanceID)
	}

	moves := templates.Moves()
	battleMoves := make([]BattleMove, 0, len(m.Moves))
	for _, slot := range m.Moves {
		battleMoves = append(battleMoves, BattleMove{
			MoveID:    slot.ID,
			CurrentPP: slot.PPRemaining,
			MaxPP:     moves.MaxPP(slot.ID),
		})
	}

	types := m.Types
	if len(types) == 0 {
		types = template.Types
	}

	return &BattlePokemon{
		TemplateID: m.TemplateID,
		Name:       m.Name,
		Level:      m.Level,
		Types:      types,
		Ability:    m.Ability,
		Moves:      battleMoves,
		InstanceID: m.InstanceID,
		BaseExp:    template.BaseExperience,
		MaxExp:     dex.ExpThreshold(template.BaseExperience, m.Level),
		Stats:      m.Stats,
		IVs:        m.IVs,
		EVs:        m.EVs,
		Nature:     m.Nature,
		CurrentHP:  m.CurrentHP,
		MaxHP:      m.Stats.HP,
		Status:     m.Status,
		Volatile:   make(map[dex.VolatileStatus]VolatileState),
		Fainted:    m.CurrentHP == 0,
		Wild:       true,
	}, nil
}

// WildExpGain computes the experience awarded for defeating a wild
// Pokémon: ceil(base * level / 7), scaled by the species growth rate.
func WildExpGain(wild *BattlePokemon, templates *dex.TemplateRepository) int64 {
	growth := dex.GrowthMedium
	if template, ok := templates.Template(wild.TemplateID); ok {
		growth = template.GrowthRate
	}

	base := math.Ceil(float64(wild.BaseExp) * float64(wild.Level) / 7.0)
	return int64(math.Ceil(base * growth.Modifier()))
}

// RecordUpdate extracts the fields a battle may have changed into a
// partial collection update.
func RecordUpdate(p *BattlePokemon) collection.PokemonUpdate {
	level := p.Level
	exp := p.Exp
	maxExp := p.MaxExp
	hp := p.CurrentHP
	return collection.PokemonUpdate{
		Level:     &level,
		Exp:       &exp,
		MaxExp:    &maxExp,
		CurrentHP: &hp,
	}
}

// CapturedRecord builds the collection record for a freshly caught wild
// Pokémon. HP carries over from the battle, so a weakened catch stays
// weakened.
func CapturedRecord(wild *BattlePokemon) collection.PokemonRecord {
	moves := make([]collection.MoveSlot, 0, len(wild.Moves))
	for _, m := range wild.Moves {
		moves = append(moves, collection.MoveSlot{ID: m.MoveID, PPRemaining: m.CurrentPP})
	}

	return collection.PokemonRecord{
		ID:          uuid.NewString(),
		TemplateID:  wild.TemplateID,
		Name:        wild.Name,
		Level:       wild.Level,
		Exp:         wild.Exp,
		MaxExp:      wild.MaxExp,
		CurrentHP:   wild.CurrentHP,
		IVs:         wild.IVs,
		EVs:         wild.EVs,
		Nature:      wild.Nature,
		CaptureDate: time.Now().Unix(),
		Moves:       moves,
		Types:       wild.Types,
		Ability:     wild.Ability,
		Status:      wild.Status,
	}
}
