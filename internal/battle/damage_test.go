package battle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokewilds/pokewilds-server-go/internal/dex"
	"github.com/pokewilds/pokewilds-server-go/internal/stats"
)

func power(v int) *int { return &v }

func TestCalculateDamageKnownScenario(t *testing.T) {
	// Level 50, 100 Attack, power 60 against 80 Defense:
	// ((2*50/5+2)*60*100/80)/50 + 2 = 35.0 with every modifier neutral.
	move := dex.Move{
		ID: 1, Name: "Test Strike", Power: power(60),
		Type: dex.TypeNormal, Category: dex.CategoryPhysical,
	}
	attacker := stats.StatSet{Attack: 100}
	defender := stats.StatSet{Defense: 80}

	damage, effectiveness, critical := CalculateDamage(
		50, attacker, []dex.PokemonType{dex.TypeFire}, defender, []dex.PokemonType{dex.TypeWater},
		move, nil, neutralRand(),
	)

	assert.Equal(t, 35, damage)
	assert.Equal(t, 1.0, effectiveness)
	assert.False(t, critical)
}

func TestCalculateDamageStatusMoveDealsNothing(t *testing.T) {
	move := dex.Move{ID: 2, Name: "Growl", Type: dex.TypeNormal, Category: dex.CategoryStatus}

	damage, effectiveness, critical := CalculateDamage(
		50, stats.StatSet{Attack: 100}, nil, stats.StatSet{Defense: 80}, nil,
		move, nil, neutralRand(),
	)

	assert.Zero(t, damage)
	assert.Equal(t, 1.0, effectiveness)
	assert.False(t, critical)
}

func TestCalculateDamageImmunityForcesZero(t *testing.T) {
	chart := dex.TypeChart{
		dex.TypeNormal: {dex.TypeGhost: 0.0},
	}
	move := dex.Move{
		ID: 3, Name: "Tackle", Power: power(200),
		Type: dex.TypeNormal, Category: dex.CategoryPhysical,
	}

	damage, effectiveness, _ := CalculateDamage(
		100, stats.StatSet{Attack: 200}, nil, stats.StatSet{Defense: 10},
		[]dex.PokemonType{dex.TypeGhost}, move, chart, neutralRand(),
	)

	assert.Zero(t, damage, "immune targets take no damage regardless of rounding")
	assert.Zero(t, effectiveness)
}

func TestCalculateDamageStab(t *testing.T) {
	move := dex.Move{
		ID: 4, Name: "Flamethrower", Power: power(60),
		Type: dex.TypeFire, Category: dex.CategorySpecial,
	}
	attacker := stats.StatSet{SpecialAttack: 100}
	defender := stats.StatSet{SpecialDefense: 80}

	neutral, _, _ := CalculateDamage(
		50, attacker, []dex.PokemonType{dex.TypeWater}, defender, nil,
		move, nil, neutralRand(),
	)
	stab, _, _ := CalculateDamage(
		50, attacker, []dex.PokemonType{dex.TypeFire}, defender, nil,
		move, nil, neutralRand(),
	)

	require.Positive(t, neutral)
	assert.Equal(t, 52, stab) // floor(35.0 * 1.5)
	assert.Greater(t, stab, neutral)
}

func TestCalculateDamageCategoryPicksStats(t *testing.T) {
	attacker := stats.StatSet{Attack: 200, SpecialAttack: 10}
	defender := stats.StatSet{Defense: 50, SpecialDefense: 50}

	physical, _, _ := CalculateDamage(
		50, attacker, nil, defender, nil,
		dex.Move{ID: 5, Power: power(60), Type: dex.TypeNormal, Category: dex.CategoryPhysical},
		nil, neutralRand(),
	)
	special, _, _ := CalculateDamage(
		50, attacker, nil, defender, nil,
		dex.Move{ID: 6, Power: power(60), Type: dex.TypeNormal, Category: dex.CategorySpecial},
		nil, neutralRand(),
	)

	assert.Greater(t, physical, special)
}

func TestCalculateDamageCritical(t *testing.T) {
	move := dex.Move{
		ID: 7, Name: "Slash", Power: power(60),
		Type: dex.TypeNormal, Category: dex.CategoryPhysical,
	}
	attacker := stats.StatSet{Attack: 100}
	defender := stats.StatSet{Defense: 80}

	// First roll below the 6.25% threshold forces a crit, second roll
	// keeps the random factor at its maximum.
	rng := &scriptedRand{floats: []float64{0.01, 1.0}}
	damage, _, critical := CalculateDamage(
		50, attacker, nil, defender, nil, move, nil, rng,
	)

	assert.True(t, critical)
	assert.Equal(t, 52, damage) // floor(35.0 * 1.5)
}

func TestCalculateDamageRandomFactorRange(t *testing.T) {
	move := dex.Move{
		ID: 8, Power: power(60), Type: dex.TypeNormal, Category: dex.CategoryPhysical,
	}
	attacker := stats.StatSet{Attack: 100}
	defender := stats.StatSet{Defense: 80}

	low, _, _ := CalculateDamage(50, attacker, nil, defender, nil, move, nil,
		&scriptedRand{floats: []float64{0.99, 0.0}})
	high, _, _ := CalculateDamage(50, attacker, nil, defender, nil, move, nil,
		&scriptedRand{floats: []float64{0.99, 1.0}})

	assert.Equal(t, 29, low) // floor(35.0 * 0.85)
	assert.Equal(t, 35, high)
}
