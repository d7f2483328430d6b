package battle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokewilds/pokewilds-server-go/internal/dex"
	"github.com/pokewilds/pokewilds-server-go/internal/stats"
)

func TestApplyStatusEffect(t *testing.T) {
	player := makePokemon(pokemonSpec{name: "Bulbasaur", moves: []int{testTackle}}, 0)
	wild := makePokemon(pokemonSpec{name: "Rattata", wild: true, moves: []int{testTackle}}, 0)
	s := makeWildState([]*BattlePokemon{player}, wild)

	var log []Event
	applyStatusEffect(s, &log, dex.StatusBurn, WildRef())

	assert.Equal(t, dex.StatusBurn, wild.Status)
	require.Len(t, eventsOfType(log, EventStatusApplied), 1)
	assert.True(t, hasMessage(log, "Rattata was burned!"))
}

func TestApplyStatusEffectFailsWhenAlreadyStatused(t *testing.T) {
	player := makePokemon(pokemonSpec{name: "Bulbasaur", moves: []int{testTackle}}, 0)
	wild := makePokemon(pokemonSpec{name: "Rattata", wild: true, moves: []int{testTackle}}, 0)
	wild.Status = dex.StatusPoison
	s := makeWildState([]*BattlePokemon{player}, wild)

	var log []Event
	applyStatusEffect(s, &log, dex.StatusBurn, WildRef())

	assert.Equal(t, dex.StatusPoison, wild.Status, "existing status must not be replaced")
	assert.Empty(t, eventsOfType(log, EventStatusApplied))
	assert.True(t, hasMessage(log, "But it failed! Rattata already has a status condition."))
}

func TestApplyStatChanges(t *testing.T) {
	player := makePokemon(pokemonSpec{name: "Bulbasaur", moves: []int{testTackle}}, 0)
	wild := makePokemon(pokemonSpec{name: "Rattata", wild: true, moves: []int{testTackle}}, 0)
	s := makeWildState([]*BattlePokemon{player}, wild)

	var log []Event
	applyStatChanges(s, &log, []dex.StatChangeStep{
		{Stat: stats.StatAttack, Stages: -1},
	}, WildRef())

	stage, err := wild.Stages.Stage(stats.StatAttack)
	require.NoError(t, err)
	assert.Equal(t, -1, stage)
	require.Len(t, eventsOfType(log, EventStatChange), 1)
	assert.True(t, hasMessage(log, "Rattata's Attack fell!"))
}

func TestApplyStatChangesClampsAtBound(t *testing.T) {
	player := makePokemon(pokemonSpec{name: "Bulbasaur", moves: []int{testTackle}}, 0)
	wild := makePokemon(pokemonSpec{name: "Rattata", wild: true, moves: []int{testTackle}}, 0)
	require.NoError(t, wild.Stages.SetStage(stats.StatAttack, stats.MaxStage))
	s := makeWildState([]*BattlePokemon{player}, wild)

	var log []Event
	applyStatChanges(s, &log, []dex.StatChangeStep{
		{Stat: stats.StatAttack, Stages: 2},
	}, WildRef())

	stage, err := wild.Stages.Stage(stats.StatAttack)
	require.NoError(t, err)
	assert.Equal(t, stats.MaxStage, stage)
	assert.Empty(t, eventsOfType(log, EventStatChange), "a no-op at the bound must not emit a stat change event")
	assert.True(t, hasMessage(log, "Rattata's stats won't go any higher!"))
}

func TestApplyStatChangesPartialClamp(t *testing.T) {
	player := makePokemon(pokemonSpec{name: "Bulbasaur", moves: []int{testTackle}}, 0)
	wild := makePokemon(pokemonSpec{name: "Rattata", wild: true, moves: []int{testTackle}}, 0)
	require.NoError(t, wild.Stages.SetStage(stats.StatSpeed, 5))
	s := makeWildState([]*BattlePokemon{player}, wild)

	var log []Event
	applyStatChanges(s, &log, []dex.StatChangeStep{
		{Stat: stats.StatSpeed, Stages: 3},
	}, WildRef())

	stage, err := wild.Stages.Stage(stats.StatSpeed)
	require.NoError(t, err)
	assert.Equal(t, stats.MaxStage, stage, "overshooting raises to the bound")
	require.Len(t, eventsOfType(log, EventStatChange), 1)
}

func TestApplyEffectTargetsUserWhenRequested(t *testing.T) {
	player := makePokemon(pokemonSpec{name: "Bulbasaur", moves: []int{testTackle}}, 0)
	wild := makePokemon(pokemonSpec{name: "Rattata", wild: true, moves: []int{testTackle}}, 0)
	s := makeWildState([]*BattlePokemon{player}, wild)

	var log []Event
	applyEffect(s, &log, dex.Effect{
		Kind:   dex.EffectStatChange,
		Target: dex.EffectTargetUser,
		Changes: []dex.StatChangeStep{
			{Stat: stats.StatDefense, Stages: 1},
		},
	}, PlayerRef(0), WildRef())

	stage, err := player.Stages.Stage(stats.StatDefense)
	require.NoError(t, err)
	assert.Equal(t, 1, stage, "user-targeted effects land on the source")
}

func TestApplyEffectUnhandledKindsMessage(t *testing.T) {
	player := makePokemon(pokemonSpec{name: "Bulbasaur", moves: []int{testTackle}}, 0)
	wild := makePokemon(pokemonSpec{name: "Rattata", wild: true, moves: []int{testTackle}}, 0)
	s := makeWildState([]*BattlePokemon{player}, wild)

	var log []Event
	applyEffect(s, &log, dex.Effect{Kind: dex.EffectHeal, HealPercent: 50}, PlayerRef(0), WildRef())
	applyEffect(s, &log, dex.Effect{Kind: dex.EffectFieldEffect}, PlayerRef(0), WildRef())

	assert.True(t, hasMessage(log, "Healing effect not fully implemented yet."))
	assert.True(t, hasMessage(log, "This move effect is not implemented yet."))
}

func TestApplyDamageFloorsAtZero(t *testing.T) {
	player := makePokemon(pokemonSpec{name: "Bulbasaur", hp: 30, moves: []int{testTackle}}, 0)
	wild := makePokemon(pokemonSpec{name: "Rattata", wild: true, moves: []int{testTackle}}, 0)
	s := makeWildState([]*BattlePokemon{player}, wild)

	var log []Event
	applyDamageWithEffectiveness(s, &log, PlayerRef(0), 9999, 1.0, false)

	assert.Zero(t, player.CurrentHP, "HP never underflows")
	damages := eventsOfType(log, EventDamageDealt)
	require.Len(t, damages, 1)
	assert.Zero(t, damages[0].Damage.NewHP)
	assert.Equal(t, 9999, damages[0].Damage.Amount)
}
