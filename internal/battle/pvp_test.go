package battle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokewilds/pokewilds-server-go/internal/dex"
	"github.com/pokewilds/pokewilds-server-go/internal/stats"
)

func testTemplates() *dex.TemplateRepository {
	return dex.NewTemplateRepositoryFromData([]dex.SpeciesTemplate{
		{
			ID:    1,
			Name:  "Testmon",
			Types: []dex.PokemonType{dex.TypeNormal},
			BaseStats: stats.StatSet{
				HP: 45, Attack: 49, Defense: 49,
				SpecialAttack: 65, SpecialDefense: 65, Speed: 45,
			},
			BaseExperience: 64,
			GrowthRate:     dex.GrowthMedium,
			Abilities:      []string{"run-away"},
		},
	}, testMoves())
}

func basicPvPMatchup(speed1, speed2 int) *PvPState {
	p1 := makePokemon(pokemonSpec{
		name: "Bulbasaur", hp: 200, attack: 80, defense: 80,
		spAtk: 80, spDef: 80, speed: speed1,
		types: []dex.PokemonType{dex.TypeGrass}, moves: []int{testTackle, testGrowl},
	}, 0)
	p2 := makePokemon(pokemonSpec{
		name: "Charmander", hp: 200, attack: 80, defense: 80,
		spAtk: 80, spDef: 80, speed: speed2,
		types: []dex.PokemonType{dex.TypeFire}, moves: []int{testTackle, testEmber},
	}, 0)
	s := makePvPState([]*BattlePokemon{p1}, []*BattlePokemon{p2})
	s.Player1Action = &Action{Type: ActionUseMove, MoveIndex: 0}
	s.Player2Action = &Action{Type: ActionUseMove, MoveIndex: 0}
	return s
}

func TestDeterminePvPOrderPrecedence(t *testing.T) {
	move := &Action{Type: ActionUseMove, MoveIndex: 0}
	item := &Action{Type: ActionUseItem, ItemID: "potion"}
	switchAction := &Action{Type: ActionSwitch, TeamIndex: 1}
	run := &Action{Type: ActionRun}

	cases := []struct {
		name     string
		p1, p2   *Action
		s1, s2   int
		expected PvPTurnOrder
	}{
		{"item beats move", item, move, 1, 100, PvPTurnOrderPlayer1First},
		{"item beats switch", switchAction, item, 100, 1, PvPTurnOrderPlayer2First},
		{"switch beats move", switchAction, move, 1, 100, PvPTurnOrderPlayer1First},
		{"faster move first", move, move, 50, 100, PvPTurnOrderPlayer2First},
		{"run acts before the opposing move", move, run, 100, 1, PvPTurnOrderPlayer2First},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := basicPvPMatchup(tc.s1, tc.s2)
			s.Player1Action = tc.p1
			s.Player2Action = tc.p2

			assert.Equal(t, tc.expected, determinePvPOrder(s, neutralRand()))
		})
	}
}

func TestDeterminePvPOrderSpeedTieCoinFlip(t *testing.T) {
	s := basicPvPMatchup(70, 70)

	assert.Equal(t, PvPTurnOrderPlayer1First, determinePvPOrder(s, &scriptedRand{ints: []int{0}}))
	assert.Equal(t, PvPTurnOrderPlayer2First, determinePvPOrder(s, &scriptedRand{ints: []int{1}}))
}

func TestResolvePvPTurnBothSidesAct(t *testing.T) {
	s := basicPvPMatchup(100, 50)

	events := ResolvePvPTurn(s, testTemplates(), neutralRand())

	assert.Len(t, eventsOfType(events, EventMoveUsed), 2)
	assert.True(t, hasMessage(events, "Bulbasaur used Tackle!"))
	assert.True(t, hasMessage(events, "Charmander used Tackle!"))
	assert.Equal(t, PvPPhaseWaitingForBoth, s.Phase)
	assert.Equal(t, 2, s.TurnNumber)
	assert.Nil(t, s.Player1Action)
	assert.Nil(t, s.Player2Action)
}

func TestResolvePvPTurnFaintSkipsOpponentAction(t *testing.T) {
	s := basicPvPMatchup(100, 50)
	s.Player2.Active().CurrentHP = 1

	events := ResolvePvPTurn(s, testTemplates(), neutralRand())

	assert.Len(t, eventsOfType(events, EventMoveUsed), 1, "a fainted side must not act")
	faints := eventsOfType(events, EventFainted)
	require.Len(t, faints, 1)
	assert.Equal(t, EntityPlayer2, faints[0].Target.Kind)
	assert.Equal(t, PvPPhaseFinished, s.Phase)
	assert.True(t, hasMessage(events, "Charmander has no usable Pokémon left! Red wins the battle!"))
}

func TestResolvePvPTurnAwardsExperienceOnFaint(t *testing.T) {
	s := basicPvPMatchup(100, 50)
	s.Player2.Active().CurrentHP = 1

	events := ResolvePvPTurn(s, testTemplates(), neutralRand())

	// floor(64 * 1.5 * 50 / 7) for the level 50 victim.
	expected := PvPExpGain(64, 50)
	assert.True(t, hasMessage(events, "Bulbasaur gained 685 experience points!"))
	gains := eventsOfType(events, EventExpGained)
	require.Len(t, gains, 1)
	assert.Equal(t, expected, gains[0].ExpGained)
	assert.Equal(t, EntityPlayer2, gains[0].Source.Kind)
	assert.Equal(t, int64(685), s.Player1.Active().Exp)
}

func TestResolvePvPTurnLevelUpOnExperience(t *testing.T) {
	s := basicPvPMatchup(100, 50)
	s.Player2.Active().CurrentHP = 1
	winner := s.Player1.Active()
	winner.Exp = 400

	events := ResolvePvPTurn(s, testTemplates(), neutralRand())

	assert.Equal(t, 51, winner.Level)
	assert.Equal(t, dex.ExpThreshold(winner.BaseExp, 51), winner.MaxExp)
	assert.True(t, hasMessage(events, "Bulbasaur grew to level 51!"))
}

func TestPvPExpGainMinimum(t *testing.T) {
	assert.Equal(t, int64(50), PvPExpGain(5, 5))
	assert.Equal(t, int64(685), PvPExpGain(64, 50))
}

func TestResolvePvPTurnSurrender(t *testing.T) {
	s := basicPvPMatchup(1, 100)
	s.Player1Action = &Action{Type: ActionRun}

	events := ResolvePvPTurn(s, testTemplates(), neutralRand())

	assert.Equal(t, "player-1", s.SurrenderedBy)
	assert.Equal(t, PvPPhaseFinished, s.Phase)
	assert.True(t, hasMessage(events, "Red surrendered the battle!"))
	assert.True(t, hasMessage(events, "Red surrendered. Blue wins!"))
	assert.Empty(t, eventsOfType(events, EventMoveUsed), "surrender ends the turn before the opponent acts")
}

func TestResolvePvPTurnCaptureItemRejected(t *testing.T) {
	s := basicPvPMatchup(100, 50)
	s.Player1Action = &Action{Type: ActionUseItem, ItemID: "poke_ball", IsCaptureItem: true}

	events := ResolvePvPTurn(s, testTemplates(), neutralRand())

	assert.True(t, hasMessage(events, "Capture items cannot be used in PvP battles."))
	assert.Empty(t, eventsOfType(events, EventCaptureAttempt))
	assert.Empty(t, eventsOfType(events, EventItemUsed))
}

func TestResolvePvPTurnHealingItemActsFirst(t *testing.T) {
	s := basicPvPMatchup(1, 100)
	s.Player1.Active().CurrentHP = 100
	s.Player1Action = &Action{Type: ActionUseItem, ItemID: "super_potion"}

	events := ResolvePvPTurn(s, testTemplates(), neutralRand())

	heals := eventsOfType(events, EventHeal)
	require.Len(t, heals, 1)
	assert.Equal(t, 50, heals[0].Heal.Amount)
	assert.Equal(t, 150, heals[0].Heal.NewHP, "the heal lands before the opposing move")
	require.Len(t, eventsOfType(events, EventItemUsed), 1)
	assert.True(t, hasMessage(events, "Red used Super Potion!"))
}

func TestResolvePvPTurnSwitchActsBeforeMove(t *testing.T) {
	bench := makePokemon(pokemonSpec{
		name: "Ivysaur", hp: 150, attack: 90, defense: 90, speed: 70,
		types: []dex.PokemonType{dex.TypeGrass}, moves: []int{testTackle},
	}, 1)
	s := basicPvPMatchup(1, 100)
	s.Player1.Team = append(s.Player1.Team, bench)
	s.Player1Action = &Action{Type: ActionSwitch, TeamIndex: 1}

	events := ResolvePvPTurn(s, testTemplates(), neutralRand())

	assert.Equal(t, 1, s.Player1.ActiveIndex)
	assert.True(t, hasMessage(events, "Bulbasaur was withdrawn! Ivysaur was sent out!"))

	// The opposing move hits the incoming Pokémon.
	damages := eventsOfType(events, EventDamageDealt)
	require.NotEmpty(t, damages)
	assert.Equal(t, EntityPlayer1, damages[0].Target.Kind)
	assert.Equal(t, 1, damages[0].Target.TeamIndex)
	assert.Less(t, bench.CurrentHP, 150)
}

func TestResolvePvPTurnBothFaintWithBenches(t *testing.T) {
	bench1 := makePokemon(pokemonSpec{name: "Ivysaur", speed: 70, moves: []int{testTackle}}, 1)
	bench2 := makePokemon(pokemonSpec{name: "Charmeleon", speed: 70, moves: []int{testTackle}}, 1)
	s := basicPvPMatchup(100, 50)
	s.Player1.Team = append(s.Player1.Team, bench1)
	s.Player2.Team = append(s.Player2.Team, bench2)

	// Both actives survive each other's status moves and faint to burn
	// at the end of the turn.
	s.Player1.Active().Status = dex.StatusBurn
	s.Player2.Active().Status = dex.StatusBurn
	s.Player1.Active().CurrentHP = 1
	s.Player2.Active().CurrentHP = 1
	s.Player1Action = &Action{Type: ActionUseMove, MoveIndex: 1}
	s.Player2Action = &Action{Type: ActionUseMove, MoveIndex: 0}
	s.Player2.Active().Moves[0].MoveID = testGrowl

	events := ResolvePvPTurn(s, testTemplates(), neutralRand())

	assert.Len(t, eventsOfType(events, EventFainted), 2)
	assert.Equal(t, PvPPhaseWaitingForBoth, s.Phase)
	assert.True(t, s.Player1.MustSwitch)
	assert.True(t, s.Player2.MustSwitch)
}

func TestResolvePvPTurnSimultaneousFaintNoBenchesIsADraw(t *testing.T) {
	s := basicPvPMatchup(100, 50)
	s.Player1.Active().Status = dex.StatusBurn
	s.Player2.Active().Status = dex.StatusBurn
	s.Player1.Active().CurrentHP = 1
	s.Player2.Active().CurrentHP = 1
	s.Player1Action = &Action{Type: ActionUseMove, MoveIndex: 1}
	s.Player2Action = &Action{Type: ActionUseMove, MoveIndex: 0}
	s.Player2.Active().Moves[0].MoveID = testGrowl

	events := ResolvePvPTurn(s, testTemplates(), neutralRand())

	assert.Len(t, eventsOfType(events, EventFainted), 2)
	assert.Equal(t, PvPPhaseFinished, s.Phase)
	assert.True(t, s.Player1.AllFainted())
	assert.True(t, s.Player2.AllFainted())
	assert.True(t, hasMessage(events, "Neither side has a usable Pokémon left! The battle ended in a draw!"))
}

func TestResolvePvPTurnSingleFaintWaitsForSwitch(t *testing.T) {
	bench := makePokemon(pokemonSpec{name: "Charmeleon", speed: 70, moves: []int{testTackle}}, 1)
	s := basicPvPMatchup(100, 50)
	s.Player2.Team = append(s.Player2.Team, bench)
	s.Player2.Active().CurrentHP = 1

	ResolvePvPTurn(s, testTemplates(), neutralRand())

	assert.Equal(t, PvPPhaseWaitingForPlayer2Switch, s.Phase)
	assert.True(t, s.Player2.MustSwitch)
	assert.False(t, s.Player1.MustSwitch)
}

func TestResolvePvPTurnBurnDamageBothSides(t *testing.T) {
	s := basicPvPMatchup(100, 50)
	s.Player1.Active().Status = dex.StatusBurn
	s.Player2.Active().Status = dex.StatusBurn
	s.Player1Action = &Action{Type: ActionUseMove, MoveIndex: 1}
	s.Player2.Active().Moves[0].MoveID = testGrowl

	events := ResolvePvPTurn(s, testTemplates(), neutralRand())

	burns := eventsOfType(events, EventStatusDamage)
	require.Len(t, burns, 2)
	for _, burn := range burns {
		assert.Equal(t, 200/16, burn.Status.Damage)
	}
}
