package battle

import (
	"github.com/google/uuid"

	"github.com/pokewilds/pokewilds-server-go/internal/dex"
	"github.com/pokewilds/pokewilds-server-go/internal/stats"
)

// scriptedRand replays fixed sequences for deterministic tests. Both
// sequences cycle when exhausted.
type scriptedRand struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.99
	}
	v := r.floats[r.fi%len(r.floats)]
	r.fi++
	return v
}

func (r *scriptedRand) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[r.ii%len(r.ints)]
	r.ii++
	return v % n
}

// neutralRand never crits and always rolls the maximum damage factor,
// so damage equals the floored base formula.
func neutralRand() *scriptedRand {
	return &scriptedRand{floats: []float64{0.99, 1.0}}
}

// Test move ids.
const (
	testTackle  = 33
	testGrowl   = 45
	testEmber   = 52
	testEarthqk = 89
	testTwave   = 86
)

func testMoves() *dex.MoveRepository {
	power := func(v int) *int { return &v }
	acc := func(v int) *int { return &v }

	moves := map[int]dex.Move{
		testTackle: {
			ID: testTackle, Name: "Tackle", Power: power(35), Accuracy: acc(100),
			PP: 35, Type: dex.TypeNormal, Category: dex.CategoryPhysical,
		},
		testGrowl: {
			ID: testGrowl, Name: "Growl", Accuracy: acc(100),
			PP: 40, Type: dex.TypeNormal, Category: dex.CategoryStatus,
			Effect: dex.Effect{
				Kind:   dex.EffectStatChange,
				Target: dex.EffectTargetTarget,
				Changes: []dex.StatChangeStep{
					{Stat: stats.StatAttack, Stages: -1},
				},
			},
		},
		testEmber: {
			ID: testEmber, Name: "Ember", Power: power(40), Accuracy: acc(100),
			PP: 25, Type: dex.TypeFire, Category: dex.CategorySpecial,
			Secondary: &dex.SecondaryEffect{
				Chance: 10,
				Effect: dex.Effect{
					Kind:   dex.EffectApplyStatus,
					Status: dex.StatusBurn,
					Target: dex.EffectTargetTarget,
				},
			},
		},
		testEarthqk: {
			ID: testEarthqk, Name: "Earthquake", Power: power(100), Accuracy: acc(100),
			PP: 10, Type: dex.TypeGround, Category: dex.CategoryPhysical,
		},
		testTwave: {
			ID: testTwave, Name: "Thunder Wave", Accuracy: acc(90),
			PP: 20, Type: dex.TypeElectric, Category: dex.CategoryStatus,
			Effect: dex.Effect{
				Kind:   dex.EffectApplyStatus,
				Status: dex.StatusParalysis,
				Target: dex.EffectTargetTarget,
			},
		},
	}

	chart := dex.TypeChart{
		dex.TypeFire: {
			dex.TypeGrass: 2.0,
			dex.TypeWater: 0.5,
			dex.TypeFire:  0.5,
		},
		dex.TypeGround: {
			dex.TypeFlying:   0.0,
			dex.TypeElectric: 2.0,
		},
		dex.TypeNormal: {
			dex.TypeGhost: 0.0,
			dex.TypeRock:  0.5,
		},
	}

	return dex.NewMoveRepositoryFromData(moves, chart)
}

// pokemonSpec is a compact description of a test combatant.
type pokemonSpec struct {
	name    string
	level   int
	types   []dex.PokemonType
	hp      int
	attack  int
	defense int
	spAtk   int
	spDef   int
	speed   int
	moves   []int
	wild    bool
}

func makePokemon(spec pokemonSpec, position int) *BattlePokemon {
	if spec.level == 0 {
		spec.level = 50
	}
	if spec.hp == 0 {
		spec.hp = 100
	}
	set := stats.StatSet{
		HP:             spec.hp,
		Attack:         spec.attack,
		Defense:        spec.defense,
		SpecialAttack:  spec.spAtk,
		SpecialDefense: spec.spDef,
		Speed:          spec.speed,
	}
	moves := make([]BattleMove, 0, len(spec.moves))
	for _, id := range spec.moves {
		moves = append(moves, BattleMove{MoveID: id, CurrentPP: 10, MaxPP: 10})
	}
	return &BattlePokemon{
		TemplateID: 1,
		Name:       spec.name,
		Level:      spec.level,
		Types:      spec.types,
		Moves:      moves,
		InstanceID: spec.name + "-id",
		BaseExp:    64,
		MaxExp:     1000,
		Stats:      set,
		Nature:     stats.NatureHardy,
		CurrentHP:  spec.hp,
		MaxHP:      spec.hp,
		Volatile:   make(map[dex.VolatileStatus]VolatileState),
		Position:   position,
		Wild:       spec.wild,
	}
}

func makeWildState(player []*BattlePokemon, wild *BattlePokemon) *WildState {
	s := NewWildState(uuid.New(), BattlePlayer{
		PlayerID: "player-1",
		Name:     "Red",
		Team:     player,
	}, wild, testMoves())
	s.Phase = WildPhaseProcessing
	return s
}

func makePvPState(team1, team2 []*BattlePokemon) *PvPState {
	s := NewPvPState(uuid.New(),
		BattlePlayer{PlayerID: "player-1", Name: "Red", Team: team1},
		BattlePlayer{PlayerID: "player-2", Name: "Blue", Team: team2},
		testMoves())
	s.Phase = PvPPhaseProcessing
	return s
}

func eventsOfType(events []Event, kind EventType) []Event {
	var out []Event
	for _, ev := range events {
		if ev.Type == kind {
			out = append(out, ev)
		}
	}
	return out
}

func hasMessage(events []Event, message string) bool {
	for _, ev := range events {
		if ev.Type == EventGenericMessage && ev.Message == message {
			return true
		}
	}
	return false
}
