package dex

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokewilds/pokewilds-server-go/internal/stats"
)

func testTemplateRepo() *TemplateRepository {
	return NewTemplateRepositoryFromData([]SpeciesTemplate{
		{
			ID:             1,
			Name:           "Bulbasaur",
			Types:          []PokemonType{TypeGrass, TypePoison},
			BaseStats:      stats.StatSet{HP: 45, Attack: 49, Defense: 49, SpecialAttack: 65, SpecialDefense: 65, Speed: 45},
			BaseExperience: 64,
			GrowthRate:     GrowthMediumSlow,
		},
	}, NewMoveRepositoryFromData(nil, nil))
}

func TestTemplateLookup(t *testing.T) {
	repo := testTemplateRepo()

	tpl, ok := repo.Template(1)
	require.True(t, ok)
	assert.Equal(t, "Bulbasaur", tpl.Name)

	_, ok = repo.Template(151)
	assert.False(t, ok)
}

func TestExpThreshold(t *testing.T) {
	// floor(64 * 1.2^5) = floor(159.25) = 159
	assert.Equal(t, int64(159), ExpThreshold(64, 5))
	assert.Equal(t, int64(76), ExpThreshold(64, 1))
}

func TestExpForNextLevel(t *testing.T) {
	repo := testTemplateRepo()

	assert.Equal(t, ExpThreshold(64, 5), repo.ExpForNextLevel(1, 5))
	assert.Equal(t, ExpThreshold(50, 5), repo.ExpForNextLevel(999, 5), "unknown templates use a base of 50")
}

func TestGrowthRateModifier(t *testing.T) {
	assert.Equal(t, 0.8, GrowthFast.Modifier())
	assert.Equal(t, 1.0, GrowthMedium.Modifier())
	assert.Equal(t, 1.2, GrowthMediumSlow.Modifier())
	assert.Equal(t, 1.25, GrowthSlow.Modifier())
	assert.Equal(t, 1.0, GrowthRate("unknown").Modifier())
}

func TestSelectMovesPrefersRecentlyLearned(t *testing.T) {
	repo := testTemplateRepo()
	learnable := []LearnableMove{
		{MoveID: 33, Level: 1},
		{MoveID: 45, Level: 1},
		{MoveID: 73, Level: 7},
		{MoveID: 22, Level: 13},
		{MoveID: 77, Level: 20},
		{MoveID: 75, Level: 27},
	}
	rng := rand.New(rand.NewSource(1))

	selected := repo.SelectMoves(learnable, 30, rng)

	require.Len(t, selected, 4)
	// The three most recently learned moves are always kept.
	assert.Contains(t, selected, 75)
	assert.Contains(t, selected, 77)
	assert.Contains(t, selected, 22)
}

func TestSelectMovesLevelGate(t *testing.T) {
	repo := testTemplateRepo()
	learnable := []LearnableMove{
		{MoveID: 33, Level: 1},
		{MoveID: 73, Level: 7},
		{MoveID: 75, Level: 27},
	}
	rng := rand.New(rand.NewSource(1))

	selected := repo.SelectMoves(learnable, 10, rng)

	assert.ElementsMatch(t, []int{73, 33}, selected, "moves above the level are not learnable")

	assert.Nil(t, repo.SelectMoves(nil, 10, rng))
}
