package dex

import (
	"math"
	"math/rand"
	"sort"

	"github.com/pokewilds/pokewilds-server-go/internal/stats"
	"go.uber.org/zap"
)

// GrowthRate shapes how quickly a species accumulates experience.
type GrowthRate string

const (
	GrowthFast       GrowthRate = "fast"
	GrowthMedium     GrowthRate = "medium"
	GrowthMediumSlow GrowthRate = "medium_slow"
	GrowthSlow       GrowthRate = "slow"
)

// Modifier returns the experience-yield multiplier for the growth rate.
func (g GrowthRate) Modifier() float64 {
	switch g {
	case GrowthFast:
		return 0.8
	case GrowthMedium:
		return 1.0
	case GrowthMediumSlow:
		return 1.2
	case GrowthSlow:
		return 1.25
	default:
		return 1.0
	}
}

// LearnableMove pairs a move id with the level it is learned at.
type LearnableMove struct {
	MoveID  int `json:"move_id"`
	Level   int `json:"level"`
}

// SpeciesTemplate is the static definition of one species.
type SpeciesTemplate struct {
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	Types          []PokemonType   `json:"types"`
	BaseStats      stats.StatSet   `json:"base_stats"`
	BaseExperience int             `json:"base_experience"`
	GrowthRate     GrowthRate      `json:"growth_rate"`
	Abilities      []string        `json:"abilities"`
	LevelUpMoves   []LearnableMove `json:"level_up_moves"`
	SpawnRate      float64         `json:"spawn_rate"`
}

// TemplateRepository is the static species lookup table. Immutable
// after load, safe for concurrent reads.
type TemplateRepository struct {
	templates map[int]SpeciesTemplate
	moves     *MoveRepository
	logger    *zap.Logger
}

// NewTemplateRepository loads species templates from a JSON file.
func NewTemplateRepository(path string, moves *MoveRepository, logger *zap.Logger) *TemplateRepository {
	repo := &TemplateRepository{
		templates: make(map[int]SpeciesTemplate),
		moves:     moves,
		logger:    logger,
	}
	var loaded []SpeciesTemplate
	if err := loadJSON(path, &loaded); err != nil {
		logger.Warn("failed to load species templates", zap.String("path", path), zap.Error(err))
		return repo
	}
	for _, tpl := range loaded {
		repo.templates[tpl.ID] = tpl
	}
	logger.Info("loaded species templates", zap.Int("templates", len(repo.templates)), zap.String("path", path))
	return repo
}

// NewTemplateRepositoryFromData builds a repository from in-memory templates.
func NewTemplateRepositoryFromData(templates []SpeciesTemplate, moves *MoveRepository) *TemplateRepository {
	repo := &TemplateRepository{
		templates: make(map[int]SpeciesTemplate, len(templates)),
		moves:     moves,
		logger:    zap.NewNop(),
	}
	for _, tpl := range templates {
		repo.templates[tpl.ID] = tpl
	}
	return repo
}

// Template returns a species template by id.
func (r *TemplateRepository) Template(id int) (SpeciesTemplate, bool) {
	tpl, ok := r.templates[id]
	return tpl, ok
}

// Moves exposes the move repository the templates were loaded against.
func (r *TemplateRepository) Moves() *MoveRepository {
	return r.moves
}

// ExpForNextLevel returns the experience threshold to advance past the
// given level: floor(baseExp * 1.2^level). Unknown templates use a
// base experience of 50.
func (r *TemplateRepository) ExpForNextLevel(templateID, level int) int64 {
	baseExp := 50
	if tpl, ok := r.templates[templateID]; ok {
		baseExp = tpl.BaseExperience
	}
	return ExpThreshold(baseExp, level)
}

// ExpThreshold computes the level-up threshold from a base experience
// value directly.
func ExpThreshold(baseExp, level int) int64 {
	return int64(math.Floor(float64(baseExp) * math.Pow(1.2, float64(level))))
}

// SelectMoves picks up to four moves a Pokémon of the given level
// would know, preferring the most recently learned moves and filling
// remaining slots at random, mirroring how the main-series games build
// wild movesets.
func (r *TemplateRepository) SelectMoves(learnable []LearnableMove, level int, rng *rand.Rand) []int {
	const maxMoves = 4

	eligible := make([]LearnableMove, 0, len(learnable))
	for _, lm := range learnable {
		if lm.Level <= level {
			eligible = append(eligible, lm)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	// Most recently learned first.
	sort.SliceStable(eligible, func(i, j int) bool { return eligible[i].Level > eligible[j].Level })

	if len(eligible) <= maxMoves {
		ids := make([]int, len(eligible))
		for i, lm := range eligible {
			ids[i] = lm.MoveID
		}
		return ids
	}

	selected := make([]int, 0, maxMoves)
	for _, lm := range eligible[:3] {
		selected = append(selected, lm.MoveID)
	}

	rest := make([]int, 0, len(eligible)-3)
	for _, lm := range eligible[3:] {
		rest = append(rest, lm.MoveID)
	}
	rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	selected = append(selected, rest[:maxMoves-len(selected)]...)

	return selected
}
