package dex

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pokewilds/pokewilds-server-go/internal/stats"
	"go.uber.org/zap"
)

// MoveCategory splits moves into physical, special and status.
type MoveCategory string

const (
	CategoryPhysical MoveCategory = "physical"
	CategorySpecial  MoveCategory = "special"
	CategoryStatus   MoveCategory = "status"
)

// EffectTarget selects whether an effect lands on the move's user or
// its target.
type EffectTarget string

const (
	EffectTargetUser   EffectTarget = "user"
	EffectTargetTarget EffectTarget = "target"
)

// EffectKind tags the Effect variant.
type EffectKind string

const (
	EffectDamage       EffectKind = "damage"
	EffectApplyStatus  EffectKind = "apply_status"
	EffectStatChange   EffectKind = "stat_change"
	EffectHeal         EffectKind = "heal"
	EffectFieldEffect  EffectKind = "apply_field_effect"
	EffectUniqueLogic  EffectKind = "unknown_status"
	EffectFixedDamage  EffectKind = "fixed_damage"
	EffectApplyVolatil EffectKind = "apply_volatile_status"
)

// StatChangeStep is one (stat, stages) pair inside a stat-change effect.
type StatChangeStep struct {
	Stat   stats.StatName `json:"stat"`
	Stages int            `json:"stages"`
}

// Effect describes what a move does beyond raw damage. Only the fields
// relevant to the tagged kind are populated.
type Effect struct {
	Kind EffectKind `json:"type"`

	// Damage parameters.
	RecoilPercent int `json:"recoil_damage_percent,omitempty"`
	DrainPercent  int `json:"drain_percent,omitempty"`
	CritBonus     int `json:"crit_stage_bonus,omitempty"`

	// ApplyStatus parameters.
	Status StatusCondition `json:"status,omitempty"`

	// StatChange parameters.
	Changes []StatChangeStep `json:"changes,omitempty"`

	// Heal parameters.
	HealPercent int `json:"percent,omitempty"`

	// Target indirection shared by status/stat-change/heal effects.
	Target EffectTarget `json:"target,omitempty"`
}

// SecondaryEffect is an effect with a percentage chance to trigger
// after a damaging move connects.
type SecondaryEffect struct {
	Chance int    `json:"chance"`
	Effect Effect `json:"effect"`
}

// Move is the static definition of one move.
type Move struct {
	ID          int              `json:"id"`
	Name        string           `json:"name"`
	Accuracy    *int             `json:"accuracy"`
	Power       *int             `json:"power"`
	PP          int              `json:"pp"`
	Priority    int              `json:"priority"`
	Type        PokemonType      `json:"type"`
	Category    MoveCategory     `json:"damage_class"`
	Effect      Effect           `json:"effect"`
	Secondary   *SecondaryEffect `json:"secondary_effect,omitempty"`
	Description string           `json:"description"`
}

// Struggle is the fallback move used when every regular move is out of
// PP. It is typeless in effect but calculated as a neutral physical
// hit, with quarter-damage recoil to the user.
var Struggle = Move{
	ID:       165,
	Name:     "Struggle",
	Accuracy: intPtr(100),
	Power:    intPtr(50),
	PP:       1,
	Type:     TypeNormal,
	Category: CategoryPhysical,
	Effect: Effect{
		Kind:          EffectDamage,
		RecoilPercent: 25,
	},
	Description: "Used only if all PP are gone. Hurts the user.",
}

func intPtr(v int) *int { return &v }

// MoveRepository is the static lookup table for move definitions and
// the type-effectiveness chart. It is immutable after load and safe
// for concurrent reads.
type MoveRepository struct {
	moves     map[int]Move
	typeChart TypeChart
	logger    *zap.Logger
}

// NewMoveRepository loads move data and the type chart from JSON files.
// Missing or malformed files degrade to empty tables with a warning so
// a damaged data directory does not keep the server from starting.
func NewMoveRepository(movesPath, typeChartPath string, logger *zap.Logger) *MoveRepository {
	repo := &MoveRepository{
		moves:     make(map[int]Move),
		typeChart: make(TypeChart),
		logger:    logger,
	}

	if err := loadJSON(movesPath, &repo.moves); err != nil {
		logger.Warn("failed to load move data", zap.String("path", movesPath), zap.Error(err))
	} else {
		logger.Info("loaded move data", zap.Int("moves", len(repo.moves)), zap.String("path", movesPath))
	}

	if err := loadJSON(typeChartPath, &repo.typeChart); err != nil {
		logger.Warn("failed to load type chart", zap.String("path", typeChartPath), zap.Error(err))
	} else {
		logger.Info("loaded type chart", zap.Int("types", len(repo.typeChart)), zap.String("path", typeChartPath))
	}

	return repo
}

// NewMoveRepositoryFromData builds a repository from in-memory tables.
func NewMoveRepositoryFromData(moves map[int]Move, chart TypeChart) *MoveRepository {
	if moves == nil {
		moves = make(map[int]Move)
	}
	if chart == nil {
		chart = make(TypeChart)
	}
	return &MoveRepository{moves: moves, typeChart: chart, logger: zap.NewNop()}
}

func loadJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Move returns a move definition by id.
func (r *MoveRepository) Move(id int) (Move, bool) {
	m, ok := r.moves[id]
	return m, ok
}

// MoveName returns the display name for a move id, falling back to a
// placeholder for unknown ids.
func (r *MoveRepository) MoveName(id int) string {
	if m, ok := r.moves[id]; ok {
		return m.Name
	}
	return fmt.Sprintf("Move %d", id)
}

// MaxPP returns the maximum PP for a move id, defaulting to 20 when
// the move is unknown.
func (r *MoveRepository) MaxPP(id int) int {
	if m, ok := r.moves[id]; ok {
		return m.PP
	}
	return 20
}

// TypeChart exposes the loaded effectiveness chart.
func (r *MoveRepository) TypeChart() TypeChart {
	return r.typeChart
}

// Len reports the number of loaded moves.
func (r *MoveRepository) Len() int {
	return len(r.moves)
}
