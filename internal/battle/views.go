package battle

import (
	"fmt"

	"github.com/pokewilds/pokewilds-server-go/internal/dex"
	"github.com/pokewilds/pokewilds-server-go/internal/stats"
)

// PublicView is the subset of a Pokémon's state safe to show to any
// participant or spectator.
type PublicView struct {
	TemplateID int                 `json:"template_id"`
	Name       string              `json:"name"`
	Level      int                 `json:"level"`
	HPPercent  float64             `json:"current_hp_percent"`
	MaxHP      int                 `json:"max_hp"`
	Types      []dex.PokemonType   `json:"types"`
	Status     dex.StatusCondition `json:"status,omitempty"`
	Stages     stats.StageSet      `json:"stat_modifiers"`
	Fainted    bool                `json:"is_fainted"`
	Wild       bool                `json:"is_wild"`
}

// PrivateView additionally exposes exact HP, ability, full moves with
// PP and volatile statuses. It must only be sent to the owner.
type PrivateView struct {
	TemplateID int                  `json:"template_id"`
	Name       string               `json:"name"`
	Level      int                  `json:"level"`
	CurrentHP  int                  `json:"current_hp"`
	HPPercent  float64              `json:"current_hp_percent"`
	MaxHP      int                  `json:"max_hp"`
	Types      []dex.PokemonType    `json:"types"`
	Ability    string               `json:"ability"`
	Status     dex.StatusCondition  `json:"status,omitempty"`
	Volatile   []dex.VolatileStatus `json:"volatile_statuses"`
	Stages     stats.StageSet       `json:"stat_modifiers"`
	Moves      []MoveView           `json:"moves"`
	Fainted    bool                 `json:"is_fainted"`
	TeamIndex  int                  `json:"team_index"`
}

// MoveView is one move slot with the metadata a client needs to render
// its selection UI.
type MoveView struct {
	MoveID      int              `json:"move_id"`
	Name        string           `json:"name"`
	Type        dex.PokemonType  `json:"move_type"`
	Category    dex.MoveCategory `json:"category"`
	CurrentPP   int              `json:"current_pp"`
	MaxPP       int              `json:"max_pp"`
	Power       *int             `json:"power"`
	Accuracy    *int             `json:"accuracy"`
	Description string           `json:"description"`
}

// TeamOverview is the minimal per-member info for the team sidebar.
type TeamOverview struct {
	TemplateID int                 `json:"template_id"`
	Name       string              `json:"name"`
	Level      int                 `json:"level"`
	HPPercent  float64             `json:"current_hp_percent"`
	CurrentHP  int                 `json:"current_hp"`
	MaxHP      int                 `json:"max_hp"`
	Status     dex.StatusCondition `json:"status,omitempty"`
	Fainted    bool                `json:"is_fainted"`
	TeamIndex  int                 `json:"team_index"`
}

// NewPublicView builds the spectator-safe view of a Pokémon.
func NewPublicView(p *BattlePokemon) PublicView {
	return PublicView{
		TemplateID: p.TemplateID,
		Name:       p.Name,
		Level:      p.Level,
		HPPercent:  p.HPPercent(),
		MaxHP:      p.MaxHP,
		Types:      p.Types,
		Status:     p.Status,
		Stages:     p.Stages,
		Fainted:    p.Fainted,
		Wild:       p.Wild,
	}
}

// NewPrivateView builds the owner-only view of a Pokémon.
func NewPrivateView(p *BattlePokemon, moves *dex.MoveRepository) PrivateView {
	volatile := make([]dex.VolatileStatus, 0, len(p.Volatile))
	for v := range p.Volatile {
		volatile = append(volatile, v)
	}

	moveViews := make([]MoveView, 0, len(p.Moves))
	for _, m := range p.Moves {
		moveViews = append(moveViews, newMoveView(m, moves))
	}

	return PrivateView{
		TemplateID: p.TemplateID,
		Name:       p.Name,
		Level:      p.Level,
		CurrentHP:  p.CurrentHP,
		HPPercent:  p.HPPercent(),
		MaxHP:      p.MaxHP,
		Types:      p.Types,
		Ability:    p.Ability,
		Status:     p.Status,
		Volatile:   volatile,
		Stages:     p.Stages,
		Moves:      moveViews,
		Fainted:    p.Fainted,
		TeamIndex:  p.Position,
	}
}

func newMoveView(m BattleMove, moves *dex.MoveRepository) MoveView {
	if moves != nil {
		if data, ok := moves.Move(m.MoveID); ok {
			return MoveView{
				MoveID:      m.MoveID,
				Name:        data.Name,
				Type:        data.Type,
				Category:    data.Category,
				CurrentPP:   m.CurrentPP,
				MaxPP:       m.MaxPP,
				Power:       data.Power,
				Accuracy:    data.Accuracy,
				Description: data.Description,
			}
		}
	}
	power, accuracy := 50, 100
	return MoveView{
		MoveID:    m.MoveID,
		Name:      fmt.Sprintf("Move %d", m.MoveID),
		Type:      dex.TypeNormal,
		Category:  dex.CategoryPhysical,
		CurrentPP: m.CurrentPP,
		MaxPP:     m.MaxPP,
		Power:     &power,
		Accuracy:  &accuracy,
	}
}

// NewTeamOverview builds the sidebar entry for one team member.
func NewTeamOverview(p *BattlePokemon) TeamOverview {
	return TeamOverview{
		TemplateID: p.TemplateID,
		Name:       p.Name,
		Level:      p.Level,
		HPPercent:  p.HPPercent(),
		CurrentHP:  p.CurrentHP,
		MaxHP:      p.MaxHP,
		Status:     p.Status,
		Fainted:    p.Fainted,
		TeamIndex:  p.Position,
	}
}

// TeamOverviews builds sidebar entries for a full team.
func TeamOverviews(team []*BattlePokemon) []TeamOverview {
	overview := make([]TeamOverview, 0, len(team))
	for _, member := range team {
		overview = append(overview, NewTeamOverview(member))
	}
	return overview
}
