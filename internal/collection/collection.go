package collection

import (
	"context"

	"github.com/pokewilds/pokewilds-server-go/internal/dex"
	"github.com/pokewilds/pokewilds-server-go/internal/stats"
)

// MoveSlot is one learned move with its remaining PP.
type MoveSlot struct {
	ID          int `json:"id"`
	PPRemaining int `json:"pp_remaining"`
}

// PokemonRecord is a persisted Pokémon owned by a player. It is the
// source of truth between battles; battle code copies it into its own
// structures and writes back through PokemonUpdate.
type PokemonRecord struct {
	ID          string              `json:"id"`
	TemplateID  int                 `json:"template_id"`
	Name        string              `json:"name"`
	Level       int                 `json:"level"`
	Exp         int64               `json:"exp"`
	MaxExp      int64               `json:"max_exp"`
	CurrentHP   int                 `json:"current_hp"`
	IVs         stats.StatSet       `json:"ivs"`
	EVs         stats.StatSet       `json:"evs"`
	Nature      stats.Nature        `json:"nature"`
	CaptureDate int64               `json:"capture_date"`
	Moves       []MoveSlot          `json:"moves"`
	Types       []dex.PokemonType   `json:"types"`
	Ability     string              `json:"ability"`
	Status      dex.StatusCondition `json:"status_condition,omitempty"`
}

// PokemonUpdate is a partial write-back. Nil fields are left unchanged.
type PokemonUpdate struct {
	Name      *string
	Level     *int
	Exp       *int64
	MaxExp    *int64
	CurrentHP *int
}

// Store is the persistence boundary for player collections.
type Store interface {
	// ActivePokemon returns the player's battle party in order.
	ActivePokemon(ctx context.Context, playerID string) ([]PokemonRecord, error)
	// AddPokemon stores a newly obtained Pokémon.
	AddPokemon(ctx context.Context, playerID string, record PokemonRecord) error
	// UpdatePokemon applies a partial update to one Pokémon.
	UpdatePokemon(ctx context.Context, playerID, pokemonID string, update PokemonUpdate) error
	// AddExperience adds experience, applying level-ups. It returns the
	// updated record and whether at least one level was gained.
	AddExperience(ctx context.Context, playerID, pokemonID string, amount int64) (PokemonRecord, bool, error)
}
