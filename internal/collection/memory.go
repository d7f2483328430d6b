package collection

import (
	"context"
	"fmt"
	"sync"

	"github.com/pokewilds/pokewilds-server-go/internal/dex"
)

// MemoryStore is an in-memory Store used by tests and local runs
// without a database.
type MemoryStore struct {
	templates *dex.TemplateRepository

	mu      sync.RWMutex
	parties map[string][]PokemonRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(templates *dex.TemplateRepository) *MemoryStore {
	return &MemoryStore{
		templates: templates,
		parties:   make(map[string][]PokemonRecord),
	}
}

// SetParty replaces a player's party wholesale.
func (s *MemoryStore) SetParty(playerID string, party []PokemonRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parties[playerID] = append([]PokemonRecord(nil), party...)
}

// ActivePokemon returns a copy of the player's party.
func (s *MemoryStore) ActivePokemon(ctx context.Context, playerID string) ([]PokemonRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]PokemonRecord(nil), s.parties[playerID]...), nil
}

// AddPokemon appends to the player's party.
func (s *MemoryStore) AddPokemon(ctx context.Context, playerID string, record PokemonRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parties[playerID] = append(s.parties[playerID], record)
	return nil
}

// UpdatePokemon applies a partial update to one party member.
func (s *MemoryStore) UpdatePokemon(ctx context.Context, playerID, pokemonID string, update PokemonUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	party := s.parties[playerID]
	for i := range party {
		if party[i].ID != pokemonID {
			continue
		}
		if update.Name != nil {
			party[i].Name = *update.Name
		}
		if update.Level != nil {
			party[i].Level = *update.Level
		}
		if update.Exp != nil {
			party[i].Exp = *update.Exp
		}
		if update.MaxExp != nil {
			party[i].MaxExp = *update.MaxExp
		}
		if update.CurrentHP != nil {
			party[i].CurrentHP = *update.CurrentHP
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrPokemonNotFound, pokemonID)
}

// AddExperience adds experience and applies level-ups.
func (s *MemoryStore) AddExperience(ctx context.Context, playerID, pokemonID string, amount int64) (PokemonRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	party := s.parties[playerID]
	for i := range party {
		if party[i].ID != pokemonID {
			continue
		}
		party[i].Exp += amount
		leveled := false
		for party[i].Exp >= party[i].MaxExp && party[i].Level < maxLevel {
			party[i].Level++
			party[i].MaxExp = s.templates.ExpForNextLevel(party[i].TemplateID, party[i].Level)
			leveled = true
		}
		return party[i], leveled, nil
	}
	return PokemonRecord{}, false, fmt.Errorf("%w: %s", ErrPokemonNotFound, pokemonID)
}
