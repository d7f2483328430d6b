package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/pokewilds/pokewilds-server-go/internal/config"
	"github.com/pokewilds/pokewilds-server-go/internal/dex"
)

// ErrPokemonNotFound is returned when a pokemon id does not exist for
// the player.
var ErrPokemonNotFound = errors.New("pokemon not found")

const maxLevel = 100

// NewPool opens a PostgreSQL connection pool from configuration.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	logger.Info("database connection pool initialized",
		zap.Int32("max_conns", cfg.MaxConns),
		zap.Int32("min_conns", cfg.MinConns))
	return pool, nil
}

// PostgresStore persists player collections in PostgreSQL. Structured
// fields (IVs, EVs, moves, types) live in JSONB columns.
type PostgresStore struct {
	pool      *pgxpool.Pool
	templates *dex.TemplateRepository
	logger    *zap.Logger
}

// NewPostgresStore creates a store on an existing pool.
func NewPostgresStore(pool *pgxpool.Pool, templates *dex.TemplateRepository, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{pool: pool, templates: templates, logger: logger}
}

const pokemonColumns = `id, template_id, name, level, exp, max_exp, current_hp,
	ivs, evs, nature, capture_date, moves, types, ability, status_condition`

func scanPokemon(row pgx.Row) (PokemonRecord, error) {
	var (
		rec                     PokemonRecord
		ivs, evs, moves, pTypes []byte
		status                  *string
	)
	if err := row.Scan(
		&rec.ID, &rec.TemplateID, &rec.Name, &rec.Level, &rec.Exp, &rec.MaxExp, &rec.CurrentHP,
		&ivs, &evs, &rec.Nature, &rec.CaptureDate, &moves, &pTypes, &rec.Ability, &status,
	); err != nil {
		return PokemonRecord{}, err
	}
	if err := json.Unmarshal(ivs, &rec.IVs); err != nil {
		return PokemonRecord{}, fmt.Errorf("decoding ivs for %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal(evs, &rec.EVs); err != nil {
		return PokemonRecord{}, fmt.Errorf("decoding evs for %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal(moves, &rec.Moves); err != nil {
		return PokemonRecord{}, fmt.Errorf("decoding moves for %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal(pTypes, &rec.Types); err != nil {
		return PokemonRecord{}, fmt.Errorf("decoding types for %s: %w", rec.ID, err)
	}
	if status != nil {
		rec.Status = dex.StatusCondition(*status)
	}
	return rec, nil
}

// ActivePokemon returns the player's battle party ordered by capture
// date.
func (s *PostgresStore) ActivePokemon(ctx context.Context, playerID string) ([]PokemonRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+pokemonColumns+`
		FROM pokemon
		WHERE player_id = $1 AND active
		ORDER BY party_slot`, playerID)
	if err != nil {
		return nil, fmt.Errorf("querying party for %s: %w", playerID, err)
	}
	defer rows.Close()

	var party []PokemonRecord
	for rows.Next() {
		rec, err := scanPokemon(rows)
		if err != nil {
			return nil, err
		}
		party = append(party, rec)
	}
	return party, rows.Err()
}

// AddPokemon stores a newly obtained Pokémon at the end of the party.
func (s *PostgresStore) AddPokemon(ctx context.Context, playerID string, record PokemonRecord) error {
	ivs, err := json.Marshal(record.IVs)
	if err != nil {
		return err
	}
	evs, err := json.Marshal(record.EVs)
	if err != nil {
		return err
	}
	moves, err := json.Marshal(record.Moves)
	if err != nil {
		return err
	}
	pTypes, err := json.Marshal(record.Types)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO pokemon (
			id, player_id, template_id, name, level, exp, max_exp, current_hp,
			ivs, evs, nature, capture_date, moves, types, ability, status_condition,
			active, party_slot
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			(SELECT COUNT(*) FROM pokemon WHERE player_id = $2 AND active) < 6,
			(SELECT COALESCE(MAX(party_slot), -1) + 1 FROM pokemon WHERE player_id = $2)
		)`,
		record.ID, playerID, record.TemplateID, record.Name, record.Level,
		record.Exp, record.MaxExp, record.CurrentHP,
		ivs, evs, record.Nature, record.CaptureDate, moves, pTypes,
		record.Ability, nullableStatus(record.Status),
	)
	if err != nil {
		return fmt.Errorf("inserting pokemon for %s: %w", playerID, err)
	}
	s.logger.Info("pokemon added to collection",
		zap.String("player_id", playerID),
		zap.String("pokemon_id", record.ID),
		zap.Int("template_id", record.TemplateID))
	return nil
}

// UpdatePokemon applies a partial update; nil fields are untouched.
func (s *PostgresStore) UpdatePokemon(ctx context.Context, playerID, pokemonID string, update PokemonUpdate) error {
	sets := make([]string, 0, 5)
	args := make([]any, 0, 7)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if update.Name != nil {
		sets = append(sets, "name = "+arg(*update.Name))
	}
	if update.Level != nil {
		sets = append(sets, "level = "+arg(*update.Level))
	}
	if update.Exp != nil {
		sets = append(sets, "exp = "+arg(*update.Exp))
	}
	if update.MaxExp != nil {
		sets = append(sets, "max_exp = "+arg(*update.MaxExp))
	}
	if update.CurrentHP != nil {
		sets = append(sets, "current_hp = "+arg(*update.CurrentHP))
	}
	if len(sets) == 0 {
		return nil
	}

	query := fmt.Sprintf("UPDATE pokemon SET %s WHERE player_id = %s AND id = %s",
		strings.Join(sets, ", "), arg(playerID), arg(pokemonID))
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating pokemon %s: %w", pokemonID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrPokemonNotFound, pokemonID)
	}
	return nil
}

// AddExperience adds experience inside a transaction, applying
// level-ups against the species growth curve. It returns the updated
// record and whether at least one level was gained.
func (s *PostgresStore) AddExperience(ctx context.Context, playerID, pokemonID string, amount int64) (PokemonRecord, bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return PokemonRecord{}, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rec, err := scanPokemon(tx.QueryRow(ctx, `
		SELECT `+pokemonColumns+`
		FROM pokemon
		WHERE player_id = $1 AND id = $2
		FOR UPDATE`, playerID, pokemonID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PokemonRecord{}, false, fmt.Errorf("%w: %s", ErrPokemonNotFound, pokemonID)
		}
		return PokemonRecord{}, false, err
	}

	rec.Exp += amount
	leveled := false
	for rec.Exp >= rec.MaxExp && rec.Level < maxLevel {
		rec.Level++
		rec.MaxExp = s.templates.ExpForNextLevel(rec.TemplateID, rec.Level)
		leveled = true
	}

	if _, err := tx.Exec(ctx, `
		UPDATE pokemon SET level = $1, exp = $2, max_exp = $3
		WHERE player_id = $4 AND id = $5`,
		rec.Level, rec.Exp, rec.MaxExp, playerID, pokemonID); err != nil {
		return PokemonRecord{}, false, fmt.Errorf("updating experience for %s: %w", pokemonID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return PokemonRecord{}, false, fmt.Errorf("committing experience update: %w", err)
	}

	if leveled {
		s.logger.Info("pokemon leveled up",
			zap.String("pokemon_id", pokemonID),
			zap.Int("level", rec.Level))
	}
	return rec, leveled, nil
}

func nullableStatus(status dex.StatusCondition) *string {
	if status == "" {
		return nil
	}
	s := string(status)
	return &s
}
