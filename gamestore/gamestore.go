// Package gamestore archives saved games in a sqlite database. Games are
// keyed by a hash of their contents, so saving the same game twice stores
// it once.
package gamestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/domino14/checkers/game"
)

var ErrNotFound = errors.New("game not found")

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	label TEXT NOT NULL DEFAULT '',
	player_color INTEGER NOT NULL,
	player_strategy TEXT NOT NULL,
	opponent_strategy TEXT NOT NULL,
	num_moves INTEGER NOT NULL,
	snapshot INTEGER NOT NULL,
	data BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS games_created_at ON games(created_at);
`

type Store struct {
	db *sql.DB
}

// Summary describes a stored game without its data.
type Summary struct {
	ID               string
	CreatedAt        time.Time
	Label            string
	PlayerColor      int
	PlayerStrategy   string
	OpponentStrategy string
	NumMoves         int
	Snapshot         bool
}

// Open opens or creates the database at path. ":memory:" works for tests.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// each connection would get its own database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	log.Debug().Str("path", path).Msg("opened-game-store")
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Key is the content hash a game is stored under.
func Key(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}

// Save stores a game file and returns its key. Saving a game that is
// already stored only updates its label.
func (s *Store) Save(ctx context.Context, label string, data []byte) (string, error) {
	f, err := game.ParseFile(data)
	if err != nil {
		return "", err
	}
	id := Key(data)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO games (id, created_at, label, player_color, player_strategy,
			opponent_strategy, num_moves, snapshot, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET label = excluded.label`,
		id, time.Now().UnixMilli(), label, int(f.Player.Color), f.Player.Strategy,
		f.Opponent.Strategy, len(f.Moves), f.Snapshot, data)
	if err != nil {
		return "", fmt.Errorf("saving game %v: %w", id, err)
	}
	log.Debug().Str("id", id).Str("label", label).Int("moves", len(f.Moves)).Msg("stored-game")
	return id, nil
}

// Get returns the saved game file stored under id.
func (s *Store) Get(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM games WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, id)
	}
	return data, err
}

// List returns up to limit games, most recent first.
func (s *Store) List(ctx context.Context, limit int) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, label, player_color, player_strategy,
			opponent_strategy, num_moves, snapshot
		FROM games ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Summary
	for rows.Next() {
		var sm Summary
		var created int64
		if err := rows.Scan(&sm.ID, &created, &sm.Label, &sm.PlayerColor, &sm.PlayerStrategy,
			&sm.OpponentStrategy, &sm.NumMoves, &sm.Snapshot); err != nil {
			return nil, err
		}
		sm.CreatedAt = time.UnixMilli(created)
		out = append(out, sm)
	}
	return out, rows.Err()
}

// Delete removes a game. Deleting a missing game is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	return err
}
