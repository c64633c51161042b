package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	storepkg "civicsim/internal/store"
)

const defaultKey = "bot_state"

// Store keeps the snapshot as a single jsonb row keyed by name.
type Store struct {
	db  *sql.DB
	key string
}

var _ storepkg.Store = (*Store)(nil)

func NewStore(databaseURL string) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := &Store{db: db, key: defaultKey}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`create table if not exists bot_snapshots (
			key        text primary key,
			snapshot   jsonb not null,
			updated_at timestamptz not null default now()
		)`)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context) ([]byte, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`select snapshot from bot_snapshots where key = $1`, s.key,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storepkg.ErrNotFound
		}
		return nil, err
	}
	return raw, nil
}

func (s *Store) Save(ctx context.Context, snapshot []byte) error {
	_, err := s.db.ExecContext(ctx,
		`insert into bot_snapshots(key, snapshot, updated_at)
		 values ($1, $2::jsonb, now())
		 on conflict (key) do update
		 set snapshot = excluded.snapshot,
		     updated_at = now()`,
		s.key, string(snapshot),
	)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}
