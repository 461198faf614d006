package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/hellojohn-connect/internal/observability/logger"
	migrations "github.com/dropDatabas3/hellojohn-connect/migrations/postgres"
)

// PGStore implements Store on PostgreSQL. Take is a single
// DELETE ... RETURNING, so concurrent consumers cannot both read the row.
type PGStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPGStore wraps an existing pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool, now: time.Now}
}

// OpenPGStore creates a pool for dsn and applies the embedded migrations.
func OpenPGStore(ctx context.Context, dsn string) (*PGStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("session: parse dsn: %w", err)
	}
	if cfg.MaxConns == 0 {
		cfg.MaxConns = 10
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("session: connect: %w", err)
	}
	s := NewPGStore(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Migrate applies the embedded SQL files. They are idempotent.
func (s *PGStore) Migrate(ctx context.Context) error {
	names, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		sql, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			return err
		}
		if _, err := s.pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("session: migration %s: %w", name, err)
		}
	}
	return nil
}

func (s *PGStore) expiry(ttl time.Duration) *time.Time {
	if ttl <= 0 {
		return nil
	}
	t := s.now().Add(ttl).UTC()
	return &t
}

func (s *PGStore) Get(ctx context.Context, sessionID, slot string) ([]byte, error) {
	var v []byte
	err := s.pool.QueryRow(ctx, `
		SELECT value FROM oauth_session_slots
		WHERE session_id = $1 AND slot = $2
		  AND (expires_at IS NULL OR expires_at > $3)`,
		sessionID, slot, s.now().UTC(),
	).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return v, err
}

func (s *PGStore) Set(ctx context.Context, sessionID, slot string, value []byte, ttl time.Duration) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO oauth_session_slots (session_id, slot, value, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id, slot)
		DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at, created_at = now()`,
		sessionID, slot, value, s.expiry(ttl),
	)
	return err
}

func (s *PGStore) Delete(ctx context.Context, sessionID, slot string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM oauth_session_slots WHERE session_id = $1 AND slot = $2`,
		sessionID, slot,
	)
	return err
}

func (s *PGStore) Take(ctx context.Context, sessionID, slot string) ([]byte, error) {
	var (
		v   []byte
		exp *time.Time
	)
	err := s.pool.QueryRow(ctx, `
		DELETE FROM oauth_session_slots
		WHERE session_id = $1 AND slot = $2
		RETURNING value, expires_at`,
		sessionID, slot,
	).Scan(&v, &exp)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if exp != nil && !exp.After(s.now()) {
		return nil, ErrNotFound
	}
	return v, nil
}

// PurgeExpired deletes expired slots and returns how many were removed.
func (s *PGStore) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM oauth_session_slots WHERE expires_at IS NOT NULL AND expires_at <= $1`,
		s.now().UTC(),
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Ping checks the database connection.
func (s *PGStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the pool.
func (s *PGStore) Close() {
	s.pool.Close()
}

// RunJanitor llama a PurgeExpired cada interval hasta que ctx se cancele.
func (s *PGStore) RunJanitor(ctx context.Context, interval time.Duration) {
	log := logger.From(ctx).With(logger.Component("session.pg"), logger.Op("janitor"))
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.PurgeExpired(ctx)
			if err != nil {
				log.Warn("purge expired slots failed", logger.Err(err))
				continue
			}
			if n > 0 {
				log.Debug("expired slots purged", logger.Count(int(n)))
			}
		}
	}
}
