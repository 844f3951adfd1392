package vault

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists sessions and the auth-event trail in Postgres.
// Schema:
//
//	sessions(id, user_id, platform, url, ciphertext, metadata jsonb,
//	         created_at, expires_at, last_used_at,
//	         UNIQUE (user_id, platform))
//	auth_events(id, user_id, platform, type, detail, at)
type PostgresStore struct {
	db *pgxpool.Pool
}

func ConnectPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	// IMPORTANT: Supabase connection pooler (PgBouncer in Transaction mode)
	// does not support prepared statements easily. We MUST disable the statement cache.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Ping to ensure connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &PostgresStore{db: pool}, nil
}

func (p *PostgresStore) Close() {
	if p.db != nil {
		p.db.Close()
	}
}

func (p *PostgresStore) Upsert(ctx context.Context, s *EncryptedSession) error {
	query := `
		INSERT INTO sessions (id, user_id, platform, url, ciphertext, metadata, created_at, expires_at, last_used_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, platform)
		DO UPDATE SET url = EXCLUDED.url, ciphertext = EXCLUDED.ciphertext, metadata = EXCLUDED.metadata,
			created_at = EXCLUDED.created_at, expires_at = EXCLUDED.expires_at, last_used_at = EXCLUDED.last_used_at`

	_, err := p.db.Exec(ctx, query, s.ID, s.UserID, s.Platform, s.URL, s.Ciphertext, s.Metadata, s.CreatedAt, s.ExpiresAt, s.LastUsedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}
	return nil
}

func (p *PostgresStore) Get(ctx context.Context, userID, platformName string) (*EncryptedSession, error) {
	var s EncryptedSession
	query := `SELECT id, user_id, platform, url, ciphertext, metadata, created_at, expires_at, last_used_at
		FROM sessions WHERE user_id = $1 AND platform = $2`
	err := p.db.QueryRow(ctx, query, userID, platformName).
		Scan(&s.ID, &s.UserID, &s.Platform, &s.URL, &s.Ciphertext, &s.Metadata, &s.CreatedAt, &s.ExpiresAt, &s.LastUsedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

func (p *PostgresStore) Touch(ctx context.Context, userID, platformName string, lastUsed time.Time) error {
	_, err := p.db.Exec(ctx, "UPDATE sessions SET last_used_at = $1 WHERE user_id = $2 AND platform = $3",
		lastUsed, userID, platformName)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

func (p *PostgresStore) SetExpiry(ctx context.Context, userID, platformName string, expiresAt time.Time) error {
	tag, err := p.db.Exec(ctx, "UPDATE sessions SET expires_at = $1 WHERE user_id = $2 AND platform = $3",
		expiresAt, userID, platformName)
	if err != nil {
		return fmt.Errorf("failed to set session expiry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, userID, platformName string) error {
	_, err := p.db.Exec(ctx, "DELETE FROM sessions WHERE user_id = $1 AND platform = $2", userID, platformName)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (p *PostgresStore) DeleteAll(ctx context.Context, userID string) (int, error) {
	tag, err := p.db.Exec(ctx, "DELETE FROM sessions WHERE user_id = $1", userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete sessions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (p *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	tag, err := p.db.Exec(ctx, "DELETE FROM sessions WHERE expires_at < $1", now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (p *PostgresStore) AppendEvent(ctx context.Context, e AuthEvent) error {
	_, err := p.db.Exec(ctx, "INSERT INTO auth_events (id, user_id, platform, type, detail, at) VALUES ($1, $2, $3, $4, $5, $6)",
		e.ID, e.UserID, e.Platform, e.Type, e.Detail, e.At)
	if err != nil {
		return fmt.Errorf("failed to append auth event: %w", err)
	}
	return nil
}
