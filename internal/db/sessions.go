package db

import (
	"context"
	"fmt"
	"time"

	"github.com/saas-webapp/web/internal/model"
	"github.com/saas-webapp/web/internal/store"
)

// EnsureSessionSchema - sessions 테이블 생성 (없으면)
func (p *Postgres) EnsureSessionSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS sessions (
			session_key      TEXT        PRIMARY KEY,
			user_id          TEXT        NOT NULL,
			username         TEXT        NOT NULL,
			starting_credits BIGINT      NOT NULL DEFAULT 0,
			access_token     TEXT        NOT NULL,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			refreshed_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS sessions_user_id_idx ON sessions(user_id)`,
	}

	for _, query := range queries {
		if _, err := p.Pool.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to create sessions table: %w", err)
		}
	}
	return nil
}

// Save - 세션 upsert (last write wins)
func (p *Postgres) Save(ctx context.Context, sess *model.Session) error {
	if sess == nil || sess.Key == "" {
		return fmt.Errorf("session key cannot be empty")
	}
	query := `
		INSERT INTO sessions (session_key, user_id, username, starting_credits, access_token, created_at, refreshed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_key) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			username = EXCLUDED.username,
			starting_credits = EXCLUDED.starting_credits,
			access_token = EXCLUDED.access_token,
			refreshed_at = EXCLUDED.refreshed_at
	`
	_, err := p.Pool.Exec(ctx, query,
		sess.Key,
		sess.ID,
		sess.Username,
		sess.StartingCredits,
		sess.AccessToken,
		sess.CreatedAt,
		sess.RefreshedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load - 세션 조회
func (p *Postgres) Load(ctx context.Context, key string) (*model.Session, error) {
	query := `
		SELECT session_key, user_id, username, starting_credits, access_token, created_at, refreshed_at
		FROM sessions
		WHERE session_key = $1
	`
	var sess model.Session
	err := p.Pool.QueryRow(ctx, query, key).Scan(
		&sess.Key,
		&sess.ID,
		&sess.Username,
		&sess.StartingCredits,
		&sess.AccessToken,
		&sess.CreatedAt,
		&sess.RefreshedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if store.Expired(&sess, p.SessionTTL, time.Now()) {
		return nil, store.ErrNotFound
	}
	return &sess, nil
}

// Delete - 세션 삭제 (로그아웃)
func (p *Postgres) Delete(ctx context.Context, key string) error {
	_, err := p.Pool.Exec(ctx, `DELETE FROM sessions WHERE session_key = $1`, key)
	return err
}

// PurgeExpired - SessionTTL이 지난 세션 일괄 삭제
func (p *Postgres) PurgeExpired(ctx context.Context) (int, error) {
	if p.SessionTTL <= 0 {
		return 0, nil
	}
	tag, err := p.Pool.Exec(ctx, `DELETE FROM sessions WHERE created_at <= $1`, time.Now().Add(-p.SessionTTL))
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

var (
	_ store.Store  = (*Postgres)(nil)
	_ store.Purger = (*Postgres)(nil)
)
