package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hitoshi/bukuma/internal/model"
)

// PostgresSessionStore はPostgreSQLを使用したセッションストア。
// session_storeテーブルの固定キー行をKVとして扱う。
type PostgresSessionStore struct {
	db *sql.DB
}

// NewPostgresSessionStore はPostgresSessionStoreを生成する。
func NewPostgresSessionStore(db *sql.DB) *PostgresSessionStore {
	return &PostgresSessionStore{db: db}
}

// Get は永続化済みレコードを取得する。未保存の場合はnilを返す。
func (s *PostgresSessionStore) Get(ctx context.Context) (*model.SessionRecord, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM session_store WHERE key = $1`,
		model.SessionRecordKey,
	).Scan(&raw)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session record: %w", err)
	}

	record := &model.SessionRecord{}
	if err := json.Unmarshal(raw, record); err != nil {
		return nil, fmt.Errorf("failed to decode session record: %w", err)
	}

	return record, nil
}

// Set はレコードを全置換でUPSERTする。
func (s *PostgresSessionStore) Set(ctx context.Context, record *model.SessionRecord) error {
	if record == nil {
		return fmt.Errorf("session record is required")
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode session record: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO session_store (key, record, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (key)
		 DO UPDATE SET record = EXCLUDED.record, updated_at = now()`,
		model.SessionRecordKey, raw,
	)
	if err != nil {
		return fmt.Errorf("failed to write session record: %w", err)
	}
	return nil
}

// Clear はレコードを削除する。行が存在しない場合も成功として扱う。
func (s *PostgresSessionStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM session_store WHERE key = $1`,
		model.SessionRecordKey,
	)
	if err != nil {
		return fmt.Errorf("failed to clear session record: %w", err)
	}
	return nil
}

// compile-time interface check
var _ SessionStore = (*PostgresSessionStore)(nil)
