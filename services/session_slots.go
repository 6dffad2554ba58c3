package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SlotStore keeps named string slots per chat: the bot's analogue of a
// browser's local storage. Writes and deletes of several slots are atomic.
type SlotStore interface {
	GetSlots(ctx context.Context, chatID int64, names ...string) (map[string]string, error)
	SetSlots(ctx context.Context, chatID int64, values map[string]string) error
	DeleteSlots(ctx context.Context, chatID int64, names ...string) error
}

// sortedNames gives writes a stable order so concurrent transactions lock
// rows in the same sequence.
func sortedNames(values map[string]string) []string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PostgresSlots stores slots in the session_slots table.
type PostgresSlots struct {
	pool *pgxpool.Pool
}

func NewPostgresSlots(pool *pgxpool.Pool) *PostgresSlots {
	return &PostgresSlots{pool: pool}
}

func (s *PostgresSlots) GetSlots(ctx context.Context, chatID int64, names ...string) (map[string]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name, value FROM session_slots
		WHERE chat_id = $1 AND name = ANY($2)`,
		chatID, names,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string, len(names))
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		out[name] = value
	}
	return out, rows.Err()
}

func (s *PostgresSlots) SetSlots(ctx context.Context, chatID int64, values map[string]string) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, name := range sortedNames(values) {
			if _, err := tx.Exec(ctx, `
				INSERT INTO session_slots (chat_id, name, value, updated_at)
				VALUES ($1, $2, $3, now())
				ON CONFLICT (chat_id, name) DO UPDATE SET
					value = EXCLUDED.value,
					updated_at = now()`,
				chatID, name, values[name],
			); err != nil {
				return fmt.Errorf("set slot %s: %w", name, err)
			}
		}
		return nil
	})
}

func (s *PostgresSlots) DeleteSlots(ctx context.Context, chatID int64, names ...string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM session_slots WHERE chat_id = $1 AND name = ANY($2)`, chatID, names)
	return err
}

// SQLiteSlots is the local-file variant of PostgresSlots.
type SQLiteSlots struct {
	db *sql.DB
}

func NewSQLiteSlots(db *sql.DB) *SQLiteSlots {
	return &SQLiteSlots{db: db}
}

func (s *SQLiteSlots) GetSlots(ctx context.Context, chatID int64, names ...string) (map[string]string, error) {
	out := make(map[string]string, len(names))
	for _, name := range names {
		var value string
		err := s.db.QueryRowContext(ctx,
			`SELECT value FROM session_slots WHERE chat_id = ? AND name = ?`, chatID, name,
		).Scan(&value)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[name] = value
	}
	return out, nil
}

func (s *SQLiteSlots) SetSlots(ctx context.Context, chatID int64, values map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, name := range sortedNames(values) {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO session_slots (chat_id, name, value, updated_at)
			VALUES (?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (chat_id, name) DO UPDATE SET
				value = excluded.value,
				updated_at = CURRENT_TIMESTAMP`,
			chatID, name, values[name],
		); err != nil {
			return fmt.Errorf("set slot %s: %w", name, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteSlots) DeleteSlots(ctx context.Context, chatID int64, names ...string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, name := range names {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM session_slots WHERE chat_id = ? AND name = ?`, chatID, name,
		); err != nil {
			return fmt.Errorf("delete slot %s: %w", name, err)
		}
	}
	return tx.Commit()
}

// ChatStorage binds a SlotStore to one chat.
type ChatStorage struct {
	Store  SlotStore
	ChatID int64
}

func (c ChatStorage) GetItems(ctx context.Context, keys ...string) (map[string]string, error) {
	return c.Store.GetSlots(ctx, c.ChatID, keys...)
}

func (c ChatStorage) SetItems(ctx context.Context, items map[string]string) error {
	return c.Store.SetSlots(ctx, c.ChatID, items)
}

func (c ChatStorage) RemoveItems(ctx context.Context, keys ...string) error {
	return c.Store.DeleteSlots(ctx, c.ChatID, keys...)
}
