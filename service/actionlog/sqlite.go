package actionlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/viant/skillet/internal/clock"
	_ "modernc.org/sqlite"
)

// sqliteService persists action-log entries in SQLite so the log survives
// process restarts.
type sqliteService struct {
	db *sql.DB
}

// NewSQLite creates a SQLite-backed action log and ensures schema.
func NewSQLite(db *sql.DB) (Service, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return &sqliteService{db: db}, nil
}

// OpenSQLite opens (or creates) the database at the supplied DSN and returns
// a log backed by it. Use "file::memory:?cache=shared" for an in-process log.
func OpenSQLite(dsn string) (Service, *sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, err
	}
	service, err := NewSQLite(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return service, db, nil
}

func (s *sqliteService) Append(ctx context.Context, entry *Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = clock.Now()
	}
	detail := ""
	if len(entry.Detail) > 0 {
		data, err := json.Marshal(entry.Detail)
		if err != nil {
			return err
		}
		detail = string(data)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO action_log (
			id, kind, skill_name, card_id, user_id, pillar, detail_json, error_text, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entry.ID,
		string(entry.Kind),
		entry.SkillName,
		entry.CardID,
		entry.UserID,
		entry.Pillar,
		detail,
		entry.Error,
		entry.CreatedAt.UTC(),
	)
	return err
}

func (s *sqliteService) List(ctx context.Context, filter *Filter) ([]*Entry, error) {
	query := `
		SELECT id, kind, skill_name, card_id, user_id, pillar, detail_json, error_text, created_at
		FROM action_log
	`
	var args []any
	where := ""
	addFilter := func(clause string, value any) {
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
		args = append(args, value)
	}
	if filter != nil {
		if filter.Kind != "" {
			addFilter("kind = ?", string(filter.Kind))
		}
		if filter.SkillName != "" {
			addFilter("skill_name = ?", filter.SkillName)
		}
		if filter.UserID != "" {
			addFilter("user_id = ?", filter.UserID)
		}
	}
	query += where + " ORDER BY created_at ASC, rowid ASC"
	if filter != nil && filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var (
			entry      Entry
			kind       string
			detailJSON string
			created    sql.NullTime
		)
		if err := rows.Scan(
			&entry.ID,
			&kind,
			&entry.SkillName,
			&entry.CardID,
			&entry.UserID,
			&entry.Pillar,
			&detailJSON,
			&entry.Error,
			&created,
		); err != nil {
			return nil, err
		}
		entry.Kind = Kind(kind)
		if detailJSON != "" {
			_ = json.Unmarshal([]byte(detailJSON), &entry.Detail)
		}
		if created.Valid {
			entry.CreatedAt = created.Time
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS action_log (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			skill_name TEXT,
			card_id TEXT,
			user_id TEXT,
			pillar TEXT,
			detail_json TEXT,
			error_text TEXT,
			created_at TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_action_log_kind ON action_log(kind);
		CREATE INDEX IF NOT EXISTS idx_action_log_skill ON action_log(skill_name);
		CREATE INDEX IF NOT EXISTS idx_action_log_user ON action_log(user_id);
	`)
	return err
}
