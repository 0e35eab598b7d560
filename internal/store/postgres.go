package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS job_records (
    id          SERIAL PRIMARY KEY,
    title       TEXT NOT NULL,
    company     TEXT NOT NULL,
    location    TEXT NOT NULL,
    date_posted TEXT NOT NULL DEFAULT '',
    url         TEXT NOT NULL,
    source      TEXT NOT NULL DEFAULT '',
    scraped_at  TEXT NOT NULL,
    email_sent  BOOLEAN NOT NULL DEFAULT FALSE
);`

// PostgresStore offers the same wholesale load/save contract as FileStore,
// backed by Postgres for deployments that already run one.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping db: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ensure schema: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Load(ctx context.Context) ([]JobRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT title, company, location, date_posted, url, source, scraped_at, email_sent
FROM job_records
ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("store: query records: %w", err)
	}
	defer rows.Close()

	var records []JobRecord
	for rows.Next() {
		var r JobRecord
		if err := rows.Scan(
			&r.Title,
			&r.Company,
			&r.Location,
			&r.DatePosted,
			&r.URL,
			&r.Source,
			&r.ScrapedAt,
			&r.EmailSent,
		); err != nil {
			return nil, fmt.Errorf("store: scan record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Save replaces the whole table in one transaction, mirroring the file
// store's overwrite semantics.
func (s *PostgresStore) Save(ctx context.Context, records []JobRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM job_records`); err != nil {
		return fmt.Errorf("store: clear records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO job_records (title, company, location, date_posted, url, source, scraped_at, email_sent)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
	if err != nil {
		return fmt.Errorf("store: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.Title, r.Company, r.Location, r.DatePosted, r.URL, r.Source, r.ScrapedAt, r.EmailSent,
		); err != nil {
			return fmt.Errorf("store: insert record %q: %w", r.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}
