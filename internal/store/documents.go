package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"lookbook/internal/models"
)

// Get returns the stored body for one document.
func (s *Store) Get(ctx context.Context, collection models.Collection, id string) ([]byte, error) {
	if err := validateKey(collection, id); err != nil {
		return nil, err
	}
	var body string
	err := s.db.QueryRowContext(ctx, "SELECT body FROM documents WHERE collection = ? AND id = ?", string(collection), id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(body), nil
}

// Put inserts or replaces one document.
func (s *Store) Put(ctx context.Context, collection models.Collection, id string, body []byte) error {
	if err := validateKey(collection, id); err != nil {
		return err
	}
	return upsertDocument(ctx, s.db, collection, id, body)
}

// Merge applies patch inside one transaction.
func (s *Store) Merge(ctx context.Context, collection models.Collection, id string, patch Patch) (err error) {
	if err := validateKey(collection, id); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var existing string
	err = tx.QueryRowContext(ctx, "SELECT body FROM documents WHERE collection = ? AND id = ?", string(collection), id).Scan(&existing)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	body, err := ApplyPatch([]byte(existing), patch)
	if err != nil {
		return err
	}
	if err = upsertDocument(ctx, tx, collection, id, body); err != nil {
		return err
	}
	return tx.Commit()
}

// List returns every document in a collection, oldest update first.
func (s *Store) List(ctx context.Context, collection models.Collection) ([]Document, error) {
	if !models.IsValidCollection(collection) {
		return nil, validateKey(collection, "-")
	}
	rows, err := s.db.QueryContext(ctx, "SELECT id, body FROM documents WHERE collection = ? ORDER BY updated_at, id", string(collection))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, err
		}
		docs = append(docs, Document{Collection: collection, ID: id, Body: []byte(body)})
	}
	return docs, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertDocument(ctx context.Context, db execer, collection models.Collection, id string, body []byte) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := db.ExecContext(ctx, `
INSERT INTO documents (collection, id, body, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(collection, id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		string(collection), id, string(body), now, now)
	return err
}
