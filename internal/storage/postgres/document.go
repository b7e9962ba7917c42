package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"marketmind/internal/domain"
)

// DocumentStore persists named document slots. Every put is a full
// overwrite: the pipeline recomputes each document per run and readers
// must never see a merge of two runs.
type DocumentStore struct {
	db *sqlx.DB
}

func NewDocumentStore(db *sqlx.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

func (s *DocumentStore) Put(ctx context.Context, doc *domain.Document) error {
	payload, err := json.Marshal(doc.Payload)
	if err != nil {
		return fmt.Errorf("marshal document %q: %w", doc.Name, err)
	}

	query := `
		INSERT INTO documents (name, payload, last_updated, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (name) DO UPDATE SET
			payload = EXCLUDED.payload,
			last_updated = EXCLUDED.last_updated,
			updated_at = now()`

	_, err = executor(ctx, s.db).ExecContext(ctx, query, doc.Name, payload, doc.LastUpdated)
	if err != nil {
		return fmt.Errorf("upsert document %q: %w", doc.Name, err)
	}

	return nil
}

// Get unmarshals the named document's payload into out. Returns
// domain-level absence (false) when the slot does not exist.
func (s *DocumentStore) Get(ctx context.Context, name string, out any) (bool, error) {
	var payload []byte
	err := sqlx.GetContext(ctx, executor(ctx, s.db), &payload,
		"SELECT payload FROM documents WHERE name = $1", name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("get document %q: %w", name, err)
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return false, fmt.Errorf("unmarshal document %q: %w", name, err)
	}

	return true, nil
}
