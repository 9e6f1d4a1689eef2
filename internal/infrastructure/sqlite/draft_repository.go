package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/raptorflow/raptorflow/internal/positioning"
)

// draftRepository implements positioning.DraftRepository using SQLite.
type draftRepository struct {
	db *sql.DB
}

// newDraftRepository creates a new draftRepository instance.
func newDraftRepository(db *sql.DB) *draftRepository {
	return &draftRepository{db: db}
}

// Ensure draftRepository implements positioning.DraftRepository.
var _ positioning.DraftRepository = (*draftRepository)(nil)

// Save persists a draft, inserting on first save and replacing the row on
// subsequent saves of the same GUID.
func (r *draftRepository) Save(draft *positioning.Draft) error {
	model, err := toDraftModel(draft)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(
		`INSERT INTO positioning_drafts (guid, title, fields_json, map_json, fallback, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(guid) DO UPDATE SET
		   title = excluded.title,
		   fields_json = excluded.fields_json,
		   map_json = excluded.map_json,
		   fallback = excluded.fallback,
		   updated_at = excluded.updated_at`,
		model.GUID, model.Title, model.FieldsJSON, model.MapJSON, model.Fallback, model.CreatedAt, model.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// FindByGUID retrieves a draft by its GUID.
// Returns DraftNotFoundError if no matching draft exists.
func (r *draftRepository) FindByGUID(guid string) (*positioning.Draft, error) {
	var model DraftModel
	err := r.db.QueryRow(
		`SELECT guid, title, fields_json, map_json, fallback, created_at, updated_at
		 FROM positioning_drafts
		 WHERE guid = ?`,
		guid,
	).Scan(&model.GUID, &model.Title, &model.FieldsJSON, &model.MapJSON, &model.Fallback, &model.CreatedAt, &model.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, &positioning.DraftNotFoundError{GUID: guid}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find draft by guid: %w", err)
	}
	return model.toDomain()
}

// List returns drafts ordered most-recently-updated first.
// A limit of 0 or less returns all drafts.
func (r *draftRepository) List(limit int) ([]*positioning.Draft, error) {
	query := `SELECT guid, title, fields_json, map_json, fallback, created_at, updated_at
	 FROM positioning_drafts
	 ORDER BY updated_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer rows.Close()

	var drafts []*positioning.Draft
	for rows.Next() {
		var model DraftModel
		if err := rows.Scan(&model.GUID, &model.Title, &model.FieldsJSON, &model.MapJSON, &model.Fallback, &model.CreatedAt, &model.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan draft row: %w", err)
		}
		draft, err := model.toDomain()
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, draft)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate draft rows: %w", err)
	}
	return drafts, nil
}

// Delete removes a draft by GUID.
// Returns DraftNotFoundError if no matching draft exists.
func (r *draftRepository) Delete(guid string) error {
	result, err := r.db.Exec(`DELETE FROM positioning_drafts WHERE guid = ?`, guid)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return &positioning.DraftNotFoundError{GUID: guid}
	}
	return nil
}
