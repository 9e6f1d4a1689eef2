package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/raptorflow/raptorflow/internal/cohorts"
)

// cohortRepository implements cohorts.Repository using SQLite.
type cohortRepository struct {
	db *sql.DB
}

// newCohortRepository creates a new cohortRepository instance.
func newCohortRepository(db *sql.DB) *cohortRepository {
	return &cohortRepository{db: db}
}

// Ensure cohortRepository implements cohorts.Repository.
var _ cohorts.Repository = (*cohortRepository)(nil)

// Save persists a cohort, inserting on first save and replacing the row on
// subsequent saves of the same ID. The cohort is validated before writing.
func (r *cohortRepository) Save(cohort *cohorts.Cohort) error {
	if err := cohort.Validate(); err != nil {
		return err
	}
	model := toCohortModel(cohort)

	_, err := r.db.Exec(
		`INSERT INTO cohorts (id, name, segment, size_band, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   segment = excluded.segment,
		   size_band = excluded.size_band,
		   notes = excluded.notes,
		   updated_at = excluded.updated_at`,
		model.ID, model.Name, model.Segment, model.SizeBand, model.Notes, model.CreatedAt, model.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save cohort: %w", err)
	}
	return nil
}

// FindByID retrieves a cohort by its ID.
// Returns NotFoundError if no matching cohort exists.
func (r *cohortRepository) FindByID(id string) (*cohorts.Cohort, error) {
	var model CohortModel
	err := r.db.QueryRow(
		`SELECT id, name, segment, size_band, notes, created_at, updated_at
		 FROM cohorts
		 WHERE id = ?`,
		id,
	).Scan(&model.ID, &model.Name, &model.Segment, &model.SizeBand, &model.Notes, &model.CreatedAt, &model.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, &cohorts.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find cohort by id: %w", err)
	}
	return model.toDomain(), nil
}

// List returns all cohorts ordered by name.
func (r *cohortRepository) List() ([]*cohorts.Cohort, error) {
	rows, err := r.db.Query(
		`SELECT id, name, segment, size_band, notes, created_at, updated_at
		 FROM cohorts
		 ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cohorts: %w", err)
	}
	defer rows.Close()

	var out []*cohorts.Cohort
	for rows.Next() {
		var model CohortModel
		if err := rows.Scan(&model.ID, &model.Name, &model.Segment, &model.SizeBand, &model.Notes, &model.CreatedAt, &model.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cohort row: %w", err)
		}
		out = append(out, model.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cohort rows: %w", err)
	}
	return out, nil
}

// Delete removes a cohort by ID.
// Returns NotFoundError if no matching cohort exists.
func (r *cohortRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM cohorts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete cohort: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return &cohorts.NotFoundError{ID: id}
	}
	return nil
}
