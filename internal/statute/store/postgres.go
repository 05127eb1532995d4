package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"foicore/internal/statute/models"
	"foicore/pkg/sentinel"
)

// Postgres persists statutes and jurisdictions in PostgreSQL. Combined
// statute links live in statute_combined(statute_id, combined_id).
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const statuteColumns = `id, name, slug, description, jurisdiction_id, meta,
	refusal_reasons, priority, max_response_time, max_response_time_unit,
	letter_start, letter_end, created_at, updated_at`

func (s *Postgres) CreateJurisdiction(ctx context.Context, j *models.Jurisdiction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO jurisdictions (id, name, slug, description, rank, hidden, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, j.ID, j.Name, j.Slug, j.Description, j.Rank, j.Hidden, j.CreatedAt, j.UpdatedAt)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("create jurisdiction: %w", err)
	}
	return nil
}

func (s *Postgres) FindJurisdictionByID(ctx context.Context, id uuid.UUID) (*models.Jurisdiction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, slug, description, rank, hidden, created_at, updated_at
		FROM jurisdictions WHERE id = $1
	`, id)
	var j models.Jurisdiction
	err := row.Scan(&j.ID, &j.Name, &j.Slug, &j.Description, &j.Rank, &j.Hidden, &j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find jurisdiction: %w", err)
	}
	return &j, nil
}

func (s *Postgres) ListVisibleJurisdictions(ctx context.Context) ([]*models.Jurisdiction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, slug, description, rank, hidden, created_at, updated_at
		FROM jurisdictions WHERE NOT hidden
		ORDER BY rank, name
	`)
	if err != nil {
		return nil, fmt.Errorf("list jurisdictions: %w", err)
	}
	defer rows.Close()
	var out []*models.Jurisdiction
	for rows.Next() {
		var j models.Jurisdiction
		if err := rows.Scan(&j.ID, &j.Name, &j.Slug, &j.Description, &j.Rank, &j.Hidden, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan jurisdiction: %w", err)
		}
		out = append(out, &j)
	}
	return out, rows.Err()
}

func (s *Postgres) CreateStatute(ctx context.Context, st *models.Statute) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create statute: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO statutes (`+statuteColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, st.ID, st.Name, st.Slug, st.Description, st.JurisdictionID, st.Meta,
		st.RefusalReasons, st.Priority, st.MaxResponseTime, string(st.MaxResponseTimeUnit),
		st.LetterStart, st.LetterEnd, st.CreatedAt, st.UpdatedAt)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("create statute: %w", err)
	}
	if err := replaceCombined(ctx, tx, st.ID, st.CombinedIDs); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Postgres) UpdateStatute(ctx context.Context, st *models.Statute) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update statute: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE statutes SET name = $2, slug = $3, description = $4,
			jurisdiction_id = $5, meta = $6, refusal_reasons = $7, priority = $8,
			max_response_time = $9, max_response_time_unit = $10,
			letter_start = $11, letter_end = $12, updated_at = $13
		WHERE id = $1
	`, st.ID, st.Name, st.Slug, st.Description, st.JurisdictionID, st.Meta,
		st.RefusalReasons, st.Priority, st.MaxResponseTime, string(st.MaxResponseTimeUnit),
		st.LetterStart, st.LetterEnd, st.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update statute: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	if err := replaceCombined(ctx, tx, st.ID, st.CombinedIDs); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Postgres) FindStatuteByID(ctx context.Context, id uuid.UUID) (*models.Statute, error) {
	st, err := s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT `+statuteColumns+` FROM statutes WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := s.loadCombined(ctx, []*models.Statute{st}); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Postgres) FindStatutesByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Statute, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+statuteColumns+` FROM statutes WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("find statutes: %w", err)
	}
	defer rows.Close()
	loaded := make(map[uuid.UUID]*models.Statute)
	for rows.Next() {
		st, err := s.scanOne(rows)
		if err != nil {
			return nil, err
		}
		loaded[st.ID] = st
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Preserve the caller's id order; unknown ids are omitted.
	out := make([]*models.Statute, 0, len(loaded))
	for _, id := range ids {
		if st, ok := loaded[id]; ok {
			out = append(out, st)
		}
	}
	if err := s.loadCombined(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Postgres) ListStatutesByJurisdiction(ctx context.Context, jurisdictionID uuid.UUID) ([]*models.Statute, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+statuteColumns+` FROM statutes
		WHERE jurisdiction_id = $1
		ORDER BY meta DESC, priority, name
	`, jurisdictionID)
	if err != nil {
		return nil, fmt.Errorf("list statutes: %w", err)
	}
	defer rows.Close()
	var out []*models.Statute
	for rows.Next() {
		st, err := s.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.loadCombined(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *Postgres) scanOne(row scanner) (*models.Statute, error) {
	var st models.Statute
	var unit string
	err := row.Scan(&st.ID, &st.Name, &st.Slug, &st.Description, &st.JurisdictionID,
		&st.Meta, &st.RefusalReasons, &st.Priority, &st.MaxResponseTime, &unit,
		&st.LetterStart, &st.LetterEnd, &st.CreatedAt, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan statute: %w", err)
	}
	st.MaxResponseTimeUnit = models.ResponseTimeUnit(unit)
	return &st, nil
}

func (s *Postgres) loadCombined(ctx context.Context, sts []*models.Statute) error {
	ids := make([]uuid.UUID, 0, len(sts))
	byID := make(map[uuid.UUID]*models.Statute, len(sts))
	for _, st := range sts {
		if st.Meta {
			ids = append(ids, st.ID)
			byID[st.ID] = st
		}
	}
	if len(ids) == 0 {
		return nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT statute_id, combined_id FROM statute_combined
		WHERE statute_id = ANY($1)
		ORDER BY position
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load combined statutes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var statuteID, combinedID uuid.UUID
		if err := rows.Scan(&statuteID, &combinedID); err != nil {
			return fmt.Errorf("scan combined link: %w", err)
		}
		if st := byID[statuteID]; st != nil {
			st.CombinedIDs = append(st.CombinedIDs, combinedID)
		}
	}
	return rows.Err()
}

func replaceCombined(ctx context.Context, tx *sql.Tx, statuteID uuid.UUID, combined []uuid.UUID) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM statute_combined WHERE statute_id = $1`, statuteID); err != nil {
		return fmt.Errorf("clear combined links: %w", err)
	}
	for i, id := range combined {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO statute_combined (statute_id, combined_id, position)
			VALUES ($1, $2, $3)
		`, statuteID, id, i); err != nil {
			return fmt.Errorf("link combined statute: %w", err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
