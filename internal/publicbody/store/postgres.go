package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"foicore/internal/publicbody/models"
	"foicore/pkg/sentinel"
)

// Postgres persists public bodies in PostgreSQL. Applicable laws live in
// public_body_laws(public_body_id, law_id).
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const bodyColumns = `id, name, slug, description, classification, jurisdiction_id,
	parent_id, root_id, depth, email, url, contact, address, confirmed,
	number_of_requests, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, b *models.PublicBody) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create public body: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO public_bodies (`+bodyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`, b.ID, b.Name, b.Slug, b.Description, b.Classification, b.JurisdictionID,
		b.ParentID, b.RootID, b.Depth, b.Email, b.URL, b.Contact, b.Address,
		b.Confirmed, b.NumberOfRequests, b.CreatedAt, b.UpdatedAt)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("create public body: %w", err)
	}
	if err := replaceLaws(ctx, tx, b.ID, b.LawIDs); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Postgres) Save(ctx context.Context, b *models.PublicBody) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save public body: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE public_bodies SET name = $2, slug = $3, description = $4,
			classification = $5, jurisdiction_id = $6, parent_id = $7,
			root_id = $8, depth = $9, email = $10, url = $11, contact = $12,
			address = $13, confirmed = $14, number_of_requests = $15,
			updated_at = $16
		WHERE id = $1
	`, b.ID, b.Name, b.Slug, b.Description, b.Classification, b.JurisdictionID,
		b.ParentID, b.RootID, b.Depth, b.Email, b.URL, b.Contact, b.Address,
		b.Confirmed, b.NumberOfRequests, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save public body: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	if err := replaceLaws(ctx, tx, b.ID, b.LawIDs); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Postgres) FindByID(ctx context.Context, id uuid.UUID) (*models.PublicBody, error) {
	b, err := scanBody(s.db.QueryRowContext(ctx,
		`SELECT `+bodyColumns+` FROM public_bodies WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := s.loadLaws(ctx, []*models.PublicBody{b}); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Postgres) FindByParent(ctx context.Context, parentID uuid.UUID) ([]*models.PublicBody, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+bodyColumns+` FROM public_bodies
		WHERE parent_id = $1 ORDER BY name
	`, parentID)
	if err != nil {
		return nil, fmt.Errorf("find children: %w", err)
	}
	defer rows.Close()
	var out []*models.PublicBody
	for rows.Next() {
		b, err := scanBody(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.loadLaws(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByParent is a live count so it never goes stale across concurrent
// inserts and deletes beyond a single read.
func (s *Postgres) CountByParent(ctx context.Context, parentID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM public_bodies WHERE parent_id = $1`, parentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count children: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBody(row scanner) (*models.PublicBody, error) {
	var b models.PublicBody
	err := row.Scan(&b.ID, &b.Name, &b.Slug, &b.Description, &b.Classification,
		&b.JurisdictionID, &b.ParentID, &b.RootID, &b.Depth, &b.Email, &b.URL,
		&b.Contact, &b.Address, &b.Confirmed, &b.NumberOfRequests,
		&b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan public body: %w", err)
	}
	return &b, nil
}

func (s *Postgres) loadLaws(ctx context.Context, bodies []*models.PublicBody) error {
	if len(bodies) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(bodies))
	byID := make(map[uuid.UUID]*models.PublicBody, len(bodies))
	for i, b := range bodies {
		ids[i] = b.ID
		byID[b.ID] = b
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT public_body_id, law_id FROM public_body_laws
		WHERE public_body_id = ANY($1)
		ORDER BY position
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load body laws: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var bodyID, lawID uuid.UUID
		if err := rows.Scan(&bodyID, &lawID); err != nil {
			return fmt.Errorf("scan body law: %w", err)
		}
		if b := byID[bodyID]; b != nil {
			b.LawIDs = append(b.LawIDs, lawID)
		}
	}
	return rows.Err()
}

func replaceLaws(ctx context.Context, tx *sql.Tx, bodyID uuid.UUID, laws []uuid.UUID) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM public_body_laws WHERE public_body_id = $1`, bodyID); err != nil {
		return fmt.Errorf("clear body laws: %w", err)
	}
	for i, id := range laws {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO public_body_laws (public_body_id, law_id, position)
			VALUES ($1, $2, $3)
		`, bodyID, id, i); err != nil {
			return fmt.Errorf("link body law: %w", err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
