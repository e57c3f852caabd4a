package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lucasmrt/dondirect/internal/app/models"
	"github.com/lucasmrt/dondirect/internal/pkg/apperrors"
)

// IAssociationRepository defines the interface for association database operations
type IAssociationRepository interface {
	Create(ctx context.Context, association *models.Association) error
	GetByID(ctx context.Context, id int64) (*models.Association, error)
	GetAll(ctx context.Context) ([]*models.Association, error)
	Search(ctx context.Context, query string) ([]*models.Association, error)
	GetByCategory(ctx context.Context, category string) ([]*models.Association, error)
	Update(ctx context.Context, association *models.Association) error
	SetVerified(ctx context.Context, id int64, verified bool) error
}

const associationColumns = `id, name, mission, full_mission, category, email, phone, website, address, siret, verified, donor_count, total_raised_cents, created_at`

// AssociationRepository handles database operations for associations
type AssociationRepository struct {
	db *pgxpool.Pool
}

// NewAssociationRepository creates a new association repository
func NewAssociationRepository(db *pgxpool.Pool) *AssociationRepository {
	return &AssociationRepository{
		db: db,
	}
}

// rowQuerier is the slice of pgx shared by the pool and an open transaction,
// so inserts can run standalone or inside a multi-statement write.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Create inserts a new association. Verification state and the aggregate
// counters are not part of the insert: every association starts unverified
// with zeroed counters whatever the caller supplied upstream.
func (r *AssociationRepository) Create(ctx context.Context, association *models.Association) error {
	return insertAssociation(ctx, r.db, association)
}

func insertAssociation(ctx context.Context, q rowQuerier, association *models.Association) error {
	query := `
		INSERT INTO associations (name, mission, full_mission, category, email, phone, website, address, siret)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, verified, donor_count, total_raised_cents, created_at
	`

	err := q.QueryRow(ctx, query,
		association.Name,
		association.Mission,
		association.FullMission,
		association.Category,
		association.Email,
		association.Phone,
		association.Website,
		association.Address,
		association.Siret,
	).Scan(
		&association.ID,
		&association.Verified,
		&association.DonorCount,
		&association.TotalRaisedCents,
		&association.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error creating association: %w", err)
	}

	return nil
}

// GetByID retrieves an association by ID
func (r *AssociationRepository) GetByID(ctx context.Context, id int64) (*models.Association, error) {
	query := `SELECT ` + associationColumns + ` FROM associations WHERE id = $1`

	var association models.Association
	err := r.db.QueryRow(ctx, query, id).Scan(scanTargets(&association)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAssociationNotFound
		}
		return nil, fmt.Errorf("error retrieving association: %w", err)
	}

	return &association, nil
}

// GetAll retrieves all associations
func (r *AssociationRepository) GetAll(ctx context.Context) ([]*models.Association, error) {
	query := `SELECT ` + associationColumns + ` FROM associations ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAssociations(rows)
}

// likeEscaper neutralizes the LIKE metacharacters so a user query is matched
// as a literal substring, not as a pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLikePattern(query string) string {
	return likeEscaper.Replace(query)
}

// Search retrieves associations whose name or mission contains the query,
// case-insensitively. A blank query matches everything.
func (r *AssociationRepository) Search(ctx context.Context, query string) ([]*models.Association, error) {
	if strings.TrimSpace(query) == "" {
		return r.GetAll(ctx)
	}

	sql := `SELECT ` + associationColumns + `
		FROM associations
		WHERE name ILIKE '%' || $1 || '%' OR mission ILIKE '%' || $1 || '%'
		ORDER BY id`

	rows, err := r.db.Query(ctx, sql, escapeLikePattern(query))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAssociations(rows)
}

// GetByCategory retrieves associations with an exact category match
func (r *AssociationRepository) GetByCategory(ctx context.Context, category string) ([]*models.Association, error) {
	query := `SELECT ` + associationColumns + ` FROM associations WHERE category = $1 ORDER BY id`

	rows, err := r.db.Query(ctx, query, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAssociations(rows)
}

// Update writes the mutable presentation fields of an association. The
// verified flag and the aggregate counters are never touched here; they move
// only through SetVerified and the donation write path.
func (r *AssociationRepository) Update(ctx context.Context, association *models.Association) error {
	query := `
		UPDATE associations
		SET name = $1, mission = $2, full_mission = $3, category = $4, email = $5, phone = $6, website = $7, address = $8
		WHERE id = $9
	`

	cmdTag, err := r.db.Exec(ctx, query,
		association.Name,
		association.Mission,
		association.FullMission,
		association.Category,
		association.Email,
		association.Phone,
		association.Website,
		association.Address,
		association.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating association: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrAssociationNotFound
	}

	return nil
}

// SetVerified flips the verification state of an association
func (r *AssociationRepository) SetVerified(ctx context.Context, id int64, verified bool) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE associations SET verified = $1 WHERE id = $2`, verified, id)
	if err != nil {
		return fmt.Errorf("error updating verification state: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrAssociationNotFound
	}

	return nil
}

func scanTargets(a *models.Association) []interface{} {
	return []interface{}{
		&a.ID,
		&a.Name,
		&a.Mission,
		&a.FullMission,
		&a.Category,
		&a.Email,
		&a.Phone,
		&a.Website,
		&a.Address,
		&a.Siret,
		&a.Verified,
		&a.DonorCount,
		&a.TotalRaisedCents,
		&a.CreatedAt,
	}
}

func collectAssociations(rows pgx.Rows) ([]*models.Association, error) {
	var associations []*models.Association
	for rows.Next() {
		var association models.Association
		if err := rows.Scan(scanTargets(&association)...); err != nil {
			return nil, err
		}
		associations = append(associations, &association)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return associations, nil
}
