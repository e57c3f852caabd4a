package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lucasmrt/dondirect/internal/app/models"
	"github.com/lucasmrt/dondirect/internal/db"
	"github.com/lucasmrt/dondirect/internal/pkg/apperrors"
	"github.com/lucasmrt/dondirect/internal/pkg/dberrors"
)

// IDonationRepository defines the interface for donation database operations
type IDonationRepository interface {
	Create(ctx context.Context, donation *models.Donation) error
	GetByID(ctx context.Context, id int64) (*models.Donation, error)
	GetByEmail(ctx context.Context, email string) ([]*models.Donation, error)
	GetByUserID(ctx context.Context, userID string) ([]*models.Donation, error)
	GetByAssociationID(ctx context.Context, associationID int64) ([]*models.Donation, error)
}

const donationColumns = `id, association_id, donor_first_name, donor_last_name, donor_email, donor_phone, donor_address, donor_postal_code, donor_city, donor_user_id, amount_cents, transaction_id, status, created_at`

// DonationRepository handles database operations for the donation ledger.
// It holds the whole DB handle, not just the pool, because the write path
// needs the transaction helper.
type DonationRepository struct {
	db *db.PostgresDB
}

// NewDonationRepository creates a new donation repository
func NewDonationRepository(database *db.PostgresDB) *DonationRepository {
	return &DonationRepository{
		db: database,
	}
}

// Create persists a donation and updates the owning association's cached
// aggregates in one transaction, so a failure of either leaves no trace of
// the other. The association row is locked as the first statement: once a
// racing donation has committed and released the lock, every later statement
// in this transaction runs on a fresh read-committed snapshot that sees it.
// That ordering is what makes the EXISTS dedup in the UPDATE sound: locking
// inside the UPDATE itself would leave the subquery on its pre-lock snapshot,
// blind to a just-committed first donation from the same email.
func (r *DonationRepository) Create(ctx context.Context, donation *models.Donation) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var lockedID int64
		err := tx.QueryRow(ctx, `SELECT id FROM associations WHERE id = $1 FOR UPDATE`, donation.AssociationID).Scan(&lockedID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrAssociationNotFound
			}
			return fmt.Errorf("error locking association: %w", err)
		}

		insert := `
			INSERT INTO donations (association_id, donor_first_name, donor_last_name, donor_email, donor_phone, donor_address, donor_postal_code, donor_city, donor_user_id, amount_cents, transaction_id, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id, created_at
		`

		err = tx.QueryRow(ctx, insert,
			donation.AssociationID,
			donation.DonorFirstName,
			donation.DonorLastName,
			donation.DonorEmail,
			donation.DonorPhone,
			donation.DonorAddress,
			donation.DonorPostalCode,
			donation.DonorCity,
			donation.DonorUserID,
			donation.AmountCents,
			donation.TransactionID,
			donation.Status,
		).Scan(&donation.ID, &donation.CreatedAt)
		if err != nil {
			if dberrors.IsForeignKeyViolation(err) {
				return apperrors.ErrAssociationNotFound
			}
			if dberrors.IsDuplicateConstraintError(err, "donations_transaction_id_key") {
				return fmt.Errorf("transaction id collision for %s: %w", donation.TransactionID, err)
			}
			return fmt.Errorf("error creating donation: %w", err)
		}

		update := `
			UPDATE associations
			SET total_raised_cents = total_raised_cents + $2,
			    donor_count = donor_count + CASE WHEN EXISTS (
			        SELECT 1 FROM donations
			        WHERE association_id = $1 AND lower(donor_email) = lower($3) AND id <> $4
			    ) THEN 0 ELSE 1 END
			WHERE id = $1
		`

		cmdTag, err := tx.Exec(ctx, update, donation.AssociationID, donation.AmountCents, donation.DonorEmail, donation.ID)
		if err != nil {
			return fmt.Errorf("error updating association aggregates: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrAssociationNotFound
		}

		return nil
	})
}

// GetByID retrieves a donation by ID
func (r *DonationRepository) GetByID(ctx context.Context, id int64) (*models.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE id = $1`

	var donation models.Donation
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(donationScanTargets(&donation)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrDonationNotFound
		}
		return nil, fmt.Errorf("error retrieving donation: %w", err)
	}

	return &donation, nil
}

// GetByEmail retrieves all donations made under a donor email
func (r *DonationRepository) GetByEmail(ctx context.Context, email string) ([]*models.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE lower(donor_email) = lower($1) ORDER BY created_at DESC`

	rows, err := r.db.Pool.Query(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectDonations(rows)
}

// GetByUserID retrieves all donations made by an authenticated user
func (r *DonationRepository) GetByUserID(ctx context.Context, userID string) ([]*models.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE donor_user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectDonations(rows)
}

// GetByAssociationID retrieves all donations received by an association
func (r *DonationRepository) GetByAssociationID(ctx context.Context, associationID int64) ([]*models.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE association_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Pool.Query(ctx, query, associationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectDonations(rows)
}

func donationScanTargets(d *models.Donation) []interface{} {
	return []interface{}{
		&d.ID,
		&d.AssociationID,
		&d.DonorFirstName,
		&d.DonorLastName,
		&d.DonorEmail,
		&d.DonorPhone,
		&d.DonorAddress,
		&d.DonorPostalCode,
		&d.DonorCity,
		&d.DonorUserID,
		&d.AmountCents,
		&d.TransactionID,
		&d.Status,
		&d.CreatedAt,
	}
}

func collectDonations(rows pgx.Rows) ([]*models.Donation, error) {
	var donations []*models.Donation
	for rows.Next() {
		var donation models.Donation
		if err := rows.Scan(donationScanTargets(&donation)...); err != nil {
			return nil, err
		}
		donations = append(donations, &donation)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return donations, nil
}
