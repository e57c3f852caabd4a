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

// IUserRepository defines the interface for user-related database operations
type IUserRepository interface {
	Upsert(ctx context.Context, user *models.User) error
	CreateWithAssociation(ctx context.Context, user *models.User, association *models.Association) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateUserType(ctx context.Context, userID string, userType models.UserType, associationID *int64) error
	UpdateTypeWithAssociation(ctx context.Context, userID string, userType models.UserType, association *models.Association) error
}

const userColumns = `id, email, first_name, last_name, profile_image_url, user_type, association_id, password_hash, auth_provider, created_at, updated_at`

// UserRepository handles database operations for users. It holds the whole
// DB handle because the onboarding writes span users and associations in one
// transaction.
type UserRepository struct {
	db *db.PostgresDB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(database *db.PostgresDB) *UserRepository {
	return &UserRepository{
		db: database,
	}
}

// Upsert inserts a user or, when the id already exists, merges the mutable
// profile fields last-write-wins and refreshes updated_at. The password hash
// and onboarding fields survive a merge unless the candidate carries new
// values.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	return upsertUser(ctx, r.db.Pool, user)
}

func upsertUser(ctx context.Context, q rowQuerier, user *models.User) error {
	query := `
		INSERT INTO users (id, email, first_name, last_name, profile_image_url, user_type, association_id, password_hash, auth_provider)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			profile_image_url = COALESCE(EXCLUDED.profile_image_url, users.profile_image_url),
			user_type = COALESCE(EXCLUDED.user_type, users.user_type),
			association_id = COALESCE(EXCLUDED.association_id, users.association_id),
			password_hash = COALESCE(EXCLUDED.password_hash, users.password_hash),
			updated_at = now()
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.ProfileImageURL,
		user.UserType,
		user.AssociationID,
		user.PasswordHash,
		user.AuthProvider,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
			return apperrors.ErrEmailAlreadyExists
		}
		return fmt.Errorf("error upserting user: %w", err)
	}

	return nil
}

// CreateWithAssociation persists a new association and the account that owns
// it in one transaction. A failed user write, a duplicate email included,
// rolls the association back rather than leaving an ownerless row behind.
func (r *UserRepository) CreateWithAssociation(ctx context.Context, user *models.User, association *models.Association) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := insertAssociation(ctx, tx, association); err != nil {
			return err
		}
		user.AssociationID = &association.ID
		return upsertUser(ctx, tx, user)
	})
}

// UpdateTypeWithAssociation creates the owned association and binds it while
// switching the account type, atomically. A vanished user rolls the newly
// created association back.
func (r *UserRepository) UpdateTypeWithAssociation(ctx context.Context, userID string, userType models.UserType, association *models.Association) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := insertAssociation(ctx, tx, association); err != nil {
			return err
		}

		cmdTag, err := tx.Exec(ctx, `
			UPDATE users
			SET user_type = $2, association_id = $3, updated_at = now()
			WHERE id = $1
		`, userID, userType, association.ID)
		if err != nil {
			return fmt.Errorf("error updating user type: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrUserNotFound
		}

		return nil
	})
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user models.User
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(userScanTargets(&user)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}

	return &user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

	var user models.User
	err := r.db.Pool.QueryRow(ctx, query, email).Scan(userScanTargets(&user)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving user by email: %w", err)
	}

	return &user, nil
}

// EmailExists checks if an email already exists
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking email existence: %w", err)
	}

	return exists, nil
}

// UpdateUserType sets the user type, and optionally the owned association,
// once onboarding completes. Idempotent.
func (r *UserRepository) UpdateUserType(ctx context.Context, userID string, userType models.UserType, associationID *int64) error {
	query := `
		UPDATE users
		SET user_type = $2, association_id = COALESCE($3, association_id), updated_at = now()
		WHERE id = $1
	`

	cmdTag, err := r.db.Pool.Exec(ctx, query, userID, userType, associationID)
	if err != nil {
		return fmt.Errorf("error updating user type: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

func userScanTargets(u *models.User) []interface{} {
	return []interface{}{
		&u.ID,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.ProfileImageURL,
		&u.UserType,
		&u.AssociationID,
		&u.PasswordHash,
		&u.AuthProvider,
		&u.CreatedAt,
		&u.UpdatedAt,
	}
}
