package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lucasmrt/dondirect/internal/app/models"
	"github.com/lucasmrt/dondirect/internal/app/models/dto"
	"github.com/lucasmrt/dondirect/internal/app/repositories"
	"github.com/lucasmrt/dondirect/internal/pkg/apperrors"
	"github.com/lucasmrt/dondirect/internal/pkg/auth"
	"github.com/lucasmrt/dondirect/internal/pkg/logger"
)

// AuthService handles account registration, local-credential sessions and
// identity-provider upserts.
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, string, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*models.User, string, error)
	LoginWithProvider(ctx context.Context, claims *auth.ProviderClaims) (*models.User, string, error)
	Logout(ctx context.Context, token string) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpsertProviderUser(ctx context.Context, claims *auth.ProviderClaims) (*models.User, error)
	UpdateUserType(ctx context.Context, userID string, req *dto.UpdateUserTypeRequest) (*models.User, error)
}

type authService struct {
	userRepo    repositories.IUserRepository
	sessionRepo repositories.ISessionRepository
	sessionTTL  time.Duration
}

// NewAuthService creates a new auth service instance
func NewAuthService(
	userRepo repositories.IUserRepository,
	sessionRepo repositories.ISessionRepository,
	sessionTTL time.Duration,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		sessionTTL:  sessionTTL,
	}
}

// Register creates a local-credential account and opens a session for it.
// An "association" signup creates the owned association and the account in
// one transaction so neither is ever left half-onboarded.
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, string, error) {
	exists, err := s.userRepo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, "", fmt.Errorf("error checking email availability: %w", err)
	}
	if exists {
		return nil, "", apperrors.ErrEmailAlreadyExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: &hash,
		AuthProvider: models.ProviderEmail,
	}

	if req.UserType != "" {
		userType := models.UserType(req.UserType)
		user.UserType = &userType
	}

	if req.UserType == string(models.UserTypeAssociation) {
		association, err := buildOwnedAssociation(req.Association)
		if err != nil {
			return nil, "", err
		}
		// One transaction: a rejected user write takes the association with it.
		if err := s.userRepo.CreateWithAssociation(ctx, user, association); err != nil {
			return nil, "", err
		}
	} else if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	logger.Info().Str("user_id", user.ID).Msg("Account registered")
	return user, token, nil
}

// Login checks local credentials and opens a session. Accounts created
// through an identity provider carry no password hash and cannot log in
// here; they get the same invalid-credentials answer as a wrong password.
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, "", apperrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if user.PasswordHash == nil || !auth.CheckPassword(*user.PasswordHash, req.Password) {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	token, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// LoginWithProvider provisions (or refreshes) the account carried by
// validated identity-provider claims and opens a session for it, so a
// provider login gets the same cookie-backed session as a local one.
func (s *authService) LoginWithProvider(ctx context.Context, claims *auth.ProviderClaims) (*models.User, string, error) {
	user, err := s.UpsertProviderUser(ctx, claims)
	if err != nil {
		return nil, "", err
	}

	token, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	logger.Info().Str("user_id", user.ID).Str("provider", string(user.AuthProvider)).Msg("Provider session opened")
	return user, token, nil
}

// Logout invalidates a session token. Logging out an already-gone session
// is not an error.
func (s *authService) Logout(ctx context.Context, token string) error {
	if err := s.sessionRepo.Delete(ctx, token); err != nil {
		if errors.Is(err, apperrors.ErrSessionNotFound) {
			return nil
		}
		return err
	}
	return nil
}

// GetUser returns a user by id
func (s *authService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// UpsertProviderUser records or refreshes a user carried by validated
// identity-provider claims. Profile fields from the provider win; locally
// chosen fields (user type, association binding) are preserved.
func (s *authService) UpsertProviderUser(ctx context.Context, claims *auth.ProviderClaims) (*models.User, error) {
	provider := models.AuthProvider(claims.Provider)
	if provider == "" {
		provider = models.ProviderReplit
	}

	user := &models.User{
		ID:           claims.Subject,
		Email:        claims.Email,
		FirstName:    claims.FirstName,
		LastName:     claims.LastName,
		AuthProvider: provider,
	}
	if claims.ProfileImageURL != "" {
		user.ProfileImageURL = &claims.ProfileImageURL
	}

	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, err
	}

	// Upsert writes provider fields only; read back the merged record so
	// the caller sees the preserved local fields too.
	return s.userRepo.GetByID(ctx, user.ID)
}

// UpdateUserType finishes onboarding by fixing the account type. Choosing
// "association" creates the owned association unless one is already bound.
func (s *authService) UpdateUserType(ctx context.Context, userID string, req *dto.UpdateUserTypeRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.UserType == string(models.UserTypeAssociation) && user.AssociationID == nil {
		association, err := buildOwnedAssociation(req.Association)
		if err != nil {
			return nil, err
		}
		if err := s.userRepo.UpdateTypeWithAssociation(ctx, userID, models.UserType(req.UserType), association); err != nil {
			return nil, err
		}
	} else if err := s.userRepo.UpdateUserType(ctx, userID, models.UserType(req.UserType), nil); err != nil {
		return nil, err
	}

	return s.userRepo.GetByID(ctx, userID)
}

// buildOwnedAssociation validates the association details of an onboarding
// request and shapes them into a model, always unverified with zero counters.
func buildOwnedAssociation(req *dto.CreateAssociationRequest) (*models.Association, error) {
	if req == nil {
		return nil, apperrors.NewValidationError("association details are required", map[string]interface{}{
			"association": "association is required for an association account",
		})
	}
	if !models.ValidCategory(req.Category) {
		return nil, apperrors.NewValidationError("invalid category", map[string]interface{}{
			"category": "unknown category: " + req.Category,
		})
	}

	return &models.Association{
		Name:        req.Name,
		Mission:     req.Mission,
		FullMission: req.FullMission,
		Category:    req.Category,
		Email:       req.Email,
		Phone:       req.Phone,
		Website:     req.Website,
		Address:     req.Address,
		Siret:       req.Siret,
	}, nil
}

func (s *authService) openSession(ctx context.Context, userID string) (string, error) {
	token := uuid.New().String()
	if err := s.sessionRepo.Create(ctx, token, userID, time.Now().Add(s.sessionTTL)); err != nil {
		return "", fmt.Errorf("error creating session: %w", err)
	}
	return token, nil
}
