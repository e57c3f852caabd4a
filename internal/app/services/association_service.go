package services

import (
	"context"
	"strings"

	"github.com/lucasmrt/dondirect/internal/app/models"
	"github.com/lucasmrt/dondirect/internal/app/models/dto"
	"github.com/lucasmrt/dondirect/internal/app/repositories"
	"github.com/lucasmrt/dondirect/internal/pkg/apperrors"
)

// AssociationService handles the association directory
type AssociationService interface {
	GetByID(ctx context.Context, id int64) (*models.Association, error)
	List(ctx context.Context) ([]*models.Association, error)
	Search(ctx context.Context, query string) ([]*models.Association, error)
	GetByCategory(ctx context.Context, category string) ([]*models.Association, error)
	Create(ctx context.Context, req *dto.CreateAssociationRequest) (*models.Association, error)
	Update(ctx context.Context, id int64, req *dto.UpdateAssociationRequest, principal *models.Principal) (*models.Association, error)
	Verify(ctx context.Context, id int64, principal *models.Principal) (*models.Association, error)
}

type associationService struct {
	assocRepo repositories.IAssociationRepository
}

// NewAssociationService creates a new association service instance
func NewAssociationService(assocRepo repositories.IAssociationRepository) AssociationService {
	return &associationService{assocRepo: assocRepo}
}

// GetByID returns a single association by its identifier
func (s *associationService) GetByID(ctx context.Context, id int64) (*models.Association, error) {
	return s.assocRepo.GetByID(ctx, id)
}

// List returns every association in the directory
func (s *associationService) List(ctx context.Context) ([]*models.Association, error) {
	return s.assocRepo.GetAll(ctx)
}

// Search matches the query case-insensitively against name and mission.
// A blank query is the browse case and returns the full directory.
func (s *associationService) Search(ctx context.Context, query string) ([]*models.Association, error) {
	return s.assocRepo.Search(ctx, strings.TrimSpace(query))
}

// GetByCategory filters the directory by category. The "all" sentinel (or
// a blank value) disables the filter instead of matching a literal column
// value.
func (s *associationService) GetByCategory(ctx context.Context, category string) ([]*models.Association, error) {
	category = strings.TrimSpace(category)
	if category == "" || category == models.CategoryAll {
		return s.assocRepo.GetAll(ctx)
	}
	if !models.ValidCategory(category) {
		return nil, apperrors.NewValidationError("invalid category", map[string]interface{}{
			"category": "unknown category: " + category,
		})
	}

	return s.assocRepo.GetByCategory(ctx, category)
}

// Create registers a new association. Aggregates and the verified flag are
// never taken from the caller; new entries always start unverified with
// zero counters.
func (s *associationService) Create(ctx context.Context, req *dto.CreateAssociationRequest) (*models.Association, error) {
	if !models.ValidCategory(req.Category) {
		return nil, apperrors.NewValidationError("invalid category", map[string]interface{}{
			"category": "unknown category: " + req.Category,
		})
	}

	association := &models.Association{
		Name:        req.Name,
		Mission:     req.Mission,
		FullMission: req.FullMission,
		Category:    req.Category,
		Email:       req.Email,
		Phone:       req.Phone,
		Website:     req.Website,
		Address:     req.Address,
		Siret:       req.Siret,
	}

	if err := s.assocRepo.Create(ctx, association); err != nil {
		return nil, err
	}

	return association, nil
}

// Update applies presentation changes to an association the principal owns.
// Counters and the verified flag are out of reach of this path.
func (s *associationService) Update(ctx context.Context, id int64, req *dto.UpdateAssociationRequest, principal *models.Principal) (*models.Association, error) {
	if principal == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	if !principal.OwnsAssociation(id) {
		return nil, apperrors.NewForbiddenError("association belongs to another account")
	}

	association, err := s.assocRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		association.Name = *req.Name
	}
	if req.Mission != nil {
		association.Mission = *req.Mission
	}
	if req.FullMission != nil {
		association.FullMission = *req.FullMission
	}
	if req.Category != nil {
		if !models.ValidCategory(*req.Category) {
			return nil, apperrors.NewValidationError("invalid category", map[string]interface{}{
				"category": "unknown category: " + *req.Category,
			})
		}
		association.Category = *req.Category
	}
	if req.Email != nil {
		association.Email = *req.Email
	}
	if req.Phone != nil {
		association.Phone = *req.Phone
	}
	if req.Website != nil {
		association.Website = req.Website
	}
	if req.Address != nil {
		association.Address = *req.Address
	}

	if err := s.assocRepo.Update(ctx, association); err != nil {
		return nil, err
	}

	return association, nil
}

// Verify marks an owned association as verified
func (s *associationService) Verify(ctx context.Context, id int64, principal *models.Principal) (*models.Association, error) {
	if principal == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	if !principal.OwnsAssociation(id) {
		return nil, apperrors.NewForbiddenError("association belongs to another account")
	}

	if err := s.assocRepo.SetVerified(ctx, id, true); err != nil {
		return nil, err
	}

	return s.assocRepo.GetByID(ctx, id)
}
