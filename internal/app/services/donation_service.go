package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lucasmrt/dondirect/internal/app/models"
	"github.com/lucasmrt/dondirect/internal/app/models/dto"
	"github.com/lucasmrt/dondirect/internal/app/repositories"
	"github.com/lucasmrt/dondirect/internal/pkg/apperrors"
	"github.com/lucasmrt/dondirect/internal/pkg/money"
)

// DonationService handles the donation ledger: creating immutable donation
// records, assembling receipts and answering donation queries.
type DonationService interface {
	Create(ctx context.Context, req *dto.CreateDonationRequest, principal *models.Principal) (*dto.ReceiptResponse, error)
	Receipt(ctx context.Context, donationID int64, principal *models.Principal) (*dto.ReceiptResponse, error)
	GetByEmail(ctx context.Context, email string, principal *models.Principal) ([]*models.Donation, error)
	GetByUser(ctx context.Context, principal *models.Principal) ([]*models.Donation, error)
	GetByOwnedAssociation(ctx context.Context, principal *models.Principal) ([]*models.Donation, error)
}

type donationService struct {
	donationRepo repositories.IDonationRepository
	assocRepo    repositories.IAssociationRepository
}

// NewDonationService creates a new donation service instance
func NewDonationService(donationRepo repositories.IDonationRepository, assocRepo repositories.IAssociationRepository) DonationService {
	return &donationService{
		donationRepo: donationRepo,
		assocRepo:    assocRepo,
	}
}

// Create validates and persists a donation, then returns the assembled
// receipt for immediate document generation. The ledger insert and the
// association aggregate update happen in one transaction inside the
// repository.
func (s *donationService) Create(ctx context.Context, req *dto.CreateDonationRequest, principal *models.Principal) (*dto.ReceiptResponse, error) {
	amountCents, err := s.validateDonation(req)
	if err != nil {
		return nil, err
	}

	// Fail early with a clean NotFound before touching the ledger.
	if _, err := s.assocRepo.GetByID(ctx, req.AssociationID); err != nil {
		return nil, err
	}

	donation := &models.Donation{
		AssociationID:   req.AssociationID,
		DonorFirstName:  req.DonorFirstName,
		DonorLastName:   req.DonorLastName,
		DonorEmail:      req.DonorEmail,
		DonorPhone:      req.DonorPhone,
		DonorAddress:    req.DonorAddress,
		DonorPostalCode: req.DonorPostalCode,
		DonorCity:       req.DonorCity,
		AmountCents:     amountCents,
		TransactionID:   newTransactionID(),
		Status:          models.DonationStatusCompleted,
	}

	if principal != nil {
		donation.DonorUserID = &principal.ID
	}

	if err := s.donationRepo.Create(ctx, donation); err != nil {
		return nil, fmt.Errorf("error recording donation: %w", err)
	}

	// Re-fetch so the receipt carries the post-donation aggregates.
	association, err := s.assocRepo.GetByID(ctx, donation.AssociationID)
	if err != nil {
		return nil, err
	}

	return assembleReceipt(donation, association), nil
}

// Receipt assembles receipt data for an existing donation. Only the donor
// (matched by user id or email) or the owning association may read it.
func (s *donationService) Receipt(ctx context.Context, donationID int64, principal *models.Principal) (*dto.ReceiptResponse, error) {
	donation, err := s.donationRepo.GetByID(ctx, donationID)
	if err != nil {
		return nil, err
	}

	if !canReadDonation(donation, principal) {
		return nil, apperrors.NewForbiddenError("receipt belongs to another donor")
	}

	association, err := s.assocRepo.GetByID(ctx, donation.AssociationID)
	if err != nil {
		return nil, err
	}

	return assembleReceipt(donation, association), nil
}

// GetByEmail returns donations recorded under an email. The email must be
// the authenticated principal's own.
func (s *donationService) GetByEmail(ctx context.Context, email string, principal *models.Principal) ([]*models.Donation, error) {
	if principal == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	if !strings.EqualFold(email, principal.Email) {
		return nil, apperrors.NewForbiddenError("donation history belongs to another donor")
	}

	return s.donationRepo.GetByEmail(ctx, email)
}

// GetByUser returns donations made by the authenticated principal
func (s *donationService) GetByUser(ctx context.Context, principal *models.Principal) ([]*models.Donation, error) {
	if principal == nil {
		return nil, apperrors.ErrUnauthenticated
	}

	return s.donationRepo.GetByUserID(ctx, principal.ID)
}

// GetByOwnedAssociation returns donations received by the association the
// principal owns
func (s *donationService) GetByOwnedAssociation(ctx context.Context, principal *models.Principal) ([]*models.Donation, error) {
	if principal == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	if principal.AssociationID == nil {
		return nil, apperrors.NewForbiddenError("no association is bound to this account")
	}

	return s.donationRepo.GetByAssociationID(ctx, *principal.AssociationID)
}

// validateDonation checks the submission beyond binding-level shape and
// returns the parsed amount in cents. Amounts must be strictly positive
// server-side; the payment form's min attribute is not trusted.
func (s *donationService) validateDonation(req *dto.CreateDonationRequest) (int64, error) {
	fields := map[string]interface{}{}

	if req.AssociationID <= 0 {
		fields["associationId"] = "associationId must reference an association"
	}
	for name, value := range map[string]string{
		"donorFirstName":  req.DonorFirstName,
		"donorLastName":   req.DonorLastName,
		"donorEmail":      req.DonorEmail,
		"donorAddress":    req.DonorAddress,
		"donorPostalCode": req.DonorPostalCode,
		"donorCity":       req.DonorCity,
	} {
		if strings.TrimSpace(value) == "" {
			fields[name] = name + " is required"
		}
	}

	amountCents, err := money.ParseAmount(req.Amount)
	if err != nil {
		fields["amount"] = err.Error()
	} else if amountCents <= 0 {
		fields["amount"] = "amount must be greater than zero"
	}

	if len(fields) > 0 {
		return 0, apperrors.NewValidationError("invalid donation", fields)
	}

	return amountCents, nil
}

// canReadDonation reports whether the principal is the donor or the owner of
// the receiving association.
func canReadDonation(donation *models.Donation, principal *models.Principal) bool {
	if principal == nil {
		return false
	}
	if donation.DonorUserID != nil && *donation.DonorUserID == principal.ID {
		return true
	}
	if strings.EqualFold(donation.DonorEmail, principal.Email) {
		return true
	}
	return principal.OwnsAssociation(donation.AssociationID)
}

// assembleReceipt joins the donation, its association and the donor
// projection, and precomputes the tax figures so every surface shows the
// same numbers.
func assembleReceipt(donation *models.Donation, association *models.Association) *dto.ReceiptResponse {
	return &dto.ReceiptResponse{
		Donation:    dto.NewDonationResponse(donation),
		Association: dto.NewAssociationResponse(association),
		DonorInfo: dto.DonorInfo{
			FirstName:  donation.DonorFirstName,
			LastName:   donation.DonorLastName,
			Email:      donation.DonorEmail,
			Address:    donation.DonorAddress,
			PostalCode: donation.DonorPostalCode,
			City:       donation.DonorCity,
		},
		TaxBenefit: money.FormatCents(money.TaxBenefit(donation.AmountCents)),
		RealCost:   money.FormatCents(money.RealCost(donation.AmountCents)),
	}
}

// newTransactionID generates a human-referenceable transaction label. The
// uuid suffix carries the uniqueness; the DN-year prefix is cosmetic.
func newTransactionID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("DN%d-%s", time.Now().Year(), suffix)
}
