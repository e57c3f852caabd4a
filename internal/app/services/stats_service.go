package services

import (
	"context"
	"strings"

	"github.com/lucasmrt/dondirect/internal/app/models/dto"
	"github.com/lucasmrt/dondirect/internal/app/repositories"
	"github.com/lucasmrt/dondirect/internal/pkg/money"
)

// StatsService computes per-association donation rollups
type StatsService interface {
	ForAssociation(ctx context.Context, associationID int64) (*dto.StatsResponse, error)
}

type statsService struct {
	donationRepo repositories.IDonationRepository
	assocRepo    repositories.IAssociationRepository
}

// NewStatsService creates a new stats service instance
func NewStatsService(donationRepo repositories.IDonationRepository, assocRepo repositories.IAssociationRepository) StatsService {
	return &statsService{
		donationRepo: donationRepo,
		assocRepo:    assocRepo,
	}
}

// ForAssociation recomputes the rollups from the ledger rather than reading
// the association's cached counters. Donors are deduplicated by email,
// case-insensitively, so the figure matches the cached donor_count.
func (s *statsService) ForAssociation(ctx context.Context, associationID int64) (*dto.StatsResponse, error) {
	if _, err := s.assocRepo.GetByID(ctx, associationID); err != nil {
		return nil, err
	}

	donations, err := s.donationRepo.GetByAssociationID(ctx, associationID)
	if err != nil {
		return nil, err
	}

	var totalCents int64
	donors := make(map[string]struct{}, len(donations))
	for _, d := range donations {
		totalCents += d.AmountCents
		donors[strings.ToLower(d.DonorEmail)] = struct{}{}
	}

	var avgCents int64
	if n := int64(len(donations)); n > 0 {
		// Round half up to the nearest cent.
		avgCents = (totalCents + n/2) / n
	}

	return &dto.StatsResponse{
		TotalRaised:   money.FormatCents(totalCents),
		DonorCount:    int64(len(donors)),
		DonationCount: int64(len(donations)),
		AvgDonation:   money.FormatCents(avgCents),
	}, nil
}
