package dto

import (
	"github.com/lucasmrt/dondirect/internal/app/models"
	"github.com/lucasmrt/dondirect/internal/pkg/money"
)

// CreateAssociationRequest carries the caller-settable association fields.
// verified, donorCount and totalRaised are deliberately absent: the server
// always starts a new association unverified with zeroed counters, whatever
// the caller sends.
type CreateAssociationRequest struct {
	Name        string  `json:"name" binding:"required"`
	Mission     string  `json:"mission" binding:"required"`
	FullMission string  `json:"fullMission" binding:"required"`
	Category    string  `json:"category" binding:"required,oneof=health education environment social culture sport"`
	Email       string  `json:"email" binding:"required,email"`
	Phone       string  `json:"phone" binding:"required"`
	Website     *string `json:"website,omitempty"`
	Address     string  `json:"address" binding:"required"`
	Siret       string  `json:"siret" binding:"required,len=14,numeric"`
}

// UpdateAssociationRequest carries the mutable presentation fields for a
// partial update. Verification state and counters cannot be reached here.
type UpdateAssociationRequest struct {
	Name        *string `json:"name,omitempty"`
	Mission     *string `json:"mission,omitempty"`
	FullMission *string `json:"fullMission,omitempty"`
	Category    *string `json:"category,omitempty" binding:"omitempty,oneof=health education environment social culture sport"`
	Email       *string `json:"email,omitempty" binding:"omitempty,email"`
	Phone       *string `json:"phone,omitempty"`
	Website     *string `json:"website,omitempty"`
	Address     *string `json:"address,omitempty"`
}

// AssociationResponse mirrors the association model with the raised total
// rendered as a decimal euro string.
type AssociationResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Mission     string  `json:"mission"`
	FullMission string  `json:"fullMission"`
	Category    string  `json:"category"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	Website     *string `json:"website,omitempty"`
	Address     string  `json:"address"`
	Siret       string  `json:"siret"`
	Verified    bool    `json:"verified"`
	DonorCount  int64   `json:"donorCount"`
	TotalRaised string  `json:"totalRaised" example:"1250.00"`
	CreatedAt   string  `json:"createdAt"`
}

// NewAssociationResponse maps an association model to its response shape
func NewAssociationResponse(a *models.Association) *AssociationResponse {
	if a == nil {
		return nil
	}
	return &AssociationResponse{
		ID:          a.ID,
		Name:        a.Name,
		Mission:     a.Mission,
		FullMission: a.FullMission,
		Category:    a.Category,
		Email:       a.Email,
		Phone:       a.Phone,
		Website:     a.Website,
		Address:     a.Address,
		Siret:       a.Siret,
		Verified:    a.Verified,
		DonorCount:  a.DonorCount,
		TotalRaised: money.FormatCents(a.TotalRaisedCents),
		CreatedAt:   a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// NewAssociationResponses maps a slice of association models
func NewAssociationResponses(list []*models.Association) []*AssociationResponse {
	out := make([]*AssociationResponse, 0, len(list))
	for _, a := range list {
		out = append(out, NewAssociationResponse(a))
	}
	return out
}
