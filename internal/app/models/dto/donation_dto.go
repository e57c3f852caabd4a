package dto

import (
	"github.com/lucasmrt/dondirect/internal/app/models"
	"github.com/lucasmrt/dondirect/internal/pkg/money"
)

// CreateDonationRequest carries a donation submission. The amount is a
// decimal euro string as entered in the payment form; donorUserId is never
// accepted from the caller, it comes from the resolved principal.
type CreateDonationRequest struct {
	AssociationID   int64   `json:"associationId" binding:"required,min=1"`
	DonorFirstName  string  `json:"donorFirstName" binding:"required"`
	DonorLastName   string  `json:"donorLastName" binding:"required"`
	DonorEmail      string  `json:"donorEmail" binding:"required,email"`
	DonorPhone      *string `json:"donorPhone,omitempty"`
	DonorAddress    string  `json:"donorAddress" binding:"required"`
	DonorPostalCode string  `json:"donorPostalCode" binding:"required"`
	DonorCity       string  `json:"donorCity" binding:"required"`
	Amount          string  `json:"amount" binding:"required" example:"50.00"`
}

// DonationResponse mirrors the donation model with the amount rendered as a
// decimal euro string.
type DonationResponse struct {
	ID              int64   `json:"id"`
	AssociationID   int64   `json:"associationId"`
	DonorFirstName  string  `json:"donorFirstName"`
	DonorLastName   string  `json:"donorLastName"`
	DonorEmail      string  `json:"donorEmail"`
	DonorPhone      *string `json:"donorPhone,omitempty"`
	DonorAddress    string  `json:"donorAddress"`
	DonorPostalCode string  `json:"donorPostalCode"`
	DonorCity       string  `json:"donorCity"`
	DonorUserID     *string `json:"donorUserId,omitempty"`
	Amount          string  `json:"amount" example:"50.00"`
	TransactionID   string  `json:"transactionId"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"createdAt"`
}

// NewDonationResponse maps a donation model to its response shape
func NewDonationResponse(d *models.Donation) *DonationResponse {
	if d == nil {
		return nil
	}
	return &DonationResponse{
		ID:              d.ID,
		AssociationID:   d.AssociationID,
		DonorFirstName:  d.DonorFirstName,
		DonorLastName:   d.DonorLastName,
		DonorEmail:      d.DonorEmail,
		DonorPhone:      d.DonorPhone,
		DonorAddress:    d.DonorAddress,
		DonorPostalCode: d.DonorPostalCode,
		DonorCity:       d.DonorCity,
		DonorUserID:     d.DonorUserID,
		Amount:          money.FormatCents(d.AmountCents),
		TransactionID:   d.TransactionID,
		Status:          d.Status,
		CreatedAt:       d.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// NewDonationResponses maps a slice of donation models
func NewDonationResponses(list []*models.Donation) []*DonationResponse {
	out := make([]*DonationResponse, 0, len(list))
	for _, d := range list {
		out = append(out, NewDonationResponse(d))
	}
	return out
}

// DonorInfo is the receipt projection of the donor contact fields, taken
// from the donation record itself.
type DonorInfo struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	PostalCode string `json:"postalCode"`
	City       string `json:"city"`
}

// ReceiptResponse joins a donation, its association and the donor projection
// into receipt-ready data, with the tax figures precomputed so the preview
// and the downloaded document always agree.
type ReceiptResponse struct {
	Donation    *DonationResponse    `json:"donation"`
	Association *AssociationResponse `json:"association"`
	DonorInfo   DonorInfo            `json:"donorInfo"`
	TaxBenefit  string               `json:"taxBenefit" example:"33.00"`
	RealCost    string               `json:"realCost" example:"17.00"`
}

// StatsResponse is the dashboard rollup for one association, recomputed from
// the ledger on every read.
type StatsResponse struct {
	TotalRaised   string `json:"totalRaised" example:"1250.00"`
	DonorCount    int64  `json:"donorCount"`
	DonationCount int64  `json:"donationCount"`
	AvgDonation   string `json:"avgDonation" example:"62.50"`
}
