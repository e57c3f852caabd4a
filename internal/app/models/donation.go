package models

import (
	"time"
)

// DonationStatusCompleted is the only status the platform records; there is
// no payment state machine behind it.
const DonationStatusCompleted = "completed"

// Donation defines a single immutable contribution based on the 'donations'
// table. Donor contact fields are snapshotted from the submitted form, not
// from the user profile, so receipts reflect what was actually entered.
type Donation struct {
	ID              int64     `json:"id" db:"id" example:"1"`
	AssociationID   int64     `json:"associationId" db:"association_id" example:"1"`
	DonorFirstName  string    `json:"donorFirstName" db:"donor_first_name" example:"Claire"`
	DonorLastName   string    `json:"donorLastName" db:"donor_last_name" example:"Moreau"`
	DonorEmail      string    `json:"donorEmail" db:"donor_email" example:"claire.moreau@example.fr"`
	DonorPhone      *string   `json:"donorPhone,omitempty" db:"donor_phone"`
	DonorAddress    string    `json:"donorAddress" db:"donor_address" example:"12 rue des Lilas"`
	DonorPostalCode string    `json:"donorPostalCode" db:"donor_postal_code" example:"75011"`
	DonorCity       string    `json:"donorCity" db:"donor_city" example:"Paris"`
	DonorUserID     *string   `json:"donorUserId,omitempty" db:"donor_user_id"` // set only when the request was authenticated
	AmountCents     int64     `json:"-" db:"amount_cents"`
	TransactionID   string    `json:"transactionId" db:"transaction_id" example:"DN2026-4F2A91C3"`
	Status          string    `json:"status" db:"status" example:"completed"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at" example:"2026-03-14T09:30:00Z"`
}
