package models

import (
	"time"
)

// UserType values. The type stays empty until onboarding completes.
type UserType string

const (
	UserTypeDonor       UserType = "donor"
	UserTypeAssociation UserType = "association"
)

// AuthProvider identifies which credential scheme created a user.
type AuthProvider string

const (
	ProviderEmail  AuthProvider = "email"
	ProviderReplit AuthProvider = "replit"
	ProviderGoogle AuthProvider = "google"
	ProviderApple  AuthProvider = "apple"
)

// User defines the user model based on the 'users' table. IDs are opaque
// strings: a locally generated uuid for email/password signups, or the
// subject supplied by the external identity provider otherwise.
type User struct {
	ID              string       `json:"id" db:"id" example:"1f0a6e1e-6b8d-4c2a-9a51-7f1f1d7c2b90"`
	Email           string       `json:"email" db:"email" example:"claire.moreau@example.fr"`
	FirstName       string       `json:"firstName" db:"first_name" example:"Claire"`
	LastName        string       `json:"lastName" db:"last_name" example:"Moreau"`
	ProfileImageURL *string      `json:"profileImageUrl,omitempty" db:"profile_image_url"`
	UserType        *UserType    `json:"userType,omitempty" db:"user_type"`
	AssociationID   *int64       `json:"associationId,omitempty" db:"association_id"` // set when userType is association
	PasswordHash    *string      `json:"-" db:"password_hash"`                        // only for local-credential accounts
	AuthProvider    AuthProvider `json:"authProvider" db:"auth_provider" example:"email"`
	CreatedAt       time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time    `json:"updatedAt" db:"updated_at"`
}

// Principal is the normalized identity the middleware attaches to a request,
// whichever credential scheme it came from.
type Principal struct {
	ID            string
	Email         string
	UserType      *UserType
	AssociationID *int64
}

// OwnsAssociation reports whether the principal is bound to the association.
func (p *Principal) OwnsAssociation(associationID int64) bool {
	return p != nil && p.AssociationID != nil && *p.AssociationID == associationID
}
