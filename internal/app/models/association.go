package models

import (
	"time"
)

// Association categories recognised by the directory. Category filtering
// treats "all" as a no-filter sentinel, not a stored value.
const (
	CategoryAll         = "all"
	CategoryHealth      = "health"
	CategoryEducation   = "education"
	CategoryEnvironment = "environment"
	CategorySocial      = "social"
	CategoryCulture     = "culture"
	CategorySport       = "sport"
)

// ValidCategory reports whether category is one of the stored directory
// categories. The "all" sentinel is not a stored value and is rejected here.
func ValidCategory(category string) bool {
	switch category {
	case CategoryHealth, CategoryEducation, CategoryEnvironment, CategorySocial, CategoryCulture, CategorySport:
		return true
	}
	return false
}

// Association defines a registered charitable association based on the
// 'associations' table. DonorCount and TotalRaisedCents are cached aggregates
// maintained by the donation write path; they count distinct donor emails and
// sum donation amounts for this association.
type Association struct {
	ID               int64     `json:"id" db:"id" example:"1"`
	Name             string    `json:"name" db:"name" example:"Médecins Sans Frontières"`
	Mission          string    `json:"mission" db:"mission" example:"Aide médicale d'urgence aux populations en détresse"`
	FullMission      string    `json:"fullMission" db:"full_mission"`
	Category         string    `json:"category" db:"category" example:"health"`
	Email            string    `json:"email" db:"email" example:"contact@msf.fr"`
	Phone            string    `json:"phone" db:"phone" example:"01 40 21 29 29"`
	Website          *string   `json:"website,omitempty" db:"website" example:"www.msf.fr"`
	Address          string    `json:"address" db:"address" example:"8 rue Saint-Sabin, 75011 Paris"`
	Siret            string    `json:"siret" db:"siret" example:"78432158200034"` // 14-digit registration number
	Verified         bool      `json:"verified" db:"verified" example:"true"`
	DonorCount       int64     `json:"donorCount" db:"donor_count" example:"12450"`
	TotalRaisedCents int64     `json:"-" db:"total_raised_cents"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at" example:"2024-01-01T10:00:00Z"`
}
