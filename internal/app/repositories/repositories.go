package repositories

import (
	"github.com/lucasmrt/dondirect/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository        *UserRepository
	AssociationRepository *AssociationRepository
	DonationRepository    *DonationRepository
	SessionRepository     *SessionRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		UserRepository:        NewUserRepository(database),
		AssociationRepository: NewAssociationRepository(database.Pool),
		DonationRepository:    NewDonationRepository(database),
		SessionRepository:     NewSessionRepository(database.Pool),
	}
}
