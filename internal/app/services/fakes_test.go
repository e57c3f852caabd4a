package services_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lucasmrt/dondirect/internal/app/models"
	"github.com/lucasmrt/dondirect/internal/pkg/apperrors"
)

// fakeStore is an in-memory stand-in for the database shared by the fake
// repositories. The donation write path mirrors the transactional SQL:
// the insert and the association counter update happen under one lock,
// with the donor counted only when the email is new for that association.
type fakeStore struct {
	mu             sync.Mutex
	associations   map[int64]*models.Association
	donations      []*models.Donation
	users          map[string]*models.User
	sessions       map[string]fakeSession
	nextAssocID    int64
	nextDonationID int64
}

type fakeSession struct {
	userID    string
	expiresAt time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		associations: make(map[int64]*models.Association),
		users:        make(map[string]*models.User),
		sessions:     make(map[string]fakeSession),
	}
}

func copyAssociation(a *models.Association) *models.Association {
	c := *a
	return &c
}

func copyDonation(d *models.Donation) *models.Donation {
	c := *d
	return &c
}

// --- association repository fake ---

type fakeAssociationRepo struct {
	store *fakeStore
}

func (r *fakeAssociationRepo) Create(_ context.Context, association *models.Association) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.insertAssociationLocked(association)
	return nil
}

func (s *fakeStore) insertAssociationLocked(association *models.Association) {
	s.nextAssocID++
	association.ID = s.nextAssocID
	association.Verified = false
	association.DonorCount = 0
	association.TotalRaisedCents = 0
	association.CreatedAt = time.Now()
	s.associations[association.ID] = copyAssociation(association)
}

func (r *fakeAssociationRepo) GetByID(_ context.Context, id int64) (*models.Association, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a, ok := r.store.associations[id]
	if !ok {
		return nil, apperrors.ErrAssociationNotFound
	}
	return copyAssociation(a), nil
}

func (r *fakeAssociationRepo) GetAll(_ context.Context) ([]*models.Association, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.Association, 0, len(r.store.associations))
	for _, a := range r.store.associations {
		out = append(out, copyAssociation(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeAssociationRepo) Search(ctx context.Context, query string) ([]*models.Association, error) {
	all, _ := r.GetAll(ctx)
	if query == "" {
		return all, nil
	}
	q := strings.ToLower(query)
	var out []*models.Association
	for _, a := range all {
		if strings.Contains(strings.ToLower(a.Name), q) || strings.Contains(strings.ToLower(a.Mission), q) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAssociationRepo) GetByCategory(ctx context.Context, category string) ([]*models.Association, error) {
	all, _ := r.GetAll(ctx)
	var out []*models.Association
	for _, a := range all {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAssociationRepo) Update(_ context.Context, association *models.Association) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	existing, ok := r.store.associations[association.ID]
	if !ok {
		return apperrors.ErrAssociationNotFound
	}
	updated := copyAssociation(association)
	// Counters and verification are not reachable through Update.
	updated.Verified = existing.Verified
	updated.DonorCount = existing.DonorCount
	updated.TotalRaisedCents = existing.TotalRaisedCents
	r.store.associations[association.ID] = updated
	return nil
}

func (r *fakeAssociationRepo) SetVerified(_ context.Context, id int64, verified bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a, ok := r.store.associations[id]
	if !ok {
		return apperrors.ErrAssociationNotFound
	}
	a.Verified = verified
	return nil
}

// --- donation repository fake ---

type fakeDonationRepo struct {
	store *fakeStore
}

func (r *fakeDonationRepo) Create(_ context.Context, donation *models.Donation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	association, ok := r.store.associations[donation.AssociationID]
	if !ok {
		return apperrors.ErrAssociationNotFound
	}

	newDonor := true
	for _, d := range r.store.donations {
		if d.AssociationID == donation.AssociationID && strings.EqualFold(d.DonorEmail, donation.DonorEmail) {
			newDonor = false
			break
		}
	}

	r.store.nextDonationID++
	donation.ID = r.store.nextDonationID
	donation.CreatedAt = time.Now()
	r.store.donations = append(r.store.donations, copyDonation(donation))

	association.TotalRaisedCents += donation.AmountCents
	if newDonor {
		association.DonorCount++
	}
	return nil
}

func (r *fakeDonationRepo) GetByID(_ context.Context, id int64) (*models.Donation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, d := range r.store.donations {
		if d.ID == id {
			return copyDonation(d), nil
		}
	}
	return nil, apperrors.ErrDonationNotFound
}

func (r *fakeDonationRepo) GetByEmail(_ context.Context, email string) ([]*models.Donation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*models.Donation
	for _, d := range r.store.donations {
		if strings.EqualFold(d.DonorEmail, email) {
			out = append(out, copyDonation(d))
		}
	}
	return out, nil
}

func (r *fakeDonationRepo) GetByUserID(_ context.Context, userID string) ([]*models.Donation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*models.Donation
	for _, d := range r.store.donations {
		if d.DonorUserID != nil && *d.DonorUserID == userID {
			out = append(out, copyDonation(d))
		}
	}
	return out, nil
}

func (r *fakeDonationRepo) GetByAssociationID(_ context.Context, associationID int64) ([]*models.Donation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*models.Donation
	for _, d := range r.store.donations {
		if d.AssociationID == associationID {
			out = append(out, copyDonation(d))
		}
	}
	return out, nil
}

// --- user repository fake ---

type fakeUserRepo struct {
	store *fakeStore
	// failWrites, when set, rejects every user write the way the database
	// would, e.g. a unique-constraint violation the pre-check missed.
	failWrites error
}

func (r *fakeUserRepo) Upsert(_ context.Context, user *models.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.upsertLocked(user)
}

// CreateWithAssociation mirrors the transactional onboarding write: the
// association only lands if the user write succeeds.
func (r *fakeUserRepo) CreateWithAssociation(_ context.Context, user *models.User, association *models.Association) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.failWrites != nil {
		return r.failWrites
	}
	for id, u := range r.store.users {
		if id != user.ID && strings.EqualFold(u.Email, user.Email) {
			return apperrors.ErrEmailAlreadyExists
		}
	}

	r.store.insertAssociationLocked(association)
	user.AssociationID = &association.ID
	return r.upsertLocked(user)
}

// UpdateTypeWithAssociation mirrors the transactional type switch: a missing
// user leaves no association behind.
func (r *fakeUserRepo) UpdateTypeWithAssociation(_ context.Context, userID string, userType models.UserType, association *models.Association) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.failWrites != nil {
		return r.failWrites
	}
	u, ok := r.store.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}

	r.store.insertAssociationLocked(association)
	u.UserType = &userType
	u.AssociationID = &association.ID
	u.UpdatedAt = time.Now()
	return nil
}

func (r *fakeUserRepo) upsertLocked(user *models.User) error {
	if r.failWrites != nil {
		return r.failWrites
	}

	for id, u := range r.store.users {
		if id != user.ID && strings.EqualFold(u.Email, user.Email) {
			return apperrors.ErrEmailAlreadyExists
		}
	}

	existing, ok := r.store.users[user.ID]
	if !ok {
		user.CreatedAt = time.Now()
		user.UpdatedAt = user.CreatedAt
		r.store.users[user.ID] = copyUser(user)
		return nil
	}

	// Provider fields win, locally chosen fields are preserved.
	merged := copyUser(user)
	if merged.ProfileImageURL == nil {
		merged.ProfileImageURL = existing.ProfileImageURL
	}
	if merged.UserType == nil {
		merged.UserType = existing.UserType
	}
	if merged.AssociationID == nil {
		merged.AssociationID = existing.AssociationID
	}
	if merged.PasswordHash == nil {
		merged.PasswordHash = existing.PasswordHash
	}
	merged.CreatedAt = existing.CreatedAt
	merged.UpdatedAt = time.Now()
	r.store.users[user.ID] = merged

	user.UserType = merged.UserType
	user.AssociationID = merged.AssociationID
	return nil
}

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if strings.EqualFold(u.Email, email) {
			return copyUser(u), nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *fakeUserRepo) UpdateUserType(_ context.Context, userID string, userType models.UserType, associationID *int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.UserType = &userType
	if associationID != nil {
		u.AssociationID = associationID
	}
	u.UpdatedAt = time.Now()
	return nil
}

// --- session repository fake ---

type fakeSessionRepo struct {
	store *fakeStore
}

func (r *fakeSessionRepo) Create(_ context.Context, token, userID string, expiresAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.sessions[token] = fakeSession{userID: userID, expiresAt: expiresAt}
	return nil
}

func (r *fakeSessionRepo) GetUserID(_ context.Context, token string) (string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.sessions[token]
	if !ok {
		return "", apperrors.ErrSessionNotFound
	}
	if time.Now().After(s.expiresAt) {
		return "", apperrors.ErrSessionExpired
	}
	return s.userID, nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, token string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.sessions[token]; !ok {
		return apperrors.ErrSessionNotFound
	}
	delete(r.store.sessions, token)
	return nil
}

func (r *fakeSessionRepo) DeleteExpired(_ context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var n int64
	for token, s := range r.store.sessions {
		if time.Now().After(s.expiresAt) {
			delete(r.store.sessions, token)
			n++
		}
	}
	return n, nil
}
