package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/lucasmrt/dondirect/internal/app/models"
	"github.com/lucasmrt/dondirect/internal/app/models/dto"
	"github.com/lucasmrt/dondirect/internal/app/services"
	"github.com/lucasmrt/dondirect/internal/pkg/apperrors"
)

func newAssociationFixture(t *testing.T) (*fakeStore, services.AssociationService) {
	t.Helper()
	store := newFakeStore()
	return store, services.NewAssociationService(&fakeAssociationRepo{store: store})
}

func seedDirectory(t *testing.T, svc services.AssociationService) {
	t.Helper()
	entries := []*dto.CreateAssociationRequest{
		{
			Name:        "Médecins Sans Frontières",
			Mission:     "Aide médicale d'urgence aux populations en détresse",
			FullMission: "Aide médicale d'urgence.",
			Category:    models.CategoryHealth,
			Email:       "contact@msf.fr",
			Phone:       "01 40 21 29 29",
			Address:     "8 rue Saint-Sabin, 75011 Paris",
			Siret:       "78432158200034",
		},
		{
			Name:        "WWF France",
			Mission:     "Conservation de la nature",
			FullMission: "Protection de l'environnement.",
			Category:    models.CategoryEnvironment,
			Email:       "contact@wwf.fr",
			Phone:       "01 55 25 84 84",
			Address:     "35-37 rue Baudin, 93310 Le Pré-Saint-Gervais",
			Siret:       "78432158200036",
		},
		{
			Name:        "Les Restos du Cœur",
			Mission:     "Aide alimentaire et insertion sociale",
			FullMission: "Accès à des repas gratuits.",
			Category:    models.CategorySocial,
			Email:       "contact@restosducoeur.org",
			Phone:       "01 53 32 23 23",
			Address:     "35 rue de Trévise, 75009 Paris",
			Siret:       "78432158200038",
		},
	}
	for _, req := range entries {
		if _, err := svc.Create(context.Background(), req); err != nil {
			t.Fatalf("Create(%s): %v", req.Name, err)
		}
	}
}

func TestCreateAssociation_StartsUnverifiedWithZeroCounters(t *testing.T) {
	_, svc := newAssociationFixture(t)

	created, err := svc.Create(context.Background(), &dto.CreateAssociationRequest{
		Name:        "Médecins Sans Frontières",
		Mission:     "Aide médicale d'urgence",
		FullMission: "Aide médicale d'urgence.",
		Category:    models.CategoryHealth,
		Email:       "contact@msf.fr",
		Phone:       "01 40 21 29 29",
		Address:     "8 rue Saint-Sabin, 75011 Paris",
		Siret:       "78432158200034",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if created.ID == 0 {
		t.Error("expected an assigned id")
	}
	if created.Verified {
		t.Error("new association must start unverified")
	}
	if created.DonorCount != 0 || created.TotalRaisedCents != 0 {
		t.Errorf("counters: got donorCount=%d totalRaised=%d, want zeros", created.DonorCount, created.TotalRaisedCents)
	}
}

func TestCreateAssociation_RejectsUnknownCategory(t *testing.T) {
	_, svc := newAssociationFixture(t)

	_, err := svc.Create(context.Background(), &dto.CreateAssociationRequest{
		Name:        "X",
		Mission:     "Y",
		FullMission: "Z",
		Category:    "humanitarian",
		Email:       "x@example.fr",
		Phone:       "01 00 00 00 00",
		Address:     "Paris",
		Siret:       "12345678900011",
	})
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("got %v, want validation failure", err)
	}
}

func TestSearch_MatchesNameAndMission(t *testing.T) {
	_, svc := newAssociationFixture(t)
	seedDirectory(t, svc)

	byName, err := svc.Search(context.Background(), "restos")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(byName) != 1 || byName[0].Name != "Les Restos du Cœur" {
		t.Errorf("search by name: got %d results", len(byName))
	}

	byMission, err := svc.Search(context.Background(), "médicale")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(byMission) != 1 || byMission[0].Name != "Médecins Sans Frontières" {
		t.Errorf("search by mission: got %d results", len(byMission))
	}
}

func TestSearch_BlankQueryReturnsAll(t *testing.T) {
	_, svc := newAssociationFixture(t)
	seedDirectory(t, svc)

	for _, q := range []string{"", "   "} {
		all, err := svc.Search(context.Background(), q)
		if err != nil {
			t.Fatalf("Search(%q): %v", q, err)
		}
		if len(all) != 3 {
			t.Errorf("Search(%q): got %d results, want 3", q, len(all))
		}
	}
}

func TestGetByCategory_AllSentinelDisablesFilter(t *testing.T) {
	_, svc := newAssociationFixture(t)
	seedDirectory(t, svc)

	all, err := svc.GetByCategory(context.Background(), "all")
	if err != nil {
		t.Fatalf("GetByCategory(all): %v", err)
	}
	if len(all) != 3 {
		t.Errorf("GetByCategory(all): got %d, want 3", len(all))
	}

	social, err := svc.GetByCategory(context.Background(), models.CategorySocial)
	if err != nil {
		t.Fatalf("GetByCategory(social): %v", err)
	}
	if len(social) != 1 || social[0].Category != models.CategorySocial {
		t.Errorf("GetByCategory(social): got %d results", len(social))
	}

	if _, err := svc.GetByCategory(context.Background(), "nonsense"); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("unknown category: got %v, want validation failure", err)
	}
}

func TestUpdateAssociation_OwnershipAndFieldLimits(t *testing.T) {
	store, svc := newAssociationFixture(t)
	seedDirectory(t, svc)

	// Give the first association some donation history to protect.
	store.associations[1].Verified = true
	store.associations[1].DonorCount = 12
	store.associations[1].TotalRaisedCents = 98700

	newMission := "Nouvelle mission"
	req := &dto.UpdateAssociationRequest{Mission: &newMission}

	if _, err := svc.Update(context.Background(), 1, req, nil); !errors.Is(err, apperrors.ErrUnauthenticated) {
		t.Errorf("anonymous update: got %v, want ErrUnauthenticated", err)
	}

	otherID := int64(2)
	stranger := &models.Principal{ID: "u9", Email: "x@example.fr", AssociationID: &otherID}
	if _, err := svc.Update(context.Background(), 1, req, stranger); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("foreign update: got %v, want ErrPermissionDenied", err)
	}

	ownID := int64(1)
	owner := &models.Principal{ID: "u1", Email: "contact@msf.fr", AssociationID: &ownID}
	updated, err := svc.Update(context.Background(), 1, req, owner)
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Mission != newMission {
		t.Errorf("mission: got %q, want %q", updated.Mission, newMission)
	}

	after := store.associations[1]
	if !after.Verified || after.DonorCount != 12 || after.TotalRaisedCents != 98700 {
		t.Errorf("update touched protected fields: %+v", after)
	}
}

func TestVerify_RequiresOwnership(t *testing.T) {
	store, svc := newAssociationFixture(t)
	seedDirectory(t, svc)

	if _, err := svc.Verify(context.Background(), 1, nil); !errors.Is(err, apperrors.ErrUnauthenticated) {
		t.Errorf("anonymous verify: got %v, want ErrUnauthenticated", err)
	}

	ownID := int64(1)
	owner := &models.Principal{ID: "u1", Email: "contact@msf.fr", AssociationID: &ownID}
	verified, err := svc.Verify(context.Background(), 1, owner)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !verified.Verified {
		t.Error("expected verified flag set")
	}
	if !store.associations[1].Verified {
		t.Error("verified flag not persisted")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	_, svc := newAssociationFixture(t)

	if _, err := svc.GetByID(context.Background(), 42); !errors.Is(err, apperrors.ErrAssociationNotFound) {
		t.Fatalf("got %v, want ErrAssociationNotFound", err)
	}
}
