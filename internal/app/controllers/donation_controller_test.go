package controllers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lucasmrt/dondirect/internal/app/controllers"
	"github.com/lucasmrt/dondirect/internal/app/models"
	"github.com/lucasmrt/dondirect/internal/app/models/dto"
	"github.com/lucasmrt/dondirect/internal/pkg/apperrors"
)

type stubDonationService struct {
	createdReq *dto.CreateDonationRequest
	receipt    *dto.ReceiptResponse
	err        error
}

func (s *stubDonationService) Create(_ context.Context, req *dto.CreateDonationRequest, _ *models.Principal) (*dto.ReceiptResponse, error) {
	s.createdReq = req
	return s.receipt, s.err
}

func (s *stubDonationService) Receipt(_ context.Context, _ int64, _ *models.Principal) (*dto.ReceiptResponse, error) {
	return s.receipt, s.err
}

func (s *stubDonationService) GetByEmail(_ context.Context, _ string, _ *models.Principal) ([]*models.Donation, error) {
	return nil, s.err
}

func (s *stubDonationService) GetByUser(_ context.Context, _ *models.Principal) ([]*models.Donation, error) {
	return nil, s.err
}

func (s *stubDonationService) GetByOwnedAssociation(_ context.Context, _ *models.Principal) ([]*models.Donation, error) {
	return nil, s.err
}

func newDonationRouter(svc *stubDonationService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	controller := controllers.NewDonationController(svc)
	router := gin.New()
	router.POST("/api/donations", controller.Create)
	router.GET("/api/donations/:id/receipt", controller.Receipt)
	return router
}

const donationBody = `{
	"associationId": 1,
	"donorFirstName": "Marie",
	"donorLastName": "Dupont",
	"donorEmail": "marie@example.fr",
	"donorAddress": "12 rue de la Paix",
	"donorPostalCode": "75002",
	"donorCity": "Paris",
	"amount": "50.00"
}`

func TestDonationCreate_Endpoint(t *testing.T) {
	svc := &stubDonationService{
		receipt: &dto.ReceiptResponse{
			Donation:   &dto.DonationResponse{ID: 1, Amount: "50.00", TransactionID: "DN2026-ABCDEF01"},
			TaxBenefit: "33.00",
			RealCost:   "17.00",
		},
	}
	router := newDonationRouter(svc)

	req := httptest.NewRequest("POST", "/api/donations", strings.NewReader(donationBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201, body: %s", rec.Code, rec.Body.String())
	}
	if svc.createdReq == nil || svc.createdReq.Amount != "50.00" {
		t.Errorf("service received request: %+v", svc.createdReq)
	}

	var envelope dto.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("invalid envelope: %v", err)
	}
	if !envelope.Success {
		t.Error("success flag must be true")
	}
}

func TestDonationCreate_MalformedBody(t *testing.T) {
	svc := &stubDonationService{}
	router := newDonationRouter(svc)

	req := httptest.NewRequest("POST", "/api/donations", strings.NewReader(`{"associationId": 1}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
	if svc.createdReq != nil {
		t.Error("service must not be called on a binding failure")
	}
}

func TestDonationReceipt_NotFound(t *testing.T) {
	svc := &stubDonationService{err: apperrors.ErrDonationNotFound}
	router := newDonationRouter(svc)

	req := httptest.NewRequest("GET", "/api/donations/999/receipt", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", rec.Code)
	}
}

func TestDonationReceipt_BadID(t *testing.T) {
	router := newDonationRouter(&stubDonationService{})

	req := httptest.NewRequest("GET", "/api/donations/abc/receipt", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
}
