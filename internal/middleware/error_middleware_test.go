package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lucasmrt/dondirect/internal/app/models/dto"
	"github.com/lucasmrt/dondirect/internal/middleware"
	"github.com/lucasmrt/dondirect/internal/pkg/apperrors"
)

func respondWith(t *testing.T, err error) (*httptest.ResponseRecorder, *dto.ErrorResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest("GET", "/test", nil)

	middleware.HandleAPIError(c, err)

	var body dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not an error envelope: %v", err)
	}
	return rec, &body
}

func TestHandleAPIError_StatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   dto.ErrorCode
	}{
		{"validation", apperrors.NewValidationError("invalid donation", nil), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"bad credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{"expired session", apperrors.ErrSessionExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken},
		{"unauthenticated", apperrors.ErrUnauthenticated, http.StatusUnauthorized, dto.ErrorCodeUnauthorized},
		{"forbidden", apperrors.NewForbiddenError("not yours"), http.StatusForbidden, dto.ErrorCodeForbidden},
		{"association missing", apperrors.ErrAssociationNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"donation missing", apperrors.ErrDonationNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"duplicate email", apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tc := range cases {
		rec, body := respondWith(t, tc.err)
		if rec.Code != tc.wantStatus {
			t.Errorf("%s: status got %d, want %d", tc.name, rec.Code, tc.wantStatus)
		}
		if body.Error == nil || body.Error.Code != tc.wantCode {
			t.Errorf("%s: code got %v, want %s", tc.name, body.Error, tc.wantCode)
		}
		if body.Success {
			t.Errorf("%s: success flag must be false", tc.name)
		}
	}
}

func TestHandleAPIError_HidesInternalDetail(t *testing.T) {
	_, body := respondWith(t, errors.New("pq: connection refused"))
	if body.Error.Message == "pq: connection refused" {
		t.Error("internal error detail leaked to the client")
	}
}

func TestHandleAPIError_CarriesValidationFields(t *testing.T) {
	err := apperrors.NewValidationError("invalid donation", map[string]interface{}{
		"amount": "amount must be greater than zero",
	})
	rec, body := respondWith(t, err)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
	details, ok := body.Error.Details.(map[string]interface{})
	if !ok {
		t.Fatalf("details: got %T, want field map", body.Error.Details)
	}
	if _, ok := details["amount"]; !ok {
		t.Errorf("expected amount field detail, got %v", details)
	}
}
