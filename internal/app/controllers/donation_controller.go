package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lucasmrt/dondirect/internal/app/models/dto"
	"github.com/lucasmrt/dondirect/internal/app/services"
	"github.com/lucasmrt/dondirect/internal/middleware"
)

// DonationController handles the donation ledger endpoints
type DonationController struct {
	donationService services.DonationService
}

// NewDonationController creates a new DonationController
func NewDonationController(donationService services.DonationService) *DonationController {
	return &DonationController{
		donationService: donationService,
	}
}

// Create records a donation and returns its receipt data. Works for
// anonymous and authenticated donors alike; an authenticated donor gets the
// donation attached to their account.
func (c *DonationController) Create(ctx *gin.Context) {
	var req dto.CreateDonationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	receipt, err := c.donationService.Create(ctx, &req, middleware.PrincipalFrom(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(receipt))
}

// Receipt returns receipt data for an existing donation
func (c *DonationController) Receipt(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	receipt, err := c.donationService.Receipt(ctx, id, middleware.PrincipalFrom(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(receipt))
}

// GetByEmail lists donations recorded under the caller's own email
func (c *DonationController) GetByEmail(ctx *gin.Context) {
	donations, err := c.donationService.GetByEmail(ctx, ctx.Param("email"), middleware.PrincipalFrom(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewDonationResponses(donations)))
}

// GetMine lists donations the authenticated user has made
func (c *DonationController) GetMine(ctx *gin.Context) {
	donations, err := c.donationService.GetByUser(ctx, middleware.PrincipalFrom(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewDonationResponses(donations)))
}

// GetReceived lists donations received by the association the caller owns
func (c *DonationController) GetReceived(ctx *gin.Context) {
	donations, err := c.donationService.GetByOwnedAssociation(ctx, middleware.PrincipalFrom(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewDonationResponses(donations)))
}
