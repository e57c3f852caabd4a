package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lucasmrt/dondirect/internal/app/models/dto"
	"github.com/lucasmrt/dondirect/internal/app/services"
	"github.com/lucasmrt/dondirect/internal/middleware"
	"github.com/lucasmrt/dondirect/internal/pkg/apperrors"
)

// AssociationController handles the association directory endpoints
type AssociationController struct {
	associationService services.AssociationService
	statsService       services.StatsService
}

// NewAssociationController creates a new AssociationController
func NewAssociationController(associationService services.AssociationService, statsService services.StatsService) *AssociationController {
	return &AssociationController{
		associationService: associationService,
		statsService:       statsService,
	}
}

// List returns the full directory, or a filtered view when a search query
// or category is present. Search wins when both are sent.
func (c *AssociationController) List(ctx *gin.Context) {
	var (
		list []*dto.AssociationResponse
		err  error
	)

	if query, ok := ctx.GetQuery("q"); ok {
		list, err = c.search(ctx, query)
	} else if category, ok := ctx.GetQuery("category"); ok {
		list, err = c.byCategory(ctx, category)
	} else {
		list, err = c.all(ctx)
	}
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(list))
}

// Search matches associations by name or mission
func (c *AssociationController) Search(ctx *gin.Context) {
	list, err := c.search(ctx, ctx.Param("query"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(list))
}

// GetByCategory filters the directory by category path parameter
func (c *AssociationController) GetByCategory(ctx *gin.Context) {
	list, err := c.byCategory(ctx, ctx.Param("category"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(list))
}

// GetByID returns a single association
func (c *AssociationController) GetByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	association, err := c.associationService.GetByID(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewAssociationResponse(association)))
}

// Create registers a new association
func (c *AssociationController) Create(ctx *gin.Context) {
	var req dto.CreateAssociationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	association, err := c.associationService.Create(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(dto.NewAssociationResponse(association)))
}

// Update applies presentation changes to an owned association
func (c *AssociationController) Update(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateAssociationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	association, err := c.associationService.Update(ctx, id, &req, middleware.PrincipalFrom(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewAssociationResponse(association)))
}

// Verify marks an owned association as verified
func (c *AssociationController) Verify(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	association, err := c.associationService.Verify(ctx, id, middleware.PrincipalFrom(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewAssociationResponse(association)))
}

// Stats returns the recomputed donation rollups for an association
func (c *AssociationController) Stats(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	stats, err := c.statsService.ForAssociation(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(stats))
}

// OwnStats returns the rollups for the association the principal owns
func (c *AssociationController) OwnStats(ctx *gin.Context) {
	principal := middleware.PrincipalFrom(ctx)
	if principal == nil || principal.AssociationID == nil {
		middleware.HandleAPIError(ctx, apperrors.NewForbiddenError("No association is bound to this account"))
		return
	}

	stats, err := c.statsService.ForAssociation(ctx, *principal.AssociationID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(stats))
}

// Own returns the association the principal owns
func (c *AssociationController) Own(ctx *gin.Context) {
	principal := middleware.PrincipalFrom(ctx)
	if principal == nil || principal.AssociationID == nil {
		middleware.HandleAPIError(ctx, apperrors.ErrAssociationNotFound)
		return
	}

	association, err := c.associationService.GetByID(ctx, *principal.AssociationID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewAssociationResponse(association)))
}

func (c *AssociationController) all(ctx *gin.Context) ([]*dto.AssociationResponse, error) {
	list, err := c.associationService.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewAssociationResponses(list), nil
}

func (c *AssociationController) search(ctx *gin.Context, query string) ([]*dto.AssociationResponse, error) {
	list, err := c.associationService.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return dto.NewAssociationResponses(list), nil
}

func (c *AssociationController) byCategory(ctx *gin.Context, category string) ([]*dto.AssociationResponse, error) {
	list, err := c.associationService.GetByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	return dto.NewAssociationResponses(list), nil
}

// parseIDParam parses a numeric path parameter, answering 400 itself when
// the value is not a positive integer.
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name+" parameter").WithField(name)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}
