package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lucasmrt/dondirect/internal/app/models/dto"
	"github.com/lucasmrt/dondirect/internal/app/services"
	"github.com/lucasmrt/dondirect/internal/middleware"
	"github.com/lucasmrt/dondirect/internal/pkg/apperrors"
	"github.com/lucasmrt/dondirect/internal/pkg/auth"
)

// SessionCookieConfig drives how the session cookie is issued
type SessionCookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// AuthController handles registration, login and the current-user endpoints
type AuthController struct {
	authService services.AuthService
	jwtService  *auth.JWTService
	cookie      SessionCookieConfig
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService, jwtService *auth.JWTService, cookie SessionCookieConfig) *AuthController {
	return &AuthController{
		authService: authService,
		jwtService:  jwtService,
		cookie:      cookie,
	}
}

// Register handles local-credential signup and opens a session
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	user, token, err := c.authService.Register(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.setSessionCookie(ctx, token, int(c.cookie.TTL.Seconds()))
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(dto.NewUserResponse(user)))
}

// Login checks credentials and opens a session
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	user, token, err := c.authService.Login(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.setSessionCookie(ctx, token, int(c.cookie.TTL.Seconds()))
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewUserResponse(user)))
}

// ProviderSession exchanges a valid identity-provider claims token for a
// session cookie, provisioning the account on first sight. The bearer token
// itself is the credential, so the endpoint needs no prior session.
func (c *AuthController) ProviderSession(ctx *gin.Context) {
	token, err := auth.ExtractBearerToken(ctx.GetHeader("Authorization"))
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.ErrTokenInvalid)
		return
	}

	claims, err := c.jwtService.ValidateAndExtractClaims(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			middleware.HandleAPIError(ctx, apperrors.ErrTokenExpired)
			return
		}
		middleware.HandleAPIError(ctx, apperrors.ErrTokenInvalid)
		return
	}

	user, sessionToken, err := c.authService.LoginWithProvider(ctx, claims)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.setSessionCookie(ctx, sessionToken, int(c.cookie.TTL.Seconds()))
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewUserResponse(user)))
}

// Logout invalidates the current session and clears the cookie
func (c *AuthController) Logout(ctx *gin.Context) {
	if token, err := ctx.Cookie(c.cookie.Name); err == nil && token != "" {
		if err := c.authService.Logout(ctx, token); err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
	}

	c.setSessionCookie(ctx, "", -1)
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Logged out"}))
}

// CurrentUser returns the authenticated account
func (c *AuthController) CurrentUser(ctx *gin.Context) {
	principal := middleware.PrincipalFrom(ctx)
	if principal == nil {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthenticated)
		return
	}

	user, err := c.authService.GetUser(ctx, principal.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewUserResponse(user)))
}

// UpdateUserType fixes the account type after onboarding
func (c *AuthController) UpdateUserType(ctx *gin.Context) {
	principal := middleware.PrincipalFrom(ctx)
	if principal == nil {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthenticated)
		return
	}

	var req dto.UpdateUserTypeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	user, err := c.authService.UpdateUserType(ctx, principal.ID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewUserResponse(user)))
}

func (c *AuthController) setSessionCookie(ctx *gin.Context, token string, maxAge int) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.cookie.Name, token, maxAge, "/", "", c.cookie.Secure, true)
}
