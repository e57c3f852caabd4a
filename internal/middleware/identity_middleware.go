package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/lucasmrt/dondirect/internal/app/models"
	"github.com/lucasmrt/dondirect/internal/app/repositories"
	"github.com/lucasmrt/dondirect/internal/pkg/apperrors"
	"github.com/lucasmrt/dondirect/internal/pkg/auth"
	"github.com/lucasmrt/dondirect/internal/pkg/logger"
)

// principalKey is the gin context key the resolved principal is stored under
const principalKey = "principal"

// IdentityMiddleware resolves the caller's identity from either credential
// scheme and normalizes it into a Principal before any handler runs.
type IdentityMiddleware struct {
	sessionRepo repositories.ISessionRepository
	userRepo    repositories.IUserRepository
	jwtService  *auth.JWTService
	cookieName  string
}

// NewIdentityMiddleware creates a new identity middleware instance
func NewIdentityMiddleware(
	sessionRepo repositories.ISessionRepository,
	userRepo repositories.IUserRepository,
	jwtService *auth.JWTService,
	cookieName string,
) *IdentityMiddleware {
	return &IdentityMiddleware{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		jwtService:  jwtService,
		cookieName:  cookieName,
	}
}

// Identify resolves an optional principal. The session cookie is checked
// first, then provider claims in the Authorization header. Any resolution
// failure, including a session or claims subject pointing at a user that no
// longer exists, leaves the request unauthenticated rather than failing it;
// endpoints that need identity enforce it with RequireAuth.
func (m *IdentityMiddleware) Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		if principal := m.fromSession(c); principal != nil {
			c.Set(principalKey, principal)
			c.Next()
			return
		}
		if principal := m.fromProviderClaims(c); principal != nil {
			c.Set(principalKey, principal)
		}
		c.Next()
	}
}

// RequireAuth rejects requests that carry no resolved principal
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if PrincipalFrom(c) == nil {
			HandleAPIError(c, apperrors.ErrUnauthenticated)
			c.Abort()
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the principal resolved for this request, or nil for
// an unauthenticated caller.
func PrincipalFrom(c *gin.Context) *models.Principal {
	value, exists := c.Get(principalKey)
	if !exists {
		return nil
	}
	principal, ok := value.(*models.Principal)
	if !ok {
		return nil
	}
	return principal
}

func (m *IdentityMiddleware) fromSession(c *gin.Context) *models.Principal {
	token, err := c.Cookie(m.cookieName)
	if err != nil || token == "" {
		return nil
	}

	userID, err := m.sessionRepo.GetUserID(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, apperrors.ErrSessionNotFound) && !errors.Is(err, apperrors.ErrSessionExpired) {
			logger.Warn().Err(err).Msg("Session lookup failed")
		}
		return nil
	}

	return m.principalFor(c, userID, "")
}

func (m *IdentityMiddleware) fromProviderClaims(c *gin.Context) *models.Principal {
	tokenString, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
	if err != nil {
		return nil
	}

	claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
	if err != nil {
		return nil
	}

	return m.principalFor(c, claims.Subject, claims.Email)
}

// principalFor loads the user a credential points at. A dangling reference
// yields an unauthenticated request, not an error.
func (m *IdentityMiddleware) principalFor(c *gin.Context, userID, fallbackEmail string) *models.Principal {
	user, err := m.userRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			logger.Warn().Err(err).Str("user_id", userID).Msg("Principal lookup failed")
		}
		return nil
	}

	principal := &models.Principal{
		ID:            user.ID,
		Email:         user.Email,
		UserType:      user.UserType,
		AssociationID: user.AssociationID,
	}
	if principal.Email == "" {
		principal.Email = fallbackEmail
	}
	return principal
}
