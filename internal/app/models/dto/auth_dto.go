package dto

import "github.com/lucasmrt/dondirect/internal/app/models"

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents a local-credential signup. When userType is
// "association" the association block must be present so the owned
// association can be created in the same request.
type RegisterRequest struct {
	Email       string                    `json:"email" binding:"required,email"`
	Password    string                    `json:"password" binding:"required,min=8"`
	FirstName   string                    `json:"firstName" binding:"required"`
	LastName    string                    `json:"lastName" binding:"required"`
	UserType    string                    `json:"userType" binding:"omitempty,oneof=donor association"`
	Association *CreateAssociationRequest `json:"association,omitempty"`
}

// UpdateUserTypeRequest sets the user type once onboarding completes.
type UpdateUserTypeRequest struct {
	UserType    string                    `json:"userType" binding:"required,oneof=donor association"`
	Association *CreateAssociationRequest `json:"association,omitempty"`
}

// UserResponse represents user information returned to clients
type UserResponse struct {
	ID              string  `json:"id"`
	Email           string  `json:"email"`
	FirstName       string  `json:"firstName"`
	LastName        string  `json:"lastName"`
	ProfileImageURL *string `json:"profileImageUrl,omitempty"`
	UserType        *string `json:"userType,omitempty"`
	AssociationID   *int64  `json:"associationId,omitempty"`
	AuthProvider    string  `json:"authProvider"`
}

// NewUserResponse maps a user model to its response shape
func NewUserResponse(user *models.User) *UserResponse {
	if user == nil {
		return nil
	}
	resp := &UserResponse{
		ID:              user.ID,
		Email:           user.Email,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		ProfileImageURL: user.ProfileImageURL,
		AssociationID:   user.AssociationID,
		AuthProvider:    string(user.AuthProvider),
	}
	if user.UserType != nil {
		t := string(*user.UserType)
		resp.UserType = &t
	}
	return resp
}
