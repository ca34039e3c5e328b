package dto

import (
	"time"

	"github.com/yukikurage/cse-council-api/internal/models"
	"github.com/yukikurage/cse-council-api/internal/services"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        uint64          `json:"id"`
	Email     string          `json:"email"`
	Name      string          `json:"name"`
	Role      models.UserRole `json:"role"`
	CSERole   *string         `json:"cse_role"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
}

// UserListResponse wraps a list of users
type UserListResponse struct {
	Users []UserDTO `json:"users"`
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CreateUserRequest is the body of POST /api/users
type CreateUserRequest struct {
	Email    string          `json:"email" binding:"required,email,max=255"`
	Password string          `json:"password" binding:"required,min=8"`
	Name     string          `json:"name" binding:"required,min=2,max=255"`
	Role     models.UserRole `json:"role" binding:"required,oneof=ADMIN PRESIDENT MEMBER"`
	CSERole  *string         `json:"cse_role" binding:"omitempty,max=255"`
}

// UpdateUserRequest is the body of PUT /api/users/:id. Omitted fields are kept.
type UpdateUserRequest struct {
	Email    *string          `json:"email" binding:"omitempty,email,max=255"`
	Password *string          `json:"password" binding:"omitempty,min=8"`
	Name     *string          `json:"name" binding:"omitempty,min=2,max=255"`
	Role     *models.UserRole `json:"role" binding:"omitempty,oneof=ADMIN PRESIDENT MEMBER"`
	CSERole  *string          `json:"cse_role" binding:"omitempty,max=255"`
	IsActive *bool            `json:"is_active"`
}

// ToInput converts the request to the service input
func (r CreateUserRequest) ToInput() services.CreateUserInput {
	return services.CreateUserInput{
		Email:    r.Email,
		Password: r.Password,
		Name:     r.Name,
		Role:     r.Role,
		CSERole:  r.CSERole,
	}
}

// ToInput converts the request to the service input
func (r UpdateUserRequest) ToInput() services.UpdateUserInput {
	return services.UpdateUserInput{
		Email:    r.Email,
		Password: r.Password,
		Name:     r.Name,
		Role:     r.Role,
		CSERole:  r.CSERole,
		IsActive: r.IsActive,
	}
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		CSERole:   user.CSERole,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = ToUserDTO(u)
	}
	return out
}
