package dto

import (
	"time"

	"github.com/sia-robotics/sia-server/internal/users"
)

type CreateUserRequest struct {
	Name         string `json:"nome" binding:"required,min=3,max=255"`
	Email        string `json:"email" binding:"required,email"`
	Registration string `json:"matricula"`
	Department   string `json:"setor"`
	Position     string `json:"cargo"`
	Role         string `json:"tipo" binding:"required"`
	Password     string `json:"senha" binding:"required,min=8"`
}

// CreateCommonUserRequest carries no role: accounts created through the
// common endpoint are always plain users.
type CreateCommonUserRequest struct {
	Name         string `json:"nome" binding:"required,min=3,max=255"`
	Email        string `json:"email" binding:"required,email"`
	Registration string `json:"matricula"`
	Department   string `json:"setor"`
	Position     string `json:"cargo"`
	Password     string `json:"senha" binding:"required,min=8"`
}

type UserResponse struct {
	ID           string `json:"id"`
	Name         string `json:"nome"`
	Email        string `json:"email"`
	Registration string `json:"matricula,omitempty"`
	Department   string `json:"setor,omitempty"`
	Position     string `json:"cargo,omitempty"`
	Role         string `json:"tipo"`
	CreatedAt    string `json:"criado_em"`
}

func NewUserResponse(u *users.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Registration: u.Registration,
		Department:   u.Department,
		Position:     u.Position,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt.Format(time.RFC3339),
	}
}
