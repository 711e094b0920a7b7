package dto

import (
	"time"

	"github.com/tahachak1/e-biblio/internal/otp/domain"
)

// UserOutput is the serialized user returned to clients. The password hash is
// deliberately absent.
type UserOutput struct {
	ID                  string    `json:"id"`
	Email               string    `json:"email"`
	FirstName           string    `json:"firstName"`
	LastName            string    `json:"lastName"`
	Role                string    `json:"role"`
	Status              string    `json:"status"`
	IsActive            bool      `json:"isActive"`
	FirstLoginCompleted bool      `json:"firstLoginCompleted"`
	CreatedAt           time.Time `json:"createdAt"`
}

func NewUserOutput(u *domain.User) *UserOutput {
	if u == nil {
		return nil
	}
	return &UserOutput{
		ID:                  u.ID,
		Email:               u.Email,
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		Role:                u.Role,
		Status:              u.Status,
		IsActive:            u.IsActive,
		FirstLoginCompleted: u.FirstLoginCompleted,
		CreatedAt:           u.CreatedAt,
	}
}
