package domain

import "time"

type User struct {
	ID                  string
	Email               string
	FirstName           string
	LastName            string
	PasswordHash        string
	Role                string
	Status              string
	IsActive            bool
	FirstLoginCompleted bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
