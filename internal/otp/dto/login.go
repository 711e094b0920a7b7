package dto

type LoginInput struct {
	Identifier string `json:"identifier" validate:"required,email"`
}
