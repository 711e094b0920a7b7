package dto

type ResendInput struct {
	UserID  string `json:"userId" validate:"required"`
	Purpose string `json:"otpType" validate:"omitempty,oneof=register login password-reset"`
}
