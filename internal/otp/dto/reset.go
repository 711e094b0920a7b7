package dto

type PasswordResetRequestInput struct {
	Identifier string `json:"identifier" validate:"required,email"`
}

type PasswordResetVerifyInput struct {
	UserID string `json:"userId" validate:"required"`
	OTP    string `json:"otp" validate:"required,len=6,numeric"`
}

type PasswordResetCompleteInput struct {
	ResetToken  string `json:"resetToken" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
}
