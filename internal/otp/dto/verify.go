package dto

type VerifyInput struct {
	UserID  string `json:"userId" validate:"required"`
	OTP     string `json:"otp" validate:"required,len=6,numeric"`
	Purpose string `json:"otpType" validate:"omitempty,oneof=register login password-reset"`
}

type VerifyOutput struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    *UserOutput `json:"user"`
}
