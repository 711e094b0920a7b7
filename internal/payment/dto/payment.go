package dto

type PaymentMethodInput struct {
	CardNumber string `json:"cardNumber" validate:"required,min=4"`
	CardName   string `json:"cardName" validate:"required"`
	CardExpiry string `json:"cardExpiry" validate:"required"`
	Type       string `json:"type"`
}

type PaymentIntentInput struct {
	Amount          float64           `json:"amount" validate:"required,gt=0"`
	Currency        string            `json:"currency" validate:"omitempty,len=3"`
	Description     string            `json:"description"`
	PaymentMethodID string            `json:"paymentMethodId"`
	Metadata        map[string]string `json:"metadata"`
	Confirm         bool              `json:"confirm"`
}

type PaymentIntentOutput struct {
	PaymentIntentID string `json:"paymentIntentId"`
	ClientSecret    string `json:"clientSecret"`
	Status          string `json:"status"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}
