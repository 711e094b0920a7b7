package dto

type Message struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content" validate:"required"`
}

type ChatInput struct {
	Messages    []Message `json:"messages" validate:"required,min=1,dive"`
	Model       string    `json:"model"`
	Temperature *float32  `json:"temperature"`
}

type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

type ChatOutput struct {
	Reply string `json:"reply"`
	Model string `json:"model"`
	Usage *Usage `json:"usage"`
}
