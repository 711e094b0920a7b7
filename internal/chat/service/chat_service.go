package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	catalog "github.com/tahachak1/e-biblio/internal/catalog/domain"
	"github.com/tahachak1/e-biblio/internal/chat/dto"
)

var ErrNoAPIKey = errors.New("OPENAI_API_KEY manquant")

const (
	defaultTemperature = 0.4
	catalogSampleSize  = 50
)

// CompletionClient is the slice of the OpenAI SDK the service uses.
type CompletionClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ChatService proxies conversations to an OpenAI-compatible completions API,
// optionally grounding the assistant with a snapshot of the book catalog.
type ChatService struct {
	client       CompletionClient
	defaultModel string
	books        catalog.BookRepository // nil disables catalog grounding
}

func NewChatService(apiKey, defaultModel string, books catalog.BookRepository) *ChatService {
	var client CompletionClient
	if apiKey != "" {
		client = openai.NewClient(apiKey)
	}
	return &ChatService{client: client, defaultModel: defaultModel, books: books}
}

func (s *ChatService) Complete(ctx context.Context, input dto.ChatInput) (*dto.ChatOutput, error) {
	if s.client == nil {
		return nil, ErrNoAPIKey
	}

	model := input.Model
	if model == "" {
		model = s.defaultModel
	}
	temperature := float32(defaultTemperature)
	if input.Temperature != nil {
		temperature = *input.Temperature
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(input.Messages)+1)
	if prompt := s.catalogPrompt(ctx); prompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: prompt,
		})
	}
	for _, m := range input.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("empty completion response")
	}

	return &dto.ChatOutput{
		Reply: resp.Choices[0].Message.Content,
		Model: resp.Model,
		Usage: &dto.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// catalogPrompt fetches a page of the catalog and formats it as a system
// message. Grounding is best effort; a repository failure only means the
// assistant answers without it.
func (s *ChatService) catalogPrompt(ctx context.Context) string {
	if s.books == nil {
		return ""
	}
	books, _, err := s.books.List(ctx, catalog.ListFilter{Page: 1, Limit: catalogSampleSize})
	if err != nil || len(books) == 0 {
		return ""
	}
	return BuildCatalogContext(books)
}

// BuildCatalogContext renders the given books as the assistant's system
// prompt.
func BuildCatalogContext(books []catalog.Book) string {
	var b strings.Builder
	b.WriteString("Tu es l'assistant e-Biblio. Réponds en te basant sur le catalogue suivant :\n")
	for _, book := range books {
		fmt.Fprintf(&b, "- %s, %s (%s, %.2f €)\n", book.Title, book.Author, book.Type, book.Price)
	}
	return b.String()
}
