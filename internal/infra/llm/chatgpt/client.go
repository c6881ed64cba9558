package chatgpt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/yanqian/kissan-dost/pkg/metrics"
)

// defaultBaseURL points at Groq's OpenAI compatible endpoint.
const defaultBaseURL = "https://api.groq.com/openai/v1"

// Content part kinds understood by vision capable models.
const (
	PartTypeText     = "text"
	PartTypeImageURL = "image_url"
)

// ContentPart is one element of a multi-part user message.
type ContentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// Message mirrors the OpenAI chat message structure. Exactly one of Content
// and Parts is populated.
type Message struct {
	Role    string        `json:"role"`
	Content string        `json:"content,omitempty"`
	Parts   []ContentPart `json:"parts,omitempty"`
}

// ChatCompletionRequest is the payload sent to the completion provider.
type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// Choice is a single generated message.
type Choice struct {
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason,omitempty"`
}

// ChatCompletionResponse captures the response for non streaming calls.
type ChatCompletionResponse struct {
	Model   string             `json:"model"`
	Choices []Choice           `json:"choices"`
	Usage   metrics.TokenUsage `json:"usage"`
}

// Client performs chat completions against an OpenAI compatible API.
type Client struct {
	api *openai.Client
}

// NewClient constructs a completion client. The HTTP client is shared by every
// request for the lifetime of the process.
func NewClient(apiKey, baseURL string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("llm api key cannot be empty")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return &Client{api: openai.NewClientWithConfig(cfg)}, nil
}

// CreateChatCompletion triggers a sync completion call.
func (c *Client) CreateChatCompletion(ctx context.Context, req ChatCompletionRequest) (ChatCompletionResponse, error) {
	var out ChatCompletionResponse
	resp, err := c.api.CreateChatCompletion(ctx, toOpenAIRequest(req))
	if err != nil {
		return out, fmt.Errorf("request chat completion: %w", err)
	}
	out.Model = resp.Model
	out.Usage = metrics.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	out.Choices = make([]Choice, 0, len(resp.Choices))
	for _, choice := range resp.Choices {
		out.Choices = append(out.Choices, Choice{
			Message:      Message{Role: choice.Message.Role, Content: choice.Message.Content},
			FinishReason: string(choice.FinishReason),
		})
	}
	return out, nil
}

// StatusCode extracts the provider HTTP status from a completion error, or 0.
func StatusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// IsQuotaExceeded reports whether the provider rejected the call for quota reasons.
func IsQuotaExceeded(err error) bool {
	return StatusCode(err) == http.StatusTooManyRequests
}

func toOpenAIRequest(req ChatCompletionRequest) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		dst := openai.ChatCompletionMessage{Role: msg.Role}
		if len(msg.Parts) == 0 {
			dst.Content = msg.Content
			messages = append(messages, dst)
			continue
		}
		dst.MultiContent = make([]openai.ChatMessagePart, 0, len(msg.Parts))
		for _, part := range msg.Parts {
			switch part.Type {
			case PartTypeImageURL:
				dst.MultiContent = append(dst.MultiContent, openai.ChatMessagePart{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: part.ImageURL},
				})
			default:
				dst.MultiContent = append(dst.MultiContent, openai.ChatMessagePart{
					Type: openai.ChatMessagePartTypeText,
					Text: part.Text,
				})
			}
		}
		messages = append(messages, dst)
	}
	return openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		N:           1,
	}
}
