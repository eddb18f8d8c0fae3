package llmprovider

import (
	"context"
	"errors"

	"calendar-autobot/pkg/gemini"
	"calendar-autobot/pkg/openai"
)

// OpenAIAdapter adapts any OpenAI-compatible client (OpenAI, DeepSeek, Qwen)
type OpenAIAdapter struct {
	name   string
	client openai.IOpenAI
}

// NewOpenAIAdapter creates an adapter reporting itself as name
func NewOpenAIAdapter(name string, client openai.IOpenAI) *OpenAIAdapter {
	return &OpenAIAdapter{name: name, client: client}
}

// GenerateContent implements Provider interface
func (a *OpenAIAdapter) GenerateContent(ctx context.Context, req *Request) (*Response, error) {
	oaReq := &openai.Request{
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		JSONMode:    req.Format == FormatJSON,
		Messages:    make([]openai.Message, 0, len(req.Messages)+1),
	}
	if req.SystemInstruction != "" {
		oaReq.Messages = append(oaReq.Messages, openai.Message{Role: openai.RoleSystem, Content: req.SystemInstruction})
	}
	for _, m := range req.Messages {
		oaReq.Messages = append(oaReq.Messages, openai.Message{Role: m.Role, Content: m.Content})
	}

	resp, err := a.client.ChatCompletion(ctx, oaReq)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, &ProviderError{Provider: a.name, StatusCode: apiErr.StatusCode, Kind: KindForStatus(apiErr.StatusCode), Err: err}
		}
		return nil, classifyTransport(a.name, err)
	}

	return &Response{
		Content:      resp.Content,
		ProviderName: a.name,
		ModelName:    a.client.Model(),
		Usage: &Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}, nil
}

// Name returns provider name
func (a *OpenAIAdapter) Name() string {
	return a.name
}

// Model returns model name
func (a *OpenAIAdapter) Model() string {
	return a.client.Model()
}

// GeminiAdapter adapts pkg/gemini to llmprovider.Provider interface
type GeminiAdapter struct {
	client gemini.IGemini
}

// NewGeminiAdapter creates a new Gemini adapter
func NewGeminiAdapter(client gemini.IGemini) *GeminiAdapter {
	return &GeminiAdapter{client: client}
}

// GenerateContent implements Provider interface
func (a *GeminiAdapter) GenerateContent(ctx context.Context, req *Request) (*Response, error) {
	gReq := &gemini.Request{
		SystemInstruction: req.SystemInstruction,
		Temperature:       req.Temperature,
		MaxTokens:         req.MaxTokens,
		JSONMode:          req.Format == FormatJSON,
		Messages:          make([]gemini.Message, len(req.Messages)),
	}
	for i, m := range req.Messages {
		gReq.Messages[i] = gemini.Message{Role: m.Role, Text: m.Content}
	}

	resp, err := a.client.GenerateContent(ctx, gReq)
	if err != nil {
		var apiErr *gemini.APIError
		if errors.As(err, &apiErr) {
			return nil, &ProviderError{Provider: "gemini", StatusCode: apiErr.StatusCode, Kind: KindForStatus(apiErr.StatusCode), Err: err}
		}
		return nil, classifyTransport("gemini", err)
	}

	return &Response{
		Content:      resp.Text,
		ProviderName: "gemini",
		ModelName:    a.client.Model(),
		Usage: &Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}, nil
}

// Name returns provider name
func (a *GeminiAdapter) Name() string {
	return "gemini"
}

// Model returns model name
func (a *GeminiAdapter) Model() string {
	return a.client.Model()
}
