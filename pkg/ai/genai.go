package ai

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"google.golang.org/genai"

	"github.com/bskcorona-github/studyflow/pkg/domain/ai"
)

// GenAIProvider talks to Gemini through the official SDK. The client is
// created on first use so a missing key surfaces as a call error.
type GenAIProvider struct {
	Model  string
	APIKey string

	baseURL    string
	httpClient *http.Client

	mu     sync.Mutex
	client *genai.Client
}

func NewGenAIProvider(model, apiKey string) *GenAIProvider {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GenAIProvider{Model: model, APIKey: apiKey}
}

// NewGenAIProviderWithClient points the SDK at another endpoint (for testing).
func NewGenAIProviderWithClient(model, apiKey, baseURL string, client *http.Client) *GenAIProvider {
	p := NewGenAIProvider(model, apiKey)
	p.baseURL = baseURL
	p.httpClient = client
	return p
}

func (p *GenAIProvider) ID() string {
	return "genai:" + p.Model
}

func (p *GenAIProvider) sdk(ctx context.Context) (*genai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		return p.client, nil
	}
	if p.APIKey == "" {
		return nil, fmt.Errorf("gemini API key not provided (set GEMINI_API_KEY)")
	}
	cfg := &genai.ClientConfig{
		APIKey:     p.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: p.httpClient,
	}
	if p.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: p.baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	p.client = client
	return client, nil
}

func (p *GenAIProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	client, err := p.sdk(ctx)
	if err != nil {
		return nil, err
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: req.ResponseMIMEType,
		MaxOutputTokens:  int32(req.MaxTokens),
	}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if req.Temperature > 0 {
		temp := req.Temperature
		cfg.Temperature = &temp
	}

	resp, err := client.Models.GenerateContent(ctx, p.Model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return nil, fmt.Errorf("genai generate: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("genai returned no candidates")
	}

	out := &ai.CompletionResponse{Text: resp.Text(), Model: p.Model}
	if resp.UsageMetadata != nil {
		out.Usage = ai.TokenUsage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return out, nil
}
