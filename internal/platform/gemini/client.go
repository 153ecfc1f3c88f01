package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
)

// Model is the subset of the upstream model listing the assistant needs.
type Model struct {
	Name             string
	SupportedActions []string
}

type GenerationConfig struct {
	MaxOutputTokens int32
	Temperature     float32
}

// Client is the generative text API used by the assistant.
type Client interface {
	// ListModels returns every model visible to the configured credential.
	ListModels(ctx context.Context) ([]Model, error)
	// GenerateText runs a single non-streaming generation against model.
	GenerateText(ctx context.Context, model, prompt string, cfg GenerationConfig) (string, error)
}

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type client struct {
	genai *genai.Client
	log   *logger.Logger
}

func NewClient(ctx context.Context, cfg Config, log *logger.Logger) (Client, error) {
	cc, err := clientConfig(cfg)
	if err != nil {
		return nil, err
	}
	gc, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &client{genai: gc, log: log.With("client", "GeminiClient")}, nil
}

// clientConfig leaves the SDK's default HTTP client in place unless a
// Timeout is configured.
func clientConfig(cfg Config) (*genai.ClientConfig, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing generative AI API key")
	}
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Timeout > 0 {
		cc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: strings.TrimRight(base, "/") + "/"}
	}
	return cc, nil
}

func (c *client) ListModels(ctx context.Context) ([]Model, error) {
	page, err := c.genai.Models.List(ctx, &genai.ListModelsConfig{})
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	var out []Model
	for {
		for _, m := range page.Items {
			if m == nil {
				continue
			}
			out = append(out, Model{Name: m.Name, SupportedActions: m.SupportedActions})
		}
		if page.NextPageToken == "" {
			break
		}
		page, err = page.Next(ctx)
		if errors.Is(err, genai.ErrPageDone) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list models: %w", err)
		}
	}
	c.log.Debug("Listed models", "count", len(out))
	return out, nil
}

func (c *client) GenerateText(ctx context.Context, model, prompt string, cfg GenerationConfig) (string, error) {
	gcfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(cfg.Temperature),
		MaxOutputTokens: cfg.MaxOutputTokens,
	}
	resp, err := c.genai.Models.GenerateContent(ctx, model, genai.Text(prompt), gcfg)
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

// responseText joins the non-thought text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}
