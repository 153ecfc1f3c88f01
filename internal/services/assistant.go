package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/grindgrid/grindgrid-backend/internal/data/repos"
	types "github.com/grindgrid/grindgrid-backend/internal/domain"
	"github.com/grindgrid/grindgrid-backend/internal/observability"
	"github.com/grindgrid/grindgrid-backend/internal/pkg/dbctx"
	apperr "github.com/grindgrid/grindgrid-backend/internal/pkg/errors"
	"github.com/grindgrid/grindgrid-backend/internal/platform/apierr"
	"github.com/grindgrid/grindgrid-backend/internal/platform/gemini"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
)

const (
	msgPromptRequired   = "Prompt is required"
	msgUnauthorized     = "Unauthorized"
	msgKeyNotConfigured = "Google Generative AI API key is not configured"
	msgInvalidKey       = "Invalid API key. Please check your Google Generative AI API key."
	msgQuotaExceeded    = "API quota exceeded. Please try again later."
)

type AssistantConfig struct {
	FallbackModels []string
	Generation     gemini.GenerationConfig
}

type AssistantService interface {
	// Generate answers prompt with the first model that succeeds and records
	// the exchange. A failed write is logged and does not fail the call.
	Generate(dbc dbctx.Context, prompt string) (string, error)
	History(dbc dbctx.Context) ([]*types.Conversation, error)
}

type assistantService struct {
	log              *logger.Logger
	sessions         SessionResolver
	client           gemini.Client
	conversationRepo repos.ConversationRepo
	pages            *PageInvalidator
	cfg              AssistantConfig
	tracer           trace.Tracer
}

// NewAssistantService accepts a nil client when no API key is configured;
// Generate then reports a configuration error per request.
func NewAssistantService(
	log *logger.Logger,
	sessions SessionResolver,
	client gemini.Client,
	conversationRepo repos.ConversationRepo,
	pages *PageInvalidator,
	cfg AssistantConfig,
) AssistantService {
	if len(cfg.FallbackModels) == 0 {
		cfg.FallbackModels = gemini.DefaultFallbackModels
	}
	if cfg.Generation.MaxOutputTokens <= 0 {
		cfg.Generation.MaxOutputTokens = 1000
	}
	return &assistantService{
		log:              log.With("service", "AssistantService"),
		sessions:         sessions,
		client:           client,
		conversationRepo: conversationRepo,
		pages:            pages,
		cfg:              cfg,
		tracer:           observability.Tracer(),
	}
}

func (s *assistantService) Generate(dbc dbctx.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", apperr.New(apperr.ErrInvalidInput, msgPromptRequired)
	}
	ident, err := s.sessions.Identify(dbc.Ctx)
	if err != nil {
		return "", apperr.New(apperr.ErrUnauthenticated, msgUnauthorized)
	}
	if s.client == nil {
		return "", apperr.New(apperr.ErrConfiguration, msgKeyNotConfigured)
	}

	ctx, span := s.tracer.Start(dbc.Ctx, "assistant.generate")
	defer span.End()

	models := s.candidateModels(ctx)
	span.SetAttributes(attribute.Int("assistant.candidates", len(models)))

	var (
		text      string
		lastErr   error
		succeeded bool
	)
	for _, model := range models {
		text, lastErr = s.attempt(ctx, model, prompt)
		if lastErr == nil {
			succeeded = true
			s.log.Info("Model succeeded", "model", model, "user_id", ident.UserID)
			break
		}
		s.log.Warn("Model attempt failed", "model", model, "error", lastErr)
	}
	if !succeeded {
		msg := "no models available"
		if lastErr != nil {
			msg = lastErr.Error()
		}
		span.SetStatus(codes.Error, "all models failed")
		return "", apperr.Newf(apperr.ErrUpstreamUnavailable, "All model attempts failed. Last error: %s", msg)
	}

	if _, err := s.conversationRepo.Create(dbctx.New(ctx), []*types.Conversation{{
		UserID:   ident.UserID,
		Question: prompt,
		Response: text,
	}}); err != nil {
		s.log.Warn("Conversation not saved", "user_id", ident.UserID, "error", err)
	} else {
		s.pages.Invalidate(ctx, ident.UserID, assistantViews...)
	}
	return text, nil
}

func (s *assistantService) attempt(ctx context.Context, model, prompt string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "assistant.model_attempt", trace.WithAttributes(attribute.String("gemini.model", model)))
	defer span.End()

	text, err := s.client.GenerateText(ctx, model, prompt, s.cfg.Generation)
	if err == nil && strings.TrimSpace(text) == "" {
		err = fmt.Errorf("model %s returned an empty response", model)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return text, nil
}

// candidateModels lists generative models, falling back to the static list
// when discovery fails or finds nothing usable.
func (s *assistantService) candidateModels(ctx context.Context) []string {
	listed, err := s.client.ListModels(ctx)
	if err != nil {
		s.log.Warn("Model discovery failed; using fallback list", "error", err)
		return append([]string(nil), s.cfg.FallbackModels...)
	}
	models := gemini.GenerativeModels(listed)
	if len(models) == 0 {
		s.log.Warn("Model discovery found no generative models; using fallback list")
		return append([]string(nil), s.cfg.FallbackModels...)
	}
	return models
}

func (s *assistantService) History(dbc dbctx.Context) ([]*types.Conversation, error) {
	ident, err := s.sessions.Identify(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	return s.conversationRepo.ListByUser(dbc, ident.UserID)
}

// ClassifyAssistantError maps a Generate failure to the HTTP error returned to
// the caller.
func ClassifyAssistantError(err error) *apierr.Error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, apperr.ErrInvalidInput):
		return apierr.New(http.StatusBadRequest, "invalid_input", errors.New(msgPromptRequired))
	case errors.Is(err, apperr.ErrUnauthenticated):
		return apierr.New(http.StatusUnauthorized, "unauthorized", errors.New(msgUnauthorized))
	case errors.Is(err, apperr.ErrConfiguration):
		return apierr.New(http.StatusInternalServerError, "configuration_error", errors.New(msgKeyNotConfigured))
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "API key"):
		return apierr.New(http.StatusUnauthorized, "invalid_api_key", errors.New(msgInvalidKey))
	case strings.Contains(msg, "quota"):
		return apierr.New(http.StatusTooManyRequests, "quota_exceeded", errors.New(msgQuotaExceeded))
	default:
		return apierr.Newf(http.StatusInternalServerError, "ai_service_error", "AI service error: %s", msg)
	}
}
