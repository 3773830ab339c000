// internal/services/generation_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/Corphon/ScriptBreakdown/internal/errors"
	"github.com/Corphon/ScriptBreakdown/internal/llm"
	"github.com/Corphon/ScriptBreakdown/internal/models"
	"github.com/Corphon/ScriptBreakdown/internal/prompt"
	"github.com/Corphon/ScriptBreakdown/internal/utils"
)

// generateFailure prefixes every error returned by Generate
const generateFailure = "Failed to generate scene prompts"

// Generator turns a script into a breakdown with one remote call
type Generator interface {
	Generate(ctx context.Context, script string) (*models.ScriptBreakdown, error)
}

// GenerationOptions configures a GenerationService
type GenerationOptions struct {
	ProviderName string
	Model        string
	Timeout      time.Duration
	Logger       *zap.Logger
	Metrics      *utils.Metrics
}

// ProviderStatus describes the configured backend
type ProviderStatus struct {
	Provider        string   `json:"provider"`
	ProviderName    string   `json:"provider_name"`
	Model           string   `json:"model"`
	Ready           bool     `json:"ready"`
	SupportedModels []string `json:"supported_models"`
	TimeoutSeconds  float64  `json:"timeout_seconds"`
}

// GenerationService sends scripts to the configured provider and returns
// validated breakdowns. It keeps no state between calls.
type GenerationService struct {
	provider     llm.Provider
	providerName string
	model        string
	timeout      time.Duration
	logger       *zap.Logger
	metrics      *utils.Metrics
}

// NewGenerationService wraps an initialized provider
func NewGenerationService(provider llm.Provider, opts GenerationOptions) *GenerationService {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	model := opts.Model
	if model == "" && provider != nil {
		model = provider.DefaultModel()
	}

	return &GenerationService{
		provider:     provider,
		providerName: opts.ProviderName,
		model:        model,
		timeout:      opts.Timeout,
		logger:       logger.Named("generation"),
		metrics:      opts.Metrics,
	}
}

// Status reports which provider and model are in use
func (s *GenerationService) Status() ProviderStatus {
	status := ProviderStatus{
		Provider:       s.providerName,
		Model:          s.model,
		Ready:          s.provider != nil,
		TimeoutSeconds: s.timeout.Seconds(),
	}
	if s.provider != nil {
		status.ProviderName = s.provider.GetName()
		status.SupportedModels = s.provider.GetSupportedModels()
	}
	return status
}

// Generate performs one structured-output call for script. The script is
// sent verbatim; rejecting blank input is the caller's job. Nothing is
// retried or cached.
func (s *GenerationService) Generate(ctx context.Context, script string) (*models.ScriptBreakdown, error) {
	if s.provider == nil {
		return nil, apperrors.NewConfigError("generation service has no provider", nil)
	}

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req := llm.CompletionRequest{
		Prompt:             prompt.Build(script),
		Model:              s.model,
		Temperature:        prompt.Temperature,
		ResponseMIMEType:   prompt.ResponseMIMEType,
		SchemaName:         prompt.SchemaName,
		ResponseSchema:     prompt.GeminiSchema(),
		ResponseJSONSchema: prompt.JSONSchema(),
	}

	logger := s.logger.With(
		zap.String("provider", s.providerName),
		zap.String("model", s.model),
		zap.Int("script_chars", len(script)),
	)
	logger.Debug("sending generation request")

	start := time.Now()
	s.metrics.GenerationStarted()
	breakdown, resp, err := s.complete(ctx, callCtx, req)
	elapsed := time.Since(start)

	outcome := "success"
	if err != nil {
		outcome = string(apperrors.TypeOf(err))
	}
	s.metrics.RecordGeneration(s.providerName, outcome, elapsed)
	if resp != nil {
		s.metrics.AddTokens(s.providerName, resp.PromptTokens, resp.OutputTokens)
	}

	if err != nil {
		fields := []zap.Field{
			zap.String("kind", outcome),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		}
		if resp != nil {
			fields = append(fields, zap.String("finish_reason", resp.FinishReason), zap.Int("response_chars", len(resp.Text)))
		}
		if apperrors.IsCanceledError(err) {
			logger.Info("generation canceled", fields...)
		} else {
			logger.Error("generation failed", fields...)
		}
		return nil, err
	}

	if irregular := breakdown.IrregularSceneNumbers(); len(irregular) > 0 {
		logger.Warn("scene numbers are not a 1..n sequence", zap.Ints("scene_numbers", irregular))
	}
	logger.Info("breakdown generated",
		zap.Int("scenes", breakdown.SceneCount()),
		zap.Int("dialogue_lines", breakdown.DialogueCount()),
		zap.Int("tokens", resp.TokensUsed),
		zap.Duration("elapsed", elapsed),
	)
	return breakdown, nil
}

// complete runs the provider call and decodes its text. parent is the
// caller's context; callCtx carries the timeout on top of it.
func (s *GenerationService) complete(parent, callCtx context.Context, req llm.CompletionRequest) (*models.ScriptBreakdown, *llm.CompletionResponse, error) {
	resp, err := s.provider.CompleteText(callCtx, req)
	if err != nil {
		return nil, nil, s.classifyTransport(parent, callCtx, err)
	}
	if resp == nil {
		return nil, nil, apperrors.NewParseError(generateFailure, errors.New("provider returned no response"))
	}

	breakdown, err := DecodeBreakdown(resp.Text)
	if err != nil {
		return nil, resp, apperrors.WrapError(err, generateFailure, apperrors.ErrorTypeParse)
	}
	return breakdown, resp, nil
}

// classifyTransport maps a provider error onto timeout, canceled or transport
func (s *GenerationService) classifyTransport(parent, callCtx context.Context, err error) error {
	switch {
	case errors.Is(parent.Err(), context.Canceled):
		return apperrors.NewCanceledError(generateFailure, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(callCtx.Err(), context.DeadlineExceeded):
		return apperrors.NewTimeoutError(
			fmt.Sprintf("%s: no response within %s", generateFailure, s.timeout), err)
	case errors.Is(err, context.Canceled):
		return apperrors.NewCanceledError(generateFailure, err)
	default:
		return apperrors.NewTransportError(generateFailure, err)
	}
}
