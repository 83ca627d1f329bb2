package describe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jewelryoclock/storefront-backend/pkg/config"
	pkgerrors "github.com/jewelryoclock/storefront-backend/pkg/errors"
	"github.com/jewelryoclock/storefront-backend/pkg/logger"
)

const placeholderDescription = "AI description service is not configured. Write the description by hand or set an API key."

const degradedDescription = "Error generating description. Please try again."

const promptTemplate = `Write a luxurious, captivating, and short product description (max 2 sentences) for a piece of jewelry.
Product Name: %s
Category: %s
Keywords/Features: %s
Tone: Elegant, Premium, Sophisticated.`

// Service drafts product descriptions for the admin form.
type Service interface {
	Suggest(ctx context.Context, input SuggestInput) (*SuggestionDTO, error)
}

// SuggestInput describes the product the admin is listing.
type SuggestInput struct {
	Name     string
	Category string
	Keywords string
}

// SuggestionDTO carries the drafted copy. Placeholder marks the
// unconfigured fallback so the UI can flag it.
type SuggestionDTO struct {
	Description string `json:"description"`
	Placeholder bool   `json:"placeholder"`
}

// service implements the description helper against an OpenAI-compatible
// chat completions endpoint.
type service struct {
	cfg    config.OpenAIConfig
	client *http.Client
	logg   *logger.Logger
}

// NewService constructs a describe service instance.
func NewService(cfg config.OpenAIConfig, logg *logger.Logger) (Service, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logg:   logg,
	}, nil
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Suggest drafts a short description. Without an API key it returns the
// placeholder rather than failing, matching the admin form's
// degrade-gracefully behavior.
func (s *service) Suggest(ctx context.Context, input SuggestInput) (*SuggestionDTO, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	if s.cfg.APIKey == "" {
		s.logg.Warn(ctx, "description requested without an API key configured")
		return &SuggestionDTO{Description: placeholderDescription, Placeholder: true}, nil
	}

	prompt := fmt.Sprintf(promptTemplate, input.Name, input.Category, input.Keywords)
	payload, err := json.Marshal(chatRequest{
		Model:    s.cfg.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode completion request")
	}

	url := strings.TrimSuffix(s.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build completion request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return s.degrade(ctx, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "completion request failed")), nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return s.degrade(ctx, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read completion response")), nil
	}
	if resp.StatusCode != http.StatusOK {
		return s.degrade(ctx, pkgerrors.Newf(pkgerrors.CodeDependency, "completion endpoint returned %d", resp.StatusCode)), nil
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return s.degrade(ctx, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode completion response")), nil
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return s.degrade(ctx, pkgerrors.New(pkgerrors.CodeDependency, "completion response was empty")), nil
	}

	return &SuggestionDTO{Description: strings.TrimSpace(parsed.Choices[0].Message.Content)}, nil
}

// degrade absorbs upstream failures into a fixed suggestion so the admin
// form never hard-fails on the description helper.
func (s *service) degrade(ctx context.Context, err error) *SuggestionDTO {
	s.logg.Warn(ctx, "description generation degraded: "+err.Error())
	return &SuggestionDTO{Description: degradedDescription, Placeholder: true}
}
