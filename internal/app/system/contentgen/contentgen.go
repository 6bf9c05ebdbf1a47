// Package contentgen generates exam questions and module summaries with the
// Gemini generateContent API.
package contentgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/studydesk/internal/domain/models"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Service is the content generation collaborator used by the exam and
// module views.
type Service interface {
	GenerateExam(ctx context.Context) ([]models.ExamQuestion, error)
	GenerateModuleContent(ctx context.Context, title string) (string, error)
}

var ErrNotConfigured = errors.New("content generation is not configured")

const (
	DefaultBaseURL   = "https://generativelanguage.googleapis.com"
	DefaultModel     = "gemini-2.5-flash"
	DefaultQuestions = 10

	scopeGenerativeLanguage = "https://www.googleapis.com/auth/generative-language"
)

// Config selects the endpoint and credentials. An API key wins over
// application default credentials.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	UseADC    bool
	Questions int
}

// Client calls the generateContent endpoint.
type Client struct {
	http      *resty.Client
	model     string
	questions int
	tokens    oauth2.TokenSource
	log       *zap.Logger
}

// New returns a Service for cfg. Without an API key or ADC it returns a
// Service whose calls fail with ErrNotConfigured.
func New(ctx context.Context, cfg Config, log *zap.Logger) (Service, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.APIKey == "" && !cfg.UseADC {
		log.Warn("content generation disabled: no API key and ADC not enabled")
		return Unconfigured{}, nil
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Questions <= 0 {
		cfg.Questions = DefaultQuestions
	}

	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil || r == nil {
				return false
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})

	c := &Client{http: rc, model: cfg.Model, questions: cfg.Questions, log: log}
	if cfg.APIKey != "" {
		rc.SetHeader("x-goog-api-key", cfg.APIKey)
	} else {
		ts, err := google.DefaultTokenSource(ctx, scopeGenerativeLanguage)
		if err != nil {
			return nil, fmt.Errorf("content generation credentials: %w", err)
		}
		c.tokens = ts
	}
	return c, nil
}

// Unconfigured is the Service used when no credentials are set.
type Unconfigured struct{}

func (Unconfigured) GenerateExam(context.Context) ([]models.ExamQuestion, error) {
	return nil, ErrNotConfigured
}

func (Unconfigured) GenerateModuleContent(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}

// GenerateExam asks for a general knowledge multiple-choice exam.
func (c *Client) GenerateExam(ctx context.Context) ([]models.ExamQuestion, error) {
	prompt := fmt.Sprintf(
		"Create a general knowledge exam with %d multiple-choice questions in English. "+
			"Each question has exactly four options. correctAnswer must be copied exactly from one of the options.",
		c.questions)

	text, err := c.generate(ctx, "exam", prompt, &generationConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   examSchema,
	})
	if err != nil {
		return nil, err
	}
	return parseExam(text)
}

// GenerateModuleContent asks for a plain-text study summary of a module.
func (c *Client) GenerateModuleContent(ctx context.Context, title string) (string, error) {
	prompt := fmt.Sprintf(
		"Write a study summary in English for the module %q. Use plain text only, no markdown. "+
			"Put each section heading on its own line ending with a colon. "+
			"Write paragraphs as full sentences. Start each list item with the character •.",
		title)

	text, err := c.generate(ctx, "module content", prompt, nil)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("the content service returned an empty summary")
	}
	return text, nil
}

func (c *Client) generate(ctx context.Context, what, prompt string, gc *generationConfig) (string, error) {
	body := generateRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: gc,
	}

	var out generateResponse
	var apiErr errorResponse
	req := c.http.R().
		SetContext(ctx).
		SetPathParam("model", c.model).
		SetBody(body).
		SetResult(&out).
		SetError(&apiErr)

	if c.tokens != nil {
		tok, err := c.tokens.Token()
		if err != nil {
			return "", fmt.Errorf("content service token: %w", err)
		}
		req.SetAuthToken(tok.AccessToken)
	}

	start := time.Now()
	resp, err := req.Post("/v1beta/models/{model}:generateContent")
	if err != nil {
		c.log.Warn("content request failed", zap.String("what", what), zap.Error(err))
		return "", fmt.Errorf("content service unreachable: %w", err)
	}
	c.log.Debug("content request",
		zap.String("what", what),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("took", time.Since(start)))

	if resp.IsError() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = resp.Status()
		}
		return "", fmt.Errorf("content service error (%d): %s", resp.StatusCode(), msg)
	}
	return out.text()
}

func parseExam(text string) ([]models.ExamQuestion, error) {
	var qs []models.ExamQuestion
	if err := json.Unmarshal([]byte(text), &qs); err != nil {
		return nil, fmt.Errorf("the content service returned a malformed exam: %w", err)
	}
	if len(qs) == 0 {
		return nil, errors.New("the content service returned no questions")
	}
	for i, q := range qs {
		if strings.TrimSpace(q.Question) == "" || len(q.Options) < 2 {
			return nil, fmt.Errorf("question %d is incomplete", i+1)
		}
		if !q.HasOption(q.CorrectAnswer) {
			return nil, fmt.Errorf("question %d: correct answer is not one of its options", i+1)
		}
	}
	return qs, nil
}
