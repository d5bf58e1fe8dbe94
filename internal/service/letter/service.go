package letter

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/kapu/repfinder-go/internal/constants"
	"github.com/kapu/repfinder-go/internal/domain"
	"github.com/kapu/repfinder-go/internal/metrics"
	"github.com/kapu/repfinder-go/internal/prompt"
	"github.com/kapu/repfinder-go/internal/util"
	"github.com/kapu/repfinder-go/pkg/errors"
	"go.uber.org/zap"
)

// UnavailableMessage is what callers see for any generation failure.
const UnavailableMessage = "The AI service is currently unavailable. Please try again shortly."

var (
	rateLimitPattern = regexp.MustCompile(`\b429\b|(?i)rate limit|quota`)
	serverPattern    = regexp.MustCompile(`\b5\d{2}\b|(?i)timeout|deadline exceeded`)
)

// Service drafts advocacy letters with a primary provider and an optional
// fallback, guarded by a circuit breaker shared by both.
type Service struct {
	primary  Provider
	fallback Provider
	breaker  *util.CircuitBreaker
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewService accepts a nil fallback.
func NewService(primary, fallback Provider, m *metrics.Metrics, logger *zap.Logger) *Service {
	s := &Service{
		primary:  primary,
		fallback: fallback,
		metrics:  m,
		logger:   logger,
	}
	if isNilProvider(fallback) {
		s.fallback = nil
	}
	s.breaker = util.NewCircuitBreaker(
		"letter-ai",
		constants.CircuitBreakerConfig.FailureThreshold,
		constants.CircuitBreakerConfig.ResetTimeout,
		constants.CircuitBreakerConfig.HealthCheckInterval,
		s.healthy,
		logger,
	)
	return s
}

// healthy pings the primary provider while the circuit is open.
func (s *Service) healthy() bool {
	if s.primary == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), constants.CircuitBreakerConfig.HealthCheckTimeout)
	defer cancel()

	if err := s.primary.Ping(ctx); err != nil {
		s.logger.Debug("Letter provider health check failed",
			zap.String("provider", s.primary.Name()),
			zap.Error(err))
		return false
	}
	return true
}

func (s *Service) Draft(ctx context.Context, req domain.LetterRequest) (*domain.Letter, error) {
	if strings.TrimSpace(req.RepName) == "" {
		return nil, errors.NewValidationError("Missing repName", errors.ReasonMissingField, "repName", nil)
	}
	if strings.TrimSpace(req.Topic) == "" {
		return nil, errors.NewValidationError("Missing topic", errors.ReasonMissingField, "topic", nil)
	}

	text, err := prompt.BuildLetterPrompt(req)
	if err != nil {
		return nil, errors.NewServiceError("Could not build letter prompt", "letter", "prompt", err)
	}

	if s.primary == nil || !s.breaker.CanExecute() {
		status := s.breaker.Status()
		s.logger.Warn("Letter drafting unavailable",
			zap.Bool("configured", s.primary != nil),
			zap.String("state", status.State.String()))
		s.metrics.ObserveLetter("none", "rejected")
		return nil, s.unavailable(nil)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.AIConfig.GenerateTimeout)
	defer cancel()

	letter, primaryErr := s.generate(ctx, s.primary, text)
	if primaryErr == nil {
		s.breaker.RecordSuccess()
		return letter, nil
	}
	s.logger.Warn("Primary letter provider failed",
		zap.String("provider", s.primary.Name()),
		zap.Error(primaryErr))

	if s.fallback == nil {
		s.recordFailure(primaryErr, nil)
		return nil, s.unavailable(primaryErr)
	}

	letter, fallbackErr := s.generate(ctx, s.fallback, text)
	if fallbackErr == nil {
		s.breaker.RecordSuccess()
		return letter, nil
	}
	s.logger.Error("Fallback letter provider failed",
		zap.String("provider", s.fallback.Name()),
		zap.Error(fallbackErr))

	s.recordFailure(primaryErr, fallbackErr)
	return nil, s.unavailable(fallbackErr)
}

func (s *Service) generate(ctx context.Context, p Provider, text string) (*domain.Letter, error) {
	raw, err := p.GenerateJSON(ctx, text)
	if err != nil {
		s.metrics.ObserveLetter(p.Name(), "error")
		return nil, err
	}

	letter, err := DecodeLetter(raw)
	if err != nil {
		s.metrics.ObserveLetter(p.Name(), "invalid")
		s.logger.Warn("Provider returned an unusable letter",
			zap.String("provider", p.Name()),
			zap.String("preview", preview(raw, 200)),
			zap.Error(err))
		return nil, err
	}
	s.metrics.ObserveLetter(p.Name(), "ok")
	return letter, nil
}

// recordFailure only counts service-side failures against the breaker; bad
// JSON from a healthy provider does not open the circuit.
func (s *Service) recordFailure(errs ...error) {
	timeout := constants.CircuitBreakerConfig.ResetTimeout
	service := false
	for _, err := range errs {
		if err == nil {
			continue
		}
		msg := err.Error()
		if rateLimitPattern.MatchString(msg) {
			timeout = constants.CircuitBreakerConfig.RateLimitTimeout
			service = true
		} else if serverPattern.MatchString(msg) {
			service = true
		}
	}
	if service {
		s.breaker.RecordFailure(timeout)
	}
}

func (s *Service) unavailable(cause error) error {
	return errors.NewUpstreamError(UnavailableMessage, "letter-ai", 0, cause)
}

// DecodeLetter strips Markdown code fences and decodes {subject, body}.
func DecodeLetter(raw string) (*domain.Letter, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var letter domain.Letter
	if err := json.Unmarshal([]byte(cleaned), &letter); err != nil {
		return nil, fmt.Errorf("invalid letter JSON: %w", err)
	}
	if strings.TrimSpace(letter.Subject) == "" || strings.TrimSpace(letter.Body) == "" {
		return nil, fmt.Errorf("letter is missing subject or body")
	}
	return &letter, nil
}

// preview keeps at most n bytes of s without splitting a rune.
func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isNilProvider(p Provider) bool {
	if p == nil {
		return true
	}
	if o, ok := p.(*OpenAIProvider); ok && o == nil {
		return true
	}
	return false
}
