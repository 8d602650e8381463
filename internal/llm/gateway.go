package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/hiring-panel/internal/schemas"
)

// DefaultProviderRetries is how many times a failed provider call is retried
const DefaultProviderRetries = 3

// DefaultBackoff is the base delay between provider retries
const DefaultBackoff = 300 * time.Millisecond

// Request describes one structured generation call
type Request struct {
	// Schema is the embedded JSON Schema name the response must satisfy
	Schema string
	// Prompt is the base prompt; corrective feedback is appended on retries
	Prompt string
	// RetryBudget is the number of corrective retries after the first attempt
	RetryBudget int
	Tier        ModelTier
}

// forgetter is implemented by clients that cache responses
type forgetter interface {
	Forget(prompt string, tier ModelTier)
}

// Gateway turns raw provider output into validated typed values
type Gateway struct {
	client          Client
	providerRetries int
	backoff         time.Duration
	structs         *validator.Validate
	logger          *slog.Logger
}

// GatewayOption configures a Gateway
type GatewayOption func(*Gateway)

// WithProviderRetries sets the provider retry count.
func WithProviderRetries(n int) GatewayOption {
	return func(g *Gateway) {
		if n >= 0 {
			g.providerRetries = n
		}
	}
}

// WithBackoff sets the base provider retry delay.
func WithBackoff(d time.Duration) GatewayOption {
	return func(g *Gateway) { g.backoff = d }
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(l *slog.Logger) GatewayOption {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGateway wraps a provider client.
func NewGateway(client Client, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		client:          client,
		providerRetries: DefaultProviderRetries,
		backoff:         DefaultBackoff,
		structs:         validator.New(),
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate asks the provider for an instance of T, validating the response against the
// request's JSON Schema, T's struct tags and the optional semantic check. Invalid output
// is retried with the validation error fed back into the prompt until the budget runs out.
func Generate[T any](ctx context.Context, g *Gateway, req Request, check func(*T) error) (*T, error) {
	prompt := req.Prompt
	attempts := req.RetryBudget + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		raw, err := g.call(ctx, prompt, req.Tier)
		if err != nil {
			if gerr, ok := err.(*GatewayError); ok {
				gerr.Target = req.Schema
			}
			return nil, err
		}

		out, err := decode[T](g, raw, req.Schema, check)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if f, ok := g.client.(forgetter); ok {
			f.Forget(prompt, req.Tier)
		}
		g.logger.WarnContext(ctx, "structured output rejected",
			"schema", req.Schema, "attempt", attempt, "of", attempts, "error", firstLine(err.Error()))
		prompt = withFeedback(req.Prompt, err)
	}

	return nil, &GatewayError{
		Kind:     KindSchemaViolation,
		Target:   req.Schema,
		Attempts: attempts,
		Cause:    lastErr,
	}
}

// call invokes the provider, retrying transport failures with exponential backoff.
func (g *Gateway) call(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= g.providerRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", &GatewayError{Kind: KindTimeout, Attempts: attempt, Cause: err}
		}
		if attempt > 0 {
			delay := g.backoff * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return "", &GatewayError{Kind: KindTimeout, Attempts: attempt, Cause: ctx.Err()}
			case <-time.After(delay):
			}
		}

		raw, err := g.client.GenerateJSON(ctx, prompt, tier)
		if err == nil {
			return raw, nil
		}
		if ctx.Err() != nil || isContextErr(err) {
			return "", &GatewayError{Kind: KindTimeout, Attempts: attempt + 1, Cause: err}
		}
		lastErr = err
		g.logger.WarnContext(ctx, "provider call failed", "attempt", attempt+1, "error", err)
	}
	return "", &GatewayError{Kind: KindProviderUnavailable, Attempts: g.providerRetries + 1, Cause: lastErr}
}

func decode[T any](g *Gateway, raw, schema string, check func(*T) error) (*T, error) {
	content := CleanJSONBlock(raw)
	if content == "" {
		return nil, fmt.Errorf("empty response")
	}

	if schema != "" {
		if err := schemas.ValidateNamed(schema, content); err != nil {
			return nil, err
		}
	}

	var out T
	dec := json.NewDecoder(bytes.NewReader([]byte(content)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("response does not match expected structure: %w", err)
	}

	if err := g.structs.Struct(&out); err != nil {
		return nil, fmt.Errorf("field constraints violated: %w", err)
	}

	if check != nil {
		if err := check(&out); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

func withFeedback(prompt string, err error) string {
	var sb strings.Builder
	sb.WriteString(prompt)
	sb.WriteString("\n\nYOUR PREVIOUS RESPONSE WAS REJECTED:\n")
	sb.WriteString(strings.TrimSpace(err.Error()))
	sb.WriteString("\n\nFix every problem listed above and return ONLY the corrected JSON object.")
	return sb.String()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "\n"); idx >= 0 {
		return s[:idx]
	}
	return s
}
