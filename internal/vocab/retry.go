package vocab

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// DefaultMaxAttempts bounds the generate/parse loop per word
const DefaultMaxAttempts = 25

// ErrAttemptsExhausted is returned when no complete record was produced
// within the configured number of attempts
var ErrAttemptsExhausted = errors.New("no complete record after retries")

// Generator produces raw model output for a word and a prompt template
type Generator interface {
	Generate(ctx context.Context, word, promptTemplate string) (string, error)
}

// GeneratorFunc adapts a plain function to the Generator interface
type GeneratorFunc func(ctx context.Context, word, promptTemplate string) (string, error)

// Generate calls f
func (f GeneratorFunc) Generate(ctx context.Context, word, promptTemplate string) (string, error) {
	return f(ctx, word, promptTemplate)
}

// RetryPolicy configures the retry loop. MaxAttempts <= 0 retries forever.
type RetryPolicy struct {
	MaxAttempts int
}

// DefaultRetryPolicy returns a high but finite attempt cap
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: DefaultMaxAttempts}
}

// Controller repeats generation until the parsed record is complete
type Controller struct {
	Generator Generator
	Parser    Parser
	Policy    RetryPolicy
	Logger    *slog.Logger
}

// NewController creates a controller with the line parser and default policy
func NewController(gen Generator, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		Generator: gen,
		Parser:    LineParser{},
		Policy:    DefaultRetryPolicy(),
		Logger:    logger,
	}
}

// Obtain returns a complete record for word. Generation errors and
// incomplete output both count as a failed attempt. The returned record is
// complete whenever the error is nil.
func (c *Controller) Obtain(ctx context.Context, word, promptTemplate string) (Record, error) {
	parser := c.Parser
	if parser == nil {
		parser = LineParser{}
	}
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return Record{}, fmt.Errorf("generation for %q cancelled: %w", word, err)
		}

		raw, err := c.Generator.Generate(ctx, word, promptTemplate)
		if err != nil {
			logger.Warn("generation failed, retrying",
				"word", word, "attempt", attempt, "error", err)
		} else {
			rec := parser.Parse(raw)
			if rec.Complete() {
				return rec, nil
			}
			logger.Warn("invalid output format, retrying",
				"word", word, "attempt", attempt, "missing", rec.Missing())
		}

		if c.Policy.MaxAttempts > 0 && attempt >= c.Policy.MaxAttempts {
			return Record{}, fmt.Errorf("word %q after %d attempts: %w", word, attempt, ErrAttemptsExhausted)
		}
	}
}
