// orchestrator.go - Model fallback and retry state machine

package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bosocmputer/guarantee_letter_gemini/internal/common"
	"github.com/bosocmputer/guarantee_letter_gemini/internal/processor"
	"github.com/bosocmputer/guarantee_letter_gemini/internal/ratelimit"
)

// MaxAttemptsPerModel is the fixed attempt budget granted to each candidate
// model before advancing to the next one. Budgets are never shared across
// candidates.
const MaxAttemptsPerModel = 3

// backoffSchedule holds the wait before re-attempting the same model. The
// values are a fixed table, not a formula: 3s after the first failure, 6s
// after the second. No wait follows a model's final attempt.
var backoffSchedule = map[int]time.Duration{
	1: 3 * time.Second,
	2: 6 * time.Second,
}

// Orchestrator drives extraction across an ordered, immutable candidate
// model list. Each attempt performs exactly one outbound call; a candidate
// whose budget is exhausted is never revisited.
type Orchestrator struct {
	invoker        ModelInvoker
	candidates     []string
	limiter        *ratelimit.RateLimiter
	attemptTimeout time.Duration

	// wait is replaceable in tests so backoff does not slow them down.
	wait func(ctx context.Context, d time.Duration) error
}

// OrchestratorConfig configures an Orchestrator.
type OrchestratorConfig struct {
	// Candidates are tried strictly in order; the slice is copied and never
	// mutated afterwards.
	Candidates []string
	// AttemptTimeout bounds a single outbound call; zero disables it.
	AttemptTimeout time.Duration
	// Limiter, when set, gates every outbound call.
	Limiter *ratelimit.RateLimiter
}

// NewOrchestrator creates an orchestrator over the given candidate list.
func NewOrchestrator(invoker ModelInvoker, cfg OrchestratorConfig) (*Orchestrator, error) {
	if invoker == nil {
		return nil, errors.New("orchestrator requires a model invoker")
	}
	if len(cfg.Candidates) == 0 {
		return nil, errors.New("orchestrator requires at least one candidate model")
	}

	candidates := make([]string, len(cfg.Candidates))
	copy(candidates, cfg.Candidates)

	return &Orchestrator{
		invoker:        invoker,
		candidates:     candidates,
		limiter:        cfg.Limiter,
		attemptTimeout: cfg.AttemptTimeout,
		wait:           waitWithContext,
	}, nil
}

// Extract runs the per-candidate retry state machine and returns the
// recovered field set with the model's keys backfilled to the full fixed
// key set. On success the accumulated token usage covers every attempt made,
// including failed ones. The only error callers see is the terminal
// *ExtractionFailedError (or a context error raised during a backoff wait);
// per-attempt failures are absorbed, logged, and never silently swallowed
// into an empty success.
func (o *Orchestrator) Extract(ctx context.Context, reqCtx *common.RequestContext, guaranteeType GuaranteeType, pages []processor.PageImage) (GuaranteeFields, *common.TokenUsage, error) {
	usage := &common.TokenUsage{}

	if len(pages) == 0 {
		return GuaranteeFields{}, usage, errors.New("no page images to extract from")
	}

	prompt := BuildExtractionPrompt(guaranteeType)

	var lastErr error
	totalCalls := 0

	for mi, modelName := range o.candidates {
		for attempt := 1; attempt <= MaxAttemptsPerModel; attempt++ {
			if o.limiter != nil {
				o.limiter.Wait()
			}

			totalCalls++
			text, tokens, err := o.invokeOnce(ctx, modelName, prompt, pages)
			if tokens != nil {
				usage.InputTokens += tokens.InputTokens
				usage.OutputTokens += tokens.OutputTokens
				usage.TotalTokens += tokens.TotalTokens
				usage.CostUSD += tokens.CostUSD
			}

			if err == nil {
				record, ok := RecoverFields(text)
				if ok {
					if attempt > 1 || mi > 0 {
						reqCtx.LogInfo("✅ Model %s succeeded on attempt %d (call %d overall)", modelName, attempt, totalCalls)
					}
					return FieldsFromMap(record), usage, nil
				}
				err = ErrUnparseableResponse
			}

			lastErr = err
			modelErr := CategorizeModelError(err)
			reqCtx.LogError("Model %s attempt %d/%d failed: %s", modelName, attempt, MaxAttemptsPerModel, modelErr.Error())

			if attempt < MaxAttemptsPerModel {
				delay := backoffSchedule[attempt]
				reqCtx.LogInfo("Waiting %v before retrying %s", delay, modelName)
				if waitErr := o.wait(ctx, delay); waitErr != nil {
					return GuaranteeFields{}, usage, waitErr
				}
			}
		}

		if mi < len(o.candidates)-1 {
			reqCtx.LogWarning("🔄 Model %s exhausted its %d attempts, switching to %s",
				modelName, MaxAttemptsPerModel, o.candidates[mi+1])
		}
	}

	reqCtx.LogError("All %d candidate models exhausted after %d calls", len(o.candidates), totalCalls)
	return GuaranteeFields{}, usage, &ExtractionFailedError{
		Candidates: len(o.candidates),
		TotalCalls: totalCalls,
		LastErr:    lastErr,
	}
}

// invokeOnce performs a single outbound call under the per-attempt timeout.
func (o *Orchestrator) invokeOnce(ctx context.Context, modelName, prompt string, pages []processor.PageImage) (string, *common.TokenUsage, error) {
	callCtx := ctx
	if o.attemptTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.attemptTimeout)
		defer cancel()
	}
	return o.invoker.Invoke(callCtx, modelName, prompt, pages)
}

// waitWithContext blocks for the backoff delay, respecting cancellation.
func waitWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("context canceled during retry wait: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
