package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/borderbuddy/travel-platform/pkg/logger"
	"github.com/borderbuddy/travel-platform/pkg/metrics"
)

const maxBackoff = 4 * time.Second

// Resilient wraps a Provider with per-attempt timeouts, retry with
// exponential backoff, and a streaming-to-non-streaming fallback.
//
// A nil provider puts the wrapper in absent mode: every call reports
// no text without touching the network, so callers degrade to canned
// responses instead of failing. Failures never surface as errors from
// Ask; AskStream returns an error only for a failure after deltas have
// started flowing, which callers surface as a stream error.
type Resilient struct {
	provider Provider // nil when no credential is configured
	model    string
	timeout  time.Duration
	retries  int
	sleep    func(time.Duration) // injectable for tests
	log      *logger.Logger
}

// NewResilient wraps provider. provider may be nil.
func NewResilient(provider Provider, model string, timeout time.Duration, retries int, log *logger.Logger) *Resilient {
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	if retries < 0 {
		retries = 0
	}
	return &Resilient{
		provider: provider,
		model:    model,
		timeout:  timeout,
		retries:  retries,
		sleep:    time.Sleep,
		log:      log,
	}
}

// Enabled reports whether a provider is configured.
func (r *Resilient) Enabled() bool {
	return r.provider != nil
}

// ProviderName returns the wrapped provider's name, or "none".
func (r *Resilient) ProviderName() string {
	if r.provider == nil {
		return "none"
	}
	return r.provider.Name()
}

// Ask requests a whole completion. ok is false when the provider is
// absent, every attempt failed, or the provider returned no text.
func (r *Resilient) Ask(ctx context.Context, messages []ChatMessage) (string, bool) {
	if r.provider == nil {
		return "", false
	}
	start := time.Now()
	text, ok := r.ask(ctx, messages, r.retries)
	metrics.RecordLLM(r.provider.Name(), outcome(ok), time.Since(start).Seconds())
	return text, ok
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}

func (r *Resilient) ask(ctx context.Context, messages []ChatMessage, retries int) (string, bool) {
	attempt := 0
	for {
		attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
		resp, err := r.provider.Complete(attemptCtx, &Request{Model: r.model, Messages: messages})
		cancel()

		if err == nil {
			return resp.Content, resp.Content != ""
		}

		if ctx.Err() != nil || !retryable(err) {
			return "", false
		}

		attempt++
		if attempt > retries {
			return "", false
		}

		metrics.LLMRetriesTotal.WithLabelValues(r.provider.Name()).Inc()
		r.log.Warn("llm attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		r.sleep(backoffDelay(attempt))
	}
}

// AskStream requests a streamed completion, invoking onDelta for every
// non-empty content fragment in arrival order.
//
// Retry with backoff covers stream establishment only. Once a delta has
// been delivered, a subsequent failure ends the turn and is returned as
// err with the partial text. If the stream cannot be established after
// the retry budget, one non-streaming attempt is made and its whole
// result, if any, is delivered as a single fragment. The final return
// value is the full accumulated text; ok is false when no text was
// produced.
func (r *Resilient) AskStream(ctx context.Context, messages []ChatMessage, onDelta func(content string) error) (string, bool, error) {
	if r.provider == nil {
		return "", false, nil
	}

	start := time.Now()
	defer func() {
		metrics.LLMStreamDuration.WithLabelValues(r.provider.Name(), "stream").
			Observe(time.Since(start).Seconds())
	}()

	req := &Request{Model: r.model, Messages: messages}
	attempt := 0

	for {
		var acc strings.Builder
		delivered := false

		attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
		resp, err := r.provider.CompleteStream(attemptCtx, req, func(token string, _ int) error {
			if token == "" {
				return nil
			}
			delivered = true
			acc.WriteString(token)
			return onDelta(token)
		})
		cancel()

		if err == nil {
			return resp.Content, resp.Content != "", nil
		}

		// Caller gone: no retries, no fallback. The orchestrator skips
		// persistence for canceled turns.
		if ctx.Err() != nil {
			return acc.String(), false, ctx.Err()
		}

		if delivered {
			// Mid-stream failure, or the delta callback itself refused
			// the fragment. Either way the turn is over.
			return acc.String(), false, err
		}

		if !retryable(err) {
			break
		}

		attempt++
		if attempt > r.retries {
			break
		}

		metrics.LLMRetriesTotal.WithLabelValues(r.provider.Name()).Inc()
		r.log.Warn("llm stream connect failed, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		r.sleep(backoffDelay(attempt))
	}

	// Streaming transport unavailable: degrade to one non-streaming call
	// delivered as a single fragment, so callers keep a uniform contract.
	single, ok := r.ask(ctx, messages, 0)
	if !ok {
		return "", false, nil
	}
	if err := onDelta(single); err != nil {
		return single, false, err
	}
	return single, true, nil
}

// retryable reports whether an attempt error is worth retrying:
// rate-limited (429), server error (5xx), or a network/timeout failure.
// Any other provider error terminates immediately.
func retryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == 0 ||
			reqErr.HTTPStatusCode == http.StatusTooManyRequests ||
			reqErr.HTTPStatusCode >= 500
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// backoffDelay returns min(1s * 2^attempt, 4s), attempt starting at 1
// after the first failure.
func backoffDelay(attempt int) time.Duration {
	d := time.Second << uint(attempt)
	if d > maxBackoff {
		d = maxBackoff
	}
	return d
}
