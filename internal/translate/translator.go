package translate

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/tvlabel/internal/cache"
	"github.com/ppiankov/tvlabel/internal/metrics"
	"github.com/ppiankov/tvlabel/internal/model"
	"github.com/ppiankov/tvlabel/internal/tag"
	"github.com/ppiankov/tvlabel/internal/worker"
)

// Options carries the optional collaborators of a translator.
type Options struct {
	Tags        *tag.Set           // Defaults to tag.DefaultSet()
	Limiter     *worker.Limiter    // nil disables rate limiting
	Cache       cache.Cache        // nil disables caching
	Metrics     *metrics.Collector // nil disables
	Logger      *slog.Logger       // Defaults to slog.Default()
	Model       string             // Configured model, part of the cache key
	Concurrency int                // Parallel requests, defaults to 1
	MaxRetries  int                // Retries of rate-limited or failed requests
	RetryDelay  time.Duration      // First retry delay, doubled per attempt
}

// Result is the translation of one tagged source line.
type Result struct {
	Index       int         `json:"index"`
	Source      string      `json:"source"`  // Source sentence without its tag
	Address     model.Label `json:"address"` // Requested form of address
	Translation string      `json:"translation"`
	Model       string      `json:"model,omitempty"`
	Cached      bool        `json:"cached"`
	Error       string      `json:"error,omitempty"`
}

type cachedTranslation struct {
	Translation string `json:"translation"`
	Model       string `json:"model"`
}

// Translator sends tagged source lines to a provider with bounded concurrency.
type Translator struct {
	provider Provider
	opts     Options
	logger   *slog.Logger
}

// NewTranslator creates a translator over provider.
func NewTranslator(provider Provider, opts Options) (*Translator, error) {
	if provider == nil {
		return nil, ErrNoProvider
	}
	if opts.Tags == nil {
		opts.Tags = tag.DefaultSet()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Translator{
		provider: provider,
		opts:     opts,
		logger:   logger.With("provider", provider.Name()),
	}, nil
}

// TranslateLines translates every line and returns the results in line order.
// Per-line failures are captured in Result.Error. onDone, when set, is called
// concurrently after each line. Only context cancellation is returned.
func (t *Translator) TranslateLines(ctx context.Context, lines []string, onDone func(Result)) ([]Result, error) {
	results := make([]Result, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.opts.Concurrency)

	for i, line := range lines {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			r := t.TranslateLine(gctx, i, line)
			results[i] = r
			if onDone != nil {
				onDone(r)
			}
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

// TranslateLine translates one source line. A leading side-constraint tag
// selects the requested address and is removed from the text sent.
func (t *Translator) TranslateLine(ctx context.Context, index int, line string) Result {
	// 1. Requested address
	address, text, ok := t.opts.Tags.Strip(line)
	if !ok {
		address, text = model.Neutral, line
	}
	r := Result{Index: index, Source: text, Address: address}

	// 2. Cache
	name := t.provider.Name()
	key := cache.Key("translate", name, t.opts.Model, address.String(), text)
	if c, ok := cache.GetJSON[cachedTranslation](t.opts.Cache, key); ok {
		r.Translation, r.Model, r.Cached = c.Translation, c.Model, true
		t.opts.Metrics.ObserveTranslation(name, true, nil)
		return r
	}

	// 3. Provider call with retries
	resp, err := t.call(ctx, Request{Text: text, Address: address})
	t.opts.Metrics.ObserveTranslation(name, false, err)
	if err != nil {
		r.Error = err.Error()
		t.logger.Warn("translation failed", "index", index, "error", err)
		return r
	}
	r.Translation, r.Model = resp.Translation, resp.Model

	if err := cache.SetJSON(t.opts.Cache, key, cachedTranslation{Translation: r.Translation, Model: r.Model}); err != nil {
		t.logger.Debug("translation not cached", "index", index, "error", err)
	}
	return r
}

func (t *Translator) call(ctx context.Context, req Request) (*Response, error) {
	endpoint := t.provider.Endpoint()
	delay := t.opts.RetryDelay

	for attempt := 0; ; attempt++ {
		if err := t.wait(ctx, endpoint, attempt, delay); err != nil {
			return nil, err
		}
		if attempt > 0 {
			delay *= 2
		}

		resp, err := t.provider.Translate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if attempt >= t.opts.MaxRetries || !Retryable(err) {
			return nil, err
		}
		t.logger.Debug("retrying translation", "attempt", attempt+1, "error", err)
	}
}

// wait blocks on the rate limiter, after a backoff delay for retries
func (t *Translator) wait(ctx context.Context, endpoint string, attempt int, delay time.Duration) error {
	switch {
	case t.opts.Limiter != nil && attempt > 0:
		return t.opts.Limiter.WaitWithDelay(ctx, endpoint, delay)
	case t.opts.Limiter != nil:
		return t.opts.Limiter.Wait(ctx, endpoint)
	case attempt > 0:
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	default:
		return ctx.Err()
	}
}
