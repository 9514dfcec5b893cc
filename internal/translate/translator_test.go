package translate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/tvlabel/internal/cache"
	"github.com/ppiankov/tvlabel/internal/metrics"
	"github.com/ppiankov/tvlabel/internal/model"
	"github.com/ppiankov/tvlabel/internal/worker"
)

// fakeProvider answers with the requested address and the text
type fakeProvider struct {
	mu       sync.Mutex
	requests []Request
	failures int32 // Leading calls that fail with a retryable error
	fatal    bool  // Fail every call with a non-retryable error
	calls    int32
}

func (p *fakeProvider) Name() string     { return "fake" }
func (p *fakeProvider) Endpoint() string { return "http://fake.local" }

func (p *fakeProvider) IsAvailable(context.Context) bool { return true }

func (p *fakeProvider) Translate(ctx context.Context, req Request) (*Response, error) {
	n := atomic.AddInt32(&p.calls, 1)
	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.mu.Unlock()

	if p.fatal {
		return nil, &APIError{StatusCode: 401, Message: "bad key"}
	}
	if n <= atomic.LoadInt32(&p.failures) {
		return nil, &APIError{StatusCode: 429, Message: "slow down"}
	}
	return &Response{Translation: fmt.Sprintf("[%s] %s", req.Address.Short(), req.Text), Model: "fake-1"}, nil
}

func newTranslator(t *testing.T, p Provider, opts Options) *Translator {
	t.Helper()
	tr, err := NewTranslator(p, opts)
	require.NoError(t, err)
	return tr
}

func TestNewTranslator_NoProvider(t *testing.T) {
	_, err := NewTranslator(nil, Options{})
	assert.ErrorIs(t, err, ErrNoProvider)
}

func TestTranslateLines_StripsTagsAndKeepsOrder(t *testing.T) {
	p := &fakeProvider{}
	tr := newTranslator(t, p, Options{Concurrency: 4})

	lines := []string{"<V> Will you come?", "<T> Sit down.", "The train left."}
	var done int32
	results, err := tr.TranslateLines(context.Background(), lines, func(Result) { atomic.AddInt32(&done, 1) })
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.EqualValues(t, 3, done)

	assert.Equal(t, Result{Index: 0, Source: "Will you come?", Address: model.Formal, Translation: "[V] Will you come?", Model: "fake-1"}, results[0])
	assert.Equal(t, model.Informal, results[1].Address)
	assert.Equal(t, "Sit down.", results[1].Source)
	assert.Equal(t, model.Neutral, results[2].Address)
	assert.Equal(t, "[N] The train left.", results[2].Translation)

	for _, req := range p.requests {
		assert.NotContains(t, req.Text, "<", "tags must not reach the provider")
	}
}

func TestTranslateLine_RetriesRetryableErrors(t *testing.T) {
	p := &fakeProvider{failures: 2}
	m := metrics.New()
	tr := newTranslator(t, p, Options{
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
		Limiter:    worker.NewLimiter(0, 1),
		Metrics:    m,
	})

	r := tr.TranslateLine(context.Background(), 0, "<T> Hi.")
	assert.Empty(t, r.Error)
	assert.Equal(t, "[T] Hi.", r.Translation)
	assert.EqualValues(t, 3, atomic.LoadInt32(&p.calls))
}

func TestTranslateLine_GivesUpAfterMaxRetries(t *testing.T) {
	p := &fakeProvider{failures: 10}
	tr := newTranslator(t, p, Options{MaxRetries: 1, RetryDelay: time.Millisecond})

	r := tr.TranslateLine(context.Background(), 4, "Hi.")
	assert.Contains(t, r.Error, "slow down")
	assert.Equal(t, 4, r.Index)
	assert.EqualValues(t, 2, atomic.LoadInt32(&p.calls))
}

func TestTranslateLine_NoRetryOnFatalError(t *testing.T) {
	p := &fakeProvider{fatal: true}
	tr := newTranslator(t, p, Options{MaxRetries: 5, RetryDelay: time.Millisecond})

	r := tr.TranslateLine(context.Background(), 0, "Hi.")
	assert.Contains(t, r.Error, "bad key")
	assert.EqualValues(t, 1, atomic.LoadInt32(&p.calls))
}

func TestTranslateLine_UsesCache(t *testing.T) {
	p := &fakeProvider{}
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	tr := newTranslator(t, p, Options{Cache: c, Model: "fake-1"})

	first := tr.TranslateLine(context.Background(), 0, "<V> Thank you.")
	second := tr.TranslateLine(context.Background(), 1, "<V> Thank you.")
	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Translation, second.Translation)
	assert.Equal(t, 1, second.Index)
	assert.EqualValues(t, 1, atomic.LoadInt32(&p.calls))

	// A different requested address is a different translation
	third := tr.TranslateLine(context.Background(), 2, "<T> Thank you.")
	assert.False(t, third.Cached)
	assert.EqualValues(t, 2, atomic.LoadInt32(&p.calls))
}

func TestTranslateLines_Cancelled(t *testing.T) {
	tr := newTranslator(t, &fakeProvider{}, Options{Concurrency: 2})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tr.TranslateLines(ctx, []string{"a", "b", "c"}, nil)
	assert.True(t, errors.Is(err, context.Canceled))
}
