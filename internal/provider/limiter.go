package provider

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Limited wraps an LLMProvider so that at most maxConcurrency generations run
// at once and consecutive requests start at least minDelay apart. Callers
// that cannot get a slot before their context ends are rejected.
type Limited struct {
	next     LLMProvider
	slots    chan struct{}
	minDelay time.Duration
	logger   *logrus.Entry

	mu              sync.Mutex
	lastRequestTime time.Time
	stats           LimiterStats
}

// LimiterStats holds request counters for a Limited provider.
type LimiterStats struct {
	TotalRequests     int64 `json:"total_requests"`
	CompletedRequests int64 `json:"completed_requests"`
	FailedRequests    int64 `json:"failed_requests"`
	RejectedRequests  int64 `json:"rejected_requests"`
	ActiveRequests    int64 `json:"active_requests"`
}

// NewLimited returns next unchanged when no limit applies.
func NewLimited(next LLMProvider, maxConcurrency int, minDelay time.Duration, logger *logrus.Entry) LLMProvider {
	if maxConcurrency <= 0 && minDelay <= 0 {
		return next
	}
	if logger == nil {
		logger = logrus.WithField("component", "llm_limiter")
	}
	l := &Limited{
		next:     next,
		minDelay: minDelay,
		logger:   logger,
	}
	if maxConcurrency > 0 {
		l.slots = make(chan struct{}, maxConcurrency)
	}
	return l
}

func (l *Limited) Name() string {
	return l.next.Name()
}

// Model reports the wrapped provider's model.
func (l *Limited) Model() string {
	return ModelName(l.next)
}

func (l *Limited) Generate(ctx context.Context, prompt string) (string, error) {
	l.mu.Lock()
	l.stats.TotalRequests++
	l.mu.Unlock()

	if err := l.acquire(ctx); err != nil {
		l.mu.Lock()
		l.stats.RejectedRequests++
		l.mu.Unlock()
		return "", err
	}
	defer l.release()

	if err := l.waitForDelay(ctx); err != nil {
		l.mu.Lock()
		l.stats.RejectedRequests++
		l.mu.Unlock()
		return "", err
	}

	answer, err := l.next.Generate(ctx, prompt)

	l.mu.Lock()
	if err != nil {
		l.stats.FailedRequests++
	} else {
		l.stats.CompletedRequests++
	}
	l.mu.Unlock()

	return answer, err
}

// Stats returns a snapshot of the counters.
func (l *Limited) Stats() LimiterStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

func (l *Limited) acquire(ctx context.Context) error {
	if l.slots != nil {
		select {
		case l.slots <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	l.mu.Lock()
	l.stats.ActiveRequests++
	l.mu.Unlock()
	return nil
}

func (l *Limited) release() {
	l.mu.Lock()
	l.stats.ActiveRequests--
	l.mu.Unlock()
	if l.slots != nil {
		<-l.slots
	}
}

// waitForDelay reserves the next start time and sleeps until it.
func (l *Limited) waitForDelay(ctx context.Context) error {
	if l.minDelay <= 0 {
		return nil
	}

	l.mu.Lock()
	now := time.Now()
	start := now
	if !l.lastRequestTime.IsZero() {
		if earliest := l.lastRequestTime.Add(l.minDelay); earliest.After(now) {
			start = earliest
		}
	}
	l.lastRequestTime = start
	l.mu.Unlock()

	wait := start.Sub(now)
	if wait <= 0 {
		return nil
	}

	l.logger.WithField("wait_time", wait).Debug("Waiting before LLM request")
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
