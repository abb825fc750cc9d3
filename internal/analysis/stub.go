package analysis

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// DefaultDelay emulates the round trip of a hosted model.
const DefaultDelay = 1500 * time.Millisecond

// RandomSource yields uniform draws in [0,1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// Stub is a simulated Analyzer. It picks a canned narrative and draws the
// recommendation and confidence from the decision table in table.go.
// Concurrent calls are independent; nothing is shared between them except
// the random source.
type Stub struct {
	delay time.Duration

	mu  sync.Mutex
	rnd RandomSource
}

type StubOption func(*Stub)

func WithDelay(d time.Duration) StubOption {
	return func(s *Stub) { s.delay = d }
}

func WithRandom(src RandomSource) StubOption {
	return func(s *Stub) { s.rnd = src }
}

func NewStub(opts ...StubOption) *Stub {
	s := &Stub{delay: DefaultDelay, rnd: globalSource{}}
	for _, o := range opts {
		o(s)
	}
	if s.delay < 0 {
		s.delay = 0
	}
	return s
}

func (s *Stub) Delay() time.Duration { return s.delay }

// Analyze validates req, waits out the simulated latency and returns a
// freshly drawn response. It only fails on an invalid request or when ctx
// ends during the wait.
func (s *Stub) Analyze(ctx context.Context, req Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decide(req), nil
}

func (s *Stub) decide(req Request) *Response {
	// Baseline is always drawn first, even when a rule overrides it.
	confidence := BaselineConfidence.At(s.rnd.Float64())

	subject := SubjectOf(req.Symbols)
	rule := RuleFor(subject, req.TimeRange)

	var n narrative
	switch subject {
	case SubjectNifty50, SubjectSensex:
		n = indexNarratives[subject][req.TimeRange]
	case SubjectSingle:
		n = s.singleNarrative(req.Symbols[0], req.TimeRange)
	default:
		n = s.basketNarrative(req.Symbols, req.TimeRange)
	}

	rec := rule.Fixed
	if rule.Split != nil {
		rec = rule.Split.Pick(s.rnd.Float64())
	}
	if rule.Confidence != nil {
		confidence = rule.Confidence.At(s.rnd.Float64())
	}

	insights := make([]string, len(n.insights))
	copy(insights, n.insights)

	return &Response{
		Summary:        n.summary,
		Insights:       insights,
		Recommendation: rec,
		Confidence:     confidence,
	}
}
