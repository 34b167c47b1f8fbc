// Package scheduler dispatches the deduplicated set of link targets a run
// discovered to the right validator, bounding concurrency and throttling
// repeated requests to the same HTTP host.
package scheduler

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"mlc/internal/pipeline"
	"mlc/internal/validate"
)

const defaultParallelRequests = 20

// Scheduler groups extracted links by Target, validates each distinct
// target exactly once, and reports the shared outcome back to every link
// that referenced it.
type Scheduler struct {
	client      validate.HTTPDoer
	logger      *slog.Logger
	concurrency int

	throttleMu sync.Mutex
	nextAllow  map[string]time.Time
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClient overrides the HTTP doer; tests use this to stub network calls.
func WithClient(c validate.HTTPDoer) Option {
	return func(s *Scheduler) { s.client = c }
}

// WithConcurrency overrides the number of targets validated at once.
func WithConcurrency(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithLogger overrides the scheduler's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = logger }
}

// New builds a Scheduler with the given options, defaulting to a real
// *http.Client and PARALLEL_REQUESTS=20.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		client:      validate.NewClient(),
		logger:      slog.Default(),
		concurrency: defaultParallelRequests,
		nextAllow:   make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run validates every Target in targets exactly once and returns one
// FinalResult per target, in no particular order. cfg supplies per-run
// validation settings (throttle, offline mode, custom headers, the
// filesystem extension-matching rule, and redirect-suppression globs).
// linksByTarget associates each Target back to the MarkupLinks that
// produced it, so FinalResult.Links can be populated for the reporter.
func (s *Scheduler) Run(ctx context.Context, targets []pipeline.Target, linksByTarget map[pipeline.Target][]pipeline.MarkupLink, cfg pipeline.Config) []pipeline.FinalResult {
	results := make([]pipeline.FinalResult, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			outcome := s.validate(gctx, target, cfg)
			results[i] = pipeline.FinalResult{
				Target:  target,
				Outcome: outcome,
				Links:   linksByTarget[target],
			}
			return nil
		})
	}

	// Every validator turns its own errors into an outcome and every
	// goroutine returns nil, so Wait does not report an error.
	if err := g.Wait(); err != nil {
		s.logger.Warn("validation run ended early", "error", err)
	}

	return results
}

func (s *Scheduler) validate(ctx context.Context, target pipeline.Target, cfg pipeline.Config) pipeline.CheckOutcome {
	fp := xxh3.HashString(target.Normalized)
	s.logger.Debug("validating target", "target", target.Normalized, "kind", target.Kind.String(), "fingerprint", fp)

	switch target.Kind {
	case pipeline.LinkMail:
		return validate.Mail(target.Normalized)
	case pipeline.LinkFileSystem:
		return validate.FileSystem(target.Normalized, cfg.MatchFileExtension)
	case pipeline.LinkHTTP:
		if cfg.Offline {
			return pipeline.OutcomeIgnored("Offline mode: network requests are disabled.")
		}
		s.awaitThrottle(target.Normalized, cfg.Throttle)
		return validate.HTTP(ctx, s.client, target.Normalized, cfg.HTTPHeaders, cfg.DoNotWarnForRedirectTo)
	case pipeline.LinkFTP:
		return pipeline.OutcomeNotImplemented("FTP link checking is not implemented.")
	default:
		return pipeline.OutcomeNotImplemented("No validator for this link kind yet.")
	}
}

// awaitThrottle blocks the calling goroutine until at least throttleMillis
// have elapsed since the last request issued to target's host, per
// spec.md's per-host rate limit. A throttleMillis of 0 never blocks.
func (s *Scheduler) awaitThrottle(target string, throttleMillis int) {
	if throttleMillis <= 0 {
		return
	}
	host := hostOf(target)
	if host == "" {
		return
	}

	s.throttleMu.Lock()
	now := time.Now()
	next := s.nextAllow[host]
	if next.Before(now) {
		next = now
	}
	s.nextAllow[host] = next.Add(time.Duration(throttleMillis) * time.Millisecond)
	wait := next.Sub(now)
	s.throttleMu.Unlock()

	if wait > 0 {
		time.Sleep(wait)
	}
}

func hostOf(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return ""
	}
	return u.Host
}
