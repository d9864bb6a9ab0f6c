package strategy

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/amishk599/jobradius/internal/model"
)

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 10 * time.Second

// Attempt outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeEmpty   = "empty"
	OutcomeTimeout = "timeout"
	OutcomeError   = "error"
)

// Observer receives one call per attempted strategy.
type Observer interface {
	ObserveAttempt(strategy, outcome string, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveAttempt(string, string, time.Duration) {}

// Outcome is the result of a cascade that found something.
type Outcome struct {
	Records  []model.RawRecord
	Strategy string
	Attempts []model.Attempt
}

// Executor runs strategies against a provider one at a time and stops at the
// first that returns records.
type Executor struct {
	provider model.SearchProvider
	timeout  time.Duration
	logger   *slog.Logger
	observer Observer
}

// NewExecutor creates an Executor. A non-positive timeout selects
// DefaultTimeout; a nil observer discards attempt reports.
func NewExecutor(provider model.SearchProvider, timeout time.Duration, logger *slog.Logger, observer Observer) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Executor{
		provider: provider,
		timeout:  timeout,
		logger:   logger,
		observer: observer,
	}
}

// Execute tries each strategy in order. Empty results, timeouts and provider
// errors move on to the next strategy. When none succeeds the error is a
// *model.NotFoundError. If ctx itself is done the cascade stops and ctx's
// error is returned.
func (e *Executor) Execute(ctx context.Context, q model.LocationQuery, strategies []model.Strategy) (Outcome, error) {
	attempts := make([]model.Attempt, 0, len(strategies))

	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return Outcome{Attempts: attempts}, err
		}

		attempt, records := e.run(ctx, s)
		attempts = append(attempts, attempt)
		e.observer.ObserveAttempt(s.Name, attempt.Outcome, attempt.Duration)

		if attempt.Outcome == OutcomeSuccess {
			e.logger.Info("strategy succeeded",
				"strategy", s.Name,
				"results", attempt.Results,
				"duration", attempt.Duration,
				"attempts", len(attempts),
			)
			return Outcome{Records: records, Strategy: s.Name, Attempts: attempts}, nil
		}

		// A timeout on our own per-call deadline is soft; the caller going away is not.
		if err := ctx.Err(); err != nil {
			return Outcome{Attempts: attempts}, err
		}

		e.logger.Warn("strategy yielded nothing",
			"strategy", s.Name,
			"outcome", attempt.Outcome,
			"duration", attempt.Duration,
			"error", attempt.Err,
		)
	}

	return Outcome{Attempts: attempts}, &model.NotFoundError{Query: q, Attempts: attempts}
}

type searchResult struct {
	records []model.RawRecord
	err     error
}

// run performs one bounded provider call. The call is abandoned when the
// timeout fires even if the provider ignores its context.
func (e *Executor) run(ctx context.Context, s model.Strategy) (model.Attempt, []model.RawRecord) {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan searchResult, 1)
	go func() {
		records, err := e.provider.Search(callCtx, s.Params)
		done <- searchResult{records: records, err: err}
	}()

	var res searchResult
	select {
	case res = <-done:
	case <-callCtx.Done():
		res = searchResult{err: callCtx.Err()}
	}

	attempt := model.Attempt{
		Strategy: s.Name,
		Duration: time.Since(start),
		Err:      res.err,
	}

	switch {
	case res.err != nil && errors.Is(res.err, context.DeadlineExceeded):
		attempt.Outcome = OutcomeTimeout
		return attempt, nil
	case res.err != nil:
		attempt.Outcome = OutcomeError
		return attempt, nil
	case len(res.records) == 0:
		attempt.Outcome = OutcomeEmpty
		return attempt, nil
	}
	attempt.Outcome = OutcomeSuccess
	attempt.Results = len(res.records)
	return attempt, res.records
}
