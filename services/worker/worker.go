package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"sjsage522/partwatch/config"
	"sjsage522/partwatch/internal/crawler"
	"sjsage522/partwatch/internal/ledger"
	"sjsage522/partwatch/internal/metrics"
	"sjsage522/partwatch/logger"
	perrors "sjsage522/partwatch/pkg/errors"
	"sjsage522/partwatch/services/notifier"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// State is the lifecycle state of the poll scheduler
type State int32

const (
	WarmingUp State = iota
	Polling
	Stopped
)

func (s State) String() string {
	switch s {
	case WarmingUp:
		return "warming_up"
	case Polling:
		return "polling"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Status is the outcome of one identifier within a cycle
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// StepResult records what happened to one identifier in a cycle
type StepResult struct {
	Identifier  string
	Status      Status
	Offers      int
	Notified    int
	Undelivered int
	Err         error
}

// CycleReport summarizes one poll cycle
type CycleReport struct {
	ID       uuid.UUID
	Steps    []StepResult
	Err      error
	Duration time.Duration
}

// Notified returns the number of offers delivered during the cycle
func (r CycleReport) Notified() int {
	total := 0
	for _, step := range r.Steps {
		total += step.Notified
	}
	return total
}

// Options configures a Worker
type Options struct {
	Identifiers  []string
	Ceiling      decimal.Decimal
	Interval     time.Duration
	StartupDelay time.Duration
	Mode         string
}

// Worker polls the marketplace and notifies about new cheap offers
type Worker struct {
	identifiers  []string
	interval     time.Duration
	startupDelay time.Duration
	atLeastOnce  bool

	fetcher   crawler.Fetcher
	extractor crawler.Extractor
	notifier  notifier.Notifier
	reporter  Reporter
	filter    *ledger.Filter

	state atomic.Int32
	log   *logger.Logger
}

// NewWorker creates a new worker with an empty ledger
func NewWorker(
	opts Options,
	fetcher crawler.Fetcher,
	extractor crawler.Extractor,
	n notifier.Notifier,
	reporter Reporter,
) *Worker {
	return &Worker{
		identifiers:  append([]string(nil), opts.Identifiers...),
		interval:     opts.Interval,
		startupDelay: opts.StartupDelay,
		atLeastOnce:  opts.Mode == config.DeliveryAtLeastOnce,
		fetcher:      fetcher,
		extractor:    extractor,
		notifier:     n,
		reporter:     reporter,
		filter:       ledger.NewFilter(opts.Ceiling, ledger.New()),
		log:          logger.ForWorker(),
	}
}

// State returns the current lifecycle state
func (w *Worker) State() State {
	return State(w.state.Load())
}

// Ledger returns the worker's dedup ledger
func (w *Worker) Ledger() *ledger.Ledger {
	return w.filter.Ledger()
}

func (w *Worker) setState(s State) {
	w.state.Store(int32(s))
}

// Start waits out the startup delay and then runs cycles until ctx is done.
// Every cycle is followed by a full interval of sleep.
func (w *Worker) Start(ctx context.Context) error {
	w.setState(WarmingUp)
	defer w.setState(Stopped)

	w.log.Info().
		Strs("identifiers", w.identifiers).
		Str("ceiling", w.filter.Ceiling().String()).
		Dur("interval", w.interval).
		Dur("startup_delay", w.startupDelay).
		Bool("at_least_once", w.atLeastOnce).
		Msg("Starting poll scheduler")

	if !sleep(ctx, w.startupDelay) {
		return nil
	}
	w.setState(Polling)

	for {
		report := w.RunCycle(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if report.Err != nil {
			w.reporter.Report(ctx, report.Err)
		}

		if !sleep(ctx, w.interval) {
			return nil
		}
	}
}

// RunCycle checks every identifier once, in configured order.
// The first failed identifier aborts the cycle; the rest are skipped.
func (w *Worker) RunCycle(ctx context.Context) CycleReport {
	report := CycleReport{
		ID:    uuid.New(),
		Steps: make([]StepResult, 0, len(w.identifiers)),
	}
	log := w.log.WithStr("cycle_id", report.ID.String())
	start := time.Now()

	for _, identifier := range w.identifiers {
		if report.Err != nil {
			report.Steps = append(report.Steps, StepResult{Identifier: identifier, Status: StatusSkipped})
			continue
		}

		step := w.runStep(ctx, log, identifier)
		report.Steps = append(report.Steps, step)
		if step.Status != StatusFailed {
			continue
		}
		metrics.FetchErrorsTotal.WithLabelValues(string(perrors.TypeOf(step.Err))).Inc()
		if abortsCycle(step.Err) {
			report.Err = step.Err
		} else {
			w.reporter.Report(ctx, step.Err)
		}
	}

	report.Duration = time.Since(start)
	metrics.CycleDuration.Observe(report.Duration.Seconds())
	metrics.LedgerSize.Set(float64(w.Ledger().Len()))

	result := "ok"
	if report.Err != nil {
		result = "failed"
	}
	metrics.CyclesTotal.WithLabelValues(result).Inc()

	event := log.Info
	if report.Err != nil {
		event = log.Warn
	}
	event().
		Err(report.Err).
		Dur("duration", report.Duration).
		Int("notified", report.Notified()).
		Int("ledger_size", w.Ledger().Len()).
		Msg("Cycle finished")

	return report
}

// runStep fetches, extracts and notifies for one identifier.
// A panic anywhere in the step fails the identifier instead of the process.
func (w *Worker) runStep(ctx context.Context, log *logger.Logger, identifier string) (step StepResult) {
	step = StepResult{Identifier: identifier, Status: StatusOK}
	defer func() {
		if r := recover(); r != nil {
			step.Status = StatusFailed
			step.Err = perrors.New(perrors.ErrorTypeUnknown, identifier, "panic while checking", fmt.Errorf("%v", r))
		}
	}()

	raw, err := w.fetcher.Fetch(ctx, identifier)
	if err != nil {
		step.Status = StatusFailed
		step.Err = err
		return step
	}

	offers, err := w.extractor.Extract(identifier, raw)
	if err != nil {
		step.Status = StatusFailed
		step.Err = err
		return step
	}
	step.Offers = len(offers)
	metrics.OffersExtractedTotal.Add(float64(len(offers)))

	log.Debug().
		Str("identifier", identifier).
		Int("offers", len(offers)).
		Msg("Offers extracted")

	for _, offer := range offers {
		notified, err := w.deliver(ctx, offer)
		if notified {
			step.Notified++
			metrics.NotificationsSentTotal.Inc()
			log.Info().
				Str("identifier", offer.Identifier).
				Str("price", offer.Price.String()).
				Str("url", offer.URL).
				Msg("Offer notified")
		}
		if err == nil {
			continue
		}
		if abortsCycle(err) {
			step.Status = StatusFailed
			step.Err = err
			return step
		}
		if !notified {
			step.Undelivered++
			metrics.NotificationFailuresTotal.Inc()
		}
		w.reporter.Report(ctx, err)
	}

	return step
}

// abortsCycle reports whether err ends the cycle. Errors without a type
// are treated as fatal to the cycle.
func abortsCycle(err error) bool {
	var e *perrors.Error
	if errors.As(err, &e) {
		return e.AbortsCycle()
	}
	return true
}

// deliver notifies about an offer when it qualifies.
// In at-most-once mode the key is claimed before sending, so a failed send
// is never retried. In at-least-once mode it is recorded only after the chat
// message went out. An offer feed failure alone still counts as notified and
// is returned alongside true.
func (w *Worker) deliver(ctx context.Context, offer crawler.Offer) (bool, error) {
	ceiling := w.filter.Ceiling()

	if !w.atLeastOnce {
		if !w.filter.Admit(offer) {
			return false, nil
		}
		err := w.notify(ctx, offer, ceiling)
		if err != nil && !perrors.Is(err, perrors.ErrorTypePublisher) {
			return false, err
		}
		return true, err
	}

	key, ok := w.filter.Qualifies(offer)
	if !ok {
		return false, nil
	}
	err := w.notify(ctx, offer, ceiling)
	if err != nil && !perrors.Is(err, perrors.ErrorTypePublisher) {
		return false, err
	}
	w.filter.Commit(key)
	return true, err
}

// notify calls the notifier, typing foreign errors as delivery failures
func (w *Worker) notify(ctx context.Context, offer crawler.Offer, ceiling decimal.Decimal) error {
	err := w.notifier.Notify(ctx, offer, ceiling)
	if err != nil && perrors.TypeOf(err) == perrors.ErrorTypeUnknown {
		return perrors.NewDelivery(offer.Identifier, "notify offer", err)
	}
	return err
}

// sleep waits for d or until ctx is done, reporting whether d elapsed
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
