package interact

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/pagewait/internal/config"
)

const (
	// DefaultTimeout bounds every operation that is given a zero timeout.
	DefaultTimeout = 10 * time.Second
	// DefaultPollInterval is the pause between two probes of a condition.
	DefaultPollInterval = 100 * time.Millisecond
	// DefaultNavigationTimeout bounds Navigate when it is given a zero timeout.
	DefaultNavigationTimeout = 30 * time.Second
)

// errOperationTimeout is the cancellation cause of every operation deadline,
// which separates our own timeout from the caller cancelling ctx.
var errOperationTimeout = errors.New("interact: operation timed out")

// Helper wraps a Page with bounded waits, readiness checks and logging.
// A Helper must not be used from several goroutines at once, because the
// underlying page session is not safe for concurrent use.
type Helper struct {
	page              Page
	logger            *zap.Logger
	defaultTimeout    time.Duration
	navigationTimeout time.Duration
	pollInterval      time.Duration
}

// Option configures a Helper.
type Option func(*Helper)

// WithLogger sets the logger. The default is zap.L() named "interact".
func WithLogger(logger *zap.Logger) Option {
	return func(h *Helper) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithDefaultTimeout sets the timeout used when an operation is given zero.
func WithDefaultTimeout(d time.Duration) Option {
	return func(h *Helper) {
		if d > 0 {
			h.defaultTimeout = d
		}
	}
}

// WithNavigationTimeout sets the timeout Navigate uses when given zero.
func WithNavigationTimeout(d time.Duration) Option {
	return func(h *Helper) {
		if d > 0 {
			h.navigationTimeout = d
		}
	}
}

// WithPollInterval sets the pause between probes.
func WithPollInterval(d time.Duration) Option {
	return func(h *Helper) {
		if d > 0 {
			h.pollInterval = d
		}
	}
}

// WithConfig applies the interact section of the application config.
func WithConfig(cfg config.InteractConfig) Option {
	return func(h *Helper) {
		WithDefaultTimeout(cfg.DefaultTimeout)(h)
		WithNavigationTimeout(cfg.NavigationTimeout)(h)
		WithPollInterval(cfg.PollInterval)(h)
	}
}

// New returns a Helper driving page. The page is borrowed: its lifecycle
// stays with the caller.
func New(page Page, opts ...Option) *Helper {
	h := &Helper{
		page:              page,
		logger:            zap.L().Named("interact"),
		defaultTimeout:    DefaultTimeout,
		navigationTimeout: DefaultNavigationTimeout,
		pollInterval:      DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Helper) timeoutOrDefault(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return h.defaultTimeout
	}
	return timeout
}

// bound derives the operation context. Its deadline is a wall-clock bound
// for the whole operation, including any composed sub-steps.
func bound(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeoutCause(ctx, timeout, errOperationTimeout)
}

// timedOut reports whether opCtx ended because of its own deadline rather
// than the parent being cancelled.
func timedOut(opCtx context.Context) bool {
	return errors.Is(context.Cause(opCtx), errOperationTimeout)
}

// poll runs probe until it reports done, returns an error, or ctx ends.
// Probes are paced by a rate limiter at the configured interval; the first
// probe runs immediately.
func (h *Helper) poll(ctx context.Context, probe func(ctx context.Context) (bool, error)) error {
	limiter := rate.NewLimiter(rate.Every(h.pollInterval), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			// Wait gives up as soon as the next tick would land past the
			// deadline. Hold on until the deadline itself so a timeout is
			// never reported early.
			<-ctx.Done()
			return ctx.Err()
		}
		done, err := probe(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}
