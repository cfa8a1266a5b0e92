// internal/browser/session/session.go
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/pagewait/internal/config"
	"github.com/xkilldash9x/pagewait/internal/interact"
)

// Session is one Chrome tab driven over CDP. It implements interact.Page.
// A Session is not safe for concurrent use.
type Session struct {
	id     string
	ctx    context.Context // tab context, carries the chromedp target
	cancel context.CancelFunc
	// allocCancel stops the browser process.
	allocCancel context.CancelFunc
	logger      *zap.Logger
	cfg         config.BrowserConfig

	closeOnce sync.Once
	closeErr  error
}

var _ interact.Page = (*Session)(nil)

// ExecAllocatorOptions translates the browser config into chromedp allocator flags.
func ExecAllocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("enable-automation", true),
	)
	// DefaultExecAllocatorOptions carries headless; it has to be switched off explicitly.
	if !cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if cfg.WindowWidth > 0 && cfg.WindowHeight > 0 {
		opts = append(opts, chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	if cfg.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(cfg.UserDataDir))
	}

	// key=value arguments become valued flags, anything else a boolean flag.
	for _, arg := range cfg.Args {
		arg = strings.TrimLeft(strings.TrimSpace(arg), "-")
		if arg == "" {
			continue
		}
		if key, value, found := strings.Cut(arg, "="); found {
			opts = append(opts, chromedp.Flag(key, value))
		} else {
			opts = append(opts, chromedp.Flag(arg, true))
		}
	}
	return opts
}

// NewSession starts a browser and opens one tab in it. The session lives until
// Close is called or parentCtx is canceled.
func NewSession(parentCtx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sessionID := uuid.New().String()
	log := logger.Named("session").With(zap.String("session_id", sessionID))

	allocCtx, allocCancel := chromedp.NewExecAllocator(parentCtx, ExecAllocatorOptions(cfg)...)

	sugar := log.Named("cdp").Sugar()
	ctxOpts := []chromedp.ContextOption{
		chromedp.WithLogf(sugar.Infof),
		chromedp.WithErrorf(sugar.Errorf),
	}
	if cfg.Debug {
		ctxOpts = append(ctxOpts, chromedp.WithDebugf(sugar.Debugf))
	}
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, ctxOpts...)

	// The first Run allocates the browser under tabCtx. It must not carry a
	// deadline of its own, or the browser would die with it, so the launch
	// timeout is enforced from the outside.
	launched := make(chan error, 1)
	go func() { launched <- chromedp.Run(tabCtx) }()

	var timeout <-chan time.Time
	if cfg.LaunchTimeout > 0 {
		timer := time.NewTimer(cfg.LaunchTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case err := <-launched:
		if err != nil {
			tabCancel()
			allocCancel()
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
	case <-timeout:
		tabCancel()
		allocCancel()
		<-launched
		return nil, fmt.Errorf("browser did not start within %v", cfg.LaunchTimeout)
	}

	log.Info("Browser session started.", zap.Bool("headless", cfg.Headless))
	return &Session{
		id:          sessionID,
		ctx:         tabCtx,
		cancel:      tabCancel,
		allocCancel: allocCancel,
		logger:      log,
		cfg:         cfg,
	}, nil
}

// ID returns the unique identifier of the session.
func (s *Session) ID() string {
	return s.id
}

// Close closes the tab and stops the browser. It is safe to call more than
// once; only the first call does any work. If ctx ends before the browser
// has shut down gracefully, the process is killed.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.logger.Info("Closing session.")

		done := make(chan error, 1)
		go func() { done <- chromedp.Cancel(s.ctx) }()

		select {
		case err := <-done:
			if err != nil && s.ctx.Err() == nil {
				s.closeErr = fmt.Errorf("failed to close browser tab: %w", err)
			}
		case <-ctx.Done():
			s.logger.Warn("Graceful browser shutdown interrupted, killing process.", zap.Error(ctx.Err()))
			s.closeErr = ctx.Err()
		}
		s.cancel()
		s.allocCancel()
	})
	return s.closeErr
}

// RunActions runs actions against the tab, bounded by both ctx and the
// session lifetime. Context errors take precedence over protocol errors.
func (s *Session) RunActions(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()

	err := chromedp.Run(runCtx, actions...)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if s.ctx.Err() != nil {
		return fmt.Errorf("session %s is closed: %w", s.id, s.ctx.Err())
	}
	return err
}
