package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	defaultNavTimeout    = 45 * time.Second
	defaultActionTimeout = 15 * time.Second
	defaultUserDataDir   = "./pw-data"
)

var (
	ErrClosed     = errors.New("browser: session closed")
	ErrNotStarted = errors.New("browser: session not started")
	ErrNoPage     = errors.New("browser: no page in context")
)

// Config contains configuration for the shared browser session
type Config struct {
	// UserDataDir is the persistent Chrome profile; cookies survive restarts
	UserDataDir string
	// RemoteURL attaches to a running Chrome over CDP instead of launching one
	RemoteURL string
	// Headless mode
	Headless bool
	// NoSandbox runs Chrome without sandbox (required for Docker/root)
	NoSandbox bool
	// NavTimeout bounds a single navigation
	NavTimeout time.Duration
	// ActionTimeout bounds a single wait or click
	ActionTimeout time.Duration
	// DownloadDir receives files triggered by pages. A temp dir is used when empty.
	DownloadDir string
	Logger      *zap.Logger
}

// Session is one Chrome instance shared by all pages.
// Chrome is launched on the first NewPage call.
type Session struct {
	config *Config
	logger *zap.Logger

	allocCtx    context.Context
	allocCancel context.CancelFunc

	mu            sync.Mutex
	browserCtx    context.Context
	browserCancel context.CancelFunc
	closed        bool

	downloadDir   string
	ownsDownloads bool
	openPages     atomic.Int64
}

// New creates a session. It does not start Chrome.
func New(config *Config) (*Session, error) {
	if config == nil {
		config = &Config{Headless: true}
	}
	if config.UserDataDir == "" {
		config.UserDataDir = defaultUserDataDir
	}
	if config.NavTimeout <= 0 {
		config.NavTimeout = defaultNavTimeout
	}
	if config.ActionTimeout <= 0 {
		config.ActionTimeout = defaultActionTimeout
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Session{
		config:      config,
		logger:      logger.Named("browser"),
		downloadDir: config.DownloadDir,
	}

	if s.downloadDir == "" {
		dir, err := os.MkdirTemp("", "orderbridge-downloads-")
		if err != nil {
			return nil, fmt.Errorf("browser: create download dir: %w", err)
		}
		s.downloadDir = dir
		s.ownsDownloads = true
	} else if err := os.MkdirAll(s.downloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("browser: create download dir: %w", err)
	}

	s.initAllocator()
	return s, nil
}

func (s *Session) initAllocator() {
	if s.config.RemoteURL != "" {
		s.allocCtx, s.allocCancel = chromedp.NewRemoteAllocator(context.Background(), s.config.RemoteURL)
		return
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserDataDir(s.config.UserDataDir),
		chromedp.Flag("headless", s.config.Headless),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.WindowSize(1440, 900),
	)
	if s.config.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}

	s.allocCtx, s.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
}

// NavTimeout is the configured navigation bound.
func (s *Session) NavTimeout() time.Duration { return s.config.NavTimeout }

// ActionTimeout is the configured bound for one wait or click.
func (s *Session) ActionTimeout() time.Duration { return s.config.ActionTimeout }

// start launches Chrome once. A failed start can be retried.
func (s *Session) start() (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	if s.browserCtx != nil {
		return s.browserCtx, nil
	}

	browserCtx, cancel := chromedp.NewContext(s.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			s.logger.Debug(fmt.Sprintf(format, args...))
		}),
		chromedp.WithErrorf(func(format string, args ...interface{}) {
			s.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)

	err := chromedp.Run(browserCtx, downloadBehavior(s.downloadDir))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("browser: start chrome: %w", err)
	}

	chromedp.ListenBrowser(browserCtx, s.popupCloser(browserCtx))

	s.browserCtx = browserCtx
	s.browserCancel = cancel
	s.logger.Info("Browser started",
		zap.String("user_data_dir", s.config.UserDataDir),
		zap.Bool("headless", s.config.Headless),
		zap.Bool("remote", s.config.RemoteURL != ""))
	return browserCtx, nil
}

// popupCloser closes any page that another page opened.
func (s *Session) popupCloser(browserCtx context.Context) func(ev interface{}) {
	return func(ev interface{}) {
		created, ok := ev.(*target.EventTargetCreated)
		if !ok || !isPopup(created.TargetInfo) {
			return
		}
		id := created.TargetInfo.TargetID
		go func() {
			c := chromedp.FromContext(browserCtx)
			if c == nil || c.Browser == nil {
				return
			}
			ctx, cancel := context.WithTimeout(cdp.WithExecutor(browserCtx, c.Browser), s.config.ActionTimeout)
			defer cancel()
			if err := target.CloseTarget(id).Do(ctx); err != nil {
				s.logger.Debug("Failed to close popup", zap.String("target_id", string(id)), zap.Error(err))
				return
			}
			s.logger.Debug("Closed popup", zap.String("url", created.TargetInfo.URL))
		}()
	}
}

func isPopup(info *target.Info) bool {
	return info != nil && info.Type == "page" && info.OpenerID != ""
}

// NewPage opens a new tab. The returned context carries the page and keeps
// the values of ctx; cancelling ctx or calling cancel closes the tab.
func (s *Session) NewPage(ctx context.Context) (context.Context, context.CancelFunc, error) {
	browserCtx, err := s.start()
	if err != nil {
		return nil, nil, err
	}

	pageCtx, closeTab := chromedp.NewContext(browserCtx)
	if err := chromedp.Run(pageCtx); err != nil {
		closeTab()
		return nil, nil, fmt.Errorf("browser: open page: %w", err)
	}

	s.openPages.Add(1)
	stop := context.AfterFunc(ctx, closeTab)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			stop()
			closeTab()
			s.openPages.Add(-1)
		})
	}
	return WithPage(ctx, pageCtx), cancel, nil
}

// OpenPages reports the number of tabs handed out and not yet closed.
func (s *Session) OpenPages() int {
	return int(s.openPages.Load())
}

// Alive checks that Chrome answers CDP calls.
func (s *Session) Alive(ctx context.Context) error {
	s.mu.Lock()
	browserCtx, closed := s.browserCtx, s.closed
	s.mu.Unlock()

	if closed {
		return ErrClosed
	}
	if browserCtx == nil {
		return ErrNotStarted
	}

	c := chromedp.FromContext(browserCtx)
	if c == nil || c.Browser == nil {
		return ErrNotStarted
	}

	probeCtx, cancel := context.WithTimeout(cdp.WithExecutor(browserCtx, c.Browser), s.config.ActionTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if _, err := target.GetTargets().Do(probeCtx); err != nil {
		return fmt.Errorf("browser: probe: %w", err)
	}
	return nil
}

// Close shuts Chrome down and removes the scratch download dir. Safe to call twice.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	browserCancel := s.browserCancel
	s.mu.Unlock()

	if browserCancel != nil {
		browserCancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
	if s.ownsDownloads {
		if err := os.RemoveAll(s.downloadDir); err != nil {
			s.logger.Warn("Failed to remove download dir", zap.String("dir", s.downloadDir), zap.Error(err))
		}
	}
	return nil
}

func downloadBehavior(dir string) chromedp.Action {
	return browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllowAndName).
		WithDownloadPath(dir).
		WithEventsEnabled(true)
}
