package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

var ErrDownloadCanceled = errors.New("browser: download canceled")

// Download is a file captured from a page.
type Download struct {
	Filename string
	Data     []byte
}

// downloadTracker follows the first download that begins after it is armed.
type downloadTracker struct {
	mu       sync.Mutex
	guid     string
	filename string
	once     sync.Once
	done     chan error
}

func newDownloadTracker() *downloadTracker {
	return &downloadTracker{done: make(chan error, 1)}
}

func (t *downloadTracker) handle(ev interface{}) {
	switch e := ev.(type) {
	case *browser.EventDownloadWillBegin:
		t.mu.Lock()
		if t.guid == "" {
			t.guid = e.GUID
			t.filename = e.SuggestedFilename
		}
		t.mu.Unlock()
	case *browser.EventDownloadProgress:
		t.mu.Lock()
		mine := t.guid != "" && e.GUID == t.guid
		t.mu.Unlock()
		if !mine {
			return
		}
		switch e.State {
		case browser.DownloadProgressStateCompleted:
			t.finish(nil)
		case browser.DownloadProgressStateCanceled:
			t.finish(ErrDownloadCanceled)
		}
	}
}

func (t *downloadTracker) finish(err error) {
	t.once.Do(func() { t.done <- err })
}

func (t *downloadTracker) file() (guid, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	name = t.filename
	if name == "" {
		name = t.guid
	}
	return t.guid, name
}

// Download runs trigger on the page in ctx and waits up to timeout for the
// file it starts. The file is read into memory and removed from disk.
func (s *Session) Download(ctx context.Context, timeout time.Duration, trigger ...chromedp.Action) (*Download, error) {
	page := Page(ctx)
	if page == nil {
		return nil, ErrNoPage
	}
	if timeout <= 0 {
		timeout = s.config.NavTimeout
	}

	waitCtx, cancel := context.WithTimeout(page, timeout)
	defer cancel()

	tracker := newDownloadTracker()
	chromedp.ListenTarget(waitCtx, tracker.handle)
	chromedp.ListenBrowser(waitCtx, tracker.handle)

	actions := append([]chromedp.Action{downloadBehavior(s.downloadDir)}, trigger...)
	if err := chromedp.Run(waitCtx, actions...); err != nil {
		return nil, fmt.Errorf("browser: trigger download: %w", err)
	}

	select {
	case err := <-tracker.done:
		if err != nil {
			return nil, err
		}
	case <-waitCtx.Done():
		return nil, fmt.Errorf("browser: wait for download: %w", waitCtx.Err())
	}

	guid, name := tracker.file()
	return s.collect(guid, name)
}

// collect reads a finished download saved under its GUID and deletes it.
func (s *Session) collect(guid, name string) (*Download, error) {
	path := filepath.Join(s.downloadDir, guid)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("browser: read download: %w", err)
	}
	if err := os.Remove(path); err != nil {
		s.logger.Warn("Failed to remove downloaded file", zap.String("path", path), zap.Error(err))
	}
	return &Download{Filename: filepath.Base(name), Data: data}, nil
}
