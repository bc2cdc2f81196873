package browser

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, defaultUserDataDir, s.config.UserDataDir)
	assert.Equal(t, defaultNavTimeout, s.NavTimeout())
	assert.Equal(t, defaultActionTimeout, s.ActionTimeout())
	assert.True(t, s.ownsDownloads)
	assert.DirExists(t, s.downloadDir)
	assert.Equal(t, 0, s.OpenPages())
}

func TestNew_DownloadDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	s, err := New(&Config{DownloadDir: dir, RemoteURL: "ws://127.0.0.1:9222"})
	require.NoError(t, err)

	assert.DirExists(t, dir)
	require.NoError(t, s.Close())
	assert.DirExists(t, dir, "configured download dir is not ours to remove")
}

func TestSession_Close(t *testing.T) {
	s, err := New(&Config{Headless: true})
	require.NoError(t, err)
	dir := s.downloadDir

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.NoDirExists(t, dir)

	_, _, err = s.NewPage(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Alive(context.Background()), ErrClosed)
}

func TestSession_AliveBeforeStart(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)
	defer s.Close()

	assert.ErrorIs(t, s.Alive(context.Background()), ErrNotStarted)
}

func TestIsPopup(t *testing.T) {
	assert.True(t, isPopup(&target.Info{Type: "page", OpenerID: "A1"}))
	assert.False(t, isPopup(&target.Info{Type: "page"}))
	assert.False(t, isPopup(&target.Info{Type: "service_worker", OpenerID: "A1"}))
	assert.False(t, isPopup(nil))
}

type testKey struct{}

func TestPageContext(t *testing.T) {
	assert.Nil(t, Page(context.Background()))
	assert.ErrorIs(t, Run(context.Background(), time.Second), ErrNoPage)

	page := context.WithValue(context.Background(), testKey{}, "tab")
	ctx := WithPage(context.Background(), page)
	assert.Equal(t, page, Page(ctx))
}

func TestPause(t *testing.T) {
	require.NoError(t, Pause(context.Background(), 0))
	require.NoError(t, Pause(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Pause(ctx, time.Hour), context.Canceled)
}

func TestJSString(t *testing.T) {
	assert.Equal(t, `"a[href^='/x']"`, JSString("a[href^='/x']"))
	assert.Equal(t, `"say \"hi\""`, JSString(`say "hi"`))
}

func TestFinders(t *testing.T) {
	assert.Equal(t,
		`(document.querySelector("#a") || document.querySelector(".b") || null)`,
		FindFirst("#a", ".b"))
	assert.Equal(t, `(null)`, FindFirst())
	assert.Equal(t,
		`(Array.from(document.querySelectorAll("span")).find(e => (e.textContent || '').includes("Jobs")) || null)`,
		FindText("span", "Jobs"))
}

func TestDownloadTracker(t *testing.T) {
	t.Run("completes the first download only", func(t *testing.T) {
		tr := newDownloadTracker()
		tr.handle(&browser.EventDownloadWillBegin{GUID: "g1", SuggestedFilename: "jobs.pdf"})
		tr.handle(&browser.EventDownloadWillBegin{GUID: "g2", SuggestedFilename: "other.pdf"})
		tr.handle(&browser.EventDownloadProgress{GUID: "g2", State: browser.DownloadProgressStateCompleted})

		select {
		case <-tr.done:
			t.Fatal("completion of another download must be ignored")
		default:
		}

		tr.handle(&browser.EventDownloadProgress{GUID: "g1", State: browser.DownloadProgressStateInProgress})
		tr.handle(&browser.EventDownloadProgress{GUID: "g1", State: browser.DownloadProgressStateCompleted})
		tr.handle(&browser.EventDownloadProgress{GUID: "g1", State: browser.DownloadProgressStateCompleted})

		require.NoError(t, <-tr.done)
		guid, name := tr.file()
		assert.Equal(t, "g1", guid)
		assert.Equal(t, "jobs.pdf", name)
	})

	t.Run("canceled download", func(t *testing.T) {
		tr := newDownloadTracker()
		tr.handle(&browser.EventDownloadWillBegin{GUID: "g1"})
		tr.handle(&browser.EventDownloadProgress{GUID: "g1", State: browser.DownloadProgressStateCanceled})

		assert.ErrorIs(t, <-tr.done, ErrDownloadCanceled)
		_, name := tr.file()
		assert.Equal(t, "g1", name)
	})

	t.Run("progress before begin is ignored", func(t *testing.T) {
		tr := newDownloadTracker()
		tr.handle(&browser.EventDownloadProgress{GUID: "g1", State: browser.DownloadProgressStateCompleted})
		assert.Len(t, tr.done, 0)
	})
}

func TestSession_Collect(t *testing.T) {
	dir := t.TempDir()
	s, err := New(&Config{DownloadDir: dir})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "g1"), []byte("%PDF-1.7"), 0o600))

	d, err := s.collect("g1", "../Overdue Jobs.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Overdue Jobs.pdf", d.Filename)
	assert.Equal(t, []byte("%PDF-1.7"), d.Data)
	assert.NoFileExists(t, filepath.Join(dir, "g1"))

	_, err = s.collect("missing", "x.pdf")
	assert.Error(t, err)
}
