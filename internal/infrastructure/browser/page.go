package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

type pageKey struct{}

// WithPage attaches a chromedp tab context to ctx.
func WithPage(ctx context.Context, page context.Context) context.Context {
	return context.WithValue(ctx, pageKey{}, page)
}

// Page returns the tab context carried by ctx. A ctx that is itself a
// chromedp context is returned as is.
func Page(ctx context.Context) context.Context {
	if page, ok := ctx.Value(pageKey{}).(context.Context); ok {
		return page
	}
	if chromedp.FromContext(ctx) != nil {
		return ctx
	}
	return nil
}

// Run executes actions on the page in ctx, bounded by timeout when positive.
func Run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	page := Page(ctx)
	if page == nil {
		return ErrNoPage
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		page, cancel = context.WithTimeout(page, timeout)
		defer cancel()
	}
	return chromedp.Run(page, actions...)
}

// Evaluate runs script on the page and decodes its JSON-able result into out.
func Evaluate(ctx context.Context, timeout time.Duration, script string, out any) error {
	return Run(ctx, timeout, chromedp.Evaluate(script, out))
}

// Exists reports whether selector matches at least one element right now.
func Exists(ctx context.Context, timeout time.Duration, selector string) (bool, error) {
	var found bool
	err := Evaluate(ctx, timeout, fmt.Sprintf(`document.querySelector(%s) !== null`, jsString(selector)), &found)
	return found, err
}

// Visible reports whether selector matches an element that is rendered.
func Visible(ctx context.Context, timeout time.Duration, selector string) (bool, error) {
	var visible bool
	err := Evaluate(ctx, timeout, VisibleExpr(fmt.Sprintf("document.querySelector(%s)", jsString(selector))), &visible)
	return visible, err
}

// VisibleExpr wraps a finder expression into one that reports whether the
// element it yields is rendered.
func VisibleExpr(finder string) string {
	return fmt.Sprintf(`(() => {
		const el = %s;
		if (!el) return false;
		const r = el.getBoundingClientRect();
		const s = window.getComputedStyle(el);
		return r.width > 0 && r.height > 0 && s.visibility !== 'hidden' && s.display !== 'none';
	})()`, finder)
}

// TargetAttr tags elements picked by a script so chromedp actions can address them.
const TargetAttr = "data-orderbridge-target"

// MarkFirst evaluates finder, a JS expression yielding an Element or null, and
// tags the result with name. It returns a selector for the tagged element;
// ok is false when finder found nothing. Earlier holders of name are untagged.
func MarkFirst(ctx context.Context, timeout time.Duration, name, finder string) (selector string, ok bool, err error) {
	script := fmt.Sprintf(`(() => {
		document.querySelectorAll('[%[1]s=' + JSON.stringify(%[2]s) + ']').forEach(e => e.removeAttribute(%[3]s));
		const el = (%[4]s);
		if (!el) return false;
		el.setAttribute(%[3]s, %[2]s);
		return true;
	})()`, TargetAttr, jsString(name), jsString(TargetAttr), finder)

	if err := Evaluate(ctx, timeout, script, &ok); err != nil {
		return "", false, err
	}
	return fmt.Sprintf("[%s=%s]", TargetAttr, jsString(name)), ok, nil
}

// ClickNavigate clicks selector and waits for the navigation it starts.
// A click that does not navigate within timeout is tolerated after a short pause.
func ClickNavigate(ctx context.Context, timeout time.Duration, selector string) error {
	page := Page(ctx)
	if page == nil {
		return ErrNoPage
	}
	navCtx, cancel := context.WithTimeout(page, timeout)
	defer cancel()

	_, err := chromedp.RunResponse(navCtx, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) && page.Err() == nil {
		return Pause(ctx, 300*time.Millisecond)
	}
	return err
}

// Fill replaces the value of an input by clearing it and typing text.
func Fill(ctx context.Context, timeout time.Duration, selector, text string) error {
	return Run(ctx, timeout,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.ScrollIntoView(selector, chromedp.ByQuery),
		chromedp.SetValue(selector, "", chromedp.ByQuery),
		chromedp.SendKeys(selector, text, chromedp.ByQuery),
	)
}

// WaitTrue polls expression until it evaluates truthy or timeout elapses.
func WaitTrue(ctx context.Context, timeout time.Duration, expression string) error {
	var ok bool
	return Run(ctx, timeout+time.Second, chromedp.Poll(expression, &ok,
		chromedp.WithPollingInterval(100*time.Millisecond),
		chromedp.WithPollingTimeout(timeout),
	))
}

// FindText returns a finder expression for the first element matching
// selector whose text contains text.
func FindText(selector, text string) string {
	return fmt.Sprintf(`(Array.from(document.querySelectorAll(%s)).find(e => (e.textContent || '').includes(%s)) || null)`,
		jsString(selector), jsString(text))
}

// FindFirst returns a finder expression for the first element matching any
// of selectors, tried in order.
func FindFirst(selectors ...string) string {
	parts := make([]string, 0, len(selectors)+1)
	for _, sel := range selectors {
		parts = append(parts, fmt.Sprintf("document.querySelector(%s)", jsString(sel)))
	}
	parts = append(parts, "null")
	return "(" + strings.Join(parts, " || ") + ")"
}

// Location returns the current URL of the page.
func Location(ctx context.Context, timeout time.Duration) (string, error) {
	var url string
	err := Run(ctx, timeout, chromedp.Location(&url))
	return url, err
}

// Pause waits d or until ctx is done.
func Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// JSString quotes s for embedding in scripts built by adapters.
func JSString(s string) string { return jsString(s) }
