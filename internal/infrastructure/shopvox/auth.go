package shopvox

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	fulfillmentapp "github.com/orderbridge/backend/internal/application/fulfillment"
	"github.com/orderbridge/backend/internal/domain/shared"
	"github.com/orderbridge/backend/internal/infrastructure/browser"
	"go.uber.org/zap"
)

const (
	signInPath   = "/sign-in"
	signInSubmit = "button.css-xdirqf"
	otpInput     = "#otpCode-input"
	mfaPrompt    = 5 * time.Second
)

var (
	signInErrors = []string{
		".css-oto7dz",
		"[data-testid='error'], .error, .alert-danger",
		"#email-field-wrapper.field-has-error",
		"#password-field-wrapper.field-has-error",
	}
	mfaErrors = []string{
		".css-oto7dz",
		"[data-testid='error'], .error, .alert-danger",
		"#otpCode-field-wrapper.field-has-error",
	}
)

const trustDeviceJS = `(() => {
	const box = document.querySelector('input[name="trustDevice"]');
	if (box && !box.checked) box.click();
	return true;
})()`

// ErrMissingCredentials is returned when no ShopVox email or password is configured.
var ErrMissingCredentials = shared.NewDomainError("INVALID_INPUT", "Missing SHOPVOX_EMAIL or SHOPVOX_PASSWORD in environment (.env)")

// Authenticator signs the browser profile into ShopVox. Sign-in and MFA
// share one long-lived page so the MFA step continues the pending sign-in.
type Authenticator struct {
	cfg   Config
	pages fulfillmentapp.PageProvider

	mu        sync.Mutex
	page      context.Context
	closePage context.CancelFunc
}

// NewAuthenticator creates a new Authenticator
func NewAuthenticator(cfg Config, pages fulfillmentapp.PageProvider) *Authenticator {
	return &Authenticator{cfg: cfg.withDefaults(), pages: pages}
}

// SignIn submits the configured credentials and reports where the page ended up.
func (a *Authenticator) SignIn(ctx context.Context) (*fulfillmentapp.AuthResult, error) {
	if a.cfg.Email == "" || a.cfg.Password == "" {
		return nil, ErrMissingCredentials
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	ctx, err := a.loginPage(ctx)
	if err != nil {
		return nil, err
	}

	if err := browser.Run(ctx, a.cfg.NavTimeout, chromedp.Navigate(a.cfg.url(signInPath))); err != nil {
		return nil, fmt.Errorf("open sign-in: %w", err)
	}
	if err := browser.Fill(ctx, a.cfg.ActionTimeout, "#email-input", a.cfg.Email); err != nil {
		return nil, fmt.Errorf("fill email: %w", err)
	}
	if err := browser.Fill(ctx, a.cfg.ActionTimeout, "#password-input", a.cfg.Password); err != nil {
		return nil, fmt.Errorf("fill password: %w", err)
	}
	// MFA keeps the page on /sign-in, so the click does not wait for navigation
	if err := browser.Run(ctx, a.cfg.ActionTimeout, chromedp.Click(signInSubmit, chromedp.ByQuery, chromedp.NodeVisible)); err != nil {
		return nil, fmt.Errorf("submit sign-in: %w", err)
	}

	if err := browser.WaitTrue(ctx, mfaPrompt, browser.VisibleExpr(browser.FindFirst(otpInput))); err == nil {
		url, _ := browser.Location(ctx, a.cfg.ActionTimeout)
		return &fulfillmentapp.AuthResult{Status: fulfillmentapp.AuthStatusMFARequired, Message: "MFA code requested", URL: url}, nil
	}

	url, err := browser.Location(ctx, a.cfg.ActionTimeout)
	if err != nil {
		return nil, fmt.Errorf("read location: %w", err)
	}
	if !strings.Contains(url, signInPath) {
		return &fulfillmentapp.AuthResult{Status: fulfillmentapp.AuthStatusOK, Message: "Logged in", URL: url}, nil
	}
	if msg, found := a.inlineError(ctx, signInErrors); found {
		return &fulfillmentapp.AuthResult{Status: fulfillmentapp.AuthStatusError, Message: msg, URL: url}, nil
	}
	return &fulfillmentapp.AuthResult{
		Status:  fulfillmentapp.AuthStatusPending,
		Message: "Awaiting server response (no MFA UI or redirect yet)",
		URL:     url,
	}, nil
}

// SubmitMFA enters code on the pending sign-in and waits up to timeout for
// the page to leave /sign-in.
func (a *Authenticator) SubmitMFA(ctx context.Context, code string, trustDevice bool, timeout time.Duration) (*fulfillmentapp.AuthResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.page == nil || a.page.Err() != nil {
		return &fulfillmentapp.AuthResult{
			Status:  fulfillmentapp.AuthStatusError,
			Message: "No sign-in in progress; request a sign-in first",
		}, nil
	}
	ctx = browser.WithPage(ctx, a.page)

	url, err := browser.Location(ctx, a.cfg.ActionTimeout)
	if err != nil {
		return nil, fmt.Errorf("read location: %w", err)
	}
	if !strings.Contains(url, signInPath) {
		return &fulfillmentapp.AuthResult{Status: fulfillmentapp.AuthStatusOK, Message: "Already signed in", URL: url}, nil
	}

	if err := browser.WaitTrue(ctx, timeout, browser.VisibleExpr(browser.FindFirst(otpInput))); err != nil {
		return nil, fmt.Errorf("wait for MFA code input: %w", err)
	}
	if err := browser.Fill(ctx, a.cfg.ActionTimeout, otpInput, code); err != nil {
		return nil, fmt.Errorf("fill MFA code: %w", err)
	}
	if trustDevice {
		var ok bool
		if err := browser.Evaluate(ctx, a.cfg.ActionTimeout, trustDeviceJS, &ok); err != nil {
			a.cfg.Logger.Debug("Trust device checkbox not set", zap.Error(err))
		}
	}
	if err := browser.Run(ctx, a.cfg.ActionTimeout, chromedp.Click(signInSubmit, chromedp.ByQuery, chromedp.NodeVisible)); err != nil {
		return nil, fmt.Errorf("submit MFA code: %w", err)
	}

	left := fmt.Sprintf("!location.href.includes(%s)", browser.JSString(signInPath))
	if err := browser.WaitTrue(ctx, timeout, left); err == nil {
		url, _ = browser.Location(ctx, a.cfg.ActionTimeout)
		return &fulfillmentapp.AuthResult{Status: fulfillmentapp.AuthStatusOK, Message: "MFA accepted", URL: url}, nil
	}

	url, _ = browser.Location(ctx, a.cfg.ActionTimeout)
	if msg, found := a.inlineError(ctx, mfaErrors); found {
		return &fulfillmentapp.AuthResult{Status: fulfillmentapp.AuthStatusError, Message: msg, URL: url}, nil
	}
	return &fulfillmentapp.AuthResult{
		Status:  fulfillmentapp.AuthStatusPending,
		Message: "Submission received; still waiting on server",
		URL:     url,
	}, nil
}

// Close releases the sign-in page.
func (a *Authenticator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closePage != nil {
		a.closePage()
	}
	a.page, a.closePage = nil, nil
}

// loginPage attaches the long-lived sign-in page to ctx, opening it if needed.
// Callers hold a.mu.
func (a *Authenticator) loginPage(ctx context.Context) (context.Context, error) {
	if a.page != nil && a.page.Err() == nil {
		return browser.WithPage(ctx, a.page), nil
	}
	pageCtx, closePage, err := a.pages.NewPage(context.WithoutCancel(ctx))
	if err != nil {
		return nil, fmt.Errorf("open browser page: %w", err)
	}
	a.page = browser.Page(pageCtx)
	a.closePage = closePage
	return browser.WithPage(ctx, a.page), nil
}

// inlineError returns the text of the first visible error element.
func (a *Authenticator) inlineError(ctx context.Context, selectors []string) (string, bool) {
	quoted := make([]string, len(selectors))
	for i, s := range selectors {
		quoted[i] = browser.JSString(s)
	}
	script := fmt.Sprintf(`(() => {
		for (const sel of [%s]) {
			const el = document.querySelector(sel);
			if (!el) continue;
			const r = el.getBoundingClientRect();
			if (r.width > 0 && r.height > 0) return {found: true, text: (el.innerText || '').trim()};
		}
		return {found: false, text: ''};
	})()`, strings.Join(quoted, ", "))

	var res struct {
		Found bool   `json:"found"`
		Text  string `json:"text"`
	}
	if err := browser.Evaluate(ctx, a.cfg.ActionTimeout, script, &res); err != nil {
		return "", false
	}
	return res.Text, res.Found
}
