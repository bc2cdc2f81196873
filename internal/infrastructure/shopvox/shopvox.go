// Package shopvox reads and updates sales orders and jobs on ShopVox Express
// through the shared browser session.
package shopvox

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/orderbridge/backend/internal/infrastructure/browser"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the ShopVox Express site.
	DefaultBaseURL = "https://express.shopvox.com"
	// DefaultToOrderView lists sales orders tagged NOT ORDER YET.
	DefaultToOrderView = "/transactions/sales-orders?view=2225c6de-1500-414d-b393-1d0a5b098fef"

	defaultNavTimeout    = 45 * time.Second
	defaultActionTimeout = 15 * time.Second
)

// Config configures the ShopVox adapters.
type Config struct {
	BaseURL     string
	Email       string
	Password    string
	ToOrderView string
	// NavTimeout bounds one navigation, ActionTimeout one wait or click.
	NavTimeout    time.Duration
	ActionTimeout time.Duration
	// Stabilize bounds scrolling the virtualized sales-order list.
	Stabilize browser.StabilizeConfig
	Logger    *zap.Logger
}

func (c Config) withDefaults() Config {
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.ToOrderView == "" {
		c.ToOrderView = DefaultToOrderView
	}
	if c.NavTimeout <= 0 {
		c.NavTimeout = defaultNavTimeout
	}
	if c.ActionTimeout <= 0 {
		c.ActionTimeout = defaultActionTimeout
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

// url resolves a site path or href.
func (c Config) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.BaseURL + path
}

var (
	trailingNonWord = regexp.MustCompile(`[^\w\-]+$`)
	partTokens      = regexp.MustCompile(`[A-Za-z0-9\-]+`)
	nonNumeric      = regexp.MustCompile(`[^\d.\-]`)
	firstNumber     = regexp.MustCompile(`\d[\d,]*`)
)

// ParsePartCode extracts the vendor part number from a product line such as
// "Port & Company Core Cotton Tee - PC54".
func ParsePartCode(line string) string {
	if line == "" {
		return ""
	}
	if i := strings.LastIndex(line, " - "); i >= 0 {
		tail := strings.TrimSpace(line[i+len(" - "):])
		return trailingNonWord.ReplaceAllString(tail, "")
	}
	if tokens := partTokens.FindAllString(line, -1); len(tokens) > 0 {
		return tokens[len(tokens)-1]
	}
	return strings.TrimSpace(line)
}

// ParseQuantity reads a quantity field. Commas and other non-numeric
// characters are dropped; ok is false when nothing parseable remains.
func ParseQuantity(s string) (q decimal.Decimal, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	s = nonNumeric.ReplaceAllString(strings.ReplaceAll(s, ",", ""), "")
	q, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return q, true
}

// parseRowCount reads the first number of a "N rows" caption. ok is false when there is none.
func parseRowCount(caption string) (n int, ok bool) {
	m := firstNumber.FindString(caption)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return 0, false
	}
	return n, true
}
