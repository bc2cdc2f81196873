package browser

import (
	"context"
	"errors"
	"time"
)

// ErrUnstable is returned with the last count when the poll ceiling is hit.
var ErrUnstable = errors.New("browser: list did not stabilize")

// StabilizeConfig bounds polling of a lazily rendered list.
type StabilizeConfig struct {
	// StablePolls is how many consecutive repeats of the same count end polling.
	StablePolls int
	Interval    time.Duration
	// MaxPolls is the ceiling on count reads.
	MaxPolls int
}

// DefaultStabilizeConfig returns 2 repeats, 200ms apart, at most 60 reads.
func DefaultStabilizeConfig() StabilizeConfig {
	return StabilizeConfig{StablePolls: 2, Interval: 200 * time.Millisecond, MaxPolls: 60}
}

func (c StabilizeConfig) withDefaults() StabilizeConfig {
	d := DefaultStabilizeConfig()
	if c.StablePolls <= 0 {
		c.StablePolls = d.StablePolls
	}
	if c.Interval < 0 {
		c.Interval = 0
	}
	if c.MaxPolls <= 0 {
		c.MaxPolls = d.MaxPolls
	}
	return c
}

// Stabilize reads count until it repeats StablePolls times in a row, calling
// advance (typically a scroll) between reads. An advance error is not fatal.
func Stabilize(ctx context.Context, cfg StabilizeConfig, count func(context.Context) (int, error), advance func(context.Context) error) (int, error) {
	cfg = cfg.withDefaults()

	seen, stable := -1, 0
	for poll := 1; ; poll++ {
		n, err := count(ctx)
		if err != nil {
			return 0, err
		}
		if n == seen {
			stable++
		} else {
			stable = 0
			seen = n
		}
		if stable >= cfg.StablePolls {
			return n, nil
		}
		if poll >= cfg.MaxPolls {
			return n, ErrUnstable
		}
		if advance != nil {
			_ = advance(ctx)
		}
		if err := Pause(ctx, cfg.Interval); err != nil {
			return n, err
		}
	}
}
