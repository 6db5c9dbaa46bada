package autonomy

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// Base observation cadence per risk tier, in seconds.
const (
	cadenceHigh = 10
	cadenceMed  = 20
	cadenceLow  = 60

	cadenceRestricted = 5
	cadenceLimited    = 15
)

// Schedule derives the post-grant observation cadence and alert set from the
// risk tier and the resolved autonomy level. Pure function, no failure
// modes.
func Schedule(analysis Analysis, level AutonomyLevel) Monitoring {
	m := Monitoring{Enabled: true, Alerts: []string{}}
	switch analysis.RiskLevel {
	case RiskHigh:
		m.FrequencySeconds = cadenceHigh
	case RiskMedium:
		m.FrequencySeconds = cadenceMed
	default:
		m.FrequencySeconds = cadenceLow
	}

	switch level {
	case AutonomyRestricted:
		m.FrequencySeconds = cadenceRestricted
		m.Alerts = append(m.Alerts, "restricted autonomy: observation tightened to 5s")
	case AutonomyLimited:
		if m.FrequencySeconds > cadenceLimited {
			m.FrequencySeconds = cadenceLimited
			m.Alerts = append(m.Alerts, "limited autonomy: observation tightened to 15s")
		}
	}
	return m
}

// CheckFunc is one observation pass over a running autonomous process.
type CheckFunc func(ctx context.Context) error

// Runner executes scheduled observation checks at the monitoring cadence
// until the context is canceled. Failed checks are logged and counted, not
// fatal; the process they observe is stopped by the caller, not the runner.
type Runner struct {
	logger *slog.Logger
}

// NewRunner constructs a monitoring runner.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger}
}

// Run paces check over the monitoring schedule. Returns the context error
// on cancellation, nil when monitoring is disabled.
func (r *Runner) Run(ctx context.Context, m Monitoring, check CheckFunc) error {
	if !m.Enabled || m.FrequencySeconds <= 0 {
		return nil
	}
	limiter := rate.NewLimiter(rate.Every(time.Duration(m.FrequencySeconds)*time.Second), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		if err := check(ctx); err != nil {
			r.logger.Warn("monitoring check failed", "error", err, "alerts", m.Alerts)
		}
	}
}
