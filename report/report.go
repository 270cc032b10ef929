// Package report delivers operator-visible anomaly messages without
// interrupting the calling request path.
package report

import (
	"github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
)

// Reporter accepts messages describing conditions that operators
// should see but that must never fail the caller.
type Reporter interface {
	Report(message string)
}

// SentryReporter forwards messages to Sentry. The Sentry client is
// process-global and must be initialized before use.
type SentryReporter struct{}

// NewSentry initializes the global Sentry client and returns a
// reporter that captures messages through it.
func NewSentry(dsn string) (*SentryReporter, error) {
	err := sentry.Init(sentry.ClientOptions{Dsn: dsn})
	if err != nil {
		return nil, err
	}
	return &SentryReporter{}, nil
}

// Report captures the message as a Sentry event and logs it locally.
func (r *SentryReporter) Report(message string) {
	sentry.CaptureMessage(message)
	log.Warn(message)
}

// LogReporter writes messages to the process log only. It is the
// fallback when no Sentry DSN is configured, and the default in tests.
type LogReporter struct{}

// Report logs the message at warning level.
func (r *LogReporter) Report(message string) {
	log.Warn(message)
}
