// internal/storefront/visits.go
package storefront

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultVisitTimeout = 3 * time.Second

// VisitAPI records storefront visits
type VisitAPI interface {
	TrackVisit(ctx context.Context) error
}

// VisitTracker fires visit counts without blocking the caller
type VisitTracker struct {
	api     VisitAPI
	timeout time.Duration
	log     logrus.FieldLogger
}

// NewVisitTracker creates a tracker; timeout <= 0 uses a short default
func NewVisitTracker(api VisitAPI, timeout time.Duration, log logrus.FieldLogger) *VisitTracker {
	if timeout <= 0 {
		timeout = defaultVisitTimeout
	}
	return &VisitTracker{api: api, timeout: timeout, log: log}
}

// Track sends one visit in the background. Failures are only logged at debug
// level. The returned channel closes when the call finished.
func (t *VisitTracker) Track() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()
		if err := t.api.TrackVisit(ctx); err != nil {
			t.log.WithError(err).Debug("visit not recorded")
		}
	}()
	return done
}
