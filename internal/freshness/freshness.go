// Package freshness decides whether a cached collection may be served
// without contacting the remote sheet.
package freshness

import (
	"time"

	"github.com/rcliao/kandang/internal/model"
)

// DefaultExpiry is how long a full fetch is trusted. Fixed at build time.
const DefaultExpiry = 5 * time.Minute

// Clock returns the current time.
type Clock func() time.Time

// SystemClock is the wall clock.
func SystemClock() time.Time { return time.Now() }

// IsFresh reports whether now - meta.LastFetch < window.
// Absent metadata or an absent fetch time is never fresh.
func IsFresh(meta *model.Metadata, now time.Time, window time.Duration) bool {
	if meta == nil || meta.LastFetch == nil {
		return false
	}
	return now.Sub(*meta.LastFetch) < window
}

// Policy binds the expiry window to a clock.
type Policy struct {
	Window time.Duration
	Clock  Clock
}

// Default returns the deployment policy: DefaultExpiry on the system clock.
func Default() Policy {
	return Policy{Window: DefaultExpiry, Clock: SystemClock}
}

func (p Policy) now() time.Time {
	if p.Clock == nil {
		return time.Now()
	}
	return p.Clock()
}

// Fresh applies IsFresh at the policy's current time.
func (p Policy) Fresh(meta *model.Metadata) bool {
	return IsFresh(meta, p.now(), p.Window)
}

// ExpiresIn returns the remaining trust period, zero once stale.
func (p Policy) ExpiresIn(meta *model.Metadata) time.Duration {
	if meta == nil || meta.LastFetch == nil {
		return 0
	}
	left := p.Window - p.now().Sub(*meta.LastFetch)
	if left < 0 {
		return 0
	}
	return left
}
