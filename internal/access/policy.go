// Package access decides whether a viewer may watch a video.
//
// The decision is computed from durable entitlement facts (free flag,
// publisher subscription, unlocked periods) and is a first-class outcome,
// not an error: every denial variant carries its own remediation path.
package access

import (
	"coursecast/internal/media"
)

// EntitlementSource answers the two viewer-entitlement questions the
// evaluator asks. Implementations must be read-only; lookup failures are
// reported as the negative answer (fail closed), keeping evaluation total.
type EntitlementSource interface {
	// SubscriptionActive reports whether the viewer holds an active
	// subscription to the publisher.
	SubscriptionActive(viewerID, publisherID string) bool

	// UnlockedPeriods returns the set of period indexes the publisher has
	// unlocked for the viewer.
	UnlockedPeriods(viewerID, publisherID string) map[int]bool
}

// Evaluator computes access decisions against one entitlement source.
type Evaluator struct {
	source EntitlementSource
}

// NewEvaluator creates an evaluator backed by the given source.
func NewEvaluator(source EntitlementSource) *Evaluator {
	return &Evaluator{source: source}
}

// Evaluate returns the access decision for a viewer and a video.
// viewerID is "" for anonymous viewers; video is nil when the catalog
// lookup found nothing.
//
// Checks short-circuit in a fixed order (free flag, then login, then
// subscription, then period) so a denial always names the first unmet
// precondition rather than a downstream one.
func (e *Evaluator) Evaluate(video *media.VideoRecord, viewerID string) media.AccessDecision {
	if video == nil {
		return media.AccessNotFound
	}

	if video.IsFree {
		return media.AccessGranted
	}

	if viewerID == "" {
		return media.AccessLoginRequired
	}

	if !e.source.SubscriptionActive(viewerID, video.PublisherID) {
		return media.AccessSubscriptionRequired
	}

	// A paid video without a period is malformed catalog data; locked
	// rather than open.
	if video.UnlockPeriod == nil {
		return media.AccessPeriodLocked
	}

	unlocked := e.source.UnlockedPeriods(viewerID, video.PublisherID)
	if !unlocked[*video.UnlockPeriod] {
		return media.AccessPeriodLocked
	}

	return media.AccessGranted
}
