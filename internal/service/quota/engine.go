package quota

import (
	"civicsim/internal/domain"
)

const (
	DenyPostCap       = "daily_post_cap_reached"
	DenyEngagementCap = "daily_engagement_cap_reached"
	DenyUnknownKind   = "activity_kind_unknown"
)

// Engine applies per-account daily caps. A cap <= 0 means unlimited.
type Engine struct {
	maxDailyPosts       int
	maxDailyEngagements int
}

func NewEngine(maxDailyPosts, maxDailyEngagements int) *Engine {
	return &Engine{
		maxDailyPosts:       maxDailyPosts,
		maxDailyEngagements: maxDailyEngagements,
	}
}

func (e *Engine) Evaluate(kind domain.ActivityKind, usage domain.DailyUsage) domain.QuotaDecision {
	switch kind {
	case domain.ActivityPost:
		if e.maxDailyPosts > 0 && usage.Posts >= e.maxDailyPosts {
			return domain.QuotaDecision{Allowed: false, DenyReason: DenyPostCap}
		}
	case domain.ActivityEngagement:
		if e.maxDailyEngagements > 0 && usage.Engagements >= e.maxDailyEngagements {
			return domain.QuotaDecision{Allowed: false, DenyReason: DenyEngagementCap}
		}
	default:
		return domain.QuotaDecision{Allowed: false, DenyReason: DenyUnknownKind}
	}
	return domain.QuotaDecision{Allowed: true}
}

// Limits returns the configured caps as (posts, engagements).
func (e *Engine) Limits() (int, int) {
	return e.maxDailyPosts, e.maxDailyEngagements
}
