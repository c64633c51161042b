package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"civicsim/internal/domain"
)

const dayLayout = "2006-01-02"

type Summary struct {
	Posting                 bool           `json:"posting"`
	Accounts                int            `json:"accounts"`
	PostsCreated            int            `json:"posts_created"`
	Engagements             int            `json:"engagements"`
	AccountsCreated         int            `json:"accounts_created"`
	StartTime               *time.Time     `json:"start_time,omitempty"`
	LastPost                *time.Time     `json:"last_post,omitempty"`
	UptimeSeconds           float64        `json:"uptime_seconds"`
	PostsPerHour            float64        `json:"posts_per_hour"`
	EngagementsPerHour      float64        `json:"engagements_per_hour"`
	PersonaMix              map[string]int `json:"persona_mix"`
	Day                     string         `json:"day"`
	AccountsAtPostCap       int            `json:"accounts_at_post_cap"`
	AccountsAtEngagementCap int            `json:"accounts_at_engagement_cap"`
}

// Summarize derives operator-facing metrics from a snapshot. Caps <= 0 are
// treated as unlimited and never count an account as capped.
func Summarize(snap domain.Snapshot, now time.Time, maxDailyPosts, maxDailyEngagements int) Summary {
	s := Summary{
		Posting:         snap.Posting,
		Accounts:        len(snap.Accounts),
		PostsCreated:    snap.Statistics.PostsCreated,
		Engagements:     snap.Statistics.Engagements,
		AccountsCreated: snap.Statistics.AccountsCreated,
		StartTime:       snap.Statistics.StartTime,
		LastPost:        snap.Statistics.LastPost,
		PersonaMix:      make(map[string]int),
		Day:             now.Format(dayLayout),
	}
	for _, a := range snap.Accounts {
		s.PersonaMix[a.Persona.Type]++
	}

	if snap.Posting && snap.Statistics.StartTime != nil {
		s.UptimeSeconds = math.Max(0, now.Sub(*snap.Statistics.StartTime).Seconds())
	}
	if hours := activeWindow(snap, now).Hours(); hours > 0 {
		s.PostsPerHour = round2(float64(s.PostsCreated) / hours)
		s.EngagementsPerHour = round2(float64(s.Engagements) / hours)
	}

	for _, u := range snap.DailyUsage {
		if u.Day != s.Day {
			continue
		}
		if maxDailyPosts > 0 && u.Posts >= maxDailyPosts {
			s.AccountsAtPostCap++
		}
		if maxDailyEngagements > 0 && u.Engagements >= maxDailyEngagements {
			s.AccountsAtEngagementCap++
		}
	}
	return s
}

// activeWindow is the span the counters accumulated over: start until now
// while running, start until the last post once stopped.
func activeWindow(snap domain.Snapshot, now time.Time) time.Duration {
	start := snap.Statistics.StartTime
	if start == nil {
		return 0
	}
	end := now
	if !snap.Posting {
		if snap.Statistics.LastPost == nil {
			return 0
		}
		end = *snap.Statistics.LastPost
	}
	if !end.After(*start) {
		return 0
	}
	return end.Sub(*start)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Text renders the summary for terminal output.
func (s Summary) Text() string {
	var b strings.Builder
	status := "stopped"
	if s.Posting {
		status = "running"
	}
	fmt.Fprintf(&b, "status:            %s\n", status)
	fmt.Fprintf(&b, "accounts:          %d\n", s.Accounts)
	fmt.Fprintf(&b, "accounts created:  %d\n", s.AccountsCreated)
	fmt.Fprintf(&b, "posts created:     %d\n", s.PostsCreated)
	fmt.Fprintf(&b, "engagements:       %d\n", s.Engagements)
	fmt.Fprintf(&b, "start time:        %s\n", formatTime(s.StartTime))
	fmt.Fprintf(&b, "last post:         %s\n", formatTime(s.LastPost))
	if s.Posting {
		fmt.Fprintf(&b, "uptime:            %s\n", (time.Duration(s.UptimeSeconds) * time.Second).String())
	}
	fmt.Fprintf(&b, "posts/hour:        %.2f\n", s.PostsPerHour)
	fmt.Fprintf(&b, "engagements/hour:  %.2f\n", s.EngagementsPerHour)
	fmt.Fprintf(&b, "capped today (%s): posts=%d engagements=%d\n", s.Day, s.AccountsAtPostCap, s.AccountsAtEngagementCap)

	if len(s.PersonaMix) > 0 {
		types := make([]string, 0, len(s.PersonaMix))
		for t := range s.PersonaMix {
			types = append(types, t)
		}
		sort.Strings(types)
		b.WriteString("persona mix:\n")
		for _, t := range types {
			fmt.Fprintf(&b, "  %-22s %d\n", t, s.PersonaMix[t])
		}
	}
	return b.String()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.RFC3339)
}
