package report

import (
	"strings"
	"testing"
	"time"

	"civicsim/internal/domain"
)

func ptr(t time.Time) *time.Time { return &t }

func TestSummarize_RunningRatesAndUptime(t *testing.T) {
	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	now := start.Add(2 * time.Hour)
	snap := domain.Snapshot{
		Posting: true,
		Accounts: []domain.Account{
			{Persona: domain.Persona{Type: "retiree"}},
			{Persona: domain.Persona{Type: "retiree"}},
			{Persona: domain.Persona{Type: "libertarian"}},
		},
		Statistics: domain.Statistics{
			PostsCreated:    10,
			Engagements:     25,
			AccountsCreated: 3,
			StartTime:       ptr(start),
			LastPost:        ptr(now.Add(-time.Minute)),
		},
	}

	s := Summarize(snap, now, 5, 20)
	if s.UptimeSeconds != 7200 {
		t.Fatalf("expected 7200s uptime, got %.0f", s.UptimeSeconds)
	}
	if s.PostsPerHour != 5 || s.EngagementsPerHour != 12.5 {
		t.Fatalf("unexpected rates posts=%.2f engagements=%.2f", s.PostsPerHour, s.EngagementsPerHour)
	}
	if s.PersonaMix["retiree"] != 2 || s.PersonaMix["libertarian"] != 1 {
		t.Fatalf("unexpected persona mix %+v", s.PersonaMix)
	}
}

func TestSummarize_StoppedUsesLastPostWindow(t *testing.T) {
	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	snap := domain.Snapshot{
		Statistics: domain.Statistics{
			PostsCreated: 4,
			StartTime:    ptr(start),
			LastPost:     ptr(start.Add(4 * time.Hour)),
		},
	}
	s := Summarize(snap, start.Add(48*time.Hour), 5, 20)
	if s.UptimeSeconds != 0 {
		t.Fatalf("expected no uptime while stopped, got %.0f", s.UptimeSeconds)
	}
	if s.PostsPerHour != 1 {
		t.Fatalf("expected 1 post/hour, got %.2f", s.PostsPerHour)
	}
}

func TestSummarize_CountsOnlyTodaysCappedAccounts(t *testing.T) {
	now := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
	snap := domain.Snapshot{
		DailyUsage: map[string]domain.DailyUsage{
			"a": {Day: "2024-05-02", Posts: 5, Engagements: 3},
			"b": {Day: "2024-05-02", Posts: 1, Engagements: 20},
			"c": {Day: "2024-05-01", Posts: 9, Engagements: 99},
		},
	}
	s := Summarize(snap, now, 5, 20)
	if s.AccountsAtPostCap != 1 || s.AccountsAtEngagementCap != 1 {
		t.Fatalf("unexpected capped counts %+v", s)
	}

	unlimited := Summarize(snap, now, 0, 0)
	if unlimited.AccountsAtPostCap != 0 || unlimited.AccountsAtEngagementCap != 0 {
		t.Fatalf("expected no capped accounts without caps, got %+v", unlimited)
	}
}

func TestSummary_Text(t *testing.T) {
	s := Summarize(domain.Snapshot{
		Accounts: []domain.Account{{Persona: domain.Persona{Type: "young_activist"}}},
	}, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), 5, 20)
	out := s.Text()
	for _, want := range []string{"status:            stopped", "start time:        -", "young_activist", "2024-05-02"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}
