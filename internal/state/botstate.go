// Package state holds the durable bot aggregate: provisioned accounts, the
// posting flag, and cumulative statistics. Every mutation is persisted
// before it returns.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"civicsim/internal/domain"
	"civicsim/internal/security/secretbox"
	"civicsim/internal/store"
)

const dayLayout = "2006-01-02"

// DayKey is the calendar day used for daily usage buckets.
func DayKey(t time.Time) string {
	return t.Format(dayLayout)
}

type BotState struct {
	mu     sync.Mutex
	store  store.Store
	box    *secretbox.Box
	logger *zap.Logger
	snap   domain.Snapshot
}

type Option func(*BotState)

func WithLogger(logger *zap.Logger) Option {
	return func(s *BotState) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSecretBox seals passwords and auth tokens in the persisted snapshot.
func WithSecretBox(box *secretbox.Box) Option {
	return func(s *BotState) { s.box = box }
}

func emptySnapshot() domain.Snapshot {
	return domain.Snapshot{
		Accounts:   []domain.Account{},
		DailyUsage: map[string]domain.DailyUsage{},
	}
}

// Load reads the snapshot from st. A missing, unreadable, or undecryptable
// snapshot yields the default state; Load never fails.
func Load(ctx context.Context, st store.Store, opts ...Option) *BotState {
	s := &BotState{store: st, logger: zap.NewNop(), snap: emptySnapshot()}
	for _, opt := range opts {
		opt(s)
	}

	raw, err := st.Load(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.logger.Info("no bot state snapshot, starting fresh")
		return s
	case err != nil:
		s.logger.Warn("bot state unreadable, using defaults", zap.Error(err))
		return s
	}

	snap, err := s.decode(raw)
	if err != nil {
		s.logger.Warn("bot state corrupt, using defaults", zap.Error(err))
		return s
	}
	s.snap = snap
	s.logger.Info("bot state loaded",
		zap.Int("accounts", len(snap.Accounts)),
		zap.Bool("posting", snap.Posting),
	)
	return s
}

func (s *BotState) decode(raw []byte) (domain.Snapshot, error) {
	var snap domain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Accounts == nil {
		snap.Accounts = []domain.Account{}
	}
	if snap.DailyUsage == nil {
		snap.DailyUsage = map[string]domain.DailyUsage{}
	}
	for i := range snap.Accounts {
		if err := s.openAccount(&snap.Accounts[i]); err != nil {
			return domain.Snapshot{}, fmt.Errorf("open account %d: %w", i, err)
		}
	}
	return snap, nil
}

func (s *BotState) openAccount(a *domain.Account) error {
	if !secretbox.IsSealed(a.Credentials.Password) && !secretbox.IsSealed(a.AuthToken) {
		return nil
	}
	if s.box == nil {
		return errors.New("snapshot holds sealed fields but no encryption key is configured")
	}
	pw, err := s.box.Open(a.Credentials.Password)
	if err != nil {
		return err
	}
	tok, err := s.box.Open(a.AuthToken)
	if err != nil {
		return err
	}
	a.Credentials.Password = pw
	a.AuthToken = tok
	return nil
}

// Save writes the whole aggregate to the store.
func (s *BotState) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx)
}

func (s *BotState) saveLocked(ctx context.Context) error {
	snap := copySnapshot(s.snap)
	if s.box != nil {
		for i := range snap.Accounts {
			a := &snap.Accounts[i]
			pw, err := s.box.Seal(a.Credentials.Password)
			if err != nil {
				return fmt.Errorf("seal password: %w", err)
			}
			tok, err := s.box.Seal(a.AuthToken)
			if err != nil {
				return fmt.Errorf("seal token: %w", err)
			}
			a.Credentials.Password = pw
			a.AuthToken = tok
		}
	}
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.store.Save(ctx, raw); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *BotState) AddAccount(ctx context.Context, acct domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Accounts = append(s.snap.Accounts, acct)
	s.snap.Statistics.AccountsCreated++
	return s.saveLocked(ctx)
}

// SetPosting toggles the run flag. Turning it on stamps the start time.
func (s *BotState) SetPosting(ctx context.Context, posting bool, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Posting = posting
	if posting {
		t := at
		s.snap.Statistics.StartTime = &t
	}
	return s.saveLocked(ctx)
}

func (s *BotState) RecordPost(ctx context.Context, accountKey string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Statistics.PostsCreated++
	t := at
	s.snap.Statistics.LastPost = &t
	u := s.usageLocked(accountKey, DayKey(at))
	u.Posts++
	s.snap.DailyUsage[accountKey] = u
	return s.saveLocked(ctx)
}

func (s *BotState) RecordEngagement(ctx context.Context, accountKey string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Statistics.Engagements++
	u := s.usageLocked(accountKey, DayKey(at))
	u.Engagements++
	s.snap.DailyUsage[accountKey] = u
	return s.saveLocked(ctx)
}

// Usage returns the account's counters for day; a bucket from an earlier
// day reads as zero.
func (s *BotState) Usage(accountKey, day string) domain.DailyUsage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usageLocked(accountKey, day)
}

func (s *BotState) usageLocked(accountKey, day string) domain.DailyUsage {
	u, ok := s.snap.DailyUsage[accountKey]
	if !ok || u.Day != day {
		return domain.DailyUsage{Day: day}
	}
	return u
}

func (s *BotState) Accounts() []domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Account, len(s.snap.Accounts))
	copy(out, s.snap.Accounts)
	return out
}

func (s *BotState) AccountCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snap.Accounts)
}

func (s *BotState) Posting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Posting
}

// Snapshot returns a deep copy of the aggregate.
func (s *BotState) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySnapshot(s.snap)
}

func copySnapshot(in domain.Snapshot) domain.Snapshot {
	out := in
	out.Accounts = make([]domain.Account, len(in.Accounts))
	copy(out.Accounts, in.Accounts)
	out.DailyUsage = make(map[string]domain.DailyUsage, len(in.DailyUsage))
	for k, v := range in.DailyUsage {
		out.DailyUsage[k] = v
	}
	if in.Statistics.StartTime != nil {
		t := *in.Statistics.StartTime
		out.Statistics.StartTime = &t
	}
	if in.Statistics.LastPost != nil {
		t := *in.Statistics.LastPost
		out.Statistics.LastPost = &t
	}
	return out
}
