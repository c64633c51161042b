// Package scheduler runs the posting and engagement loops that drive
// synthetic activity against the platform.
package scheduler

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"civicsim/internal/domain"
	"civicsim/internal/service/quota"
	"civicsim/internal/state"
)

const notifyTimeout = 10 * time.Second

type Platform interface {
	CreatePost(ctx context.Context, token, text string, isPolitical bool) (string, error)
	LikePost(ctx context.Context, token, postID string) error
	TrendingPosts(ctx context.Context) ([]domain.Post, error)
}

type ContentSource interface {
	GenerateContent(p domain.Persona) domain.ContentItem
}

type EventRecorder interface {
	Record(eventType domain.EventType, accountID string, payload map[string]interface{}) domain.Event
}

type Notifier interface {
	Notify(ctx context.Context, text string) error
}

type Status string

const (
	StatusStopped Status = "stopped"
	StatusRunning Status = "running"
)

// Outcome describes what a single tick did.
type Outcome string

const (
	OutcomePosted     Outcome = "posted"
	OutcomeEngaged    Outcome = "engaged"
	OutcomeNoAccounts Outcome = "no_accounts"
	OutcomeAllCapped  Outcome = "all_capped"
	OutcomeNoTrending Outcome = "no_trending"
	OutcomeSelfPost   Outcome = "self_post"
	OutcomeFailed     Outcome = "failed"
)

type Config struct {
	PostingInterval    time.Duration
	EngagementInterval time.Duration
}

type Engine struct {
	state    *state.BotState
	platform Platform
	content  ContentSource
	quota    *quota.Engine
	cfg      Config

	clock    Clock
	logger   *zap.Logger
	recorder EventRecorder
	notifier Notifier

	rngMu sync.Mutex
	rng   *rand.Rand

	// Held for a whole tick so the cap check and the usage update of one
	// tick never interleave with another tick of the same kind, including
	// one left in flight by a previous Start.
	postMu   sync.Mutex
	engageMu sync.Mutex

	mu     sync.Mutex
	status Status
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type Option func(*Engine)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithClock(c Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		if rng != nil {
			e.rng = rng
		}
	}
}

func WithRecorder(r EventRecorder) Option {
	return func(e *Engine) { e.recorder = r }
}

func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

func New(st *state.BotState, platform Platform, content ContentSource, q *quota.Engine, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		state:    st,
		platform: platform,
		content:  content,
		quota:    q,
		cfg:      cfg,
		clock:    realClock{},
		logger:   zap.NewNop(),
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		status:   StatusStopped,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.quota == nil {
		e.quota = quota.NewEngine(0, 0)
	}
	return e
}

func (e *Engine) State() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Start arms both loops. It reports false when the engine was already running.
func (e *Engine) Start() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status == StatusRunning {
		return false
	}

	now := e.clock.Now()
	if err := e.state.SetPosting(context.Background(), true, now); err != nil {
		e.logger.Warn("persist posting flag failed", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	postTicker := e.clock.NewTicker(e.cfg.PostingInterval)
	engageTicker := e.clock.NewTicker(e.cfg.EngagementInterval)
	e.wg.Add(2)
	go e.loop(ctx, "posting", postTicker, e.TickPosting)
	go e.loop(ctx, "engagement", engageTicker, e.TickEngagement)
	e.status = StatusRunning

	e.logger.Info("engine started",
		zap.Duration("posting_interval", e.cfg.PostingInterval),
		zap.Duration("engagement_interval", e.cfg.EngagementInterval),
		zap.Int("accounts", e.state.AccountCount()),
	)
	e.record(domain.EventEngineStarted, "", map[string]interface{}{"accounts": e.state.AccountCount()})
	e.notifyAsync(fmt.Sprintf("civicsim engine started with %d accounts", e.state.AccountCount()))
	return true
}

// Stop disarms both loops. A tick already in flight still completes and
// applies its result. It reports false when the engine was already stopped.
func (e *Engine) Stop() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status == StatusStopped {
		return false
	}

	e.cancel()
	e.cancel = nil
	if err := e.state.SetPosting(context.Background(), false, e.clock.Now()); err != nil {
		e.logger.Warn("persist posting flag failed", zap.Error(err))
	}
	e.status = StatusStopped

	snap := e.state.Snapshot()
	e.logger.Info("engine stopped",
		zap.Int("posts_created", snap.Statistics.PostsCreated),
		zap.Int("engagements", snap.Statistics.Engagements),
	)
	e.record(domain.EventEngineStopped, "", map[string]interface{}{
		"postsCreated": snap.Statistics.PostsCreated,
		"engagements":  snap.Statistics.Engagements,
	})
	e.notifyAsync(fmt.Sprintf("civicsim engine stopped: %d posts, %d engagements",
		snap.Statistics.PostsCreated, snap.Statistics.Engagements))
	return true
}

// Wait blocks until both loops and any in-flight tick have returned.
func (e *Engine) Wait() {
	e.wg.Wait()
}

func (e *Engine) loop(ctx context.Context, name string, t Ticker, tick func(context.Context) Outcome) {
	defer e.wg.Done()
	defer t.Stop()
	// Ticks run to completion even if Stop lands mid-call.
	tickCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			if ctx.Err() != nil {
				return
			}
			outcome := tick(tickCtx)
			e.logger.Debug("tick", zap.String("loop", name), zap.String("outcome", string(outcome)))
		}
	}
}

// TickPosting publishes one post from a random account under its daily cap.
func (e *Engine) TickPosting(ctx context.Context) Outcome {
	e.postMu.Lock()
	defer e.postMu.Unlock()

	accounts := e.state.Accounts()
	if len(accounts) == 0 {
		return OutcomeNoAccounts
	}
	eligible := e.eligible(accounts, domain.ActivityPost)
	if len(eligible) == 0 {
		e.logger.Debug("all accounts at daily post cap")
		return OutcomeAllCapped
	}

	acct := eligible[e.intN(len(eligible))]
	item := e.content.GenerateContent(acct.Persona)
	log := e.logger.With(zap.String("account", acct.Key()), zap.String("category", item.Category))

	postID, err := e.platform.CreatePost(ctx, acct.AuthToken, item.Text, item.IsPolitical)
	if err != nil {
		log.Warn("create post failed", zap.Error(err))
		e.record(domain.EventPostFailed, acct.Key(), map[string]interface{}{
			"category": item.Category, "error": err.Error(),
		})
		return OutcomeFailed
	}

	if err := e.state.RecordPost(ctx, acct.Key(), e.clock.Now()); err != nil {
		log.Warn("persist post statistics failed", zap.Error(err))
	}
	log.Info("post created", zap.String("post_id", postID), zap.Bool("political", item.IsPolitical))
	e.record(domain.EventPostCreated, acct.Key(), map[string]interface{}{
		"postId": postID, "category": item.Category, "isPolitical": item.IsPolitical,
	})
	return OutcomePosted
}

// TickEngagement likes one trending post from a random account under its
// daily cap. An account never engages with its own post.
func (e *Engine) TickEngagement(ctx context.Context) Outcome {
	e.engageMu.Lock()
	defer e.engageMu.Unlock()

	posts, err := e.platform.TrendingPosts(ctx)
	if err != nil {
		e.logger.Warn("fetch trending failed", zap.Error(err))
		return OutcomeFailed
	}
	if len(posts) == 0 {
		return OutcomeNoTrending
	}

	accounts := e.state.Accounts()
	if len(accounts) == 0 {
		return OutcomeNoAccounts
	}
	eligible := e.eligible(accounts, domain.ActivityEngagement)
	if len(eligible) == 0 {
		e.logger.Debug("all accounts at daily engagement cap")
		return OutcomeAllCapped
	}

	acct := eligible[e.intN(len(eligible))]
	post := posts[e.intN(len(posts))]
	log := e.logger.With(zap.String("account", acct.Key()), zap.String("post_id", post.ID))

	if post.AuthorID != "" && post.AuthorID == acct.PlatformUserID {
		log.Debug("skipping own post")
		e.record(domain.EventEngagementSkipped, acct.Key(), map[string]interface{}{
			"postId": post.ID, "reason": "own_post",
		})
		return OutcomeSelfPost
	}

	if err := e.platform.LikePost(ctx, acct.AuthToken, post.ID); err != nil {
		log.Warn("like post failed", zap.Error(err))
		e.record(domain.EventEngagementFailed, acct.Key(), map[string]interface{}{
			"postId": post.ID, "error": err.Error(),
		})
		return OutcomeFailed
	}

	if err := e.state.RecordEngagement(ctx, acct.Key(), e.clock.Now()); err != nil {
		log.Warn("persist engagement statistics failed", zap.Error(err))
	}
	log.Info("engagement created")
	e.record(domain.EventEngagementCreated, acct.Key(), map[string]interface{}{"postId": post.ID})
	return OutcomeEngaged
}

func (e *Engine) eligible(accounts []domain.Account, kind domain.ActivityKind) []domain.Account {
	day := state.DayKey(e.clock.Now())
	out := make([]domain.Account, 0, len(accounts))
	for _, a := range accounts {
		if e.quota.Evaluate(kind, e.state.Usage(a.Key(), day)).Allowed {
			out = append(out, a)
		}
	}
	return out
}

func (e *Engine) intN(n int) int {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return e.rng.IntN(n)
}

func (e *Engine) record(eventType domain.EventType, accountID string, payload map[string]interface{}) {
	if e.recorder != nil {
		e.recorder.Record(eventType, accountID, payload)
	}
}

func (e *Engine) notifyAsync(text string) {
	if e.notifier == nil {
		return
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := e.notifier.Notify(ctx, text); err != nil {
			e.logger.Warn("operator notify failed", zap.Error(err))
		}
	}()
}
