// Package provisioner bulk-creates synthetic platform accounts and records
// the usable ones in bot state.
package provisioner

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"civicsim/internal/domain"
)

type Platform interface {
	Register(ctx context.Context, profile domain.Profile) (domain.Identity, error)
	Login(ctx context.Context, email, password string) (domain.Session, error)
}

type PersonaSource interface {
	RandomPersona() domain.Persona
	MatchLocation(p domain.Persona) domain.Location
}

type AccountSink interface {
	AddAccount(ctx context.Context, acct domain.Account) error
}

type EventRecorder interface {
	Record(eventType domain.EventType, accountID string, payload map[string]interface{}) domain.Event
}

type Config struct {
	// Delay separates consecutive registrations.
	Delay       time.Duration
	EmailDomain string
}

type Provisioner struct {
	platform Platform
	personas PersonaSource
	sink     AccountSink
	cfg      Config

	logger   *zap.Logger
	recorder EventRecorder
	now      func() time.Time
	sleep    func(context.Context, time.Duration) error

	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*Provisioner)

func WithLogger(logger *zap.Logger) Option {
	return func(p *Provisioner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithRecorder(r EventRecorder) Option {
	return func(p *Provisioner) { p.recorder = r }
}

func WithRand(rng *rand.Rand) Option {
	return func(p *Provisioner) {
		if rng != nil {
			p.rng = rng
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Provisioner) { p.now = now }
}

func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(p *Provisioner) { p.sleep = sleep }
}

func New(platform Platform, personas PersonaSource, sink AccountSink, cfg Config, opts ...Option) *Provisioner {
	if cfg.EmailDomain == "" {
		cfg.EmailDomain = "civicsim.example"
	}
	p := &Provisioner{
		platform: platform,
		personas: personas,
		sink:     sink,
		cfg:      cfg,
		logger:   zap.NewNop(),
		now:      time.Now,
		sleep:    sleepCtx,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CreateAccounts registers count accounts one at a time. Failures are
// counted and skipped; cancellation returns the counts so far.
func (p *Provisioner) CreateAccounts(ctx context.Context, count int) domain.ProvisionResult {
	var res domain.ProvisionResult
	if count <= 0 {
		return res
	}
	p.logger.Info("provisioning accounts", zap.Int("count", count))

	for i := 0; i < count; i++ {
		if i > 0 && p.cfg.Delay > 0 {
			if err := p.sleep(ctx, p.cfg.Delay); err != nil {
				p.logger.Warn("provisioning interrupted", zap.Int("done", i), zap.Error(err))
				break
			}
		}
		if ctx.Err() != nil {
			p.logger.Warn("provisioning interrupted", zap.Int("done", i), zap.Error(ctx.Err()))
			break
		}
		if p.createOne(ctx) {
			res.SuccessCount++
		} else {
			res.ErrorCount++
		}
	}

	p.logger.Info("provisioning finished",
		zap.Int("success", res.SuccessCount),
		zap.Int("errors", res.ErrorCount),
	)
	p.record(domain.EventProvisionCompleted, "", map[string]interface{}{
		"requested":    count,
		"successCount": res.SuccessCount,
		"errorCount":   res.ErrorCount,
	})
	return res
}

func (p *Provisioner) createOne(ctx context.Context) bool {
	persona := p.personas.RandomPersona()
	loc := p.personas.MatchLocation(persona)
	profile := p.buildProfile(persona, loc)
	log := p.logger.With(zap.String("username", profile.Username), zap.String("persona", persona.Type))

	identity, err := p.platform.Register(ctx, profile)
	if err != nil {
		log.Warn("register failed", zap.Error(err))
		p.record(domain.EventAccountFailed, "", map[string]interface{}{
			"username": profile.Username, "stage": "register", "error": err.Error(),
		})
		return false
	}

	session, err := p.platform.Login(ctx, profile.Email, profile.Password)
	if err != nil {
		// The platform account exists but stays unusable here until recovered by hand.
		log.Warn("login after register failed", zap.String("user_id", identity.UserID), zap.Error(err))
		p.record(domain.EventAccountFailed, identity.UserID, map[string]interface{}{
			"username": profile.Username, "stage": "login", "error": err.Error(),
		})
		return false
	}

	userID := session.UserID
	if userID == "" {
		userID = identity.UserID
	}
	acct := domain.Account{
		Credentials: domain.Credentials{
			Username: profile.Username,
			Email:    profile.Email,
			Password: profile.Password,
		},
		AuthToken:      session.Token,
		PlatformUserID: userID,
		Persona:        persona,
		Location:       loc,
		CreatedAt:      p.now().UTC(),
	}
	if err := p.sink.AddAccount(ctx, acct); err != nil {
		log.Warn("persist account failed", zap.Error(err))
	}
	log.Info("account created", zap.String("user_id", userID), zap.String("city", loc.City), zap.String("state", loc.State))
	p.record(domain.EventAccountCreated, acct.Key(), map[string]interface{}{
		"username": profile.Username, "persona": persona.Type, "city": loc.City, "state": loc.State,
	})
	return true
}

func (p *Provisioner) buildProfile(persona domain.Persona, loc domain.Location) domain.Profile {
	p.mu.Lock()
	first := firstNames[p.rng.IntN(len(firstNames))]
	last := lastNames[p.rng.IntN(len(lastNames))]
	suffix := 1000 + p.rng.IntN(9000)
	zip := fmt.Sprintf("%05d", 10000+p.rng.IntN(90000))
	p.mu.Unlock()

	username := fmt.Sprintf("%s%s%d", strings.ToLower(first), strings.ToLower(last), suffix)
	return domain.Profile{
		Username:  username,
		Email:     username + "@" + p.cfg.EmailDomain,
		Password:  uuid.NewString(),
		FirstName: first,
		LastName:  last,
		City:      loc.City,
		State:     loc.State,
		ZipCode:   zip,
		Bio:       bio(persona, loc),
	}
}

func bio(persona domain.Persona, loc domain.Location) string {
	interests := persona.Interests
	if len(interests) > 3 {
		interests = interests[:3]
	}
	where := loc.City
	if loc.State != "" {
		where += ", " + loc.State
	}
	if len(interests) == 0 {
		return "Living in " + where + "."
	}
	return fmt.Sprintf("%s resident. I care about %s.", where, joinList(interests))
}

func joinList(items []string) string {
	switch len(items) {
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

func (p *Provisioner) record(eventType domain.EventType, accountID string, payload map[string]interface{}) {
	if p.recorder != nil {
		p.recorder.Record(eventType, accountID, payload)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
