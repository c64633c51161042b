package main

import (
	"context"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"civicsim/internal/activity"
	"civicsim/internal/config"
	"civicsim/internal/content"
	"civicsim/internal/domain"
	"civicsim/internal/integrations/telegram"
	"civicsim/internal/integrations/webhook"
	"civicsim/internal/persona"
	"civicsim/internal/platform"
	"civicsim/internal/security/secretbox"
	"civicsim/internal/service/provisioner"
	"civicsim/internal/service/quota"
	"civicsim/internal/service/scheduler"
	"civicsim/internal/state"
	storepkg "civicsim/internal/store"
	"civicsim/internal/store/file"
	"civicsim/internal/store/postgres"
)

// app holds the wired engine for a single command invocation.
type app struct {
	cfg         config.Config
	store       storepkg.Store
	state       *state.BotState
	catalog     *persona.Catalog
	generator   *content.Generator
	quota       *quota.Engine
	recorder    *activity.Recorder
	notifier    *telegram.Notifier
	engine      *scheduler.Engine
	provisioner *provisioner.Provisioner
}

func loadConfig() (config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newApp(ctx context.Context, cfg config.Config, log *zap.Logger) (*app, error) {
	catalog, err := newCatalog(cfg)
	if err != nil {
		return nil, err
	}

	var stateOpts []state.Option
	stateOpts = append(stateOpts, state.WithLogger(log))
	if cfg.StateEncryptionKey != "" {
		box, err := secretbox.New(cfg.StateEncryptionKey)
		if err != nil {
			return nil, err
		}
		stateOpts = append(stateOpts, state.WithSecretBox(box))
	}

	st, err := openStore(cfg, log)
	if err != nil {
		return nil, err
	}
	bs := state.Load(ctx, st, stateOpts...)

	client := platform.NewClient(cfg.PlatformBaseURL, cfg.PlatformTimeout)
	generator := newGenerator(cfg)
	q := quota.NewEngine(cfg.MaxDailyPostsPerUser, cfg.MaxDailyEngagementsPerUser)
	notifier := telegram.NewNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)

	recOpts := []activity.Option{activity.WithLogger(log)}
	if cfg.WebhookURL != "" {
		recOpts = append(recOpts, activity.WithPublisher(webhook.NewClient(
			cfg.WebhookURL,
			cfg.WebhookTimeout,
			cfg.WebhookMaxRetries,
			cfg.WebhookRetryBase,
			cfg.WebhookRetryMax,
		)))
	}
	recorder := activity.NewRecorder(activity.DefaultCapacity, recOpts...)

	engine := scheduler.New(bs, client, generator, q,
		scheduler.Config{
			PostingInterval:    cfg.PostingInterval,
			EngagementInterval: cfg.EngagementInterval,
		},
		scheduler.WithLogger(log.Named("scheduler")),
		scheduler.WithRand(newRand(cfg.RandomSeed, 3)),
		scheduler.WithRecorder(recorder),
		scheduler.WithNotifier(notifier),
	)
	prov := provisioner.New(client, catalog, bs,
		provisioner.Config{Delay: cfg.ProvisionDelay, EmailDomain: cfg.BotEmailDomain},
		provisioner.WithLogger(log.Named("provisioner")),
		provisioner.WithRand(newRand(cfg.RandomSeed, 4)),
		provisioner.WithRecorder(recorder),
	)

	return &app{
		cfg:         cfg,
		store:       st,
		state:       bs,
		catalog:     catalog,
		generator:   generator,
		quota:       q,
		recorder:    recorder,
		notifier:    notifier,
		engine:      engine,
		provisioner: prov,
	}, nil
}

// Close flushes pending webhook deliveries and releases the store.
func (a *app) Close() {
	a.recorder.Wait()
	_ = a.store.Close()
}

func openStore(cfg config.Config, log *zap.Logger) (storepkg.Store, error) {
	if cfg.StateBackend == "postgres" && cfg.DatabaseURL != "" {
		pgStore, err := postgres.NewStore(cfg.DatabaseURL)
		if err == nil {
			return pgStore, nil
		}
		log.Warn("postgres state store unavailable, falling back to file store",
			zap.String("file", cfg.StateFile), zap.Error(err))
	}
	return file.NewStore(cfg.StateFile)
}

func newCatalog(cfg config.Config) (*persona.Catalog, error) {
	var (
		personas  []domain.Persona
		locations []domain.Location
	)
	if cfg.PersonaFile != "" {
		var err error
		personas, locations, err = persona.LoadFile(cfg.PersonaFile)
		if err != nil {
			return nil, err
		}
	}
	return persona.NewCatalog(personas, locations, newRand(cfg.RandomSeed, 1)), nil
}

func newGenerator(cfg config.Config) *content.Generator {
	return content.NewGenerator(content.Config{
		PoliticalRatio:     cfg.PoliticalTopicsRatio,
		ControversialRatio: cfg.ControversialRatio,
	}, newRand(cfg.RandomSeed, 2))
}

// newRand returns a reproducible source when seed is set. Each component
// gets its own stream so their draws stay independent.
func newRand(seed int64, stream uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(uint64(seed), stream))
}
