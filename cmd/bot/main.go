package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	discordrouter "github.com/jose-valero/streambot/internal/adapters/discord"
	"github.com/jose-valero/streambot/internal/adapters/httpapi"
	"github.com/jose-valero/streambot/internal/app/service"
	"github.com/jose-valero/streambot/internal/app/task"
	"github.com/jose-valero/streambot/internal/infra/backend"
	"github.com/jose-valero/streambot/internal/infra/config"
	"github.com/jose-valero/streambot/internal/infra/logging"
	"github.com/jose-valero/streambot/internal/infra/storage"
	"github.com/jose-valero/streambot/internal/infra/tracing"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("bot stopped", zap.Error(err))
	}
	log.Info("bye")
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	// restart cancela este contexto; el supervisor (docker/systemd) relanza el proceso
	ctx, restart := context.WithCancel(ctx)
	defer restart()
	started := time.Now()

	shutdownTracing, err := tracing.Setup(ctx, cfg.OTLPEndpoint, "streambot")
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	// Store
	stores, err := backend.Open(ctx, cfg, log.Named("storage"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = stores.Close(context.Background()) }()
	state := storage.NewStateRepo(stores.Docs)

	// Discord: cuenta de usuario, el token va tal cual (sin "Bot ")
	s, err := discordgo.New(strings.TrimSpace(cfg.DiscordToken))
	if err != nil {
		return err
	}
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent
	if err := s.Open(); err != nil {
		return fmt.Errorf("discord open: %w", err)
	}
	defer s.Close()
	log.Info("connected", zap.String("user", s.State.User.Username), zap.String("id", s.State.User.ID))

	timers := task.NewGroup(ctx)
	defer timers.CancelAll()

	voice := discordrouter.NewVoice(s, log.Named("voice"))
	messenger := discordrouter.NewMessenger(s)

	// Services
	alertsSvc := service.NewAlertsService(state, messenger, cfg.Owner(), log.Named("alerts"))
	autoVocSvc := service.NewAutoVocService(state, voice, alertsSvc, log.Named("autovoc"), cfg.AutoVocInterval)
	gsSvc := service.NewGSService(service.NewGSSessions(), state, messenger, log.Named("gs"), cfg.Prefix,
		service.WithSendTimeout(cfg.GSSendTimeout))
	scheduleSvc := service.NewScheduleService(stores.Tasks, messenger, timers, log.Named("schedule"))
	healthSvc := service.NewHealthService(started, stores.Name, state, voice, autoVocSvc)

	// Router
	r := discordrouter.NewRouter(ctx, s, cfg, log.Named("router"), voice,
		discordrouter.NewReplier(s, timers, log.Named("reply")),
		discordrouter.Services{
			AutoVoc:  autoVocSvc,
			GS:       gsSvc,
			Schedule: scheduleSvc,
			Alerts:   alertsSvc,
			Health:   healthSvc,
			State:    state,
		},
		nil, // sin pipeline de video
		restart,
	)
	r.Handlers()
	log.Info("message handler registered", zap.String("prefix", cfg.Prefix))

	// AutoVoc: conectar una vez y luego vigilar
	bootCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	autoVocSvc.Boot(bootCtx)
	cancel()
	ticker := autoVocSvc.Start(ctx)
	defer autoVocSvc.Stop()

	if _, err := scheduleSvc.Load(ctx); err != nil {
		log.Error("schedule load", zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpapi.New(healthSvc, log.Named("http")).Start(gctx, cfg.HTTPAddr)
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-ticker.Done():
		}
		return nil
	})

	err = g.Wait()
	log.Info("shutting down")
	return err
}
