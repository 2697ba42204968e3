package main

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pigdice/cmd/pigdice/shared"
	"github.com/lox/pigdice/internal/config"
	"github.com/lox/pigdice/internal/directory"
	"github.com/lox/pigdice/internal/dispatch"
	"github.com/lox/pigdice/internal/outcome"
	"github.com/lox/pigdice/internal/premium"
	"github.com/lox/pigdice/internal/randutil"
	"github.com/lox/pigdice/internal/server"
	"github.com/lox/pigdice/internal/telegram"
)

// ServeCmd runs the webhook server
type ServeCmd struct {
	Config     string `kong:"default='pigdice.hcl',help='Path to HCL config file (defaults apply if missing)'"`
	EnvFile    string `kong:"name='env-file',default='.env',help='Dotenv file with PIG_BOT_TOKEN and PIG_WEBHOOK_SECRET'"`
	Debug      bool   `kong:"help='Enable debug logging'"`
	LogFormat  string `kong:"name='log-format',default='console',enum='console,json',help='Log output format'"`
	Seed       *int64 `kong:"help='Deterministic RNG seed for turn order (optional)'"`
	WebhookURL string `kong:"name='webhook-url',help='Public URL to register with Telegram on startup (optional)'"`
}

func (c *ServeCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := shared.SetupLogger(shared.LevelFor(c.Debug, cfg.Server.LogLevel), c.LogFormat)
	if err != nil {
		return err
	}

	secrets, err := config.LoadSecrets(c.EnvFile)
	if err != nil {
		return err
	}

	registry, err := premium.Load(cfg.Premium.File)
	if err != nil {
		return err
	}

	bot, err := tgbotapi.NewBotAPI(secrets.BotToken)
	if err != nil {
		return fmt.Errorf("connect to bot API: %w", err)
	}
	botName := cfg.Server.BotName
	if botName == "" {
		botName = bot.Self.UserName
	}

	if c.WebhookURL != "" {
		if err := telegram.RegisterWebhook(bot, c.WebhookURL, secrets.WebhookSecret); err != nil {
			return err
		}
		logger.Info().Str("url", c.WebhookURL).Bool("secret", secrets.WebhookSecret != "").Msg("Registered webhook")
	}

	seed, explicit := randutil.Seed(c.Seed)
	if explicit {
		logger.Info().Int64("seed", seed).Msg("Using deterministic seed")
	} else {
		logger.Debug().Int64("seed", seed).Msg("Using random seed")
	}

	dir := directory.New(directory.WithShards(cfg.Server.Shards))
	dispatcher := dispatch.New(dir, outcome.NewTranslator(outcome.DefaultCatalog()), randutil.NewLocked(seed), logger)
	sender := telegram.NewSender(bot, logger, telegram.WithRetry(cfg.Delivery.MaxAttempts, cfg.Backoff()))
	converter := telegram.NewConverter(botName, registry)

	srv := server.NewServer(server.Config{
		Addr:            cfg.Address(),
		WebhookPath:     cfg.Server.WebhookPath,
		Secret:          secrets.WebhookSecret,
		DeliveryTimeout: cfg.DeliveryTimeout(),
	}, converter, dispatcher, sender, logger)

	logger.Info().
		Str("address", cfg.Address()).
		Str("bot", botName).
		Int("premium_users", registry.Len()).
		Int("shards", cfg.Server.Shards).
		Int("max_attempts", cfg.Delivery.MaxAttempts).
		Bool("secret", secrets.WebhookSecret != "").
		Msg("Starting pigdice server")

	ctx, cancel := shared.SetupSignalHandlerWithLogger(logger)
	defer cancel()

	if cfg.Premium.File != "" {
		shared.OnReload(ctx, func() {
			if err := registry.Reload(cfg.Premium.File); err != nil {
				logger.Error().Err(err).Msg("Failed to reload premium list")
				return
			}
			logger.Info().Int("premium_users", registry.Len()).Msg("Reloaded premium list")
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
