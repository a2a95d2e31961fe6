package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"atendimento_backend/internal/adapters"
	"atendimento_backend/internal/appointments"
	"atendimento_backend/internal/appointments/service"
	"atendimento_backend/internal/conversation"
	"atendimento_backend/internal/conversation/tools"
	"atendimento_backend/internal/email"
	"atendimento_backend/internal/events"
	apphttp "atendimento_backend/internal/http"
	"atendimento_backend/internal/http/router"
	"atendimento_backend/internal/notification"
	"atendimento_backend/internal/orders"
	"atendimento_backend/internal/quotes"
	"atendimento_backend/internal/scheduler"
	"atendimento_backend/internal/webhook"
	"atendimento_backend/internal/whatsapp"
	"atendimento_backend/platform/config"
	"atendimento_backend/platform/db"
	"atendimento_backend/platform/logger"
	"atendimento_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	eventBus := events.NewInMemoryBus(log)

	reminderScheduler, closeScheduler := initReminderScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	var emailSender email.Sender
	if cfg.GetEmailEnabled() {
		emailSender = email.NewSMTPSender(
			cfg.GetSMTPHost(), cfg.GetSMTPPort(),
			cfg.GetSMTPUsername(), cfg.GetSMTPPassword(),
			cfg.GetEmailFromAddress(), cfg.GetEmailFromName(),
		)
		log.Info("email sender initialized", "host", cfg.GetSMTPHost())
	} else {
		log.Warn("SMTP not configured; notification emails disabled")
	}

	val := validator.New()

	policies, err := conversation.LoadPolicyFile(cfg.GetPolicyFile())
	if err != nil {
		log.Error("failed to load service policy file", "error", err)
		panic("failed to load service policy file: " + err.Error())
	}
	if len(policies) > 0 {
		log.Info("service policy table loaded", "rules", len(policies))
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	notificationModule := notification.NewModule(emailSender, log)
	notificationModule.Subscribe(eventBus)

	appointmentsModule := appointments.NewModule(pool, eventBus, reminderScheduler, cfg.GetReminderLeadTime(), val, log)

	quotesService := quotes.NewService(
		quotes.NewRepository(pool), eventBus,
		func(text string) []string { return conversation.ResolveServiceModality(policies, text) },
		log,
	)
	quotesModule := quotes.NewModule(quotesService, log)

	ordersService := orders.NewService(orders.NewRepository(pool), log)
	ordersModule := orders.NewModule(ordersService, log)

	whatsappClient := whatsapp.NewClient(cfg, log)
	if whatsappClient == nil {
		log.Warn("WHATSAPP_URL not configured; outbound messages disabled")
	}

	executor := tools.NewExecutor(tools.Backends{
		Scheduling: adapters.NewSchedulingAdapter(appointmentsModule.Service()),
		Quotes:     adapters.NewQuotesAdapter(quotesService),
		Orders:     adapters.NewOrdersAdapter(ordersService),
	}, log)

	var classifier conversation.IntentClassifier
	if cfg.GetGeminiAPIKey() != "" {
		genaiClassifier, err := conversation.NewGenAIClassifier(ctx, cfg.GetGeminiAPIKey(), cfg.GetIntentModel(), log)
		if err != nil {
			log.Error("failed to initialize intent classifier", "error", err)
			panic("failed to initialize intent classifier: " + err.Error())
		}
		classifier = genaiClassifier
		log.Info("intent classifier initialized", "model", cfg.GetIntentModel())
	} else {
		log.Warn("GEMINI_API_KEY not configured; running on deterministic routing only")
	}

	store := conversation.NewRepository(pool)
	pause := conversation.NewPauseSwitch()
	renderer := conversation.NewTemplateRenderer(nil)
	orchestrator := conversation.NewOrchestrator(store, executor, classifier, renderer, whatsappClient, pause, policies, log)
	conversationModule := conversation.NewModule(orchestrator, store, pause, log)

	whatsappModule := whatsapp.NewModule(orchestrator, cfg.GetWhatsAppWebhookSecret(), log)
	webhookModule := webhook.NewModule(pool, orchestrator, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			conversationModule,
			whatsappModule,
			webhookModule,
			appointmentsModule,
			quotesModule,
			ordersModule,
			notificationModule,
		},
	}

	engine := router.New(app)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
	log.Info("server stopped")
}

func initReminderScheduler(cfg config.SchedulerConfig, log *logger.Logger) (service.ReminderScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; appointment reminders disabled")
		return nil, nil
	}

	reminderClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize reminder scheduler client", "error", err)
		return nil, nil
	}

	return reminderClient, func() {
		_ = reminderClient.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
