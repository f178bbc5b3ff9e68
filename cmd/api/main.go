package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"laura-backend/internal/auth"
	"laura-backend/internal/cache"
	"laura-backend/internal/config"
	"laura-backend/internal/contact"
	"laura-backend/internal/crm"
	"laura-backend/internal/handlers"
	"laura-backend/internal/kv"
	"laura-backend/internal/leads"
	"laura-backend/internal/metrics"
	"laura-backend/internal/middleware"
	"laura-backend/internal/notifications"
	"laura-backend/internal/pricing"
	"laura-backend/internal/validation"
	"laura-backend/internal/wizard"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()

	ctx, cancel := context.WithTimeout(appCtx, 10*time.Second)
	defer cancel()

	store, err := kv.Open(ctx, kv.Options{
		Backend:       cfg.KVBackend,
		SQLitePath:    cfg.SQLitePath,
		RedisURL:      cfg.RedisURL,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		MongoURI:      cfg.MongoURI,
		MongoDB:       cfg.MongoDB,
		DynamoTable:   cfg.DynamoTable,
	})
	if err != nil {
		logger.Error("kv open failed", slog.String("backend", cfg.KVBackend), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("kv ready", slog.String("backend", cfg.KVBackend))

	var rates pricing.RatesSource = pricing.StaticRates(pricing.DefaultRates())
	if cfg.PricingFile != "" {
		fileRates, err := pricing.NewFileRates(cfg.PricingFile, logger)
		if err != nil {
			logger.Error("pricing file load failed", slog.String("path", cfg.PricingFile), slog.String("error", err.Error()))
			os.Exit(1)
		}
		go func() {
			if err := fileRates.Watch(appCtx); err != nil {
				logger.Warn("pricing watcher stopped", slog.String("error", err.Error()))
			}
		}()
		rates = fileRates
		logger.Info("pricing rates loaded", slog.String("path", cfg.PricingFile))
	}

	var cacheStore cache.Cache
	if cfg.RedisURL != "" || cfg.RedisAddr != "" {
		var redisCache *cache.RedisCache
		if cfg.RedisURL != "" {
			redisCache, err = cache.NewRedisFromURL(cfg.RedisURL, "laura:")
		} else {
			redisCache = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "laura:")
		}
		if err == nil {
			err = redisCache.Ping(ctx)
		}
		if err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisCache.Close()
		logger.Info("redis cache connected")
		cacheStore = redisCache
	} else {
		memCache := cache.NewMemory()
		go memCache.RunSweeper(appCtx, time.Minute)
		cacheStore = memCache
		logger.Info("memory cache in use")
	}

	var forwarders []leads.Forwarder
	if cfg.CRMWebhookURL != "" {
		forwarders = append(forwarders, crm.NewClient(cfg.CRMWebhookURL, cfg.CRMAPIKey))
	}
	mailer := notifications.NewBrevoClient(cfg.BrevoAPIKey, cfg.BrevoSenderEmail, cfg.BrevoSenderName, cfg.BrevoSandbox)
	if m := notifications.NewLeadMailer(mailer, cfg.LeadsNotifyEmail); m != nil {
		forwarders = append(forwarders, m)
	}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		tg, err := notifications.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID, "")
		if err != nil {
			logger.Warn("telegram notifier disabled", slog.String("error", err.Error()))
		} else {
			forwarders = append(forwarders, tg)
		}
	}
	if cfg.NATSURL != "" {
		pub, err := notifications.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			logger.Warn("nats publisher disabled", slog.String("error", err.Error()))
		} else {
			defer pub.Close()
			forwarders = append(forwarders, pub)
		}
	}

	dispatcher := leads.NewDispatcher(logger, cfg.ForwardTimeout, forwarders...)
	logger.Info("lead forwarders", slog.Any("enabled", dispatcher.Forwarders()))

	val := validation.New()
	leadStore := leads.NewStore(store, rates, cfg.Timezone, logger, dispatcher)
	leadsHandler := leads.NewHandler(leadStore, val, logger)
	wizardHandler := wizard.NewHandler(wizard.NewSessions(cacheStore, cfg.SessionTTL), leadStore, rates, val, logger)

	var gate *auth.Gate
	if cfg.AdminPassphrase != "" {
		gate, err = auth.NewGate(cfg.AdminPassphrase)
		if err != nil {
			logger.Error("admin passphrase hash failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
	var jwtManager *auth.Manager
	if cfg.JWTSecret != "" {
		jwtManager = auth.NewManager(cfg.JWTSecret,
			time.Duration(cfg.AccessTTLMinutes)*time.Minute,
			time.Duration(cfg.RefreshTTLMinutes)*time.Minute)
	} else {
		logger.Warn("JWT_SECRET not set, admin login disabled")
	}

	server := &handlers.Server{
		Val:          val,
		Log:          logger,
		Cache:        cacheStore,
		CacheTTL:     time.Duration(cfg.CacheTTLSeconds) * time.Second,
		Rates:        rates,
		Contacts:     contact.NewStore(store, cfg.Timezone, logger),
		Gate:         gate,
		JWT:          jwtManager,
		CookieSecure: cfg.CookieSecure,
		CookiePath:   "/api",
	}
	if n := notifications.NewContactMailer(mailer, cfg.LeadsNotifyEmail); n != nil {
		server.Notifier = n
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger, "/healthz", "/metrics"))
	r.Use(metrics.Middleware)
	r.Use(middleware.CORS(cfg.FrontendOrigins))
	r.Use(chiMiddleware.Timeout(30 * time.Second))

	window := time.Duration(cfg.RateLimitWindowSec) * time.Second
	submitLimiter := middleware.NewRateLimiter(cfg.RateLimitSubmit, window)
	contactLimiter := middleware.NewRateLimiter(cfg.RateLimitContact, window)
	loginLimiter := middleware.NewRateLimiter(cfg.RateLimitLogin, window)
	adminAuth := middleware.AdminAuth(cfg.AdminAPIKey, jwtManager)

	r.Get("/healthz", handlers.Health)
	r.Handle("/metrics", metrics.Handler())

	registerRoutes := func(api chi.Router) {
		api.Get("/services", server.GetServices)
		api.Post("/estimate", server.Estimate)
		api.With(contactLimiter.Middleware).Post("/contact", server.CreateContact)

		api.Route("/wizard", func(wz chi.Router) {
			wizardHandler.Routes(wz, submitLimiter.Middleware)
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.With(loginLimiter.Middleware).Post("/login", server.AdminLogin)
			admin.Post("/refresh", server.AdminRefresh)
			admin.Post("/logout", server.AdminLogout)

			admin.Group(func(protected chi.Router) {
				protected.Use(adminAuth)
				protected.Get("/contacts", server.AdminListContacts)
				protected.Route("/leads", leadsHandler.Routes)
			})
		})
	}

	r.Route("/api", registerRoutes)
	r.Route("/api/v1", registerRoutes)

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			stopApp()
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-stop:
	case <-appCtx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	if err := dispatcher.Wait(shutdownCtx); err != nil {
		logger.Warn("lead forwards still pending at shutdown", slog.String("error", err.Error()))
	}
	stopApp()
}
