package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/thejerf/abtime"

	"github.com/Skotchmaster/blog/internal/config"
	"github.com/Skotchmaster/blog/internal/events"
	"github.com/Skotchmaster/blog/internal/federated"
	"github.com/Skotchmaster/blog/internal/httpserver"
	authmw "github.com/Skotchmaster/blog/internal/middleware/auth"
	"github.com/Skotchmaster/blog/internal/repo"
	"github.com/Skotchmaster/blog/internal/search"
	"github.com/Skotchmaster/blog/internal/service"
	"github.com/Skotchmaster/blog/internal/session"
	"github.com/Skotchmaster/blog/internal/tokens"
	pkgdb "github.com/Skotchmaster/blog/pkg/db"
	"github.com/Skotchmaster/blog/pkg/logging"
	loggingmw "github.com/Skotchmaster/blog/pkg/middleware/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()

	ctx, cancel := context.WithTimeout(appCtx, 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}

	store := repo.New(db)
	if err := store.Migrate(appCtx); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	clock := abtime.NewRealTime()
	issuer, err := tokens.NewIssuer(tokens.Settings{
		Secret:    cfg.JWTSecret,
		Algorithm: cfg.JWTAlgorithm,
		TTL:       cfg.TokenTTL,
	}, clock)
	if err != nil {
		log.Fatalf("token issuer: %v", err)
	}

	var publisher events.Publisher = events.Nop{}
	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		if err := events.EnsureTopic(cfg.KafkaBrokers[0], cfg.KafkaTopic); err != nil {
			logger.Warn("kafka_topic_error", "topic", cfg.KafkaTopic, "error", err)
		}
		producer, err = events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		publisher = producer
	}

	authSvc := &service.AuthService{Users: store, Tokens: issuer, Events: publisher}
	if cfg.GoogleClientID != "" {
		jwks, err := keyfunc.NewDefaultCtx(appCtx, []string{cfg.GoogleJWKSURL})
		if err != nil {
			logger.Warn("google_jwks_error", "reason", "federated login disabled", "error", err)
		} else {
			verifier, err := federated.NewVerifier(jwks, federated.Config{
				ClientID: cfg.GoogleClientID,
				Timeout:  cfg.GoogleTimeout,
			}, clock)
			if err != nil {
				log.Fatalf("federated verifier: %v", err)
			}
			authSvc.Google = verifier
		}
	}

	postSvc := &service.PostService{Repo: store, Users: store, Events: publisher}
	if cfg.ESURL != "" {
		esCtx, esCancel := context.WithTimeout(appCtx, 5*time.Second)
		index, err := search.NewClient(esCtx, search.Config{
			URL:      cfg.ESURL,
			User:     cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		esCancel()
		if err != nil {
			logger.Warn("elasticsearch_error", "reason", "using database search", "error", err)
		} else {
			postSvc.Index = index
		}
	}

	userSvc := &service.UserService{
		Repo:            store,
		Events:          publisher,
		EmailDomain:     cfg.EmailDomain,
		UniqueUsernames: cfg.UniqueUsernames,
		AllowSelfRead:   cfg.AllowSelfRead,
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{
			Svc:              authSvc,
			Users:            userSvc,
			CookieTTL:        cfg.TokenTTL,
			CookieSecure:     cfg.CookieSecure,
			RegistrationMode: cfg.RegistrationMode,
		},
		UsersHandler: &httpserver.UsersHTTP{Svc: userSvc},
		PostsHandler: &httpserver.PostsHTTP{Svc: postSvc},
		SessionAuth:  authmw.NewSessionAuth(session.NewResolver(issuer, store), cfg.CookieSecure),
		DB:           store,
		CSRFEnabled:  cfg.CSRFEnabled,
		CookieSecure: cfg.CookieSecure,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	stopApp()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("shutdown complete")
}
