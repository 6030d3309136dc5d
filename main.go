package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"talenttrack-backend/config"
	"talenttrack-backend/controllers"
	"talenttrack-backend/models/contracts"
	"talenttrack-backend/models/jobs"
	"talenttrack-backend/models/messages"
	"talenttrack-backend/models/users"
	"talenttrack-backend/services"
)

type stores struct {
	users     users.Repository
	jobs      jobs.Repository
	contracts contracts.Repository
	messages  messages.Repository
	health    func(ctx context.Context) error
	close     func()
}

func main() {
	flags := config.RegisterFlags(flag.CommandLine)
	flag.Parse()

	if err := config.LoadEnvFile(flags.EnvFile); err != nil {
		slog.Error("env file", "err", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err == nil {
		err = flags.Apply(cfg)
	}
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		slog.Error("storage init failed", "driver", cfg.DBDriver, "err", err)
		os.Exit(1)
	}
	defer st.close()

	var events services.Publisher = services.NopPublisher{}
	if cfg.RedisURL != "" {
		rdb, err := config.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			slog.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		events = services.NewRedisPublisher(rdb)
		slog.Info("publishing events to redis")
	}

	policy := services.Policy{Strict: cfg.StrictOwnership}
	router := controllers.NewRouter(controllers.Deps{
		Auth: services.NewAuthService(st.users, services.AuthOptions{
			Secret:   []byte(cfg.JWTSecret),
			TokenTTL: cfg.TokenTTL,
		}),
		Users:       services.NewUserService(st.users),
		Jobs:        services.NewJobService(st.jobs, st.contracts, events, policy),
		Contracts:   services.NewContractService(st.contracts, st.jobs, events, policy),
		Messages:    services.NewMessageService(st.messages, events, policy),
		BodyLimit:   cfg.BodyLimit,
		CORSOrigins: cfg.CORSOrigins,
		Health:      st.health,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "driver", cfg.DBDriver, "strictOwnership", cfg.StrictOwnership)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.DBDriver == config.DriverMemory {
		slog.Warn("using in-memory storage, data is lost on restart")
		return &stores{
			users:     users.NewMemoryRepository(),
			jobs:      jobs.NewMemoryRepository(),
			contracts: contracts.NewMemoryRepository(),
			messages:  messages.NewMemoryRepository(),
			close:     func() {},
		}, nil
	}

	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := config.Migrate(db); err != nil {
			sqlDB.Close()
			return nil, err
		}
		slog.Info("database migrated")
	}
	return &stores{
		users:     users.NewGormRepository(db),
		jobs:      jobs.NewGormRepository(db),
		contracts: contracts.NewGormRepository(db),
		messages:  messages.NewGormRepository(db),
		health:    sqlDB.PingContext,
		close:     func() { sqlDB.Close() },
	}, nil
}
