package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"live-poll-service/internal/app"
	"live-poll-service/internal/config"
	"live-poll-service/internal/infra/memory"
	pgarchive "live-poll-service/internal/infra/postgres"
	redismirror "live-poll-service/internal/infra/redis"
	"live-poll-service/internal/logger"
	"live-poll-service/internal/metrics"
	transport "live-poll-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the poll server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "4000"
	}

	metrics.Register()
	limits := limitsFromConfig(cfg)
	history := memory.NewHistoryLog(limits.HistoryLimit)

	var sinks []app.HistorySink
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		sinks = append(sinks, pgarchive.NewHistoryArchive(pool))
		log.Info("postgres archive enabled")
	}

	var marker *redismirror.SessionMarker
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return err
		}
		ttl := config.TTLDuration(cfg.Redis.TTL, 12*time.Hour)
		sinks = append(sinks, redismirror.NewHistoryMirror(client, limits.HistoryLimit, ttl))
		marker = redismirror.NewSessionMarker(client, time.Minute)
		if err := marker.MarkLive(ctx); err != nil {
			return err
		}
		log.Info("redis mirror enabled", zap.String("addr", cfg.Redis.Addr))
	}

	hub := transport.NewHub(log)
	session := app.NewSession(hub, history, memory.NewKickList(),
		app.WithLimits(limits),
		app.WithLogger(log),
		app.WithSinks(sinks...),
	)
	wsHandler := transport.NewWSHandler(session, hub, transportOptions(cfg), log)

	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           transport.NewRouter(wsHandler),
		ReadHeaderTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting poll service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if marker != nil {
		g.Go(func() error {
			marker.Refresh(gctx, 20*time.Second)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		session.Stop()
		hub.CloseAll()
		if waitErr := session.Wait(shutdownCtx); err == nil {
			err = waitErr
		}
		return err
	})
	return g.Wait()
}

func limitsFromConfig(cfg config.Config) app.Limits {
	limits := app.DefaultLimits()
	limits.MinDuration = config.TTLDuration(cfg.Session.MinDuration, limits.MinDuration)
	limits.MaxDuration = config.TTLDuration(cfg.Session.MaxDuration, limits.MaxDuration)
	limits.DefaultDuration = config.TTLDuration(cfg.Session.DefaultDuration, limits.DefaultDuration)
	if cfg.Session.HistoryLimit > 0 {
		limits.HistoryLimit = cfg.Session.HistoryLimit
	}
	if cfg.Session.ChatMaxLength > 0 {
		limits.MaxChatLen = cfg.Session.ChatMaxLength
	}
	return limits
}

func transportOptions(cfg config.Config) transport.Options {
	opts := transport.DefaultOptions()
	if cfg.Transport.SendBuffer > 0 {
		opts.SendBuffer = cfg.Transport.SendBuffer
	}
	if cfg.Transport.RatePerSec > 0 {
		opts.RatePerSec = cfg.Transport.RatePerSec
	}
	if cfg.Transport.RateBurst > 0 {
		opts.RateBurst = cfg.Transport.RateBurst
	}
	if cfg.Transport.MaxFrameSize > 0 {
		opts.MaxFrameSize = cfg.Transport.MaxFrameSize
	}
	return opts
}
