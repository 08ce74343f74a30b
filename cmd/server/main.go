package main // Entry point package

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/hostellog/hostel-admin/internal/config"
	"github.com/hostellog/hostel-admin/internal/database"
	"github.com/hostellog/hostel-admin/internal/handler"
	"github.com/hostellog/hostel-admin/internal/logger"
	"github.com/hostellog/hostel-admin/internal/middleware"
	"github.com/hostellog/hostel-admin/internal/queue"
	"github.com/hostellog/hostel-admin/internal/repository"
	"github.com/hostellog/hostel-admin/internal/router"
	"github.com/hostellog/hostel-admin/internal/service"
)

func main() {
	cfg := config.Load() // Load environment config

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "hostel-admin")
	if err != nil {
		stdlog.Fatalf("init logger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	rdb, err := config.NewRedisClient()
	if err != nil {
		log.Warn("redis unavailable; stats cache, rate limit and activity feed are disabled", zap.Error(err))
	} else {
		defer rdb.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var feed *queue.ActivityFeed
	if rdb != nil {
		feed = queue.NewActivityFeed(rdb)
	}
	pub := publisherFor(cfg.Broker, feed, log)
	if cfg.Broker.URL != "" && feed != nil {
		consumer := queue.NewConsumer(cfg.Broker.URL, cfg.Broker.Queue, feed, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("activity consumer stopped", zap.Error(err))
			}
		}()
	}

	// Repositories
	hostels := repository.NewHostelRepo(db)
	floors := repository.NewFloorRepo(db)
	rooms := repository.NewRoomRepo(db)
	guests := repository.NewGuestRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	// Services
	occ := service.NewOccupancyService(db, rooms, floors, guests, pub, log)
	dash := service.NewDashboardService(rooms, guests, feed)
	exp := service.NewExporter(rooms, guests)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.Recover(log))

	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log)
	statsCache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb, log)

	router.RegisterRoutes(e, handler.Ready(db, rdb))
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens, hostels), cfg.JWTSecret, limit)
	router.RegisterAdmin(e, handler.NewHostelHandler(hostels), handler.NewUserHandler(cfg, users, tokens), cfg.JWTSecret, limit)
	router.RegisterConsole(e, router.Console{
		Floors:    handler.NewFloorHandler(floors),
		Rooms:     handler.NewRoomHandler(rooms, guests, occ),
		Guests:    handler.NewGuestHandler(guests, occ, exp),
		Dashboard: handler.NewDashboardHandler(dash),
	}, cfg.JWTSecret, limit, statsCache)

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}

// publisherFor picks where occupancy events go: RabbitMQ when a broker is
// configured, straight into the Redis feed when only Redis is up, and
// nowhere otherwise.
func publisherFor(b config.BrokerConfig, feed *queue.ActivityFeed, log *zap.Logger) queue.Publisher {
	switch {
	case b.URL != "":
		if feed == nil {
			log.Warn("broker configured without redis; events are published but not collected")
		}
		return queue.NewAMQPPublisher(b.URL, b.Queue, log)
	case feed != nil:
		return queue.FeedPublisher{Feed: feed}
	default:
		return queue.NopPublisher{}
	}
}
