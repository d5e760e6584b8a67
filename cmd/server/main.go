package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/booking"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/config"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/database"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/handler"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/idempotency"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/logging"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/middleware"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/model"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/queue"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/repository"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/router"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/schedule"
	"github.com/JasminRadadiya29/QuickCourt-sub000/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional
	cfg := config.Load()

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	courts, venues, store, db := openStore(ctx, cfg, logger)
	if db != nil {
		defer db.Close()
	}

	var publisher booking.EventPublisher
	if cfg.Events.RabbitURL != "" {
		publisher = service.NewRabbitPublisher(cfg.Events.RabbitURL, logger)
		if cfg.Events.ConsumerOn {
			sink := &queue.BookingLog{Dir: cfg.Events.BookingLogDir}
			go func() {
				if err := queue.StartBookingConsumer(ctx, cfg.Events.RabbitURL, sink, logger.Named("consumer")); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("booking consumer stopped", zap.Error(err))
				}
			}()
		}
	}

	svc := booking.NewService(courts, venues, store, publisher, booking.Config{
		SlotDuration: cfg.Booking.SlotDuration,
		StoreTimeout: cfg.Booking.AdmitTimeout,
	}, logger.Named("booking"))

	rdb := config.NewRedisClient()
	var idem handler.IdempotencyStore
	if rdb != nil {
		defer rdb.Close()
		idem = idempotency.NewStore(rdb, cfg.Booking.IdempotencyTTL)
	} else {
		logger.Warn("redis unavailable: rate limiting, caching and idempotency keys disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLogger(logger.Named("http")), middleware.Recover(logger.Named("http")))

	var ping handler.Pinger
	if db != nil {
		ping = db
	}
	router.RegisterRoutes(e, ping)
	router.RegisterPublic(e,
		handler.NewAvailabilityHandler(svc, logger),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterCustomer(e,
		handler.NewBookingHandler(svc, idem, logger),
		cfg.JWTSecret,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger.Named("ratelimit")))

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("store", cfg.Store))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

// openStore returns the lookups and reservation store for the configured
// driver.  db is nil for the memory store.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (booking.CourtLookup, booking.VenueLookup, booking.ReservationStore, *sql.DB) {
	if cfg.Store == config.StoreMemory {
		m := repository.NewMemoryStore()
		seedDemo(m)
		logger.Warn("using in-memory store; reservations are lost on restart")
		return m, m, m, nil
	}
	db, err := database.Open(ctx, database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName))
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	return repository.NewCourtRepo(db), repository.NewVenueRepo(db), repository.NewReservationRepo(db), db
}

// seedDemo gives a development server one venue with two courts.
func seedDemo(m *repository.MemoryStore) {
	day, _ := schedule.RangeFromMinutes(6*60, 22*60)
	evening, _ := schedule.RangeFromMinutes(16*60, 23*60)
	m.PutVenue(model.Venue{ID: 1, OwnerID: 1, Name: "Demo Sports Arena", IsActive: true, CreatedAt: time.Now().UTC()})
	m.PutCourt(model.Court{ID: 1, VenueID: 1, Name: "Badminton 1", Sport: "badminton", PricePerHourCents: 1500, Window: day})
	m.PutCourt(model.Court{ID: 2, VenueID: 1, Name: "Tennis 1", Sport: "tennis", PricePerHourCents: 2500, Window: evening})
}
