package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"resortbooking/internal/cache"
	"resortbooking/internal/config"
	"resortbooking/internal/database"
	"resortbooking/internal/logger"
	"resortbooking/internal/middleware"
	"resortbooking/internal/modules/auth"
	"resortbooking/internal/modules/booking"
	"resortbooking/internal/modules/payment"
	"resortbooking/internal/modules/rooms"
	"resortbooking/internal/mpesa"
	"resortbooking/internal/notify"
	jwtsvc "resortbooking/internal/pkg/jwt"
	"resortbooking/internal/repository"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.Server.Env); err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	zl := logger.Get()

	db, err := database.Connect(cfg.DB.DSN)
	if err != nil {
		zl.Fatal("database connection failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zl.Fatal("database migration failed", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	j := jwtsvc.New(cfg.JWT.Secret, cfg.JWT.TTL)

	locker := cache.NewRoomLocker(cache.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer locker.Close()

	producer := notify.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.NotificationsTopic)
	defer producer.Close()

	gateway := mpesa.NewClient(mpesa.Config{
		BaseURL:        cfg.Mpesa.BaseURL,
		ConsumerKey:    cfg.Mpesa.ConsumerKey,
		ConsumerSecret: cfg.Mpesa.ConsumerSecret,
		ShortCode:      cfg.Mpesa.ShortCode,
		Passkey:        cfg.Mpesa.Passkey,
		CallbackURL:    cfg.Mpesa.CallbackURL,
	})

	authService := auth.NewService(userRepo, j)
	authHandler := auth.NewHandler(authService)

	bookingService := booking.NewService(bookingRepo, roomRepo, userRepo, locker, producer, zl, cfg.Redis.HoldTTL)
	bookingHandler := booking.NewHandler(bookingService)

	roomsService := rooms.NewService(roomRepo, bookingService)
	roomsHandler := rooms.NewHandler(roomsService)

	paymentService := payment.NewService(paymentRepo, bookingRepo, gateway, producer, zl)
	paymentHandler := payment.NewHandler(paymentService, zl)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(zl), middleware.Metrics(), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))

		authHandler.RegisterRoutes(v1, protected)
		roomsHandler.RegisterRoutes(v1, protected, middleware.StaffOnly())
		bookingHandler.RegisterRoutes(protected, middleware.StaffOnly())
		paymentHandler.RegisterRoutes(v1, protected, middleware.AdminOnly())
	}

	zl.Info("api listening", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Server.Env))
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}
