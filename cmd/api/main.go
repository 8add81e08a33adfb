package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/api"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/api/handler"
	apimiddleware "github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/api/middleware"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/application"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/config"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/infrastructure/postgres"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/infrastructure/rabbitmq"
	infraredis "github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/infrastructure/redis"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/notification"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/pkg/logger"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/pkg/metrics"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/worker"
)

func main() {
	// .env があれば読み込む（ローカル開発用）
	_ = godotenv.Load()

	cfg := config.Load()

	log := logger.NewLogger(os.Getenv("APP_ENV"))
	logger.Set(log)
	defer log.Sync() //nolint:errcheck

	m := metrics.Init()

	// PostgreSQL接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatal("データベース接続に失敗しました", zap.Error(err))
	}
	defer db.Close()

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if err := postgres.RunMigrations(db.DB, migrationsPath); err != nil {
		log.Fatal("マイグレーションに失敗しました", zap.Error(err))
	}

	// Redis接続（分散ロック・空き枠キャッシュ）
	redisClient := infraredis.NewClient(&cfg.Redis)
	defer redisClient.Close()

	lockManager := infraredis.NewLockManager(redisClient)
	capacityCache := infraredis.NewCapacityCache(redisClient)

	// RabbitMQ（URL未設定ならイベント発行なしで縮退運転）
	var publisher application.CapacityEventPublisher
	if cfg.AMQP.Enabled() {
		pub, err := rabbitmq.NewEventPublisher(cfg.AMQP.URL)
		if err != nil {
			log.Fatal("RabbitMQ接続に失敗しました", zap.Error(err))
		}
		defer pub.Close()
		publisher = pub
	} else {
		log.Info("AMQP_URLが未設定のため、空き枠変動イベントの発行を無効化します")
	}

	// リポジトリ
	txManager := postgres.NewTxManager(db)
	classRepo := postgres.NewClassRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	memberRepo := postgres.NewMemberRepository(db)
	planRepo := postgres.NewPlanRepository(db)
	waitlistRepo := postgres.NewWaitlistRepository(db)

	// サービス
	classService := application.NewClassService(classRepo)
	bookingService := application.NewBookingService(
		txManager, bookingRepo, classRepo, memberRepo, planRepo,
		lockManager, capacityCache, publisher,
	)
	waitlistService := application.NewWaitlistService(
		txManager, waitlistRepo, classRepo, memberRepo,
		bookingService, lockManager, notification.NewLogNotifier(),
		cfg.Waitlist.ConfirmWindow,
	)

	// キャンセル待ちの定期処理（期限切れ・空き枠再配分）
	sweeper := worker.NewWaitlistSweeper(waitlistService, cfg.Waitlist.SweepInterval)
	sweeperCtx, sweeperCancel := context.WithCancel(context.Background())
	go sweeper.Start(sweeperCtx)
	defer func() {
		sweeperCancel()
		sweeper.Stop()
	}()

	// Echoセットアップ
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler

	apimiddleware.SetupMiddleware(e)
	e.Use(apimiddleware.PrometheusMiddleware(m))

	// ハンドラー
	healthHandler := handler.NewHealthHandler()
	classHandler := handler.NewClassHandler(classService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	waitlistHandler := handler.NewWaitlistHandler(waitlistService)

	// ルーティング
	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)

	v1.POST("/classes", classHandler.Create)
	v1.GET("/classes", classHandler.List)
	v1.GET("/classes/:id", classHandler.GetByID)
	v1.POST("/classes/:id/deactivate", classHandler.Deactivate)
	v1.GET("/classes/:id/capacity", bookingHandler.QueryCapacity)
	v1.GET("/classes/:id/bookings", bookingHandler.ListClassBookings)

	v1.POST("/bookings", bookingHandler.Create)
	v1.GET("/bookings", bookingHandler.ListMemberBookings)
	v1.GET("/bookings/:id", bookingHandler.GetByID)
	v1.POST("/bookings/:id/cancel", bookingHandler.Cancel)

	v1.POST("/classes/:id/waitlist/enable", waitlistHandler.EnableWaitlist)
	v1.POST("/classes/:id/waitlist/disable", waitlistHandler.DisableWaitlist)
	v1.POST("/classes/:id/waitlist", waitlistHandler.Enqueue)
	v1.DELETE("/classes/:id/waitlist", waitlistHandler.Withdraw)
	v1.GET("/classes/:id/waitlist", waitlistHandler.ListByClass)
	v1.POST("/classes/:id/waitlist/confirm", waitlistHandler.ConfirmSlot)
	v1.POST("/waitlist/sweep", waitlistHandler.Sweep)

	// Prometheusメトリクス
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), apimiddleware.MetricsBasicAuth(cfg.Metrics))

	// サーバー起動
	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("サーバーをシャットダウンしています...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	log.Info("サーバーが正常にシャットダウンしました")
}
