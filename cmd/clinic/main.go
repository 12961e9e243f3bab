package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	billingapp "github.com/cmendieta2311/odonto-app-sub000/internal/billing/application"
	billingdomain "github.com/cmendieta2311/odonto-app-sub000/internal/billing/domain"
	"github.com/cmendieta2311/odonto-app-sub000/internal/billing/infrastructure/messaging"
	billingmysql "github.com/cmendieta2311/odonto-app-sub000/internal/billing/infrastructure/persistence/mysql"
	billingconsumer "github.com/cmendieta2311/odonto-app-sub000/internal/billing/interfaces/consumer"
	billinghttp "github.com/cmendieta2311/odonto-app-sub000/internal/billing/interfaces/http"
	cashapp "github.com/cmendieta2311/odonto-app-sub000/internal/cashledger/application"
	cashdomain "github.com/cmendieta2311/odonto-app-sub000/internal/cashledger/domain"
	cashmessaging "github.com/cmendieta2311/odonto-app-sub000/internal/cashledger/infrastructure/messaging"
	cashmysql "github.com/cmendieta2311/odonto-app-sub000/internal/cashledger/infrastructure/persistence/mysql"
	cashredis "github.com/cmendieta2311/odonto-app-sub000/internal/cashledger/infrastructure/persistence/redis"
	cashhttp "github.com/cmendieta2311/odonto-app-sub000/internal/cashledger/interfaces/http"
	"github.com/cmendieta2311/odonto-app-sub000/internal/shared/tenantctx"
	"github.com/wyfcoding/pkg/config"
	"github.com/wyfcoding/pkg/database"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/messagequeue/kafka"
	"github.com/wyfcoding/pkg/messagequeue/outbox"
	"github.com/wyfcoding/pkg/metrics"
	"github.com/wyfcoding/pkg/redis"
	"golang.org/x/sync/errgroup"
)

var configPath = flag.String("config", "configs/clinic/config.toml", "config file path")

func main() {
	flag.Parse()

	// 1. 初始化配置
	var cfg config.Config
	if err := config.Load(*configPath, &cfg); err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 2. 初始化日志
	logCfg := &logging.Config{
		Service:    cfg.Server.Name,
		Module:     "clinic",
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}
	logger := logging.NewFromConfig(logCfg)
	slog.SetDefault(logger.Logger)

	// 3. 初始化指标
	metricsImpl := metrics.NewMetrics(cfg.Server.Name)
	if cfg.Metrics.Enabled {
		go metricsImpl.ExposeHTTP(cfg.Metrics.Port)
	}

	// 4. 初始化基础设施
	db, err := database.NewDB(cfg.Data.Database, cfg.CircuitBreaker, logger, metricsImpl)
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}

	if cfg.Server.Environment == "dev" {
		if err := db.RawDB().AutoMigrate(
			&cashdomain.CashMovement{},
			&billingdomain.Contract{},
			&billingdomain.CreditScheduleInstallment{},
			&billingdomain.Invoice{},
			&billingdomain.InvoiceItem{},
			&billingdomain.Payment{},
			&billingdomain.Quote{},
			&billingdomain.CollectionSummary{},
		); err != nil {
			slog.Error("failed to migrate database", "error", err)
		}
	}

	redisClient, redisCleanup, err := redis.NewClient(&cfg.Data.Redis, logger)
	if err != nil {
		slog.Error("failed to connect redis", "error", err)
		os.Exit(1)
	}
	defer redisCleanup()

	outboxMgr := outbox.NewManager(db.RawDB(), logger.Logger)

	// 5. 初始化仓储
	movementRepo := cashmysql.NewGormMovementRepository(db.RawDB())
	summaryCache := cashredis.NewSummaryRedisCache(redisClient)
	cashTxm := cashmysql.NewTransactionManager(db.RawDB())
	cashPublisher := cashmessaging.NewOutboxPublisher(outboxMgr)

	contractRepo := billingmysql.NewGormContractRepository(db.RawDB())
	scheduleRepo := billingmysql.NewGormScheduleRepository(db.RawDB())
	invoiceRepo := billingmysql.NewGormInvoiceRepository(db.RawDB())
	paymentRepo := billingmysql.NewGormPaymentRepository(db.RawDB())
	quoteRepo := billingmysql.NewGormQuoteRepository(db.RawDB())
	collectionRepo := billingmysql.NewGormCollectionSummaryRepository(db.RawDB())
	billingTxm := billingmysql.NewTransactionManager(db.RawDB())
	billingPublisher := messaging.NewOutboxPublisher(outboxMgr)

	// 6. 初始化应用服务
	cashService := cashapp.NewCashLedgerService(movementRepo, summaryCache, cashPublisher, cashTxm, slog.Default())
	paymentService := billingapp.NewPaymentService(contractRepo, scheduleRepo, invoiceRepo, paymentRepo, quoteRepo, billingPublisher, billingTxm, slog.Default())
	contractService := billingapp.NewContractService(contractRepo, scheduleRepo, invoiceRepo, quoteRepo, billingTxm, slog.Default())
	queryService := billingapp.NewBillingQueryService(contractRepo, scheduleRepo, collectionRepo)
	projectionService := billingapp.NewCollectionProjectionService(paymentRepo, collectionRepo, slog.Default())

	// 7. 启动回款投影消费者
	kafkaCfg := cfg.MessageQueue.Kafka
	kafkaCfg.GroupID = "clinic-billing-projection"
	kafkaCfg.Topic = "billing.payment.recorded"
	consumer := kafka.NewConsumer(&kafkaCfg, logger, metricsImpl)
	projectionHandler := billingconsumer.NewPaymentProjectionHandler(projectionService, slog.Default())
	projectionHandler.Subscribe(context.Background(), consumer)

	// 8. 初始化接口层
	gin.SetMode(gin.ReleaseMode)
	if cfg.Server.Environment == "dev" {
		gin.SetMode(gin.DebugMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(tenantctx.GinMiddleware())

	api := r.Group("/api")
	cashhttp.NewCashHandler(cashService).RegisterRoutes(api)
	billinghttp.NewBillingHandler(paymentService, contractService, queryService).RegisterRoutes(api)

	// 9. 启动服务
	g, ctx := errgroup.WithContext(context.Background())

	addr := fmt.Sprintf(":%d", cfg.Server.HTTP.Port)
	server := &http.Server{Addr: addr, Handler: r}

	g.Go(func() error {
		slog.Info("HTTP server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
			slog.Info("shutting down server...")
		case <-ctx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
