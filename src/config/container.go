package config

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gitlab.com/open-soft/go-balance-bot/src/client"
	"gitlab.com/open-soft/go-balance-bot/src/controller"
	"gitlab.com/open-soft/go-balance-bot/src/model"
	"gitlab.com/open-soft/go-balance-bot/src/repository"
	"gitlab.com/open-soft/go-balance-bot/src/service"
	"gitlab.com/open-soft/go-balance-bot/src/service/exchange"
	"gitlab.com/open-soft/go-balance-bot/src/utils"
	"gitlab.com/open-soft/go-balance-bot/src/validator"
)

type Container struct {
	Db         *sql.DB
	RDB        *redis.Client
	Ctx        *context.Context
	CurrentBot *model.Bot
	Config     model.EngineConfig

	Binance *client.Binance

	AllocationRepository *repository.AllocationRepository
	TradeRepository      *repository.TradeRepository

	PrometheusMetrics *service.PrometheusMetrics
	Metrics           *service.Metrics
	EventQueue        *service.EventQueue
	EventRouter       *service.EventRouter
	BacklogMonitor    *service.BacklogMonitor

	PortfolioStore    *exchange.PortfolioStore
	TrendService      *exchange.TrendService
	AllocationService *exchange.AllocationService
	OrderExecutor     *exchange.OrderExecutor
	Scheduler         *exchange.AutomationScheduler
	BalanceService    *exchange.BalanceService
	PortfolioSeeder   *exchange.PortfolioSeeder
	PortfolioEngine   *exchange.PortfolioEngine

	PortfolioController *controller.PortfolioController
}

func InitServiceContainer() Container {
	db, err := sql.Open("mysql", os.Getenv("DATABASE_DSN"))

	if err != nil {
		log.Fatal(fmt.Sprintf("MySQL can't connect: %s", err.Error()))
	}

	db.SetMaxIdleConns(64)
	db.SetMaxOpenConns(64)
	db.SetConnMaxLifetime(time.Minute)

	var ctx = context.Background()
	rdb := redis.NewClient(&redis.Options{
		Addr:     os.Getenv("REDIS_DSN"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	binance := client.Binance{
		ApiKey:       os.Getenv("BINANCE_API_KEY"),
		ApiSecret:    os.Getenv("BINANCE_API_SECRET"),
		Channel:      make(chan []byte),
		SocketWriter: make(chan []byte),
		WaitMode:     false,
		Connected:    false,
		Lock:         &sync.Mutex{},
	}

	botRepository := repository.BotRepository{
		DB:  db,
		RDB: rdb,
		Ctx: &ctx,
	}

	currentBot := resolveCurrentBot(&botRepository, os.Getenv("BOT_UUID"))

	log.Printf("Bot [%s] is initialized successfully", currentBot.BotUuid)

	allocationRepository := repository.AllocationRepository{
		DB:         db,
		RDB:        rdb,
		Ctx:        &ctx,
		CurrentBot: currentBot,
	}

	engineConfig := model.EngineConfig{
		QuoteCurrency:     os.Getenv("QUOTE_CURRENCY"),
		RebalanceInterval: getEnvInt64("REBALANCE_INTERVAL", 300),
		MinTradeValue:     getEnvFloat64("MIN_TRADE_VALUE", 0.00),
		OrderType:         getEnvDefault("ORDER_TYPE", model.OrderTypeMarket),
		IgnoreBacklog:     getEnvInt64("IGNORE_BACKLOG", 0),
		TrendLookbackHrs:  getEnvInt64("TREND_LOOKBACK_HOURS", 26),
		KlineInterval:     getEnvDefault("KLINE_INTERVAL", "1m"),
		Allocations:       allocationRepository.GetAllocations(),
	}

	configValidator := validator.ConfigValidator{}
	if err := configValidator.Validate(engineConfig); err != nil {
		log.Fatal(fmt.Sprintf("Invalid configuration: %s", err.Error()))
	}

	prometheusMetrics := service.NewPrometheusMetrics()
	metrics := prometheusMetrics.Metrics

	eventQueue := service.EventQueue{}
	eventRouter := service.EventRouter{
		Queue:   &eventQueue,
		Metrics: metrics,
	}
	backlogMonitor := service.BacklogMonitor{
		IgnoreBacklog: engineConfig.IgnoreBacklog,
		Metrics:       metrics,
	}

	portfolioStore := exchange.PortfolioStore{
		QuoteCurrency: engineConfig.QuoteCurrency,
		RDB:           rdb,
		Ctx:           &ctx,
		CurrentBot:    currentBot,
	}

	trendService := exchange.TrendService{
		Window:          engineConfig.TrendWindow(),
		FastPeriod:      12,
		SlowPeriod:      26,
		SignalPeriod:    9,
		IntervalMinutes: klineIntervalMinutes(engineConfig.KlineInterval),
	}

	formatter := utils.Formatter{}
	timeHelper := utils.TimeHelper{}

	tradeRepository := repository.TradeRepository{
		DB:         db,
		CurrentBot: currentBot,
	}

	allocationService := exchange.AllocationService{
		Formatter: &formatter,
	}

	orderExecutor := exchange.OrderExecutor{
		Binance:         &binance,
		TradeRepository: &tradeRepository,
		Formatter:       &formatter,
		TimeService:     &timeHelper,
		Metrics:         metrics,
		OrderType:       engineConfig.OrderType,
	}

	commands := make(chan model.EngineCommand, 64)

	scheduler := exchange.AutomationScheduler{
		Interval: time.Duration(engineConfig.RebalanceInterval) * time.Second,
		Commands: commands,
	}

	balanceService := exchange.BalanceService{
		RDB:        rdb,
		Ctx:        &ctx,
		CurrentBot: currentBot,
		Binance:    &binance,
	}

	portfolioSeeder := exchange.PortfolioSeeder{
		Binance:              &binance,
		BalanceService:       &balanceService,
		AllocationRepository: &allocationRepository,
		Store:                &portfolioStore,
		TrendService:         &trendService,
		Config:               engineConfig,
	}

	portfolioEngine := exchange.PortfolioEngine{
		Queue:             &eventQueue,
		Store:             &portfolioStore,
		TrendService:      &trendService,
		AllocationService: &allocationService,
		OrderExecutor:     &orderExecutor,
		Scheduler:         &scheduler,
		PriceLog:          &tradeRepository,
		BacklogMonitor:    &backlogMonitor,
		Metrics:           metrics,
		Commands:          commands,
	}

	portfolioController := controller.PortfolioController{
		Snapshot:       &portfolioStore,
		TradeHistory:   &tradeRepository,
		Allocations:    &allocationRepository,
		Commands:       commands,
		BacklogMonitor: &backlogMonitor,
		OrderExecutor:  &orderExecutor,
		Scheduler:      &scheduler,
	}

	return Container{
		Db:                   db,
		RDB:                  rdb,
		Ctx:                  &ctx,
		CurrentBot:           currentBot,
		Config:               engineConfig,
		Binance:              &binance,
		AllocationRepository: &allocationRepository,
		TradeRepository:      &tradeRepository,
		PrometheusMetrics:    prometheusMetrics,
		Metrics:              metrics,
		EventQueue:           &eventQueue,
		EventRouter:          &eventRouter,
		BacklogMonitor:       &backlogMonitor,
		PortfolioStore:       &portfolioStore,
		TrendService:         &trendService,
		AllocationService:    &allocationService,
		OrderExecutor:        &orderExecutor,
		Scheduler:            &scheduler,
		BalanceService:       &balanceService,
		PortfolioSeeder:      &portfolioSeeder,
		PortfolioEngine:      &portfolioEngine,
		PortfolioController:  &portfolioController,
	}
}

func (c *Container) StartHttpServer() {
	http.HandleFunc("/portfolio/list", c.PortfolioController.GetPortfolioListAction)
	http.HandleFunc("/portfolio/status", c.PortfolioController.GetStatusAction)
	http.HandleFunc("/trade/history", c.PortfolioController.GetTradeHistoryAction)
	http.HandleFunc("/allocation/create", c.PortfolioController.PostAllocationCreateAction)
	http.HandleFunc("/automation/toggle", c.PortfolioController.PostAutomationToggleAction)
	http.HandleFunc("/execute/sells", c.PortfolioController.PostExecuteSellsAction)
	http.HandleFunc("/execute/buys", c.PortfolioController.PostExecuteBuysAction)
	http.Handle("/metrics", c.PrometheusMetrics.Handler())

	go func() {
		_ = http.ListenAndServe(":8080", nil)
	}()
}

type BotStorageInterface interface {
	GetCurrentBot() *model.Bot
	Create(bot model.Bot) error
}

// resolveCurrentBot loads the session identity, creating the row on the
// first run against an empty bot table.
func resolveCurrentBot(botRepository BotStorageInterface, botUuid string) *model.Bot {
	currentBot := botRepository.GetCurrentBot()
	if currentBot != nil {
		return currentBot
	}

	if err := botRepository.Create(model.Bot{BotUuid: botUuid}); err != nil {
		panic(err)
	}

	currentBot = botRepository.GetCurrentBot()
	if currentBot == nil {
		panic(fmt.Sprintf("Can't initialize bot: %s", botUuid))
	}

	return currentBot
}

func getEnvDefault(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	return value
}

func getEnvInt64(key string, fallback int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		log.Fatal(fmt.Sprintf("%s must be an integer, got %s", key, value))
	}

	return parsed
}

func getEnvFloat64(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Fatal(fmt.Sprintf("%s must be a number, got %s", key, value))
	}

	return parsed
}

// klineIntervalMinutes maps venue intervals like 1m, 5m, 1h to minutes.
func klineIntervalMinutes(interval string) int {
	if strings.HasSuffix(interval, "h") {
		hours, err := strconv.Atoi(strings.TrimSuffix(interval, "h"))
		if err == nil && hours > 0 {
			return hours * 60
		}
	}

	minutes, err := strconv.Atoi(strings.TrimSuffix(interval, "m"))
	if err == nil && minutes > 0 {
		return minutes
	}

	return 1
}
