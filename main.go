package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"memetrader/src/analysis"
	"memetrader/src/connectors"
	"memetrader/src/database"
	"memetrader/src/engine"
	"memetrader/src/gate"
	"memetrader/src/notify"
	"memetrader/src/repository"
	"memetrader/src/server"
	"memetrader/src/trading"
	"memetrader/src/wallet"
)

var APP_NAME = os.Getenv("APP_NAME")

func SetupLogger() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))

	level, err := logger.ParseLevel(levelStr)
	if err != nil {
		level = logger.DebugLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	SetupLogger()
	defer handlePanic()

	if err := database.InitMainDB(); err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	w, err := wallet.NewFromBase58(os.Getenv("WALLET_PRIVATE_KEY"))
	if err != nil {
		logger.WithError(err).Fatal("Failed to load wallet")
	}

	connConfig := connectors.GetConfig()
	rpc := connectors.NewRPCClient(connConfig)
	jupiter := connectors.NewJupiterClient(connConfig, rpc, w)
	raydium := connectors.NewRaydiumClient(connConfig, rpc, w)
	safety := connectors.NewSafetyClient(connConfig)
	market := connectors.NewMarketClient(connConfig)
	predict := connectors.NewPredictClient(connConfig)

	notifier := notify.NewNotifier(notify.GetConfig())

	signalGate := gate.NewSignalGate(gate.GetConfig(), repository.NewSignalRepository())
	analyzer := analysis.NewEngine(analysis.GetConfig(), safety, market, predict, notifier)

	tradingConfig := trading.GetConfig()
	router := trading.NewRouter(jupiter, raydium)
	trader := trading.NewTrader(tradingConfig, router, rpc, w.PublicKey())
	ledger := trading.NewLedger()

	positionRepo := repository.NewPositionRepository()
	tradeLogRepo := repository.NewTransactionLogRepository()

	eng := engine.NewEngine(
		engine.GetConfig(),
		signalGate,
		analyzer,
		ledger,
		repository.NewAssessmentRepository(),
		positionRepo,
		repository.NewStatisticsRepository(),
		notifier,
	)

	tradeGate := trading.NewGate(tradingConfig, ledger, trader, positionRepo, tradeLogRepo, eng, eng.IsPaused)
	monitor := trading.NewMonitor(tradingConfig, ledger, trader, positionRepo, tradeLogRepo, eng, eng.IsPaused)
	eng.AttachTrading(tradeGate, monitor)

	if ok, reason := eng.Start(context.Background()); !ok {
		logger.WithField("reason", reason).Fatal("Failed to start pipeline")
	}

	serverConfig := server.GetConfig()
	handlers := server.NewHandlers(serverConfig, eng, repository.NewSignalRepository())
	server.StartServer(serverConfig, handlers)

	eng.Stop()
}

func handlePanic() {
	if r := recover(); r != nil {
		logger.WithError(fmt.Errorf("%+v", r)).Error(fmt.Sprintf("Application %s panic", APP_NAME))
	}
	//nolint
	time.Sleep(time.Second * 5)
}
