package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"gitlab.com/open-soft/go-balance-bot/src/client"
	"gitlab.com/open-soft/go-balance-bot/src/config"
	"gitlab.com/open-soft/go-balance-bot/src/model"
)

func main() {
	pwd, _ := os.Getwd()
	if _, err := os.Stat(fmt.Sprintf("%s/.env", pwd)); err == nil {
		log.Println(".env is found, loading variables...")
		err = godotenv.Load()
		if err != nil {
			log.Println(err)
		}
	}

	container := config.InitServiceContainer()
	defer container.Db.Close()

	container.Binance.Connect(os.Getenv("BINANCE_WS_DSN"))

	if err := container.PortfolioSeeder.Seed(); err != nil {
		log.Fatal(fmt.Sprintf("Portfolio seeding failed: %s", err.Error()))
	}

	log.Printf(
		"Portfolio is seeded, %d assets, total value %.2f %s",
		len(container.PortfolioStore.Symbols()),
		container.PortfolioStore.TotalValue(),
		container.Config.QuoteCurrency,
	)

	container.StartHttpServer()

	go container.PortfolioEngine.Run()

	// Venue-side connection test before any live order can happen.
	container.PortfolioEngine.Commands <- model.EngineCommand{Type: model.CommandDryRun}

	eventChannel := make(chan []byte)
	go func() {
		for {
			message := <-eventChannel
			container.EventRouter.Route(message)
		}
	}()

	pairs := make([]string, 0)
	for _, symbol := range container.PortfolioStore.Symbols() {
		if symbol == container.Config.QuoteCurrency {
			continue
		}

		pairs = append(pairs, container.PortfolioStore.GetAsset(symbol).Pair)
	}

	websockets := make([]*websocket.Conn, 0)
	marketEvents := []string{"@ticker", fmt.Sprintf("@kline_%s", container.Config.KlineInterval)}

	for index, streamBatchItem := range client.GetStreamBatch(pairs, marketEvents) {
		websockets = append(websockets, client.Listen(fmt.Sprintf(
			"%s/stream?streams=%s",
			os.Getenv("BINANCE_STREAM_DSN"),
			strings.Join(streamBatchItem, "/"),
		), eventChannel, []string{}, int64(index)))

		log.Printf("Batch %d websocket: %s", index, strings.Join(streamBatchItem, ", "))

		defer websockets[index].Close()
	}

	listenKey, err := container.Binance.UserDataStreamStart()
	if err != nil {
		log.Fatal(fmt.Sprintf("User data stream failed: %s", err.Error()))
	}

	userDataSocket := client.Listen(fmt.Sprintf(
		"%s/ws/%s",
		os.Getenv("BINANCE_STREAM_DSN"),
		listenKey,
	), eventChannel, []string{}, int64(len(websockets)))
	defer userDataSocket.Close()

	log.Printf("User data websocket: %s", listenKey)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	if container.OrderExecutor.TradesCompleted < container.OrderExecutor.TradesPlaced {
		log.Printf(
			"Shutting down with unresolved orders: %d placed, %d completed",
			container.OrderExecutor.TradesPlaced,
			container.OrderExecutor.TradesCompleted,
		)
	}

	log.Printf("Shutdown")
}
