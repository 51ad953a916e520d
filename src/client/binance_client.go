package client

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	uuid2 "github.com/google/uuid"
	"github.com/gorilla/websocket"
	"gitlab.com/open-soft/go-balance-bot/src/model"
)

type ExchangeOrderAPIInterface interface {
	PlaceOrder(symbol string, side string, orderType string, quantity string, price string, dryRun bool) (model.BinanceOrder, error)
}

type ExchangeAccountAPIInterface interface {
	GetAccountStatus() (*model.AccountStatus, error)
	GetExchangeData(symbols []string) (*model.ExchangeInfo, error)
	GetTickers(symbols []string) []model.WSTickerPrice
	GetKLines(symbol string, interval string, limit int64) []model.KLineHistory
	UserDataStreamStart() (string, error)
}

type ExchangeAPIInterface interface {
	ExchangeOrderAPIInterface
	ExchangeAccountAPIInterface
}

const orderSubmitTimeout = time.Second * 10
const querySubmitTimeout = time.Second * 30

type Binance struct {
	ApiKey    string
	ApiSecret string

	connection   *websocket.Conn
	Channel      chan []byte
	SocketWriter chan []byte

	WaitMode  bool
	Connected bool
	Lock      *sync.Mutex
}

func (b *Binance) IsWaitingMode() bool {
	b.Lock.Lock()
	isWaiting := b.WaitMode
	b.Lock.Unlock()

	return isWaiting
}

func (b *Binance) SetWaitingMode(isEnabled bool) {
	b.Lock.Lock()
	b.WaitMode = isEnabled
	b.Lock.Unlock()
}

func (b *Binance) CheckWait() {
	for {
		if !b.IsWaitingMode() {
			break
		}

		time.Sleep(time.Millisecond * 100)
	}
}

func (b *Binance) Connect(address string) {
	connection, _, err := websocket.DefaultDialer.Dial(address, nil)
	if err != nil {
		b.Connected = false
		log.Printf("Binance WS [%s]: %s, wait and reconnect...", address, err.Error())
		time.Sleep(time.Second * 10)
		b.Connect(address)
		return
	}

	// reader channel
	go func() {
		for {
			_, message, err := connection.ReadMessage()
			if err != nil {
				log.Println("read: ", err)

				_ = connection.Close()
				b.Connected = false
				log.Printf("Binance WS, wait and reconnect...")
				time.Sleep(time.Second * 10)
				b.Connect(address)
				return
			}

			b.Channel <- message
		}
	}()

	// writer channel
	go func() {
		for {
			serialized := <-b.SocketWriter
			_ = b.connection.WriteMessage(websocket.TextMessage, serialized)
		}
	}()

	b.connection = connection
	b.Connected = true
	b.connection.SetPingHandler(nil)
}

func (b *Binance) socketRequest(req model.SocketRequest, channel chan []byte) {
	b.CheckWait()

	go func(req model.SocketRequest) {
		for {
			msg := <-b.Channel

			if strings.Contains(string(msg), "Too much request weight used") {
				b.SetWaitingMode(true)

				log.Printf(
					"[%s] Socket error [%s]: %s, wait 1 min and retry...",
					req.Method,
					req.Id,
					string(msg),
				)

				time.Sleep(time.Minute)
				serialized, _ := json.Marshal(req)
				b.SetWaitingMode(false)

				b.SocketWriter <- serialized
				log.Printf("[%s] retried...", req.Id)

				continue
			}

			if strings.Contains(string(msg), req.Id) {
				channel <- msg
				return
			}

			b.Channel <- msg
		}
	}(req)

	serialized, _ := json.Marshal(req)
	b.SocketWriter <- serialized
}

func (b *Binance) GetAccountStatus() (*model.AccountStatus, error) {
	channel := make(chan []byte, 1)

	socketRequest := model.SocketRequest{
		Id:     uuid2.New().String(),
		Method: "account.status",
		Params: make(map[string]any),
	}

	socketRequest.Params["apiKey"] = b.ApiKey
	socketRequest.Params["timestamp"] = time.Now().Unix() * 1000
	socketRequest.Params["signature"] = b.signature(socketRequest.Params)
	b.socketRequest(socketRequest, channel)

	message, err := b.awaitResponse(channel, querySubmitTimeout)
	if err != nil {
		return nil, err
	}

	var response model.AccountStatusResponse
	json.Unmarshal(message, &response)

	if response.Error != nil {
		log.Printf("account.status: %s", response.Error.GetMessage())

		return nil, response.Error.ToExchangeError()
	}

	return &response.Result, nil
}

func (b *Binance) GetExchangeData(symbols []string) (*model.ExchangeInfo, error) {
	channel := make(chan []byte, 1)

	socketRequest := model.SocketRequest{
		Id:     uuid2.New().String(),
		Method: "exchangeInfo",
		Params: make(map[string]any),
	}
	if len(symbols) > 0 {
		socketRequest.Params["symbols"] = symbols
	}
	b.socketRequest(socketRequest, channel)

	message, err := b.awaitResponse(channel, querySubmitTimeout)
	if err != nil {
		return nil, err
	}

	var response model.ExchangeInfoResponse
	json.Unmarshal(message, &response)

	if response.Error != nil {
		return &model.ExchangeInfo{}, response.Error.ToExchangeError()
	}

	return &response.Result, nil
}

func (b *Binance) GetTickers(symbols []string) []model.WSTickerPrice {
	channel := make(chan []byte, 1)

	socketRequest := model.SocketRequest{
		Id:     uuid2.New().String(),
		Method: "ticker.price",
		Params: make(map[string]any),
	}

	socketRequest.Params["symbols"] = symbols
	b.socketRequest(socketRequest, channel)

	message, err := b.awaitResponse(channel, querySubmitTimeout)
	if err != nil {
		return make([]model.WSTickerPrice, 0)
	}

	var response model.TickersPriceResponse
	json.Unmarshal(message, &response)

	if response.Error != nil {
		log.Printf("ticker.price: %s", response.Error.GetMessage())
		return make([]model.WSTickerPrice, 0)
	}

	return response.Result
}

func (b *Binance) GetKLines(symbol string, interval string, limit int64) []model.KLineHistory {
	channel := make(chan []byte, 1)

	socketRequest := model.SocketRequest{
		Id:     uuid2.New().String(),
		Method: "klines",
		Params: make(map[string]any),
	}

	socketRequest.Params["symbol"] = symbol
	socketRequest.Params["interval"] = interval
	socketRequest.Params["limit"] = limit
	b.socketRequest(socketRequest, channel)

	message, err := b.awaitResponse(channel, querySubmitTimeout)
	if err != nil {
		return make([]model.KLineHistory, 0)
	}

	var response model.KLinesResponse
	json.Unmarshal(message, &response)

	if response.Error != nil {
		log.Printf("[%s] klines: %s", symbol, response.Error.GetMessage())
		return make([]model.KLineHistory, 0)
	}

	return response.Result
}

func (b *Binance) UserDataStreamStart() (string, error) {
	channel := make(chan []byte, 1)

	socketRequest := model.SocketRequest{
		Id:     uuid2.New().String(),
		Method: "userDataStream.start",
		Params: make(map[string]any),
	}
	socketRequest.Params["apiKey"] = b.ApiKey
	b.socketRequest(socketRequest, channel)

	message, err := b.awaitResponse(channel, querySubmitTimeout)
	if err != nil {
		return "", err
	}

	var response model.UserDataStreamResponse
	json.Unmarshal(message, &response)

	if response.Error != nil {
		return "", response.Error.ToExchangeError()
	}

	return response.Result.ListenKey, nil
}

// PlaceOrder submits one order as a blocking round-trip. A dry run goes to
// the venue's validation endpoint and is never executed. A failure before
// anything was written to the socket is transient and safe to retry; a
// timeout after the request went out is ambiguous and must not be retried,
// the next automation cycle decides from fresh state.
func (b *Binance) PlaceOrder(symbol string, side string, orderType string, quantity string, price string, dryRun bool) (model.BinanceOrder, error) {
	if !b.Connected {
		return model.BinanceOrder{}, &model.ExchangeError{
			Kind:    model.ErrorKindTransient,
			Message: "venue connection is down",
		}
	}

	method := "order.place"
	if dryRun {
		method = "order.test"
	}

	channel := make(chan []byte, 1)

	socketRequest := model.SocketRequest{
		Id:     uuid2.New().String(),
		Method: method,
		Params: make(map[string]any),
	}
	socketRequest.Params["symbol"] = symbol
	socketRequest.Params["side"] = side
	socketRequest.Params["type"] = orderType
	socketRequest.Params["quantity"] = quantity

	if orderType == model.OrderTypeLimit {
		socketRequest.Params["price"] = price
		socketRequest.Params["timeInForce"] = "GTC"
	}

	socketRequest.Params["apiKey"] = b.ApiKey
	socketRequest.Params["timestamp"] = time.Now().Unix() * 1000
	socketRequest.Params["signature"] = b.signature(socketRequest.Params)
	b.socketRequest(socketRequest, channel)

	message, err := b.awaitResponse(channel, orderSubmitTimeout)
	if err != nil {
		log.Printf("[%s] %s: no response within %s", symbol, method, orderSubmitTimeout)

		return model.BinanceOrder{}, &model.ExchangeError{
			Kind:    model.ErrorKindAssetScoped,
			Message: "order submission timed out",
		}
	}

	var response model.OrderResponse
	json.Unmarshal(message, &response)

	if response.Error != nil {
		log.Printf("[%s] %s: %s", symbol, method, response.Error.GetMessage())

		return model.BinanceOrder{}, response.Error.ToExchangeError()
	}

	return response.Result, nil
}

func (b *Binance) awaitResponse(channel chan []byte, timeout time.Duration) ([]byte, error) {
	select {
	case message := <-channel:
		return message, nil
	case <-time.After(timeout):
		return nil, &model.ExchangeError{
			Kind:    model.ErrorKindTransient,
			Message: fmt.Sprintf("venue response timeout after %s", timeout),
		}
	}
}

func (b *Binance) signature(params map[string]any) string {
	parts := make([]string, 0)

	keys := make([]string, 0, len(params))

	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", key, params[key]))
	}

	mac := hmac.New(sha256.New, []byte(b.ApiSecret))
	mac.Write([]byte(strings.Join(parts, "&")))
	signingKey := fmt.Sprintf("%x", mac.Sum(nil))

	return signingKey
}
