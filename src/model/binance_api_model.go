package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

type SocketRequest struct {
	Id     string         `json:"id"`
	Method string         `json:"method"`
	Params map[string]any `json:"params"`
}

type SocketStreamsRequest struct {
	Id     int64    `json:"id"`
	Method string   `json:"method"`
	Params []string `json:"params"`
}

type BinanceError struct {
	Code int64  `json:"code"`
	Msg  string `json:"msg"`
}

func (e *BinanceError) GetMessage() string {
	return fmt.Sprintf("(%d) %s", e.Code, e.Msg)
}

// ToExchangeError maps venue error codes onto the engine's result kinds.
// Order rejections (filters, unknown or inactive symbol, insufficient
// balance) stay scoped to the asset; timing and rate problems are retryable.
func (e *BinanceError) ToExchangeError() *ExchangeError {
	kind := ErrorKindAssetScoped

	switch e.Code {
	case -1001, -1003, -1021:
		kind = ErrorKindTransient
	case -1002, -2014, -2015:
		kind = ErrorKindFatal
	}

	return &ExchangeError{
		Kind:    kind,
		Code:    e.Code,
		Message: e.GetMessage(),
	}
}

type Balance struct {
	Asset  string   `json:"asset"`
	Free   Quantity `json:"free"`
	Locked Quantity `json:"locked"`
}

type AccountStatus struct {
	Balances []Balance `json:"balances"`
}

type AccountStatusResponse struct {
	Id     string        `json:"id"`
	Error  *BinanceError `json:"error"`
	Result AccountStatus `json:"result"`
}

const BinanceExchangeFilterTypePrice = "PRICE_FILTER"
const BinanceExchangeFilterTypeLotSize = "LOT_SIZE"
const BinanceExchangeFilterTypeNotional = "NOTIONAL"
const BinanceExchangeFilterTypeMinNotional = "MIN_NOTIONAL"

type ExchangeFilter struct {
	FilterType  string    `json:"filterType"`
	MinPrice    *Price    `json:"minPrice"`
	MaxPrice    *Price    `json:"maxPrice"`
	TickSize    *Price    `json:"tickSize"`
	MinQuantity *Quantity `json:"minQty"`
	MaxQuantity *Quantity `json:"maxQty"`
	StepSize    *Quantity `json:"stepSize"`
	MinNotional *Price    `json:"minNotional"`
}

type ExchangeSymbol struct {
	Symbol     string           `json:"symbol"`
	Status     string           `json:"status"`
	BaseAsset  string           `json:"baseAsset"`
	QuoteAsset string           `json:"quoteAsset"`
	Filters    []ExchangeFilter `json:"filters"`
}

func (s *ExchangeSymbol) GetFilter(filterType string) *ExchangeFilter {
	for index, filter := range s.Filters {
		if filter.FilterType == filterType {
			return &s.Filters[index]
		}
	}

	return nil
}

func (s *ExchangeSymbol) IsTrading() bool {
	return s.Status == "TRADING"
}

type ExchangeInfo struct {
	Symbols []ExchangeSymbol `json:"symbols"`
}

type ExchangeInfoResponse struct {
	Id     string        `json:"id"`
	Error  *BinanceError `json:"error"`
	Result ExchangeInfo  `json:"result"`
}

type WSTickerPrice struct {
	Symbol string `json:"symbol"`
	Price  Price  `json:"price"`
}

type TickersPriceResponse struct {
	Id     string          `json:"id"`
	Error  *BinanceError   `json:"error"`
	Result []WSTickerPrice `json:"result"`
}

type OrderResponse struct {
	Id     string        `json:"id"`
	Error  *BinanceError `json:"error"`
	Result BinanceOrder  `json:"result"`
}

type UserDataStream struct {
	ListenKey string `json:"listenKey"`
}

type UserDataStreamResponse struct {
	Id     string         `json:"id"`
	Error  *BinanceError  `json:"error"`
	Result UserDataStream `json:"result"`
}

// KLineHistory is one row of the REST-style klines response, which the
// venue encodes as a positional array.
type KLineHistory struct {
	OpenTime  TimestampMilli
	Open      Price
	High      Price
	Low       Price
	Close     Price
	Volume    Quantity
	CloseTime TimestampMilli
}

func (k *KLineHistory) UnmarshalJSON(b []byte) error {
	var row []json.RawMessage
	if err := json.Unmarshal(b, &row); err != nil {
		return err
	}

	if len(row) < 7 {
		return errors.New(fmt.Sprintf("KLineHistory: expected 7+ columns, got %d", len(row)))
	}

	if err := json.Unmarshal(row[0], &k.OpenTime); err != nil {
		return err
	}
	if err := json.Unmarshal(row[1], &k.Open); err != nil {
		return err
	}
	if err := json.Unmarshal(row[2], &k.High); err != nil {
		return err
	}
	if err := json.Unmarshal(row[3], &k.Low); err != nil {
		return err
	}
	if err := json.Unmarshal(row[4], &k.Close); err != nil {
		return err
	}
	if err := json.Unmarshal(row[5], &k.Volume); err != nil {
		return err
	}

	return json.Unmarshal(row[6], &k.CloseTime)
}

func (k *KLineHistory) ToCandle() Candle {
	return Candle{
		OpenTime:  k.OpenTime,
		CloseTime: k.CloseTime,
		Open:      k.Open.Value(),
		High:      k.High.Value(),
		Low:       k.Low.Value(),
		Close:     k.Close.Value(),
	}
}

type KLinesResponse struct {
	Id     string         `json:"id"`
	Error  *BinanceError  `json:"error"`
	Result []KLineHistory `json:"result"`
}
