package model

import (
	"time"
)

const SideBuy = "BUY"
const SideSell = "SELL"

const OrderTypeMarket = "MARKET"
const OrderTypeLimit = "LIMIT"

const StatusReady = "Ready"
const StatusTradeReady = "Trade Ready"
const StatusTradePlaced = "Trade Placed"

// Allocation is one row of the configured allocation table.
type Allocation struct {
	Symbol        string  `json:"symbol"`
	TargetPercent Percent `json:"targetPercent"`
	FixedBalance  float64 `json:"fixedBalance"`
}

// Asset is the authoritative ledger row for one portfolio position.
// ExchangeBalance is the TOTAL on-venue balance including the locked part,
// Free() is what can actually be sold. The quote currency is represented by
// an Asset with all venue filters zeroed and price pinned to 1.0.
type Asset struct {
	Symbol        string  `json:"symbol"`
	Pair          string  `json:"pair"`
	TargetPercent Percent `json:"targetPercent"`
	FixedBalance  float64 `json:"fixedBalance"`

	ExchangeBalance float64 `json:"exchangeBalance"`
	LockedBalance   float64 `json:"lockedBalance"`
	BidPrice        float64 `json:"bidPrice"`
	AskPrice        float64 `json:"askPrice"`
	LastPrice       float64 `json:"lastPrice"`

	MinPrice    float64 `json:"minPrice"`
	MaxPrice    float64 `json:"maxPrice"`
	TickSize    float64 `json:"tickSize"`
	MinQuantity float64 `json:"minQuantity"`
	MaxQuantity float64 `json:"maxQuantity"`
	StepSize    float64 `json:"stepSize"`
	MinNotional float64 `json:"minNotional"`

	LastPlacement *time.Time `json:"lastPlacement"`
	LastExecution *time.Time `json:"lastExecution"`

	ActualPercent Percent `json:"actualPercent"`
	Status        string  `json:"status"`
	Action        string  `json:"action"`
	Event         string  `json:"event"`
}

func (a *Asset) Free() float64 {
	return a.ExchangeBalance - a.LockedBalance
}

func (a *Asset) Value() float64 {
	return a.LastPrice * (a.ExchangeBalance + a.FixedBalance)
}

func (a *Asset) IsQuoteCurrency(quoteCurrency string) bool {
	return a.Symbol == quoteCurrency
}

// CanSubmitOrder reports whether the previous order for this asset has fully
// resolved. A resting partially filled order keeps the guard closed.
func (a *Asset) CanSubmitOrder() bool {
	if a.LastPlacement == nil {
		return true
	}

	if a.LastExecution == nil {
		return false
	}

	return !a.LastExecution.Before(*a.LastPlacement)
}

// PortfolioSnapshot is an immutable copy of the ledger handed to the
// allocation engine and to the HTTP layer.
type PortfolioSnapshot struct {
	QuoteCurrency string  `json:"quoteCurrency"`
	Assets        []Asset `json:"assets"`
	TotalValue    float64 `json:"totalValue"`
	Imbalance     Percent `json:"imbalance"`
	UpdatedAt     int64   `json:"updatedAt"`
}

func (s *PortfolioSnapshot) GetAsset(symbol string) *Asset {
	for index := range s.Assets {
		if s.Assets[index].Symbol == symbol {
			return &s.Assets[index]
		}
	}

	return nil
}

func (s *PortfolioSnapshot) QuoteFree() float64 {
	quote := s.GetAsset(s.QuoteCurrency)
	if quote == nil {
		return 0.00
	}

	return quote.Free()
}

// TradeIntent is recomputed every cycle and never persisted.
type TradeIntent struct {
	Symbol            string  `json:"symbol"`
	Pair              string  `json:"pair"`
	Side              string  `json:"side"`
	Quantity          float64 `json:"quantity"`
	QuantizedQuantity string  `json:"quantizedQuantity"`
	Price             float64 `json:"price"`
	Action            string  `json:"action"`
	Status            string  `json:"status"`
}

func (t *TradeIntent) IsReady() bool {
	return t.Status == StatusTradeReady
}
