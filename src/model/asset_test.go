package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanSubmitOrderGuard(t *testing.T) {
	assertion := assert.New(t)

	asset := Asset{Symbol: "ETH"}
	assertion.True(asset.CanSubmitOrder())

	placed := time.Now()
	asset.LastPlacement = &placed
	assertion.False(asset.CanSubmitOrder())

	executed := placed.Add(time.Second)
	asset.LastExecution = &executed
	assertion.True(asset.CanSubmitOrder())

	stale := placed.Add(-time.Minute)
	asset.LastExecution = &stale
	assertion.False(asset.CanSubmitOrder())

	asset.LastExecution = &placed
	assertion.True(asset.CanSubmitOrder())
}

func TestFreeExcludesLockedBalance(t *testing.T) {
	assertion := assert.New(t)

	asset := Asset{ExchangeBalance: 10.00, LockedBalance: 3.00}
	assertion.Equal(7.00, asset.Free())
}

func TestValueIncludesFixedBalance(t *testing.T) {
	assertion := assert.New(t)

	asset := Asset{ExchangeBalance: 10.00, FixedBalance: 2.00, LastPrice: 0.05}
	assertion.InDelta(0.60, asset.Value(), 1e-9)
}

func TestQuoteFreeFallsBackToZero(t *testing.T) {
	assertion := assert.New(t)

	snapshot := PortfolioSnapshot{QuoteCurrency: "BTC"}
	assertion.Equal(0.00, snapshot.QuoteFree())

	snapshot.Assets = append(snapshot.Assets, Asset{
		Symbol:          "BTC",
		ExchangeBalance: 2.00,
		LockedBalance:   0.50,
	})
	assertion.Equal(1.50, snapshot.QuoteFree())
}

func TestPriceAcceptsStringAndNumber(t *testing.T) {
	assertion := assert.New(t)

	var fromString Price
	assertion.Nil(json.Unmarshal([]byte(`"0.05310000"`), &fromString))
	assertion.Equal(0.0531, fromString.Value())

	var fromNumber Price
	assertion.Nil(json.Unmarshal([]byte(`0.0531`), &fromNumber))
	assertion.Equal(0.0531, fromNumber.Value())
}

func TestKLineHistoryDecodesPositionalRow(t *testing.T) {
	assertion := assert.New(t)

	raw := []byte(`[1699200000000,"0.0530","0.0533","0.0529","0.0532","120.5",1699200059999,"6.41",100,"60.2","3.20","0"]`)

	var row KLineHistory
	assertion.Nil(json.Unmarshal(raw, &row))
	assertion.Equal(int64(1699200000000), row.OpenTime.Value())
	assertion.Equal(0.053, row.Open.Value())
	assertion.Equal(0.0532, row.Close.Value())
	assertion.Equal(int64(1699200059999), row.CloseTime.Value())

	candle := row.ToCandle()
	assertion.Equal(0.0532, candle.Close)

	var short KLineHistory
	assertion.NotNil(json.Unmarshal([]byte(`[1699200000000,"0.0530"]`), &short))
}

func TestBinanceErrorClassification(t *testing.T) {
	assertion := assert.New(t)

	rateLimited := BinanceError{Code: -1003, Msg: "Too much request weight used"}
	assertion.True(rateLimited.ToExchangeError().IsTransient())

	badKey := BinanceError{Code: -2014, Msg: "API-key format invalid"}
	assertion.True(badKey.ToExchangeError().IsFatal())

	rejection := BinanceError{Code: -1013, Msg: "Filter failure: LOT_SIZE"}
	exchangeError := rejection.ToExchangeError()
	assertion.True(exchangeError.IsAssetScoped())
	assertion.Equal("(-1013) Filter failure: LOT_SIZE", exchangeError.Error())
}

func TestExecutionEventFillDetection(t *testing.T) {
	assertion := assert.New(t)

	partial := ExecutionEvent{OrderQuantity: 5.00, CumulativeFilledQty: 3.00}
	assertion.False(partial.IsFullyFilled())

	full := ExecutionEvent{OrderQuantity: 5.00, CumulativeFilledQty: 5.00}
	assertion.True(full.IsFullyFilled())
}
