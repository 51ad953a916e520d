package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/open-soft/go-balance-bot/src/model"
)

func newTestStore() *PortfolioStore {
	store := &PortfolioStore{QuoteCurrency: "BTC"}

	store.SetAsset(&model.Asset{
		Symbol:          "BTC",
		Pair:            "BTCBTC",
		TargetPercent:   20.00,
		ExchangeBalance: 2.00,
		BidPrice:        1.00,
		AskPrice:        1.00,
		LastPrice:       1.00,
	})
	store.SetAsset(&model.Asset{
		Symbol:          "ETH",
		Pair:            "ETHBTC",
		TargetPercent:   50.00,
		ExchangeBalance: 100.00,
		BidPrice:        0.05,
		AskPrice:        0.05,
		LastPrice:       0.05,
	})
	store.SetAsset(&model.Asset{
		Symbol:          "LTC",
		Pair:            "LTCBTC",
		TargetPercent:   30.00,
		ExchangeBalance: 1000.00,
		BidPrice:        0.003,
		AskPrice:        0.003,
		LastPrice:       0.003,
	})

	return store
}

func actualPercentSum(store *PortfolioStore) float64 {
	sum := 0.00
	for _, symbol := range store.Symbols() {
		sum += store.GetAsset(symbol).ActualPercent.Value()
	}

	return sum
}

func TestActualPercentAlwaysSumsToHundred(t *testing.T) {
	assertion := assert.New(t)
	store := newTestStore()

	assertion.InDelta(100.00, actualPercentSum(store), 1e-6)

	store.ApplyTickerUpdate("ETHBTC", 0.052, 0.053)
	assertion.InDelta(100.00, actualPercentSum(store), 1e-6)

	store.ApplyAccountUpdate([]model.AccountBalance{
		{Asset: "LTC", Free: 1500.00, Locked: 0.00},
	})
	assertion.InDelta(100.00, actualPercentSum(store), 1e-6)

	store.ApplyTickerUpdate("LTCBTC", 0.0029, 0.0031)
	store.ApplyTickerUpdate("ETHBTC", 0.055, 0.056)
	store.ApplyAccountUpdate([]model.AccountBalance{
		{Asset: "BTC", Free: 0.50, Locked: 0.25},
		{Asset: "ETH", Free: 80.00, Locked: 20.00},
	})
	assertion.InDelta(100.00, actualPercentSum(store), 1e-6)
}

func TestTickerUpdateRecomputesTotalValue(t *testing.T) {
	assertion := assert.New(t)
	store := newTestStore()

	// 2*1.0 + 100*0.05 + 1000*0.003
	assertion.InDelta(10.00, store.TotalValue(), 1e-9)

	store.ApplyTickerUpdate("ETHBTC", 0.059, 0.06)

	eth := store.GetAsset("ETH")
	assertion.Equal(0.059, eth.BidPrice)
	assertion.Equal(0.06, eth.AskPrice)
	assertion.Equal(0.06, eth.LastPrice)
	assertion.InDelta(11.00, store.TotalValue(), 1e-9)
	assertion.InDelta(100.0*6.0/11.0, eth.ActualPercent.Value(), 1e-9)
}

func TestAccountUpdateKeepsLockedInsideExchangeBalance(t *testing.T) {
	assertion := assert.New(t)
	store := newTestStore()

	store.ApplyAccountUpdate([]model.AccountBalance{
		{Asset: "ETH", Free: 60.00, Locked: 40.00},
	})

	eth := store.GetAsset("ETH")
	assertion.Equal(100.00, eth.ExchangeBalance)
	assertion.Equal(40.00, eth.LockedBalance)
	assertion.Equal(60.00, eth.Free())
}

func TestAccountUpdateIgnoresUnknownAssets(t *testing.T) {
	assertion := assert.New(t)
	store := newTestStore()

	store.ApplyAccountUpdate([]model.AccountBalance{
		{Asset: "XRP", Free: 500.00, Locked: 0.00},
	})

	assertion.Nil(store.GetAsset("XRP"))
	assertion.InDelta(10.00, store.TotalValue(), 1e-9)
}

func TestGetAssetByPair(t *testing.T) {
	assertion := assert.New(t)
	store := newTestStore()

	assertion.Equal("ETH", store.GetAssetByPair("ETHBTC").Symbol)
	assertion.Equal("BTC", store.GetAssetByPair("BTCBTC").Symbol)
	assertion.Nil(store.GetAssetByPair("ETHUSDT"))
	assertion.Nil(store.GetAssetByPair("XRPBTC"))
}

func TestFixedBalanceCountsTowardsValue(t *testing.T) {
	assertion := assert.New(t)
	store := &PortfolioStore{QuoteCurrency: "BTC"}

	store.SetAsset(&model.Asset{
		Symbol:          "ETH",
		Pair:            "ETHBTC",
		TargetPercent:   100.00,
		ExchangeBalance: 10.00,
		FixedBalance:    5.00,
		LastPrice:       0.05,
	})

	assertion.InDelta(0.75, store.TotalValue(), 1e-9)
}

func TestSnapshotIsACopy(t *testing.T) {
	assertion := assert.New(t)
	store := newTestStore()

	snapshot := store.Snapshot()
	snapshot.Assets[0].ExchangeBalance = 9999.00

	assertion.Equal(2.00, store.GetAsset("BTC").ExchangeBalance)
	assertion.Equal("BTC", snapshot.QuoteCurrency)
	assertion.Len(snapshot.Assets, 3)
}
