package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/open-soft/go-balance-bot/src/model"
	"gitlab.com/open-soft/go-balance-bot/src/utils"
)

func rebalanceSnapshot() model.PortfolioSnapshot {
	return model.PortfolioSnapshot{
		QuoteCurrency: "BTC",
		TotalValue:    10.00,
		Assets: []model.Asset{
			{
				Symbol:          "BTC",
				Pair:            "BTCBTC",
				TargetPercent:   30.00,
				ActualPercent:   40.00,
				ExchangeBalance: 4.00,
				LastPrice:       1.00,
				BidPrice:        1.00,
				AskPrice:        1.00,
			},
			{
				Symbol:          "ETH",
				Pair:            "ETHBTC",
				TargetPercent:   40.00,
				ActualPercent:   30.00,
				ExchangeBalance: 60.00,
				LastPrice:       0.05,
				BidPrice:        0.049,
				AskPrice:        0.05,
				StepSize:        0.01,
				MinQuantity:     0.01,
				MaxQuantity:     100000.00,
				MinNotional:     0.0001,
			},
			{
				Symbol:          "LTC",
				Pair:            "LTCBTC",
				TargetPercent:   30.00,
				ActualPercent:   30.00,
				ExchangeBalance: 1000.00,
				LastPrice:       0.003,
				BidPrice:        0.0029,
				AskPrice:        0.003,
				StepSize:        0.01,
				MinQuantity:     0.01,
				MaxQuantity:     100000.00,
				MinNotional:     0.0001,
			},
		},
	}
}

func TestUnderweightAssetGetsBuyIntent(t *testing.T) {
	assertion := assert.New(t)
	allocationService := AllocationService{Formatter: &utils.Formatter{}}

	snapshot := rebalanceSnapshot()
	intent := allocationService.ComputeIntent(snapshot, snapshot.GetAsset("ETH"))

	// (40 - 30) / 100 * 10 / 0.05 = 20
	assertion.Equal(model.SideBuy, intent.Side)
	assertion.InDelta(20.00, intent.Quantity, 1e-9)
	assertion.Equal("20", intent.QuantizedQuantity)
	assertion.Equal("BUY 20", intent.Action)
	assertion.Equal(0.05, intent.Price)
	assertion.Equal(model.StatusTradeReady, intent.Status)
}

func TestOverweightAssetGetsSellIntentAtBid(t *testing.T) {
	assertion := assert.New(t)
	allocationService := AllocationService{Formatter: &utils.Formatter{}}

	snapshot := rebalanceSnapshot()
	eth := snapshot.GetAsset("ETH")
	eth.TargetPercent = 20.00

	intent := allocationService.ComputeIntent(snapshot, eth)

	assertion.Equal(model.SideSell, intent.Side)
	assertion.InDelta(20.00, intent.Quantity, 1e-9)
	assertion.Equal(0.049, intent.Price)
	assertion.Equal("SELL 20", intent.Action)
	assertion.Equal(model.StatusTradeReady, intent.Status)
}

func TestQuoteCurrencyIsAlwaysReady(t *testing.T) {
	assertion := assert.New(t)
	allocationService := AllocationService{Formatter: &utils.Formatter{}}

	snapshot := rebalanceSnapshot()
	intent := allocationService.ComputeIntent(snapshot, snapshot.GetAsset("BTC"))

	assertion.Equal(model.StatusReady, intent.Status)
}

func TestInsufficientAssetForSale(t *testing.T) {
	assertion := assert.New(t)
	allocationService := AllocationService{Formatter: &utils.Formatter{}}

	snapshot := rebalanceSnapshot()
	eth := snapshot.GetAsset("ETH")
	eth.TargetPercent = 20.00
	eth.LockedBalance = 50.00

	intent := allocationService.ComputeIntent(snapshot, eth)

	assertion.Equal(model.SideSell, intent.Side)
	assertion.Equal("Insufficient ETH for sale", intent.Status)
	assertion.False(intent.IsReady())
}

func TestTradeValueTooSmall(t *testing.T) {
	assertion := assert.New(t)
	allocationService := AllocationService{Formatter: &utils.Formatter{}}

	snapshot := rebalanceSnapshot()
	eth := snapshot.GetAsset("ETH")
	eth.ActualPercent = 39.99
	eth.MinNotional = 0.01

	intent := allocationService.ComputeIntent(snapshot, eth)

	// qty = 0.02, value = 0.001, 10% of the 0.01 minimum
	assertion.Equal("Trade value too small (10% of minimum)", intent.Status)
}

func TestTradeQuantityTooLarge(t *testing.T) {
	assertion := assert.New(t)
	allocationService := AllocationService{Formatter: &utils.Formatter{}}

	snapshot := rebalanceSnapshot()
	eth := snapshot.GetAsset("ETH")
	eth.MaxQuantity = 10.00

	intent := allocationService.ComputeIntent(snapshot, eth)

	assertion.Equal("Trade quantity too large", intent.Status)
}

func TestInsufficientQuoteForPurchase(t *testing.T) {
	assertion := assert.New(t)
	allocationService := AllocationService{Formatter: &utils.Formatter{}}

	snapshot := rebalanceSnapshot()
	btc := snapshot.GetAsset("BTC")
	btc.ExchangeBalance = 0.50

	intent := allocationService.ComputeIntent(snapshot, snapshot.GetAsset("ETH"))

	// buy needs 20 * 0.05 = 1.0 BTC, only 0.5 free
	assertion.Equal("Insufficient BTC for purchase", intent.Status)
}

func TestFeasibilityPriorityOrder(t *testing.T) {
	assertion := assert.New(t)
	allocationService := AllocationService{Formatter: &utils.Formatter{}}

	// both rule 3 (too small) and rule 5 (insufficient quote) match,
	// the earlier rule must win
	snapshot := rebalanceSnapshot()
	eth := snapshot.GetAsset("ETH")
	eth.ActualPercent = 39.99
	eth.MinNotional = 0.01
	snapshot.GetAsset("BTC").ExchangeBalance = 0.00

	intent := allocationService.ComputeIntent(snapshot, eth)
	assertion.Equal("Trade value too small (10% of minimum)", intent.Status)

	// rule 2 (insufficient sale) outranks rule 3
	snapshot = rebalanceSnapshot()
	eth = snapshot.GetAsset("ETH")
	eth.TargetPercent = 39.99
	eth.ActualPercent = 40.00
	eth.MinNotional = 0.01
	eth.LockedBalance = 60.00

	intent = allocationService.ComputeIntent(snapshot, eth)
	assertion.Equal("Insufficient ETH for sale", intent.Status)
}

func TestZeroPriceProducesNoQuantity(t *testing.T) {
	assertion := assert.New(t)
	allocationService := AllocationService{Formatter: &utils.Formatter{}}

	snapshot := rebalanceSnapshot()
	eth := snapshot.GetAsset("ETH")
	eth.LastPrice = 0.00

	intent := allocationService.ComputeIntent(snapshot, eth)

	assertion.Equal(0.00, intent.Quantity)
	assertion.Equal("0", intent.QuantizedQuantity)
	assertion.False(intent.IsReady())
}

func TestEveryAssetGetsExactlyOneStatus(t *testing.T) {
	assertion := assert.New(t)
	allocationService := AllocationService{Formatter: &utils.Formatter{}}

	snapshot := rebalanceSnapshot()
	intents := allocationService.ComputeIntents(snapshot)

	assertion.Len(intents, 3)
	for _, intent := range intents {
		assertion.NotEmpty(intent.Status)
	}
}
