package exchange

import (
	"fmt"
	"math"

	"gitlab.com/open-soft/go-balance-bot/src/model"
	"gitlab.com/open-soft/go-balance-bot/src/utils"
)

// AllocationService derives per-asset trade intents from a portfolio
// snapshot. Pure computation: it never mutates the ledger and every asset
// receives exactly one feasibility status per cycle.
type AllocationService struct {
	Formatter *utils.Formatter
}

func (a *AllocationService) ComputeIntents(snapshot model.PortfolioSnapshot) []model.TradeIntent {
	intents := make([]model.TradeIntent, 0, len(snapshot.Assets))

	for index := range snapshot.Assets {
		intents = append(intents, a.ComputeIntent(snapshot, &snapshot.Assets[index]))
	}

	return intents
}

func (a *AllocationService) ComputeIntent(snapshot model.PortfolioSnapshot, asset *model.Asset) model.TradeIntent {
	diff := 0.00
	if asset.LastPrice > 0 {
		diff = (asset.TargetPercent.Value() - asset.ActualPercent.Value()) / 100.0 * snapshot.TotalValue / asset.LastPrice
	}

	side := model.SideBuy
	price := asset.AskPrice
	if diff < 0 {
		side = model.SideSell
		price = asset.BidPrice
	}

	quantity := math.Abs(diff)
	quantized := a.Formatter.QuantizeDown(quantity, asset.StepSize)

	intent := model.TradeIntent{
		Symbol:            asset.Symbol,
		Pair:              asset.Pair,
		Side:              side,
		Quantity:          quantity,
		QuantizedQuantity: quantized,
		Price:             price,
		Action:            fmt.Sprintf("%s %s", side, quantized),
	}

	intent.Status = a.feasibilityStatus(snapshot, asset, intent)

	return intent
}

// feasibilityStatus applies the fixed-priority rule chain; the first match
// wins. The quote currency is never traded against itself and always
// reports Ready.
func (a *AllocationService) feasibilityStatus(snapshot model.PortfolioSnapshot, asset *model.Asset, intent model.TradeIntent) string {
	if asset.IsQuoteCurrency(snapshot.QuoteCurrency) {
		return model.StatusReady
	}

	if intent.Side == model.SideSell && intent.Quantity > asset.Free() {
		return fmt.Sprintf("Insufficient %s for sale", asset.Symbol)
	}

	if intent.Quantity < asset.MinQuantity || intent.Quantity*intent.Price < asset.MinNotional {
		percentOfMinimum := 0.00
		if asset.MinNotional > 0 {
			percentOfMinimum = 100.0 * intent.Quantity * intent.Price / asset.MinNotional
		}

		return fmt.Sprintf("Trade value too small (%.0f%% of minimum)", percentOfMinimum)
	}

	if intent.Quantity > asset.MaxQuantity {
		return "Trade quantity too large"
	}

	if intent.Side == model.SideBuy && intent.Quantity*intent.Price > snapshot.QuoteFree() {
		return fmt.Sprintf("Insufficient %s for purchase", snapshot.QuoteCurrency)
	}

	return model.StatusTradeReady
}
