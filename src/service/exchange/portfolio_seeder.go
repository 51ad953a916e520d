package exchange

import (
	"errors"
	"fmt"
	"log"

	"gitlab.com/open-soft/go-balance-bot/src/client"
	"gitlab.com/open-soft/go-balance-bot/src/model"
	"gitlab.com/open-soft/go-balance-bot/src/repository"
)

// PortfolioSeeder builds the initial ledger from a venue snapshot: one
// fetch of balances, symbol constraints, prices and candle history per
// configured allocation row. Runs once at session start, before any stream
// is subscribed.
type PortfolioSeeder struct {
	Binance              client.ExchangeAccountAPIInterface
	BalanceService       BalanceServiceInterface
	AllocationRepository repository.AllocationStorageInterface
	Store                *PortfolioStore
	TrendService         *TrendService
	Config               model.EngineConfig
}

func (s *PortfolioSeeder) Seed() error {
	allocations := s.AllocationRepository.GetAllocations()
	if len(allocations) == 0 {
		return errors.New("allocation table is empty")
	}

	balances, err := s.BalanceService.GetBalances(false)
	if err != nil {
		return err
	}

	pairs := make([]string, 0)
	for _, allocation := range allocations {
		if allocation.Symbol != s.Config.QuoteCurrency {
			pairs = append(pairs, allocation.Symbol+s.Config.QuoteCurrency)
		}
	}

	exchangeInfo, err := s.Binance.GetExchangeData(pairs)
	if err != nil {
		return err
	}

	symbolInfo := make(map[string]model.ExchangeSymbol)
	for _, exchangeSymbol := range exchangeInfo.Symbols {
		symbolInfo[exchangeSymbol.Symbol] = exchangeSymbol
	}

	prices := make(map[string]float64)
	for _, ticker := range s.Binance.GetTickers(pairs) {
		prices[ticker.Symbol] = ticker.Price.Value()
	}

	for _, allocation := range allocations {
		log.Printf("[%s] Fetching account information", allocation.Symbol)

		asset := model.Asset{
			Symbol:        allocation.Symbol,
			TargetPercent: allocation.TargetPercent,
			FixedBalance:  allocation.FixedBalance,
		}

		if balance, ok := balances[allocation.Symbol]; ok {
			asset.ExchangeBalance = balance.Free.Value() + balance.Locked.Value()
			asset.LockedBalance = balance.Locked.Value()
		}

		if allocation.Symbol == s.Config.QuoteCurrency {
			// The quote currency trades against nothing: filters stay
			// zeroed and its price is pinned to 1.0.
			asset.Pair = allocation.Symbol + allocation.Symbol
			asset.BidPrice = 1.0
			asset.AskPrice = 1.0
			asset.LastPrice = 1.0
			s.Store.SetAsset(&asset)
			continue
		}

		pair := allocation.Symbol + s.Config.QuoteCurrency
		asset.Pair = pair

		info, ok := symbolInfo[pair]
		if !ok {
			return errors.New(fmt.Sprintf("no exchange info for %s", pair))
		}

		s.applyFilters(&asset, info)

		if s.Config.HasMinTradeValue() {
			asset.MinNotional = s.Config.MinTradeValue
		}

		price := prices[pair]
		asset.BidPrice = price
		asset.AskPrice = price
		asset.LastPrice = price

		s.Store.SetAsset(&asset)

		if !info.IsTrading() {
			// Halted pairs stay in the ledger for valuation, but there is
			// no point preloading candles for a market that cannot move.
			log.Printf("[%s] Pair is not trading (status %s), candle preload skipped", pair, info.Status)
			continue
		}

		history := s.Binance.GetKLines(pair, s.Config.KlineInterval, int64(s.Config.TrendWindow()))
		candles := make([]model.Candle, 0, len(history))
		for _, kline := range history {
			candles = append(candles, kline.ToCandle())
		}
		s.TrendService.Seed(allocation.Symbol, candles)
		log.Printf("[%s] Loaded history, %d candles", pair, len(candles))
	}

	s.Store.PublishSnapshot()

	return nil
}

func (s *PortfolioSeeder) applyFilters(asset *model.Asset, info model.ExchangeSymbol) {
	if filter := info.GetFilter(model.BinanceExchangeFilterTypePrice); filter != nil {
		if filter.MinPrice != nil {
			asset.MinPrice = filter.MinPrice.Value()
		}
		if filter.MaxPrice != nil {
			asset.MaxPrice = filter.MaxPrice.Value()
		}
		if filter.TickSize != nil {
			asset.TickSize = filter.TickSize.Value()
		}
	}

	if filter := info.GetFilter(model.BinanceExchangeFilterTypeLotSize); filter != nil {
		if filter.MinQuantity != nil {
			asset.MinQuantity = filter.MinQuantity.Value()
		}
		if filter.MaxQuantity != nil {
			asset.MaxQuantity = filter.MaxQuantity.Value()
		}
		if filter.StepSize != nil {
			asset.StepSize = filter.StepSize.Value()
		}
	}

	filter := info.GetFilter(model.BinanceExchangeFilterTypeNotional)
	if filter == nil {
		filter = info.GetFilter(model.BinanceExchangeFilterTypeMinNotional)
	}
	if filter != nil && filter.MinNotional != nil {
		asset.MinNotional = filter.MinNotional.Value()
	}
}
