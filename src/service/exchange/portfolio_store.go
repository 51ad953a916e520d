package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gitlab.com/open-soft/go-balance-bot/src/model"
)

// PortfolioStore is the authoritative in-memory ledger. It is owned by the
// engine goroutine: every mutation happens there, producers only enqueue.
// Each balance or price mutation is followed by a full recompute of the
// total value and every actual percentage in the same step; a partial
// recompute would corrupt every downstream allocation decision.
type PortfolioStore struct {
	QuoteCurrency string
	RDB           *redis.Client
	Ctx           *context.Context
	CurrentBot    *model.Bot

	assets map[string]*model.Asset
	order  []string

	totalValue float64
	imbalance  model.Percent
}

func (s *PortfolioStore) SetAsset(asset *model.Asset) {
	if s.assets == nil {
		s.assets = make(map[string]*model.Asset)
	}

	if _, ok := s.assets[asset.Symbol]; !ok {
		s.order = append(s.order, asset.Symbol)
	}

	s.assets[asset.Symbol] = asset
	s.recompute()
}

func (s *PortfolioStore) GetAsset(symbol string) *model.Asset {
	return s.assets[symbol]
}

// GetAssetByPair resolves the base asset of a traded pair, e.g. ETHBTC
// with quote BTC resolves to ETH.
func (s *PortfolioStore) GetAssetByPair(pair string) *model.Asset {
	if !strings.HasSuffix(pair, s.QuoteCurrency) {
		return nil
	}

	symbol := strings.TrimSuffix(pair, s.QuoteCurrency)
	if symbol == "" {
		symbol = s.QuoteCurrency
	}

	return s.assets[symbol]
}

func (s *PortfolioStore) Symbols() []string {
	return s.order
}

func (s *PortfolioStore) TotalValue() float64 {
	return s.totalValue
}

func (s *PortfolioStore) Imbalance() model.Percent {
	return s.imbalance
}

func (s *PortfolioStore) ApplyTickerUpdate(pair string, bid float64, ask float64) {
	asset := s.GetAssetByPair(pair)
	if asset == nil {
		return
	}

	asset.BidPrice = bid
	asset.AskPrice = ask
	asset.LastPrice = ask
	s.recompute()
}

func (s *PortfolioStore) ApplyAccountUpdate(balances []model.AccountBalance) {
	for _, balance := range balances {
		asset, ok := s.assets[balance.Asset]
		if !ok {
			continue
		}

		asset.ExchangeBalance = balance.Free.Value() + balance.Locked.Value()
		asset.LockedBalance = balance.Locked.Value()
	}

	s.recompute()
}

// recompute refreshes totalValue and every actualPct together. Never call
// it for a subset of assets.
func (s *PortfolioStore) recompute() {
	total := 0.00
	for _, symbol := range s.order {
		total += s.assets[symbol].Value()
	}
	s.totalValue = total

	imbalance := 0.00
	for _, symbol := range s.order {
		asset := s.assets[symbol]

		if total > 0 {
			asset.ActualPercent = model.Percent(100.0 * asset.Value() / total)
		} else {
			asset.ActualPercent = 0
		}

		imbalance += math.Abs(asset.ActualPercent.Value() - asset.TargetPercent.Value())
	}
	s.imbalance = model.Percent(imbalance)
}

// Snapshot copies the ledger for the allocation engine and the HTTP layer
// and caches it in redis so that controllers never read engine-owned state.
func (s *PortfolioStore) Snapshot() model.PortfolioSnapshot {
	snapshot := model.PortfolioSnapshot{
		QuoteCurrency: s.QuoteCurrency,
		Assets:        make([]model.Asset, 0, len(s.order)),
		TotalValue:    s.totalValue,
		Imbalance:     s.imbalance,
		UpdatedAt:     time.Now().Unix(),
	}

	for _, symbol := range s.order {
		snapshot.Assets = append(snapshot.Assets, *s.assets[symbol])
	}

	return snapshot
}

func (s *PortfolioStore) PublishSnapshot() {
	if s.RDB == nil {
		return
	}

	snapshot := s.Snapshot()

	encoded, err := json.Marshal(snapshot)
	if err != nil {
		return
	}

	s.RDB.Set(*s.Ctx, s.getSnapshotCacheKey(), string(encoded), time.Minute)
}

// CachedSnapshot returns the last published snapshot JSON verbatim, empty
// when nothing has been published yet.
func (s *PortfolioStore) CachedSnapshot() string {
	if s.RDB == nil {
		return ""
	}

	return s.RDB.Get(*s.Ctx, s.getSnapshotCacheKey()).Val()
}

func (s *PortfolioStore) getSnapshotCacheKey() string {
	return fmt.Sprintf("portfolio-snapshot-%d", s.CurrentBot.Id)
}
