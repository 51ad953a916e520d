package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gitlab.com/open-soft/go-balance-bot/src/client"
	"gitlab.com/open-soft/go-balance-bot/src/model"
)

type BalanceServiceInterface interface {
	GetBalances(cache bool) (map[string]model.Balance, error)
	InvalidateBalanceCache()
}

type BalanceService struct {
	RDB        *redis.Client
	Ctx        *context.Context
	CurrentBot *model.Bot
	Binance    client.ExchangeAccountAPIInterface
}

func (b *BalanceService) GetBalances(cache bool) (map[string]model.Balance, error) {
	balanceMap := make(map[string]model.Balance)

	cached := b.RDB.Get(*b.Ctx, b.getAccountCacheKey()).Val()

	if len(cached) > 0 && cache {
		var account model.AccountStatus
		err := json.Unmarshal([]byte(cached), &account)

		if err == nil {
			for _, balance := range account.Balances {
				balanceMap[balance.Asset] = balance
			}

			return balanceMap, nil
		}
	}

	account, err := b.Binance.GetAccountStatus()
	if err != nil {
		return balanceMap, err
	}

	if encoded, err := json.Marshal(account); err == nil {
		b.RDB.Set(*b.Ctx, b.getAccountCacheKey(), encoded, time.Minute)
	}

	for _, balance := range account.Balances {
		balanceMap[balance.Asset] = balance
	}

	return balanceMap, nil
}

func (b *BalanceService) InvalidateBalanceCache() {
	b.RDB.Del(*b.Ctx, b.getAccountCacheKey())
}

func (b *BalanceService) getAccountCacheKey() string {
	return fmt.Sprintf("account-status-%d", b.CurrentBot.Id)
}
