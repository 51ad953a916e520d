package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gitlab.com/open-soft/go-balance-bot/src/model"
)

type AllocationStorageInterface interface {
	GetAllocations() []model.Allocation
}

// AllocationRepository loads the configured allocation table: one row per
// asset with its target percentage and externally held fixed balance.
type AllocationRepository struct {
	DB         *sql.DB
	RDB        *redis.Client
	Ctx        *context.Context
	CurrentBot *model.Bot
}

func (a *AllocationRepository) GetAllocations() []model.Allocation {
	cached := a.RDB.Get(*a.Ctx, a.getCacheKey()).Val()

	if len(cached) > 0 {
		var list []model.Allocation
		err := json.Unmarshal([]byte(cached), &list)
		if err == nil {
			return list
		}
	}

	res, err := a.DB.Query(`
		SELECT
		    al.symbol as Symbol,
		    al.target_percent as TargetPercent,
		    al.fixed_balance as FixedBalance
		FROM allocation al WHERE al.bot_id = ? ORDER BY al.id
	`, a.CurrentBot.Id)

	if err != nil {
		log.Fatal(err)
	}
	defer res.Close()

	list := make([]model.Allocation, 0)

	for res.Next() {
		var allocation model.Allocation
		err := res.Scan(
			&allocation.Symbol,
			&allocation.TargetPercent,
			&allocation.FixedBalance,
		)

		if err != nil {
			log.Fatal(err)
		}

		list = append(list, allocation)
	}

	encoded, err := json.Marshal(list)
	if err == nil {
		a.RDB.Set(*a.Ctx, a.getCacheKey(), string(encoded), time.Minute*5)
	}

	return list
}

func (a *AllocationRepository) CreateAllocation(allocation model.Allocation) error {
	_, err := a.DB.Exec(`
		INSERT INTO allocation SET
		    symbol = ?,
		    target_percent = ?,
		    fixed_balance = ?,
		    bot_id = ?
	`,
		allocation.Symbol,
		allocation.TargetPercent.Value(),
		allocation.FixedBalance,
		a.CurrentBot.Id,
	)

	if err == nil {
		a.RDB.Del(*a.Ctx, a.getCacheKey())
	}

	return err
}

func (a *AllocationRepository) getCacheKey() string {
	return fmt.Sprintf("allocation-table-%d", a.CurrentBot.Id)
}
