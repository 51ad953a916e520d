package validator

import (
	"errors"
	"fmt"
	"math"

	"gitlab.com/open-soft/go-balance-bot/src/model"
)

const allocationSumEpsilon = 1e-6

type ConfigValidator struct {
}

// Validate enforces the startup contract: any violation is fatal and the
// engine must not start.
func (v *ConfigValidator) Validate(config model.EngineConfig) error {
	if config.QuoteCurrency == "" {
		return errors.New("quote currency is not configured")
	}

	if config.RebalanceInterval <= 0 {
		return errors.New("rebalance period must be a positive integer (seconds)")
	}

	if config.OrderType != model.OrderTypeMarket && config.OrderType != model.OrderTypeLimit {
		return errors.New(fmt.Sprintf("%s is not a supported trade type, use MARKET or LIMIT", config.OrderType))
	}

	if config.MinTradeValue < 0 {
		return errors.New("minimum trade value override must be positive")
	}

	if config.IgnoreBacklog < 0 {
		return errors.New("backlog ignore threshold can not be negative")
	}

	if config.TrendLookbackHrs <= 0 {
		return errors.New("trend lookback must be a positive integer (hours)")
	}

	if len(config.Allocations) == 0 {
		return errors.New("allocation table is empty")
	}

	seen := make(map[string]bool)
	quoteConfigured := false
	sum := 0.00

	for _, allocation := range config.Allocations {
		if seen[allocation.Symbol] {
			return errors.New(fmt.Sprintf("duplicate allocation for %s", allocation.Symbol))
		}
		seen[allocation.Symbol] = true

		if allocation.TargetPercent.Value() < 0 {
			return errors.New(fmt.Sprintf("negative allocation for %s", allocation.Symbol))
		}

		if allocation.FixedBalance < 0 {
			return errors.New(fmt.Sprintf("negative fixed balance for %s", allocation.Symbol))
		}

		if allocation.Symbol == config.QuoteCurrency {
			quoteConfigured = true
		}

		sum += allocation.TargetPercent.Value()
	}

	if math.Abs(sum-100.00) > allocationSumEpsilon {
		return errors.New(fmt.Sprintf("coin allocations do not sum to 100%%, got %.4f", sum))
	}

	if !quoteConfigured {
		return errors.New(fmt.Sprintf("allocation table has no row for quote currency %s", config.QuoteCurrency))
	}

	return nil
}
