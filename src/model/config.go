package model

// EngineConfig carries the validated session configuration. Loading is the
// container's job; the validator refuses to start the engine on any
// violation listed in the config error taxonomy.
type EngineConfig struct {
	QuoteCurrency     string       `json:"quoteCurrency"`
	RebalanceInterval int64        `json:"rebalanceInterval"`
	MinTradeValue     float64      `json:"minTradeValue"`
	OrderType         string       `json:"orderType"`
	IgnoreBacklog     int64        `json:"ignoreBacklog"`
	TrendLookbackHrs  int64        `json:"trendLookbackHours"`
	KlineInterval     string       `json:"klineInterval"`
	Allocations       []Allocation `json:"allocations"`
}

func (c *EngineConfig) HasMinTradeValue() bool {
	return c.MinTradeValue > 0
}

// TrendWindow is the indicator ring capacity: the configured lookback
// expressed in one-minute candles.
func (c *EngineConfig) TrendWindow() int {
	return int(c.TrendLookbackHrs * 60)
}

const CommandToggleAutomation = "toggle_automation"
const CommandRebalance = "rebalance"
const CommandSellPass = "sell_pass"
const CommandBuyPass = "buy_pass"
const CommandDryRun = "dry_run"

// EngineCommand is posted to the engine goroutine by the HTTP layer and the
// automation timer; it never mutates engine state from the caller side.
type EngineCommand struct {
	Type string `json:"type"`
}
