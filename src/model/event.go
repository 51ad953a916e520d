package model

const EventKindTicker = "ticker"
const EventKindAccount = "account"
const EventKindExecution = "execution"
const EventKindKline = "kline"

// TickerEvent is the 24hr ticker stream payload. Short codes are decoded
// here once; nothing downstream indexes the raw frame.
type TickerEvent struct {
	EventType        string         `json:"e"`
	EventTime        TimestampMilli `json:"E"`
	Symbol           string         `json:"s"`
	BidPrice         Price          `json:"b"`
	AskPrice         Price          `json:"a"`
	WeightedAvgPrice Price          `json:"w"`
}

func (t *TickerEvent) MidPrice() float64 {
	return (t.BidPrice.Value() + t.AskPrice.Value()) / 2.0
}

type AccountBalance struct {
	Asset  string   `json:"a"`
	Free   Quantity `json:"f"`
	Locked Quantity `json:"l"`
}

type AccountEvent struct {
	EventType string           `json:"e"`
	EventTime TimestampMilli   `json:"E"`
	Balances  []AccountBalance `json:"B"`
}

type ExecutionEvent struct {
	EventType           string         `json:"e"`
	EventTime           TimestampMilli `json:"E"`
	Symbol              string         `json:"s"`
	Side                string         `json:"S"`
	OrderType           string         `json:"o"`
	OrderQuantity       Quantity       `json:"q"`
	OrderPrice          Price          `json:"p"`
	ExecutionType       string         `json:"x"`
	OrderStatus         string         `json:"X"`
	OrderId             int64          `json:"i"`
	LastExecutedQty     Quantity       `json:"l"`
	CumulativeFilledQty Quantity       `json:"z"`
	LastExecutedPrice   Price          `json:"L"`
	TransactionTime     TimestampMilli `json:"T"`
}

func (e *ExecutionEvent) IsFullyFilled() bool {
	return e.CumulativeFilledQty.Value() >= e.OrderQuantity.Value()
}

type KlineData struct {
	OpenTime  TimestampMilli `json:"t"`
	CloseTime TimestampMilli `json:"T"`
	Symbol    string         `json:"s"`
	Interval  string         `json:"i"`
	Open      Price          `json:"o"`
	Close     Price          `json:"c"`
	High      Price          `json:"h"`
	Low       Price          `json:"l"`
	IsClosed  bool           `json:"x"`
}

type KlineEvent struct {
	EventType string         `json:"e"`
	EventTime TimestampMilli `json:"E"`
	Symbol    string         `json:"s"`
	Kline     KlineData      `json:"k"`
}

func (k *KlineData) ToCandle() Candle {
	return Candle{
		OpenTime:  k.OpenTime,
		CloseTime: k.CloseTime,
		Open:      k.Open.Value(),
		High:      k.High.Value(),
		Low:       k.Low.Value(),
		Close:     k.Close.Value(),
	}
}

// InboundEvent is the tagged union queued between the stream producers and
// the engine goroutine. Exactly one payload pointer is set, matching Kind.
type InboundEvent struct {
	Kind      string
	Ticker    *TickerEvent
	Account   *AccountEvent
	Execution *ExecutionEvent
	Kline     *KlineEvent
}

type Candle struct {
	OpenTime  TimestampMilli `json:"openTime"`
	CloseTime TimestampMilli `json:"closeTime"`
	Open      float64        `json:"open"`
	High      float64        `json:"high"`
	Low       float64        `json:"low"`
	Close     float64        `json:"close"`
}
