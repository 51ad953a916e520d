package model

const ErrorKindFatal = "fatal"
const ErrorKindAssetScoped = "asset_scoped"
const ErrorKindTransient = "transient"

// ExchangeError classifies venue failures so that callers can decide
// between aborting, recording per-asset status text and retrying.
type ExchangeError struct {
	Kind    string `json:"kind"`
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

func (e *ExchangeError) Error() string {
	return e.Message
}

func (e *ExchangeError) IsTransient() bool {
	return e.Kind == ErrorKindTransient
}

func (e *ExchangeError) IsAssetScoped() bool {
	return e.Kind == ErrorKindAssetScoped
}

func (e *ExchangeError) IsFatal() bool {
	return e.Kind == ErrorKindFatal
}

type BinanceOrder struct {
	OrderId     int64          `json:"orderId"`
	Symbol      string         `json:"symbol"`
	Side        string         `json:"side"`
	Type        string         `json:"type"`
	Price       Price          `json:"price"`
	OrigQty     Quantity       `json:"origQty"`
	ExecutedQty Quantity       `json:"executedQty"`
	Status      string         `json:"status"`
	Timestamp   TimestampMilli `json:"transactTime"`
}

// TradeRecord is the append-only trade-history row written for every
// execution report of the session.
type TradeRecord struct {
	Id              int64          `json:"id"`
	Symbol          string         `json:"symbol"`
	Side            string         `json:"side"`
	OrderQuantity   float64        `json:"orderQuantity"`
	FilledQuantity  float64        `json:"filledQuantity"`
	Price           float64        `json:"price"`
	OrderStatus     string         `json:"orderStatus"`
	TransactionTime TimestampMilli `json:"transactionTime"`
}
