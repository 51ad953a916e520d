package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/open-soft/go-balance-bot/src/model"
)

func TestClassifyTickerEvent(t *testing.T) {
	assertion := assert.New(t)
	router := EventRouter{Queue: &EventQueue{}, Metrics: NewNoopMetrics()}

	raw := []byte(`{"e":"24hrTicker","E":1699200000000,"s":"ETHBTC","b":"0.05310000","a":"0.05320000","w":"0.05315500"}`)

	event, err := router.Classify(raw)
	assertion.Nil(err)
	assertion.Equal(model.EventKindTicker, event.Kind)
	assertion.Equal("ETHBTC", event.Ticker.Symbol)
	assertion.Equal(0.0531, event.Ticker.BidPrice.Value())
	assertion.Equal(0.0532, event.Ticker.AskPrice.Value())
	assertion.InDelta(0.05315, event.Ticker.MidPrice(), 1e-9)
}

func TestClassifyUnwrapsCombinedStreamEnvelope(t *testing.T) {
	assertion := assert.New(t)
	router := EventRouter{Queue: &EventQueue{}, Metrics: NewNoopMetrics()}

	raw := []byte(`{"stream":"ethbtc@ticker","data":{"e":"24hrTicker","E":1699200000000,"s":"ETHBTC","b":"0.053","a":"0.054","w":"0.0535"}}`)

	event, err := router.Classify(raw)
	assertion.Nil(err)
	assertion.Equal(model.EventKindTicker, event.Kind)
	assertion.Equal("ETHBTC", event.Ticker.Symbol)
}

func TestClassifyAccountEvent(t *testing.T) {
	assertion := assert.New(t)
	router := EventRouter{Queue: &EventQueue{}, Metrics: NewNoopMetrics()}

	raw := []byte(`{"e":"outboundAccountPosition","E":1699200000000,"B":[{"a":"BTC","f":"1.5","l":"0.5"},{"a":"ETH","f":"10","l":"0"}]}`)

	event, err := router.Classify(raw)
	assertion.Nil(err)
	assertion.Equal(model.EventKindAccount, event.Kind)
	assertion.Len(event.Account.Balances, 2)
	assertion.Equal("BTC", event.Account.Balances[0].Asset)
	assertion.Equal(1.50, event.Account.Balances[0].Free.Value())
	assertion.Equal(0.50, event.Account.Balances[0].Locked.Value())
}

func TestClassifyExecutionReport(t *testing.T) {
	assertion := assert.New(t)
	router := EventRouter{Queue: &EventQueue{}, Metrics: NewNoopMetrics()}

	raw := []byte(`{"e":"executionReport","E":1699200000000,"s":"ETHBTC","S":"SELL","o":"MARKET","q":"5.0","p":"0","x":"TRADE","X":"PARTIALLY_FILLED","i":12345,"l":"3.0","z":"3.0","L":"0.0531","T":1699200000100}`)

	event, err := router.Classify(raw)
	assertion.Nil(err)
	assertion.Equal(model.EventKindExecution, event.Kind)
	assertion.Equal("SELL", event.Execution.Side)
	assertion.False(event.Execution.IsFullyFilled())
}

func TestClassifyKlineEvent(t *testing.T) {
	assertion := assert.New(t)
	router := EventRouter{Queue: &EventQueue{}, Metrics: NewNoopMetrics()}

	raw := []byte(`{"e":"kline","E":1699200060000,"s":"ETHBTC","k":{"t":1699200000000,"T":1699200059999,"s":"ETHBTC","i":"1m","o":"0.0530","c":"0.0532","h":"0.0533","l":"0.0529","x":true}}`)

	event, err := router.Classify(raw)
	assertion.Nil(err)
	assertion.Equal(model.EventKindKline, event.Kind)
	assertion.True(event.Kline.Kline.IsClosed)
	assertion.Equal(0.0532, event.Kline.Kline.Close.Value())
}

func TestClassifyOpenCandleKeepsIsClosedFalse(t *testing.T) {
	assertion := assert.New(t)
	router := EventRouter{Queue: &EventQueue{}, Metrics: NewNoopMetrics()}

	raw := []byte(`{"e":"kline","E":1699200030000,"s":"ETHBTC","k":{"t":1699200000000,"T":1699200059999,"s":"ETHBTC","i":"1m","o":"0.0530","c":"0.0531","h":"0.0531","l":"0.0530","x":false}}`)

	event, err := router.Classify(raw)
	assertion.Nil(err)
	assertion.False(event.Kline.Kline.IsClosed)
}

func TestClassifyUnknownKind(t *testing.T) {
	assertion := assert.New(t)
	router := EventRouter{Queue: &EventQueue{}, Metrics: NewNoopMetrics()}

	_, err := router.Classify([]byte(`{"e":"depthUpdate","s":"ETHBTC"}`))
	assertion.ErrorIs(err, ErrUnknownEventKind)
}

func TestClassifyMalformedPayload(t *testing.T) {
	assertion := assert.New(t)
	router := EventRouter{Queue: &EventQueue{}, Metrics: NewNoopMetrics()}

	_, err := router.Classify([]byte(`{"e":"24hrTicker","b":"0.053"}`))
	var parseError *ParseError
	assertion.ErrorAs(err, &parseError)
	assertion.Equal(model.EventKindTicker, parseError.Kind)

	_, err = router.Classify([]byte(`not json at all`))
	assertion.ErrorAs(err, &parseError)
}

func TestRouteDropsMalformedAndKeepsGoing(t *testing.T) {
	assertion := assert.New(t)
	queue := EventQueue{}
	router := EventRouter{Queue: &queue, Metrics: NewNoopMetrics()}

	router.Route([]byte(`{"e":"24hrTicker"}`))
	assertion.Equal(0, queue.Len())

	router.Route([]byte(`{"e":"24hrTicker","E":1699200000000,"s":"ETHBTC","b":"0.053","a":"0.054","w":"0.0535"}`))
	assertion.Equal(1, queue.Len())
}

func TestEventQueueIsFifo(t *testing.T) {
	assertion := assert.New(t)
	queue := EventQueue{}

	_, ok := queue.Dequeue()
	assertion.False(ok)

	queue.Enqueue(model.InboundEvent{Kind: model.EventKindTicker})
	queue.Enqueue(model.InboundEvent{Kind: model.EventKindAccount})
	queue.Enqueue(model.InboundEvent{Kind: model.EventKindKline})

	assertion.Equal(3, queue.Len())

	first, ok := queue.Dequeue()
	assertion.True(ok)
	assertion.Equal(model.EventKindTicker, first.Kind)

	second, _ := queue.Dequeue()
	assertion.Equal(model.EventKindAccount, second.Kind)

	third, _ := queue.Dequeue()
	assertion.Equal(model.EventKindKline, third.Kind)

	assertion.Equal(0, queue.Len())
}
