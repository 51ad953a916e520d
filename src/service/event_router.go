package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"gitlab.com/open-soft/go-balance-bot/src/model"
)

var ErrUnknownEventKind = errors.New("unknown event kind")

// ParseError marks a malformed payload: the frame matched a known kind but
// misses required fields. The event is dropped, processing continues.
type ParseError struct {
	Kind   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s event malformed: %s", e.Kind, e.Reason)
}

// EventQueue is the multi-producer / single-consumer FIFO between the
// stream callbacks and the engine goroutine. Unbounded on purpose: the
// backlog monitor reports staleness, it never drops or blocks producers.
type EventQueue struct {
	mu    sync.Mutex
	items []model.InboundEvent
}

func (q *EventQueue) Enqueue(event model.InboundEvent) {
	q.mu.Lock()
	q.items = append(q.items, event)
	q.mu.Unlock()
}

func (q *EventQueue) Dequeue() (model.InboundEvent, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return model.InboundEvent{}, false
	}

	event := q.items[0]
	q.items = q.items[1:]

	return event, true
}

func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}

// EventRouter decodes raw stream frames into the tagged event union at the
// ingress boundary. Downstream code never touches short payload codes.
type EventRouter struct {
	Queue   *EventQueue
	Metrics *Metrics
}

type eventEnvelope struct {
	EventType string          `json:"e"`
	EventTime json.RawMessage `json:"E"`
	Stream    string          `json:"stream"`
	Data      json.RawMessage `json:"data"`
}

// Classify maps one raw frame to an InboundEvent. Combined-stream frames
// are unwrapped first. Unknown kinds return ErrUnknownEventKind, missing
// required fields return a ParseError.
func (r *EventRouter) Classify(raw []byte) (model.InboundEvent, error) {
	var envelope eventEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return model.InboundEvent{}, &ParseError{Kind: "unknown", Reason: err.Error()}
	}

	payload := raw
	if len(envelope.Data) > 0 && envelope.EventType == "" {
		payload = envelope.Data
		if err := json.Unmarshal(payload, &envelope); err != nil {
			return model.InboundEvent{}, &ParseError{Kind: "unknown", Reason: err.Error()}
		}
	}

	switch {
	case envelope.EventType == "24hrTicker":
		var ticker model.TickerEvent
		if err := json.Unmarshal(payload, &ticker); err != nil {
			return model.InboundEvent{}, &ParseError{Kind: model.EventKindTicker, Reason: err.Error()}
		}
		if ticker.Symbol == "" {
			return model.InboundEvent{}, &ParseError{Kind: model.EventKindTicker, Reason: "missing symbol"}
		}

		return model.InboundEvent{Kind: model.EventKindTicker, Ticker: &ticker}, nil
	case envelope.EventType == "outboundAccountPosition" || envelope.EventType == "outboundAccountInfo":
		var account model.AccountEvent
		if err := json.Unmarshal(payload, &account); err != nil {
			return model.InboundEvent{}, &ParseError{Kind: model.EventKindAccount, Reason: err.Error()}
		}
		if account.Balances == nil {
			return model.InboundEvent{}, &ParseError{Kind: model.EventKindAccount, Reason: "missing balances"}
		}

		return model.InboundEvent{Kind: model.EventKindAccount, Account: &account}, nil
	case envelope.EventType == "executionReport":
		var execution model.ExecutionEvent
		if err := json.Unmarshal(payload, &execution); err != nil {
			return model.InboundEvent{}, &ParseError{Kind: model.EventKindExecution, Reason: err.Error()}
		}
		if execution.Symbol == "" || execution.Side == "" {
			return model.InboundEvent{}, &ParseError{Kind: model.EventKindExecution, Reason: "missing symbol or side"}
		}

		return model.InboundEvent{Kind: model.EventKindExecution, Execution: &execution}, nil
	case strings.Contains(envelope.EventType, "kline"):
		var kline model.KlineEvent
		if err := json.Unmarshal(payload, &kline); err != nil {
			return model.InboundEvent{}, &ParseError{Kind: model.EventKindKline, Reason: err.Error()}
		}
		if kline.Symbol == "" && kline.Kline.Symbol == "" {
			return model.InboundEvent{}, &ParseError{Kind: model.EventKindKline, Reason: "missing symbol"}
		}

		return model.InboundEvent{Kind: model.EventKindKline, Kline: &kline}, nil
	}

	return model.InboundEvent{}, ErrUnknownEventKind
}

// Route classifies one frame and enqueues it. Runs on the producer side;
// it only touches the queue, never the portfolio state.
func (r *EventRouter) Route(raw []byte) {
	event, err := r.Classify(raw)

	if err != nil {
		r.Metrics.EventsDropped.Inc()

		if errors.Is(err, ErrUnknownEventKind) {
			log.Printf("Unrecognized event dropped: %.120s", string(raw))
			return
		}

		log.Printf("Malformed event dropped: %s", err.Error())
		return
	}

	r.Queue.Enqueue(event)
	r.Metrics.QueueDepth.Set(float64(r.Queue.Len()))
}
