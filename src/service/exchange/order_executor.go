package exchange

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gitlab.com/open-soft/go-balance-bot/src/client"
	"gitlab.com/open-soft/go-balance-bot/src/model"
	"gitlab.com/open-soft/go-balance-bot/src/repository"
	"gitlab.com/open-soft/go-balance-bot/src/service"
	"gitlab.com/open-soft/go-balance-bot/src/utils"
)

// OrderExecutor owns the per-asset submission state machine. An asset is
// Idle when its last placement has fully resolved and Placed otherwise;
// partial fills keep it Placed, so the next automation cycle skips it
// instead of double-ordering.
type OrderExecutor struct {
	Binance         client.ExchangeOrderAPIInterface
	TradeRepository repository.TradeHistoryInterface
	Formatter       *utils.Formatter
	TimeService     utils.TimeServiceInterface
	Metrics         *service.Metrics
	OrderType       string

	TradesPlaced    int64
	TradesCompleted int64
}

func (e *OrderExecutor) CanSubmit(asset *model.Asset) bool {
	return asset.CanSubmitOrder()
}

// Submit places one order for a ready intent and returns the asset's new
// status. Rejections never transition the state machine: the asset keeps
// its pre-submission feasibility status and the venue's reason becomes the
// asset event text. A dry run validates the order venue-side without ever
// touching state or counters.
func (e *OrderExecutor) Submit(asset *model.Asset, intent model.TradeIntent, dryRun bool) (string, error) {
	quantizedPrice := e.Formatter.QuantizeDown(intent.Price, asset.TickSize)

	order, err := e.Binance.PlaceOrder(
		intent.Pair,
		intent.Side,
		e.OrderType,
		intent.QuantizedQuantity,
		quantizedPrice,
		dryRun,
	)

	if err != nil {
		var exchangeError *model.ExchangeError
		if errors.As(err, &exchangeError) && exchangeError.IsTransient() {
			log.Printf("[%s] Transient submission error, retry once: %s", intent.Pair, err.Error())
			order, err = e.Binance.PlaceOrder(
				intent.Pair,
				intent.Side,
				e.OrderType,
				intent.QuantizedQuantity,
				quantizedPrice,
				dryRun,
			)
		}
	}

	if err != nil {
		e.Metrics.OrdersRejected.Inc()
		asset.Event = err.Error()

		return intent.Status, err
	}

	if dryRun {
		log.Printf("[%s] Dry run accepted: %s", intent.Pair, intent.Action)

		return intent.Status, nil
	}

	now := time.Now()
	asset.LastPlacement = &now
	asset.Event = model.StatusTradePlaced
	e.TradesPlaced++
	e.Metrics.TradesPlaced.Inc()

	log.Printf("[%s] Order placed: %s (order id %d)", intent.Pair, intent.Action, order.OrderId)

	return model.StatusTradePlaced, nil
}

// HandleExecutionReport appends the report to the trade history and clears
// the submission guard on a full fill. Partial fills update the event text
// only.
func (e *OrderExecutor) HandleExecutionReport(asset *model.Asset, event model.ExecutionEvent) {
	if err := e.TradeRepository.SaveTrade(event); err != nil {
		log.Printf("[%s] SaveTrade: %s", event.Symbol, err.Error())
	}

	asset.Event = fmt.Sprintf(
		"%s %s/%s %s",
		event.Side,
		e.Formatter.QuantizeDown(event.CumulativeFilledQty.Value(), 0),
		e.Formatter.QuantizeDown(event.OrderQuantity.Value(), 0),
		e.TimeService.GetNowDateTimeString(),
	)

	if !event.IsFullyFilled() {
		return
	}

	now := time.Now()
	asset.LastExecution = &now
	e.TradesCompleted++
	e.Metrics.TradesCompleted.Inc()
}
