package exchange

import (
	"log"
	"time"

	"gitlab.com/open-soft/go-balance-bot/src/model"
	"gitlab.com/open-soft/go-balance-bot/src/repository"
	"gitlab.com/open-soft/go-balance-bot/src/service"
)

const idlePollInterval = 100 * time.Millisecond

// PortfolioEngine is the single consumer of the event queue and the only
// goroutine that mutates the portfolio store and the trend state. Stream
// listeners, the automation timer and the HTTP layer reach it exclusively
// through the queue and the command channel.
type PortfolioEngine struct {
	Queue             *service.EventQueue
	Store             *PortfolioStore
	TrendService      *TrendService
	AllocationService *AllocationService
	OrderExecutor     *OrderExecutor
	Scheduler         *AutomationScheduler
	PriceLog          repository.PriceLogInterface
	BacklogMonitor    *service.BacklogMonitor
	Metrics           *service.Metrics
	Commands          chan model.EngineCommand
}

func (e *PortfolioEngine) Run() {
	for {
		select {
		case command := <-e.Commands:
			e.handleCommand(command)
		default:
			if e.ProcessOne() {
				continue
			}

			select {
			case command := <-e.Commands:
				e.handleCommand(command)
			case <-time.After(idlePollInterval):
			}
		}
	}
}

// ProcessOne is the incremental drain mode: one event, then yield back to
// the loop so commands stay responsive under a deep backlog.
func (e *PortfolioEngine) ProcessOne() bool {
	event, ok := e.Queue.Dequeue()
	if !ok {
		return false
	}

	e.apply(event)
	e.BacklogMonitor.Update(e.Queue.Len())

	return true
}

// Flush drains the queue synchronously. Called before intent computation and
// before every submission so that decisions act on the freshest state.
func (e *PortfolioEngine) Flush() {
	for {
		event, ok := e.Queue.Dequeue()
		if !ok {
			break
		}

		e.apply(event)
	}

	e.BacklogMonitor.Update(e.Queue.Len())
}

func (e *PortfolioEngine) apply(event model.InboundEvent) {
	switch event.Kind {
	case model.EventKindTicker:
		ticker := event.Ticker
		e.Store.ApplyTickerUpdate(ticker.Symbol, ticker.BidPrice.Value(), ticker.AskPrice.Value())

		if err := e.PriceLog.SavePrice(ticker.Symbol, ticker.EventTime, ticker.WeightedAvgPrice.Value(), ticker.MidPrice()); err != nil {
			log.Printf("[%s] SavePrice: %s", ticker.Symbol, err.Error())
		}

		e.RefreshStatuses()
	case model.EventKindAccount:
		e.Store.ApplyAccountUpdate(event.Account.Balances)
		e.RefreshStatuses()
	case model.EventKindExecution:
		asset := e.Store.GetAssetByPair(event.Execution.Symbol)
		if asset == nil {
			return
		}

		e.OrderExecutor.HandleExecutionReport(asset, *event.Execution)
		e.RefreshStatuses()
	case model.EventKindKline:
		kline := event.Kline.Kline
		if !kline.IsClosed {
			return
		}

		asset := e.Store.GetAssetByPair(kline.Symbol)
		if asset == nil {
			return
		}

		e.TrendService.Append(asset.Symbol, kline.ToCandle())
	}
}

// RefreshStatuses recomputes every asset's action and feasibility status
// from the current ledger and republishes the snapshot. An asset with an
// unresolved order shows Trade Placed until the fill clears the guard.
func (e *PortfolioEngine) RefreshStatuses() {
	snapshot := e.Store.Snapshot()

	for _, intent := range e.AllocationService.ComputeIntents(snapshot) {
		asset := e.Store.GetAsset(intent.Symbol)
		if asset == nil {
			continue
		}

		asset.Action = intent.Action

		if asset.CanSubmitOrder() {
			asset.Status = intent.Status
		} else {
			asset.Status = model.StatusTradePlaced
		}
	}

	e.Metrics.TotalValue.Set(e.Store.TotalValue())
	e.Store.PublishSnapshot()
}

// RebalancePass runs one side of a rebalance cycle. The queue is flushed
// before every intent so each submission acts on post-fill balances, which
// matters when the sell pass frees the quote the buy pass spends.
func (e *PortfolioEngine) RebalancePass(side string, dryRun bool) {
	e.Flush()

	for _, symbol := range e.Store.Symbols() {
		asset := e.Store.GetAsset(symbol)
		if asset.IsQuoteCurrency(e.Store.QuoteCurrency) {
			continue
		}

		e.Flush()

		snapshot := e.Store.Snapshot()
		intent := e.AllocationService.ComputeIntent(snapshot, snapshot.GetAsset(symbol))

		if intent.Side != side {
			continue
		}

		if !intent.IsReady() {
			asset.Status = intent.Status
			asset.Action = intent.Action
			continue
		}

		if !e.OrderExecutor.CanSubmit(asset) {
			log.Printf("[%s] Skipped, previous order not fully resolved", asset.Pair)
			continue
		}

		status, err := e.OrderExecutor.Submit(asset, intent, dryRun)
		asset.Status = status
		asset.Action = intent.Action

		if err != nil {
			log.Printf("[%s] Submission failed: %s", asset.Pair, err.Error())
		}
	}

	e.RefreshStatuses()
}

func (e *PortfolioEngine) handleCommand(command model.EngineCommand) {
	switch command.Type {
	case model.CommandToggleAutomation:
		if e.Scheduler.Toggle() {
			e.RebalancePass(model.SideSell, false)
			e.RebalancePass(model.SideBuy, false)
			e.Scheduler.Arm()
		}
	case model.CommandRebalance:
		if !e.Scheduler.Automating {
			return
		}

		e.RebalancePass(model.SideSell, false)
		e.RebalancePass(model.SideBuy, false)
		e.Scheduler.Arm()
	case model.CommandSellPass:
		e.RebalancePass(model.SideSell, false)
	case model.CommandBuyPass:
		e.RebalancePass(model.SideBuy, false)
	case model.CommandDryRun:
		log.Printf("Testing connection")
		e.RebalancePass(model.SideSell, true)
		e.RebalancePass(model.SideBuy, true)
	}
}
