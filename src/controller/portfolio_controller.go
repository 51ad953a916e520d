package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"gitlab.com/open-soft/go-balance-bot/src/model"
	"gitlab.com/open-soft/go-balance-bot/src/service"
	"gitlab.com/open-soft/go-balance-bot/src/service/exchange"
)

type SnapshotStorageInterface interface {
	CachedSnapshot() string
}

type TradeHistoryStorageInterface interface {
	GetTradeHistory(limit int64) []model.TradeRecord
}

type AllocationAdminInterface interface {
	CreateAllocation(allocation model.Allocation) error
}

// PortfolioController is the read side of the engine. It serves the snapshot
// published by the engine goroutine and posts commands back; it never
// touches engine-owned state directly.
type PortfolioController struct {
	Snapshot       SnapshotStorageInterface
	TradeHistory   TradeHistoryStorageInterface
	Allocations    AllocationAdminInterface
	Commands       chan<- model.EngineCommand
	BacklogMonitor *service.BacklogMonitor
	OrderExecutor  *exchange.OrderExecutor
	Scheduler      *exchange.AutomationScheduler
}

type portfolioStatus struct {
	Backlog         string `json:"backlog"`
	TradesPlaced    int64  `json:"tradesPlaced"`
	TradesCompleted int64  `json:"tradesCompleted"`
	Automating      bool   `json:"automating"`
}

func (p *PortfolioController) GetPortfolioListAction(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	if req.Method == "OPTIONS" {
		fmt.Fprint(w, "OK")
		return
	}

	if req.Method != "GET" {
		http.Error(w, "Only GET method is allowed", http.StatusMethodNotAllowed)

		return
	}

	cached := p.Snapshot.CachedSnapshot()

	if len(cached) == 0 {
		http.Error(w, "Portfolio snapshot is not ready", http.StatusServiceUnavailable)

		return
	}

	// Served verbatim: status texts carry a literal % sign.
	fmt.Fprint(w, cached)
}

func (p *PortfolioController) GetStatusAction(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	if req.Method == "OPTIONS" {
		fmt.Fprint(w, "OK")
		return
	}

	if req.Method != "GET" {
		http.Error(w, "Only GET method is allowed", http.StatusMethodNotAllowed)

		return
	}

	encoded, _ := json.Marshal(portfolioStatus{
		Backlog:         p.BacklogMonitor.Status(),
		TradesPlaced:    p.OrderExecutor.TradesPlaced,
		TradesCompleted: p.OrderExecutor.TradesCompleted,
		Automating:      p.Scheduler.Automating,
	})
	fmt.Fprint(w, string(encoded))
}

func (p *PortfolioController) GetTradeHistoryAction(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	if req.Method == "OPTIONS" {
		fmt.Fprint(w, "OK")
		return
	}

	if req.Method != "GET" {
		http.Error(w, "Only GET method is allowed", http.StatusMethodNotAllowed)

		return
	}

	encoded, _ := json.Marshal(p.TradeHistory.GetTradeHistory(500))
	fmt.Fprint(w, string(encoded))
}

// PostAllocationCreateAction appends one allocation row. The running ledger
// is not reshaped mid-session: the row is picked up by the next seeding.
func (p *PortfolioController) PostAllocationCreateAction(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	if req.Method == "OPTIONS" {
		fmt.Fprint(w, "OK")
		return
	}

	if req.Method != "POST" {
		http.Error(w, "Only POST method is allowed", http.StatusMethodNotAllowed)

		return
	}

	var allocation model.Allocation
	if err := json.NewDecoder(req.Body).Decode(&allocation); err != nil {
		http.Error(w, "Invalid allocation payload", http.StatusBadRequest)

		return
	}

	if allocation.Symbol == "" || !allocation.TargetPercent.IsPositive() {
		http.Error(w, "Allocation requires a symbol and a positive target percent", http.StatusBadRequest)

		return
	}

	if err := p.Allocations.CreateAllocation(allocation); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	encoded, _ := json.Marshal(allocation)
	fmt.Fprint(w, string(encoded))
}

func (p *PortfolioController) PostAutomationToggleAction(w http.ResponseWriter, req *http.Request) {
	p.postCommandAction(w, req, model.CommandToggleAutomation)
}

func (p *PortfolioController) PostExecuteSellsAction(w http.ResponseWriter, req *http.Request) {
	p.postCommandAction(w, req, model.CommandSellPass)
}

func (p *PortfolioController) PostExecuteBuysAction(w http.ResponseWriter, req *http.Request) {
	p.postCommandAction(w, req, model.CommandBuyPass)
}

func (p *PortfolioController) postCommandAction(w http.ResponseWriter, req *http.Request, commandType string) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	if req.Method == "OPTIONS" {
		fmt.Fprint(w, "OK")
		return
	}

	if req.Method != "POST" {
		http.Error(w, "Only POST method is allowed", http.StatusMethodNotAllowed)

		return
	}

	p.Commands <- model.EngineCommand{Type: commandType}

	encoded, _ := json.Marshal(model.EngineCommand{Type: commandType})
	fmt.Fprint(w, string(encoded))
}
