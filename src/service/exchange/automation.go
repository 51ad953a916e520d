package exchange

import (
	"log"
	"time"

	"gitlab.com/open-soft/go-balance-bot/src/model"
)

// AutomationScheduler drives the periodic rebalance passes. It only posts
// commands back to the engine goroutine; the timer callback never touches
// shared state. Toggle and Arm are called from the engine goroutine, which
// makes cancellation explicit and keeps the loop iterative instead of a
// self-rescheduling callback chain.
type AutomationScheduler struct {
	Interval time.Duration
	Commands chan<- model.EngineCommand

	Automating bool
	timer      *time.Timer
}

// Toggle flips the automation flag and returns the new state. Toggling off
// cancels the pending pass; an order already in flight is not interrupted.
func (s *AutomationScheduler) Toggle() bool {
	s.Automating = !s.Automating

	if s.Automating {
		log.Printf("Automation started, rebalance every %s", s.Interval)
		return true
	}

	log.Printf("Automation stopped")
	s.disarm()

	return false
}

// Arm schedules the next rebalance pass. Called after every completed pass
// while automation stays on, re-arming an unbounded periodic loop.
func (s *AutomationScheduler) Arm() {
	if !s.Automating {
		return
	}

	s.disarm()
	s.timer = time.AfterFunc(s.Interval, func() {
		s.Commands <- model.EngineCommand{Type: model.CommandRebalance}
	})
}

func (s *AutomationScheduler) disarm() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
