package exchange

import (
	"log"

	"gitlab.com/open-soft/go-balance-bot/src/model"
	"gitlab.com/open-soft/go-balance-bot/src/utils"
)

const TrendUp = 1
const TrendDown = -1
const TrendNone = 0

// TrendPoint is one aligned row of the indicator window. Keeping the candle
// and every derived series in a single ring entry makes the equal-length
// invariant hold by construction.
type TrendPoint struct {
	Candle model.Candle
	Ema12  float64
	Ema26  float64
	Macd   float64
	Macd9  float64
	Signal float64
}

type TrendState struct {
	Points *utils.RingBuffer[TrendPoint]
	Trend  int
}

// TrendService maintains the EMA/MACD/signal window per traded asset.
// Periods are in minutes and scaled by the candle granularity.
type TrendService struct {
	Window          int
	FastPeriod      int
	SlowPeriod      int
	SignalPeriod    int
	IntervalMinutes int

	states map[string]*TrendState
}

func (t *TrendService) alpha(periodMinutes int) float64 {
	period := float64(periodMinutes) / float64(t.IntervalMinutes)

	return 2.0 / (period + 1.0)
}

// Seed computes the indicator series over the full candle history with the
// standard recurrence ema[0] = close[0], ema[i] = a*close[i] + (1-a)*ema[i-1]
// and retains the last Window rows. The trend replays the same flip rule
// Append applies, so seeding a history and feeding it candle by candle
// classify identically.
func (t *TrendService) Seed(symbol string, candles []model.Candle) {
	if t.states == nil {
		t.states = make(map[string]*TrendState)
	}

	if len(candles) == 0 {
		log.Printf("[%s] Trend seed skipped: no candle history", symbol)
		return
	}

	if len(candles) < t.Window {
		log.Printf("[%s] Trend seed: %d candles < window %d", symbol, len(candles), t.Window)
	}

	alphaFast := t.alpha(t.FastPeriod)
	alphaSlow := t.alpha(t.SlowPeriod)
	alphaSignal := t.alpha(t.SignalPeriod)

	points := make([]TrendPoint, len(candles))

	for i, candle := range candles {
		point := TrendPoint{Candle: candle}

		if i == 0 {
			point.Ema12 = candle.Close
			point.Ema26 = candle.Close
			point.Macd = point.Ema12 - point.Ema26
			point.Macd9 = point.Macd
		} else {
			previous := points[i-1]
			point.Ema12 = alphaFast*candle.Close + (1-alphaFast)*previous.Ema12
			point.Ema26 = alphaSlow*candle.Close + (1-alphaSlow)*previous.Ema26
			point.Macd = point.Ema12 - point.Ema26
			point.Macd9 = alphaSignal*point.Macd + (1-alphaSignal)*previous.Macd9
		}

		point.Signal = point.Macd - point.Macd9
		points[i] = point
	}

	trend := TrendDown
	for _, point := range points {
		if trend == TrendDown && point.Signal > 0 {
			trend = TrendUp
		} else if trend == TrendUp && point.Signal < 0 {
			trend = TrendDown
		}
	}

	ring := utils.NewRingBuffer[TrendPoint](t.Window)
	start := 0
	if len(points) > t.Window {
		start = len(points) - t.Window
	}
	for _, point := range points[start:] {
		ring.Append(point)
	}

	t.states[symbol] = &TrendState{
		Points: ring,
		Trend:  trend,
	}
}

// Append performs one incremental indicator step from the previous row and
// the new close. The ring drops its oldest row once the window is full. The
// trend flips only on a strict sign crossing of the signal.
func (t *TrendService) Append(symbol string, candle model.Candle) {
	state, ok := t.states[symbol]
	if !ok || state.Points.Len() == 0 {
		t.Seed(symbol, []model.Candle{candle})
		return
	}

	previous := state.Points.Last()

	alphaFast := t.alpha(t.FastPeriod)
	alphaSlow := t.alpha(t.SlowPeriod)
	alphaSignal := t.alpha(t.SignalPeriod)

	point := TrendPoint{Candle: candle}
	point.Ema12 = alphaFast*candle.Close + (1-alphaFast)*previous.Ema12
	point.Ema26 = alphaSlow*candle.Close + (1-alphaSlow)*previous.Ema26
	point.Macd = point.Ema12 - point.Ema26
	point.Macd9 = alphaSignal*point.Macd + (1-alphaSignal)*previous.Macd9
	point.Signal = point.Macd - point.Macd9

	state.Points.Append(point)

	if state.Trend == TrendDown && point.Signal > 0 {
		state.Trend = TrendUp
	} else if state.Trend == TrendUp && point.Signal < 0 {
		state.Trend = TrendDown
	}
}

func (t *TrendService) Trend(symbol string) int {
	state, ok := t.states[symbol]
	if !ok {
		return TrendNone
	}

	return state.Trend
}

func (t *TrendService) GetState(symbol string) *TrendState {
	return t.states[symbol]
}
