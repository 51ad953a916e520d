package repository

import (
	"database/sql"
	"log"

	"gitlab.com/open-soft/go-balance-bot/src/model"
)

type TradeHistoryInterface interface {
	SaveTrade(event model.ExecutionEvent) error
}

type PriceLogInterface interface {
	SavePrice(pair string, eventTime model.TimestampMilli, avgPrice float64, midPrice float64) error
}

// TradeRepository persists the two append-only session logs: one trade
// history row per execution report and one price row per ticker event.
type TradeRepository struct {
	DB         *sql.DB
	CurrentBot *model.Bot
}

func (t *TradeRepository) SaveTrade(event model.ExecutionEvent) error {
	_, err := t.DB.Exec(`
		INSERT INTO trade_history SET
		    symbol = ?,
		    side = ?,
		    order_quantity = ?,
		    filled_quantity = ?,
		    price = ?,
		    order_status = ?,
		    transaction_time = ?,
		    bot_id = ?
	`,
		event.Symbol,
		event.Side,
		event.OrderQuantity.Value(),
		event.CumulativeFilledQty.Value(),
		event.OrderPrice.Value(),
		event.OrderStatus,
		event.TransactionTime.Value(),
		t.CurrentBot.Id,
	)

	return err
}

func (t *TradeRepository) SavePrice(pair string, eventTime model.TimestampMilli, avgPrice float64, midPrice float64) error {
	_, err := t.DB.Exec(`
		INSERT INTO price_log SET
		    symbol = ?,
		    event_time = ?,
		    avg_price = ?,
		    mid_price = ?,
		    bot_id = ?
	`,
		pair,
		eventTime.Value(),
		avgPrice,
		midPrice,
		t.CurrentBot.Id,
	)

	return err
}

func (t *TradeRepository) GetTradeHistory(limit int64) []model.TradeRecord {
	res, err := t.DB.Query(`
		SELECT
		    th.id as Id,
		    th.symbol as Symbol,
		    th.side as Side,
		    th.order_quantity as OrderQuantity,
		    th.filled_quantity as FilledQuantity,
		    th.price as Price,
		    th.order_status as OrderStatus,
		    th.transaction_time as TransactionTime
		FROM trade_history th WHERE th.bot_id = ?
		ORDER BY th.id DESC LIMIT ?
	`, t.CurrentBot.Id, limit)

	list := make([]model.TradeRecord, 0)

	if err != nil {
		log.Printf("GetTradeHistory: %s", err.Error())
		return list
	}
	defer res.Close()

	for res.Next() {
		var record model.TradeRecord
		err := res.Scan(
			&record.Id,
			&record.Symbol,
			&record.Side,
			&record.OrderQuantity,
			&record.FilledQuantity,
			&record.Price,
			&record.OrderStatus,
			&record.TransactionTime,
		)

		if err != nil {
			log.Printf("GetTradeHistory: %s", err.Error())
			continue
		}

		list = append(list, record)
	}

	return list
}
