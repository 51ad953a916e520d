package repository

import (
	"context"
	"database/sql"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
	"gitlab.com/open-soft/go-balance-bot/src/model"
)

type BotRepository struct {
	DB  *sql.DB
	RDB *redis.Client
	Ctx *context.Context
}

func (b *BotRepository) GetCurrentBot() *model.Bot {
	uuid := os.Getenv("BOT_UUID")

	res := b.DB.QueryRow(`
		SELECT
		    b.id as Id,
		    b.uuid as BotUuid
		FROM bots b WHERE b.uuid = ?
	`, uuid)

	var bot model.Bot
	err := res.Scan(&bot.Id, &bot.BotUuid)

	if err != nil {
		log.Printf("GetCurrentBot: %s", err.Error())
		return nil
	}

	return &bot
}

func (b *BotRepository) Create(bot model.Bot) error {
	_, err := b.DB.Exec(`
		INSERT INTO bots SET uuid = ?
	`, bot.BotUuid)

	return err
}
