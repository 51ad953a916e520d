package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gitlab.com/open-soft/go-balance-bot/src/model"
)

type BotStorageMock struct {
	mock.Mock
}

func (m *BotStorageMock) GetCurrentBot() *model.Bot {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}

	return args.Get(0).(*model.Bot)
}

func (m *BotStorageMock) Create(bot model.Bot) error {
	args := m.Called(bot)
	return args.Error(0)
}

func TestResolveCurrentBotCreatesRowOnFirstRun(t *testing.T) {
	assertion := assert.New(t)
	botRepository := new(BotStorageMock)

	// empty bot table: the row is created and re-fetched, and the
	// re-fetched row is the one returned
	botRepository.On("GetCurrentBot").Return(nil).Once()
	botRepository.On("Create", model.Bot{BotUuid: "6a348d92"}).Return(nil)
	botRepository.On("GetCurrentBot").Return(&model.Bot{Id: 1, BotUuid: "6a348d92"}).Once()

	currentBot := resolveCurrentBot(botRepository, "6a348d92")

	assertion.NotNil(currentBot)
	assertion.Equal(int64(1), currentBot.Id)
	assertion.Equal("6a348d92", currentBot.BotUuid)
	botRepository.AssertExpectations(t)
}

func TestResolveCurrentBotReturnsExistingRow(t *testing.T) {
	assertion := assert.New(t)
	botRepository := new(BotStorageMock)

	botRepository.On("GetCurrentBot").Return(&model.Bot{Id: 7, BotUuid: "6a348d92"})

	currentBot := resolveCurrentBot(botRepository, "6a348d92")

	assertion.Equal(int64(7), currentBot.Id)
	botRepository.AssertNotCalled(t, "Create", mock.Anything)
}
