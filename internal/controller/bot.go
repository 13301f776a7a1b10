package controller

import (
	"context"

	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/dispatcher"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// EventDispatcher обработчик пачки событий
type EventDispatcher interface {
	Dispatch(ctx context.Context, events []callbacktypes.Event)
}

type BotController struct {
	bot        *bot.Bot
	dispatcher EventDispatcher
	updates    chan *models.Update
	maxBatch   int
	logger     *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	eventDispatcher EventDispatcher,
	maxBatch int,
	queueSize int,
	logger *zap.Logger,
) *BotController {
	if maxBatch <= 0 {
		maxBatch = 100
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	return &BotController{
		bot:        botInstance,
		dispatcher: eventDispatcher,
		updates:    make(chan *models.Update, queueSize),
		maxBatch:   maxBatch,
		logger:     logger,
	}
}

// RegisterHandlers регистрирует обработчики текста и кнопок. Вся маршрутизация
// дальше делается диспетчером, поэтому оба обработчика просто ставят апдейт в очередь.
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.HandleUpdate)
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.HandleUpdate)

	// Устанавливаем меню команд
	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "today", Description: "📅 Расписание на сегодня"},
		{Command: "calendar", Description: "🗓 Расписание на дату"},
		{Command: "weeks", Description: "📆 Расписание по неделям"},
		{Command: "absence", Description: "🤒 Отметить пропуск"},
		{Command: "missed", Description: "📋 Мои пропуски"},
		{Command: "deadlines", Description: "📌 Дедлайны группы"},
		{Command: "profile", Description: "👤 Мои данные"},
		{Command: "newdeadline", Description: "➕ Создать дедлайн (староста)"},
		{Command: "change", Description: "✏️ Изменить расписание (староста)"},
		{Command: "cancel", Description: "❌ Отменить действие"},
		{Command: "help", Description: "❓ Справка по командам"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// HandleUpdate ставит апдейт в очередь; при переполнении ждёт, пока очередь освободится
func (c *BotController) HandleUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	select {
	case c.updates <- update:
	case <-ctx.Done():
	}
}

// Run читает очередь апдейтов пачками и передаёт их диспетчеру.
// Первый апдейт пачки ждём, остальные забираем без ожидания, не больше maxBatch.
func (c *BotController) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case first := <-c.updates:
			if batch := c.collect(first); len(batch) > 0 {
				c.dispatcher.Dispatch(ctx, batch)
			}
		}
	}
}

func (c *BotController) collect(first *models.Update) []callbacktypes.Event {
	events := make([]callbacktypes.Event, 0, c.maxBatch)
	add := func(u *models.Update) {
		if ev, ok := dispatcher.FromUpdate(u); ok {
			events = append(events, ev)
		}
	}

	add(first)
	for len(events) < c.maxBatch {
		select {
		case u := <-c.updates:
			add(u)
		default:
			return events
		}
	}
	return events
}

// Start запускает бота в режиме long polling
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	go c.Run(ctx)
	c.bot.Start(ctx)
	return nil
}

// StartWebhook запускает обработку апдейтов, пришедших через webhook
func (c *BotController) StartWebhook(ctx context.Context) error {
	c.logger.Info("Starting bot in webhook mode...")
	go c.Run(ctx)
	c.bot.StartWebhook(ctx)
	return nil
}
