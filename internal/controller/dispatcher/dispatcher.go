package dispatcher

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/groupmate_bot/internal/workerpool"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TextHandler обработчик текстовых сообщений
type TextHandler interface {
	HandleText(ctx context.Context, ev callbacktypes.Event)
}

// CallbackRouter обработчик нажатий на кнопки
type CallbackRouter interface {
	Route(ctx context.Context, ev callbacktypes.Event)
}

// FlowIndex отвечает, идёт ли для чата или пользователя какой-нибудь диалог
type FlowIndex interface {
	AnyActive(chatID, userID int64) bool
}

// ChatDirectory запоминает, в какой чат писать пользователю
type ChatDirectory interface {
	Remember(ctx context.Context, handle string, chatID, userID int64) error
}

// Dispatcher распределяет события пачки: события чатов с активным диалогом
// обрабатываются по порядку в вызывающей горутине, остальные уходят в пул.
type Dispatcher struct {
	text   TextHandler
	router CallbackRouter
	flows  FlowIndex
	chats  ChatDirectory
	pool   *workerpool.Pool
	logger *zap.Logger

	seen sync.Map // chatID -> username, уже записанный в справочник
}

// New создаёт диспетчер; chats может быть nil
func New(
	text TextHandler,
	router CallbackRouter,
	flows FlowIndex,
	chats ChatDirectory,
	pool *workerpool.Pool,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		text:   text,
		router: router,
		flows:  flows,
		chats:  chats,
		pool:   pool,
		logger: logger,
	}
}

// FromUpdate извлекает событие из Telegram update. Апдейты без текста и без callback пропускаются.
func FromUpdate(u *models.Update) (callbacktypes.Event, bool) {
	if u == nil {
		return callbacktypes.Event{}, false
	}

	if m := u.Message; m != nil && m.Text != "" && m.From != nil {
		return callbacktypes.Event{
			UpdateID:  u.ID,
			Kind:      callbacktypes.EventText,
			ChatID:    m.Chat.ID,
			UserID:    m.From.ID,
			Username:  m.From.Username,
			Text:      m.Text,
			MessageID: m.ID,
		}, true
	}

	if cq := u.CallbackQuery; cq != nil {
		ev := callbacktypes.Event{
			UpdateID:   u.ID,
			Kind:       callbacktypes.EventCallback,
			ChatID:     cq.From.ID,
			UserID:     cq.From.ID,
			Username:   cq.From.Username,
			CallbackID: cq.ID,
			Data:       cq.Data,
		}
		switch {
		case cq.Message.Message != nil:
			ev.ChatID = cq.Message.Message.Chat.ID
			ev.MessageID = cq.Message.Message.ID
		case cq.Message.InaccessibleMessage != nil:
			ev.ChatID = cq.Message.InaccessibleMessage.Chat.ID
			ev.MessageID = cq.Message.InaccessibleMessage.MessageID
		}
		return ev, true
	}

	return callbacktypes.Event{}, false
}

// Dispatch обрабатывает пачку событий. Возвращается, когда все события
// активных диалогов обработаны, а свободные поставлены в пул.
func (d *Dispatcher) Dispatch(ctx context.Context, events []callbacktypes.Event) {
	for _, ev := range events {
		ctx := callbacktypes.WithRequestID(ctx, uuid.NewString())
		d.touchChat(ctx, ev)

		if d.flows.AnyActive(ev.ChatID, ev.UserID) {
			d.handle(ctx, ev)
			continue
		}

		if err := d.pool.Submit(ctx, ev.ChatID, func(ctx context.Context) { d.handle(ctx, ev) }); err != nil {
			d.logger.Error("Failed to submit event",
				zap.Int64("chat_id", ev.ChatID),
				zap.Int64("update_id", ev.UpdateID),
				zap.Error(err),
			)
		}
	}
}

// Close дожидается уже поставленных в пул событий
func (d *Dispatcher) Close() {
	d.pool.Close()
}

func (d *Dispatcher) handle(ctx context.Context, ev callbacktypes.Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Panic while handling event",
				zap.Int64("chat_id", ev.ChatID),
				zap.Int64("update_id", ev.UpdateID),
				zap.Stringer("kind", ev.Kind),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()

	switch ev.Kind {
	case callbacktypes.EventCallback:
		d.router.Route(ctx, ev)
	default:
		d.text.HandleText(ctx, ev)
	}
}

// touchChat записывает пару username → chat id, если она ещё не записана
func (d *Dispatcher) touchChat(ctx context.Context, ev callbacktypes.Event) {
	if d.chats == nil || ev.Username == "" {
		return
	}
	if prev, ok := d.seen.Load(ev.ChatID); ok && prev.(string) == ev.Username {
		return
	}

	if err := d.chats.Remember(ctx, ev.Username, ev.ChatID, ev.UserID); err != nil {
		d.logger.Warn("Failed to remember chat",
			zap.Int64("chat_id", ev.ChatID),
			zap.String("username", ev.Username),
			zap.Error(err),
		)
		return
	}
	d.seen.Store(ev.ChatID, ev.Username)
}
