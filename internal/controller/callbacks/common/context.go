package common

import (
	"context"
	"errors"

	"github.com/Freeeeeet/groupmate_bot/internal/backend"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/groupmate_bot/internal/model"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandlerContext содержит общие данные для обработки одного события
// Это избавляет от дублирования кода получения пользователя, ответа и т.д.
type HandlerContext struct {
	Ctx    context.Context
	Deps   *callbacktypes.Deps
	Event  callbacktypes.Event
	User   *model.User
	Logger *zap.Logger

	answered bool
}

// NewHandlerContext создаёт контекст обработчика; логгер получает поля события
func NewHandlerContext(ctx context.Context, deps *callbacktypes.Deps, ev callbacktypes.Event) *HandlerContext {
	fields := []zap.Field{
		zap.Int64("chat_id", ev.ChatID),
		zap.Int64("user_id", ev.UserID),
		zap.String("username", ev.Username),
	}
	if rid := callbacktypes.RequestID(ctx); rid != "" {
		fields = append(fields, zap.String("rid", rid))
	}
	return &HandlerContext{
		Ctx:    ctx,
		Deps:   deps,
		Event:  ev,
		Logger: deps.Logger.With(fields...),
	}
}

// ChatID чат события
func (hc *HandlerContext) ChatID() int64 {
	return hc.Event.ChatID
}

// UserID пользователь события
func (hc *HandlerContext) UserID() int64 {
	return hc.Event.UserID
}

// LoadUser загружает пользователя в контекст
func (hc *HandlerContext) LoadUser() error {
	if hc.Event.Username == "" {
		return ErrNoUsername
	}
	user, err := hc.Deps.Backend.GetUserByHandle(hc.Ctx, hc.Event.Username)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	hc.User = user
	return nil
}

// RequireUser проверяет что пользователь загружен
func (hc *HandlerContext) RequireUser() error {
	if hc.User == nil {
		return hc.LoadUser()
	}
	return nil
}

// RequireLeader проверяет что пользователь является старостой
func (hc *HandlerContext) RequireLeader() error {
	if err := hc.RequireUser(); err != nil {
		return err
	}
	if !hc.User.IsLeader() {
		return ErrNotLeader
	}
	return nil
}

// Answer отвечает на callback query; повторные вызовы игнорируются
func (hc *HandlerContext) Answer(text string) {
	if hc.answered || hc.Event.CallbackID == "" {
		return
	}
	hc.answered = true
	hc.Deps.Messenger.AnswerCallback(hc.Ctx, hc.Event.ChatID, hc.Event.CallbackID, text)
}

// Reply отправляет новое сообщение в чат
func (hc *HandlerContext) Reply(text string) {
	hc.Deps.Messenger.SendText(hc.Ctx, hc.Event.ChatID, text)
}

// ReplyWithKeyboard отправляет сообщение с клавиатурой
func (hc *HandlerContext) ReplyWithKeyboard(text string, markup models.ReplyMarkup) {
	hc.Deps.Messenger.SendWithKeyboard(hc.Ctx, hc.Event.ChatID, text, markup)
}

// Show редактирует сообщение с кнопкой, а для текстовых событий отправляет новое
func (hc *HandlerContext) Show(text string, kb *models.InlineKeyboardMarkup) {
	if hc.Event.MessageID == 0 || hc.Event.Kind != callbacktypes.EventCallback {
		if kb == nil {
			hc.Reply(text)
			return
		}
		hc.ReplyWithKeyboard(text, kb)
		return
	}
	hc.Deps.Messenger.EditMessageText(hc.Ctx, hc.Event.ChatID, hc.Event.MessageID, text, kb)
}

// Fail логирует ошибку и показывает пользователю понятное сообщение
func (hc *HandlerContext) Fail(err error, msg string) {
	if IsExpected(err) {
		hc.Logger.Info(msg, zap.Error(err))
	} else {
		hc.Logger.Error(msg, zap.Error(err))
	}
	text := ErrorMessage(err)
	hc.Answer(text)
	hc.Reply(text)
}
