package testutil

import (
	"context"
	"sync"

	"github.com/Freeeeeet/groupmate_bot/internal/service"
	"github.com/go-telegram/bot/models"
)

// Sent одно исходящее действие, записанное FakeMessenger
type Sent struct {
	Method     string
	ChatID     int64
	MessageID  int
	CallbackID string
	Text       string
	Markup     models.ReplyMarkup
	Inline     *models.InlineKeyboardMarkup
	Document   *service.Attachment
	Photo      *service.Attachment
}

// FakeMessenger запоминает все исходящие вызовы вместо отправки в Telegram
type FakeMessenger struct {
	mu   sync.Mutex
	sent []Sent
}

func NewFakeMessenger() *FakeMessenger {
	return &FakeMessenger{}
}

func (m *FakeMessenger) record(s Sent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, s)
}

func (m *FakeMessenger) SendText(_ context.Context, chatID int64, text string) {
	m.record(Sent{Method: "SendText", ChatID: chatID, Text: text})
}

func (m *FakeMessenger) SendWithKeyboard(_ context.Context, chatID int64, text string, markup models.ReplyMarkup) {
	s := Sent{Method: "SendWithKeyboard", ChatID: chatID, Text: text, Markup: markup}
	if inline, ok := markup.(*models.InlineKeyboardMarkup); ok {
		s.Inline = inline
	}
	m.record(s)
}

func (m *FakeMessenger) EditMessageText(_ context.Context, chatID int64, messageID int, text string, markup *models.InlineKeyboardMarkup) {
	m.record(Sent{Method: "EditMessageText", ChatID: chatID, MessageID: messageID, Text: text, Inline: markup})
}

func (m *FakeMessenger) AnswerCallback(_ context.Context, chatID int64, callbackID, text string) {
	m.record(Sent{Method: "AnswerCallback", ChatID: chatID, CallbackID: callbackID, Text: text})
}

func (m *FakeMessenger) SendDocument(_ context.Context, chatID int64, doc service.Attachment) {
	m.record(Sent{Method: "SendDocument", ChatID: chatID, Document: &doc})
}

func (m *FakeMessenger) SendPhoto(_ context.Context, chatID int64, photo service.Attachment) {
	m.record(Sent{Method: "SendPhoto", ChatID: chatID, Photo: &photo})
}

// All копия всех записанных действий
func (m *FakeMessenger) All() []Sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Sent, len(m.sent))
	copy(out, m.sent)
	return out
}

// ByMethod действия одного типа
func (m *FakeMessenger) ByMethod(method string) []Sent {
	var out []Sent
	for _, s := range m.All() {
		if s.Method == method {
			out = append(out, s)
		}
	}
	return out
}

// Messages все показанные пользователю тексты (отправка и редактирование)
func (m *FakeMessenger) Messages() []Sent {
	var out []Sent
	for _, s := range m.All() {
		switch s.Method {
		case "SendText", "SendWithKeyboard", "EditMessageText":
			out = append(out, s)
		}
	}
	return out
}

// Last последний показанный пользователю текст
func (m *FakeMessenger) Last() (Sent, bool) {
	msgs := m.Messages()
	if len(msgs) == 0 {
		return Sent{}, false
	}
	return msgs[len(msgs)-1], true
}

// Reset забывает записанные действия
func (m *FakeMessenger) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = nil
}
