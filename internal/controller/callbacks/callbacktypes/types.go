package callbacktypes

import (
	"context"
	"time"

	"github.com/Freeeeeet/groupmate_bot/internal/calendar"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/state"
	"github.com/Freeeeeet/groupmate_bot/internal/model"
	"github.com/Freeeeeet/groupmate_bot/internal/service"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// EventKind тип входящего события
type EventKind int

const (
	EventText EventKind = iota
	EventCallback
)

func (k EventKind) String() string {
	if k == EventCallback {
		return "callback"
	}
	return "text"
}

// Event входящее событие, уже извлечённое из Telegram update
type Event struct {
	UpdateID   int64
	Kind       EventKind
	ChatID     int64
	UserID     int64
	Username   string
	Text       string
	MessageID  int
	CallbackID string
	Data       string
}

// Messenger исходящие сообщения. Вызовы не блокируют обработчик,
// ошибки доставки логирует реализация.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string)
	SendWithKeyboard(ctx context.Context, chatID int64, text string, markup models.ReplyMarkup)
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string, markup *models.InlineKeyboardMarkup)
	AnswerCallback(ctx context.Context, chatID int64, callbackID, text string)
	SendDocument(ctx context.Context, chatID int64, doc service.Attachment)
	SendPhoto(ctx context.Context, chatID int64, photo service.Attachment)
}

// Backend операции API бэкенда, которые нужны обработчикам
type Backend interface {
	GetUserByHandle(ctx context.Context, handle string) (*model.User, error)
	RegisterUser(ctx context.Context, user model.User) error
	UpdateUser(ctx context.Context, user model.User) error
	GetGroupRoster(ctx context.Context, group string) ([]model.User, error)
	GetScheduleForDate(ctx context.Context, group string, date model.Date) ([]model.Lesson, error)
	GetScheduleForWeek(ctx context.Context, group string, weekStart model.Date) ([]model.DaySchedule, error)
	ListDeadlines(ctx context.Context, group string) ([]model.Deadline, error)
	CreateDeadline(ctx context.Context, deadline model.Deadline) (*model.Deadline, error)
	DeleteDeadline(ctx context.Context, id string) error
	ListAbsences(ctx context.Context, handle string) ([]model.Absence, error)
	CreateAbsence(ctx context.Context, absence model.Absence) error
	DeleteAbsence(ctx context.Context, handle string, from, to model.Date) error
	SubmitScheduleChange(ctx context.Context, change model.ScheduleChange) error
	DeleteScheduleChange(ctx context.Context, change model.ScheduleChange) error
}

// Notifier рассылка уведомлений старосте, группе или списку пользователей
type Notifier interface {
	NotifyLeader(ctx context.Context, group, text string) (int, error)
	NotifyGroup(ctx context.Context, group, text, exceptHandle string) (int, error)
	NotifyHandles(ctx context.Context, handles []string, text string, attachment *service.Attachment) (int, error)
}

// Deps общие зависимости всех обработчиков
type Deps struct {
	Backend   Backend
	Messenger Messenger
	Notifier  Notifier
	Stores    *state.Stores
	Calendar  *calendar.Cache
	Logger    *zap.Logger
	// Now текущее время в часовом поясе группы
	Now func() time.Time
}

// Clock текущее время
func (d *Deps) Clock() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Today сегодняшняя дата как полночь UTC
func (d *Deps) Today() time.Time {
	y, m, day := d.Clock().Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

type ridKey struct{}

// WithRequestID кладёт id запроса в контекст для логов
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ridKey{}, rid)
}

// RequestID id запроса из контекста
func RequestID(ctx context.Context) string {
	rid, _ := ctx.Value(ridKey{}).(string)
	return rid
}
