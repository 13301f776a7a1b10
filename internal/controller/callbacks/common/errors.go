package common

import (
	"errors"

	"github.com/Freeeeeet/groupmate_bot/internal/backend"
	"github.com/Freeeeeet/groupmate_bot/internal/calendar"
)

// Общие ошибки для обработчиков
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrNoUsername       = errors.New("telegram user has no username")
	ErrNotLeader        = errors.New("user is not a group leader")
	ErrMalformed        = errors.New("malformed payload")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidTime      = errors.New("invalid time")
	ErrEmptyInput       = errors.New("empty input")
	ErrNoRange          = errors.New("absence range is not selected")
	ErrNoDraft          = errors.New("no draft in progress")
	ErrLessonNotFound   = errors.New("lesson not found")
	ErrAbsenceNotFound  = errors.New("absence not found")
	ErrDeadlineNotFound = errors.New("deadline not found")
	ErrForbidden        = errors.New("action is not allowed for this user")
)

// ErrorMessage возвращает пользовательское сообщение для ошибки
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return "❌ Вы ещё не зарегистрированы. Используйте /start"
	case errors.Is(err, ErrNoUsername):
		return "❌ Для работы с ботом задайте username в настройках Telegram"
	case errors.Is(err, ErrNotLeader):
		return "❌ Эта функция доступна только старосте"
	case errors.Is(err, ErrMalformed):
		return "❌ Неверный формат данных"
	case errors.Is(err, ErrInvalidDate):
		return "❌ Неверный формат даты. Используйте ДД.ММ.ГГГГ, например 20.04.2025"
	case errors.Is(err, ErrInvalidTime):
		return "❌ Неверный формат времени. Используйте ЧЧ:ММ, например 09:45"
	case errors.Is(err, ErrEmptyInput):
		return "❌ Значение не может быть пустым"
	case errors.Is(err, ErrNoRange):
		return "❌ Сначала выберите хотя бы одну дату"
	case errors.Is(err, ErrNoDraft):
		return "❌ Сначала выберите занятие"
	case errors.Is(err, ErrLessonNotFound):
		return "❌ Занятие не найдено"
	case errors.Is(err, ErrAbsenceNotFound):
		return "❌ Пропуск не найден"
	case errors.Is(err, ErrDeadlineNotFound):
		return "❌ Дедлайн не найден"
	case errors.Is(err, ErrForbidden):
		return "❌ У вас нет доступа к этому действию"
	case errors.Is(err, calendar.ErrOutOfWindow):
		return "❌ Дата вне доступного периода"
	case errors.Is(err, backend.ErrNotFound):
		return "❌ Не найдено"
	default:
		return "❌ Произошла ошибка. Попробуйте ещё раз"
	}
}

// IsExpected ошибки пользовательского ввода, которые не нужно логировать как Error
func IsExpected(err error) bool {
	for _, target := range []error{
		ErrUserNotFound, ErrNoUsername, ErrNotLeader, ErrMalformed, ErrInvalidDate,
		ErrInvalidTime, ErrEmptyInput, ErrNoRange, ErrNoDraft, ErrForbidden,
		calendar.ErrOutOfWindow,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
