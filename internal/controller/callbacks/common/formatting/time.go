package formatting

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/groupmate_bot/internal/calendar"
)

// FormatDate форматирует только дату
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// FormatShortDate дата без года
func FormatShortDate(t time.Time) string {
	return t.Format("02.01")
}

// FormatRange диапазон дат; для одного дня только дата
func FormatRange(from, to time.Time) string {
	if from.Equal(to) {
		return FormatDate(from)
	}
	return fmt.Sprintf("%s – %s", FormatDate(from), FormatDate(to))
}

// FormatDateWithWeekday "Чт, 10.04.2025"
func FormatDateWithWeekday(t time.Time) string {
	return fmt.Sprintf("%s, %s", GetWeekdayShort(int(t.Weekday())), FormatDate(t))
}

// GetWeekdayName возвращает название дня недели на русском
func GetWeekdayName(weekday int) string {
	names := []string{
		"Воскресенье",
		"Понедельник",
		"Вторник",
		"Среда",
		"Четверг",
		"Пятница",
		"Суббота",
	}
	if weekday >= 0 && weekday < len(names) {
		return names[weekday]
	}
	return "Неизвестно"
}

// GetWeekdayShort возвращает короткое название дня недели
func GetWeekdayShort(weekday int) string {
	names := []string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}
	if weekday >= 0 && weekday < len(names) {
		return names[weekday]
	}
	return "?"
}

// GetMonthName возвращает название месяца на русском
func GetMonthName(month time.Month) string {
	return calendar.MonthName(month)
}
