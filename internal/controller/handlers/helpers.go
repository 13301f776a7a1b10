package handlers

import (
	"strings"

	"github.com/Freeeeeet/groupmate_bot/internal/keyboard"
	"github.com/Freeeeeet/groupmate_bot/internal/model"
	"github.com/go-telegram/bot/models"
)

// Ограничения на пользовательский ввод
const (
	NameMaxLength        = 64
	GroupMaxLength       = 32
	TitleMaxLength       = 128
	DescriptionMaxLength = 1024
)

// Кнопки главного меню
const (
	BtnToday        = "📅 Сегодня"
	BtnCalendar     = "🗓 Календарь"
	BtnWeeks        = "📆 Недели"
	BtnMonths       = "🗂 Месяцы"
	BtnAbsence      = "🤒 Пропуск"
	BtnMissed       = "📋 Мои пропуски"
	BtnDeadlines    = "📌 Дедлайны"
	BtnProfile      = "👤 Мои данные"
	BtnEditProfile  = "✏️ Изменить данные"
	BtnNewDeadline  = "➕ Дедлайн"
	BtnChangeLesson = "✏️ Изменить расписание"
	BtnBack         = "⬅️ Назад"
	BtnCancel       = "❌ Отмена"
	BtnHelp         = "❓ Помощь"
)

// mainMenu клавиатура главного меню; староста видит дополнительный ряд
func mainMenu(u *model.User) *models.ReplyKeyboardMarkup {
	rows := [][]string{
		{BtnToday, BtnCalendar},
		{BtnWeeks, BtnMonths},
		{BtnAbsence, BtnMissed},
		{BtnDeadlines, BtnProfile},
	}
	if u != nil && u.IsLeader() {
		rows = append(rows, []string{BtnNewDeadline, BtnChangeLesson})
	}
	rows = append(rows, []string{BtnHelp})
	return keyboard.Reply(rows...)
}

// normalizeCommand приводит "/Start@groupmate_bot args" к "/start"; текст кнопок не меняется
func normalizeCommand(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return text
	}
	cmd, _, _ := strings.Cut(text, " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return strings.ToLower(cmd)
}

// isCancel команда выхода из любого диалога
func isCancel(text string) bool {
	switch normalizeCommand(text) {
	case "/cancel", BtnCancel:
		return true
	}
	return strings.EqualFold(strings.TrimSpace(text), "отмена")
}

func tooLong(s string, max int) bool {
	return len([]rune(s)) > max
}
