package calendar

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/groupmate_bot/internal/keyboard"
	"github.com/go-telegram/bot/models"
)

// Префиксы кнопок просмотра расписания по неделям и месяцам
const (
	WeekPrefix    = "WEEK_"
	ShowDayPrefix = "SHOW_DAY_"
	MonthPrefix   = "MONTH_"
)

var weekdayHeader = []string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}

var weekdayShort = map[time.Weekday]string{
	time.Monday:    "Пн",
	time.Tuesday:   "Вт",
	time.Wednesday: "Ср",
	time.Thursday:  "Чт",
	time.Friday:    "Пт",
	time.Saturday:  "Сб",
	time.Sunday:    "Вс",
}

// Generator строит клавиатуры календаря в пределах окна.
// Результат зависит только от аргументов, поэтому его можно кэшировать.
type Generator struct {
	window Window
}

// NewGenerator создаёт генератор для окна
func NewGenerator(window Window) *Generator {
	return &Generator{window: window}
}

// Window окно, с которым работает генератор
func (g *Generator) Window() Window {
	return g.window
}

// Generate строит сетку месяца: навигация, дни недели, по ряду на неделю
func (g *Generator) Generate(m Month, v Variant) (*models.InlineKeyboardMarkup, error) {
	if !g.window.Overlaps(m) {
		return nil, fmt.Errorf("generate %s: %w", m, ErrOutOfWindow)
	}

	b := keyboard.NewBuilder()
	b.Row(g.navButton(m.Prev(), v, "◀️"), keyboard.Inert(m.Label()), g.navButton(m.Next(), v, "▶️"))

	header := make([]models.InlineKeyboardButton, 0, len(weekdayHeader))
	for _, name := range weekdayHeader {
		header = append(header, keyboard.Inert(name))
	}
	b.Row(header...)

	first := m.First()
	// смещение первого дня от понедельника
	offset := (int(first.Weekday()) + 6) % 7
	cursor := first.AddDate(0, 0, -offset)
	last := m.Last()

	for !cursor.After(last) {
		row := make([]models.InlineKeyboardButton, 0, 7)
		for i := 0; i < 7; i++ {
			row = append(row, g.dayButton(cursor, m, v))
			cursor = cursor.AddDate(0, 0, 1)
		}
		b.Row(row...)
	}

	return b.Build(), nil
}

func (g *Generator) navButton(target Month, v Variant, arrow string) models.InlineKeyboardButton {
	if !g.window.Overlaps(target) {
		return keyboard.Inert("")
	}
	return keyboard.Button(arrow, v.NavPrefix()+target.NavToken())
}

func (g *Generator) dayButton(d time.Time, m Month, v Variant) models.InlineKeyboardButton {
	if MonthOf(d) != m || !g.window.Contains(d) {
		return keyboard.Inert("")
	}
	return keyboard.Button(fmt.Sprintf("%d", d.Day()), v.DatePrefix()+d.Format(time.DateOnly))
}

// WeekDays дни относительной недели с понедельника по субботу, попавшие в окно
func (g *Generator) WeekDays(idx int) []time.Time {
	if idx < 0 || idx >= g.window.WeekCount() {
		return nil
	}
	start := g.window.WeekStart(idx)
	days := make([]time.Time, 0, 6)
	for i := 0; i < 6; i++ {
		d := start.AddDate(0, 0, i)
		if g.window.Contains(d) {
			days = append(days, d)
		}
	}
	return days
}

// GenerateWeek кнопки "показать день" для каждого учебного дня недели
func (g *Generator) GenerateWeek(idx int) (*models.InlineKeyboardMarkup, error) {
	days := g.WeekDays(idx)
	if len(days) == 0 {
		return nil, fmt.Errorf("generate week %d: %w", idx, ErrOutOfWindow)
	}

	buttons := make([]models.InlineKeyboardButton, 0, len(days))
	for _, d := range days {
		label := fmt.Sprintf("%s %s", weekdayShort[d.Weekday()], d.Format("02.01"))
		buttons = append(buttons, keyboard.Button(label, ShowDayPrefix+d.Format(time.DateOnly)))
	}
	return keyboard.NewBuilder().Chunked(3, buttons...).Build(), nil
}

// GenerateWeeksList по кнопке на каждую относительную неделю окна
func (g *Generator) GenerateWeeksList() *models.InlineKeyboardMarkup {
	count := g.window.WeekCount()
	buttons := make([]models.InlineKeyboardButton, 0, count)
	for idx := 0; idx < count; idx++ {
		days := g.WeekDays(idx)
		if len(days) == 0 {
			continue
		}
		label := fmt.Sprintf("Неделя %d: %s – %s", idx+1,
			days[0].Format("02.01"), days[len(days)-1].Format("02.01"))
		buttons = append(buttons, keyboard.Button(label, fmt.Sprintf("%s%d", WeekPrefix, idx)))
	}
	return keyboard.NewBuilder().Chunked(1, buttons...).Build()
}

// GenerateMonthsMarkup по кнопке на каждый месяц, пересекающийся с окном
func (g *Generator) GenerateMonthsMarkup() *models.InlineKeyboardMarkup {
	months := g.window.Months()
	buttons := make([]models.InlineKeyboardButton, 0, len(months))
	for _, m := range months {
		buttons = append(buttons, keyboard.Button(m.Label(), MonthPrefix+m.String()))
	}
	return keyboard.NewBuilder().Chunked(2, buttons...).Build()
}
