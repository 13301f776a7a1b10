package callbacks

import (
	"time"

	"github.com/Freeeeeet/groupmate_bot/internal/calendar"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/groupmate_bot/internal/keyboard"
	"github.com/Freeeeeet/groupmate_bot/internal/model"
	"github.com/go-telegram/bot/models"
)

// ShowCalendar показывает календарь месяца и запоминает его для пользователя
func ShowCalendar(hc *common.HandlerContext, m calendar.Month) {
	kb, err := hc.Deps.Calendar.Get(m, calendar.Plain)
	if err != nil {
		hc.Fail(err, "Failed to get calendar")
		return
	}
	hc.Deps.Calendar.RememberUserMonth(hc.UserID(), m)
	hc.Show("📅 Выберите дату:", kb)
}

// showDay показывает расписание группы пользователя на день
func showDay(hc *common.HandlerContext, date time.Time, kb *models.InlineKeyboardMarkup) {
	if !hc.Deps.Calendar.Window().Contains(date) {
		hc.Fail(calendar.ErrOutOfWindow, "Day outside window")
		return
	}
	if err := hc.RequireUser(); err != nil {
		hc.Fail(err, "Failed to get user")
		return
	}
	lessons, err := hc.Deps.Backend.GetScheduleForDate(hc.Ctx, hc.User.Group, model.NewDate(date))
	if err != nil {
		hc.Fail(err, "Failed to get schedule for date")
		return
	}
	hc.Show(formatting.FormatDay(date, lessons), kb)
}

func handleDatePick(hc *common.HandlerContext, p Payload) {
	switch p.Kind {
	case KindCalendarDate:
		showDay(hc, p.Date, keyboard.Single("⬅️ К календарю", CalendarBack))
	case KindCalendarNav:
		ShowCalendar(hc, p.Month)
	case KindCalendarBack:
		ShowCalendar(hc, hc.Deps.Calendar.LastMonthOrNow(hc.UserID()))
	}
}
