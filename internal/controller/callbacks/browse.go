package callbacks

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Freeeeeet/groupmate_bot/internal/calendar"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/groupmate_bot/internal/keyboard"
	"github.com/Freeeeeet/groupmate_bot/internal/model"
	"github.com/Freeeeeet/groupmate_bot/internal/service"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// ShowWeeks список недель периода
func ShowWeeks(hc *common.HandlerContext) {
	hc.Show("🗓 Выберите неделю:", hc.Deps.Calendar.WeeksList())
}

// ShowMonths список месяцев периода
func ShowMonths(hc *common.HandlerContext) {
	hc.Show("📆 Выберите месяц:", hc.Deps.Calendar.MonthsList())
}

// ShowToday расписание на сегодня с кнопкой перехода на завтра
func ShowToday(hc *common.HandlerContext) {
	today := hc.Deps.Today()
	showDay(hc, today, todayKeyboard(hc.Deps.Calendar.Window(), today))
}

// todayKeyboard кнопка "завтра"; в последний день периода её нет
func todayKeyboard(w calendar.Window, today time.Time) *models.InlineKeyboardMarkup {
	if !w.Contains(today) || !w.Contains(today.AddDate(0, 0, 1)) {
		return nil
	}
	return keyboard.Single("➡️ Завтра", TomorrowPrefix+today.Format(time.DateOnly))
}

func showWeek(hc *common.HandlerContext, idx int) {
	base, err := hc.Deps.Calendar.Week(idx)
	if err != nil {
		hc.Fail(err, "Failed to get week keyboard")
		return
	}
	if err := hc.RequireUser(); err != nil {
		hc.Fail(err, "Failed to get user")
		return
	}

	start := hc.Deps.Calendar.Window().WeekStart(idx)
	days, err := hc.Deps.Backend.GetScheduleForWeek(hc.Ctx, hc.User.Group, model.NewDate(start))
	if err != nil {
		hc.Fail(err, "Failed to get schedule for week")
		return
	}

	sendWeekImage(hc, idx, start, days)
	kb := keyboard.Append(base, []models.InlineKeyboardButton{keyboard.BackButton(BackWeeks)})
	hc.Show(formatting.FormatWeek(idx+1, days), kb)
}

// sendWeekImage отправляет сетку недели картинкой; без картинки остаётся текст
func sendWeekImage(hc *common.HandlerContext, idx int, start time.Time, days []model.DaySchedule) {
	data, err := common.GenerateWeekImage(idx+1, start, hc.Deps.Today(), days)
	if err != nil {
		hc.Logger.Warn("Failed to render week image", zap.Int("week", idx+1), zap.Error(err))
		return
	}
	hc.Deps.Messenger.SendPhoto(hc.Ctx, hc.ChatID(), service.Attachment{
		Filename: fmt.Sprintf("week_%d.png", idx+1),
		Data:     data,
		Caption:  fmt.Sprintf("🗓 Неделя %d", idx+1),
	})
}

func handleBrowse(hc *common.HandlerContext, p Payload) {
	switch p.Kind {
	case KindWeek, KindBackWeek:
		showWeek(hc, p.Week)

	case KindShowDay:
		idx := hc.Deps.Calendar.Window().WeekIndex(p.Date)
		if idx < 0 {
			hc.Fail(calendar.ErrOutOfWindow, "Day outside window")
			return
		}
		showDay(hc, p.Date, keyboard.Single("⬅️ К неделе", BackWeekPrefix+strconv.Itoa(idx)))

	case KindMonth:
		base, err := hc.Deps.Calendar.Get(p.Month, calendar.Plain)
		if err != nil {
			hc.Fail(err, "Failed to get calendar")
			return
		}
		hc.Deps.Calendar.RememberUserMonth(hc.UserID(), p.Month)
		hc.Show("📅 Выберите дату:", keyboard.Append(base, []models.InlineKeyboardButton{keyboard.BackButton(BackMonths)}))

	case KindBackMonths:
		ShowMonths(hc)

	case KindTomorrow:
		if !hc.Deps.Calendar.Window().Contains(p.Date) {
			hc.Fail(calendar.ErrOutOfWindow, "Day outside window")
			return
		}
		tomorrow := p.Date.AddDate(0, 0, 1)
		showDay(hc, tomorrow, keyboard.Single("⬅️ Сегодня", BackToTodayPrefix+p.Date.Format(time.DateOnly)))

	case KindBackToToday:
		showDay(hc, p.Date, todayKeyboard(hc.Deps.Calendar.Window(), p.Date))

	case KindBackWeeks:
		ShowWeeks(hc)
	}
}
