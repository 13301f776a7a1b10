package callbacks

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/Freeeeeet/groupmate_bot/internal/backend"
	"github.com/Freeeeeet/groupmate_bot/internal/calendar"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/state"
	"github.com/Freeeeeet/groupmate_bot/internal/keyboard"
	"github.com/Freeeeeet/groupmate_bot/internal/model"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

var fieldLabels = map[state.ChangeField]string{
	state.FieldSubject:     "📚 Предмет",
	state.FieldDate:        "📅 Дата",
	state.FieldTime:        "🕘 Время",
	state.FieldClassroom:   "🚪 Аудитория",
	state.FieldDescription: "📝 Комментарий",
}

var fieldPrompts = map[state.ChangeField]string{
	state.FieldSubject:     "Введите новое название предмета:",
	state.FieldDate:        "Введите новую дату в формате ДД.ММ.ГГГГ:",
	state.FieldTime:        "Введите новое время начала в формате ЧЧ:ММ:",
	state.FieldClassroom:   "Введите новую аудиторию:",
	state.FieldDescription: "Введите комментарий для группы:",
}

// ShowChangeCalendar открывает календарь выбора занятия для изменения
func ShowChangeCalendar(hc *common.HandlerContext) {
	if err := hc.RequireLeader(); err != nil {
		hc.Fail(err, "Schedule change rejected")
		return
	}
	showChangeMonth(hc, hc.Deps.Calendar.LastMonthOrNow(hc.UserID()))
}

func showChangeMonth(hc *common.HandlerContext, m calendar.Month) {
	kb, err := hc.Deps.Calendar.Get(m, calendar.ScheduleChange)
	if err != nil {
		hc.Fail(err, "Failed to get calendar")
		return
	}
	hc.Deps.Calendar.RememberUserMonth(hc.UserID(), m)
	hc.Show("✏️ <b>Изменение расписания</b>\n\nВыберите дату занятия:", kb)
}

// ShowChangeEditor карточка занятия с кнопками выбора поля
func ShowChangeEditor(hc *common.HandlerContext, draft *state.ScheduleChangeDraft) {
	b := keyboard.NewBuilder()
	buttons := make([]models.InlineKeyboardButton, 0, len(state.ChangeFields))
	for _, f := range state.ChangeFields {
		buttons = append(buttons, keyboard.Button(fieldLabels[f], ChangeFieldPrefix+string(f)))
	}
	b.Chunked(2, buttons...)
	b.Row(keyboard.ConfirmButton(ChangeConfirm))
	hc.Show(changeCard(draft)+"\n\nВыберите, что изменить:", b.Build())
}

func changeMenu() *models.InlineKeyboardMarkup {
	return keyboard.NewBuilder().
		Row(keyboard.Button("✏️ Изменить", ChangeEdit)).
		Row(keyboard.Button("🚫 Отменить занятие", ChangeCancelLesson)).
		Row(keyboard.Button("↩️ Удалить изменение", ChangeDelete)).
		Build()
}

func changeCard(d *state.ScheduleChangeDraft) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✏️ <b>%s</b>\n%s",
		formatting.FormatDateWithWeekday(d.Lesson.Date.Time), formatting.FormatLesson(d.Lesson))

	var changes []string
	if d.NewSubject != "" {
		changes = append(changes, "Предмет: "+html.EscapeString(d.NewSubject))
	}
	if !d.NewDate.IsZero() {
		changes = append(changes, "Дата: "+formatting.FormatDate(d.NewDate))
	}
	if d.NewTime != "" {
		changes = append(changes, "Время: "+d.NewTime)
	}
	if d.Classroom != "" {
		changes = append(changes, "Аудитория: "+html.EscapeString(d.Classroom))
	}
	if d.Description != "" {
		changes = append(changes, "Комментарий: "+html.EscapeString(d.Description))
	}
	if len(changes) > 0 {
		sb.WriteString("\n\n<b>Новые значения:</b>\n")
		sb.WriteString(strings.Join(changes, "\n"))
	}
	return sb.String()
}

func handleScheduleChange(hc *common.HandlerContext, p Payload) {
	store := hc.Deps.Stores.ScheduleChange
	userID := hc.UserID()

	switch p.Kind {
	case KindChangeNav:
		showChangeMonth(hc, p.Month)

	case KindChangeDate:
		showLessonsForChange(hc, p)

	case KindLessonSelect:
		selectLesson(hc, p)

	case KindChangeEdit:
		step, draft := store.Update(userID, func(step state.ScheduleChangeStep, _ *state.ScheduleChangeDraft) state.ScheduleChangeStep {
			if step == state.ChangeNone {
				return step
			}
			return state.ChangeSelected
		})
		if step == state.ChangeNone {
			hc.Fail(common.ErrNoDraft, "Edit without selected lesson")
			return
		}
		ShowChangeEditor(hc, &draft)

	case KindChangeField:
		step, _ := store.Update(userID, func(step state.ScheduleChangeStep, d *state.ScheduleChangeDraft) state.ScheduleChangeStep {
			if step == state.ChangeNone {
				return step
			}
			d.PendingField = p.Field
			return state.ChangeAwaitingValue
		})
		if step == state.ChangeNone {
			hc.Fail(common.ErrNoDraft, "Field without selected lesson")
			return
		}
		hc.Show(fieldPrompts[p.Field], nil)

	case KindChangeConfirm:
		finishChange(hc, false, false)
	case KindChangeCancelLesson:
		finishChange(hc, true, false)
	case KindChangeDelete:
		finishChange(hc, false, true)
	}
}

func showLessonsForChange(hc *common.HandlerContext, p Payload) {
	if !hc.Deps.Calendar.Window().Contains(p.Date) {
		hc.Fail(calendar.ErrOutOfWindow, "Day outside window")
		return
	}
	if err := hc.RequireLeader(); err != nil {
		hc.Fail(err, "Schedule change rejected")
		return
	}
	lessons, err := hc.Deps.Backend.GetScheduleForDate(hc.Ctx, hc.User.Group, model.NewDate(p.Date))
	if err != nil {
		hc.Fail(err, "Failed to get schedule for date")
		return
	}

	back := []models.InlineKeyboardButton{
		keyboard.BackButton(calendar.ChangeNavPrefix + calendar.MonthOf(p.Date).NavToken()),
	}
	if len(lessons) == 0 {
		hc.Show(formatting.FormatDay(p.Date, nil), keyboard.NewBuilder().Row(back...).Build())
		return
	}

	b := keyboard.NewBuilder()
	for _, l := range lessons {
		b.Row(keyboard.Button(l.StartTime+" "+l.Subject, lessonSelectData(hc.User.Group, p.Date, l.StartTime)))
	}
	b.Row(back...)
	hc.Show(formatting.FormatDay(p.Date, lessons)+"\n\nВыберите занятие:", b.Build())
}

func selectLesson(hc *common.HandlerContext, p Payload) {
	if err := hc.RequireLeader(); err != nil {
		hc.Fail(err, "Schedule change rejected")
		return
	}
	if p.Group != hc.User.Group {
		hc.Fail(common.ErrForbidden, "Lesson of another group")
		return
	}

	lessons, err := hc.Deps.Backend.GetScheduleForDate(hc.Ctx, p.Group, model.NewDate(p.Date))
	if err != nil {
		hc.Fail(err, "Failed to get schedule for date")
		return
	}

	var lesson *model.Lesson
	for i := range lessons {
		if lessons[i].StartTime == p.Time {
			lesson = &lessons[i]
			break
		}
	}
	if lesson == nil {
		hc.Fail(common.ErrLessonNotFound, "Selected lesson is gone")
		return
	}
	if lesson.Group == "" {
		lesson.Group = p.Group
	}

	draft := state.ScheduleChangeDraft{Lesson: *lesson}
	hc.Deps.Stores.ScheduleChange.StartAt(hc.UserID(), state.ChangeSelected, draft)
	hc.Logger.Info("Lesson selected for change",
		zap.String("subject", lesson.Subject),
		zap.String("date", lesson.Date.String()),
		zap.String("start_time", lesson.StartTime),
	)
	hc.Show(changeCard(&draft), changeMenu())
}

// finishChange отправляет изменение на бэкенд, уведомляет группу и закрывает диалог.
// При ошибке бэкенда черновик остаётся.
func finishChange(hc *common.HandlerContext, cancelled, remove bool) {
	store := hc.Deps.Stores.ScheduleChange
	draft, ok := store.Snapshot(hc.UserID())
	if !ok {
		hc.Fail(common.ErrNoDraft, "Finish without selected lesson")
		return
	}
	if err := hc.RequireLeader(); err != nil {
		hc.Fail(err, "Schedule change rejected")
		return
	}

	change := draft.Change(hc.Event.Username, cancelled)

	var (
		err    error
		notice string
		done   string
	)
	if remove {
		err = hc.Deps.Backend.DeleteScheduleChange(hc.Ctx, change)
		notice = fmt.Sprintf("↩️ <b>Изменение отменено</b>\n\n%s\n%s %s проходит по расписанию",
			html.EscapeString(change.Subject), formatting.FormatDateWithWeekday(change.OldDate.Time), change.OldStartTime)
		done = "✅ Изменение удалено"
	} else {
		err = hc.Deps.Backend.SubmitScheduleChange(hc.Ctx, change)
		notice = formatting.FormatScheduleChange(change)
		done = "✅ Изменение сохранено"
		if cancelled {
			done = "✅ Занятие отменено"
		}
	}
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			err = common.ErrLessonNotFound
		}
		hc.Fail(err, "Failed to save schedule change")
		return
	}

	sent, err := hc.Deps.Notifier.NotifyGroup(hc.Ctx, change.Group, notice, hc.Event.Username)
	if err != nil {
		hc.Logger.Warn("Failed to notify group about schedule change", zap.Error(err))
	}
	store.Clear(hc.UserID())

	hc.Logger.Info("Schedule change saved",
		zap.Bool("cancelled", cancelled),
		zap.Bool("removed", remove),
		zap.Int("notified", sent),
	)
	hc.Show(fmt.Sprintf("%s\n\n📢 Уведомлено: %d", done, sent), nil)
}
