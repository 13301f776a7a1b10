package callbacks

import (
	"fmt"

	"github.com/Freeeeeet/groupmate_bot/internal/calendar"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/state"
	"github.com/Freeeeeet/groupmate_bot/internal/keyboard"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

func absenceKeyboard(hc *common.HandlerContext, m calendar.Month) (*models.InlineKeyboardMarkup, error) {
	base, err := hc.Deps.Calendar.Get(m, calendar.Absence)
	if err != nil {
		return nil, err
	}
	return keyboard.Append(base, []models.InlineKeyboardButton{
		keyboard.ConfirmButton(AbsenceConfirm),
		keyboard.CancelButton(AbsenceCancel),
	}), nil
}

func absencePrompt(d *state.AbsenceDraft) string {
	text := "🤒 <b>Отметка о пропуске</b>\n\nВыберите первый и последний день пропуска, затем нажмите «Подтвердить»."
	if d.HasRange() {
		text += "\n\n📅 Выбрано: " + formatting.FormatRange(d.From, d.To)
	}
	return text
}

// StartAbsence открывает календарь пропуска с новым черновиком
func StartAbsence(hc *common.HandlerContext) {
	kb, err := absenceKeyboard(hc, hc.Deps.Calendar.LastMonthOrNow(hc.UserID()))
	if err != nil {
		hc.Fail(err, "Failed to build absence calendar")
		return
	}
	draft := state.AbsenceDraft{}
	hc.Deps.Stores.Absence.Start(hc.UserID(), draft)
	hc.Show(absencePrompt(&draft), kb)
}

// Кнопки календаря одного пользователя могут прийти из разных чатов параллельно,
// поэтому черновик пропуска меняется только через Update.
func handleAbsence(hc *common.HandlerContext, p Payload) {
	store := hc.Deps.Stores.Absence
	userID := hc.UserID()

	switch p.Kind {
	case KindAbsenceDate:
		if !hc.Deps.Calendar.Window().Contains(p.Date) {
			hc.Fail(calendar.ErrOutOfWindow, "Absence date outside window")
			return
		}
		kb, err := absenceKeyboard(hc, calendar.MonthOf(p.Date))
		if err != nil {
			hc.Fail(err, "Failed to build absence calendar")
			return
		}
		// выбор даты возвращает диалог к выбору, даже если уже ждали причину
		_, draft := store.Update(userID, func(_ state.AbsenceStep, d *state.AbsenceDraft) state.AbsenceStep {
			d.Pick(p.Date)
			return state.AbsencePickingDates
		})
		hc.Answer("📅 " + formatting.FormatRange(draft.From, draft.To))
		hc.Show(absencePrompt(&draft), kb)

	case KindAbsenceNav:
		kb, err := absenceKeyboard(hc, p.Month)
		if err != nil {
			hc.Fail(err, "Failed to build absence calendar")
			return
		}
		_, draft := store.Update(userID, func(step state.AbsenceStep, _ *state.AbsenceDraft) state.AbsenceStep {
			if step == state.AbsenceNone {
				return state.AbsencePickingDates
			}
			return step
		})
		hc.Deps.Calendar.RememberUserMonth(userID, p.Month)
		hc.Show(absencePrompt(&draft), kb)

	case KindAbsenceConfirm:
		confirmed := false
		_, draft := store.Update(userID, func(step state.AbsenceStep, d *state.AbsenceDraft) state.AbsenceStep {
			if step == state.AbsenceNone || !d.HasRange() {
				return step
			}
			confirmed = true
			return state.AbsenceAwaitingDescription
		})
		if !confirmed {
			hc.Fail(common.ErrNoRange, "Absence confirmed without dates")
			return
		}
		hc.Logger.Info("Absence range confirmed",
			zap.Time("from", draft.From),
			zap.Time("to", draft.To),
		)
		hc.Show(fmt.Sprintf("🤒 Пропуск: %s\n\n✍️ Напишите причину пропуска:",
			formatting.FormatRange(draft.From, draft.To)), nil)

	case KindAbsenceCancel:
		store.Clear(userID)
		hc.Show("❌ Отметка о пропуске отменена", nil)
	}
}
