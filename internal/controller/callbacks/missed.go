package callbacks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/groupmate_bot/internal/backend"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/groupmate_bot/internal/keyboard"
	"github.com/Freeeeeet/groupmate_bot/internal/model"
	"go.uber.org/zap"
)

// ShowMissed список пропусков пользователя с кнопками удаления
func ShowMissed(hc *common.HandlerContext) {
	if err := hc.RequireUser(); err != nil {
		hc.Fail(err, "Failed to get user")
		return
	}

	absences, err := hc.Deps.Backend.ListAbsences(hc.Ctx, hc.Event.Username)
	if err != nil {
		hc.Fail(err, "Failed to list absences")
		return
	}
	if len(absences) == 0 {
		hc.Show("📋 У вас нет отмеченных пропусков", nil)
		return
	}

	var sb strings.Builder
	sb.WriteString("📋 <b>Ваши пропуски</b>\n")
	b := keyboard.NewBuilder()
	for _, a := range absences {
		sb.WriteString("\n")
		sb.WriteString(formatting.FormatAbsence(a))
		b.Row(keyboard.Button(
			"🗑 "+formatting.FormatRange(a.From.Time, a.To.Time),
			deleteMissedData(hc.Event.Username, a.From.Time, a.To.Time),
		))
	}
	hc.Show(sb.String(), b.Build())
}

func handleMissed(hc *common.HandlerContext, p Payload) {
	if p.Kind != KindDeleteMissed {
		return
	}

	if !strings.EqualFold(p.Username, hc.Event.Username) {
		if err := hc.RequireLeader(); err != nil {
			if errors.Is(err, common.ErrNotLeader) {
				err = common.ErrForbidden
			}
			hc.Fail(err, "Foreign absence delete rejected")
			return
		}
	}

	err := hc.Deps.Backend.DeleteAbsence(hc.Ctx, p.Username, model.NewDate(p.From), model.NewDate(p.To))
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			err = common.ErrAbsenceNotFound
		}
		hc.Fail(err, "Failed to delete absence")
		return
	}

	hc.Logger.Info("Absence deleted",
		zap.String("owner", p.Username),
		zap.Time("from", p.From),
		zap.Time("to", p.To),
	)
	hc.Answer("Удалено")
	hc.Show(fmt.Sprintf("✅ Пропуск %s удалён", formatting.FormatRange(p.From, p.To)), nil)
}
