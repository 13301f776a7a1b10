package callbacks

import (
	"errors"
	"strings"

	"github.com/Freeeeeet/groupmate_bot/internal/backend"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/groupmate_bot/internal/keyboard"
	"go.uber.org/zap"
)

// ShowDeadlines дедлайны группы; староста видит кнопки удаления
func ShowDeadlines(hc *common.HandlerContext) {
	if err := hc.RequireUser(); err != nil {
		hc.Fail(err, "Failed to get user")
		return
	}

	deadlines, err := hc.Deps.Backend.ListDeadlines(hc.Ctx, hc.User.Group)
	if err != nil {
		hc.Fail(err, "Failed to list deadlines")
		return
	}
	if len(deadlines) == 0 {
		hc.Show("📌 Дедлайнов нет", nil)
		return
	}

	now := hc.Deps.Clock()
	var sb strings.Builder
	sb.WriteString("📌 <b>Дедлайны группы</b>\n")
	b := keyboard.NewBuilder()
	for _, d := range deadlines {
		sb.WriteString("\n")
		sb.WriteString(formatting.FormatDeadline(d, now))
		if hc.User.IsLeader() && d.ID != "" {
			b.Row(keyboard.Button("🗑 "+d.Title, DeleteDeadlinePrefix+d.ID))
		}
	}

	if !hc.User.IsLeader() {
		hc.Show(sb.String(), nil)
		return
	}
	hc.Show(sb.String(), b.Build())
}

func handleDeadline(hc *common.HandlerContext, p Payload) {
	if p.Kind != KindDeleteDeadline {
		return
	}
	if err := hc.RequireLeader(); err != nil {
		hc.Fail(err, "Deadline delete rejected")
		return
	}

	if err := hc.Deps.Backend.DeleteDeadline(hc.Ctx, p.ID); err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			err = common.ErrDeadlineNotFound
		}
		hc.Fail(err, "Failed to delete deadline")
		return
	}

	hc.Logger.Info("Deadline deleted", zap.String("deadline_id", p.ID))
	hc.Answer("Удалено")
	hc.Show("✅ Дедлайн удалён", nil)
}
