package callbacks

import (
	"context"

	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/common"
	"go.uber.org/zap"
)

// TargetFunc обработчик группы кнопок
type TargetFunc func(hc *common.HandlerContext, p Payload)

// Router разбирает payload кнопки и передаёт его ровно одному обработчику
type Router struct {
	deps    *callbacktypes.Deps
	targets map[Target]TargetFunc
}

// NewRouter создаёт роутер со всеми обработчиками бота
func NewRouter(deps *callbacktypes.Deps) *Router {
	return &Router{
		deps: deps,
		targets: map[Target]TargetFunc{
			TargetRegistration:   handleRegistration,
			TargetAbsence:        handleAbsence,
			TargetDatePick:       handleDatePick,
			TargetBrowse:         handleBrowse,
			TargetMissed:         handleMissed,
			TargetDeadline:       handleDeadline,
			TargetScheduleChange: handleScheduleChange,
		},
	}
}

// SetTarget заменяет обработчик группы кнопок
func (r *Router) SetTarget(t Target, fn TargetFunc) {
	r.targets[t] = fn
}

// Route обрабатывает нажатие кнопки. Нераспознанный payload логируется и пропускается.
func (r *Router) Route(ctx context.Context, ev callbacktypes.Event) {
	hc := common.NewHandlerContext(ctx, r.deps, ev)
	defer hc.Answer("")

	log := hc.Logger.With(zap.String("callback_data", ev.Data))

	p, err := Decode(ev.Data)
	if err != nil {
		log.Warn("Malformed callback", zap.Error(err))
		text := common.ErrorMessage(err)
		hc.Answer(text)
		hc.Reply(text)
		return
	}

	switch p.Kind {
	case KindUnknown:
		log.Warn("Unknown callback")
		return
	case KindInert:
		return
	}

	target := p.Kind.Target()
	fn, ok := r.targets[target]
	if !ok {
		log.Warn("No handler for callback", zap.Stringer("target", target))
		return
	}

	log.Info("Callback received", zap.Stringer("target", target))
	fn(hc, p)
}
