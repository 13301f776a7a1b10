package callbacks

import (
	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/state"
)

// StartRegistration начинает регистрацию в текущем чате
func StartRegistration(hc *common.HandlerContext) {
	if hc.Event.Username == "" {
		hc.Fail(common.ErrNoUsername, "Registration without username")
		return
	}

	hc.Deps.Stores.Registration.Start(hc.ChatID(), state.RegistrationDraft{})
	hc.Logger.Info("Registration started")
	hc.Show("📝 <b>Регистрация</b>\n\nВведите ваше имя:", nil)
}

func handleRegistration(hc *common.HandlerContext, p Payload) {
	switch p.Kind {
	case KindRegStart:
		StartRegistration(hc)
	}
}
