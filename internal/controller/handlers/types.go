package handlers

import (
	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/common"
)

// CommandFunc обработчик команды без состояния
type CommandFunc func(hc *common.HandlerContext)

// Handlers обрабатывает текстовые сообщения: шаги диалогов и команды
type Handlers struct {
	deps     *callbacktypes.Deps
	commands map[string]CommandFunc
}

// NewHandlers создаёт обработчик текстовых сообщений
func NewHandlers(deps *callbacktypes.Deps) *Handlers {
	h := &Handlers{deps: deps}
	h.commands = h.commandTable()
	return h
}
