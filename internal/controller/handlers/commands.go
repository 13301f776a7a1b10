package handlers

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/state"
	"github.com/Freeeeeet/groupmate_bot/internal/keyboard"
	"go.uber.org/zap"
)

const helpText = "📚 <b>Справка</b>\n\n" +
	"/today - Расписание на сегодня\n" +
	"/calendar - Расписание на выбранную дату\n" +
	"/weeks - Расписание по неделям\n" +
	"/months - Выбор месяца\n" +
	"/absence - Отметить пропуск\n" +
	"/missed - Мои пропуски\n" +
	"/deadlines - Дедлайны группы\n" +
	"/profile - Мои данные\n" +
	"/editprofile - Изменить данные\n" +
	"/cancel - Отменить текущее действие\n\n" +
	"Для старосты:\n" +
	"/newdeadline - Создать дедлайн\n" +
	"/change - Изменить расписание"

func (h *Handlers) commandTable() map[string]CommandFunc {
	table := map[string]CommandFunc{}
	add := func(fn CommandFunc, names ...string) {
		for _, n := range names {
			table[n] = fn
		}
	}

	add(h.HandleStart, "/start")
	add(h.HandleHelp, "/help", BtnHelp)
	add(callbacks.ShowToday, "/today", BtnToday)
	add(h.HandleCalendar, "/calendar", BtnCalendar)
	add(callbacks.ShowWeeks, "/weeks", BtnWeeks)
	add(callbacks.ShowMonths, "/months", BtnMonths)
	add(h.HandleAbsence, "/absence", BtnAbsence)
	add(callbacks.ShowMissed, "/missed", BtnMissed)
	add(callbacks.ShowDeadlines, "/deadlines", BtnDeadlines)
	add(h.HandleProfile, "/profile", BtnProfile)
	add(h.HandleEditProfile, "/editprofile", BtnEditProfile)
	add(h.HandleNewDeadline, "/newdeadline", BtnNewDeadline)
	add(callbacks.ShowChangeCalendar, "/change", BtnChangeLesson)
	return table
}

// HandleText обрабатывает текстовое сообщение. Сначала отмена, затем активный диалог
// в порядке: регистрация, причина пропуска, профиль, дедлайн, поле изменения занятия.
// Если диалогов нет, текст ищется в таблице команд.
func (h *Handlers) HandleText(ctx context.Context, ev callbacktypes.Event) {
	hc := common.NewHandlerContext(ctx, h.deps, ev)
	stores := h.deps.Stores
	chatID, userID := hc.ChatID(), hc.UserID()

	if isCancel(ev.Text) {
		h.HandleCancel(hc)
		return
	}

	switch {
	case stores.Registration.IsActive(chatID):
		h.handleRegistrationStep(hc)
	case stores.Absence.Step(userID) == state.AbsenceAwaitingDescription:
		h.handleAbsenceDescription(hc)
	case stores.Profile.IsActive(chatID):
		h.handleProfileStep(hc)
	case stores.Deadline.IsActive(chatID):
		h.handleDeadlineStep(hc)
	case stores.ScheduleChange.Step(userID) == state.ChangeAwaitingValue:
		h.handleChangeValue(hc)
	default:
		h.handleCommand(hc)
	}
}

func (h *Handlers) handleCommand(hc *common.HandlerContext) {
	cmd := normalizeCommand(hc.Event.Text)
	fn, ok := h.commands[cmd]
	if !ok {
		hc.Logger.Warn("Unknown command", zap.String("text", cmd))
		return
	}
	hc.Logger.Info("Command received", zap.String("command", cmd))
	fn(hc)
}

// HandleStart приветствие; незарегистрированному пользователю предлагает регистрацию
func (h *Handlers) HandleStart(hc *common.HandlerContext) {
	err := hc.LoadUser()
	if errors.Is(err, common.ErrUserNotFound) {
		hc.Show("👋 Привет! Я помогаю следить за расписанием, пропусками и дедлайнами группы.\n\n"+
			"Чтобы начать, пройдите регистрацию.",
			keyboard.Single("📝 Зарегистрироваться", callbacks.RegStart))
		return
	}
	if err != nil {
		hc.Fail(err, "Failed to load user")
		return
	}

	hc.ReplyWithKeyboard(
		fmt.Sprintf("👋 С возвращением, %s!\n\nВыберите действие в меню.", html.EscapeString(hc.User.FirstName)),
		mainMenu(hc.User),
	)
}

// HandleHelp список команд
func (h *Handlers) HandleHelp(hc *common.HandlerContext) {
	hc.Reply(helpText)
}

// HandleCancel закрывает все диалоги чата и пользователя
func (h *Handlers) HandleCancel(hc *common.HandlerContext) {
	flows := h.deps.Stores.ActiveFlows(hc.ChatID(), hc.UserID())
	if len(flows) == 0 {
		hc.Reply("❌ Нет активных операций для отмены.")
		return
	}

	h.deps.Stores.ClearAll(hc.ChatID(), hc.UserID())
	hc.Logger.Info("Flows cancelled", zap.Strings("flows", flows))
	hc.Reply("✅ Операция отменена.\n\nИспользуйте /help для просмотра доступных команд.")
}

// HandleCalendar календарь с месяцем, на котором пользователь остановился
func (h *Handlers) HandleCalendar(hc *common.HandlerContext) {
	callbacks.ShowCalendar(hc, h.deps.Calendar.LastMonthOrNow(hc.UserID()))
}

// HandleAbsence начинает отметку пропуска
func (h *Handlers) HandleAbsence(hc *common.HandlerContext) {
	if err := hc.RequireUser(); err != nil {
		hc.Fail(err, "Failed to get user")
		return
	}
	callbacks.StartAbsence(hc)
}

// HandleProfile показывает данные пользователя
func (h *Handlers) HandleProfile(hc *common.HandlerContext) {
	if err := hc.RequireUser(); err != nil {
		hc.Fail(err, "Failed to get user")
		return
	}
	hc.Reply(formatting.FormatProfile(*hc.User))
}

// HandleEditProfile начинает редактирование профиля
func (h *Handlers) HandleEditProfile(hc *common.HandlerContext) {
	if err := hc.RequireUser(); err != nil {
		hc.Fail(err, "Failed to get user")
		return
	}

	h.deps.Stores.Profile.Start(hc.ChatID(), state.ProfileDraft{Current: *hc.User})
	hc.Logger.Info("Profile editing started")
	hc.ReplyWithKeyboard(
		"✏️ <b>Редактирование данных</b>\n\n"+
			"Шаг 1 из 3: Введите имя или «нет», чтобы оставить "+html.EscapeString(hc.User.FirstName),
		keyboard.Reply([]string{BtnProfile, BtnEditProfile}, []string{BtnBack}),
	)
}

// HandleNewDeadline начинает создание дедлайна (только староста)
func (h *Handlers) HandleNewDeadline(hc *common.HandlerContext) {
	if err := hc.RequireLeader(); err != nil {
		hc.Fail(err, "Deadline creation rejected")
		return
	}

	h.deps.Stores.Deadline.Start(hc.ChatID(), state.DeadlineDraft{
		Group:     hc.User.Group,
		CreatedBy: hc.Event.Username,
	})
	hc.Logger.Info("Deadline creation started")
	hc.Reply("📌 <b>Новый дедлайн</b>\n\n" +
		"Шаг 1 из 3: Введите название\n\n" +
		"Для отмены используйте /cancel")
}
