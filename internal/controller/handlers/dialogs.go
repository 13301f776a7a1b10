package handlers

import (
	"fmt"
	"html"
	"strings"

	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/state"
	"github.com/Freeeeeet/groupmate_bot/internal/model"
	"github.com/Freeeeeet/groupmate_bot/internal/service"
	"go.uber.org/zap"
)

// ========================
// Регистрация
// ========================

func (h *Handlers) handleRegistrationStep(hc *common.HandlerContext) {
	store := h.deps.Stores.Registration
	chatID := hc.ChatID()
	step := store.Step(chatID)
	log := hc.Logger.With(zap.String("flow", store.Name()), zap.String("step", string(step)))

	draft, ok := store.Draft(chatID)
	if !ok {
		return
	}

	text, err := common.RequireText(hc.Event.Text)
	if err != nil {
		hc.Fail(err, "Empty registration input")
		return
	}

	switch step {
	case state.RegEnterFirstName:
		if tooLong(text, NameMaxLength) {
			hc.Reply(fmt.Sprintf("❌ Имя слишком длинное. Максимум %d символов.\n\nПопробуйте ещё раз:", NameMaxLength))
			return
		}
		draft.FirstName = text
		store.Advance(chatID)
		hc.Reply("Шаг 2 из 3: Введите фамилию:")

	case state.RegEnterLastName:
		if tooLong(text, NameMaxLength) {
			hc.Reply(fmt.Sprintf("❌ Фамилия слишком длинная. Максимум %d символов.\n\nПопробуйте ещё раз:", NameMaxLength))
			return
		}
		draft.LastName = text
		store.Advance(chatID)
		hc.Reply("Шаг 3 из 3: Введите номер группы, например ИВТ-21:")

	case state.RegEnterGroup:
		if tooLong(text, GroupMaxLength) {
			hc.Reply(fmt.Sprintf("❌ Название группы слишком длинное. Максимум %d символов.\n\nПопробуйте ещё раз:", GroupMaxLength))
			return
		}
		draft.Group = text
		if store.Advance(chatID) == state.RegFinished {
			h.finishRegistration(hc, draft, log)
		}

	case state.RegFinished:
		h.finishRegistration(hc, draft, log)
	}
}

// finishRegistration отправляет данные на бэкенд; состояние очищается в любом случае
func (h *Handlers) finishRegistration(hc *common.HandlerContext, draft *state.RegistrationDraft, log *zap.Logger) {
	defer h.deps.Stores.Registration.Clear(hc.ChatID())

	user := model.User{
		ID:        hc.UserID(),
		Username:  hc.Event.Username,
		FirstName: draft.FirstName,
		LastName:  draft.LastName,
		Group:     draft.Group,
		Role:      model.RoleStudent,
	}
	if err := h.deps.Backend.RegisterUser(hc.Ctx, user); err != nil {
		log.Error("Failed to register user", zap.Error(err))
		hc.Reply(common.ErrorMessage(err) + "\n\nНачните регистрацию заново: /start")
		return
	}

	log.Info("User registered", zap.String("group", user.Group))
	hc.ReplyWithKeyboard(
		fmt.Sprintf("✅ Регистрация завершена!\n\n%s, добро пожаловать в группу %s.",
			html.EscapeString(user.FirstName), html.EscapeString(user.Group)),
		mainMenu(&user),
	)
}

// ========================
// Пропуск
// ========================

func (h *Handlers) handleAbsenceDescription(hc *common.HandlerContext) {
	store := h.deps.Stores.Absence
	userID := hc.UserID()

	draft, ok := store.Snapshot(userID)
	if !ok || !draft.HasRange() {
		store.Clear(userID)
		hc.Fail(common.ErrNoRange, "Absence description without range")
		return
	}

	text, err := common.RequireText(hc.Event.Text)
	if err != nil {
		hc.Fail(err, "Empty absence description")
		return
	}
	if tooLong(text, DescriptionMaxLength) {
		hc.Reply(fmt.Sprintf("❌ Слишком длинное описание. Максимум %d символов.\n\nПопробуйте ещё раз:", DescriptionMaxLength))
		return
	}
	if err := hc.RequireUser(); err != nil {
		hc.Fail(err, "Failed to get user")
		return
	}

	draft.Description = text
	absence := model.Absence{
		Username:    hc.Event.Username,
		Group:       hc.User.Group,
		From:        model.NewDate(draft.From),
		To:          model.NewDate(draft.To),
		Description: draft.Description,
	}
	if err := h.deps.Backend.CreateAbsence(hc.Ctx, absence); err != nil {
		hc.Fail(err, "Failed to create absence")
		return
	}

	notice := fmt.Sprintf("🤒 <b>%s</b> (@%s) отметил пропуск\n\n%s",
		html.EscapeString(hc.User.FullName()), html.EscapeString(absence.Username), formatting.FormatAbsence(absence))
	if _, err := h.deps.Notifier.NotifyLeader(hc.Ctx, absence.Group, notice); err != nil {
		hc.Logger.Warn("Failed to notify leader about absence", zap.Error(err))
	}
	store.Clear(userID)

	hc.Logger.Info("Absence reported",
		zap.String("from", absence.From.String()),
		zap.String("to", absence.To.String()),
	)
	hc.Reply("✅ Пропуск " + formatting.FormatRange(draft.From, draft.To) + " отмечен, староста получит уведомление")
}

// ========================
// Профиль
// ========================

func (h *Handlers) handleProfileStep(hc *common.HandlerContext) {
	store := h.deps.Stores.Profile
	chatID := hc.ChatID()
	step := store.Step(chatID)

	draft, ok := store.Draft(chatID)
	if !ok {
		return
	}

	switch normalizeCommand(hc.Event.Text) {
	case BtnProfile, "/profile":
		hc.Reply(formatting.FormatProfile(draft.Current) + "\n\nПродолжайте ввод или нажмите «" + BtnBack + "».")
		return
	case BtnEditProfile, "/editprofile":
		hc.Reply("✏️ Вы уже редактируете данные. Продолжайте ввод.")
		return
	case BtnBack:
		store.Clear(chatID)
		hc.ReplyWithKeyboard("↩️ Редактирование отменено", mainMenu(&draft.Current))
		return
	}

	text, err := common.RequireText(hc.Event.Text)
	if err != nil {
		hc.Fail(err, "Empty profile input")
		return
	}
	value := text
	if common.IsSkip(text) {
		value = ""
	}

	switch step {
	case state.RegEnterFirstName:
		if tooLong(value, NameMaxLength) {
			hc.Reply(fmt.Sprintf("❌ Имя слишком длинное. Максимум %d символов.\n\nПопробуйте ещё раз:", NameMaxLength))
			return
		}
		draft.FirstName = value
		store.Advance(chatID)
		hc.Reply("Шаг 2 из 3: Введите фамилию или «нет», чтобы оставить " + html.EscapeString(draft.Current.LastName))

	case state.RegEnterLastName:
		if tooLong(value, NameMaxLength) {
			hc.Reply(fmt.Sprintf("❌ Фамилия слишком длинная. Максимум %d символов.\n\nПопробуйте ещё раз:", NameMaxLength))
			return
		}
		draft.LastName = value
		store.Advance(chatID)
		hc.Reply("Шаг 3 из 3: Введите группу или «нет», чтобы оставить " + html.EscapeString(draft.Current.Group))

	case state.RegEnterGroup:
		if tooLong(value, GroupMaxLength) {
			hc.Reply(fmt.Sprintf("❌ Название группы слишком длинное. Максимум %d символов.\n\nПопробуйте ещё раз:", GroupMaxLength))
			return
		}
		draft.Group = value
		updated := draft.Result()
		if err := h.deps.Backend.UpdateUser(hc.Ctx, updated); err != nil {
			hc.Fail(err, "Failed to update user")
			return
		}
		store.Clear(chatID)
		hc.Logger.Info("Profile updated")
		hc.ReplyWithKeyboard("✅ Данные обновлены\n\n"+formatting.FormatProfile(updated), mainMenu(&updated))
	}
}

// ========================
// Дедлайн
// ========================

func (h *Handlers) handleDeadlineStep(hc *common.HandlerContext) {
	store := h.deps.Stores.Deadline
	chatID := hc.ChatID()
	step := store.Step(chatID)

	draft, ok := store.Draft(chatID)
	if !ok {
		return
	}

	switch step {
	case state.DeadlineTitle:
		text, err := common.RequireText(hc.Event.Text)
		if err != nil {
			hc.Fail(err, "Empty deadline title")
			return
		}
		if tooLong(text, TitleMaxLength) {
			hc.Reply(fmt.Sprintf("❌ Название слишком длинное. Максимум %d символов.\n\nПопробуйте ещё раз:", TitleMaxLength))
			return
		}
		draft.Title = text
		store.Advance(chatID)
		hc.Reply("Шаг 2 из 3: Введите описание или «нет», чтобы пропустить:")

	case state.DeadlineDescription:
		text := strings.TrimSpace(hc.Event.Text)
		if common.IsSkip(text) {
			text = ""
		}
		if tooLong(text, DescriptionMaxLength) {
			hc.Reply(fmt.Sprintf("❌ Слишком длинное описание. Максимум %d символов.\n\nПопробуйте ещё раз:", DescriptionMaxLength))
			return
		}
		draft.Description = text
		store.Advance(chatID)
		hc.Reply("Шаг 3 из 3: Введите срок сдачи в формате ДД.ММ.ГГГГ:")

	case state.DeadlineDate:
		due, err := common.ParseUserDate(hc.Event.Text)
		if err != nil {
			hc.Fail(err, "Invalid deadline date")
			return
		}
		draft.DueDate = due
		store.Advance(chatID)
		h.finishDeadline(hc, draft)

	case state.DeadlineRecipients:
		h.finishDeadline(hc, draft)
	}
}

// finishDeadline собирает получателей по составу группы, сохраняет дедлайн и рассылает его.
// При ошибке шаг остаётся RECIPIENTS: следующее сообщение повторит попытку.
func (h *Handlers) finishDeadline(hc *common.HandlerContext, draft *state.DeadlineDraft) {
	roster, err := h.deps.Backend.GetGroupRoster(hc.Ctx, draft.Group)
	if err != nil {
		hc.Fail(err, "Failed to get group roster")
		hc.Reply("Отправьте любое сообщение, чтобы повторить, или /cancel")
		return
	}

	draft.Recipients = draft.Recipients[:0]
	for _, u := range roster {
		if u.Username != "" {
			draft.Recipients = append(draft.Recipients, u.Username)
		}
	}

	created, err := h.deps.Backend.CreateDeadline(hc.Ctx, model.Deadline{
		Title:       draft.Title,
		Description: draft.Description,
		DueDate:     model.NewDate(draft.DueDate),
		Group:       draft.Group,
		CreatedBy:   draft.CreatedBy,
		Recipients:  draft.Recipients,
	})
	if err != nil {
		hc.Fail(err, "Failed to create deadline")
		hc.Reply("Отправьте любое сообщение, чтобы повторить, или /cancel")
		return
	}

	now := h.deps.Clock()
	attachment := service.DeadlineICS(*created, now)
	notice := "📌 <b>Новый дедлайн</b>\n\n" + formatting.FormatDeadline(*created, now)
	sent, err := h.deps.Notifier.NotifyHandles(hc.Ctx, draft.Recipients, notice, &attachment)
	if err != nil {
		hc.Logger.Warn("Failed to notify deadline recipients", zap.Error(err))
	}
	h.deps.Stores.Deadline.Clear(hc.ChatID())

	hc.Logger.Info("Deadline created",
		zap.String("deadline_id", created.ID),
		zap.Int("recipients", len(draft.Recipients)),
		zap.Int("notified", sent),
	)
	hc.Reply(fmt.Sprintf("✅ Дедлайн «%s» создан\n\n📢 Уведомлено: %d", html.EscapeString(created.Title), sent))
}

// ========================
// Изменение расписания
// ========================

func (h *Handlers) handleChangeValue(hc *common.HandlerContext) {
	store := h.deps.Stores.ScheduleChange
	userID := hc.UserID()

	var (
		field    state.ChangeField
		applyErr error
	)
	step, draft := store.Update(userID, func(step state.ScheduleChangeStep, d *state.ScheduleChangeDraft) state.ScheduleChangeStep {
		if step == state.ChangeNone {
			return step
		}
		field = d.PendingField
		if applyErr = applyChangeValue(d, field, hc.Event.Text); applyErr != nil {
			return step
		}
		d.PendingField = ""
		return state.ChangeSelected
	})
	if step == state.ChangeNone {
		return
	}
	if applyErr != nil {
		hc.Fail(applyErr, "Invalid schedule change value")
		return
	}

	hc.Logger.Info("Schedule change field set", zap.String("field", string(field)))
	callbacks.ShowChangeEditor(hc, &draft)
}

// applyChangeValue записывает ввод в поле черновика; при ошибке черновик не меняется
func applyChangeValue(draft *state.ScheduleChangeDraft, field state.ChangeField, text string) error {
	switch field {
	case state.FieldDate:
		d, err := common.ParseUserDate(text)
		if err != nil {
			return err
		}
		draft.NewDate = d
		return nil
	case state.FieldTime:
		t, err := common.ParseUserTime(text)
		if err != nil {
			return err
		}
		draft.NewTime = t
		return nil
	}

	value, err := common.RequireText(text)
	if err != nil {
		return err
	}
	switch field {
	case state.FieldSubject:
		draft.NewSubject = value
	case state.FieldClassroom:
		draft.Classroom = value
	case state.FieldDescription:
		draft.Description = value
	default:
		return fmt.Errorf("field %q: %w", field, common.ErrNoDraft)
	}
	return nil
}
