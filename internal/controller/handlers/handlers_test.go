package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/state"
	"github.com/Freeeeeet/groupmate_bot/internal/model"
	"github.com/Freeeeeet/groupmate_bot/internal/service"
	"github.com/Freeeeeet/groupmate_bot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	chatID = int64(100)
	userID = int64(200)
	group  = "ИВТ-21"
)

var now = time.Date(2025, time.April, 10, 10, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*testutil.Env, *Handlers) {
	t.Helper()
	env := testutil.NewEnv(t, now)
	return env, NewHandlers(env.Deps)
}

func text(s string) callbacktypes.Event {
	return callbacktypes.Event{
		Kind:     callbacktypes.EventText,
		ChatID:   chatID,
		UserID:   userID,
		Username: "ivan",
		Text:     s,
	}
}

func send(h *Handlers, texts ...string) {
	for _, s := range texts {
		h.HandleText(context.Background(), text(s))
	}
}

func lastText(t *testing.T, env *testutil.Env) string {
	t.Helper()
	last, ok := env.Messenger.Last()
	require.True(t, ok, "no message was shown")
	return last.Text
}

func TestDeadlineTitleAdvancesToDescription(t *testing.T) {
	env, h := setup(t)
	env.Deps.Stores.Deadline.Start(chatID, state.DeadlineDraft{Group: group, CreatedBy: "ivan"})

	send(h, "TITLE")

	draft, ok := env.Deps.Stores.Deadline.Draft(chatID)
	require.True(t, ok)
	assert.Equal(t, "TITLE", draft.Title)
	assert.Equal(t, state.DeadlineDescription, env.Deps.Stores.Deadline.Step(chatID))
}

func TestDeadlineInvalidDateStaysAtDate(t *testing.T) {
	env, h := setup(t)
	store := env.Deps.Stores.Deadline
	store.Start(chatID, state.DeadlineDraft{Group: group})
	store.SetStep(chatID, state.DeadlineDate)

	send(h, "not-a-date")

	assert.Equal(t, state.DeadlineDate, store.Step(chatID))
	assert.Equal(t, common.ErrorMessage(common.ErrInvalidDate), lastText(t, env))
	env.Backend.AssertNotCalled(t, "GetGroupRoster", mock.Anything, mock.Anything)
}

func TestDeadlineCreation(t *testing.T) {
	env, h := setup(t)
	env.Deps.Stores.Deadline.Start(chatID, state.DeadlineDraft{Group: group, CreatedBy: "ivan"})

	env.Backend.On("GetGroupRoster", mock.Anything, group).Return([]model.User{
		*testutil.NewTestUser("ivan", group),
		*testutil.NewTestUser("petr", group),
		{FirstName: "Без username"},
	}, nil)
	env.Backend.On("CreateDeadline", mock.Anything, mock.MatchedBy(func(d model.Deadline) bool {
		return d.Title == "Курсовая" && d.Description == "" &&
			d.DueDate == testutil.MustDate("2025-04-20") &&
			assert.ObjectsAreEqual([]string{"ivan", "petr"}, d.Recipients)
	})).Return(&model.Deadline{
		ID:      "d-1",
		Title:   "Курсовая",
		DueDate: testutil.MustDate("2025-04-20"),
		Group:   group,
	}, nil)
	env.Notifier.On("NotifyHandles", mock.Anything, []string{"ivan", "petr"}, mock.Anything,
		mock.MatchedBy(func(a *service.Attachment) bool { return a != nil && a.Filename == "deadline.ics" }),
	).Return(2, nil)

	send(h, "Курсовая", "нет", "20.04.2025")

	env.Backend.AssertExpectations(t)
	env.Notifier.AssertExpectations(t)
	assert.False(t, env.Deps.Stores.Deadline.IsActive(chatID))
	assert.Contains(t, lastText(t, env), "Уведомлено: 2")
}

func TestDeadlineRosterFailureKeepsDraft(t *testing.T) {
	env, h := setup(t)
	store := env.Deps.Stores.Deadline
	store.Start(chatID, state.DeadlineDraft{Group: group, Title: "Курсовая"})
	store.SetStep(chatID, state.DeadlineDate)

	env.Backend.On("GetGroupRoster", mock.Anything, group).Return(nil, errors.New("timeout")).Twice()

	send(h, "20.04.2025")
	assert.Equal(t, state.DeadlineRecipients, store.Step(chatID))

	send(h, "ещё раз")
	assert.Equal(t, state.DeadlineRecipients, store.Step(chatID))
	env.Backend.AssertExpectations(t)
	env.Backend.AssertNotCalled(t, "CreateDeadline", mock.Anything, mock.Anything)
}

func TestRegistrationFlow(t *testing.T) {
	env, h := setup(t)
	env.Deps.Stores.Registration.Start(chatID, state.RegistrationDraft{})
	env.Backend.On("RegisterUser", mock.Anything, model.User{
		ID:        userID,
		Username:  "ivan",
		FirstName: "Иван",
		LastName:  "Петров",
		Group:     group,
		Role:      model.RoleStudent,
	}).Return(nil)

	send(h, "Иван")
	assert.Equal(t, state.RegEnterLastName, env.Deps.Stores.Registration.Step(chatID))
	send(h, "Петров", group)

	env.Backend.AssertExpectations(t)
	assert.False(t, env.Deps.Stores.Registration.IsActive(chatID))
	assert.Len(t, env.Messenger.ByMethod("SendWithKeyboard"), 1)
}

func TestRegistrationFailureClearsState(t *testing.T) {
	env, h := setup(t)
	env.Deps.Stores.Registration.Start(chatID, state.RegistrationDraft{})
	env.Backend.On("RegisterUser", mock.Anything, mock.Anything).Return(errors.New("backend down"))

	send(h, "Иван", "Петров", group)

	assert.False(t, env.Deps.Stores.Registration.IsActive(chatID))
	assert.Contains(t, lastText(t, env), "/start")
}

func TestProfileEditingSkipsWithNo(t *testing.T) {
	env, h := setup(t)
	current := testutil.NewTestUser("ivan", group)
	env.Deps.Stores.Profile.Start(chatID, state.ProfileDraft{Current: *current})

	want := *current
	want.LastName = "Сидоров"
	env.Backend.On("UpdateUser", mock.Anything, want).Return(nil)

	send(h, "НЕТ", "Сидоров", "нет")

	env.Backend.AssertExpectations(t)
	assert.False(t, env.Deps.Stores.Profile.IsActive(chatID))
}

func TestProfileEditingFailureStaysAtGroup(t *testing.T) {
	env, h := setup(t)
	env.Deps.Stores.Profile.Start(chatID, state.ProfileDraft{Current: *testutil.NewTestUser("ivan", group)})
	env.Backend.On("UpdateUser", mock.Anything, mock.Anything).Return(errors.New("backend down"))

	send(h, "нет", "нет", "ПМ-11")

	assert.Equal(t, state.RegEnterGroup, env.Deps.Stores.Profile.Step(chatID))
}

func TestProfileInterceptedCommands(t *testing.T) {
	env, h := setup(t)
	store := env.Deps.Stores.Profile
	store.Start(chatID, state.ProfileDraft{Current: *testutil.NewTestUser("ivan", group)})

	send(h, BtnProfile, BtnEditProfile)
	assert.Equal(t, state.RegEnterFirstName, store.Step(chatID))
	draft, _ := store.Draft(chatID)
	assert.Empty(t, draft.FirstName)

	send(h, BtnBack)
	assert.False(t, store.IsActive(chatID))
}

func TestAbsenceDescriptionFinalizes(t *testing.T) {
	env, h := setup(t)
	store := env.Deps.Stores.Absence
	draft := store.Start(userID, state.AbsenceDraft{})
	draft.Pick(testutil.MustDate("2025-04-03").Time)
	draft.Pick(testutil.MustDate("2025-04-07").Time)
	store.SetStep(userID, state.AbsenceAwaitingDescription)

	env.Backend.On("GetUserByHandle", mock.Anything, "ivan").Return(testutil.NewTestUser("ivan", group), nil)
	env.Backend.On("CreateAbsence", mock.Anything, model.Absence{
		Username:    "ivan",
		Group:       group,
		From:        testutil.MustDate("2025-04-03"),
		To:          testutil.MustDate("2025-04-07"),
		Description: "Болел",
	}).Return(nil)
	env.Notifier.On("NotifyLeader", mock.Anything, group, mock.Anything).Return(1, nil)

	send(h, "Болел")

	env.Backend.AssertExpectations(t)
	env.Notifier.AssertExpectations(t)
	assert.False(t, store.IsActive(userID))
}

func TestAbsenceBackendFailureKeepsDescriptionStep(t *testing.T) {
	env, h := setup(t)
	store := env.Deps.Stores.Absence
	store.Start(userID, state.AbsenceDraft{}).Pick(testutil.MustDate("2025-04-03").Time)
	store.SetStep(userID, state.AbsenceAwaitingDescription)

	env.Backend.On("GetUserByHandle", mock.Anything, "ivan").Return(testutil.NewTestUser("ivan", group), nil)
	env.Backend.On("CreateAbsence", mock.Anything, mock.Anything).Return(errors.New("backend down"))

	send(h, "Болел")

	assert.Equal(t, state.AbsenceAwaitingDescription, store.Step(userID))
	env.Notifier.AssertNotCalled(t, "NotifyLeader", mock.Anything, mock.Anything, mock.Anything)
}

func TestTextPrecedence(t *testing.T) {
	t.Run("registration before deadline", func(t *testing.T) {
		env, h := setup(t)
		env.Deps.Stores.Registration.Start(chatID, state.RegistrationDraft{})
		env.Deps.Stores.Deadline.Start(chatID, state.DeadlineDraft{})

		send(h, "Иван")

		reg, _ := env.Deps.Stores.Registration.Draft(chatID)
		dl, _ := env.Deps.Stores.Deadline.Draft(chatID)
		assert.Equal(t, "Иван", reg.FirstName)
		assert.Empty(t, dl.Title)
	})

	t.Run("picking dates does not own text", func(t *testing.T) {
		env, h := setup(t)
		env.Deps.Stores.Absence.Start(userID, state.AbsenceDraft{})
		env.Deps.Stores.Deadline.Start(chatID, state.DeadlineDraft{})

		send(h, "Курсовая")

		dl, _ := env.Deps.Stores.Deadline.Draft(chatID)
		assert.Equal(t, "Курсовая", dl.Title)
		assert.Equal(t, state.AbsencePickingDates, env.Deps.Stores.Absence.Step(userID))
	})
}

func TestCancelClearsEveryFlow(t *testing.T) {
	env, h := setup(t)
	env.Deps.Stores.Deadline.Start(chatID, state.DeadlineDraft{})
	env.Deps.Stores.Absence.Start(userID, state.AbsenceDraft{})

	send(h, "/cancel")

	assert.False(t, env.Deps.Stores.AnyActive(chatID, userID))
	assert.Contains(t, lastText(t, env), "отменена")
}

func TestUnknownCommandIsIgnored(t *testing.T) {
	env, h := setup(t)

	send(h, "привет", "/unknown")

	assert.Empty(t, env.Messenger.All())
	env.Backend.AssertNotCalled(t, "GetUserByHandle", mock.Anything, mock.Anything)
}

func TestCommandAliases(t *testing.T) {
	for _, cmd := range []string{"/weeks", "/Weeks@groupmate_bot", BtnWeeks} {
		t.Run(cmd, func(t *testing.T) {
			env, h := setup(t)

			send(h, cmd)

			sent := env.Messenger.ByMethod("SendWithKeyboard")
			require.Len(t, sent, 1)
			assert.Same(t, env.Deps.Calendar.WeeksList(), sent[0].Inline)
		})
	}
}

func TestStartOffersRegistration(t *testing.T) {
	env, h := setup(t)
	env.Backend.On("GetUserByHandle", mock.Anything, "ivan").Return(nil, common.ErrUserNotFound)

	send(h, "/start")

	sent := env.Messenger.ByMethod("SendWithKeyboard")
	require.Len(t, sent, 1)
	assert.Equal(t, "REG_START", sent[0].Inline.InlineKeyboard[0][0].CallbackData)
}

func TestNewDeadlineRequiresLeader(t *testing.T) {
	env, h := setup(t)
	env.Backend.On("GetUserByHandle", mock.Anything, "ivan").Return(testutil.NewTestUser("ivan", group), nil)

	send(h, BtnNewDeadline)

	assert.False(t, env.Deps.Stores.Deadline.IsActive(chatID))
	assert.Equal(t, common.ErrorMessage(common.ErrNotLeader), lastText(t, env))
}

func TestScheduleChangeValue(t *testing.T) {
	env, h := setup(t)
	store := env.Deps.Stores.ScheduleChange
	store.StartAt(userID, state.ChangeAwaitingValue, state.ScheduleChangeDraft{
		Lesson:       model.Lesson{Group: group, Subject: "Физика", Date: testutil.MustDate("2025-04-10"), StartTime: "09:00"},
		PendingField: state.FieldTime,
	})

	send(h, "25:00")
	assert.Equal(t, state.ChangeAwaitingValue, store.Step(userID))
	assert.Equal(t, common.ErrorMessage(common.ErrInvalidTime), lastText(t, env))

	send(h, "11:30")
	assert.Equal(t, state.ChangeSelected, store.Step(userID))
	draft, _ := store.Draft(userID)
	assert.Equal(t, "11:30", draft.NewTime)
	assert.Empty(t, draft.PendingField)

	last, _ := env.Messenger.Last()
	require.NotNil(t, last.Inline)
}

func TestNormalizeCommand(t *testing.T) {
	tests := map[string]string{
		"/start":               "/start",
		"  /Help  ":            "/help",
		"/weeks@groupmate_bot": "/weeks",
		"/today extra args":    "/today",
		BtnToday:               BtnToday,
		"просто текст":         "просто текст",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeCommand(in), in)
	}
}
