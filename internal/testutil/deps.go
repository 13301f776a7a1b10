package testutil

import (
	"testing"
	"time"

	"github.com/Freeeeeet/groupmate_bot/internal/calendar"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/state"
	"github.com/stretchr/testify/require"
)

// Env зависимости обработчиков с моками и фейковым мессенджером
type Env struct {
	Deps      *callbacktypes.Deps
	Backend   *MockBackend
	Notifier  *MockNotifier
	Messenger *FakeMessenger
}

// NewEnv окружение с календарём 2025-02-10..2025-05-20 и часами, остановленными на now
func NewEnv(t *testing.T, now time.Time) *Env {
	t.Helper()

	window, err := calendar.NewWindow(MustDate("2025-02-10").Time, MustDate("2025-05-20").Time)
	require.NoError(t, err)

	env := &Env{
		Backend:   &MockBackend{},
		Notifier:  &MockNotifier{},
		Messenger: NewFakeMessenger(),
	}
	env.Deps = &callbacktypes.Deps{
		Backend:   env.Backend,
		Messenger: env.Messenger,
		Notifier:  env.Notifier,
		Stores:    state.NewStores(),
		Calendar:  calendar.NewCache(calendar.NewGenerator(window), FixedClock(now), NewTestLogger()),
		Logger:    NewTestLogger(),
		Now:       FixedClock(now),
	}
	return env
}
