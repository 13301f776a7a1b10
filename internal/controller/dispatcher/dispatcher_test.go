package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/groupmate_bot/internal/calendar"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/groupmate_bot/internal/testutil"
	"github.com/Freeeeeet/groupmate_bot/internal/workerpool"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []callbacktypes.Event
	rids   []string
	delay  map[string]time.Duration
}

func (r *recorder) record(ctx context.Context, ev callbacktypes.Event) {
	if ev.Text == "boom" || ev.Data == "boom" {
		panic("handler exploded")
	}
	if d := r.delay[ev.Text]; d > 0 {
		time.Sleep(d)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	r.rids = append(r.rids, callbacktypes.RequestID(ctx))
}

func (r *recorder) HandleText(ctx context.Context, ev callbacktypes.Event) { r.record(ctx, ev) }
func (r *recorder) Route(ctx context.Context, ev callbacktypes.Event)      { r.record(ctx, ev) }

func (r *recorder) texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		if ev.Kind == callbacktypes.EventCallback {
			out = append(out, ev.Data)
			continue
		}
		out = append(out, ev.Text)
	}
	return out
}

type flows map[int64]bool

func (f flows) AnyActive(chatID, _ int64) bool { return f[chatID] }

func newDispatcher(t *testing.T, active flows, chats ChatDirectory) (*Dispatcher, *recorder) {
	t.Helper()
	rec := &recorder{delay: map[string]time.Duration{}}
	pool := workerpool.New(workerpool.Options{Name: "test", Workers: 4, QueueSize: 64}, testutil.NewTestLogger())
	d := New(rec, rec, active, chats, pool, testutil.NewTestLogger())
	t.Cleanup(d.Close)
	return d, rec
}

func textEvent(chatID int64, text string) callbacktypes.Event {
	return callbacktypes.Event{Kind: callbacktypes.EventText, ChatID: chatID, UserID: chatID, Text: text}
}

func TestActiveFlowEventsAreHandledInOrder(t *testing.T) {
	d, rec := newDispatcher(t, flows{1: true}, nil)
	rec.delay["first"] = 20 * time.Millisecond

	d.Dispatch(context.Background(), []callbacktypes.Event{textEvent(1, "first"), textEvent(1, "second")})

	// синхронная обработка: всё уже применено к моменту возврата
	assert.Equal(t, []string{"first", "second"}, rec.texts())
}

func TestFreeEventsKeepPerChatOrder(t *testing.T) {
	d, rec := newDispatcher(t, flows{}, nil)
	rec.delay["a1"] = 10 * time.Millisecond

	d.Dispatch(context.Background(), []callbacktypes.Event{
		textEvent(7, "a1"), textEvent(8, "b1"), textEvent(7, "a2"), textEvent(8, "b2"),
	})
	d.Close()

	got := rec.texts()
	require.Len(t, got, 4)
	indexOf := func(s string) int {
		for i, v := range got {
			if v == s {
				return i
			}
		}
		return -1
	}
	assert.Less(t, indexOf("a1"), indexOf("a2"))
	assert.Less(t, indexOf("b1"), indexOf("b2"))
}

func TestPanicDoesNotAffectSiblings(t *testing.T) {
	d, rec := newDispatcher(t, flows{1: true}, nil)

	d.Dispatch(context.Background(), []callbacktypes.Event{
		textEvent(1, "boom"),
		textEvent(1, "after"),
		textEvent(2, "boom"),
		textEvent(2, "free"),
	})
	d.Close()

	assert.ElementsMatch(t, []string{"after", "free"}, rec.texts())
}

func TestCallbacksGoToRouterWithRequestID(t *testing.T) {
	d, rec := newDispatcher(t, flows{3: true}, nil)

	d.Dispatch(context.Background(), []callbacktypes.Event{
		{Kind: callbacktypes.EventCallback, ChatID: 3, UserID: 3, Data: "WEEK_1"},
		textEvent(3, "hi"),
	})

	assert.Equal(t, []string{"WEEK_1", "hi"}, rec.texts())
	require.Len(t, rec.rids, 2)
	assert.NotEmpty(t, rec.rids[0])
	assert.NotEqual(t, rec.rids[0], rec.rids[1])
}

func TestChatDirectoryTouchedOncePerHandle(t *testing.T) {
	chats := &testutil.MockChatDirectory{}
	chats.On("Remember", mock.Anything, "ivan", int64(5), int64(50)).Return(nil).Once()
	chats.On("Remember", mock.Anything, "ivan_new", int64(5), int64(50)).Return(nil).Once()
	d, _ := newDispatcher(t, flows{5: true}, chats)

	ev := callbacktypes.Event{Kind: callbacktypes.EventText, ChatID: 5, UserID: 50, Username: "ivan", Text: "x"}
	renamed := ev
	renamed.Username = "ivan_new"
	d.Dispatch(context.Background(), []callbacktypes.Event{ev, ev, renamed, renamed})

	chats.AssertExpectations(t)
}

func TestChatDirectoryFailureIsRetried(t *testing.T) {
	chats := &testutil.MockChatDirectory{}
	chats.On("Remember", mock.Anything, "ivan", int64(5), int64(50)).Return(errors.New("db down")).Once()
	chats.On("Remember", mock.Anything, "ivan", int64(5), int64(50)).Return(nil).Once()
	d, rec := newDispatcher(t, flows{5: true}, chats)

	ev := callbacktypes.Event{Kind: callbacktypes.EventText, ChatID: 5, UserID: 50, Username: "ivan", Text: "x"}
	d.Dispatch(context.Background(), []callbacktypes.Event{ev, ev, ev})

	chats.AssertExpectations(t)
	assert.Len(t, rec.texts(), 3)
}

func TestFromUpdate(t *testing.T) {
	tests := []struct {
		name   string
		update *models.Update
		ok     bool
		want   callbacktypes.Event
	}{
		{
			name: "text message",
			update: &models.Update{ID: 1, Message: &models.Message{
				ID: 10, Text: "/start", Chat: models.Chat{ID: 100},
				From: &models.User{ID: 200, Username: "ivan"},
			}},
			ok: true,
			want: callbacktypes.Event{
				UpdateID: 1, Kind: callbacktypes.EventText, ChatID: 100, UserID: 200,
				Username: "ivan", Text: "/start", MessageID: 10,
			},
		},
		{
			name: "callback",
			update: &models.Update{ID: 2, CallbackQuery: &models.CallbackQuery{
				ID: "cb", Data: "WEEK_0", From: models.User{ID: 200, Username: "ivan"},
				Message: models.MaybeInaccessibleMessage{Message: &models.Message{ID: 11, Chat: models.Chat{ID: 100}}},
			}},
			ok: true,
			want: callbacktypes.Event{
				UpdateID: 2, Kind: callbacktypes.EventCallback, ChatID: 100, UserID: 200,
				Username: "ivan", MessageID: 11, CallbackID: "cb", Data: "WEEK_0",
			},
		},
		{
			name: "callback on inaccessible message",
			update: &models.Update{ID: 3, CallbackQuery: &models.CallbackQuery{
				ID: "cb", Data: "noop", From: models.User{ID: 200},
				Message: models.MaybeInaccessibleMessage{
					InaccessibleMessage: &models.InaccessibleMessage{Chat: models.Chat{ID: 101}, MessageID: 12},
				},
			}},
			ok: true,
			want: callbacktypes.Event{
				UpdateID: 3, Kind: callbacktypes.EventCallback, ChatID: 101, UserID: 200,
				MessageID: 12, CallbackID: "cb", Data: "noop",
			},
		},
		{
			name:   "photo without text",
			update: &models.Update{ID: 4, Message: &models.Message{Chat: models.Chat{ID: 100}, From: &models.User{ID: 1}}},
		},
		{name: "nil update"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := FromUpdate(tt.update)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, ev)
			}
		})
	}
}

func TestSameUserInTwoChatsSharesAbsenceDraftSafely(t *testing.T) {
	env := testutil.NewEnv(t, time.Date(2025, time.April, 10, 10, 0, 0, 0, time.UTC))
	pool := workerpool.New(workerpool.Options{Name: "test", Workers: 4, QueueSize: 64}, testutil.NewTestLogger())
	d := New(&recorder{}, callbacks.NewRouter(env.Deps), env.Deps.Stores, nil, pool, testutil.NewTestLogger())

	const userID = int64(200)
	events := make([]callbacktypes.Event, 0, 50)
	for i := 0; i < 50; i++ {
		events = append(events, callbacktypes.Event{
			Kind:       callbacktypes.EventCallback,
			ChatID:     int64(1 + i%2),
			UserID:     userID,
			Username:   "ivan",
			MessageID:  7,
			CallbackID: fmt.Sprintf("cb-%d", i),
			Data:       fmt.Sprintf("%s2025-04-%02d", calendar.AbsenceDatePrefix, 1+i%28),
		})
	}

	d.Dispatch(context.Background(), events)
	d.Close()

	draft, ok := env.Deps.Stores.Absence.Snapshot(userID)
	require.True(t, ok)
	assert.Equal(t, time.April, draft.From.Month())
	assert.False(t, draft.To.Before(draft.From))
	assert.Len(t, env.Messenger.ByMethod("AnswerCallback"), 50)
}
