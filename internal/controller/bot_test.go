package controller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/groupmate_bot/internal/testutil"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type batchRecorder struct {
	mu      sync.Mutex
	batches [][]callbacktypes.Event
}

func (r *batchRecorder) Dispatch(_ context.Context, events []callbacktypes.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, events)
}

func (r *batchRecorder) sizes() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, 0, len(r.batches))
	for _, b := range r.batches {
		out = append(out, len(b))
	}
	return out
}

func textUpdate(id int64, text string) *models.Update {
	return &models.Update{ID: id, Message: &models.Message{
		Text: text,
		Chat: models.Chat{ID: 1},
		From: &models.User{ID: 1, Username: "ivan"},
	}}
}

func TestRunDispatchesInBatches(t *testing.T) {
	rec := &batchRecorder{}
	c := NewBotController(nil, rec, 3, 16, testutil.NewTestLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for i := int64(1); i <= 5; i++ {
		c.HandleUpdate(ctx, nil, textUpdate(i, "msg"))
	}
	// апдейт без текста не превращается в событие
	c.HandleUpdate(ctx, nil, &models.Update{ID: 6, Message: &models.Message{Chat: models.Chat{ID: 1}}})

	go c.Run(ctx)

	require.Eventually(t, func() bool {
		total := 0
		for _, n := range rec.sizes() {
			total += n
		}
		return total == 5
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []int{3, 2}, rec.sizes())
}

func TestCollectKeepsUpdateOrder(t *testing.T) {
	c := NewBotController(nil, &batchRecorder{}, 10, 16, testutil.NewTestLogger())
	ctx := context.Background()
	c.HandleUpdate(ctx, nil, textUpdate(2, "second"))
	c.HandleUpdate(ctx, nil, textUpdate(3, "third"))

	events := c.collect(textUpdate(1, "first"))

	require.Len(t, events, 3)
	assert.Equal(t, "first", events[0].Text)
	assert.Equal(t, "third", events[2].Text)
}

func TestHandleUpdateRespectsContext(t *testing.T) {
	c := NewBotController(nil, &batchRecorder{}, 1, 1, testutil.NewTestLogger())
	ctx, cancel := context.WithCancel(context.Background())

	c.HandleUpdate(ctx, nil, textUpdate(1, "fills queue"))
	cancel()

	done := make(chan struct{})
	go func() {
		c.HandleUpdate(ctx, nil, textUpdate(2, "dropped"))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("HandleUpdate blocked after context cancel")
	}
}
