package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Freeeeeet/groupmate_bot/internal/model"
	"github.com/Freeeeeet/groupmate_bot/internal/service"
	"github.com/Freeeeeet/groupmate_bot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func roster() []model.User {
	return []model.User{
		*testutil.NewTestUser("anna", "ИУ5-21"),
		*testutil.NewTestLeader("boris", "ИУ5-21"),
		*testutil.NewTestUser("vera", "ИУ5-21"),
	}
}

func TestNotifyLeader(t *testing.T) {
	backend := new(testutil.MockBackend)
	chats := new(testutil.MockChatDirectory)
	messenger := testutil.NewFakeMessenger()

	backend.On("GetGroupRoster", mock.Anything, "ИУ5-21").Return(roster(), nil)
	chats.On("ListByHandles", mock.Anything, []string{"boris"}).
		Return([]model.Chat{{Username: "boris", ChatID: 20}}, nil)

	n := service.NewNotifierService(backend, chats, messenger, testutil.NewTestLogger())
	sent, err := n.NotifyLeader(context.Background(), "ИУ5-21", "anna пропустит пары")
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	msgs := messenger.ByMethod("SendText")
	require.Len(t, msgs, 1)
	assert.Equal(t, int64(20), msgs[0].ChatID)
	backend.AssertExpectations(t)
	chats.AssertExpectations(t)
}

func TestNotifyLeaderWithoutLeader(t *testing.T) {
	backend := new(testutil.MockBackend)
	chats := new(testutil.MockChatDirectory)

	backend.On("GetGroupRoster", mock.Anything, "ИУ5-22").
		Return([]model.User{*testutil.NewTestUser("anna", "ИУ5-22")}, nil)

	n := service.NewNotifierService(backend, chats, testutil.NewFakeMessenger(), testutil.NewTestLogger())
	sent, err := n.NotifyLeader(context.Background(), "ИУ5-22", "text")
	require.NoError(t, err)
	assert.Zero(t, sent)
	chats.AssertNotCalled(t, "ListByHandles", mock.Anything, mock.Anything)
}

func TestNotifyGroupSkipsAuthor(t *testing.T) {
	backend := new(testutil.MockBackend)
	chats := new(testutil.MockChatDirectory)
	messenger := testutil.NewFakeMessenger()

	backend.On("GetGroupRoster", mock.Anything, "ИУ5-21").Return(roster(), nil)
	chats.On("ListByHandles", mock.Anything, []string{"anna", "vera"}).
		Return([]model.Chat{{Username: "anna", ChatID: 10}}, nil)

	n := service.NewNotifierService(backend, chats, messenger, testutil.NewTestLogger())
	sent, err := n.NotifyGroup(context.Background(), "ИУ5-21", "пара перенесена", "Boris")
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	chats.AssertExpectations(t)
}

func TestNotifyRosterError(t *testing.T) {
	backend := new(testutil.MockBackend)
	backend.On("GetGroupRoster", mock.Anything, "ИУ5-21").Return(nil, errors.New("timeout"))

	n := service.NewNotifierService(backend, new(testutil.MockChatDirectory), testutil.NewFakeMessenger(), testutil.NewTestLogger())
	_, err := n.NotifyGroup(context.Background(), "ИУ5-21", "text", "")
	assert.ErrorContains(t, err, "get roster")
}

func TestNotifyHandlesWithAttachment(t *testing.T) {
	chats := new(testutil.MockChatDirectory)
	messenger := testutil.NewFakeMessenger()
	chats.On("ListByHandles", mock.Anything, []string{"anna", "vera"}).
		Return([]model.Chat{{Username: "anna", ChatID: 10}, {Username: "vera", ChatID: 30}}, nil)

	n := service.NewNotifierService(new(testutil.MockBackend), chats, messenger, testutil.NewTestLogger())
	att := &service.Attachment{Filename: "deadline.ics", Data: []byte("BEGIN:VCALENDAR")}
	sent, err := n.NotifyHandles(context.Background(), []string{"anna", "vera"}, "новый дедлайн", att)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	docs := messenger.ByMethod("SendDocument")
	require.Len(t, docs, 2)
	assert.Equal(t, "deadline.ics", docs[1].Document.Filename)
}
