package testutil

import (
	"context"

	"github.com/Freeeeeet/groupmate_bot/internal/model"
	"github.com/Freeeeeet/groupmate_bot/internal/service"
	"github.com/stretchr/testify/mock"
)

// MockBackend мок API бэкенда
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) GetUserByHandle(ctx context.Context, handle string) (*model.User, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockBackend) RegisterUser(ctx context.Context, user model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockBackend) UpdateUser(ctx context.Context, user model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockBackend) GetGroupRoster(ctx context.Context, group string) ([]model.User, error) {
	args := m.Called(ctx, group)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockBackend) GetScheduleForDate(ctx context.Context, group string, date model.Date) ([]model.Lesson, error) {
	args := m.Called(ctx, group, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Lesson), args.Error(1)
}

func (m *MockBackend) GetScheduleForWeek(ctx context.Context, group string, weekStart model.Date) ([]model.DaySchedule, error) {
	args := m.Called(ctx, group, weekStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DaySchedule), args.Error(1)
}

func (m *MockBackend) ListDeadlines(ctx context.Context, group string) ([]model.Deadline, error) {
	args := m.Called(ctx, group)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Deadline), args.Error(1)
}

func (m *MockBackend) CreateDeadline(ctx context.Context, deadline model.Deadline) (*model.Deadline, error) {
	args := m.Called(ctx, deadline)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Deadline), args.Error(1)
}

func (m *MockBackend) DeleteDeadline(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockBackend) ListAbsences(ctx context.Context, handle string) ([]model.Absence, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Absence), args.Error(1)
}

func (m *MockBackend) CreateAbsence(ctx context.Context, absence model.Absence) error {
	return m.Called(ctx, absence).Error(0)
}

func (m *MockBackend) DeleteAbsence(ctx context.Context, handle string, from, to model.Date) error {
	return m.Called(ctx, handle, from, to).Error(0)
}

func (m *MockBackend) SubmitScheduleChange(ctx context.Context, change model.ScheduleChange) error {
	return m.Called(ctx, change).Error(0)
}

func (m *MockBackend) DeleteScheduleChange(ctx context.Context, change model.ScheduleChange) error {
	return m.Called(ctx, change).Error(0)
}

// MockNotifier мок рассылки уведомлений
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyLeader(ctx context.Context, group, text string) (int, error) {
	args := m.Called(ctx, group, text)
	return args.Int(0), args.Error(1)
}

func (m *MockNotifier) NotifyGroup(ctx context.Context, group, text, exceptHandle string) (int, error) {
	args := m.Called(ctx, group, text, exceptHandle)
	return args.Int(0), args.Error(1)
}

func (m *MockNotifier) NotifyHandles(ctx context.Context, handles []string, text string, attachment *service.Attachment) (int, error) {
	args := m.Called(ctx, handles, text, attachment)
	return args.Int(0), args.Error(1)
}

// MockChatDirectory мок справочника чатов
type MockChatDirectory struct {
	mock.Mock
}

func (m *MockChatDirectory) Remember(ctx context.Context, handle string, chatID, userID int64) error {
	return m.Called(ctx, handle, chatID, userID).Error(0)
}

func (m *MockChatDirectory) GetByHandle(ctx context.Context, handle string) (*model.Chat, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Chat), args.Error(1)
}

func (m *MockChatDirectory) ListByHandles(ctx context.Context, handles []string) ([]model.Chat, error) {
	args := m.Called(ctx, handles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Chat), args.Error(1)
}

func (m *MockChatDirectory) List(ctx context.Context) ([]model.Chat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Chat), args.Error(1)
}
