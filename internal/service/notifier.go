package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/groupmate_bot/internal/model"
	"go.uber.org/zap"
)

// Attachment файл, который уходит вместе с уведомлением
type Attachment struct {
	Filename string
	Data     []byte
	Caption  string
}

// Sender отправка сообщений в чат
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string)
	SendDocument(ctx context.Context, chatID int64, doc Attachment)
}

// RosterSource состав группы
type RosterSource interface {
	GetGroupRoster(ctx context.Context, group string) ([]model.User, error)
}

// ChatDirectory поиск чата по username
type ChatDirectory interface {
	GetByHandle(ctx context.Context, handle string) (*model.Chat, error)
	ListByHandles(ctx context.Context, handles []string) ([]model.Chat, error)
	List(ctx context.Context) ([]model.Chat, error)
}

// NotifierService рассылает уведомления тем, чей чат уже известен боту
type NotifierService struct {
	roster RosterSource
	chats  ChatDirectory
	sender Sender
	logger *zap.Logger
}

func NewNotifierService(roster RosterSource, chats ChatDirectory, sender Sender, logger *zap.Logger) *NotifierService {
	return &NotifierService{
		roster: roster,
		chats:  chats,
		sender: sender,
		logger: logger,
	}
}

// NotifyLeader пишет старосте (старостам) группы
func (s *NotifierService) NotifyLeader(ctx context.Context, group, text string) (int, error) {
	users, err := s.roster.GetGroupRoster(ctx, group)
	if err != nil {
		return 0, fmt.Errorf("get roster of %s: %w", group, err)
	}

	var leaders []string
	for _, u := range users {
		if u.IsLeader() {
			leaders = append(leaders, u.Username)
		}
	}
	if len(leaders) == 0 {
		s.logger.Warn("Group has no leader to notify", zap.String("group", group))
		return 0, nil
	}
	return s.NotifyHandles(ctx, leaders, text, nil)
}

// NotifyGroup пишет всем студентам группы, кроме exceptHandle
func (s *NotifierService) NotifyGroup(ctx context.Context, group, text, exceptHandle string) (int, error) {
	users, err := s.roster.GetGroupRoster(ctx, group)
	if err != nil {
		return 0, fmt.Errorf("get roster of %s: %w", group, err)
	}

	handles := make([]string, 0, len(users))
	for _, u := range users {
		if !strings.EqualFold(u.Username, exceptHandle) {
			handles = append(handles, u.Username)
		}
	}
	return s.NotifyHandles(ctx, handles, text, nil)
}

// NotifyHandles пишет перечисленным пользователям; возвращает число отправленных
func (s *NotifierService) NotifyHandles(ctx context.Context, handles []string, text string, attachment *Attachment) (int, error) {
	if len(handles) == 0 {
		return 0, nil
	}

	chats, err := s.chats.ListByHandles(ctx, handles)
	if err != nil {
		return 0, fmt.Errorf("resolve chats: %w", err)
	}

	for _, chat := range chats {
		s.sender.SendText(ctx, chat.ChatID, text)
		if attachment != nil {
			s.sender.SendDocument(ctx, chat.ChatID, *attachment)
		}
	}

	if missing := len(handles) - len(chats); missing > 0 {
		s.logger.Info("Some recipients have never talked to the bot",
			zap.Int("requested", len(handles)),
			zap.Int("missing", missing),
		)
	}
	return len(chats), nil
}
