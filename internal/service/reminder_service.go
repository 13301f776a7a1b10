package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Freeeeeet/groupmate_bot/internal/model"
	"github.com/mergestat/timediff"
	"go.uber.org/zap"
)

// DeadlineSource дедлайны группы и профиль пользователя
type DeadlineSource interface {
	GetUserByHandle(ctx context.Context, handle string) (*model.User, error)
	ListDeadlines(ctx context.Context, group string) ([]model.Deadline, error)
}

// ReminderService напоминает о дедлайнах, до которых осталось меньше Window
type ReminderService struct {
	source DeadlineSource
	chats  ChatDirectory
	sender Sender
	now    func() time.Time
	window time.Duration
	logger *zap.Logger
}

func NewReminderService(source DeadlineSource, chats ChatDirectory, sender Sender, now func() time.Time, logger *zap.Logger) *ReminderService {
	if now == nil {
		now = time.Now
	}
	return &ReminderService{
		source: source,
		chats:  chats,
		sender: sender,
		now:    now,
		window: 24 * time.Hour,
		logger: logger,
	}
}

// DueIn текст вида "in 2 days" относительно now
func DueIn(due model.Date, now time.Time) string {
	return timediff.TimeDiff(due.Time, timediff.WithStartTime(civilNow(now)))
}

func civilNow(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, now.Hour(), now.Minute(), 0, 0, time.UTC)
}

// Upcoming дедлайны, срок которых наступает в ближайшее окно
func (s *ReminderService) Upcoming(deadlines []model.Deadline) []model.Deadline {
	now := civilNow(s.now())
	var out []model.Deadline
	for _, d := range deadlines {
		if d.DueDate.IsZero() {
			continue
		}
		// дедлайн считается до конца дня сдачи
		end := d.DueDate.AddDate(0, 0, 1)
		if end.After(now) && d.DueDate.Sub(now) <= s.window {
			out = append(out, d)
		}
	}
	return out
}

// RunOnce рассылает напоминания всем известным чатам; возвращает число сообщений
func (s *ReminderService) RunOnce(ctx context.Context) (int, error) {
	chats, err := s.chats.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list chats: %w", err)
	}

	byGroup := make(map[string][]model.Deadline)
	sent := 0
	for _, chat := range chats {
		user, err := s.source.GetUserByHandle(ctx, chat.Username)
		if err != nil {
			s.logger.Debug("Skip reminder for unknown user",
				zap.String("username", chat.Username),
				zap.Error(err),
			)
			continue
		}

		deadlines, ok := byGroup[user.Group]
		if !ok {
			all, err := s.source.ListDeadlines(ctx, user.Group)
			if err != nil {
				s.logger.Error("Failed to list deadlines",
					zap.String("group", user.Group),
					zap.Error(err),
				)
				continue
			}
			deadlines = s.Upcoming(all)
			byGroup[user.Group] = deadlines
		}
		if len(deadlines) == 0 {
			continue
		}

		s.sender.SendText(ctx, chat.ChatID, s.format(deadlines))
		sent++
	}

	s.logger.Info("Deadline reminders sent", zap.Int("messages", sent), zap.Int("groups", len(byGroup)))
	return sent, nil
}

func (s *ReminderService) format(deadlines []model.Deadline) string {
	var sb strings.Builder
	sb.WriteString("⏰ <b>Скоро дедлайн</b>\n")
	now := s.now()
	for _, d := range deadlines {
		fmt.Fprintf(&sb, "\n• %s (%s, %s)",
			html.EscapeString(d.Title),
			d.DueDate.Format("02.01.2006"),
			DueIn(d.DueDate, now),
		)
	}
	return sb.String()
}
