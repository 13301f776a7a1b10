package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/groupmate_bot/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ChatRepository справочник username -> chat id для рассылки уведомлений
type ChatRepository struct {
	db *sqlx.DB
}

func NewChatRepository(db *sqlx.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// NormalizeHandle приводит username к виду, в котором он хранится
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}

// Remember сохраняет или обновляет чат пользователя
func (r *ChatRepository) Remember(ctx context.Context, handle string, chatID, userID int64) error {
	handle = NormalizeHandle(handle)
	if handle == "" {
		return nil
	}

	query := `
		INSERT INTO chats (username, chat_id, user_id, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (username) DO UPDATE
		SET chat_id = EXCLUDED.chat_id, user_id = EXCLUDED.user_id, updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, handle, chatID, userID); err != nil {
		return fmt.Errorf("remember chat: %w", err)
	}
	return nil
}

// GetByHandle возвращает чат пользователя или nil, если бот его ещё не видел
func (r *ChatRepository) GetByHandle(ctx context.Context, handle string) (*model.Chat, error) {
	query := `
		SELECT username, chat_id, user_id, updated_at
		FROM chats
		WHERE username = $1
	`

	var chat model.Chat
	err := r.db.GetContext(ctx, &chat, query, NormalizeHandle(handle))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get chat by handle: %w", err)
	}
	return &chat, nil
}

// ListByHandles чаты для набора username; неизвестные пропускаются
func (r *ChatRepository) ListByHandles(ctx context.Context, handles []string) ([]model.Chat, error) {
	if len(handles) == 0 {
		return nil, nil
	}
	normalized := make([]string, 0, len(handles))
	for _, h := range handles {
		if h = NormalizeHandle(h); h != "" {
			normalized = append(normalized, h)
		}
	}

	query := `
		SELECT username, chat_id, user_id, updated_at
		FROM chats
		WHERE username = ANY($1)
		ORDER BY username
	`

	var chats []model.Chat
	if err := r.db.SelectContext(ctx, &chats, query, pq.Array(normalized)); err != nil {
		return nil, fmt.Errorf("list chats by handles: %w", err)
	}
	return chats, nil
}

// List все известные чаты
func (r *ChatRepository) List(ctx context.Context) ([]model.Chat, error) {
	query := `
		SELECT username, chat_id, user_id, updated_at
		FROM chats
		ORDER BY username
	`

	var chats []model.Chat
	if err := r.db.SelectContext(ctx, &chats, query); err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return chats, nil
}
