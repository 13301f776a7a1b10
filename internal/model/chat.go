package model

import "time"

// Chat связывает username в Telegram с чатом, куда можно писать
type Chat struct {
	Username  string    `db:"username"`
	ChatID    int64     `db:"chat_id"`
	UserID    int64     `db:"user_id"`
	UpdatedAt time.Time `db:"updated_at"`
}
