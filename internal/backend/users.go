package backend

import (
	"context"
	"net/http"

	"github.com/Freeeeeet/groupmate_bot/internal/model"
)

// GetUserByHandle ищет пользователя по username в Telegram
func (c *Client) GetUserByHandle(ctx context.Context, handle string) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/users/"+segment(handle), nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// RegisterUser создаёт пользователя
func (c *Client) RegisterUser(ctx context.Context, user model.User) error {
	return c.do(ctx, http.MethodPost, "/users", nil, user, nil)
}

// UpdateUser обновляет профиль пользователя
func (c *Client) UpdateUser(ctx context.Context, user model.User) error {
	return c.do(ctx, http.MethodPut, "/users/"+segment(user.Username), nil, user, nil)
}

// GetGroupRoster список студентов группы
func (c *Client) GetGroupRoster(ctx context.Context, group string) ([]model.User, error) {
	var users []model.User
	if err := c.do(ctx, http.MethodGet, "/groups/"+segment(group)+"/users", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}
