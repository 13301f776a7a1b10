package backend

import (
	"context"
	"net/http"

	"github.com/Freeeeeet/groupmate_bot/internal/model"
)

// ListDeadlines дедлайны группы
func (c *Client) ListDeadlines(ctx context.Context, group string) ([]model.Deadline, error) {
	var deadlines []model.Deadline
	if err := c.do(ctx, http.MethodGet, "/groups/"+segment(group)+"/deadlines", nil, nil, &deadlines); err != nil {
		return nil, err
	}
	return deadlines, nil
}

// CreateDeadline сохраняет дедлайн и возвращает его с присвоенным id
func (c *Client) CreateDeadline(ctx context.Context, deadline model.Deadline) (*model.Deadline, error) {
	var created model.Deadline
	if err := c.do(ctx, http.MethodPost, "/deadlines", nil, deadline, &created); err != nil {
		return nil, err
	}
	// бэкенд может ответить 204 без тела
	if created.Title == "" {
		created = deadline
	}
	return &created, nil
}

// DeleteDeadline удаляет дедлайн по id
func (c *Client) DeleteDeadline(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/deadlines/"+segment(id), nil, nil, nil)
}
