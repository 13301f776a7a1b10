package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Freeeeeet/groupmate_bot/internal/model"
)

// ListAbsences пропуски пользователя
func (c *Client) ListAbsences(ctx context.Context, handle string) ([]model.Absence, error) {
	var absences []model.Absence
	if err := c.do(ctx, http.MethodGet, "/users/"+segment(handle)+"/absences", nil, nil, &absences); err != nil {
		return nil, err
	}
	return absences, nil
}

// CreateAbsence сохраняет пропуск
func (c *Client) CreateAbsence(ctx context.Context, absence model.Absence) error {
	return c.do(ctx, http.MethodPost, "/absences", nil, absence, nil)
}

// DeleteAbsence удаляет пропуск пользователя за диапазон дат
func (c *Client) DeleteAbsence(ctx context.Context, handle string, from, to model.Date) error {
	query := url.Values{
		"username": {handle},
		"from":     {from.String()},
		"to":       {to.String()},
	}
	return c.do(ctx, http.MethodDelete, "/absences", query, nil, nil)
}
