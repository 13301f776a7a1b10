package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Freeeeeet/groupmate_bot/internal/model"
)

// GetScheduleForDate занятия группы на день
func (c *Client) GetScheduleForDate(ctx context.Context, group string, date model.Date) ([]model.Lesson, error) {
	var lessons []model.Lesson
	query := url.Values{"date": {date.String()}}
	if err := c.do(ctx, http.MethodGet, "/groups/"+segment(group)+"/schedule", query, nil, &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}

// GetScheduleForWeek занятия группы на неделю, начиная с понедельника weekStart
func (c *Client) GetScheduleForWeek(ctx context.Context, group string, weekStart model.Date) ([]model.DaySchedule, error) {
	var days []model.DaySchedule
	query := url.Values{"start": {weekStart.String()}}
	if err := c.do(ctx, http.MethodGet, "/groups/"+segment(group)+"/schedule/week", query, nil, &days); err != nil {
		return nil, err
	}
	return days, nil
}

// SubmitScheduleChange сохраняет изменение или отмену занятия
func (c *Client) SubmitScheduleChange(ctx context.Context, change model.ScheduleChange) error {
	return c.do(ctx, http.MethodPost, "/schedule-changes", nil, change, nil)
}

// DeleteScheduleChange удаляет ранее внесённое изменение занятия
func (c *Client) DeleteScheduleChange(ctx context.Context, change model.ScheduleChange) error {
	query := url.Values{
		"group":     {change.Group},
		"date":      {change.OldDate.String()},
		"startTime": {change.OldStartTime},
	}
	return c.do(ctx, http.MethodDelete, "/schedule-changes", query, nil, nil)
}
