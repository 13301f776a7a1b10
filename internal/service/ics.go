package service

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/groupmate_bot/internal/model"
	ical "github.com/arran4/golang-ical"
)

// DeadlineICS календарный файл с событием на весь день сдачи
func DeadlineICS(d model.Deadline, now time.Time) Attachment {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//groupmate_bot//deadlines//RU")

	uid := d.ID
	if uid == "" {
		uid = fmt.Sprintf("%s-%s", d.Group, d.DueDate.String())
	}
	event := cal.AddEvent(uid + "@groupmate_bot")
	event.SetDtStampTime(now.UTC())
	event.SetAllDayStartAt(d.DueDate.Time)
	event.SetAllDayEndAt(d.DueDate.AddDate(0, 0, 1))
	event.SetSummary(d.Title)
	if d.Description != "" {
		event.SetDescription(d.Description)
	}

	return Attachment{
		Filename: "deadline.ics",
		Data:     []byte(cal.Serialize()),
		Caption:  "📎 Добавьте дедлайн в календарь",
	}
}
