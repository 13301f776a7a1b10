package formatting

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Freeeeeet/groupmate_bot/internal/model"
	"github.com/Freeeeeet/groupmate_bot/internal/service"
)

// FormatLesson одна строка занятия
func FormatLesson(l model.Lesson) string {
	var sb strings.Builder
	timeRange := l.StartTime
	if l.EndTime != "" {
		timeRange += "–" + l.EndTime
	}
	fmt.Fprintf(&sb, "🕘 %s <b>%s</b>", timeRange, html.EscapeString(l.Subject))
	if l.Classroom != "" {
		fmt.Fprintf(&sb, " 🚪 %s", html.EscapeString(l.Classroom))
	}
	if l.Teacher != "" {
		fmt.Fprintf(&sb, " 👤 %s", html.EscapeString(l.Teacher))
	}
	if l.Cancelled {
		sb.WriteString(" ❌ отменено")
	}
	if l.Note != "" {
		fmt.Fprintf(&sb, "\n   📝 %s", html.EscapeString(l.Note))
	}
	return sb.String()
}

// FormatDay расписание на день
func FormatDay(date time.Time, lessons []model.Lesson) string {
	header := fmt.Sprintf("📅 <b>%s, %s</b>", GetWeekdayName(int(date.Weekday())), FormatDate(date))
	if len(lessons) == 0 {
		return header + "\n\n🎉 Занятий нет"
	}
	lines := make([]string, 0, len(lessons))
	for _, l := range lessons {
		lines = append(lines, FormatLesson(l))
	}
	return header + "\n\n" + strings.Join(lines, "\n")
}

// FormatWeek краткое расписание недели
func FormatWeek(number int, days []model.DaySchedule) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🗓 <b>Неделя %d</b>", number)
	if len(days) == 0 {
		sb.WriteString("\n\nЗанятий нет")
		return sb.String()
	}
	for _, d := range days {
		fmt.Fprintf(&sb, "\n\n<b>%s</b>", FormatDateWithWeekday(d.Date.Time))
		if len(d.Lessons) == 0 {
			sb.WriteString("\n—")
			continue
		}
		for _, l := range d.Lessons {
			sb.WriteString("\n" + FormatLesson(l))
		}
	}
	sb.WriteString("\n\nВыберите день:")
	return sb.String()
}

// FormatDeadline строка дедлайна со сроком относительно now
func FormatDeadline(d model.Deadline, now time.Time) string {
	line := fmt.Sprintf("⏰ <b>%s</b> до %s (%s)",
		html.EscapeString(d.Title), FormatDate(d.DueDate.Time), service.DueIn(d.DueDate, now))
	if d.Description != "" {
		line += "\n   " + html.EscapeString(d.Description)
	}
	return line
}

// FormatAbsence строка пропуска
func FormatAbsence(a model.Absence) string {
	line := "🤒 " + FormatRange(a.From.Time, a.To.Time)
	if a.Description != "" {
		line += ": " + html.EscapeString(a.Description)
	}
	return line
}

// FormatProfile данные пользователя
func FormatProfile(u model.User) string {
	role := "студент"
	if u.IsLeader() {
		role = "староста"
	}
	return fmt.Sprintf(
		"👤 <b>Ваши данные</b>\n\n"+
			"Имя: %s\n"+
			"Фамилия: %s\n"+
			"Группа: %s\n"+
			"Роль: %s",
		html.EscapeString(u.FirstName),
		html.EscapeString(u.LastName),
		html.EscapeString(u.Group),
		role,
	)
}

// FormatScheduleChange уведомление группе об изменении занятия
func FormatScheduleChange(c model.ScheduleChange) string {
	var sb strings.Builder
	old := fmt.Sprintf("%s %s", FormatDateWithWeekday(c.OldDate.Time), c.OldStartTime)
	if c.Cancelled {
		fmt.Fprintf(&sb, "🚫 <b>Занятие отменено</b>\n\n%s\n%s", html.EscapeString(c.Subject), old)
	} else {
		fmt.Fprintf(&sb, "📢 <b>Изменение в расписании</b>\n\n%s\n%s", html.EscapeString(c.Subject), old)
		fmt.Fprintf(&sb, "\n➡️ %s %s", FormatDateWithWeekday(c.NewDate.Time), c.NewStartTime)
		if c.NewSubject != "" && c.NewSubject != c.Subject {
			fmt.Fprintf(&sb, "\nПредмет: %s", html.EscapeString(c.NewSubject))
		}
		if c.Classroom != "" {
			fmt.Fprintf(&sb, "\nАудитория: %s", html.EscapeString(c.Classroom))
		}
	}
	if c.Description != "" {
		fmt.Fprintf(&sb, "\n\n📝 %s", html.EscapeString(c.Description))
	}
	return sb.String()
}
