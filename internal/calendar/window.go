package calendar

import (
	"errors"
	"fmt"
	"time"

	"github.com/icza/gox/timex"
)

// ErrOutOfWindow запрошенный месяц или неделя вне окна календаря
var ErrOutOfWindow = errors.New("calendar: out of window")

const day = 24 * time.Hour

// Window закрытый интервал дат [Min, Max], в котором работают все календари
type Window struct {
	Min time.Time
	Max time.Time
}

// NewWindow обрезает время до полуночи UTC и проверяет порядок границ
func NewWindow(minDate, maxDate time.Time) (Window, error) {
	w := Window{Min: civil(minDate), Max: civil(maxDate)}
	if w.Max.Before(w.Min) {
		return Window{}, fmt.Errorf("calendar window: max %s before min %s",
			w.Max.Format(time.DateOnly), w.Min.Format(time.DateOnly))
	}
	return w, nil
}

// Contains проверяет, что дата попадает в окно
func (w Window) Contains(d time.Time) bool {
	d = civil(d)
	return !d.Before(w.Min) && !d.After(w.Max)
}

// Overlaps проверяет, есть ли у месяца хотя бы один день в окне
func (w Window) Overlaps(m Month) bool {
	return !m.Last().Before(w.Min) && !m.First().After(w.Max)
}

// Months перечисляет все месяцы, пересекающиеся с окном
func (w Window) Months() []Month {
	var out []Month
	for m := MonthOf(w.Min); w.Overlaps(m); m = m.Next() {
		out = append(out, m)
	}
	return out
}

// Clamp возвращает ближайший к m месяц внутри окна
func (w Window) Clamp(m Month) Month {
	if first := MonthOf(w.Min); m.Before(first) {
		return first
	}
	if last := MonthOf(w.Max); last.Before(m) {
		return last
	}
	return m
}

// WeekStart понедельник относительной недели idx (0 это неделя Min)
func (w Window) WeekStart(idx int) time.Time {
	year, week := w.Min.ISOWeek()
	return timex.WeekStart(year, week).AddDate(0, 0, 7*idx)
}

// WeekIndex номер относительной недели, в которую попадает дата
func (w Window) WeekIndex(d time.Time) int {
	diff := civil(d).Sub(w.WeekStart(0))
	if diff < 0 {
		return -1
	}
	return int(diff / (7 * day))
}

// WeekCount количество относительных недель в окне
func (w Window) WeekCount() int {
	return w.WeekIndex(w.Max) + 1
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
