package calendar

import (
	"fmt"
	"time"
)

const (
	monthLayout    = "2006-01"
	navMonthLayout = "2006_01"
)

// Month год и месяц
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf месяц, в который попадает t
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth разбирает месяц в формате yyyy-MM
func ParseMonth(s string) (Month, error) {
	return parseMonth(s, monthLayout)
}

// ParseNavMonth разбирает месяц из кнопок навигации, формат yyyy_MM
func ParseNavMonth(s string) (Month, error) {
	return parseMonth(s, navMonthLayout)
}

func parseMonth(s, layout string) (Month, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return Month{}, fmt.Errorf("parse month %q: %w", s, err)
	}
	return MonthOf(t), nil
}

// First первый день месяца
func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Last последний день месяца
func (m Month) Last() time.Time {
	return m.First().AddDate(0, 1, -1)
}

func (m Month) Next() Month {
	return MonthOf(m.First().AddDate(0, 1, 0))
}

func (m Month) Prev() Month {
	return MonthOf(m.First().AddDate(0, -1, 0))
}

// Before сравнивает месяцы хронологически
func (m Month) Before(other Month) bool {
	return m.First().Before(other.First())
}

func (m Month) String() string {
	return m.First().Format(monthLayout)
}

// NavToken представление месяца для кнопок навигации
func (m Month) NavToken() string {
	return m.First().Format(navMonthLayout)
}

// Label подпись месяца, например "Апрель 2025"
func (m Month) Label() string {
	return fmt.Sprintf("%s %d", MonthName(m.Month), m.Year)
}

// MonthName возвращает название месяца на русском
func MonthName(month time.Month) string {
	names := map[time.Month]string{
		time.January:   "Январь",
		time.February:  "Февраль",
		time.March:     "Март",
		time.April:     "Апрель",
		time.May:       "Май",
		time.June:      "Июнь",
		time.July:      "Июль",
		time.August:    "Август",
		time.September: "Сентябрь",
		time.October:   "Октябрь",
		time.November:  "Ноябрь",
		time.December:  "Декабрь",
	}
	return names[month]
}
