package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout формат даты в API и в callback payload
const DateLayout = "2006-01-02"

// Date календарная дата без времени (в UTC)
type Date struct {
	time.Time
}

// NewDate обрезает время до полуночи UTC
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate разбирает дату в формате yyyy-MM-dd
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON кодирует дату строкой yyyy-MM-dd
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON разбирает строку yyyy-MM-dd
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
