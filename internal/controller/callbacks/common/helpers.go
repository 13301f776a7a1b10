package common

import (
	"fmt"
	"strings"
	"time"
)

// Форматы ввода, которые бот принимает от пользователя
const (
	UserDateLayout = "02.01.2006"
	UserTimeLayout = "15:04"
)

// ParseUserDate разбирает дату в формате ДД.ММ.ГГГГ
func ParseUserDate(text string) (time.Time, error) {
	t, err := time.Parse(UserDateLayout, strings.TrimSpace(text))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, text)
	}
	return t, nil
}

// ParseUserTime проверяет время в формате ЧЧ:ММ и нормализует его
func ParseUserTime(text string) (string, error) {
	t, err := time.Parse(UserTimeLayout, strings.TrimSpace(text))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, text)
	}
	return t.Format(UserTimeLayout), nil
}

// IsSkip ответ "нет" в диалоге редактирования: оставить значение как есть
func IsSkip(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "нет", "no", "-":
		return true
	}
	return false
}

// RequireText обрезает пробелы и не пропускает пустой ввод
func RequireText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyInput
	}
	return text, nil
}
