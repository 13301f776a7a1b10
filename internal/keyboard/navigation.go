package keyboard

import "github.com/go-telegram/bot/models"

// BackButton создаёт кнопку "Назад"
func BackButton(callbackData string) models.InlineKeyboardButton {
	return Button("⬅️ Назад", callbackData)
}

// CancelButton создаёт кнопку "Отмена"
func CancelButton(callbackData string) models.InlineKeyboardButton {
	return Button("❌ Отмена", callbackData)
}

// ConfirmButton создаёт кнопку "Подтвердить"
func ConfirmButton(callbackData string) models.InlineKeyboardButton {
	return Button("✅ Подтвердить", callbackData)
}

// Single клавиатура из одной кнопки
func Single(text, callbackData string) *models.InlineKeyboardMarkup {
	return NewBuilder().Row(Button(text, callbackData)).Build()
}

// Reply собирает обычную (не inline) клавиатуру, по одному ряду на срез
func Reply(rows ...[]string) *models.ReplyKeyboardMarkup {
	keyboard := make([][]models.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]models.KeyboardButton, 0, len(row))
		for _, text := range row {
			buttons = append(buttons, models.KeyboardButton{Text: text})
		}
		if len(buttons) > 0 {
			keyboard = append(keyboard, buttons)
		}
	}
	return &models.ReplyKeyboardMarkup{
		Keyboard:       keyboard,
		ResizeKeyboard: true,
	}
}
