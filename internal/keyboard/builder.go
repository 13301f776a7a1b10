package keyboard

import "github.com/go-telegram/bot/models"

// InertData payload пустых и информационных кнопок, роутер их молча пропускает
const InertData = "noop"

// Builder упрощает создание inline клавиатур
type Builder struct {
	rows [][]models.InlineKeyboardButton
}

// NewBuilder создаёт новый builder клавиатуры
func NewBuilder() *Builder {
	return &Builder{
		rows: make([][]models.InlineKeyboardButton, 0),
	}
}

// Row добавляет новый ряд кнопок
func (b *Builder) Row(buttons ...models.InlineKeyboardButton) *Builder {
	if len(buttons) > 0 {
		b.rows = append(b.rows, buttons)
	}
	return b
}

// Chunked раскладывает кнопки по рядам заданной ширины
func (b *Builder) Chunked(width int, buttons ...models.InlineKeyboardButton) *Builder {
	if width <= 0 {
		width = 1
	}
	for start := 0; start < len(buttons); start += width {
		end := min(start+width, len(buttons))
		row := make([]models.InlineKeyboardButton, end-start)
		copy(row, buttons[start:end])
		b.rows = append(b.rows, row)
	}
	return b
}

// Button создаёт кнопку
func Button(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:         text,
		CallbackData: callbackData,
	}
}

// Inert создаёт кнопку без действия
func Inert(text string) models.InlineKeyboardButton {
	if text == "" {
		text = " "
	}
	return Button(text, InertData)
}

// Build создаёт финальную клавиатуру
func (b *Builder) Build() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: b.rows,
	}
}

// Append возвращает новую клавиатуру: ряды base плюс rows.
// base не изменяется, поэтому её можно брать прямо из кэша.
func Append(base *models.InlineKeyboardMarkup, rows ...[]models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	var baseRows [][]models.InlineKeyboardButton
	if base != nil {
		baseRows = base.InlineKeyboard
	}
	out := make([][]models.InlineKeyboardButton, 0, len(baseRows)+len(rows))
	out = append(out, baseRows...)
	for _, row := range rows {
		if len(row) > 0 {
			out = append(out, row)
		}
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: out}
}
