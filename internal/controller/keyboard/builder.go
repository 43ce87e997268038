package keyboard

import (
	"github.com/Freeeeeet/gatekeeper_bot/internal/service"
	"github.com/go-telegram/bot/models"
)

// Builder собирает inline клавиатуру по рядам
type Builder struct {
	rows [][]models.InlineKeyboardButton
}

func NewBuilder() *Builder {
	return &Builder{
		rows: make([][]models.InlineKeyboardButton, 0),
	}
}

// Row добавляет ряд кнопок; пустой ряд пропускается
func (b *Builder) Row(buttons ...models.InlineKeyboardButton) *Builder {
	if len(buttons) > 0 {
		b.rows = append(b.rows, buttons)
	}
	return b
}

// Button кнопка с callback data
func Button(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:         text,
		CallbackData: callbackData,
	}
}

func (b *Builder) Empty() bool {
	return len(b.rows) == 0
}

func (b *Builder) Build() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: b.rows,
	}
}

// FromActions раскладывает кнопки карточки в один ряд.
// nil, если кнопок нет: Telegram тогда убирает клавиатуру.
func FromActions(actions []service.CardAction) *models.InlineKeyboardMarkup {
	buttons := make([]models.InlineKeyboardButton, 0, len(actions))
	for _, a := range actions {
		buttons = append(buttons, Button(a.Label, a.Data))
	}

	b := NewBuilder().Row(buttons...)
	if b.Empty() {
		return nil
	}
	return b.Build()
}
