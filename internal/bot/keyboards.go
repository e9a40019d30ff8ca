package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"artbot/internal/providers/image"
)

// mainKeyboard is the persistent menu shown after /start and after replies.
func mainKeyboard(t *Texts) tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(t.ButtonStyle),
			tgbotapi.NewKeyboardButton(t.ButtonPrompt),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(t.ButtonHelp),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// stylesKeyboard lays the style titles out two per row, with a single-button
// row for an odd trailing entry.
func stylesKeyboard(styles []image.Style) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(styles)/2+1)
	for i := 0; i+1 < len(styles); i += 2 {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(styles[i].Title),
			tgbotapi.NewKeyboardButton(styles[i+1].Title),
		))
	}
	if len(styles)%2 == 1 {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(styles[len(styles)-1].Title),
		))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

func removeKeyboard() tgbotapi.ReplyKeyboardRemove {
	return tgbotapi.NewRemoveKeyboard(false)
}
