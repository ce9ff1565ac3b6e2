package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// Menu button labels. These double as the inbound routing keys, so changing
// one breaks every client that still shows the old keyboard.
const (
	labelDayCard      = "🌿 Карта дня"
	labelAskQuestion  = "🔮 Ответ на вопрос"
	labelResponseCard = "🫧 Карта отклика"
)

const (
	callbackOfferYes = "deeper_yes"
	callbackOfferNo  = "deeper_no"
)

func menuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kbd := tgbotapi.NewReplyKeyboard(
		[]tgbotapi.KeyboardButton{tgbotapi.NewKeyboardButton(labelDayCard)},
		[]tgbotapi.KeyboardButton{tgbotapi.NewKeyboardButton(labelAskQuestion)},
		[]tgbotapi.KeyboardButton{tgbotapi.NewKeyboardButton(labelResponseCard)},
	)
	kbd.ResizeKeyboard = true
	kbd.InputFieldPlaceholder = "Выбери режим…"
	return kbd
}

func offerKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Да 🌙", callbackOfferYes),
			tgbotapi.NewInlineKeyboardButtonData("Не сейчас", callbackOfferNo),
		),
	)
}

func consultKeyboard(url string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🧩 Разобрать вопрос глубже", url),
		),
	)
}
