package flow

// User-facing copy. Kept in one place so the engine logic stays readable.
const (
	textGreeting = "Я рядом 🌿\n\nВыбери режим:"
	textFallback = "Выбери режим кнопками ниже 👇"
	textNoCards  = "Сейчас нет доступных карт. Попробуй другой режим 🌿"

	textBreathDay      = "Пауза… вдох…"
	textBreathResponse = "Пусть проявится образ…"
	textBreathQuestion = "Настраиваюсь на вопрос…"

	textAskShort = "Напиши вопрос одним сообщением — и я дам одну карту."
	textAskExtended = "Напиши вопрос одним сообщением — и я дам одну карту.\n\n" +
		"Например:\n" +
		"• «Что мне важно увидеть в этой ситуации?»\n" +
		"• «Куда сейчас направить внимание?»\n" +
		"• «Что поможет мне в отношениях?»"
	textMoreDetail = "Расскажи чуть подробнее — одним сообщением, хотя бы в нескольких словах."

	textOffer      = "Кажется, ты сейчас в глубоком процессе.\nХочешь разобрать вопрос глубже и бережнее?"
	textConsult    = "Хорошо 🌙 Если захочется — нажми кнопку ниже:"
	textDeclineBye = "Ок. Я рядом и без спешки."
)
