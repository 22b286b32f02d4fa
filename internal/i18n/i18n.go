// Package i18n provides the bot message catalog for English, Russian and
// Uzbek. Unknown languages and missing keys fall back to English.
package i18n

import "fmt"

// Supported language codes.
const (
	LangEN = "en"
	LangRU = "ru"
	LangUZ = "uz"
)

// Default is the fallback language.
const Default = LangEN

// Supported reports whether the language code has a catalog.
func Supported(lang string) bool {
	switch lang {
	case LangEN, LangRU, LangUZ:
		return true
	}
	return false
}

// Normalize maps an arbitrary language code to a supported one.
func Normalize(lang string) string {
	if Supported(lang) {
		return lang
	}
	return Default
}

// T returns the message for key in the given language, falling back to
// English and finally to the key itself.
func T(lang, key string) string {
	if m, ok := catalog[lang]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	if s, ok := catalog[Default][key]; ok {
		return s
	}
	return key
}

// Tf formats the message for key with fmt.Sprintf.
func Tf(lang, key string, args ...any) string {
	return fmt.Sprintf(T(lang, key), args...)
}

var catalog = map[string]map[string]string{
	LangEN: {
		"start.welcome":        "Hello! I track currency rates against UZS.\nCommands:\n/rates — current rates\n/convert — convert an amount\n/alert — create a price alert\n/alerts — your active alerts\n/language — change language",
		"rates.header":         "Current rates (UZS):",
		"rates.line":           "%s: %s",
		"rates.unavailable":    "Rates are temporarily unavailable, try again later.",
		"convert.ask_to":       "Which currency do you want to convert %s to?",
		"convert.ask_amount":   "Enter the amount in %s:",
		"convert.result":       "%s %s = %s %s",
		"convert.bad_currency": "I don't know that currency. Send a 3-letter code like USD or EUR.",
		"amount.invalid":       "That doesn't look like a number. Enter a positive amount, e.g. 150 or 99,5.",
		"alert.ask_condition":  "Notify you when %s goes above or below a rate?",
		"alert.ask_amount":     "At what rate should I notify you? Current %s is %s.",
		"alert.created":        "Done. I will notify you when %s goes %s %s.",
		"alert.triggered":      "🔔 Alert: %s is now %s (target %s %s).",
		"alert.parse_hint":     "To create an alert, send something like: USD > 13000",
		"alert.limit":          "You already have the maximum number of active alerts.",
		"alert.bad_target":     "The target rate must be a positive number.",
		"alerts.empty":         "You have no active alerts.",
		"alerts.header":        "Your active alerts:",
		"alerts.line":          "%d. %s %s %s",
		"alerts.deleted":       "Alert removed.",
		"alerts.not_found":     "That alert no longer exists.",
		"language.choose":      "Choose your language:",
		"language.changed":     "Language switched to English.",
		"direction.above":      "above",
		"direction.below":      "below",
		"error.generic":        "Something went wrong, please try again.",
	},
	LangRU: {
		"start.welcome":        "Привет! Я отслеживаю курсы валют к UZS.\nКоманды:\n/rates — текущие курсы\n/convert — конвертация\n/alert — создать уведомление о курсе\n/alerts — ваши активные уведомления\n/language — сменить язык",
		"rates.header":         "Текущие курсы (UZS):",
		"rates.line":           "%s: %s",
		"rates.unavailable":    "Курсы временно недоступны, попробуйте позже.",
		"convert.ask_to":       "В какую валюту конвертировать %s?",
		"convert.ask_amount":   "Введите сумму в %s:",
		"convert.result":       "%s %s = %s %s",
		"convert.bad_currency": "Я не знаю такую валюту. Отправьте трёхбуквенный код, например USD или EUR.",
		"amount.invalid":       "Это не похоже на число. Введите положительную сумму, например 150 или 99,5.",
		"alert.ask_condition":  "Уведомить, когда %s будет выше или ниже курса?",
		"alert.ask_amount":     "При каком курсе уведомить? Сейчас %s стоит %s.",
		"alert.created":        "Готово. Я сообщу, когда %s будет %s %s.",
		"alert.triggered":      "🔔 Уведомление: %s сейчас %s (цель %s %s).",
		"alert.parse_hint":     "Чтобы создать уведомление, отправьте, например: USD > 13000",
		"alert.limit":          "У вас уже максимальное число активных уведомлений.",
		"alert.bad_target":     "Целевой курс должен быть положительным числом.",
		"alerts.empty":         "У вас нет активных уведомлений.",
		"alerts.header":        "Ваши активные уведомления:",
		"alerts.line":          "%d. %s %s %s",
		"alerts.deleted":       "Уведомление удалено.",
		"alerts.not_found":     "Такого уведомления больше нет.",
		"language.choose":      "Выберите язык:",
		"language.changed":     "Язык переключён на русский.",
		"direction.above":      "выше",
		"direction.below":      "ниже",
		"error.generic":        "Что-то пошло не так, попробуйте ещё раз.",
	},
	LangUZ: {
		"start.welcome":        "Salom! Men valyuta kurslarini UZS ga nisbatan kuzataman.\nBuyruqlar:\n/rates — joriy kurslar\n/convert — summani konvertatsiya qilish\n/alert — kurs haqida ogohlantirish yaratish\n/alerts — faol ogohlantirishlaringiz\n/language — tilni o'zgartirish",
		"rates.header":         "Joriy kurslar (UZS):",
		"rates.line":           "%s: %s",
		"rates.unavailable":    "Kurslar vaqtincha mavjud emas, keyinroq urinib ko'ring.",
		"convert.ask_to":       "%s ni qaysi valyutaga konvertatsiya qilay?",
		"convert.ask_amount":   "%s da summani kiriting:",
		"convert.result":       "%s %s = %s %s",
		"convert.bad_currency": "Bunday valyutani bilmayman. USD yoki EUR kabi 3 harfli kod yuboring.",
		"amount.invalid":       "Bu raqamga o'xshamaydi. Musbat summa kiriting, masalan 150 yoki 99,5.",
		"alert.ask_condition":  "%s kurs yuqori yoki past bo'lganda xabar beraymi?",
		"alert.ask_amount":     "Qaysi kursda xabar beray? Hozir %s kursi %s.",
		"alert.created":        "Tayyor. %s kursi %s %s bo'lganda xabar beraman.",
		"alert.triggered":      "🔔 Ogohlantirish: %s hozir %s (maqsad %s %s).",
		"alert.parse_hint":     "Ogohlantirish yaratish uchun, masalan: USD > 13000 deb yuboring",
		"alert.limit":          "Sizda allaqachon maksimal faol ogohlantirishlar bor.",
		"alert.bad_target":     "Maqsad kursi musbat son bo'lishi kerak.",
		"alerts.empty":         "Sizda faol ogohlantirishlar yo'q.",
		"alerts.header":        "Faol ogohlantirishlaringiz:",
		"alerts.line":          "%d. %s %s %s",
		"alerts.deleted":       "Ogohlantirish o'chirildi.",
		"alerts.not_found":     "Bunday ogohlantirish endi mavjud emas.",
		"language.choose":      "Tilni tanlang:",
		"language.changed":     "Til o'zbekchaga o'zgartirildi.",
		"direction.above":      "yuqori",
		"direction.below":      "past",
		"error.generic":        "Nimadir xato ketdi, qayta urinib ko'ring.",
	},
}
