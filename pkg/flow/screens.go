package flow

import (
	"fmt"

	"github.com/msksk8cool/sk8school-bot/pkg/booking"
	"github.com/msksk8cool/sk8school-bot/pkg/catalog"
	"github.com/msksk8cool/sk8school-bot/pkg/channel"
)

var (
	mainMenuButton  = channel.Callback("🏠 Главное меню", TokenMainMenu)
	backToMenu      = channel.Callback("🔙 Главное меню", TokenMainMenu)
	otherParkButton = func(label string) channel.Button { return channel.Callback(label, TokenSelectPark) }
)

// MainMenuKeyboard is the root menu.
func MainMenuKeyboard() channel.Keyboard {
	return channel.Keyboard{
		channel.Row(channel.Callback("🏂 Записаться на тренировку", TokenTrainingInfo)),
		channel.Row(channel.Callback("📊 Мой прогресс", TokenMyProgress)),
		channel.Row(channel.Callback("🏆 Таблица лидеров", TokenLeaderboard)),
		channel.Row(channel.Callback("🏫 О школе", TokenAboutSchool)),
		channel.Row(channel.Callback("📞 Связаться с тренером", TokenContactCoach)),
	}
}

// WelcomeScreen greets a user on /start.
func WelcomeScreen() channel.Message {
	return channel.Message{
		Text: "🛹 *Добро пожаловать в MSK SK8COOL!*\n\n" +
			"Мы - школа скейтбординга в Москве! 🏂\n" +
			"Выберите, что вас интересует:",
		Keyboard: MainMenuKeyboard(),
	}
}

// MainMenuScreen is shown when returning to the root menu.
func MainMenuScreen() channel.Message {
	return channel.Message{
		Text: "🛹 *MSK SK8COOL - Главное меню*\n\n" +
			"Выберите, что вас интересует:",
		Keyboard: MainMenuKeyboard(),
	}
}

// TrainingInfoScreen describes the trainings and opens the booking flow.
func TrainingInfoScreen() channel.Message {
	return channel.Message{
		Text: "🏂 *Как проходят тренировки:*\n\n" +
			"• Групповые занятия 2-4 человека\n" +
			"• Индивидуальные тренировки\n" +
			"• Длительность: 1-1.5 часа\n" +
			"• Опытные тренеры с сертификатами\n" +
			"• Все уровни: от новичков до продвинутых\n\n" +
			"Давайте выберем парк для тренировки! 🎯",
		Keyboard: channel.Keyboard{
			channel.Row(channel.Callback("📍 Выбрать парк", TokenSelectPark)),
			channel.Row(backToMenu),
		},
	}
}

func parkListScreen(cat *catalog.Catalog) channel.Message {
	kb := make(channel.Keyboard, 0, len(cat.Parks)+1)
	for _, p := range cat.Parks {
		kb = append(kb, channel.Row(channel.Callback("📍 "+p.Name, ViewParkToken(p.ID))))
	}
	kb = append(kb, channel.Row(backToMenu))

	return channel.Message{
		Text: "📍 *Выберите парк для тренировки:*\n\n" +
			"У нас есть несколько отличных локаций в разных районах Москвы! 🏞️",
		Keyboard: kb,
	}
}

func parkDetailScreen(p catalog.Park) channel.Message {
	return channel.Message{
		Text: fmt.Sprintf("🏞️ *%s*\n\n🗺️ Откройте карту, чтобы посмотреть маршрут!", p.Name),
		Keyboard: channel.Keyboard{
			channel.Row(channel.Link("🗺️ Открыть карту", p.MapURL)),
			channel.Row(channel.Callback("✅ Выбрать этот парк", ConfirmParkToken(p.ID))),
			channel.Row(otherParkButton("🔄 Выбрать другой парк")),
			channel.Row(backToMenu),
		},
	}
}

func dateMenuScreen(parkName string, opts []DateOption) channel.Message {
	kb := make(channel.Keyboard, 0, len(opts)+2)
	for _, o := range opts {
		kb = append(kb, channel.Row(channel.Callback(o.Label, DateToken(o.DaysAhead))))
	}
	kb = append(kb,
		channel.Row(otherParkButton("🔄 Другой парк")),
		channel.Row(mainMenuButton),
	)

	return channel.Message{
		Text: fmt.Sprintf("🎯 *Парк выбран: %s*\n\n", parkName) +
			"📅 *Выберите дату тренировки:*\n" +
			"━━━━━━━━━━━━━━━━━━━━\n" +
			"✨ Запись доступна на следующий день и далее",
		Keyboard: kb,
	}
}

func periodMenuScreen(cat *catalog.Catalog, sel Selection) channel.Message {
	kb := make(channel.Keyboard, 0, len(cat.Periods)+2)
	for _, p := range cat.Periods {
		kb = append(kb, channel.Row(channel.Callback(p.Name, PeriodToken(p.ID))))
	}
	kb = append(kb,
		channel.Row(otherParkButton("🔄 Другая дата")),
		channel.Row(mainMenuButton),
	)

	return channel.Message{
		Text: fmt.Sprintf("🎯 *Парк:* %s\n📅 *Дата:* %s\n\n", sel.parkName(), sel.dateDisplay()) +
			"⏰ *Выберите период дня:*\n" +
			"━━━━━━━━━━━━━━━━━━━━",
		Keyboard: kb,
	}
}

func timeMenuScreen(period catalog.Period, sel Selection) channel.Message {
	kb := make(channel.Keyboard, 0, len(period.Times)+2)
	for _, slot := range period.Times {
		kb = append(kb, channel.Row(channel.Callback(period.Emoji+" "+slot, TimeToken(slot))))
	}
	kb = append(kb,
		channel.Row(otherParkButton("🔄 Другой период")),
		channel.Row(mainMenuButton),
	)

	return channel.Message{
		Text: fmt.Sprintf("🎯 *Парк:* %s\n📅 *Дата:* %s\n⏰ *Период:* %s\n\n", sel.parkName(), sel.dateDisplay(), period.Name) +
			"🕐 *Выберите время:*\n" +
			"━━━━━━━━━━━━━━━━━━━━",
		Keyboard: kb,
	}
}

func equipmentCheckScreen(sel Selection) channel.Message {
	return channel.Message{
		Text: fmt.Sprintf("🎯 *Парк:* %s\n📅 *Дата:* %s\n⏰ *Время:* %s\n\n", sel.parkName(), sel.dateDisplay(), sel.timeSlot()) +
			"🛡️ *Для тренировки нужны:*\n" +
			"• Шлем\n" +
			"• Защита (наколенники, налокотники)\n" +
			"• Скейтборд\n\n" +
			"*У тебя всё есть?*",
		Keyboard: channel.Keyboard{
			channel.Row(channel.Callback("✅ Да, у меня всё есть", TokenEquipmentYes)),
			channel.Row(channel.Callback("❌ Нет, нужна помощь", TokenEquipmentNo)),
			channel.Row(otherParkButton("🔄 Другое время")),
			channel.Row(mainMenuButton),
		},
	}
}

func equipmentMenuScreen(sel Selection) channel.Message {
	return channel.Message{
		Text: fmt.Sprintf("🎯 *Парк:* %s\n📅 *Дата:* %s\n⏰ *Время:* %s\n\n", sel.parkName(), sel.dateDisplay(), sel.timeSlot()) +
			"🛡️ *Что тебе нужно?*",
		Keyboard: channel.Keyboard{
			channel.Row(channel.Callback("🛡️ Защита", EquipmentToken(booking.EquipmentProtection))),
			channel.Row(channel.Callback("🛹 Скейтборд", EquipmentToken(booking.EquipmentSkateboard))),
			channel.Row(channel.Callback("🛡️🛹 Защита + Скейтборд", EquipmentToken(booking.EquipmentBoth))),
			channel.Row(otherParkButton("🔄 Другое время")),
			channel.Row(mainMenuButton),
		},
	}
}

func summaryLines(sel Selection) string {
	return fmt.Sprintf("🏞️ *Парк:* %s\n📅 *Дата:* %s\n⏰ *Время:* %s\n🛡️ *Оборудование:* %s\n\n",
		sel.parkName(), sel.dateDisplay(), sel.timeSlot(), sel.Equipment.Label())
}

func confirmScreen(cat *catalog.Catalog, sel Selection) channel.Message {
	return channel.Message{
		Text: "🎯 *Подтверждение записи*\n\n" +
			summaryLines(sel) +
			fmt.Sprintf("💰 *Стоимость:* %d₽\n⏱️ *Длительность:* %s\n\n", cat.Price, cat.Duration) +
			"*Всё верно?*",
		Keyboard: channel.Keyboard{
			channel.Row(channel.Callback("✅ Подтвердить запись", TokenFinalConfirm)),
			channel.Row(channel.Callback("❌ Отменить", TokenCancel)),
			channel.Row(mainMenuButton),
		},
	}
}

func submittedScreen(cat *catalog.Catalog, sel Selection) channel.Message {
	return channel.Message{
		Text: "🎉 *Заявка отправлена!*\n\n" +
			"✅ Ваша заявка на тренировку отправлена тренеру.\n" +
			"📱 Ожидайте подтверждения в ближайшее время.\n\n" +
			summaryLines(sel) +
			fmt.Sprintf("💰 *Стоимость:* %d₽", cat.Price),
		Keyboard: channel.Keyboard{channel.Row(mainMenuButton)},
	}
}

func submitFailedScreen() channel.Message {
	return channel.Message{
		Text:     "❌ Произошла ошибка при отправке заявки. Попробуйте позже.",
		Keyboard: channel.Keyboard{channel.Row(mainMenuButton)},
	}
}

func cancelledScreen() channel.Message {
	return channel.Message{
		Text:     "❌ Запись отменена.\n\nМожете начать заново или вернуться в главное меню.",
		Keyboard: channel.Keyboard{channel.Row(mainMenuButton)},
	}
}
