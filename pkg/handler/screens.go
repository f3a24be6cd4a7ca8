package handler

import (
	"fmt"
	"time"

	"github.com/msksk8cool/sk8school-bot/pkg/channel"
	"github.com/msksk8cool/sk8school-bot/pkg/flow"
	"github.com/msksk8cool/sk8school-bot/pkg/reminder"
)

const genericErrorText = "Произошла ошибка. Попробуйте еще раз."

var backToMenu = channel.Callback("🔙 Главное меню", flow.TokenMainMenu)

func aboutSchoolScreen() channel.Message {
	return channel.Message{
		Text: "🏫 *О школе MSK SK8COOL:*\n\n" +
			"Мы обучаем скейтбордингу с 2020 года! 🎓\n\n" +
			"• Более 500 учеников\n" +
			"• 5+ опытных тренеров\n" +
			"• Занятия в лучших парках Москвы\n" +
			"• Безопасность превыше всего\n" +
			"• Индивидуальный подход к каждому\n\n" +
			"Присоединяйтесь к нашей команде! 🚀",
		Keyboard: channel.Keyboard{channel.Row(backToMenu)},
	}
}

const contactCoachText = "📞 *Связаться с тренером:*\n\n" +
	"Нажмите кнопку ниже, чтобы открыть чат с тренером!\n\n" +
	"⏰ *Время работы:* 9:00 - 21:00\n" +
	"⚡ *Ответим в течение 30 минут!*\n\n" +
	"При нажатии откроется чат с автоматическим приветственным сообщением! 🚀"

func contactCoachScreen(coachURL string) channel.Message {
	return channel.Message{
		Text: contactCoachText,
		Keyboard: channel.Keyboard{
			channel.Row(channel.Link("💬 Написать тренеру", coachURL)),
			channel.Row(backToMenu),
		},
	}
}

// coachCommandScreen is the /coach reply. It is a new message, so the menu
// button reads "home" rather than "back".
func coachCommandScreen(coachURL string) channel.Message {
	return channel.Message{
		Text: contactCoachText,
		Keyboard: channel.Keyboard{
			channel.Row(channel.Link("💬 Написать тренеру", coachURL)),
			channel.Row(channel.Callback("🏠 Главное меню", flow.TokenMainMenu)),
		},
	}
}

func progressScreen(text string) channel.Message {
	return channel.Message{
		Text: text,
		Keyboard: channel.Keyboard{
			channel.Row(channel.Callback("🏆 Таблица лидеров", flow.TokenLeaderboard)),
			channel.Row(backToMenu),
		},
	}
}

func leaderboardScreen(text string) channel.Message {
	return channel.Message{
		Text: text,
		Keyboard: channel.Keyboard{
			channel.Row(channel.Callback("📊 Мой прогресс", flow.TokenMyProgress)),
			channel.Row(backToMenu),
		},
	}
}

func deepLinkGreeting(actor channel.Actor, now time.Time) channel.Message {
	return channel.Message{Text: fmt.Sprintf("👋 *Привет! Хочу записаться на тренировку!*\n\n"+
		"👤 *Имя:* %s\n"+
		"📱 *Username:* %s\n"+
		"🆔 *ID:* %d\n\n"+
		"🏂 *Школа:* MSK SK8COOL\n"+
		"📅 *Дата обращения:* %s\n\n"+
		"💬 Пользователь хочет связаться с тренером для записи на тренировку!",
		channel.EscapeMarkdown(actor.FirstName), channel.EscapeMarkdown(reminder.DisplayUsername(actor.Username)), actor.ID, now.Format("02.01.2006 15:04"))}
}

func deepLinkOffer() channel.Message {
	return channel.Message{
		Text: "🎯 *Отлично! Я помогу вам записаться на тренировку!*\n\n" +
			"🏂 *Что у нас есть:*\n" +
			"• Групповые занятия 2-4 человека\n" +
			"• Индивидуальные тренировки\n" +
			"• Занятия в лучших парках Москвы\n" +
			"• Опытные тренеры с сертификатами\n\n" +
			"📅 *Когда хотите начать?*\n" +
			"Нажмите кнопку ниже, чтобы выбрать парк и время!",
		Keyboard: channel.Keyboard{
			channel.Row(channel.Callback("🏂 Записаться на тренировку", flow.TokenTrainingInfo)),
		},
	}
}

func errorScreen() channel.Message {
	return channel.Message{
		Text:     genericErrorText,
		Keyboard: flow.MainMenuKeyboard(),
	}
}
