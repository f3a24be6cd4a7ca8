package reminder

import (
	"fmt"
	"strings"

	"github.com/msksk8cool/sk8school-bot/pkg/channel"
)

// DisplayUsername renders a username as @name, or "Не указан" when empty.
func DisplayUsername(username string) string {
	username = strings.TrimPrefix(username, "@")
	if username == "" {
		return "Не указан"
	}
	return "@" + username
}

func userMessage(job Job) channel.Message {
	return channel.Message{
		Text: fmt.Sprintf("⏰ *Напоминание о тренировке!*\n\n"+
			"🏂 Через 2 часа у вас тренировка!\n\n"+
			"🏞️ *Место:* %s\n"+
			"⏰ *Время:* %s\n"+
			"🗺️ [Открыть на карте](%s)\n\n"+
			"📋 Не забудьте:\n"+
			"• Удобную одежду\n"+
			"• Воду\n"+
			"• Хорошее настроение!\n\n"+
			"🚀 Удачной тренировки!",
			job.ParkName, job.Time, job.ParkLink),
		DisablePreview: true,
	}
}

func adminMessage(job Job) channel.Message {
	return channel.Message{
		Text: fmt.Sprintf("⏰ *Напоминание о тренировке!*\n\n"+
			"🏂 Через 2 часа тренировка!\n\n"+
			"👤 *Ученик:* %s\n"+
			"📱 *Username:* %s\n"+
			"🏞️ *Парк:* %s\n"+
			"⏰ *Время:* %s\n\n"+
			"🗺️ [Открыть на карте](%s)",
			channel.EscapeMarkdown(job.UserName), channel.EscapeMarkdown(DisplayUsername(job.Username)), job.ParkName, job.Time, job.ParkLink),
		DisablePreview: true,
	}
}
