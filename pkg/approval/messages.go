package approval

import (
	"fmt"
	"time"

	"github.com/msksk8cool/sk8school-bot/pkg/booking"
	"github.com/msksk8cool/sk8school-bot/pkg/catalog"
	"github.com/msksk8cool/sk8school-bot/pkg/channel"
	"github.com/msksk8cool/sk8school-bot/pkg/flow"
	"github.com/msksk8cool/sk8school-bot/pkg/reminder"
)

const (
	noPermissionText  = "❌ У вас нет прав для этого действия."
	defaultRejectText = "Отклонено тренером"
	decisionTimestamp = "02.01.2006 15:04"
)

func requestMessage(cat *catalog.Catalog, actor channel.Actor, b *booking.Booking, dateDisplay string) channel.Message {
	ref := flow.DecisionRef{UserID: b.UserID, ParkID: b.ParkID, Date: b.Date, Time: b.Time}

	return channel.Message{
		Text: fmt.Sprintf("🎯 *Новая заявка на тренировку!*\n\n"+
			"👤 *Пользователь:* %s\n"+
			"🆔 *ID:* %d\n"+
			"📱 *Username:* %s\n"+
			"🏞️ *Парк:* %s\n"+
			"📅 *Дата:* %s\n"+
			"⏰ *Время:* %s\n"+
			"🛡️ *Оборудование:* %s\n\n"+
			"💰 *Стоимость:* %d₽",
			channel.EscapeMarkdown(actor.FirstName), actor.ID, channel.EscapeMarkdown(reminder.DisplayUsername(actor.Username)),
			b.ParkName, dateDisplay, b.Time, b.Equipment.Label(), cat.Price),
		Keyboard: channel.Keyboard{
			channel.Row(channel.Callback("✅ Подтвердить", flow.ApproveToken(ref))),
			channel.Row(channel.Callback("❌ Отклонить", flow.RejectToken(ref))),
		},
	}
}

func approvedAdminMessage(b *booking.Booking, now time.Time) channel.Message {
	return channel.Message{Text: fmt.Sprintf("✅ *Заявка подтверждена!*\n\n"+
		"👤 Пользователь ID: %d\n"+
		"🏞️ Парк: %s\n"+
		"📅 Заявка одобрена тренером\n"+
		"⏰ Время: %s",
		b.UserID, b.ParkName, now.Format(decisionTimestamp))}
}

func approvedUserMessage(park catalog.Park) channel.Message {
	return channel.Message{
		Text: fmt.Sprintf("🎉 *Ваша заявка подтверждена!*\n\n"+
			"✅ Тренер подтвердил вашу заявку на тренировку.\n"+
			"📱 Ждем вас в назначенное время!\n\n"+
			"🏞️ *Место встречи:* %s\n"+
			"🗺️ [Открыть на карте](%s)\n\n"+
			"📋 Не забудьте взять с собой:\n"+
			"• Хорошее настроение\n"+
			"• Удобную одежду\n"+
			"• Воду\n\n"+
			"🚀 Удачной тренировки!",
			park.Name, park.MapURL),
		DisablePreview: true,
	}
}

func rejectedAdminMessage(b *booking.Booking, now time.Time) channel.Message {
	return channel.Message{Text: fmt.Sprintf("❌ *Заявка отклонена!*\n\n"+
		"👤 Пользователь ID: %d\n"+
		"🏞️ Парк: %s\n"+
		"📅 Заявка отклонена тренером\n"+
		"⏰ Время: %s",
		b.UserID, b.ParkName, now.Format(decisionTimestamp))}
}

func rejectedUserMessage() channel.Message {
	return channel.Message{Text: "❌ *Заявка отклонена*\n\n" +
		"К сожалению, ваша заявка на тренировку была отклонена.\n" +
		"Возможные причины:\n" +
		"• Занятое время\n" +
		"• Недоступность тренера\n" +
		"• Технические работы\n\n" +
		"🔄 Попробуйте выбрать другое время или свяжитесь с тренером."}
}

func notFoundMessage(ref flow.DecisionRef) channel.Message {
	return channel.Message{Text: fmt.Sprintf("⚠️ Заявка не найдена\n\n"+
		"👤 Пользователь ID: %d\n"+
		"📅 %s %s",
		ref.UserID, ref.Date, ref.Time)}
}

func alreadyDecidedMessage(b *booking.Booking) channel.Message {
	switch b.Status {
	case booking.StatusConfirmed:
		return channel.Message{Text: fmt.Sprintf("ℹ️ Заявка уже подтверждена\n\n👤 Пользователь ID: %d\n🏞️ Парк: %s", b.UserID, b.ParkName)}
	case booking.StatusRejected:
		return channel.Message{Text: fmt.Sprintf("ℹ️ Заявка уже отклонена\n\n👤 Пользователь ID: %d\n🏞️ Парк: %s", b.UserID, b.ParkName)}
	}
	return channel.Message{Text: fmt.Sprintf("ℹ️ Заявка уже обработана (%s)\n\n👤 Пользователь ID: %d", b.Status, b.UserID)}
}
