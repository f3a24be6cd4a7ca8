package progress

import (
	"fmt"
	"strings"

	"github.com/msksk8cool/sk8school-bot/pkg/achievement"
	"github.com/msksk8cool/sk8school-bot/pkg/channel"
)

const barLength = 10

// ProgressBar renders percent as a bracketed bar of full and empty cells.
func ProgressBar(percent float64) string {
	filled := int(percent / 100 * barLength)
	if filled < 0 {
		filled = 0
	}
	if filled > barLength {
		filled = barLength
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", barLength-filled) + "]"
}

// FormatProgress renders the progress screen. A nil summary means the user
// has not trained yet.
func FormatProgress(s *Summary) string {
	if s == nil {
		return "🎯 У вас пока нет тренировок. Запишитесь на первую!"
	}

	var b strings.Builder
	b.WriteString("🏂 *Ваш прогресс в MSK SK8COOL*\n\n")
	fmt.Fprintf(&b, "👤 %s (%s)\n\n", channel.EscapeMarkdown(s.UserName), handle(s.Username))
	fmt.Fprintf(&b, "%s\n%s %.0f%%\n\n", s.Tier.Name, ProgressBar(s.Percent), s.Percent)
	b.WriteString("📊 *Статистика:*\n")
	fmt.Fprintf(&b, "• Всего тренировок: %d\n", s.Total)
	fmt.Fprintf(&b, "• Первая тренировка: %s\n", s.FirstSession)
	fmt.Fprintf(&b, "• Последняя тренировка: %s\n\n", s.LastSession)
	fmt.Fprintf(&b, "🏆 *Достижения:* %d/%d\n", len(s.Achievements), s.AchievementsTotal)

	if len(s.Achievements) > 0 {
		b.WriteString("\n")
		for i, a := range s.Achievements {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "• %s %s", a.Icon, a.Name)
		}
	}

	if s.Next != nil {
		fmt.Fprintf(&b, "\n\n🎯 До %s: %d тренировок", s.Next.Name, s.Next.Min-s.Total)
	}

	return b.String()
}

// handle renders a username as @name, escaped for Markdown.
func handle(username string) string {
	username = strings.TrimPrefix(username, "@")
	if username == "" {
		return "Не указан"
	}
	return channel.EscapeMarkdown("@" + username)
}

func medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return fmt.Sprintf("%d.", rank)
}

// FormatLeaderboard renders the top list.
func FormatLeaderboard(entries []Entry) string {
	if len(entries) == 0 {
		return "🏆 Пока нет данных для таблицы лидеров"
	}

	var b strings.Builder
	b.WriteString("🏆 *Топ скейтеров MSK SK8COOL*\n\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "%s %s (%s)\n", medal(i+1), channel.EscapeMarkdown(e.UserName), handle(e.Username))
		fmt.Fprintf(&b, "   %s • %d тренировок • %d достижений\n\n", e.Level, e.Total, e.Achievements)
	}
	return b.String()
}

// FormatUnlocks renders the congratulation for newly earned achievements.
func FormatUnlocks(unlocks []achievement.Unlock) string {
	lines := make([]string, 0, len(unlocks))
	for _, u := range unlocks {
		lines = append(lines, fmt.Sprintf("🏆 %s: %s", u.Name, u.Description))
	}
	return "🎉 *Новые достижения!*\n\n" + strings.Join(lines, "\n") + "\n\nПродолжайте в том же духе! 🚀"
}
