package catalog

// Default returns the built-in catalog of the Moscow school.
func Default() *Catalog {
	return &Catalog{
		Parks: []Park{
			{ID: "park1", Name: "Скейт-парк у м. Новопеределкино 🏞️", MapURL: "https://yandex.ru/maps/-/CLEzyRJy"},
			{ID: "park2", Name: "Скейт-парк у м. Тропарево 🌅", MapURL: "https://yandex.ru/maps/-/CLEz5Zo9"},
			{ID: "park3", Name: "Скейт-парк у м. Академика Янгеля 🌆", MapURL: "https://yandex.ru/maps/-/CLEz5XkA"},
			{ID: "park4", Name: "Скейт-парк у м. Сокольники ❄️", MapURL: "https://yandex.ru/maps/-/CLEzB-~h"},
		},
		TimeSlots: []string{"12:00", "14:00", "16:00", "18:00", "20:00", "22:00"},
		Periods: []Period{
			{ID: "day", Name: "☀️ День", Emoji: "☀️", Times: []string{"12:00", "14:00", "16:00"}},
			{ID: "evening", Name: "🌙 Вечер", Emoji: "🌙", Times: []string{"18:00", "20:00", "22:00"}},
		},
		Tiers: []Tier{
			{ID: "novice", Name: "🥉 Новичок", Min: 0, Max: 5},
			{ID: "amateur", Name: "🥈 Любитель", Min: 6, Max: 15},
			{ID: "pro", Name: "🥇 Профи", Min: 16, Max: 30},
			{ID: "master", Name: "👑 Мастер", Min: 31, Max: 999},
		},
		Achievements: []AchievementConfig{
			{
				ID: "first_session", Type: "session_count", Icon: "🎯",
				Name:        "🎯 Первая тренировка",
				Description: "Записался на первую тренировку!",
				Parameters:  map[string]interface{}{"min": 1},
			},
			{
				ID: "beginner", Type: "session_count", Icon: "🔥",
				Name:        "🔥 Начинающий",
				Description: "5 тренировок - ты на пути к успеху!",
				Parameters:  map[string]interface{}{"min": 5},
			},
			{
				ID: "regular", Type: "session_count", Icon: "⚡",
				Name:        "⚡ Регулярный",
				Description: "10 тренировок - ты настоящий скейтер!",
				Parameters:  map[string]interface{}{"min": 10},
			},
			{
				ID: "champion", Type: "session_count", Icon: "🏆",
				Name:        "🏆 Чемпион",
				Description: "25 тренировок - ты мастер скейтборда!",
				Parameters:  map[string]interface{}{"min": 25},
			},
			{
				ID: "speed_progress", Type: "recent_sessions", Icon: "🚀",
				Name:        "🚀 Скоростной прогресс",
				Description: "3 тренировки за неделю - впечатляюще!",
				Parameters:  map[string]interface{}{"count": 3, "days": 7},
			},
			{
				ID: "consistent", Type: "weekly_streak", Icon: "📅",
				Name:        "📅 Постоянный",
				Description: "Тренируешься 3 недели подряд!",
				Parameters:  map[string]interface{}{"weeks": 3},
			},
		},
		Price:    1500,
		Duration: "60-90 минут",
	}
}
