package flow

import (
	"fmt"
	"time"
)

var (
	shortWeekdays = [...]string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}
	longWeekdays  = [...]string{"Воскресенье", "Понедельник", "Вторник", "Среда", "Четверг", "Пятница", "Суббота"}
	shortMonths   = [...]string{"янв", "фев", "мар", "апр", "май", "июн", "июл", "авг", "сен", "окт", "ноя", "дек"}
	genitiveMonth = [...]string{"января", "февраля", "марта", "апреля", "мая", "июня", "июля", "августа", "сентября", "октября", "ноября", "декабря"}
)

// DateOption is one row of the date menu.
type DateOption struct {
	DaysAhead int
	Date      time.Time
	Label     string
}

// DateAhead returns the calendar day n days after now in loc.
func DateAhead(now time.Time, loc *time.Location, n int) time.Time {
	return now.In(loc).AddDate(0, 0, n)
}

// DateMenu lists the next MaxDaysAhead days starting tomorrow.
func DateMenu(now time.Time, loc *time.Location) []DateOption {
	opts := make([]DateOption, 0, MaxDaysAhead)
	for n := 1; n <= MaxDaysAhead; n++ {
		d := DateAhead(now, loc, n)
		label := fmt.Sprintf("📋 %s, %02d %s", shortWeekdays[d.Weekday()], d.Day(), shortMonths[d.Month()-1])
		if n == 1 {
			label = "🎯 Завтра"
		}
		opts = append(opts, DateOption{DaysAhead: n, Date: d, Label: label})
	}
	return opts
}

// DateDisplay is the text shown for a chosen date.
func DateDisplay(d time.Time, daysAhead int) string {
	if daysAhead == 1 {
		return "Завтра"
	}
	return fmt.Sprintf("%s, %02d %s", longWeekdays[d.Weekday()], d.Day(), genitiveMonth[d.Month()-1])
}
