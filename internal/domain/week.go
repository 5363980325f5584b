package domain

import "time"

// WeekDates 返回 today 所在周偏移 offset 周后的七天，每周从周日开始
func WeekDates(today time.Time, offset int) []time.Time {
	today = today.In(Location)
	y, m, d := today.Date()
	start := time.Date(y, m, d-int(today.Weekday())+offset*7, 0, 0, 0, 0, Location)

	dates := make([]time.Time, 7)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}
	return dates
}

func WeekStart(t time.Time) time.Time {
	return WeekDates(t, 0)[0]
}

// InWeek 按日历日期判断 t 是否落在以 weekStart 开始的一周内
func InWeek(t, weekStart time.Time) bool {
	start := CalendarDay(weekStart)
	day := CalendarDay(t)
	return !day.Before(start) && day.Before(start.AddDate(0, 0, 7))
}

// Location 是判断日历日期时使用的时区，默认为本机时区。
// 同一时刻无论以哪个偏移表示，都按这个时区换算成同一天。
var Location = time.Local

// CalendarDay 把 t 换算到 Location 后只保留日历日期
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.In(Location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, Location)
}
