package alerting

import "time"

const secondsPerDay = 24 * 60 * 60

// DaysUntil возвращает ceil((date - now) / 1 день) или nil, если даты нет.
// Просроченная дата дает значение <= 0. Считается через секунды Unix:
// time.Duration насыщается за пределами ~292 лет.
func DaysUntil(date *time.Time, now time.Time) *int {
	if date == nil {
		return nil
	}
	secs := date.Unix() - now.Unix()
	nanos := date.Nanosecond() - now.Nanosecond()
	if nanos < 0 {
		secs--
		nanos += int(time.Second)
	}
	days := secs / secondsPerDay
	if rem := secs % secondsPerDay; rem > 0 || (rem == 0 && nanos > 0) {
		days++
	}
	v := int(days)
	return &v
}

// within сообщает, попадает ли дата в окно [.., now+withinDays] по DaysUntil.
func within(date *time.Time, now time.Time, withinDays int) (int, bool) {
	days := DaysUntil(date, now)
	if days == nil || *days > withinDays {
		return 0, false
	}
	return *days, true
}
