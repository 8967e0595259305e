package service

import (
	"fmt"
	"time"
)

// Названия месяцев в стиле DATETIME_FORMAT ("N j, Y, P"):
// трёхбуквенные сокращения с точкой, длинные месяцы целиком.
var monthNames = [...]string{
	"Jan.", "Feb.", "March", "April", "May", "June",
	"July", "Aug.", "Sept.", "Oct.", "Nov.", "Dec.",
}

// FormatDatetime приводит время к строке вида "Aug. 25, 2026, 3:04 p.m.".
// Именно в этом виде поле time уходит клиенту в ответе /new-reply/
// и в datetime_format-выдаче /load-objects/.
func FormatDatetime(t time.Time) string {
	t = t.UTC()

	return fmt.Sprintf("%s %d, %d, %s",
		monthNames[int(t.Month())-1], t.Day(), t.Year(), formatTimeOfDay(t))
}

// formatTimeOfDay — 12-часовой формат с "a.m."/"p.m.",
// особые случаи midnight/noon, минуты опускаются при :00.
func formatTimeOfDay(t time.Time) string {
	h, m := t.Hour(), t.Minute()

	switch {
	case h == 0 && m == 0:
		return "midnight"
	case h == 12 && m == 0:
		return "noon"
	}

	meridiem := "a.m."
	if h >= 12 {
		meridiem = "p.m."
	}

	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}

	if m == 0 {
		return fmt.Sprintf("%d %s", h12, meridiem)
	}

	return fmt.Sprintf("%d:%02d %s", h12, m, meridiem)
}
