package calendar

// Variant вид календаря; у каждого свои префиксы payload
type Variant int

const (
	Plain Variant = iota
	Absence
	ScheduleChange
)

// Variants все виды в порядке предрасчёта
var Variants = []Variant{Plain, Absence, ScheduleChange}

// Префиксы payload кнопок календаря
const (
	PlainDatePrefix   = "CALENDAR_DATE_"
	PlainNavPrefix    = "NAV_CALENDAR_"
	AbsenceDatePrefix = "ABSENCE_DATE_"
	AbsenceNavPrefix  = "NAV_ABSENCE_"
	ChangeDatePrefix  = "CALENDAR_CHANGE_"
	ChangeNavPrefix   = "CALENDAR_CHANGE_NAV_"
)

// DatePrefix префикс кнопки выбора даты
func (v Variant) DatePrefix() string {
	switch v {
	case Absence:
		return AbsenceDatePrefix
	case ScheduleChange:
		return ChangeDatePrefix
	default:
		return PlainDatePrefix
	}
}

// NavPrefix префикс стрелок навигации
func (v Variant) NavPrefix() string {
	switch v {
	case Absence:
		return AbsenceNavPrefix
	case ScheduleChange:
		return ChangeNavPrefix
	default:
		return PlainNavPrefix
	}
}

func (v Variant) String() string {
	switch v {
	case Absence:
		return "absence"
	case ScheduleChange:
		return "schedule_change"
	default:
		return "plain"
	}
}
