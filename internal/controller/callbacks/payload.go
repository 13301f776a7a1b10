package callbacks

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/groupmate_bot/internal/calendar"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/groupmate_bot/internal/controller/state"
	"github.com/Freeeeeet/groupmate_bot/internal/keyboard"
)

// ========================
// Callback Data Patterns
// ========================

const (
	RegStart = "REG_START"

	AbsenceConfirm = "ABSENCE_CONFIRM"
	AbsenceCancel  = "ABSENCE_CANCEL"

	CalendarBack = "CALENDAR_BACK"

	BackWeekPrefix    = "BACK_WEEK_" // BACK_WEEK_3
	BackMonths        = "BACK_MONTHS"
	TomorrowPrefix    = "TOMORROW_"      // TOMORROW_2025-04-10 (от какого дня)
	BackToTodayPrefix = "BACK_TO_TODAY_" // BACK_TO_TODAY_2025-04-10
	BackWeeks         = "BACK_WEEKS"

	DeleteMissedPrefix   = "DELETE_MISSED_"   // DELETE_MISSED_<username>_2025-04-01_2025-04-03
	DeleteDeadlinePrefix = "DELETE_DEADLINE_" // DELETE_DEADLINE_<id>

	LessonSelectPrefix = "LESSON_SELECT_" // LESSON_SELECT_<group>|2025-04-10|09:00
	ChangeEdit         = "SCHEDULE_CHANGE_EDIT"
	ChangeDelete       = "SCHEDULE_CHANGE_DELETE"
	ChangeFieldPrefix  = "UPDATE_SCHEDULE_CHANGE_FIELD_" // UPDATE_SCHEDULE_CHANGE_FIELD_TIME
	ChangeConfirm      = "SCHEDULE_CHANGE_CONFIRM"
	ChangeCancelLesson = "SCHEDULE_CHANGE_CANCEL_LESSON"
)

// Kind вид нажатой кнопки
type Kind int

const (
	KindUnknown Kind = iota
	KindInert
	KindRegStart

	KindAbsenceDate
	KindAbsenceNav
	KindAbsenceConfirm
	KindAbsenceCancel

	KindCalendarDate
	KindCalendarNav
	KindCalendarBack

	KindWeek
	KindBackWeek
	KindShowDay
	KindMonth
	KindBackMonths
	KindTomorrow
	KindBackToToday
	KindBackWeeks

	KindDeleteMissed
	KindDeleteDeadline

	KindChangeNav
	KindChangeDate
	KindLessonSelect
	KindChangeEdit
	KindChangeDelete
	KindChangeField
	KindChangeConfirm
	KindChangeCancelLesson
)

// Target обработчик, которому уходит нажатие
type Target int

const (
	TargetNone Target = iota
	TargetRegistration
	TargetAbsence
	TargetDatePick
	TargetBrowse
	TargetMissed
	TargetDeadline
	TargetScheduleChange
)

func (t Target) String() string {
	switch t {
	case TargetRegistration:
		return "registration"
	case TargetAbsence:
		return "absence"
	case TargetDatePick:
		return "date_pick"
	case TargetBrowse:
		return "browse"
	case TargetMissed:
		return "missed"
	case TargetDeadline:
		return "deadline"
	case TargetScheduleChange:
		return "schedule_change"
	default:
		return "none"
	}
}

// Target куда маршрутизируется кнопка этого вида
func (k Kind) Target() Target {
	switch k {
	case KindRegStart:
		return TargetRegistration
	case KindAbsenceDate, KindAbsenceNav, KindAbsenceConfirm, KindAbsenceCancel:
		return TargetAbsence
	case KindCalendarDate, KindCalendarNav, KindCalendarBack:
		return TargetDatePick
	case KindWeek, KindBackWeek, KindShowDay, KindMonth, KindBackMonths, KindTomorrow, KindBackToToday, KindBackWeeks:
		return TargetBrowse
	case KindDeleteMissed:
		return TargetMissed
	case KindDeleteDeadline:
		return TargetDeadline
	case KindChangeNav, KindChangeDate, KindLessonSelect, KindChangeEdit, KindChangeDelete,
		KindChangeField, KindChangeConfirm, KindChangeCancelLesson:
		return TargetScheduleChange
	default:
		return TargetNone
	}
}

// Payload разобранные данные кнопки
type Payload struct {
	Raw      string
	Kind     Kind
	Date     time.Time
	Month    calendar.Month
	Week     int
	Username string
	From     time.Time
	To       time.Time
	ID       string
	Group    string
	Time     string
	Field    state.ChangeField
}

type rule struct {
	token string
	exact bool
	kind  Kind
	parse func(rest string, p *Payload) error
}

// rules проверяются по порядку, побеждает первое совпадение.
// CALENDAR_CHANGE_NAV_ стоит раньше CALENDAR_CHANGE_, так как начинается с него.
var rules = []rule{
	{token: keyboard.InertData, exact: true, kind: KindInert},
	{token: RegStart, exact: true, kind: KindRegStart},

	{token: calendar.AbsenceDatePrefix, kind: KindAbsenceDate, parse: parseDate},
	{token: calendar.AbsenceNavPrefix, kind: KindAbsenceNav, parse: parseNavMonth},
	{token: AbsenceConfirm, exact: true, kind: KindAbsenceConfirm},
	{token: AbsenceCancel, exact: true, kind: KindAbsenceCancel},

	{token: calendar.PlainDatePrefix, kind: KindCalendarDate, parse: parseDate},
	{token: calendar.PlainNavPrefix, kind: KindCalendarNav, parse: parseNavMonth},
	{token: CalendarBack, exact: true, kind: KindCalendarBack},

	{token: calendar.WeekPrefix, kind: KindWeek, parse: parseWeek},
	{token: BackWeekPrefix, kind: KindBackWeek, parse: parseWeek},
	{token: calendar.ShowDayPrefix, kind: KindShowDay, parse: parseDate},
	{token: calendar.MonthPrefix, kind: KindMonth, parse: parseMonth},
	{token: BackMonths, exact: true, kind: KindBackMonths},
	{token: TomorrowPrefix, kind: KindTomorrow, parse: parseDate},
	{token: BackToTodayPrefix, kind: KindBackToToday, parse: parseDate},
	{token: BackWeeks, exact: true, kind: KindBackWeeks},

	{token: DeleteMissedPrefix, kind: KindDeleteMissed, parse: parseMissed},
	{token: DeleteDeadlinePrefix, kind: KindDeleteDeadline, parse: parseID},

	{token: calendar.ChangeNavPrefix, kind: KindChangeNav, parse: parseNavMonth},
	{token: calendar.ChangeDatePrefix, kind: KindChangeDate, parse: parseDate},
	{token: LessonSelectPrefix, kind: KindLessonSelect, parse: parseLesson},
	{token: ChangeEdit, exact: true, kind: KindChangeEdit},
	{token: ChangeDelete, exact: true, kind: KindChangeDelete},
	{token: ChangeFieldPrefix, kind: KindChangeField, parse: parseField},
	{token: ChangeConfirm, exact: true, kind: KindChangeConfirm},
	{token: ChangeCancelLesson, exact: true, kind: KindChangeCancelLesson},
}

// Decode разбирает payload кнопки. Неизвестный payload даёт KindUnknown без ошибки,
// известный префикс с битыми параметрами даёт вид кнопки и ErrMalformed.
func Decode(data string) (Payload, error) {
	p := Payload{Raw: data}
	for _, r := range rules {
		var rest string
		if r.exact {
			if data != r.token {
				continue
			}
		} else {
			var ok bool
			if rest, ok = strings.CutPrefix(data, r.token); !ok {
				continue
			}
		}

		p.Kind = r.kind
		if r.parse != nil {
			if err := r.parse(rest, &p); err != nil {
				return p, fmt.Errorf("decode %q: %w: %v", data, common.ErrMalformed, err)
			}
		}
		return p, nil
	}
	return p, nil
}

func parseISODate(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, s)
}

func parseDate(rest string, p *Payload) error {
	d, err := parseISODate(rest)
	if err != nil {
		return err
	}
	p.Date = d
	return nil
}

func parseNavMonth(rest string, p *Payload) error {
	m, err := calendar.ParseNavMonth(rest)
	if err != nil {
		return err
	}
	p.Month = m
	return nil
}

func parseMonth(rest string, p *Payload) error {
	m, err := calendar.ParseMonth(rest)
	if err != nil {
		return err
	}
	p.Month = m
	return nil
}

func parseWeek(rest string, p *Payload) error {
	n, err := strconv.Atoi(rest)
	if err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("negative week %d", n)
	}
	p.Week = n
	return nil
}

func parseID(rest string, p *Payload) error {
	if rest == "" {
		return fmt.Errorf("empty id")
	}
	p.ID = rest
	return nil
}

// parseMissed разбирает <username>_<from>_<to> с конца: в username может быть "_"
func parseMissed(rest string, p *Payload) error {
	const dateLen = len(time.DateOnly)
	// username, "_", from, "_", to
	if len(rest) < 2*dateLen+3 {
		return fmt.Errorf("too short")
	}
	toStr := rest[len(rest)-dateLen:]
	fromStr := rest[len(rest)-2*dateLen-1 : len(rest)-dateLen-1]
	if rest[len(rest)-dateLen-1] != '_' || rest[len(rest)-2*dateLen-2] != '_' {
		return fmt.Errorf("missing separators")
	}

	from, err := parseISODate(fromStr)
	if err != nil {
		return err
	}
	to, err := parseISODate(toStr)
	if err != nil {
		return err
	}
	p.Username = rest[:len(rest)-2*dateLen-2]
	p.From, p.To = from, to
	return nil
}

func parseLesson(rest string, p *Payload) error {
	parts := strings.Split(rest, "|")
	if len(parts) != 3 || parts[0] == "" {
		return fmt.Errorf("want group|date|time")
	}
	d, err := parseISODate(parts[1])
	if err != nil {
		return err
	}
	if _, err := time.Parse(common.UserTimeLayout, parts[2]); err != nil {
		return err
	}
	p.Group, p.Date, p.Time = parts[0], d, parts[2]
	return nil
}

func parseField(rest string, p *Payload) error {
	for _, f := range state.ChangeFields {
		if string(f) == rest {
			p.Field = f
			return nil
		}
	}
	return fmt.Errorf("unknown field %q", rest)
}

// Encode-хелперы для кнопок, которые собирают обработчики

func deleteMissedData(username string, from, to time.Time) string {
	return DeleteMissedPrefix + username + "_" + from.Format(time.DateOnly) + "_" + to.Format(time.DateOnly)
}

func lessonSelectData(group string, date time.Time, startTime string) string {
	return LessonSelectPrefix + group + "|" + date.Format(time.DateOnly) + "|" + startTime
}
