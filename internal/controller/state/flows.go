package state

import (
	"time"

	"github.com/Freeeeeet/groupmate_bot/internal/model"
)

// RegistrationStep шаг регистрации и редактирования профиля
type RegistrationStep string

const (
	RegNone           RegistrationStep = "NONE"
	RegEnterFirstName RegistrationStep = "ENTER_FIRSTNAME"
	RegEnterLastName  RegistrationStep = "ENTER_LASTNAME"
	RegEnterGroup     RegistrationStep = "ENTER_GROUP"
	RegFinished       RegistrationStep = "FINISHED"
)

var registrationOrder = []RegistrationStep{RegEnterFirstName, RegEnterLastName, RegEnterGroup, RegFinished}

// RegistrationDraft данные нового пользователя
type RegistrationDraft struct {
	FirstName string
	LastName  string
	Group     string
}

// ProfileDraft правки профиля; пустое поле значит "оставить как было"
type ProfileDraft struct {
	Current   model.User
	FirstName string
	LastName  string
	Group     string
}

// Result профиль с применёнными правками
func (d *ProfileDraft) Result() model.User {
	u := d.Current
	if d.FirstName != "" {
		u.FirstName = d.FirstName
	}
	if d.LastName != "" {
		u.LastName = d.LastName
	}
	if d.Group != "" {
		u.Group = d.Group
	}
	return u
}

// DeadlineStep шаг создания дедлайна
type DeadlineStep string

const (
	DeadlineTitle       DeadlineStep = "TITLE"
	DeadlineDescription DeadlineStep = "DESCRIPTION"
	DeadlineDate        DeadlineStep = "DATE"
	DeadlineRecipients  DeadlineStep = "RECIPIENTS"
	DeadlineComplete    DeadlineStep = "COMPLETE"
)

// DeadlineDraft черновик дедлайна
type DeadlineDraft struct {
	Group       string
	CreatedBy   string
	Title       string
	Description string
	DueDate     time.Time
	Recipients  []string
}

// AbsenceStep шаг отчёта о пропуске
type AbsenceStep string

const (
	AbsenceNone                AbsenceStep = "NONE"
	AbsencePickingDates        AbsenceStep = "PICKING_DATES"
	AbsenceAwaitingDescription AbsenceStep = "AWAITING_DESCRIPTION"
)

// AbsenceDraft диапазон дат пропуска и причина
type AbsenceDraft struct {
	From        time.Time
	To          time.Time
	Description string
}

// HasRange выбрана ли хотя бы одна дата
func (d *AbsenceDraft) HasRange() bool {
	return !d.From.IsZero()
}

// Pick учитывает нажатие на дату. Первое нажатие задаёт from=to=d,
// следующее сравнивается только с from текущего диапазона.
func (d *AbsenceDraft) Pick(date time.Time) {
	if !d.HasRange() {
		d.From, d.To = date, date
		return
	}
	anchor := d.From
	if date.Before(anchor) {
		d.From, d.To = date, anchor
		return
	}
	d.From, d.To = anchor, date
}

// ScheduleChangeStep шаг редактирования занятия
type ScheduleChangeStep string

const (
	ChangeNone          ScheduleChangeStep = "NONE"
	ChangeSelected      ScheduleChangeStep = "SELECTED"
	ChangeAwaitingValue ScheduleChangeStep = "AWAITING_VALUE"
)

// ChangeField поле занятия, которое меняет староста
type ChangeField string

const (
	FieldSubject     ChangeField = "SUBJECT"
	FieldDate        ChangeField = "DATE"
	FieldTime        ChangeField = "TIME"
	FieldClassroom   ChangeField = "CLASSROOM"
	FieldDescription ChangeField = "DESCRIPTION"
)

// ChangeFields порядок кнопок выбора поля
var ChangeFields = []ChangeField{FieldSubject, FieldDate, FieldTime, FieldClassroom, FieldDescription}

// ScheduleChangeDraft выбранное занятие и новые значения его полей
type ScheduleChangeDraft struct {
	Lesson       model.Lesson
	NewSubject   string
	NewDate      time.Time
	NewTime      string
	Classroom    string
	Description  string
	PendingField ChangeField
}

// Change собирает изменение для отправки на бэкенд
func (d *ScheduleChangeDraft) Change(changedBy string, cancelled bool) model.ScheduleChange {
	newDate := d.Lesson.Date
	if !d.NewDate.IsZero() {
		newDate = model.NewDate(d.NewDate)
	}
	newTime := d.Lesson.StartTime
	if d.NewTime != "" {
		newTime = d.NewTime
	}
	subject := d.Lesson.Subject
	if d.NewSubject != "" {
		subject = d.NewSubject
	}
	classroom := d.Lesson.Classroom
	if d.Classroom != "" {
		classroom = d.Classroom
	}
	return model.ScheduleChange{
		Group:        d.Lesson.Group,
		Subject:      d.Lesson.Subject,
		OldDate:      d.Lesson.Date,
		OldStartTime: d.Lesson.StartTime,
		NewSubject:   subject,
		NewDate:      newDate,
		NewStartTime: newTime,
		Classroom:    classroom,
		Description:  d.Description,
		Cancelled:    cancelled,
		ChangedBy:    changedBy,
	}
}

type (
	RegistrationStore   = Store[RegistrationStep, RegistrationDraft]
	ProfileStore        = Store[RegistrationStep, ProfileDraft]
	DeadlineStore       = Store[DeadlineStep, DeadlineDraft]
	AbsenceStore        = Store[AbsenceStep, AbsenceDraft]
	ScheduleChangeStore = Store[ScheduleChangeStep, ScheduleChangeDraft]
)

// Stores пять диалогов бота. Регистрация, профиль и дедлайн живут по chat id,
// пропуск и изменение расписания по user id.
type Stores struct {
	Registration   *RegistrationStore
	Profile        *ProfileStore
	Deadline       *DeadlineStore
	Absence        *AbsenceStore
	ScheduleChange *ScheduleChangeStore
}

// NewStores создаёт пустые хранилища всех диалогов
func NewStores() *Stores {
	return &Stores{
		Registration: NewStore[RegistrationStep, RegistrationDraft](Flow[RegistrationStep]{
			Name:  "registration",
			Idle:  RegNone,
			Order: registrationOrder,
		}),
		Profile: NewStore[RegistrationStep, ProfileDraft](Flow[RegistrationStep]{
			Name:           "profile",
			Idle:           RegNone,
			Order:          registrationOrder[:3],
			ClearAfterLast: true,
		}),
		Deadline: NewStore[DeadlineStep, DeadlineDraft](Flow[DeadlineStep]{
			Name:  "deadline",
			Idle:  DeadlineComplete,
			Order: []DeadlineStep{DeadlineTitle, DeadlineDescription, DeadlineDate, DeadlineRecipients},
		}),
		Absence: NewStore[AbsenceStep, AbsenceDraft](Flow[AbsenceStep]{
			Name:  "absence",
			Idle:  AbsenceNone,
			Order: []AbsenceStep{AbsencePickingDates, AbsenceAwaitingDescription},
		}),
		ScheduleChange: NewStore[ScheduleChangeStep, ScheduleChangeDraft](Flow[ScheduleChangeStep]{
			Name: "schedule_change",
			Idle: ChangeNone,
		}),
	}
}

// ActiveFlows имена диалогов, активных для чата или пользователя
func (s *Stores) ActiveFlows(chatID, userID int64) []string {
	var active []string
	if s.Registration.IsActive(chatID) {
		active = append(active, s.Registration.Name())
	}
	if s.Absence.IsActive(userID) {
		active = append(active, s.Absence.Name())
	}
	if s.Profile.IsActive(chatID) {
		active = append(active, s.Profile.Name())
	}
	if s.Deadline.IsActive(chatID) {
		active = append(active, s.Deadline.Name())
	}
	if s.ScheduleChange.IsActive(userID) {
		active = append(active, s.ScheduleChange.Name())
	}
	return active
}

// AnyActive есть ли у чата или пользователя незавершённый диалог
func (s *Stores) AnyActive(chatID, userID int64) bool {
	return len(s.ActiveFlows(chatID, userID)) > 0
}

// ClearAll сбрасывает все диалоги чата и пользователя
func (s *Stores) ClearAll(chatID, userID int64) {
	s.Registration.Clear(chatID)
	s.Profile.Clear(chatID)
	s.Deadline.Clear(chatID)
	s.Absence.Clear(userID)
	s.ScheduleChange.Clear(userID)
}
