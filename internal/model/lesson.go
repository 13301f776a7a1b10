package model

// Lesson занятие из расписания группы
type Lesson struct {
	ID        int64  `json:"id,omitempty"`
	Group     string `json:"groupName"`
	Subject   string `json:"subject"`
	Date      Date   `json:"date"`
	StartTime string `json:"startTime"` // HH:mm
	EndTime   string `json:"endTime,omitempty"`
	Classroom string `json:"classroom,omitempty"`
	Teacher   string `json:"teacher,omitempty"`
	Note      string `json:"note,omitempty"`
	Cancelled bool   `json:"cancelled,omitempty"`
}

// DaySchedule расписание на один день
type DaySchedule struct {
	Date    Date     `json:"date"`
	Lessons []Lesson `json:"lessons"`
}
