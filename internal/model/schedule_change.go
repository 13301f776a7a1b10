package model

// ScheduleChange изменение занятия: старые и новые значения
type ScheduleChange struct {
	Group        string `json:"groupName"`
	Subject      string `json:"subject"`
	OldDate      Date   `json:"oldDate"`
	OldStartTime string `json:"oldStartTime"`
	NewSubject   string `json:"newSubject,omitempty"`
	NewDate      Date   `json:"newDate"`
	NewStartTime string `json:"newStartTime,omitempty"`
	Classroom    string `json:"classroom,omitempty"`
	Description  string `json:"description,omitempty"`
	Cancelled    bool   `json:"cancelled,omitempty"`
	ChangedBy    string `json:"changedBy"`
}
