package model

// Absence запись о пропуске занятий
type Absence struct {
	Username    string `json:"username"`
	Group       string `json:"groupName,omitempty"`
	From        Date   `json:"dateFrom"`
	To          Date   `json:"dateTo"`
	Description string `json:"description"`
}
