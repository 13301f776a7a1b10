package model

// Deadline дедлайн, выставленный старостой
type Deadline struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     Date     `json:"dueDate"`
	Group       string   `json:"groupName"`
	CreatedBy   string   `json:"createdBy"`
	Recipients  []string `json:"recipients"`
}
