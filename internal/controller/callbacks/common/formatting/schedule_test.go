package formatting

import (
	"testing"
	"time"

	"github.com/Freeeeeet/groupmate_bot/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestFormatDay(t *testing.T) {
	date := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		lessons []model.Lesson
		want    []string
	}{
		{
			name: "empty day",
			want: []string{"Четверг, 10.04.2025", "Занятий нет"},
		},
		{
			name: "lesson with escaping",
			lessons: []model.Lesson{
				{Subject: "C++ <advanced>", StartTime: "09:00", EndTime: "10:30", Classroom: "305"},
			},
			want: []string{"09:00–10:30", "C++ &lt;advanced&gt;", "🚪 305"},
		},
		{
			name:    "cancelled lesson",
			lessons: []model.Lesson{{Subject: "Физика", StartTime: "12:00", Cancelled: true}},
			want:    []string{"отменено"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatDay(date, tt.lessons)
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
		})
	}
}

func TestFormatRange(t *testing.T) {
	a := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2025, 4, 3, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "01.04.2025", FormatRange(a, a))
	assert.Equal(t, "01.04.2025 – 03.04.2025", FormatRange(a, b))
}

func TestFormatProfile(t *testing.T) {
	got := FormatProfile(model.User{FirstName: "Анна", LastName: "Иванова", Group: "ИУ5-21", Role: model.RoleLeader})
	assert.Contains(t, got, "Анна")
	assert.Contains(t, got, "староста")
}
