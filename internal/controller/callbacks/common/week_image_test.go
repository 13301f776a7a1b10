package common

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/Freeeeeet/groupmate_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestGenerateWeekImage(t *testing.T) {
	monday := time.Date(2025, time.April, 7, 0, 0, 0, 0, time.UTC)
	days := []model.DaySchedule{
		{Date: mustDate(t, "2025-04-07"), Lessons: []model.Lesson{
			{Subject: "Математический анализ", StartTime: "09:00", EndTime: "10:30", Classroom: "301"},
			{Subject: "Физика", StartTime: "10:45", Cancelled: true},
		}},
		{Date: mustDate(t, "2025-04-10"), Lessons: []model.Lesson{
			{Subject: "История", StartTime: "13:00", EndTime: "14:30"},
		}},
	}

	data, err := GenerateWeekImage(9, monday, monday.AddDate(0, 0, 3), days)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, imageWidth, img.Bounds().Dx())
	assert.Equal(t, imageHeight, img.Bounds().Dy())
}

func TestGenerateWeekImageEmptyWeek(t *testing.T) {
	data, err := GenerateWeekImage(1, time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC), time.Time{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), data[:4])
}

func TestGenerateWeekImageBadTime(t *testing.T) {
	days := []model.DaySchedule{{
		Date:    mustDate(t, "2025-04-07"),
		Lessons: []model.Lesson{{Subject: "Физика", StartTime: "25:00"}},
	}}

	_, err := GenerateWeekImage(1, time.Date(2025, time.April, 7, 0, 0, 0, 0, time.UTC), time.Time{}, days)
	assert.ErrorContains(t, err, "Физика")
}

func TestCalculateHourRange(t *testing.T) {
	tests := []struct {
		name    string
		lessons []model.Lesson
		want    hourRange
	}{
		{name: "no lessons", want: hourRange{start: 7, end: 19, total: 13}},
		{
			name:    "single lesson with default length",
			lessons: []model.Lesson{{StartTime: "09:00"}},
			want:    hourRange{start: 8, end: 12, total: 5},
		},
		{
			name:    "late lesson clamped",
			lessons: []model.Lesson{{StartTime: "21:00", EndTime: "23:30"}},
			want:    hourRange{start: 20, end: 23, total: 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			byDay, err := groupLessonsByDay([]model.DaySchedule{{Date: mustDate(t, "2025-04-07"), Lessons: tt.lessons}})
			require.NoError(t, err)
			assert.Equal(t, tt.want, calculateHourRange(byDay))
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "Физика", truncateRunes("Физика", 18))
	assert.Equal(t, "Мат…", truncateRunes("Математика", 4))
}
