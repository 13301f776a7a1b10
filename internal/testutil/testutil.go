package testutil

import (
	"time"

	"github.com/Freeeeeet/groupmate_bot/internal/model"
	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestUser creates a test student
func NewTestUser(username, group string) *model.User {
	return &model.User{
		Username:  username,
		FirstName: "Иван",
		LastName:  "Петров",
		Group:     group,
		Role:      model.RoleStudent,
	}
}

// NewTestLeader creates a test group leader
func NewTestLeader(username, group string) *model.User {
	u := NewTestUser(username, group)
	u.Role = model.RoleLeader
	return u
}

// MustDate parses yyyy-MM-dd or panics
func MustDate(s string) model.Date {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FixedClock returns a clock frozen at the given moment
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
