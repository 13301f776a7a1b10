package state

import (
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/groupmate_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdleMeansInactive(t *testing.T) {
	stores := NewStores()
	deadline := stores.Deadline

	assert.Equal(t, DeadlineComplete, deadline.Step(1))
	assert.False(t, deadline.IsActive(1))

	deadline.Start(1, DeadlineDraft{Group: "ИУ5-21"})
	assert.True(t, deadline.IsActive(1))
	assert.Equal(t, DeadlineTitle, deadline.Step(1))

	deadline.Clear(1)
	assert.False(t, deadline.IsActive(1))
	_, ok := deadline.Draft(1)
	assert.False(t, ok)
}

func TestAdvance(t *testing.T) {
	stores := NewStores()

	t.Run("deadline stops at recipients", func(t *testing.T) {
		stores.Deadline.Start(1, DeadlineDraft{})
		assert.Equal(t, DeadlineDescription, stores.Deadline.Advance(1))
		assert.Equal(t, DeadlineDate, stores.Deadline.Advance(1))
		assert.Equal(t, DeadlineRecipients, stores.Deadline.Advance(1))
		assert.Equal(t, DeadlineRecipients, stores.Deadline.Advance(1))
		assert.True(t, stores.Deadline.IsActive(1))
	})

	t.Run("registration reaches finished", func(t *testing.T) {
		stores.Registration.Start(2, RegistrationDraft{})
		stores.Registration.Advance(2)
		stores.Registration.Advance(2)
		assert.Equal(t, RegFinished, stores.Registration.Advance(2))
		assert.Equal(t, RegFinished, stores.Registration.Advance(2))
	})

	t.Run("profile clears after group", func(t *testing.T) {
		stores.Profile.Start(3, ProfileDraft{})
		stores.Profile.Advance(3)
		assert.Equal(t, RegEnterGroup, stores.Profile.Advance(3))
		assert.Equal(t, RegNone, stores.Profile.Advance(3))
		assert.False(t, stores.Profile.IsActive(3))
	})

	t.Run("advance on idle key", func(t *testing.T) {
		assert.Equal(t, AbsenceNone, stores.Absence.Advance(99))
		assert.False(t, stores.Absence.IsActive(99))
	})
}

func TestStartOverwritesDraft(t *testing.T) {
	s := NewStores().Deadline

	first := s.Start(1, DeadlineDraft{Title: "old"})
	s.Advance(1)
	second := s.Start(1, DeadlineDraft{Title: "new"})

	got, ok := s.Draft(1)
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.NotSame(t, first, got)
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, DeadlineTitle, s.Step(1))
}

func TestDraftMutatedInPlace(t *testing.T) {
	s := NewStores().Registration
	s.Start(5, RegistrationDraft{})

	d, _ := s.Draft(5)
	d.FirstName = "Анна"

	again, _ := s.Draft(5)
	assert.Equal(t, "Анна", again.FirstName)
}

func TestSetStep(t *testing.T) {
	s := NewStores().ScheduleChange

	s.SetStep(7, ChangeAwaitingValue)
	assert.True(t, s.IsActive(7))
	d, ok := s.Draft(7)
	require.True(t, ok)
	assert.NotNil(t, d)

	s.SetStep(7, ChangeNone)
	assert.False(t, s.IsActive(7))
	assert.Equal(t, 0, s.Len())
}

func TestAbsencePick(t *testing.T) {
	d1 := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 4, 3, 0, 0, 0, 0, time.UTC)
	d3 := time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC)

	var draft AbsenceDraft
	draft.Pick(d1)
	assert.Equal(t, d1, draft.From)
	assert.Equal(t, d1, draft.To)

	draft.Pick(d2)
	assert.Equal(t, d2, draft.From)
	assert.Equal(t, d1, draft.To)

	// третье нажатие сравнивается с from, а не со всеми датами
	draft.Pick(d3)
	assert.Equal(t, d2, draft.From)
	assert.Equal(t, d3, draft.To)
}

func TestProfileResultKeepsSkippedFields(t *testing.T) {
	d := ProfileDraft{
		Current:  model.User{Username: "anna", FirstName: "Анна", LastName: "Иванова", Group: "ИУ5-21"},
		LastName: "Петрова",
	}

	got := d.Result()
	assert.Equal(t, "Анна", got.FirstName)
	assert.Equal(t, "Петрова", got.LastName)
	assert.Equal(t, "ИУ5-21", got.Group)
}

func TestScheduleChangeDraftChange(t *testing.T) {
	lessonDate := model.NewDate(time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC))
	d := ScheduleChangeDraft{
		Lesson:  model.Lesson{Group: "ИУ5-21", Subject: "Матан", Date: lessonDate, StartTime: "09:00", Classroom: "101"},
		NewTime: "10:45",
	}

	change := d.Change("leader", false)
	assert.Equal(t, "09:00", change.OldStartTime)
	assert.Equal(t, "10:45", change.NewStartTime)
	assert.Equal(t, lessonDate, change.NewDate)
	assert.Equal(t, "Матан", change.NewSubject)
	assert.Equal(t, "101", change.Classroom)
	assert.Equal(t, "leader", change.ChangedBy)
}

func TestStoresAnyActive(t *testing.T) {
	stores := NewStores()
	const chatID, userID = 100, 200

	assert.False(t, stores.AnyActive(chatID, userID))

	stores.Absence.Start(userID, AbsenceDraft{})
	assert.True(t, stores.AnyActive(chatID, userID))
	// absence привязан к пользователю, а не к чату
	assert.False(t, stores.AnyActive(userID, chatID))
	assert.Equal(t, []string{"absence"}, stores.ActiveFlows(chatID, userID))

	stores.Deadline.Start(chatID, DeadlineDraft{})
	stores.ClearAll(chatID, userID)
	assert.False(t, stores.AnyActive(chatID, userID))
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStores().Registration

	var wg sync.WaitGroup
	for i := int64(0); i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Start(i, RegistrationDraft{})
			s.Advance(i)
			_ = s.IsActive(i + 1)
			s.Clear(i)
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, s.Len())
}

func TestUpdate(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 4, d, 0, 0, 0, 0, time.UTC) }

	t.Run("starts idle key", func(t *testing.T) {
		s := NewStores().Absence
		step, draft := s.Update(1, func(step AbsenceStep, d *AbsenceDraft) AbsenceStep {
			assert.Equal(t, AbsenceNone, step)
			d.Pick(day(10))
			return AbsencePickingDates
		})
		assert.Equal(t, AbsencePickingDates, step)
		assert.Equal(t, day(10), draft.From)
		assert.True(t, s.IsActive(1))
	})

	t.Run("returns a copy", func(t *testing.T) {
		s := NewStores().Absence
		_, draft := s.Update(1, func(_ AbsenceStep, d *AbsenceDraft) AbsenceStep {
			d.Pick(day(10))
			return AbsencePickingDates
		})
		draft.Pick(day(3))

		stored, ok := s.Snapshot(1)
		require.True(t, ok)
		assert.Equal(t, day(10), stored.To)
	})

	t.Run("idle result clears", func(t *testing.T) {
		s := NewStores().Absence
		s.Start(1, AbsenceDraft{})
		step, _ := s.Update(1, func(AbsenceStep, *AbsenceDraft) AbsenceStep { return AbsenceNone })
		assert.Equal(t, AbsenceNone, step)
		assert.False(t, s.IsActive(1))
	})

	t.Run("idle key left idle", func(t *testing.T) {
		s := NewStores().Absence
		s.Update(1, func(step AbsenceStep, _ *AbsenceDraft) AbsenceStep { return step })
		assert.False(t, s.IsActive(1))
		assert.Equal(t, 0, s.Len())
	})
}

func TestSnapshotMissing(t *testing.T) {
	_, ok := NewStores().ScheduleChange.Snapshot(5)
	assert.False(t, ok)
}

func TestUpdateConcurrentPicks(t *testing.T) {
	s := NewStores().Absence

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(d int) {
			defer wg.Done()
			s.Update(7, func(_ AbsenceStep, draft *AbsenceDraft) AbsenceStep {
				draft.Pick(time.Date(2025, 4, d, 0, 0, 0, 0, time.UTC))
				return AbsencePickingDates
			})
			_, _ = s.Snapshot(7)
		}(i)
	}
	wg.Wait()

	draft, ok := s.Snapshot(7)
	require.True(t, ok)
	assert.False(t, draft.To.Before(draft.From))
}
