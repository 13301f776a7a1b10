package state

import (
	"slices"
	"sync"
)

// Flow описывает линейный порядок шагов диалога
type Flow[S ~string] struct {
	Name  string
	Idle  S   // шаг "диалог не идёт"
	Order []S // шаги в порядке прохождения, без Idle
	// ClearAfterLast: Advance с последнего шага переводит ключ в Idle
	ClearAfterLast bool
}

type entry[S ~string, D any] struct {
	step  S
	draft *D
}

// Store хранит шаг и черновик диалога по ключу (chat id или user id)
type Store[S ~string, D any] struct {
	flow    Flow[S]
	mu      sync.RWMutex
	entries map[int64]*entry[S, D]
}

// NewStore создаёт хранилище для диалога
func NewStore[S ~string, D any](flow Flow[S]) *Store[S, D] {
	return &Store[S, D]{
		flow:    flow,
		entries: make(map[int64]*entry[S, D]),
	}
}

// Name имя диалога для логов
func (s *Store[S, D]) Name() string {
	return s.flow.Name
}

// Start создаёт новый черновик и ставит первый шаг. Существующий черновик перезаписывается.
func (s *Store[S, D]) Start(key int64, draft D) *D {
	var first S
	if len(s.flow.Order) > 0 {
		first = s.flow.Order[0]
	}
	return s.StartAt(key, first, draft)
}

// StartAt как Start, но с явным шагом (для диалогов без линейного порядка)
func (s *Store[S, D]) StartAt(key int64, step S, draft D) *D {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := &draft
	s.entries[key] = &entry[S, D]{step: step, draft: d}
	return d
}

// Step текущий шаг или Idle, если диалога нет
func (s *Store[S, D]) Step(key int64) S {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.entries[key]; ok {
		return e.step
	}
	return s.flow.Idle
}

// Draft черновик диалога; изменять его на месте можно только из обработчика,
// который один работает с этим ключом. Для ключей по user id есть Update и Snapshot.
func (s *Store[S, D]) Draft(key int64) (*D, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.entries[key]; ok {
		return e.draft, true
	}
	return nil, false
}

// Snapshot копия черновика
func (s *Store[S, D]) Snapshot(key int64) (D, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.entries[key]; ok {
		return *e.draft, true
	}
	var zero D
	return zero, false
}

// Update меняет шаг и черновик под блокировкой хранилища. Для ключа без диалога fn
// получает Idle и пустой черновик. Возврат Idle удаляет ключ. Результат: новый шаг и копия черновика.
func (s *Store[S, D]) Update(key int64, fn func(step S, draft *D) S) (S, D) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		e = &entry[S, D]{step: s.flow.Idle, draft: new(D)}
	}

	next := fn(e.step, e.draft)
	result := *e.draft
	if next == s.flow.Idle {
		delete(s.entries, key)
		return next, result
	}
	e.step = next
	s.entries[key] = e
	return next, result
}

// SetStep ставит шаг без изменения черновика. Idle эквивалентен Clear.
func (s *Store[S, D]) SetStep(key int64, step S) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if step == s.flow.Idle {
		delete(s.entries, key)
		return
	}
	if e, ok := s.entries[key]; ok {
		e.step = step
		return
	}
	s.entries[key] = &entry[S, D]{step: step, draft: new(D)}
}

// Advance переводит ключ на следующий шаг и возвращает его
func (s *Store[S, D]) Advance(key int64) S {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return s.flow.Idle
	}

	pos := slices.Index(s.flow.Order, e.step)
	switch {
	case pos < 0:
		return e.step
	case pos+1 < len(s.flow.Order):
		e.step = s.flow.Order[pos+1]
	case s.flow.ClearAfterLast:
		delete(s.entries, key)
		return s.flow.Idle
	}
	return e.step
}

// Clear удаляет шаг и черновик
func (s *Store[S, D]) Clear(key int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
}

// IsActive true, если шаг отличен от Idle
func (s *Store[S, D]) IsActive(key int64) bool {
	return s.Step(key) != s.flow.Idle
}

// Len количество активных диалогов
func (s *Store[S, D]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}
