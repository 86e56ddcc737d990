package session

import (
	"sync"
	"time"
)

// Memory — потокобезопасное хранилище в памяти процесса.
type Memory struct {
	mu     sync.Mutex
	states map[int64]State
	now    func() time.Time
}

func NewMemory() *Memory {
	return &Memory{states: make(map[int64]State), now: time.Now}
}

func (m *Memory) Get(chatID int64) (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[chatID]
	return st, ok
}

func (m *Memory) Set(chatID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st.UpdatedAt = m.now()
	m.states[chatID] = st
}

func (m *Memory) Delete(chatID int64) (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[chatID]
	if ok {
		delete(m.states, chatID)
	}
	return st, ok
}

// SweepOlderThan удаляет брошенные диалоги и возвращает число удалённых.
func (m *Memory) SweepOlderThan(age time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-age)
	n := 0
	for chatID, st := range m.states {
		if st.UpdatedAt.Before(cutoff) {
			delete(m.states, chatID)
			n++
		}
	}
	return n
}
