package session

import (
	"testing"
	"time"
)

func TestMemorySetGetDelete(t *testing.T) {
	m := NewMemory()

	if _, ok := m.Get(1); ok {
		t.Fatal("ожидали пустое хранилище")
	}

	m.Set(1, State{Step: StepRegisterFullName, PromptMessageID: 42})
	st, ok := m.Get(1)
	if !ok || st.Step != StepRegisterFullName || st.PromptMessageID != 42 {
		t.Fatalf("неожиданное состояние: %+v ok=%v", st, ok)
	}
	if st.UpdatedAt.IsZero() {
		t.Fatal("Set должен проставлять UpdatedAt")
	}

	prev, ok := m.Delete(1)
	if !ok || prev.PromptMessageID != 42 {
		t.Fatalf("Delete должен вернуть прежнее состояние: %+v ok=%v", prev, ok)
	}
	if _, ok := m.Get(1); ok {
		t.Fatal("состояние должно быть удалено")
	}
	if _, ok := m.Delete(1); ok {
		t.Fatal("повторный Delete должен вернуть false")
	}
}

func TestMemorySweepOlderThan(t *testing.T) {
	m := NewMemory()
	now := time.Now()
	m.now = func() time.Time { return now }

	m.Set(1, State{Step: StepNewsTitle})
	now = now.Add(2 * time.Hour)
	m.Set(2, State{Step: StepNewsContent})

	if got := m.SweepOlderThan(time.Hour); got != 1 {
		t.Fatalf("SweepOlderThan = %d, ожидали 1", got)
	}
	if _, ok := m.Get(1); ok {
		t.Fatal("старое состояние должно быть удалено")
	}
	if _, ok := m.Get(2); !ok {
		t.Fatal("свежее состояние должно остаться")
	}
}
