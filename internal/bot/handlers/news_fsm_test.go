package handlers

import (
	"strings"
	"testing"
)

func TestValidNewsTitle(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Собрание", true},
		{"  Поход  ", true},
		{"", false},
		{"   ", false},
		{strings.Repeat("а", 200), true},
		{strings.Repeat("а", 201), false},
	}
	for _, tt := range tests {
		if _, ok := validNewsTitle(tt.in); ok != tt.want {
			t.Errorf("validNewsTitle(%q) = %v, ожидали %v", tt.in, ok, tt.want)
		}
	}
}

// Пустой ввод (стикер, фото) не завершает шаг содержания: новость без текста
// не публикуется, пользователь получает повторный вопрос.
func TestValidNewsContentRejectsEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t"} {
		if _, ok := validNewsContent(in); ok {
			t.Errorf("validNewsContent(%q) = true, пустое содержание недопустимо", in)
		}
	}

	got, ok := validNewsContent("  Сбор в 9:00  ")
	if !ok || got != "Сбор в 9:00" {
		t.Errorf("validNewsContent = %q, %v", got, ok)
	}
}
