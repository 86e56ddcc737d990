package handlers

import "testing"

// Телефон хранится в нормализованном виде: цифры и ведущий плюс.
// Разделители отбрасываются, буквы и короткие или слишком длинные
// номера отклоняются целиком.
func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+79991234567", "+79991234567"},
		{"79991234567", "79991234567"},
		{"8 (999) 123-45-67", "89991234567"},
		{"+7 999 123 45 67", "+79991234567"},
		{"  +79991234567  ", "+79991234567"},
		{"1234567890", "1234567890"},           // нижняя граница, 10 цифр
		{"123456789012345", "123456789012345"}, // верхняя граница, 15 цифр
		{"123456789", ""},                      // 9 цифр — мало
		{"1234567890123456", ""},               // 16 цифр — много
		{"телефон", ""},
		{"+7999abc4567", ""},
		{"7999+1234567", ""}, // плюс не в начале
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizePhone(tt.in); got != tt.want {
			t.Errorf("normalizePhone(%q) = %q, ожидали %q", tt.in, got, tt.want)
		}
	}
}
